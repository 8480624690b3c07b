package config

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownProfile = errors.New("unknown profile")

type resolveContext struct {
	profiles map[string]Profile
	stack    []string
	inStack  map[string]struct{}
}

// Resolve overlays the named profiles, in order, on top of General. A
// profile's includes are applied before the profile itself.
func (c Config) Resolve(names []string) (General, error) {
	ctx := resolveContext{
		profiles: c.Profiles,
		stack:    make([]string, 0, 4),
		inStack:  make(map[string]struct{}, 4),
	}

	out := c.General
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		g, err := ctx.resolve(name)
		if err != nil {
			return General{}, err
		}
		out = out.Overlay(g)
	}
	return out, nil
}

func (ctx *resolveContext) resolve(name string) (General, error) {
	if _, seen := ctx.inStack[name]; seen {
		cycle := append(append([]string(nil), ctx.stack...), name)
		return General{}, fmt.Errorf("profile include cycle detected: %s", strings.Join(cycle, " -> "))
	}

	profile, ok := ctx.profiles[name]
	if !ok {
		return General{}, fmt.Errorf("%w %q", ErrUnknownProfile, name)
	}

	ctx.inStack[name] = struct{}{}
	ctx.stack = append(ctx.stack, name)
	defer func() {
		delete(ctx.inStack, name)
		ctx.stack = ctx.stack[:len(ctx.stack)-1]
	}()

	var merged General
	for _, inc := range profile.Include {
		g, err := ctx.resolve(strings.TrimSpace(inc))
		if err != nil {
			return General{}, err
		}
		merged = merged.Overlay(g)
	}

	return merged.Overlay(profile.General), nil
}
