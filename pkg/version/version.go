package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is the config format this build writes and the newest it reads.
const Version = "0.1.0"

// Commit is set at link time with -ldflags "-X".
var Commit = "dev"

// SemVer is a MAJOR.MINOR.PATCH triple.
type SemVer struct {
	Major int
	Minor int
	Patch int
}

func (v SemVer) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare returns -1, 0 or 1 as v sorts before, with or after o.
func (v SemVer) Compare(o SemVer) int {
	for _, d := range [3]int{v.Major - o.Major, v.Minor - o.Minor, v.Patch - o.Patch} {
		switch {
		case d < 0:
			return -1
		case d > 0:
			return 1
		}
	}
	return 0
}

// ParseSemVer accepts "MAJOR.MINOR.PATCH" with an optional "v" prefix.
func ParseSemVer(raw string) (SemVer, error) {
	value := strings.TrimPrefix(strings.TrimSpace(raw), "v")
	if value == "" {
		return SemVer{}, fmt.Errorf("version is empty")
	}

	parts := strings.Split(value, ".")
	if len(parts) != 3 {
		return SemVer{}, fmt.Errorf("invalid semantic version %q (expected MAJOR.MINOR.PATCH)", raw)
	}

	var nums [3]int
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return SemVer{}, fmt.Errorf("invalid %s version in %q", [3]string{"major", "minor", "patch"}[i], raw)
		}
		nums[i] = n
	}

	return SemVer{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// EnsureCompatible checks that a config written for version target can be
// read by this build. An empty target is accepted.
func EnsureCompatible(target string) error {
	if strings.TrimSpace(target) == "" {
		return nil
	}

	current, err := ParseSemVer(Version)
	if err != nil {
		return fmt.Errorf("parse current version %q: %w", Version, err)
	}
	required, err := ParseSemVer(target)
	if err != nil {
		return err
	}

	if required.Major != current.Major {
		return fmt.Errorf("unsupported major version %d (current major is %d)", required.Major, current.Major)
	}
	if current.Compare(required) < 0 {
		return fmt.Errorf("requires musync >= %s (current %s)", required, current)
	}
	return nil
}

// String is the line printed by "musync version".
func String() string {
	return fmt.Sprintf("musync %s (%s)", Version, Commit)
}
