// Package meta holds the metadata record a target path is derived from and
// reads it from audio file tags.
package meta

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Record is the metadata of one media file. Empty strings and zero numbers
// mean the value is unknown.
type Record struct {
	Artist string
	Album  string
	Title  string
	Track  int
	Year   int
	Ext    string // source extension, lower-case without dot
}

var ErrUnknownKey = errors.New("unknown metadata key")

// Missing lists the fields a target path needs but the record lacks.
func (r Record) Missing() []string {
	var missing []string
	if strings.TrimSpace(r.Artist) == "" {
		missing = append(missing, "artist")
	}
	if strings.TrimSpace(r.Album) == "" {
		missing = append(missing, "album")
	}
	if strings.TrimSpace(r.Title) == "" {
		missing = append(missing, "title")
	}
	if r.Track <= 0 {
		missing = append(missing, "track")
	}
	return missing
}

// ParseTrack accepts "7", "07" and "7/12".
func ParseTrack(raw string) (int, error) {
	value := strings.TrimSpace(raw)
	if i := strings.IndexByte(value, '/'); i >= 0 {
		value = strings.TrimSpace(value[:i])
	}
	if value == "" {
		return 0, fmt.Errorf("track number is empty")
	}

	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("cannot use track number %q", raw)
	}
	return n, nil
}

// Overrides replace tag values with ones given on the command line.
type Overrides map[string]string

// ParseOverrides reads "key=value" pairs.
func ParseOverrides(pairs []string) (Overrides, error) {
	out := make(Overrides, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.ToLower(strings.TrimSpace(key))
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid modify argument %q (expected key=value)", pair)
		}
		switch key {
		case "artist", "album", "title", "track", "year":
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnknownKey, key)
		}
		out[key] = value
	}
	return out, nil
}

// Apply returns r with every non-empty override set.
func (o Overrides) Apply(r Record) (Record, error) {
	for key, value := range o {
		if strings.TrimSpace(value) == "" {
			continue
		}
		switch key {
		case "artist":
			r.Artist = value
		case "album":
			r.Album = value
		case "title":
			r.Title = value
		case "track":
			n, err := ParseTrack(value)
			if err != nil {
				return Record{}, err
			}
			r.Track = n
		case "year":
			n, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				return Record{}, fmt.Errorf("cannot use year %q", value)
			}
			r.Year = n
		default:
			return Record{}, fmt.Errorf("%w: %s", ErrUnknownKey, key)
		}
	}
	return r, nil
}
