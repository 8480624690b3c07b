package meta

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
)

var (
	ErrUnsupported = errors.New("unsupported file extension")
	ErrNoMetadata  = errors.New("file contains no metadata")
)

// Reader extracts a Record from a file.
type Reader interface {
	Read(path string) (Record, error)
}

// TagReader reads ID3, Vorbis comment and MP4 tags.
type TagReader struct{}

var supportedExts = map[string]struct{}{
	"flac": {},
	"ogg":  {},
	"mp3":  {},
	"m4a":  {},
}

func (TagReader) Read(path string) (Record, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if _, ok := supportedExts[ext]; !ok {
		return Record{}, fmt.Errorf("%w %q: %s", ErrUnsupported, ext, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return Record{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		if errors.Is(err, tag.ErrNoTagsFound) {
			return Record{}, fmt.Errorf("%w: %s", ErrNoMetadata, path)
		}
		return Record{}, fmt.Errorf("read tags %s: %w", path, err)
	}

	track, _ := m.Track()

	return Record{
		Artist: strings.TrimSpace(firstNonEmpty(m.Artist(), m.AlbumArtist())),
		Album:  strings.TrimSpace(m.Album()),
		Title:  strings.TrimSpace(m.Title()),
		Track:  track,
		Year:   m.Year(),
		Ext:    ext,
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
