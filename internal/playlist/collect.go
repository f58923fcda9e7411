package playlist

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNoTracks is returned when a folder holds no playable files.
var ErrNoTracks = errors.New("no playable tracks found")

// MetaReader reads track metadata for a URI.
type MetaReader interface {
	Meta(ctx context.Context, uri string) (Track, error)
}

var audioExtensions = map[string]bool{
	".mp3":  true,
	".flac": true,
	".ogg":  true,
	".oga":  true,
	".opus": true,
	".m4a":  true,
	".wav":  true,
}

// IsAudioFile reports whether path has a supported audio extension.
func IsAudioFile(path string) bool {
	return audioExtensions[strings.ToLower(filepath.Ext(path))]
}

// FromPath builds a track for path using meta, falling back to the file
// name when tags cannot be read.
func FromPath(ctx context.Context, meta MetaReader, path string) Track {
	if meta == nil {
		return NewTrack(path)
	}
	t, err := meta.Meta(ctx, path)
	if err != nil {
		return NewTrack(path)
	}
	t.URI = path
	if t.Title == "" {
		t.Title = titleFromURI(path)
	}
	return t
}

// FromDir collects all audio files below dir, recursively, in lexical path
// order. Unreadable entries are skipped.
func FromDir(ctx context.Context, dir string, meta MetaReader) (*Playlist, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, &os.PathError{Op: "open", Path: dir, Err: errors.New("not a directory")}
	}

	var paths []string
	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil //nolint:nilerr // intentionally skipping errors
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !IsAudioFile(path) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, ErrNoTracks
	}

	sort.Strings(paths)

	tracks := make([]Track, 0, len(paths))
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tracks = append(tracks, FromPath(ctx, meta, p))
	}
	return New(tracks...), nil
}

// FromURIs builds a playlist from stored URIs, keeping their order.
func FromURIs(ctx context.Context, uris []string, meta MetaReader) (*Playlist, error) {
	if len(uris) == 0 {
		return nil, ErrNoTracks
	}
	tracks := make([]Track, 0, len(uris))
	for _, uri := range uris {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tracks = append(tracks, FromPath(ctx, meta, uri))
	}
	return New(tracks...), nil
}
