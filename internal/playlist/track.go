package playlist

import (
	"path/filepath"
	"strings"
	"time"
)

// Track represents a single playable item. A Track is treated as immutable
// once built; use Clone to obtain an independent copy.
type Track struct {
	URI       string // identity: file path or file:// URI
	Title     string
	Album     string
	Artists   []string
	Duration  time.Duration
	Thumbnail *Thumbnail // nil when the source has no cover art
}

// NewTrack returns a track for uri titled after its file name.
func NewTrack(uri string) Track {
	return Track{
		URI:   uri,
		Title: titleFromURI(uri),
	}
}

// Artist returns the artists joined for display.
func (t Track) Artist() string {
	return strings.Join(t.Artists, ", ")
}

// Clone returns a deep copy of the track.
func (t Track) Clone() Track {
	c := t
	if t.Artists != nil {
		c.Artists = make([]string, len(t.Artists))
		copy(c.Artists, t.Artists)
	}
	if t.Thumbnail != nil {
		c.Thumbnail = t.Thumbnail.Clone()
	}
	return c
}

// Path returns the filesystem path for the track URI.
func (t Track) Path() string {
	return PathFromURI(t.URI)
}

// PathFromURI strips a file:// scheme if present.
func PathFromURI(uri string) string {
	return strings.TrimPrefix(uri, "file://")
}

func titleFromURI(uri string) string {
	base := filepath.Base(PathFromURI(uri))
	return strings.TrimSuffix(base, filepath.Ext(base))
}
