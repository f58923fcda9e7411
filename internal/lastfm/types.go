package lastfm

import "time"

// Track is one play as Last.fm sees it.
type Track struct {
	Artist      string
	Title       string
	Album       string
	AlbumArtist string
	Duration    time.Duration
	StartedAt   time.Time
}

func (t Track) params() map[string]any {
	p := map[string]any{
		"artist": t.Artist,
		"track":  t.Title,
	}
	if t.Album != "" {
		p["album"] = t.Album
	}
	if t.AlbumArtist != "" && t.AlbumArtist != t.Artist {
		p["albumArtist"] = t.AlbumArtist
	}
	if t.Duration > 0 {
		p["duration"] = int(t.Duration.Seconds())
	}
	return p
}
