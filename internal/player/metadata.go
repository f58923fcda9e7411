package player

import (
	"bytes"
	"context"
	"image"
	_ "image/jpeg" // cover art decoders
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/llehouerou/reyvr/internal/playlist"
)

// coverNames lists common album art filenames in priority order.
var coverNames = []string{
	"cover.jpg", "cover.png", "cover.jpeg",
	"folder.jpg", "folder.png", "folder.jpeg",
	"album.jpg", "album.png", "album.jpeg",
	"front.jpg", "front.png", "front.jpeg",
}

// TagReader reads tags only. It is cheap enough to run over a whole folder.
type TagReader struct{}

// Meta implements playlist.MetaReader.
func (TagReader) Meta(_ context.Context, uri string) (playlist.Track, error) {
	t, _, err := readTags(uri, false)
	return t, err
}

// ReadMeta reads tags, duration and cover art for uri. Cover art comes from
// the embedded picture, else from an image file next to the track.
func ReadMeta(_ context.Context, uri string) (playlist.Track, error) {
	t, pic, err := readTags(uri, true)
	if err != nil {
		t = playlist.NewTrack(uri)
	}

	d, derr := probeDuration(uri)
	if derr != nil {
		d, derr = taglibDuration(playlist.PathFromURI(uri))
	}
	if derr == nil {
		t.Duration = d
	} else if err != nil {
		return t, err
	}

	if pic == nil {
		if p := FindAlbumArt(playlist.PathFromURI(uri)); p != "" {
			pic, _ = os.ReadFile(p)
		}
	}
	if pic != nil {
		if img, _, derr := image.Decode(bytes.NewReader(pic)); derr == nil {
			t.Thumbnail = playlist.NewThumbnail(img, playlist.DefaultThumbnailSize)
		}
	}
	return t, nil
}

func readTags(uri string, withPicture bool) (playlist.Track, []byte, error) {
	tf, err := readTagFields(playlist.PathFromURI(uri), withPicture)
	if err != nil {
		return playlist.Track{}, nil, err
	}

	t := playlist.NewTrack(uri)
	if title := strings.TrimSpace(tf.title); title != "" {
		t.Title = title
	}
	t.Album = strings.TrimSpace(tf.album)
	t.Artists = splitArtists(tf.artist)
	if len(t.Artists) == 0 {
		t.Artists = splitArtists(tf.albumArtist)
	}
	return t, tf.picture, nil
}

// splitArtists splits a multi-valued artist tag.
func splitArtists(s string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ';' || r == '\x00' }) {
		if a := strings.TrimSpace(part); a != "" {
			out = append(out, a)
		}
	}
	return out
}

// FindAlbumArt looks for album art in the same directory as the track.
// Returns the path to the art file, or empty string if not found.
func FindAlbumArt(trackPath string) string {
	dir := filepath.Dir(trackPath)
	for _, name := range coverNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
