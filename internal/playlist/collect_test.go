package playlist

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMeta struct {
	fail map[string]bool
}

func (f fakeMeta) Meta(_ context.Context, uri string) (Track, error) {
	if f.fail[uri] {
		return Track{}, errors.New("no tags")
	}
	return Track{URI: uri, Title: "T:" + filepath.Base(uri), Artists: []string{"Artist"}}, nil
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, nil, 0o600))
}

func TestIsAudioFile(t *testing.T) {
	for _, p := range []string{"a.mp3", "b.FLAC", "c.ogg", "d.wav", "e.m4a", "f.opus", "g.oga"} {
		assert.True(t, IsAudioFile(p), p)
	}
	for _, p := range []string{"cover.jpg", "notes.txt", "noext", "h.wma"} {
		assert.False(t, IsAudioFile(p), p)
	}
}

func TestFromDir_RecursiveLexicalOrder(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b.mp3"))
	touch(t, filepath.Join(dir, "a.flac"))
	touch(t, filepath.Join(dir, "sub", "c.ogg"))
	touch(t, filepath.Join(dir, "cover.jpg"))
	touch(t, filepath.Join(dir, "sub", "deeper", "d.wav"))

	p, err := FromDir(context.Background(), dir, fakeMeta{})
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "a.flac"),
		filepath.Join(dir, "b.mp3"),
		filepath.Join(dir, "sub", "c.ogg"),
		filepath.Join(dir, "sub", "deeper", "d.wav"),
	}, p.URIs())
	assert.False(t, p.Loaded())

	tr, _ := p.Track(0)
	assert.Equal(t, "T:a.flac", tr.Title)
}

func TestFromDir_FallsBackToFileName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Song Name.mp3")
	touch(t, path)

	p, err := FromDir(context.Background(), dir, fakeMeta{fail: map[string]bool{path: true}})
	require.NoError(t, err)

	tr, _ := p.Track(0)
	assert.Equal(t, "Song Name", tr.Title)
	assert.Empty(t, tr.Artists)
}

func TestFromDir_NilMetaReader(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "x.mp3"))

	p, err := FromDir(context.Background(), dir, nil)
	require.NoError(t, err)
	tr, _ := p.Track(0)
	assert.Equal(t, "x", tr.Title)
}

func TestFromDir_NoTracks(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "readme.txt"))

	_, err := FromDir(context.Background(), dir, fakeMeta{})
	assert.ErrorIs(t, err, ErrNoTracks)
}

func TestFromDir_Missing(t *testing.T) {
	_, err := FromDir(context.Background(), filepath.Join(t.TempDir(), "nope"), fakeMeta{})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFromDir_NotADirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.mp3")
	touch(t, path)

	_, err := FromDir(context.Background(), path, fakeMeta{})
	assert.Error(t, err)
}

func TestFromDir_Cancelled(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.mp3"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := FromDir(ctx, dir, fakeMeta{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFromURIs_KeepsOrder(t *testing.T) {
	uris := []string{"/z.mp3", "/a.mp3"}

	p, err := FromURIs(context.Background(), uris, fakeMeta{})
	require.NoError(t, err)
	assert.Equal(t, uris, p.URIs())
}

func TestFromURIs_Empty(t *testing.T) {
	_, err := FromURIs(context.Background(), nil, fakeMeta{})
	assert.ErrorIs(t, err, ErrNoTracks)
}
