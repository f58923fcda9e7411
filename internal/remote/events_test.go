package remote

import (
	"encoding/json"
	"errors"
	"image"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/reyvr/internal/playback"
	"github.com/llehouerou/reyvr/internal/player"
	"github.com/llehouerou/reyvr/internal/playlist"
	"github.com/llehouerou/reyvr/internal/playlists"
)

type fakeCommander struct {
	calls []string
	seek  time.Duration
	vol   float64
	index int
	path  string
	saved []playlists.SavedPlaylist
}

func (f *fakeCommander) rec(name string) error { f.calls = append(f.calls, name); return nil }

func (f *fakeCommander) Play() error               { return f.rec("play") }
func (f *fakeCommander) Pause() error              { return f.rec("pause") }
func (f *fakeCommander) Stop() error               { return f.rec("stop") }
func (f *fakeCommander) Next() error               { return f.rec("next") }
func (f *fakeCommander) Previous() error           { return f.rec("previous") }
func (f *fakeCommander) GetTracks() error          { return f.rec("tracks") }
func (f *fakeCommander) GetMetadata() error        { return f.rec("metadata") }
func (f *fakeCommander) LoadSavedPlaylists() error { return f.rec("loadSaved") }
func (f *fakeCommander) WriteSavedPlaylists() error {
	return f.rec("writeSaved")
}

func (f *fakeCommander) Seek(pos time.Duration) error {
	f.seek = pos
	return f.rec("seek")
}

func (f *fakeCommander) SetVolume(v float64) error {
	f.vol = v
	return f.rec("volume")
}

func (f *fakeCommander) PlayByID(i int) error {
	f.index = i
	return f.rec("playById")
}

func (f *fakeCommander) Load(path string) error {
	f.path = path
	return f.rec("load")
}

func (f *fakeCommander) AddSavedPlaylist(p playlists.SavedPlaylist) error {
	f.saved = append(f.saved, p)
	return f.rec("addSaved")
}

func (f *fakeCommander) PlaySavedPlaylist(name string) error {
	f.path = name
	return f.rec("playSaved")
}

type fakeStatus struct {
	pl    *playlist.Playlist
	state player.State
}

func (f *fakeStatus) Playlist() *playlist.Playlist { return f.pl.Clone() }
func (f *fakeStatus) Volume() float64              { return 0.42 }
func (f *fakeStatus) Position() time.Duration      { return 12 * time.Second }
func (f *fakeStatus) State() player.State          { return f.state }

func newStatus() *fakeStatus {
	p := playlist.New(playlist.NewTrack("/m/a.mp3"), playlist.NewTrack("/m/b.mp3"))
	p.MarkLoaded(1)
	return &fakeStatus{pl: p, state: player.Playing}
}

func TestDispatch_Transport(t *testing.T) {
	for event, want := range map[string]string{
		"play": "play", "pause": "pause", "stop": "stop", "next": "next", "prev": "previous",
		"getTracks": "tracks", "getMetadata": "metadata", "getSavedPlaylists": "loadSaved",
	} {
		ctl := &fakeCommander{}
		require.NoError(t, dispatch(ctl, newStatus(), event, nil), event)
		assert.Equal(t, []string{want}, ctl.calls, event)
	}
}

func TestDispatch_Arguments(t *testing.T) {
	ctl := &fakeCommander{}
	st := newStatus()

	require.NoError(t, dispatch(ctl, st, "seek", []any{float64(90)}))
	assert.Equal(t, 90*time.Second, ctl.seek)

	require.NoError(t, dispatch(ctl, st, "seek", []any{map[string]any{"value": 1.5}}))
	assert.Equal(t, 1500*time.Millisecond, ctl.seek)

	require.NoError(t, dispatch(ctl, st, "volume", []any{float64(25)}))
	assert.InDelta(t, 0.25, ctl.vol, 1e-9)

	require.NoError(t, dispatch(ctl, st, "playById", []any{float64(3)}))
	assert.Equal(t, 3, ctl.index)

	require.NoError(t, dispatch(ctl, st, "load", []any{"/music/jazz"}))
	assert.Equal(t, "/music/jazz", ctl.path)

	require.NoError(t, dispatch(ctl, st, "load", []any{map[string]any{"path": "/music/rock"}}))
	assert.Equal(t, "/music/rock", ctl.path)

	require.NoError(t, dispatch(ctl, st, "playSavedPlaylist", []any{map[string]any{"name": "mix"}}))
	assert.Equal(t, "mix", ctl.path)
}

func TestDispatch_SavePlaylistUsesCurrentTracks(t *testing.T) {
	ctl := &fakeCommander{}

	require.NoError(t, dispatch(ctl, newStatus(), "savePlaylist", []any{map[string]any{"name": "now"}}))

	assert.Equal(t, []string{"addSaved", "writeSaved"}, ctl.calls)
	require.Len(t, ctl.saved, 1)
	assert.Equal(t, playlists.SavedPlaylist{Name: "now", URIs: []string{"/m/a.mp3", "/m/b.mp3"}}, ctl.saved[0])
}

func TestDispatch_Errors(t *testing.T) {
	ctl := &fakeCommander{}
	st := newStatus()

	for _, event := range []string{"seek", "volume", "playById", "load", "playSavedPlaylist"} {
		err := dispatch(ctl, st, event, nil)
		assert.True(t, errors.Is(err, errMissingArg), event)
	}
	assert.ErrorIs(t, dispatch(ctl, st, "savePlaylist", []any{map[string]any{"name": ""}}), errMissingArg)
	assert.ErrorIs(t, dispatch(ctl, st, "dance", nil), errUnknown)
	assert.ErrorIs(t, dispatch(ctl, st, "seek", []any{"soon"}), errMissingArg)
	assert.Empty(t, ctl.calls)
}

func TestOutbound(t *testing.T) {
	st := newStatus()

	event, payload, ok := outbound(playback.StateChanged{State: player.Paused}, st)
	require.True(t, ok)
	assert.Equal(t, "pushState", event)
	assert.Equal(t, StatePayload{Status: "pause", Seek: 12, Volume: 42, Index: 1}, payload)

	event, payload, ok = outbound(playback.Position{Elapsed: 3 * time.Second}, st)
	require.True(t, ok)
	assert.Equal(t, "pushPosition", event)
	assert.Equal(t, map[string]float64{"seek": 3}, payload)

	track := playlist.Track{URI: "/m/a.mp3", Title: "A", Artists: []string{"X", "Y"}, Duration: time.Minute}
	event, payload, ok = outbound(playback.Tracks{Tracks: []playlist.Track{track}}, st)
	require.True(t, ok)
	assert.Equal(t, "pushTracks", event)
	assert.Equal(t, []TrackPayload{{URI: "/m/a.mp3", Title: "A", Artist: "X, Y", Duration: 60}}, payload)

	event, payload, ok = outbound(playback.Error{Message: "boom"}, st)
	require.True(t, ok)
	assert.Equal(t, "pushToast", event)
	assert.Equal(t, ToastPayload{Type: "error", Message: "boom"}, payload)

	event, _, ok = outbound(playback.EndOfStream{}, st)
	require.True(t, ok)
	assert.Equal(t, "pushEndOfStream", event)

	saved := playlists.SavedPlaylists{Playlists: []playlists.SavedPlaylist{{Name: "mix", URIs: []string{"/a", "/b"}}}}
	event, payload, ok = outbound(playback.SavedPlaylists{Playlists: saved}, st)
	require.True(t, ok)
	assert.Equal(t, "pushSavedPlaylists", event)
	assert.Equal(t, []SavedPlaylistPayload{{Name: "mix", Tracks: 2}}, payload)
}

func TestOutbound_Thumbnail(t *testing.T) {
	th := playlist.NewThumbnail(image.NewRGBA(image.Rect(0, 0, 2, 2)), 2)

	event, payload, ok := outbound(playback.Thumbnail{Image: th}, newStatus())
	require.True(t, ok)
	assert.Equal(t, "pushThumbnail", event)
	assert.True(t, strings.HasPrefix(payload.(map[string]string)["image"], "data:image/png;base64,"))

	_, _, ok = outbound(playback.Thumbnail{}, newStatus())
	assert.False(t, ok)
}

func TestHealth(t *testing.T) {
	s := &Server{st: newStatus()}
	rec := httptest.NewRecorder()

	s.health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, player.Playing.String(), body["state"])
	assert.InDelta(t, 2, body["tracks"], 0)
}
