//go:build linux

package mpris

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/quarckster/go-mpris-server/pkg/types"

	"github.com/llehouerou/reyvr/internal/playback"
	"github.com/llehouerou/reyvr/internal/player"
	"github.com/llehouerou/reyvr/internal/playlist"
	"github.com/llehouerou/reyvr/internal/ringbuf"
)

type fakeControls struct {
	calls []string
	seek  time.Duration
	vol   float64
}

func (f *fakeControls) Play() error     { f.calls = append(f.calls, "play"); return nil }
func (f *fakeControls) Pause() error    { f.calls = append(f.calls, "pause"); return nil }
func (f *fakeControls) Stop() error     { f.calls = append(f.calls, "stop"); return nil }
func (f *fakeControls) Next() error     { f.calls = append(f.calls, "next"); return nil }
func (f *fakeControls) Previous() error { f.calls = append(f.calls, "previous"); return nil }

func (f *fakeControls) Seek(pos time.Duration) error {
	f.calls = append(f.calls, "seek")
	f.seek = pos
	return nil
}

func (f *fakeControls) SetVolume(v float64) error {
	f.calls = append(f.calls, "volume")
	f.vol = v
	return nil
}

type fakeStatus struct {
	pl    *playlist.Playlist
	vol   float64
	pos   time.Duration
	state player.State
}

func (f *fakeStatus) Playlist() *playlist.Playlist { return f.pl.Clone() }
func (f *fakeStatus) Volume() float64              { return f.vol }
func (f *fakeStatus) Position() time.Duration      { return f.pos }
func (f *fakeStatus) State() player.State          { return f.state }

func loadedPlaylist(index int, uris ...string) *playlist.Playlist {
	tracks := make([]playlist.Track, len(uris))
	for i, u := range uris {
		tracks[i] = playlist.NewTrack(u)
	}
	p := playlist.New(tracks...)
	p.MarkLoaded(index)
	return p
}

func TestPlayPause_TogglesOnState(t *testing.T) {
	ctl := &fakeControls{}
	st := &fakeStatus{pl: playlist.New(), state: player.Playing}
	p := &bridge{ctl: ctl, st: st}

	_ = p.PlayPause()
	st.state = player.Paused
	_ = p.PlayPause()
	st.state = player.Stopped
	_ = p.PlayPause()

	want := []string{"pause", "play", "play"}
	if len(ctl.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", ctl.calls, want)
	}
	for i := range want {
		if ctl.calls[i] != want[i] {
			t.Errorf("calls[%d] = %q, want %q", i, ctl.calls[i], want[i])
		}
	}
}

func TestSeek_RelativeToPosition(t *testing.T) {
	ctl := &fakeControls{}
	st := &fakeStatus{pl: playlist.New(), pos: 30 * time.Second}
	p := &bridge{ctl: ctl, st: st}

	_ = p.Seek(types.Microseconds((10 * time.Second).Microseconds()))
	if ctl.seek != 40*time.Second {
		t.Errorf("seek = %v, want 40s", ctl.seek)
	}

	_ = p.Seek(types.Microseconds((-60 * time.Second).Microseconds()))
	if ctl.seek != 0 {
		t.Errorf("seek = %v, want clamped to 0", ctl.seek)
	}

	_ = p.SetPosition("", types.Microseconds((5 * time.Second).Microseconds()))
	if ctl.seek != 5*time.Second {
		t.Errorf("SetPosition seek = %v, want 5s", ctl.seek)
	}
}

func TestVolume_RoundTrip(t *testing.T) {
	ctl := &fakeControls{}
	st := &fakeStatus{pl: playlist.New(), vol: 0.3}
	p := &bridge{ctl: ctl, st: st}

	if v, _ := p.Volume(); v != 0.3 {
		t.Errorf("Volume() = %v, want 0.3", v)
	}
	_ = p.SetVolume(0.7)
	if ctl.vol != 0.7 {
		t.Errorf("SetVolume sent %v, want 0.7", ctl.vol)
	}
}

func TestMetadata(t *testing.T) {
	dir := t.TempDir()
	cover := filepath.Join(dir, "folder.jpg")
	if err := os.WriteFile(cover, []byte{}, 0o600); err != nil {
		t.Fatal(err)
	}

	st := &fakeStatus{pl: loadedPlaylist(1, filepath.Join(dir, "a.mp3"), filepath.Join(dir, "b.mp3"))}
	p := &bridge{ctl: &fakeControls{}, st: st}

	meta, err := p.Metadata()
	if err != nil {
		t.Fatalf("Metadata() error = %v", err)
	}
	if meta.Title != "b" {
		t.Errorf("Title = %q, want b", meta.Title)
	}
	if meta.ArtUrl != "file://"+cover {
		t.Errorf("ArtUrl = %q, want file://%s", meta.ArtUrl, cover)
	}
	if !strings.HasPrefix(string(meta.TrackId), "/org/mpris/MediaPlayer2/Track/") {
		t.Errorf("TrackId = %q", meta.TrackId)
	}
}

func TestMetadata_Unloaded(t *testing.T) {
	p := &bridge{ctl: &fakeControls{}, st: &fakeStatus{pl: playlist.New()}}

	meta, err := p.Metadata()
	if err != nil {
		t.Fatalf("Metadata() error = %v", err)
	}
	if meta.Title != "" {
		t.Errorf("Title = %q, want empty", meta.Title)
	}
}

func TestCapabilities(t *testing.T) {
	st := &fakeStatus{pl: loadedPlaylist(0, "/a.mp3", "/b.mp3")}
	p := &bridge{ctl: &fakeControls{}, st: st}

	if ok, _ := p.CanGoNext(); !ok {
		t.Error("CanGoNext() = false at first of two tracks")
	}
	if ok, _ := p.CanGoPrevious(); ok {
		t.Error("CanGoPrevious() = true at first track")
	}
	if ok, _ := p.CanPlay(); !ok {
		t.Error("CanPlay() = false on loaded playlist")
	}

	st.pl = playlist.New()
	if ok, _ := p.CanPlay(); ok {
		t.Error("CanPlay() = true on empty playlist")
	}
}

func TestPlaybackStatus(t *testing.T) {
	tests := map[player.State]types.PlaybackStatus{
		player.Playing: types.PlaybackStatusPlaying,
		player.Paused:  types.PlaybackStatusPaused,
		player.Stopped: types.PlaybackStatusStopped,
	}
	for s, want := range tests {
		if got := playbackStatus(s); got != want {
			t.Errorf("playbackStatus(%v) = %v, want %v", s, got, want)
		}
	}
}

func TestFormatTrackID_Stable(t *testing.T) {
	a := formatTrackID("/music/a.mp3")
	if a != formatTrackID("/music/a.mp3") {
		t.Error("formatTrackID is not deterministic")
	}
	if a == formatTrackID("/music/b.mp3") {
		t.Error("formatTrackID collides for different URIs")
	}
}

type fakeSignaller struct {
	calls []string
	err   error
}

func (f *fakeSignaller) OnPlayPause() error { f.calls = append(f.calls, "playpause"); return f.err }
func (f *fakeSignaller) OnTitle() error     { f.calls = append(f.calls, "title"); return f.err }

func TestRun_SignalsPropertyChanges(t *testing.T) {
	sig := &fakeSignaller{}
	a := &Adapter{signal: sig}
	tx, rx := ringbuf.New[playback.Response](8)

	for _, r := range []playback.Response{
		playback.StateChanged{State: player.Playing},
		playback.Position{Elapsed: time.Second},
		playback.StreamStart{},
		playback.Metadata{},
		playback.Info{Message: "x"},
	} {
		if err := tx.Send(r); err != nil {
			t.Fatal(err)
		}
	}
	tx.Close()

	if err := a.Run(context.Background(), rx); err != nil {
		t.Fatalf("Run() = %v, want nil after close", err)
	}
	want := []string{"playpause", "title", "title"}
	if strings.Join(sig.calls, ",") != strings.Join(want, ",") {
		t.Errorf("signals = %v, want %v", sig.calls, want)
	}
}

func TestRun_SignalErrorsDoNotStop(t *testing.T) {
	sig := &fakeSignaller{err: errors.New("bus gone")}
	a := &Adapter{signal: sig}
	tx, rx := ringbuf.New[playback.Response](8)
	_ = tx.Send(playback.StateChanged{})
	_ = tx.Send(playback.StateChanged{})
	tx.Close()

	_ = a.Run(context.Background(), rx)
	if len(sig.calls) != 2 {
		t.Errorf("signals = %v, want two attempts", sig.calls)
	}
}

func TestRun_Cancelled(t *testing.T) {
	a := &Adapter{signal: &fakeSignaller{}}
	_, rx := ringbuf.New[playback.Response](1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := a.Run(ctx, rx); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() = %v, want context.Canceled", err)
	}
}
