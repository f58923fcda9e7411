//go:build linux

package mpris

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/events"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/quarckster/go-mpris-server/pkg/types"
	"github.com/rs/zerolog/log"

	"github.com/llehouerou/reyvr/internal/playback"
	"github.com/llehouerou/reyvr/internal/player"
	"github.com/llehouerou/reyvr/internal/ringbuf"
)

const busName = "reyvr"

// signaller emits PropertiesChanged for the player interface.
type signaller interface {
	OnPlayPause() error
	OnTitle() error
}

// Adapter publishes org.mpris.MediaPlayer2.reyvr on the session bus.
type Adapter struct {
	srv    *server.Server
	signal signaller
}

// New starts serving. Method calls go to ctl; properties are read from st.
func New(ctl Controls, st Status) (*Adapter, error) {
	b := &bridge{ctl: ctl, st: st}
	srv := server.NewServer(busName, b, b)
	a := &Adapter{srv: srv, signal: events.NewEventHandler(srv).Player}

	go func() {
		if err := srv.Listen(); err != nil {
			log.Warn().Err(err).Msg("mpris server stopped")
		}
	}()
	return a, nil
}

// Run turns controller responses into property-change signals until ctx is
// done or rx is closed.
func (a *Adapter) Run(ctx context.Context, rx *ringbuf.Receiver[playback.Response]) error {
	for {
		r, err := rx.Recv(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return nil
		}
		if err := a.forward(r); err != nil {
			log.Debug().Err(err).Msg("mpris signal failed")
		}
	}
}

func (a *Adapter) forward(r playback.Response) error {
	switch r.(type) {
	case playback.StateChanged:
		return a.signal.OnPlayPause()
	case playback.Metadata, playback.StreamStart:
		return a.signal.OnTitle()
	}
	return nil
}

func (a *Adapter) Close() error {
	return a.srv.Stop()
}

// bridge serves both the root and the player interface.
type bridge struct {
	ctl Controls
	st  Status
}

// Root interface. The terminal owns the window and the process lifetime.

func (*bridge) Raise() error                { return nil }
func (*bridge) Quit() error                 { return nil }
func (*bridge) CanQuit() (bool, error)      { return false, nil }
func (*bridge) CanRaise() (bool, error)     { return false, nil }
func (*bridge) HasTrackList() (bool, error) { return false, nil }
func (*bridge) Identity() (string, error)   { return busName, nil }

//nolint:revive // name fixed by the interface
func (*bridge) SupportedUriSchemes() ([]string, error) { return []string{"file"}, nil }

func (*bridge) SupportedMimeTypes() ([]string, error) {
	return []string{"audio/mpeg", "audio/flac", "audio/ogg", "audio/wav"}, nil
}

// Player interface.

func (b *bridge) Next() error     { return b.ctl.Next() }
func (b *bridge) Previous() error { return b.ctl.Previous() }
func (b *bridge) Pause() error    { return b.ctl.Pause() }
func (b *bridge) Stop() error     { return b.ctl.Stop() }
func (b *bridge) Play() error     { return b.ctl.Play() }

func (b *bridge) PlayPause() error {
	if b.st.State() == player.Playing {
		return b.ctl.Pause()
	}
	return b.ctl.Play()
}

// Seek is relative to the current position.
func (b *bridge) Seek(offset types.Microseconds) error {
	return b.ctl.Seek(max(b.st.Position()+micros(offset), 0))
}

func (b *bridge) SetPosition(_ string, position types.Microseconds) error {
	return b.ctl.Seek(micros(position))
}

//nolint:revive // name fixed by the interface
func (*bridge) OpenUri(string) error { return nil }

func (b *bridge) PlaybackStatus() (types.PlaybackStatus, error) {
	return playbackStatus(b.st.State()), nil
}

func (*bridge) Rate() (float64, error)        { return 1, nil }
func (*bridge) SetRate(float64) error         { return nil }
func (*bridge) MinimumRate() (float64, error) { return 1, nil }
func (*bridge) MaximumRate() (float64, error) { return 1, nil }

func (b *bridge) Metadata() (types.Metadata, error) {
	t, ok := b.st.Playlist().Current()
	if !ok {
		return types.Metadata{}, nil
	}
	meta := types.Metadata{
		TrackId: dbus.ObjectPath(formatTrackID(t.URI)),
		Length:  types.Microseconds(t.Duration.Microseconds()),
		Title:   t.Title,
		Artist:  t.Artists,
		Album:   t.Album,
	}
	if art := player.FindAlbumArt(t.Path()); art != "" {
		meta.ArtUrl = "file://" + art
	}
	return meta, nil
}

func (b *bridge) Volume() (float64, error)   { return b.st.Volume(), nil }
func (b *bridge) SetVolume(v float64) error  { return b.ctl.SetVolume(v) }
func (b *bridge) Position() (int64, error)   { return b.st.Position().Microseconds(), nil }
func (b *bridge) CanGoNext() (bool, error)   { return b.st.Playlist().HasNext(), nil }
func (b *bridge) CanGoPrevious() (bool, error) {
	return b.st.Playlist().HasPrevious(), nil
}

func (b *bridge) CanPlay() (bool, error) {
	p := b.st.Playlist()
	return p.Loaded() && !p.IsEmpty(), nil
}

// Pause and Seek are refused by the controller when nothing plays, which
// MPRIS clients handle; advertise them unconditionally.
func (*bridge) CanPause() (bool, error)   { return true, nil }
func (*bridge) CanSeek() (bool, error)    { return true, nil }
func (*bridge) CanControl() (bool, error) { return true, nil }

func micros(us types.Microseconds) time.Duration {
	return time.Duration(us) * time.Microsecond
}

func playbackStatus(s player.State) types.PlaybackStatus {
	switch s {
	case player.Playing:
		return types.PlaybackStatusPlaying
	case player.Paused:
		return types.PlaybackStatusPaused
	}
	return types.PlaybackStatusStopped
}

// formatTrackID derives a stable D-Bus object path from the track URI.
func formatTrackID(uri string) string {
	h := fnv.New64a()
	h.Write([]byte(uri))
	return fmt.Sprintf("/org/mpris/MediaPlayer2/Track/%x", h.Sum64())
}
