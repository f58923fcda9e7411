package playback

import (
	"errors"
	"time"

	"github.com/llehouerou/reyvr/internal/playlists"
	"github.com/llehouerou/reyvr/internal/ringbuf"
)

// ErrControllerGone is returned by Handle methods once the command channel
// is closed. Frontends treat it as fatal.
var ErrControllerGone = errors.New("playback controller gone")

// Handle is the send side of a Controller. Every method enqueues without
// blocking; when the queue is full the oldest pending command is dropped.
type Handle struct {
	tx *ringbuf.Sender[Command]
	rx *ringbuf.Receiver[Response]
}

// Send enqueues cmd.
func (h *Handle) Send(cmd Command) error {
	if err := h.tx.Send(cmd); err != nil {
		return ErrControllerGone
	}
	return nil
}

func (h *Handle) Play() error     { return h.Send(Play{}) }
func (h *Handle) Pause() error    { return h.Send(Pause{}) }
func (h *Handle) Stop() error     { return h.Send(Stop{}) }
func (h *Handle) Next() error     { return h.Send(Next{}) }
func (h *Handle) Previous() error { return h.Send(Previous{}) }

// SetVolume requests a volume in [0, 1].
func (h *Handle) SetVolume(v float64) error { return h.Send(SetVolume{Volume: v}) }

// Seek requests an absolute position in the current track.
func (h *Handle) Seek(pos time.Duration) error { return h.Send(Seek{Position: pos}) }

// PlayByID requests the track at index.
func (h *Handle) PlayByID(index int) error { return h.Send(PlayByID{Index: index}) }

// Load requests the audio files under path as the new playlist.
func (h *Handle) Load(path string) error { return h.Send(LoadFromFolder{Path: path}) }

func (h *Handle) LoadFolder() error          { return h.Send(LoadFolder{}) }
func (h *Handle) GetMetadata() error         { return h.Send(GetMetadata{}) }
func (h *Handle) GetTracks() error           { return h.Send(GetTracks{}) }
func (h *Handle) LoadSavedPlaylists() error  { return h.Send(LoadSavedPlaylists{}) }
func (h *Handle) WriteSavedPlaylists() error { return h.Send(WriteSavedPlaylists{}) }

// AddSavedPlaylist adds or replaces p in the controller's saved playlists.
func (h *Handle) AddSavedPlaylist(p playlists.SavedPlaylist) error {
	return h.Send(AddSavedPlaylist{Playlist: p.Clone()})
}

// PlaySavedPlaylist requests the saved playlist called name.
func (h *Handle) PlaySavedPlaylist(name string) error {
	return h.Send(PlaySavedPlaylist{Name: name})
}

// Responses returns the receive side of the response channel. It has a
// single consumer; use a Dispatcher to serve several observers.
func (h *Handle) Responses() *ringbuf.Receiver[Response] {
	return h.rx
}

// Dropped returns how many commands were evicted before the controller
// read them.
func (h *Handle) Dropped() uint64 {
	return h.tx.Dropped()
}

// Close closes the command channel. The controller drains what is queued
// and returns.
func (h *Handle) Close() {
	h.tx.Close()
}
