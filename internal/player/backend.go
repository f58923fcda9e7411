package player

import (
	"context"
	"errors"
	"time"

	"github.com/llehouerou/reyvr/internal/playlist"
)

var (
	// ErrNotLoaded is returned by transport operations when no media is loaded.
	ErrNotLoaded = errors.New("no media loaded")
	// ErrUnsupportedFormat is returned when a file extension has no decoder.
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// Backend is the media engine driven by the playback controller.
//
// Every call may block and may fail. Monitor never blocks: it returns the
// next queued unsolicited event, or false when none is pending.
type Backend interface {
	Init(ctx context.Context) error
	Load(ctx context.Context, uri string) error
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	Stop(ctx context.Context) error
	Seek(ctx context.Context, pos time.Duration) error
	SetVolume(ctx context.Context, level float64) error
	Volume(ctx context.Context) (float64, error)
	State(ctx context.Context) (State, error)
	Meta(ctx context.Context, uri string) (playlist.Track, error)
	Monitor(ctx context.Context) (Event, bool)
	Position(ctx context.Context) (time.Duration, error)
}

// Event is an unsolicited notification raised by a backend.
type Event interface {
	backendEvent()
}

// EventStateChanged reports a state change the controller did not request.
type EventStateChanged struct {
	State State
}

// EventStreamStart reports that a freshly loaded stream started producing audio.
type EventStreamStart struct{}

// EventEndOfStream reports that the current stream ran out.
type EventEndOfStream struct{}

// EventError reports an asynchronous backend failure.
type EventError struct {
	Message string
}

func (EventStateChanged) backendEvent() {}
func (EventStreamStart) backendEvent()  {}
func (EventEndOfStream) backendEvent()  {}
func (EventError) backendEvent()        {}

// ClampVolume limits level to [0, 1].
func ClampVolume(level float64) float64 {
	return min(max(level, 0), 1)
}
