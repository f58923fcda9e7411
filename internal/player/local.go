package player

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"

	"github.com/llehouerou/reyvr/internal/playlist"
	"github.com/llehouerou/reyvr/internal/ringbuf"
)

const (
	localEventCapacity = 16
	// speaker buffer length; shorter means snappier pause at more CPU cost
	speakerBuffer = time.Second / 10
)

// sink is the audio output. It mirrors the package-level speaker API so tests
// can run the engine without a sound card.
type sink interface {
	Init(sr beep.SampleRate, bufferSize int) error
	Play(s beep.Streamer)
	Clear()
	Lock()
	Unlock()
}

type speakerSink struct{}

func (speakerSink) Init(sr beep.SampleRate, n int) error { return speaker.Init(sr, n) }
func (speakerSink) Play(s beep.Streamer)                 { speaker.Play(s) }
func (speakerSink) Clear()                               { speaker.Clear() }
func (speakerSink) Lock()                                { speaker.Lock() }
func (speakerSink) Unlock()                              { speaker.Unlock() }

// Local plays files on the local sound card through beep.
//
// The speaker is initialised once, at the sample rate of the first loaded
// track; later tracks are resampled to it.
type Local struct {
	out sink

	mu         sync.Mutex
	sampleRate beep.SampleRate // zero until the sink is initialised
	streamer   beep.StreamSeekCloser
	format     beep.Format
	ctrl       *beep.Ctrl
	volume     *effects.Volume
	level      float64
	state      State
	started    bool   // current stream handed to the sink
	announced  bool   // StreamStart already raised for the loaded stream
	generation uint64 // bumps on every load/stop so stale callbacks are ignored

	events   *ringbuf.Sender[Event]
	eventsRx *ringbuf.Receiver[Event]
}

// NewLocal creates a beep backend.
func NewLocal() *Local {
	return newLocal(speakerSink{})
}

func newLocal(out sink) *Local {
	tx, rx := ringbuf.New[Event](localEventCapacity)
	return &Local{
		out:      out,
		level:    1,
		events:   tx,
		eventsRx: rx,
	}
}

// Init implements Backend. The speaker itself is opened lazily on first load
// since its sample rate follows the first track.
func (l *Local) Init(context.Context) error {
	return nil
}

// Load implements Backend. The current stream is released only once the
// new one opened; on failure the previous media stays loaded.
func (l *Local) Load(_ context.Context, uri string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, format, err := openStream(uri)
	if err != nil {
		return err
	}

	if l.sampleRate == 0 {
		if err := l.out.Init(format.SampleRate, format.SampleRate.N(speakerBuffer)); err != nil {
			s.Close()
			return err
		}
		l.sampleRate = format.SampleRate
	}
	l.releaseLocked()

	var src beep.Streamer = s
	if format.SampleRate != l.sampleRate {
		src = beep.Resample(4, format.SampleRate, l.sampleRate, s)
	}

	l.streamer = s
	l.format = format
	l.ctrl = &beep.Ctrl{Streamer: src, Paused: true}
	l.volume = &effects.Volume{Streamer: l.ctrl, Base: 2, Volume: levelToVolume(l.level), Silent: l.level <= 0}
	l.state = Stopped
	return nil
}

// Play implements Backend.
func (l *Local) Play(context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.streamer == nil {
		return ErrNotLoaded
	}
	if l.state == Playing {
		return nil
	}

	if !l.started {
		gen := l.generation
		l.started = true
		// the callback runs with the speaker locked; finish off that lock
		l.out.Play(beep.Seq(l.volume, beep.Callback(func() { go l.finished(gen) })))
	}

	l.out.Lock()
	l.ctrl.Paused = false
	l.out.Unlock()
	l.state = Playing

	if !l.announced {
		l.announced = true
		l.push(EventStreamStart{})
	}
	return nil
}

// Pause implements Backend.
func (l *Local) Pause(context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.streamer == nil {
		return ErrNotLoaded
	}
	if l.state != Playing {
		return nil
	}
	l.out.Lock()
	l.ctrl.Paused = true
	l.out.Unlock()
	l.state = Paused
	return nil
}

// Stop implements Backend. The media stays loaded and rewinds to the start.
func (l *Local) Stop(context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.streamer == nil {
		return nil
	}
	if l.started {
		l.out.Clear()
		l.started = false
		l.generation++
	}

	l.out.Lock()
	l.ctrl.Paused = true
	err := l.streamer.Seek(0)
	l.out.Unlock()

	l.state = Stopped
	l.announced = false
	return err
}

// Seek implements Backend. pos is absolute and clamped to the stream.
func (l *Local) Seek(_ context.Context, pos time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.streamer == nil {
		return ErrNotLoaded
	}
	n := l.format.SampleRate.N(max(pos, 0))
	n = min(n, max(l.streamer.Len()-1, 0))

	l.out.Lock()
	defer l.out.Unlock()
	return l.streamer.Seek(n)
}

// SetVolume implements Backend. The level is kept across loads.
func (l *Local) SetVolume(_ context.Context, level float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.level = ClampVolume(level)
	if l.volume != nil {
		l.out.Lock()
		l.volume.Volume = levelToVolume(l.level)
		l.volume.Silent = l.level <= 0
		l.out.Unlock()
	}
	return nil
}

// Volume implements Backend.
func (l *Local) Volume(context.Context) (float64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level, nil
}

// State implements Backend.
func (l *Local) State(context.Context) (State, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state, nil
}

// Meta implements Backend.
func (l *Local) Meta(ctx context.Context, uri string) (playlist.Track, error) {
	return ReadMeta(ctx, uri)
}

// Monitor implements Backend.
func (l *Local) Monitor(context.Context) (Event, bool) {
	ev, err := l.eventsRx.TryRecv()
	if err != nil {
		return nil, false
	}
	return ev, true
}

// Position implements Backend.
func (l *Local) Position(context.Context) (time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.streamer == nil {
		return 0, nil
	}
	l.out.Lock()
	n := l.streamer.Position()
	l.out.Unlock()
	return l.format.SampleRate.D(n), nil
}

// Close releases the current stream and stops the sink.
func (l *Local) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.releaseLocked()
	l.events.Close()
	return nil
}

// finished handles the end of the stream started in generation gen.
func (l *Local) finished(gen uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if gen != l.generation || l.streamer == nil {
		return
	}
	if err := l.streamer.Err(); err != nil && !errors.Is(err, context.Canceled) {
		l.push(EventError{Message: err.Error()})
	}
	l.started = false
	l.announced = false
	l.generation++
	l.state = Stopped
	// the sink already dropped the finished streamer; rewind for the next play
	l.ctrl.Paused = true
	_ = l.streamer.Seek(0)
	l.push(EventEndOfStream{})
	l.push(EventStateChanged{State: Stopped})
}

func (l *Local) releaseLocked() {
	if l.started {
		l.out.Clear()
	}
	if l.streamer != nil {
		l.streamer.Close()
	}
	l.streamer = nil
	l.ctrl = nil
	l.volume = nil
	l.started = false
	l.announced = false
	l.state = Stopped
	l.generation++
}

func (l *Local) push(ev Event) {
	_ = l.events.Send(ev)
}

// levelToVolume converts a 0.0-1.0 level to beep's base-2 Volume value.
// 1.0 -> 0, 0.5 -> -1, 0.25 -> -2, 0 -> -10 (silent).
func levelToVolume(level float64) float64 {
	if level <= 0 {
		return -10
	}
	if level >= 1 {
		return 0
	}
	return math.Log2(level)
}

var _ Backend = (*Local)(nil)
