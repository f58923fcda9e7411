package player

import (
	"context"
	"sync"
	"time"

	"github.com/llehouerou/reyvr/internal/playlist"
)

// Op names a Backend operation, used to record calls and inject failures.
type Op string

const (
	OpInit      Op = "init"
	OpLoad      Op = "load"
	OpPlay      Op = "play"
	OpPause     Op = "pause"
	OpStop      Op = "stop"
	OpSeek      Op = "seek"
	OpSetVolume Op = "set_volume"
	OpMeta      Op = "meta"
)

// Call is one recorded Backend invocation.
type Call struct {
	Op     Op
	URI    string
	Volume float64
	Pos    time.Duration
}

// Mock is a test double for Backend. It is safe for concurrent use.
type Mock struct {
	mu       sync.Mutex
	state    State
	loaded   string
	volume   float64
	position time.Duration
	calls    []Call
	errs     map[Op]error
	failURIs map[string]error
	events   []Event
	meta     map[string]playlist.Track
}

// NewMock creates a new mock backend for testing.
func NewMock() *Mock {
	return &Mock{
		state:    Stopped,
		volume:   1,
		errs:     make(map[Op]error),
		failURIs: make(map[string]error),
		meta:     make(map[string]playlist.Track),
	}
}

func (m *Mock) record(c Call) error {
	m.calls = append(m.calls, c)
	return m.errs[c.Op]
}

func (m *Mock) Init(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.record(Call{Op: OpInit})
}

func (m *Mock) Load(_ context.Context, uri string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(Call{Op: OpLoad, URI: uri}); err != nil {
		return err
	}
	if err := m.failURIs[uri]; err != nil {
		return err
	}
	m.loaded = uri
	m.state = Stopped
	m.position = 0
	return nil
}

func (m *Mock) Play(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(Call{Op: OpPlay}); err != nil {
		return err
	}
	if m.loaded == "" {
		return ErrNotLoaded
	}
	m.state = Playing
	return nil
}

func (m *Mock) Pause(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(Call{Op: OpPause}); err != nil {
		return err
	}
	if m.state == Playing {
		m.state = Paused
	}
	return nil
}

func (m *Mock) Stop(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(Call{Op: OpStop}); err != nil {
		return err
	}
	m.state = Stopped
	m.position = 0
	return nil
}

func (m *Mock) Seek(_ context.Context, pos time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(Call{Op: OpSeek, Pos: pos}); err != nil {
		return err
	}
	m.position = pos
	return nil
}

func (m *Mock) SetVolume(_ context.Context, level float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(Call{Op: OpSetVolume, Volume: level}); err != nil {
		return err
	}
	m.volume = ClampVolume(level)
	return nil
}

func (m *Mock) Volume(context.Context) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volume, nil
}

func (m *Mock) State(context.Context) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state, nil
}

func (m *Mock) Meta(_ context.Context, uri string) (playlist.Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(Call{Op: OpMeta, URI: uri}); err != nil {
		return playlist.Track{}, err
	}
	if t, ok := m.meta[uri]; ok {
		return t.Clone(), nil
	}
	return playlist.NewTrack(uri), nil
}

func (m *Mock) Monitor(context.Context) (Event, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.events) == 0 {
		return nil, false
	}
	ev := m.events[0]
	m.events = m.events[1:]
	return ev, true
}

func (m *Mock) Position(context.Context) (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position, nil
}

// Test helpers

// SetError makes every subsequent call of op fail with err. A nil err clears it.
func (m *Mock) SetError(op Op, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.errs, op)
		return
	}
	m.errs[op] = err
}

// FailLoad makes loading uri fail with err.
func (m *Mock) FailLoad(uri string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failURIs[uri] = err
}

// SetMeta sets the track returned by Meta for t.URI.
func (m *Mock) SetMeta(t playlist.Track) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.meta[t.URI] = t.Clone()
}

// PushEvent queues an event for Monitor.
func (m *Mock) PushEvent(ev Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
}

// SetPosition sets the position reported by Position.
func (m *Mock) SetPosition(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.position = d
}

// SetState forces the reported state.
func (m *Mock) SetState(s State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = s
}

// Calls returns a copy of every recorded call.
func (m *Mock) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallsOf returns the recorded calls of op.
func (m *Mock) CallsOf(op Op) []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Call
	for _, c := range m.calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// ResetCalls forgets recorded calls.
func (m *Mock) ResetCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

// Loaded returns the URI of the loaded media.
func (m *Mock) Loaded() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loaded
}

// Verify Mock implements Backend at compile time.
var _ Backend = (*Mock)(nil)
