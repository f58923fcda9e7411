// Package playback implements the playback controller: a single goroutine
// that turns Commands into Backend calls and publishes Responses.
package playback

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/llehouerou/reyvr/internal/errmsg"
	"github.com/llehouerou/reyvr/internal/player"
	"github.com/llehouerou/reyvr/internal/playlist"
	"github.com/llehouerou/reyvr/internal/playlists"
	"github.com/llehouerou/reyvr/internal/ringbuf"
)

const (
	DefaultCapacity     = 128
	DefaultPollInterval = 100 * time.Millisecond
	DefaultStoreTimeout = 2 * time.Second

	// maxEventsPerTick bounds how many backend events one iteration republishes.
	maxEventsPerTick = 32
)

// ErrObserverGone is returned by Run when the response channel was closed.
var ErrObserverGone = errors.New("response observer gone")

// ErrPickCancelled is returned by a Picker when the user chose nothing.
var ErrPickCancelled = errors.New("no folder selected")

// Store persists saved playlists.
type Store interface {
	Load(ctx context.Context) (playlists.SavedPlaylists, error)
	Save(ctx context.Context, all playlists.SavedPlaylists) error
}

// Picker asks the user for a folder.
type Picker func(ctx context.Context) (string, error)

// Config configures a Controller.
type Config struct {
	Backend player.Backend
	Store   Store               // nil disables saved playlists
	Meta    playlist.MetaReader // defaults to player.TagReader
	Picker  Picker              // nil disables LoadFolder

	// Volume is the level applied after every track change until a
	// SetVolume replaces it.
	Volume float64

	Capacity     int
	PollInterval time.Duration
	StoreTimeout time.Duration

	// FolderLoaded is called from the loop after a folder was loaded.
	FolderLoaded func(path string)
}

// Controller owns the live playlist and drives the backend.
type Controller struct {
	backend      player.Backend
	store        Store
	meta         playlist.MetaReader
	picker       Picker
	pollInterval time.Duration
	storeTimeout time.Duration
	folderLoaded func(string)
	log          zerolog.Logger

	shared *playlist.Shared
	cmds   *ringbuf.Sender[Command]
	rx     *ringbuf.Receiver[Command]
	tx     *ringbuf.Sender[Response]

	// loop-only
	saved       playlists.SavedPlaylists
	savedLoaded bool // saved came from the store at least once
	picking     bool
	gone        bool

	pickers sync.WaitGroup

	mu       sync.Mutex
	volume   float64
	position time.Duration
	state    player.State
}

// New creates a controller and the handle used to drive it.
func New(cfg Config) (*Controller, *Handle) {
	capacity := cfg.Capacity
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	poll := cfg.PollInterval
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	storeTimeout := cfg.StoreTimeout
	if storeTimeout <= 0 {
		storeTimeout = DefaultStoreTimeout
	}
	meta := cfg.Meta
	if meta == nil {
		meta = player.TagReader{}
	}
	cmdTx, cmdRx := ringbuf.New[Command](capacity)
	resTx, resRx := ringbuf.New[Response](capacity)

	c := &Controller{
		backend:      cfg.Backend,
		store:        cfg.Store,
		meta:         meta,
		picker:       cfg.Picker,
		pollInterval: poll,
		storeTimeout: storeTimeout,
		folderLoaded: cfg.FolderLoaded,
		log:          log.With().Str("component", "playback").Logger(),
		shared:       playlist.NewShared(nil),
		cmds:         cmdTx,
		rx:           cmdRx,
		tx:           resTx,
		volume:       player.ClampVolume(cfg.Volume),
		state:        player.Stopped,
	}
	return c, &Handle{tx: cmdTx, rx: resRx}
}

// Run initialises the backend, loads the saved playlists and processes
// commands until ctx is done, the command channel is closed and drained, or
// the response channel is closed. It returns ctx.Err(), nil or
// ErrObserverGone respectively. A failed backend call is reported as an
// Error response and never ends the loop.
func (c *Controller) Run(ctx context.Context) error {
	defer c.tx.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		c.pickers.Wait()
	}()

	if err := c.backend.Init(ctx); err != nil {
		c.fail(errmsg.OpBackend, err)
	}
	if c.store != nil {
		c.loadSaved(ctx)
	}
	if c.gone {
		return ErrObserverGone
	}
	c.log.Debug().Msg("controller started")

	for {
		busy, err := c.tick(ctx)
		if errors.Is(err, ringbuf.ErrClosed) {
			c.log.Debug().Msg("command channel closed")
			return nil
		}
		if err != nil {
			return err
		}
		if busy {
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.rx.Ready():
		case <-time.After(c.pollInterval):
		}
	}
}

// tick runs one loop iteration and reports whether anything happened.
func (c *Controller) tick(ctx context.Context) (bool, error) {
	busy := false

	for {
		if err := ctx.Err(); err != nil {
			return busy, err
		}
		cmd, err := c.rx.TryRecv()
		if errors.Is(err, ringbuf.ErrEmpty) {
			break
		}
		if err != nil {
			return busy, err
		}
		busy = true
		c.dispatch(ctx, cmd)
		if c.gone {
			return busy, ErrObserverGone
		}
	}

	for range maxEventsPerTick {
		ev, ok := c.backend.Monitor(ctx)
		if !ok {
			break
		}
		busy = true
		c.handleEvent(ev)
		if c.gone {
			return busy, ErrObserverGone
		}
	}

	if c.pollPosition(ctx) {
		busy = true
	}
	if c.gone {
		return busy, ErrObserverGone
	}
	return busy, ctx.Err()
}

func (c *Controller) handleEvent(ev player.Event) {
	switch ev := ev.(type) {
	case player.EventStateChanged:
		p := c.shared.Snapshot()
		if p.SetPlaying(ev.State == player.Playing) {
			c.shared.Replace(p)
		}
		c.setState(ev.State)
		c.emit(StateChanged{State: ev.State})
	case player.EventStreamStart:
		c.emit(StreamStart{})
	case player.EventEndOfStream:
		p := c.shared.Snapshot()
		if p.Playing() {
			p.SetPlaying(false)
			c.shared.Replace(p)
		}
		c.emit(EndOfStream{})
	case player.EventError:
		c.emit(Error{Message: ev.Message})
	default:
		c.log.Warn().Type("event", ev).Msg("unknown backend event")
	}
}

// pollPosition publishes the position when its whole-second value changed.
func (c *Controller) pollPosition(ctx context.Context) bool {
	pos, err := c.backend.Position(ctx)
	if err != nil {
		return false
	}
	pos = max(pos, 0).Truncate(time.Second)

	c.mu.Lock()
	changed := pos != c.position
	c.position = pos
	c.mu.Unlock()

	if changed {
		c.emit(Position{Elapsed: pos})
	}
	return changed
}

// emit publishes r. A closed response channel marks the observer gone and
// the loop stops at the next check.
func (c *Controller) emit(r Response) {
	if err := c.tx.Send(r); err != nil {
		c.gone = true
	}
}

func (c *Controller) fail(op errmsg.Op, err error) {
	c.log.Error().Err(err).Str("op", string(op)).Msg("operation failed")
	c.emit(Error{Message: errmsg.Format(op, err)})
}

func (c *Controller) failWith(op errmsg.Op, target string, err error) {
	c.log.Error().Err(err).Str("op", string(op)).Str("target", target).Msg("operation failed")
	c.emit(Error{Message: errmsg.FormatWith(op, target, err)})
}

func (c *Controller) setState(s player.State) {
	c.log.Debug().Stringer("state", s).Msg("state changed")
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *Controller) setVolume(v float64) {
	c.mu.Lock()
	c.volume = v
	c.mu.Unlock()
}

// Playlist returns a snapshot of the live playlist.
func (c *Controller) Playlist() *playlist.Playlist {
	return c.shared.Snapshot()
}

// Volume returns the stored volume.
func (c *Controller) Volume() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.volume
}

// Position returns the last published position.
func (c *Controller) Position() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

// State returns the playback state as last observed by the loop.
func (c *Controller) State() player.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}
