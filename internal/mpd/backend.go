// Package mpd drives a Music Player Daemon as a playback backend.
package mpd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // album art decoders
	_ "image/png"
	"net"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fhs/gompd/v2/mpd"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/llehouerou/reyvr/internal/player"
	"github.com/llehouerou/reyvr/internal/playlist"
	"github.com/llehouerou/reyvr/internal/ringbuf"
)

const eventCapacity = 16

// watched subsystems
var subsystems = []string{"player", "mixer"}

// conn is the subset of *mpd.Client the backend uses.
type conn interface {
	Ping() error
	Close() error
	Clear() error
	Add(uri string) error
	Delete(start, end int) error
	Play(pos int) error
	Pause(pause bool) error
	Stop() error
	Seek(pos, time int) error
	SetVolume(volume int) error
	Status() (mpd.Attrs, error)
	ListAllInfo(uri string) ([]mpd.Attrs, error)
	ReadPicture(uri string) ([]byte, error)
	AlbumArt(uri string) ([]byte, error)
}

// Config holds the daemon address and the local path of its music directory.
type Config struct {
	Host     string
	Port     int
	Password string
	MusicDir string // local paths under it are sent relative
}

// Addr returns host:port.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Backend implements player.Backend over a single-song MPD queue:
// Load clears the queue and adds one song.
type Backend struct {
	cfg        Config
	dial       func() (conn, error)
	newWatcher func() (*mpd.Watcher, error) // nil disables watching
	log        zerolog.Logger

	mu        sync.Mutex
	client    conn
	watcher   *mpd.Watcher
	loaded    string
	state     player.State
	announced bool

	events   *ringbuf.Sender[player.Event]
	eventsRx *ringbuf.Receiver[player.Event]
}

// New creates a backend for cfg. Nothing is dialled until Init.
func New(cfg Config) *Backend {
	b := newBackend(cfg, nil)
	b.dial = func() (conn, error) {
		if cfg.Password != "" {
			return mpd.DialAuthenticated("tcp", cfg.Addr(), cfg.Password)
		}
		return mpd.Dial("tcp", cfg.Addr())
	}
	b.newWatcher = func() (*mpd.Watcher, error) {
		return mpd.NewWatcher("tcp", cfg.Addr(), cfg.Password, subsystems...)
	}
	return b
}

func newBackend(cfg Config, dial func() (conn, error)) *Backend {
	tx, rx := ringbuf.New[player.Event](eventCapacity)
	return &Backend{
		cfg:      cfg,
		dial:     dial,
		log:      log.With().Str("component", "mpd").Logger(),
		events:   tx,
		eventsRx: rx,
	}
}

// Init connects and starts watching the player and mixer subsystems.
func (b *Backend) Init(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.connectLocked(); err != nil {
		return err
	}

	if b.newWatcher == nil {
		return nil
	}
	w, err := b.newWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	b.watcher = w
	go b.watch(w)
	return nil
}

func (b *Backend) connectLocked() error {
	b.log.Info().Str("addr", b.cfg.Addr()).Msg("Connecting to MPD")
	c, err := b.dial()
	if err != nil {
		return fmt.Errorf("failed to connect to MPD: %w", err)
	}
	b.client = c
	return nil
}

// ensureConnectedLocked checks the connection and redials if it dropped.
func (b *Backend) ensureConnectedLocked() error {
	if b.client == nil {
		return b.connectLocked()
	}
	if err := b.client.Ping(); err != nil {
		b.log.Warn().Err(err).Msg("MPD connection lost, reconnecting")
		b.client.Close()
		b.client = nil
		return b.connectLocked()
	}
	return nil
}

// Close stops the watcher and closes the connection.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.watcher != nil {
		b.watcher.Close()
		b.watcher = nil
	}
	b.events.Close()
	if b.client != nil {
		err := b.client.Close()
		b.client = nil
		return err
	}
	return nil
}

// songURI maps a local path to the daemon's music-directory relative URI.
func (b *Backend) songURI(uri string) string {
	path := playlist.PathFromURI(uri)
	if b.cfg.MusicDir == "" {
		return path
	}
	rel, err := filepath.Rel(b.cfg.MusicDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}

// Load implements player.Backend.
func (b *Backend) Load(_ context.Context, uri string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.ensureConnectedLocked(); err != nil {
		return err
	}
	song := b.songURI(uri)
	if b.loaded == "" {
		if err := b.client.Clear(); err != nil {
			return err
		}
	}
	// the queue holds only the loaded song; it goes once the new one is in
	if err := b.client.Add(song); err != nil {
		return err
	}
	if b.loaded != "" {
		if err := b.client.Delete(0, -1); err != nil {
			return err
		}
	}
	b.loaded = song
	b.state = player.Stopped
	b.announced = false
	return nil
}

// Play implements player.Backend.
func (b *Backend) Play(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.loaded == "" {
		return player.ErrNotLoaded
	}
	if err := b.ensureConnectedLocked(); err != nil {
		return err
	}

	var err error
	if b.state == player.Paused {
		err = b.client.Pause(false)
	} else {
		err = b.client.Play(0)
	}
	if err != nil {
		return err
	}
	b.state = player.Playing
	if !b.announced {
		b.announced = true
		b.push(player.EventStreamStart{})
	}
	return nil
}

// Pause implements player.Backend.
func (b *Backend) Pause(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.loaded == "" {
		return player.ErrNotLoaded
	}
	if b.state != player.Playing {
		return nil
	}
	if err := b.ensureConnectedLocked(); err != nil {
		return err
	}
	if err := b.client.Pause(true); err != nil {
		return err
	}
	b.state = player.Paused
	return nil
}

// Stop implements player.Backend.
func (b *Backend) Stop(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.ensureConnectedLocked(); err != nil {
		return err
	}
	if err := b.client.Stop(); err != nil {
		return err
	}
	b.state = player.Stopped
	b.announced = false
	return nil
}

// Seek implements player.Backend. MPD seeks in whole seconds.
func (b *Backend) Seek(_ context.Context, pos time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.loaded == "" {
		return player.ErrNotLoaded
	}
	if err := b.ensureConnectedLocked(); err != nil {
		return err
	}
	return b.client.Seek(0, int(max(pos, 0)/time.Second))
}

// SetVolume implements player.Backend.
func (b *Backend) SetVolume(_ context.Context, level float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.ensureConnectedLocked(); err != nil {
		return err
	}
	return b.client.SetVolume(int(player.ClampVolume(level)*100 + 0.5))
}

// Volume implements player.Backend.
func (b *Backend) Volume(context.Context) (float64, error) {
	st, err := b.status()
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(st["volume"])
	if err != nil || v < 0 {
		// mixer disabled
		return 1, nil //nolint:nilerr // no mixer means full volume
	}
	return player.ClampVolume(float64(v) / 100), nil
}

// State implements player.Backend.
func (b *Backend) State(context.Context) (player.State, error) {
	st, err := b.status()
	if err != nil {
		return player.Stopped, err
	}
	return parseState(st["state"]), nil
}

// Position implements player.Backend.
func (b *Backend) Position(context.Context) (time.Duration, error) {
	st, err := b.status()
	if err != nil {
		return 0, err
	}
	return parseSeconds(st["elapsed"]), nil
}

// Meta implements player.Backend using the daemon's database and album art.
func (b *Backend) Meta(_ context.Context, uri string) (playlist.Track, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.ensureConnectedLocked(); err != nil {
		return playlist.Track{}, err
	}
	song := b.songURI(uri)
	infos, err := b.client.ListAllInfo(song)
	if err != nil {
		return playlist.Track{}, err
	}
	if len(infos) == 0 {
		return playlist.Track{}, fmt.Errorf("song not in database: %s", song)
	}

	t := trackFromAttrs(uri, infos[0])

	art, err := b.client.ReadPicture(song)
	if err != nil || len(art) == 0 {
		art, _ = b.client.AlbumArt(song)
	}
	if len(art) > 0 {
		if img, _, derr := image.Decode(bytes.NewReader(art)); derr == nil {
			t.Thumbnail = playlist.NewThumbnail(img, playlist.DefaultThumbnailSize)
		}
	}
	return t, nil
}

// Monitor implements player.Backend.
func (b *Backend) Monitor(context.Context) (player.Event, bool) {
	ev, err := b.eventsRx.TryRecv()
	if err != nil {
		return nil, false
	}
	return ev, true
}

func (b *Backend) status() (mpd.Attrs, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.ensureConnectedLocked(); err != nil {
		return nil, err
	}
	return b.client.Status()
}

func (b *Backend) watch(w *mpd.Watcher) {
	for {
		select {
		case subsystem, ok := <-w.Event:
			if !ok {
				return
			}
			b.refresh(subsystem)
		case err, ok := <-w.Error:
			if !ok {
				return
			}
			b.log.Error().Err(err).Msg("MPD watcher error")
			b.push(player.EventError{Message: err.Error()})
		}
	}
}

// refresh reconciles the daemon state after a subsystem change and raises
// events for changes this backend did not make.
func (b *Backend) refresh(subsystem string) {
	if subsystem != "player" {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.client == nil {
		return
	}
	st, err := b.client.Status()
	if err != nil {
		b.push(player.EventError{Message: err.Error()})
		return
	}

	got := parseState(st["state"])
	if got == b.state {
		return
	}
	prev := b.state
	b.state = got
	if prev == player.Playing && got == player.Stopped {
		b.announced = false
		b.push(player.EventEndOfStream{})
	}
	b.push(player.EventStateChanged{State: got})
}

func (b *Backend) push(ev player.Event) {
	if err := b.events.Send(ev); err != nil && !errors.Is(err, ringbuf.ErrClosed) {
		b.log.Debug().Err(err).Msg("dropping MPD event")
	}
}

func parseState(s string) player.State {
	switch s {
	case "play":
		return player.Playing
	case "pause":
		return player.Paused
	default:
		return player.Stopped
	}
}

func parseSeconds(s string) time.Duration {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return time.Duration(f * float64(time.Second))
}

func trackFromAttrs(uri string, a mpd.Attrs) playlist.Track {
	t := playlist.NewTrack(uri)
	if a["Title"] != "" {
		t.Title = a["Title"]
	}
	t.Album = a["Album"]
	if a["Artist"] != "" {
		t.Artists = []string{a["Artist"]}
	} else if a["AlbumArtist"] != "" {
		t.Artists = []string{a["AlbumArtist"]}
	}
	if d := parseSeconds(a["duration"]); d > 0 {
		t.Duration = d
	} else if secs, err := strconv.Atoi(a["Time"]); err == nil {
		t.Duration = time.Duration(secs) * time.Second
	}
	return t
}

var _ player.Backend = (*Backend)(nil)
