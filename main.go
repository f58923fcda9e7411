package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/llehouerou/reyvr/internal/config"
	"github.com/llehouerou/reyvr/internal/lastfm"
	"github.com/llehouerou/reyvr/internal/logging"
	"github.com/llehouerou/reyvr/internal/mpd"
	"github.com/llehouerou/reyvr/internal/mpris"
	"github.com/llehouerou/reyvr/internal/notify"
	"github.com/llehouerou/reyvr/internal/picker"
	"github.com/llehouerou/reyvr/internal/playback"
	"github.com/llehouerou/reyvr/internal/player"
	"github.com/llehouerou/reyvr/internal/playlists"
	"github.com/llehouerou/reyvr/internal/remote"
	"github.com/llehouerou/reyvr/internal/ringbuf"
	"github.com/llehouerou/reyvr/internal/state"
	"github.com/llehouerou/reyvr/internal/stderr"
	"github.com/llehouerou/reyvr/internal/ui/nowplaying"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if len(os.Args) > 1 && os.Args[1] == "lastfm-login" {
		return lastfmLogin(cfg)
	}

	logFile, err := logging.Setup(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer logFile.Close()

	// Capture stderr before the audio libraries initialize.
	capture, err := stderr.Start()
	if err != nil {
		log.Warn().Err(err).Msg("stderr capture unavailable")
	} else {
		defer capture.Stop()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stateMgr, err := state.Open(ctx)
	if err != nil {
		return fmt.Errorf("open state: %w", err)
	}
	defer stateMgr.Close()

	saved, err := stateMgr.GetPlayerState(ctx, state.PlayerState{Volume: cfg.GetVolume()})
	if err != nil {
		log.Warn().Err(err).Msg("could not read saved player state")
		saved = state.PlayerState{Volume: cfg.GetVolume()}
	}

	backend := newBackend(cfg)
	defer closeQuietly("backend", backend)

	ctl, handle := playback.New(playback.Config{
		Backend:      backend,
		Store:        playlists.NewStore(stateMgr.DB()),
		Picker:       picker.Find(),
		Volume:       saved.Volume,
		Capacity:     cfg.GetChannelCapacity(),
		PollInterval: cfg.GetPollInterval(),
		StoreTimeout: cfg.GetStoreTimeout(),
		FolderLoaded: func(path string) {
			if err := stateMgr.SaveLastFolder(context.Background(), path); err != nil {
				log.Warn().Err(err).Str("path", path).Msg("could not save last folder")
			}
		},
	})
	defer handle.Close()

	dispatcher := playback.NewDispatcher(handle.Responses())
	tuiRx := dispatcher.Subscribe()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	var wg sync.WaitGroup
	spawn := func(name string, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(runCtx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Str("task", name).Msg("task stopped")
			}
		}()
	}

	if cfg.NotificationsEnabled() {
		if n, err := notify.New(); err != nil {
			log.Warn().Err(err).Msg("desktop notifications unavailable")
		} else {
			rx := dispatcher.Subscribe()
			fw := notify.NewForwarder(n)
			spawn("notify", func(ctx context.Context) error { return fw.Run(ctx, rx) })
		}
	}

	if cfg.HasRemoteConfig() {
		srv := remote.NewServer(handle, ctl)
		defer closeQuietly("remote", srv)
		rx := dispatcher.Subscribe()
		spawn("remote", func(ctx context.Context) error { return srv.Run(ctx, rx) })
		spawn("remote-http", func(ctx context.Context) error { return srv.ListenAndServe(ctx, cfg.Remote.Listen) })
	}

	if cfg.MPRISEnabled() {
		if adapter, err := mpris.New(handle, ctl); err != nil {
			log.Warn().Err(err).Msg("MPRIS unavailable")
		} else {
			defer closeQuietly("mpris", adapter)
			rx := dispatcher.Subscribe()
			spawn("mpris", func(ctx context.Context) error { return adapter.Run(ctx, rx) })
		}
	}

	if cfg.ScrobblingEnabled() {
		client := lastfm.New(cfg.Lastfm.APIKey, cfg.Lastfm.APISecret)
		client.SetSessionKey(cfg.Lastfm.SessionKey)
		rx := dispatcher.Subscribe()
		scrobbler := lastfm.NewScrobbler(client)
		spawn("lastfm", func(ctx context.Context) error { return scrobbler.Run(ctx, rx) })
	}

	spawn("dispatcher", dispatcher.Run)
	spawn("controller", ctl.Run)

	if folder := startFolder(cfg, saved); folder != "" {
		if err := handle.Load(folder); err != nil {
			cancel()
			wg.Wait()
			return fmt.Errorf("load %s: %w", folder, err)
		}
	}

	model := nowplaying.New(nowplaying.Options{
		Commands:    handle,
		Status:      ctl,
		Responses:   tuiRx,
		Stderr:      lines(capture),
		AutoAdvance: cfg.GetAutoAdvance(),
		Cover:       os.Getenv("KITTY_WINDOW_ID") != "" || os.Getenv("TERM") == "xterm-kitty",
	})
	_, uiErr := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(uiErr, tea.ErrProgramKilled) {
		uiErr = nil
	}

	cancel()
	wg.Wait()

	if err := stateMgr.SaveVolume(context.Background(), ctl.Volume()); err != nil {
		log.Warn().Err(err).Msg("could not save volume")
	}
	return uiErr
}

// lastfmLogin authorizes reyvr with Last.fm and prints the session key to
// put in the config file.
func lastfmLogin(cfg *config.Config) error {
	if !cfg.HasLastfmAPI() {
		return errors.New("set api_key and api_secret under [lastfm] first")
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := lastfm.New(cfg.Lastfm.APIKey, cfg.Lastfm.APISecret)
	user, key, err := lastfm.Login(ctx, client, os.Stdout)
	if err != nil {
		return fmt.Errorf("lastfm login: %w", err)
	}
	fmt.Printf("Logged in as %s. Add this under [lastfm]:\n  session_key = %q\n", user, key)
	return nil
}

// newBackend builds the configured audio backend.
func newBackend(cfg *config.Config) player.Backend {
	if cfg.GetBackend() == config.BackendMPD {
		m := cfg.GetMPDConfig()
		log.Info().Str("addr", fmt.Sprintf("%s:%d", m.Host, m.Port)).Msg("using MPD backend")
		return mpd.New(mpd.Config{Host: m.Host, Port: m.Port, Password: m.Password, MusicDir: m.MusicDir})
	}
	return player.NewLocal()
}

// startFolder is the configured default folder, else the last folder loaded.
func startFolder(cfg *config.Config, saved state.PlayerState) string {
	if cfg.DefaultFolder != "" {
		return cfg.DefaultFolder
	}
	return saved.LastFolder
}

func lines(c *stderr.Capture) *ringbuf.Receiver[string] {
	if c == nil {
		return nil
	}
	return c.Lines()
}

func closeQuietly(name string, v any) {
	if c, ok := v.(io.Closer); ok {
		if err := c.Close(); err != nil {
			log.Warn().Err(err).Str("component", name).Msg("close failed")
		}
	}
}
