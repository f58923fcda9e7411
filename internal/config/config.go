package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const appName = "reyvr"

// Backend names accepted by the backend key.
const (
	BackendLocal = "local"
	BackendMPD   = "mpd"
)

const (
	defaultVolume          = 0.5
	defaultChannelCapacity = 128
	defaultPollInterval    = 100 * time.Millisecond
	defaultStoreTimeout    = 2 * time.Second
	defaultMPDHost         = "localhost"
	defaultMPDPort         = 6600
)

type Config struct {
	DefaultFolder   string   `koanf:"default_folder"`
	Backend         string   `koanf:"backend"` // "local" or "mpd"
	Volume          *float64 `koanf:"volume"`  // initial level 0-1 (default: 0.5)
	ChannelCapacity int      `koanf:"channel_capacity"`
	PollInterval    string   `koanf:"poll_interval"` // duration, e.g. "100ms"
	StoreTimeout    string   `koanf:"store_timeout"` // duration, e.g. "2s"
	AutoAdvance     *bool    `koanf:"auto_advance"`  // play next track on end of stream (default: true)
	LogLevel        string   `koanf:"log_level"`
	LogFile         string   `koanf:"log_file"`

	MPD           MPDConfig           `koanf:"mpd"`
	Remote        RemoteConfig        `koanf:"remote"`
	Notifications NotificationsConfig `koanf:"notifications"`
	MPRIS         MPRISConfig         `koanf:"mpris"`
	Lastfm        LastfmConfig        `koanf:"lastfm"`
}

// MPDConfig holds the Music Player Daemon connection settings.
type MPDConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Password string `koanf:"password"`
	MusicDir string `koanf:"music_dir"` // MPD's music_directory, to map local paths to song URIs
}

// RemoteConfig holds the Socket.IO remote control settings.
type RemoteConfig struct {
	Listen string `koanf:"listen"` // e.g. ":7654"; empty disables remote control
}

// NotificationsConfig holds desktop notification settings.
type NotificationsConfig struct {
	Enabled *bool `koanf:"enabled"` // default: true
}

// MPRISConfig holds MPRIS settings.
type MPRISConfig struct {
	Enabled *bool `koanf:"enabled"` // default: true
}

// LastfmConfig holds the Last.fm API credentials. The session key comes
// from "reyvr lastfm-login".
type LastfmConfig struct {
	APIKey     string `koanf:"api_key"`
	APISecret  string `koanf:"api_secret"`
	SessionKey string `koanf:"session_key"`
}

// Load reads the configuration files in priority order (last wins).
func Load() (*Config, error) {
	return loadPaths(getConfigPaths())
}

func loadPaths(paths []string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{
		DefaultFolder: "", // empty means use cwd
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	cfg.DefaultFolder = expandPath(cfg.DefaultFolder)
	cfg.LogFile = expandPath(cfg.LogFile)
	cfg.MPD.MusicDir = expandPath(cfg.MPD.MusicDir)
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))

	return cfg, nil
}

func getConfigPaths() []string {
	return []string{
		// 1. $XDG_CONFIG_HOME/reyvr/config.toml
		filepath.Join(xdg.ConfigHome, appName, "config.toml"),
		// 2. ./config.toml (pwd, highest priority)
		"config.toml",
	}
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// GetBackend returns the backend name, defaulting to local.
func (c *Config) GetBackend() string {
	if c.Backend == BackendMPD {
		return BackendMPD
	}
	return BackendLocal
}

// GetVolume returns the initial volume clamped to [0, 1].
func (c *Config) GetVolume() float64 {
	if c.Volume == nil {
		return defaultVolume
	}
	return min(max(*c.Volume, 0), 1)
}

// GetChannelCapacity returns the command/response ring capacity.
func (c *Config) GetChannelCapacity() int {
	if c.ChannelCapacity <= 0 {
		return defaultChannelCapacity
	}
	return c.ChannelCapacity
}

// GetPollInterval returns the controller poll interval.
func (c *Config) GetPollInterval() time.Duration {
	return parseDuration(c.PollInterval, defaultPollInterval)
}

// GetStoreTimeout returns the bound on saved-playlist store calls.
func (c *Config) GetStoreTimeout() time.Duration {
	return parseDuration(c.StoreTimeout, defaultStoreTimeout)
}

// GetAutoAdvance reports whether frontends skip to the next track at end of stream.
func (c *Config) GetAutoAdvance() bool {
	return boolOr(c.AutoAdvance, true)
}

// GetMPDConfig returns the MPD settings with defaults applied.
func (c *Config) GetMPDConfig() MPDConfig {
	cfg := c.MPD
	if cfg.Host == "" {
		cfg.Host = defaultMPDHost
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		cfg.Port = defaultMPDPort
	}
	return cfg
}

// HasRemoteConfig returns true if remote control is configured.
func (c *Config) HasRemoteConfig() bool {
	return c.Remote.Listen != ""
}

// NotificationsEnabled reports whether desktop notifications are on.
func (c *Config) NotificationsEnabled() bool {
	return boolOr(c.Notifications.Enabled, true)
}

// MPRISEnabled reports whether the MPRIS adapter is on.
func (c *Config) MPRISEnabled() bool {
	return boolOr(c.MPRIS.Enabled, true)
}

// HasLastfmAPI reports whether API credentials are configured.
func (c *Config) HasLastfmAPI() bool {
	return c.Lastfm.APIKey != "" && c.Lastfm.APISecret != ""
}

// ScrobblingEnabled reports whether the scrobbler can run.
func (c *Config) ScrobblingEnabled() bool {
	return c.HasLastfmAPI() && c.Lastfm.SessionKey != ""
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}
