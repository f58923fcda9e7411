// Package mpris exposes playback to desktop media keys and applets.
package mpris

import (
	"time"

	"github.com/llehouerou/reyvr/internal/player"
	"github.com/llehouerou/reyvr/internal/playlist"
)

// Controls sends commands to the playback controller. *playback.Handle
// implements it.
type Controls interface {
	Play() error
	Pause() error
	Stop() error
	Next() error
	Previous() error
	Seek(pos time.Duration) error
	SetVolume(v float64) error
}

// Status reads controller snapshots. *playback.Controller implements it.
type Status interface {
	Playlist() *playlist.Playlist
	Volume() float64
	Position() time.Duration
	State() player.State
}
