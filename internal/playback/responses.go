package playback

import (
	"time"

	"github.com/llehouerou/reyvr/internal/player"
	"github.com/llehouerou/reyvr/internal/playlist"
	"github.com/llehouerou/reyvr/internal/playlists"
)

// Response is a notification published by the controller. Responses are
// not replies: the channel is lossy and any of them may be dropped.
type Response interface {
	response()
}

// Error reports a failed operation.
type Error struct {
	Message string
}

// Warning reports a recoverable problem.
type Warning struct {
	Message string
}

// Info is a transient status message.
type Info struct {
	Message string
}

// Metadata carries the current track.
type Metadata struct {
	Track playlist.Track
}

// StateChanged reports a new playback state.
type StateChanged struct {
	State player.State
}

// EndOfStream reports that the current track finished.
type EndOfStream struct{}

// StreamStart reports that a newly loaded track started producing audio.
type StreamStart struct{}

// Position carries the elapsed time, truncated to whole seconds.
type Position struct {
	Elapsed time.Duration
}

// Thumbnail carries the current track's cover.
type Thumbnail struct {
	Image *playlist.Thumbnail
}

// Tracks carries the whole track list.
type Tracks struct {
	Tracks []playlist.Track
}

// SavedPlaylists carries the in-memory saved playlists.
type SavedPlaylists struct {
	Playlists playlists.SavedPlaylists
}

func (Error) response()          {}
func (Warning) response()        {}
func (Info) response()           {}
func (Metadata) response()       {}
func (StateChanged) response()   {}
func (EndOfStream) response()    {}
func (StreamStart) response()    {}
func (Position) response()       {}
func (Thumbnail) response()      {}
func (Tracks) response()         {}
func (SavedPlaylists) response() {}
