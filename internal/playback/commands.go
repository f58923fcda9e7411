package playback

import (
	"time"

	"github.com/llehouerou/reyvr/internal/playlists"
)

// Command is a one-shot directive for the controller. The set is closed:
// only types declared in this package implement it.
type Command interface {
	command()
}

// Play resumes or starts the loaded track.
type Play struct{}

// Pause pauses the playing track.
type Pause struct{}

// Stop stops playback and rewinds the loaded track.
type Stop struct{}

// SetVolume sets the output level in [0, 1].
type SetVolume struct {
	Volume float64
}

// GetMetadata asks for the current track's metadata and thumbnail.
type GetMetadata struct{}

// GetTracks asks for the track list.
type GetTracks struct{}

// Next skips to the following track.
type Next struct{}

// Previous goes back to the preceding track.
type Previous struct{}

// Seek jumps to an absolute position in the current track.
type Seek struct {
	Position time.Duration
}

// PlayByID plays the track at Index.
type PlayByID struct {
	Index int
}

// LoadFromFolder replaces the playlist with the audio files under Path.
type LoadFromFolder struct {
	Path string
}

// LoadFolder asks the configured picker for a folder, then loads it.
type LoadFolder struct{}

// LoadSavedPlaylists reads saved playlists from the store.
type LoadSavedPlaylists struct{}

// WriteSavedPlaylists writes the in-memory saved playlists to the store.
type WriteSavedPlaylists struct{}

// AddSavedPlaylist adds or replaces a saved playlist in memory.
type AddSavedPlaylist struct {
	Playlist playlists.SavedPlaylist
}

// PlaySavedPlaylist replaces the playlist with the saved playlist Name.
type PlaySavedPlaylist struct {
	Name string
}

// folderPicked carries the result of a picker run back into the loop.
type folderPicked struct {
	path string
	err  error
}

func (Play) command()                {}
func (Pause) command()               {}
func (Stop) command()                {}
func (SetVolume) command()           {}
func (GetMetadata) command()         {}
func (GetTracks) command()           {}
func (Next) command()                {}
func (Previous) command()            {}
func (Seek) command()                {}
func (PlayByID) command()            {}
func (LoadFromFolder) command()      {}
func (LoadFolder) command()          {}
func (LoadSavedPlaylists) command()  {}
func (WriteSavedPlaylists) command() {}
func (AddSavedPlaylist) command()    {}
func (PlaySavedPlaylist) command()   {}
func (folderPicked) command()        {}
