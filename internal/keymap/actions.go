// Package keymap defines key bindings and action dispatch for the terminal
// frontend.
package keymap

// Action represents a user-triggerable action.
type Action string

const (
	// Global actions
	ActionQuit       Action = "quit"
	ActionHelp       Action = "help"
	ActionSwitchView Action = "switch_view"
	ActionLoadFolder Action = "load_folder"

	// Playback actions
	ActionPlayPause   Action = "play_pause"
	ActionStop        Action = "stop"
	ActionNextTrack   Action = "next_track"
	ActionPrevTrack   Action = "prev_track"
	ActionSeekForward Action = "seek_forward"
	ActionSeekBack    Action = "seek_back"
	ActionVolumeUp    Action = "volume_up"
	ActionVolumeDown  Action = "volume_down"
	ActionRefreshMeta Action = "refresh_metadata"

	// Navigation actions
	ActionMoveUp    Action = "move_up"
	ActionMoveDown  Action = "move_down"
	ActionJumpStart Action = "jump_start"
	ActionJumpEnd   Action = "jump_end"
	ActionSelect    Action = "select" // enter - play the track or saved playlist under the cursor

	// Saved playlist actions
	ActionSavePlaylist    Action = "save_playlist"
	ActionReloadPlaylists Action = "reload_playlists"
)
