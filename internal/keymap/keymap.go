package keymap

// Binding ties keys to an action. Description and Context feed the help view.
type Binding struct {
	Action      Action
	Keys        []string
	Description string
	Context     string // "global", "playback", "list", "tracks", "saved"
}

// Bindings contains every key binding of the terminal frontend.
var Bindings = []Binding{
	// Global
	{ActionQuit, []string{"q", "ctrl+c"}, "Quit", "global"},
	{ActionHelp, []string{"?"}, "Show help", "global"},
	{ActionSwitchView, []string{"tab"}, "Tracks / saved playlists", "global"},
	{ActionLoadFolder, []string{"o"}, "Open folder", "global"},

	// Playback
	{ActionPlayPause, []string{" "}, "Play/pause", "playback"},
	{ActionStop, []string{"s"}, "Stop", "playback"},
	{ActionNextTrack, []string{"n", "pgdown"}, "Next track", "playback"},
	{ActionPrevTrack, []string{"p", "pgup"}, "Previous track", "playback"},
	{ActionSeekForward, []string{"right", "l"}, "Seek +5s", "playback"},
	{ActionSeekBack, []string{"left", "h"}, "Seek -5s", "playback"},
	{ActionVolumeUp, []string{"+", "="}, "Volume +5%", "playback"},
	{ActionVolumeDown, []string{"-"}, "Volume -5%", "playback"},
	{ActionRefreshMeta, []string{"i"}, "Refresh track info", "playback"},

	// Either list
	{ActionMoveUp, []string{"k", "up"}, "Move up", "list"},
	{ActionMoveDown, []string{"j", "down"}, "Move down", "list"},
	{ActionJumpStart, []string{"g", "home"}, "First entry", "list"},
	{ActionJumpEnd, []string{"G", "end"}, "Last entry", "list"},

	// Track list
	{ActionSelect, []string{"enter"}, "Play track", "tracks"},
	{ActionSavePlaylist, []string{"ctrl+s"}, "Save as playlist", "tracks"},

	// Saved playlists
	{ActionSelect, []string{"enter"}, "Play saved playlist", "saved"},
	{ActionReloadPlaylists, []string{"r"}, "Reload saved playlists", "saved"},
}

// ByContext returns key bindings filtered by context.
func ByContext(context string) []Binding {
	var result []Binding
	for _, kb := range Bindings {
		if kb.Context == context {
			result = append(result, kb)
		}
	}
	return result
}
