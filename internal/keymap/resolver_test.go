package keymap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var testBindings = []Binding{
	{ActionQuit, []string{"q", "ctrl+c"}, "Quit", "global"},
	{ActionPlayPause, []string{" "}, "Play/pause", "playback"},
	{ActionMoveUp, []string{"k", "up"}, "Move up", "list"},
	{ActionSelect, []string{"enter"}, "Play track", "tracks"},
	{ActionSavePlaylist, []string{"ctrl+s"}, "Save", "tracks"},
	{ActionSelect, []string{"enter"}, "Play saved playlist", "saved"},
	{ActionReloadPlaylists, []string{"r", "ctrl+s"}, "Reload", "saved"},
}

func TestResolver_ResolveAnyContext(t *testing.T) {
	r := NewResolver(testBindings)

	tests := []struct {
		key  string
		want Action
	}{
		{"q", ActionQuit},
		{"ctrl+c", ActionQuit},
		{" ", ActionPlayPause},
		{"up", ActionMoveUp},
		{"ctrl+s", ActionSavePlaylist}, // first declared
		{"unknown", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Resolve(tt.key))
		})
	}
}

func TestResolver_ResolveInContexts(t *testing.T) {
	r := NewResolver(testBindings)

	assert.Equal(t, ActionSavePlaylist, r.Resolve("ctrl+s", "global", "tracks"))
	assert.Equal(t, ActionReloadPlaylists, r.Resolve("ctrl+s", "global", "saved"))
	assert.Equal(t, ActionQuit, r.Resolve("q", "global", "saved"))
	assert.Empty(t, r.Resolve("q", "playback"), "inactive context")
	assert.Empty(t, r.Resolve("r", "tracks"))
}

func TestResolver_EarlierContextShadows(t *testing.T) {
	r := NewResolver([]Binding{
		{ActionStop, []string{"s"}, "Stop", "playback"},
		{ActionSavePlaylist, []string{"s"}, "Save", "tracks"},
	})

	assert.Equal(t, ActionSavePlaylist, r.Resolve("s", "tracks", "playback"))
	assert.Equal(t, ActionStop, r.Resolve("s", "playback", "tracks"))
}

func TestResolver_KeysFor(t *testing.T) {
	r := NewResolver(testBindings)

	assert.Equal(t, []string{"ctrl+c", "q"}, r.KeysFor(ActionQuit))
	assert.Equal(t, []string{"enter"}, r.KeysFor(ActionSelect), "shared key listed once")
	assert.Nil(t, r.KeysFor(Action("unknown")))
}

func TestResolver_Empty(t *testing.T) {
	r := NewResolver(nil)

	assert.Empty(t, r.Resolve("q"))
	assert.Empty(t, r.Resolve("q", "global"))
	assert.Nil(t, r.KeysFor(ActionQuit))
}

func TestResolver_FrontendBindings(t *testing.T) {
	r := NewResolver(Bindings)
	tracks := []string{"global", "playback", "list", "tracks"}
	saved := []string{"global", "playback", "list", "saved"}

	assert.Equal(t, ActionPlayPause, r.Resolve(" ", tracks...))
	assert.Equal(t, ActionSwitchView, r.Resolve("tab", saved...))
	assert.Equal(t, ActionMoveDown, r.Resolve("j", saved...))
	assert.Equal(t, ActionSavePlaylist, r.Resolve("ctrl+s", tracks...))
	assert.Empty(t, r.Resolve("ctrl+s", saved...))
	assert.Equal(t, ActionReloadPlaylists, r.Resolve("r", saved...))
	assert.Empty(t, r.Resolve("r", tracks...))
}
