package nowplaying

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/reyvr/internal/keymap"
	"github.com/llehouerou/reyvr/internal/player"
	"github.com/llehouerou/reyvr/internal/playlists"
)

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.naming {
		return m.handleNamingKey(msg)
	}

	switch m.keys.Resolve(msg.String(), m.activeContexts()...) {
	case keymap.ActionQuit:
		return m, tea.Quit
	case keymap.ActionHelp:
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
	case keymap.ActionSwitchView:
		if m.view == viewTracks {
			m.view = viewSaved
			return m, m.do(m.cmds.LoadSavedPlaylists())
		}
		m.view = viewTracks
	case keymap.ActionLoadFolder:
		return m, m.do(m.cmds.LoadFolder())

	case keymap.ActionPlayPause:
		if m.state == player.Playing {
			return m, m.do(m.cmds.Pause())
		}
		return m, m.do(m.cmds.Play())
	case keymap.ActionStop:
		return m, m.do(m.cmds.Stop())
	case keymap.ActionNextTrack:
		return m, m.do(m.cmds.Next())
	case keymap.ActionPrevTrack:
		return m, m.do(m.cmds.Previous())
	case keymap.ActionSeekForward:
		return m, m.do(m.cmds.Seek(m.position + seekStep))
	case keymap.ActionSeekBack:
		return m, m.do(m.cmds.Seek(max(m.position-seekStep, 0)))
	case keymap.ActionVolumeUp:
		return m, m.changeVolume(volumeStep)
	case keymap.ActionVolumeDown:
		return m, m.changeVolume(-volumeStep)
	case keymap.ActionRefreshMeta:
		return m, m.do(m.cmds.GetMetadata())

	case keymap.ActionMoveUp:
		m.moveCursor(-1)
	case keymap.ActionMoveDown:
		m.moveCursor(1)
	case keymap.ActionJumpStart:
		m.moveCursor(-m.listLen())
	case keymap.ActionJumpEnd:
		m.moveCursor(m.listLen())
	case keymap.ActionSelect:
		return m, m.activate()

	case keymap.ActionSavePlaylist:
		if len(m.tracks) > 0 {
			m.naming = true
			m.input.SetValue("")
			return m, m.input.Focus()
		}
	case keymap.ActionReloadPlaylists:
		return m, m.do(m.cmds.LoadSavedPlaylists())
	}
	return m, nil
}

// activeContexts lists the key contexts live in the current view.
func (m Model) activeContexts() []string {
	if m.view == viewSaved {
		return []string{"global", "playback", "list", "saved"}
	}
	return []string{"global", "playback", "list", "tracks"}
}

// handleNamingKey feeds the playlist name prompt.
func (m Model) handleNamingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.naming = false
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		m.naming = false
		m.input.Blur()
		name := strings.TrimSpace(m.input.Value())
		if name == "" {
			return m, m.setStatus(levelWarning, "Playlist name is empty.")
		}
		uris := make([]string, len(m.tracks))
		for i, t := range m.tracks {
			uris[i] = t.URI
		}
		if err := m.cmds.AddSavedPlaylist(playlists.SavedPlaylist{Name: name, URIs: uris}); err != nil {
			return m, m.do(err)
		}
		return m, m.do(m.cmds.WriteSavedPlaylists())
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) changeVolume(delta float64) tea.Cmd {
	v := min(max(m.volume+delta, 0), 1)
	m.volume = v
	return m.do(m.cmds.SetVolume(v))
}

func (m *Model) listLen() int {
	if m.view == viewSaved {
		return m.saved.Len()
	}
	return len(m.tracks)
}

func (m *Model) moveCursor(delta int) {
	if m.view == viewSaved {
		m.savedCursor = clamp(m.savedCursor+delta, m.saved.Len())
		return
	}
	m.cursor = clamp(m.cursor+delta, len(m.tracks))
}

// activate plays the entry under the cursor.
func (m *Model) activate() tea.Cmd {
	if m.view == viewSaved {
		if m.saved.Len() == 0 {
			return nil
		}
		name := m.saved.Playlists[m.savedCursor].Name
		m.view = viewTracks
		m.cursor = 0
		return m.do(m.cmds.PlaySavedPlaylist(name))
	}
	if len(m.tracks) == 0 {
		return nil
	}
	return m.do(m.cmds.PlayByID(m.cursor))
}

// helpKeys adapts the key bindings to the bubbles help view.
type helpKeys struct {
	short []key.Binding
	full  [][]key.Binding
}

var contexts = []string{"global", "playback", "list", "tracks", "saved"}

func newHelpKeys() helpKeys {
	var hk helpKeys
	for _, ctx := range contexts {
		var col []key.Binding
		for _, b := range keymap.ByContext(ctx) {
			col = append(col, binding(b))
		}
		hk.full = append(hk.full, col)
	}
	for _, a := range []keymap.Action{keymap.ActionPlayPause, keymap.ActionNextTrack, keymap.ActionSwitchView, keymap.ActionHelp, keymap.ActionQuit} {
		for _, b := range keymap.Bindings {
			if b.Action == a {
				hk.short = append(hk.short, binding(b))
				break
			}
		}
	}
	return hk
}

func binding(b keymap.Binding) key.Binding {
	names := make([]string, len(b.Keys))
	for i, k := range b.Keys {
		if k == " " {
			k = "space"
		}
		names[i] = k
	}
	return key.NewBinding(key.WithKeys(b.Keys...), key.WithHelp(strings.Join(names, "/"), b.Description))
}

// ShortHelp implements help.KeyMap.
func (h helpKeys) ShortHelp() []key.Binding { return h.short }

// FullHelp implements help.KeyMap.
func (h helpKeys) FullHelp() [][]key.Binding { return h.full }
