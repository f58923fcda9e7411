// Package nowplaying is the terminal frontend: it renders controller
// responses and turns key presses into controller commands.
package nowplaying

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/reyvr/internal/keymap"
	"github.com/llehouerou/reyvr/internal/playback"
	"github.com/llehouerou/reyvr/internal/player"
	"github.com/llehouerou/reyvr/internal/playlist"
	"github.com/llehouerou/reyvr/internal/playlists"
	"github.com/llehouerou/reyvr/internal/ringbuf"
)

const (
	seekStep     = 5 * time.Second
	volumeStep   = 0.05
	statusExpiry = 4 * time.Second
)

// Commands is the command side of the controller. *playback.Handle
// implements it.
type Commands interface {
	Play() error
	Pause() error
	Stop() error
	Next() error
	Previous() error
	Seek(pos time.Duration) error
	SetVolume(v float64) error
	PlayByID(index int) error
	LoadFolder() error
	GetMetadata() error
	GetTracks() error
	LoadSavedPlaylists() error
	AddSavedPlaylist(p playlists.SavedPlaylist) error
	WriteSavedPlaylists() error
	PlaySavedPlaylist(name string) error
}

// Status reads controller snapshots. *playback.Controller implements it.
type Status interface {
	Playlist() *playlist.Playlist
	Volume() float64
}

// Options configures a Model.
type Options struct {
	Commands  Commands
	Status    Status
	Responses *ringbuf.Receiver[playback.Response]
	Stderr    *ringbuf.Receiver[string] // nil when stderr is not captured
	// AutoAdvance plays the next track when the current one ends.
	AutoAdvance bool
	// Cover draws thumbnails with the kitty graphics protocol.
	Cover bool
}

type view int

const (
	viewTracks view = iota
	viewSaved
)

type level int

const (
	levelInfo level = iota
	levelWarning
	levelError
)

type (
	responseMsg        struct{ r playback.Response }
	responsesClosedMsg struct{}
	enqueueFailedMsg   struct{ err error }
	stderrMsg          struct{ line string }
	clearStatusMsg     struct{ version int }
)

// Model is the bubbletea model of the terminal frontend.
type Model struct {
	cmds   Commands
	st     Status
	rx     *ringbuf.Receiver[playback.Response]
	stderr *ringbuf.Receiver[string]
	keys   *keymap.Resolver
	help   help.Model
	hk     helpKeys
	input  textinput.Model

	autoAdvance bool
	cover       bool

	tracks   []playlist.Track
	current  int
	track    playlist.Track
	hasTrack bool
	thumb    *playlist.Thumbnail
	state    player.State
	position time.Duration
	volume   float64

	saved       playlists.SavedPlaylists
	view        view
	cursor      int
	savedCursor int
	naming      bool
	showHelp    bool

	status        string
	statusLevel   level
	statusVersion int

	width  int
	height int
}

// New creates the model.
func New(opts Options) Model {
	in := textinput.New()
	in.Prompt = "Save as: "
	in.Placeholder = "playlist name"
	in.CharLimit = 128

	m := Model{
		cmds:        opts.Commands,
		st:          opts.Status,
		rx:          opts.Responses,
		stderr:      opts.Stderr,
		keys:        keymap.NewResolver(keymap.Bindings),
		help:        help.New(),
		hk:          newHelpKeys(),
		input:       in,
		autoAdvance: opts.AutoAdvance,
		cover:       opts.Cover,
		current:     -1,
	}
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.waitResponse(),
		m.waitStderr(),
		m.requestInitial(),
	)
}

// requestInitial asks for the state the controller already holds.
func (m Model) requestInitial() tea.Cmd {
	cmds := m.cmds
	return func() tea.Msg {
		if err := errors.Join(cmds.GetTracks(), cmds.GetMetadata()); err != nil {
			return enqueueFailedMsg{err: err}
		}
		return nil
	}
}

// waitResponse reads the next controller response.
func (m Model) waitResponse() tea.Cmd {
	if m.rx == nil {
		return nil
	}
	rx := m.rx
	return func() tea.Msg {
		r, err := rx.Recv(context.Background())
		if err != nil {
			return responsesClosedMsg{}
		}
		return responseMsg{r: r}
	}
}

// waitStderr reads the next line written by C libraries.
func (m Model) waitStderr() tea.Cmd {
	if m.stderr == nil {
		return nil
	}
	rx := m.stderr
	return func() tea.Msg {
		line, err := rx.Recv(context.Background())
		if err != nil {
			return nil
		}
		return stderrMsg{line: line}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.input.Width = max(msg.Width-len(m.input.Prompt)-2, 10)
		return m, nil

	case responseMsg:
		cmd := m.handleResponse(msg.r)
		return m, tea.Batch(cmd, m.waitResponse())

	case responsesClosedMsg:
		return m, tea.Quit

	case enqueueFailedMsg:
		return m, m.do(msg.err)

	case stderrMsg:
		cmd := m.setStatus(levelWarning, msg.line)
		return m, tea.Batch(cmd, m.waitStderr())

	case clearStatusMsg:
		if msg.version == m.statusVersion {
			m.status = ""
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.naming {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleResponse folds a controller response into the model.
func (m *Model) handleResponse(r playback.Response) tea.Cmd {
	defer m.refresh()

	switch r := r.(type) {
	case playback.StateChanged:
		m.state = r.State
		if r.State == player.Stopped {
			m.position = 0
		}
	case playback.Position:
		m.position = r.Elapsed
	case playback.Metadata:
		if r.Track.Thumbnail != nil || r.Track.URI != m.track.URI {
			m.thumb = r.Track.Thumbnail
		}
		m.track = r.Track
		m.hasTrack = true
	case playback.Thumbnail:
		m.thumb = r.Image
	case playback.Tracks:
		m.tracks = r.Tracks
		m.cursor = clamp(m.cursor, len(m.tracks))
	case playback.SavedPlaylists:
		m.saved = r.Playlists
		m.savedCursor = clamp(m.savedCursor, m.saved.Len())
	case playback.StreamStart:
		m.position = 0
		return m.do(m.cmds.GetMetadata())
	case playback.EndOfStream:
		if m.autoAdvance {
			return m.do(m.cmds.Next())
		}
	case playback.Error:
		return m.setStatus(levelError, r.Message)
	case playback.Warning:
		return m.setStatus(levelWarning, r.Message)
	case playback.Info:
		return m.setStatus(levelInfo, r.Message)
	}
	return nil
}

// refresh reads the current index and volume from the controller.
func (m *Model) refresh() {
	if m.st == nil {
		return
	}
	m.current = m.st.Playlist().CurrentIndex()
	m.volume = m.st.Volume()
}

// do reports a failed send. A gone controller ends the program.
func (m *Model) do(err error) tea.Cmd {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, playback.ErrControllerGone):
		return tea.Quit
	default:
		return m.setStatus(levelError, err.Error())
	}
}

// setStatus shows msg on the status line until it expires or is replaced.
func (m *Model) setStatus(l level, msg string) tea.Cmd {
	m.statusVersion++
	m.status = msg
	m.statusLevel = l
	version := m.statusVersion
	return tea.Tick(statusExpiry, func(time.Time) tea.Msg {
		return clearStatusMsg{version: version}
	})
}

func clamp(i, n int) int {
	return max(min(i, n-1), 0)
}
