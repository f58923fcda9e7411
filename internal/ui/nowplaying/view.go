package nowplaying

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 {
		return ""
	}

	cover := ""
	if m.cover {
		cover = kittyImage(m.thumb, artCols, artRows)
	}
	header := bar{
		Track:    m.track,
		HasTrack: m.hasTrack,
		State:    m.state,
		Position: m.position,
		Volume:   m.volume,
		Index:    m.current,
		Total:    len(m.tracks),
		Cover:    cover,
	}.render(m.width)

	footer := m.footer()
	listHeight := max(m.height-barHeight-1-lipgloss.Height(footer), 1)

	var body string
	if m.view == viewSaved {
		body = m.savedView(listHeight)
	} else {
		body = m.tracksView(listHeight)
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, m.heading(), body, footer)
}

func (m Model) heading() string {
	var left, right string
	if m.view == viewSaved {
		left = headingStyle.Render(fmt.Sprintf("Saved playlists (%d)", m.saved.Len()))
		right = subtleStyle.Render("tab: tracks")
	} else {
		left = headingStyle.Render(fmt.Sprintf("Tracks (%d)", len(m.tracks)))
		right = subtleStyle.Render("tab: saved playlists")
	}
	return row(" "+left, right+" ", m.width)
}

func (m Model) tracksView(height int) string {
	if len(m.tracks) == 0 {
		return padLines(mutedStyle.Render("  No tracks. Press o to open a folder."), height)
	}

	numWidth := len(fmt.Sprint(len(m.tracks)))
	durWidth := 8
	artistWidth := max((m.width-numWidth-durWidth-8)/3, 0)
	titleWidth := max(m.width-numWidth-durWidth-artistWidth-8, 1)

	start, end := window(m.cursor, len(m.tracks), height)
	lines := make([]string, 0, height)
	for i := start; i < end; i++ {
		t := m.tracks[i]
		marker := "  "
		if i == m.current {
			marker = playSymbol + " "
		}
		line := fmt.Sprintf("%s%*d  %s  %s  %*s",
			marker, numWidth, i+1,
			fit(t.Title, titleWidth),
			fit(t.Artist(), artistWidth),
			durWidth, formatDuration(t.Duration),
		)
		lines = append(lines, m.lineStyle(i == m.cursor, i == m.current).Render(line))
	}
	return padLines(strings.Join(lines, "\n"), height)
}

func (m Model) savedView(height int) string {
	if m.saved.Len() == 0 {
		return padLines(mutedStyle.Render("  No saved playlists. Press ctrl+s in the track list to save one."), height)
	}

	countWidth := 14
	nameWidth := max(m.width-countWidth-6, 1)

	start, end := window(m.savedCursor, m.saved.Len(), height)
	lines := make([]string, 0, height)
	for i := start; i < end; i++ {
		p := m.saved.Playlists[i]
		line := fmt.Sprintf("  %s  %*s", fit(p.Name, nameWidth), countWidth, trackCount(len(p.URIs)))
		lines = append(lines, m.lineStyle(i == m.savedCursor, false).Render(line))
	}
	return padLines(strings.Join(lines, "\n"), height)
}

func (m Model) lineStyle(cursor, playing bool) lipgloss.Style {
	switch {
	case cursor && playing:
		return cursorStyle.Foreground(colorPrimary).Bold(true)
	case cursor:
		return cursorStyle
	case playing:
		return playingStyle
	}
	return baseStyle
}

func (m Model) footer() string {
	var lines []string
	switch {
	case m.naming:
		lines = append(lines, m.input.View())
	case m.status != "":
		lines = append(lines, statusStyles[m.statusLevel].Render(truncate(m.status, m.width-1)))
	default:
		lines = append(lines, "")
	}
	lines = append(lines, m.help.View(m.hk))
	return strings.Join(lines, "\n")
}

// trackCount renders n as "1 track" or "1,204 tracks".
func trackCount(n int) string {
	if n == 1 {
		return "1 track"
	}
	return humanize.Comma(int64(n)) + " tracks"
}

// window returns the visible [start, end) range of n rows keeping cursor
// on screen.
func window(cursor, n, height int) (int, int) {
	if n <= height {
		return 0, n
	}
	start := min(max(cursor-height/2, 0), n-height)
	return start, start + height
}

// padLines pads s with empty lines up to height.
func padLines(s string, height int) string {
	if missing := height - lipgloss.Height(s); missing > 0 {
		s += strings.Repeat("\n", missing)
	}
	return s
}
