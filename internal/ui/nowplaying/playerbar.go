package nowplaying

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/reyvr/internal/player"
	"github.com/llehouerou/reyvr/internal/playlist"
)

const (
	playSymbol  = "▶"
	pauseSymbol = "⏸"
	stopSymbol  = "■"

	artCols = 6
	artRows = 2

	barHeight = 4 // two content rows plus borders
)

// bar holds everything needed to render the player bar.
type bar struct {
	Track    playlist.Track
	HasTrack bool
	State    player.State
	Position time.Duration
	Volume   float64
	Index    int // -1 when nothing is loaded
	Total    int
	Cover    string // kitty sequence, "" to draw no art
}

// render returns the two-line player bar for the given width.
func (b bar) render(width int) string {
	inner := max(width-4, 10) // borders and padding
	art := ""
	if b.Cover != "" {
		art = strings.Repeat(" ", artCols+1)
	}
	content := inner - lipgloss.Width(art)

	lines := []string{b.titleLine(content), b.progressLine(content)}
	for i := range lines {
		lines[i] = art + lines[i]
	}
	rendered := barStyle.Width(width - 2).Render(strings.Join(lines, "\n"))
	if b.Cover == "" {
		return rendered
	}
	return injectCover(rendered, b.Cover)
}

func (b bar) titleLine(width int) string {
	if !b.HasTrack {
		return mutedStyle.Render(fit("Nothing loaded", width))
	}
	pos := ""
	if b.Index >= 0 && b.Total > 0 {
		pos = fmt.Sprintf("%d/%d", b.Index+1, b.Total)
	}
	info := b.Track.Artist()
	if b.Track.Album != "" {
		if info != "" {
			info += " · "
		}
		info += b.Track.Album
	}

	titleWidth := width - lipgloss.Width(pos) - 1
	if info != "" {
		titleWidth = min(titleWidth, max(width/2, lipgloss.Width(b.Track.Title)))
	}
	left := gradientText(truncate(b.Track.Title, titleWidth), colorPrimary, colorSecondary)
	if info != "" {
		room := width - lipgloss.Width(left) - lipgloss.Width(pos) - 4
		if room > 3 {
			left += "   " + mutedStyle.Render(truncate(info, room))
		}
	}
	return row(left, subtleStyle.Render(pos), width)
}

func (b bar) progressLine(width int) string {
	status := stopSymbol
	switch b.State {
	case player.Playing:
		status = playSymbol
	case player.Paused:
		status = pauseSymbol
	}
	vol := fmt.Sprintf("vol %3d%%", int(b.Volume*100+0.5))
	times := fmt.Sprintf("%s / %s", formatDuration(b.Position), formatDuration(b.Track.Duration))

	fixed := lipgloss.Width(status) + 2 + lipgloss.Width(times) + 3 + lipgloss.Width(vol) + 2
	barWidth := width - fixed
	if barWidth < 5 {
		return row(status+"  "+times, mutedStyle.Render(vol), width)
	}
	return status + "  " + progress(b.Position, b.Track.Duration, barWidth) + "  " +
		baseStyle.Render(times) + "   " + mutedStyle.Render(vol)
}

// progress renders a gradient-filled progress bar of width cells.
func progress(pos, total time.Duration, width int) string {
	var ratio float64
	if total > 0 {
		ratio = min(float64(pos)/float64(total), 1)
	}
	filled := int(float64(width) * ratio)

	var sb strings.Builder
	for _, c := range blend(width, colorPrimary, colorSecondary)[:filled] {
		sb.WriteString(lipgloss.NewStyle().Foreground(c).Render("━"))
	}
	sb.WriteString(subtleStyle.Render(strings.Repeat("─", width-filled)))
	return sb.String()
}

// injectCover writes the image sequence right after the left border of the
// first content line; the art columns are already reserved as spaces.
func injectCover(rendered, cover string) string {
	lines := strings.SplitN(rendered, "\n", 3)
	if len(lines) < 3 {
		return rendered
	}
	first := lines[1]
	i := strings.Index(first, "│")
	if i < 0 {
		return rendered
	}
	at := i + len("│")
	return lines[0] + "\n" + first[:at] + cover + first[at:] + "\n" + lines[2]
}
