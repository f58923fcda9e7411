package nowplaying

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

// sanitize drops control characters so bad tags cannot break the layout.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\u00a0': // non-breaking space
			return ' '
		case r == unicode.ReplacementChar, unicode.IsControl(r):
			return -1
		}
		return r
	}, s)
}

// truncate shortens plain text to width cells with a single-cell ellipsis.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return ansi.Truncate(sanitize(s), width, "…")
}

// fit truncates then pads plain text to exactly width cells.
func fit(s string, width int) string {
	return runewidth.FillRight(truncate(s, width), width)
}

// row places left and right at the edges of width, keeping at least one
// space between them. Both may be styled.
func row(left, right string, width int) string {
	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return left + strings.Repeat(" ", gap) + right
}

func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Truncate(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
