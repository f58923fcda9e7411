package nowplaying

import (
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/rivo/uniseg"
)

// Palette
var (
	colorPrimary   = lipgloss.Color("#a78bfa") // focused items, active states
	colorSecondary = lipgloss.Color("#f1a208")
	colorFg        = lipgloss.Color("#c0c0c0")
	colorMuted     = lipgloss.Color("#808080")
	colorSubtle    = lipgloss.Color("#585858")
	colorCursorBg  = lipgloss.Color("#303030")
	colorBorder    = lipgloss.Color("#585858")
	colorError     = lipgloss.Color("#ff5555")
	colorWarning   = lipgloss.Color("#f1a208")
	colorSuccess   = lipgloss.Color("#42b883")
)

var (
	baseStyle    = lipgloss.NewStyle().Foreground(colorFg)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	subtleStyle  = lipgloss.NewStyle().Foreground(colorSubtle)
	playingStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	cursorStyle  = lipgloss.NewStyle().Background(colorCursorBg).Foreground(colorFg)
	headingStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)

	barStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	statusStyles = map[level]lipgloss.Style{
		levelInfo:    lipgloss.NewStyle().Foreground(colorSuccess),
		levelWarning: lipgloss.NewStyle().Foreground(colorWarning),
		levelError:   lipgloss.NewStyle().Foreground(colorError).Bold(true),
	}
)

// gradientText renders text bold with a horizontal color gradient.
func gradientText(text string, from, to lipgloss.Color) string {
	var clusters []string
	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		clusters = append(clusters, gr.Str())
	}

	switch len(clusters) {
	case 0:
		return ""
	case 1:
		return lipgloss.NewStyle().Foreground(from).Bold(true).Render(text)
	}

	colors := blend(len(clusters), from, to)
	var b strings.Builder
	for i, cluster := range clusters {
		b.WriteString(lipgloss.NewStyle().Foreground(colors[i]).Bold(true).Render(cluster))
	}
	return b.String()
}

// blend returns size colors from from to to, interpolated in HCL space.
func blend(size int, from, to lipgloss.Color) []lipgloss.Color {
	if size < 2 {
		return []lipgloss.Color{from}
	}
	c1, _ := colorful.MakeColor(toColor(from))
	c2, _ := colorful.MakeColor(toColor(to))

	out := make([]lipgloss.Color, size)
	for i := range size {
		t := float64(i) / float64(size-1)
		out[i] = lipgloss.Color(c1.BlendHcl(c2, t).Clamped().Hex())
	}
	return out
}

// toColor parses a #rrggbb lipgloss color; ANSI indexes fall back to gray.
func toColor(c lipgloss.Color) color.Color {
	if col, err := colorful.Hex(string(c)); err == nil {
		return col
	}
	return color.RGBA{R: 128, G: 128, B: 128, A: 255}
}
