package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// styles are the monitor's lipgloss styles derived from a theme.
type styles struct {
	canvas, stats, header  lipgloss.Style
	label, value, active   lipgloss.Style
	graph, help            lipgloss.Style
	running, paused, fault lipgloss.Style
	sparkHigh, sparkLow    lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		canvas:    lipgloss.NewStyle().Padding(1, 2),
		stats:     lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(t.Muted).Padding(1, 2).Width(46),
		header:    lipgloss.NewStyle().Foreground(t.Primary).Bold(true).MarginBottom(1),
		label:     lipgloss.NewStyle().Foreground(t.Muted).Width(12),
		value:     lipgloss.NewStyle().Foreground(t.Text),
		active:    lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		graph:     lipgloss.NewStyle().Foreground(t.Primary).Padding(1, 0),
		help:      lipgloss.NewStyle().Foreground(t.Muted).Italic(true).MarginTop(1),
		running:   lipgloss.NewStyle().Foreground(t.Success).Bold(true),
		paused:    lipgloss.NewStyle().Foreground(t.Warning).Bold(true),
		fault:     lipgloss.NewStyle().Foreground(t.Error).Bold(true),
		sparkHigh: lipgloss.NewStyle().Foreground(t.Warning),
		sparkLow:  lipgloss.NewStyle().Foreground(t.Success),
	}
}

var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders the last width values scaled between their min and max.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return strings.Repeat("─", max(width, 0))
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	var b strings.Builder
	for _, v := range values {
		idx := int(math.Round((v - lo) / span * float64(len(sparkChars)-1)))
		idx = min(max(idx, 0), len(sparkChars)-1)
		b.WriteRune(sparkChars[idx])
	}
	return b.String()
}

// ProgressBar renders fraction (0..1) as a bar of the given width.
func ProgressBar(fraction float64, width int) string {
	filled := min(max(int(fraction*float64(width)), 0), width)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
