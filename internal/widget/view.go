package widget

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"git.home.luguber.info/inful/pulse/internal/config"
	"git.home.luguber.info/inful/pulse/internal/state"
)

// Gauge geometry. The inner width fits the 16 segments, a gap and the
// indicator lamp; the box adds padding and borders.
const (
	innerWidth = state.SegmentCount + 2
	boxWidth   = innerWidth + 4
	boxHeight  = 5
)

const (
	segmentLit   = "▰"
	segmentUnlit = "▱"
	lamp         = "●"
)

type styles struct {
	bezel lipgloss.Style
	title lipgloss.Style
	step  lipgloss.Style

	amber      lipgloss.Style
	amberFaint lipgloss.Style
	green      lipgloss.Style
	red        lipgloss.Style
	redFaint   lipgloss.Style
	dim        lipgloss.Style
}

func newStyles(t config.Theme) styles {
	return styles{
		bezel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.Bezel)).
			Padding(0, 1),
		title: lipgloss.NewStyle().Bold(true),
		step:  lipgloss.NewStyle().Foreground(lipgloss.Color(t.Bezel)),

		amber:      lipgloss.NewStyle().Foreground(lipgloss.Color(t.Amber)),
		amberFaint: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Amber)).Faint(true),
		green:      lipgloss.NewStyle().Foreground(lipgloss.Color(t.Green)),
		red:        lipgloss.NewStyle().Foreground(lipgloss.Color(t.Red)),
		redFaint:   lipgloss.NewStyle().Foreground(lipgloss.Color(t.Red)).Faint(true),
		dim:        lipgloss.NewStyle().Foreground(lipgloss.Color(t.Dim)),
	}
}

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	return overlayAt(m.renderBox(), m.pos.X, m.pos.Y, m.height)
}

func (m Model) renderBox() string {
	title := m.snap.TaskName
	if title == "" {
		title = "PULSE"
	}

	lines := []string{
		m.styles.title.Render(truncate(title, innerWidth)),
		m.renderGauge(),
		m.styles.step.Render(truncate(m.statusLine(), innerWidth)),
	}
	return m.styles.bezel.Render(strings.Join(lines, "\n"))
}

// renderGauge draws the segment bar plus the indicator lamp.
func (m Model) renderGauge() string {
	lit := state.LitSegments(m.snap.Progress, state.SegmentCount)

	var litStyle lipgloss.Style
	switch m.snap.Phase {
	case state.PhaseComplete:
		litStyle = m.styles.green
		lit = state.SegmentCount
	case state.PhaseError:
		litStyle = m.styles.red
	default:
		litStyle = m.styles.amber
	}

	var bar strings.Builder
	for i := 0; i < state.SegmentCount; i++ {
		if i < lit {
			bar.WriteString(litStyle.Render(segmentLit))
		} else {
			bar.WriteString(m.styles.dim.Render(segmentUnlit))
		}
	}

	return bar.String() + " " + m.renderLamp()
}

// renderLamp draws the indicator: faint amber when idle, blinking amber
// when active, solid green when complete, pulsing red on error.
func (m Model) renderLamp() string {
	switch m.snap.Phase {
	case state.PhaseActive:
		if m.blinkOn {
			return m.styles.amber.Render(lamp)
		}
		return m.styles.amberFaint.Render(lamp)
	case state.PhaseComplete:
		return m.styles.green.Render(lamp)
	case state.PhaseError:
		if m.blinkOn {
			return m.styles.red.Render(lamp)
		}
		return m.styles.redFaint.Render(lamp)
	default:
		return m.styles.amberFaint.Render(lamp)
	}
}

func (m Model) statusLine() string {
	switch m.snap.Phase {
	case state.PhaseIdle:
		return "idle"
	case state.PhaseComplete:
		return "complete"
	}

	line := m.snap.CurrentStep
	if line == "" {
		line = string(m.snap.Phase)
	}
	if m.snap.ETASeconds != nil && m.snap.Phase == state.PhaseActive {
		line += " " + formatETA(*m.snap.ETASeconds)
	}
	return line
}

// formatETA renders seconds as a compact human-readable duration.
func formatETA(seconds int) string {
	switch {
	case seconds < 60:
		return fmt.Sprintf("%ds", seconds)
	case seconds < 3600:
		return fmt.Sprintf("%dm %ds", seconds/60, seconds%60)
	default:
		return fmt.Sprintf("%dh %dm", seconds/3600, (seconds%3600)/60)
	}
}

func truncate(s string, w int) string {
	r := []rune(s)
	if len(r) <= w {
		return s
	}
	return string(r[:w-1]) + "…"
}

// overlayAt positions the rendered box at cell (x, y) inside a screen
// of the given height by padding with blank lines and left indentation.
// The terminal clips anything past the right edge.
func overlayAt(box string, x, y, screenHeight int) string {
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}

	indent := strings.Repeat(" ", x)
	boxLines := strings.Split(box, "\n")

	lines := make([]string, 0, screenHeight)
	for i := 0; i < y; i++ {
		lines = append(lines, "")
	}
	for _, bl := range boxLines {
		lines = append(lines, indent+bl)
	}
	for len(lines) < screenHeight {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}
