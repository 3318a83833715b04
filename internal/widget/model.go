// Package widget renders the progress gauge as a terminal overlay: a
// bezel box with a 16-segment LED bar and a blinking indicator lamp,
// movable with the arrow keys.
package widget

import (
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"git.home.luguber.info/inful/pulse/internal/config"
	"git.home.luguber.info/inful/pulse/internal/state"
)

// SnapshotMsg carries a freshly reconciled display state into the UI
// loop. The reconciler sends it via Program.Send, which is safe from
// the watcher goroutine.
type SnapshotMsg state.Snapshot

// blinkMsg drives the indicator lamp animation.
type blinkMsg time.Time

// margin between the widget and the terminal edge when no stored
// position exists.
const margin = 2

// positionStore is the slice of state.Store the model needs.
type positionStore interface {
	SavePosition(x, y int) error
	LoadPosition() state.Position
}

// Model is the bubbletea model for the overlay widget.
type Model struct {
	styles styles
	store  positionStore
	blink  time.Duration

	snap    state.Snapshot
	blinkOn bool

	width  int
	height int

	pos      state.Position
	posKnown bool
}

// New builds the widget model. The stored position is restored lazily:
// it is clamped (or defaulted to the bottom-right corner) once the
// first window size arrives.
func New(cfg *config.Config, store positionStore) Model {
	m := Model{
		styles:  newStyles(cfg.Theme),
		store:   store,
		blink:   cfg.Widget.BlinkIntervalDuration(),
		snap:    state.IdleSnapshot(),
		blinkOn: true,
	}
	if pos := store.LoadPosition(); pos != state.NoPosition {
		m.pos = pos
		m.posKnown = true
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return m.blinkTick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.posKnown {
			m.pos = m.defaultPosition()
			m.posKnown = true
		}
		m.pos = m.clampPosition(m.pos)

	case SnapshotMsg:
		m.snap = state.Snapshot(msg)

	case blinkMsg:
		m.blinkOn = !m.blinkOn
		return m, m.blinkTick()

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			return m.move(0, -1), nil
		case "down", "j":
			return m.move(0, 1), nil
		case "left", "h":
			return m.move(-1, 0), nil
		case "right", "l":
			return m.move(1, 0), nil
		}
	}
	return m, nil
}

func (m Model) blinkTick() tea.Cmd {
	return tea.Tick(m.blink, func(t time.Time) tea.Msg {
		return blinkMsg(t)
	})
}

// move shifts the widget and persists the new position immediately.
// Every move writes the file; there is no debounce here.
func (m Model) move(dx, dy int) Model {
	if !m.posKnown {
		return m
	}
	m.pos = m.clampPosition(state.Position{X: m.pos.X + dx, Y: m.pos.Y + dy})
	if err := m.store.SavePosition(m.pos.X, m.pos.Y); err != nil {
		slog.Warn("Failed to save widget position", "error", err)
	}
	return m
}

// defaultPosition is the bottom-right corner minus a margin.
func (m Model) defaultPosition() state.Position {
	return state.Position{
		X: m.width - boxWidth - margin,
		Y: m.height - boxHeight - margin,
	}
}

func (m Model) clampPosition(pos state.Position) state.Position {
	maxX := m.width - boxWidth
	maxY := m.height - boxHeight
	if pos.X > maxX {
		pos.X = maxX
	}
	if pos.Y > maxY {
		pos.Y = maxY
	}
	if pos.X < 0 {
		pos.X = 0
	}
	if pos.Y < 0 {
		pos.Y = 0
	}
	return pos
}
