package state

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/pulse/internal/paths"
)

// Position is the persisted widget placement. The timestamp is
// informational only and ignored on load.
type Position struct {
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Timestamp string `json:"timestamp"`
}

// NoPosition is the sentinel returned by LoadPosition when nothing
// usable is stored; the widget then computes its default placement
// (bottom-right corner minus a margin) from the live window size.
var NoPosition = Position{X: -1, Y: -1}

func (s *Store) positionPath() string {
	return filepath.Join(s.dir, paths.PositionFile)
}

// SavePosition persists the widget placement. Called on every move with
// no debounce; the file is tiny and last-write-wins is fine.
func (s *Store) SavePosition(x, y int) error {
	pos := Position{X: x, Y: y, Timestamp: time.Now().UTC().Format(time.RFC3339)}
	data, err := json.MarshalIndent(pos, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal widget position: %w", err)
	}
	if err := os.WriteFile(s.positionPath(), data, 0o644); err != nil {
		return fmt.Errorf("failed to write widget position: %w", err)
	}
	return nil
}

// LoadPosition returns the stored placement, or NoPosition when the
// file is absent or malformed. It never fails; a broken position file
// only costs the user their remembered spot.
func (s *Store) LoadPosition() Position {
	data, err := os.ReadFile(s.positionPath())
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Failed to read widget position file", "error", err)
		}
		return NoPosition
	}
	var pos Position
	if err := json.Unmarshal(data, &pos); err != nil {
		slog.Warn("Malformed widget position file, using default placement", "error", err)
		return NoPosition
	}
	return pos
}
