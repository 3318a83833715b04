package progress

import (
	"fmt"
	"log/slog"
	"sync"

	"git.home.luguber.info/inful/pulse/internal/state"
)

// Task reports a multi-step job. Steps advance a fraction of the total
// unless an explicit progress value is set.
type Task struct {
	store      *state.Store
	name       string
	totalSteps int

	mu      sync.Mutex
	current int
	closed  bool
}

// NewTask creates the task and reports the starting state.
func NewTask(store *state.Store, name string, totalSteps int) *Task {
	if totalSteps < 1 {
		totalSteps = 1
	}
	t := &Task{store: store, name: name, totalSteps: totalSteps}
	if err := store.UpdateProgress(name, "Starting...", 0.0, state.UpdateOptions{}); err != nil {
		slog.Warn("Failed to report task start", "error", err)
	}
	return t
}

// Step advances to the next step and reports it as "Step x/y: desc"
// with progress x/y.
func (t *Task) Step(desc string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}

	t.current++
	progress := float64(t.current) / float64(t.totalSteps)
	step := fmt.Sprintf("Step %d/%d: %s", t.current, t.totalSteps, desc)
	if err := t.store.UpdateProgress(t.name, step, progress, state.UpdateOptions{}); err != nil {
		slog.Warn("Failed to report task step", "error", err)
	}
}

// SetProgress reports an explicit progress value within the current
// step. An empty desc falls back to the step counter.
func (t *Task) SetProgress(progress float64, desc string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}

	if desc == "" {
		desc = fmt.Sprintf("Step %d/%d", t.current, t.totalSteps)
	}
	if err := t.store.UpdateProgress(t.name, desc, progress, state.UpdateOptions{}); err != nil {
		slog.Warn("Failed to report task progress", "error", err)
	}
}

// Fail reports the error state, keeping the progress reached so far.
// The task stays open; callers usually Close right after, which is then
// a no-op on the state because Fail marks it inactive already.
func (t *Task) Fail(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.closed = true

	progress := float64(t.current) / float64(t.totalSteps)
	if ferr := t.store.Fail(t.name, "Error occurred", progress, err.Error()); ferr != nil {
		slog.Warn("Failed to report task error", "error", ferr)
	}
}

// Close marks the task complete. Safe to call more than once; a failed
// task keeps its error state.
func (t *Task) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.closed = true

	if err := t.store.CompleteTask(); err != nil {
		slog.Warn("Failed to mark task complete", "error", err)
	}
}
