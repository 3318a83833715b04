// Package reconcile turns the current progress file contents into a
// fully defined display snapshot, absorbing every failure mode.
package reconcile

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/pulse/internal/paths"
	"git.home.luguber.info/inful/pulse/internal/state"
)

// Reconciler loads the progress file and publishes derived snapshots.
// It is driven by the watcher callback and by the initial load at
// startup; it may be invoked from any goroutine as long as publish is
// safe to call off the UI thread (the widget passes Program.Send, which
// queues into the UI loop).
type Reconciler struct {
	dir     string
	publish func(state.Snapshot)
}

// New creates a reconciler over the data directory. publish receives
// every snapshot produced by Reload, including the idle fallbacks.
func New(dir string, publish func(state.Snapshot)) *Reconciler {
	return &Reconciler{dir: dir, publish: publish}
}

// Reload reads the progress file and publishes the derived snapshot.
// It never fails: a missing file is the idle state, and a malformed
// file is logged and treated identically to a missing one. Stale state
// is never retained. Calling Reload repeatedly with unchanged file
// content publishes identical snapshots.
func (r *Reconciler) Reload() {
	r.publish(r.load())
}

func (r *Reconciler) load() state.Snapshot {
	path := filepath.Join(r.dir, paths.ProgressFile)

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Failed to read progress file, showing idle", "path", path, "error", err)
		}
		return state.IdleSnapshot()
	}

	var rec state.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		slog.Warn("Malformed progress file, showing idle", "path", path, "error", err)
		return state.IdleSnapshot()
	}

	return rec.Snapshot()
}
