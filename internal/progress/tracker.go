// Package progress is the producer-side convenience API: counter and
// multi-step reporters that write the shared progress file the widget
// observes.
package progress

import (
	"fmt"
	"io"
	"iter"
	"log/slog"
	"os"
	"sync"
	"time"

	"git.home.luguber.info/inful/pulse/internal/state"
)

// DefaultMinInterval throttles progress file writes: updates arriving
// faster than this are dropped (the next slow one carries the count).
const DefaultMinInterval = 100 * time.Millisecond

// TrackerOptions configures a Tracker. Zero values get sensible
// defaults in NewTracker.
type TrackerOptions struct {
	Desc        string        // task name shown in the widget
	Step        string        // step label, e.g. "1/1"
	Total       int           // total units; 0 means unknown
	Unit        string        // unit suffix, e.g. "it", "rows"
	MinInterval time.Duration // report throttle
	Out         io.Writer     // final summary destination, default stderr
	Disabled    bool          // suppress all reporting
}

// Tracker is a counter-based progress reporter. Safe for concurrent
// Add calls.
type Tracker struct {
	store *state.Store
	opts  TrackerOptions

	mu         sync.Mutex
	n          int
	start      time.Time
	lastReport time.Time
	closed     bool
}

// NewTracker creates a tracker and reports the initial (zero) progress.
func NewTracker(store *state.Store, opts TrackerOptions) *Tracker {
	if opts.Desc == "" {
		opts.Desc = "Processing"
	}
	if opts.Step == "" {
		opts.Step = "1/1"
	}
	if opts.Unit == "" {
		opts.Unit = "it"
	}
	if opts.MinInterval <= 0 {
		opts.MinInterval = DefaultMinInterval
	}
	if opts.Out == nil {
		opts.Out = os.Stderr
	}

	t := &Tracker{
		store: store,
		opts:  opts,
		start: time.Now(),
	}
	if !opts.Disabled {
		t.mu.Lock()
		t.report()
		t.mu.Unlock()
	}
	return t
}

// Add advances the counter by n and reports if the throttle window has
// passed.
func (t *Tracker) Add(n int) {
	if t.opts.Disabled {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	t.n += n
	if time.Since(t.lastReport) >= t.opts.MinInterval {
		t.report()
	}
}

// N returns the current count.
func (t *Tracker) N() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.n
}

// Each wraps a sequence, advancing the tracker by one per element and
// closing it when iteration ends. The range-over-func analog of
// wrapping an iterable.
func Each[V any](t *Tracker, seq iter.Seq[V]) iter.Seq[V] {
	return func(yield func(V) bool) {
		defer t.Close()
		for v := range seq {
			if !yield(v) {
				return
			}
			t.Add(1)
		}
	}
}

// Close marks the task complete in the shared state and prints a final
// summary line. Subsequent calls are no-ops.
func (t *Tracker) Close() {
	if t.opts.Disabled {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.closed = true

	if t.n > 0 {
		if err := t.store.CompleteTask(); err != nil {
			slog.Warn("Failed to mark task complete", "error", err)
		}
		t.printFinal()
	}
}

// report writes the current state to the progress file. Caller holds
// the lock.
func (t *Tracker) report() {
	var progress float64
	var opts state.UpdateOptions
	total := "?"
	if t.opts.Total > 0 {
		progress = float64(t.n) / float64(t.opts.Total)
		total = fmt.Sprintf("%d", t.opts.Total)
		if eta, ok := t.eta(); ok {
			opts.ETASeconds = &eta
		}
	}

	step := fmt.Sprintf("%s: %d/%s%s", t.opts.Step, t.n, total, t.opts.Unit)
	if err := t.store.UpdateProgress(t.opts.Desc, step, progress, opts); err != nil {
		slog.Warn("Failed to report progress", "error", err)
	}
	t.lastReport = time.Now()
}

// eta estimates remaining seconds from the observed rate.
func (t *Tracker) eta() (int, bool) {
	if t.opts.Total <= 0 || t.n <= 0 {
		return 0, false
	}
	elapsed := time.Since(t.start).Seconds()
	if elapsed <= 0 {
		return 0, false
	}
	speed := float64(t.n) / elapsed
	if speed <= 0 {
		return 0, false
	}
	return int(float64(t.opts.Total-t.n) / speed), true
}

func (t *Tracker) printFinal() {
	elapsed := time.Since(t.start)
	if t.opts.Total > 0 {
		pct := float64(t.n) / float64(t.opts.Total) * 100
		speed := float64(t.n) / elapsed.Seconds()
		fmt.Fprintf(t.opts.Out, "%s: %d/%d (%.1f%%) [%s, %.2f%s/s]\n",
			t.opts.Desc, t.n, t.opts.Total, pct, formatDuration(elapsed), speed, t.opts.Unit)
		return
	}
	fmt.Fprintf(t.opts.Out, "%s: %d items processed [%s]\n",
		t.opts.Desc, t.n, formatDuration(elapsed))
}

func formatDuration(d time.Duration) string {
	s := int(d.Seconds())
	switch {
	case s < 60:
		return fmt.Sprintf("%ds", s)
	case s < 3600:
		return fmt.Sprintf("%dm %ds", s/60, s%60)
	default:
		return fmt.Sprintf("%dh %dm", s/3600, (s%3600)/60)
	}
}
