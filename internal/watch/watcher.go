// Package watch monitors the data directory for progress file changes
// and triggers reconciliation, coalescing write bursts.
package watch

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/pulse/internal/paths"
)

// DebounceInterval bounds how often the callback fires: changes
// arriving within this window of an accepted trigger are absorbed into
// its pending callback. Fixed, not configurable.
const DebounceInterval = 100 * time.Millisecond

// Watcher observes a single directory (non-recursive) for changes to
// one file and invokes a callback after a debounce window. No event
// payload is passed; the callback re-reads the file itself.
type Watcher struct {
	dir      string
	filename string
	notify   func()

	fsw       *fsnotify.Watcher
	stopChan  chan struct{}
	triggerCh chan struct{}
	wg        sync.WaitGroup
	stopOnce  sync.Once
}

// New creates a watcher for filename inside dir. The directory is
// created if absent before monitoring starts; any failure here is an
// initialization error and aborts construction.
func New(dir, filename string, notify func()) (*Watcher, error) {
	if err := paths.Ensure(dir); err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch data directory %s: %w", dir, err)
	}

	return &Watcher{
		dir:       dir,
		filename:  filename,
		notify:    notify,
		fsw:       fsw,
		stopChan:  make(chan struct{}),
		triggerCh: make(chan struct{}, 1),
	}, nil
}

// Start launches the event and debounce loops.
func (w *Watcher) Start() {
	slog.Debug("Starting progress watcher", "dir", w.dir, "file", w.filename)
	w.wg.Add(2)
	go w.eventLoop()
	go w.debounceLoop()
}

// Stop shuts the watcher down synchronously: it blocks until both
// background loops have exited, so the callback can never fire into a
// torn-down consumer. Safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopChan)
		if err := w.fsw.Close(); err != nil {
			slog.Error("Error closing file watcher", "error", err)
		}
		w.wg.Wait()
	})
}

// eventLoop filters filesystem events down to the watched filename and
// feeds the debouncer. Writes, creates, renames and removals all
// count: producers either write in place or replace atomically via
// rename, and a deleted file is itself a state change (absence reads
// as idle).
func (w *Watcher) eventLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != w.filename {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
				slog.Debug("Progress file change detected", "file", event.Name, "op", event.Op.String())
				w.trigger()
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Error("Progress watcher error", "error", err)
		}
	}
}

// debounceLoop collapses trigger bursts: the first trigger arms the
// timer and later triggers within the window are absorbed into the
// pending callback, so a continuous write stream still reconciles once
// per window instead of being deferred until it pauses. The callback
// executes on this goroutine, which is what makes Stop synchronous.
func (w *Watcher) debounceLoop() {
	defer w.wg.Done()

	timer := time.NewTimer(DebounceInterval)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	pending := false
	for {
		select {
		case <-w.stopChan:
			return
		case <-w.triggerCh:
			if !pending {
				timer.Reset(DebounceInterval)
				pending = true
			}
		case <-timer.C:
			pending = false
			w.notify()
		}
	}
}

func (w *Watcher) trigger() {
	select {
	case w.triggerCh <- struct{}{}:
	default:
		// trigger already pending
	}
}
