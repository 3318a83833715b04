// Package lock implements the advisory single-instance guard: a pid
// file in the data directory, checked for liveness at startup.
package lock

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"git.home.luguber.info/inful/pulse/internal/paths"
)

// ErrAlreadyRunning is returned when another live widget process holds
// the lock. Callers exit cleanly and silently on it.
var ErrAlreadyRunning = errors.New("another widget instance is already running")

// Acquire checks the lock file in dir and claims it for this process.
// A lock naming a live process yields ErrAlreadyRunning; a stale or
// absent lock is overwritten with our pid. The returned release func
// removes the file on normal exit, best effort.
//
// The check is advisory only: there is no exclusive-create primitive
// here, so two simultaneous launches can both pass. Known limitation.
func Acquire(dir string) (release func(), err error) {
	path := filepath.Join(dir, paths.LockFile)

	if pid, ok := readPID(path); ok && pid != os.Getpid() && processAlive(pid) {
		slog.Debug("Lock file held by live process", "pid", pid)
		return nil, ErrAlreadyRunning
	}

	pid := os.Getpid()
	if err := os.WriteFile(path, []byte(strconv.Itoa(pid)), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write lock file %s: %w", path, err)
	}

	return func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			slog.Warn("Failed to remove lock file", "path", path, "error", err)
		}
	}, nil
}

// readPID parses the lock file as a decimal pid. Any read or parse
// failure counts as "no usable lock".
func readPID(path string) (int, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}

// processAlive probes the pid with signal 0: no signal is delivered,
// but the error tells us whether the process exists.
func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}
