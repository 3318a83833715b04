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

// Store is the producer-side writer for the shared progress file. The
// widget process never writes through it except for the demo and clear
// commands. All writes go through a temp file and rename so the watcher
// side sees either the old or the new content, never a torn write.
type Store struct {
	dir string
}

// NewStore creates a store over dir, creating the directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := paths.Ensure(dir); err != nil {
		return nil, err
	}
	return &Store{dir: dir}, nil
}

// Dir returns the data directory the store writes into.
func (s *Store) Dir() string { return s.dir }

func (s *Store) progressPath() string {
	return filepath.Join(s.dir, paths.ProgressFile)
}

// zeroRecord is the inactive reset state written by CompleteTask and
// EnsureFiles.
func zeroRecord() Record {
	return Record{Active: false, Progress: 0.0}
}

// EnsureFiles seeds the progress file with the inactive zero record when
// it does not exist yet, so the widget has something to read on first
// launch.
func (s *Store) EnsureFiles() error {
	if _, err := os.Stat(s.progressPath()); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat progress file: %w", err)
	}
	return s.writeRecord(zeroRecord())
}

// UpdateOptions carries the optional fields of a progress update.
type UpdateOptions struct {
	ETASeconds *int
	Error      *string
	PID        *int
}

// UpdateProgress writes an active progress record. Progress is clamped
// to [0,1] on the write side; started_at is preserved from the current
// file so a task keeps its original start time across updates.
func (s *Store) UpdateProgress(taskName, currentStep string, progress float64, opts UpdateOptions) error {
	now := time.Now().UTC().Format(time.RFC3339)

	startedAt := s.currentStartedAt()
	if startedAt == nil {
		startedAt = &now
	}

	pid := opts.PID
	if pid == nil {
		p := os.Getpid()
		pid = &p
	}

	rec := Record{
		Active:      true,
		TaskName:    taskName,
		CurrentStep: currentStep,
		Progress:    clamp01(progress),
		ETASeconds:  opts.ETASeconds,
		StartedAt:   startedAt,
		LastUpdate:  &now,
		Error:       opts.Error,
		PID:         pid,
	}
	return s.writeRecord(rec)
}

// CompleteTask resets the progress file to the inactive zero record.
func (s *Store) CompleteTask() error {
	return s.writeRecord(zeroRecord())
}

// Fail writes an inactive record carrying an armed error, keeping the
// progress reached so far so the widget can show red segments up to it.
func (s *Store) Fail(taskName, currentStep string, progress float64, errMsg string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	pid := os.Getpid()
	rec := Record{
		Active:      false,
		TaskName:    taskName,
		CurrentStep: currentStep,
		Progress:    clamp01(progress),
		StartedAt:   s.currentStartedAt(),
		LastUpdate:  &now,
		Error:       &errMsg,
		PID:         &pid,
	}
	return s.writeRecord(rec)
}

// WriteRecord writes an arbitrary record. It exists for callers that
// need full control over the file shape, such as the demo sequence;
// producers normally go through UpdateProgress and CompleteTask.
func (s *Store) WriteRecord(rec Record) error {
	return s.writeRecord(rec)
}

// Clear is CompleteTask under a name that reads better for the CLI.
func (s *Store) Clear() error { return s.CompleteTask() }

// ClearStale deactivates the record when its last_update is older than
// maxIdle, so a crashed producer does not leave the widget pulsing
// forever. The error field is preserved; a dead producer's failure
// should stay visible.
func (s *Store) ClearStale(maxIdle time.Duration) error {
	rec, err := s.ReadRecord()
	if err != nil {
		return err
	}
	if !rec.Active || rec.LastUpdate == nil {
		return nil
	}
	last, err := time.Parse(time.RFC3339, *rec.LastUpdate)
	if err != nil {
		slog.Warn("Unparseable last_update in progress file, deactivating", "value", *rec.LastUpdate)
	} else if time.Since(last) <= maxIdle {
		return nil
	}

	stale := Record{
		Active:      false,
		TaskName:    rec.TaskName,
		CurrentStep: rec.CurrentStep,
		Progress:    rec.Progress,
		Error:       rec.Error,
	}
	return s.writeRecord(stale)
}

// ReadRecord returns the current progress record. A missing file yields
// the zero record; a malformed file is an error (widget-side reads go
// through the reconciler instead, which absorbs both cases).
func (s *Store) ReadRecord() (Record, error) {
	data, err := os.ReadFile(s.progressPath())
	if err != nil {
		if os.IsNotExist(err) {
			return zeroRecord(), nil
		}
		return Record{}, fmt.Errorf("failed to read progress file: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("failed to parse progress file: %w", err)
	}
	return rec, nil
}

func (s *Store) currentStartedAt() *string {
	rec, err := s.ReadRecord()
	if err != nil {
		return nil
	}
	return rec.StartedAt
}

// writeRecord writes the record atomically: temp file in the same
// directory, then rename over the target.
func (s *Store) writeRecord(rec Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal progress record: %w", err)
	}

	target := s.progressPath()
	tempPath := target + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temporary progress file: %w", err)
	}
	if err := os.Rename(tempPath, target); err != nil {
		return fmt.Errorf("failed to replace progress file: %w", err)
	}
	return nil
}

func clamp01(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
