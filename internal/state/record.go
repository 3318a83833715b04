// Package state defines the shared progress file format, the derived
// widget phase, and the producer-side store that writes the files the
// widget observes.
package state

import "strings"

// Record is the on-disk shape of the progress file. The producer owns
// every field; the widget only reads. Pointer fields distinguish absent
// values from zero values in the JSON.
type Record struct {
	Active      bool    `json:"active"`
	TaskName    string  `json:"task_name"`
	CurrentStep string  `json:"current_step"`
	Progress    float64 `json:"progress"`
	ETASeconds  *int    `json:"eta_seconds"`
	StartedAt   *string `json:"started_at"`
	LastUpdate  *string `json:"last_update"`
	Error       *string `json:"error"`
	PID         *int    `json:"pid"`
}

// Phase is the single discrete widget state derived from a Record.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseActive   Phase = "active"
	PhaseComplete Phase = "complete"
	PhaseError    Phase = "error"
)

// ErrorArmed reports whether the record carries an error that should
// drive the error phase: present and non-blank after trimming.
func (r Record) ErrorArmed() bool {
	return r.Error != nil && strings.TrimSpace(*r.Error) != ""
}

// DerivePhase computes the widget phase with strict precedence:
// armed error, then active, then complete (progress at or above 1.0),
// then idle.
func DerivePhase(r Record) Phase {
	switch {
	case r.ErrorArmed():
		return PhaseError
	case r.Active:
		return PhaseActive
	case r.Progress >= 1.0:
		return PhaseComplete
	default:
		return PhaseIdle
	}
}

// Snapshot is the immutable display tuple handed to the presenter.
// It is a pure function of the last successfully parsed Record.
type Snapshot struct {
	Phase       Phase
	Progress    float64
	TaskName    string
	CurrentStep string
	ETASeconds  *int
}

// Snapshot derives the display tuple for the record. Progress is passed
// through unclamped; only the completion check interprets its range.
func (r Record) Snapshot() Snapshot {
	return Snapshot{
		Phase:       DerivePhase(r),
		Progress:    r.Progress,
		TaskName:    r.TaskName,
		CurrentStep: r.CurrentStep,
		ETASeconds:  r.ETASeconds,
	}
}

// IdleSnapshot is the tuple published when the progress file is absent
// or unreadable: idle, zero progress, names cleared.
func IdleSnapshot() Snapshot {
	return Snapshot{Phase: PhaseIdle}
}

// SegmentCount is the number of cells in the widget's LED bar.
const SegmentCount = 16

// LitSegments returns how many of n segments are lit for progress p,
// under the rule "segment i is lit iff (i+1)/n <= p". Out-of-range
// progress values degrade to none or all lit.
func LitSegments(p float64, n int) int {
	lit := 0
	for i := 0; i < n; i++ {
		if float64(i+1)/float64(n) <= p {
			lit++
		}
	}
	return lit
}
