package state

import (
	"math"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestDerivePhasePrecedence(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
		want Phase
	}{
		{"zero record is idle", Record{}, PhaseIdle},
		{"active wins over idle", Record{Active: true}, PhaseActive},
		{"complete at exactly one", Record{Progress: 1.0}, PhaseComplete},
		{"complete above one", Record{Progress: 1.5}, PhaseComplete},
		{"almost complete is idle when inactive", Record{Progress: 0.999}, PhaseIdle},
		{"active wins over complete", Record{Active: true, Progress: 1.0}, PhaseActive},
		{"error wins over active", Record{Active: true, Error: strPtr("disk full")}, PhaseError},
		{"error wins over complete", Record{Progress: 1.0, Error: strPtr("disk full")}, PhaseError},
		{"error wins over everything", Record{Active: true, Progress: 1.0, Error: strPtr("x")}, PhaseError},
		{"error with low progress", Record{Progress: 0.2, Error: strPtr("disk full")}, PhaseError},
		{"blank error is not armed", Record{Active: true, Error: strPtr("")}, PhaseActive},
		{"whitespace error is not armed", Record{Active: true, Error: strPtr("  \t ")}, PhaseActive},
		{"blank error alone is idle", Record{Error: strPtr("")}, PhaseIdle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DerivePhase(tt.rec); got != tt.want {
				t.Errorf("DerivePhase(%+v) = %s, want %s", tt.rec, got, tt.want)
			}
		})
	}
}

func TestLitSegmentsMatchesFloor(t *testing.T) {
	for i := 0; i <= 1000; i++ {
		p := float64(i) / 1000.0
		want := int(math.Floor(p * SegmentCount))
		if got := LitSegments(p, SegmentCount); got != want {
			t.Fatalf("LitSegments(%v, %d) = %d, want floor = %d", p, SegmentCount, got, want)
		}
	}
}

func TestLitSegmentsBoundaries(t *testing.T) {
	tests := []struct {
		p    float64
		want int
	}{
		{0.0, 0},
		{0.5, 8},
		{1.0, 16},
		{1.0 / 16.0, 1},
		{0.999, 15},
		{-0.5, 0},
		{2.0, 16},
	}
	for _, tt := range tests {
		if got := LitSegments(tt.p, SegmentCount); got != tt.want {
			t.Errorf("LitSegments(%v) = %d, want %d", tt.p, got, tt.want)
		}
	}
}

func TestSnapshotDerivation(t *testing.T) {
	eta := 42
	rec := Record{
		Active:      true,
		TaskName:    "Loading",
		CurrentStep: "Step 1/2",
		Progress:    0.5,
		ETASeconds:  &eta,
	}
	snap := rec.Snapshot()

	if snap.Phase != PhaseActive {
		t.Errorf("phase = %s, want active", snap.Phase)
	}
	if snap.Progress != 0.5 || snap.TaskName != "Loading" || snap.CurrentStep != "Step 1/2" {
		t.Errorf("unexpected snapshot fields: %+v", snap)
	}
	if snap.ETASeconds == nil || *snap.ETASeconds != 42 {
		t.Errorf("eta not carried: %+v", snap.ETASeconds)
	}
}

func TestSnapshotPassesProgressThroughUnclamped(t *testing.T) {
	snap := Record{Progress: 1.7}.Snapshot()
	if snap.Progress != 1.7 {
		t.Errorf("progress = %v, want 1.7 (unclamped)", snap.Progress)
	}
	if snap.Phase != PhaseComplete {
		t.Errorf("phase = %s, want complete", snap.Phase)
	}
}

func TestIdleSnapshot(t *testing.T) {
	snap := IdleSnapshot()
	if snap.Phase != PhaseIdle || snap.Progress != 0 || snap.TaskName != "" || snap.CurrentStep != "" {
		t.Errorf("IdleSnapshot() = %+v", snap)
	}
}
