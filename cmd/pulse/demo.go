package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"git.home.luguber.info/inful/pulse/internal/config"
	"git.home.luguber.info/inful/pulse/internal/state"
)

// runDemo drives the progress file through every widget phase: a
// segment-by-segment fill, the complete state, the error state, and
// back to idle. Run it next to a live widget to eyeball the gauge.
func runDemo(cfg *config.Config) error {
	stepDelay, err := time.ParseDuration(CLI.Demo.StepDelay)
	if err != nil {
		return fmt.Errorf("invalid step delay: %w", err)
	}

	store, err := state.NewStore(cfg.DataDir)
	if err != nil {
		return err
	}

	pid := os.Getpid()

	slog.Info("Demo phase 1: segment fill")
	for i := 0; i <= state.SegmentCount; i++ {
		p := float64(i) / float64(state.SegmentCount)
		eta := int((1.0 - p) * 100)
		err := store.UpdateProgress(
			"Data Processing Pipeline",
			fmt.Sprintf("Processing... %d%%", int(p*100)),
			p,
			state.UpdateOptions{ETASeconds: &eta, PID: &pid},
		)
		if err != nil {
			return err
		}
		time.Sleep(stepDelay)
	}

	slog.Info("Demo phase 2: complete state")
	now := time.Now().UTC().Format(time.RFC3339)
	err = store.WriteRecord(state.Record{
		Active:      false,
		TaskName:    "Data Processing Pipeline",
		CurrentStep: "Complete!",
		Progress:    1.0,
		LastUpdate:  &now,
		PID:         &pid,
	})
	if err != nil {
		return err
	}
	time.Sleep(3 * time.Second)

	slog.Info("Demo phase 3: error state")
	if err := store.Fail("Data Processing Pipeline", "Error occurred", 0.5, "RuntimeError: Something went wrong"); err != nil {
		return err
	}
	time.Sleep(3 * time.Second)

	slog.Info("Demo phase 4: reset to idle")
	return store.Clear()
}
