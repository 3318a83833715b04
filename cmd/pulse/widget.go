package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-co-op/gocron/v2"
	"github.com/oklog/run"

	"git.home.luguber.info/inful/pulse/internal/config"
	"git.home.luguber.info/inful/pulse/internal/lock"
	"git.home.luguber.info/inful/pulse/internal/paths"
	"git.home.luguber.info/inful/pulse/internal/reconcile"
	"git.home.luguber.info/inful/pulse/internal/state"
	"git.home.luguber.info/inful/pulse/internal/watch"
	"git.home.luguber.info/inful/pulse/internal/widget"
)

// Stale-producer sweep: a record whose last_update is older than
// staleMaxIdle is deactivated, checked every staleSweepInterval.
const (
	staleSweepInterval = 60 * time.Second
	staleMaxIdle       = 5 * time.Minute
)

// runWidget assembles and runs the overlay: single-instance lock,
// store, reconciler, filesystem watcher, stale sweeper and the
// bubbletea program.
func runWidget(cfg *config.Config) error {
	if err := paths.Ensure(cfg.DataDir); err != nil {
		return err
	}

	release, err := lock.Acquire(cfg.DataDir)
	if err != nil {
		return err
	}
	defer release()

	store, err := state.NewStore(cfg.DataDir)
	if err != nil {
		return err
	}
	if err := store.EnsureFiles(); err != nil {
		return err
	}

	prog := tea.NewProgram(widget.New(cfg, store), tea.WithAltScreen())

	// The publish side of the reconciler hands snapshots to the UI
	// loop via Program.Send, which queues the message; the watcher
	// goroutine never touches UI state directly.
	rec := reconcile.New(cfg.DataDir, func(s state.Snapshot) {
		prog.Send(widget.SnapshotMsg(s))
	})

	watcher, err := watch.New(cfg.DataDir, paths.ProgressFile, rec.Reload)
	if err != nil {
		return err
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create sweep scheduler: %w", err)
	}
	_, err = sched.NewJob(
		gocron.DurationJob(staleSweepInterval),
		gocron.NewTask(func() {
			if err := store.ClearStale(staleMaxIdle); err != nil {
				slog.Warn("Stale progress sweep failed", "error", err)
			}
		}),
		gocron.WithName("stale-progress-sweep"),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule stale progress sweep: %w", err)
	}

	watcher.Start()
	sched.Start()
	defer func() {
		// Stop is synchronous: no reload callback can fire into the
		// torn-down program after this returns.
		watcher.Stop()
		if err := sched.Shutdown(); err != nil {
			slog.Error("Error shutting down sweep scheduler", "error", err)
		}
	}()

	var g run.Group
	g.Add(run.SignalHandler(context.Background(), syscall.SIGINT, syscall.SIGTERM))
	g.Add(
		func() error {
			// Initial reconciliation; Send blocks until the program
			// starts consuming, so it runs alongside Run.
			go rec.Reload()
			_, err := prog.Run()
			return err
		},
		func(error) {
			prog.Quit()
		},
	)

	err = g.Run()
	var sigErr run.SignalError
	if errors.As(err, &sigErr) {
		slog.Debug("Shutting down on signal", "signal", sigErr.Signal)
		return nil
	}
	return err
}
