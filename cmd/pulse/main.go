package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/pulse/internal/config"
	"git.home.luguber.info/inful/pulse/internal/lock"
	"git.home.luguber.info/inful/pulse/internal/paths"
	"git.home.luguber.info/inful/pulse/internal/reconcile"
	"git.home.luguber.info/inful/pulse/internal/state"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" type:"path"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Widget struct{} `cmd:"" default:"1" help:"Run the overlay widget"`

	Demo struct {
		StepDelay string `help:"Delay between demo fill steps" default:"500ms"`
	} `cmd:"" help:"Drive the progress file through fill, complete, error and idle phases"`

	Status struct{} `cmd:"" help:"Print the current progress state"`

	Clear struct{} `cmd:"" help:"Reset the progress file to idle"`
}

func main() {
	ctx := kong.Parse(&CLI)

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	slog.SetDefault(config.BuildLogger(cfg, CLI.Verbose))

	switch ctx.Command() {
	case "widget":
		err = runWidget(cfg)
	case "demo":
		err = runDemo(cfg)
	case "status":
		err = runStatus(cfg)
	case "clear":
		err = runClear(cfg)
	default:
		err = fmt.Errorf("unknown command: %s", ctx.Command())
	}

	if errors.Is(err, lock.ErrAlreadyRunning) {
		// Another widget owns the display. Exit cleanly, no dialog.
		slog.Debug("Widget already running, exiting")
		return
	}
	if err != nil {
		slog.Error("Command failed", "command", ctx.Command(), "error", err)
		os.Exit(1)
	}
}

func runStatus(cfg *config.Config) error {
	var snap state.Snapshot
	reconcile.New(cfg.DataDir, func(s state.Snapshot) { snap = s }).Reload()

	lit := state.LitSegments(snap.Progress, state.SegmentCount)
	fmt.Printf("phase:    %s\n", snap.Phase)
	fmt.Printf("progress: %.1f%% (%d/%d segments)\n", snap.Progress*100, lit, state.SegmentCount)
	fmt.Printf("task:     %s\n", snap.TaskName)
	fmt.Printf("step:     %s\n", snap.CurrentStep)
	return nil
}

func runClear(cfg *config.Config) error {
	if err := paths.Ensure(cfg.DataDir); err != nil {
		return err
	}
	store, err := state.NewStore(cfg.DataDir)
	if err != nil {
		return err
	}
	return store.Clear()
}
