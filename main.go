package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"HazardDrill/internal/app"
	"HazardDrill/internal/locale"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg, err := app.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	fs := flag.NewFlagSet("hazarddrill", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfg.BindFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(stderr, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	tuning, err := app.LoadTuning(cfg.TuningPath, app.DefaultTuning())
	if err != nil {
		return fmt.Errorf("loading tuning: %w", err)
	}
	runner, err := app.NewRunner(*cfg, tuning, logger)
	if err != nil {
		return err
	}
	scenario, err := runner.Scenario()
	if err != nil {
		return err
	}

	logger.Info("starting batch", "scenario", cfg.Scenario, "runs", cfg.Runs, "profile", cfg.Profile, "difficulty", tuning.Difficulty)
	results, err := runner.Run(ctx)
	if err != nil {
		return fmt.Errorf("running drills: %w", err)
	}
	return app.WriteReport(stdout, locale.Parse(cfg.Lang), scenario, results)
}
