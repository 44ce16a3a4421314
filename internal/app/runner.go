package app

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"

	"HazardDrill/internal/drill"
	"HazardDrill/internal/scenario"
)

// RunResult is one finished session of a batch.
type RunResult struct {
	Run    int                 `json:"run"`
	Seed   int64               `json:"seed"`
	Result drill.SessionResult `json:"result"`
}

// Runner plays a batch of sessions concurrently, one per goroutine.
type Runner struct {
	cfg    Config
	tuning Tuning
	log    *slog.Logger
}

// NewRunner validates cfg and returns a runner.
func NewRunner(cfg Config, tuning Tuning, logger *slog.Logger) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{cfg: cfg, tuning: SanitizeTuning(tuning), log: logger}, nil
}

// Scenario returns the tuned scenario the runner plays.
func (r *Runner) Scenario() (drill.ScenarioConfig, error) {
	base, err := scenario.Get(r.cfg.Scenario)
	if err != nil {
		return drill.ScenarioConfig{}, err
	}
	return r.tuning.Apply(base), nil
}

// Run plays every session and returns the results in run order. The first
// failing run cancels the rest.
func (r *Runner) Run(ctx context.Context) ([]RunResult, error) {
	results := make([]RunResult, r.cfg.Runs)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i := range results {
		g.Go(func() error {
			res, err := r.runOne(gctx, i)
			if err != nil {
				return fmt.Errorf("run %d: %w", i+1, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *Runner) runOne(ctx context.Context, i int) (RunResult, error) {
	cfg, err := r.Scenario()
	if err != nil {
		return RunResult{}, err
	}
	seed := r.cfg.Seed(i)
	log := r.log.With("run", i+1, "seed", seed)

	c, err := drill.StartSession(cfg, drill.WithSeed(seed), drill.WithLogger(log))
	if err != nil {
		return RunResult{}, err
	}
	pilot, err := NewAutopilot(Profile(r.cfg.Profile), rand.New(rand.NewSource(seed)))
	if err != nil {
		return RunResult{}, err
	}
	res, err := pilot.Run(ctx, c, r.cfg.Tick())
	if err != nil {
		return RunResult{}, err
	}
	log.Info("run finished", "score", res.Score, "grade", res.Grade.Label, "xp", res.XP)
	return RunResult{Run: i + 1, Seed: seed, Result: res}, nil
}
