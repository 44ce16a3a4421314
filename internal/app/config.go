// Package app wires the drill engine into a headless batch runner.
package app

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"

	"HazardDrill/internal/coverage"
	"HazardDrill/internal/drill"
	"HazardDrill/internal/movement"
	"HazardDrill/internal/scenario"
	"HazardDrill/internal/scoring"
)

// ErrConfig is returned for an unusable runner configuration.
var ErrConfig = errors.New("app: invalid config")

// Config is the runner configuration, read from DRILL_* variables.
type Config struct {
	Scenario   string     `env:"DRILL_SCENARIO" envDefault:"blast"`
	Runs       int        `env:"DRILL_RUNS" envDefault:"1"`
	SeedBase   int64      `env:"DRILL_SEED_BASE" envDefault:"0"`
	SeedStep   int64      `env:"DRILL_SEED_STEP" envDefault:"1"`
	TickMS     int        `env:"DRILL_TICK_MS" envDefault:"100"`
	Lang       string     `env:"DRILL_LANG" envDefault:"en"`
	LogLevel   slog.Level `env:"DRILL_LOG_LEVEL" envDefault:"INFO"`
	TuningPath string     `env:"DRILL_TUNING_PATH"`
	Profile    string     `env:"DRILL_PROFILE" envDefault:"expert"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return &cfg, nil
}

// BindFlags registers a flag per setting, defaulting to the current values,
// so parsed flags override the environment.
func (c *Config) BindFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Scenario, "scenario", c.Scenario, "scenario id (blast, roof, fire)")
	fs.IntVar(&c.Runs, "runs", c.Runs, "number of sessions to run")
	fs.Int64Var(&c.SeedBase, "seed", c.SeedBase, "seed of the first run; 0 derives it from the scenario id")
	fs.Int64Var(&c.SeedStep, "seed-step", c.SeedStep, "seed increment between runs")
	fs.IntVar(&c.TickMS, "tick-ms", c.TickMS, "simulated milliseconds per tick")
	fs.StringVar(&c.Lang, "lang", c.Lang, "report language (en, hi)")
	fs.TextVar(&c.LogLevel, "log-level", c.LogLevel, "log level (DEBUG, INFO, WARN, ERROR)")
	fs.StringVar(&c.TuningPath, "tuning", c.TuningPath, "path to tuning JSON")
	fs.StringVar(&c.Profile, "profile", c.Profile, "autopilot profile (expert, novice)")
}

// Validate checks the settings that have no sensible fallback.
func (c Config) Validate() error {
	if _, ok := scenario.Registry[c.Scenario]; !ok {
		return fmt.Errorf("%w: unknown scenario %q", ErrConfig, c.Scenario)
	}
	if c.Runs < 1 {
		return fmt.Errorf("%w: runs must be positive, got %d", ErrConfig, c.Runs)
	}
	if c.TickMS < 1 {
		return fmt.Errorf("%w: tick must be at least 1ms, got %d", ErrConfig, c.TickMS)
	}
	if _, ok := profiles[Profile(c.Profile)]; !ok {
		return fmt.Errorf("%w: unknown profile %q", ErrConfig, c.Profile)
	}
	return nil
}

// Tick is the simulated time advanced per step.
func (c Config) Tick() time.Duration {
	return time.Duration(c.TickMS) * time.Millisecond
}

// Seed returns the seed of run i.
func (c Config) Seed(i int) int64 {
	base := c.SeedBase
	if base == 0 {
		base = drill.DeriveSeed(c.Scenario)
	}
	return base + int64(i)*c.SeedStep
}

// Tuning adjusts a built-in scenario without editing it.
type Tuning struct {
	Difficulty           string
	Overshoot            scoring.OvershootPolicy
	FloorXP              bool
	ArrivalThreshold     float64
	CoverageTargetPoints int
}

type tuningFile struct {
	Difficulty           *string  `json:"difficulty"`
	Overshoot            *string  `json:"overshoot"`
	FloorXP              *bool    `json:"floorXP"`
	ArrivalThreshold     *float64 `json:"arrivalThreshold"`
	CoverageTargetPoints *int     `json:"coverageTargetPoints"`
}

// DefaultTuning leaves every scenario as registered.
func DefaultTuning() Tuning {
	return Tuning{
		Difficulty:           drill.DifficultyExperienced.ID,
		Overshoot:            scoring.OvershootClamp,
		FloorXP:              true,
		ArrivalThreshold:     movement.DefaultArrivalThreshold,
		CoverageTargetPoints: coverage.DefaultTargetPoints,
	}
}

// SanitizeTuning replaces unusable values with defaults.
func SanitizeTuning(t Tuning) Tuning {
	def := DefaultTuning()
	if _, ok := drill.Difficulties[t.Difficulty]; !ok {
		t.Difficulty = def.Difficulty
	}
	if t.Overshoot != scoring.OvershootClamp && t.Overshoot != scoring.OvershootAllow {
		t.Overshoot = def.Overshoot
	}
	if t.ArrivalThreshold <= 0 {
		t.ArrivalThreshold = def.ArrivalThreshold
	}
	if t.CoverageTargetPoints <= 0 {
		t.CoverageTargetPoints = def.CoverageTargetPoints
	}
	return t
}

func mergeTuning(base Tuning, cfg *tuningFile) (Tuning, error) {
	if cfg == nil {
		return SanitizeTuning(base), nil
	}
	if cfg.Difficulty != nil {
		base.Difficulty = *cfg.Difficulty
	}
	if cfg.Overshoot != nil {
		switch *cfg.Overshoot {
		case "clamp":
			base.Overshoot = scoring.OvershootClamp
		case "allow":
			base.Overshoot = scoring.OvershootAllow
		default:
			return SanitizeTuning(base), fmt.Errorf("%w: unknown overshoot %q", ErrConfig, *cfg.Overshoot)
		}
	}
	if cfg.FloorXP != nil {
		base.FloorXP = *cfg.FloorXP
	}
	if cfg.ArrivalThreshold != nil {
		base.ArrivalThreshold = *cfg.ArrivalThreshold
	}
	if cfg.CoverageTargetPoints != nil {
		base.CoverageTargetPoints = *cfg.CoverageTargetPoints
	}
	return SanitizeTuning(base), nil
}

// LoadTuning merges the JSON file at path over base. A missing file is not
// an error.
func LoadTuning(path string, base Tuning) (Tuning, error) {
	if path == "" {
		return SanitizeTuning(base), nil
	}
	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		if os.IsNotExist(err) {
			return SanitizeTuning(base), nil
		}
		return SanitizeTuning(base), fmt.Errorf("read tuning %q: %w", cleanPath, err)
	}
	var cfg tuningFile
	if err := json.Unmarshal(data, &cfg); err != nil {
		return SanitizeTuning(base), fmt.Errorf("parse tuning %q: %w", cleanPath, err)
	}
	merged, err := mergeTuning(base, &cfg)
	if err != nil {
		return SanitizeTuning(base), fmt.Errorf("tuning %q: %w", cleanPath, err)
	}
	return merged, nil
}

// Apply returns a copy of cfg with the tuning applied.
func (t Tuning) Apply(cfg drill.ScenarioConfig) drill.ScenarioConfig {
	t = SanitizeTuning(t)
	cfg.Difficulty = drill.Difficulties[t.Difficulty]
	cfg.Scoring.Overshoot = t.Overshoot
	cfg.XP.FloorAtZero = t.FloorXP
	cfg.Movement.ArrivalThreshold = t.ArrivalThreshold

	phases := make([]drill.PhaseConfig, len(cfg.Phases))
	for i, p := range cfg.Phases {
		tasks := make([]drill.TaskSpec, len(p.Tasks))
		for j, ts := range p.Tasks {
			if ts.Coverage != nil {
				c := *ts.Coverage
				if c.Method == coverage.MethodDensity {
					c.TargetPoints = t.CoverageTargetPoints
				}
				ts.Coverage = &c
			}
			tasks[j] = ts
		}
		p.Tasks = tasks
		phases[i] = p
	}
	cfg.Phases = phases
	return cfg
}
