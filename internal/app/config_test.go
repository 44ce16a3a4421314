package app

import (
	"errors"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"HazardDrill/internal/coverage"
	"HazardDrill/internal/drill"
	"HazardDrill/internal/scenario"
	"HazardDrill/internal/scoring"
)

func TestLoadFromEnvAndFlags(t *testing.T) {
	t.Setenv("DRILL_SCENARIO", "roof")
	t.Setenv("DRILL_RUNS", "3")
	t.Setenv("DRILL_LOG_LEVEL", "DEBUG")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Scenario != "roof" || cfg.Runs != 3 || cfg.LogLevel != slog.LevelDebug {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.TickMS != 100 || cfg.Profile != "expert" || cfg.Lang != "en" {
		t.Fatalf("defaults not applied: %+v", cfg)
	}

	fs := flag.NewFlagSet("drill", flag.ContinueOnError)
	cfg.BindFlags(fs)
	if err := fs.Parse([]string{"-runs", "5", "-profile", "novice", "-log-level", "WARN"}); err != nil {
		t.Fatal(err)
	}
	if cfg.Runs != 5 || cfg.Profile != "novice" || cfg.LogLevel != slog.LevelWarn {
		t.Fatalf("flags did not override env: %+v", cfg)
	}
	if cfg.Scenario != "roof" {
		t.Fatalf("unset flag must keep the env value, got %s", cfg.Scenario)
	}
}

func TestConfigValidate(t *testing.T) {
	good := Config{Scenario: "blast", Runs: 1, TickMS: 100, Profile: "expert"}
	if err := good.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
	cases := map[string]func(*Config){
		"scenario": func(c *Config) { c.Scenario = "volcano" },
		"runs":     func(c *Config) { c.Runs = 0 },
		"tick":     func(c *Config) { c.TickMS = 0 },
		"profile":  func(c *Config) { c.Profile = "daredevil" },
	}
	for name, mutate := range cases {
		c := good
		mutate(&c)
		if err := c.Validate(); !errors.Is(err, ErrConfig) {
			t.Errorf("%s: expected ErrConfig, got %v", name, err)
		}
	}
}

func TestSeeds(t *testing.T) {
	c := Config{Scenario: "fire", SeedStep: 10}
	if c.Seed(0) != drill.DeriveSeed("fire") {
		t.Fatal("zero base should derive the seed from the scenario")
	}
	c.SeedBase = 100
	if c.Seed(0) != 100 || c.Seed(3) != 130 {
		t.Fatalf("unexpected seeds %d %d", c.Seed(0), c.Seed(3))
	}
}

func TestLoadTuning(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.json")
	body := `{"difficulty": "expert", "overshoot": "allow", "coverageTargetPoints": 100, "arrivalThreshold": -3}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := LoadTuning(path, DefaultTuning())
	if err != nil {
		t.Fatalf("LoadTuning failed: %v", err)
	}
	if got.Difficulty != "expert" || got.Overshoot != scoring.OvershootAllow || got.CoverageTargetPoints != 100 {
		t.Fatalf("file values not merged: %+v", got)
	}
	if got.ArrivalThreshold != DefaultTuning().ArrivalThreshold {
		t.Fatalf("invalid threshold should fall back to the default, got %v", got.ArrivalThreshold)
	}
	if !got.FloorXP {
		t.Fatal("fields absent from the file keep their base value")
	}

	missing, err := LoadTuning(filepath.Join(dir, "nope.json"), DefaultTuning())
	if err != nil || missing != DefaultTuning() {
		t.Fatalf("missing file should yield defaults, got %+v %v", missing, err)
	}

	bad := filepath.Join(dir, "bad.json")
	_ = os.WriteFile(bad, []byte("{"), 0o600)
	if _, err := LoadTuning(bad, DefaultTuning()); err == nil {
		t.Fatal("expected a parse error")
	}

	clip := filepath.Join(dir, "clip.json")
	_ = os.WriteFile(clip, []byte(`{"overshoot": "clip"}`), 0o600)
	got, err = LoadTuning(clip, DefaultTuning())
	if !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig for an unknown overshoot, got %v", err)
	}
	if got != DefaultTuning() {
		t.Fatalf("rejected file must not change the tuning, got %+v", got)
	}
}

func TestTuningApply(t *testing.T) {
	base := scenario.Roof()
	tuning := DefaultTuning()
	tuning.Difficulty = drill.DifficultyTrainee.ID
	tuning.CoverageTargetPoints = 80

	tuned := tuning.Apply(base)
	if tuned.Difficulty.ID != "trainee" {
		t.Fatalf("difficulty not applied: %+v", tuned.Difficulty)
	}
	task, _ := tuned.Task(scenario.RoofBoundary)
	if task.Coverage.TargetPoints != 80 || task.Coverage.Method != coverage.MethodDensity {
		t.Fatalf("coverage not tuned: %+v", task.Coverage)
	}
	orig, _ := base.Task(scenario.RoofBoundary)
	if orig.Coverage.TargetPoints != 0 {
		t.Fatal("Apply must not modify the input config")
	}
	if err := tuned.Validate(); err != nil {
		t.Fatalf("tuned config is invalid: %v", err)
	}
}
