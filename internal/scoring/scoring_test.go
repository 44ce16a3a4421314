package scoring

import (
	"errors"
	"testing"
	"time"
)

func ptr(v float64) *float64 { return &v }

func testConfig(policy OvershootPolicy) Config {
	return Config{
		Components: []Component{
			{ID: "detection", Metric: MetricDetectionRate, Weight: 25, Tasks: []string{"spot"}, Targets: 2, FalsePositivePenalty: 0.5},
			{ID: "coverage", Metric: MetricCoverage, Weight: 20, Tasks: []string{"boundary"}},
			{ID: "decision", Metric: MetricCorrect, Weight: 25, Tasks: []string{"stop"}},
			{ID: "speed", Metric: MetricSpeedBonus, Weight: 10, Tasks: []string{"stop"}, Limit: 15 * time.Second},
			{ID: "support", Metric: MetricCorrect, Weight: 30, Tasks: []string{"support"}},
		},
		Overshoot: policy,
		Bands:     StandardBands(0),
		Badges: []Badge{
			{ID: "spotter", Predicate: AllDetected{Tasks: []string{"spot"}, Count: 2}},
			{ID: "guardian", Predicate: MetricAtLeast{Component: "coverage", Min: 0.9}},
			{ID: "fast", Predicate: ChoiceWithin{Task: "stop", Choice: "stop_work", Within: 10 * time.Second}},
			{ID: "master", Predicate: GradeIs{Label: "A+"}},
			{ID: "lua", Predicate: Expr{Source: `metrics.coverage >= 0.9 and tasks.stop.choice == "stop_work" and tasks.stop.decision_ms < 10000`}},
		},
	}
}

func recordPerfect(t *testing.T, e *Engine) {
	t.Helper()
	outcomes := []TaskOutcome{
		{TaskID: "spot", Target: "crack", Correct: true},
		{TaskID: "spot", Target: "bolt", Correct: true},
		{TaskID: "boundary", Correct: true, Value: ptr(100)},
		{TaskID: "stop", Correct: true, Choice: "stop_work", Decision: 4 * time.Second},
		{TaskID: "support", Correct: true},
	}
	for _, o := range outcomes {
		if err := e.RecordOutcome(o); err != nil {
			t.Fatalf("record failed: %v", err)
		}
	}
}

func TestMaxMetricsClampToTopBand(t *testing.T) {
	e, err := NewEngine(testConfig(OvershootClamp), nil)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	recordPerfect(t, e)
	rec := e.Finalize()
	if rec.Raw != 110 {
		t.Fatalf("expected raw composite 110, got %v", rec.Raw)
	}
	if rec.Score != 100 {
		t.Fatalf("expected clamped score 100, got %v", rec.Score)
	}
	if rec.Grade.Label != "A+" {
		t.Fatalf("expected A+, got %s", rec.Grade.Label)
	}
	for _, id := range []string{"spotter", "guardian", "fast", "master", "lua"} {
		if !rec.HasBadge(id) {
			t.Errorf("expected badge %s, got %+v", id, rec.Badges)
		}
	}
}

func TestOvershootAllowed(t *testing.T) {
	e, _ := NewEngine(testConfig(OvershootAllow), nil)
	recordPerfect(t, e)
	if rec := e.Finalize(); rec.Score != 110 {
		t.Fatalf("expected overshoot 110, got %v", rec.Score)
	}
}

func TestMinMetricsBottomBand(t *testing.T) {
	e, _ := NewEngine(testConfig(OvershootClamp), nil)
	rec := e.Finalize()
	if rec.Score != 0 {
		t.Fatalf("expected 0, got %v", rec.Score)
	}
	if rec.Grade.Label != "D" {
		t.Fatalf("expected bottom band D, got %s", rec.Grade.Label)
	}
	if len(rec.Badges) != 0 {
		t.Fatalf("expected no badges, got %+v", rec.Badges)
	}
}

func TestFalsePositivesFloorAtZero(t *testing.T) {
	e, _ := NewEngine(testConfig(OvershootClamp), nil)
	for i := 0; i < 4; i++ {
		_ = e.RecordOutcome(TaskOutcome{TaskID: "spot", Target: "stain", Correct: false})
	}
	rec := e.Finalize()
	if rec.Metrics["detection"] != 0 || rec.Score != 0 {
		t.Fatalf("penalties must not push below zero: %+v", rec.Metrics)
	}
}

func TestGradeBandsInclusive(t *testing.T) {
	bands := StandardBands(50)
	cases := map[float64]string{
		95:    "A+",
		94.99: "A",
		85:    "A",
		75:    "B",
		65:    "C",
		50:    "D",
		10:    "D",
	}
	for score, want := range cases {
		if got := GradeFor(score, bands).Label; got != want {
			t.Errorf("score %v: expected %s, got %s", score, want, got)
		}
	}
}

func TestFinalizeIsStable(t *testing.T) {
	e, _ := NewEngine(testConfig(OvershootClamp), nil)
	recordPerfect(t, e)
	first := e.Finalize()
	second := e.Finalize()
	if first.Score != second.Score || len(first.Badges) != len(second.Badges) {
		t.Fatal("finalize should be idempotent")
	}
	if err := e.RecordOutcome(TaskOutcome{TaskID: "late"}); !errors.Is(err, ErrFinalized) {
		t.Fatalf("expected ErrFinalized, got %v", err)
	}
}

func TestAccuracyAndPreview(t *testing.T) {
	cfg := Config{
		Components: []Component{{ID: "acc", Metric: MetricAccuracy, Weight: 100}},
		Bands:      StandardBands(0),
	}
	e, err := NewEngine(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	_ = e.RecordOutcome(TaskOutcome{TaskID: "a", Correct: true})
	_ = e.RecordOutcome(TaskOutcome{TaskID: "b", Correct: false, TimedOut: true})
	if got := e.Preview(); got != 50 {
		t.Fatalf("expected preview 50, got %v", got)
	}
}

func TestConfigValidation(t *testing.T) {
	bad := testConfig(OvershootClamp)
	bad.Badges = append(bad.Badges, Badge{ID: "broken", Predicate: Expr{Source: "score >= = 3"}})
	if _, err := NewEngine(bad, nil); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for bad expression, got %v", err)
	}

	unordered := testConfig(OvershootClamp)
	unordered.Bands = []GradeBand{{Label: "low", Min: 10}, {Label: "high", Min: 90}}
	if _, err := NewEngine(unordered, nil); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for ascending bands, got %v", err)
	}

	unknown := testConfig(OvershootClamp)
	unknown.Components = append(unknown.Components, Component{ID: "x", Metric: "vibes", Tasks: []string{"a"}})
	if _, err := NewEngine(unknown, nil); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for unknown metric, got %v", err)
	}
}

func TestExprRuntimeErrorIsNotAwarded(t *testing.T) {
	cfg := testConfig(OvershootClamp)
	cfg.Badges = []Badge{{ID: "oops", Predicate: Expr{Source: "tasks.missing.correct"}}}
	e, err := NewEngine(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	recordPerfect(t, e)
	if rec := e.Finalize(); rec.HasBadge("oops") {
		t.Fatal("a failing expression must not award its badge")
	}
}
