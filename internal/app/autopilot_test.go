package app

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"HazardDrill/internal/drill"
	"HazardDrill/internal/scenario"
)

func play(t *testing.T, cfg drill.ScenarioConfig, profile Profile, seed int64) drill.SessionResult {
	t.Helper()
	c, err := drill.StartSession(cfg, drill.WithSeed(seed))
	if err != nil {
		t.Fatal(err)
	}
	pilot, err := NewAutopilot(profile, rand.New(rand.NewSource(seed)))
	if err != nil {
		t.Fatal(err)
	}
	res, err := pilot.Run(context.Background(), c, 100*time.Millisecond)
	if err != nil {
		t.Fatalf("autopilot %s failed: %v", profile, err)
	}
	return res
}

func TestExpertRoof(t *testing.T) {
	res := play(t, scenario.Roof(), ProfileExpert, 1)
	if res.Grade.Label != "A+" {
		t.Fatalf("expert should ace the roof, got %.1f %s", res.Score, res.Grade.Label)
	}
	for _, id := range []string{"roof_master", "early_spotter", "ground_guardian", "zero_exposure"} {
		if !res.HasBadge(id) {
			t.Errorf("expert missed badge %s", id)
		}
	}
}

func TestExpertBlast(t *testing.T) {
	res := play(t, scenario.Blast(), ProfileExpert, 3)
	if res.Score != 100 || !res.HasBadge("fast_safe_decision") {
		t.Fatalf("unexpected expert blast result %.1f %+v", res.Score, res.Badges)
	}
	if len(res.Phases) != 4 {
		t.Fatalf("expected 4 phase records, got %d", len(res.Phases))
	}
}

func TestNoviceScoresLower(t *testing.T) {
	for _, id := range []string{scenario.BlastID, scenario.RoofID} {
		cfg, _ := scenario.Get(id)
		expert := play(t, cfg, ProfileExpert, 9)
		cfg, _ = scenario.Get(id)
		novice := play(t, cfg, ProfileNovice, 9)
		if novice.Score >= expert.Score {
			t.Errorf("%s: novice %.1f should score below expert %.1f", id, novice.Score, expert.Score)
		}
	}
}

func TestNoviceFireRuns(t *testing.T) {
	total := 0.0
	for seed := int64(1); seed <= 5; seed++ {
		res := play(t, scenario.Fire(), ProfileNovice, seed)
		if res.XP < 0 {
			t.Fatalf("seed %d: XP must be floored at zero, got %d", seed, res.XP)
		}
		total += res.Score
	}
	if total >= 500 {
		t.Fatal("a novice should slip at least once across five triage runs")
	}
}

func TestAutopilotErrors(t *testing.T) {
	if _, err := NewAutopilot("daredevil", nil); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}

	c, _ := drill.StartSession(scenario.Fire())
	pilot, _ := NewAutopilot(ProfileExpert, rand.New(rand.NewSource(1)))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := pilot.Run(ctx, c, time.Second); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
