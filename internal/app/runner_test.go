package app

import (
	"context"
	"testing"
)

func TestRunnerIsReproducible(t *testing.T) {
	cfg := Config{Scenario: "roof", Runs: 3, SeedBase: 40, SeedStep: 2, TickMS: 100, Profile: "novice"}
	r, err := NewRunner(cfg, DefaultTuning(), nil)
	if err != nil {
		t.Fatal(err)
	}
	first, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	second, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(first) != 3 {
		t.Fatalf("expected 3 results, got %d", len(first))
	}
	for i := range first {
		if first[i].Run != i+1 || first[i].Seed != 40+int64(2*i) {
			t.Errorf("result %d out of order: run %d seed %d", i, first[i].Run, first[i].Seed)
		}
		a, b := first[i].Result, second[i].Result
		if a.SessionID != b.SessionID || a.Score != b.Score || a.XP != b.XP {
			t.Errorf("run %d differs between batches: %+v vs %+v", i+1, a, b)
		}
	}
	if first[0].Result.SessionID == first[1].Result.SessionID {
		t.Error("different seeds should give different sessions")
	}
}

func TestRunnerRejectsBadConfig(t *testing.T) {
	if _, err := NewRunner(Config{Scenario: "roof"}, DefaultTuning(), nil); err == nil {
		t.Fatal("expected an error for zero runs")
	}
}

func TestRunnerCancelled(t *testing.T) {
	r, _ := NewRunner(Config{Scenario: "blast", Runs: 2, TickMS: 100, Profile: "expert"}, DefaultTuning(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Run(ctx); err == nil {
		t.Fatal("expected an error from a cancelled batch")
	}
}
