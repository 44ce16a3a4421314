package schedule

import (
	"errors"
	"math/rand"
	"testing"
	"time"
)

func TestPollOrderingAndNoRepeats(t *testing.T) {
	s, err := New([]EventSpec{
		{ID: "late", TriggerAt: 30 * time.Second, Severity: SeverityCritical},
		{ID: "first", TriggerAt: 10 * time.Second, Severity: SeverityWarning},
		{ID: "tie-a", TriggerAt: 20 * time.Second, Severity: SeverityInfo},
		{ID: "tie-b", TriggerAt: 20 * time.Second, Severity: SeverityInfo},
	}, rand.New(rand.NewSource(1)), Options{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if got := s.Poll(5 * time.Second); len(got) != 0 {
		t.Fatalf("nothing should be due yet, got %+v", got)
	}

	got := s.Poll(25 * time.Second)
	want := []string{"first", "tie-a", "tie-b"}
	if len(got) != len(want) {
		t.Fatalf("expected %d events, got %+v", len(want), got)
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("event %d: expected %s, got %s", i, id, got[i].ID)
		}
	}

	seen := map[string]bool{}
	for _, f := range got {
		seen[f.ID] = true
	}
	for _, elapsed := range []time.Duration{25 * time.Second, 31 * time.Second, time.Minute} {
		for _, f := range s.Poll(elapsed) {
			if seen[f.ID] {
				t.Fatalf("event %s returned twice", f.ID)
			}
			seen[f.ID] = true
		}
	}
	if !seen["late"] {
		t.Fatal("late event never fired")
	}
}

func TestDiscardDropsUnfired(t *testing.T) {
	s, _ := New([]EventSpec{{ID: "x", TriggerAt: time.Second, Severity: SeverityInfo}}, nil, Options{})
	s.Discard()
	s.Discard()
	if got := s.Poll(time.Hour); len(got) != 0 {
		t.Fatalf("discarded scheduler fired %+v", got)
	}
	if s.Pending() != 0 {
		t.Fatalf("expected no pending events, got %d", s.Pending())
	}
}

func TestProbabilityAndReadingsAreSeeded(t *testing.T) {
	specs := []EventSpec{
		{ID: "seismic", TriggerAt: time.Second, Severity: SeverityWarning, Probability: 0.5, Reading: &Range{Min: 1, Max: 4, Unit: "M"}},
		{ID: "flyrock", TriggerAt: 2 * time.Second, Severity: SeverityCritical, Reading: &Range{Min: 130, Max: 160, Unit: "m"}},
	}
	run := func() []Fired {
		s, err := New(specs, rand.New(rand.NewSource(99)), Options{})
		if err != nil {
			t.Fatal(err)
		}
		fired := s.Poll(time.Minute)
		if got := len(fired) + len(s.Suppressed()); got != len(specs) {
			t.Fatalf("every event must either fire or be suppressed, got %d of %d", got, len(specs))
		}
		for _, id := range s.Suppressed() {
			if id != "seismic" {
				t.Fatalf("only probabilistic events can be suppressed, got %s", id)
			}
		}
		return fired
	}
	a, b := run(), run()
	if len(a) != len(b) {
		t.Fatalf("same seed produced different event sets: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].ID != b[i].ID || *a[i].Reading != *b[i].Reading {
			t.Fatalf("same seed produced different events: %+v vs %+v", a[i], b[i])
		}
	}
	last := a[len(a)-1]
	if last.ID != "flyrock" || *last.Reading < 130 || *last.Reading > 160 {
		t.Fatalf("unexpected flyrock reading %+v", last)
	}
}

func TestTimeScale(t *testing.T) {
	s, _ := New([]EventSpec{{ID: "x", TriggerAt: 10 * time.Second, Severity: SeverityInfo}}, nil, Options{TimeScale: 1.5})
	if got := s.Poll(14 * time.Second); len(got) != 0 {
		t.Fatalf("scaled event fired early: %+v", got)
	}
	if got := s.Poll(15 * time.Second); len(got) != 1 {
		t.Fatalf("scaled event should fire at 15s, got %+v", got)
	}
}

func TestValidate(t *testing.T) {
	cases := map[string][]EventSpec{
		"duplicate": {{ID: "a", Severity: SeverityInfo}, {ID: "a", Severity: SeverityInfo}},
		"negative":  {{ID: "a", TriggerAt: -time.Second, Severity: SeverityInfo}},
		"severity":  {{ID: "a", Severity: "loud"}},
	}
	for name, specs := range cases {
		if err := Validate(specs); !errors.Is(err, ErrInvalidEvent) {
			t.Errorf("%s: expected ErrInvalidEvent, got %v", name, err)
		}
	}
}
