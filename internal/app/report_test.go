package app

import (
	"strings"
	"testing"

	"golang.org/x/text/language"

	"HazardDrill/internal/drill"
	"HazardDrill/internal/scenario"
	"HazardDrill/internal/scoring"
)

func sampleResults() []RunResult {
	bands := scoring.StandardBands(50)
	cfg := scenario.Blast()
	fast := scoring.AwardedBadge{ID: cfg.Scoring.Badges[0].ID, Name: cfg.Scoring.Badges[0].Name}
	return []RunResult{
		{Run: 1, Seed: 5, Result: drill.SessionResult{Score: 97.5, XP: 12500, Grade: bands[0], Badges: []scoring.AwardedBadge{fast}}},
		{Run: 2, Seed: 6, Result: drill.SessionResult{Score: 82.5, XP: 4000, Grade: bands[2]}},
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleResults())
	if s.Runs != 2 || s.Mean != 90 || s.Best != 97.5 || s.Worst != 82.5 || s.TotalXP != 16500 {
		t.Fatalf("unexpected summary %+v", s)
	}
	if s.Grades["A+"] != 1 || s.Grades["B"] != 1 || s.Badges["fast_safe_decision"] != 1 {
		t.Fatalf("unexpected counts %+v %+v", s.Grades, s.Badges)
	}
	if empty := Summarize(nil); empty.Runs != 0 || empty.Mean != 0 {
		t.Fatalf("unexpected empty summary %+v", empty)
	}
}

func TestWriteReportEnglish(t *testing.T) {
	var b strings.Builder
	if err := WriteReport(&b, language.English, scenario.Blast(), sampleResults()); err != nil {
		t.Fatal(err)
	}
	out := b.String()
	for _, want := range []string{
		"Controlled blast response (Experienced)",
		"1st run (seed 5): score 97.5, grade A+ (Outstanding), XP 12,500, badges: Fast, safe decision",
		"2nd run (seed 6): score 82.5, grade B (Good), XP 4,000, badges: none",
		"Summary: 2 runs, mean 90.0, best 97.5, worst 82.5, XP 16,500",
		"Fast, safe decision: 1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestWriteReportHindi(t *testing.T) {
	var b strings.Builder
	if err := WriteReport(&b, language.Hindi, scenario.Blast(), sampleResults()); err != nil {
		t.Fatal(err)
	}
	out := b.String()
	for _, want := range []string{"नियंत्रित विस्फोट प्रतिक्रिया", "सारांश", "उत्कृष्ट", "तेज़ और सुरक्षित निर्णय"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}
