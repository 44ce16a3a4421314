package scenario

import (
	"time"

	"HazardDrill/internal/drill"
	"HazardDrill/internal/ledger"
	"HazardDrill/internal/locale"
	"HazardDrill/internal/scoring"
	"HazardDrill/internal/timer"
)

// FireID is the fire-suppression triage scenario.
const FireID = "fire"

// extinguishers is the option set shared by every fire.
var extinguishers = []struct {
	id    string
	label locale.Text
}{
	{"water", locale.EnHi("Water", "पानी")},
	{"foam", locale.EnHi("Foam", "फोम")},
	{"co2", locale.EnHi("CO2", "CO2")},
	{"dry_powder", locale.EnHi("Dry powder", "सूखा पाउडर")},
	{"wet_chemical", locale.EnHi("Wet chemical", "वेट केमिकल")},
}

type fire struct {
	id      string
	label   locale.Text
	correct []string
}

var fires = []fire{
	{"fire_electrical", locale.EnHi("Electrical panel fire", "बिजली पैनल में आग"), []string{"co2"}},
	{"fire_oil", locale.EnHi("Diesel spill fire", "डीज़ल रिसाव में आग"), []string{"foam", "dry_powder"}},
	{"fire_wood", locale.EnHi("Timber stack fire", "लकड़ी के ढेर में आग"), []string{"water", "dry_powder"}},
	{"fire_grease", locale.EnHi("Kitchen grease fire", "रसोई में तेल की आग"), []string{"wet_chemical"}},
}

// FireTasks lists the triage checkpoints in the order they unlock.
func FireTasks() []string {
	ids := make([]string, len(fires))
	for i, f := range fires {
		ids[i] = f.id
	}
	return ids
}

func fireTask(f fire, prev string) drill.TaskSpec {
	t := drill.TaskSpec{
		ID:        f.id,
		Kind:      drill.TaskDecision,
		Label:     f.label,
		XP:        25,
		PenaltyXP: 10,
	}
	if prev != "" {
		t.Requires = []string{prev}
	}
	for _, e := range extinguishers {
		opt := drill.Option{ID: e.id, Label: e.label}
		for _, c := range f.correct {
			if c == e.id {
				opt.Correct = true
			}
		}
		t.Options = append(t.Options, opt)
	}
	return t
}

// Fire is a timed run of four fires, each needing the right extinguisher.
// Two wrong picks end the triage.
func Fire() drill.ScenarioConfig {
	var tasks []drill.TaskSpec
	prev := ""
	for _, f := range fires {
		tasks = append(tasks, fireTask(f, prev))
		prev = f.id
	}
	return drill.ScenarioConfig{
		ID:         FireID,
		Title:      locale.EnHi("Fire-suppression triage", "अग्निशमन प्राथमिकता"),
		Difficulty: drill.DifficultyExperienced,
		XP:         ledger.Policy{AllowNegative: true, FloorAtZero: true},
		Phases: []drill.PhaseConfig{
			{
				ID:               "briefing",
				Kind:             drill.PhaseBriefing,
				Title:            locale.EnHi("Know your extinguishers", "अपने अग्निशामक जानें"),
				EndWhenTasksDone: true,
				Tasks: []drill.TaskSpec{{
					ID:    "acknowledge_classes",
					Kind:  drill.TaskConfirm,
					Label: locale.EnHi("I have read the fire classes", "मैंने आग की श्रेणियाँ पढ़ ली हैं"),
					XP:    5,
				}},
			},
			{
				ID:               "triage",
				Kind:             drill.PhaseOperational,
				Title:            locale.EnHi("Put out the fires", "आग बुझाएं"),
				Timers:           []drill.TimerSpec{{ID: "triage", Kind: timer.KindCountdown, Duration: 50 * time.Second}},
				EndTimer:         "triage",
				EndWhenTasksDone: true,
				MaxMistakes:      2,
				Tasks:            tasks,
				CompletionXP:     20,
			},
			{
				ID:       "debrief",
				Kind:     drill.PhaseDebrief,
				Title:    locale.EnHi("Debrief", "समीक्षा"),
				Timers:   []drill.TimerSpec{{ID: "review", Kind: timer.KindCountdown, Duration: 20 * time.Second}},
				EndTimer: "review",
			},
		},
		Scoring: scoring.Config{
			Components: []scoring.Component{
				{ID: "extinguisher", Label: locale.EnHi("Right extinguisher", "सही अग्निशामक"), Metric: scoring.MetricCorrect, Weight: 70, Tasks: FireTasks()},
				{ID: "accuracy", Label: locale.EnHi("Accuracy", "सटीकता"), Metric: scoring.MetricAccuracy, Weight: 30},
			},
			Bands: scoring.StandardBands(50),
			Badges: []scoring.Badge{{
				ID:        "perfect_run",
				Name:      locale.EnHi("Perfect run", "त्रुटिहीन प्रदर्शन"),
				Predicate: scoring.Expr{Source: "metrics.extinguisher == 1 and metrics.accuracy == 1"},
			}},
		},
	}
}
