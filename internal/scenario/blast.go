package scenario

import (
	"time"

	"HazardDrill/internal/drill"
	"HazardDrill/internal/geom"
	"HazardDrill/internal/locale"
	"HazardDrill/internal/movement"
	"HazardDrill/internal/schedule"
	"HazardDrill/internal/scoring"
	"HazardDrill/internal/timer"
)

// BlastID is the controlled-blast response scenario.
const BlastID = "blast"

// Blast task ids referenced by scoring and autopilot scripts.
const (
	BlastPerimeter  = "perimeter_check"
	BlastAlarm      = "evacuation_alarm"
	BlastShelters   = "shelter_check"
	BlastFlyrock    = "flyrock_check"
	BlastCrater     = "crater_inspection"
	BlastStopWork   = "stop_work_decision"
	BlastFlyrockEvt = "flyrock"
)

var blastArea = geom.Vec2{X: 100, Y: 100}

// Blast is a pre-blast evacuation, the blast itself, and the post-blast
// inspection that ends in a stop-work call.
func Blast() drill.ScenarioConfig {
	return drill.ScenarioConfig{
		ID:         BlastID,
		Title:      locale.EnHi("Controlled blast response", "नियंत्रित विस्फोट प्रतिक्रिया"),
		Difficulty: drill.DifficultyExperienced,
		Movement:   movement.Config{Bounds: blastArea},
		Phases: []drill.PhaseConfig{
			{
				ID:               "pre_blast",
				Kind:             drill.PhaseOperational,
				Title:            locale.EnHi("Pre-blast clearance", "विस्फोट से पहले निकासी"),
				Timers:           []drill.TimerSpec{{ID: "detonation", Kind: timer.KindCountdown, Duration: 300 * time.Second}},
				EndTimer:         "detonation",
				EndWhenTasksDone: true,
				Zones: []movement.ZoneSpec{
					{ID: "shelter_a", Label: "Shelter A", Pos: geom.Vec2{X: 15, Y: 20}, Capacity: 15},
					{ID: "shelter_b", Label: "Shelter B", Pos: geom.Vec2{X: 15, Y: 50}, Capacity: 12},
					{ID: "shelter_c", Label: "Shelter C", Pos: geom.Vec2{X: 15, Y: 75}, Capacity: 10},
				},
				Rosters: []movement.RosterSpec{{
					Prefix:    "worker",
					Count:     8,
					Formation: movement.FormationCluster,
					Center:    geom.Vec2{X: 60, Y: 50},
					Radius:    10,
					Speed:     movement.SpeedRange{Min: 6, Max: 8},
					Zones:     []string{"shelter_a", "shelter_b", "shelter_c"},
					Bounds:    blastArea,
				}},
				ReleaseOn: BlastAlarm,
				Tasks: []drill.TaskSpec{
					{
						ID:    BlastPerimeter,
						Kind:  drill.TaskConfirm,
						Label: locale.EnHi("Confirm the blast perimeter is clear", "पुष्टि करें कि विस्फोट परिधि खाली है"),
						Limit: 15 * time.Second,
						XP:    20,
					},
					{
						ID:       BlastAlarm,
						Kind:     drill.TaskCounter,
						Label:    locale.EnHi("Sound three horn blasts", "तीन बार सायरन बजाएं"),
						Requires: []string{BlastPerimeter},
						Limit:    10 * time.Second,
						Count:    3,
						XP:       15,
						Effect:   "siren",
					},
					{
						ID:       BlastShelters,
						Kind:     drill.TaskShelterCheck,
						Label:    locale.EnHi("Verify every worker is sheltered", "सुनिश्चित करें कि सभी कर्मचारी आश्रय में हैं"),
						Requires: []string{BlastAlarm},
						XP:       25,
					},
				},
				CompletionXP: 20,
			},
			{
				ID:               "blast_sequence",
				Kind:             drill.PhaseOperational,
				Title:            locale.EnHi("Detonation", "विस्फोट"),
				Timers:           []drill.TimerSpec{{ID: "sequence", Kind: timer.KindCountdown, Duration: 60 * time.Second}},
				EndTimer:         "sequence",
				EndWhenTasksDone: true,
				Events: []schedule.EventSpec{
					{ID: "detonation", Label: "Detonation", TriggerAt: time.Second, Severity: schedule.SeverityWarning, Effect: "shockwave"},
					{
						ID: "seismic", Label: "Ground vibration", TriggerAt: 5 * time.Second, Severity: schedule.SeverityInfo,
						Effect: "ground_shake", Probability: 0.5,
						Reading: &schedule.Range{Min: 1, Max: 4, Unit: "magnitude"},
					},
					{
						ID: BlastFlyrockEvt, Label: "Flyrock", TriggerAt: 30 * time.Second, Severity: schedule.SeverityCritical,
						Effect:  "flyrock_alert",
						Reading: &schedule.Range{Min: 130, Max: 160, Unit: "m"},
					},
				},
				Tasks: []drill.TaskSpec{{
					ID:        BlastFlyrock,
					Kind:      drill.TaskReading,
					Label:     locale.EnHi("Is the flyrock beyond the 145 m safety radius?", "क्या फ्लाईरॉक 145 मीटर सुरक्षा सीमा से आगे है?"),
					EventID:   BlastFlyrockEvt,
					Threshold: 145,
					Limit:     15 * time.Second,
					XP:        20,
					PenaltyXP: 5,
				}},
			},
			{
				ID:               "post_blast",
				Kind:             drill.PhaseOperational,
				Title:            locale.EnHi("Post-blast inspection", "विस्फोट के बाद निरीक्षण"),
				EndWhenTasksDone: true,
				Tasks: []drill.TaskSpec{
					{
						ID:    BlastCrater,
						Kind:  drill.TaskConfirm,
						Label: locale.EnHi("Inspect the crater", "गड्ढे का निरीक्षण करें"),
						XP:    20,
					},
					{
						ID:        BlastStopWork,
						Kind:      drill.TaskDecision,
						Label:     locale.EnHi("Misfire suspected. What now?", "मिसफायर की आशंका। अब क्या?"),
						Requires:  []string{BlastCrater},
						Limit:     20 * time.Second,
						XP:        40,
						PenaltyXP: 20,
						Options: []drill.Option{
							{ID: "stop_work", Label: locale.EnHi("Stop work and report", "काम रोकें और सूचित करें"), Correct: true},
							{ID: "resume_work", Label: locale.EnHi("Resume work", "काम फिर से शुरू करें")},
						},
					},
				},
				CompletionXP: 20,
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
				{ID: "accuracy", Label: locale.EnHi("Procedure accuracy", "प्रक्रिया सटीकता"), Metric: scoring.MetricAccuracy, Weight: 35},
				{ID: "stop_work", Label: locale.EnHi("Stop-work call", "काम रोकने का निर्णय"), Metric: scoring.MetricCorrect, Weight: 45, Tasks: []string{BlastStopWork}},
				{ID: "speed", Label: locale.EnHi("Decision speed", "निर्णय की गति"), Metric: scoring.MetricSpeedBonus, Weight: 20, Tasks: []string{BlastStopWork}, Limit: 15 * time.Second},
			},
			Bands: scoring.StandardBands(50),
			Badges: []scoring.Badge{
				{
					ID:        "fast_safe_decision",
					Name:      locale.EnHi("Fast, safe decision", "तेज़ और सुरक्षित निर्णय"),
					Predicate: scoring.ChoiceWithin{Task: BlastStopWork, Choice: "stop_work", Within: 10 * time.Second},
				},
				{
					ID:        "flawless_blast",
					Name:      locale.EnHi("Flawless blast", "त्रुटिहीन विस्फोट"),
					Predicate: scoring.Expr{Source: `metrics.accuracy == 1 and tasks.` + BlastFlyrock + ` ~= nil and tasks.` + BlastFlyrock + `.correct`},
				},
			},
		},
	}
}
