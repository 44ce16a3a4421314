package scenario

import (
	"time"

	"HazardDrill/internal/coverage"
	"HazardDrill/internal/drill"
	"HazardDrill/internal/geom"
	"HazardDrill/internal/locale"
	"HazardDrill/internal/schedule"
	"HazardDrill/internal/scoring"
	"HazardDrill/internal/timer"
)

// RoofID is the roof-instability inspection scenario.
const RoofID = "roof"

const (
	RoofAcknowledge = "acknowledge_briefing"
	RoofScan        = "hazard_scan"
	RoofBoundary    = "exclusion_boundary"
	RoofStopWork    = "stop_work"
	RoofSupport     = "support_call"
	RoofRisk        = "risk_classification"
)

// Roof walks a trainee through spotting roof-fall warning signs, marking an
// exclusion zone under a deteriorating roof, and calling for support.
func Roof() drill.ScenarioConfig {
	return drill.ScenarioConfig{
		ID:         RoofID,
		Title:      locale.EnHi("Roof instability", "छत की अस्थिरता"),
		Difficulty: drill.DifficultyExperienced,
		Phases: []drill.PhaseConfig{
			{
				ID:               "briefing",
				Kind:             drill.PhaseBriefing,
				Title:            locale.EnHi("Briefing", "जानकारी"),
				Timers:           []drill.TimerSpec{{ID: "briefing", Kind: timer.KindCountdown, Duration: 15 * time.Second}},
				EndTimer:         "briefing",
				EndWhenTasksDone: true,
				Tasks: []drill.TaskSpec{{
					ID:    RoofAcknowledge,
					Kind:  drill.TaskConfirm,
					Label: locale.EnHi("I understand the roof-fall hazards", "मैं छत गिरने के खतरों को समझता हूँ"),
					XP:    5,
				}},
			},
			{
				ID:               "scan",
				Kind:             drill.PhaseOperational,
				Title:            locale.EnHi("Spot the warning signs", "चेतावनी संकेत पहचानें"),
				Timers:           []drill.TimerSpec{{ID: "scan", Kind: timer.KindCountdown, Duration: 30 * time.Second}},
				EndTimer:         "scan",
				EndWhenTasksDone: true,
				Tasks: []drill.TaskSpec{{
					ID:        RoofScan,
					Kind:      drill.TaskDetect,
					Label:     locale.EnHi("Tap every roof-fall warning sign", "छत गिरने के हर चेतावनी संकेत पर टैप करें"),
					PenaltyXP: 5,
					Targets: []drill.Target{
						{ID: "crack", Label: locale.EnHi("Open crack", "खुली दरार"), Real: true, Pos: geom.Vec2{X: 12, Y: 30}, XP: 10},
						{ID: "loose_rock", Label: locale.EnHi("Loose rock", "ढीली चट्टान"), Real: true, Pos: geom.Vec2{X: 40, Y: 18}, XP: 10},
						{ID: "bolt_shear", Label: locale.EnHi("Sheared roof bolt", "टूटा रूफ बोल्ट"), Real: true, Pos: geom.Vec2{X: 64, Y: 22}, XP: 10},
						{ID: "slab_separation", Label: locale.EnHi("Slab separation", "स्लैब का अलग होना"), Real: true, Pos: geom.Vec2{X: 80, Y: 40}, XP: 10},
						{ID: "drummy_roof", Label: locale.EnHi("Drummy roof", "खोखली आवाज़ वाली छत"), Real: true, Pos: geom.Vec2{X: 30, Y: 60}, XP: 10},
						{ID: "spalling", Label: locale.EnHi("Spalling", "परत उखड़ना"), Real: true, Pos: geom.Vec2{X: 70, Y: 70}, XP: 10},
						{ID: "water_stain", Label: locale.EnHi("Water stain", "पानी का दाग"), Pos: geom.Vec2{X: 50, Y: 45}},
						{ID: "paint_mark", Label: locale.EnHi("Survey paint mark", "सर्वे पेंट निशान"), Pos: geom.Vec2{X: 20, Y: 82}},
					},
				}},
				CompletionXP: 10,
			},
			{
				ID:               "active",
				Kind:             drill.PhaseOperational,
				Title:            locale.EnHi("Roof is working", "छत हिल रही है"),
				Timers:           []drill.TimerSpec{{ID: "active", Kind: timer.KindCountdown, Duration: 40 * time.Second}},
				EndTimer:         "active",
				EndWhenTasksDone: true,
				Events: []schedule.EventSpec{
					{ID: "rock_fall_1", Label: "Small rock fall", TriggerAt: 10 * time.Second, Severity: schedule.SeverityWarning, Effect: "dust"},
					{ID: "crack_growth", Label: "Crack widening", TriggerAt: 20 * time.Second, Severity: schedule.SeverityCritical, Effect: "crack_flash"},
					{ID: "bolt_failure", Label: "Roof bolt failure", TriggerAt: 30 * time.Second, Severity: schedule.SeverityCritical, Effect: "bolt_snap"},
				},
				Tasks: []drill.TaskSpec{
					{
						ID:       RoofBoundary,
						Kind:     drill.TaskBoundary,
						Label:    locale.EnHi("Mark the exclusion zone", "प्रतिबंधित क्षेत्र चिह्नित करें"),
						Limit:    20 * time.Second,
						XP:       30,
						Coverage: &coverage.Config{},
					},
					{
						ID:          RoofStopWork,
						Kind:        drill.TaskDecision,
						Label:       locale.EnHi("The crack is growing. Your call?", "दरार बढ़ रही है। आपका निर्णय?"),
						OpenOnEvent: "crack_growth",
						Limit:       15 * time.Second,
						XP:          40,
						PenaltyXP:   20,
						Effect:      "withdraw",
						Options: []drill.Option{
							{ID: "stop_work", Label: locale.EnHi("Stop work and withdraw", "काम रोकें और पीछे हटें"), Correct: true},
							{ID: "continue", Label: locale.EnHi("Keep working", "काम जारी रखें")},
							{ID: "bar_down", Label: locale.EnHi("Bar down the loose rock", "ढीली चट्टान गिराएं")},
						},
					},
				},
				CompletionXP: 10,
			},
			{
				ID:               "support",
				Kind:             drill.PhaseOperational,
				Title:            locale.EnHi("Call for support", "सहायता बुलाएं"),
				Timers:           []drill.TimerSpec{{ID: "support", Kind: timer.KindCountdown, Duration: 30 * time.Second}},
				EndTimer:         "support",
				EndWhenTasksDone: true,
				Tasks: []drill.TaskSpec{
					{
						ID:        RoofSupport,
						Kind:      drill.TaskMultiSelect,
						Label:     locale.EnHi("Who do you notify?", "आप किसे सूचित करेंगे?"),
						XP:        20,
						PenaltyXP: 5,
						Options: []drill.Option{
							{ID: "ground_control", Label: locale.EnHi("Ground control engineer", "ग्राउंड कंट्रोल इंजीनियर"), Correct: true},
							{ID: "supervisor", Label: locale.EnHi("Shift supervisor", "शिफ्ट पर्यवेक्षक"), Correct: true},
							{ID: "canteen", Label: locale.EnHi("Canteen", "कैंटीन")},
							{ID: "nobody", Label: locale.EnHi("Nobody", "कोई नहीं")},
						},
					},
					{
						ID:        RoofRisk,
						Kind:      drill.TaskDecision,
						Label:     locale.EnHi("Classify the risk", "जोखिम का वर्गीकरण करें"),
						XP:        20,
						PenaltyXP: 5,
						Options: []drill.Option{
							{ID: "low", Label: locale.EnHi("Low", "कम")},
							{ID: "medium", Label: locale.EnHi("Medium", "मध्यम")},
							{ID: "high", Label: locale.EnHi("High", "उच्च"), Correct: true},
							{ID: "critical", Label: locale.EnHi("Critical", "गंभीर"), Correct: true},
						},
					},
				},
				CompletionXP: 10,
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
				{ID: "detection", Label: locale.EnHi("Warning signs found", "पहचाने गए संकेत"), Metric: scoring.MetricDetectionRate, Weight: 25, Tasks: []string{RoofScan}, Targets: 6, FalsePositivePenalty: 0.5},
				{ID: "coverage", Label: locale.EnHi("Exclusion coverage", "क्षेत्र कवरेज"), Metric: scoring.MetricCoverage, Weight: 20, Tasks: []string{RoofBoundary}},
				{ID: "stop_work", Label: locale.EnHi("Stop-work call", "काम रोकने का निर्णय"), Metric: scoring.MetricCorrect, Weight: 25, Tasks: []string{RoofStopWork}},
				{ID: "speed", Label: locale.EnHi("Decision speed", "निर्णय की गति"), Metric: scoring.MetricSpeedBonus, Weight: 10, Tasks: []string{RoofStopWork}, Limit: 15 * time.Second},
				{ID: "support", Label: locale.EnHi("Support call", "सहायता कॉल"), Metric: scoring.MetricCorrect, Weight: 15, Tasks: []string{RoofSupport}},
				{ID: "risk", Label: locale.EnHi("Risk classification", "जोखिम वर्गीकरण"), Metric: scoring.MetricCorrect, Weight: 15, Tasks: []string{RoofRisk}},
			},
			Overshoot: scoring.OvershootClamp,
			Bands:     scoring.StandardBands(50),
			Badges: []scoring.Badge{
				{ID: "early_spotter", Name: locale.EnHi("Early Spotter", "सतर्क दृष्टि"), Predicate: scoring.AllDetected{Tasks: []string{RoofScan}, Count: 6}},
				{ID: "ground_guardian", Name: locale.EnHi("Ground Guardian", "भूमि रक्षक"), Predicate: scoring.MetricAtLeast{Component: "coverage", Min: 0.9}},
				{ID: "zero_exposure", Name: locale.EnHi("Zero Exposure", "शून्य जोखिम"), Predicate: scoring.ChoiceWithin{Task: RoofStopWork, Choice: "stop_work", Within: 10 * time.Second}},
				{ID: "roof_master", Name: locale.EnHi("Roof Fall Master", "रूफ फॉल मास्टर"), Predicate: scoring.GradeIs{Label: "A+"}},
			},
		},
	}
}
