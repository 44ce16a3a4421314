package drill

import (
	"time"

	"HazardDrill/internal/dag"
	"HazardDrill/internal/ledger"
	"HazardDrill/internal/locale"
	"HazardDrill/internal/movement"
	"HazardDrill/internal/schedule"
	"HazardDrill/internal/scoring"
	"HazardDrill/internal/timer"
)

// Phase end reasons.
const (
	ReasonManual    = "manual"
	ReasonTimer     = "timer"
	ReasonTasksDone = "tasks_done"
	ReasonMistakes  = "mistakes"
)

// PhaseResult is supplied by the caller when it ends a phase explicitly.
type PhaseResult struct {
	XPDelta int
	Reason  string
}

// PhaseRecord summarises a finished phase.
type PhaseRecord struct {
	ID       string        `json:"id"`
	Kind     PhaseKind     `json:"kind"`
	Elapsed  time.Duration `json:"elapsed"`
	Reason   string        `json:"reason"`
	XP       int           `json:"xp"`
	Mistakes int           `json:"mistakes"`
	// Suppressed lists events that lost their probability roll.
	Suppressed []string `json:"suppressed,omitempty"`
}

// TaskView is a task as shown to the trainee.
type TaskView struct {
	ID        string        `json:"id"`
	Kind      TaskKind      `json:"kind"`
	Label     locale.Text   `json:"label"`
	Status    dag.Status    `json:"status"`
	Remaining time.Duration `json:"remaining,omitempty"`
	Progress  float64       `json:"progress"`
}

// CoverageView reports a boundary task's drawing progress.
type CoverageView struct {
	Task      string  `json:"task"`
	Current   float64 `json:"current"`
	Best      float64 `json:"best"`
	Threshold float64 `json:"threshold"`
	Complete  bool    `json:"complete"`
	Strokes   int     `json:"strokes"`
}

// PhaseSnapshot is the presentation-facing state after a Tick or Act.
type PhaseSnapshot struct {
	SessionID  string               `json:"session_id"`
	PhaseID    string               `json:"phase_id,omitempty"`
	PhaseIndex int                  `json:"phase_index"`
	PhaseKind  PhaseKind            `json:"phase_kind,omitempty"`
	Title      locale.Text          `json:"title,omitempty"`
	Elapsed    time.Duration        `json:"elapsed"`
	Timers     []timer.View         `json:"timers,omitempty"`
	Actors     []movement.ActorView `json:"actors,omitempty"`
	Zones      []movement.ZoneView  `json:"zones,omitempty"`
	Overflow   []string             `json:"overflow,omitempty"`
	Events     []schedule.Fired     `json:"events,omitempty"`
	Effects    []string             `json:"effects,omitempty"`
	Coverage   []CoverageView       `json:"coverage,omitempty"`
	Tasks      []TaskView           `json:"tasks,omitempty"`
	Mistakes   int                  `json:"mistakes"`
	XP         int                  `json:"xp"`
	Preview    *float64             `json:"preview,omitempty"`
	Completed  []PhaseRecord        `json:"completed,omitempty"`
	Terminal   bool                 `json:"terminal"`
}

// Task returns the view of task id in the current phase.
func (s PhaseSnapshot) Task(id string) (TaskView, bool) {
	for _, t := range s.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return TaskView{}, false
}

// Session is the identity and progress of one run.
type Session struct {
	ID         string        `json:"id"`
	ScenarioID string        `json:"scenario_id"`
	Seed       int64         `json:"seed"`
	Difficulty string        `json:"difficulty"`
	PhaseIndex int           `json:"phase_index"`
	Terminal   bool          `json:"terminal"`
	Phases     []PhaseRecord `json:"phases"`
}

// SessionResult is produced once the terminal phase completes.
type SessionResult struct {
	SessionID  string                   `json:"session_id"`
	ScenarioID string                   `json:"scenario_id"`
	Seed       int64                    `json:"seed"`
	Difficulty string                   `json:"difficulty"`
	Score      float64                  `json:"score"`
	Raw        float64                  `json:"raw"`
	Grade      scoring.GradeBand        `json:"grade"`
	Badges     []scoring.AwardedBadge   `json:"badges"`
	XP         int                      `json:"xp"`
	Breakdown  []scoring.ComponentScore `json:"breakdown"`
	Outcomes   []scoring.TaskOutcome    `json:"outcomes"`
	Phases     []PhaseRecord            `json:"phases"`
	XPLog      []ledger.Entry           `json:"xp_log"`
}

// HasBadge reports whether the session earned badge id.
func (r SessionResult) HasBadge(id string) bool {
	for _, b := range r.Badges {
		if b.ID == id {
			return true
		}
	}
	return false
}
