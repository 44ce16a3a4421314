package drill

import (
	"fmt"
	"time"

	"HazardDrill/internal/coverage"
	"HazardDrill/internal/dag"
	"HazardDrill/internal/geom"
	"HazardDrill/internal/ledger"
	"HazardDrill/internal/locale"
	"HazardDrill/internal/movement"
	"HazardDrill/internal/schedule"
	"HazardDrill/internal/scoring"
	"HazardDrill/internal/timer"
)

// Difficulty scales a scenario's clocks and the odds of optional events.
type Difficulty struct {
	ID          string      `json:"id"`
	Label       locale.Text `json:"label"`
	TimeScale   float64     `json:"time_scale"`
	ChanceScale float64     `json:"chance_scale"`
}

var (
	DifficultyTrainee     = Difficulty{ID: "trainee", Label: locale.EnHi("Trainee", "प्रशिक्षु"), TimeScale: 1.5, ChanceScale: 0.4}
	DifficultyExperienced = Difficulty{ID: "experienced", Label: locale.EnHi("Experienced", "अनुभवी"), TimeScale: 1.0, ChanceScale: 1.0}
	DifficultyExpert      = Difficulty{ID: "expert", Label: locale.EnHi("Expert", "विशेषज्ञ"), TimeScale: 0.7, ChanceScale: 1.6}
)

// Difficulties indexes the built-in difficulty levels by id.
var Difficulties = map[string]Difficulty{
	DifficultyTrainee.ID:     DifficultyTrainee,
	DifficultyExperienced.ID: DifficultyExperienced,
	DifficultyExpert.ID:      DifficultyExpert,
}

func (d Difficulty) scale(v time.Duration) time.Duration {
	if d.TimeScale <= 0 {
		return v
	}
	return time.Duration(float64(v) * d.TimeScale)
}

// ScenarioConfig is the immutable description of one training scenario.
type ScenarioConfig struct {
	ID         string          `json:"id"`
	Title      locale.Text     `json:"title"`
	Phases     []PhaseConfig   `json:"phases"`
	Scoring    scoring.Config  `json:"-"`
	XP         ledger.Policy   `json:"xp"`
	Difficulty Difficulty      `json:"difficulty"`
	Movement   movement.Config `json:"movement"`
}

// TimerSpec declares a phase timer.
type TimerSpec struct {
	ID       string        `json:"id"`
	Kind     timer.Kind    `json:"kind"`
	Duration time.Duration `json:"duration"`
	// StartOnEvent keeps the timer idle until the named event fires.
	StartOnEvent string `json:"start_on_event,omitempty"`
}

// PhaseConfig declares one phase.
type PhaseConfig struct {
	ID     string      `json:"id"`
	Kind   PhaseKind   `json:"kind"`
	Title  locale.Text `json:"title"`
	Timers []TimerSpec `json:"timers"`
	// EndTimer names the countdown whose expiry ends the phase.
	EndTimer string `json:"end_timer,omitempty"`
	// EndWhenTasksDone ends the phase once every task has settled.
	EndWhenTasksDone bool `json:"end_when_tasks_done,omitempty"`
	// MaxMistakes ends the phase after this many incorrect outcomes. Zero disables it.
	MaxMistakes int                   `json:"max_mistakes,omitempty"`
	Actors      []movement.ActorSpec  `json:"actors,omitempty"`
	Rosters     []movement.RosterSpec `json:"-"`
	Zones       []movement.ZoneSpec   `json:"zones,omitempty"`
	// ReleaseOn holds actors until the named task completes. Empty releases
	// them when the phase starts.
	ReleaseOn    string               `json:"release_on,omitempty"`
	Events       []schedule.EventSpec `json:"events,omitempty"`
	Tasks        []TaskSpec           `json:"tasks,omitempty"`
	CompletionXP int                  `json:"completion_xp,omitempty"`
}

// Target is a tappable item of a detect task.
type Target struct {
	ID    string      `json:"id"`
	Label locale.Text `json:"label"`
	Real  bool        `json:"real"`
	Pos   geom.Vec2   `json:"pos"`
	XP    int         `json:"xp"`
}

// Option is a choice of a decision or multi-select task.
type Option struct {
	ID      string      `json:"id"`
	Label   locale.Text `json:"label"`
	Correct bool        `json:"correct"`
}

// TaskSpec declares one task.
type TaskSpec struct {
	ID       string        `json:"id"`
	Kind     TaskKind      `json:"kind"`
	Label    locale.Text   `json:"label"`
	Requires []string      `json:"requires,omitempty"`
	Limit    time.Duration `json:"limit,omitempty"`
	// OpenOnEvent keeps the task locked until the named event fires.
	OpenOnEvent string `json:"open_on_event,omitempty"`
	XP          int    `json:"xp,omitempty"`
	// PenaltyXP is deducted for an incorrect outcome.
	PenaltyXP int `json:"penalty_xp,omitempty"`
	// Effect is emitted when the task completes.
	Effect string `json:"effect,omitempty"`

	Count    int              `json:"count,omitempty"`
	Targets  []Target         `json:"targets,omitempty"`
	Options  []Option         `json:"options,omitempty"`
	Zones    []string         `json:"zones,omitempty"`
	Coverage *coverage.Config `json:"coverage,omitempty"`
	// EventID and Threshold drive reading tasks.
	EventID   string  `json:"event_id,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
}

func (t TaskSpec) option(id string) (Option, bool) {
	for _, o := range t.Options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

func (t TaskSpec) target(id string) (Target, bool) {
	for _, tg := range t.Targets {
		if tg.ID == id {
			return tg, true
		}
	}
	return Target{}, false
}

// Phase returns the phase with id.
func (c ScenarioConfig) Phase(id string) (PhaseConfig, bool) {
	for _, p := range c.Phases {
		if p.ID == id {
			return p, true
		}
	}
	return PhaseConfig{}, false
}

// Task looks a task up across every phase.
func (c ScenarioConfig) Task(id string) (TaskSpec, bool) {
	for _, p := range c.Phases {
		for _, t := range p.Tasks {
			if t.ID == id {
				return t, true
			}
		}
	}
	return TaskSpec{}, false
}

// Validate checks the whole scenario. Errors wrap ErrConfiguration.
func (c ScenarioConfig) Validate() error {
	if c.ID == "" {
		return configErrf("id", "scenario id is empty")
	}
	if len(c.Phases) == 0 {
		return configErrf("phases", "scenario %s declares no phases", c.ID)
	}
	phaseIDs := make(map[string]bool, len(c.Phases))
	taskIDs := make(map[string]bool)
	for i, p := range c.Phases {
		path := fmt.Sprintf("phases[%d]", i)
		if p.ID == "" {
			return configErrf(path, "phase id is empty")
		}
		if phaseIDs[p.ID] {
			return configErrf(path, "duplicate phase %s", p.ID)
		}
		phaseIDs[p.ID] = true
		handler, ok := phaseHandlers[p.Kind]
		if !ok {
			return configErrf(path, "phase %s has unknown kind %q", p.ID, p.Kind)
		}
		if err := handler.validate(c, i); err != nil {
			return configErr(path, err)
		}
		if err := validatePhase(p); err != nil {
			return configErr(path, err)
		}
		for _, t := range p.Tasks {
			if taskIDs[t.ID] {
				return configErrf(path, "task %s is declared in more than one phase", t.ID)
			}
			taskIDs[t.ID] = true
		}
	}
	for _, comp := range c.Scoring.Components {
		for _, id := range comp.Tasks {
			if !taskIDs[id] {
				return configErrf("scoring."+comp.ID, "component references undeclared task %s", id)
			}
		}
	}
	if err := c.Scoring.Validate(); err != nil {
		return configErr("scoring", err)
	}
	return nil
}

func validatePhase(p PhaseConfig) error {
	events := make(map[string]bool, len(p.Events))
	for _, e := range p.Events {
		events[e.ID] = true
	}
	if err := schedule.Validate(p.Events); err != nil {
		return err
	}

	timers := make(map[string]TimerSpec, len(p.Timers))
	for _, ts := range p.Timers {
		if ts.ID == "" {
			return fmt.Errorf("timer with empty id")
		}
		if _, dup := timers[ts.ID]; dup {
			return fmt.Errorf("duplicate timer %s", ts.ID)
		}
		if ts.Kind != timer.KindCountdown && ts.Kind != timer.KindStopwatch {
			return fmt.Errorf("timer %s has unknown kind %q", ts.ID, ts.Kind)
		}
		if ts.Duration < 0 {
			return fmt.Errorf("timer %s has negative duration", ts.ID)
		}
		if ts.StartOnEvent != "" {
			if !events[ts.StartOnEvent] {
				return fmt.Errorf("timer %s starts on undeclared event %s", ts.ID, ts.StartOnEvent)
			}
			if ts.Kind != timer.KindCountdown {
				return fmt.Errorf("only countdowns can start on an event (timer %s)", ts.ID)
			}
		}
		timers[ts.ID] = ts
	}
	if p.EndTimer != "" {
		ts, ok := timers[p.EndTimer]
		if !ok {
			return fmt.Errorf("end timer %s is not declared", p.EndTimer)
		}
		if ts.Kind != timer.KindCountdown {
			return fmt.Errorf("end timer %s must be a countdown", p.EndTimer)
		}
	}
	if p.MaxMistakes < 0 {
		return fmt.Errorf("max mistakes %d is negative", p.MaxMistakes)
	}

	zones := make(map[string]bool, len(p.Zones))
	for _, z := range p.Zones {
		zones[z.ID] = true
	}
	if err := movement.Validate(p.Actors, p.Zones); err != nil {
		return err
	}
	actorIDs := make(map[string]bool, len(p.Actors))
	for _, a := range p.Actors {
		actorIDs[a.ID] = true
	}
	for _, r := range p.Rosters {
		if r.Count < 0 || r.Prefix == "" {
			return fmt.Errorf("roster %q is malformed", r.Prefix)
		}
		if r.Count == 0 {
			continue
		}
		if len(r.Zones) == 0 {
			return fmt.Errorf("roster %s has no zones", r.Prefix)
		}
		for _, z := range r.Zones {
			if !zones[z] {
				return fmt.Errorf("roster %s targets undeclared zone %s", r.Prefix, z)
			}
		}
		if r.Speed.Min < 0 || r.Speed.Max < 0 || (r.Speed.Min == 0 && r.Speed.Max == 0) {
			return fmt.Errorf("roster %s has speed range %.2f..%.2f", r.Prefix, r.Speed.Min, r.Speed.Max)
		}
		for i := 1; i <= r.Count; i++ {
			id := fmt.Sprintf("%s-%d", r.Prefix, i)
			if actorIDs[id] {
				return fmt.Errorf("roster %s generates duplicate actor %s", r.Prefix, id)
			}
			actorIDs[id] = true
		}
	}

	nodes := make([]*dag.Node, 0, len(p.Tasks))
	tasks := make(map[string]bool, len(p.Tasks))
	for _, t := range p.Tasks {
		if t.ID == "" {
			return fmt.Errorf("task with empty id")
		}
		handler, ok := taskHandlers[t.Kind]
		if !ok {
			return fmt.Errorf("task %s has unknown kind %q", t.ID, t.Kind)
		}
		if err := handler.validate(t, p); err != nil {
			return fmt.Errorf("task %s: %w", t.ID, err)
		}
		if t.OpenOnEvent != "" && !events[t.OpenOnEvent] {
			return fmt.Errorf("task %s opens on undeclared event %s", t.ID, t.OpenOnEvent)
		}
		if t.PenaltyXP < 0 {
			return fmt.Errorf("task %s has negative penalty", t.ID)
		}
		tasks[t.ID] = true
		nodes = append(nodes, taskNode(t))
	}
	if _, err := dag.New(nodes); err != nil {
		return err
	}
	if p.ReleaseOn != "" && !tasks[p.ReleaseOn] {
		return fmt.Errorf("actors release on undeclared task %s", p.ReleaseOn)
	}
	return nil
}

func taskNode(t TaskSpec) *dag.Node {
	requires := make([]dag.NodeID, len(t.Requires))
	for i, r := range t.Requires {
		requires[i] = dag.NodeID(r)
	}
	return &dag.Node{
		ID:       dag.NodeID(t.ID),
		Label:    t.Label.String(),
		Limit:    t.Limit,
		Requires: requires,
		Gated:    t.gateEvent() != "",
	}
}

// gateEvent is the event that opens the task, if any. Reading tasks wait for
// the event that produces their reading.
func (t TaskSpec) gateEvent() string {
	if t.OpenOnEvent != "" {
		return t.OpenOnEvent
	}
	if t.Kind == TaskReading {
		return t.EventID
	}
	return ""
}
