package drill

import (
	"errors"
	"fmt"
	"time"

	"HazardDrill/internal/coverage"
	"HazardDrill/internal/dag"
	"HazardDrill/internal/geom"
	"HazardDrill/internal/scoring"
)

// StrokeOp is the drawing step of a boundary action.
type StrokeOp string

const (
	StrokeBegin StrokeOp = "begin"
	StrokePoint StrokeOp = "point"
	StrokeEnd   StrokeOp = "end"
)

// Action is one trainee input. Only the fields the task kind reads are used.
// Phase, when set, must name the current phase; a client that missed a
// phase switch gets ErrInvalidState instead of acting on the wrong phase.
type Action struct {
	Phase   string    `json:"phase,omitempty"`
	Task    string    `json:"task"`
	Target  string    `json:"target,omitempty"`
	Choice  string    `json:"choice,omitempty"`
	Choices []string  `json:"choices,omitempty"`
	Stroke  StrokeOp  `json:"stroke,omitempty"`
	Point   geom.Vec2 `json:"point,omitempty"`
}

// taskRuntime is the mutable per-session state of one task.
type taskRuntime struct {
	spec  TaskSpec
	count int
	found map[string]bool
	cov   *coverage.Evaluator
}

// taskStep is what a handler asks the controller to apply.
type taskStep struct {
	outcome   *scoring.TaskOutcome
	complete  bool
	xp        int
	duplicate bool
}

type taskHandler struct {
	validate func(t TaskSpec, p PhaseConfig) error
	init     func(t *taskRuntime) error
	// act must validate the action before mutating the runtime.
	act func(rt *phaseRuntime, t *taskRuntime, a Action) (taskStep, error)
	// close records the outcome of a task that never completed.
	close    func(rt *phaseRuntime, t *taskRuntime, timedOut bool) *scoring.TaskOutcome
	progress func(rt *phaseRuntime, t *taskRuntime) float64
}

var taskHandlers = map[TaskKind]taskHandler{
	TaskConfirm: {
		validate: noValidation,
		init:     noInit,
		act: func(rt *phaseRuntime, t *taskRuntime, _ Action) (taskStep, error) {
			return t.finish(rt, true), nil
		},
		close:    closeMissed,
		progress: statusProgress,
	},
	TaskCounter: {
		validate: func(t TaskSpec, _ PhaseConfig) error {
			if t.Count < 1 {
				return errors.New("counter needs a positive count")
			}
			return nil
		},
		init: noInit,
		act: func(rt *phaseRuntime, t *taskRuntime, _ Action) (taskStep, error) {
			t.count++
			if t.count < t.spec.Count {
				return taskStep{}, nil
			}
			return t.finish(rt, true), nil
		},
		close: closeMissed,
		progress: func(_ *phaseRuntime, t *taskRuntime) float64 {
			return geom.Clamp(float64(t.count)/float64(t.spec.Count), 0, 1)
		},
	},
	TaskDetect: {
		validate: func(t TaskSpec, _ PhaseConfig) error {
			if realTargets(t) == 0 {
				return errors.New("detect needs at least one real target")
			}
			seen := make(map[string]bool, len(t.Targets))
			for _, tg := range t.Targets {
				if tg.ID == "" || seen[tg.ID] {
					return fmt.Errorf("target %q is empty or duplicated", tg.ID)
				}
				seen[tg.ID] = true
			}
			return nil
		},
		init: func(t *taskRuntime) error {
			t.found = make(map[string]bool)
			return nil
		},
		act: func(rt *phaseRuntime, t *taskRuntime, a Action) (taskStep, error) {
			tg, ok := t.spec.target(a.Target)
			if !ok {
				return taskStep{}, fmt.Errorf("%w: task %s has no target %q", ErrUnknownTask, t.spec.ID, a.Target)
			}
			if t.found[tg.ID] {
				return taskStep{duplicate: true}, nil
			}
			t.found[tg.ID] = true

			o := t.outcome(rt, tg.Real)
			o.Target = tg.ID
			if !tg.Real {
				return taskStep{outcome: &o, xp: -t.spec.PenaltyXP}, nil
			}
			step := taskStep{outcome: &o, xp: tg.XP}
			step.complete = t.realFound() == realTargets(t.spec)
			return step, nil
		},
		close: func(*phaseRuntime, *taskRuntime, bool) *scoring.TaskOutcome {
			// unfound targets are already reflected in the detection rate
			return nil
		},
		progress: func(_ *phaseRuntime, t *taskRuntime) float64 {
			return float64(t.realFound()) / float64(realTargets(t.spec))
		},
	},
	TaskBoundary: {
		validate: func(t TaskSpec, _ PhaseConfig) error {
			_, err := coverage.New(t.coverageConfig())
			return err
		},
		init: func(t *taskRuntime) error {
			cov, err := coverage.New(t.spec.coverageConfig())
			t.cov = cov
			return err
		},
		act: func(rt *phaseRuntime, t *taskRuntime, a Action) (taskStep, error) {
			switch a.Stroke {
			case StrokeBegin:
				t.cov.BeginStroke()
			case StrokePoint:
				t.cov.AddPoint(a.Point)
			case StrokeEnd:
				t.cov.EndStroke()
				if t.cov.IsComplete() {
					step := t.finish(rt, true)
					best := t.cov.Best()
					step.outcome.Value = &best
					return step, nil
				}
			default:
				return taskStep{}, fmt.Errorf("%w: boundary task %s needs a stroke op, got %q", ErrInvalidState, t.spec.ID, a.Stroke)
			}
			return taskStep{}, nil
		},
		close: func(rt *phaseRuntime, t *taskRuntime, timedOut bool) *scoring.TaskOutcome {
			o := t.outcome(rt, t.cov.IsComplete())
			best := t.cov.Best()
			o.Value = &best
			o.TimedOut = timedOut
			return &o
		},
		progress: func(_ *phaseRuntime, t *taskRuntime) float64 {
			return t.cov.Best() / 100
		},
	},
	TaskDecision: {
		validate: validateOptions(2),
		init:     noInit,
		act: func(rt *phaseRuntime, t *taskRuntime, a Action) (taskStep, error) {
			opt, ok := t.spec.option(a.Choice)
			if !ok {
				return taskStep{}, fmt.Errorf("%w: task %s has no option %q", ErrUnknownTask, t.spec.ID, a.Choice)
			}
			step := t.finish(rt, opt.Correct)
			step.outcome.Choice = opt.ID
			return step, nil
		},
		close:    closeMissed,
		progress: statusProgress,
	},
	TaskMultiSelect: {
		validate: validateOptions(1),
		init:     noInit,
		act: func(rt *phaseRuntime, t *taskRuntime, a Action) (taskStep, error) {
			picked := make(map[string]bool, len(a.Choices))
			var choices []string
			for _, id := range a.Choices {
				if _, ok := t.spec.option(id); !ok {
					return taskStep{}, fmt.Errorf("%w: task %s has no option %q", ErrUnknownTask, t.spec.ID, id)
				}
				if !picked[id] {
					picked[id] = true
					choices = append(choices, id)
				}
			}
			correct := true
			for _, opt := range t.spec.Options {
				if picked[opt.ID] != opt.Correct {
					correct = false
					break
				}
			}
			step := t.finish(rt, correct)
			step.outcome.Choices = choices
			return step, nil
		},
		close:    closeMissed,
		progress: statusProgress,
	},
	TaskShelterCheck: {
		validate: func(t TaskSpec, p PhaseConfig) error {
			declared := make(map[string]bool, len(p.Zones))
			for _, z := range p.Zones {
				declared[z.ID] = true
			}
			if len(declared) == 0 {
				return errors.New("shelter check needs zones")
			}
			for _, z := range t.Zones {
				if !declared[z] {
					return fmt.Errorf("zone %s is not declared", z)
				}
			}
			return nil
		},
		init: noInit,
		act: func(rt *phaseRuntime, t *taskRuntime, _ Action) (taskStep, error) {
			arrived, total := rt.arrivals()
			correct := arrived == total && !rt.overCapacity(t.spec.Zones)
			step := t.finish(rt, correct)
			share := 100.0
			if total > 0 {
				share = float64(arrived) / float64(total) * 100
			}
			step.outcome.Value = &share
			return step, nil
		},
		close:    closeMissed,
		progress: statusProgress,
	},
	TaskReading: {
		validate: func(t TaskSpec, p PhaseConfig) error {
			for _, e := range p.Events {
				if e.ID == t.EventID {
					if e.Reading == nil {
						return fmt.Errorf("event %s has no reading", e.ID)
					}
					return nil
				}
			}
			return fmt.Errorf("reading event %q is not declared", t.EventID)
		},
		init: noInit,
		act: func(rt *phaseRuntime, t *taskRuntime, a Action) (taskStep, error) {
			if a.Choice != ReadingWithin && a.Choice != ReadingExceeds {
				return taskStep{}, fmt.Errorf("%w: task %s has no option %q", ErrUnknownTask, t.spec.ID, a.Choice)
			}
			reading, ok := rt.readings[t.spec.EventID]
			if !ok {
				return taskStep{}, fmt.Errorf("%w: no reading for %s yet", ErrInvalidState, t.spec.EventID)
			}
			exceeds := reading > t.spec.Threshold
			step := t.finish(rt, (a.Choice == ReadingExceeds) == exceeds)
			step.outcome.Choice = a.Choice
			step.outcome.Value = &reading
			return step, nil
		},
		close: func(rt *phaseRuntime, t *taskRuntime, timedOut bool) *scoring.TaskOutcome {
			if _, ok := rt.readings[t.spec.EventID]; !ok {
				return nil
			}
			return closeMissed(rt, t, timedOut)
		},
		progress: statusProgress,
	},
}

func noValidation(TaskSpec, PhaseConfig) error { return nil }

func noInit(*taskRuntime) error { return nil }

func validateOptions(min int) func(TaskSpec, PhaseConfig) error {
	return func(t TaskSpec, _ PhaseConfig) error {
		if len(t.Options) < min {
			return fmt.Errorf("needs at least %d options", min)
		}
		seen := make(map[string]bool, len(t.Options))
		correct := 0
		for _, o := range t.Options {
			if o.ID == "" || seen[o.ID] {
				return fmt.Errorf("option %q is empty or duplicated", o.ID)
			}
			seen[o.ID] = true
			if o.Correct {
				correct++
			}
		}
		if correct == 0 {
			return errors.New("no correct option")
		}
		return nil
	}
}

func closeMissed(rt *phaseRuntime, t *taskRuntime, _ bool) *scoring.TaskOutcome {
	o := t.outcome(rt, false)
	o.TimedOut = true
	return &o
}

func statusProgress(rt *phaseRuntime, t *taskRuntime) float64 {
	if rt.tasks.GetStatus(dag.NodeID(t.spec.ID)) == dag.StatusCompleted {
		return 1
	}
	return 0
}

func realTargets(t TaskSpec) int {
	n := 0
	for _, tg := range t.Targets {
		if tg.Real {
			n++
		}
	}
	return n
}

func (t *taskRuntime) realFound() int {
	n := 0
	for id := range t.found {
		if tg, ok := t.spec.target(id); ok && tg.Real {
			n++
		}
	}
	return n
}

func (t TaskSpec) coverageConfig() coverage.Config {
	if t.Coverage == nil {
		return coverage.Config{}
	}
	return *t.Coverage
}

func (t *taskRuntime) outcome(rt *phaseRuntime, correct bool) scoring.TaskOutcome {
	return scoring.TaskOutcome{
		TaskID:   t.spec.ID,
		PhaseID:  rt.cfg.ID,
		Kind:     string(t.spec.Kind),
		Correct:  correct,
		Decision: rt.decisionTime(t.spec.ID),
	}
}

// finish builds the completing step for a task with its XP.
func (t *taskRuntime) finish(rt *phaseRuntime, correct bool) taskStep {
	o := t.outcome(rt, correct)
	xp := t.spec.XP
	if !correct {
		xp = -t.spec.PenaltyXP
	}
	return taskStep{outcome: &o, complete: true, xp: xp}
}

func (rt *phaseRuntime) decisionTime(id string) time.Duration {
	return rt.tasks.Elapsed(dag.NodeID(id), rt.elapsed)
}

func (rt *phaseRuntime) arrivals() (int, int) {
	if rt.sim == nil {
		return 0, 0
	}
	return rt.sim.ArrivedCount(), len(rt.sim.Actors())
}

func (rt *phaseRuntime) overCapacity(zones []string) bool {
	if rt.sim == nil {
		return false
	}
	over := rt.sim.OverCapacity()
	if len(zones) == 0 {
		return len(over) > 0
	}
	for _, id := range over {
		for _, z := range zones {
			if id == z {
				return true
			}
		}
	}
	return false
}
