package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"HazardDrill/internal/coverage"
	"HazardDrill/internal/drill"
	"HazardDrill/internal/geom"
	"HazardDrill/internal/movement"
)

// ErrStalled is returned when an autopilot run fails to finish.
var ErrStalled = errors.New("app: autopilot stalled")

// Profile names a scripted trainee.
type Profile string

const (
	ProfileExpert Profile = "expert"
	ProfileNovice Profile = "novice"
)

// behaviour is how a profile plays.
type behaviour struct {
	// reaction is the delay between a task opening and the first action.
	reaction time.Duration
	// mistakeChance is the odds of picking a wrong option.
	mistakeChance float64
	// coverage is the share of the target stroke length drawn.
	coverage float64
	// missTargets is how many real targets are left unfound.
	missTargets int
	// decoys is how many decoys are tapped.
	decoys int
	// waitForShelter holds the shelter check until every actor arrived.
	waitForShelter bool
	// readsGauge answers reading tasks from the actual reading.
	readsGauge bool
}

var profiles = map[Profile]behaviour{
	ProfileExpert: {
		reaction:       time.Second,
		coverage:       0.97,
		waitForShelter: true,
		readsGauge:     true,
	},
	ProfileNovice: {
		reaction:      12 * time.Second,
		mistakeChance: 0.5,
		coverage:      0.5,
		missTargets:   1,
		decoys:        1,
	},
}

const maxSteps = 100000

// Autopilot plays a session with a scripted profile, reading answer keys
// from the scenario config.
type Autopilot struct {
	profile Profile
	b       behaviour
	rng     *rand.Rand

	seen     map[string]time.Duration
	handled  map[string]bool
	readings map[string]float64
}

// NewAutopilot returns an autopilot for profile. rng drives the novice's mistakes.
func NewAutopilot(profile Profile, rng *rand.Rand) (*Autopilot, error) {
	b, ok := profiles[profile]
	if !ok {
		return nil, fmt.Errorf("%w: unknown profile %q", ErrConfig, profile)
	}
	return &Autopilot{
		profile:  profile,
		b:        b,
		rng:      rng,
		seen:     make(map[string]time.Duration),
		handled:  make(map[string]bool),
		readings: make(map[string]float64),
	}, nil
}

// Run drives c to completion, advancing tick at a time.
func (a *Autopilot) Run(ctx context.Context, c *drill.Controller, tick time.Duration) (drill.SessionResult, error) {
	cfg := c.Config()
	for step := 0; ; step++ {
		if err := ctx.Err(); err != nil {
			return drill.SessionResult{}, err
		}
		if res, ok := c.Result(); ok {
			return res, nil
		}
		if step >= maxSteps {
			return drill.SessionResult{}, fmt.Errorf("%w: no result after %d steps", ErrStalled, step)
		}

		snap := c.Snapshot()
		acted, err := a.play(c, cfg, snap)
		if err != nil {
			return drill.SessionResult{}, err
		}
		if acted {
			continue
		}

		phase, _ := cfg.Phase(snap.PhaseID)
		if !pending(snap) && phase.EndTimer == "" {
			if err := c.CompleteCurrentPhase(drill.PhaseResult{}); err != nil {
				return drill.SessionResult{}, err
			}
			continue
		}
		next, err := c.Tick(tick)
		if err != nil {
			return drill.SessionResult{}, err
		}
		for _, ev := range next.Events {
			if ev.Reading != nil {
				a.readings[ev.ID] = *ev.Reading
			}
		}
	}
}

func pending(snap drill.PhaseSnapshot) bool {
	for _, t := range snap.Tasks {
		if !t.Status.Settled() {
			return true
		}
	}
	return false
}

// play acts on the first open task that is ready. It reports whether the
// session changed.
func (a *Autopilot) play(c *drill.Controller, cfg drill.ScenarioConfig, snap drill.PhaseSnapshot) (bool, error) {
	for _, tv := range snap.Tasks {
		if !tv.Status.Open() || a.handled[tv.ID] {
			continue
		}
		first, ok := a.seen[tv.ID]
		if !ok {
			a.seen[tv.ID] = snap.Elapsed
			first = snap.Elapsed
		}
		if snap.Elapsed-first < a.b.reaction {
			continue
		}
		spec, _ := cfg.Task(tv.ID)
		actions, ready := a.plan(spec, snap)
		if !ready {
			continue
		}
		a.handled[tv.ID] = true
		for _, act := range actions {
			act.Phase = snap.PhaseID
			res, err := c.Act(act)
			if err != nil {
				return false, fmt.Errorf("autopilot %s on %s: %w", a.profile, tv.ID, err)
			}
			if res.Snapshot.Terminal || res.Snapshot.PhaseIndex != snap.PhaseIndex {
				break
			}
		}
		return true, nil
	}
	return false, nil
}

// plan returns the actions for one task, or false when the task should wait.
func (a *Autopilot) plan(t drill.TaskSpec, snap drill.PhaseSnapshot) ([]drill.Action, bool) {
	switch t.Kind {
	case drill.TaskConfirm:
		return []drill.Action{{Task: t.ID}}, true
	case drill.TaskCounter:
		actions := make([]drill.Action, t.Count)
		for i := range actions {
			actions[i] = drill.Action{Task: t.ID}
		}
		return actions, true
	case drill.TaskDetect:
		return a.planDetect(t), true
	case drill.TaskBoundary:
		return a.planBoundary(t), true
	case drill.TaskDecision:
		return []drill.Action{{Task: t.ID, Choice: a.pick(t)}}, true
	case drill.TaskMultiSelect:
		var choices []string
		for _, o := range t.Options {
			if o.Correct {
				choices = append(choices, o.ID)
				if a.slip() {
					break
				}
			}
		}
		return []drill.Action{{Task: t.ID, Choices: choices}}, true
	case drill.TaskShelterCheck:
		if a.b.waitForShelter && !sheltered(snap.Actors) {
			return nil, false
		}
		return []drill.Action{{Task: t.ID}}, true
	case drill.TaskReading:
		reading, ok := a.readings[t.EventID]
		choice := drill.ReadingWithin
		if a.b.readsGauge && ok && reading > t.Threshold {
			choice = drill.ReadingExceeds
		}
		return []drill.Action{{Task: t.ID, Choice: choice}}, true
	}
	return nil, false
}

func (a *Autopilot) slip() bool {
	return a.b.mistakeChance > 0 && a.rng.Float64() < a.b.mistakeChance
}

// pick chooses a decision option: the first correct one, unless the profile slips.
func (a *Autopilot) pick(t drill.TaskSpec) string {
	wrong, right := "", ""
	for _, o := range t.Options {
		if o.Correct && right == "" {
			right = o.ID
		}
		if !o.Correct && wrong == "" {
			wrong = o.ID
		}
	}
	if wrong != "" && a.slip() {
		return wrong
	}
	return right
}

func (a *Autopilot) planDetect(t drill.TaskSpec) []drill.Action {
	var actions []drill.Action
	decoys := a.b.decoys
	for _, tg := range t.Targets {
		if !tg.Real && decoys > 0 {
			actions = append(actions, drill.Action{Task: t.ID, Target: tg.ID})
			decoys--
		}
	}
	var reals []string
	for _, tg := range t.Targets {
		if tg.Real {
			reals = append(reals, tg.ID)
		}
	}
	keep := len(reals) - a.b.missTargets
	if keep < 0 {
		keep = 0
	}
	for _, id := range reals[:keep] {
		actions = append(actions, drill.Action{Task: t.ID, Target: id})
	}
	return actions
}

// planBoundary draws one closed stroke. Density strokes circle the origin;
// area strokes trace the reference polygon.
func (a *Autopilot) planBoundary(t drill.TaskSpec) []drill.Action {
	cfg := coverage.Config{}
	if t.Coverage != nil {
		cfg = *t.Coverage
	}
	var points []geom.Vec2
	if cfg.Method == coverage.MethodArea {
		n := int(math.Ceil(float64(len(cfg.Zone)) * a.b.coverage))
		points = append(points, cfg.Zone[:n]...)
	} else {
		target := cfg.TargetPoints
		if target <= 0 {
			target = coverage.DefaultTargetPoints
		}
		n := int(math.Round(float64(target) * a.b.coverage))
		for i := 0; i < n; i++ {
			angle := 2 * math.Pi * float64(i) / float64(n)
			points = append(points, geom.Vec2{X: 50 + 20*math.Cos(angle), Y: 50 + 20*math.Sin(angle)})
		}
	}
	actions := []drill.Action{{Task: t.ID, Stroke: drill.StrokeBegin}}
	for _, p := range points {
		actions = append(actions, drill.Action{Task: t.ID, Stroke: drill.StrokePoint, Point: p})
	}
	return append(actions, drill.Action{Task: t.ID, Stroke: drill.StrokeEnd})
}

func sheltered(actors []movement.ActorView) bool {
	for _, a := range actors {
		if a.State != movement.StateArrived {
			return false
		}
	}
	return true
}
