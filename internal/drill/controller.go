// Package drill runs a phased hazard-response training session.
//
// A Controller owns one Session. The caller drives it with Tick and Act and
// reads PhaseSnapshots back; nothing inside reads the wall clock, so a
// session is fully reproducible from its seed and input sequence. Within a
// tick, timers are processed first, then task deadlines, then actor
// movement, then scheduled events. An expiring phase-end timer pre-empts the
// rest of the tick.
package drill

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"HazardDrill/internal/dag"
	"HazardDrill/internal/ledger"
	"HazardDrill/internal/movement"
	"HazardDrill/internal/schedule"
	"HazardDrill/internal/scoring"
	"HazardDrill/internal/timer"
)

// ActionResult describes how an Act call changed the session.
type ActionResult struct {
	Task      string               `json:"task"`
	Outcome   *scoring.TaskOutcome `json:"outcome,omitempty"`
	Duplicate bool                 `json:"duplicate,omitempty"`
	Completed bool                 `json:"completed"`
	XP        int                  `json:"xp"`
	Progress  float64              `json:"progress"`
	Snapshot  PhaseSnapshot        `json:"snapshot"`
}

// Controller is the phase state machine of one session. Its methods are
// safe to call from multiple goroutines; calls are serialized.
type Controller struct {
	mu sync.Mutex

	cfg     ScenarioConfig
	log     *slog.Logger
	rng     *rand.Rand
	session Session
	ledger  *ledger.Ledger
	engine  *scoring.Engine
	phase   *phaseRuntime
	result  *SessionResult

	// per-call output, reset at the start of Tick, Act and CompleteCurrentPhase
	out callOutput
}

type callOutput struct {
	events    []schedule.Fired
	effects   []string
	completed []PhaseRecord
}

type phaseRuntime struct {
	cfg      PhaseConfig
	index    int
	elapsed  time.Duration
	timers   *timer.Service
	sim      *movement.Simulator
	events   *schedule.Scheduler
	graph    *dag.Graph
	tasks    *dag.State
	runtimes map[string]*taskRuntime
	readings map[string]float64
	mistakes int
	xp       int
	preview  *float64
}

// StartSession validates cfg and enters its first phase.
func StartSession(cfg ScenarioConfig, opts ...SessionOption) (*Controller, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.difficulty != nil {
		cfg.Difficulty = *o.difficulty
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := o.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	seed := DeriveSeed(cfg.ID)
	if o.seed != nil {
		seed = *o.seed
	}
	rng := o.rng
	if rng == nil {
		rng = rand.New(rand.NewSource(seed))
	}
	id, err := uuid.NewRandomFromReader(rng)
	if err != nil {
		return nil, fmt.Errorf("session id: %w", err)
	}

	engine, err := scoring.NewEngine(cfg.Scoring, logger)
	if err != nil {
		return nil, configErr("scoring", err)
	}

	c := &Controller{
		cfg: cfg,
		log: logger.With("session", id.String(), "scenario", cfg.ID),
		rng: rng,
		session: Session{
			ID:         id.String(),
			ScenarioID: cfg.ID,
			Seed:       seed,
			Difficulty: cfg.Difficulty.ID,
		},
		ledger: ledger.New(cfg.XP),
		engine: engine,
	}
	if err := c.enterPhase(0); err != nil {
		return nil, err
	}
	c.log.Info("session started", "difficulty", cfg.Difficulty.ID, "phases", len(cfg.Phases))
	return c, nil
}

// Config returns the scenario the session runs.
func (c *Controller) Config() ScenarioConfig { return c.cfg }

// Session returns a copy of the session state.
func (c *Controller) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.session
	s.Phases = append([]PhaseRecord(nil), c.session.Phases...)
	return s
}

// Result returns the final result once the session is terminal.
func (c *Controller) Result() (SessionResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.result == nil {
		return SessionResult{}, false
	}
	return *c.result, true
}

// Snapshot returns the current state without advancing time.
func (c *Controller) Snapshot() PhaseSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// Tick advances the session by dt.
func (c *Controller) Tick(dt time.Duration) (PhaseSnapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session.Terminal {
		return PhaseSnapshot{}, fmt.Errorf("%w: session %s is complete", ErrInvalidState, c.session.ID)
	}
	if dt < 0 {
		return PhaseSnapshot{}, fmt.Errorf("%w: negative tick %s", ErrInvalidState, dt)
	}
	c.out = callOutput{}
	rt := c.phase
	rt.elapsed += dt

	expired, err := rt.timers.TickAll(dt)
	if err != nil {
		return PhaseSnapshot{}, err
	}
	for _, id := range expired {
		c.out.effects = append(c.out.effects, "timer_expired:"+id)
		if id == rt.cfg.EndTimer {
			if err := c.endPhase(PhaseResult{Reason: ReasonTimer}); err != nil {
				return PhaseSnapshot{}, err
			}
			return c.snapshot(), nil
		}
	}

	c.advanceTasks(rt)

	if rt.sim != nil && rt.sim.Released() {
		for _, a := range rt.sim.Step(dt) {
			if a.Overflow {
				c.out.effects = append(c.out.effects, "zone_overflow:"+a.ZoneID)
				c.log.Warn("zone over capacity", "zone", a.ZoneID, "occupancy", a.Occupancy, "actor", a.ActorID)
			}
		}
	}

	if fired := rt.events.Poll(rt.elapsed); len(fired) > 0 {
		for _, f := range fired {
			c.fireEvent(rt, f)
		}
		c.advanceTasks(rt)
	}

	if err := c.checkPhaseEnd(rt); err != nil {
		return PhaseSnapshot{}, err
	}
	return c.snapshot(), nil
}

// Act applies one trainee action to a task of the current phase. Player
// mistakes are recorded as outcomes, not returned as errors.
func (c *Controller) Act(a Action) (ActionResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session.Terminal {
		return ActionResult{}, fmt.Errorf("%w: session %s is complete", ErrInvalidState, c.session.ID)
	}
	rt := c.phase
	if a.Phase != "" && a.Phase != rt.cfg.ID {
		return ActionResult{}, fmt.Errorf("%w: action for phase %s but phase %s is running", ErrInvalidState, a.Phase, rt.cfg.ID)
	}
	t, ok := rt.runtimes[a.Task]
	if !ok {
		if _, elsewhere := c.cfg.Task(a.Task); elsewhere {
			return ActionResult{}, fmt.Errorf("%w: task %s is not part of phase %s", ErrInvalidState, a.Task, rt.cfg.ID)
		}
		return ActionResult{}, fmt.Errorf("%w: %s", ErrUnknownTask, a.Task)
	}
	if err := dag.CheckOpen(rt.graph, rt.tasks, dag.NodeID(a.Task)); err != nil {
		if errors.Is(err, dag.ErrNodeSettled) {
			return ActionResult{}, fmt.Errorf("%w: task %s already finished", ErrInvalidState, a.Task)
		}
		return ActionResult{}, fmt.Errorf("%w: task %s is not open yet", ErrInvalidState, a.Task)
	}

	c.out = callOutput{}
	handler := taskHandlers[t.spec.Kind]
	step, err := handler.act(rt, t, a)
	if err != nil {
		return ActionResult{}, err
	}

	res := ActionResult{Task: a.Task, Duplicate: step.duplicate, Outcome: step.outcome}
	if step.outcome != nil {
		c.record(rt, *step.outcome)
	}
	if step.xp != 0 {
		res.XP = c.addXP(rt, "task:"+t.spec.ID, step.xp)
	}
	res.Progress = handler.progress(rt, t)
	if step.complete {
		res.Completed = true
		res.Progress = 1
		c.completeTask(rt, t)
	}

	if err := c.checkPhaseEnd(rt); err != nil {
		return ActionResult{}, err
	}
	res.Snapshot = c.snapshot()
	return res, nil
}

// CompleteCurrentPhase ends the current phase. Completing the terminal phase
// finalizes the session; calling it on a finished session is an error.
func (c *Controller) CompleteCurrentPhase(result PhaseResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session.Terminal {
		return fmt.Errorf("%w: session %s is complete", ErrInvalidState, c.session.ID)
	}
	if result.Reason == "" {
		result.Reason = ReasonManual
	}
	c.out = callOutput{}
	return c.endPhase(result)
}

func (c *Controller) enterPhase(index int) error {
	rt, err := c.buildPhase(index)
	if err != nil {
		return err
	}
	c.activate(rt)
	return nil
}

// buildPhase prepares the runtime for a phase without touching session state.
func (c *Controller) buildPhase(index int) (*phaseRuntime, error) {
	p := c.cfg.Phases[index]
	d := c.cfg.Difficulty
	path := fmt.Sprintf("phases[%d]", index)

	rt := &phaseRuntime{
		cfg:      p,
		index:    index,
		timers:   timer.NewService(),
		tasks:    dag.NewState(),
		runtimes: make(map[string]*taskRuntime, len(p.Tasks)),
		readings: make(map[string]float64),
	}

	for _, ts := range p.Timers {
		cb := timer.Callbacks{OnExpire: func(id string) {
			c.log.Debug("timer expired", "phase", p.ID, "timer", id)
		}}
		var err error
		switch {
		case ts.Kind == timer.KindStopwatch:
			err = rt.timers.StartStopwatch(ts.ID, cb)
		case ts.StartOnEvent != "":
			err = rt.timers.Declare(ts.ID, d.scale(ts.Duration), cb)
		default:
			err = rt.timers.StartCountdown(ts.ID, d.scale(ts.Duration), cb)
		}
		if err != nil {
			return nil, configErr(path, err)
		}
	}

	actors := append([]movement.ActorSpec(nil), p.Actors...)
	for _, r := range p.Rosters {
		generated, err := movement.GenerateRoster(r, c.rng)
		if err != nil {
			return nil, configErr(path, err)
		}
		actors = append(actors, generated...)
	}
	if len(actors) > 0 || len(p.Zones) > 0 {
		sim, err := movement.New(actors, p.Zones, c.cfg.Movement)
		if err != nil {
			return nil, configErr(path, err)
		}
		if p.ReleaseOn == "" {
			sim.Start()
		}
		rt.sim = sim
	}

	events, err := schedule.New(p.Events, c.rng, schedule.Options{TimeScale: d.TimeScale, ChanceScale: d.ChanceScale})
	if err != nil {
		return nil, configErr(path, err)
	}
	rt.events = events

	nodes := make([]*dag.Node, 0, len(p.Tasks))
	for _, ts := range p.Tasks {
		node := taskNode(ts)
		node.Limit = d.scale(ts.Limit)
		nodes = append(nodes, node)

		t := &taskRuntime{spec: ts}
		if err := taskHandlers[ts.Kind].init(t); err != nil {
			return nil, configErr(path, err)
		}
		rt.runtimes[ts.ID] = t
	}
	graph, err := dag.New(nodes)
	if err != nil {
		return nil, configErr(path, err)
	}
	rt.graph = graph
	return rt, nil
}

func (c *Controller) activate(rt *phaseRuntime) {
	c.phase = rt
	c.session.PhaseIndex = rt.index
	phaseHandlers[rt.cfg.Kind].enter(c, rt)
	c.advanceTasks(rt)
	c.log.Info("phase started", "phase", rt.cfg.ID, "kind", rt.cfg.Kind, "index", rt.index)
}

// advanceTasks opens unlocked tasks and records deadline timeouts.
func (c *Controller) advanceTasks(rt *phaseRuntime) {
	expired := dag.Advance(rt.graph, rt.tasks, rt.elapsed, taskEffects{c: c, phase: rt.cfg.ID})
	for _, id := range expired {
		t := rt.runtimes[string(id)]
		if o := taskHandlers[t.spec.Kind].close(rt, t, true); o != nil {
			c.record(rt, *o)
		}
		c.out.effects = append(c.out.effects, "task_timeout:"+string(id))
	}
}

func (c *Controller) fireEvent(rt *phaseRuntime, f schedule.Fired) {
	c.out.events = append(c.out.events, f)
	if f.Effect != "" {
		c.out.effects = append(c.out.effects, f.Effect)
	}
	if f.Reading != nil {
		rt.readings[f.ID] = *f.Reading
	}
	for _, ts := range rt.cfg.Timers {
		if ts.StartOnEvent == f.ID {
			if err := rt.timers.Start(ts.ID); err != nil {
				c.log.Warn("event timer failed to start", "timer", ts.ID, "error", err)
			}
		}
	}
	for _, ts := range rt.cfg.Tasks {
		if ts.gateEvent() == f.ID {
			rt.tasks.ReleaseGate(dag.NodeID(ts.ID))
		}
	}
	attrs := []any{"phase", rt.cfg.ID, "event", f.ID, "severity", f.Severity}
	if f.Reading != nil {
		attrs = append(attrs, "reading", *f.Reading)
	}
	if f.Severity == schedule.SeverityCritical {
		c.log.Warn("event fired", attrs...)
	} else {
		c.log.Info("event fired", attrs...)
	}
}

func (c *Controller) record(rt *phaseRuntime, o scoring.TaskOutcome) {
	// the engine only rejects outcomes after finalize, which cannot happen
	// while a phase is active
	_ = c.engine.RecordOutcome(o)
	if !o.Correct {
		rt.mistakes++
	}
	c.log.Debug("outcome recorded", "task", o.TaskID, "correct", o.Correct, "decision", o.Decision, "timed_out", o.TimedOut)
}

func (c *Controller) addXP(rt *phaseRuntime, reason string, delta int) int {
	applied := c.ledger.Add(reason, delta)
	if rt != nil {
		rt.xp += applied
	}
	return applied
}

func (c *Controller) completeTask(rt *phaseRuntime, t *taskRuntime) {
	_ = dag.Complete(rt.graph, rt.tasks, dag.NodeID(t.spec.ID), taskEffects{c: c, phase: rt.cfg.ID})
	if t.spec.Effect != "" {
		c.out.effects = append(c.out.effects, t.spec.Effect)
	}
	if rt.cfg.ReleaseOn == t.spec.ID && rt.sim != nil {
		rt.sim.Start()
		c.out.effects = append(c.out.effects, "actors_released")
		c.log.Info("actors released", "phase", rt.cfg.ID, "task", t.spec.ID)
	}
	c.advanceTasks(rt)
}

func (c *Controller) checkPhaseEnd(rt *phaseRuntime) error {
	if c.phase != rt {
		return nil
	}
	switch {
	case rt.cfg.MaxMistakes > 0 && rt.mistakes >= rt.cfg.MaxMistakes:
		return c.endPhase(PhaseResult{Reason: ReasonMistakes})
	case rt.cfg.EndWhenTasksDone && len(rt.cfg.Tasks) > 0 && dag.AllSettled(rt.graph, rt.tasks):
		return c.endPhase(PhaseResult{Reason: ReasonTasksDone})
	}
	return nil
}

// endPhase tears the current phase down and enters the next one, or
// finalizes the session after the last phase. The next phase is built
// first so a failure leaves the current phase running.
func (c *Controller) endPhase(result PhaseResult) error {
	rt := c.phase
	var upcoming *phaseRuntime
	if next := rt.index + 1; next < len(c.cfg.Phases) {
		built, err := c.buildPhase(next)
		if err != nil {
			return err
		}
		upcoming = built
	}
	for _, ts := range rt.cfg.Tasks {
		id := dag.NodeID(ts.ID)
		if rt.tasks.GetStatus(id).Settled() {
			continue
		}
		t := rt.runtimes[ts.ID]
		if o := taskHandlers[ts.Kind].close(rt, t, false); o != nil {
			c.record(rt, *o)
		}
	}
	rt.timers.CancelAll()
	rt.events.Discard()
	rt.sim = nil

	if xp := rt.cfg.CompletionXP + result.XPDelta; xp != 0 {
		c.addXP(rt, "phase:"+rt.cfg.ID, xp)
	}
	rec := PhaseRecord{
		ID:         rt.cfg.ID,
		Kind:       rt.cfg.Kind,
		Elapsed:    rt.elapsed,
		Reason:     result.Reason,
		XP:         rt.xp,
		Mistakes:   rt.mistakes,
		Suppressed: rt.events.Suppressed(),
	}
	c.session.Phases = append(c.session.Phases, rec)
	c.out.completed = append(c.out.completed, rec)
	c.log.Info("phase completed", "phase", rec.ID, "reason", rec.Reason, "elapsed", rec.Elapsed, "xp", rec.XP)

	if upcoming != nil {
		c.activate(upcoming)
		return nil
	}
	c.finalize()
	return nil
}

func (c *Controller) finalize() {
	rec := c.engine.Finalize()
	if rec.Grade.XPBonus != 0 {
		c.addXP(nil, "grade:"+rec.Grade.Label, rec.Grade.XPBonus)
	}
	c.session.Terminal = true
	c.phase = nil
	c.result = &SessionResult{
		SessionID:  c.session.ID,
		ScenarioID: c.cfg.ID,
		Seed:       c.session.Seed,
		Difficulty: c.session.Difficulty,
		Score:      rec.Score,
		Raw:        rec.Raw,
		Grade:      rec.Grade,
		Badges:     rec.Badges,
		XP:         c.ledger.Total(),
		Breakdown:  rec.Breakdown,
		Outcomes:   rec.Outcomes,
		Phases:     append([]PhaseRecord(nil), c.session.Phases...),
		XPLog:      c.ledger.Entries(),
	}
	c.log.Info("session finalized", "score", rec.Score, "grade", rec.Grade.Label, "badges", len(rec.Badges), "xp", c.ledger.Total())
}

func (c *Controller) snapshot() PhaseSnapshot {
	snap := PhaseSnapshot{
		SessionID: c.session.ID,
		Events:    c.out.events,
		Effects:   c.out.effects,
		Completed: c.out.completed,
		XP:        c.ledger.Total(),
		Terminal:  c.session.Terminal,
	}
	rt := c.phase
	if rt == nil {
		snap.PhaseIndex = len(c.cfg.Phases)
		return snap
	}
	snap.PhaseID = rt.cfg.ID
	snap.PhaseIndex = rt.index
	snap.PhaseKind = rt.cfg.Kind
	snap.Title = rt.cfg.Title
	snap.Elapsed = rt.elapsed
	snap.Timers = rt.timers.Views()
	snap.Mistakes = rt.mistakes
	snap.Preview = rt.preview
	if rt.sim != nil {
		snap.Actors = rt.sim.Actors()
		snap.Zones = rt.sim.Zones()
		snap.Overflow = rt.sim.OverCapacity()
	}
	for _, ts := range rt.cfg.Tasks {
		t := rt.runtimes[ts.ID]
		id := dag.NodeID(ts.ID)
		snap.Tasks = append(snap.Tasks, TaskView{
			ID:        ts.ID,
			Kind:      ts.Kind,
			Label:     ts.Label,
			Status:    rt.tasks.GetStatus(id),
			Remaining: rt.tasks.RemainingTime(id, rt.elapsed),
			Progress:  taskHandlers[ts.Kind].progress(rt, t),
		})
		if t.cov != nil {
			snap.Coverage = append(snap.Coverage, CoverageView{
				Task:      ts.ID,
				Current:   t.cov.Coverage(),
				Best:      t.cov.Best(),
				Threshold: t.cov.Threshold(),
				Complete:  t.cov.IsComplete(),
				Strokes:   t.cov.Strokes(),
			})
		}
	}
	return snap
}

// taskEffects adapts dag lifecycle notifications to the session log.
type taskEffects struct {
	c     *Controller
	phase string
}

func (e taskEffects) OnOpen(id dag.NodeID, node *dag.Node) {
	e.c.log.Debug("task opened", "phase", e.phase, "task", id, "limit", node.Limit)
}

func (e taskEffects) OnComplete(id dag.NodeID, _ *dag.Node) {
	e.c.log.Debug("task completed", "phase", e.phase, "task", id)
}

func (e taskEffects) OnTimeout(id dag.NodeID, _ *dag.Node) {
	e.c.log.Info("task timed out", "phase", e.phase, "task", id)
}
