package scoring

import (
	"errors"
	"time"

	"HazardDrill/internal/locale"
)

// Badge is an achievement awarded when its predicate holds at finalization.
type Badge struct {
	ID        string
	Name      locale.Text
	Predicate Predicate
}

// Predicate decides whether a badge is awarded.
type Predicate interface {
	Awarded(ctx *BadgeContext) (bool, error)
}

type validator interface {
	validate() error
}

// BadgeContext is the read-only view predicates evaluate against.
type BadgeContext struct {
	Record *PerformanceRecord
	idx    outcomeIndex
}

func newBadgeContext(rec *PerformanceRecord) *BadgeContext {
	return &BadgeContext{Record: rec, idx: indexOutcomes(rec.Outcomes)}
}

// Last returns the latest outcome recorded for a task.
func (c *BadgeContext) Last(task string) (TaskOutcome, bool) { return c.idx.last(task) }

// AllDetected holds when at least Count distinct targets across Tasks were
// identified correctly and, unless AllowMisses is set, none were wrong.
type AllDetected struct {
	Tasks       []string
	Count       int
	AllowMisses bool
}

func (p AllDetected) Awarded(ctx *BadgeContext) (bool, error) {
	hits, misses := distinctCorrectTargets(ctx.idx.forTasks(p.Tasks))
	if misses > 0 && !p.AllowMisses {
		return false, nil
	}
	return hits >= p.Count, nil
}

// MetricAtLeast holds when a component's raw sub-score reaches Min.
type MetricAtLeast struct {
	Component string
	Min       float64
}

func (p MetricAtLeast) Awarded(ctx *BadgeContext) (bool, error) {
	v, ok := ctx.Record.Metrics[p.Component]
	if !ok {
		return false, errors.New("unknown component " + p.Component)
	}
	return v >= p.Min, nil
}

// ChoiceWithin holds when a task's latest outcome picked Choice (or was
// correct, when Choice is empty) in strictly less than Within.
type ChoiceWithin struct {
	Task   string
	Choice string
	Within time.Duration
}

func (p ChoiceWithin) Awarded(ctx *BadgeContext) (bool, error) {
	o, ok := ctx.Last(p.Task)
	if !ok || o.TimedOut {
		return false, nil
	}
	if p.Choice == "" && !o.Correct {
		return false, nil
	}
	if p.Choice != "" && o.Choice != p.Choice {
		return false, nil
	}
	return p.Within <= 0 || o.Decision < p.Within, nil
}

// GradeIs holds when the session earned the grade labelled Label.
type GradeIs struct{ Label string }

func (p GradeIs) Awarded(ctx *BadgeContext) (bool, error) {
	return ctx.Record.Grade.Label == p.Label, nil
}

// AllOf holds when every predicate holds.
type AllOf []Predicate

func (p AllOf) Awarded(ctx *BadgeContext) (bool, error) {
	for _, sub := range p {
		ok, err := sub.Awarded(ctx)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func (p AllOf) validate() error {
	for _, sub := range p {
		if v, ok := sub.(validator); ok {
			if err := v.validate(); err != nil {
				return err
			}
		}
	}
	return nil
}
