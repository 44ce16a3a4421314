// Package schedule fires scripted disruptions at fixed offsets into a phase.
package schedule

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"
)

// ErrInvalidEvent is returned for malformed or duplicate event specs.
var ErrInvalidEvent = errors.New("schedule: invalid event")

// Severity ranks an event for presentation and scoring.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Valid reports whether s is one of the known severities.
func (s Severity) Valid() bool {
	switch s {
	case SeverityInfo, SeverityWarning, SeverityCritical:
		return true
	}
	return false
}

// Range is an inclusive interval a reading is drawn from.
type Range struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Unit string  `json:"unit"`
}

// EventSpec declares one scheduled event.
type EventSpec struct {
	ID        string        `json:"id"`
	Label     string        `json:"label"`
	TriggerAt time.Duration `json:"trigger_at"`
	Severity  Severity      `json:"severity"`
	Effect    string        `json:"effect,omitempty"`
	// Probability in (0,1) makes the event optional; anything else always fires.
	Probability float64 `json:"probability,omitempty"`
	Reading     *Range  `json:"reading,omitempty"`
}

// Fired is an event returned by Poll.
type Fired struct {
	ID        string        `json:"id"`
	Label     string        `json:"label"`
	TriggerAt time.Duration `json:"trigger_at"`
	Severity  Severity      `json:"severity"`
	Effect    string        `json:"effect,omitempty"`
	Reading   *float64      `json:"reading,omitempty"`
	Unit      string        `json:"unit,omitempty"`
}

// Options adjust a scheduler for a difficulty level.
type Options struct {
	// TimeScale multiplies every trigger offset. Zero means 1.
	TimeScale float64
	// ChanceScale multiplies optional event probabilities. Zero means 1.
	ChanceScale float64
}

type entry struct {
	spec       EventSpec
	trigger    time.Duration
	fired      bool
	suppressed bool
}

// Scheduler holds one phase's events.
type Scheduler struct {
	entries   []*entry // sorted by trigger, then declaration order
	rng       *rand.Rand
	discarded bool
}

// Validate checks event specs without building a scheduler.
func Validate(specs []EventSpec) error {
	seen := make(map[string]bool, len(specs))
	for _, s := range specs {
		if s.ID == "" {
			return fmt.Errorf("%w: empty event id", ErrInvalidEvent)
		}
		if seen[s.ID] {
			return fmt.Errorf("%w: duplicate event %s", ErrInvalidEvent, s.ID)
		}
		seen[s.ID] = true
		if s.TriggerAt < 0 {
			return fmt.Errorf("%w: event %s triggers at %s", ErrInvalidEvent, s.ID, s.TriggerAt)
		}
		if !s.Severity.Valid() {
			return fmt.Errorf("%w: event %s has severity %q", ErrInvalidEvent, s.ID, s.Severity)
		}
		if s.Reading != nil && s.Reading.Max < s.Reading.Min {
			return fmt.Errorf("%w: event %s reading range is inverted", ErrInvalidEvent, s.ID)
		}
	}
	return nil
}

// New builds a scheduler. Optional events are rolled once here using rng, so
// the same seed always yields the same set of firing events.
func New(specs []EventSpec, rng *rand.Rand, opts Options) (*Scheduler, error) {
	if err := Validate(specs); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	timeScale := opts.TimeScale
	if timeScale <= 0 {
		timeScale = 1
	}
	chanceScale := opts.ChanceScale
	if chanceScale <= 0 {
		chanceScale = 1
	}

	s := &Scheduler{rng: rng}
	for _, spec := range specs {
		e := &entry{spec: spec, trigger: time.Duration(float64(spec.TriggerAt) * timeScale)}
		if spec.Probability > 0 && spec.Probability < 1 {
			p := spec.Probability * chanceScale
			e.suppressed = rng.Float64() >= p
		}
		s.entries = append(s.entries, e)
	}
	sort.SliceStable(s.entries, func(i, j int) bool {
		return s.entries[i].trigger < s.entries[j].trigger
	})
	return s, nil
}

// Poll returns every due, unfired event ordered by trigger time then
// declaration order, and marks them fired. An event is never returned twice.
func (s *Scheduler) Poll(elapsed time.Duration) []Fired {
	if s.discarded {
		return nil
	}
	var due []Fired
	for _, e := range s.entries {
		if e.trigger > elapsed {
			break
		}
		if e.fired || e.suppressed {
			continue
		}
		e.fired = true
		f := Fired{
			ID:        e.spec.ID,
			Label:     e.spec.Label,
			TriggerAt: e.trigger,
			Severity:  e.spec.Severity,
			Effect:    e.spec.Effect,
		}
		if r := e.spec.Reading; r != nil {
			v := r.Min + s.rng.Float64()*(r.Max-r.Min)
			f.Reading = &v
			f.Unit = r.Unit
		}
		due = append(due, f)
	}
	return due
}

// Discard drops every unfired event. Safe to call repeatedly.
func (s *Scheduler) Discard() {
	s.discarded = true
}

// Pending returns how many events may still fire.
func (s *Scheduler) Pending() int {
	if s.discarded {
		return 0
	}
	n := 0
	for _, e := range s.entries {
		if !e.fired && !e.suppressed {
			n++
		}
	}
	return n
}

// Suppressed lists events that lost their probability roll.
func (s *Scheduler) Suppressed() []string {
	var ids []string
	for _, e := range s.entries {
		if e.suppressed {
			ids = append(ids, e.spec.ID)
		}
	}
	return ids
}
