// Package scoring turns recorded task outcomes into a weighted composite
// score, a letter grade and a set of badges.
//
// An Engine only collects outcomes while a session runs. Finalize is pure
// with respect to the recorded outcomes: calling it twice yields the same
// PerformanceRecord.
package scoring

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"HazardDrill/internal/locale"
)

var (
	// ErrInvalidConfig is returned for malformed scoring configuration.
	ErrInvalidConfig = errors.New("scoring: invalid config")
	// ErrFinalized is returned when outcomes are recorded after Finalize.
	ErrFinalized = errors.New("scoring: already finalized")
)

// OvershootPolicy decides what happens when weights sum past the maximum.
type OvershootPolicy int

const (
	// OvershootClamp caps the composite at MaxScore.
	OvershootClamp OvershootPolicy = iota
	// OvershootAllow keeps the raw composite.
	OvershootAllow
)

// MaxScore is the composite ceiling under OvershootClamp.
const MaxScore = 100.0

// TaskOutcome is one recorded trainee result. Outcomes are never edited.
type TaskOutcome struct {
	TaskID   string        `json:"task_id"`
	PhaseID  string        `json:"phase_id"`
	Kind     string        `json:"kind"`
	Correct  bool          `json:"correct"`
	Decision time.Duration `json:"decision"`
	// Value carries a measured quantity such as boundary coverage.
	Value    *float64 `json:"value,omitempty"`
	Choice   string   `json:"choice,omitempty"`
	Choices  []string `json:"choices,omitempty"`
	Target   string   `json:"target,omitempty"`
	TimedOut bool     `json:"timed_out,omitempty"`
}

// Config holds everything Finalize needs.
type Config struct {
	Components []Component
	Overshoot  OvershootPolicy
	Bands      []GradeBand
	Badges     []Badge
}

// Validate checks components, bands and badges, including badge expression syntax.
func (c Config) Validate() error {
	if len(c.Components) == 0 {
		return fmt.Errorf("%w: no score components", ErrInvalidConfig)
	}
	seen := make(map[string]bool, len(c.Components))
	for _, comp := range c.Components {
		if comp.ID == "" {
			return fmt.Errorf("%w: component without id", ErrInvalidConfig)
		}
		if seen[comp.ID] {
			return fmt.Errorf("%w: duplicate component %s", ErrInvalidConfig, comp.ID)
		}
		seen[comp.ID] = true
		if err := comp.validate(); err != nil {
			return err
		}
	}
	if err := validateBands(c.Bands); err != nil {
		return err
	}
	badgeIDs := make(map[string]bool, len(c.Badges))
	for _, b := range c.Badges {
		if b.ID == "" || b.Predicate == nil {
			return fmt.Errorf("%w: badge %q needs an id and a predicate", ErrInvalidConfig, b.ID)
		}
		if badgeIDs[b.ID] {
			return fmt.Errorf("%w: duplicate badge %s", ErrInvalidConfig, b.ID)
		}
		badgeIDs[b.ID] = true
		if v, ok := b.Predicate.(validator); ok {
			if err := v.validate(); err != nil {
				return fmt.Errorf("%w: badge %s: %v", ErrInvalidConfig, b.ID, err)
			}
		}
	}
	return nil
}

// ComponentScore is one line of the score breakdown.
type ComponentScore struct {
	ID     string      `json:"id"`
	Label  locale.Text `json:"label"`
	Metric MetricKind  `json:"metric"`
	Weight float64     `json:"weight"`
	// Raw is the sub-score in [0,1].
	Raw    float64 `json:"raw"`
	Points float64 `json:"points"`
}

// AwardedBadge is a badge earned by a session.
type AwardedBadge struct {
	ID   string      `json:"id"`
	Name locale.Text `json:"name"`
}

// PerformanceRecord is the finalized aggregate of a session.
type PerformanceRecord struct {
	Outcomes  []TaskOutcome      `json:"outcomes"`
	Breakdown []ComponentScore   `json:"breakdown"`
	Metrics   map[string]float64 `json:"metrics"`
	Raw       float64            `json:"raw"`
	Score     float64            `json:"score"`
	Grade     GradeBand          `json:"grade"`
	Badges    []AwardedBadge     `json:"badges"`
}

// HasBadge reports whether the record earned badge id.
func (r PerformanceRecord) HasBadge(id string) bool {
	for _, b := range r.Badges {
		if b.ID == id {
			return true
		}
	}
	return false
}

// Engine records outcomes and computes the final record.
type Engine struct {
	cfg      Config
	log      *slog.Logger
	outcomes []TaskOutcome
	record   *PerformanceRecord
}

// NewEngine validates cfg and returns an engine. A nil logger discards output.
func NewEngine(cfg Config, logger *slog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{cfg: cfg, log: logger}, nil
}

// RecordOutcome appends an outcome.
func (e *Engine) RecordOutcome(o TaskOutcome) error {
	if e.record != nil {
		return fmt.Errorf("%w: outcome for %s", ErrFinalized, o.TaskID)
	}
	if len(o.Choices) > 0 {
		o.Choices = append([]string(nil), o.Choices...)
	}
	e.outcomes = append(e.outcomes, o)
	return nil
}

// Outcomes returns a copy of the recorded outcomes.
func (e *Engine) Outcomes() []TaskOutcome {
	return append([]TaskOutcome(nil), e.outcomes...)
}

// Preview computes the composite score for the outcomes so far without finalizing.
func (e *Engine) Preview() float64 {
	_, _, score := e.compose()
	return score
}

func (e *Engine) compose() ([]ComponentScore, float64, float64) {
	idx := indexOutcomes(e.outcomes)
	breakdown := make([]ComponentScore, 0, len(e.cfg.Components))
	raw := 0.0
	for _, comp := range e.cfg.Components {
		sub := clamp01(comp.evaluate(idx))
		points := sub * comp.Weight
		raw += points
		breakdown = append(breakdown, ComponentScore{
			ID:     comp.ID,
			Label:  comp.Label,
			Metric: comp.Metric,
			Weight: comp.Weight,
			Raw:    sub,
			Points: points,
		})
	}
	score := math.Max(0, raw)
	if e.cfg.Overshoot == OvershootClamp {
		score = math.Min(MaxScore, score)
	}
	return breakdown, raw, score
}

// Finalize computes the score, grade and badges. Later calls return the same record.
func (e *Engine) Finalize() PerformanceRecord {
	if e.record != nil {
		return *e.record
	}
	breakdown, raw, score := e.compose()
	metrics := make(map[string]float64, len(breakdown))
	for _, c := range breakdown {
		metrics[c.ID] = c.Raw
	}
	rec := PerformanceRecord{
		Outcomes:  e.Outcomes(),
		Breakdown: breakdown,
		Metrics:   metrics,
		Raw:       raw,
		Score:     score,
		Grade:     GradeFor(score, e.cfg.Bands),
	}

	ctx := newBadgeContext(&rec)
	for _, b := range e.cfg.Badges {
		ok, err := b.Predicate.Awarded(ctx)
		if err != nil {
			e.log.Warn("badge predicate failed", "badge", b.ID, "error", err)
			continue
		}
		if ok {
			rec.Badges = append(rec.Badges, AwardedBadge{ID: b.ID, Name: b.Name})
		}
	}
	e.record = &rec
	return rec
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
