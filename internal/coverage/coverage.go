// Package coverage scores a free-hand hazard boundary drawn by the trainee.
//
// The default density method treats the number of sampled points as a proxy
// for how much of the danger zone was traced. The area method compares the
// stroke's enclosed area with a reference zone polygon instead.
package coverage

import (
	"errors"
	"fmt"
	"math"

	"HazardDrill/internal/geom"
)

// ErrInvalidConfig is returned for unusable evaluator settings.
var ErrInvalidConfig = errors.New("coverage: invalid config")

const (
	// DefaultTargetPoints is the stroke length that counts as full coverage.
	DefaultTargetPoints = 150
	// DefaultThreshold is the completion percentage.
	DefaultThreshold = 60.0
)

// Method selects how a stroke is turned into a percentage.
type Method int

const (
	MethodDensity Method = iota
	MethodArea
)

// Config tunes an Evaluator.
type Config struct {
	Method       Method
	TargetPoints int
	Threshold    float64
	// Zone is the reference polygon for MethodArea.
	Zone []geom.Vec2
}

// Evaluator tracks strokes and the completion latch.
type Evaluator struct {
	cfg      Config
	zoneArea float64

	points   []geom.Vec2
	drawing  bool
	strokes  int
	current  float64
	best     float64
	complete bool
}

// New builds an evaluator, filling in defaults.
func New(cfg Config) (*Evaluator, error) {
	if cfg.TargetPoints == 0 {
		cfg.TargetPoints = DefaultTargetPoints
	}
	if cfg.TargetPoints < 0 {
		return nil, fmt.Errorf("%w: target points %d", ErrInvalidConfig, cfg.TargetPoints)
	}
	if cfg.Threshold == 0 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.Threshold < 0 || cfg.Threshold > 100 {
		return nil, fmt.Errorf("%w: threshold %.1f", ErrInvalidConfig, cfg.Threshold)
	}
	e := &Evaluator{cfg: cfg}
	if cfg.Method == MethodArea {
		e.zoneArea = geom.PolygonArea(cfg.Zone)
		if e.zoneArea <= 0 {
			return nil, fmt.Errorf("%w: area method needs a zone polygon", ErrInvalidConfig)
		}
	}
	return e, nil
}

// BeginStroke starts a new boundary stroke. Coverage restarts from zero; the
// best coverage and the completion latch are kept.
func (e *Evaluator) BeginStroke() {
	e.points = e.points[:0]
	e.drawing = true
	e.strokes++
	e.current = 0
}

// AddPoint appends a sample to the current stroke, starting one if needed,
// and returns the updated coverage.
func (e *Evaluator) AddPoint(p geom.Vec2) float64 {
	if !e.drawing {
		e.BeginStroke()
	}
	e.points = append(e.points, p)

	var c float64
	switch e.cfg.Method {
	case MethodArea:
		c = geom.PolygonArea(e.points) / e.zoneArea * 100
	default:
		c = math.Round(float64(len(e.points)) / float64(e.cfg.TargetPoints) * 100)
	}
	c = math.Min(100, c)
	// the shoelace area of an open stroke can shrink; coverage may not
	if c > e.current {
		e.current = c
	}
	if e.current > e.best {
		e.best = e.current
	}
	if !e.complete && e.current >= e.cfg.Threshold {
		e.complete = true
	}
	return e.current
}

// EndStroke closes the current stroke.
func (e *Evaluator) EndStroke() { e.drawing = false }

// Coverage returns the current stroke's coverage percentage.
func (e *Evaluator) Coverage() float64 { return e.current }

// Best returns the highest coverage reached by any stroke.
func (e *Evaluator) Best() float64 { return e.best }

// Strokes returns how many strokes have been started.
func (e *Evaluator) Strokes() int { return e.strokes }

// Threshold returns the configured completion percentage.
func (e *Evaluator) Threshold() float64 { return e.cfg.Threshold }

// IsComplete reports whether coverage has ever reached the threshold.
func (e *Evaluator) IsComplete() bool { return e.complete }

// Evaluate returns (complete, progress) where progress is 0.0-1.0 of the threshold.
func (e *Evaluator) Evaluate() (bool, float64) {
	if e.complete {
		return true, 1
	}
	return false, geom.Clamp(e.current/e.cfg.Threshold, 0, 1)
}
