package scoring

import (
	"fmt"
	"time"

	"HazardDrill/internal/locale"
)

// MetricKind is the closed set of sub-score calculations.
type MetricKind string

const (
	// MetricDetectionRate is distinct correct targets minus a false-positive
	// penalty, over Targets.
	MetricDetectionRate MetricKind = "detection_rate"
	// MetricCoverage is the best recorded Value of the tasks, over 100.
	MetricCoverage MetricKind = "coverage"
	// MetricCorrect is the share of tasks whose latest outcome is correct.
	MetricCorrect MetricKind = "correct"
	// MetricAccuracy is correct outcomes over all recorded outcomes of the tasks.
	MetricAccuracy MetricKind = "accuracy"
	// MetricSpeedBonus is 1 when the task's latest outcome is correct and
	// decided in under Limit.
	MetricSpeedBonus MetricKind = "speed_bonus"
)

// Component is one weighted part of the composite score.
type Component struct {
	ID     string
	Label  locale.Text
	Metric MetricKind
	Weight float64
	// Tasks restricts the metric to these task ids. Empty means every task,
	// which only MetricAccuracy accepts.
	Tasks []string
	// Targets is the number of real targets for MetricDetectionRate.
	Targets int
	// FalsePositivePenalty is subtracted from the detection count per wrong tap.
	FalsePositivePenalty float64
	// Limit is the decision time bound for MetricSpeedBonus.
	Limit time.Duration
}

func (c Component) validate() error {
	switch c.Metric {
	case MetricDetectionRate:
		if c.Targets <= 0 {
			return fmt.Errorf("%w: component %s needs a positive target count", ErrInvalidConfig, c.ID)
		}
	case MetricSpeedBonus:
		if c.Limit <= 0 || len(c.Tasks) != 1 {
			return fmt.Errorf("%w: component %s needs one task and a positive limit", ErrInvalidConfig, c.ID)
		}
		return nil
	case MetricAccuracy:
		return nil
	case MetricCoverage, MetricCorrect:
	default:
		return fmt.Errorf("%w: component %s has unknown metric %q", ErrInvalidConfig, c.ID, c.Metric)
	}
	if len(c.Tasks) == 0 {
		return fmt.Errorf("%w: component %s names no tasks", ErrInvalidConfig, c.ID)
	}
	return nil
}

type outcomeIndex struct {
	all    []TaskOutcome
	byTask map[string][]TaskOutcome
}

func indexOutcomes(outcomes []TaskOutcome) outcomeIndex {
	idx := outcomeIndex{all: outcomes, byTask: make(map[string][]TaskOutcome)}
	for _, o := range outcomes {
		idx.byTask[o.TaskID] = append(idx.byTask[o.TaskID], o)
	}
	return idx
}

func (idx outcomeIndex) last(task string) (TaskOutcome, bool) {
	list := idx.byTask[task]
	if len(list) == 0 {
		return TaskOutcome{}, false
	}
	return list[len(list)-1], true
}

func (idx outcomeIndex) forTasks(tasks []string) []TaskOutcome {
	if len(tasks) == 0 {
		return idx.all
	}
	var out []TaskOutcome
	for _, id := range tasks {
		out = append(out, idx.byTask[id]...)
	}
	return out
}

// distinctCorrectTargets counts each correctly identified target once.
func distinctCorrectTargets(outcomes []TaskOutcome) (hits int, misses int) {
	seen := make(map[string]bool)
	for _, o := range outcomes {
		if !o.Correct {
			misses++
			continue
		}
		key := o.Target
		if key == "" {
			key = o.TaskID
		}
		if !seen[key] {
			seen[key] = true
			hits++
		}
	}
	return hits, misses
}

func (c Component) evaluate(idx outcomeIndex) float64 {
	switch c.Metric {
	case MetricDetectionRate:
		hits, misses := distinctCorrectTargets(idx.forTasks(c.Tasks))
		return (float64(hits) - c.FalsePositivePenalty*float64(misses)) / float64(c.Targets)
	case MetricCoverage:
		best := 0.0
		for _, o := range idx.forTasks(c.Tasks) {
			if o.Value != nil && *o.Value > best {
				best = *o.Value
			}
		}
		return best / 100
	case MetricCorrect:
		correct := 0
		for _, id := range c.Tasks {
			if o, ok := idx.last(id); ok && o.Correct {
				correct++
			}
		}
		return float64(correct) / float64(len(c.Tasks))
	case MetricAccuracy:
		outcomes := idx.forTasks(c.Tasks)
		if len(outcomes) == 0 {
			return 0
		}
		correct := 0
		for _, o := range outcomes {
			if o.Correct {
				correct++
			}
		}
		return float64(correct) / float64(len(outcomes))
	case MetricSpeedBonus:
		o, ok := idx.last(c.Tasks[0])
		if ok && o.Correct && !o.TimedOut && o.Decision < c.Limit {
			return 1
		}
		return 0
	}
	return 0
}
