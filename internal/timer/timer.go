// Package timer implements the countdown and stopwatch timers that drive
// phase deadlines and decision clocks.
//
// Timers only move when ticked. A Service never reads the wall clock, so a
// session replays identically from the same sequence of Tick calls.
package timer

import (
	"errors"
	"fmt"
	"time"
)

// ErrTimer is returned for operations on unknown, cancelled or duplicate timers.
var ErrTimer = errors.New("timer: invalid operation")

// Kind distinguishes counting down from counting up.
type Kind string

const (
	// KindCountdown runs from its duration to zero and then expires.
	KindCountdown Kind = "countdown"
	// KindStopwatch counts elapsed time and never expires.
	KindStopwatch Kind = "stopwatch"
)

// State is the lifecycle position of a timer.
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StatePaused  State = "paused"
	StateExpired State = "expired"
)

// Callbacks are optional hooks invoked synchronously from Tick.
//
// OnTick receives the remaining time for countdowns and the elapsed time for
// stopwatches. It is not called on the tick that expires a countdown.
type Callbacks struct {
	OnTick   func(id string, value time.Duration)
	OnExpire func(id string)
}

// Timer is a single countdown or stopwatch.
type Timer struct {
	ID        string
	Kind      Kind
	Duration  time.Duration
	Remaining time.Duration
	Elapsed   time.Duration
	State     State

	cancelled bool
	cb        Callbacks
}

// View is a read-only copy of a timer for snapshots.
type View struct {
	ID        string        `json:"id"`
	Kind      Kind          `json:"kind"`
	State     State         `json:"state"`
	Duration  time.Duration `json:"duration"`
	Remaining time.Duration `json:"remaining"`
	Elapsed   time.Duration `json:"elapsed"`
}

// Service owns every timer of one phase.
type Service struct {
	timers map[string]*Timer
	order  []string
}

// NewService creates an empty timer service.
func NewService() *Service {
	return &Service{timers: make(map[string]*Timer)}
}

func (s *Service) live(id string) (*Timer, error) {
	t, ok := s.timers[id]
	if !ok {
		return nil, fmt.Errorf("%w: unknown timer %s", ErrTimer, id)
	}
	if t.cancelled {
		return nil, fmt.Errorf("%w: timer %s was cancelled", ErrTimer, id)
	}
	return t, nil
}

func (s *Service) add(id string, kind Kind, d time.Duration, cb Callbacks) (*Timer, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty timer id", ErrTimer)
	}
	if d < 0 {
		return nil, fmt.Errorf("%w: timer %s has negative duration %s", ErrTimer, id, d)
	}
	if existing, ok := s.timers[id]; ok {
		if !existing.cancelled && existing.State != StateExpired {
			return nil, fmt.Errorf("%w: timer %s already exists", ErrTimer, id)
		}
	} else {
		s.order = append(s.order, id)
	}
	t := &Timer{ID: id, Kind: kind, Duration: d, Remaining: d, State: StateIdle, cb: cb}
	s.timers[id] = t
	return t, nil
}

// Declare registers an idle countdown that starts on Start.
func (s *Service) Declare(id string, d time.Duration, cb Callbacks) error {
	_, err := s.add(id, KindCountdown, d, cb)
	return err
}

// StartCountdown registers and immediately runs a countdown.
func (s *Service) StartCountdown(id string, d time.Duration, cb Callbacks) error {
	t, err := s.add(id, KindCountdown, d, cb)
	if err != nil {
		return err
	}
	t.State = StateRunning
	return nil
}

// StartStopwatch registers and immediately runs an elapsed-time timer.
func (s *Service) StartStopwatch(id string, cb Callbacks) error {
	t, err := s.add(id, KindStopwatch, 0, cb)
	if err != nil {
		return err
	}
	t.State = StateRunning
	return nil
}

// Start moves an idle timer to running. Starting a running timer is a no-op.
func (s *Service) Start(id string) error {
	t, err := s.live(id)
	if err != nil {
		return err
	}
	if t.State == StateIdle {
		t.State = StateRunning
	}
	return nil
}

// Pause freezes a running timer.
func (s *Service) Pause(id string) error {
	t, err := s.live(id)
	if err != nil {
		return err
	}
	if t.State == StateRunning {
		t.State = StatePaused
	}
	return nil
}

// Resume continues a paused timer.
func (s *Service) Resume(id string) error {
	t, err := s.live(id)
	if err != nil {
		return err
	}
	if t.State == StatePaused {
		t.State = StateRunning
	}
	return nil
}

// Cancel stops a timer and drops its callbacks. Cancelling twice is an error.
func (s *Service) Cancel(id string) error {
	t, err := s.live(id)
	if err != nil {
		return err
	}
	t.cancelled = true
	t.cb = Callbacks{}
	return nil
}

// CancelAll cancels every live timer. Safe to call repeatedly.
func (s *Service) CancelAll() {
	for _, id := range s.order {
		t := s.timers[id]
		if t.cancelled {
			continue
		}
		t.cancelled = true
		t.cb = Callbacks{}
	}
}

// Tick advances one timer by delta and reports whether it expired on this tick.
//
// Ticking an expired, idle or paused timer does nothing.
func (s *Service) Tick(id string, delta time.Duration) (bool, error) {
	if delta < 0 {
		return false, fmt.Errorf("%w: negative tick %s for %s", ErrTimer, delta, id)
	}
	t, err := s.live(id)
	if err != nil {
		return false, err
	}
	return t.advance(delta), nil
}

// TickAll advances every live timer in start order and returns the ids that
// expired during this call.
func (s *Service) TickAll(delta time.Duration) ([]string, error) {
	if delta < 0 {
		return nil, fmt.Errorf("%w: negative tick %s", ErrTimer, delta)
	}
	var expired []string
	ids := append([]string(nil), s.order...)
	for _, id := range ids {
		t := s.timers[id]
		// callbacks of an earlier timer may have cancelled this one
		if t == nil || t.cancelled {
			continue
		}
		if t.advance(delta) {
			expired = append(expired, id)
		}
	}
	return expired, nil
}

func (t *Timer) advance(delta time.Duration) bool {
	if t.State != StateRunning {
		return false
	}
	t.Elapsed += delta
	if t.Kind == KindStopwatch {
		if t.cb.OnTick != nil {
			t.cb.OnTick(t.ID, t.Elapsed)
		}
		return false
	}
	t.Remaining -= delta
	if t.Remaining <= 0 {
		t.Remaining = 0
		t.State = StateExpired
		if t.cb.OnExpire != nil {
			t.cb.OnExpire(t.ID)
		}
		return true
	}
	if t.cb.OnTick != nil {
		t.cb.OnTick(t.ID, t.Remaining)
	}
	return false
}

// Get returns a copy of a live timer.
func (s *Service) Get(id string) (View, error) {
	t, err := s.live(id)
	if err != nil {
		return View{}, err
	}
	return t.view(), nil
}

// Remaining returns the time left on a countdown.
func (s *Service) Remaining(id string) (time.Duration, error) {
	t, err := s.live(id)
	if err != nil {
		return 0, err
	}
	return t.Remaining, nil
}

// Views lists live timers in start order.
func (s *Service) Views() []View {
	views := make([]View, 0, len(s.order))
	for _, id := range s.order {
		t := s.timers[id]
		if t.cancelled {
			continue
		}
		views = append(views, t.view())
	}
	return views
}

func (t *Timer) view() View {
	return View{
		ID:        t.ID,
		Kind:      t.Kind,
		State:     t.State,
		Duration:  t.Duration,
		Remaining: t.Remaining,
		Elapsed:   t.Elapsed,
	}
}
