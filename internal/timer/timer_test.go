package timer

import (
	"errors"
	"testing"
	"time"
)

func TestCountdownExpiresExactlyOnce(t *testing.T) {
	s := NewService()
	expiries := 0
	ticks := 0
	err := s.StartCountdown("phase", 5*time.Second, Callbacks{
		OnTick:   func(string, time.Duration) { ticks++ },
		OnExpire: func(string) { expiries++ },
	})
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}

	for i := 0; i < 5; i++ {
		if _, err := s.Tick("phase", time.Second); err != nil {
			t.Fatalf("tick %d failed: %v", i, err)
		}
	}
	if expiries != 1 {
		t.Fatalf("expected exactly one expiry, got %d", expiries)
	}
	if ticks != 4 {
		t.Fatalf("expected 4 tick callbacks before expiry, got %d", ticks)
	}
	rem, err := s.Remaining("phase")
	if err != nil {
		t.Fatalf("remaining failed: %v", err)
	}
	if rem != 0 {
		t.Fatalf("expected remaining 0, got %s", rem)
	}

	expired, err := s.Tick("phase", time.Second)
	if err != nil || expired {
		t.Fatalf("ticking an expired timer should be a silent no-op, got %v %v", expired, err)
	}
	if expiries != 1 {
		t.Fatalf("expiry fired again: %d", expiries)
	}
}

func TestRemainingNeverNegative(t *testing.T) {
	s := NewService()
	if err := s.StartCountdown("short", 1500*time.Millisecond, Callbacks{}); err != nil {
		t.Fatal(err)
	}
	expired, _ := s.Tick("short", 10*time.Second)
	if !expired {
		t.Fatal("expected expiry on overshooting tick")
	}
	if rem, _ := s.Remaining("short"); rem != 0 {
		t.Fatalf("expected 0 remaining, got %s", rem)
	}
}

func TestZeroDurationExpiresOnFirstTick(t *testing.T) {
	s := NewService()
	fired := false
	ticked := false
	if err := s.StartCountdown("now", 0, Callbacks{
		OnTick:   func(string, time.Duration) { ticked = true },
		OnExpire: func(string) { fired = true },
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Tick("now", 0); err != nil {
		t.Fatal(err)
	}
	if !fired || ticked {
		t.Fatalf("expected expiry without tick callback, fired=%v ticked=%v", fired, ticked)
	}
}

func TestCancelDropsCallbacks(t *testing.T) {
	s := NewService()
	fired := false
	_ = s.StartCountdown("c", time.Second, Callbacks{OnExpire: func(string) { fired = true }})
	if err := s.Cancel("c"); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if _, err := s.TickAll(2 * time.Second); err != nil {
		t.Fatal(err)
	}
	if fired {
		t.Fatal("cancelled timer must not fire")
	}
	if err := s.Cancel("c"); !errors.Is(err, ErrTimer) {
		t.Fatalf("expected ErrTimer on double cancel, got %v", err)
	}
	if _, err := s.Tick("c", time.Second); !errors.Is(err, ErrTimer) {
		t.Fatalf("expected ErrTimer ticking cancelled timer, got %v", err)
	}
	if _, err := s.Tick("missing", time.Second); !errors.Is(err, ErrTimer) {
		t.Fatalf("expected ErrTimer for unknown timer, got %v", err)
	}
}

func TestPauseResume(t *testing.T) {
	s := NewService()
	_ = s.StartCountdown("p", 3*time.Second, Callbacks{})
	_, _ = s.Tick("p", time.Second)
	_ = s.Pause("p")
	_, _ = s.Tick("p", 10*time.Second)
	if rem, _ := s.Remaining("p"); rem != 2*time.Second {
		t.Fatalf("paused timer moved: %s", rem)
	}
	_ = s.Resume("p")
	expired, _ := s.Tick("p", 2*time.Second)
	if !expired {
		t.Fatal("expected expiry after resume")
	}
}

func TestTickAllOrderAndStopwatch(t *testing.T) {
	s := NewService()
	var order []string
	record := Callbacks{OnExpire: func(id string) { order = append(order, id) }}
	_ = s.StartCountdown("b", time.Second, record)
	_ = s.StartCountdown("a", time.Second, record)
	_ = s.StartStopwatch("clock", Callbacks{})
	if err := s.Declare("later", time.Second, record); err != nil {
		t.Fatal(err)
	}

	expired, err := s.TickAll(time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if len(expired) != 2 || expired[0] != "b" || expired[1] != "a" {
		t.Fatalf("expected [b a], got %v", expired)
	}
	if len(order) != 2 {
		t.Fatalf("expected two expiry callbacks, got %v", order)
	}
	v, _ := s.Get("clock")
	if v.Elapsed != time.Second || v.State != StateRunning {
		t.Fatalf("unexpected stopwatch view %+v", v)
	}
	idle, _ := s.Get("later")
	if idle.State != StateIdle || idle.Remaining != time.Second {
		t.Fatalf("declared timer should stay idle, got %+v", idle)
	}
}

func TestDuplicateStartRejected(t *testing.T) {
	s := NewService()
	_ = s.StartCountdown("x", time.Second, Callbacks{})
	if err := s.StartCountdown("x", time.Second, Callbacks{}); !errors.Is(err, ErrTimer) {
		t.Fatalf("expected ErrTimer for duplicate id, got %v", err)
	}
	s.CancelAll()
	s.CancelAll()
	if len(s.Views()) != 0 {
		t.Fatalf("expected no live timers after CancelAll, got %d", len(s.Views()))
	}
	if err := s.StartCountdown("x", time.Second, Callbacks{}); err != nil {
		t.Fatalf("restarting a cancelled id should succeed: %v", err)
	}
}
