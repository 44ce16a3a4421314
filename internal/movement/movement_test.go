package movement

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"HazardDrill/internal/geom"
)

func singleActor(t *testing.T, cfg Config) *Simulator {
	t.Helper()
	sim, err := New(
		[]ActorSpec{{ID: "w1", Start: geom.Vec2{}, Zone: "A", Speed: 2}},
		[]ZoneSpec{{ID: "A", Pos: geom.Vec2{X: 10}, Capacity: 5}},
		cfg,
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return sim
}

func TestActorArrivesWithoutOvershoot(t *testing.T) {
	sim := singleActor(t, Config{})
	sim.Start()

	steps := 0
	for !sim.AllArrived() {
		steps++
		if steps > 5 {
			t.Fatalf("actor did not arrive within 5 steps")
		}
		sim.Step(1000 * time.Millisecond)
		pos := sim.Actors()[0].Pos
		if pos.X > 10 {
			t.Fatalf("actor overshot target: %+v", pos)
		}
	}
	occ, err := sim.Occupancy("A")
	if err != nil {
		t.Fatal(err)
	}
	if occ != 1 {
		t.Fatalf("expected occupancy 1, got %d", occ)
	}

	sim.Step(time.Second)
	if occ, _ := sim.Occupancy("A"); occ != 1 {
		t.Fatalf("occupancy must increment once per arrival, got %d", occ)
	}
}

func TestActorsWaitUntilStarted(t *testing.T) {
	sim := singleActor(t, Config{})
	sim.Step(time.Second)
	if got := sim.Actors()[0]; got.State != StateWaiting || got.Pos != (geom.Vec2{}) {
		t.Fatalf("unreleased actor moved: %+v", got)
	}
}

func TestCapacityPolicies(t *testing.T) {
	actors := []ActorSpec{
		{ID: "a", Start: geom.Vec2{X: 0.5}, Zone: "S", Speed: 1},
		{ID: "b", Start: geom.Vec2{X: -0.5}, Zone: "S", Speed: 1},
	}
	zones := []ZoneSpec{{ID: "S", Capacity: 1}}

	advisory, _ := New(actors, zones, Config{})
	advisory.Start()
	arrivals := advisory.Step(100 * time.Millisecond)
	if len(arrivals) != 2 || arrivals[0].ActorID != "a" || !arrivals[1].Overflow {
		t.Fatalf("expected ordered arrivals with overflow on the second, got %+v", arrivals)
	}
	if over := advisory.OverCapacity(); len(over) != 1 || over[0] != "S" {
		t.Fatalf("expected S over capacity, got %v", over)
	}

	enforced, _ := New(actors, zones, Config{Capacity: CapacityEnforced})
	enforced.Start()
	arrivals = enforced.Step(100 * time.Millisecond)
	if len(arrivals) != 1 {
		t.Fatalf("expected one admitted actor, got %+v", arrivals)
	}
	if got := enforced.Actors()[1].State; got != StateHeld {
		t.Fatalf("expected second actor held, got %s", got)
	}
}

func TestValidateRejectsUnknownZone(t *testing.T) {
	_, err := New([]ActorSpec{{ID: "x", Zone: "nowhere", Speed: 1}}, nil, Config{})
	if !errors.Is(err, ErrUnknownZone) {
		t.Fatalf("expected ErrUnknownZone, got %v", err)
	}
	_, err = New([]ActorSpec{{ID: "x", Zone: "A"}, {ID: "x", Zone: "A"}}, []ZoneSpec{{ID: "A", Capacity: 1}}, Config{})
	if !errors.Is(err, ErrInvalidActor) {
		t.Fatalf("expected ErrInvalidActor for duplicates, got %v", err)
	}
}

func TestValidateRejectsNonPositiveCapacity(t *testing.T) {
	for _, capacity := range []int{0, -3} {
		err := Validate(nil, []ZoneSpec{{ID: "A", Capacity: capacity}})
		if !errors.Is(err, ErrInvalidZone) {
			t.Errorf("capacity %d: expected ErrInvalidZone, got %v", capacity, err)
		}
	}
}

func TestActorArrivesWhenStepEndsInsideThreshold(t *testing.T) {
	sim, err := New(
		[]ActorSpec{{ID: "w1", Zone: "A", Speed: 9.5}},
		[]ZoneSpec{{ID: "A", Pos: geom.Vec2{X: 10}, Capacity: 1}},
		Config{ArrivalThreshold: 1},
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	sim.Start()

	arrivals := sim.Step(time.Second)
	if len(arrivals) != 1 || arrivals[0].ActorID != "w1" {
		t.Fatalf("expected arrival in the step that enters the threshold, got %+v", arrivals)
	}
	got := sim.Actors()[0]
	if got.State != StateArrived || got.Pos != (geom.Vec2{X: 10}) {
		t.Fatalf("expected actor snapped to zone, got %+v", got)
	}
}

func TestGenerateRosterDeterministic(t *testing.T) {
	spec := RosterSpec{
		Prefix:    "worker",
		Count:     6,
		Formation: FormationScattered,
		Center:    geom.Vec2{X: 50, Y: 50},
		Radius:    20,
		Speed:     SpeedRange{Min: 10, Max: 20},
		Zones:     []string{"A", "B"},
	}
	first, err := GenerateRoster(spec, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatal(err)
	}
	second, _ := GenerateRoster(spec, rand.New(rand.NewSource(7)))
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("roster differs at %d: %+v vs %+v", i, first[i], second[i])
		}
		if first[i].Speed < 10 || first[i].Speed > 20 {
			t.Fatalf("speed out of range: %v", first[i].Speed)
		}
	}
	if first[1].Zone != "B" || first[2].Zone != "A" {
		t.Fatalf("zones should alternate, got %s %s", first[1].Zone, first[2].Zone)
	}
}

func TestRingFormationRadius(t *testing.T) {
	pts := Formation(FormationRing, geom.Vec2{}, 4, 10, rand.New(rand.NewSource(1)))
	for _, p := range pts {
		if d := p.Len(); d < 9.999 || d > 10.001 {
			t.Fatalf("ring point off radius: %v", d)
		}
	}
}
