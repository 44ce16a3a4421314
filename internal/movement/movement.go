// Package movement simulates actors walking toward assigned zones, such as
// workers heading to blast shelters.
//
// Actors are processed in roster order on every step so that arrivals,
// occupancy and overflow reports are deterministic.
package movement

import (
	"errors"
	"fmt"
	"time"

	"HazardDrill/internal/geom"
)

var (
	// ErrUnknownZone is returned when an actor targets an undeclared zone.
	ErrUnknownZone = errors.New("movement: unknown zone")
	// ErrInvalidActor is returned for malformed or duplicate actors.
	ErrInvalidActor = errors.New("movement: invalid actor")
	// ErrInvalidZone is returned for malformed or duplicate zones.
	ErrInvalidZone = errors.New("movement: invalid zone")
)

// DefaultArrivalThreshold is the distance at which an actor counts as arrived.
const DefaultArrivalThreshold = 1.0

// CapacityPolicy decides what happens when an actor reaches a full zone.
type CapacityPolicy int

const (
	// CapacityAdvisory admits the actor and reports the overflow.
	CapacityAdvisory CapacityPolicy = iota
	// CapacityEnforced keeps the actor waiting outside the full zone.
	CapacityEnforced
)

// ActorState is the movement state of one actor.
type ActorState string

const (
	StateWaiting ActorState = "waiting"
	StateMoving  ActorState = "moving"
	StateArrived ActorState = "arrived"
	StateHeld    ActorState = "held"
)

// ActorSpec declares an actor.
type ActorSpec struct {
	ID    string    `json:"id"`
	Start geom.Vec2 `json:"start"`
	Zone  string    `json:"zone"`
	Speed float64   `json:"speed"` // units per second
}

// ZoneSpec declares a destination zone.
type ZoneSpec struct {
	ID       string    `json:"id"`
	Label    string    `json:"label"`
	Pos      geom.Vec2 `json:"pos"`
	Capacity int       `json:"capacity"`
}

// Config tunes a simulator.
type Config struct {
	ArrivalThreshold float64
	Capacity         CapacityPolicy
	// Bounds clamps positions to [0,Bounds.X]x[0,Bounds.Y] when non-zero.
	Bounds geom.Vec2
}

type actor struct {
	spec  ActorSpec
	pos   geom.Vec2
	state ActorState
}

type zone struct {
	spec      ZoneSpec
	occupancy int
}

// Arrival reports an actor entering its zone.
type Arrival struct {
	ActorID   string
	ZoneID    string
	Occupancy int
	Overflow  bool
}

// ActorView is a snapshot of one actor.
type ActorView struct {
	ID    string     `json:"id"`
	Pos   geom.Vec2  `json:"pos"`
	Zone  string     `json:"zone"`
	Speed float64    `json:"speed"`
	State ActorState `json:"state"`
}

// ZoneView is a snapshot of one zone.
type ZoneView struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	Pos       geom.Vec2 `json:"pos"`
	Capacity  int       `json:"capacity"`
	Occupancy int       `json:"occupancy"`
}

// Simulator moves a roster of actors toward their zones.
type Simulator struct {
	cfg       Config
	actors    []*actor
	zones     []*zone
	zoneIndex map[string]*zone
	released  bool
}

// Validate checks a roster against its zones without building a simulator.
func Validate(actors []ActorSpec, zones []ZoneSpec) error {
	seenZones := make(map[string]bool, len(zones))
	for _, z := range zones {
		if z.ID == "" {
			return fmt.Errorf("%w: empty zone id", ErrInvalidZone)
		}
		if seenZones[z.ID] {
			return fmt.Errorf("%w: duplicate zone %s", ErrInvalidZone, z.ID)
		}
		if z.Capacity <= 0 {
			return fmt.Errorf("%w: zone %s has capacity %d", ErrInvalidZone, z.ID, z.Capacity)
		}
		seenZones[z.ID] = true
	}
	seenActors := make(map[string]bool, len(actors))
	for _, a := range actors {
		if a.ID == "" {
			return fmt.Errorf("%w: empty actor id", ErrInvalidActor)
		}
		if seenActors[a.ID] {
			return fmt.Errorf("%w: duplicate actor %s", ErrInvalidActor, a.ID)
		}
		if a.Speed < 0 {
			return fmt.Errorf("%w: actor %s has speed %.2f", ErrInvalidActor, a.ID, a.Speed)
		}
		if !seenZones[a.Zone] {
			return fmt.Errorf("%w: actor %s targets %s", ErrUnknownZone, a.ID, a.Zone)
		}
		seenActors[a.ID] = true
	}
	return nil
}

// New builds a simulator. Actors wait in place until Start is called.
func New(actors []ActorSpec, zones []ZoneSpec, cfg Config) (*Simulator, error) {
	if err := Validate(actors, zones); err != nil {
		return nil, err
	}
	if cfg.ArrivalThreshold <= 0 {
		cfg.ArrivalThreshold = DefaultArrivalThreshold
	}
	s := &Simulator{cfg: cfg, zoneIndex: make(map[string]*zone, len(zones))}
	for _, zs := range zones {
		z := &zone{spec: zs}
		s.zones = append(s.zones, z)
		s.zoneIndex[zs.ID] = z
	}
	for _, as := range actors {
		s.actors = append(s.actors, &actor{spec: as, pos: as.Start, state: StateWaiting})
	}
	return s, nil
}

// Start releases all waiting actors. Calling it again does nothing.
func (s *Simulator) Start() {
	if s.released {
		return
	}
	s.released = true
	for _, a := range s.actors {
		if a.state == StateWaiting {
			a.state = StateMoving
		}
	}
}

// Released reports whether Start has been called.
func (s *Simulator) Released() bool { return s.released }

// Step advances every moving actor by dt and returns arrivals in roster order.
// An actor never passes its target: a step that would reach it snaps there.
func (s *Simulator) Step(dt time.Duration) []Arrival {
	if dt <= 0 {
		return nil
	}
	secs := dt.Seconds()
	var arrivals []Arrival
	for _, a := range s.actors {
		if a.state != StateMoving && a.state != StateHeld {
			continue
		}
		z := s.zoneIndex[a.spec.Zone]
		dir := z.spec.Pos.Sub(a.pos)
		dist := dir.Len()
		travel := a.spec.Speed * secs

		if dist < s.cfg.ArrivalThreshold || dist <= travel {
			if arr, ok := s.arrive(a, z); ok {
				arrivals = append(arrivals, arr)
			}
			continue
		}
		if a.state == StateHeld || travel <= 0 {
			continue
		}
		a.pos = a.pos.Add(dir.Scale(travel / dist))
		if s.cfg.Bounds != (geom.Vec2{}) {
			a.pos = geom.ClampVec(a.pos, s.cfg.Bounds.X, s.cfg.Bounds.Y)
		}
		if geom.Dist(a.pos, z.spec.Pos) < s.cfg.ArrivalThreshold {
			if arr, ok := s.arrive(a, z); ok {
				arrivals = append(arrivals, arr)
			}
		}
	}
	return arrivals
}

// arrive settles a in z, or holds it when an enforced zone is full.
func (s *Simulator) arrive(a *actor, z *zone) (Arrival, bool) {
	if s.cfg.Capacity == CapacityEnforced && z.occupancy >= z.spec.Capacity {
		a.state = StateHeld
		return Arrival{}, false
	}
	a.pos = z.spec.Pos
	a.state = StateArrived
	z.occupancy++
	return Arrival{
		ActorID:   a.spec.ID,
		ZoneID:    z.spec.ID,
		Occupancy: z.occupancy,
		Overflow:  z.occupancy > z.spec.Capacity,
	}, true
}

// AllArrived reports whether every actor has reached its zone.
func (s *Simulator) AllArrived() bool {
	for _, a := range s.actors {
		if a.state != StateArrived {
			return false
		}
	}
	return true
}

// ArrivedCount returns how many actors have arrived.
func (s *Simulator) ArrivedCount() int {
	n := 0
	for _, a := range s.actors {
		if a.state == StateArrived {
			n++
		}
	}
	return n
}

// Occupancy returns the current occupancy of a zone.
func (s *Simulator) Occupancy(zoneID string) (int, error) {
	z, ok := s.zoneIndex[zoneID]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownZone, zoneID)
	}
	return z.occupancy, nil
}

// OverCapacity lists zones whose occupancy exceeds capacity, in declaration order.
func (s *Simulator) OverCapacity() []string {
	var ids []string
	for _, z := range s.zones {
		if z.occupancy > z.spec.Capacity {
			ids = append(ids, z.spec.ID)
		}
	}
	return ids
}

// Actors returns actor snapshots in roster order.
func (s *Simulator) Actors() []ActorView {
	views := make([]ActorView, len(s.actors))
	for i, a := range s.actors {
		views[i] = ActorView{ID: a.spec.ID, Pos: a.pos, Zone: a.spec.Zone, Speed: a.spec.Speed, State: a.state}
	}
	return views
}

// Zones returns zone snapshots in declaration order.
func (s *Simulator) Zones() []ZoneView {
	views := make([]ZoneView, len(s.zones))
	for i, z := range s.zones {
		views[i] = ZoneView{ID: z.spec.ID, Label: z.spec.Label, Pos: z.spec.Pos, Capacity: z.spec.Capacity, Occupancy: z.occupancy}
	}
	return views
}
