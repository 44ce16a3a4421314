package movement

import (
	"fmt"
	"math"
	"math/rand"

	"HazardDrill/internal/geom"
)

// Formation names understood by Formation.
const (
	FormationRing      = "ring"
	FormationCluster   = "cluster"
	FormationLine      = "line"
	FormationScattered = "scattered"
)

// SpeedRange bounds generated actor speeds.
type SpeedRange struct {
	Min float64
	Max float64
}

// RosterSpec describes a group of generated actors.
type RosterSpec struct {
	Prefix    string
	Count     int
	Formation string
	Center    geom.Vec2
	Radius    float64
	Speed     SpeedRange
	// Zones are assigned round-robin in roster order.
	Zones []string
	// Bounds clamps generated start positions when non-zero.
	Bounds geom.Vec2
}

// Formation lays out count positions around center.
func Formation(formation string, center geom.Vec2, count int, radius float64, rng *rand.Rand) []geom.Vec2 {
	if count <= 0 {
		return nil
	}
	positions := make([]geom.Vec2, count)
	switch formation {
	case FormationRing:
		angleStep := 2 * math.Pi / float64(count)
		for i := 0; i < count; i++ {
			angle := float64(i) * angleStep
			positions[i] = geom.Vec2{
				X: center.X + radius*math.Cos(angle),
				Y: center.Y + radius*math.Sin(angle),
			}
		}
	case FormationCluster, FormationScattered:
		spread := radius
		if formation == FormationCluster {
			spread = radius / 2
		}
		for i := 0; i < count; i++ {
			angle := rng.Float64() * 2 * math.Pi
			dist := rng.Float64() * spread
			positions[i] = geom.Vec2{
				X: center.X + dist*math.Cos(angle),
				Y: center.Y + dist*math.Sin(angle),
			}
		}
	case FormationLine:
		spacing := 0.0
		if count > 1 {
			spacing = 2 * radius / float64(count-1)
		}
		angle := rng.Float64() * 2 * math.Pi
		for i := 0; i < count; i++ {
			offset := (float64(i) - float64(count-1)/2) * spacing
			positions[i] = geom.Vec2{
				X: center.X + offset*math.Cos(angle),
				Y: center.Y + offset*math.Sin(angle),
			}
		}
	default:
		for i := 0; i < count; i++ {
			positions[i] = center
		}
	}
	return positions
}

// GenerateRoster builds actor specs for spec using rng for positions and speeds.
// The same rng state always yields the same roster.
func GenerateRoster(spec RosterSpec, rng *rand.Rand) ([]ActorSpec, error) {
	if spec.Count < 0 {
		return nil, fmt.Errorf("%w: roster %s has count %d", ErrInvalidActor, spec.Prefix, spec.Count)
	}
	if spec.Count > 0 && len(spec.Zones) == 0 {
		return nil, fmt.Errorf("%w: roster %s has no zones", ErrUnknownZone, spec.Prefix)
	}
	positions := Formation(spec.Formation, spec.Center, spec.Count, spec.Radius, rng)
	actors := make([]ActorSpec, spec.Count)
	for i := range actors {
		pos := positions[i]
		if spec.Bounds != (geom.Vec2{}) {
			pos = geom.ClampVec(pos, spec.Bounds.X, spec.Bounds.Y)
		}
		actors[i] = ActorSpec{
			ID:    fmt.Sprintf("%s-%d", spec.Prefix, i+1),
			Start: pos,
			Zone:  spec.Zones[i%len(spec.Zones)],
			Speed: speedBetween(spec.Speed, rng),
		}
	}
	return actors, nil
}

func speedBetween(r SpeedRange, rng *rand.Rand) float64 {
	lo, hi := math.Min(r.Min, r.Max), math.Max(r.Min, r.Max)
	if lo == hi {
		return lo
	}
	return lo + rng.Float64()*(hi-lo)
}
