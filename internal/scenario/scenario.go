// Package scenario holds the built-in training scenarios.
package scenario

import (
	"errors"
	"fmt"
	"sort"

	"HazardDrill/internal/drill"
)

// ErrNotFound is returned for an unknown scenario id.
var ErrNotFound = errors.New("scenario not found")

// Registry maps scenario ids to constructors. Each call builds a fresh
// config, so callers may tune the result without affecting other sessions.
var Registry = map[string]func() drill.ScenarioConfig{
	BlastID: Blast,
	RoofID:  Roof,
	FireID:  Fire,
}

// Get builds the scenario registered under id.
func Get(id string) (drill.ScenarioConfig, error) {
	if id == "" {
		return drill.ScenarioConfig{}, fmt.Errorf("%w: empty id", ErrNotFound)
	}
	build, ok := Registry[id]
	if !ok {
		return drill.ScenarioConfig{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return build(), nil
}

// IDs lists the registered scenarios in sorted order.
func IDs() []string {
	ids := make([]string, 0, len(Registry))
	for id := range Registry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
