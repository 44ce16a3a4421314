package drill

import (
	"hash/fnv"
	"log/slog"
	"math/rand"
	"strings"
)

// SessionOption customises StartSession.
type SessionOption func(*options)

type options struct {
	logger     *slog.Logger
	rng        *rand.Rand
	seed       *int64
	difficulty *Difficulty
}

// WithLogger sets the session logger. The default discards everything.
func WithLogger(l *slog.Logger) SessionOption {
	return func(o *options) { o.logger = l }
}

// WithSeed seeds the session's random source.
func WithSeed(seed int64) SessionOption {
	return func(o *options) { o.seed = &seed }
}

// WithRand injects the session's random source. It takes precedence over WithSeed.
func WithRand(r *rand.Rand) SessionOption {
	return func(o *options) { o.rng = r }
}

// WithDifficulty overrides the scenario's difficulty.
func WithDifficulty(d Difficulty) SessionOption {
	return func(o *options) { o.difficulty = &d }
}

// DeriveSeed returns the default deterministic seed for a scenario.
func DeriveSeed(scenarioID string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("drill::"))
	_, _ = h.Write([]byte(strings.ToLower(scenarioID)))
	return int64(h.Sum64())
}
