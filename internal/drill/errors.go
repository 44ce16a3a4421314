package drill

import (
	"errors"
	"fmt"

	"HazardDrill/internal/timer"
)

var (
	// ErrConfiguration is returned when a scenario cannot be started as declared.
	ErrConfiguration = errors.New("drill: invalid configuration")
	// ErrInvalidState is returned for operations the session cannot accept now.
	ErrInvalidState = errors.New("drill: invalid state")
	// ErrUnknownTask is returned for actions naming a task, target or option
	// the current phase does not declare.
	ErrUnknownTask = errors.New("drill: unknown task")
	// ErrTimer is returned for invalid timer operations.
	ErrTimer = timer.ErrTimer
)

// ConfigError locates a configuration problem. It matches ErrConfiguration
// and the underlying cause with errors.Is.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("drill: invalid configuration at %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() []error { return []error{ErrConfiguration, e.Err} }

func configErr(path string, err error) error {
	return &ConfigError{Path: path, Err: err}
}

func configErrf(path, format string, args ...any) error {
	return &ConfigError{Path: path, Err: fmt.Errorf(format, args...)}
}
