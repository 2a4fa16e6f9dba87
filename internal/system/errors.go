package system

import (
	"errors"
	"fmt"
)

// Domain errors for descriptor construction and validation.
var (
	// ErrConfig indicates an invalid system description.
	ErrConfig = errors.New("system: invalid configuration")

	// ErrDimension indicates a q/qd/action vector whose length does not
	// match the system.
	ErrDimension = errors.New("system: dimension mismatch")
)

// ConfigError pins an invalid configuration to a link and field. Link is -1
// for system-wide problems.
type ConfigError struct {
	Link   int
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Link >= 0 {
		return fmt.Sprintf("system: link %d: %s: %s", e.Link, e.Field, e.Reason)
	}
	return fmt.Sprintf("system: %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrConfig
}

// DimensionError reports a vector of the wrong length for the system.
type DimensionError struct {
	Vector string
	Got    int
	Want   int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("system: %s has length %d, want %d", e.Vector, e.Got, e.Want)
}

func (e *DimensionError) Unwrap() error {
	return ErrDimension
}
