package positional

import (
	"errors"
	"fmt"
)

// Domain errors for the position-based pipeline.
var (
	// ErrDivergence indicates NaN or Inf appeared in a pose or velocity.
	// Divergence is terminal for the trajectory; values are surfaced, never
	// clamped.
	ErrDivergence = errors.New("positional: numerical divergence (NaN or Inf detected)")
)

// DivergenceError pins a numerical blow-up to the link and solver iteration
// it was first seen at. Iteration is -1 when it happened outside the
// projection loop.
type DivergenceError struct {
	Link      int
	Iteration int
	Stage     string
}

func (e *DivergenceError) Error() string {
	if e.Iteration < 0 {
		return fmt.Sprintf("positional: link %d diverged during %s", e.Link, e.Stage)
	}
	return fmt.Sprintf("positional: link %d diverged during %s, iteration %d", e.Link, e.Stage, e.Iteration)
}

func (e *DivergenceError) Unwrap() error {
	return ErrDivergence
}
