package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidConfig indicates a configuration value outside its valid range.
	ErrInvalidConfig = errors.New("dynamo: invalid configuration")

	// ErrUnknownIndex indicates a spatial index name that is not registered.
	ErrUnknownIndex = errors.New("dynamo: unknown spatial index")

	// ErrUnknownIntegrator indicates an integrator name that is not registered.
	ErrUnknownIntegrator = errors.New("dynamo: unknown integrator")

	// ErrInvalidState indicates a particle with NaN or Inf components.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrCanceled indicates the run was interrupted by its context.
	ErrCanceled = errors.New("dynamo: simulation canceled by context")
)

// SimulationError wraps an error with the frame it occurred in.
type SimulationError struct {
	Frame    int
	Time     float64
	Particle int
	Wrapped  error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("frame %d (t=%.4f) particle %d: %v", e.Frame, e.Time, e.Particle, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
