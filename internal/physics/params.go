package physics

import (
	"fmt"

	"github.com/san-kum/sphindex/internal/dynamo"
)

const (
	// Step is the default sub-step size.
	Step = 0.006
	// Radius is the interaction radius of the neighbour force.
	Radius = 20.0
	// Pressure scales the repulsive kernel.
	Pressure = 1000.0
	// Friction scales the relative-velocity damping between neighbours.
	Friction = 0.05
	// PointerForce is the magnitude of the pull towards a pressed pointer.
	PointerForce = 200.0
	// PointerRange is the largest distance the pointer acts over.
	PointerRange = 100.0

	minDistance   = 0.001
	clampDistance = 0.01
)

// DefaultGravity points down the screen.
var DefaultGravity = dynamo.V(0, 30)

// Params holds the tunable force coefficients.
type Params struct {
	Radius       float64
	Pressure     float64
	Friction     float64
	PointerForce float64
	PointerRange float64
}

func DefaultParams() Params {
	return Params{
		Radius:       Radius,
		Pressure:     Pressure,
		Friction:     Friction,
		PointerForce: PointerForce,
		PointerRange: PointerRange,
	}
}

func (w *World) GetParams() map[string]float64 {
	return map[string]float64{
		"radius":        w.params.Radius,
		"pressure":      w.params.Pressure,
		"friction":      w.params.Friction,
		"pointer_force": w.params.PointerForce,
		"pointer_range": w.params.PointerRange,
		"gravity_x":     w.gravity.X,
		"gravity_y":     w.gravity.Y,
		"step":          w.step,
	}
}

func (w *World) SetParam(name string, v float64) error {
	switch name {
	case "radius":
		if v <= 0 {
			return fmt.Errorf("%w: radius must be positive, got %g", dynamo.ErrInvalidConfig, v)
		}
		w.params.Radius = v
	case "pressure":
		w.params.Pressure = v
	case "friction":
		w.params.Friction = v
	case "pointer_force":
		w.params.PointerForce = v
	case "pointer_range":
		w.params.PointerRange = v
	case "gravity_x":
		w.gravity.X = v
	case "gravity_y":
		w.gravity.Y = v
	case "step":
		if v <= 0 {
			return fmt.Errorf("%w: step must be positive, got %g", dynamo.ErrInvalidConfig, v)
		}
		w.step = v
	default:
		return fmt.Errorf("%w: unknown parameter %q", dynamo.ErrInvalidConfig, name)
	}
	return nil
}
