package integrators

import "github.com/san-kum/sphindex/internal/dynamo"

// Verlet is velocity Verlet. With the acceleration frozen over the step
// both half-kicks use the same value, which makes it the closed form of
// RK4 under the same assumption at a fraction of the arithmetic.
type Verlet struct{}

func NewVerlet() Verlet {
	return Verlet{}
}

func (Verlet) Step(p dynamo.Particle, acc dynamo.Vec2, dt float64) dynamo.Particle {
	half := p.Velocity.Add(acc.Scale(0.5 * dt))
	return dynamo.Particle{
		Position: p.Position.Add(half.Scale(dt)),
		Velocity: half.Add(acc.Scale(0.5 * dt)),
	}
}

func (Verlet) String() string { return "verlet" }
