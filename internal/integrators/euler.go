package integrators

import "github.com/san-kum/sphindex/internal/dynamo"

// Euler is semi-implicit: velocity is updated first and the new velocity
// moves the particle.
type Euler struct{}

func NewEuler() Euler {
	return Euler{}
}

func (Euler) Step(p dynamo.Particle, acc dynamo.Vec2, dt float64) dynamo.Particle {
	v := p.Velocity.Add(acc.Scale(dt))
	return dynamo.Particle{
		Position: p.Position.Add(v.Scale(dt)),
		Velocity: v,
	}
}

func (Euler) String() string { return "euler" }
