package integrators

import "github.com/san-kum/sphindex/internal/dynamo"

// RK4 is the classical fourth-order Runge-Kutta scheme with the
// acceleration sampled once and reused for all four stages. With a frozen
// acceleration the velocity stages are identical and the update reduces to
// x + v*dt + a*dt²/2, so this is only as accurate as the caller's choice of
// sampling point.
type RK4 struct{}

func NewRK4() RK4 {
	return RK4{}
}

func (RK4) Step(p dynamo.Particle, acc dynamo.Vec2, dt float64) dynamo.Particle {
	v := p.Velocity

	k1v := acc.Scale(dt)
	k1p := v.Scale(dt)
	k2v := acc.Scale(dt)
	k2p := v.Add(k1v.Scale(0.5)).Scale(dt)
	k3v := acc.Scale(dt)
	k3p := v.Add(k2v.Scale(0.5)).Scale(dt)
	k4v := acc.Scale(dt)
	k4p := v.Add(k3v).Scale(dt)

	dv := k1v.Add(k2v.Scale(2)).Add(k3v.Scale(2)).Add(k4v).Scale(1.0 / 6.0)
	dp := k1p.Add(k2p.Scale(2)).Add(k3p.Scale(2)).Add(k4p).Scale(1.0 / 6.0)

	return dynamo.Particle{
		Position: p.Position.Add(dp),
		Velocity: v.Add(dv),
	}
}

func (RK4) String() string { return "rk4" }
