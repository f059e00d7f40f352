// Package dynamo provides the core value types shared by the spatial
// indexes and the fluid simulation.
//
//   - [Vec2]: immutable 2-D vector
//   - [Particle]: position and velocity of one fluid particle
//   - [Integrator]: per-particle stepper under frozen acceleration
//   - [Frame], [Metric], [Observer]: what a run exposes after each frame
//   - [ParallelFor]: disjoint-range fan-out for per-particle work
//
// # Example
//
//	p := dynamo.NewParticle(dynamo.V(10, 20), dynamo.Vec2{})
//	d := p.Position.DistanceTo(dynamo.V(0, 0))
//
// # Thread Safety
//
// Vec2 and Particle are plain values and safe to copy between goroutines.
package dynamo
