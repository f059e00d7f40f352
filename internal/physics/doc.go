// Package physics advances a 2-D particle fluid.
//
// A [World] owns the particle set. Every sub-step it rebuilds a spatial
// index from the current positions, queries it once per particle for the
// neighbour force, adds the pointer force and gravity, integrates with the
// configured [dynamo.Integrator] and reflects particles at the domain
// walls. The particle slice is replaced wholesale each sub-step so that all
// forces are computed against one consistent snapshot.
//
//	w := physics.NewWorld(640, 480, physics.WithIndex(grid.Build[dynamo.Particle]))
//	w.AddRandomParticles(500, rand.New(rand.NewSource(1)))
//	w.Evolve(4)
//
// Runtime parameters are exposed through GetParams and SetParam:
//
//	w.SetParam("friction", 0.1)
package physics
