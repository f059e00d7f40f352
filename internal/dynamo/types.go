package dynamo

// Integrator advances one particle by dt under an acceleration that is
// held constant for the whole step.
type Integrator interface {
	Step(p Particle, acc Vec2, dt float64) Particle
}

// Frame is the observable state after one rendered frame.
type Frame struct {
	Index     int
	Time      float64
	Width     float64
	Height    float64
	Particles []Particle

	// Neighbors is the number of neighbour visits in the frame's last
	// sub-step, self included.
	Neighbors int
	// Dropped counts points the index discarded in the last sub-step.
	Dropped int
}

type Metric interface {
	Name() string
	Observe(f Frame)
	Value() float64
	Reset()
}

type Observer interface {
	OnFrame(f Frame)
}
