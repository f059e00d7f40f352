package metrics

import "github.com/san-kum/sphindex/internal/dynamo"

// KineticEnergy averages the mean per-particle kinetic energy ½|v|² over
// the observed frames. Particles have unit mass.
type KineticEnergy struct {
	name    string
	total   float64
	last    float64
	samples int
}

func NewKineticEnergy() *KineticEnergy {
	return &KineticEnergy{name: "kinetic_energy"}
}

func (e *KineticEnergy) Name() string { return e.name }

func (e *KineticEnergy) Observe(f dynamo.Frame) {
	e.last = MeanKinetic(f.Particles)
	e.total += e.last
	e.samples++
}

func (e *KineticEnergy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

// Last returns the value observed in the most recent frame.
func (e *KineticEnergy) Last() float64 { return e.last }

func (e *KineticEnergy) Reset() {
	e.total = 0
	e.last = 0
	e.samples = 0
}

// MeanKinetic returns the mean of ½|v|² over ps, or 0 for no particles.
func MeanKinetic(ps []dynamo.Particle) float64 {
	if len(ps) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range ps {
		sum += 0.5 * p.Velocity.LenSqr()
	}
	return sum / float64(len(ps))
}

// EnergyDrift tracks the largest relative change of mean kinetic energy
// from the first observed frame. Frames starting at rest are skipped until
// the energy becomes non-zero.
type EnergyDrift struct {
	name     string
	initial  float64
	maxDrift float64
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(f dynamo.Frame) {
	ke := MeanKinetic(f.Particles)
	if e.initial == 0 {
		e.initial = ke
		return
	}
	drift := (ke - e.initial) / e.initial
	if drift < 0 {
		drift = -drift
	}
	e.maxDrift = max(e.maxDrift, drift)
}

func (e *EnergyDrift) Value() float64 { return e.maxDrift }

func (e *EnergyDrift) Reset() {
	e.initial = 0
	e.maxDrift = 0
}
