package dynamo

// NudgeOffset is added to both coordinates when a particle has to be moved
// off an exact duplicate position.
const NudgeOffset = 0.001

// Particle is one fluid element. Particles are replaced wholesale every
// simulation step rather than mutated in place.
type Particle struct {
	Position Vec2
	Velocity Vec2
}

func NewParticle(position, velocity Vec2) Particle {
	return Particle{Position: position, Velocity: velocity}
}

// Pos returns the particle position.
func (p Particle) Pos() Vec2 { return p.Position }

// Nudged returns a copy shifted by NudgeOffset on both axes.
func (p Particle) Nudged() Particle {
	p.Position = p.Position.Add(Vec2{NudgeOffset, NudgeOffset})
	return p
}

// IsValid reports whether position and velocity are finite.
func (p Particle) IsValid() bool {
	return p.Position.IsFinite() && p.Velocity.IsFinite()
}

// CloneParticles returns an independent copy of ps.
func CloneParticles(ps []Particle) []Particle {
	c := make([]Particle, len(ps))
	copy(c, ps)
	return c
}
