package metrics

import "github.com/san-kum/sphindex/internal/dynamo"

// MaxSpeed is the largest particle speed seen in any frame.
type MaxSpeed struct {
	name string
	max  float64
}

func NewMaxSpeed() *MaxSpeed {
	return &MaxSpeed{name: "max_speed"}
}

func (m *MaxSpeed) Name() string { return m.name }

func (m *MaxSpeed) Observe(f dynamo.Frame) {
	for _, p := range f.Particles {
		if s := p.Velocity.Len(); s > m.max {
			m.max = s
		}
	}
}

func (m *MaxSpeed) Value() float64 { return m.max }
func (m *MaxSpeed) Reset()         { m.max = 0 }
