package metrics

import "github.com/san-kum/sphindex/internal/dynamo"

// Containment is the fraction of frames in which every particle was finite
// and inside the domain, walls included.
type Containment struct {
	name       string
	violations int
	samples    int
}

func NewContainment() *Containment {
	return &Containment{name: "containment"}
}

func (c *Containment) Name() string {
	return c.name
}

func (c *Containment) Observe(f dynamo.Frame) {
	c.samples++
	for _, p := range f.Particles {
		pos := p.Position
		if !p.IsValid() || pos.X < 0 || pos.X > f.Width || pos.Y < 0 || pos.Y > f.Height {
			c.violations++
			break
		}
	}
}

func (c *Containment) Value() float64 {
	if c.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(c.violations)/float64(c.samples)
}

func (c *Containment) Reset() {
	c.violations = 0
	c.samples = 0
}
