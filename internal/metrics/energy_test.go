package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/sphindex/internal/dynamo"
)

func frame(vs ...dynamo.Vec2) dynamo.Frame {
	ps := make([]dynamo.Particle, len(vs))
	for i, v := range vs {
		ps[i] = dynamo.NewParticle(dynamo.V(50, 50), v)
	}
	return dynamo.Frame{Width: 100, Height: 100, Particles: ps}
}

func TestKineticEnergy(t *testing.T) {
	m := NewKineticEnergy()

	m.Observe(frame(dynamo.V(3, 4), dynamo.V(0, 0)))
	if got, want := m.Value(), 6.25; math.Abs(got-want) > 1e-12 {
		t.Errorf("expected %v, got %v", want, got)
	}

	m.Observe(frame(dynamo.V(1, 0)))
	if got, want := m.Value(), (6.25+0.5)/2; math.Abs(got-want) > 1e-12 {
		t.Errorf("expected %v, got %v", want, got)
	}
	if m.Last() != 0.5 {
		t.Errorf("expected last 0.5, got %v", m.Last())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero energy after reset")
	}
}

func TestKineticEnergyEmptyFrame(t *testing.T) {
	m := NewKineticEnergy()
	m.Observe(frame())
	if m.Value() != 0 {
		t.Errorf("expected 0 for empty frame, got %v", m.Value())
	}
}

func TestEnergyDrift(t *testing.T) {
	m := NewEnergyDrift()
	m.Observe(frame(dynamo.V(0, 0)))
	m.Observe(frame(dynamo.V(2, 0)))
	m.Observe(frame(dynamo.V(1, 0)))
	m.Observe(frame(dynamo.V(3, 0)))

	// Reference is 2 (first non-zero frame), worst is 4.5 vs 2.
	if got, want := m.Value(), 1.25; math.Abs(got-want) > 1e-12 {
		t.Errorf("expected drift %v, got %v", want, got)
	}
}

func TestMaxSpeed(t *testing.T) {
	m := NewMaxSpeed()
	m.Observe(frame(dynamo.V(3, 4), dynamo.V(1, 1)))
	m.Observe(frame(dynamo.V(0, 2)))
	if m.Value() != 5 {
		t.Errorf("expected 5, got %v", m.Value())
	}
	m.Reset()
	if m.Value() != 0 {
		t.Errorf("expected 0 after reset, got %v", m.Value())
	}
}

func TestContainment(t *testing.T) {
	tests := []struct {
		name string
		pos  dynamo.Vec2
		want float64
	}{
		{"inside", dynamo.V(50, 50), 1},
		{"on wall", dynamo.V(100, 0), 1},
		{"outside", dynamo.V(100.5, 50), 0.5},
		{"nan", dynamo.V(math.NaN(), 50), 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewContainment()
			m.Observe(frame(dynamo.V(0, 0)))
			f := frame(dynamo.V(0, 0))
			f.Particles[0].Position = tt.pos
			m.Observe(f)
			if m.Value() != tt.want {
				t.Errorf("expected %v, got %v", tt.want, m.Value())
			}
		})
	}
}

func TestNeighborLoad(t *testing.T) {
	m := NewNeighborLoad()
	f := frame(dynamo.Vec2{}, dynamo.Vec2{})
	f.Neighbors = 6
	m.Observe(f)
	m.Observe(frame())
	if m.Value() != 3 {
		t.Errorf("expected 3, got %v", m.Value())
	}
}

func TestAllNamesUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, m := range All() {
		if seen[m.Name()] {
			t.Errorf("duplicate metric %q", m.Name())
		}
		seen[m.Name()] = true
	}
}
