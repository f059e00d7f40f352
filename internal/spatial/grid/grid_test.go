package grid

import (
	"math/rand"
	"testing"

	"github.com/san-kum/sphindex/internal/dynamo"
	"github.com/san-kum/sphindex/internal/spatial"
)

func randomParticles(rng *rand.Rand, n int, size float64) []dynamo.Particle {
	ps := make([]dynamo.Particle, n)
	for i := range ps {
		ps[i] = dynamo.NewParticle(dynamo.V(rng.Float64()*size, rng.Float64()*size), dynamo.Vec2{})
	}
	return ps
}

func TestKeyOf(t *testing.T) {
	tests := []struct {
		p    dynamo.Vec2
		want Key
	}{
		{dynamo.V(0, 0), Key{0, 0}},
		{dynamo.V(9.999, 9.999), Key{0, 0}},
		{dynamo.V(10, 25), Key{1, 2}},
		{dynamo.V(-0.5, -10), Key{-1, -1}},
		{dynamo.V(-10.5, 3), Key{-2, 0}},
	}

	for _, tt := range tests {
		if got := KeyOf(tt.p); got != tt.want {
			t.Errorf("KeyOf(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestGridEmpty(t *testing.T) {
	g := New[dynamo.Particle](nil, 100)
	g.QueryRadius(dynamo.V(5, 5), 10, func(dynamo.Particle) {
		t.Error("empty grid visited a point")
	})
	if g.Len() != 0 {
		t.Errorf("expected 0 points, got %d", g.Len())
	}
}

func TestGridBucketOrder(t *testing.T) {
	ps := []dynamo.Particle{
		dynamo.NewParticle(dynamo.V(1, 1), dynamo.Vec2{}),
		dynamo.NewParticle(dynamo.V(2, 2), dynamo.Vec2{}),
		dynamo.NewParticle(dynamo.V(3, 3), dynamo.Vec2{}),
	}
	g := New(ps, 100)
	b := g.Bucket(Key{0, 0})
	if len(b) != 3 {
		t.Fatalf("expected 3 points in cell, got %d", len(b))
	}
	for i := range ps {
		if b[i].Position != ps[i].Position {
			t.Errorf("bucket[%d] = %v, want %v", i, b[i].Position, ps[i].Position)
		}
	}
	if len(g.Cells()) != 1 {
		t.Errorf("expected 1 occupied cell, got %d", len(g.Cells()))
	}
}

func TestGridStrictBoundary(t *testing.T) {
	ps := []dynamo.Particle{
		dynamo.NewParticle(dynamo.V(15, 10), dynamo.Vec2{}),
		dynamo.NewParticle(dynamo.V(14.999, 10), dynamo.Vec2{}),
	}
	g := New(ps, 100)
	got := spatial.Collect[dynamo.Particle](g, dynamo.V(10, 10), 5)
	if len(got) != 1 || got[0].Position.X != 14.999 {
		t.Errorf("expected only the point strictly inside, got %v", got)
	}
}

func TestGridExactness(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	ps := randomParticles(rng, 800, 200)
	g := New(ps, 200)
	ref := spatial.NewLinear(ps, 200)

	for _, radius := range []float64{1, 5, 9.5, CellSize} {
		for q := 0; q < 200; q++ {
			c := dynamo.V(rng.Float64()*200, rng.Float64()*200)
			want := len(spatial.Collect[dynamo.Particle](ref, c, radius))
			got := len(spatial.Collect[dynamo.Particle](g, c, radius))
			if got != want {
				t.Fatalf("radius %.1f at %v: got %d, want %d", radius, c, got, want)
			}
		}
	}
}

func TestGridMissesBeyondCellSize(t *testing.T) {
	// Two cells away from the query cell is outside the 3x3 block.
	ps := []dynamo.Particle{dynamo.NewParticle(dynamo.V(21, 5), dynamo.Vec2{})}
	g := New(ps, 100)
	if n := len(spatial.Collect[dynamo.Particle](g, dynamo.V(5, 5), 20)); n != 0 {
		t.Errorf("expected the documented miss for radius > CellSize, got %d", n)
	}
}

func BenchmarkGridBuild(b *testing.B) {
	ps := randomParticles(rand.New(rand.NewSource(1)), 2000, 800)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		New(ps, 800)
	}
}

func BenchmarkGridQuery(b *testing.B) {
	ps := randomParticles(rand.New(rand.NewSource(1)), 2000, 800)
	g := New(ps, 800)
	n := 0
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		g.QueryRadius(ps[i%len(ps)].Position, CellSize, func(dynamo.Particle) { n++ })
	}
}
