package curve

import (
	"math"
	"math/rand"
	"testing"

	"github.com/san-kum/sphindex/internal/dynamo"
	"github.com/san-kum/sphindex/internal/spatial"
)

func mustHilbert(t testing.TB) *Hilbert {
	t.Helper()
	h, err := NewHilbert()
	if err != nil {
		t.Fatalf("NewHilbert: %v", err)
	}
	return h
}

func TestCell(t *testing.T) {
	tests := []struct {
		v    float64
		bits uint
		want uint64
	}{
		{0, 8, 0},
		{19.999, 8, 0},
		{20, 8, 1},
		{-35, 8, 0},
		{math.NaN(), 8, 0},
		{255 * Scale, 8, 255},
		{1e9, 8, 255},
		{1e9, 16, 65535},
	}

	for _, tt := range tests {
		if got := cell(tt.v, tt.bits); got != tt.want {
			t.Errorf("cell(%v, %d) = %d, want %d", tt.v, tt.bits, got, tt.want)
		}
	}
}

func TestZOrderInterleave(t *testing.T) {
	z := ZOrder{}
	tests := []struct {
		x, y float64
		want uint64
	}{
		{0, 0, 0},
		{1 * Scale, 0, 1},
		{0, 1 * Scale, 2},
		{2 * Scale, 1 * Scale, 6},
		{3 * Scale, 3 * Scale, 15},
	}

	for _, tt := range tests {
		if got := z.NumberOf(tt.x, tt.y); got != tt.want {
			t.Errorf("NumberOf(%v, %v) = %d, want %d", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestCurveRoundTrip(t *testing.T) {
	curves := []struct {
		name  string
		c     Curve
		limit float64
	}{
		{"zorder", ZOrder{}, 65535 * Scale},
		{"hilbert", mustHilbert(t), 255 * Scale},
	}

	rng := rand.New(rand.NewSource(5))
	for _, tc := range curves {
		t.Run(tc.name, func(t *testing.T) {
			for i := 0; i < 2000; i++ {
				x := rng.Float64() * tc.limit
				y := rng.Float64() * tc.limit
				rx, ry := tc.c.PairOf(tc.c.NumberOf(x, y))
				if rx > x || x-rx >= Scale || ry > y || y-ry >= Scale {
					t.Fatalf("(%v, %v) round-tripped to (%v, %v)", x, y, rx, ry)
				}
			}
		})
	}
}

func TestHilbertAdjacency(t *testing.T) {
	h := mustHilbert(t)
	px, py := h.PairOf(0)
	for o := uint64(1); o < 4096; o++ {
		x, y := h.PairOf(o)
		step := math.Abs(x-px) + math.Abs(y-py)
		if step != Scale {
			t.Fatalf("orders %d and %d are not neighbouring cells", o-1, o)
		}
		px, py = x, y
	}
}

func TestIndexSorted(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	ps := make([]dynamo.Particle, 500)
	for i := range ps {
		ps[i] = dynamo.NewParticle(dynamo.V(rng.Float64()*1000, rng.Float64()*1000), dynamo.Vec2{})
	}

	for _, c := range []Curve{ZOrder{}, mustHilbert(t)} {
		idx := New(ps, c)
		es := idx.Entries()
		if len(es) != len(ps) {
			t.Fatalf("expected %d entries, got %d", len(ps), len(es))
		}
		for i := 1; i < len(es); i++ {
			if es[i-1].Order > es[i].Order {
				t.Fatalf("%v: entries not sorted at %d", c, i)
			}
		}
	}
}

func TestIndexEmpty(t *testing.T) {
	idx := New[dynamo.Particle](nil, ZOrder{})
	if len(idx.Candidates(dynamo.V(10, 10), 50)) != 0 {
		t.Error("empty index returned candidates")
	}
	idx.QueryRadius(dynamo.V(10, 10), 50, func(dynamo.Particle) {
		t.Error("empty index visited a point")
	})
}

func TestCandidatesSuperset(t *testing.T) {
	rng := rand.New(rand.NewSource(21))
	for _, c := range []Curve{ZOrder{}, mustHilbert(t)} {
		for trial := 0; trial < 5; trial++ {
			n := 200 + rng.Intn(800)
			ps := make([]dynamo.Particle, n)
			for i := range ps {
				ps[i] = dynamo.NewParticle(dynamo.V(rng.Float64()*900-50, rng.Float64()*700-50), dynamo.Vec2{})
			}
			idx := New(ps, c)
			ref := spatial.NewLinear(ps, 900)

			for q := 0; q < 100; q++ {
				center := dynamo.V(rng.Float64()*900, rng.Float64()*700)
				radius := 1 + rng.Float64()*60

				cands := map[dynamo.Vec2]bool{}
				for _, e := range idx.Candidates(center, radius) {
					cands[e.Value.Position] = true
				}
				exact := spatial.Collect[dynamo.Particle](ref, center, radius)
				if len(cands) < len(exact) {
					t.Fatalf("%v: %d candidates for %d exact matches", c, len(cands), len(exact))
				}
				for _, p := range exact {
					if !cands[p.Position] {
						t.Fatalf("%v: exact match %v missing from candidates", c, p.Position)
					}
				}
				if got := len(spatial.Collect[dynamo.Particle](idx, center, radius)); got != len(exact) {
					t.Fatalf("%v: filtered query got %d, want %d", c, got, len(exact))
				}
			}
		}
	}
}

func TestCandidatesIncludeUpperBound(t *testing.T) {
	// All points share one cell, so every entry has the same order.
	ps := []dynamo.Particle{
		dynamo.NewParticle(dynamo.V(41, 41), dynamo.Vec2{}),
		dynamo.NewParticle(dynamo.V(42, 42), dynamo.Vec2{}),
		dynamo.NewParticle(dynamo.V(43, 43), dynamo.Vec2{}),
	}
	idx := New(ps, ZOrder{})
	if got := len(idx.Candidates(dynamo.V(42, 42), 1.5)); got != 3 {
		t.Errorf("expected all 3 same-order entries, got %d", got)
	}
}

func BenchmarkZOrderQuery(b *testing.B) {
	benchmarkQuery(b, ZOrder{})
}

func BenchmarkHilbertQuery(b *testing.B) {
	benchmarkQuery(b, mustHilbert(b))
}

func benchmarkQuery(b *testing.B, c Curve) {
	rng := rand.New(rand.NewSource(1))
	ps := make([]dynamo.Particle, 2000)
	for i := range ps {
		ps[i] = dynamo.NewParticle(dynamo.V(rng.Float64()*800, rng.Float64()*800), dynamo.Vec2{})
	}
	idx := New(ps, c)
	n := 0
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		idx.QueryRadius(ps[i%len(ps)].Position, 20, func(dynamo.Particle) { n++ })
	}
}
