package spatial_test

import (
	"math/rand"
	"slices"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/sphindex/internal/dynamo"
	"github.com/san-kum/sphindex/internal/spatial"
	"github.com/san-kum/sphindex/internal/spatial/curve"
	"github.com/san-kum/sphindex/internal/spatial/grid"
	"github.com/san-kum/sphindex/internal/spatial/quadtree"
	"github.com/san-kum/sphindex/internal/spatial/rtree"
)

const (
	width  = 640.0
	height = 480.0
	maxDim = width
)

type variant struct {
	build     spatial.Builder[dynamo.Particle]
	maxRadius float64
}

func variants() map[string]variant {
	h, err := curve.NewHilbert()
	Expect(err).NotTo(HaveOccurred())
	return map[string]variant{
		"grid":              {grid.Build[dynamo.Particle], grid.CellSize},
		"quadtree":          {quadtree.Build[dynamo.Particle], 120},
		"quadtree-reinsert": {quadtree.Builder[dynamo.Particle](quadtree.WithDuplicatePolicy(quadtree.ReinsertDuplicates)), 120},
		"zorder":            {curve.Builder[dynamo.Particle](curve.ZOrder{}), 120},
		"hilbert":           {curve.Builder[dynamo.Particle](h), 120},
		"rtree":             {rtree.Build[dynamo.Particle], 120},
	}
}

func scatter(rng *rand.Rand, n int) []dynamo.Particle {
	ps := make([]dynamo.Particle, n)
	for i := range ps {
		ps[i] = dynamo.NewParticle(dynamo.V(rng.Float64()*width, rng.Float64()*height), dynamo.V(rng.NormFloat64(), rng.NormFloat64()))
	}
	return ps
}

func positions(ps []dynamo.Particle) []dynamo.Vec2 {
	out := make([]dynamo.Vec2, len(ps))
	for i, p := range ps {
		out[i] = p.Position
	}
	slices.SortFunc(out, func(a, b dynamo.Vec2) int {
		if a.X != b.X {
			if a.X < b.X {
				return -1
			}
			return 1
		}
		if a.Y < b.Y {
			return -1
		}
		if a.Y > b.Y {
			return 1
		}
		return 0
	})
	return out
}

var _ = Describe("radius queries", func() {
	var (
		rng *rand.Rand
		all map[string]variant
	)

	BeforeEach(func() {
		rng = rand.New(rand.NewSource(GinkgoRandomSeed()))
		all = variants()
	})

	DescribeTable("match the brute-force reference",
		func(name string, n int, radius float64) {
			v := all[name]
			if radius > v.maxRadius {
				Skip("radius beyond the variant's supported range")
			}
			ps := scatter(rng, n)
			idx := v.build(ps, maxDim)
			ref := spatial.NewLinear(ps, maxDim)
			Expect(idx.Len()).To(Equal(n))

			for q := 0; q < 40; q++ {
				center := dynamo.V(rng.Float64()*width, rng.Float64()*height)
				got := spatial.Collect(idx, center, radius)
				want := spatial.Collect[dynamo.Particle](ref, center, radius)
				Expect(positions(got)).To(Equal(positions(want)), "query %v r=%v", center, radius)
			}
		},
		Entry("grid, radius 10", "grid", 500, 10.0),
		Entry("grid, radius 7.5", "grid", 500, 7.5),
		Entry("quadtree, radius 20", "quadtree", 500, 20.0),
		Entry("quadtree, radius 100", "quadtree", 100, 100.0),
		Entry("quadtree-reinsert, radius 20", "quadtree-reinsert", 500, 20.0),
		Entry("zorder, radius 20", "zorder", 500, 20.0),
		Entry("zorder, radius 55", "zorder", 800, 55.0),
		Entry("hilbert, radius 20", "hilbert", 500, 20.0),
		Entry("hilbert, radius 55", "hilbert", 800, 55.0),
		Entry("rtree, radius 20", "rtree", 500, 20.0),
		Entry("rtree, radius 100", "rtree", 2000, 100.0),
	)

	It("never visits a point at exactly the radius", func() {
		ps := []dynamo.Particle{
			dynamo.NewParticle(dynamo.V(100, 100), dynamo.Vec2{}),
			dynamo.NewParticle(dynamo.V(110, 100), dynamo.Vec2{}),
			dynamo.NewParticle(dynamo.V(100, 106), dynamo.Vec2{}),
		}
		for name, v := range all {
			idx := v.build(ps, maxDim)
			got := spatial.Collect(idx, dynamo.V(100, 100), 10)
			Expect(got).To(HaveLen(2), name)
			Expect(positions(got)).NotTo(ContainElement(dynamo.V(110, 100)), name)
		}
	})

	It("answers nothing on an empty index", func() {
		for name, v := range all {
			idx := v.build(nil, maxDim)
			Expect(idx.Len()).To(BeZero(), name)
			Expect(spatial.Collect(idx, dynamo.V(10, 10), 10)).To(BeEmpty(), name)
		}
	})

	It("does not alias the caller's slice", func() {
		ps := scatter(rng, 50)
		for name, v := range all {
			in := dynamo.CloneParticles(ps)
			idx := v.build(in, maxDim)
			for i := range in {
				in[i].Position = dynamo.V(-1000, -1000)
			}
			Expect(spatial.Collect(idx, dynamo.V(-1000, -1000), 1)).To(BeEmpty(), name)
		}
	})

	When("two particles share a position", func() {
		var ps []dynamo.Particle

		BeforeEach(func() {
			ps = []dynamo.Particle{
				dynamo.NewParticle(dynamo.V(200, 200), dynamo.Vec2{}),
				dynamo.NewParticle(dynamo.V(200, 200), dynamo.Vec2{}),
				dynamo.NewParticle(dynamo.V(300, 300), dynamo.Vec2{}),
			}
		})

		It("keeps both in every non-tree index", func() {
			for _, name := range []string{"grid", "zorder", "hilbert", "rtree"} {
				idx := all[name].build(ps, maxDim)
				Expect(idx.Len()).To(Equal(3), name)
				Expect(spatial.Collect(idx, dynamo.V(200, 200), 5)).To(HaveLen(2), name)
			}
		})

		It("drops the duplicate in the default quadtree", func() {
			t := quadtree.New(ps, maxDim)
			Expect(t.Len()).To(Equal(2))
			Expect(t.Dropped()).To(Equal(1))
			Expect(spatial.Collect[dynamo.Particle](t, dynamo.V(200, 200), 5)).To(HaveLen(1))
		})

		It("reinserts the duplicate nearby when asked", func() {
			t := quadtree.New(ps, maxDim, quadtree.WithDuplicatePolicy(quadtree.ReinsertDuplicates))
			Expect(t.Len()).To(Equal(3))
			Expect(t.Dropped()).To(BeZero())
			got := spatial.Collect[dynamo.Particle](t, dynamo.V(200, 200), 5)
			Expect(got).To(HaveLen(2))
			Expect(positions(got)).To(ContainElement(dynamo.V(200, 200).Add(dynamo.V(dynamo.NudgeOffset, dynamo.NudgeOffset))))
		})
	})
})
