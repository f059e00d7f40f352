package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/sphindex/internal/dynamo"
	"github.com/san-kum/sphindex/internal/integrators"
	"github.com/san-kum/sphindex/internal/metrics"
	"github.com/san-kum/sphindex/internal/spatial"
	"github.com/san-kum/sphindex/internal/spatial/curve"
	"github.com/san-kum/sphindex/internal/spatial/grid"
	"github.com/san-kum/sphindex/internal/spatial/quadtree"
	"github.com/san-kum/sphindex/internal/spatial/rtree"
)

type Builder = spatial.Builder[dynamo.Particle]

type Registry struct {
	indexes     map[string]func() (Builder, error)
	integrators map[string]func() dynamo.Integrator
	descs       map[string]string
}

func NewRegistry() *Registry {
	r := &Registry{
		indexes:     make(map[string]func() (Builder, error)),
		integrators: make(map[string]func() dynamo.Integrator),
		descs:       make(map[string]string),
	}

	r.addIndex("grid", "uniform grid, cell size 10 (exact for radius <= 10)", func() (Builder, error) {
		return grid.Build[dynamo.Particle], nil
	})
	r.addIndex("quadtree", "point quadtree, near-duplicates dropped", func() (Builder, error) {
		return quadtree.Build[dynamo.Particle], nil
	})
	r.addIndex("quadtree-reinsert", "point quadtree, near-duplicates nudged and reinserted", func() (Builder, error) {
		return quadtree.Builder[dynamo.Particle](quadtree.WithDuplicatePolicy(quadtree.ReinsertDuplicates)), nil
	})
	r.addIndex("zorder", "sorted Morton order, 16 bits per axis", func() (Builder, error) {
		return curve.Builder[dynamo.Particle](curve.ZOrder{}), nil
	})
	r.addIndex("hilbert", "sorted Hilbert order, 8 bits per axis", func() (Builder, error) {
		h, err := curve.NewHilbert()
		if err != nil {
			return nil, err
		}
		return curve.Builder[dynamo.Particle](h), nil
	})
	r.addIndex("rtree", "packed Hilbert R-tree", func() (Builder, error) {
		return rtree.Build[dynamo.Particle], nil
	})
	r.addIndex("linear", "brute force", func() (Builder, error) {
		return func(ps []dynamo.Particle, maxDim float64) spatial.Index[dynamo.Particle] {
			return spatial.NewLinear(ps, maxDim)
		}, nil
	})

	r.integrators["euler"] = func() dynamo.Integrator { return integrators.NewEuler() }
	r.integrators["rk4"] = func() dynamo.Integrator { return integrators.NewRK4() }
	r.integrators["verlet"] = func() dynamo.Integrator { return integrators.NewVerlet() }

	return r
}

func (r *Registry) addIndex(name, desc string, fn func() (Builder, error)) {
	r.indexes[name] = fn
	r.descs[name] = desc
}

func (r *Registry) GetIndex(name string) (Builder, error) {
	fn, ok := r.indexes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", dynamo.ErrUnknownIndex, name)
	}
	b, err := fn()
	if err != nil {
		return nil, fmt.Errorf("index %s: %w", name, err)
	}
	return b, nil
}

func (r *Registry) GetIntegrator(name string) (dynamo.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", dynamo.ErrUnknownIntegrator, name)
	}
	return fn(), nil
}

// Describe returns a one-line summary of an index.
func (r *Registry) Describe(index string) string { return r.descs[index] }

func (r *Registry) ListIndexes() []string     { return sortedKeys(r.indexes) }
func (r *Registry) ListIntegrators() []string { return sortedKeys(r.integrators) }

func (r *Registry) DefaultMetrics() []dynamo.Metric {
	return metrics.All()
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
