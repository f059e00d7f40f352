package sim

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/sphindex/internal/physics"
)

// Ensemble runs independent worlds concurrently, one simulator each.
// Worlds must not share particle slices or pointers.
type Ensemble struct {
	newSim func() *Simulator
	limit  int
}

// NewEnsemble runs at most limit worlds at a time; limit <= 0 means no
// limit. newSim is called once per world so metrics are never shared.
func NewEnsemble(newSim func() *Simulator, limit int) *Ensemble {
	return &Ensemble{newSim: newSim, limit: limit}
}

// Run returns one result per world, in order. The first error cancels
// the remaining runs.
func (e *Ensemble) Run(ctx context.Context, worlds []*physics.World, cfg Config) ([]*Result, error) {
	results := make([]*Result, len(worlds))

	g, ctx := errgroup.WithContext(ctx)
	if e.limit > 0 {
		g.SetLimit(e.limit)
	}
	for i, w := range worlds {
		g.Go(func() error {
			res, err := e.newSim().Run(ctx, w, cfg)
			results[i] = res
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
