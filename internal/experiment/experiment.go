package experiment

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/charmbracelet/log"

	"github.com/san-kum/sphindex/internal/config"
	"github.com/san-kum/sphindex/internal/physics"
	"github.com/san-kum/sphindex/internal/sim"
)

// Experiment is a seeded world plus the simulator that runs it.
type Experiment struct {
	cfg       *config.Config
	world     *physics.World
	simulator *sim.Simulator
}

// New validates cfg and builds its world. Particles are scattered with a
// generator seeded from cfg.Seed, so equal configs give equal runs.
func New(cfg *config.Config, reg *Registry, logger *log.Logger) (*Experiment, error) {
	w, err := NewWorld(cfg, reg)
	if err != nil {
		return nil, err
	}

	s := sim.New(logger)
	for _, m := range reg.DefaultMetrics() {
		s.AddMetric(m)
	}

	if logger != nil {
		logger.Debug("experiment ready", "index", cfg.Index, "integrator", cfg.Integrator, "particles", w.Len(), "seed", cfg.Seed)
	}
	return &Experiment{cfg: cfg, world: w, simulator: s}, nil
}

// NewWorld builds and populates the world described by cfg.
func NewWorld(cfg *config.Config, reg *Registry) (*physics.World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	build, err := reg.GetIndex(cfg.Index)
	if err != nil {
		return nil, err
	}
	integ, err := reg.GetIntegrator(cfg.Integrator)
	if err != nil {
		return nil, err
	}

	w := physics.NewWorld(cfg.Width, cfg.Height,
		physics.WithIndex(build),
		physics.WithIntegrator(integ),
		physics.WithGravity(cfg.Gravity()),
		physics.WithStep(cfg.Physics.Step),
		physics.WithParams(cfg.Params()),
		physics.WithWorkers(cfg.Workers),
	)
	w.AddRandomParticles(cfg.Particles, rand.New(rand.NewSource(cfg.Seed)))
	w.SetPointer(cfg.PointerPos(), cfg.Pointer.Pressed)
	return w, nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.Run(ctx, e.world, e.SimConfig())
}

func (e *Experiment) SimConfig() sim.Config {
	return sim.Config{
		Frames:        e.cfg.Frames,
		SubSteps:      e.cfg.SubSteps,
		RecordEvery:   e.cfg.RecordEvery,
		ValidateState: true,
	}
}

func (e *Experiment) Config() *config.Config { return e.cfg }
func (e *Experiment) World() *physics.World  { return e.world }

// GetSimulator returns the underlying simulator for adding observers
func (e *Experiment) GetSimulator() *sim.Simulator {
	return e.simulator
}
