package sim

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/san-kum/sphindex/internal/dynamo"
	"github.com/san-kum/sphindex/internal/physics"
)

// logEvery is how often, in frames, progress is logged at debug level.
const logEvery = 100

type Simulator struct {
	metrics   []dynamo.Metric
	observers []dynamo.Observer
	logger    *log.Logger
}

// New returns a simulator. A nil logger discards output.
func New(logger *log.Logger) *Simulator {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Simulator{
		metrics:   make([]dynamo.Metric, 0),
		observers: make([]dynamo.Observer, 0),
		logger:    logger,
	}
}

func (s *Simulator) AddMetric(m dynamo.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }

// Run advances w for cfg.Frames frames. On cancellation or an invalid
// state it returns the partial result together with the error.
func (s *Simulator) Run(ctx context.Context, w *physics.World, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	result := &Result{
		Snapshots: make([]Snapshot, 0, s.capacity(cfg)),
		Metrics:   make(map[string]float64),
	}
	for _, m := range s.metrics {
		m.Reset()
	}

	s.logger.Debug("run started", "particles", w.Len(), "frames", cfg.Frames, "substeps", cfg.SubSteps)
	if cfg.RecordEvery > 0 {
		result.Snapshots = append(result.Snapshots, Snapshot{Frame: 0, Time: w.Time(), Particles: w.Particles()})
	}

	start := time.Now()
	err := s.loop(ctx, w, cfg, func(f dynamo.Frame) bool {
		result.FramesRun++
		result.SubSteps += cfg.SubSteps
		result.Neighbors += f.Neighbors
		result.Dropped += f.Dropped
		if cfg.RecordEvery > 0 && f.Index%cfg.RecordEvery == 0 {
			result.Snapshots = append(result.Snapshots, Snapshot{Frame: f.Index, Time: f.Time, Particles: f.Particles})
		}
		return true
	})
	result.Elapsed = time.Since(start)
	result.FinalState = w.Particles()

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	if err != nil {
		s.logger.Warn("run stopped", "frame", result.FramesRun, "err", err)
		return result, err
	}
	s.logger.Debug("run finished", "frames", result.FramesRun, "elapsed", result.Elapsed, "steps_per_sec", fmt.Sprintf("%.0f", result.StepsPerSecond()))
	return result, nil
}

// RunWithCallback advances w frame by frame until cfg.Frames is reached
// or callback returns false. Frames <= 0 runs until the context ends.
func (s *Simulator) RunWithCallback(ctx context.Context, w *physics.World, cfg Config, callback func(dynamo.Frame) bool) error {
	if cfg.SubSteps <= 0 {
		return fmt.Errorf("%w: substeps must be positive, got %d", dynamo.ErrInvalidConfig, cfg.SubSteps)
	}
	return s.loop(ctx, w, cfg, callback)
}

func (s *Simulator) loop(ctx context.Context, w *physics.World, cfg Config, callback func(dynamo.Frame) bool) error {
	for i := 1; cfg.Frames <= 0 || i <= cfg.Frames; i++ {
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", dynamo.ErrCanceled, ctx.Err())
		default:
		}

		w.Evolve(cfg.SubSteps)
		f := FrameOf(w, i)

		if cfg.ValidateState {
			if bad := firstInvalid(f.Particles); bad >= 0 {
				return &dynamo.SimulationError{Frame: i, Time: f.Time, Particle: bad, Wrapped: dynamo.ErrInvalidState}
			}
		}

		for _, m := range s.metrics {
			m.Observe(f)
		}
		for _, obs := range s.observers {
			obs.OnFrame(f)
		}
		if i%logEvery == 0 {
			s.logger.Debug("progress", "frame", i, "t", fmt.Sprintf("%.3f", f.Time), "neighbors", f.Neighbors)
		}

		if !callback(f) {
			return nil
		}
	}
	return nil
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.Frames <= 0 {
		return fmt.Errorf("%w: frames must be positive, got %d", dynamo.ErrInvalidConfig, cfg.Frames)
	}
	if cfg.SubSteps <= 0 {
		return fmt.Errorf("%w: substeps must be positive, got %d", dynamo.ErrInvalidConfig, cfg.SubSteps)
	}
	if cfg.RecordEvery < 0 {
		return fmt.Errorf("%w: record_every must not be negative, got %d", dynamo.ErrInvalidConfig, cfg.RecordEvery)
	}
	return nil
}

func (s *Simulator) capacity(cfg Config) int {
	if cfg.RecordEvery <= 0 {
		return 0
	}
	return cfg.Frames/cfg.RecordEvery + 1
}

// FrameOf captures the world's current state as frame i.
func FrameOf(w *physics.World, i int) dynamo.Frame {
	stats := w.LastStats()
	return dynamo.Frame{
		Index:     i,
		Time:      w.Time(),
		Width:     w.Width(),
		Height:    w.Height(),
		Particles: w.Particles(),
		Neighbors: stats.Neighbors,
		Dropped:   stats.Dropped,
	}
}

func firstInvalid(ps []dynamo.Particle) int {
	for i, p := range ps {
		if !p.IsValid() {
			return i
		}
	}
	return -1
}
