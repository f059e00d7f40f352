package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/sphindex/internal/dynamo"
	"github.com/san-kum/sphindex/internal/physics"
)

const (
	DefaultWidth       = 640.0
	DefaultHeight      = 480.0
	DefaultParticles   = 800
	DefaultFrames      = 300
	DefaultSubSteps    = 4
	DefaultRecordEvery = 5
)

type Config struct {
	Index       string        `yaml:"index"`
	Integrator  string        `yaml:"integrator"`
	Width       float64       `yaml:"width"`
	Height      float64       `yaml:"height"`
	Particles   int           `yaml:"particles"`
	Seed        int64         `yaml:"seed"`
	Frames      int           `yaml:"frames"`
	SubSteps    int           `yaml:"sub_steps"`
	RecordEvery int           `yaml:"record_every"`
	Workers     int           `yaml:"workers"`
	Physics     PhysicsConfig `yaml:"physics"`
	Pointer     PointerConfig `yaml:"pointer"`
}

type PhysicsConfig struct {
	Step         float64 `yaml:"step"`
	GravityX     float64 `yaml:"gravity_x"`
	GravityY     float64 `yaml:"gravity_y"`
	Radius       float64 `yaml:"radius"`
	Pressure     float64 `yaml:"pressure"`
	Friction     float64 `yaml:"friction"`
	PointerForce float64 `yaml:"pointer_force"`
	PointerRange float64 `yaml:"pointer_range"`
}

// PointerConfig places a fixed pointer for headless runs.
type PointerConfig struct {
	Enabled bool    `yaml:"enabled"`
	X       float64 `yaml:"x"`
	Y       float64 `yaml:"y"`
	Pressed bool    `yaml:"pressed"`
}

func DefaultPhysics() PhysicsConfig {
	return PhysicsConfig{
		Step:         physics.Step,
		GravityX:     physics.DefaultGravity.X,
		GravityY:     physics.DefaultGravity.Y,
		Radius:       physics.Radius,
		Pressure:     physics.Pressure,
		Friction:     physics.Friction,
		PointerForce: physics.PointerForce,
		PointerRange: physics.PointerRange,
	}
}

func DefaultConfig() *Config {
	return &Config{
		Index:       "quadtree",
		Integrator:  "rk4",
		Width:       DefaultWidth,
		Height:      DefaultHeight,
		Particles:   DefaultParticles,
		Seed:        1,
		Frames:      DefaultFrames,
		SubSteps:    DefaultSubSteps,
		RecordEvery: DefaultRecordEvery,
		Physics:     DefaultPhysics(),
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate reports every out-of-range field, each wrapping
// dynamo.ErrInvalidConfig.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{dynamo.ErrInvalidConfig}, args...)...))
		}
	}

	check(c.Index != "", "index must be set")
	check(c.Integrator != "", "integrator must be set")
	check(c.Width > 0, "width must be positive, got %g", c.Width)
	check(c.Height > 0, "height must be positive, got %g", c.Height)
	check(c.Particles >= 0, "particles must not be negative, got %d", c.Particles)
	check(c.Frames > 0, "frames must be positive, got %d", c.Frames)
	check(c.SubSteps > 0, "sub_steps must be positive, got %d", c.SubSteps)
	check(c.RecordEvery >= 0, "record_every must not be negative, got %d", c.RecordEvery)
	check(c.Workers >= 0, "workers must not be negative, got %d", c.Workers)
	check(c.Physics.Step > 0, "physics.step must be positive, got %g", c.Physics.Step)
	check(c.Physics.Radius > 0, "physics.radius must be positive, got %g", c.Physics.Radius)
	check(c.Physics.PointerRange >= 0, "physics.pointer_range must not be negative, got %g", c.Physics.PointerRange)

	return errors.Join(errs...)
}

func (c *Config) Gravity() dynamo.Vec2 {
	return dynamo.V(c.Physics.GravityX, c.Physics.GravityY)
}

func (c *Config) Params() physics.Params {
	return physics.Params{
		Radius:       c.Physics.Radius,
		Pressure:     c.Physics.Pressure,
		Friction:     c.Physics.Friction,
		PointerForce: c.Physics.PointerForce,
		PointerRange: c.Physics.PointerRange,
	}
}

// PointerPos returns the configured pointer, or nil when disabled.
func (c *Config) PointerPos() *dynamo.Vec2 {
	if !c.Pointer.Enabled {
		return nil
	}
	p := dynamo.V(c.Pointer.X, c.Pointer.Y)
	return &p
}
