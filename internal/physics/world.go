package physics

import (
	"math"
	"math/rand"
	"sync/atomic"

	"github.com/san-kum/sphindex/internal/dynamo"
	"github.com/san-kum/sphindex/internal/integrators"
	"github.com/san-kum/sphindex/internal/spatial"
	"github.com/san-kum/sphindex/internal/spatial/quadtree"
)

// minChunk keeps small worlds on one goroutine.
const minChunk = 64

// Stats describes the most recent sub-step.
type Stats struct {
	// Neighbors is the total number of query visits, each particle's
	// visit of itself included.
	Neighbors int
	// Dropped is the number of particles the index refused to hold.
	Dropped int
}

// dropper is implemented by indexes that can discard points.
type dropper interface {
	Dropped() int
}

type World struct {
	width, height float64
	gravity       dynamo.Vec2
	step          float64
	params        Params

	build   spatial.Builder[dynamo.Particle]
	integ   dynamo.Integrator
	workers int

	particles []dynamo.Particle
	index     spatial.Index[dynamo.Particle]

	pointer *dynamo.Vec2
	pressed bool

	stats Stats
	steps int
}

type Option func(*World)

func WithGravity(g dynamo.Vec2) Option {
	return func(w *World) { w.gravity = g }
}

func WithStep(dt float64) Option {
	return func(w *World) { w.step = dt }
}

func WithParams(p Params) Option {
	return func(w *World) { w.params = p }
}

// WithIndex selects the spatial index rebuilt every sub-step.
func WithIndex(b spatial.Builder[dynamo.Particle]) Option {
	return func(w *World) { w.build = b }
}

func WithIntegrator(i dynamo.Integrator) Option {
	return func(w *World) { w.integ = i }
}

// WithWorkers evaluates particle forces on up to n goroutines. The index
// is only read during evaluation, so queries may run concurrently within
// a sub-step.
func WithWorkers(n int) Option {
	return func(w *World) { w.workers = n }
}

// NewWorld returns an empty world spanning [0, width] x [0, height]. By
// default it uses a quadtree, RK4, DefaultGravity and Step.
func NewWorld(width, height float64, opts ...Option) *World {
	w := &World{
		width:   width,
		height:  height,
		gravity: DefaultGravity,
		step:    Step,
		params:  DefaultParams(),
		build:   quadtree.Build[dynamo.Particle],
		integ:   integrators.NewRK4(),
		workers: 1,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.rebuild()
	return w
}

func (w *World) Width() float64       { return w.width }
func (w *World) Height() float64      { return w.height }
func (w *World) Gravity() dynamo.Vec2 { return w.gravity }
func (w *World) Len() int             { return len(w.particles) }

// Steps returns the number of sub-steps taken so far.
func (w *World) Steps() int { return w.steps }

// Time returns the simulated time elapsed.
func (w *World) Time() float64 { return float64(w.steps) * w.step }

func (w *World) MaxDim() float64 { return math.Max(w.width, w.height) }

// Particles returns a copy of the current particle set.
func (w *World) Particles() []dynamo.Particle {
	return dynamo.CloneParticles(w.particles)
}

// Index returns the index built at the start of the last sub-step, or
// after the last particle insertion. It is read-only.
func (w *World) Index() spatial.Index[dynamo.Particle] { return w.index }

func (w *World) LastStats() Stats { return w.stats }

// SetIndex switches the index used from the next sub-step on.
func (w *World) SetIndex(b spatial.Builder[dynamo.Particle]) {
	w.build = b
	w.rebuild()
}

// SetPointer updates the interactive pointer. A nil pos removes it.
func (w *World) SetPointer(pos *dynamo.Vec2, pressed bool) {
	if pos == nil {
		w.pointer = nil
	} else {
		p := *pos
		w.pointer = &p
	}
	w.pressed = pressed
}

// Pointer returns the pointer position and whether it is pressed.
func (w *World) Pointer() (dynamo.Vec2, bool, bool) {
	if w.pointer == nil {
		return dynamo.Vec2{}, false, w.pressed
	}
	return *w.pointer, true, w.pressed
}

func (w *World) AddParticle(p dynamo.Particle) {
	w.particles = append(w.particles, p)
	w.rebuild()
}

// AddRandomParticles scatters n particles at rest uniformly over the
// domain.
func (w *World) AddRandomParticles(n int, rng *rand.Rand) {
	for i := 0; i < n; i++ {
		x := rng.Float64() * w.width
		y := rng.Float64() * w.height
		w.particles = append(w.particles, dynamo.NewParticle(dynamo.V(x, y), dynamo.Vec2{}))
	}
	w.rebuild()
}

// Reset removes every particle.
func (w *World) Reset() {
	w.particles = nil
	w.steps = 0
	w.stats = Stats{}
	w.rebuild()
}

// Evolve runs n sub-steps.
func (w *World) Evolve(n int) {
	for i := 0; i < n; i++ {
		w.evolve()
	}
}

func (w *World) rebuild() {
	w.index = w.build(w.particles, w.MaxDim())
}

func (w *World) evolve() {
	w.rebuild()

	next := make([]dynamo.Particle, len(w.particles))
	var visits atomic.Int64
	dynamo.ParallelFor(len(w.particles), w.workers, minChunk, func(start, end int) {
		n := 0
		for i := start; i < end; i++ {
			p := w.particles[i]
			force, k := w.neighborForce(p)
			acc := force.Add(w.pointerForce(p)).Add(w.gravity)
			next[i] = Reflect(w.integ.Step(p, acc, w.step), w.width, w.height)
			n += k
		}
		visits.Add(int64(n))
	})

	w.stats = Stats{Neighbors: int(visits.Load())}
	if d, ok := w.index.(dropper); ok {
		w.stats.Dropped = d.Dropped()
	}
	w.particles = next
	w.steps++
}

// neighborForce sums the kernel repulsion and relative-velocity friction
// of every neighbour within the interaction radius. It also returns the
// number of points the query visited.
func (w *World) neighborForce(p dynamo.Particle) (dynamo.Vec2, int) {
	var grad dynamo.Vec2
	visited := 0
	r := w.params.Radius
	w.index.QueryRadius(p.Position, r, func(other dynamo.Particle) {
		visited++
		delta := other.Position.Sub(p.Position)
		d := delta.Len()
		if d > r || d < minDistance {
			return
		}
		d = math.Max(d, clampDistance)
		grad = grad.Add(delta.Normalize().Scale(-kernel(d, r) * w.params.Pressure))
		grad = grad.Add(p.Velocity.Sub(other.Velocity).Scale(-w.params.Friction))
	})
	return grad, visited
}

// pointerForce pulls p towards a pressed pointer within range.
func (w *World) pointerForce(p dynamo.Particle) dynamo.Vec2 {
	if w.pointer == nil || !w.pressed {
		return dynamo.Vec2{}
	}
	delta := w.pointer.Sub(p.Position)
	if delta.Len() > w.params.PointerRange {
		return dynamo.Vec2{}
	}
	return delta.Normalize().Scale(w.params.PointerForce)
}

// kernel falls from 1 at d=0 to 0 at the radius.
func kernel(d, radius float64) float64 {
	v := math.Max(0, (radius-d)/radius)
	return v * v
}

// Reflect clamps p into [0, width] x [0, height], negating the velocity
// component of every axis it was clamped on.
func Reflect(p dynamo.Particle, width, height float64) dynamo.Particle {
	if p.Position.X < 0 {
		p.Position.X = 0
		p.Velocity.X = -p.Velocity.X
	}
	if p.Position.X > width {
		p.Position.X = width
		p.Velocity.X = -p.Velocity.X
	}
	if p.Position.Y < 0 {
		p.Position.Y = 0
		p.Velocity.Y = -p.Velocity.Y
	}
	if p.Position.Y > height {
		p.Position.Y = height
		p.Velocity.Y = -p.Velocity.Y
	}
	return p
}
