// Package curve indexes points by their rank along a space-filling curve.
//
// Coordinates are divided by Scale and truncated to integer cells before
// being fed to the curve, so the order is only as precise as one cell.
// Cells below zero clamp to zero and cells past the per-axis budget clamp
// to the last cell.
package curve

import (
	"fmt"

	"github.com/google/hilbert"
)

// Scale is the side length of one curve cell in world units.
const Scale = 20.0

const (
	zorderBits  = 16
	hilbertBits = 8
)

// Curve maps between world coordinates and curve order.
type Curve interface {
	NumberOf(x, y float64) uint64
	PairOf(order uint64) (x, y float64)
}

// Coverer is implemented by curves whose order is not monotone along each
// axis. Cover returns the smallest and largest order of any cell the
// rectangle touches.
type Coverer interface {
	Cover(minX, minY, maxX, maxY float64) (lo, hi uint64)
}

// cell quantises v to a cell index in [0, 2^bits-1]. NaN maps to 0.
func cell(v float64, bits uint) uint64 {
	c := v / Scale
	if !(c > 0) {
		return 0
	}
	last := uint64(1)<<bits - 1
	if c >= float64(last) {
		return last
	}
	return uint64(c)
}

// ZOrder is the Morton curve over 16 bits per axis. x occupies the even
// bits and y the odd bits.
type ZOrder struct{}

func (ZOrder) NumberOf(x, y float64) uint64 {
	return interleave(cell(x, zorderBits), cell(y, zorderBits))
}

func (ZOrder) PairOf(order uint64) (float64, float64) {
	x, y := deinterleave(order)
	return float64(x) * Scale, float64(y) * Scale
}

func (ZOrder) String() string { return "zorder" }

func interleave(x, y uint64) uint64 {
	var z uint64
	for i := uint(0); i < zorderBits; i++ {
		z |= (x&(1<<i))<<i | (y&(1<<i))<<(i+1)
	}
	return z
}

func deinterleave(z uint64) (x, y uint64) {
	for i := uint(0); i < zorderBits; i++ {
		x |= (z >> i) & (1 << i)
		y |= (z >> (i + 1)) & (1 << i)
	}
	return x, y
}

// Hilbert is the Hilbert curve over 8 bits per axis (256x256 cells).
type Hilbert struct {
	h *hilbert.Hilbert
}

func NewHilbert() (*Hilbert, error) {
	h, err := hilbert.NewHilbert(1 << hilbertBits)
	if err != nil {
		return nil, fmt.Errorf("curve: hilbert: %w", err)
	}
	return &Hilbert{h: h}, nil
}

func (c *Hilbert) NumberOf(x, y float64) uint64 {
	return c.order(cell(x, hilbertBits), cell(y, hilbertBits))
}

func (c *Hilbert) PairOf(order uint64) (float64, float64) {
	x, y, err := c.h.Map(int(order))
	if err != nil {
		return 0, 0
	}
	return float64(x) * Scale, float64(y) * Scale
}

// Cover scans every cell of the clamped rectangle.
func (c *Hilbert) Cover(minX, minY, maxX, maxY float64) (lo, hi uint64) {
	x0, x1 := cell(minX, hilbertBits), cell(maxX, hilbertBits)
	y0, y1 := cell(minY, hilbertBits), cell(maxY, hilbertBits)
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	lo, hi = ^uint64(0), 0
	for x := x0; x <= x1; x++ {
		for y := y0; y <= y1; y++ {
			o := c.order(x, y)
			lo = min(lo, o)
			hi = max(hi, o)
		}
	}
	return lo, hi
}

func (c *Hilbert) String() string { return "hilbert" }

// order never fails for clamped cells.
func (c *Hilbert) order(x, y uint64) uint64 {
	t, err := c.h.MapInverse(int(x), int(y))
	if err != nil {
		return 0
	}
	return uint64(t)
}
