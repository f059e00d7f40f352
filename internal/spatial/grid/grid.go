// Package grid implements a uniform hash grid over fixed 10x10 cells.
//
// Queries only inspect the 3x3 block of cells around the query point, so
// results are exact only for radius <= CellSize. The precondition is not
// checked at runtime.
package grid

import (
	"math"

	"github.com/san-kum/sphindex/internal/dynamo"
	"github.com/san-kum/sphindex/internal/spatial"
)

// CellSize is the side length of every cell.
const CellSize = 10.0

// Key identifies a cell by floored coordinate division.
type Key struct {
	I, J int32
}

// KeyOf returns the cell containing p.
func KeyOf(p dynamo.Vec2) Key {
	return Key{
		I: int32(math.Floor(p.X / CellSize)),
		J: int32(math.Floor(p.Y / CellSize)),
	}
}

// Grid buckets points by cell. Each bucket keeps insertion order.
type Grid[P spatial.Point[P]] struct {
	maxDim float64
	cells  map[Key][]P
	n      int
}

// New buckets every point into its cell.
func New[P spatial.Point[P]](points []P, maxDim float64) *Grid[P] {
	g := &Grid[P]{
		maxDim: maxDim,
		cells:  make(map[Key][]P, len(points)/4+1),
		n:      len(points),
	}
	for _, p := range points {
		k := KeyOf(p.Pos())
		g.cells[k] = append(g.cells[k], p)
	}
	return g
}

// Build adapts New to spatial.Builder.
func Build[P spatial.Point[P]](points []P, maxDim float64) spatial.Index[P] {
	return New(points, maxDim)
}

func (g *Grid[P]) Len() int { return g.n }

// QueryRadius tests every point in the 3x3 cell block around center by
// exact distance.
func (g *Grid[P]) QueryRadius(center dynamo.Vec2, radius float64, visit func(P)) {
	k := KeyOf(center)
	for i := 0; i < 9; i++ {
		nk := Key{I: k.I + int32(i/3) - 1, J: k.J + int32(i%3) - 1}
		for _, p := range g.cells[nk] {
			if spatial.Within(p.Pos(), center, radius) {
				visit(p)
			}
		}
	}
}

// Bucket returns the points stored under k.
func (g *Grid[P]) Bucket(k Key) []P { return g.cells[k] }

// Cells returns one rectangle per occupied cell. Order is unspecified.
func (g *Grid[P]) Cells() []spatial.Rect {
	rects := make([]spatial.Rect, 0, len(g.cells))
	for k := range g.cells {
		x := float64(k.I) * CellSize
		y := float64(k.J) * CellSize
		rects = append(rects, spatial.Rect{MinX: x, MinY: y, MaxX: x + CellSize, MaxY: y + CellSize})
	}
	return rects
}
