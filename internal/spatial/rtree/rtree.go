// Package rtree adapts a static packed Hilbert R-tree to the radius query
// contract. Points are stored as degenerate boxes and the tree is built
// once per index.
package rtree

import (
	flatbush "github.com/bmharper/flatbush-go"

	"github.com/san-kum/sphindex/internal/dynamo"
	"github.com/san-kum/sphindex/internal/spatial"
)

// NodeSize is the fan-out of every tree node.
const NodeSize = 16

type Tree[P spatial.Point[P]] struct {
	fb     *flatbush.Flatbush[float32]
	points []P
}

// New packs points into a tree. An empty input yields an empty tree that
// answers every query with nothing.
func New[P spatial.Point[P]](points []P) *Tree[P] {
	t := &Tree[P]{points: make([]P, len(points))}
	copy(t.points, points)
	if len(points) == 0 {
		return t
	}

	fb := flatbush.NewFlatbush[float32]()
	fb.NodeSize = NodeSize
	fb.Reserve(len(points))
	for _, p := range t.points {
		pos := p.Pos()
		x, y := float32(pos.X), float32(pos.Y)
		fb.Add(x, y, x, y)
	}
	fb.Finish()
	t.fb = fb
	return t
}

func Build[P spatial.Point[P]](points []P, _ float64) spatial.Index[P] {
	return New(points)
}

func (t *Tree[P]) Len() int { return len(t.points) }

// QueryRadius searches the circle's bounding box and filters by exact
// distance. float32 rounding is monotone, so a point inside the box in
// float64 stays inside it in float32 and the search never misses.
func (t *Tree[P]) QueryRadius(center dynamo.Vec2, radius float64, visit func(P)) {
	if t.fb == nil {
		return
	}
	b := spatial.Circle{Center: center, Radius: radius}.Bounds()
	for _, i := range t.fb.Search(float32(b.MinX), float32(b.MinY), float32(b.MaxX), float32(b.MaxY)) {
		p := t.points[i]
		if spatial.Within(p.Pos(), center, radius) {
			visit(p)
		}
	}
}
