package spatial

import "github.com/san-kum/sphindex/internal/dynamo"

// Linear is the O(n) reference index: every query tests every point.
type Linear[P Point[P]] struct {
	points []P
}

func NewLinear[P Point[P]](points []P, _ float64) *Linear[P] {
	c := make([]P, len(points))
	copy(c, points)
	return &Linear[P]{points: c}
}

func (l *Linear[P]) Len() int { return len(l.points) }

func (l *Linear[P]) QueryRadius(center dynamo.Vec2, radius float64, visit func(P)) {
	for _, p := range l.points {
		if Within(p.Pos(), center, radius) {
			visit(p)
		}
	}
}

// Points returns the indexed points in insertion order.
func (l *Linear[P]) Points() []P { return l.points }
