package spatial

import "github.com/san-kum/sphindex/internal/dynamo"

// Point is the capability an indexable element provides: its position and
// a copy of itself moved a tiny distance, used to break exact-duplicate
// ties.
type Point[P any] interface {
	Pos() dynamo.Vec2
	Nudged() P
}

// Index answers radius queries over a fixed set of points.
//
// QueryRadius calls visit once for every point whose distance to center is
// strictly less than radius. Points at or beyond radius are never visited.
// Visit order is unspecified.
type Index[P any] interface {
	QueryRadius(center dynamo.Vec2, radius float64, visit func(P))
	Len() int
}

// Builder constructs an index from points. maxDim is the larger of the
// domain's width and height. Builders copy points and must accept an
// empty slice.
type Builder[P Point[P]] func(points []P, maxDim float64) Index[P]

// Within reports whether p lies strictly inside the query circle.
func Within(p, center dynamo.Vec2, radius float64) bool {
	return p.DistanceTo(center) < radius
}

// Collect runs a query and returns the visited points.
func Collect[P any](idx Index[P], center dynamo.Vec2, radius float64) []P {
	var out []P
	idx.QueryRadius(center, radius, func(p P) {
		out = append(out, p)
	})
	return out
}
