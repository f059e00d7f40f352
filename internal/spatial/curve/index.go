package curve

import (
	"cmp"
	"slices"
	"sort"

	"github.com/san-kum/sphindex/internal/dynamo"
	"github.com/san-kum/sphindex/internal/spatial"
)

// Entry pairs a point with its curve order.
type Entry[P any] struct {
	Order uint64
	Value P
}

// Index holds points sorted ascending by curve order. It is never
// modified after New returns.
type Index[P spatial.Point[P]] struct {
	curve   Curve
	entries []Entry[P]
}

// New maps every point through c and sorts by order. Ties keep no
// particular order.
func New[P spatial.Point[P]](points []P, c Curve) *Index[P] {
	entries := make([]Entry[P], len(points))
	for i, p := range points {
		pos := p.Pos()
		entries[i] = Entry[P]{Order: c.NumberOf(pos.X, pos.Y), Value: p}
	}
	slices.SortFunc(entries, func(a, b Entry[P]) int {
		return cmp.Compare(a.Order, b.Order)
	})
	return &Index[P]{curve: c, entries: entries}
}

// Builder returns a spatial.Builder for curve c. maxDim is unused: the
// curve's own cell budget bounds the coordinate range.
func Builder[P spatial.Point[P]](c Curve) spatial.Builder[P] {
	return func(points []P, _ float64) spatial.Index[P] {
		return New(points, c)
	}
}

func (idx *Index[P]) Len() int            { return len(idx.entries) }
func (idx *Index[P]) Curve() Curve        { return idx.curve }
func (idx *Index[P]) Entries() []Entry[P] { return idx.entries }

// Range returns the order interval conservatively covering r: the min and
// max over its four corners, widened by Cover for non-monotone curves.
func (idx *Index[P]) Range(r spatial.Rect) (lo, hi uint64) {
	corners := [4]uint64{
		idx.curve.NumberOf(r.MinX, r.MinY),
		idx.curve.NumberOf(r.MaxX, r.MinY),
		idx.curve.NumberOf(r.MinX, r.MaxY),
		idx.curve.NumberOf(r.MaxX, r.MaxY),
	}
	lo, hi = slices.Min(corners[:]), slices.Max(corners[:])
	if cv, ok := idx.curve.(Coverer); ok {
		clo, chi := cv.Cover(r.MinX, r.MinY, r.MaxX, r.MaxY)
		lo, hi = min(lo, clo), max(hi, chi)
	}
	return lo, hi
}

// Candidates returns the contiguous run of entries whose order falls in
// the query's range, before the exact distance filter.
func (idx *Index[P]) Candidates(center dynamo.Vec2, radius float64) []Entry[P] {
	lo, hi := idx.Range(spatial.Circle{Center: center, Radius: radius}.Bounds())
	start := sort.Search(len(idx.entries), func(i int) bool { return idx.entries[i].Order >= lo })
	end := sort.Search(len(idx.entries), func(i int) bool { return idx.entries[i].Order > hi })
	if start >= end {
		return nil
	}
	return idx.entries[start:end]
}

func (idx *Index[P]) QueryRadius(center dynamo.Vec2, radius float64, visit func(P)) {
	for _, e := range idx.Candidates(center, radius) {
		if spatial.Within(e.Value.Pos(), center, radius) {
			visit(e.Value)
		}
	}
}
