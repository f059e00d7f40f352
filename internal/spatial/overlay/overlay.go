// Package overlay extracts drawable structure from an index for the live
// view and the SVG export.
package overlay

import (
	"github.com/san-kum/sphindex/internal/dynamo"
	"github.com/san-kum/sphindex/internal/spatial"
	"github.com/san-kum/sphindex/internal/spatial/curve"
	"github.com/san-kum/sphindex/internal/spatial/grid"
	"github.com/san-kum/sphindex/internal/spatial/quadtree"
)

// Rects returns the quadtree's node rectangles or the grid's occupied
// cells. Other indexes have no rectangles to show.
func Rects[P spatial.Point[P]](idx spatial.Index[P]) []spatial.Rect {
	switch x := idx.(type) {
	case *quadtree.Tree[P]:
		return x.Rects()
	case *grid.Grid[P]:
		return x.Cells()
	}
	return nil
}

// Path returns the indexed positions in curve order for curve indexes,
// tracing the curve through the data.
func Path[P spatial.Point[P]](idx spatial.Index[P]) []dynamo.Vec2 {
	x, ok := idx.(*curve.Index[P])
	if !ok {
		return nil
	}
	es := x.Entries()
	path := make([]dynamo.Vec2, len(es))
	for i, e := range es {
		path[i] = e.Value.Pos()
	}
	return path
}

// Clip drops rectangles entirely outside [0, w] x [0, h] and clamps the
// rest, since quadtree nodes extend to negative coordinates.
func Clip(rects []spatial.Rect, w, h float64) []spatial.Rect {
	out := rects[:0:0]
	for _, r := range rects {
		if r.MaxX < 0 || r.MaxY < 0 || r.MinX > w || r.MinY > h {
			continue
		}
		out = append(out, spatial.Rect{
			MinX: max(r.MinX, 0),
			MinY: max(r.MinY, 0),
			MaxX: min(r.MaxX, w),
			MaxY: min(r.MaxY, h),
		})
	}
	return out
}
