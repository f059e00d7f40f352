package spatial

import "github.com/san-kum/sphindex/internal/dynamo"

// Rect is an axis-aligned rectangle, used for rendering index structure.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

func (r Rect) Width() float64  { return r.MaxX - r.MinX }
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p dynamo.Vec2) bool {
	return p.X >= r.MinX && p.X <= r.MaxX && p.Y >= r.MinY && p.Y <= r.MaxY
}

// Circle is a query or bounding circle.
type Circle struct {
	Center dynamo.Vec2
	Radius float64
}

// Intersects compares the squared sum of radii against the squared
// distance between centres. Tangent circles do not intersect.
func (c Circle) Intersects(o Circle) bool {
	r := c.Radius + o.Radius
	dx := c.Center.X - o.Center.X
	dy := c.Center.Y - o.Center.Y
	return r*r > dx*dx+dy*dy
}

// Bounds returns the circle's axis-aligned bounding box.
func (c Circle) Bounds() Rect {
	return Rect{
		MinX: c.Center.X - c.Radius,
		MinY: c.Center.Y - c.Radius,
		MaxX: c.Center.X + c.Radius,
		MaxY: c.Center.Y + c.Radius,
	}
}
