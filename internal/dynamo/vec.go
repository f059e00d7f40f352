package dynamo

import (
	"fmt"
	"math"

	"github.com/setanarut/vec"
)

// normalizeEpsilon is the length at or below which Normalize gives up and
// returns the zero vector.
const normalizeEpsilon = 1e-4

// Vec2 is an immutable 2-D vector. No method mutates its receiver.
//
// It has the same layout as vec.Vec2 and converts to and from it freely;
// plain arithmetic is done there.
type Vec2 struct {
	X, Y float64
}

// V is shorthand for Vec2{X: x, Y: y}.
func V(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

// Vec returns v as a vec.Vec2.
func (v Vec2) Vec() vec.Vec2 { return vec.Vec2(v) }

func (v Vec2) Add(o Vec2) Vec2      { return Vec2(v.Vec().Add(o.Vec())) }
func (v Vec2) Sub(o Vec2) Vec2      { return Vec2(v.Vec().Sub(o.Vec())) }
func (v Vec2) Scale(f float64) Vec2 { return Vec2(v.Vec().Scale(f)) }
func (v Vec2) Neg() Vec2            { return Vec2(v.Vec().Neg()) }
func (v Vec2) Dot(o Vec2) float64   { return v.Vec().Dot(o.Vec()) }
func (v Vec2) LenSqr() float64      { return v.Vec().LengthSq() }

// Len is computed here rather than through vec so that exact distances
// such as 3-4-5 stay exact.
func (v Vec2) Len() float64 { return math.Sqrt(v.X*v.X + v.Y*v.Y) }

func (v Vec2) String() string    { return fmt.Sprintf("(%.4f, %.4f)", v.X, v.Y) }
func (v Vec2) Equal(o Vec2) bool { return v.X == o.X && v.Y == o.Y }

// DistanceTo returns the Euclidean distance between v and o.
func (v Vec2) DistanceTo(o Vec2) float64 {
	dx, dy := v.X-o.X, v.Y-o.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Normalize returns the unit vector along v, or the zero vector when
// |v| <= 1e-4.
func (v Vec2) Normalize() Vec2 {
	l := v.Len()
	if l <= normalizeEpsilon {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

// IsFinite reports whether neither component is NaN or Inf.
func (v Vec2) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}
