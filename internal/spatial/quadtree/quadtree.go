// Package quadtree implements a point quadtree that prunes queries with
// per-node bounding circles.
//
// Every node covers a square and carries the circle circumscribing it
// (radius half-width times sqrt 2). A query descends only into nodes whose
// circle intersects the query circle and applies the exact distance test
// at leaves. Points must lie inside the root square for queries to be
// exact.
package quadtree

import (
	"math"

	"github.com/san-kum/sphindex/internal/dynamo"
	"github.com/san-kum/sphindex/internal/spatial"
)

// Epsilon is the distance under which two points are treated as the same
// position during insertion.
const Epsilon = 0.001

// maxNudges bounds how many times ReinsertDuplicates moves one point.
const maxNudges = 16

// maxDepth bounds subdivision. Points still colliding at this depth
// (non-finite, or far outside the root square) are dropped like
// duplicates.
const maxDepth = 64

// Kind is the node variant.
type Kind uint8

const (
	Empty Kind = iota
	Leaf
	Internal
)

func (k Kind) String() string {
	switch k {
	case Leaf:
		return "leaf"
	case Internal:
		return "internal"
	default:
		return "empty"
	}
}

// Quadrant indexes Node children.
type Quadrant int

const (
	NW Quadrant = iota
	NE
	SW
	SE
)

// DuplicatePolicy selects what happens when a point lands within Epsilon
// of an existing leaf.
type DuplicatePolicy uint8

const (
	// DropDuplicates discards the incoming point. The drop is counted in
	// Tree.Dropped.
	DropDuplicates DuplicatePolicy = iota
	// ReinsertDuplicates nudges the incoming point and inserts the nudged
	// copy, giving up after a bounded number of nudges.
	ReinsertDuplicates
)

// Node is one square region of the tree.
type Node[P spatial.Point[P]] struct {
	kind       Kind
	value      P
	children   *[4]Node[P]
	center     dynamo.Vec2
	halfWidth  float64
	halfHeight float64
	circle     spatial.Circle
}

func newNode[P spatial.Point[P]](center dynamo.Vec2, halfWidth, halfHeight float64) Node[P] {
	return Node[P]{
		center:     center,
		halfWidth:  halfWidth,
		halfHeight: halfHeight,
		circle:     spatial.Circle{Center: center, Radius: halfWidth * math.Sqrt2},
	}
}

func (n *Node[P]) Kind() Kind                { return n.kind }
func (n *Node[P]) Center() dynamo.Vec2       { return n.center }
func (n *Node[P]) Circle() spatial.Circle    { return n.circle }
func (n *Node[P]) Child(q Quadrant) *Node[P] { return &n.children[q] } // Internal nodes only

// Value returns the leaf's point. ok is false for non-leaf nodes.
func (n *Node[P]) Value() (p P, ok bool) {
	if n.kind != Leaf {
		return p, false
	}
	return n.value, true
}

// Rect returns the square region the node covers.
func (n *Node[P]) Rect() spatial.Rect {
	return spatial.Rect{
		MinX: n.center.X - n.halfWidth,
		MinY: n.center.Y - n.halfHeight,
		MaxX: n.center.X + n.halfWidth,
		MaxY: n.center.Y + n.halfHeight,
	}
}

func (n *Node[P]) quadrant(p dynamo.Vec2) Quadrant {
	if p.X < n.center.X {
		if p.Y < n.center.Y {
			return NW
		}
		return SW
	}
	if p.Y < n.center.Y {
		return NE
	}
	return SE
}

// subdivide turns n into an Internal node with four empty children.
func (n *Node[P]) subdivide() {
	hw, hh := n.halfWidth/2, n.halfHeight/2
	c := n.center
	n.kind = Internal
	var zero P
	n.value = zero
	n.children = &[4]Node[P]{
		newNode[P](dynamo.V(c.X-hw, c.Y-hh), hw, hh),
		newNode[P](dynamo.V(c.X+hw, c.Y-hh), hw, hh),
		newNode[P](dynamo.V(c.X-hw, c.Y+hh), hw, hh),
		newNode[P](dynamo.V(c.X+hw, c.Y+hh), hw, hh),
	}
}

// Tree is a point quadtree built once from a snapshot.
type Tree[P spatial.Point[P]] struct {
	root    Node[P]
	policy  DuplicatePolicy
	n       int
	dropped int
}

// Option configures a Tree.
type Option func(*options)

type options struct {
	policy DuplicatePolicy
}

// WithDuplicatePolicy overrides the default DropDuplicates policy.
func WithDuplicatePolicy(p DuplicatePolicy) Option {
	return func(o *options) { o.policy = p }
}

// New builds a tree whose root is centred on the origin with half extents
// maxDim, inserting points in order.
func New[P spatial.Point[P]](points []P, maxDim float64, opts ...Option) *Tree[P] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	t := &Tree[P]{
		root:   newNode[P](dynamo.Vec2{}, maxDim, maxDim),
		policy: o.policy,
	}
	for _, p := range points {
		t.Insert(p)
	}
	return t
}

// Builder returns a spatial.Builder using the given options.
func Builder[P spatial.Point[P]](opts ...Option) spatial.Builder[P] {
	return func(points []P, maxDim float64) spatial.Index[P] {
		return New(points, maxDim, opts...)
	}
}

// Build is Builder with default options.
func Build[P spatial.Point[P]](points []P, maxDim float64) spatial.Index[P] {
	return New(points, maxDim)
}

// Len returns the number of points held, excluding dropped duplicates.
func (t *Tree[P]) Len() int { return t.n }

// Dropped returns how many inserted points were discarded as duplicates.
func (t *Tree[P]) Dropped() int { return t.dropped }

// Root returns the root node.
func (t *Tree[P]) Root() *Node[P] { return &t.root }

// Insert adds p. It reports false when p was discarded as a near-duplicate.
// Under ReinsertDuplicates a colliding point is nudged and inserted again
// from the root, since the nudge can move it out of the colliding leaf.
// A nudge that leaves the root square is dropped instead: outside the root
// the two points fall into the same corner quadrant at every depth.
func (t *Tree[P]) Insert(p P) bool {
	bounds := t.root.Rect()
	for nudges := 0; ; nudges++ {
		if t.insert(&t.root, p) {
			t.n++
			return true
		}
		if t.policy == DropDuplicates || nudges >= maxNudges {
			t.dropped++
			return false
		}
		p = p.Nudged()
		if !bounds.Contains(p.Pos()) {
			t.dropped++
			return false
		}
	}
}

func (t *Tree[P]) insert(n *Node[P], p P) bool {
	for depth := 0; ; depth++ {
		switch n.kind {
		case Empty:
			n.kind = Leaf
			n.value = p
			return true
		case Leaf:
			existing := n.value
			if depth >= maxDepth || p.Pos().Sub(existing.Pos()).Len() < Epsilon {
				return false
			}
			n.subdivide()
			t.insert(&n.children[n.quadrant(existing.Pos())], existing)
			n = &n.children[n.quadrant(p.Pos())]
		case Internal:
			n = &n.children[n.quadrant(p.Pos())]
		}
	}
}

// QueryRadius visits every point strictly within radius of center.
func (t *Tree[P]) QueryRadius(center dynamo.Vec2, radius float64, visit func(P)) {
	query(&t.root, spatial.Circle{Center: center, Radius: radius}, visit)
}

func query[P spatial.Point[P]](n *Node[P], c spatial.Circle, visit func(P)) {
	if !n.circle.Intersects(c) {
		return
	}
	switch n.kind {
	case Leaf:
		if spatial.Within(n.value.Pos(), c.Center, c.Radius) {
			visit(n.value)
		}
	case Internal:
		for i := range n.children {
			query(&n.children[i], c, visit)
		}
	}
}

// QueryPath returns every node a query with the same arguments would
// enter, in visit order.
func (t *Tree[P]) QueryPath(center dynamo.Vec2, radius float64) []*Node[P] {
	var path []*Node[P]
	queryPath(&t.root, spatial.Circle{Center: center, Radius: radius}, &path)
	return path
}

func queryPath[P spatial.Point[P]](n *Node[P], c spatial.Circle, path *[]*Node[P]) {
	if !n.circle.Intersects(c) {
		return
	}
	*path = append(*path, n)
	if n.kind == Internal {
		for i := range n.children {
			queryPath(&n.children[i], c, path)
		}
	}
}

// Walk calls fn for every node in pre-order.
func (t *Tree[P]) Walk(fn func(*Node[P])) {
	walk(&t.root, fn)
}

func walk[P spatial.Point[P]](n *Node[P], fn func(*Node[P])) {
	fn(n)
	if n.kind == Internal {
		for i := range n.children {
			walk(&n.children[i], fn)
		}
	}
}

// Rects returns the bounding rectangle of every node, pre-order.
func (t *Tree[P]) Rects() []spatial.Rect {
	var rects []spatial.Rect
	t.Walk(func(n *Node[P]) {
		rects = append(rects, n.Rect())
	})
	return rects
}

// Depth returns the number of levels below the root.
func (t *Tree[P]) Depth() int {
	return depth(&t.root)
}

func depth[P spatial.Point[P]](n *Node[P]) int {
	if n.kind != Internal {
		return 0
	}
	d := 0
	for i := range n.children {
		d = max(d, depth(&n.children[i]))
	}
	return d + 1
}
