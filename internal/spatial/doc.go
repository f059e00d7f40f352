// Package spatial defines the radius-query contract shared by every
// spatial index in sphindex.
//
// An index is built once per simulation step from a snapshot of points and
// discarded afterwards:
//
//	idx := grid.New(particles, maxDim)
//	idx.QueryRadius(center, 10, func(p dynamo.Particle) { ... })
//
// Implementations live in sub-packages:
//
//   - grid: fixed 10x10 hashed cells
//   - quadtree: point quadtree with bounding-circle pruning
//   - curve: points sorted along a Z-order or Hilbert curve
//   - rtree: packed Hilbert R-tree
//
// [Linear] is the brute-force reference every implementation must agree
// with exactly.
package spatial
