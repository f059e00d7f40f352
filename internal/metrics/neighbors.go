package metrics

import "github.com/san-kum/sphindex/internal/dynamo"

// NeighborLoad is the mean number of points each radius query visited,
// averaged over frames. It includes the querying particle itself.
type NeighborLoad struct {
	name    string
	sum     float64
	samples int
}

func NewNeighborLoad() *NeighborLoad {
	return &NeighborLoad{name: "neighbor_load"}
}

func (n *NeighborLoad) Name() string {
	return n.name
}

func (n *NeighborLoad) Observe(f dynamo.Frame) {
	if len(f.Particles) == 0 {
		return
	}
	n.sum += float64(f.Neighbors) / float64(len(f.Particles))
	n.samples++
}

func (n *NeighborLoad) Value() float64 {
	if n.samples == 0 {
		return 0
	}
	return n.sum / float64(n.samples)
}

func (n *NeighborLoad) Reset() {
	n.sum = 0
	n.samples = 0
}

// Dropped averages the points discarded by the index per frame.
type Dropped struct {
	name    string
	sum     float64
	samples int
}

func NewDropped() *Dropped {
	return &Dropped{name: "dropped"}
}

func (d *Dropped) Name() string { return d.name }

func (d *Dropped) Observe(f dynamo.Frame) {
	d.sum += float64(f.Dropped)
	d.samples++
}

func (d *Dropped) Value() float64 {
	if d.samples == 0 {
		return 0
	}
	return d.sum / float64(d.samples)
}

func (d *Dropped) Reset() {
	d.sum = 0
	d.samples = 0
}
