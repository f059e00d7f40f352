package metrics

import "github.com/san-kum/sphindex/internal/dynamo"

// All returns a fresh instance of every metric.
func All() []dynamo.Metric {
	return []dynamo.Metric{
		NewKineticEnergy(),
		NewEnergyDrift(),
		NewMaxSpeed(),
		NewContainment(),
		NewNeighborLoad(),
		NewDropped(),
	}
}
