package pointset

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/stat"

	"go.viam.com/rdk/pointcloud"
)

// AverageSpacing estimates the mean distance from a point to its k nearest
// neighbors, averaged over the whole set. It gives a scale for the sampling
// density, which downstream consumers use for size-dependent thresholds.
func AverageSpacing(points []r3.Vector, k int) (float64, error) {
	if len(points) < 2 {
		return 0, ErrTooFewPoints
	}
	if k < 1 {
		return 0, ErrInvalidNeighborCount
	}

	kd := pointcloud.ToKDTree(cloudFromPoints(points))
	spacings := make([]float64, 0, len(points))
	for _, pt := range points {
		neighbors := kd.KNearestNeighbors(pt, k, false)
		if len(neighbors) == 0 {
			continue
		}
		var sum float64
		for _, nb := range neighbors {
			sum += nb.P.Sub(pt).Norm()
		}
		spacings = append(spacings, sum/float64(len(neighbors)))
	}
	// Every position coincides; there is no spacing to measure.
	if len(spacings) == 0 {
		return 0, ErrInsufficientNeighbors
	}
	return stat.Mean(spacings, nil), nil
}
