package pointset

import "github.com/golang/geo/r3"

// Config holds all configuration for the normal estimation pipeline.
type Config struct {
	Estimation  EstimationConfig
	Orientation OrientationConfig
	Smoothing   SmoothingConfig
}

// EstimationConfig holds parameters for per-point normal estimation.
type EstimationConfig struct {
	Neighbors int           // K nearest neighbors per point (the point itself is extra); minimum 2
	Kind      EstimatorKind // Estimation method; PCA plane fit or jet refinement
	Workers   int           // Concurrent workers for batch estimation; 0 = GOMAXPROCS
}

// OrientationConfig holds parameters for sign propagation over the riemannian graph.
type OrientationConfig struct {
	Neighbors          int       // K nearest neighbors for graph adjacency
	ReferenceIndex     int       // Root vertex of the first component; -1 = highest Z
	ReferenceDirection r3.Vector // Desired root normal direction; zero = keep estimated sign
}

// SmoothingConfig holds parameters for plane-projection smoothing.
type SmoothingConfig struct {
	Neighbors int // K nearest neighbors per projection plane; minimum 2
	Passes    int // Projection passes run by the Processor; 0 disables smoothing
	Workers   int // Concurrent workers for the projection phase; 0 = GOMAXPROCS
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Estimation: EstimationConfig{
			Neighbors: 10,
			Kind:      EstimatorPCA,
			Workers:   0,
		},
		Orientation: OrientationConfig{
			Neighbors:          10,
			ReferenceIndex:     -1,
			ReferenceDirection: r3.Vector{X: 0, Y: 0, Z: 1},
		},
		Smoothing: SmoothingConfig{
			Neighbors: 10,
			Passes:    0,
			Workers:   0,
		},
	}
}
