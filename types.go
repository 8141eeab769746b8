package pointset

import (
	"fmt"

	"github.com/golang/geo/r3"
)

// EstimatorKind selects the per-point normal estimation method.
type EstimatorKind int

const (
	// EstimatorPCA fits a least-squares plane to each neighborhood.
	EstimatorPCA EstimatorKind = iota
	// EstimatorJet refines the plane fit with a local quadric height field.
	EstimatorJet
)

func (k EstimatorKind) String() string {
	switch k {
	case EstimatorPCA:
		return "pca"
	case EstimatorJet:
		return "jet"
	default:
		return "unknown"
	}
}

// ParseEstimatorKind maps a name to an EstimatorKind.
func ParseEstimatorKind(s string) (EstimatorKind, error) {
	switch s {
	case "pca":
		return EstimatorPCA, nil
	case "jet":
		return EstimatorJet, nil
	default:
		return 0, fmt.Errorf("unknown estimator %q (want pca or jet)", s)
	}
}

// Normal is a unit surface normal with an orientation flag. The vector direction
// is meaningful up to sign until Oriented is set by propagation.
type Normal struct {
	r3.Vector
	Oriented bool
}

// PointError records a per-point failure inside a batch operation. Batch operations
// keep going past individual degenerate points and report them here instead.
type PointError struct {
	Index int
	Err   error
}

func (e PointError) Error() string {
	return fmt.Sprintf("point %d: %v", e.Index, e.Err)
}

func (e PointError) Unwrap() error {
	return e.Err
}

// EstimateResult holds per-point normals and any per-point failures.
// Normals is index-aligned with the input points; entries whose index appears in
// PointErrors hold a zero vector and Oriented=false.
type EstimateResult struct {
	Normals     []Normal
	PointErrors []PointError
}

// OrientationReport summarizes a propagation pass over the riemannian graph.
type OrientationReport struct {
	Components int   // Number of connected components traversed
	Roots      []int // Reference vertex chosen per component, in traversal order
	Flipped    int   // Normals whose sign was reversed
	Unoriented int   // Normals left unoriented (zero vectors from failed estimates)
}

// SmoothReport summarizes a single projection pass over the point set.
type SmoothReport struct {
	Moved            int     // Points displaced by more than a working epsilon
	MeanDisplacement float64 // Mean displacement over all points
	MaxDisplacement  float64 // Largest single displacement
	PointErrors      []PointError
}

// Result is the output of a full Processor pass.
type Result struct {
	Points      []r3.Vector
	Normals     []Normal
	Orientation *OrientationReport
	Smoothing   []*SmoothReport // One report per smoothing pass, in order
	PointErrors []PointError    // Estimation failures; these normals stay unoriented
}
