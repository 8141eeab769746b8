package pointset

import "errors"

var (
	// ErrTooFewPoints is returned when a point set has insufficient points for an operation.
	ErrTooFewPoints = errors.New("too few points for operation")

	// ErrDegenerateInput is returned when a plane fit cannot determine a normal,
	// either because the neighborhood has fewer than three points or because its
	// points are coincident or colinear.
	ErrDegenerateInput = errors.New("degenerate point neighborhood")

	// ErrInsufficientNeighbors is returned when a neighbor query yields no points at all.
	ErrInsufficientNeighbors = errors.New("not enough neighbors for fit")

	// ErrEmptyGraph is returned when orientation is attempted on a graph with no vertices.
	ErrEmptyGraph = errors.New("riemannian graph has no vertices")

	// ErrNormalCountMismatch is returned when a normal slice does not pair up with a point slice.
	ErrNormalCountMismatch = errors.New("normal count does not match point count")

	// ErrInvalidNeighborCount is returned when a neighborhood size parameter is out of range.
	ErrInvalidNeighborCount = errors.New("neighbor count out of range")

	// ErrInvalidEstimator is returned for an estimator kind with no implementation.
	ErrInvalidEstimator = errors.New("unknown estimator kind")

	// ErrNilPointCloud is returned when a nil point cloud is passed.
	ErrNilPointCloud = errors.New("point cloud is nil")
)
