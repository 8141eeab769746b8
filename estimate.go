package pointset

import (
	"context"
	"runtime"
	"sort"

	"github.com/golang/geo/r3"
	"golang.org/x/sync/errgroup"

	"go.viam.com/rdk/pointcloud"
)

// NeighborSource answers k-nearest-neighbor queries over a fixed point set.
// *pointcloud.KDTree satisfies it.
type NeighborSource interface {
	KNearestNeighbors(p r3.Vector, k int, includeSelf bool) []*pointcloud.PointAndData
}

// Estimator computes a single surface normal from a point neighborhood,
// query point first, nearest first. The sign of the returned normal is
// arbitrary; orientation is a separate pass.
type Estimator interface {
	EstimateNormal(neighborhood []r3.Vector) (r3.Vector, error)
}

// NewEstimator returns the estimator for the given kind.
func NewEstimator(kind EstimatorKind) (Estimator, error) {
	switch kind {
	case EstimatorPCA:
		return pcaEstimator{}, nil
	case EstimatorJet:
		return jetEstimator{}, nil
	default:
		return nil, ErrInvalidEstimator
	}
}

// pcaEstimator fits a least-squares plane through the neighborhood and takes
// its normal.
type pcaEstimator struct{}

func (pcaEstimator) EstimateNormal(neighborhood []r3.Vector) (r3.Vector, error) {
	if len(neighborhood) == 0 {
		return r3.Vector{}, ErrInsufficientNeighbors
	}
	plane, err := FitPlane(neighborhood)
	if err != nil {
		return r3.Vector{}, err
	}
	return plane.Normal, nil
}

// gatherNeighborhood collects the query point plus its k nearest neighbors,
// ordered by distance with position breaking exact ties so downstream
// arithmetic sees a canonical sequence. A search that runs out of points early
// just returns what it found.
func gatherNeighborhood(src NeighborSource, point r3.Vector, k int) []r3.Vector {
	neighbors := src.KNearestNeighbors(point, k+1, true)
	pts := make([]r3.Vector, len(neighbors))
	for i, nb := range neighbors {
		pts[i] = nb.P
	}
	sort.Slice(pts, func(i, j int) bool {
		di := pts[i].Sub(point).Norm2()
		dj := pts[j].Sub(point).Norm2()
		if di != dj {
			return di < dj
		}
		return lessVector(pts[i], pts[j])
	})
	return pts
}

// lessVector orders positions lexicographically by X, Y, Z.
func lessVector(a, b r3.Vector) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.Z < b.Z
}

// EstimateNormals estimates a normal for every point using cfg.Kind over
// cfg.Neighbors nearest neighbors; cfg.Neighbors must be at least 2. The
// KD-tree is built once from the input positions and shared read-only across
// workers. Degenerate neighborhoods do not abort the batch; they leave a zero
// normal and an entry in EstimateResult.PointErrors, ordered by point index.
func EstimateNormals(ctx context.Context, points []r3.Vector, cfg EstimationConfig) (*EstimateResult, error) {
	if len(points) == 0 {
		return nil, ErrTooFewPoints
	}
	if cfg.Neighbors < 2 {
		return nil, ErrInvalidNeighborCount
	}
	est, err := NewEstimator(cfg.Kind)
	if err != nil {
		return nil, err
	}

	kd := pointcloud.ToKDTree(cloudFromPoints(points))
	normals := make([]Normal, len(points))
	perPoint := make([]error, len(points))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workerCount(cfg.Workers))
	for start := 0; start < len(points); start += batchChunkSize {
		end := start + batchChunkSize
		if end > len(points) {
			end = len(points)
		}
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				nv, err := est.EstimateNormal(gatherNeighborhood(kd, points[i], cfg.Neighbors))
				if err != nil {
					perPoint[i] = err
					continue
				}
				normals[i] = Normal{Vector: nv}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &EstimateResult{Normals: normals}
	for i, err := range perPoint {
		if err != nil {
			result.PointErrors = append(result.PointErrors, PointError{Index: i, Err: err})
		}
	}
	return result, nil
}

// batchChunkSize is the number of points handed to a worker at a time.
const batchChunkSize = 256

func workerCount(configured int) int {
	if configured > 0 {
		return configured
	}
	return runtime.GOMAXPROCS(0)
}

// cloudFromPoints builds a point cloud from a position slice. Duplicate
// positions collapse to a single stored point.
func cloudFromPoints(points []r3.Vector) pointcloud.PointCloud {
	cloud := pointcloud.NewBasicPointCloud(len(points))
	for _, pt := range points {
		//nolint:errcheck
		cloud.Set(pt, nil)
	}
	return cloud
}
