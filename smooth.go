package pointset

import (
	"context"

	"github.com/golang/geo/r3"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"go.viam.com/rdk/pointcloud"
)

// smoothMoveEps is the displacement below which a point counts as unmoved.
const smoothMoveEps = 1e-12

// SmoothPoints projects every point onto the least-squares plane of its
// cfg.Neighbors nearest neighbors, in place. The pass has two phases: all
// projections are computed against a KD-tree frozen on the original positions,
// then written back at once. No projection ever sees a half-updated
// neighborhood, so the result does not depend on point order. Points with a
// too-small or degenerate neighborhood keep their position and show up in
// SmoothReport.PointErrors.
func SmoothPoints(ctx context.Context, points []r3.Vector, cfg SmoothingConfig) (*SmoothReport, error) {
	if len(points) == 0 {
		return nil, ErrTooFewPoints
	}
	if cfg.Neighbors < 2 {
		return nil, ErrInvalidNeighborCount
	}

	kd := pointcloud.ToKDTree(cloudFromPoints(points))
	projected := make([]r3.Vector, len(points))
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
				plane, err := FitPlane(gatherNeighborhood(kd, points[i], cfg.Neighbors))
				if err != nil {
					projected[i] = points[i]
					perPoint[i] = err
					continue
				}
				projected[i] = plane.Project(points[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Write phase: measure displacements, then replace the positions.
	report := &SmoothReport{}
	displacements := make([]float64, len(points))
	for i := range points {
		d := projected[i].Sub(points[i]).Norm()
		displacements[i] = d
		if d > smoothMoveEps {
			report.Moved++
		}
		if d > report.MaxDisplacement {
			report.MaxDisplacement = d
		}
		points[i] = projected[i]
	}
	report.MeanDisplacement = stat.Mean(displacements, nil)

	for i, err := range perPoint {
		if err != nil {
			report.PointErrors = append(report.PointErrors, PointError{Index: i, Err: err})
		}
	}
	return report, nil
}
