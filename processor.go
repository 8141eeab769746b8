package pointset

import (
	"context"
	"fmt"

	"github.com/golang/geo/r3"

	"go.viam.com/rdk/pointcloud"
)

// Processor runs the full pipeline: optional smoothing passes, normal
// estimation, then orientation propagation.
type Processor struct {
	cfg Config
}

// NewProcessor creates a Processor with the given configuration.
func NewProcessor(cfg *Config) *Processor {
	if cfg == nil {
		c := DefaultConfig()
		cfg = &c
	}
	return &Processor{cfg: *cfg}
}

// Run processes a point cloud. The cloud's iteration order defines the point
// indices in the Result; callers that need a reproducible order across runs
// should use RunPoints with a stable slice.
func (p *Processor) Run(ctx context.Context, cloud pointcloud.PointCloud) (*Result, error) {
	if cloud == nil {
		return nil, ErrNilPointCloud
	}
	if cloud.Size() == 0 {
		return nil, ErrTooFewPoints
	}
	return p.RunPoints(ctx, pointcloud.CloudToPoints(cloud))
}

// RunPoints processes a point slice. The input slice is not modified; smoothed
// positions and oriented normals come back in the Result, index-aligned with
// the input.
func (p *Processor) RunPoints(ctx context.Context, points []r3.Vector) (*Result, error) {
	if len(points) == 0 {
		return nil, ErrTooFewPoints
	}

	result := &Result{}
	pts := make([]r3.Vector, len(points))
	copy(pts, points)

	for pass := 1; pass <= p.cfg.Smoothing.Passes; pass++ {
		rep, err := SmoothPoints(ctx, pts, p.cfg.Smoothing)
		if err != nil {
			return nil, fmt.Errorf("smoothing pass %d: %w", pass, err)
		}
		result.Smoothing = append(result.Smoothing, rep)
	}

	est, err := EstimateNormals(ctx, pts, p.cfg.Estimation)
	if err != nil {
		return nil, fmt.Errorf("normal estimation: %w", err)
	}

	rg, err := BuildRiemannianGraph(pts, est.Normals, p.cfg.Orientation.Neighbors)
	if err != nil {
		return nil, fmt.Errorf("riemannian graph: %w", err)
	}

	orientation, err := rg.Orient(est.Normals, p.cfg.Orientation)
	if err != nil {
		return nil, fmt.Errorf("orientation: %w", err)
	}

	result.Points = pts
	result.Normals = est.Normals
	result.PointErrors = est.PointErrors
	result.Orientation = orientation
	return result, nil
}

// Cloud returns the processed positions as a point cloud, for PCD export or
// further rdk processing.
func (r *Result) Cloud() pointcloud.PointCloud {
	cloud := pointcloud.NewBasicPointCloud(len(r.Points))
	for _, pt := range r.Points {
		//nolint:errcheck
		cloud.Set(pt, nil)
	}
	return cloud
}
