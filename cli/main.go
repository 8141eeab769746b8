package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/biotinker/pointset"
	"github.com/biotinker/pointset/internal/xyz"

	"github.com/golang/geo/r3"
	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/pointcloud"
)

type fileOptions struct {
	outDir         string
	writePCD       bool
	filterOutliers bool
	outlierMeanK   int
	outlierStdDev  float64
	spacingK       int
}

func main() {
	neighbors := flag.Int("k", 10, "neighborhood size for estimation and orientation")
	estimator := flag.String("estimator", "pca", "normal estimator: pca or jet")
	smoothPasses := flag.Int("smooth", 0, "plane-projection smoothing passes before estimation")
	smoothK := flag.Int("smooth-k", 0, "neighborhood size for smoothing (default: same as -k)")
	refIndex := flag.Int("ref-index", -1, "orientation seed point index (default: highest Z)")
	filterOutliers := flag.Bool("filter-outliers", false, "drop statistical outliers before processing")
	outlierMeanK := flag.Int("outlier-k", 8, "neighbor count for the outlier filter")
	outlierStdDev := flag.Float64("outlier-stddev", 1.25, "stddev threshold for the outlier filter")
	outDir := flag.String("out", ".", "directory for output files")
	writePCD := flag.Bool("pcd", false, "also write each processed cloud as binary PCD")
	flag.Parse()

	logger := logging.NewLogger("pointset-cli")

	if flag.NArg() == 0 {
		logger.Fatal("no input files; pass one or more .xyz or .pcd paths")
	}

	kind, err := pointset.ParseEstimatorKind(*estimator)
	if err != nil {
		logger.Fatalf("-estimator: %v", err)
	}

	cfg := pointset.DefaultConfig()
	cfg.Estimation.Neighbors = *neighbors
	cfg.Estimation.Kind = kind
	cfg.Orientation.Neighbors = *neighbors
	cfg.Orientation.ReferenceIndex = *refIndex
	cfg.Smoothing.Passes = *smoothPasses
	cfg.Smoothing.Neighbors = *neighbors
	if *smoothK > 0 {
		cfg.Smoothing.Neighbors = *smoothK
	}

	opts := fileOptions{
		outDir:         *outDir,
		writePCD:       *writePCD,
		filterOutliers: *filterOutliers,
		outlierMeanK:   *outlierMeanK,
		outlierStdDev:  *outlierStdDev,
		spacingK:       *neighbors,
	}

	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		logger.Fatalf("create output dir: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	proc := pointset.NewProcessor(&cfg)

	failed := 0
	for _, path := range flag.Args() {
		if err := processFile(ctx, proc, path, opts, logger); err != nil {
			if errors.Is(err, context.Canceled) {
				logger.Fatal("interrupted")
			}
			logger.Warnf("%s failed: %v", path, err)
			failed++
		}
	}
	if failed > 0 {
		logger.Fatalf("%d of %d files failed", failed, flag.NArg())
	}
}

func processFile(ctx context.Context, proc *pointset.Processor, path string, opts fileOptions, logger logging.Logger) error {
	points, err := loadPoints(path, opts, logger)
	if err != nil {
		return err
	}

	logger.Infof("=== Processing %s (%d points) ===", path, len(points))

	if spacing, err := pointset.AverageSpacing(points, opts.spacingK); err == nil {
		logger.Infof("Average spacing over %d neighbors: %.4g", opts.spacingK, spacing)
	}

	result, err := proc.RunPoints(ctx, points)
	if err != nil {
		return err
	}
	logSummary(result, logger)

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	outPath := filepath.Join(opts.outDir, base+"_normals.xyz")
	normals := make([]r3.Vector, len(result.Normals))
	for i, n := range result.Normals {
		normals[i] = n.Vector
	}
	if err := xyz.WriteFile(outPath, result.Points, normals); err != nil {
		return err
	}
	logger.Infof("Wrote %s (%d points)", outPath, len(result.Points))

	if opts.writePCD {
		pcdPath := filepath.Join(opts.outDir, base+".pcd")
		if err := savePointCloudToPCD(result.Cloud(), pcdPath); err != nil {
			return err
		}
		logger.Infof("Wrote %s", pcdPath)
	}
	return nil
}

// loadPoints reads a cloud from disk. PCD and LAS files go through the
// pointcloud loaders; everything else is treated as xyz text.
func loadPoints(path string, opts fileOptions, logger logging.Logger) ([]r3.Vector, error) {
	var points []r3.Vector
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pcd", ".las":
		cloud, err := pointcloud.NewFromFile(path, "")
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		points = pointcloud.CloudToPoints(cloud)
	default:
		var err error
		points, err = xyz.ReadFile(path)
		if err != nil {
			return nil, err
		}
	}

	if !opts.filterOutliers {
		return points, nil
	}
	filtered, err := removeOutliers(points, opts.outlierMeanK, opts.outlierStdDev)
	if err != nil {
		return nil, fmt.Errorf("outlier filter: %w", err)
	}
	if removed := len(points) - len(filtered); removed > 0 {
		logger.Infof("Outlier filter removed %d of %d points", removed, len(points))
	}
	return filtered, nil
}

// removeOutliers runs the statistical outlier filter and returns the
// survivors in their original order.
func removeOutliers(points []r3.Vector, meanK int, stdDev float64) ([]r3.Vector, error) {
	filterFn, err := pointcloud.StatisticalOutlierFilter(meanK, stdDev)
	if err != nil {
		return nil, err
	}
	in := pointcloud.NewBasicPointCloud(len(points))
	for _, pt := range points {
		//nolint:errcheck
		in.Set(pt, nil)
	}
	out := pointcloud.NewBasicEmpty()
	if err := filterFn(in, out); err != nil {
		return nil, err
	}

	kept := make(map[r3.Vector]bool, out.Size())
	out.Iterate(0, 0, func(pt r3.Vector, _ pointcloud.Data) bool {
		kept[pt] = true
		return true
	})
	filtered := make([]r3.Vector, 0, out.Size())
	for _, pt := range points {
		if kept[pt] {
			filtered = append(filtered, pt)
		}
	}
	return filtered, nil
}

func logSummary(result *pointset.Result, logger logging.Logger) {
	badNorm := 0
	for _, n := range result.Normals {
		if norm := n.Norm(); norm < 0.99 || norm > 1.01 {
			badNorm++
		}
	}
	if badNorm > 0 {
		logger.Warnf("%d normals are not unit length", badNorm)
	}
	if len(result.PointErrors) > 0 {
		logger.Warnf("%d points failed estimation; first: %v", len(result.PointErrors), result.PointErrors[0])
	}

	or := result.Orientation
	logger.Infof("Oriented %d components (roots %v): flipped %d, unoriented %d",
		or.Components, or.Roots, or.Flipped, or.Unoriented)

	for i, sm := range result.Smoothing {
		logger.Infof("Smoothing pass %d: moved %d points, mean displacement %.4g, max %.4g",
			i+1, sm.Moved, sm.MeanDisplacement, sm.MaxDisplacement)
	}
}

// savePointCloudToPCD writes a point cloud to a PCD file in binary format.
func savePointCloudToPCD(cloud pointcloud.PointCloud, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer file.Close()

	if err := pointcloud.ToPCD(cloud, file, pointcloud.PCDBinary); err != nil {
		return fmt.Errorf("write PCD: %w", err)
	}

	return nil
}
