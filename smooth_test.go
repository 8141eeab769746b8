package pointset

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/golang/geo/r3"
)

func TestSmoothPoints_PlanarNoop(t *testing.T) {
	points := generatePlanarGrid(5, 5, 1.0)

	report, err := SmoothPoints(context.Background(), points, SmoothingConfig{Neighbors: 6})
	if err != nil {
		t.Fatalf("SmoothPoints failed: %v", err)
	}
	if report.Moved != 0 {
		t.Errorf("coplanar input moved %d points, want 0", report.Moved)
	}
	if len(report.PointErrors) != 0 {
		t.Errorf("unexpected point errors: %v", report.PointErrors)
	}
	for i, pt := range points {
		if math.Abs(pt.Z) > 1e-9 {
			t.Errorf("point %d left the plane: %v", i, pt)
		}
	}
}

func TestSmoothPoints_FlattensNoise(t *testing.T) {
	//nolint:gosec
	rng := rand.New(rand.NewSource(21))
	var points []r3.Vector
	for i := 0; i < 10; i++ {
		for j := 0; j < 10; j++ {
			points = append(points, r3.Vector{
				X: float64(i),
				Y: float64(j),
				Z: 0.3 * (2*rng.Float64() - 1),
			})
		}
	}

	rms := func(pts []r3.Vector) float64 {
		var sum float64
		for _, pt := range pts {
			sum += pt.Z * pt.Z
		}
		return math.Sqrt(sum / float64(len(pts)))
	}
	before := rms(points)

	report, err := SmoothPoints(context.Background(), points, SmoothingConfig{Neighbors: 8})
	if err != nil {
		t.Fatalf("SmoothPoints failed: %v", err)
	}
	after := rms(points)
	t.Logf("rms z: %.4f -> %.4f, moved %d, mean displacement %.4f, max %.4f",
		before, after, report.Moved, report.MeanDisplacement, report.MaxDisplacement)

	if after >= before*0.7 {
		t.Errorf("smoothing barely reduced noise: rms %.4f -> %.4f", before, after)
	}
	if report.Moved != len(points) {
		t.Errorf("moved %d points, want all %d", report.Moved, len(points))
	}
	if report.MaxDisplacement < report.MeanDisplacement {
		t.Errorf("max displacement %.6f below mean %.6f", report.MaxDisplacement, report.MeanDisplacement)
	}
}

func TestSmoothPoints_OrderIndependent(t *testing.T) {
	//nolint:gosec
	rng := rand.New(rand.NewSource(33))
	n := 120
	points := make([]r3.Vector, n)
	for i := range points {
		points[i] = r3.Vector{
			X: rng.Float64() * 30,
			Y: rng.Float64() * 30,
			Z: 0.2 * (2*rng.Float64() - 1),
		}
	}
	reversed := make([]r3.Vector, n)
	for i := range points {
		reversed[n-1-i] = points[i]
	}

	cfg := SmoothingConfig{Neighbors: 9}
	if _, err := SmoothPoints(context.Background(), points, cfg); err != nil {
		t.Fatalf("SmoothPoints failed: %v", err)
	}
	if _, err := SmoothPoints(context.Background(), reversed, cfg); err != nil {
		t.Fatalf("SmoothPoints on reversed input failed: %v", err)
	}

	// All projections read the frozen original positions, so input order
	// cannot leak into the result.
	for i := range points {
		if diff := points[i].Sub(reversed[n-1-i]).Norm(); diff > 1e-12 {
			t.Fatalf("point %d differs by %.3e depending on input order", i, diff)
		}
	}
}

func TestSmoothPoints_TinyCloud(t *testing.T) {
	points := []r3.Vector{{X: 0}, {X: 1}}
	orig := []r3.Vector{{X: 0}, {X: 1}}

	report, err := SmoothPoints(context.Background(), points, SmoothingConfig{Neighbors: 2})
	if err != nil {
		t.Fatalf("SmoothPoints failed: %v", err)
	}
	if len(report.PointErrors) != 2 {
		t.Fatalf("expected 2 point errors, got %d", len(report.PointErrors))
	}
	for _, pe := range report.PointErrors {
		if pe.Err != ErrDegenerateInput {
			t.Errorf("point %d: expected ErrDegenerateInput, got %v", pe.Index, pe.Err)
		}
	}
	if report.Moved != 0 {
		t.Errorf("moved %d points, want 0", report.Moved)
	}
	for i := range points {
		if points[i] != orig[i] {
			t.Errorf("point %d moved despite failed fit: %v", i, points[i])
		}
	}
}

func TestSmoothPoints_BadArguments(t *testing.T) {
	if _, err := SmoothPoints(context.Background(), nil, SmoothingConfig{Neighbors: 4}); err != ErrTooFewPoints {
		t.Errorf("expected ErrTooFewPoints, got %v", err)
	}
	points := generatePlanarGrid(3, 3, 1.0)
	if _, err := SmoothPoints(context.Background(), points, SmoothingConfig{Neighbors: 1}); err != ErrInvalidNeighborCount {
		t.Errorf("expected ErrInvalidNeighborCount, got %v", err)
	}
}
