package pointset

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
)

func TestAverageSpacing_UnitGrid(t *testing.T) {
	points := generatePlanarGrid(5, 5, 1.0)

	spacing, err := AverageSpacing(points, 2)
	if err != nil {
		t.Fatalf("AverageSpacing failed: %v", err)
	}
	if math.Abs(spacing-1.0) > 1e-12 {
		t.Errorf("unit grid spacing %.6f, want 1.0", spacing)
	}
}

func TestAverageSpacing_ScalesWithGrid(t *testing.T) {
	points := generatePlanarGrid(6, 6, 2.5)

	spacing, err := AverageSpacing(points, 2)
	if err != nil {
		t.Fatalf("AverageSpacing failed: %v", err)
	}
	if math.Abs(spacing-2.5) > 1e-12 {
		t.Errorf("grid spacing %.6f, want 2.5", spacing)
	}
}

func TestAverageSpacing_Errors(t *testing.T) {
	if _, err := AverageSpacing([]r3.Vector{{X: 1}}, 2); err != ErrTooFewPoints {
		t.Errorf("expected ErrTooFewPoints, got %v", err)
	}
	points := generatePlanarGrid(3, 3, 1.0)
	if _, err := AverageSpacing(points, 0); err != ErrInvalidNeighborCount {
		t.Errorf("expected ErrInvalidNeighborCount, got %v", err)
	}

	pt := r3.Vector{X: 2, Y: 2, Z: 2}
	if _, err := AverageSpacing([]r3.Vector{pt, pt, pt}, 2); err != ErrInsufficientNeighbors {
		t.Errorf("expected ErrInsufficientNeighbors for coincident points, got %v", err)
	}
}
