package pointset

import (
	"context"
	"math"
	"sort"
	"testing"

	"github.com/golang/geo/r3"
)

func TestBuildRiemannianGraph_Weights(t *testing.T) {
	points := []r3.Vector{{X: 0}, {X: 1}}

	cases := []struct {
		name    string
		normals []Normal
		want    float64
	}{
		{"parallel", []Normal{{Vector: r3.Vector{Z: 1}}, {Vector: r3.Vector{Z: 1}}}, 0},
		{"antiparallel", []Normal{{Vector: r3.Vector{Z: 1}}, {Vector: r3.Vector{Z: -1}}}, 0},
		{"orthogonal", []Normal{{Vector: r3.Vector{Z: 1}}, {Vector: r3.Vector{X: 1}}}, 1},
	}

	for _, tc := range cases {
		rg, err := BuildRiemannianGraph(points, tc.normals, 1)
		if err != nil {
			t.Fatalf("%s: BuildRiemannianGraph failed: %v", tc.name, err)
		}
		w, ok := rg.Weight(0, 1)
		if !ok {
			t.Fatalf("%s: expected an edge between the two points", tc.name)
		}
		if math.Abs(w-tc.want) > 1e-12 {
			t.Errorf("%s: weight %.6f, want %.6f", tc.name, w, tc.want)
		}
	}
}

func TestBuildRiemannianGraph_SymmetricAndBounded(t *testing.T) {
	points := generateSpherePoints(r3.Vector{Z: 10}, 30, 200, 0.5, 6)
	est, err := EstimateNormals(context.Background(), points, EstimationConfig{Neighbors: 8})
	if err != nil {
		t.Fatalf("EstimateNormals failed: %v", err)
	}

	rg, err := BuildRiemannianGraph(points, est.Normals, 8)
	if err != nil {
		t.Fatalf("BuildRiemannianGraph failed: %v", err)
	}
	if rg.Size() != len(points) {
		t.Fatalf("graph size %d, want %d", rg.Size(), len(points))
	}

	edges := 0
	for i := 0; i < rg.Size(); i++ {
		neighbors := rg.Neighbors(i)
		if len(neighbors) == 0 {
			t.Errorf("vertex %d has no edges", i)
		}
		if !sort.IntsAreSorted(neighbors) {
			t.Errorf("vertex %d neighbors not sorted: %v", i, neighbors)
		}
		for _, j := range neighbors {
			wij, ok := rg.Weight(i, j)
			if !ok {
				t.Fatalf("missing edge (%d, %d) reported by Neighbors", i, j)
			}
			wji, ok := rg.Weight(j, i)
			if !ok || wij != wji {
				t.Fatalf("asymmetric weight (%d, %d): %.9f vs %.9f", i, j, wij, wji)
			}
			if wij < 0 || wij > 1 {
				t.Errorf("weight (%d, %d) = %.6f outside [0, 1]", i, j, wij)
			}
			edges++
		}
	}
	t.Logf("%d vertices, %d half-edges", rg.Size(), edges)
}

func TestBuildRiemannianGraph_FailedNormalMaxWeight(t *testing.T) {
	points := []r3.Vector{
		{X: 0, Y: 0},
		{X: 1, Y: 0},
		{X: 0, Y: 1},
		{X: 1, Y: 1},
	}
	up := Normal{Vector: r3.Vector{Z: 1}}
	normals := []Normal{up, {}, up, up}

	rg, err := BuildRiemannianGraph(points, normals, 3)
	if err != nil {
		t.Fatalf("BuildRiemannianGraph failed: %v", err)
	}

	for _, j := range rg.Neighbors(1) {
		w, ok := rg.Weight(1, j)
		if !ok {
			t.Fatalf("missing edge (1, %d)", j)
		}
		if w != maxDisagreementWeight {
			t.Errorf("edge (1, %d) weight %.6f, want max weight for a failed normal", j, w)
		}
	}
}

func TestBuildRiemannianGraph_Errors(t *testing.T) {
	points := []r3.Vector{{X: 0}, {X: 1}}
	normals := []Normal{{Vector: r3.Vector{Z: 1}}}

	if _, err := BuildRiemannianGraph(points, normals, 2); err != ErrNormalCountMismatch {
		t.Errorf("expected ErrNormalCountMismatch, got %v", err)
	}
	normals = append(normals, Normal{Vector: r3.Vector{Z: 1}})
	if _, err := BuildRiemannianGraph(points, normals, 0); err != ErrInvalidNeighborCount {
		t.Errorf("expected ErrInvalidNeighborCount, got %v", err)
	}
}

func TestBuildRiemannianGraph_Empty(t *testing.T) {
	rg, err := BuildRiemannianGraph(nil, nil, 4)
	if err != nil {
		t.Fatalf("BuildRiemannianGraph failed on empty input: %v", err)
	}
	if rg.Size() != 0 {
		t.Errorf("empty graph size %d, want 0", rg.Size())
	}
}
