package pointset

import (
	"math"
	"sort"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/graph/simple"

	"go.viam.com/rdk/pointcloud"
)

// maxDisagreementWeight is the edge weight for endpoints whose normals carry no
// direction (failed estimates).
const maxDisagreementWeight = 1.0

// RiemannianGraph couples k-neighborhood adjacency with normal agreement. Edge
// weight is 1 - |n_i . n_j|: near 0 where neighboring normals are parallel in
// either sign, near 1 where they disagree. A minimum spanning tree of this
// graph propagates orientation across flat, consistent regions before it has
// to cross sharp ones.
type RiemannianGraph struct {
	g      *simple.WeightedUndirectedGraph
	points []r3.Vector
}

// BuildRiemannianGraph connects every point to its k nearest neighbors and
// weights each edge by normal disagreement. Weights ignore normal sign, so the
// graph is identical before and after orientation. Edges touching a failed
// (zero) normal get maximum weight; the vertex stays reachable but the tree
// only crosses it as a last resort. Vertices at identical positions are never
// joined to each other; each still connects to its surrounding neighbors.
func BuildRiemannianGraph(points []r3.Vector, normals []Normal, k int) (*RiemannianGraph, error) {
	if len(normals) != len(points) {
		return nil, ErrNormalCountMismatch
	}
	if k < 1 {
		return nil, ErrInvalidNeighborCount
	}

	g := simple.NewWeightedUndirectedGraph(0, math.Inf(1))
	for i := range points {
		g.AddNode(simple.Node(i))
	}

	// Positions map back to the first index holding them.
	index := make(map[r3.Vector]int, len(points))
	for i, pt := range points {
		if _, ok := index[pt]; !ok {
			index[pt] = i
		}
	}

	kd := pointcloud.ToKDTree(cloudFromPoints(points))
	for i, pt := range points {
		for _, nb := range kd.KNearestNeighbors(pt, k, false) {
			j, ok := index[nb.P]
			if !ok || j == i {
				continue
			}
			w := normalDisagreement(normals[i], normals[j])
			g.SetWeightedEdge(g.NewWeightedEdge(simple.Node(i), simple.Node(j), w))
		}
	}

	return &RiemannianGraph{g: g, points: points}, nil
}

// normalDisagreement is 1 - |a.b| clamped to [0, 1]. A zero normal has no
// direction to agree with and rates maximum weight.
func normalDisagreement(a, b Normal) float64 {
	if a.Vector == (r3.Vector{}) || b.Vector == (r3.Vector{}) {
		return maxDisagreementWeight
	}
	w := 1 - math.Abs(a.Dot(b.Vector))
	if w < 0 {
		return 0
	}
	if w > maxDisagreementWeight {
		return maxDisagreementWeight
	}
	return w
}

// Size returns the number of vertices.
func (rg *RiemannianGraph) Size() int {
	return len(rg.points)
}

// Weight returns the edge weight between vertices i and j, and whether that
// edge exists.
func (rg *RiemannianGraph) Weight(i, j int) (float64, bool) {
	if i == j {
		return 0, false
	}
	return rg.g.Weight(int64(i), int64(j))
}

// Neighbors returns the vertices adjacent to i in ascending order.
func (rg *RiemannianGraph) Neighbors(i int) []int {
	var ids []int
	nodes := rg.g.From(int64(i))
	for nodes.Next() {
		ids = append(ids, int(nodes.Node().ID()))
	}
	sort.Ints(ids)
	return ids
}
