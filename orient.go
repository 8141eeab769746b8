package pointset

import (
	"container/heap"
	"fmt"

	"github.com/golang/geo/r3"
)

// treeEdge is a candidate spanning-tree edge from a visited parent to an
// unvisited child.
type treeEdge struct {
	weight float64
	child  int
	parent int
}

// edgeHeap orders candidate edges by (weight, child, parent). The order is a
// strict total order over distinct edges, so ties between equal weights
// resolve identically on every run regardless of push order.
type edgeHeap []treeEdge

func (h edgeHeap) Len() int { return len(h) }

func (h edgeHeap) Less(i, j int) bool {
	if h[i].weight != h[j].weight {
		return h[i].weight < h[j].weight
	}
	if h[i].child != h[j].child {
		return h[i].child < h[j].child
	}
	return h[i].parent < h[j].parent
}

func (h edgeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *edgeHeap) Push(x any) { *h = append(*h, x.(treeEdge)) }

func (h *edgeHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// OrientNormals builds the riemannian graph over cfg.Neighbors nearest
// neighbors and makes the normal signs consistent across it. Normals are
// updated in place. Callers holding a prebuilt graph use
// RiemannianGraph.Orient directly.
func OrientNormals(points []r3.Vector, normals []Normal, cfg OrientationConfig) (*OrientationReport, error) {
	rg, err := BuildRiemannianGraph(points, normals, cfg.Neighbors)
	if err != nil {
		return nil, err
	}
	return rg.Orient(normals, cfg)
}

// Orient makes normal signs consistent across the point set. Each connected
// component gets a minimum spanning tree of the disagreement weights; signs
// then propagate from the component's reference vertex breadth first,
// flipping any child normal that disagrees with its parent. The result is
// deterministic for a given point order.
//
// The first component's reference vertex is cfg.ReferenceIndex when set;
// otherwise, and for every further component, it is the unvisited vertex with
// the highest Z coordinate, lowest index on ties. A nonzero
// cfg.ReferenceDirection flips each reference normal to point into its
// half-space. Normals are updated in place; zero normals from failed estimates
// are left untouched and counted in the report.
func (rg *RiemannianGraph) Orient(normals []Normal, cfg OrientationConfig) (*OrientationReport, error) {
	n := rg.Size()
	if n == 0 {
		return nil, ErrEmptyGraph
	}
	if len(normals) != n {
		return nil, ErrNormalCountMismatch
	}
	if cfg.ReferenceIndex >= n {
		return nil, fmt.Errorf("reference vertex %d outside point range [0, %d)", cfg.ReferenceIndex, n)
	}

	visited := make([]bool, n)
	children := make([][]int, n)
	report := &OrientationReport{}

	for {
		root := -1
		if len(report.Roots) == 0 && cfg.ReferenceIndex >= 0 {
			root = cfg.ReferenceIndex
		} else {
			root = pickRoot(rg.points, visited)
		}
		if root < 0 {
			break
		}
		growTree(rg, root, visited, children)
		orientComponent(root, children, normals, cfg.ReferenceDirection, report)
		report.Roots = append(report.Roots, root)
	}

	report.Components = len(report.Roots)
	return report, nil
}

// pickRoot returns the unvisited vertex with the highest Z coordinate, lowest
// index on ties, or -1 when every vertex has been visited.
func pickRoot(points []r3.Vector, visited []bool) int {
	best := -1
	for i, pt := range points {
		if visited[i] {
			continue
		}
		if best < 0 || pt.Z > points[best].Z {
			best = i
		}
	}
	return best
}

// growTree runs Prim's algorithm from root across its component, recording the
// tree children of each vertex in discovery order.
func growTree(rg *RiemannianGraph, root int, visited []bool, children [][]int) {
	h := &edgeHeap{}
	visited[root] = true
	pushFrontier(rg, h, root, visited)

	for h.Len() > 0 {
		e := heap.Pop(h).(treeEdge)
		if visited[e.child] {
			continue
		}
		visited[e.child] = true
		children[e.parent] = append(children[e.parent], e.child)
		pushFrontier(rg, h, e.child, visited)
	}
}

func pushFrontier(rg *RiemannianGraph, h *edgeHeap, u int, visited []bool) {
	nodes := rg.g.From(int64(u))
	for nodes.Next() {
		v := int(nodes.Node().ID())
		if visited[v] {
			continue
		}
		w, _ := rg.g.Weight(int64(u), int64(v))
		heap.Push(h, treeEdge{weight: w, child: v, parent: u})
	}
}

// orientComponent walks one spanning tree breadth first, flipping every child
// normal that points away from its parent. Zero normals stay unoriented and
// hand their children through without a flip.
func orientComponent(root int, children [][]int, normals []Normal, ref r3.Vector, report *OrientationReport) {
	if normals[root].Vector == (r3.Vector{}) {
		report.Unoriented++
	} else {
		if ref != (r3.Vector{}) && normals[root].Dot(ref) < 0 {
			normals[root].Vector = normals[root].Mul(-1)
			report.Flipped++
		}
		normals[root].Oriented = true
	}

	queue := []int{root}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, c := range children[u] {
			if normals[c].Vector == (r3.Vector{}) {
				report.Unoriented++
			} else {
				if normals[c].Dot(normals[u].Vector) < 0 {
					normals[c].Vector = normals[c].Mul(-1)
					report.Flipped++
				}
				normals[c].Oriented = true
			}
			queue = append(queue, c)
		}
	}
}
