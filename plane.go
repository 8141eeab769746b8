package pointset

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

// degeneracyTol is the relative eigenvalue threshold below which a neighborhood
// is treated as coincident or colinear.
const degeneracyTol = 1e-9

// Plane is a least-squares plane through a point neighborhood. Normal is unit
// length; its sign is arbitrary until orientation propagation fixes it.
type Plane struct {
	Normal   r3.Vector
	Centroid r3.Vector
}

// FitPlane fits a total least-squares plane to the points via PCA of their
// covariance. Returns ErrDegenerateInput when no single plane normal is
// determined: fewer than 3 points, or coincident or colinear points.
func FitPlane(points []r3.Vector) (Plane, error) {
	if len(points) < 3 {
		return Plane{}, ErrDegenerateInput
	}

	// Compute centroid.
	var cx, cy, cz float64
	for _, pt := range points {
		cx += pt.X
		cy += pt.Y
		cz += pt.Z
	}
	n := float64(len(points))
	cx /= n
	cy /= n
	cz /= n

	// Build covariance matrix.
	var cov [9]float64 // 3x3 row-major
	for _, pt := range points {
		dx := pt.X - cx
		dy := pt.Y - cy
		dz := pt.Z - cz
		cov[0] += dx * dx
		cov[1] += dx * dy
		cov[2] += dx * dz
		cov[3] += dy * dx
		cov[4] += dy * dy
		cov[5] += dy * dz
		cov[6] += dz * dx
		cov[7] += dz * dy
		cov[8] += dz * dz
	}
	for i := range cov {
		cov[i] /= n
	}

	covMat := mat.NewSymDense(3, cov[:])

	var eigen mat.EigenSym
	if !eigen.Factorize(covMat, true) {
		return Plane{}, ErrDegenerateInput
	}

	// Eigenvalues are in ascending order. The two largest span the plane; if the
	// middle one vanishes the points have no unique fitting plane.
	vals := eigen.Values(nil)
	trace := vals[0] + vals[1] + vals[2]
	if trace <= 0 || vals[1] <= degeneracyTol*trace {
		return Plane{}, ErrDegenerateInput
	}

	var vecs mat.Dense
	eigen.VectorsTo(&vecs)

	// Normal is the eigenvector corresponding to the smallest eigenvalue (column 0).
	normal := r3.Vector{
		X: vecs.At(0, 0),
		Y: vecs.At(1, 0),
		Z: vecs.At(2, 0),
	}

	return Plane{
		Normal:   normal,
		Centroid: r3.Vector{X: cx, Y: cy, Z: cz},
	}, nil
}

// Distance returns the signed distance from pt to the plane, positive on the
// side the normal points toward.
func (p Plane) Distance(pt r3.Vector) float64 {
	return pt.Sub(p.Centroid).Dot(p.Normal)
}

// Project returns the orthogonal projection of pt onto the plane.
func (p Plane) Project(pt r3.Vector) r3.Vector {
	return pt.Sub(p.Normal.Mul(p.Distance(pt)))
}
