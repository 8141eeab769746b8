package pointset

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

// jetCoeffs is the number of monomials in a degree-2 height field.
const jetCoeffs = 6

// jetEstimator refines the PCA plane fit with a local quadric. The neighborhood
// is expressed as a height field h(x, y) over the fitted plane and a degree-2
// polynomial is fit by least squares; the refined normal is the surface normal
// of that polynomial at the origin. Curved neighborhoods bias a pure plane fit,
// which the quadric term corrects.
type jetEstimator struct{}

func (jetEstimator) EstimateNormal(neighborhood []r3.Vector) (r3.Vector, error) {
	if len(neighborhood) == 0 {
		return r3.Vector{}, ErrInsufficientNeighbors
	}
	plane, err := FitPlane(neighborhood)
	if err != nil {
		return r3.Vector{}, err
	}
	// Underdetermined quadric; the plane normal stands.
	if len(neighborhood) < jetCoeffs {
		return plane.Normal, nil
	}

	// Orthonormal frame (u, v, normal) centered on the plane centroid.
	u := plane.Normal.Ortho()
	v := plane.Normal.Cross(u)

	// Height field: h = a0 + a1*x + a2*y + a3*x^2 + a4*x*y + a5*y^2
	// with (x, y) plane coordinates and h the offset along the normal.
	A := mat.NewDense(len(neighborhood), jetCoeffs, nil)
	b := mat.NewVecDense(len(neighborhood), nil)
	for i, pt := range neighborhood {
		d := pt.Sub(plane.Centroid)
		x := d.Dot(u)
		y := d.Dot(v)
		A.SetRow(i, []float64{1, x, y, x * x, x * y, y * y})
		b.SetVec(i, d.Dot(plane.Normal))
	}

	// Solve via QR decomposition: A * coeffs = b.
	var qr mat.QR
	qr.Factorize(A)
	var coeffs mat.VecDense
	if err := qr.SolveVecTo(&coeffs, false, b); err != nil {
		// Rank-deficient neighborhood; the plane normal stands.
		return plane.Normal, nil
	}

	// Surface normal of the height field at the centroid is (-a1, -a2, 1) in
	// frame coordinates.
	a1 := coeffs.AtVec(1)
	a2 := coeffs.AtVec(2)
	refined := u.Mul(-a1).Add(v.Mul(-a2)).Add(plane.Normal)
	return refined.Normalize(), nil
}
