package geometry

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/ironsheep/docscan-mcp/internal/scanerr"
)

// minDeterminant is the smallest |det| accepted for an invertible homography.
const minDeterminant = 1e-12

// Homography is a row-major 3×3 projective transform normalized so that
// H[8] == 1.
//
//	| H[0] H[1] H[2] |
//	| H[3] H[4] H[5] |
//	| H[6] H[7] H[8] |
type Homography [9]float64

// Identity returns the identity transform.
func Identity() Homography {
	return Homography{1, 0, 0, 0, 1, 0, 0, 0, 1}
}

// ComputeHomography solves the transform that maps src[i] onto dst[i] for
// all four correspondences.
//
// With H[8] fixed to 1 each correspondence contributes two linear equations:
//
//	x' = (h0 X + h1 Y + h2) / (h6 X + h7 Y + 1)
//	y' = (h3 X + h4 Y + h5) / (h6 X + h7 Y + 1)
//
// giving an 8×8 system that is solved with gonum's LU solver. A system that
// cannot be solved, or a solution that is not invertible, is reported as
// scanerr.ErrSingularTransform.
func ComputeHomography(src, dst [4]Point) (Homography, error) {
	a := mat.NewDense(8, 8, nil)
	b := mat.NewVecDense(8, nil)
	for i := 0; i < 4; i++ {
		X, Y := src[i].X, src[i].Y
		x, y := dst[i].X, dst[i].Y
		r := 2 * i

		a.SetRow(r, []float64{X, Y, 1, 0, 0, 0, -X * x, -Y * x})
		b.SetVec(r, x)

		a.SetRow(r+1, []float64{0, 0, 0, X, Y, 1, -X * y, -Y * y})
		b.SetVec(r+1, y)
	}

	var h mat.VecDense
	if err := h.SolveVec(a, b); err != nil {
		return Homography{}, scanerr.New(scanerr.StageRectifier, scanerr.ErrSingularTransform,
			"correspondence system has no unique solution: %v", err)
	}

	var H Homography
	for i := 0; i < 8; i++ {
		v := h.AtVec(i)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Homography{}, scanerr.New(scanerr.StageRectifier, scanerr.ErrSingularTransform,
				"correspondence system produced a non-finite coefficient")
		}
		H[i] = v
	}
	H[8] = 1

	if det := H.Det(); math.Abs(det) < minDeterminant {
		return Homography{}, scanerr.New(scanerr.StageRectifier, scanerr.ErrSingularTransform,
			"homography determinant %g is zero", det)
	}
	return H, nil
}

func (h Homography) dense() *mat.Dense {
	data := make([]float64, 9)
	copy(data, h[:])
	return mat.NewDense(3, 3, data)
}

// Det returns the determinant of h.
func (h Homography) Det() float64 {
	return mat.Det(h.dense())
}

// Inverse returns the inverse transform, normalized so that its bottom-right
// entry is 1.
func (h Homography) Inverse() (Homography, error) {
	if det := h.Det(); math.Abs(det) < minDeterminant {
		return Homography{}, scanerr.New(scanerr.StageRectifier, scanerr.ErrSingularTransform,
			"homography determinant %g is zero", det)
	}

	var inv mat.Dense
	if err := inv.Inverse(h.dense()); err != nil {
		return Homography{}, scanerr.New(scanerr.StageRectifier, scanerr.ErrSingularTransform,
			"homography is not invertible: %v", err)
	}

	var out Homography
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			out[r*3+c] = inv.At(r, c)
		}
	}
	if math.Abs(out[8]) > minDeterminant {
		scale := out[8]
		for i := range out {
			out[i] /= scale
		}
	}
	return out, nil
}

// Apply maps p through h. The boolean is false when p maps to infinity.
func (h Homography) Apply(p Point) (Point, bool) {
	w := h[6]*p.X + h[7]*p.Y + h[8]
	if math.Abs(w) < 1e-12 {
		return Point{}, false
	}
	return Point{
		X: (h[0]*p.X + h[1]*p.Y + h[2]) / w,
		Y: (h[3]*p.X + h[4]*p.Y + h[5]) / w,
	}, true
}
