package svmath

// The 4-point perspective transform. Given four correspondences
// p[i] -> q[i] there is exactly one homography H (up to scale) with
// H*p[i] ~ q[i]; we pin h22=1 and solve the resulting 8x8 linear
// system.

import(
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

type Point2 struct {
	X float64
	Y float64
}

func (p Point2)String() string { return fmt.Sprintf("(%.2f,%.2f)", p.X, p.Y) }

// SolveHomography returns the H mapping src[i] to dst[i]. Fails when
// the points are degenerate (three collinear, or repeated).
func SolveHomography(src, dst [4]Point2) (Mat3, error) {
	a := mat.NewDense(8, 8, nil)
	b := mat.NewVecDense(8, nil)

	for i:=0; i<4; i++ {
		sx, sy := src[i].X, src[i].Y
		dx, dy := dst[i].X, dst[i].Y

		// dx = (h00 sx + h01 sy + h02) / (h20 sx + h21 sy + 1)
		a.SetRow(2*i,   []float64{sx, sy, 1, 0, 0, 0, -sx*dx, -sy*dx})
		b.SetVec(2*i, dx)

		// dy = (h10 sx + h11 sy + h12) / (h20 sx + h21 sy + 1)
		a.SetRow(2*i+1, []float64{0, 0, 0, sx, sy, 1, -sx*dy, -sy*dy})
		b.SetVec(2*i+1, dy)
	}

	var h mat.VecDense
	if err := h.SolveVec(a, b); err != nil {
		return Mat3{}, fmt.Errorf("homography solve: degenerate correspondences: %w", err)
	}

	return Mat3{
		h.AtVec(0), h.AtVec(1), h.AtVec(2),
		h.AtVec(3), h.AtVec(4), h.AtVec(5),
		h.AtVec(6), h.AtVec(7), 1,
	}, nil
}

// WEpsilon is the homogeneous-coordinate cutoff; a projected point
// whose w component is smaller than this in magnitude is reported as
// invalid rather than divided out.
const WEpsilon = 1e-6

// Project maps (x,y) through the homography and normalizes by w.
// ok is false for points at (or numerically near) the line at infinity.
func (m Mat3)Project(x, y float64) (px, py float64, ok bool) {
	w := m[6]*x + m[7]*y + m[8]
	if math.Abs(w) <= WEpsilon {
		return 0, 0, false
	}
	px = (m[0]*x + m[1]*y + m[2]) / w
	py = (m[3]*x + m[4]*y + m[5]) / w
	return px, py, true
}
