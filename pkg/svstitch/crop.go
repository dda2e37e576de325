package svstitch

// Optional output crop: a four-point perspective remap from the
// blended canvas to the display resolution, so the display layer gets
// exactly the region the installer marked out. Built once at init
// from the corner document; absent document means no crop.

import(
	"fmt"

	"github.com/GKT-github/surroundview/pkg/svcalib"
	"github.com/GKT-github/surroundview/pkg/svframe"
	"github.com/GKT-github/surroundview/pkg/svmath"
)

type outputCrop struct {
	xmap svmath.FloatGrid
	ymap svmath.FloatGrid
}

func newOutputCrop(crop svcalib.OutputCrop) (*outputCrop, error) {
	// Output rectangle corners -> marked canvas corners is already
	// the backward direction, so the solved transform fills the map
	// without inversion.
	dst := [4]svmath.Point2{
		{X: 0, Y: 0},
		{X: float64(crop.Width), Y: 0},
		{X: 0, Y: float64(crop.Height)},
		{X: float64(crop.Width), Y: float64(crop.Height)},
	}
	src := [4]svmath.Point2{crop.TL, crop.TR, crop.BL, crop.BR}

	h, err := svmath.SolveHomography(dst, src)
	if err != nil {
		return nil, fmt.Errorf("output crop corners degenerate: %v: %w", err, ErrConfiguration)
	}

	oc := &outputCrop{
		xmap: svmath.NewFloatGrid(crop.Width, crop.Height),
		ymap: svmath.NewFloatGrid(crop.Width, crop.Height),
	}
	for y:=0; y<crop.Height; y++ {
		for x:=0; x<crop.Width; x++ {
			sx, sy, ok := h.Project(float64(x), float64(y))
			if !ok {
				oc.xmap.Set(x, y, -1)
				oc.ymap.Set(x, y, -1)
				continue
			}
			oc.xmap.Set(x, y, sx)
			oc.ymap.Set(x, y, sy)
		}
	}

	return oc, nil
}

func (oc *outputCrop)apply(composite *svframe.Frame) *svframe.Frame {
	return composite.Remap(&oc.xmap, &oc.ymap)
}
