package svstitch

// Warp maps are the heart of the stitcher: one backward mapping table
// per camera, built once at init, telling every stitch cycle where
// each output pixel of that camera's footprint samples from. Two
// interchangeable geometries build them - planar homography from
// four-point manual calibration (here), and the pinhole-on-a-sphere
// projection from intrinsic calibration (spherical.go).

import(
	"fmt"
	"image"

	"github.com/GKT-github/surroundview/pkg/svcalib"
	"github.com/GKT-github/surroundview/pkg/svmath"
)

// A WarpMap holds, for every pixel of a camera's warped footprint,
// the source pixel coordinate to sample. Coordinates < 0 are the
// sentinel for "no source pixel". Corner is where the footprint sits
// on the shared canvas.
type WarpMap struct {
	XMap   svmath.FloatGrid
	YMap   svmath.FloatGrid
	Corner image.Point
}

func (wm *WarpMap)Dx() int { return wm.XMap.Dx() }
func (wm *WarpMap)Dy() int { return wm.XMap.Dy() }

func (wm *WarpMap)Footprint() image.Rectangle {
	return image.Rectangle{
		Min: wm.Corner,
		Max: wm.Corner.Add(image.Point{wm.Dx(), wm.Dy()}),
	}
}

func (wm *WarpMap)String() string {
	return fmt.Sprintf("WarpMap[%dx%d at %v]", wm.Dx(), wm.Dy(), wm.Corner)
}

// A WarpBuilder turns one camera's calibration into its warp map.
// The calibration is expected to already be at processing scale.
type WarpBuilder interface {
	Name() string

	// Build produces the map for one camera. srcW/srcH is the scaled
	// input frame size the map will sample from.
	Build(cal svcalib.CameraCalibration, camIdx, srcW, srcH int) (*WarpMap, error)
}

// FixedLayout tiles a fixed canvas into one rectangle per camera. The
// four-camera default splits the canvas into quadrants; the two
// diagonal seams of the fade masks run through the quadrant corners.
type FixedLayout struct {
	CanvasW int
	CanvasH int
	Rects   []image.Rectangle
}

func NewQuadrantLayout(canvasW, canvasH int) FixedLayout {
	hw, hh := canvasW/2, canvasH/2
	return FixedLayout{
		CanvasW: canvasW,
		CanvasH: canvasH,
		Rects: []image.Rectangle{
			image.Rect(0, 0, hw, hh),             // Front, top-left
			image.Rect(0, hh, hw, canvasH),       // Left, bottom-left
			image.Rect(hw, hh, canvasW, canvasH), // Rear, bottom-right
			image.Rect(hw, 0, canvasW, hh),       // Right, top-right
		},
	}
}

// HomographyWarpBuilder builds maps from four-point manual
// correspondences. Destination points live in footprint-local
// coordinates; source points are in scaled input coordinates.
type HomographyWarpBuilder struct {
	Layout FixedLayout
}

func (b HomographyWarpBuilder)Name() string { return "homography" }

func (b HomographyWarpBuilder)Build(cal svcalib.CameraCalibration, camIdx, srcW, srcH int) (*WarpMap, error) {
	if cal.Mode() != svcalib.ModeHomography {
		return nil, fmt.Errorf("camera %s: %s calibration fed to homography warper: %w",
			cal.Name, cal.Mode(), ErrConfiguration)
	}
	if camIdx >= len(b.Layout.Rects) {
		return nil, fmt.Errorf("camera %d has no layout rectangle: %w", camIdx, ErrConfiguration)
	}
	if err := cal.Validate(); err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrConfiguration)
	}

	// Solving dst->src directly gives us the backward map without a
	// separate inversion step.
	var dst, src [4]svmath.Point2
	copy(dst[:], cal.DstPoints)
	copy(src[:], cal.SrcPoints)
	h, err := svmath.SolveHomography(dst, src)
	if err != nil {
		return nil, fmt.Errorf("camera %s: %v: %w", cal.Name, err, ErrConfiguration)
	}

	rect := b.Layout.Rects[camIdx]
	wm := &WarpMap{
		XMap:   svmath.NewFloatGrid(rect.Dx(), rect.Dy()),
		YMap:   svmath.NewFloatGrid(rect.Dx(), rect.Dy()),
		Corner: rect.Min,
	}

	for y:=0; y<rect.Dy(); y++ {
		for x:=0; x<rect.Dx(); x++ {
			sx, sy, ok := h.Project(float64(x), float64(y))
			if !ok {
				// Near the line at infinity: sentinel, never a
				// divide-by-almost-zero.
				wm.XMap.Set(x, y, -1)
				wm.YMap.Set(x, y, -1)
				continue
			}
			wm.XMap.Set(x, y, sx)
			wm.YMap.Set(x, y, sy)
		}
	}

	return wm, nil
}
