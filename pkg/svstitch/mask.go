package svstitch

// Blend weight masks. Full-coverage masks mark every pixel the warp
// actually reaches (spherical rigs, where footprints genuinely
// overlap and the blender arbitrates). Diagonal fade masks implement
// the fixed four-camera layout: weight drops smoothly inside a fade
// zone around the two canvas diagonals and is fully opaque elsewhere.
// The per-camera weights are geometry-derived on purpose - they are
// not normalized against each other.

import(
	"fmt"
	"image"
	"math"

	"github.com/GKT-github/surroundview/pkg/svmath"
)

type BlendMask struct {
	W, H    int
	Weights []uint8
	Corner  image.Point
}

func NewBlendMask(w, h int, corner image.Point) *BlendMask {
	return &BlendMask{W: w, H: h, Weights: make([]uint8, w*h), Corner: corner}
}

func (bm *BlendMask)At(x, y int) uint8     { return bm.Weights[y*bm.W+x] }
func (bm *BlendMask)Set(x, y int, v uint8) { bm.Weights[y*bm.W+x] = v }

func (bm *BlendMask)Footprint() image.Rectangle {
	return image.Rectangle{Min: bm.Corner, Max: bm.Corner.Add(image.Point{bm.W, bm.H})}
}

func (bm *BlendMask)String() string {
	return fmt.Sprintf("BlendMask[%dx%d at %v]", bm.W, bm.H, bm.Corner)
}

// FullCoverageMask derives the mask from the warp map itself: a pixel
// is opaque iff its backward mapping lands inside the source frame.
// Equivalent to warping an all-255 source mask with nearest-neighbour
// sampling and a zero border.
func FullCoverageMask(wm *WarpMap, srcW, srcH int) *BlendMask {
	bm := NewBlendMask(wm.Dx(), wm.Dy(), wm.Corner)

	for y:=0; y<bm.H; y++ {
		for x:=0; x<bm.W; x++ {
			sx := wm.XMap.Get(x, y)
			sy := wm.YMap.Get(x, y)
			if sx < 0 || sy < 0 {
				continue
			}
			if int(sx+0.5) >= srcW || int(sy+0.5) >= srcH {
				continue
			}
			bm.Set(x, y, 255)
		}
	}

	return bm
}

// DiagonalFadeMask grades one camera's rectangle of a fixed layout.
// The two seams are the full-canvas diagonals, crossing at the
// centre; weight ramps up with perpendicular distance from the nearer
// one, eased with 3t^2-2t^3, saturating at fadeWidth pixels. A zero
// fadeWidth means hard seams: everything opaque.
func DiagonalFadeMask(layout FixedLayout, camIdx, fadeWidth int) (*BlendMask, error) {
	if camIdx >= len(layout.Rects) {
		return nil, fmt.Errorf("camera %d has no layout rectangle: %w", camIdx, ErrConfiguration)
	}

	rect := layout.Rects[camIdx]
	bm := NewBlendMask(rect.Dx(), rect.Dy(), rect.Min)

	// Diagonal 1: y = s*x. Diagonal 2: y = -s*x + H.
	s := float64(layout.CanvasH) / float64(layout.CanvasW)
	norm := math.Sqrt(s*s + 1.0)

	for y:=0; y<bm.H; y++ {
		for x:=0; x<bm.W; x++ {
			cx := float64(x + rect.Min.X)
			cy := float64(y + rect.Min.Y)

			d1 := math.Abs(cy - s*cx) / norm
			d2 := math.Abs(cy + s*cx - float64(layout.CanvasH)) / norm
			d := math.Min(d1, d2)

			alpha := 1.0
			if fadeWidth > 0 && d < float64(fadeWidth) {
				alpha = svmath.Smoothstep(d / float64(fadeWidth))
			}
			bm.Set(x, y, uint8(255.0*alpha))
		}
	}

	return bm, nil
}
