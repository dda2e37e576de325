package svstitch

// Compositing. A Blender accumulates each camera's masked, warped,
// gain-adjusted frame onto the shared canvas and normalizes.
// Accumulation happens in wide integer/float buffers owned
// exclusively by the blender: feeds are serialized by the pipeline
// after the parallel per-camera stage, never concurrent.

import(
	"fmt"
	"image"

	"github.com/GKT-github/surroundview/pkg/svframe"
)

type Blender interface {
	Name() string

	// Prepare allocates accumulation buffers for the canvas. Called
	// once at init; Blend rezeroes them for the next cycle.
	Prepare(canvas image.Rectangle)

	// Feed accumulates one camera's contribution at its placement.
	// Must be called exactly once per camera per cycle.
	Feed(frame *svframe.Frame, mask *BlendMask) error

	// Blend normalizes the accumulators into a composite plus a
	// coverage mask (255 where any camera contributed), and resets
	// for the next cycle.
	Blend() (*svframe.Frame, *BlendMask, error)

	// Reset discards any contributions fed so far in the current
	// cycle, so an abandoned cycle can't leak into the next one.
	Reset()
}

func NewBlender(name string, bands int) (Blender, error) {
	switch name {
	case "alpha":
		return &AlphaBlender{}, nil
	case "multiband":
		return &MultiBandBlender{Bands: bands}, nil
	}
	return nil, fmt.Errorf("no blender strategy named '%s': %w", name, ErrConfiguration)
}

// AlphaBlender is the cheap real-time strategy: out = sum(pix*w) /
// sum(w). With int32 accumulators there's headroom for 255 weight x
// 255 intensity x far more cameras than a rig will ever have.
type AlphaBlender struct {
	canvas image.Rectangle
	accR   []int32
	accG   []int32
	accB   []int32
	accW   []int32
}

func (ab *AlphaBlender)Name() string { return "alpha" }

func (ab *AlphaBlender)Prepare(canvas image.Rectangle) {
	ab.canvas = canvas
	n := canvas.Dx() * canvas.Dy()
	ab.accR = make([]int32, n)
	ab.accG = make([]int32, n)
	ab.accB = make([]int32, n)
	ab.accW = make([]int32, n)
}

func (ab *AlphaBlender)Feed(frame *svframe.Frame, mask *BlendMask) error {
	if frame.W != mask.W || frame.H != mask.H {
		return fmt.Errorf("feed: frame %dx%d vs mask %dx%d: %w",
			frame.W, frame.H, mask.W, mask.H, ErrGeometry)
	}

	cw := ab.canvas.Dx()
	clip := mask.Footprint().Intersect(ab.canvas)

	for cy:=clip.Min.Y; cy<clip.Max.Y; cy++ {
		for cx:=clip.Min.X; cx<clip.Max.X; cx++ {
			lx := cx - mask.Corner.X
			ly := cy - mask.Corner.Y
			w := int32(mask.At(lx, ly))
			if w == 0 {
				continue
			}

			r, g, b := frame.RGB(lx, ly)
			i := (cy-ab.canvas.Min.Y)*cw + (cx - ab.canvas.Min.X)
			ab.accR[i] += int32(r) * w
			ab.accG[i] += int32(g) * w
			ab.accB[i] += int32(b) * w
			ab.accW[i] += w
		}
	}

	return nil
}

func (ab *AlphaBlender)Reset() {
	for i := range ab.accW {
		ab.accR[i], ab.accG[i], ab.accB[i], ab.accW[i] = 0, 0, 0, 0
	}
}

func (ab *AlphaBlender)Blend() (*svframe.Frame, *BlendMask, error) {
	out := svframe.New(ab.canvas.Dx(), ab.canvas.Dy())
	coverage := NewBlendMask(ab.canvas.Dx(), ab.canvas.Dy(), ab.canvas.Min)

	for y:=0; y<out.H; y++ {
		for x:=0; x<out.W; x++ {
			i := y*out.W + x
			w := ab.accW[i]
			if w == 0 {
				continue // background fill stays 0,0,0
			}
			out.SetRGB(x, y,
				int16((ab.accR[i]+w/2)/w),
				int16((ab.accG[i]+w/2)/w),
				int16((ab.accB[i]+w/2)/w))
			coverage.Set(x, y, 255)

			ab.accR[i], ab.accG[i], ab.accB[i], ab.accW[i] = 0, 0, 0, 0
		}
	}

	return out, coverage, nil
}
