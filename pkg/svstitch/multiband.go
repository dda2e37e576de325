package svstitch

// Multi-band (Laplacian pyramid) blending: each fed frame is split
// into frequency bands, each band is alpha-blended with a matching
// blurred/downsampled copy of the mask, and the result is rebuilt by
// upsample-and-add from the coarsest band. Smooths wide overlap
// seams far better than flat alpha, at several times the cost; rigs
// whose overlap is a thin diagonal strip don't need it.

import(
	"fmt"
	"image"

	"github.com/GKT-github/surroundview/pkg/svframe"
	"github.com/GKT-github/surroundview/pkg/svmath"
)

type MultiBandBlender struct {
	Bands  int
	canvas image.Rectangle

	// Per level: three channel accumulators plus the weight sum.
	accBands [][3]svmath.FloatGrid
	accW     []svmath.FloatGrid
}

func (mb *MultiBandBlender)Name() string { return "multiband" }

func (mb *MultiBandBlender)Prepare(canvas image.Rectangle) {
	mb.canvas = canvas

	// Can't halve below 2px; clamp the band count to the canvas.
	bands := mb.Bands
	short := canvas.Dx()
	if canvas.Dy() < short {
		short = canvas.Dy()
	}
	for bands > 1 && short>>(bands) < 2 {
		bands--
	}
	mb.Bands = bands

	mb.accBands = make([][3]svmath.FloatGrid, bands+1)
	mb.accW = make([]svmath.FloatGrid, bands+1)
	w, h := canvas.Dx(), canvas.Dy()
	for l:=0; l<=bands; l++ {
		mb.accBands[l] = [3]svmath.FloatGrid{
			svmath.NewFloatGrid(w, h), svmath.NewFloatGrid(w, h), svmath.NewFloatGrid(w, h),
		}
		mb.accW[l] = svmath.NewFloatGrid(w, h)
		w = halve(w)
		h = halve(h)
	}
}

func halve(v int) int {
	v /= 2
	if v < 1 { return 1 }
	return v
}

func (mb *MultiBandBlender)Feed(frame *svframe.Frame, mask *BlendMask) error {
	if frame.W != mask.W || frame.H != mask.H {
		return fmt.Errorf("feed: frame %dx%d vs mask %dx%d: %w",
			frame.W, frame.H, mask.W, mask.H, ErrGeometry)
	}

	// Place onto canvas-sized grids; pyramid levels then line up
	// across cameras regardless of footprint placement.
	chans := [3]svmath.FloatGrid{
		svmath.NewFloatGrid(mb.canvas.Dx(), mb.canvas.Dy()),
		svmath.NewFloatGrid(mb.canvas.Dx(), mb.canvas.Dy()),
		svmath.NewFloatGrid(mb.canvas.Dx(), mb.canvas.Dy()),
	}
	weight := svmath.NewFloatGrid(mb.canvas.Dx(), mb.canvas.Dy())

	clip := mask.Footprint().Intersect(mb.canvas)
	for cy:=clip.Min.Y; cy<clip.Max.Y; cy++ {
		for cx:=clip.Min.X; cx<clip.Max.X; cx++ {
			lx := cx - mask.Corner.X
			ly := cy - mask.Corner.Y
			w := float64(mask.At(lx, ly)) / 255.0
			if w == 0 {
				continue
			}

			r, g, b := frame.RGB(lx, ly)
			x := cx - mb.canvas.Min.X
			y := cy - mb.canvas.Min.Y
			chans[0].Set(x, y, float64(r))
			chans[1].Set(x, y, float64(g))
			chans[2].Set(x, y, float64(b))
			weight.Set(x, y, w)
		}
	}

	wpyr := gaussPyramid(weight, mb.Bands)
	for c:=0; c<3; c++ {
		lap := laplacianPyramid(chans[c], mb.Bands)
		for l:=0; l<=mb.Bands; l++ {
			accumulateWeighted(&mb.accBands[l][c], &lap[l], &wpyr[l])
		}
	}
	for l:=0; l<=mb.Bands; l++ {
		mb.accW[l].AddGrid(&wpyr[l])
	}

	return nil
}

func (mb *MultiBandBlender)Blend() (*svframe.Frame, *BlendMask, error) {
	const eps = 1e-5

	out := svframe.New(mb.canvas.Dx(), mb.canvas.Dy())
	coverage := NewBlendMask(mb.canvas.Dx(), mb.canvas.Dy(), mb.canvas.Min)

	for c:=0; c<3; c++ {
		// Normalize each band, then reconstruct coarse-to-fine.
		levels := make([]svmath.FloatGrid, mb.Bands+1)
		for l:=0; l<=mb.Bands; l++ {
			levels[l] = normalizeBand(&mb.accBands[l][c], &mb.accW[l], eps)
		}

		cur := levels[mb.Bands]
		for l:=mb.Bands-1; l>=0; l-- {
			up := levels[l].NewFromThis()
			cur.UpSampleInto(&up)
			up = up.GaussianBlur()
			up.AddGrid(&levels[l])
			cur = up
		}

		for y:=0; y<out.H; y++ {
			for x:=0; x<out.W; x++ {
				v := int32(cur.Get(x, y) + 0.5)
				r, g, b := out.RGB(x, y)
				switch c {
				case 0: r = int16(v)
				case 1: g = int16(v)
				case 2: b = int16(v)
				}
				out.SetRGB(x, y, r, g, b)
			}
		}
	}

	for y:=0; y<out.H; y++ {
		for x:=0; x<out.W; x++ {
			if mb.accW[0].Get(x, y) > eps {
				coverage.Set(x, y, 255)
			} else {
				out.SetRGB(x, y, 0, 0, 0) // background fill
			}
		}
	}

	mb.Reset()

	return out, coverage, nil
}

func (mb *MultiBandBlender)Reset() {
	for l:=0; l<=mb.Bands; l++ {
		for c:=0; c<3; c++ {
			mb.accBands[l][c].Fill(0)
		}
		mb.accW[l].Fill(0)
	}
}

// gaussPyramid returns bands+1 levels, level 0 the input itself.
func gaussPyramid(g svmath.FloatGrid, bands int) []svmath.FloatGrid {
	pyr := make([]svmath.FloatGrid, bands+1)
	pyr[0] = g
	for l:=1; l<=bands; l++ {
		blurred := pyr[l-1].GaussianBlur()
		pyr[l] = blurred.DownSample()
	}
	return pyr
}

// laplacianPyramid peels frequency bands off the Gaussian pyramid;
// the last level keeps the coarse residual so reconstruction is
// lossless up to resampling error.
func laplacianPyramid(g svmath.FloatGrid, bands int) []svmath.FloatGrid {
	gauss := gaussPyramid(g, bands)
	lap := make([]svmath.FloatGrid, bands+1)

	for l:=0; l<bands; l++ {
		up := gauss[l].NewFromThis()
		gauss[l+1].UpSampleInto(&up)
		up = up.GaussianBlur()
		lap[l] = gauss[l].SubGrid(&up)
	}
	lap[bands] = gauss[bands]

	return lap
}

func accumulateWeighted(acc, vals, weights *svmath.FloatGrid) {
	for y:=0; y<acc.Dy(); y++ {
		for x:=0; x<acc.Dx(); x++ {
			acc.Add(x, y, vals.Get(x, y)*weights.Get(x, y))
		}
	}
}

func normalizeBand(acc, w *svmath.FloatGrid, eps float64) svmath.FloatGrid {
	out := acc.NewFromThis()
	for y:=0; y<out.Dy(); y++ {
		for x:=0; x<out.Dx(); x++ {
			wv := w.Get(x, y)
			if wv > eps {
				out.Set(x, y, acc.Get(x, y)/wv)
			}
		}
	}
	return out
}
