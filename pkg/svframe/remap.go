package svframe

// Backward-map resampling: for each output pixel, the warp map names
// the source coordinate to sample. Bilinear interpolation, constant
// (black) border for anything the map marks invalid or that falls
// outside the source.

import(
	"math"

	"github.com/GKT-github/surroundview/pkg/svmath"
)

// Remap samples f through the given coordinate maps. The output frame
// has the maps' dimensions. Sentinel (negative) coordinates and
// out-of-bounds samples produce the border color (0,0,0).
func (f *Frame)Remap(xmap, ymap *svmath.FloatGrid) *Frame {
	out := New(xmap.Dx(), xmap.Dy())

	for y:=0; y<out.H; y++ {
		for x:=0; x<out.W; x++ {
			sx := xmap.Get(x, y)
			sy := ymap.Get(x, y)
			if sx < 0 || sy < 0 {
				continue // sentinel: no source pixel, leave border color
			}
			r, g, b, ok := f.sampleBilinear(sx, sy)
			if !ok {
				continue
			}
			out.SetRGB(x, y, r, g, b)
		}
	}

	return out
}

func (f *Frame)sampleBilinear(sx, sy float64) (int16, int16, int16, bool) {
	x0 := int(math.Floor(sx))
	y0 := int(math.Floor(sy))
	if x0 < 0 || y0 < 0 || x0 >= f.W || y0 >= f.H {
		return 0, 0, 0, false
	}

	x1 := x0 + 1
	y1 := y0 + 1
	if x1 >= f.W { x1 = f.W - 1 }
	if y1 >= f.H { y1 = f.H - 1 }

	fx := sx - float64(x0)
	fy := sy - float64(y0)

	r00, g00, b00 := f.RGB(x0, y0)
	r10, g10, b10 := f.RGB(x1, y0)
	r01, g01, b01 := f.RGB(x0, y1)
	r11, g11, b11 := f.RGB(x1, y1)

	lerp2 := func(c00, c10, c01, c11 int16) int16 {
		top := svmath.Lerp(float64(c00), float64(c10), fx)
		bot := svmath.Lerp(float64(c01), float64(c11), fx)
		return int16(svmath.Lerp(top, bot, fy) + 0.5)
	}

	return lerp2(r00, r10, r01, r11), lerp2(g00, g10, g01, g11), lerp2(b00, b10, b01, b11), true
}
