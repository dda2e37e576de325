package svmath

// A FloatGrid is a single-channel grid of float64 values with the
// handful of operations the band blender needs: separable blur,
// half-size downsample, and 2x upsample. Stored flat with a stride.

import(
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"
)

type FloatGrid struct {
	stride int
	values []float64
}

func NewFloatGrid(w, h int) FloatGrid {
	return FloatGrid{
		stride: w,
		values: make([]float64, w*h),
	}
}

func (g *FloatGrid)NewFromThis() FloatGrid  { return NewFloatGrid(g.Dx(), g.Dy()) }
func (g *FloatGrid)Set(x, y int, v float64) { g.values[g.stride*y + x] = v }
func (g *FloatGrid)Get(x, y int) float64    { return g.values[g.stride*y + x] }
func (g *FloatGrid)Add(x, y int, v float64) { g.values[g.stride*y + x] += v }
func (g *FloatGrid)Dx() int                 { return g.stride }
func (g *FloatGrid)Dy() int                 { return len(g.values) / g.stride }

func (g *FloatGrid)Fill(v float64) {
	for i := range g.values {
		g.values[i] = v
	}
}

func (g *FloatGrid)Copy() FloatGrid {
	g2 := FloatGrid{stride: g.stride, values: make([]float64, len(g.values))}
	copy(g2.values, g.values)
	return g2
}

// AddGrid accumulates g2 into g, elementwise. Panics on size
// mismatch, which is always a programming error here.
func (g *FloatGrid)AddGrid(g2 *FloatGrid) {
	if len(g.values) != len(g2.values) || g.stride != g2.stride {
		panic(fmt.Sprintf("AddGrid size mismatch: %dx%d vs %dx%d", g.Dx(), g.Dy(), g2.Dx(), g2.Dy()))
	}
	for i := range g.values {
		g.values[i] += g2.values[i]
	}
}

// SubGrid returns g - g2, elementwise. Used to peel Laplacian bands
// off a Gaussian pyramid.
func (g *FloatGrid)SubGrid(g2 *FloatGrid) FloatGrid {
	if len(g.values) != len(g2.values) || g.stride != g2.stride {
		panic(fmt.Sprintf("SubGrid size mismatch: %dx%d vs %dx%d", g.Dx(), g.Dy(), g2.Dx(), g2.Dy()))
	}
	out := g.NewFromThis()
	for i := range g.values {
		out.values[i] = g.values[i] - g2.values[i]
	}
	return out
}

// GaussianBlur is a cheap separable [1 2 1]/4 blur, with the edge
// samples folded back in at the borders.
func (g *FloatGrid)GaussianBlur() FloatGrid {
	width := g.Dx()
	height := g.Dy()
	out := g.NewFromThis()
	tmp := g.NewFromThis()

	// X pass, into tmp
	for y:=0; y<height; y++ {
		for x:=1; x<width-1; x++ {
			t := 2.0*g.Get(x,y) + g.Get(x-1,y) + g.Get(x+1,y)
			tmp.Set(x, y, t/4.0)
		}
		tmp.Set(0, y,       (3.0*g.Get(0,      y) + g.Get(1,      y)) / 4.0)
		tmp.Set(width-1, y, (3.0*g.Get(width-1,y) + g.Get(width-2,y)) / 4.0)
	}

	// Y pass, tmp into out
	for x:=0; x<width; x++ {
		for y:=1; y<height-1; y++ {
			t := 2.0*tmp.Get(x,y) + tmp.Get(x,y-1) + tmp.Get(x,y+1)
			out.Set(x, y, t/4.0)
		}
		out.Set(x, 0,        (3.0*tmp.Get(x,       0) + tmp.Get(x,       1)) / 4.0)
		out.Set(x, height-1, (3.0*tmp.Get(x,height-1) + tmp.Get(x,height-2)) / 4.0)
	}

	return out
}

// DownSample returns a half-size grid, each value the average of the
// 2x2 block it came from.
func (g *FloatGrid)DownSample() FloatGrid {
	width := g.Dx() / 2
	height := g.Dy() / 2
	if width < 1  { width = 1 }
	if height < 1 { height = 1 }
	out := NewFloatGrid(width, height)

	for y:=0; y<height; y++ {
		for x:=0; x<width; x++ {
			p := g.Get(2*x, 2*y)
			p += g.Get(clampInt(2*x+1, g.Dx()-1), 2*y)
			p += g.Get(2*x, clampInt(2*y+1, g.Dy()-1))
			p += g.Get(clampInt(2*x+1, g.Dx()-1), clampInt(2*y+1, g.Dy()-1))
			out.Set(x, y, p/4.0)
		}
	}

	return out
}

// UpSampleInto fills dst, assumed ~2x the size, by replicating each
// value into a 2x2 block. Callers blur afterwards if they want the
// result smooth.
func (g *FloatGrid)UpSampleInto(dst *FloatGrid) {
	sw := g.Dx()
	sh := g.Dy()

	for y:=0; y<dst.Dy(); y++ {
		for x:=0; x<dst.Dx(); x++ {
			sx := clampInt(x/2, sw-1)
			sy := clampInt(y/2, sh-1)
			dst.Set(x, y, g.Get(sx, sy))
		}
	}
}

func clampInt(v, max int) int {
	if v > max { return max }
	if v < 0   { return 0 }
	return v
}

func (g *FloatGrid)Stats() string {
	min, max := g.values[0], g.values[0]
	for _, v := range g.values {
		if v > max { max = v }
		if v < min { min = v }
	}
	return fmt.Sprintf("grid[%dx%d, vals{%f,%f}]", g.Dx(), g.Dy(), min, max)
}

// ToImg writes the grid as an annotated grayscale PNG, normalized to
// the range of values present. Debugging only.
func (g *FloatGrid)ToImg(title, filename string) error {
	min, max := g.values[0], g.values[0]
	for _, v := range g.values {
		if v > max { max = v }
		if v < min { min = v }
	}
	span := max - min
	if span == 0 { span = 1 }

	img := image.NewGray(image.Rect(0, 0, g.Dx(), g.Dy()))
	for y:=0; y<g.Dy(); y++ {
		for x:=0; x<g.Dx(); x++ {
			img.SetGray(x, y, color.Gray{uint8(255.0 * (g.Get(x,y) - min) / span)})
		}
	}

	dc := gg.NewContextForImage(img)
	dc.SetRGB(1, 1, 1)
	dc.DrawString(title, 20, 20)
	return dc.SavePNG(filename)
}
