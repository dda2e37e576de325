package svframe

// The working pixel format for the stitching core. Frames are
// interleaved RGB with signed 16-bit channels: wide enough that gain
// multiplication and weighted blend accumulation can't overflow the
// 8-bit display range mid-pipeline. Conversion back to 8 bits happens
// only at the edges.

import(
	"fmt"
	"image"
	"image/color"
	"math"
)

type Frame struct {
	W, H int
	Pix  []int16 // interleaved R,G,B; len == W*H*3
}

func New(w, h int) *Frame {
	return &Frame{W: w, H: h, Pix: make([]int16, w*h*3)}
}

// Empty reports whether this frame carries no image data. Capture
// collaborators hand these over when a camera misses a cycle.
func (f *Frame)Empty() bool {
	return f == nil || f.W == 0 || f.H == 0 || len(f.Pix) == 0
}

func (f *Frame)String() string {
	if f.Empty() {
		return "Frame[empty]"
	}
	return fmt.Sprintf("Frame[%dx%d]", f.W, f.H)
}

func (f *Frame)RGB(x, y int) (int16, int16, int16) {
	i := (y*f.W + x) * 3
	return f.Pix[i], f.Pix[i+1], f.Pix[i+2]
}

func (f *Frame)SetRGB(x, y int, r, g, b int16) {
	i := (y*f.W + x) * 3
	f.Pix[i], f.Pix[i+1], f.Pix[i+2] = r, g, b
}

func (f *Frame)Clone() *Frame {
	if f.Empty() {
		return &Frame{}
	}
	out := New(f.W, f.H)
	copy(out.Pix, f.Pix)
	return out
}

// ScaleBy multiplies every channel by gain, clamping into the int16
// range. Used by gain compensation, where gains sit near 1.0.
func (f *Frame)ScaleBy(gain float64) {
	for i := range f.Pix {
		v := float64(f.Pix[i]) * gain
		f.Pix[i] = clamp16(v)
	}
}

func clamp16(v float64) int16 {
	if v > 32767  { return 32767 }
	if v < -32768 { return -32768 }
	return int16(math.Round(v))
}

// Clamp8 squashes a wide working value back into display range.
func Clamp8(v int32) uint8 {
	if v < 0   { return 0 }
	if v > 255 { return 255 }
	return uint8(v)
}

// FromImage converts any image.Image into the working format, mapping
// each channel into 0..255.
func FromImage(img image.Image) *Frame {
	b := img.Bounds()
	f := New(b.Dx(), b.Dy())
	for y:=0; y<f.H; y++ {
		for x:=0; x<f.W; x++ {
			r, g, b2, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			f.SetRGB(x, y, int16(r>>8), int16(g>>8), int16(b2>>8))
		}
	}
	return f
}

// ToImage converts back to 8-bit RGBA, clamping anything the pipeline
// pushed outside display range.
func (f *Frame)ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.W, f.H))
	for y:=0; y<f.H; y++ {
		for x:=0; x<f.W; x++ {
			r, g, b := f.RGB(x, y)
			img.SetRGBA(x, y, color.RGBA{
				Clamp8(int32(r)), Clamp8(int32(g)), Clamp8(int32(b)), 0xff,
			})
		}
	}
	return img
}
