package svframe

import(
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameEmpty(t *testing.T) {
	var nilFrame *Frame
	assert.True(t, nilFrame.Empty())
	assert.True(t, (&Frame{}).Empty())
	assert.False(t, New(2, 2).Empty())
}

func TestFrameRoundTripThroughImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.SetRGBA(0, 0, color.RGBA{10, 20, 30, 255})
	img.SetRGBA(2, 1, color.RGBA{200, 150, 100, 255})

	f := FromImage(img)
	require.Equal(t, 3, f.W)
	require.Equal(t, 2, f.H)

	r, g, b := f.RGB(0, 0)
	assert.Equal(t, int16(10), r)
	assert.Equal(t, int16(20), g)
	assert.Equal(t, int16(30), b)

	out := f.ToImage()
	assert.Equal(t, color.RGBA{200, 150, 100, 255}, out.RGBAAt(2, 1))
}

func TestFrameScaleByClamps(t *testing.T) {
	f := New(1, 1)
	f.SetRGB(0, 0, 100, 200, 30000)

	f.ScaleBy(1.5)
	r, g, b := f.RGB(0, 0)
	assert.Equal(t, int16(150), r)
	assert.Equal(t, int16(300), g) // wide format holds >255 without wrapping
	assert.Equal(t, int16(32767), b)
}

func TestFrameScaleByRoundsNegativesSymmetrically(t *testing.T) {
	f := New(1, 1)
	f.SetRGB(0, 0, -8, -7, -30000)

	f.ScaleBy(1.3)
	r, g, b := f.RGB(0, 0)
	assert.Equal(t, int16(-10), r) // -10.4 rounds to -10, not -9
	assert.Equal(t, int16(-9), g)  // -9.1 rounds to -9
	assert.Equal(t, int16(-32768), b)
}

func TestFrameClone(t *testing.T) {
	f := New(2, 2)
	f.SetRGB(1, 1, 5, 6, 7)

	c := f.Clone()
	c.SetRGB(1, 1, 0, 0, 0)

	r, _, _ := f.RGB(1, 1)
	assert.Equal(t, int16(5), r, "clone must not alias")
}

func TestClamp8(t *testing.T) {
	assert.Equal(t, uint8(0), Clamp8(-5))
	assert.Equal(t, uint8(128), Clamp8(128))
	assert.Equal(t, uint8(255), Clamp8(300))
}
