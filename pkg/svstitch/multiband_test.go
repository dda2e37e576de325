package svstitch

import(
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GKT-github/surroundview/pkg/svframe"
)

func TestMultiBandClampsBandsToCanvas(t *testing.T) {
	mb := &MultiBandBlender{Bands: 5}
	mb.Prepare(image.Rect(0, 0, 16, 16))
	assert.Equal(t, 3, mb.Bands, "16px canvas can't support 5 halvings")

	mb2 := &MultiBandBlender{Bands: 5}
	mb2.Prepare(image.Rect(0, 0, 640, 800))
	assert.Equal(t, 5, mb2.Bands)
}

func TestMultiBandSingleFeedReconstructsConstant(t *testing.T) {
	mb := &MultiBandBlender{Bands: 3}
	mb.Prepare(image.Rect(0, 0, 16, 16))

	require.NoError(t, mb.Feed(constantFrame(16, 16, 120), opaqueMask(16, 16, image.Pt(0, 0))))
	out, coverage, err := mb.Blend()
	require.NoError(t, err)

	// Pyramid decomposition of a constant is lossless: every band of
	// a constant signal is zero except the residual.
	for y:=0; y<16; y++ {
		for x:=0; x<16; x++ {
			r, g, b := out.RGB(x, y)
			require.Equal(t, int16(120), r, "(%d,%d)", x, y)
			require.Equal(t, int16(120), g)
			require.Equal(t, int16(120), b)
			require.Equal(t, uint8(255), coverage.At(x, y))
		}
	}
}

func TestMultiBandTwoEqualFeedsAverage(t *testing.T) {
	mb := &MultiBandBlender{Bands: 2}
	mb.Prepare(image.Rect(0, 0, 16, 16))

	require.NoError(t, mb.Feed(constantFrame(16, 16, 100), opaqueMask(16, 16, image.Pt(0, 0))))
	require.NoError(t, mb.Feed(constantFrame(16, 16, 200), opaqueMask(16, 16, image.Pt(0, 0))))

	out, _, err := mb.Blend()
	require.NoError(t, err)
	r, _, _ := out.RGB(8, 8)
	assert.InDelta(t, 150, float64(r), 1.0)
}

func TestMultiBandBackgroundStaysBlack(t *testing.T) {
	mb := &MultiBandBlender{Bands: 2}
	mb.Prepare(image.Rect(0, 0, 16, 16))

	// Footprint covers only the top-left corner.
	require.NoError(t, mb.Feed(constantFrame(4, 4, 200), opaqueMask(4, 4, image.Pt(0, 0))))
	out, coverage, err := mb.Blend()
	require.NoError(t, err)

	r, g, b := out.RGB(15, 15)
	assert.Equal(t, int16(0), r+g+b)
	assert.Equal(t, uint8(0), coverage.At(15, 15))
	assert.Equal(t, uint8(255), coverage.At(0, 0))
}

func TestMultiBandRejectsMismatchedFrame(t *testing.T) {
	mb := &MultiBandBlender{Bands: 2}
	mb.Prepare(image.Rect(0, 0, 16, 16))

	err := mb.Feed(svframe.New(4, 4), opaqueMask(8, 8, image.Pt(0, 0)))
	assert.ErrorIs(t, err, ErrGeometry)
}

func TestMultiBandAbandonedCycleDoesNotLeak(t *testing.T) {
	mb := &MultiBandBlender{Bands: 2}
	mb.Prepare(image.Rect(0, 0, 16, 16))

	require.NoError(t, mb.Feed(constantFrame(16, 16, 100), opaqueMask(16, 16, image.Pt(0, 0))))
	err := mb.Feed(svframe.New(4, 4), opaqueMask(16, 16, image.Pt(0, 0)))
	require.ErrorIs(t, err, ErrGeometry)
	mb.Reset()

	require.NoError(t, mb.Feed(constantFrame(16, 16, 200), opaqueMask(16, 16, image.Pt(0, 0))))
	out, _, err := mb.Blend()
	require.NoError(t, err)
	r, _, _ := out.RGB(8, 8)
	assert.Equal(t, int16(200), r, "nothing of the abandoned cycle's 100s may remain")
}

func TestMultiBandResetsBetweenCycles(t *testing.T) {
	mb := &MultiBandBlender{Bands: 2}
	mb.Prepare(image.Rect(0, 0, 16, 16))

	require.NoError(t, mb.Feed(constantFrame(16, 16, 80), opaqueMask(16, 16, image.Pt(0, 0))))
	_, _, err := mb.Blend()
	require.NoError(t, err)

	require.NoError(t, mb.Feed(constantFrame(16, 16, 80), opaqueMask(16, 16, image.Pt(0, 0))))
	out, _, err := mb.Blend()
	require.NoError(t, err)
	r, _, _ := out.RGB(8, 8)
	assert.Equal(t, int16(80), r)
}
