package svstitch

import(
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GKT-github/surroundview/pkg/svmath"
)

func TestFullCoverageMask(t *testing.T) {
	wm := &WarpMap{
		XMap:   svmath.NewFloatGrid(3, 3),
		YMap:   svmath.NewFloatGrid(3, 3),
		Corner: image.Pt(5, 5),
	}
	for y:=0; y<3; y++ {
		for x:=0; x<3; x++ {
			wm.XMap.Set(x, y, float64(x))
			wm.YMap.Set(x, y, float64(y))
		}
	}
	wm.XMap.Set(1, 1, -1) // sentinel
	wm.YMap.Set(1, 1, -1)
	wm.XMap.Set(2, 2, 50) // out of source bounds
	wm.YMap.Set(2, 2, 50)

	bm := FullCoverageMask(wm, 10, 10)
	assert.Equal(t, image.Pt(5, 5), bm.Corner)
	assert.Equal(t, uint8(255), bm.At(0, 0))
	assert.Equal(t, uint8(0), bm.At(1, 1), "sentinel entries are transparent")
	assert.Equal(t, uint8(0), bm.At(2, 2), "out-of-source entries are transparent")
}

func TestDiagonalFadeMaskZeroWidthIsOpaque(t *testing.T) {
	layout := NewQuadrantLayout(64, 64)

	for cam:=0; cam<4; cam++ {
		bm, err := DiagonalFadeMask(layout, cam, 0)
		require.NoError(t, err)
		for y:=0; y<bm.H; y++ {
			for x:=0; x<bm.W; x++ {
				require.Equal(t, uint8(255), bm.At(x, y), "cam %d at (%d,%d)", cam, x, y)
			}
		}
	}
}

func TestDiagonalFadeMaskSeamsAndInterior(t *testing.T) {
	layout := NewQuadrantLayout(64, 64)
	bm, err := DiagonalFadeMask(layout, 0, 8) // front, top-left quadrant
	require.NoError(t, err)

	// Canvas (0,0) lies on the main diagonal: fully transparent.
	assert.Equal(t, uint8(0), bm.At(0, 0))

	// Far from both diagonals (top edge, middle of the quadrant) the
	// weight saturates.
	assert.Equal(t, uint8(255), bm.At(16, 0))

	// Weight never decreases walking away from the diagonal along the
	// top edge.
	prev := uint8(0)
	for x:=0; x<=16; x++ {
		w := bm.At(x, 0)
		require.GreaterOrEqual(t, w, prev, "x=%d", x)
		prev = w
	}
}

func TestDiagonalFadeMaskTransparentOnSeams(t *testing.T) {
	layout := NewQuadrantLayout(64, 64)

	front, err := DiagonalFadeMask(layout, 0, 8)
	require.NoError(t, err)
	rear, err := DiagonalFadeMask(layout, 2, 8)
	require.NoError(t, err)
	left, err := DiagonalFadeMask(layout, 1, 8)
	require.NoError(t, err)
	right, err := DiagonalFadeMask(layout, 3, 8)
	require.NoError(t, err)

	// Front and rear quadrants contain the main diagonal cy = cx;
	// pixels on it carry zero weight.
	for k:=0; k<32; k++ {
		require.Equal(t, uint8(0), front.At(k, k), "front seam pixel %d", k)
		require.Equal(t, uint8(0), rear.At(k, k), "rear seam pixel %d", k)
	}

	// Left and right contain the anti-diagonal cy = -cx + 64.
	for x:=1; x<32; x++ {
		require.Equal(t, uint8(0), left.At(x, 32-x), "left seam pixel %d", x)
		require.Equal(t, uint8(0), right.At(x, 32-x), "right seam pixel %d", x)
	}

	// Each camera still saturates away from the seams.
	for _, bm := range []*BlendMask{front, rear, left, right} {
		saturated := false
		for y:=0; y<bm.H && !saturated; y++ {
			for x:=0; x<bm.W; x++ {
				if bm.At(x, y) == 255 {
					saturated = true
					break
				}
			}
		}
		assert.True(t, saturated, "%s never saturates", bm)
	}
}

func TestDiagonalFadeMaskRejectsMissingRect(t *testing.T) {
	_, err := DiagonalFadeMask(NewQuadrantLayout(64, 64), 4, 8)
	assert.ErrorIs(t, err, ErrConfiguration)
}
