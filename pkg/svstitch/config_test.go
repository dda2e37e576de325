package svstitch

import(
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	c := NewConfig()

	assert.Equal(t, "spherical", c.Stitcher.Warper)
	assert.Equal(t, "multiband", c.Stitcher.Blender)
	assert.Equal(t, 0.65, c.Stitcher.ScaleFactor)
	assert.True(t, c.Stitcher.GainCompensation)
	assert.Equal(t, 30, c.Stitcher.GainUpdateInterval)
	assert.Equal(t, 100, c.Stitcher.SampleAttempts)
	assert.Equal(t, 4, c.Camera.Count)

	require.NoError(t, c.FinalizeConfiguration())
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "rig.yaml")
	contents := `
verbosity: 2
stitcher:
  warper: homography
  blender: alpha
  fadewidth: 25
camera:
  count: 4
  width: 640
  height: 400
`
	require.NoError(t, os.WriteFile(filename, []byte(contents), 0644))

	c, err := LoadConfig(filename)
	require.NoError(t, err)

	assert.Equal(t, 2, c.Verbosity)
	assert.Equal(t, "homography", c.Stitcher.Warper)
	assert.Equal(t, "alpha", c.Stitcher.Blender)
	assert.Equal(t, 25, c.Stitcher.FadeWidth)
	assert.Equal(t, 640, c.Camera.Width)
	assert.Equal(t, 0.65, c.Stitcher.ScaleFactor, "unset keys keep defaults")
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestFinalizeConfigurationRejectsBadStrategies(t *testing.T) {
	c := NewConfig()
	c.Stitcher.Warper = "cylindrical"
	assert.ErrorIs(t, c.FinalizeConfiguration(), ErrConfiguration)

	c = NewConfig()
	c.Stitcher.Blender = "feathered"
	assert.ErrorIs(t, c.FinalizeConfiguration(), ErrConfiguration)
}

func TestFinalizeConfigurationRejectsBadRanges(t *testing.T) {
	c := NewConfig()
	c.Stitcher.ScaleFactor = 0
	assert.ErrorIs(t, c.FinalizeConfiguration(), ErrConfiguration)

	c = NewConfig()
	c.Stitcher.ScaleFactor = 1.5
	assert.ErrorIs(t, c.FinalizeConfiguration(), ErrConfiguration)

	c = NewConfig()
	c.Camera.Count = 1
	assert.ErrorIs(t, c.FinalizeConfiguration(), ErrConfiguration)

	c = NewConfig()
	c.Stitcher.FadeWidth = -1
	assert.ErrorIs(t, c.FinalizeConfiguration(), ErrConfiguration)
}

func TestFinalizeConfigurationClampsSoftValues(t *testing.T) {
	c := NewConfig()
	c.Stitcher.BlendBands = 0
	c.Stitcher.GainUpdateInterval = 0
	c.Stitcher.SampleAttempts = -3

	require.NoError(t, c.FinalizeConfiguration())
	assert.Equal(t, 1, c.Stitcher.BlendBands)
	assert.Equal(t, 1, c.Stitcher.GainUpdateInterval)
	assert.Equal(t, 1, c.Stitcher.SampleAttempts)
}

func TestScaledInputSize(t *testing.T) {
	c := NewConfig()
	w, h := c.ScaledInputSize()
	assert.Equal(t, 832, w) // 1280 * 0.65
	assert.Equal(t, 520, h) // 800 * 0.65
}
