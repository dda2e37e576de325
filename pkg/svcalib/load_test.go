package svcalib

import(
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GKT-github/surroundview/pkg/svmath"
)

func TestCamparamRoundTrip(t *testing.T) {
	dir := t.TempDir()

	for i:=0; i<4; i++ {
		cal := sphericalCal(DefaultRoles[i])
		cal.Rotation[0] = float64(i) // make each file distinct
		require.NoError(t, SaveCamparam(filepath.Join(dir, CamparamFilename(i)), cal))
	}

	cals, err := LoadFolder(dir, 4)
	require.NoError(t, err)
	require.Len(t, cals, 4)

	assert.Equal(t, "Front", cals[0].Name)
	assert.Equal(t, "Right", cals[3].Name)
	assert.Equal(t, 369.5, cals[2].FocalLength)
	assert.Equal(t, 2.0, cals[2].Rotation[0])
	assert.Equal(t, ModeSpherical, cals[1].Mode())
}

func TestLoadFolderMissingFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, SaveCamparam(filepath.Join(dir, CamparamFilename(0)), sphericalCal("Front")))

	_, err := LoadFolder(dir, 4)
	assert.Error(t, err, "a partial rig can't be stitched")
}

func TestLoadFolderFillsDefaultRoles(t *testing.T) {
	dir := t.TempDir()
	cal := sphericalCal("")
	require.NoError(t, SaveCamparam(filepath.Join(dir, CamparamFilename(0)), cal))
	require.NoError(t, SaveCamparam(filepath.Join(dir, CamparamFilename(1)), cal))

	cals, err := LoadFolder(dir, 2)
	require.NoError(t, err)
	assert.Equal(t, "Front", cals[0].Name)
	assert.Equal(t, "Left", cals[1].Name)
}

func TestLoadCamparamMalformed(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, CamparamFilename(0))
	require.NoError(t, os.WriteFile(filename, []byte("intrisic: [[1,2],[3]]"), 0644))

	_, err := loadCamparam(filename)
	assert.Error(t, err)
}

func TestHomographyPointsRoundTrip(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "custom_homography_points.yaml")

	in := []CameraCalibration{
		homographyCal("Front"), homographyCal("Left"),
		homographyCal("Rear"), homographyCal("Right"),
	}
	require.NoError(t, SaveHomographyPoints(filename, in, 0.65))

	out, scale, err := LoadHomographyPoints(filename, 4)
	require.NoError(t, err)
	assert.Equal(t, 0.65, scale)
	assert.Equal(t, "Rear", out[2].Name)
	assert.Equal(t, in[1].SrcPoints, out[1].SrcPoints)
	assert.Equal(t, in[3].DstPoints, out[3].DstPoints)
}

func TestHomographyPointsCameraCountMismatch(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "pts.yaml")
	require.NoError(t, SaveHomographyPoints(filename, []CameraCalibration{homographyCal("Front")}, 1.0))

	_, _, err := LoadHomographyPoints(filename, 4)
	assert.Error(t, err)
}

func TestOutputCropRoundTrip(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "corner_warppts.yaml")

	in := OutputCrop{
		Width: 1920, Height: 1080,
		TL: svmath.Point2{X: 10, Y: 20},
		TR: svmath.Point2{X: 1900, Y: 25},
		BL: svmath.Point2{X: 5, Y: 1060},
		BR: svmath.Point2{X: 1910, Y: 1070},
	}
	require.NoError(t, SaveOutputCrop(filename, in))

	out, found, err := LoadOutputCrop(filename)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, in, out)
}

func TestOutputCropMissingIsNotAnError(t *testing.T) {
	_, found, err := LoadOutputCrop(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.NoError(t, err)
	assert.False(t, found)
}
