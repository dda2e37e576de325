package svcalib

import(
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/GKT-github/surroundview/pkg/svmath"
)

func sphericalCal(name string) CameraCalibration {
	return CameraCalibration{
		Name:        name,
		FocalLength: 369.5,
		Intrinsic: svmath.Mat3{
			369.5, 0, 640,
			0, 369.5, 400,
			0, 0, 1,
		},
		Rotation: svmath.Identity3(),
	}
}

func homographyCal(name string) CameraCalibration {
	return CameraCalibration{
		Name:      name,
		SrcPoints: []svmath.Point2{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 0, Y: 100}, {X: 100, Y: 100}},
		DstPoints: []svmath.Point2{{X: 0, Y: 0}, {X: 50, Y: 0}, {X: 0, Y: 50}, {X: 50, Y: 50}},
	}
}

func TestMode(t *testing.T) {
	assert.Equal(t, ModeSpherical, sphericalCal("Front").Mode())
	assert.Equal(t, ModeHomography, homographyCal("Front").Mode())
	assert.Equal(t, ModeUnknown, CameraCalibration{Name: "x"}.Mode())
}

func TestValidate(t *testing.T) {
	assert.NoError(t, sphericalCal("Front").Validate())
	assert.NoError(t, homographyCal("Front").Validate())

	bad := sphericalCal("Front")
	bad.Intrinsic = svmath.Mat3{}
	assert.Error(t, bad.Validate())

	bad2 := homographyCal("Front")
	bad2.SrcPoints = bad2.SrcPoints[:3]
	assert.Error(t, bad2.Validate())

	assert.Error(t, CameraCalibration{Name: "x"}.Validate())
}

func TestScaledSpherical(t *testing.T) {
	cal := sphericalCal("Front").Scaled(0.65)

	assert.InDelta(t, 369.5*0.65, cal.FocalLength, 1e-9)
	assert.InDelta(t, 369.5*0.65, cal.Intrinsic[0], 1e-9) // fx
	assert.InDelta(t, 640*0.65, cal.Intrinsic[2], 1e-9)   // cx
	assert.InDelta(t, 369.5*0.65, cal.Intrinsic[4], 1e-9) // fy
	assert.InDelta(t, 400*0.65, cal.Intrinsic[5], 1e-9)   // cy
	assert.Equal(t, 1.0, cal.Intrinsic[8], "bottom row untouched")
	assert.Equal(t, svmath.Identity3(), cal.Rotation, "rotation untouched")
}

func TestScaledHomography(t *testing.T) {
	orig := homographyCal("Front")
	cal := orig.Scaled(0.5)

	assert.Equal(t, svmath.Point2{X: 50, Y: 0}, cal.SrcPoints[1])
	assert.Equal(t, orig.DstPoints, cal.DstPoints, "dst already at processing scale")
	assert.Equal(t, svmath.Point2{X: 100, Y: 0}, orig.SrcPoints[1], "original untouched")
}
