package main

// svcalgen writes a starter set of rig calibration files: one
// Camparam<i>.yaml per camera (front/left/rear/right at 90 degree yaw
// steps, all tilted down by the same pitch), plus a full-frame output
// crop document. Real rigs refine these by hand; this gets a bench
// setup stitching immediately.

import(
	"flag"
	"log"
	"math"
	"path/filepath"

	"github.com/GKT-github/surroundview/pkg/svcalib"
	"github.com/GKT-github/surroundview/pkg/svmath"
)

var(
	fFolder string
	fWidth int
	fHeight int
	fFov float64
	fPitch float64
	fCropWidth int
	fCropHeight int
)

func init() {
	flag.StringVar(&fFolder, "folder", ".", "where to write the calibration files")
	flag.IntVar(&fWidth, "width", 1280, "camera frame width, px")
	flag.IntVar(&fHeight, "height", 800, "camera frame height, px")
	flag.Float64Var(&fFov, "fov", 120, "horizontal field of view, degrees")
	flag.Float64Var(&fPitch, "pitch", 20, "downward camera tilt, degrees")
	flag.IntVar(&fCropWidth, "cropwidth", 1920, "output crop width, px")
	flag.IntVar(&fCropHeight, "cropheight", 1080, "output crop height, px")
	flag.Parse()
}

func main() {
	focal := focalFromFov(fFov, fWidth)
	cx := float64(fWidth) / 2
	cy := float64(fHeight) / 2

	log.Printf("rig: %dx%d frames, fov %.0f deg -> focal %.2f px", fWidth, fHeight, fFov, focal)

	for i, name := range svcalib.DefaultRoles {
		yaw := float64(i) * 90 // front, left, rear, right

		cal := svcalib.CameraCalibration{
			Name:        name,
			FocalLength: focal,
			Intrinsic: svmath.Mat3{
				focal, 0, cx,
				0, focal, cy,
				0, 0, 1,
			},
			Rotation: eulerRotation(yaw, fPitch, 0),
		}

		filename := filepath.Join(fFolder, svcalib.CamparamFilename(i))
		if err := svcalib.SaveCamparam(filename, cal); err != nil {
			log.Fatal(err)
		}
		log.Printf("wrote %s (%s, yaw %.0f, pitch %.0f)", filename, name, yaw, fPitch)
	}

	crop := svcalib.OutputCrop{
		Width:  fCropWidth,
		Height: fCropHeight,
		TL:     svmath.Point2{X: 0, Y: 0},
		TR:     svmath.Point2{X: float64(fCropWidth), Y: 0},
		BL:     svmath.Point2{X: 0, Y: float64(fCropHeight)},
		BR:     svmath.Point2{X: float64(fCropWidth), Y: float64(fCropHeight)},
	}
	filename := filepath.Join(fFolder, "corner_warppts.yaml")
	if err := svcalib.SaveOutputCrop(filename, crop); err != nil {
		log.Fatal(err)
	}
	log.Printf("wrote %s (full-frame %dx%d crop)", filename, fCropWidth, fCropHeight)
}

func focalFromFov(fovDeg float64, width int) float64 {
	fov := fovDeg * math.Pi / 180
	return float64(width) / (2 * math.Tan(fov/2))
}

// eulerRotation builds Rz(yaw)*Ry(roll)*Rx(pitch). Yaw 0 looks
// forward; positive pitch tilts down.
func eulerRotation(yawDeg, pitchDeg, rollDeg float64) svmath.Mat3 {
	yaw := yawDeg * math.Pi / 180
	pitch := pitchDeg * math.Pi / 180
	roll := rollDeg * math.Pi / 180

	rz := svmath.Mat3{
		math.Cos(yaw), -math.Sin(yaw), 0,
		math.Sin(yaw), math.Cos(yaw), 0,
		0, 0, 1,
	}
	rx := svmath.Mat3{
		1, 0, 0,
		0, math.Cos(pitch), -math.Sin(pitch),
		0, math.Sin(pitch), math.Cos(pitch),
	}
	ry := svmath.Mat3{
		math.Cos(roll), 0, math.Sin(roll),
		0, 1, 0,
		-math.Sin(roll), 0, math.Cos(roll),
	}

	return rz.Mult(ry).Mult(rx)
}
