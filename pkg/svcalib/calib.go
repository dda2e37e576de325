package svcalib

// Per-camera calibration. A camera is calibrated one of two ways:
// with an intrinsic matrix + rotation + shared focal length (the
// spherical projection path), or with four manually selected
// source/destination point correspondences (the planar homography
// path). Either way the calibration is immutable once loaded; the
// processing scale gets folded in via Scaled() before use.

import(
	"fmt"

	"github.com/GKT-github/surroundview/pkg/svmath"
)

type Mode int

const (
	ModeUnknown Mode = iota
	ModeSpherical
	ModeHomography
)

func (m Mode)String() string {
	switch m {
	case ModeSpherical:  return "spherical"
	case ModeHomography: return "homography"
	}
	return "unknown"
}

// DefaultRoles names the four fixed camera positions of a surround
// rig, in index order.
var DefaultRoles = []string{"Front", "Left", "Rear", "Right"}

type CameraCalibration struct {
	Name        string

	// Spherical mode
	FocalLength float64
	Intrinsic   svmath.Mat3
	Rotation    svmath.Mat3

	// Homography mode
	SrcPoints   []svmath.Point2
	DstPoints   []svmath.Point2
}

func (cc CameraCalibration)Mode() Mode {
	if len(cc.SrcPoints) > 0 {
		return ModeHomography
	}
	if cc.FocalLength > 0 {
		return ModeSpherical
	}
	return ModeUnknown
}

func (cc CameraCalibration)String() string {
	switch cc.Mode() {
	case ModeSpherical:
		return fmt.Sprintf("Calib[%s, spherical, f=%.1fpx]", cc.Name, cc.FocalLength)
	case ModeHomography:
		return fmt.Sprintf("Calib[%s, homography, %d pts]", cc.Name, len(cc.SrcPoints))
	}
	return fmt.Sprintf("Calib[%s, unknown]", cc.Name)
}

func (cc CameraCalibration)Validate() error {
	switch cc.Mode() {
	case ModeSpherical:
		if cc.Intrinsic == (svmath.Mat3{}) {
			return fmt.Errorf("camera %s: missing intrinsic matrix", cc.Name)
		}
		if cc.Rotation == (svmath.Mat3{}) {
			return fmt.Errorf("camera %s: missing rotation matrix", cc.Name)
		}
	case ModeHomography:
		if len(cc.SrcPoints) != 4 || len(cc.DstPoints) != 4 {
			return fmt.Errorf("camera %s: need exactly 4 src and 4 dst points, have %d/%d",
				cc.Name, len(cc.SrcPoints), len(cc.DstPoints))
		}
	default:
		return fmt.Errorf("camera %s: calibration specifies neither focal length nor points", cc.Name)
	}
	return nil
}

// Scaled folds the processing-scale factor into the calibration: the
// focal length and the intrinsic fx/fy/cx/cy for spherical mode, the
// source points for homography mode. The focal length must scale with
// the frame or the perspective comes out distorted. Destination
// points are already expressed in processing-scale coordinates.
func (cc CameraCalibration)Scaled(factor float64) CameraCalibration {
	out := cc

	switch cc.Mode() {
	case ModeSpherical:
		out.FocalLength = cc.FocalLength * factor
		out.Intrinsic = cc.Intrinsic
		out.Intrinsic[0] *= factor // fx
		out.Intrinsic[2] *= factor // cx
		out.Intrinsic[4] *= factor // fy
		out.Intrinsic[5] *= factor // cy

	case ModeHomography:
		out.SrcPoints = make([]svmath.Point2, len(cc.SrcPoints))
		for i, p := range cc.SrcPoints {
			out.SrcPoints[i] = svmath.Point2{X: p.X * factor, Y: p.Y * factor}
		}
	}

	return out
}
