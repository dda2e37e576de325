package svstitch

// The spherical projection: each camera is a pinhole on a common
// sphere whose radius is the (scale-adjusted) shared focal length.
// Forward projection of the source border finds the footprint on the
// warped canvas; backward projection fills the mapping table.

import(
	"fmt"
	"image"
	"math"

	"github.com/GKT-github/surroundview/pkg/svcalib"
	"github.com/GKT-github/surroundview/pkg/svmath"
)

type SphericalWarpBuilder struct{}

func (b SphericalWarpBuilder)Name() string { return "spherical" }

// sphericalProjector carries the per-camera matrices: rKinv = R*K^-1
// for forward projection, kRinv = K*R^-1 for backward.
type sphericalProjector struct {
	scale float64
	rKinv svmath.Mat3
	kRinv svmath.Mat3
}

func newSphericalProjector(cal svcalib.CameraCalibration) (sphericalProjector, error) {
	kinv, err := cal.Intrinsic.Inverse()
	if err != nil {
		return sphericalProjector{}, fmt.Errorf("camera %s: intrinsic not invertible: %v", cal.Name, err)
	}

	// A rotation's inverse is its transpose.
	return sphericalProjector{
		scale: cal.FocalLength,
		rKinv: cal.Rotation.Mult(kinv),
		kRinv: cal.Intrinsic.Mult(cal.Rotation.Transpose()),
	}, nil
}

// mapForward projects a source pixel onto the sphere surface.
func (p sphericalProjector)mapForward(x, y float64) (u, v float64) {
	r := p.rKinv.Apply(svmath.Vec3{x, y, 1})

	u = p.scale * math.Atan2(r[0], r[2])
	w := r[1] / math.Sqrt(r[0]*r[0]+r[1]*r[1]+r[2]*r[2])
	if math.IsNaN(w) {
		w = 0
	}
	v = p.scale * (math.Pi - math.Acos(w))
	return u, v
}

// mapBackward takes a sphere-surface point back to the sensor plane.
// ok is false when the ray exits behind the camera.
func (p sphericalProjector)mapBackward(u, v float64) (x, y float64, ok bool) {
	u /= p.scale
	v /= p.scale

	sinv := math.Sin(math.Pi - v)
	ray := svmath.Vec3{sinv * math.Sin(u), math.Cos(math.Pi - v), sinv * math.Cos(u)}

	s := p.kRinv.Apply(ray)
	if s[2] <= 0 {
		return -1, -1, false
	}
	return s[0] / s[2], s[1] / s[2], true
}

func (b SphericalWarpBuilder)Build(cal svcalib.CameraCalibration, camIdx, srcW, srcH int) (*WarpMap, error) {
	if cal.Mode() != svcalib.ModeSpherical {
		return nil, fmt.Errorf("camera %s: %s calibration fed to spherical warper: %w",
			cal.Name, cal.Mode(), ErrConfiguration)
	}
	if err := cal.Validate(); err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrConfiguration)
	}

	proj, err := newSphericalProjector(cal)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrConfiguration)
	}

	roi := detectResultRoi(proj, srcW, srcH)
	if roi.Empty() {
		return nil, fmt.Errorf("camera %s: projection produced an empty footprint: %w", cal.Name, ErrConfiguration)
	}

	wm := &WarpMap{
		XMap:   svmath.NewFloatGrid(roi.Dx(), roi.Dy()),
		YMap:   svmath.NewFloatGrid(roi.Dx(), roi.Dy()),
		Corner: roi.Min,
	}

	for y:=0; y<roi.Dy(); y++ {
		for x:=0; x<roi.Dx(); x++ {
			sx, sy, ok := proj.mapBackward(float64(roi.Min.X+x), float64(roi.Min.Y+y))
			if !ok {
				wm.XMap.Set(x, y, -1)
				wm.YMap.Set(x, y, -1)
				continue
			}
			wm.XMap.Set(x, y, sx)
			wm.YMap.Set(x, y, sy)
		}
	}

	return wm, nil
}

// detectResultRoi forward-projects the source frame's border pixels
// and takes their bounding box; the extremes of the footprint always
// come from the source extremes under this projection.
func detectResultRoi(proj sphericalProjector, srcW, srcH int) image.Rectangle {
	minU, minV := math.Inf(1), math.Inf(1)
	maxU, maxV := math.Inf(-1), math.Inf(-1)

	grow := func(x, y float64) {
		u, v := proj.mapForward(x, y)
		minU = math.Min(minU, u)
		minV = math.Min(minV, v)
		maxU = math.Max(maxU, u)
		maxV = math.Max(maxV, v)
	}

	for x:=0; x<srcW; x++ {
		grow(float64(x), 0)
		grow(float64(x), float64(srcH-1))
	}
	for y:=0; y<srcH; y++ {
		grow(0, float64(y))
		grow(float64(srcW-1), float64(y))
	}

	return image.Rect(
		int(math.Floor(minU)), int(math.Floor(minV)),
		int(math.Ceil(maxU))+1, int(math.Ceil(maxV))+1,
	)
}
