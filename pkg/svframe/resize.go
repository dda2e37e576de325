package svframe

// Processing-scale resampling. The stitcher runs its geometry at a
// fraction of the camera resolution (default 0.65); frames get scaled
// down on the way in, once per cycle per camera.

import(
	"github.com/nfnt/resize"
)

// Resized returns the frame resampled to w x h with bilinear
// filtering. A no-op (same pointer) when the size already matches.
func (f *Frame)Resized(w, h int) *Frame {
	if f.Empty() || (f.W == w && f.H == h) {
		return f
	}
	img := resize.Resize(uint(w), uint(h), f.ToImage(), resize.Bilinear)
	return FromImage(img)
}

// ResizedByFactor scales both dimensions by the processing factor,
// truncating the same way the warp geometry does.
func (f *Frame)ResizedByFactor(scale float64) *Frame {
	if f.Empty() {
		return f
	}
	return f.Resized(int(float64(f.W)*scale), int(float64(f.H)*scale))
}
