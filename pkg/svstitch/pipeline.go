package svstitch

// The pipeline object owns all stitching state: immutable geometry
// tables built once at init (warp maps, masks, canvas), the one
// mutable gain-state struct, and the blender's accumulation buffers.
// Per-camera warp+gain runs in parallel, one goroutine per camera;
// feeds into the shared accumulators are serialized behind the
// barrier. At most one stitch call is in flight at a time.

import(
	"fmt"
	"image"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/codahale/hdrhistogram"

	"github.com/GKT-github/surroundview/pkg/svcalib"
	"github.com/GKT-github/surroundview/pkg/svframe"
	"github.com/GKT-github/surroundview/pkg/svsource"
)

type State int

const (
	Uninitialized State = iota
	Initializing
	Ready
	Warping
	GainAdjusting
	Blending
)

func (s State)String() string {
	switch s {
	case Uninitialized: return "uninitialized"
	case Initializing:  return "initializing"
	case Ready:         return "ready"
	case Warping:       return "warping"
	case GainAdjusting: return "gain-adjusting"
	case Blending:      return "blending"
	}
	return "unknown"
}

type Pipeline struct {
	Config

	cals    []svcalib.CameraCalibration // at processing scale
	warps   []*WarpMap
	masks   []*BlendMask
	gain    *GainCompensator
	blender Blender
	canvas  image.Rectangle
	crop    *outputCrop
	srcW    int
	srcH    int

	mu          sync.Mutex // one stitch in flight at a time
	state       State
	cycles      int
	recomputing int32
	hist        *hdrhistogram.Histogram
}

func NewPipeline(cfg Config) *Pipeline {
	return &Pipeline{
		Config: cfg,
		state:  Uninitialized,
		hist:   hdrhistogram.New(1, int64(time.Minute/time.Microsecond), 3),
	}
}

func (p *Pipeline)State() State { return p.state }

// Latencies exposes the per-cycle stitch timing histogram
// (microseconds).
func (p *Pipeline)Latencies() *hdrhistogram.Histogram { return p.hist }

func (p *Pipeline)CameraName(i int) string {
	if i < len(p.cals) && p.cals[i].Name != "" {
		return p.cals[i].Name
	}
	return fmt.Sprintf("camera %d", i)
}

// Init builds the stitch geometry: warp maps, then blend masks, then
// the gain seed, then the blender's buffers - in that order, and any
// failure leaves the pipeline permanently unusable. The sample set
// fixes the frame dimensions the rig will deliver from here on.
func (p *Pipeline)Init(cals []svcalib.CameraCalibration, sample svsource.FrameSet) error {
	if p.state != Uninitialized {
		return fmt.Errorf("pipeline is %s, can't init twice: %w", p.state, ErrConfiguration)
	}
	p.state = Initializing

	if len(cals) != p.Camera.Count {
		p.state = Uninitialized
		return fmt.Errorf("%d calibrations for %d cameras: %w", len(cals), p.Camera.Count, ErrConfiguration)
	}
	if len(sample.Frames) != p.Camera.Count || !sample.Valid() {
		p.state = Uninitialized
		return fmt.Errorf("init needs one valid sample frame per camera: %w", ErrConfiguration)
	}

	fail := func(err error) error {
		// Initializing -> broken; deliberately not back to
		// Uninitialized, a half-built pipeline must not be reused.
		log.Printf("pipeline init failed: %v", err)
		return err
	}

	p.srcW, p.srcH = p.ScaledInputSize()
	p.cals = make([]svcalib.CameraCalibration, len(cals))
	for i, cal := range cals {
		p.cals[i] = cal.Scaled(p.Stitcher.ScaleFactor)
	}

	// 1. Warp maps
	var builder WarpBuilder
	layout := NewQuadrantLayout(p.Canvas.Width, p.Canvas.Height)
	switch p.Stitcher.Warper {
	case "spherical":
		builder = SphericalWarpBuilder{}
	case "homography":
		builder = HomographyWarpBuilder{Layout: layout}
	default:
		return fail(fmt.Errorf("no warper strategy named '%s': %w", p.Stitcher.Warper, ErrConfiguration))
	}

	p.warps = make([]*WarpMap, p.Camera.Count)
	for i := range p.cals {
		wm, err := builder.Build(p.cals[i], i, p.srcW, p.srcH)
		if err != nil {
			return fail(fmt.Errorf("warp build for %s: %w", p.CameraName(i), err))
		}
		p.warps[i] = wm
		if p.Verbosity > 0 {
			log.Printf("  %s: %s", p.CameraName(i), wm)
		}
	}
	p.canvas = p.computeCanvas(layout)

	// 2. Blend masks
	p.masks = make([]*BlendMask, p.Camera.Count)
	for i := range p.warps {
		switch p.Stitcher.Warper {
		case "spherical":
			p.masks[i] = FullCoverageMask(p.warps[i], p.srcW, p.srcH)
		case "homography":
			bm, err := DiagonalFadeMask(layout, i, p.Stitcher.FadeWidth)
			if err != nil {
				return fail(fmt.Errorf("mask build for %s: %w", p.CameraName(i), err))
			}
			p.masks[i] = bm
		}
	}

	// 3. Gain seed, from the warped samples
	if p.Stitcher.GainCompensation {
		p.gain = NewGainCompensator(p.Camera.Count)
		warped := make([]*svframe.Frame, p.Camera.Count)
		for i, f := range sample.Frames {
			warped[i] = p.warpOne(f, i)
		}
		p.gain.Init(warped, p.masks)
		if p.Verbosity > 0 {
			log.Printf("  gain seed: %v", p.gain.Gains())
		}
	}

	// 4. Blender buffers
	blender, err := NewBlender(p.Stitcher.Blender, p.Stitcher.BlendBands)
	if err != nil {
		return fail(err)
	}
	p.blender = blender
	p.blender.Prepare(p.canvas)

	// 5. Optional output crop
	if p.Calibration.CropFile != "" {
		crop, found, err := svcalib.LoadOutputCrop(p.Calibration.CropFile)
		if err != nil {
			return fail(fmt.Errorf("%v: %w", err, ErrConfiguration))
		}
		if found {
			if p.crop, err = newOutputCrop(crop); err != nil {
				return fail(err)
			}
		} else {
			log.Printf("no output crop document at %s; composite left uncropped", p.Calibration.CropFile)
		}
	}

	if p.Verbosity > 0 {
		log.Printf("pipeline ready: %s warper, %s blender, canvas %v",
			p.Stitcher.Warper, p.blender.Name(), p.canvas)
	}
	p.state = Ready
	return nil
}

// computeCanvas: homography layouts have a fixed canvas; spherical
// footprints land wherever the projection puts them, so the canvas is
// their union.
func (p *Pipeline)computeCanvas(layout FixedLayout) image.Rectangle {
	if p.Stitcher.Warper == "homography" {
		return image.Rect(0, 0, layout.CanvasW, layout.CanvasH)
	}
	canvas := p.warps[0].Footprint()
	for _, wm := range p.warps[1:] {
		canvas = canvas.Union(wm.Footprint())
	}
	return canvas
}

func (p *Pipeline)warpOne(raw *svframe.Frame, i int) *svframe.Frame {
	scaled := raw.Resized(p.srcW, p.srcH)
	return scaled.Remap(&p.warps[i].XMap, &p.warps[i].YMap)
}

// Stitch runs one full cycle: per-camera scale + warp + gain in
// parallel, then serialized feeds, then the blend. Failures are
// per-cycle; the pipeline stays Ready for the next set.
func (p *Pipeline)Stitch(fs svsource.FrameSet) (*svframe.Frame, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != Ready {
		return nil, fmt.Errorf("pipeline is %s, not ready: %w", p.state, ErrConfiguration)
	}
	defer func() { p.state = Ready }()
	started := time.Now()

	if len(fs.Frames) != p.Camera.Count {
		return nil, fmt.Errorf("got %d frames, rig has %d cameras: %w", len(fs.Frames), p.Camera.Count, ErrCapture)
	}
	for i, f := range fs.Frames {
		if f.Empty() {
			return nil, fmt.Errorf("%s delivered no frame this cycle: %w", p.CameraName(i), ErrCapture)
		}
	}

	// Decide up front whether this cycle feeds a gain recompute, so
	// the pre-gain warped frames can be kept for it.
	recomputeDue := p.gain != nil && (p.cycles+1)%p.Stitcher.GainUpdateInterval == 0 &&
		atomic.LoadInt32(&p.recomputing) == 0

	// Parallel per-camera stage. Each goroutine touches only its own
	// slot; the shared accumulators wait behind the WaitGroup.
	p.state = Warping
	warped := make([]*svframe.Frame, p.Camera.Count)
	preGain := make([]*svframe.Frame, p.Camera.Count)

	var wg sync.WaitGroup
	for i := range fs.Frames {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			w := p.warpOne(fs.Frames[i], i)
			if recomputeDue {
				preGain[i] = w.Clone()
			}
			if p.gain != nil {
				p.gain.Apply(w, i)
			}
			warped[i] = w
		}(i)
	}
	wg.Wait()
	p.state = GainAdjusting // per-camera stage done (warp+gain fused above)

	p.state = Blending
	for i := range warped {
		f := warped[i]
		if f.W != p.masks[i].W || f.H != p.masks[i].H {
			// Corrective step: resize to the mask's footprint rather
			// than fail the cycle. Logged because it means the warp
			// geometry and mask disagree somewhere upstream.
			log.Printf("%s: warped frame %dx%d doesn't match mask %dx%d, resizing",
				p.CameraName(i), f.W, f.H, p.masks[i].W, p.masks[i].H)
			f = f.Resized(p.masks[i].W, p.masks[i].H)
		}
		if err := p.blender.Feed(f, p.masks[i]); err != nil {
			// Drop the partial accumulation; the next cycle starts clean.
			p.blender.Reset()
			return nil, fmt.Errorf("feed %s: %w", p.CameraName(i), err)
		}
	}

	composite, _, err := p.blender.Blend()
	if err != nil {
		return nil, fmt.Errorf("blend: %w", err)
	}

	if p.crop != nil {
		composite = p.crop.apply(composite)
	}

	p.cycles++
	if recomputeDue && atomic.CompareAndSwapInt32(&p.recomputing, 0, 1) {
		// Off the critical path: subsequent cycles keep blending with
		// the old gains until this lands. The cycle number is captured
		// here; the goroutine must not read p.cycles unlocked.
		cycle := p.cycles
		go func() {
			defer atomic.StoreInt32(&p.recomputing, 0)
			p.gain.Recompute(preGain, p.masks)
			if p.Verbosity > 0 {
				log.Printf("gain recomputed at cycle %d: %v", cycle, p.gain.Gains())
			}
		}()
	}

	if err := p.hist.RecordValue(time.Since(started).Microseconds()); err != nil && p.Verbosity > 1 {
		log.Printf("latency histogram: %v", err)
	}

	return composite, nil
}

// Cycles reports how many stitches have completed.
func (p *Pipeline)Cycles() int { return p.cycles }
