package svstitch

// Exposure equalization. Each camera carries one scalar gain,
// estimated from the relative brightness of the warped footprints
// inside the zones where their masks overlap on the canvas. The
// estimate is a regularized least squares over the camera pair graph:
// minimize, over all overlapping pairs (i,j) with Nij shared pixels
// and mean intensities Iij/Iji,
//
//	sum Nij * ( errW*(gi*Iij - gj*Iji)^2 + priorW*(1-gi)^2 )
//
// which keeps gains near 1.0 unless the overlap evidence pulls them.
// Degenerate cases (no overlap anywhere, singular system) leave the
// gains exactly as they were.

import(
	"log"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/GKT-github/surroundview/pkg/svframe"
)

const (
	gainErrWeight   = 0.01
	gainPriorWeight = 100.0
)

type GainCompensator struct {
	mu    sync.Mutex
	gains []float64
}

func NewGainCompensator(numCameras int) *GainCompensator {
	g := &GainCompensator{gains: make([]float64, numCameras)}
	for i := range g.gains {
		g.gains[i] = 1.0
	}
	return g
}

// Gains returns a snapshot; safe to call while a recompute runs.
func (g *GainCompensator)Gains() []float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]float64, len(g.gains))
	copy(out, g.gains)
	return out
}

// Apply scales a camera's frame by its current gain, in place. The
// frame is already in the wide working format, so gains above 1.0
// can't wrap the display range before blending clamps it.
func (g *GainCompensator)Apply(frame *svframe.Frame, camIdx int) {
	gain := 1.0
	g.mu.Lock()
	if camIdx < len(g.gains) {
		gain = g.gains[camIdx]
	}
	g.mu.Unlock()

	if gain != 1.0 {
		frame.ScaleBy(gain)
	}
}

// Init seeds the gains from the warped sample frames. Same estimate
// as Recompute, named separately so the pipeline's init sequence
// reads clearly.
func (g *GainCompensator)Init(warped []*svframe.Frame, masks []*BlendMask) {
	g.Recompute(warped, masks)
}

// Recompute re-estimates all gains from a warped frame set. Runs off
// the per-frame critical path; blending keeps using the previous
// gains until this swaps them in.
func (g *GainCompensator)Recompute(warped []*svframe.Frame, masks []*BlendMask) {
	gains, ok := estimateGains(warped, masks)
	if !ok {
		return // keep previous gains
	}

	g.mu.Lock()
	g.gains = gains
	g.mu.Unlock()
}

// pairStats holds what one ordered camera pair contributes: how many
// canvas pixels both cover with nonzero weight, and the mean
// intensity of THIS camera inside that zone.
type pairStats struct {
	n    float64
	mean float64
}

func estimateGains(warped []*svframe.Frame, masks []*BlendMask) ([]float64, bool) {
	num := len(warped)
	if num == 0 || num != len(masks) {
		return nil, false
	}

	stats := make([][]pairStats, num)
	for i := range stats {
		stats[i] = make([]pairStats, num)
	}

	sawOverlap := false
	for i:=0; i<num; i++ {
		for j:=i+1; j<num; j++ {
			si, sj, ok := overlapStats(warped[i], masks[i], warped[j], masks[j])
			if !ok {
				continue
			}
			stats[i][j] = si
			stats[j][i] = sj
			sawOverlap = true
		}
	}
	if !sawOverlap {
		return nil, false
	}

	// Normal equations of the regularized least squares.
	a := mat.NewDense(num, num, nil)
	b := mat.NewVecDense(num, nil)

	for i:=0; i<num; i++ {
		for j:=0; j<num; j++ {
			if j == i {
				continue
			}
			n := stats[i][j].n
			iij := stats[i][j].mean
			iji := stats[j][i].mean

			a.Set(i, i, a.At(i, i)+n*(gainErrWeight*iij*iij+gainPriorWeight))
			a.Set(i, j, a.At(i, j)-n*gainErrWeight*iij*iji)
			b.SetVec(i, b.AtVec(i)+n*gainPriorWeight)
		}
	}

	var gv mat.VecDense
	if err := gv.SolveVec(a, b); err != nil {
		log.Printf("gain estimate: singular system, keeping previous gains (%v)", err)
		return nil, false
	}

	gains := make([]float64, num)
	for i := range gains {
		gains[i] = gv.AtVec(i)
	}
	return gains, true
}

// overlapStats walks the canvas intersection of two placed footprints
// and accumulates mask-weighted mean intensities for both cameras.
// ok is false when the footprints don't meaningfully overlap.
func overlapStats(fi *svframe.Frame, mi *BlendMask, fj *svframe.Frame, mj *BlendMask) (pairStats, pairStats, bool) {
	if fi.Empty() || fj.Empty() {
		return pairStats{}, pairStats{}, false
	}
	if fi.W != mi.W || fi.H != mi.H || fj.W != mj.W || fj.H != mj.H {
		return pairStats{}, pairStats{}, false
	}

	sect := mi.Footprint().Intersect(mj.Footprint())
	if sect.Empty() {
		return pairStats{}, pairStats{}, false
	}

	var n, sumI, sumJ float64
	for cy:=sect.Min.Y; cy<sect.Max.Y; cy++ {
		for cx:=sect.Min.X; cx<sect.Max.X; cx++ {
			wi := mi.At(cx-mi.Corner.X, cy-mi.Corner.Y)
			wj := mj.At(cx-mj.Corner.X, cy-mj.Corner.Y)
			if wi == 0 || wj == 0 {
				continue
			}

			// Weight by the weaker of the two masks, so the seam
			// fringe counts less than the solid overlap.
			w := float64(min8(wi, wj)) / 255.0
			n += w
			sumI += w * intensity(fi, cx-mi.Corner.X, cy-mi.Corner.Y)
			sumJ += w * intensity(fj, cx-mj.Corner.X, cy-mj.Corner.Y)
		}
	}

	if n == 0 {
		return pairStats{}, pairStats{}, false
	}
	return pairStats{n: n, mean: sumI / n}, pairStats{n: n, mean: sumJ / n}, true
}

func intensity(f *svframe.Frame, x, y int) float64 {
	r, g, b := f.RGB(x, y)
	return (float64(r) + float64(g) + float64(b)) / 3.0
}

func min8(a, b uint8) uint8 {
	if a < b { return a }
	return b
}
