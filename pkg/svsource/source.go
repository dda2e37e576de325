// Package svsource is the boundary to the frame-capture collaborator.
// The stitching core never talks to cameras; it consumes synchronized
// frame sets delivered through the CaptureSource interface. A
// file-backed source is included for replaying recorded footage.
package svsource

import(
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/GKT-github/surroundview/pkg/svframe"
)

// A FrameSet is one synchronized capture across all cameras. A camera
// that missed the cycle contributes an empty frame.
type FrameSet struct {
	ID         uuid.UUID
	CapturedAt time.Time
	Frames     []*svframe.Frame
}

// Valid reports whether every camera delivered a frame this cycle.
// The stitcher refuses partial sets; the caller retries the whole
// capture instead.
func (fs FrameSet)Valid() bool {
	if len(fs.Frames) == 0 {
		return false
	}
	for _, f := range fs.Frames {
		if f.Empty() {
			return false
		}
	}
	return true
}

func (fs FrameSet)String() string {
	return fmt.Sprintf("FrameSet[%s, %d frames, valid=%v]", fs.ID, len(fs.Frames), fs.Valid())
}

type CaptureSource interface {
	// Capture blocks for the next synchronized frame set. The source
	// applies its own per-camera timeout; a set with empty frames is
	// a legitimate return (that cycle just can't be stitched).
	Capture(ctx context.Context) (FrameSet, error)

	NumCameras() int

	Close() error
}

// AcquireSampleSet polls the source until it delivers one fully valid
// frame set, needed to size the stitch geometry at init. The attempt
// count is a hard bound: exceeding it is a permanent failure, there
// is no retry loop above this one.
func AcquireSampleSet(ctx context.Context, src CaptureSource, maxAttempts int, delay time.Duration) (FrameSet, error) {
	for attempt:=1; attempt<=maxAttempts; attempt++ {
		fs, err := src.Capture(ctx)
		if err != nil {
			return FrameSet{}, fmt.Errorf("sample capture attempt %d: %w", attempt, err)
		}
		if fs.Valid() {
			return fs, nil
		}

		select {
		case <-ctx.Done():
			return FrameSet{}, ctx.Err()
		case <-time.After(delay):
		}
	}

	return FrameSet{}, fmt.Errorf("no valid frame set from all %d cameras after %d attempts", src.NumCameras(), maxAttempts)
}
