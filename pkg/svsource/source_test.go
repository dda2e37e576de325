package svsource

import(
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GKT-github/surroundview/pkg/svframe"
)

// scriptedSource replays a fixed sequence of frame sets.
type scriptedSource struct {
	sets []FrameSet
	next int
}

func (s *scriptedSource)Capture(ctx context.Context) (FrameSet, error) {
	if s.next >= len(s.sets) {
		s.next = len(s.sets) - 1 // keep returning the last one
	}
	fs := s.sets[s.next]
	s.next++
	return fs, nil
}

func (s *scriptedSource)NumCameras() int { return 4 }
func (s *scriptedSource)Close() error    { return nil }

func fullSet(n int) FrameSet {
	fs := FrameSet{ID: uuid.New(), CapturedAt: time.Now()}
	for i:=0; i<n; i++ {
		fs.Frames = append(fs.Frames, svframe.New(4, 4))
	}
	return fs
}

func partialSet(n, missing int) FrameSet {
	fs := fullSet(n)
	fs.Frames[missing] = &svframe.Frame{}
	return fs
}

func TestFrameSetValid(t *testing.T) {
	assert.True(t, fullSet(4).Valid())
	assert.False(t, partialSet(4, 2).Valid())
	assert.False(t, FrameSet{}.Valid())
}

func TestAcquireSampleSetRetriesUntilValid(t *testing.T) {
	src := &scriptedSource{sets: []FrameSet{
		partialSet(4, 0),
		partialSet(4, 3),
		fullSet(4),
	}}

	fs, err := AcquireSampleSet(context.Background(), src, 10, time.Millisecond)
	require.NoError(t, err)
	assert.True(t, fs.Valid())
	assert.Equal(t, 3, src.next)
}

func TestAcquireSampleSetBoundedAttempts(t *testing.T) {
	src := &scriptedSource{sets: []FrameSet{partialSet(4, 1)}}

	_, err := AcquireSampleSet(context.Background(), src, 5, time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "5 attempts")
}

func TestAcquireSampleSetHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &scriptedSource{sets: []FrameSet{partialSet(4, 1)}}
	_, err := AcquireSampleSet(ctx, src, 100, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
}
