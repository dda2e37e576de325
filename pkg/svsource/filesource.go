package svsource

import(
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/GKT-github/surroundview/pkg/svframe"
)

// FileSource replays recorded footage: one directory per camera, each
// holding the same number of frame files (.png/.tif), consumed in
// lexical order. Cycle k pairs up the k-th file of every camera.
type FileSource struct {
	dirs  []string
	files [][]string
	next  int
	loop  bool
}

// NewFileSource scans one directory per camera. With loop set, the
// source wraps around instead of running dry.
func NewFileSource(dirs []string, loop bool) (*FileSource, error) {
	if len(dirs) == 0 {
		return nil, fmt.Errorf("file source: no camera directories given")
	}

	fs := &FileSource{dirs: dirs, loop: loop}
	n := -1

	for i, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("file source camera %d: readdir %s: %v", i, dir, err)
		}

		names := []string{}
		for _, e := range entries {
			ext := strings.ToLower(filepath.Ext(e.Name()))
			if !e.IsDir() && (ext == ".png" || ext == ".tif" || ext == ".tiff") {
				names = append(names, filepath.Join(dir, e.Name()))
			}
		}
		sort.Strings(names)

		if len(names) == 0 {
			return nil, fmt.Errorf("file source camera %d: no frames in %s", i, dir)
		}
		if n >= 0 && len(names) != n {
			return nil, fmt.Errorf("file source: camera %d has %d frames, camera 0 has %d", i, len(names), n)
		}
		n = len(names)

		fs.files = append(fs.files, names)
	}

	return fs, nil
}

func (fs *FileSource)NumCameras() int { return len(fs.files) }

func (fs *FileSource)Capture(ctx context.Context) (FrameSet, error) {
	if err := ctx.Err(); err != nil {
		return FrameSet{}, err
	}

	if fs.next >= len(fs.files[0]) {
		if !fs.loop {
			return FrameSet{}, fmt.Errorf("file source: footage exhausted after %d cycles", fs.next)
		}
		fs.next = 0
	}

	out := FrameSet{
		ID:         uuid.New(),
		CapturedAt: time.Now(),
		Frames:     make([]*svframe.Frame, len(fs.files)),
	}

	for i := range fs.files {
		frame, err := svframe.LoadFile(fs.files[i][fs.next])
		if err != nil {
			// A corrupt file is this cycle's capture failure, not a
			// fatal one; hand back an empty frame for that camera.
			out.Frames[i] = &svframe.Frame{}
			continue
		}
		out.Frames[i] = frame
	}

	fs.next++
	return out, nil
}

func (fs *FileSource)Close() error { return nil }
