package frame

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// Source is the camera: it hands out the current frame at full resolution.
// Every call returns a frame the caller exclusively owns.
type Source interface {
	Frame(ctx context.Context) (*Frame, error)
}

var ErrNoFrames = errors.New("frame source has no frames")

// StaticSource always returns a copy of the same frame.
type StaticSource struct {
	F *Frame
}

func (s StaticSource) Frame(ctx context.Context) (*Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.F == nil {
		return nil, ErrNoFrames
	}
	return s.F.Clone(), nil
}

// SequenceSource returns its frames in order, one per call, then repeats the last.
type SequenceSource struct {
	mu     sync.Mutex
	frames []*Frame
	next   int
}

func NewSequenceSource(frames ...*Frame) *SequenceSource {
	return &SequenceSource{frames: frames}
}

func (s *SequenceSource) Frame(ctx context.Context) (*Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.frames) == 0 {
		return nil, ErrNoFrames
	}
	i := s.next
	if i >= len(s.frames) {
		i = len(s.frames) - 1
	} else {
		s.next++
	}
	return s.frames[i].Clone(), nil
}

var replayExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".webp": true, ".bmp": true, ".tiff": true, ".tif": true,
}

// DirSource replays the images of a directory as a live camera: files are
// shown in name order, each for Hold, and the last one stays on screen.
type DirSource struct {
	mu     sync.Mutex
	frames []*Frame
	names  []string
	hold   time.Duration
	start  time.Time
	now    func() time.Time
}

func NewDirSource(dir string, hold time.Duration) (*DirSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read frame dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !replayExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	if len(names) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrNoFrames)
	}

	frames := make([]*Frame, 0, len(names))
	for _, name := range names {
		f, err := decodeFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		frames = append(frames, f)
	}

	if hold <= 0 {
		hold = time.Second
	}
	return &DirSource{frames: frames, names: names, hold: hold, now: time.Now}, nil
}

func decodeFile(path string) (*Frame, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	f, err := Decode(fh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return f, nil
}

func (d *DirSource) Len() int { return len(d.frames) }

// Current reports which file is on screen.
func (d *DirSource) Current() string {
	return d.names[d.index()]
}

func (d *DirSource) Frame(ctx context.Context) (*Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return d.frames[d.index()].Clone(), nil
}

func (d *DirSource) index() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.start.IsZero() {
		d.start = d.now()
	}
	i := int(d.now().Sub(d.start) / d.hold)
	if i >= len(d.frames) {
		i = len(d.frames) - 1
	}
	return i
}
