// Package capture grabs a short burst of full resolution frames, keeps the
// sharpest one and prepares it for text recognition.
package capture

import (
	"bytes"
	"context"
	"fmt"
	"image/jpeg"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/toricodesthings/doc-verification-service/internal/frame"
)

const (
	DefaultFrames      = 3
	DefaultInterval    = 100 * time.Millisecond
	DefaultStride      = 4
	DefaultJPEGQuality = 90
)

// Gate is whatever else reads the frame source. It is paused for the whole
// burst so two readers never interleave on the camera.
type Gate interface {
	Pause()
	Resume()
}

type Shot struct {
	Index int
	Score int
	At    time.Time
}

type Result struct {
	ID         string
	Shots      []Shot
	Selected   int
	Enhanced   *frame.Frame
	Image      []byte // JPEG of Enhanced
	CapturedAt time.Time
}

type Burst struct {
	Source      frame.Source
	Frames      int
	Interval    time.Duration
	Stride      int
	JPEGQuality int

	logger *zap.Logger
	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration) error
}

func NewBurst(src frame.Source, frames int, interval time.Duration, stride, quality int, logger *zap.Logger) *Burst {
	if frames <= 0 {
		frames = DefaultFrames
	}
	if interval < 0 {
		interval = DefaultInterval
	}
	if stride <= 0 {
		stride = DefaultStride
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Burst{
		Source:      src,
		Frames:      frames,
		Interval:    interval,
		Stride:      stride,
		JPEGQuality: quality,
		logger:      logger,
		now:         time.Now,
		sleep:       sleepCtx,
	}
}

// Capture runs one burst. gate may be nil when nothing else reads the source.
// There is no retry: the best of the burst is kept whatever its absolute score.
func (b *Burst) Capture(ctx context.Context, gate Gate) (*Result, error) {
	if gate != nil {
		gate.Pause()
		defer gate.Resume()
	}

	frames := make([]*frame.Frame, 0, b.Frames)
	shots := make([]Shot, 0, b.Frames)
	for i := 0; i < b.Frames; i++ {
		if i > 0 {
			if err := b.sleep(ctx, b.Interval); err != nil {
				return nil, err
			}
		}
		f, err := b.Source.Frame(ctx)
		if err != nil {
			return nil, fmt.Errorf("burst frame %d: %w", i, err)
		}
		frames = append(frames, f)
		shots = append(shots, Shot{Index: i, At: b.now()})
	}

	g, _ := errgroup.WithContext(ctx)
	for i := range frames {
		g.Go(func() error {
			shots[i].Score = frames[i].GradientSum(b.Stride)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	scores := make([]int, len(shots))
	for i, s := range shots {
		scores[i] = s.Score
	}
	best := SelectBest(scores)

	enhanced := Enhance(frames[best])
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, enhanced, &jpeg.Options{Quality: b.JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encode capture: %w", err)
	}

	res := &Result{
		ID:         uuid.NewString(),
		Shots:      shots,
		Selected:   best,
		Enhanced:   enhanced,
		Image:      buf.Bytes(),
		CapturedAt: shots[best].At,
	}
	b.logger.Info("burst captured",
		zap.String("capture_id", res.ID),
		zap.Ints("scores", scores),
		zap.Int("selected", best),
		zap.Int("bytes", len(res.Image)),
	)
	return res, nil
}

// SelectBest returns the index of the strictly highest score; on a tie the
// earliest index wins. It returns -1 for no scores.
func SelectBest(scores []int) int {
	best := -1
	for i, s := range scores {
		if best < 0 || s > scores[best] {
			best = i
		}
	}
	return best
}

// Enhance returns a grayscale copy of f with its luma range linearly
// stretched to 0-255. A flat frame is converted to grayscale only.
func Enhance(f *frame.Frame) *frame.Frame {
	out := frame.New(f.Width, f.Height)
	if f.Width == 0 || f.Height == 0 {
		return out
	}

	luma := make([]float64, f.Width*f.Height)
	lo, hi := 255.0, 0.0
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			l := f.Luma(x, y)
			luma[y*f.Width+x] = l
			lo = math.Min(lo, l)
			hi = math.Max(hi, l)
		}
	}

	scale := 1.0
	offset := 0.0
	if hi > lo {
		scale = 255 / (hi - lo)
		offset = lo
	}

	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			v := toByte((luma[y*f.Width+x] - offset) * scale)
			out.SetRGB(x, y, v, v, v)
		}
	}
	return out
}

func toByte(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(255, v))))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
