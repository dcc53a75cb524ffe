// Package scanner runs the live capture loop: analyze frames on a refresh
// tick, count down while the view stays ready, then fire a burst capture.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/toricodesthings/doc-verification-service/internal/capture"
	"github.com/toricodesthings/doc-verification-service/internal/countdown"
	"github.com/toricodesthings/doc-verification-service/internal/frame"
	"github.com/toricodesthings/doc-verification-service/internal/logging"
)

const (
	DefaultRefresh = 16 * time.Millisecond
	DefaultWarmup  = 500 * time.Millisecond
)

var ErrNoBurst = errors.New("scanner has no burst configured")

// Status is a snapshot published after every loop step that changed something.
type Status struct {
	Phase     countdown.Phase `json:"phase"`
	Remaining int             `json:"remaining"`
	Event     string          `json:"event"`
	Analyses  int             `json:"analyses"`
	Evaluation
}

type Options struct {
	Refresh  time.Duration
	Warmup   time.Duration
	OnStatus func(Status)
	Logger   *zap.Logger
}

// Session owns one scan. It is the only reader of the frame source while
// running; the burst pauses it through the Gate methods.
type Session struct {
	src       frame.Source
	readiness Readiness
	countdown *countdown.Countdown
	burst     *capture.Burst

	refresh  time.Duration
	warmup   time.Duration
	onStatus func(Status)
	logger   *zap.Logger
	now      func() time.Time

	gate    sync.Mutex
	trigger chan struct{}

	mu     sync.RWMutex
	status Status
}

func NewSession(src frame.Source, r Readiness, cd *countdown.Countdown, b *capture.Burst, opts Options) *Session {
	if opts.Refresh <= 0 {
		opts.Refresh = DefaultRefresh
	}
	if opts.Warmup < 0 {
		opts.Warmup = DefaultWarmup
	}
	return &Session{
		src:       src,
		readiness: r,
		countdown: cd,
		burst:     b,
		refresh:   opts.Refresh,
		warmup:    opts.Warmup,
		onStatus:  opts.OnStatus,
		logger:    logging.OrNop(opts.Logger),
		now:       time.Now,
		trigger:   make(chan struct{}, 1),
		status:    Status{Phase: countdown.Idle},
	}
}

// Pause and Resume make the session a capture.Gate.
func (s *Session) Pause()  { s.gate.Lock() }
func (s *Session) Resume() { s.gate.Unlock() }

// Trigger asks the running loop to capture now, skipping the countdown.
func (s *Session) Trigger() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

func (s *Session) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Run scans until a capture fires or ctx ends. Scan state is discarded on
// return either way.
func (s *Session) Run(ctx context.Context) (*capture.Result, error) {
	s.readiness.Start()
	s.countdown.Reset()
	defer func() {
		s.readiness.Stop()
		s.countdown.Reset()
	}()

	if s.warmup > 0 {
		t := time.NewTimer(s.warmup)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}

	ticker := time.NewTicker(s.refresh)
	defer ticker.Stop()

	var last Evaluation
	analyses := 0
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()

		case <-s.trigger:
			s.logger.Info("manual capture")
			return s.fire(ctx)

		case <-ticker.C:
			fire, err := s.step(ctx, &last, &analyses)
			if err != nil {
				return nil, err
			}
			if fire {
				return s.fire(ctx)
			}
		}
	}
}

// step is one refresh tick. It analyzes only when the readiness throttle is
// due, but always feeds the countdown the most recent verdict so that a
// cancellation lands on the same tick that observed it.
func (s *Session) step(ctx context.Context, last *Evaluation, analyses *int) (bool, error) {
	if !s.gate.TryLock() {
		return false, nil
	}
	defer s.gate.Unlock()

	now := s.now()
	analyzed := false
	if s.readiness.Due(now) {
		f, err := s.src.Frame(ctx)
		if err != nil {
			return false, fmt.Errorf("read frame: %w", err)
		}
		ev, err := s.readiness.Evaluate(ctx, now, f)
		if err != nil {
			return false, fmt.Errorf("evaluate frame: %w", err)
		}
		*last = ev
		*analyses++
		analyzed = true
	}

	event := s.countdown.Update(last.Ready, now)
	if analyzed || event != countdown.None {
		s.publish(event, *last, *analyses)
	}
	if event == countdown.Started || event == countdown.Cancelled {
		s.logger.Debug("countdown", zap.Stringer("event", event), zap.Float64("clarity", last.Clarity))
	}
	return event == countdown.Fire, nil
}

func (s *Session) fire(ctx context.Context) (*capture.Result, error) {
	if s.burst == nil {
		return nil, ErrNoBurst
	}
	return s.burst.Capture(ctx, s)
}

func (s *Session) publish(ev countdown.Event, e Evaluation, analyses int) {
	cs := s.countdown.State()
	st := Status{
		Phase:      cs.Phase,
		Remaining:  cs.Remaining,
		Event:      ev.String(),
		Analyses:   analyses,
		Evaluation: e,
	}
	s.mu.Lock()
	s.status = st
	s.mu.Unlock()
	if s.onStatus != nil {
		s.onStatus(st)
	}
}
