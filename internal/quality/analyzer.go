package quality

import (
	"time"

	"github.com/toricodesthings/doc-verification-service/internal/frame"
	"github.com/toricodesthings/doc-verification-service/internal/types"
)

const (
	DefaultInterval = 200 * time.Millisecond
	StartClarity    = 50
)

// State is the analyzer's view after its latest analysis.
type State struct {
	Clarity          float64 // smoothed, always within [0,100]
	Lighting         types.Lighting
	Edges            types.Edges
	Warnings         []types.Warning
	DocumentDetected bool
	Ready            bool
	Assessment       Assessment
	Analyses         int
}

// Analyzer keeps the smoothed clarity score across ticks and throttles the
// pixel work to one analysis per Interval. It is not safe for concurrent use;
// the scan loop is its only caller.
type Analyzer struct {
	Interval time.Duration
	sampler  frame.Sampler
	state    State
	last     time.Time
}

func NewAnalyzer(sampleWidth int, interval time.Duration) *Analyzer {
	if interval <= 0 {
		interval = DefaultInterval
	}
	a := &Analyzer{Interval: interval, sampler: frame.NewSampler(sampleWidth)}
	a.Stop()
	return a
}

// Start begins a scan: clarity starts from StartClarity and the throttle is reset.
func (a *Analyzer) Start() {
	a.Stop()
	a.state.Clarity = StartClarity
}

// Stop discards the scan state.
func (a *Analyzer) Stop() {
	a.state = State{Lighting: types.LightingGood, Warnings: []types.Warning{}}
	a.last = time.Time{}
}

// Due reports whether a tick at now would analyze rather than reschedule.
func (a *Analyzer) Due(now time.Time) bool {
	return a.last.IsZero() || now.Sub(a.last) >= a.Interval
}

// Tick analyzes src when the throttle window has elapsed. Early ticks leave
// the state untouched and report false.
func (a *Analyzer) Tick(now time.Time, src *frame.Frame) (State, bool) {
	if !a.Due(now) {
		return a.state, false
	}
	a.last = now

	sample := Measure(a.sampler.Sample(src))
	as := Assess(sample, src.Width)
	a.Apply(as)
	return a.state, true
}

// Apply folds one assessment into the smoothed state.
func (a *Analyzer) Apply(as Assessment) State {
	clarity := Smooth(a.state.Clarity, as.RawClarity)
	a.state = State{
		Clarity:          clarity,
		Lighting:         as.Lighting,
		Edges:            as.Edges,
		Warnings:         as.Warnings,
		DocumentDetected: as.DocumentDetected,
		Ready:            Ready(clarity, as),
		Assessment:       as,
		Analyses:         a.state.Analyses + 1,
	}
	return a.state
}

func (a *Analyzer) State() State {
	return a.state
}
