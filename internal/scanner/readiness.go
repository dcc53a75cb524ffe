package scanner

import (
	"context"
	"time"

	"github.com/toricodesthings/doc-verification-service/internal/frame"
	"github.com/toricodesthings/doc-verification-service/internal/quality"
	"github.com/toricodesthings/doc-verification-service/internal/types"
)

// Evaluation is the latest readiness verdict plus whatever the mode wants to
// show the user.
type Evaluation struct {
	Ready            bool                    `json:"ready"`
	Clarity          float64                 `json:"clarity"`
	Lighting         types.Lighting          `json:"lighting"`
	Edges            types.Edges             `json:"edges"`
	DocumentDetected bool                    `json:"documentDetected"`
	Warnings         []types.Warning         `json:"warnings"`
	Face             *quality.FaceConditions `json:"face,omitempty"`
	Guidance         []string                `json:"guidance,omitempty"`
}

// Readiness decides, frame by frame, whether the camera view is good enough
// to capture. Due lets the loop skip grabbing a frame when no analysis would run.
type Readiness interface {
	Start()
	Stop()
	Due(now time.Time) bool
	Evaluate(ctx context.Context, now time.Time, f *frame.Frame) (Evaluation, error)
}

// DocumentReadiness drives the quality analyzer.
type DocumentReadiness struct {
	Analyzer *quality.Analyzer
}

func NewDocumentReadiness(sampleWidth int, interval time.Duration) *DocumentReadiness {
	return &DocumentReadiness{Analyzer: quality.NewAnalyzer(sampleWidth, interval)}
}

func (d *DocumentReadiness) Start()                 { d.Analyzer.Start() }
func (d *DocumentReadiness) Stop()                  { d.Analyzer.Stop() }
func (d *DocumentReadiness) Due(now time.Time) bool { return d.Analyzer.Due(now) }

func (d *DocumentReadiness) Evaluate(_ context.Context, now time.Time, f *frame.Frame) (Evaluation, error) {
	st, _ := d.Analyzer.Tick(now, f)
	return Evaluation{
		Ready:            st.Ready,
		Clarity:          st.Clarity,
		Lighting:         st.Lighting,
		Edges:            st.Edges,
		DocumentDetected: st.DocumentDetected,
		Warnings:         st.Warnings,
	}, nil
}

// FaceReadiness wraps an external face detector with the same throttle as
// the document analyzer.
type FaceReadiness struct {
	Detector FaceDetector
	Interval time.Duration
	last     time.Time
}

// FaceDetector is re-exported so callers wiring a selfie scan only import scanner.
type FaceDetector = quality.FaceDetector

func NewFaceReadiness(d FaceDetector, interval time.Duration) *FaceReadiness {
	if interval <= 0 {
		interval = quality.DefaultInterval
	}
	return &FaceReadiness{Detector: d, Interval: interval}
}

func (r *FaceReadiness) Start() { r.last = time.Time{} }
func (r *FaceReadiness) Stop()  { r.last = time.Time{} }

func (r *FaceReadiness) Due(now time.Time) bool {
	return r.last.IsZero() || now.Sub(r.last) >= r.Interval
}

func (r *FaceReadiness) Evaluate(ctx context.Context, now time.Time, f *frame.Frame) (Evaluation, error) {
	r.last = now
	c, err := r.Detector.Detect(ctx, f)
	if err != nil {
		return Evaluation{}, err
	}
	return Evaluation{
		Ready:    quality.FaceReady(c),
		Clarity:  c.QualityScore,
		Lighting: c.Lighting,
		Warnings: []types.Warning{},
		Face:     &c,
		Guidance: quality.FaceGuidance(c),
	}, nil
}
