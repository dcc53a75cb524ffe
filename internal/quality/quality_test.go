package quality

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/toricodesthings/doc-verification-service/internal/frame"
	"github.com/toricodesthings/doc-verification-service/internal/types"
)

func flat(w, h int, v uint8) *frame.Frame {
	f := frame.New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			f.SetRGB(x, y, v, v, v)
		}
	}
	return f
}

// stripes alternates dark and light columns two pixels wide, so every pair
// of stride-2 samples straddles a transition.
func stripes(w, h int, inCentreOnly bool) *frame.Frame {
	f := flat(w, h, 130)
	mx, my := int(float64(w)*MarginRatio), int(float64(h)*MarginRatio)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if inCentreOnly && (x <= mx || x >= w-mx || y <= my || y >= h-my) {
				continue
			}
			v := uint8(60)
			if (x/2)%2 == 1 {
				v = 200
			}
			f.SetRGB(x, y, v, v, v)
		}
	}
	return f
}

func TestMeasureFlatFrame(t *testing.T) {
	s := Measure(flat(320, 240, 128))
	if math.Abs(s.Luminance-128) > 1e-6 {
		t.Errorf("Luminance = %f, want 128", s.Luminance)
	}
	if s.AvgGradient != 0 || s.TextDensity != 0 {
		t.Errorf("flat frame gradient/density = %f/%d, want 0/0", s.AvgGradient, s.TextDensity)
	}
	if s.Regions != (Regions{}) {
		t.Errorf("Regions = %+v, want zero", s.Regions)
	}
}

func TestMeasureStripes(t *testing.T) {
	s := Measure(stripes(320, 240, false))
	if s.Luminance < 50 || s.Luminance > 220 {
		t.Fatalf("Luminance = %f, want good range", s.Luminance)
	}
	if s.AvgGradient < 400 {
		t.Errorf("AvgGradient = %f, want > 400", s.AvgGradient)
	}
	if s.TextDensity <= TextDensityMin {
		t.Errorf("TextDensity = %d, want > %d", s.TextDensity, TextDensityMin)
	}
	for name, v := range map[string]float64{"top": s.Regions.Top, "bottom": s.Regions.Bottom, "left": s.Regions.Left, "right": s.Regions.Right} {
		if v <= EdgeThreshold {
			t.Errorf("%s region = %f, want > %d", name, v, EdgeThreshold)
		}
	}
}

func TestAssessCentreOnlyContent(t *testing.T) {
	a := Assess(Measure(stripes(320, 240, true)), 1920)
	if !a.DocumentDetected {
		t.Error("DocumentDetected = false, want true")
	}
	if a.Edges.Top || a.Edges.Bottom {
		t.Errorf("Edges = %+v, want top/bottom undetected", a.Edges)
	}
	if len(a.Warnings) == 0 || a.Warnings[len(a.Warnings)-1].Type != types.WarningAlignment {
		t.Errorf("Warnings = %+v, want trailing alignment warning", a.Warnings)
	}
}

func TestClassifyLighting(t *testing.T) {
	tests := []struct {
		luma float64
		want types.Lighting
	}{
		{0, types.LightingLow},
		{49.9, types.LightingLow},
		{50, types.LightingGood},
		{220, types.LightingGood},
		{220.1, types.LightingHigh},
	}
	for _, tt := range tests {
		if got := ClassifyLighting(tt.luma); got != tt.want {
			t.Errorf("ClassifyLighting(%v) = %s, want %s", tt.luma, got, tt.want)
		}
	}
}

func TestRawClarity(t *testing.T) {
	tests := []struct {
		gradient float64
		want     float64
	}{
		{0, 0},
		{5, 0},
		{15, 40},
		{20, 60},
		{30, 100},
		{500, 100},
	}
	for _, tt := range tests {
		if got := RawClarity(tt.gradient); got != tt.want {
			t.Errorf("RawClarity(%v) = %v, want %v", tt.gradient, got, tt.want)
		}
	}
}

func TestWarnings(t *testing.T) {
	tests := []struct {
		name  string
		frame *frame.Frame
		width int
		want  []types.Warning
	}{
		{
			name:  "dark low resolution",
			frame: flat(320, 240, 20),
			width: 640,
			want: []types.Warning{
				{Type: types.WarningBlur, Severity: types.SeverityHigh, Message: "Image is blurry"},
				{Type: types.WarningLighting, Severity: types.SeverityHigh, Message: "Too dark"},
				{Type: types.WarningAlignment, Severity: types.SeverityLow, Message: "Align edges"},
				{Type: types.WarningResolution, Severity: types.SeverityMedium, Message: "Low resolution"},
			},
		},
		{
			name:  "bright",
			frame: flat(320, 240, 240),
			width: 1920,
			want: []types.Warning{
				{Type: types.WarningBlur, Severity: types.SeverityMedium, Message: "Image is blurry"},
				{Type: types.WarningGlare, Severity: types.SeverityMedium, Message: "Potential glare"},
				{Type: types.WarningAlignment, Severity: types.SeverityLow, Message: "Align edges"},
			},
		},
		{
			name:  "sharp full frame",
			frame: stripes(320, 240, false),
			width: 1920,
			want:  []types.Warning{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Assess(Measure(tt.frame), tt.width)
			if diff := cmp.Diff(tt.want, a.Warnings); diff != "" {
				t.Errorf("warnings mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSmoothStaysInRange(t *testing.T) {
	score := 0.0
	raws := []float64{100, 100, 0, 100, 37, 0, 0, 100, 100, 100}
	for i := 0; i < 200; i++ {
		score = Smooth(score, raws[i%len(raws)])
		if score < 0 || score > 100 {
			t.Fatalf("tick %d: score %f outside [0,100]", i, score)
		}
	}
	if got := Smooth(100, 100); got != 100 {
		t.Errorf("Smooth(100,100) = %f", got)
	}
}

func TestSmoothConverges(t *testing.T) {
	for _, raw := range []float64{0, 40, 65, 100} {
		score := 100 - raw
		for i := 0; i < 15; i++ {
			score = Smooth(score, raw)
		}
		if math.Abs(score-raw) > 1 {
			t.Errorf("raw %v: after 15 ticks score = %f, not within one point", raw, score)
		}
	}
}

func TestReadyEachConditionIndependently(t *testing.T) {
	ready := Assessment{
		Lighting:         types.LightingGood,
		Edges:            types.Edges{Top: true, Right: true, Bottom: true, Left: true},
		DocumentDetected: true,
		Warnings:         []types.Warning{{Type: types.WarningResolution, Severity: types.SeverityMedium}},
	}
	if !Ready(60, ready) {
		t.Fatal("baseline should be ready")
	}

	tests := []struct {
		name    string
		clarity float64
		mutate  func(*Assessment)
	}{
		{name: "edge missing", clarity: 80, mutate: func(a *Assessment) { a.Edges.Left = false }},
		{name: "clarity below 60", clarity: 59.9, mutate: func(a *Assessment) {}},
		{name: "lighting not good", clarity: 80, mutate: func(a *Assessment) { a.Lighting = types.LightingHigh }},
		{name: "high severity warning", clarity: 80, mutate: func(a *Assessment) {
			a.Warnings = append([]types.Warning{}, types.Warning{Type: types.WarningBlur, Severity: types.SeverityHigh})
		}},
		{name: "no document", clarity: 80, mutate: func(a *Assessment) { a.DocumentDetected = false }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := ready
			a.Warnings = append([]types.Warning{}, ready.Warnings...)
			tt.mutate(&a)
			if Ready(tt.clarity, a) {
				t.Errorf("Ready = true, want false")
			}
		})
	}
}

func TestAnalyzerThrottle(t *testing.T) {
	a := NewAnalyzer(320, 200*time.Millisecond)
	a.Start()
	src := stripes(320, 240, false)
	t0 := time.Unix(100, 0)

	st, analyzed := a.Tick(t0, src)
	if !analyzed || st.Analyses != 1 {
		t.Fatalf("first tick analyzed=%v analyses=%d", analyzed, st.Analyses)
	}
	if math.Abs(st.Clarity-65) > 1e-9 {
		t.Errorf("Clarity = %f, want 65", st.Clarity)
	}
	if !st.Ready {
		t.Errorf("expected ready after first sharp tick, state %+v", st)
	}

	st, analyzed = a.Tick(t0.Add(199*time.Millisecond), flat(320, 240, 10))
	if analyzed || st.Analyses != 1 || !st.Ready {
		t.Fatalf("early tick mutated state: analyzed=%v %+v", analyzed, st)
	}

	st, analyzed = a.Tick(t0.Add(200*time.Millisecond), flat(320, 240, 10))
	if !analyzed || st.Analyses != 2 {
		t.Fatalf("tick at 200ms not analyzed")
	}
	if st.Ready || st.Lighting != types.LightingLow {
		t.Errorf("dark frame state = %+v", st)
	}
}

func TestAnalyzerStop(t *testing.T) {
	a := NewAnalyzer(320, 0)
	a.Start()
	a.Tick(time.Unix(1, 0), stripes(320, 240, false))
	a.Stop()

	st := a.State()
	if st.Clarity != 0 || st.Lighting != types.LightingGood || len(st.Warnings) != 0 || st.Edges.Top {
		t.Errorf("state after Stop = %+v", st)
	}
	if !a.Due(time.Unix(1, 1)) {
		t.Error("throttle should be reset by Stop")
	}
}

func TestFaceReady(t *testing.T) {
	good := FaceConditions{
		FaceDetected: true,
		Lighting:     types.LightingGood,
		Centered:     true,
		Distance:     DistanceGood,
		Angle:        AngleGood,
		QualityScore: 75,
	}
	if !FaceReady(good) {
		t.Fatal("baseline face should be ready")
	}
	if g := FaceGuidance(good); len(g) != 0 {
		t.Errorf("guidance for ready face = %v", g)
	}

	tests := []struct {
		name   string
		mutate func(*FaceConditions)
		hint   string
	}{
		{"no face", func(c *FaceConditions) { c.FaceDetected = false }, "Position your face in the frame"},
		{"dark", func(c *FaceConditions) { c.Lighting = types.LightingLow }, "Move to a brighter area"},
		{"off centre", func(c *FaceConditions) { c.Centered = false }, "Center your face"},
		{"too close", func(c *FaceConditions) { c.Distance = DistanceTooClose }, "Move back"},
		{"too far", func(c *FaceConditions) { c.Distance = DistanceTooFar }, "Move closer"},
		{"turned", func(c *FaceConditions) { c.Angle = AngleLeft }, "Look straight at the camera"},
		{"tilted", func(c *FaceConditions) { c.Angle = AngleDown }, "Keep your head level"},
		{"low quality", func(c *FaceConditions) { c.QualityScore = 74.9 }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := good
			tt.mutate(&c)
			if FaceReady(c) {
				t.Error("FaceReady = true, want false")
			}
			g := FaceGuidance(c)
			if tt.hint == "" {
				return
			}
			if len(g) == 0 || g[0] != tt.hint {
				t.Errorf("FaceGuidance = %v, want first %q", g, tt.hint)
			}
		})
	}
}
