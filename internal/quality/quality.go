package quality

import (
	"math"

	"github.com/toricodesthings/doc-verification-service/internal/frame"
	"github.com/toricodesthings/doc-verification-service/internal/types"
)

// Thresholds of the live document analysis. Luminance and contrast values are
// on the 0-255 scale, contrast being summed over the three channels.
const (
	SampleStride = 2

	LowLightLuma  = 50
	HighLightLuma = 220

	GradientOffset = 5
	GradientScale  = 4

	MarginRatio    = 0.15
	EdgeThreshold  = 12
	TextContrast   = 20
	TextDensityMin = 150

	BlurRawClarity    = 40
	ReadyClarity      = 60
	MinSourceWidth    = 960
	SmoothingPrevious = 0.7
	SmoothingRaw      = 0.3
)

// Sample is what one pass over a downsampled frame measures.
type Sample struct {
	Width       int
	Height      int
	Luminance   float64 // average luma of the sampled grid
	AvgGradient float64 // average horizontal contrast per sampled pixel
	Regions     Regions // per-margin activity, normalised by strip size
	TextDensity int     // contrast transitions above TextContrast in the centre
}

type Regions struct {
	Top    float64
	Bottom float64
	Left   float64
	Right  float64
}

// Measure runs the single strided pass over an already downsampled frame.
func Measure(f *frame.Frame) Sample {
	w, h := f.Width, f.Height
	s := Sample{Width: w, Height: h}
	if w == 0 || h == 0 {
		return s
	}

	marginX := int(math.Floor(float64(w) * MarginRatio))
	marginY := int(math.Floor(float64(h) * MarginRatio))

	var totalLuma float64
	var totalGradient, pixels int
	var top, bottom, left, right int

	for y := 0; y < h; y += SampleStride {
		for x := 0; x < w; x += SampleStride {
			totalLuma += f.Luma(x, y)
			pixels++

			if x >= w-SampleStride {
				continue
			}
			contrast := f.Contrast(x, y, x+SampleStride, y)
			totalGradient += contrast

			if y > marginY && y < h-marginY && x > marginX && x < w-marginX && contrast > TextContrast {
				s.TextDensity++
			}

			if y < marginY {
				top += contrast
			}
			if y > h-marginY {
				bottom += contrast
			}
			if x < marginX {
				left += contrast
			}
			if x > w-marginX {
				right += contrast
			}
		}
	}

	s.Luminance = safeDiv(totalLuma, float64(pixels))
	s.AvgGradient = safeDiv(float64(totalGradient), float64(pixels))

	stripPixels := float64(w*marginY) / (SampleStride * SampleStride)
	sidePixels := float64(h*marginX) / (SampleStride * SampleStride)
	s.Regions = Regions{
		Top:    safeDiv(float64(top), stripPixels),
		Bottom: safeDiv(float64(bottom), stripPixels),
		Left:   safeDiv(float64(left), sidePixels),
		Right:  safeDiv(float64(right), sidePixels),
	}
	return s
}

// Assessment is the stateless verdict on one sample.
type Assessment struct {
	Sample           Sample
	RawClarity       float64
	Lighting         types.Lighting
	Edges            types.Edges
	DocumentDetected bool
	Warnings         []types.Warning
}

// Assess classifies a sample. sourceWidth is the width of the camera frame
// before downsampling, used for the resolution warning.
func Assess(s Sample, sourceWidth int) Assessment {
	a := Assessment{
		Sample:           s,
		RawClarity:       RawClarity(s.AvgGradient),
		Lighting:         ClassifyLighting(s.Luminance),
		DocumentDetected: s.TextDensity > TextDensityMin,
		Edges: types.Edges{
			Top:    s.Regions.Top > EdgeThreshold,
			Right:  s.Regions.Right > EdgeThreshold,
			Bottom: s.Regions.Bottom > EdgeThreshold,
			Left:   s.Regions.Left > EdgeThreshold,
		},
	}
	a.Warnings = warnings(a, sourceWidth)
	return a
}

func RawClarity(avgGradient float64) float64 {
	return clamp((avgGradient-GradientOffset)*GradientScale, 0, 100)
}

// Smooth is the first-order low-pass applied to clarity on every analysis.
func Smooth(prev, raw float64) float64 {
	return clamp(prev*SmoothingPrevious+raw*SmoothingRaw, 0, 100)
}

func ClassifyLighting(luma float64) types.Lighting {
	switch {
	case luma < LowLightLuma:
		return types.LightingLow
	case luma > HighLightLuma:
		return types.LightingHigh
	default:
		return types.LightingGood
	}
}

func warnings(a Assessment, sourceWidth int) []types.Warning {
	out := []types.Warning{}

	if a.RawClarity < BlurRawClarity {
		sev := types.SeverityMedium
		if a.Lighting == types.LightingLow {
			sev = types.SeverityHigh
		}
		out = append(out, types.Warning{Type: types.WarningBlur, Severity: sev, Message: "Image is blurry"})
	}

	switch a.Lighting {
	case types.LightingLow:
		out = append(out, types.Warning{Type: types.WarningLighting, Severity: types.SeverityHigh, Message: "Too dark"})
	case types.LightingHigh:
		out = append(out, types.Warning{Type: types.WarningGlare, Severity: types.SeverityMedium, Message: "Potential glare"})
	}

	if !a.Edges.All() {
		out = append(out, types.Warning{Type: types.WarningAlignment, Severity: types.SeverityLow, Message: "Align edges"})
	}

	if sourceWidth < MinSourceWidth {
		out = append(out, types.Warning{Type: types.WarningResolution, Severity: types.SeverityMedium, Message: "Low resolution"})
	}

	return out
}

// Ready is the auto-capture predicate: every edge found, smoothed clarity at
// least ReadyClarity, good lighting, no high severity warning, and text in the centre.
func Ready(clarity float64, a Assessment) bool {
	return a.Edges.All() &&
		clarity >= ReadyClarity &&
		a.Lighting == types.LightingGood &&
		!hasHighSeverity(a.Warnings) &&
		a.DocumentDetected
}

func hasHighSeverity(ws []types.Warning) bool {
	for _, w := range ws {
		if w.Severity == types.SeverityHigh {
			return true
		}
	}
	return false
}

// Report flattens an assessment for the wire.
func Report(a Assessment, sourceWidth, sourceHeight int, ready bool) types.QualityReport {
	return types.QualityReport{
		SourceWidth:      sourceWidth,
		SourceHeight:     sourceHeight,
		Luminance:        a.Sample.Luminance,
		AvgGradient:      a.Sample.AvgGradient,
		RawClarity:       a.RawClarity,
		Lighting:         a.Lighting,
		Edges:            a.Edges,
		TextDensity:      a.Sample.TextDensity,
		DocumentDetected: a.DocumentDetected,
		Warnings:         a.Warnings,
		Ready:            ready,
	}
}

func safeDiv(a, b float64) float64 {
	if b <= 0 {
		return 0
	}
	return a / b
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
