package quality

import (
	"context"

	"github.com/toricodesthings/doc-verification-service/internal/frame"
	"github.com/toricodesthings/doc-verification-service/internal/types"
)

type FaceDistance string

const (
	DistanceTooClose FaceDistance = "too-close"
	DistanceTooFar   FaceDistance = "too-far"
	DistanceGood     FaceDistance = "good"
)

type FaceAngle string

const (
	AngleLeft  FaceAngle = "left"
	AngleRight FaceAngle = "right"
	AngleUp    FaceAngle = "up"
	AngleDown  FaceAngle = "down"
	AngleGood  FaceAngle = "good"
)

// FaceReadyQuality is the minimum face quality score for auto-capture.
const FaceReadyQuality = 75

// FaceConditions is what a face detector reports for one frame.
type FaceConditions struct {
	FaceDetected  bool           `json:"faceDetected"`
	Lighting      types.Lighting `json:"lighting"`
	Centered      bool           `json:"centered"`
	Distance      FaceDistance   `json:"distance"`
	Angle         FaceAngle      `json:"angle"`
	QualityScore  float64        `json:"qualityScore"`
	BlinkDetected bool           `json:"blinkDetected"`
}

// FaceDetector finds face landmarks in a frame. Implementations live outside
// this module; the scanner only consumes the conditions.
type FaceDetector interface {
	Detect(ctx context.Context, f *frame.Frame) (FaceConditions, error)
}

// FaceReady is the selfie auto-capture predicate.
func FaceReady(c FaceConditions) bool {
	return c.FaceDetected &&
		c.Lighting == types.LightingGood &&
		c.Centered &&
		c.Distance == DistanceGood &&
		c.Angle == AngleGood &&
		c.QualityScore >= FaceReadyQuality
}

// FaceGuidance lists what the user should fix, in display order.
func FaceGuidance(c FaceConditions) []string {
	if !c.FaceDetected {
		return []string{"Position your face in the frame"}
	}

	var out []string
	switch c.Lighting {
	case types.LightingLow:
		out = append(out, "Move to a brighter area")
	case types.LightingHigh:
		out = append(out, "Reduce direct light")
	}
	if !c.Centered {
		out = append(out, "Center your face")
	}
	switch c.Distance {
	case DistanceTooClose:
		out = append(out, "Move back")
	case DistanceTooFar:
		out = append(out, "Move closer")
	}
	switch c.Angle {
	case AngleLeft, AngleRight:
		out = append(out, "Look straight at the camera")
	case AngleUp, AngleDown:
		out = append(out, "Keep your head level")
	}
	return out
}
