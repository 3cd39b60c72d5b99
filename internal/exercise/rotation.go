package exercise

import (
	"fmt"
	"math"

	"github.com/ayusman/greeva/internal/geometry"
	"github.com/ayusman/greeva/internal/pose"
)

// rotationEpsilon guards the asymmetry division when the less-visible
// ear's normalized visibility collapses to zero.
const rotationEpsilon = 1e-6

// rotationScorer detects neck rotation from ear visibility asymmetry:
// turning the head rotates one ear away from the camera and its
// visibility score collapses relative to the calibrated baseline. The
// more-visible ear names the rotation direction. Ear visibility is the
// measured signal here, so the ears are deliberately excluded from the
// minimum-visibility gate.
type rotationScorer struct {
	threshold float64
}

// NewRotationDetector creates the neck rotation detector.
func NewRotationDetector(cfg Config) *Detector {
	return newDetector(&rotationScorer{threshold: cfg.RotationThreshold}, cfg)
}

func (s *rotationScorer) exercise() Type {
	return Rotation
}

func (s *rotationScorer) required() []int {
	return []int{pose.Nose}
}

func (s *rotationScorer) measure(lm *pose.Landmarks) []float64 {
	return []float64{
		lm.Points[pose.LeftEar].Visibility,
		lm.Points[pose.RightEar].Visibility,
	}
}

func (s *rotationScorer) score(current, baseline []float64) verdict {
	left := geometry.Ratio(current[0], baseline[0])
	right := geometry.Ratio(current[1], baseline[1])

	asymmetry := math.Max(left, right) / math.Max(math.Min(left, right), rotationEpsilon)
	detected := asymmetry > s.threshold

	direction := "Right"
	if left >= right {
		direction = "Left"
	}

	var confidence float64
	message := fmt.Sprintf("Turn your head further to the side (ratio %.2f)", asymmetry)
	if detected {
		confidence = geometry.Clamp(asymmetry-s.threshold, 0, 1)
		message = fmt.Sprintf("%s rotation detected (ratio %.2f)", direction, asymmetry)
	}

	return verdict{
		detected:   detected,
		confidence: confidence,
		metrics: map[string]float64{
			"visibility_left":  left,
			"visibility_right": right,
			"asymmetry":        asymmetry,
			"threshold":        s.threshold,
		},
		message: message,
	}
}
