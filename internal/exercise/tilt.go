package exercise

import (
	"fmt"
	"math"

	"github.com/ayusman/greeva/internal/geometry"
	"github.com/ayusman/greeva/internal/pose"
)

// tiltScorer detects lateral neck tilt by comparing how the
// nose-to-left-ear and nose-to-right-ear distances deviate from their
// calibrated baselines. The sign of the divergence names the side:
// when the right-ear ratio is larger, the tilt is to the right.
type tiltScorer struct {
	threshold float64
}

// NewLateralTiltDetector creates the lateral neck tilt detector.
func NewLateralTiltDetector(cfg Config) *Detector {
	return newDetector(&tiltScorer{threshold: cfg.TiltThreshold}, cfg)
}

func (s *tiltScorer) exercise() Type {
	return LateralTilt
}

func (s *tiltScorer) required() []int {
	return []int{pose.Nose, pose.LeftEar, pose.RightEar}
}

func (s *tiltScorer) measure(lm *pose.Landmarks) []float64 {
	nose := lm.Points[pose.Nose].Point
	return []float64{
		geometry.Distance(nose, lm.Points[pose.LeftEar].Point),
		geometry.Distance(nose, lm.Points[pose.RightEar].Point),
	}
}

func (s *tiltScorer) score(current, baseline []float64) verdict {
	left := geometry.Ratio(current[0], baseline[0])
	right := geometry.Ratio(current[1], baseline[1])
	diff := math.Abs(left - right)
	detected := diff > s.threshold

	direction := "Left"
	if right > left {
		direction = "Right"
	}

	var confidence float64
	message := fmt.Sprintf("Tilt your head further to the side (difference %.2f)", diff)
	if detected {
		confidence = geometry.Clamp(diff/0.3, 0, 1)
		message = fmt.Sprintf("%s tilt detected (difference %.2f)", direction, diff)
	}

	return verdict{
		detected:   detected,
		confidence: confidence,
		metrics: map[string]float64{
			"ratio_left":  left,
			"ratio_right": right,
			"ratio_diff":  diff,
			"threshold":   s.threshold,
		},
		message: message,
	}
}
