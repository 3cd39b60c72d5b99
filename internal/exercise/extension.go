package exercise

import (
	"fmt"

	"github.com/ayusman/greeva/internal/geometry"
	"github.com/ayusman/greeva/internal/pose"
)

// extensionScorer detects cervical extension: the nose-to-shoulder
// distance grows relative to the calibrated baseline as the head tilts
// back.
type extensionScorer struct {
	threshold float64
}

// NewExtensionDetector creates the cervical extension detector.
func NewExtensionDetector(cfg Config) *Detector {
	return newDetector(&extensionScorer{threshold: cfg.ExtensionThreshold}, cfg)
}

func (s *extensionScorer) exercise() Type {
	return Extension
}

func (s *extensionScorer) required() []int {
	return []int{pose.Nose, pose.LeftShoulder, pose.RightShoulder}
}

func (s *extensionScorer) measure(lm *pose.Landmarks) []float64 {
	return []float64{geometry.Distance(lm.Points[pose.Nose].Point, lm.MidShoulder())}
}

func (s *extensionScorer) score(current, baseline []float64) verdict {
	ratio := geometry.Ratio(current[0], baseline[0])
	detected := ratio > s.threshold

	var confidence float64
	message := fmt.Sprintf("Tilt your head back to look upward (ratio %.2f)", ratio)
	if detected {
		confidence = geometry.Clamp((ratio-s.threshold)/0.15, 0, 1)
		message = fmt.Sprintf("Extension detected (ratio %.2f)", ratio)
	}

	return verdict{
		detected:   detected,
		confidence: confidence,
		metrics: map[string]float64{
			"distance_ratio": ratio,
			"threshold":      s.threshold,
		},
		message: message,
	}
}
