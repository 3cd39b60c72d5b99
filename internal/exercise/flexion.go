package exercise

import (
	"fmt"

	"github.com/ayusman/greeva/internal/geometry"
	"github.com/ayusman/greeva/internal/pose"
)

// flexionScorer detects chin-to-chest flexion: the nose-to-shoulder
// distance shrinks relative to the calibrated baseline.
type flexionScorer struct {
	threshold float64
}

// NewFlexionDetector creates the cervical flexion detector.
func NewFlexionDetector(cfg Config) *Detector {
	return newDetector(&flexionScorer{threshold: cfg.FlexionThreshold}, cfg)
}

func (s *flexionScorer) exercise() Type {
	return Flexion
}

func (s *flexionScorer) required() []int {
	return []int{pose.Nose, pose.LeftShoulder, pose.RightShoulder}
}

func (s *flexionScorer) measure(lm *pose.Landmarks) []float64 {
	return []float64{geometry.Distance(lm.Points[pose.Nose].Point, lm.MidShoulder())}
}

func (s *flexionScorer) score(current, baseline []float64) verdict {
	ratio := geometry.Ratio(current[0], baseline[0])
	detected := ratio < s.threshold

	var confidence float64
	message := fmt.Sprintf("Lower your chin toward your chest (ratio %.2f)", ratio)
	if detected {
		confidence = geometry.Clamp((s.threshold-ratio)/0.15, 0, 1)
		message = fmt.Sprintf("Flexion detected (ratio %.2f)", ratio)
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
