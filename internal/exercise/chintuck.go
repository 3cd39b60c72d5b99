package exercise

import (
	"fmt"
	"math"

	"github.com/ayusman/greeva/internal/geometry"
	"github.com/ayusman/greeva/internal/pose"
)

// chinTuckScorer detects chin retraction: the nose pulls in toward the
// ear midline horizontally while its vertical depth below the ear line
// increases. Both conditions must hold.
type chinTuckScorer struct {
	offsetThreshold float64
	depthThreshold  float64
}

// NewChinTuckDetector creates the chin tuck detector.
func NewChinTuckDetector(cfg Config) *Detector {
	return newDetector(&chinTuckScorer{
		offsetThreshold: cfg.ChinTuckOffsetThreshold,
		depthThreshold:  cfg.ChinTuckDepthThreshold,
	}, cfg)
}

func (s *chinTuckScorer) exercise() Type {
	return ChinTuck
}

func (s *chinTuckScorer) required() []int {
	return []int{pose.Nose, pose.LeftEar, pose.RightEar}
}

func (s *chinTuckScorer) measure(lm *pose.Landmarks) []float64 {
	nose := lm.Points[pose.Nose].Point
	midEar := lm.MidEar()
	return []float64{
		math.Abs(nose.X - midEar.X),
		math.Abs(nose.Y - midEar.Y),
	}
}

func (s *chinTuckScorer) score(current, baseline []float64) verdict {
	offset := geometry.Ratio(current[0], baseline[0])
	depth := geometry.Ratio(current[1], baseline[1])
	detected := offset < s.offsetThreshold && depth > s.depthThreshold

	var confidence float64
	message := fmt.Sprintf("Pull your chin straight back (offset %.2f)", offset)
	if detected {
		confidence = geometry.Clamp((s.offsetThreshold-offset)+(depth-s.depthThreshold), 0, 1)
		message = fmt.Sprintf("Chin tuck detected (offset %.2f, depth %.2f)", offset, depth)
	}

	return verdict{
		detected:   detected,
		confidence: confidence,
		metrics: map[string]float64{
			"offset_ratio": offset,
			"depth_ratio":  depth,
			"threshold":    s.offsetThreshold,
		},
		message: message,
	}
}
