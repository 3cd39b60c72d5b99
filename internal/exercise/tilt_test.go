package exercise

import (
	"math"
	"strings"
	"testing"

	"github.com/ayusman/greeva/internal/pose"
)

func TestTiltScorer_DirectionFromRatioSign(t *testing.T) {
	s := &tiltScorer{threshold: 0.15}

	// Left ratio 0.40, right ratio 0.62: the divergence is 0.22 and the
	// larger right ratio names a right tilt.
	v := s.score([]float64{0.40, 0.62}, []float64{1.0, 1.0})

	if !v.detected {
		t.Fatal("divergence 0.22 should be detected")
	}
	if math.Abs(v.metrics["ratio_diff"]-0.22) > 1e-9 {
		t.Errorf("ratio_diff = %f, want 0.22", v.metrics["ratio_diff"])
	}
	if !strings.Contains(v.message, "Right") {
		t.Errorf("message = %q, want right tilt", v.message)
	}

	// Mirrored ratios name a left tilt.
	v = s.score([]float64{0.62, 0.40}, []float64{1.0, 1.0})
	if !v.detected || !strings.Contains(v.message, "Left") {
		t.Errorf("mirrored ratios: detected = %v message = %q, want left tilt", v.detected, v.message)
	}
}

func TestTiltScorer_BelowThreshold(t *testing.T) {
	s := &tiltScorer{threshold: 0.15}

	v := s.score([]float64{1.0, 1.1}, []float64{1.0, 1.0})
	if v.detected {
		t.Error("divergence 0.10 should not be detected")
	}
	if v.confidence != 0 {
		t.Errorf("confidence = %f, want 0", v.confidence)
	}
}

func TestLateralTiltDetector_EndToEnd(t *testing.T) {
	d := NewLateralTiltDetector(DefaultConfig())
	calibrateDetector(t, d)

	r := d.Detect(pose.TiltedRightPose())

	if !r.Detected {
		t.Fatal("tilted pose should be detected")
	}
	if !strings.Contains(r.Message, "Right tilt detected") {
		t.Errorf("message = %q, want right tilt detection", r.Message)
	}
	if r.Metrics["ratio_diff"] <= DefaultConfig().TiltThreshold {
		t.Errorf("ratio_diff = %f, want above threshold", r.Metrics["ratio_diff"])
	}
}
