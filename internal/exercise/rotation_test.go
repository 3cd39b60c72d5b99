package exercise

import (
	"strings"
	"testing"

	"github.com/ayusman/greeva/internal/pose"
)

func TestRotationScorer_AsymmetryDetection(t *testing.T) {
	s := &rotationScorer{threshold: 1.5}

	// Right ear visibility collapsed to a quarter of baseline: the
	// asymmetry ratio is 4.0, and the still-visible left ear names a
	// left rotation.
	v := s.score([]float64{0.8, 0.2}, []float64{0.8, 0.8})

	if !v.detected {
		t.Fatal("asymmetry 4.0 should be detected")
	}
	if !strings.Contains(v.message, "Left") {
		t.Errorf("message = %q, want left rotation", v.message)
	}
}

func TestRotationScorer_BalancedVisibilityNotDetected(t *testing.T) {
	s := &rotationScorer{threshold: 1.5}

	v := s.score([]float64{0.9, 0.9}, []float64{0.9, 0.9})
	if v.detected {
		t.Error("balanced ear visibility should not be detected")
	}
	if v.metrics["asymmetry"] != 1.0 {
		t.Errorf("asymmetry = %f, want 1.0", v.metrics["asymmetry"])
	}
}

func TestRotationScorer_ZeroVisibilityGuard(t *testing.T) {
	s := &rotationScorer{threshold: 1.5}

	// A fully occluded ear must not divide by zero; the epsilon guard
	// produces a huge but finite asymmetry.
	v := s.score([]float64{0.8, 0.0}, []float64{0.8, 0.8})
	if !v.detected {
		t.Error("fully occluded ear should register as rotation")
	}
	if v.confidence != 1 {
		t.Errorf("confidence = %f, want clamped to 1", v.confidence)
	}
}

func TestRotationDetector_EndToEnd(t *testing.T) {
	d := NewRotationDetector(DefaultConfig())
	calibrateDetector(t, d)

	// The rotated pose drops one ear's visibility below the global
	// minimum, but ear visibility is rotation's signal, not a gate.
	r := d.Detect(pose.RotatedLeftPose())

	if r.Status == StatusError {
		t.Fatalf("rotation must not gate on ear visibility: %q", r.Message)
	}
	if !r.Detected {
		t.Fatal("rotated pose should be detected")
	}
	if !strings.Contains(r.Message, "Left rotation detected") {
		t.Errorf("message = %q, want left rotation detection", r.Message)
	}
}
