// Package exercise provides the cervical exercise detection core: the
// baseline calibrator, the per-exercise detection state machines and the
// coordinator that fans frames out to them.
package exercise

import "fmt"

// Type identifies one of the supported cervical exercises.
type Type string

const (
	// Flexion is the chin-to-chest movement.
	Flexion Type = "flexion"
	// Extension is the look-upward movement.
	Extension Type = "extension"
	// LateralTilt is the ear-to-shoulder movement, left or right.
	LateralTilt Type = "lateral_tilt"
	// Rotation is the head turn, left or right.
	Rotation Type = "rotation"
	// ChinTuck is the chin retraction movement.
	ChinTuck Type = "chin_tuck"
)

// All returns every supported exercise type in a stable order.
func All() []Type {
	return []Type{Flexion, Extension, LateralTilt, Rotation, ChinTuck}
}

// ParseType converts an exercise identifier string to a Type.
func ParseType(s string) (Type, error) {
	for _, t := range All() {
		if s == string(t) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown exercise %q", s)
}

// DisplayName returns the human-readable name of the exercise.
func (t Type) DisplayName() string {
	switch t {
	case Flexion:
		return "Cervical Flexion (Chin-to-chest)"
	case Extension:
		return "Cervical Extension (Look upward)"
	case LateralTilt:
		return "Lateral Neck Tilt (Left and Right)"
	case Rotation:
		return "Neck Rotation (Turn head left/right)"
	case ChinTuck:
		return "Chin Tuck (Retract chin)"
	}
	return string(t)
}

// Status represents the outcome of one frame of detection.
type Status string

const (
	// StatusCalibrating means the detector is still collecting its
	// baseline window.
	StatusCalibrating Status = "calibrating"
	// StatusReady means calibration just completed on this frame.
	StatusReady Status = "ready"
	// StatusDetected means the exercise movement was recognized.
	StatusDetected Status = "detected"
	// StatusNotDetected means the frame was valid but no movement
	// crossed the detection threshold.
	StatusNotDetected Status = "not_detected"
	// StatusError means the frame could not be evaluated (no pose or
	// low landmark visibility). Recoverable on the next valid frame.
	StatusError Status = "error"
)

// Result is the per-frame output of one exercise detector. Results are
// values and never mutated after being returned.
type Result struct {
	Exercise   Type               `json:"exercise"`
	Detected   bool               `json:"detected"`
	Confidence float64            `json:"confidence"`
	Status     Status             `json:"status"`
	Message    string             `json:"message"`
	Metrics    map[string]float64 `json:"metrics,omitempty"`
	Timestamp  int64              `json:"timestamp"` // unix milliseconds
}

// Config holds the tunable detection parameters. All values are read at
// detector construction time; changing them requires resetting or
// rebuilding the affected detectors.
type Config struct {
	// FlexionThreshold: flexion is detected when the nose-to-shoulder
	// distance ratio drops below this value.
	FlexionThreshold float64 `yaml:"flexion_threshold"`

	// ExtensionThreshold: extension is detected when the ratio rises
	// above this value.
	ExtensionThreshold float64 `yaml:"extension_threshold"`

	// TiltThreshold: lateral tilt is detected when the left/right ear
	// distance ratios diverge by more than this value.
	TiltThreshold float64 `yaml:"tilt_threshold"`

	// RotationThreshold: rotation is detected when the ear visibility
	// asymmetry ratio exceeds this value.
	RotationThreshold float64 `yaml:"rotation_threshold"`

	// ChinTuckOffsetThreshold: the horizontal nose offset ratio must
	// drop below this value.
	ChinTuckOffsetThreshold float64 `yaml:"chin_tuck_offset_threshold"`

	// ChinTuckDepthThreshold: the vertical nose depth ratio must rise
	// above this value.
	ChinTuckDepthThreshold float64 `yaml:"chin_tuck_depth_threshold"`

	// CalibrationFrames is the number of valid frames collected before
	// a baseline is finalized.
	CalibrationFrames int `yaml:"calibration_frames"`

	// Smoothing is the exponential smoothing factor applied to
	// per-frame confidence scores.
	Smoothing float64 `yaml:"confidence_smoothing"`

	// MinVisibility is the minimum landmark visibility required for a
	// frame to be evaluated.
	MinVisibility float64 `yaml:"min_visibility"`
}

// DefaultConfig returns a Config with the standard detection parameters.
func DefaultConfig() Config {
	return Config{
		FlexionThreshold:        0.85,
		ExtensionThreshold:      1.15,
		TiltThreshold:           0.15,
		RotationThreshold:       1.5,
		ChinTuckOffsetThreshold: 0.8,
		ChinTuckDepthThreshold:  1.05,
		CalibrationFrames:       15,
		Smoothing:               0.3,
		MinVisibility:           0.5,
	}
}
