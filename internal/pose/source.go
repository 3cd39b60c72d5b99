package pose

import "gocv.io/x/gocv"

// Source defines the interface for pose landmark providers.
type Source interface {
	// Detect analyzes a video frame and returns the extracted landmark
	// snapshot. Returns nil (and no error) when no pose is visible.
	Detect(frame *gocv.Mat) (*Landmarks, error)

	// Close releases any resources held by the source.
	Close() error
}

// Config holds configuration options for pose detection.
type Config struct {
	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64

	// ModelComplexity selects the pose model variant (0, 1 or 2).
	ModelComplexity int
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
		ModelComplexity: 1,
	}
}
