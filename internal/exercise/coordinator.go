package exercise

import (
	"fmt"
	"sync"
	"time"

	"github.com/ayusman/greeva/internal/pose"
)

// Stats is a read-only snapshot of coordinator-level session counters.
type Stats struct {
	TotalDetections     int           `json:"total_detections"`
	SessionDuration     time.Duration `json:"-"`
	SessionSeconds      float64       `json:"session_seconds"`
	DetectionsPerSecond float64       `json:"detections_per_second"`
	ReadyDetectors      int           `json:"ready_detectors"`
	TotalDetectors      int           `json:"total_detectors"`
}

// Coordinator owns one detector per exercise type, routes each frame's
// snapshot to all of them and aggregates the results. Processing is
// frame-sequential; the internal mutex serializes resets against
// in-flight frames.
type Coordinator struct {
	mu              sync.Mutex
	detectors       map[Type]*Detector
	totalDetections int
	start           time.Time
}

// NewCoordinator creates a Coordinator with all five exercise detectors
// registered and calibrating.
func NewCoordinator(cfg Config) *Coordinator {
	return &Coordinator{
		detectors: map[Type]*Detector{
			Flexion:     NewFlexionDetector(cfg),
			Extension:   NewExtensionDetector(cfg),
			LateralTilt: NewLateralTiltDetector(cfg),
			Rotation:    NewRotationDetector(cfg),
			ChinTuck:    NewChinTuckDetector(cfg),
		},
		start: time.Now(),
	}
}

// Process evaluates one frame against every registered detector. The
// returned map always contains an entry for every exercise, even when
// the snapshot is absent. The session detection counter increments when
// any detector reports a detection this frame.
func (c *Coordinator) Process(lm *pose.Landmarks) map[Type]Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	results := make(map[Type]Result, len(c.detectors))
	anyDetected := false

	for t, d := range c.detectors {
		r := d.Detect(lm)
		results[t] = r
		if r.Detected {
			anyDetected = true
		}
	}

	if anyDetected {
		c.totalDetections++
	}

	return results
}

// ResetAll resets every detector to the calibrating state and clears the
// session counters. The session start time is preserved.
func (c *Coordinator) ResetAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, d := range c.detectors {
		d.Reset()
	}
	c.totalDetections = 0
}

// Reset recalibrates a single exercise without disturbing the others.
func (c *Coordinator) Reset(t Type) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	d, ok := c.detectors[t]
	if !ok {
		return fmt.Errorf("unknown exercise %q", t)
	}
	d.Reset()
	return nil
}

// Calibrated reports whether the given exercise has a finalized
// baseline.
func (c *Coordinator) Calibrated(t Type) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	d, ok := c.detectors[t]
	return ok && d.Calibrated()
}

// Stats returns a snapshot of the session counters. It is computed from
// the counters and wall clock; no result history is retained.
func (c *Coordinator) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	duration := time.Since(c.start)
	seconds := duration.Seconds()

	perSecond := 0.0
	if seconds > 0 {
		perSecond = float64(c.totalDetections) / seconds
	}

	ready := 0
	for _, d := range c.detectors {
		if d.Calibrated() {
			ready++
		}
	}

	return Stats{
		TotalDetections:     c.totalDetections,
		SessionDuration:     duration,
		SessionSeconds:      seconds,
		DetectionsPerSecond: perSecond,
		ReadyDetectors:      ready,
		TotalDetectors:      len(c.detectors),
	}
}
