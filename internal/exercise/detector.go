package exercise

import (
	"fmt"
	"time"

	"github.com/ayusman/greeva/internal/geometry"
	"github.com/ayusman/greeva/internal/pose"
)

// scorer isolates the exercise-specific math: which landmarks a variant
// needs, how it reduces a snapshot to a measurement vector, and how the
// current measurement compares against the calibrated baseline. The
// surrounding Detector handles calibration, smoothing and state
// transitions uniformly for every variant.
type scorer interface {
	exercise() Type

	// required returns the landmark indices whose visibility must meet
	// the minimum threshold before a frame is evaluated. Landmarks
	// whose visibility is itself the measured signal are excluded.
	required() []int

	// measure reduces a snapshot to this exercise's measurement vector.
	measure(lm *pose.Landmarks) []float64

	// score compares the current measurement against the baseline and
	// produces the raw, unsmoothed verdict for this frame.
	score(current, baseline []float64) verdict
}

// verdict is the raw per-frame outcome produced by a scorer before
// confidence smoothing is applied.
type verdict struct {
	detected   bool
	confidence float64
	metrics    map[string]float64
	message    string
}

// Detector is the per-exercise state machine. It starts calibrating,
// transitions to ready once its baseline window fills, and then
// evaluates every frame against the finalized baseline. A transient bad
// frame reports an error result without disturbing calibration progress
// or the baseline; Reset returns the detector to the calibrating state.
type Detector struct {
	cfg            Config
	s              scorer
	cal            *Calibrator
	baseline       []float64
	calibrated     bool
	prevConfidence float64
	hasPrev        bool
}

func newDetector(s scorer, cfg Config) *Detector {
	return &Detector{
		cfg: cfg,
		s:   s,
		cal: NewCalibrator(cfg.CalibrationFrames),
	}
}

// Exercise returns the exercise type this detector evaluates.
func (d *Detector) Exercise() Type {
	return d.s.exercise()
}

// Calibrated reports whether the detector has finalized its baseline.
func (d *Detector) Calibrated() bool {
	return d.calibrated
}

// Detect evaluates one frame. A nil snapshot means no pose was visible.
// The returned result is a value owned by the caller.
func (d *Detector) Detect(lm *pose.Landmarks) Result {
	if lm == nil {
		return d.errorResult("No pose detected", time.Now().UnixMilli())
	}

	ts := lm.Timestamp
	if ts == 0 {
		ts = time.Now().UnixMilli()
	}

	for _, idx := range d.s.required() {
		if lm.Points[idx].Visibility < d.cfg.MinVisibility {
			return d.errorResult("Low landmark visibility", ts)
		}
	}

	if !d.calibrated {
		return d.calibrate(lm, ts)
	}

	v := d.s.score(d.s.measure(lm), d.baseline)

	confidence := geometry.Clamp(v.confidence, 0, 1)
	if d.hasPrev {
		confidence = geometry.Smooth(confidence, d.prevConfidence, d.cfg.Smoothing)
	}
	d.prevConfidence = confidence
	d.hasPrev = true

	status := StatusNotDetected
	if v.detected {
		status = StatusDetected
	}

	return Result{
		Exercise:   d.Exercise(),
		Detected:   v.detected,
		Confidence: confidence,
		Status:     status,
		Message:    v.message,
		Metrics:    v.metrics,
		Timestamp:  ts,
	}
}

// calibrate feeds one valid measurement into the baseline window and
// finalizes the baseline when the window fills.
func (d *Detector) calibrate(lm *pose.Landmarks, ts int64) Result {
	state := d.cal.Accept(d.s.measure(lm))

	if state == Complete {
		baseline, err := d.cal.Finalize()
		if err != nil {
			// Unreachable: Accept reported a full window.
			panic(fmt.Sprintf("exercise: finalize after complete window: %v", err))
		}
		d.baseline = baseline
		d.calibrated = true

		return Result{
			Exercise:  d.Exercise(),
			Status:    StatusReady,
			Message:   "Calibration complete. Start exercising.",
			Timestamp: ts,
		}
	}

	collected := d.cal.Collected()
	capacity := d.cal.Capacity()
	progress := float64(collected) / float64(capacity) * 100

	return Result{
		Exercise:  d.Exercise(),
		Status:    StatusCalibrating,
		Message:   fmt.Sprintf("Calibrating... %.0f%% (%d/%d)", progress, collected, capacity),
		Timestamp: ts,
	}
}

// Reset discards the baseline and all calibration progress, returning
// the detector to the calibrating state.
func (d *Detector) Reset() {
	d.cal.Reset()
	d.baseline = nil
	d.calibrated = false
	d.prevConfidence = 0
	d.hasPrev = false
}

// errorResult builds the transient per-frame error result. It never
// mutates calibration progress or the finalized baseline.
func (d *Detector) errorResult(message string, ts int64) Result {
	return Result{
		Exercise:  d.Exercise(),
		Status:    StatusError,
		Message:   message,
		Timestamp: ts,
	}
}
