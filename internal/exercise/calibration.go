package exercise

import (
	"errors"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// ErrInsufficientData is returned by Finalize when the calibration
// window is not yet full. Reaching it through Detector.Detect indicates
// a state-machine bug, not a bad frame.
var ErrInsufficientData = errors.New("calibration window not full")

// CalibrationState reports the progress of a calibration window.
type CalibrationState int

const (
	// Collecting means the window still has free slots.
	Collecting CalibrationState = iota
	// Complete means the window is full and the baseline can be
	// finalized.
	Complete
)

// Calibrator accumulates a fixed window of measurement vectors and
// reduces each dimension to its median, producing a baseline that is
// robust to single-frame jitter. Only valid measurements reach Accept,
// so interspersed bad frames never consume a calibration slot.
type Calibrator struct {
	capacity int
	samples  [][]float64
}

// NewCalibrator creates a Calibrator that fills after the given number
// of accepted samples.
func NewCalibrator(frames int) *Calibrator {
	return &Calibrator{
		capacity: frames,
		samples:  make([][]float64, 0, frames),
	}
}

// Accept appends one frame's measurement vector to the window and
// reports whether the window is now full. Samples offered to a full
// window are discarded.
func (c *Calibrator) Accept(measurement []float64) CalibrationState {
	if len(c.samples) < c.capacity {
		sample := make([]float64, len(measurement))
		copy(sample, measurement)
		c.samples = append(c.samples, sample)
	}
	if len(c.samples) >= c.capacity {
		return Complete
	}
	return Collecting
}

// Collected returns the number of samples accepted so far.
func (c *Calibrator) Collected() int {
	return len(c.samples)
}

// Capacity returns the size of the calibration window.
func (c *Calibrator) Capacity() int {
	return c.capacity
}

// Full reports whether the window has been filled.
func (c *Calibrator) Full() bool {
	return len(c.samples) >= c.capacity
}

// Finalize reduces the filled window to a per-dimension median baseline.
// It fails with ErrInsufficientData if the window is not yet full.
func (c *Calibrator) Finalize() ([]float64, error) {
	if !c.Full() {
		return nil, ErrInsufficientData
	}

	dims := len(c.samples[0])
	baseline := make([]float64, dims)
	column := make([]float64, len(c.samples))

	for d := 0; d < dims; d++ {
		for i, sample := range c.samples {
			column[i] = sample[d]
		}
		sort.Float64s(column)
		baseline[d] = stat.Quantile(0.5, stat.LinInterp, column, nil)
	}

	return baseline, nil
}

// Reset discards all collected samples.
func (c *Calibrator) Reset() {
	c.samples = c.samples[:0]
}
