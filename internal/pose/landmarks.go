// Package pose provides pose source interfaces and the landmark snapshot
// types consumed by the exercise detectors.
package pose

import "github.com/ayusman/greeva/internal/geometry"

// Landmark indices into Landmarks.Points. The upstream MediaPipe pose
// model exposes 33 landmarks; only the five needed for cervical exercise
// detection are extracted (upstream indices 0, 7, 8, 11, 12).
// See: https://developers.google.com/mediapipe/solutions/vision/pose_landmarker
const (
	Nose          = 0
	LeftEar       = 1
	RightEar      = 2
	LeftShoulder  = 3
	RightShoulder = 4
	NumLandmarks  = 5
)

// Landmark is a single anatomical point with its visibility score.
// Visibility is the model's estimate in [0,1] that the point is
// actually visible in the frame.
type Landmark struct {
	geometry.Point
	Visibility float64 `json:"visibility"`
}

// Landmarks is one frame's snapshot of the five tracked anatomical
// points. A snapshot is either fully populated or absent (nil); it is
// built once per frame and never mutated afterwards.
type Landmarks struct {
	Points    [NumLandmarks]Landmark `json:"points"`
	Timestamp int64                  `json:"timestamp"` // unix milliseconds
}

// MidShoulder returns the midpoint between the two shoulder landmarks.
func (l *Landmarks) MidShoulder() geometry.Point {
	return geometry.Midpoint(l.Points[LeftShoulder].Point, l.Points[RightShoulder].Point)
}

// MidEar returns the midpoint between the two ear landmarks.
func (l *Landmarks) MidEar() geometry.Point {
	return geometry.Midpoint(l.Points[LeftEar].Point, l.Points[RightEar].Point)
}

// MinVisibility returns the lowest visibility score across all landmarks.
func (l *Landmarks) MinVisibility() float64 {
	min := l.Points[0].Visibility
	for i := 1; i < NumLandmarks; i++ {
		if l.Points[i].Visibility < min {
			min = l.Points[i].Visibility
		}
	}
	return min
}

// Visible reports whether every landmark meets the given minimum
// visibility threshold.
func (l *Landmarks) Visible(min float64) bool {
	return l.MinVisibility() >= min
}
