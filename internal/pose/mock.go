package pose

import (
	"github.com/ayusman/greeva/internal/geometry"
	"gocv.io/x/gocv"
)

// MockSource is a test implementation of the Source interface.
// It allows tests to control the detection results.
type MockSource struct {
	landmarks *Landmarks
	err       error
}

// NewMockSource creates a new MockSource instance.
func NewMockSource() *MockSource {
	return &MockSource{}
}

// SetLandmarks sets the snapshot that will be returned by Detect.
// Passing nil simulates "no pose detected".
func (m *MockSource) SetLandmarks(lm *Landmarks) {
	m.landmarks = lm
}

// SetError sets the error that will be returned by Detect.
func (m *MockSource) SetError(err error) {
	m.err = err
}

// Detect returns the pre-configured snapshot or error.
func (m *MockSource) Detect(frame *gocv.Mat) (*Landmarks, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.landmarks, nil
}

// Close is a no-op for the mock source.
func (m *MockSource) Close() error {
	return nil
}

// point builds a fully visible landmark at the given pixel coordinates.
func point(x, y, visibility float64) Landmark {
	return Landmark{Point: geometry.Point{X: x, Y: y}, Visibility: visibility}
}

// NeutralPose returns a preset snapshot of an upright, forward-facing
// head in a 640x480 frame. The nose sits exactly 200px above the
// shoulder midpoint, which makes baseline arithmetic easy to follow in
// tests. The ear line is slightly asymmetric so that the chin-tuck
// baseline offset is non-zero.
func NeutralPose() *Landmarks {
	lm := &Landmarks{}
	lm.Points[Nose] = point(320, 200, 0.95)
	lm.Points[LeftEar] = point(284, 210, 0.95)
	lm.Points[RightEar] = point(360, 212, 0.95)
	lm.Points[LeftShoulder] = point(240, 400, 0.95)
	lm.Points[RightShoulder] = point(400, 400, 0.95)
	return lm
}

// FlexedPose returns the neutral pose with the chin lowered toward the
// chest: the nose-to-shoulder distance shrinks from 200px to 150px.
func FlexedPose() *Landmarks {
	lm := NeutralPose()
	lm.Points[Nose] = point(320, 250, 0.95)
	return lm
}

// ExtendedPose returns the neutral pose with the head tilted back: the
// nose-to-shoulder distance grows from 200px to 240px.
func ExtendedPose() *Landmarks {
	lm := NeutralPose()
	lm.Points[Nose] = point(320, 160, 0.95)
	return lm
}

// TiltedRightPose returns a head tilted toward the right side: the
// nose-to-left-ear distance shrinks while the nose-to-right-ear
// distance grows.
func TiltedRightPose() *Landmarks {
	lm := NeutralPose()
	lm.Points[LeftEar] = point(302, 205, 0.95)
	lm.Points[RightEar] = point(390, 218, 0.95)
	return lm
}

// RotatedLeftPose returns a head turned to the left: the right ear
// rotates away from the camera and its visibility collapses.
func RotatedLeftPose() *Landmarks {
	lm := NeutralPose()
	lm.Points[RightEar] = point(350, 212, 0.25)
	return lm
}

// TuckedPose returns a chin-tuck posture: the nose retracts toward the
// ear midline horizontally while its vertical depth below the ear line
// increases.
func TuckedPose() *Landmarks {
	lm := NeutralPose()
	lm.Points[Nose] = point(321, 186, 0.95)
	return lm
}

// LowVisibilityPose returns the neutral pose with every landmark below
// the default visibility threshold, as happens under glare or partial
// occlusion.
func LowVisibilityPose() *Landmarks {
	lm := NeutralPose()
	for i := range lm.Points {
		lm.Points[i].Visibility = 0.2
	}
	return lm
}
