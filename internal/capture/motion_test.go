package capture

import (
	"testing"

	"gocv.io/x/gocv"
)

func TestNewMotionGate(t *testing.T) {
	mg := NewMotionGate(1.0)
	if mg == nil {
		t.Fatal("NewMotionGate returned nil")
	}
	defer mg.Close()

	if mg.threshold != 1.0 {
		t.Errorf("threshold = %f, want 1.0", mg.threshold)
	}
	if mg.primed {
		t.Error("gate should not be primed before the first frame")
	}
}

func TestMotionGate_NoMotionOnStaticScene(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	mg := NewMotionGate(1.0)
	defer mg.Close()

	frame1 := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame1.Close()
	frame2 := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame2.Close()

	// First frame primes the baseline.
	detected, change := mg.Detect(&frame1)
	if detected {
		t.Error("priming frame should not report motion")
	}
	if change != 0 {
		t.Errorf("priming frame change = %f, want 0", change)
	}

	// An identical second frame is a static scene.
	detected, change = mg.Detect(&frame2)
	if detected {
		t.Errorf("static scene reported motion, change = %f", change)
	}
}

func TestMotionGate_DetectsSceneChange(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	mg := NewMotionGate(1.0)
	defer mg.Close()

	dark := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer dark.Close()

	bright := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 255, 255, 0), 480, 640, gocv.MatTypeCV8UC3)
	defer bright.Close()

	mg.Detect(&dark)
	detected, change := mg.Detect(&bright)

	if !detected {
		t.Errorf("full-frame change not reported as motion, change = %f", change)
	}
	if change < 90 {
		t.Errorf("change = %f, want nearly the whole frame", change)
	}
}

func TestMotionGate_Reset(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	mg := NewMotionGate(1.0)
	defer mg.Close()

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	mg.Detect(&frame)
	mg.Reset()

	if mg.primed {
		t.Error("gate should be unprimed after reset")
	}

	// The next frame primes again instead of differencing.
	detected, _ := mg.Detect(&frame)
	if detected {
		t.Error("first frame after reset should not report motion")
	}
}

func TestMotionGate_NilFrame(t *testing.T) {
	mg := NewMotionGate(1.0)
	defer mg.Close()

	detected, change := mg.Detect(nil)
	if detected || change != 0 {
		t.Errorf("nil frame: detected = %v change = %f, want false 0", detected, change)
	}
}

func TestMotionGate_SetThreshold(t *testing.T) {
	mg := NewMotionGate(1.0)
	defer mg.Close()

	mg.SetThreshold(5.0)
	if mg.threshold != 5.0 {
		t.Errorf("threshold = %f, want 5.0", mg.threshold)
	}

	// Non-positive values are ignored.
	mg.SetThreshold(0)
	mg.SetThreshold(-1)
	if mg.threshold != 5.0 {
		t.Errorf("threshold = %f, want unchanged 5.0", mg.threshold)
	}
}
