package app

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/ayusman/greeva/internal/capture"
	"github.com/ayusman/greeva/internal/exercise"
	"github.com/ayusman/greeva/internal/pose"
	"github.com/ayusman/greeva/internal/store"
	"gocv.io/x/gocv"
)

func newTestApp(t *testing.T) (*App, *store.Store) {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })

	return New(Config{
		Store:        s,
		CameraID:     -1,
		MotionThresh: 1.0,
	}), s
}

func TestApp_Pipeline_PublishesResults(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app, _ := newTestApp(t)

	frame := gocv.NewMatWithSize(capture.DefaultHeight, capture.DefaultWidth, gocv.MatTypeCV8UC3)
	defer frame.Close()
	app.SetCamera(capture.NewMockCamera([]*gocv.Mat{&frame}, true))

	mock := pose.NewMockSource()
	mock.SetLandmarks(pose.NeutralPose())
	app.SetSource(mock)

	if err := app.Start(); err != nil {
		t.Fatalf("app.Start() error = %v", err)
	}
	defer app.Stop()

	app.SetEnabled(true)

	// Poll until the pipeline has processed at least one frame.
	deadline := time.Now().Add(3 * time.Second)
	var results map[exercise.Type]exercise.Result
	for time.Now().Before(deadline) {
		results = app.LatestResults()
		if len(results) > 0 {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}

	if len(results) != len(exercise.All()) {
		t.Fatalf("LatestResults() has %d entries, want %d", len(results), len(exercise.All()))
	}
	for _, exType := range exercise.All() {
		r, ok := results[exType]
		if !ok {
			t.Errorf("missing result for %s", exType)
			continue
		}
		if r.Status != exercise.StatusCalibrating {
			t.Errorf("%s status = %s, want %s", exType, r.Status, exercise.StatusCalibrating)
		}
	}
}

func TestApp_Pipeline_DisabledSkipsProcessing(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app, _ := newTestApp(t)

	frame := gocv.NewMatWithSize(capture.DefaultHeight, capture.DefaultWidth, gocv.MatTypeCV8UC3)
	defer frame.Close()
	app.SetCamera(capture.NewMockCamera([]*gocv.Mat{&frame}, true))

	mock := pose.NewMockSource()
	mock.SetLandmarks(pose.NeutralPose())
	app.SetSource(mock)

	if err := app.Start(); err != nil {
		t.Fatalf("app.Start() error = %v", err)
	}
	defer app.Stop()

	// Detection stays disabled; no results should be published.
	time.Sleep(500 * time.Millisecond)

	if results := app.LatestResults(); len(results) != 0 {
		t.Errorf("LatestResults() has %d entries while disabled, want 0", len(results))
	}
}

func TestApp_StartStop_SessionLifecycle(t *testing.T) {
	app, s := newTestApp(t)
	app.SetCamera(capture.NewMockCamera(nil, false))

	if err := app.Start(); err != nil {
		t.Fatalf("app.Start() error = %v", err)
	}

	sessions, err := s.Sessions().List()
	if err != nil {
		t.Fatalf("Sessions().List() error = %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("got %d sessions after Start, want 1", len(sessions))
	}
	if sessions[0].EndedAt != nil {
		t.Error("session should be open while app is running")
	}

	app.Stop()

	got, err := s.Sessions().GetByID(sessions[0].ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.EndedAt == nil {
		t.Error("session should be closed after Stop")
	}
}

func TestApp_Start_Idempotent(t *testing.T) {
	app, s := newTestApp(t)
	app.SetCamera(capture.NewMockCamera(nil, false))

	if err := app.Start(); err != nil {
		t.Fatalf("first Start() error = %v", err)
	}
	if err := app.Start(); err != nil {
		t.Fatalf("second Start() error = %v", err)
	}
	defer app.Stop()

	sessions, err := s.Sessions().List()
	if err != nil {
		t.Fatalf("Sessions().List() error = %v", err)
	}
	if len(sessions) != 1 {
		t.Errorf("got %d sessions after double Start, want 1", len(sessions))
	}
}

func TestApp_Publish_RecordsRisingEdgesOnly(t *testing.T) {
	app, s := newTestApp(t)

	session, err := s.Sessions().Begin()
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	app.session = session

	detected := map[exercise.Type]exercise.Result{
		exercise.Flexion: {
			Exercise:   exercise.Flexion,
			Detected:   true,
			Confidence: 0.9,
			Status:     exercise.StatusDetected,
			Message:    "Flexion detected (ratio 0.72)",
		},
	}
	notDetected := map[exercise.Type]exercise.Result{
		exercise.Flexion: {
			Exercise: exercise.Flexion,
			Status:   exercise.StatusNotDetected,
		},
	}

	// A held exercise spans several frames but records one event.
	app.publish(detected)
	app.publish(detected)
	app.publish(detected)
	app.publish(notDetected)
	app.publish(detected)

	events, err := s.Events().ListBySession(session.ID)
	if err != nil {
		t.Fatalf("ListBySession() error = %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2 (one per rising edge)", len(events))
	}
	if events[0].Exercise != string(exercise.Flexion) {
		t.Errorf("event exercise = %s, want %s", events[0].Exercise, exercise.Flexion)
	}
	if events[0].Confidence != 0.9 {
		t.Errorf("event confidence = %v, want 0.9", events[0].Confidence)
	}
}

func TestApp_Publish_ErrorFramesKeepEdgeState(t *testing.T) {
	app, s := newTestApp(t)

	session, err := s.Sessions().Begin()
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	app.session = session

	detected := map[exercise.Type]exercise.Result{
		exercise.ChinTuck: {
			Exercise:   exercise.ChinTuck,
			Detected:   true,
			Confidence: 0.5,
			Status:     exercise.StatusDetected,
		},
	}
	errorFrame := map[exercise.Type]exercise.Result{
		exercise.ChinTuck: {
			Exercise: exercise.ChinTuck,
			Status:   exercise.StatusError,
			Message:  "No pose detected",
		},
	}

	// Detection, then a dropped frame, then the same hold continuing.
	app.publish(detected)
	app.publish(errorFrame)
	app.publish(detected)

	events, err := s.Events().ListBySession(session.ID)
	if err != nil {
		t.Fatalf("ListBySession() error = %v", err)
	}
	if len(events) != 1 {
		t.Errorf("got %d events, want 1 (error frame must not reset the edge)", len(events))
	}
}
