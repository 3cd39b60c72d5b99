package e2e

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/ayusman/greeva/internal/app"
	"github.com/ayusman/greeva/internal/exercise"
	"github.com/ayusman/greeva/internal/pose"
	"github.com/ayusman/greeva/internal/server"
	"github.com/ayusman/greeva/internal/store"
)

func TestE2E_CompleteWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "data.db")

	s, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	application := app.New(app.Config{
		Store:    s,
		CameraID: -1,
	})
	application.SetSource(pose.NewMockSource())

	srv := server.New(server.Config{
		Store: s,
		App:   application,
	})
	defer srv.Close()
	ts := httptest.NewServer(srv)
	defer ts.Close()

	client := ts.Client()

	t.Run("Health", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/health")
		if err != nil {
			t.Fatalf("health check error = %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
		}
	})

	coordinator := application.Coordinator()

	t.Run("Calibrate", func(t *testing.T) {
		var results map[exercise.Type]exercise.Result
		for i := 0; i < 15; i++ {
			results = coordinator.Process(pose.NeutralPose())
		}

		for _, exType := range exercise.All() {
			if results[exType].Status != exercise.StatusReady {
				t.Errorf("%s status = %s after calibration, want %s",
					exType, results[exType].Status, exercise.StatusReady)
			}
		}
	})

	t.Run("DetectFlexion", func(t *testing.T) {
		results := coordinator.Process(pose.FlexedPose())

		r := results[exercise.Flexion]
		if !r.Detected {
			t.Fatalf("flexion not detected: %+v", r)
		}
		if results[exercise.Extension].Detected {
			t.Error("extension should not be detected during flexion")
		}
	})

	t.Run("StatsReflectDetection", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/stats")
		if err != nil {
			t.Fatalf("stats error = %v", err)
		}
		defer resp.Body.Close()

		var stats exercise.Stats
		if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
			t.Fatalf("failed to decode stats: %v", err)
		}

		if stats.TotalDetections != 1 {
			t.Errorf("total_detections = %d, want 1", stats.TotalDetections)
		}
		if stats.ReadyDetectors != len(exercise.All()) {
			t.Errorf("ready_detectors = %d, want %d", stats.ReadyDetectors, len(exercise.All()))
		}
	})

	t.Run("ResetOneDetector", func(t *testing.T) {
		resp, err := client.Post(ts.URL+"/api/reset?exercise=flexion", "application/json", nil)
		if err != nil {
			t.Fatalf("reset error = %v", err)
		}
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
		}

		// The reset detector recalibrates; the others keep their baseline.
		results := coordinator.Process(pose.NeutralPose())
		if results[exercise.Flexion].Status != exercise.StatusCalibrating {
			t.Errorf("flexion status = %s after reset, want %s",
				results[exercise.Flexion].Status, exercise.StatusCalibrating)
		}
		if results[exercise.Extension].Status == exercise.StatusCalibrating {
			t.Error("extension should not recalibrate when flexion is reset")
		}
	})

	t.Run("SessionsAPI", func(t *testing.T) {
		session, err := s.Sessions().Begin()
		if err != nil {
			t.Fatalf("Begin() error = %v", err)
		}
		err = s.Events().Record(&store.DetectionEvent{
			SessionID:  session.ID,
			Exercise:   string(exercise.Flexion),
			Confidence: 0.9,
			Message:    "Flexion detected (ratio 0.75)",
		})
		if err != nil {
			t.Fatalf("Record() error = %v", err)
		}

		resp, err := client.Get(ts.URL + "/api/sessions/" + session.ID + "/events")
		if err != nil {
			t.Fatalf("events error = %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
		}

		var body struct {
			Events []struct {
				Exercise string `json:"exercise"`
			} `json:"events"`
			Counts map[string]int `json:"counts"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode events: %v", err)
		}

		if len(body.Events) != 1 {
			t.Fatalf("got %d events, want 1", len(body.Events))
		}
		if body.Counts[string(exercise.Flexion)] != 1 {
			t.Errorf("flexion count = %d, want 1", body.Counts[string(exercise.Flexion)])
		}
	})

	t.Run("APIStillWorks", func(t *testing.T) {
		resp, _ := client.Get(ts.URL + "/api/health")
		if resp.StatusCode != http.StatusOK {
			t.Errorf("health check failed after detection operations")
		}
		resp.Body.Close()
	})
}

func TestE2E_AbsencePreservesCalibration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	coordinator := exercise.NewCoordinator(exercise.DefaultConfig())

	// Partially calibrate, lose the pose, then finish calibrating.
	for i := 0; i < 5; i++ {
		coordinator.Process(pose.NeutralPose())
	}
	for i := 0; i < 3; i++ {
		results := coordinator.Process(nil)
		for _, exType := range exercise.All() {
			if results[exType].Status != exercise.StatusError {
				t.Fatalf("%s status = %s for absent pose, want %s",
					exType, results[exType].Status, exercise.StatusError)
			}
		}
	}
	var results map[exercise.Type]exercise.Result
	for i := 0; i < 10; i++ {
		results = coordinator.Process(pose.NeutralPose())
	}

	for _, exType := range exercise.All() {
		if results[exType].Status != exercise.StatusReady {
			t.Errorf("%s status = %s, want %s (absent frames must not discard samples)",
				exType, results[exType].Status, exercise.StatusReady)
		}
	}
}
