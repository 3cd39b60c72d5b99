package app

import (
	"log"
	"time"

	"github.com/ayusman/greeva/internal/capture"
	"github.com/ayusman/greeva/internal/exercise"
	"github.com/ayusman/greeva/internal/store"
)

// runPipeline is the main detection loop that processes frames from the camera.
// It manages the transition between idle and active frame rates based on motion.
//
// Pipeline logic:
// 1. Start in idle mode (IdleFPS=5)
// 2. On motion detected, switch to active mode (ActiveFPS=15)
// 3. Run pose detection and feed the snapshot to the coordinator
// 4. Publish the result map and persist new detections
// 5. After 2s no motion, switch back to idle mode
//
// Unlike a pure wake-on-motion design, pose detection runs in both
// modes: calibration and hold-based exercises require processing
// frames of a user sitting still. Motion only controls the frame rate.
func (a *App) runPipeline() {
	activeMode := false
	lastMotionTime := time.Now()

	frameInterval := time.Second / time.Duration(capture.IdleFPS)
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-a.stopCh:
			return
		case <-ticker.C:
			// Skip processing if detection is disabled
			if !a.IsEnabled() {
				continue
			}

			frame, err := a.camera.ReadFrame()
			if err != nil {
				log.Printf("Error reading frame: %v", err)
				continue
			}

			// Step 1: Motion gating, adjusts frame rate only
			motionDetected, _ := a.motion.Detect(frame)

			if motionDetected {
				lastMotionTime = time.Now()
				if !activeMode {
					activeMode = true
					a.camera.SetFPS(capture.ActiveFPS)
					frameInterval = time.Second / time.Duration(capture.ActiveFPS)
					ticker.Reset(frameInterval)
					log.Println("Switched to active mode")
				}
			} else if activeMode {
				if time.Since(lastMotionTime) > time.Duration(IdleTimeoutMs)*time.Millisecond {
					activeMode = false
					a.camera.SetFPS(capture.IdleFPS)
					frameInterval = time.Second / time.Duration(capture.IdleFPS)
					ticker.Reset(frameInterval)
					log.Println("Switched to idle mode")
				}
			}

			// Step 2: Pose detection
			landmarks, err := a.Source().Detect(frame)
			frame.Close()

			if err != nil {
				log.Printf("Error detecting pose: %v", err)
				continue
			}

			// Step 3: Exercise detection. A nil snapshot is still fed
			// through so detectors can report the absence of a pose.
			results := a.coordinator.Process(landmarks)

			// Step 4: Publish and persist
			a.publish(results)
		}
	}
}

// publish stores the latest result map and records each detection's
// rising edge as an event, so a held exercise produces one row rather
// than one per frame.
func (a *App) publish(results map[exercise.Type]exercise.Result) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.latest = results

	for t, r := range results {
		switch r.Status {
		case exercise.StatusDetected:
			if !a.lastDetected[t] {
				a.lastDetected[t] = true
				a.recordEvent(r)
			}
		case exercise.StatusNotDetected:
			a.lastDetected[t] = false
		}
		// Error and calibrating frames leave the edge state unchanged.
	}
}

// recordEvent persists a detection event for the current session.
// Caller must hold a.mu.
func (a *App) recordEvent(r exercise.Result) {
	if a.config.Store == nil || a.session == nil {
		return
	}

	event := &store.DetectionEvent{
		SessionID:  a.session.ID,
		Exercise:   string(r.Exercise),
		Confidence: r.Confidence,
		Message:    r.Message,
		Metrics:    r.Metrics,
	}
	if err := a.config.Store.Events().Record(event); err != nil {
		log.Printf("Failed to record detection event: %v", err)
		return
	}
	log.Printf("Detected %s (confidence %.2f)", r.Exercise.DisplayName(), r.Confidence)
}
