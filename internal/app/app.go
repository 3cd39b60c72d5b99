// Package app wires the capture, pose and exercise components into the
// frame-processing pipeline.
package app

import (
	"log"
	"sync"

	"github.com/ayusman/greeva/internal/capture"
	"github.com/ayusman/greeva/internal/exercise"
	"github.com/ayusman/greeva/internal/pose"
	"github.com/ayusman/greeva/internal/store"
)

// IdleTimeoutMs is how long the pipeline stays in active mode after the
// last observed motion before dropping back to the idle frame rate.
const IdleTimeoutMs = 2000

// Config holds configuration options for the application.
type Config struct {
	Store        *store.Store
	CameraID     int
	MotionThresh float64
	Exercise     exercise.Config
}

// App owns the detection pipeline: camera frames flow through the
// motion gate and pose source into the exercise coordinator, and the
// latest result map is published for the server to read. All detector
// state is mutated only by the pipeline goroutine and the reset
// operations, which the coordinator serializes internally.
type App struct {
	config      Config
	camera      capture.Camera
	motion      *capture.MotionGate
	source      pose.Source
	coordinator *exercise.Coordinator

	mu           sync.RWMutex
	enabled      bool
	stopCh       chan struct{}
	session      *store.Session
	latest       map[exercise.Type]exercise.Result
	lastDetected map[exercise.Type]bool
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	motionThreshold := config.MotionThresh
	if motionThreshold <= 0 {
		motionThreshold = 1.0 // 1% pixel change
	}

	exCfg := config.Exercise
	if exCfg.CalibrationFrames == 0 {
		exCfg = exercise.DefaultConfig()
	}

	a := &App{
		config:       config,
		camera:       capture.NewCamera(config.CameraID),
		motion:       capture.NewMotionGate(motionThreshold),
		coordinator:  exercise.NewCoordinator(exCfg),
		latest:       make(map[exercise.Type]exercise.Result),
		lastDetected: make(map[exercise.Type]bool),
	}

	// Try MediaPipe first, fall back to the mock source
	if mp, err := pose.NewMediaPipeSource(pose.DefaultConfig()); err == nil {
		a.source = mp
		log.Println("Using MediaPipe pose detection")
	} else {
		log.Printf("MediaPipe not available (%v), using mock pose source", err)
		a.source = pose.NewMockSource()
	}

	return a
}

// SetEnabled enables or disables exercise detection.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether exercise detection is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetSource sets the pose source implementation to use.
func (a *App) SetSource(s pose.Source) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.source = s
}

// SetCamera sets the camera implementation to use. Intended for tests;
// must be called before Start.
func (a *App) SetCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera = c
}

// Start begins the detection pipeline and opens a store session.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Don't start if already running
	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}
	a.camera.SetFPS(capture.IdleFPS)

	if a.config.Store != nil {
		session, err := a.config.Store.Sessions().Begin()
		if err != nil {
			log.Printf("Failed to begin session: %v", err)
		} else {
			a.session = session
		}
	}

	a.stopCh = make(chan struct{})
	go a.runPipeline()

	log.Println("Detection pipeline started")
	return nil
}

// Stop halts the detection pipeline, closes the store session and
// releases resources.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		close(a.stopCh)
		a.stopCh = nil
	}

	if a.session != nil && a.config.Store != nil {
		stats := a.coordinator.Stats()
		if err := a.config.Store.Sessions().End(a.session.ID, stats.TotalDetections); err != nil {
			log.Printf("Failed to end session: %v", err)
		}
		a.session = nil
	}

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}

	a.motion.Close()

	if a.source != nil {
		if err := a.source.Close(); err != nil {
			log.Printf("Error closing pose source: %v", err)
		}
	}

	log.Println("Detection pipeline stopped")
}

// LatestResults returns a copy of the most recently published result
// map. The map is empty until the pipeline has processed a frame.
func (a *App) LatestResults() map[exercise.Type]exercise.Result {
	a.mu.RLock()
	defer a.mu.RUnlock()

	results := make(map[exercise.Type]exercise.Result, len(a.latest))
	for t, r := range a.latest {
		results[t] = r
	}
	return results
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.camera
}

// Coordinator returns the exercise detection coordinator.
func (a *App) Coordinator() *exercise.Coordinator {
	return a.coordinator
}

// MotionGate returns the motion gate instance.
func (a *App) MotionGate() *capture.MotionGate {
	return a.motion
}

// Source returns the pose source.
func (a *App) Source() pose.Source {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.source
}
