package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ayusman/greeva/internal/capture"
	"gocv.io/x/gocv"
)

// StreamHandler serves an MJPEG preview of the camera feed. Frames are
// paced by the camera's current frame rate, so the preview follows the
// pipeline's idle/active switching instead of running at a fixed rate.
type StreamHandler struct {
	camera capture.Camera
}

// NewStreamHandler creates a new StreamHandler with the given camera.
func NewStreamHandler(camera capture.Camera) *StreamHandler {
	return &StreamHandler{camera: camera}
}

// ServeHTTP streams MJPEG frames to connected clients.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, _ := w.(http.Flusher)

	for {
		select {
		case <-r.Context().Done():
			return
		default:
		}

		frame, err := h.camera.ReadFrame()
		if err != nil {
			time.Sleep(100 * time.Millisecond)
			continue
		}

		err = writeFrame(w, frame)
		frame.Close()
		if err != nil {
			return
		}
		if flusher != nil {
			flusher.Flush()
		}

		time.Sleep(h.frameInterval())
	}
}

// frameInterval derives the pacing delay from the camera's current FPS,
// which the pipeline adjusts between idle and active modes.
func (h *StreamHandler) frameInterval() time.Duration {
	fps := h.camera.FPS()
	if fps <= 0 {
		fps = capture.IdleFPS
	}
	return time.Second / time.Duration(fps)
}

// writeFrame encodes one frame as JPEG and writes it as an MJPEG part.
func writeFrame(w http.ResponseWriter, frame *gocv.Mat) error {
	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		// Encoding failures are transient; keep the stream alive.
		return nil
	}
	defer buf.Close()

	if _, err := fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", buf.Len()); err != nil {
		return err
	}
	if _, err := w.Write(buf.GetBytes()); err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "\r\n")
	return err
}
