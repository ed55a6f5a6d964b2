package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const frameInterval = 100 * time.Millisecond

// handleVideoFeed streams the latest processed frame as MJPEG until the
// client disconnects.
func (s *Server) handleVideoFeed(c echo.Context) error {
	w := c.Response()
	flusher, ok := w.Writer.(http.Flusher)
	if !ok {
		return echo.NewHTTPError(http.StatusInternalServerError, "streaming unsupported")
	}

	w.Header().Set(echo.HeaderContentType, "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	ctx := c.Request().Context()
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		frame, ok := s.processor.LatestFrame()
		if !ok {
			continue
		}

		if _, err := w.Write([]byte("--frame\r\nContent-Type: image/jpeg\r\n\r\n")); err != nil {
			return nil
		}
		if _, err := w.Write(frame); err != nil {
			return nil
		}
		if _, err := w.Write([]byte("\r\n\r\n")); err != nil {
			return nil
		}
		flusher.Flush()
	}
}
