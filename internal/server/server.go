// Package server exposes the parking API over HTTP. Paths and payload shapes
// mirror the dashboard contract and must stay stable:
//
//	GET /api/parking_status          current snapshot
//	GET /api/parking_recommendations ranked available spots
//	GET /api/available_spaces        available spaces list
//	GET /api/process_frame           run a detection cycle now
//	GET /api/parking_history         recent transitions
//	GET /video_feed                  MJPEG of the latest frame
//	GET /ws/status                   websocket snapshot stream
package server

import (
	"context"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/lotwatch/lotwatch/internal/database"
	"github.com/lotwatch/lotwatch/internal/detector"
	"github.com/lotwatch/lotwatch/internal/lot"
	middleware "github.com/lotwatch/lotwatch/internal/server/middlewares"
)

// Config holds tuning options for the HTTP server.
type Config struct {
	CacheSize      int     // Size of the LRU response cache
	RateLimit      float64 // Requests per second
	RateLimitBurst int     // Maximum burst size for rate limiting
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		CacheSize:      1000,
		RateLimit:      5.0,
		RateLimitBurst: 10,
	}
}

// FrameProcessor triggers detection cycles. Satisfied by *detector.Detector.
type FrameProcessor interface {
	ProcessFrame(ctx context.Context) error
	LatestFrame() ([]byte, bool)
}

// Server carries the handler dependencies.
type Server struct {
	repo      database.SpaceRepository
	layout    *lot.Layout
	processor FrameProcessor
	cache     *middleware.ResponseCache
	hub       *Hub
	logger    *logrus.Logger
}

// NewServer wires handlers without any middleware; used directly by tests.
func NewServer(repo database.SpaceRepository, layout *lot.Layout, processor FrameProcessor, logger *logrus.Logger) *Server {
	return &Server{
		repo:      repo,
		layout:    layout,
		processor: processor,
		hub:       NewHub(logger),
		logger:    logger,
	}
}

// Hub exposes the websocket hub so the detector can broadcast updates.
func (s *Server) Hub() *Hub {
	return s.hub
}

// InvalidateCache drops cached API responses after a detection cycle.
func (s *Server) InvalidateCache() {
	if s.cache != nil {
		s.cache.Invalidate()
	}
}

// Routes registers every endpoint on e without response caching.
func (s *Server) Routes(e *echo.Echo) {
	s.routes(e, nil)
}

// routes is the single route table. Cacheable GET endpoints go through
// cached when it is non-nil; errors and side-effecting endpoints never do.
func (s *Server) routes(e *echo.Echo, cached echo.MiddlewareFunc) {
	if cached == nil {
		cached = func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	e.GET("/api/parking_status", cached(s.handleParkingStatus))
	e.GET("/api/parking_recommendations", cached(s.handleRecommendations))
	e.GET("/api/available_spaces", cached(s.handleAvailableSpaces))
	e.GET("/api/parking_history", cached(s.handleHistory))
	e.GET("/api/process_frame", s.handleProcessFrame)
	e.GET("/video_feed", s.handleVideoFeed)
	e.GET("/ws/status", s.handleStatusSocket)
	e.GET("/healthz", s.handleHealth)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// registerOnce guards collector registration so Setup can be called more
// than once per process.
var registerOnce sync.Once

// Setup builds the echo instance with the full middleware chain and
// registers the Prometheus collectors.
func Setup(repo database.SpaceRepository, layout *lot.Layout, processor FrameProcessor, cfg Config, logger *logrus.Logger) (*echo.Echo, *Server, error) {
	srv := NewServer(repo, layout, processor, logger)

	cache, err := middleware.NewResponseCache(cfg.CacheSize)
	if err != nil {
		return nil, nil, err
	}
	srv.cache = cache

	registerOnce.Do(func() {
		prometheus.MustRegister(middleware.Requests)
		prometheus.MustRegister(middleware.Latency)
		prometheus.MustRegister(detector.FramesProcessed)
		prometheus.MustRegister(detector.FrameErrors)
		prometheus.MustRegister(detector.StatusChanges)
	})

	e := echo.New()
	e.HideBanner = true
	e.Use(
		middleware.RequestID(),                                      // Add request ID first
		middleware.RateLimit(cfg.RateLimit, cfg.RateLimitBurst),     // Rate limit early
		middleware.Logging(logger),                                  // Log all requests (with request ID)
		middleware.Metrics(middleware.Requests, middleware.Latency), // Collect metrics
	)

	srv.routes(e, cache.Middleware())

	return e, srv, nil
}
