package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/lotwatch/lotwatch/internal/config"
	"github.com/lotwatch/lotwatch/internal/database"
	"github.com/lotwatch/lotwatch/internal/detector"
	"github.com/lotwatch/lotwatch/internal/lot"
	"github.com/lotwatch/lotwatch/internal/models"
	"github.com/lotwatch/lotwatch/internal/scheduler"
	"github.com/lotwatch/lotwatch/internal/server"
)

// Command server runs the parking occupancy service.
//
// The service supports:
//   - Occupancy inference from camera frames via an external detection runtime
//   - Parking status, recommendation and history JSON APIs
//   - MJPEG feed and websocket status stream for dashboards
//   - Prometheus metrics
//
// Usage:
//
//	server [flags]
//
// The flags are:
//
//	-config string
//	      path to config file (default "config.yaml")
func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	// Local runs pick up overrides from .env when present.
	if err := godotenv.Overload(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, ".env load warning: %v\n", err)
	}

	appConfig, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize structured logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if level, err := logrus.ParseLevel(appConfig.Logging.Level); err == nil {
		logger.SetLevel(level)
	}

	logger.WithFields(logrus.Fields{
		"port": appConfig.Server.Port,
	}).Info("Starting server")

	repo, err := database.NewPostgresRepo(appConfig.Database.ConnString())
	if err != nil {
		logger.Fatalf("Failed to create repository: %v", err)
	}

	layout, err := lot.LoadLayout(appConfig.Detector.LayoutPath)
	if err != nil {
		logger.Fatalf("Failed to load lot layout: %v", err)
	}

	source, err := detector.NewDirSource(appConfig.Detector.FramesDir)
	if err != nil {
		logger.Fatalf("Failed to open frame source: %v", err)
	}

	interval, err := time.ParseDuration(appConfig.Detector.Interval)
	if err != nil {
		logger.Fatalf("Invalid detector interval: %v", err)
	}

	// Create a context that will be canceled on shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	det := detector.New(
		source,
		detector.NewInferenceClient(appConfig.Detector.InferenceURL),
		layout,
		repo,
		logger,
	)
	if err := det.Bootstrap(ctx); err != nil {
		logger.Fatalf("Failed to bootstrap parking spaces: %v", err)
	}

	serverConfig := server.Config{
		CacheSize:      appConfig.Server.CacheSize,
		RateLimit:      appConfig.Server.RateLimit,
		RateLimitBurst: appConfig.Server.RateLimitBurst,
	}
	e, srv, err := server.Setup(repo, layout, det, serverConfig, logger)
	if err != nil {
		logger.Fatalf("Failed to setup server: %v", err)
	}

	// A changed snapshot invalidates cached payloads and feeds the stream.
	det.OnUpdate(func(snapshot []models.ParkingSpace) {
		srv.InvalidateCache()
		srv.Hub().Broadcast(snapshot)
	})

	sched := scheduler.NewScheduler(ctx, det, interval, logger)

	errChan := make(chan error, 1)

	go func() {
		if err := sched.Start(); err != nil {
			errChan <- fmt.Errorf("scheduler error: %w", err)
		}
	}()

	go handleShutdown(ctx, e, sched, repo, logger)

	addr := fmt.Sprintf("%s:%d", appConfig.Server.Host, appConfig.Server.Port)
	logger.WithFields(logrus.Fields{
		"addr": addr,
	}).Info("Starting HTTP server")

	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	if err := <-errChan; err != nil {
		logger.Fatalf("Service error: %v", err)
	}
}

// Handle graceful shutdown
func handleShutdown(ctx context.Context, e *echo.Echo, sched *scheduler.Scheduler, repo database.SpaceRepository, logger *logrus.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-ctx.Done():
		logger.Println("Context canceled, initiating shutdown")
	case sig := <-sigChan:
		logger.Printf("Received signal %v, initiating shutdown", sig)
	}

	logger.Println("Gracefully stopping server...")
	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Printf("Server shutdown error: %v", err)
	}
	logger.Println("Server stopped")

	repo.Close()
}
