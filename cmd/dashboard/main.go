package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/lotwatch/lotwatch/internal/config"
	"github.com/lotwatch/lotwatch/internal/dashboard"
)

// Command dashboard renders the parking lot in a terminal.
//
// On dashboard-like view paths it polls the service and re-renders until
// interrupted; on other paths it fetches and renders once.
//
// Usage:
//
//	dashboard [flags]
//
// The flags are:
//
//	-config string
//	      path to config file (default "config.yaml")
//	-base-url string
//	      parking service base URL (overrides config)
//	-path string
//	      view path deciding the auto-refresh policy (overrides config)
//	-process-frame
//	      request a detection cycle before the first render
//	-toggle-space int
//	      toggle a space's status and exit (management action)
//	-promote-user string
//	      promote a user to admin and exit (management action)
//	-delete-user string
//	      delete a user and exit (management action)
func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	baseURL := flag.String("base-url", "", "parking service base URL")
	viewPath := flag.String("path", "", "view path deciding the auto-refresh policy")
	processFrame := flag.Bool("process-frame", false, "request a detection cycle before the first render")
	toggleSpace := flag.Int("toggle-space", -1, "toggle a space's status and exit")
	promoteUser := flag.String("promote-user", "", "promote a user to admin and exit")
	deleteUser := flag.String("delete-user", "", "delete a user and exit")
	flag.Parse()

	if err := godotenv.Overload(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, ".env load warning: %v\n", err)
	}

	appConfig, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg := appConfig.Dashboard
	if *baseURL != "" {
		cfg.BaseURL = *baseURL
	}
	if *viewPath != "" {
		cfg.ViewPath = *viewPath
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stderr)
	if level, err := logrus.ParseLevel(appConfig.Logging.Level); err == nil {
		logger.SetLevel(level)
	}

	interval := parseDurationOr(cfg.RefreshInterval, 5*time.Second)
	maxBackoff := parseDurationOr(cfg.MaxBackoff, 40*time.Second)
	timeout := parseDurationOr(cfg.RequestTimeout, 10*time.Second)

	client := dashboard.NewClient(cfg.BaseURL, timeout)
	notifier := dashboard.NotifierFunc(func(msg string) {
		fmt.Fprintf(os.Stdout, "\n*** %s ***\n", msg)
	})
	onRender := func(state dashboard.State) {
		fmt.Fprintln(os.Stdout)
		dashboard.Render(os.Stdout, state)
	}

	refresher := dashboard.NewRefresher(client, interval, maxBackoff, notifier, onRender, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Management actions run one-shot; the backing endpoints do not exist
	// yet, so the console reports each as not implemented.
	if *toggleSpace >= 0 || *promoteUser != "" || *deleteUser != "" {
		console := dashboard.NewAdminConsole(dashboard.UnimplementedAdminActions{}, notifier)
		if *toggleSpace >= 0 {
			console.ToggleSpace(ctx, *toggleSpace)
		}
		if *promoteUser != "" {
			console.PromoteUser(ctx, *promoteUser)
		}
		if *deleteUser != "" {
			console.DeleteUser(ctx, *deleteUser)
		}
		return
	}

	if *processFrame {
		refresher.RequestFrameProcessing(ctx)
	}

	if !dashboard.ShouldAutoRefresh(cfg.ViewPath) {
		refresher.Refresh(ctx)
		return
	}

	// Leaving the view releases the timer.
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		logger.Info("Stopping dashboard")
		refresher.Stop()
	}()

	refresher.Run(ctx)
}

func parseDurationOr(raw string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
