package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/lotwatch/lotwatch/internal/detector"
)

type Scheduler struct {
	ctx      context.Context
	detector *detector.Detector
	interval time.Duration
	logger   *logrus.Logger
	cron     *cron.Cron
}

func NewScheduler(ctx context.Context, det *detector.Detector, interval time.Duration, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		ctx:      ctx,
		detector: det,
		interval: interval,
		logger:   logger,
		cron:     cron.New(),
	}
}

// Start schedules periodic detection cycles.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc("@every "+s.interval.String(), s.processFrame)
	if err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

func (s *Scheduler) processFrame() {
	ctx, cancel := context.WithTimeout(s.ctx, 2*time.Minute)
	defer cancel()

	if err := s.detector.ProcessFrame(ctx); err != nil {
		s.logger.WithError(err).Error("Failed to process frame")
	}
}

// Stop the scheduler
func (s *Scheduler) Stop() {
	s.cron.Stop()
}
