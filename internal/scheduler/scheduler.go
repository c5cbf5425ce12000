package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/i474232898/weather-events/internal/recommend"
)

// rolloverTimeout bounds one rollover run, which refetches weather.
const rolloverTimeout = 2 * time.Minute

// Roller moves the recommender to a new calendar day.
type Roller interface {
	Rollover(ctx context.Context) (recommend.View, error)
}

// Scheduler runs the day rollover at local midnight.
type Scheduler struct {
	scheduler *gocron.Scheduler
	roller    Roller
	logger    *zap.Logger
}

// New creates a Scheduler whose midnight is taken in loc.
func New(loc *time.Location, roller Roller, logger *zap.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(loc),
		roller:    roller,
		logger:    logger,
	}
}

// Start schedules the rollover job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	_, err := s.scheduler.Every(1).Day().At("00:00").Do(s.runRollover)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

func (s *Scheduler) runRollover() {
	s.logger.Info("scheduler: running day rollover")

	ctx, cancel := context.WithTimeout(context.Background(), rolloverTimeout)
	defer cancel()

	v, err := s.roller.Rollover(ctx)
	if err != nil {
		s.logger.Error("scheduler: day rollover failed", zap.Error(err))
		return
	}
	s.logger.Info("scheduler: day rollover completed",
		zap.Stringer("today", v.Today),
		zap.Int("events", len(v.Events)),
	)
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
