package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"portfolio-analytics/internal/config"
	"portfolio-analytics/internal/models"
)

// SnapshotRunner captures value snapshots of every portfolio and prunes
// the expired history
type SnapshotRunner interface {
	TakeAllSnapshots(ctx context.Context, interval string) (int, error)
	PruneSnapshots(ctx context.Context, retention time.Duration) (int64, error)
}

// Scheduler runs the periodic snapshot and retention jobs
type Scheduler struct {
	cron    *cron.Cron
	runner  SnapshotRunner
	cfg     config.SchedulerConfig
	logger  *logrus.Logger
	baseCtx context.Context
	mu      sync.Mutex
}

// NewScheduler validates the schedules and time zone and registers the jobs
func NewScheduler(cfg config.SchedulerConfig, runner SnapshotRunner, logger *logrus.Logger) (*Scheduler, error) {
	loc := time.UTC
	if cfg.TimeZone != "" {
		var err error
		loc, err = time.LoadLocation(cfg.TimeZone)
		if err != nil {
			return nil, fmt.Errorf("invalid scheduler time zone %q: %w", cfg.TimeZone, err)
		}
	}

	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(logger))),
		),
		runner:  runner,
		cfg:     cfg,
		logger:  logger,
		baseCtx: context.Background(),
	}

	if _, err := s.cron.AddFunc(cfg.SnapshotInterval, s.runSnapshots); err != nil {
		return nil, fmt.Errorf("invalid snapshot schedule %q: %w", cfg.SnapshotInterval, err)
	}

	logger.WithFields(logrus.Fields{
		"schedule": cfg.SnapshotInterval,
		"timezone": loc.String(),
	}).Info("Snapshot job registered")

	if cfg.CleanupInterval != "" && cfg.SnapshotRetention > 0 {
		if _, err := s.cron.AddFunc(cfg.CleanupInterval, s.pruneSnapshots); err != nil {
			return nil, fmt.Errorf("invalid cleanup schedule %q: %w", cfg.CleanupInterval, err)
		}
		logger.WithFields(logrus.Fields{
			"schedule":  cfg.CleanupInterval,
			"retention": cfg.SnapshotRetention.String(),
		}).Info("Snapshot cleanup job registered")
	}
	return s, nil
}

// Start begins running jobs. Jobs inherit ctx for cancellation.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.baseCtx = ctx
	s.mu.Unlock()

	s.cron.Start()
	s.logger.Info("Scheduler started")
}

// Stop stops scheduling and waits for a running job to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
}

// RunNow executes the snapshot job immediately, outside the schedule
func (s *Scheduler) RunNow() {
	s.runSnapshots()
}

// jobContext derives the context of one job run
func (s *Scheduler) jobContext() (context.Context, context.CancelFunc) {
	s.mu.Lock()
	ctx := s.baseCtx
	s.mu.Unlock()

	if s.cfg.JobTimeout > 0 {
		return context.WithTimeout(ctx, s.cfg.JobTimeout)
	}
	return context.WithCancel(ctx)
}

func (s *Scheduler) runSnapshots() {
	ctx, cancel := s.jobContext()
	defer cancel()

	start := time.Now()
	taken, err := s.runner.TakeAllSnapshots(ctx, models.SnapshotIntervalDaily)
	entry := s.logger.WithFields(logrus.Fields{
		"job":      "daily_snapshots",
		"taken":    taken,
		"duration": time.Since(start).String(),
	})
	if err != nil {
		entry.WithError(err).Error("Snapshot job finished with errors")
		return
	}
	entry.Info("Snapshot job completed")
}

func (s *Scheduler) pruneSnapshots() {
	ctx, cancel := s.jobContext()
	defer cancel()

	deleted, err := s.runner.PruneSnapshots(ctx, s.cfg.SnapshotRetention)
	entry := s.logger.WithFields(logrus.Fields{
		"job":     "snapshot_cleanup",
		"deleted": deleted,
	})
	if err != nil {
		entry.WithError(err).Error("Snapshot cleanup failed")
		return
	}
	entry.Info("Snapshot cleanup completed")
}
