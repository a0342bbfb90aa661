// Package cron provides scheduled background jobs using robfig/cron.
package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/hmartins/customer-directory/internal/domain/customers"
)

// Scheduler manages background scheduled jobs using robfig/cron.
type Scheduler struct {
	cron          *cron.Cron
	jobs          customers.ImportJobStore
	retentionDays int
	schedule      string
	logger        *slog.Logger
}

// NewScheduler creates a new job scheduler. schedule is a standard 5-field
// cron expression; retentionDays bounds how long finished import jobs are
// kept.
func NewScheduler(jobs customers.ImportJobStore, schedule string, retentionDays int, logger *slog.Logger) *Scheduler {
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	return &Scheduler{
		cron:          c,
		jobs:          jobs,
		retentionDays: retentionDays,
		schedule:      schedule,
		logger:        logger,
	}
}

// Start begins scheduled jobs.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, s.purgeExpiredImportJobs)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.Int("jobs", len(s.cron.Entries())),
		slog.String("schedule", s.schedule),
	)
	return nil
}

// Stop gracefully stops all scheduled jobs.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

// RunNow manually triggers the retention purge (for testing/admin).
func (s *Scheduler) RunNow() {
	go s.purgeExpiredImportJobs()
}

// purgeExpiredImportJobs removes finished import jobs past retention.
func (s *Scheduler) purgeExpiredImportJobs() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cutoff := time.Now().AddDate(0, 0, -s.retentionDays)
	s.logger.Info("starting import job retention purge",
		slog.Time("cutoff", cutoff))

	purged, err := s.jobs.PurgeFinishedBefore(ctx, cutoff)
	if err != nil {
		s.logger.Error("failed to purge import jobs", slog.Any("error", err))
		return
	}

	s.logger.Info("import job retention purge completed",
		slog.Int64("purged", purged))
}
