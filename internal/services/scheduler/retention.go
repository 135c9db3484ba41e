package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/bravix/internal/common"
	"github.com/ternarybob/bravix/internal/interfaces"
)

// DefaultSchedule runs the retention job once an hour.
const DefaultSchedule = "@hourly"

// RetentionService prunes stored analyses older than the retention window
// on a cron schedule.
type RetentionService struct {
	store         interfaces.ReportStore
	retentionDays int
	schedule      string
	cron          *cron.Cron
	logger        arbor.ILogger
	now           func() time.Time

	mu      sync.Mutex // Serialises prune runs
	running bool
	entryID cron.EntryID
}

// NewRetentionService creates a retention service from the badger config.
func NewRetentionService(store interfaces.ReportStore, config *common.BadgerConfig, logger arbor.ILogger) *RetentionService {
	schedule := config.PruneSchedule
	if schedule == "" {
		schedule = DefaultSchedule
	}
	return &RetentionService{
		store:         store,
		retentionDays: config.RetentionDays,
		schedule:      schedule,
		cron:          cron.New(),
		logger:        logger,
		now:           time.Now,
	}
}

// Enabled reports whether a retention window is configured.
func (s *RetentionService) Enabled() bool {
	return s.retentionDays > 0
}

// Start registers the prune job and starts the cron runner. It is a no-op
// when retention is disabled.
func (s *RetentionService) Start() error {
	if !s.Enabled() {
		s.logger.Info().Msg("Retention disabled, analyses are kept indefinitely")
		return nil
	}
	if s.running {
		return fmt.Errorf("retention scheduler already running")
	}

	id, err := s.cron.AddFunc(s.schedule, s.run)
	if err != nil {
		return fmt.Errorf("failed to add retention job: %w", err)
	}
	s.entryID = id
	s.cron.Start()
	s.running = true

	s.logger.Info().
		Str("schedule", s.schedule).
		Int("retention_days", s.retentionDays).
		Msg("Retention scheduler started")
	return nil
}

// Stop halts the cron runner and waits for a running prune to finish.
func (s *RetentionService) Stop(ctx context.Context) error {
	if !s.running {
		return nil
	}
	s.running = false

	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info().Msg("Retention scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("retention scheduler stop: %w", ctx.Err())
	}
}

// NextRun returns the next scheduled prune, zero when not running.
func (s *RetentionService) NextRun() time.Time {
	if !s.running {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}

// Cutoff returns the creation time before which analyses are pruned.
func (s *RetentionService) Cutoff() time.Time {
	return s.now().UTC().AddDate(0, 0, -s.retentionDays)
}

// Prune deletes expired analyses and returns how many were removed.
func (s *RetentionService) Prune(ctx context.Context) (int, error) {
	if !s.Enabled() {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.Cutoff()
	start := time.Now()
	deleted, err := s.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune analyses: %w", err)
	}

	s.logger.Info().
		Int("deleted", deleted).
		Str("cutoff", cutoff.Format(time.RFC3339)).
		Dur("elapsed", time.Since(start)).
		Msg("Retention prune completed")
	return deleted, nil
}

// run is the cron entry point.
func (s *RetentionService) run() {
	defer common.RecoverGoroutine(s.logger, "retention")

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if _, err := s.Prune(ctx); err != nil {
		s.logger.Error().Err(err).Msg("Scheduled retention prune failed")
	}
}
