package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/bravix/internal/interfaces"
	"github.com/ternarybob/bravix/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// ReportStorage implements interfaces.ReportStore on badgerhold.
type ReportStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewReportStorage creates a new ReportStorage instance
func NewReportStorage(db *BadgerDB, logger arbor.ILogger) *ReportStorage {
	return &ReportStorage{
		db:     db,
		logger: logger,
	}
}

// Put saves an analysis, setting CreatedAt when it is zero
func (s *ReportStorage) Put(ctx context.Context, analysis *models.Analysis) error {
	if analysis == nil {
		return fmt.Errorf("analysis is required")
	}
	if analysis.ID == "" {
		return fmt.Errorf("analysis ID is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if analysis.CreatedAt.IsZero() {
		analysis.CreatedAt = time.Now().UTC()
	}

	if err := s.db.Store().Upsert(analysis.ID, analysis); err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}

	s.logger.Debug().
		Str("id", analysis.ID).
		Str("company", analysis.CompanyName).
		Msg("Analysis saved")
	return nil
}

// Get retrieves an analysis by ID
func (s *ReportStorage) Get(ctx context.Context, id string) (*models.Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var analysis models.Analysis
	if err := s.db.Store().Get(id, &analysis); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, fmt.Errorf("analysis %s: %w", id, interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}
	return &analysis, nil
}

// GetLatest returns the most recently created analysis
func (s *ReportStorage) GetLatest(ctx context.Context) (*models.Analysis, error) {
	list, err := s.List(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("no analysis stored: %w", interfaces.ErrNotFound)
	}
	return list[0], nil
}

// List returns analyses newest first, up to limit when limit > 0
func (s *ReportStorage) List(ctx context.Context, limit int) ([]*models.Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	query := badgerhold.Where("ID").Ne("").SortBy("CreatedAt").Reverse()
	if limit > 0 {
		query = query.Limit(limit)
	}

	var analyses []models.Analysis
	if err := s.db.Store().Find(&analyses, query); err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}

	result := make([]*models.Analysis, len(analyses))
	for i := range analyses {
		result[i] = &analyses[i]
	}
	return result, nil
}

// DeleteOlderThan removes analyses created before cutoff and returns the count
func (s *ReportStorage) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	query := badgerhold.Where("CreatedAt").Lt(cutoff)

	count, err := s.db.Store().Count(&models.Analysis{}, query)
	if err != nil {
		return 0, fmt.Errorf("failed to count expired analyses: %w", err)
	}
	if count == 0 {
		return 0, nil
	}

	if err := s.db.Store().DeleteMatching(&models.Analysis{}, query); err != nil {
		return 0, fmt.Errorf("failed to delete expired analyses: %w", err)
	}

	s.logger.Info().
		Int("deleted", int(count)).
		Str("cutoff", cutoff.Format(time.RFC3339)).
		Msg("Expired analyses deleted")
	return int(count), nil
}
