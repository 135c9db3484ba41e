package interfaces

import (
	"context"
	"errors"
	"time"

	"github.com/ternarybob/bravix/internal/models"
)

// ErrNotFound is returned by stores when the requested record does not exist.
var ErrNotFound = errors.New("not found")

// ReportStore persists completed analyses.
type ReportStore interface {
	// Put stores an analysis. The ID is required; CreatedAt is set when zero.
	Put(ctx context.Context, analysis *models.Analysis) error

	// GetLatest returns the most recently created analysis or ErrNotFound.
	GetLatest(ctx context.Context) (*models.Analysis, error)

	Get(ctx context.Context, id string) (*models.Analysis, error)

	// List returns up to limit analyses, newest first. A limit <= 0 returns all.
	List(ctx context.Context, limit int) ([]*models.Analysis, error)

	// DeleteOlderThan removes analyses created before cutoff and returns how
	// many were removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}

// StorageManager owns the database connection and the stores built on it.
type StorageManager interface {
	ReportStore() ReportStore
	Close() error
}
