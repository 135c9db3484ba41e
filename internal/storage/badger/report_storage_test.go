package badger

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/bravix/internal/common"
	"github.com/ternarybob/bravix/internal/interfaces"
	"github.com/ternarybob/bravix/internal/models"
)

func newTestStorage(t *testing.T) *ReportStorage {
	t.Helper()

	logger := arbor.NewLogger()
	db, err := NewBadgerDB(logger, &common.BadgerConfig{Path: filepath.Join(t.TempDir(), "data")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewReportStorage(db, logger)
}

func analysisAt(id, company string, created time.Time) *models.Analysis {
	score := 72.5
	return &models.Analysis{
		ID:          id,
		CompanyName: company,
		Facts:       models.FinancialFacts{Assets: models.Float64Ptr(100)},
		Report: models.ScoringReport{
			OverallHealthScore: &score,
			CompanyClass:       "C",
		},
		CreatedAt: created,
	}
}

func TestReportStoragePutAndGet(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	a := analysisAt("a-1", "Acme BV", time.Time{})
	require.NoError(t, storage.Put(ctx, a))
	assert.False(t, a.CreatedAt.IsZero(), "CreatedAt should be set on put")

	got, err := storage.Get(ctx, "a-1")
	require.NoError(t, err)
	assert.Equal(t, "Acme BV", got.CompanyName)
	require.NotNil(t, got.Facts.Assets)
	assert.Equal(t, 100.0, *got.Facts.Assets)
	require.NotNil(t, got.Report.OverallHealthScore)
	assert.Equal(t, 72.5, *got.Report.OverallHealthScore)
	assert.Nil(t, got.Facts.Liabilities)
}

func TestReportStorageKeepsZeroFigures(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	a := analysisAt("zero", "Zero Equity NV", time.Now())
	a.Facts.Equity = models.Float64Ptr(0)
	require.NoError(t, storage.Put(ctx, a))

	got, err := storage.Get(ctx, "zero")
	require.NoError(t, err)
	require.NotNil(t, got.Facts.Equity, "zero equity must stay present")
	assert.Equal(t, 0.0, *got.Facts.Equity)
}

func TestReportStoragePutRequiresID(t *testing.T) {
	storage := newTestStorage(t)

	err := storage.Put(context.Background(), &models.Analysis{CompanyName: "No ID"})
	assert.Error(t, err)

	err = storage.Put(context.Background(), nil)
	assert.Error(t, err)
}

func TestReportStorageGetMissing(t *testing.T) {
	storage := newTestStorage(t)

	_, err := storage.Get(context.Background(), "missing")
	assert.True(t, errors.Is(err, interfaces.ErrNotFound))
}

func TestReportStorageGetLatest(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	_, err := storage.GetLatest(ctx)
	assert.True(t, errors.Is(err, interfaces.ErrNotFound), "empty store should report not found")

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, storage.Put(ctx, analysisAt("old", "Old Co", base)))
	require.NoError(t, storage.Put(ctx, analysisAt("new", "New Co", base.Add(2*time.Hour))))
	require.NoError(t, storage.Put(ctx, analysisAt("mid", "Mid Co", base.Add(time.Hour))))

	latest, err := storage.GetLatest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "new", latest.ID)
}

func TestReportStorageList(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("a-%d", i)
		require.NoError(t, storage.Put(ctx, analysisAt(id, "Co", base.Add(time.Duration(i)*time.Minute))))
	}

	all, err := storage.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, "a-4", all[0].ID)
	assert.Equal(t, "a-0", all[4].ID)

	limited, err := storage.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "a-4", limited[0].ID)
	assert.Equal(t, "a-3", limited[1].ID)
}

func TestReportStorageDeleteOlderThan(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, storage.Put(ctx, analysisAt("ancient", "Co", now.AddDate(0, 0, -60))))
	require.NoError(t, storage.Put(ctx, analysisAt("stale", "Co", now.AddDate(0, 0, -31))))
	require.NoError(t, storage.Put(ctx, analysisAt("fresh", "Co", now.AddDate(0, 0, -1))))

	deleted, err := storage.DeleteOlderThan(ctx, now.AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	remaining, err := storage.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "fresh", remaining[0].ID)

	deleted, err = storage.DeleteOlderThan(ctx, now.AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestReportStorageCancelledContext(t *testing.T) {
	storage := newTestStorage(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := storage.Put(ctx, analysisAt("x", "Co", time.Now()))
	assert.ErrorIs(t, err, context.Canceled)
}
