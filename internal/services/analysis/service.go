package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/bravix/internal/common"
	"github.com/ternarybob/bravix/internal/interfaces"
	"github.com/ternarybob/bravix/internal/models"
	"github.com/ternarybob/bravix/internal/services/indicators"
	"github.com/ternarybob/bravix/internal/services/narrative"
)

// Narrator writes the credit narrative for a scored company.
type Narrator interface {
	Generate(ctx context.Context, in narrative.Input) (string, string, error)
}

// Request is one analysis to run.
type Request struct {
	CompanyName string
	FiscalYear  string
	Summary     string
	RawText     string
	Facts       models.FinancialFacts
}

// Service runs the scoring engine, asks for a narrative and persists the
// result.
type Service struct {
	store        interfaces.ReportStore
	narrator     Narrator
	excerptLimit int
	logger       arbor.ILogger
	now          func() time.Time
}

// NewService creates an analysis service. narrator may be nil.
func NewService(store interfaces.ReportStore, narrator Narrator, excerptLimit int, logger arbor.ILogger) *Service {
	return &Service{
		store:        store,
		narrator:     narrator,
		excerptLimit: excerptLimit,
		logger:       logger,
		now:          time.Now,
	}
}

// Analyze scores the request and stores the analysis. A failed narrative is
// recorded on the analysis and does not fail the call; a failed store does.
func (s *Service) Analyze(ctx context.Context, req Request) (*models.Analysis, error) {
	report := indicators.Compute(req.Facts)

	a := &models.Analysis{
		ID:          common.NewAnalysisID(),
		CompanyName: strings.TrimSpace(req.CompanyName),
		FiscalYear:  strings.TrimSpace(req.FiscalYear),
		Summary:     strings.TrimSpace(req.Summary),
		Facts:       req.Facts,
		Report:      report,
		RawText:     narrative.Excerpt(req.RawText, s.excerptLimit),
		CreatedAt:   s.now().UTC(),
	}

	s.logger.Info().
		Str("analysis_id", a.ID).
		Str("company", a.CompanyName).
		Int("facts", req.Facts.Count()).
		Str("class", report.CompanyClass).
		Msg("Scored analysis")

	s.attachNarrative(ctx, a, req.RawText)

	if err := s.store.Put(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to store analysis: %w", err)
	}
	return a, nil
}

func (s *Service) attachNarrative(ctx context.Context, a *models.Analysis, rawText string) {
	if s.narrator == nil {
		return
	}

	text, model, err := s.narrator.Generate(ctx, narrative.Input{
		Company:    a.CompanyName,
		FiscalYear: a.FiscalYear,
		Summary:    a.Summary,
		RawText:    rawText,
		Report:     a.Report,
	})
	switch {
	case errors.Is(err, narrative.ErrNarrativeDisabled):
		s.logger.Debug().Str("analysis_id", a.ID).Msg("Narrative disabled, skipping")
	case err != nil:
		s.logger.Warn().Err(err).Str("analysis_id", a.ID).Msg("Narrative generation failed")
		a.NarrativeError = err.Error()
	default:
		a.Narrative = text
		a.NarrativeModel = model
	}
}
