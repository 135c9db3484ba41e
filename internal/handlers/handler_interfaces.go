package handlers

import (
	"context"

	"github.com/ternarybob/bravix/internal/models"
	"github.com/ternarybob/bravix/internal/services/analysis"
	"github.com/ternarybob/bravix/internal/services/report"
)

// Extractor reads financial figures out of an uploaded document.
type Extractor interface {
	Extract(ctx context.Context, filename string, data []byte) (*models.ExtractionResult, error)
}

// Analyzer scores, narrates and stores an analysis.
type Analyzer interface {
	Analyze(ctx context.Context, req analysis.Request) (*models.Analysis, error)
}

// ReportRenderer renders the latest stored analysis as a PDF.
type ReportRenderer interface {
	RenderLatest(ctx context.Context) (*report.Rendered, error)
}
