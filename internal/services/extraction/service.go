package extraction

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/bravix/internal/common"
	"github.com/ternarybob/bravix/internal/interfaces"
	"github.com/ternarybob/bravix/internal/models"
	"github.com/ternarybob/bravix/internal/services/indicators"
	"github.com/ternarybob/bravix/internal/services/llm"
)

// ErrUnsupportedFormat is returned for images and unknown binary files.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Document formats.
const (
	FormatPDF  = "pdf"
	FormatDOCX = "docx"
	FormatXLSX = "xlsx"
	FormatXLS  = "xls"
	FormatCSV  = "csv"
	FormatText = "text"
)

// CoreFields must all be present for a high confidence result.
var CoreFields = []string{
	models.FieldAssets,
	models.FieldLiabilities,
	models.FieldEquity,
	models.FieldRevenue,
	models.FieldProfit,
	models.FieldEBITDA,
}

const (
	confidenceComplete = 0.95
	confidencePartial  = 0.75
	balanceTolerance   = 0.02
)

var unsupportedExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".bmp": true, ".tif": true,
	".tiff": true, ".webp": true, ".heic": true, ".doc": true, ".zip": true,
}

// Service turns uploaded documents into FinancialFacts.
type Service struct {
	pdf       interfaces.PDFExtractor
	labels    *Labels
	generator llm.Generator
	aiModel   string
	config    *common.ExtractionConfig
	logger    arbor.ILogger
}

// NewService creates an extraction service. generator may be nil, which
// disables the AI fallback.
func NewService(
	pdf interfaces.PDFExtractor,
	labels *Labels,
	generator llm.Generator,
	aiModel string,
	config *common.ExtractionConfig,
	logger arbor.ILogger,
) *Service {
	if labels == nil {
		labels = DefaultLabels()
	}
	return &Service{
		pdf:       pdf,
		labels:    labels,
		generator: generator,
		aiModel:   aiModel,
		config:    config,
		logger:    logger,
	}
}

// DetectFormat maps a filename to a document format.
func DetectFormat(filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return FormatPDF, nil
	case ".docx":
		return FormatDOCX, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".xls":
		return FormatXLS, nil
	case ".csv":
		return FormatCSV, nil
	}
	if unsupportedExtensions[ext] {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
	return FormatText, nil
}

// Extract reads one document. Missing figures are not an error; the result
// may hold few or no facts.
func (s *Service) Extract(ctx context.Context, filename string, data []byte) (*models.ExtractionResult, error) {
	format, err := DetectFormat(filename)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("document %s is empty", filename)
	}

	var (
		text string
		rows [][]string
	)
	switch format {
	case FormatPDF:
		if s.pdf == nil {
			return nil, fmt.Errorf("%w: pdf extraction unavailable", ErrUnsupportedFormat)
		}
		text, err = s.pdf.ExtractTextFromBytes(ctx, data)
	case FormatDOCX:
		text, err = readDOCX(data)
	case FormatXLSX:
		rows, err = readXLSX(data)
		text = rowsToText(rows)
	case FormatXLS:
		rows, err = readXLS(data)
		text = rowsToText(rows)
	case FormatCSV:
		rows, err = readCSV(data)
		text = rowsToText(rows)
	default:
		text, err = readText(data)
	}
	if err != nil {
		if errors.Is(err, ErrUnsupportedFormat) {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
		}
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}

	multiplier := DetectUnitMultiplier(text)

	var c *collector
	if rows != nil {
		c = tableFacts(rows, s.labels, multiplier)
	} else {
		c = textFacts(text, s.labels, multiplier)
	}

	result := &models.ExtractionResult{
		Filename:       filename,
		Format:         format,
		RawText:        truncate(text, s.config.TextExcerptLimit),
		Facts:          c.facts,
		Sources:        c.sources,
		UnitMultiplier: multiplier,
	}

	if missing := missingCore(result.Facts); len(missing) > 0 && s.aiEnabled() {
		s.applyAIFallback(ctx, text, missing, result)
	}

	deriveEquity(result)
	checkBalance(result)
	result.Confidence = confidence(result.Facts)

	s.logger.Info().
		Str("filename", filename).
		Str("format", format).
		Int("facts", result.Facts.Count()).
		Int("warnings", len(result.Warnings)).
		Msg("Document extracted")

	return result, nil
}

func (s *Service) aiEnabled() bool {
	return s.config.AIFallback && s.generator != nil
}

func missingCore(facts models.FinancialFacts) []string {
	var missing []string
	for _, f := range CoreFields {
		if !facts.Has(f) {
			missing = append(missing, f)
		}
	}
	return missing
}

// deriveEquity fills equity = assets - liabilities when it was not read.
func deriveEquity(result *models.ExtractionResult) {
	if result.Facts.Has(models.FieldEquity) {
		return
	}
	assets, okA := result.Facts.Get(models.FieldAssets)
	liabilities, okL := result.Facts.Get(models.FieldLiabilities)
	if !okA || !okL {
		return
	}
	result.Facts.Set(models.FieldEquity, indicators.Round(assets-liabilities, 2))
	result.Sources[models.FieldEquity] = models.SourceDerived
}

// checkBalance warns when liabilities + equity differs from assets by more
// than the tolerance.
func checkBalance(result *models.ExtractionResult) {
	assets, okA := result.Facts.Get(models.FieldAssets)
	liabilities, okL := result.Facts.Get(models.FieldLiabilities)
	equity, okE := result.Facts.Get(models.FieldEquity)
	if !okA || !okL || !okE || assets == 0 {
		return
	}
	diff := math.Abs(liabilities + equity - assets)
	if diff > balanceTolerance*math.Abs(assets) {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"balance mismatch: liabilities + equity differs from assets by %s",
			strconv.FormatFloat(indicators.Round(diff, 2), 'f', -1, 64)))
	}
}

func confidence(facts models.FinancialFacts) float64 {
	if len(missingCore(facts)) == 0 {
		return confidenceComplete
	}
	return confidencePartial
}

func truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
