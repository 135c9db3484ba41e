// -----------------------------------------------------------------------
// PDF Extractor Service - Extract text content from PDF documents
// Uses pdfcpu for Go-native PDF processing
// -----------------------------------------------------------------------

package pdf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/bravix/internal/interfaces"
)

// Extractor implements the PDFExtractor interface using pdfcpu
type Extractor struct {
	logger arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.PDFExtractor = (*Extractor)(nil)

// contentFilePattern matches the per-page files written by pdfcpu content
// extraction, e.g. "statement_Content_page_3.txt".
var contentFilePattern = regexp.MustCompile(`Content_page_(\d+)`)

// NewExtractor creates a new PDF extractor service
func NewExtractor(logger arbor.ILogger) *Extractor {
	return &Extractor{logger: logger}
}

// ExtractPagesFromBytes extracts the text of every page. pdfcpu writes the
// raw page content streams to a scratch directory; the text-showing
// operators of each stream are then decoded into lines.
func (e *Extractor) ExtractPagesFromBytes(ctx context.Context, data []byte) ([]interfaces.PDFPageContent, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty PDF document")
	}

	workDir, err := os.MkdirTemp("", "bravix-pdf-")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	inFile := filepath.Join(workDir, "statement.pdf")
	if err := os.WriteFile(inFile, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write temp PDF file: %w", err)
	}

	pdfCtx, err := api.ReadContextFile(inFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}
	if pdfCtx.Encrypt != nil {
		e.logger.Warn().Msg("PDF is encrypted, text extraction may be incomplete")
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	outDir := filepath.Join(workDir, "pages")
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create page directory: %w", err)
	}

	if err := api.ExtractContentFile(inFile, outDir, nil, model.NewDefaultConfiguration()); err != nil {
		return nil, fmt.Errorf("failed to extract PDF content: %w", err)
	}

	files, err := os.ReadDir(outDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read extracted content: %w", err)
	}

	pageTexts := make(map[int]string, pdfCtx.PageCount)
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		m := contentFilePattern.FindStringSubmatch(file.Name())
		if m == nil {
			continue
		}
		pageNum, _ := strconv.Atoi(m[1])
		raw, err := os.ReadFile(filepath.Join(outDir, file.Name()))
		if err != nil {
			e.logger.Warn().Err(err).Int("page", pageNum).Msg("Failed to read page content")
			continue
		}
		pageTexts[pageNum] += DecodeContentStream(raw)
	}

	pages := make([]interfaces.PDFPageContent, 0, pdfCtx.PageCount)
	for pageNum := 1; pageNum <= pdfCtx.PageCount; pageNum++ {
		pages = append(pages, interfaces.PDFPageContent{
			PageNumber: pageNum,
			Text:       pageTexts[pageNum],
		})
	}

	e.logger.Debug().
		Int("page_count", pdfCtx.PageCount).
		Int("pages_with_text", len(pageTexts)).
		Msg("Extracted PDF text")

	return pages, nil
}

// ExtractTextFromBytes extracts text directly from PDF bytes.
func (e *Extractor) ExtractTextFromBytes(ctx context.Context, data []byte) (string, error) {
	pages, err := e.ExtractPagesFromBytes(ctx, data)
	if err != nil {
		return "", err
	}

	var fullText strings.Builder
	for _, page := range pages {
		if strings.TrimSpace(page.Text) == "" {
			continue
		}
		if fullText.Len() > 0 {
			fmt.Fprintf(&fullText, "\n\n--- Page %d ---\n\n", page.PageNumber)
		}
		fullText.WriteString(page.Text)
	}

	return fullText.String(), nil
}
