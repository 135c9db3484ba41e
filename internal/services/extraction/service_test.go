package extraction

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/bravix/internal/common"
	"github.com/ternarybob/bravix/internal/models"
	"github.com/ternarybob/bravix/internal/services/llm"
	"github.com/ternarybob/bravix/internal/services/pdf"
	"github.com/xuri/excelize/v2"
)

type fakeGenerator struct {
	text     string
	err      error
	requests []*llm.ContentRequest
}

func (f *fakeGenerator) GenerateContent(_ context.Context, req *llm.ContentRequest) (*llm.ContentResponse, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return &llm.ContentResponse{Text: f.text, Model: req.Model}, nil
}

func newTestService(gen llm.Generator, aiFallback bool) *Service {
	cfg := common.NewDefaultConfig().Extraction
	cfg.AIFallback = aiFallback
	logger := arbor.NewLogger()
	return NewService(pdf.NewExtractor(logger), DefaultLabels(), gen, "claude-test", &cfg, logger)
}

func fact(t *testing.T, facts models.FinancialFacts, name string) float64 {
	t.Helper()
	v, ok := facts.Get(name)
	require.True(t, ok, "missing %s", name)
	return v
}

func TestExtractText(t *testing.T) {
	doc := "Acme BV annual report\nAmounts in thousands\nTotal assets 1,000\nTotal liabilities 600\nRevenue 2,000\nNet profit 150\nEBITDA 300\n"

	result, err := newTestService(nil, false).Extract(context.Background(), "statement.txt", []byte(doc))
	require.NoError(t, err)

	assert.Equal(t, FormatText, result.Format)
	assert.Equal(t, float64(1000), result.UnitMultiplier)
	assert.Equal(t, float64(1000000), fact(t, result.Facts, models.FieldAssets))
	assert.Equal(t, float64(600000), fact(t, result.Facts, models.FieldLiabilities))
	assert.Equal(t, float64(2000000), fact(t, result.Facts, models.FieldRevenue))
	assert.Equal(t, float64(150000), fact(t, result.Facts, models.FieldProfit))
	assert.Equal(t, float64(300000), fact(t, result.Facts, models.FieldEBITDA))
	assert.Equal(t, float64(400000), fact(t, result.Facts, models.FieldEquity))

	assert.Equal(t, models.SourceText, result.Sources[models.FieldAssets])
	assert.Equal(t, models.SourceDerived, result.Sources[models.FieldEquity])
	assert.Equal(t, 0.95, result.Confidence)
	assert.Empty(t, result.Warnings)
	assert.Contains(t, result.RawText, "Acme BV")
}

func TestExtractBalanceMismatch(t *testing.T) {
	doc := "Total assets 1000\nTotal liabilities 600\nTotal equity 300\n"

	result, err := newTestService(nil, false).Extract(context.Background(), "notes.md", []byte(doc))
	require.NoError(t, err)

	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "balance mismatch")
	assert.Contains(t, result.Warnings[0], "100")
	assert.Equal(t, models.SourceText, result.Sources[models.FieldEquity])
	assert.Equal(t, 0.75, result.Confidence)
}

func TestExtractTotalLineWins(t *testing.T) {
	doc := "Other current assets 20\nTotal current assets 500\nCurrent assets held 30\n"

	result, err := newTestService(nil, false).Extract(context.Background(), "s.txt", []byte(doc))
	require.NoError(t, err)
	assert.Equal(t, float64(500), fact(t, result.Facts, models.FieldCurrentAssets))
}

func TestExtractCSVRows(t *testing.T) {
	doc := "Item;2023;2024\nCurrent assets;400;500\nCurrent liabilities;200;250\nInventory;50;60\nOmzet;1.000;1.200\n"

	result, err := newTestService(nil, false).Extract(context.Background(), "figures.csv", []byte(doc))
	require.NoError(t, err)

	assert.Equal(t, FormatCSV, result.Format)
	assert.Equal(t, float64(500), fact(t, result.Facts, models.FieldCurrentAssets))
	assert.Equal(t, float64(250), fact(t, result.Facts, models.FieldCurrentLiabilities))
	assert.Equal(t, float64(60), fact(t, result.Facts, models.FieldInventory))
	assert.Equal(t, float64(1200), fact(t, result.Facts, models.FieldRevenue))
	assert.Equal(t, models.SourceTable, result.Sources[models.FieldRevenue])
	assert.False(t, result.Facts.Has(models.FieldEquity))
}

func TestExtractCSVHeader(t *testing.T) {
	doc := "Year,Total Assets,Total Liabilities,Revenue,Net Income\n2023,900,500,1500,90\n2024,1000,550,1600,100\n"

	result, err := newTestService(nil, false).Extract(context.Background(), "history.CSV", []byte(doc))
	require.NoError(t, err)

	assert.Equal(t, float64(1000), fact(t, result.Facts, models.FieldAssets))
	assert.Equal(t, float64(550), fact(t, result.Facts, models.FieldLiabilities))
	assert.Equal(t, float64(1600), fact(t, result.Facts, models.FieldRevenue))
	assert.Equal(t, float64(100), fact(t, result.Facts, models.FieldProfit))
	assert.Equal(t, float64(450), fact(t, result.Facts, models.FieldEquity))
}

func TestExtractXLSX(t *testing.T) {
	f := excelize.NewFile()
	rows := [][]interface{}{
		{"Label", "Value"},
		{"Total assets", 2000},
		{"Total liabilities", 1200},
		{"EBITDA", 400},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	result, err := newTestService(nil, false).Extract(context.Background(), "book.xlsx", buf.Bytes())
	require.NoError(t, err)

	assert.Equal(t, FormatXLSX, result.Format)
	assert.Equal(t, float64(2000), fact(t, result.Facts, models.FieldAssets))
	assert.Equal(t, float64(1200), fact(t, result.Facts, models.FieldLiabilities))
	assert.Equal(t, float64(400), fact(t, result.Facts, models.FieldEBITDA))
	assert.Equal(t, float64(800), fact(t, result.Facts, models.FieldEquity))
}

func buildDOCX(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body + `</w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func docxCell(text string) string {
	return `<w:tc><w:p><w:r><w:t>` + text + `</w:t></w:r></w:p></w:tc>`
}

func TestExtractDOCX(t *testing.T) {
	body := `<w:p><w:r><w:t>Bedragen in duizenden euro</w:t></w:r></w:p>` +
		`<w:tbl>` +
		`<w:tr>` + docxCell("Totaal activa") + docxCell("5.000") + `</w:tr>` +
		`<w:tr>` + docxCell("Schulden") + docxCell("3.000") + `</w:tr>` +
		`</w:tbl>` +
		`<w:p><w:r><w:t>Nettoresultaat</w:t></w:r><w:r><w:tab/><w:t>250</w:t></w:r></w:p>`

	result, err := newTestService(nil, false).Extract(context.Background(), "jaarrekening.docx", buildDOCX(t, body))
	require.NoError(t, err)

	assert.Equal(t, FormatDOCX, result.Format)
	assert.Equal(t, float64(1000), result.UnitMultiplier)
	assert.Equal(t, float64(5000000), fact(t, result.Facts, models.FieldAssets))
	assert.Equal(t, float64(3000000), fact(t, result.Facts, models.FieldLiabilities))
	assert.Equal(t, float64(250000), fact(t, result.Facts, models.FieldProfit))
	assert.Equal(t, float64(2000000), fact(t, result.Facts, models.FieldEquity))
}

func TestExtractPDF(t *testing.T) {
	logger := arbor.NewLogger()
	data, err := pdf.NewService(logger).ConvertMarkdownToPDF("# Balance Sheet\n\nTotal assets 1,250,000\n\nTotal liabilities 800,000", "Statement")
	require.NoError(t, err)

	result, err := newTestService(nil, false).Extract(context.Background(), "statement.pdf", data)
	require.NoError(t, err)

	assert.Equal(t, FormatPDF, result.Format)
	assert.Equal(t, float64(1250000), fact(t, result.Facts, models.FieldAssets))
	assert.Equal(t, float64(800000), fact(t, result.Facts, models.FieldLiabilities))
	assert.Equal(t, float64(450000), fact(t, result.Facts, models.FieldEquity))
}

func TestExtractUnsupported(t *testing.T) {
	svc := newTestService(nil, false)

	tests := []struct {
		name     string
		filename string
		data     []byte
	}{
		{"image", "scan.png", []byte{0x89, 'P', 'N', 'G'}},
		{"legacy word", "old.doc", []byte{0xd0, 0xcf, 0x11, 0xe0}},
		{"binary", "blob.bin", []byte{0x00, 0x01, 0x02}},
		{"invalid utf8", "notes.txt", []byte{0xff, 0xfe, 0xfd}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Extract(context.Background(), tt.filename, tt.data)
			assert.True(t, errors.Is(err, ErrUnsupportedFormat), "got %v", err)
		})
	}
}

func TestExtractEmptyAndCorrupt(t *testing.T) {
	svc := newTestService(nil, false)

	_, err := svc.Extract(context.Background(), "empty.csv", nil)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnsupportedFormat))

	_, err = svc.Extract(context.Background(), "broken.docx", []byte("not a zip"))
	assert.Error(t, err)

	_, err = svc.Extract(context.Background(), "broken.xlsx", []byte("not a zip"))
	assert.Error(t, err)

	_, err = svc.Extract(context.Background(), "broken.xls", []byte{0xd0, 0xcf, 0x11, 0xe0})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestExtractAIFallback(t *testing.T) {
	gen := &fakeGenerator{
		text: `Here you go: {"assets": 1, "liabilities": -5, "equity": null, "revenue": 800, "profit": 40, "ebitda": 90}`,
	}

	result, err := newTestService(gen, true).Extract(context.Background(), "s.txt", []byte("Total assets 2000\nSome other line\n"))
	require.NoError(t, err)

	require.Len(t, gen.requests, 1)
	req := gen.requests[0]
	assert.True(t, req.JSONOutput)
	assert.Equal(t, "claude-test", req.Model)
	assert.Contains(t, req.Prompt, "liabilities, equity, revenue, profit, ebitda")
	assert.Contains(t, req.Prompt, "Total assets 2000")

	assert.Equal(t, float64(2000), fact(t, result.Facts, models.FieldAssets))
	assert.Equal(t, float64(800), fact(t, result.Facts, models.FieldRevenue))
	assert.Equal(t, float64(40), fact(t, result.Facts, models.FieldProfit))
	assert.Equal(t, float64(90), fact(t, result.Facts, models.FieldEBITDA))
	assert.False(t, result.Facts.Has(models.FieldLiabilities))
	assert.False(t, result.Facts.Has(models.FieldEquity))

	assert.Equal(t, models.SourceText, result.Sources[models.FieldAssets])
	assert.Equal(t, models.SourceAI, result.Sources[models.FieldRevenue])
	assert.Contains(t, result.Warnings, "AI value for liabilities rejected by validation")
	assert.Equal(t, 0.75, result.Confidence)
}

func TestExtractAIFallbackFailureIsNotFatal(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("provider down")}

	result, err := newTestService(gen, true).Extract(context.Background(), "s.txt", []byte("Total assets 2000\n"))
	require.NoError(t, err)
	assert.Len(t, gen.requests, 1)
	assert.Equal(t, 1, result.Facts.Count())
}

func TestExtractAIFallbackDisabled(t *testing.T) {
	gen := &fakeGenerator{text: `{"revenue": 1}`}

	_, err := newTestService(gen, false).Extract(context.Background(), "s.txt", []byte("Total assets 2000\n"))
	require.NoError(t, err)
	assert.Empty(t, gen.requests)
}

func TestParseAIFacts(t *testing.T) {
	_, _, err := ParseAIFacts("no json here")
	assert.Error(t, err)

	_, _, err = ParseAIFacts(`{"revenue": "lots"}`)
	assert.Error(t, err)

	facts, dropped, err := ParseAIFacts("```json\n{\"inventory\": -1, \"cash\": -20, \"unknown\": 5}\n```")
	require.NoError(t, err)
	assert.Equal(t, []string{"inventory"}, dropped)
	assert.False(t, facts.Has(models.FieldInventory))
	assert.Equal(t, float64(-20), fact(t, facts, models.FieldCash))
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		filename string
		want     string
		wantErr  bool
	}{
		{"Annual Report.PDF", FormatPDF, false},
		{"notes.docx", FormatDOCX, false},
		{"balance.xlsx", FormatXLSX, false},
		{"balance.xls", FormatXLS, false},
		{"export.csv", FormatCSV, false},
		{"statement.txt", FormatText, false},
		{"README", FormatText, false},
		{"photo.jpeg", "", true},
		{"archive.zip", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			got, err := DetectFormat(tt.filename)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrUnsupportedFormat))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
