package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/bravix/internal/interfaces"
	"github.com/ternarybob/bravix/internal/models"
	"github.com/ternarybob/bravix/internal/services/analysis"
	"github.com/ternarybob/bravix/internal/services/extraction"
	"github.com/ternarybob/bravix/internal/services/report"
)

type fakeExtractor struct {
	result   *models.ExtractionResult
	err      error
	filename string
	data     []byte
}

func (f *fakeExtractor) Extract(_ context.Context, filename string, data []byte) (*models.ExtractionResult, error) {
	f.filename = filename
	f.data = data
	return f.result, f.err
}

type fakeAnalyzer struct {
	req analysis.Request
	err error
}

func (f *fakeAnalyzer) Analyze(_ context.Context, req analysis.Request) (*models.Analysis, error) {
	f.req = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.Analysis{ID: "an_test", CompanyName: req.CompanyName, FiscalYear: req.FiscalYear}, nil
}

type fakeRenderer struct {
	rendered *report.Rendered
	err      error
}

func (f *fakeRenderer) RenderLatest(context.Context) (*report.Rendered, error) {
	return f.rendered, f.err
}

type memoryStore struct {
	items []*models.Analysis
	err   error
	limit int
}

func (m *memoryStore) Put(_ context.Context, a *models.Analysis) error {
	m.items = append(m.items, a)
	return nil
}

func (m *memoryStore) GetLatest(context.Context) (*models.Analysis, error) {
	if m.err != nil {
		return nil, m.err
	}
	if len(m.items) == 0 {
		return nil, interfaces.ErrNotFound
	}
	return m.items[len(m.items)-1], nil
}

func (m *memoryStore) Get(_ context.Context, id string) (*models.Analysis, error) {
	for _, a := range m.items {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, fmt.Errorf("analysis %s: %w", id, interfaces.ErrNotFound)
}

func (m *memoryStore) List(_ context.Context, limit int) ([]*models.Analysis, error) {
	m.limit = limit
	if m.err != nil {
		return nil, m.err
	}
	return m.items, nil
}

func (m *memoryStore) DeleteOlderThan(context.Context, time.Time) (int, error) {
	return 0, nil
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func multipartUpload(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUploadHandler(t *testing.T) {
	extractor := &fakeExtractor{result: &models.ExtractionResult{
		Filename: "balance.csv",
		Format:   extraction.FormatCSV,
		Facts: models.FinancialFacts{
			CurrentAssets:      models.Float64Ptr(200),
			CurrentLiabilities: models.Float64Ptr(100),
		},
	}}
	h := NewAnalysisHandler(extractor, &fakeAnalyzer{}, 1<<20, arbor.NewLogger())

	body, contentType := multipartUpload(t, "file", "balance.csv", []byte("Current assets;200"))
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.UploadHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "balance.csv", extractor.filename)
	assert.Equal(t, "Current assets;200", string(extractor.data))

	var resp UploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "csv", resp.Extraction.Format)
	ind, ok := resp.Report.Indicator("current_ratio")
	require.True(t, ok)
	require.NotNil(t, ind.Value)
	assert.Equal(t, 2.0, *ind.Value)
}

func TestUploadHandlerErrors(t *testing.T) {
	tests := []struct {
		name      string
		field     string
		extractor *fakeExtractor
		maxUpload int64
		want      int
	}{
		{"missing file field", "document", &fakeExtractor{}, 1 << 20, http.StatusBadRequest},
		{"unsupported format", "file", &fakeExtractor{err: fmt.Errorf("logo.png: %w", extraction.ErrUnsupportedFormat)}, 1 << 20, http.StatusUnsupportedMediaType},
		{"extraction failure", "file", &fakeExtractor{err: errors.New("corrupt pdf")}, 1 << 20, http.StatusUnprocessableEntity},
		{"too large", "file", &fakeExtractor{}, 16, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAnalysisHandler(tt.extractor, &fakeAnalyzer{}, tt.maxUpload, arbor.NewLogger())
			body, contentType := multipartUpload(t, tt.field, "doc.pdf", []byte("some document content"))
			req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()

			h.UploadHandler(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, "error", decodeBody(t, rec)["status"])
		})
	}
}

func TestIndicatorsHandler(t *testing.T) {
	h := NewAnalysisHandler(&fakeExtractor{}, &fakeAnalyzer{}, 1<<20, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/indicators",
		strings.NewReader(`{"assets": 100, "liabilities": "60"}`))
	rec := httptest.NewRecorder()
	h.IndicatorsHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var report models.ScoringReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	ind, ok := report.Indicator("debt_ratio")
	require.True(t, ok)
	require.NotNil(t, ind.Value)
	assert.Equal(t, 0.6, *ind.Value)
}

func TestIndicatorsHandlerInvalidJSON(t *testing.T) {
	h := NewAnalysisHandler(&fakeExtractor{}, &fakeAnalyzer{}, 1<<20, arbor.NewLogger())

	tests := []struct {
		name string
		body string
	}{
		{"empty", ""},
		{"malformed", `{"assets":`},
		{"not an object", `[1, 2]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/indicators", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.IndicatorsHandler(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestAnalyzeHandler(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	h := NewAnalysisHandler(&fakeExtractor{}, analyzer, 1<<20, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(`{
		"summary": "Key supplier",
		"raw_text": "Balance sheet",
		"indicators": {"company_name": "Acme BV", "fiscal_year": "2024", "total_assets": 100, "revenue": 1000}
	}`))
	rec := httptest.NewRecorder()
	h.AnalyzeHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Acme BV", analyzer.req.CompanyName)
	assert.Equal(t, "2024", analyzer.req.FiscalYear)
	assert.Equal(t, "Key supplier", analyzer.req.Summary)
	assets, ok := analyzer.req.Facts.Get(models.FieldAssets)
	require.True(t, ok)
	assert.Equal(t, 100.0, assets)

	body := decodeBody(t, rec)
	assert.Equal(t, "an_test", body["id"])
}

func TestAnalyzeHandlerValidation(t *testing.T) {
	h := NewAnalysisHandler(&fakeExtractor{}, &fakeAnalyzer{}, 1<<20, arbor.NewLogger())

	long := strings.Repeat("x", 201)
	req := httptest.NewRequest(http.MethodPost, "/api/analyze",
		strings.NewReader(`{"company_name": "`+long+`"}`))
	rec := httptest.NewRecorder()
	h.AnalyzeHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"], "company_name failed max=200")
}

func TestAnalyzeHandlerFailure(t *testing.T) {
	h := NewAnalysisHandler(&fakeExtractor{}, &fakeAnalyzer{err: errors.New("disk full")}, 1<<20, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(`{"company_name": "Acme"}`))
	rec := httptest.NewRecorder()
	h.AnalyzeHandler(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"], "disk full")
}

func reportRouter(h *ReportHandler) http.Handler {
	r := chi.NewRouter()
	r.Get("/api/reports", h.ListHandler)
	r.Get("/api/reports/latest", h.LatestHandler)
	r.Get("/api/reports/{id}", h.GetHandler)
	r.Get("/api/report/download", h.DownloadHandler)
	return r
}

func TestReportHandlerLatestAndGet(t *testing.T) {
	store := &memoryStore{}
	router := reportRouter(NewReportHandler(store, &fakeRenderer{}, arbor.NewLogger()))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reports/latest", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	store.items = []*models.Analysis{{ID: "an_1", CompanyName: "Old"}, {ID: "an_2", CompanyName: "New"}}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reports/latest", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "an_2", decodeBody(t, rec)["id"])

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reports/an_1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Old", decodeBody(t, rec)["company_name"])

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reports/an_missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReportHandlerList(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{"", 20},
		{"?limit=5", 5},
		{"?limit=500", 100},
		{"?limit=-3", 20},
		{"?limit=abc", 20},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			store := &memoryStore{items: []*models.Analysis{{ID: "an_1"}}}
			router := reportRouter(NewReportHandler(store, &fakeRenderer{}, arbor.NewLogger()))

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reports"+tt.query, nil))

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, store.limit)
			assert.Equal(t, float64(1), decodeBody(t, rec)["count"])
		})
	}
}

func TestReportHandlerStoreError(t *testing.T) {
	store := &memoryStore{err: errors.New("badger closed")}
	router := reportRouter(NewReportHandler(store, &fakeRenderer{}, arbor.NewLogger()))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reports", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestDownloadHandler(t *testing.T) {
	renderer := &fakeRenderer{rendered: &report.Rendered{
		Filename: "Acme_BV_Report_2025-03-01.pdf",
		Data:     []byte("%PDF-1.3 test"),
	}}
	router := reportRouter(NewReportHandler(&memoryStore{}, renderer, arbor.NewLogger()))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/report/download", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Acme_BV_Report_2025-03-01.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "%PDF-1.3 test", rec.Body.String())
}

func TestDownloadHandlerNoReport(t *testing.T) {
	renderer := &fakeRenderer{err: interfaces.ErrNotFound}
	router := reportRouter(NewReportHandler(&memoryStore{}, renderer, arbor.NewLogger()))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/report/download", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "No report found. Please analyze first.", decodeBody(t, rec)["error"])
}

func TestSystemHandler(t *testing.T) {
	h := NewSystemHandler(arbor.NewLogger())

	rec := httptest.NewRecorder()
	h.HealthHandler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])

	rec = httptest.NewRecorder()
	h.VersionHandler(rec, httptest.NewRequest(http.MethodGet, "/api/version", nil))
	body := decodeBody(t, rec)
	assert.Contains(t, body, "version")
	assert.Contains(t, body, "git_commit")

	rec = httptest.NewRecorder()
	h.RootHandler(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Contains(t, decodeBody(t, rec)["message"], "Bravix")
}
