package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/bravix/internal/models"
	"github.com/ternarybob/bravix/internal/services/analysis"
	"github.com/ternarybob/bravix/internal/services/extraction"
	"github.com/ternarybob/bravix/internal/services/indicators"
)

// multipartMemory is how much of an upload is held in memory before
// spilling to temp files.
const multipartMemory = 8 << 20

// AnalysisHandler serves document upload, scoring and analysis.
type AnalysisHandler struct {
	extractor Extractor
	analyzer  Analyzer
	maxUpload int64
	logger    arbor.ILogger
}

// NewAnalysisHandler creates a new AnalysisHandler
func NewAnalysisHandler(extractor Extractor, analyzer Analyzer, maxUpload int64, logger arbor.ILogger) *AnalysisHandler {
	return &AnalysisHandler{
		extractor: extractor,
		analyzer:  analyzer,
		maxUpload: maxUpload,
		logger:    logger,
	}
}

// UploadResponse is returned by POST /api/upload.
type UploadResponse struct {
	Status     string                   `json:"status"`
	Extraction *models.ExtractionResult `json:"extraction"`
	Report     models.ScoringReport     `json:"report"`
}

// UploadHandler handles POST /api/upload
func (h *AnalysisHandler) UploadHandler(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > h.maxUpload {
		WriteError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d bytes", h.maxUpload))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			WriteError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d bytes", h.maxUpload))
			return
		}
		WriteError(w, http.StatusBadRequest, "expected multipart form with a 'file' field")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "missing 'file' field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.logger.Warn().Err(err).Str("filename", header.Filename).Msg("Failed to read upload")
		WriteError(w, http.StatusBadRequest, "failed to read uploaded file")
		return
	}

	result, err := h.extractor.Extract(r.Context(), header.Filename, data)
	if err != nil {
		if errors.Is(err, extraction.ErrUnsupportedFormat) {
			WriteError(w, http.StatusUnsupportedMediaType, err.Error())
			return
		}
		h.logger.Error().Err(err).Str("filename", header.Filename).Msg("Extraction failed")
		WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, UploadResponse{
		Status:     "success",
		Extraction: result,
		Report:     indicators.Compute(result.Facts),
	})
}

// IndicatorsHandler handles POST /api/indicators. The body is a flat map of
// financial figures; only the engine runs.
func (h *AnalysisHandler) IndicatorsHandler(w http.ResponseWriter, r *http.Request) {
	var body map[string]interface{}
	if err := DecodeJSON(w, r, &body); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, indicators.ComputeFromMap(body))
}

// AnalyzeRequest is the body of POST /api/analyze.
type AnalyzeRequest struct {
	CompanyName string                 `json:"company_name" validate:"max=200"`
	FiscalYear  string                 `json:"fiscal_year" validate:"max=32"`
	Summary     string                 `json:"summary" validate:"max=10000"`
	RawText     string                 `json:"raw_text"`
	Indicators  map[string]interface{} `json:"indicators"`
}

// AnalyzeHandler handles POST /api/analyze
func (h *AnalysisHandler) AnalyzeHandler(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Older clients put the company and year inside the indicators map.
	if req.CompanyName == "" {
		req.CompanyName = stringField(req.Indicators, "company_name")
	}
	if req.FiscalYear == "" {
		req.FiscalYear = stringField(req.Indicators, "fiscal_year")
	}

	result, err := h.analyzer.Analyze(r.Context(), analysis.Request{
		CompanyName: req.CompanyName,
		FiscalYear:  req.FiscalYear,
		Summary:     req.Summary,
		RawText:     req.RawText,
		Facts:       indicators.FactsFromMap(req.Indicators),
	})
	if err != nil {
		h.logger.Error().Err(err).Str("company", req.CompanyName).Msg("Analysis failed")
		WriteError(w, http.StatusInternalServerError, "analysis failed: "+err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

func stringField(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}
