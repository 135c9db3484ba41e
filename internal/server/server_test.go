package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/bravix/internal/app"
	"github.com/ternarybob/bravix/internal/common"
)

const testAPIKey = "secret-key"

func newTestServer(t *testing.T, apiKey string) *Server {
	t.Helper()

	cfg := common.NewDefaultConfig()
	cfg.Storage.Badger.Path = t.TempDir()
	cfg.Security.APIKey = apiKey

	application, err := app.New(cfg, arbor.NewLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Close() })

	return New(application)
}

func do(t *testing.T, s *Server, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestAPIKeyEnforcement(t *testing.T) {
	s := newTestServer(t, testAPIKey)

	tests := []struct {
		name string
		path string
		key  string
		want int
	}{
		{"root is public", "/", "", http.StatusOK},
		{"health is public", "/health", "", http.StatusOK},
		{"api health is public", "/api/health", "", http.StatusOK},
		{"version is public", "/api/version", "", http.StatusOK},
		{"reports without key", "/api/reports", "", http.StatusUnauthorized},
		{"reports with wrong key", "/api/reports", "nope", http.StatusUnauthorized},
		{"reports with key", "/api/reports", testAPIKey, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.key != "" {
				headers["X-API-Key"] = tt.key
			}
			rec := do(t, s, http.MethodGet, tt.path, "", headers)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestNoAPIKeyConfigured(t *testing.T) {
	s := newTestServer(t, "")

	rec := do(t, s, http.MethodGet, "/api/reports", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORS(t *testing.T) {
	s := newTestServer(t, testAPIKey)

	tests := []struct {
		name    string
		origin  string
		allowed bool
	}{
		{"listed origin", "http://localhost:3000", true},
		{"suffix origin", "https://bravix-preview.vercel.app", true},
		{"unknown origin", "https://evil.example.com", false},
		{"suffix lookalike", "https://vercel.app.evil.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodOptions, "/api/analyze", "", map[string]string{
				"Origin":                        tt.origin,
				"Access-Control-Request-Method": "POST",
			})

			assert.Equal(t, http.StatusNoContent, rec.Code)
			if tt.allowed {
				assert.Equal(t, tt.origin, rec.Header().Get("Access-Control-Allow-Origin"))
				assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "X-API-Key")
			} else {
				assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
			}
		})
	}
}

func TestAnalyzeThenDownload(t *testing.T) {
	s := newTestServer(t, testAPIKey)
	auth := map[string]string{"X-API-Key": testAPIKey}

	rec := do(t, s, http.MethodGet, "/api/report/download", "", auth)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/analyze", `{
		"company_name": "Acme BV",
		"fiscal_year": "2024",
		"indicators": {"current_assets": 200, "current_liabilities": 100, "assets": 500, "liabilities": 200}
	}`, auth)
	require.Equal(t, http.StatusOK, rec.Code)

	var analysis struct {
		ID     string `json:"id"`
		Report struct {
			CompanyClass string `json:"company_class"`
		} `json:"report"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &analysis))
	require.NotEmpty(t, analysis.ID)
	assert.NotEqual(t, "N/A", analysis.Report.CompanyClass)

	rec = do(t, s, http.MethodGet, "/api/reports/"+analysis.ID, "", auth)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/reports/latest", "", auth)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/report/download", "", auth)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "Acme_BV_Report_")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF"))
}

func TestIndicatorsRoute(t *testing.T) {
	s := newTestServer(t, "")

	rec := do(t, s, http.MethodPost, "/api/indicators", `{"revenue": 1000, "profit": 100}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"net_profit_margin"`)
}

func TestUnknownRouteAndMethod(t *testing.T) {
	s := newTestServer(t, "")

	rec := do(t, s, http.MethodGet, "/api/nothing", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"error"`)

	rec = do(t, s, http.MethodGet, "/api/analyze", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRecoveryMiddleware(t *testing.T) {
	s := newTestServer(t, "")

	handler := s.recoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/analyze", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal server error")
}

func TestServerTimeoutsFromConfig(t *testing.T) {
	s := newTestServer(t, "")

	assert.Equal(t, "localhost:8080", s.Addr())
	assert.Equal(t, "3m0s", s.server.WriteTimeout.String())
	assert.Equal(t, "15s", s.server.ReadTimeout.String())
}
