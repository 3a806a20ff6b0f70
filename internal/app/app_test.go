package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApplication(t *testing.T) *Application {
	t.Helper()

	base := t.TempDir()
	t.Setenv("COLSUM_PATHS_DATA_DIR", filepath.Join(base, "data"))
	t.Setenv("COLSUM_PATHS_REPORTS_DIR", filepath.Join(base, "reports"))
	t.Setenv("COLSUM_PATHS_LOGS_DIR", filepath.Join(base, "logs"))
	t.Setenv("COLSUM_LOGGING_OUTPUT", "console")
	t.Setenv("COLSUM_SECURITY_RATE_LIMIT_ENABLED", "false")

	app, err := NewApplication()
	require.NoError(t, err)
	return app
}

func TestNewApplication(t *testing.T) {
	app := newTestApplication(t)

	assert.NotNil(t, app.Config)
	assert.NotNil(t, app.Router)
	assert.NotNil(t, app.Server)
	assert.NotNil(t, app.AggregationService)
	assert.NotNil(t, app.FileService)
	assert.NotNil(t, app.HealthService)
	assert.DirExists(t, app.Config.Paths.DataDir)
}

func TestApplication_HealthEndpoint(t *testing.T) {
	app := newTestApplication(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "healthy", payload["status"])
}

func TestApplication_AggregateEndToEnd(t *testing.T) {
	app := newTestApplication(t)

	content := "Category,Value\nCategory A,10.5\nCategory A,15.2\nCategory B,20.0\n"
	require.NoError(t, os.WriteFile(
		filepath.Join(app.Config.Paths.DataDir, "sales.csv"), []byte(content), 0644))

	body := `{"file":"sales.csv","filter_column":"Category","filter_value":"Category A","sum_column":"Value"}`
	req := httptest.NewRequest(http.MethodPost, "/api/aggregate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data struct {
			Total   float64 `json:"total"`
			Matched int     `json:"matched"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.InDelta(t, 25.7, envelope.Data.Total, 1e-9)
	assert.Equal(t, 2, envelope.Data.Matched)
}

func TestApplication_UnknownRoute(t *testing.T) {
	app := newTestApplication(t)

	req := httptest.NewRequest(http.MethodGet, "/api/nope", nil)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
