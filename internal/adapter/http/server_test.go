package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	httpadapter "github.com/couchcryptid/flood-risk-etl/internal/adapter/http"
	"github.com/couchcryptid/flood-risk-etl/internal/hydrology"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

func newTestServer(readyErr error) *httpadapter.Server {
	return httpadapter.NewServer(":0", &mockReadiness{err: readyErr}, slog.New(slog.DiscardHandler))
}

func TestHealthzReturns200(t *testing.T) {
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body["status"])
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	srv := newTestServer(fmt.Errorf("not ready yet"))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "not ready yet", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func postAssessment(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/assessments", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	srv.ServeHTTP(rec, req)
	return rec
}

func TestAssessments_ReferenceScenario(t *testing.T) {
	rec := postAssessment(t, `{"rainfall_mm": 450, "soil_class": "medium", "seed": 7}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var got hydrology.Assessment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.InDelta(t, 341.43, got.RunoffMM, 0.01)
	assert.InDelta(t, 0.512, got.DepthM, 0.001)
	assert.Equal(t, "HIGH", got.RiskLabel)
	assert.Len(t, got.Progression, hydrology.DefaultDurationHours+1)
}

func TestAssessments_SameSeedSameProgression(t *testing.T) {
	body := `{"rainfall_mm": 220, "soil_class": "high", "duration_hours": 24, "seed": 42}`

	var a, b hydrology.Assessment
	require.NoError(t, json.Unmarshal(postAssessment(t, body).Body.Bytes(), &a))
	require.NoError(t, json.Unmarshal(postAssessment(t, body).Body.Bytes(), &b))

	assert.Len(t, a.Progression, 25)
	assert.Equal(t, a.Progression, b.Progression)
}

func TestAssessments_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"negative rainfall", `{"rainfall_mm": -5}`},
		{"negative area", `{"rainfall_mm": 100, "catchment_area_km2": -1}`},
		{"malformed json", `{"rainfall_mm":`},
		{"unknown field", `{"rainfall": 100}`},
		{"duration above cap", `{"rainfall_mm": 100, "duration_hours": 8761}`},
		{"duration of a billion hours", `{"rainfall_mm": 100, "duration_hours": 1000000000}`},
		{"max int duration", `{"rainfall_mm": 100, "duration_hours": 9223372036854775807}`},
		{"overflowing rainfall", `{"rainfall_mm": 1e400}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postAssessment(t, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestAssessments_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/assessments", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
