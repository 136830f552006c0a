package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinic-kpi-report/pkg/models"
	"clinic-kpi-report/pkg/report"
)

func testServer(t *testing.T, ready bool) *Server {
	t.Helper()
	cache := NewCache()
	if ready {
		cache.Set(report.Build(
			[]models.ClientRow{
				{FullName: "Rojas, Ana", Stage: "Lead", LTV: 1_200_000, DaysSinceVisit: 95, DebtTQP: 600_000},
				{FullName: "Carla Díaz", Stage: "Consulta", LTV: 50_000, DaysSinceVisit: 10, DebtExtras: 5_000},
			},
			nil,
			report.Options{AsOf: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)},
		))
	}
	return New(Config{Addr: ":0", Log: zerolog.Nop(), Cache: cache})
}

func TestHealthz(t *testing.T) {
	s := testServer(t, false)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, false, body["report_ready"])
}

func TestReportNotReady(t *testing.T) {
	s := testServer(t, false)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/report", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestReportSummary(t *testing.T) {
	s := testServer(t, true)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/report/summary", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var summary report.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 2, summary.TotalClients)
	assert.Equal(t, "2026-08-01", summary.AsOf)
}

func TestClientsMinPriorityFilter(t *testing.T) {
	s := testServer(t, true)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/report/clients?min_priority=critical", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var clients []report.ClientAssessment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &clients))
	require.Len(t, clients, 1)
	assert.Equal(t, "Rojas, Ana", clients[0].FullName)

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/report/clients?min_priority=bogus", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFunnelAndAgingEndpoints(t *testing.T) {
	s := testServer(t, true)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/report/funnel", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/report/aging", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestCacheInvalidate(t *testing.T) {
	s := testServer(t, true)
	_, _, ok := s.cache.Get()
	require.True(t, ok)

	s.cache.Invalidate()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/report", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
