package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/couchcryptid/zyra-incident-service/internal/adapter/http"
	"github.com/couchcryptid/zyra-incident-service/internal/domain"
	"github.com/couchcryptid/zyra-incident-service/internal/service"
)

type mockService struct {
	readyErr   error
	err        error
	gotRaw     domain.RawReport
	gotID      string
	gotArg     string
	ignoreCase bool
	written    bool
}

func (m *mockService) CheckReadiness(_ context.Context) error { return m.readyErr }

func (m *mockService) Report(_ context.Context, raw domain.RawReport) (service.Submission, error) {
	m.gotRaw = raw
	if m.err != nil {
		return service.Submission{}, m.err
	}
	return service.Submission{
		Incident:        domain.Incident{IncidentID: "inc-000001", LGA: raw.LGA},
		LedgerWritten:   m.written,
		Acknowledgement: "Thank you for your report.",
	}, nil
}

func (m *mockService) QueryByLga(_ context.Context, lga string, ignoreCase bool) (service.AreaSummary, error) {
	m.gotArg, m.ignoreCase = lga, ignoreCase
	return service.AreaSummary{LGA: lga, Message: "No incidents found for " + lga}, m.err
}

func (m *mockService) GetDetails(_ context.Context, id string) (domain.Incident, error) {
	m.gotID = id
	return domain.Incident{IncidentID: id}, m.err
}

func (m *mockService) ListAll(_ context.Context) ([]domain.Incident, error) {
	return []domain.Incident{{IncidentID: "inc-000001"}, {IncidentID: "inc-000002"}}, m.err
}

func (m *mockService) ListByStatus(_ context.Context, status string) ([]domain.Incident, error) {
	m.gotArg = status
	return []domain.Incident{{IncidentID: "inc-000003", Status: domain.Status(status)}}, m.err
}

func (m *mockService) ListHighSeverity(_ context.Context) ([]domain.Incident, error) {
	m.gotArg = "high"
	return []domain.Incident{{IncidentID: "inc-000001"}}, m.err
}

func (m *mockService) AddRecommendation(_ context.Context, id, step string) (domain.Incident, error) {
	m.gotID, m.gotArg = id, step
	return domain.Incident{IncidentID: id}, m.err
}

func (m *mockService) UpdateStatus(_ context.Context, id, status string) (domain.Incident, error) {
	m.gotID, m.gotArg = id, status
	return domain.Incident{IncidentID: id, Status: domain.Status(status)}, m.err
}

func (m *mockService) RaiseResourceRequest(_ context.Context, id, t string) (domain.Incident, error) {
	m.gotID, m.gotArg = id, t
	return domain.Incident{IncidentID: id}, m.err
}

func (m *mockService) Stats(_ context.Context) (service.Stats, error) {
	return service.Stats{TotalIncidents: 4, ByLGA: map[string]int{"Ikeja": 4}}, m.err
}

func newTestServer(svc *mockService) *httpadapter.Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return httpadapter.NewServer(":0", svc, 30*time.Second, logger)
}

func do(t *testing.T, srv http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	srv.ServeHTTP(rec, req)
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	rec := do(t, newTestServer(&mockService{}), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := do(t, newTestServer(&mockService{}), http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	rec := do(t, newTestServer(&mockService{readyErr: fmt.Errorf("store dir missing")}), http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := do(t, newTestServer(&mockService{}), http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPostReport(t *testing.T) {
	tests := []struct {
		name    string
		written bool
		want    int
	}{
		{"ledger written", true, http.StatusCreated},
		{"queued locally", false, http.StatusAccepted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockService{written: tt.written}
			rec := do(t, newTestServer(svc), http.MethodPost, "/api/reports",
				`{"farmer_id":"F-1","lga":"Ikeja","state":"Lagos","lat":6.6,"lon":3.3,"crop":"maize","category":"pest","description":"armyworm"}`)

			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.InDelta(t, 6.6, svc.gotRaw.Lat, 1e-9)

			var sub service.Submission
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sub))
			assert.Equal(t, "inc-000001", sub.Incident.IncidentID)
			assert.Equal(t, tt.written, sub.LedgerWritten)
		})
	}
}

func TestPostReport_BadJSON(t *testing.T) {
	rec := do(t, newTestServer(&mockService{}), http.MethodPost, "/api/reports", `{"lat":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", fmt.Errorf("parse: %w", domain.ErrInvalidGeo), http.StatusBadRequest},
		{"invalid status", domain.ErrInvalidStatus, http.StatusBadRequest},
		{"not found", fmt.Errorf("%w: inc-9", service.ErrNotFound), http.StatusNotFound},
		{"backward transition", domain.ErrInvalidTransition, http.StatusConflict},
		{"ledger down", service.ErrLedgerUnavailable, http.StatusServiceUnavailable},
		{"other", errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, newTestServer(&mockService{err: tt.err}), http.MethodGet, "/api/incidents/inc-9", "")
			assert.Equal(t, tt.want, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestGetIncident(t *testing.T) {
	svc := &mockService{}
	rec := do(t, newTestServer(svc), http.MethodGet, "/api/incidents/inc-000042", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "inc-000042", svc.gotID)
}

func TestListIncidents(t *testing.T) {
	rec := do(t, newTestServer(&mockService{}), http.MethodGet, "/api/incidents", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var incs []domain.Incident
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &incs))
	assert.Len(t, incs, 2)
}

func TestListIncidents_Filters(t *testing.T) {
	tests := []struct {
		query   string
		wantArg string
	}{
		{"?status=closed", "closed"},
		{"?high_severity=true", "high"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			svc := &mockService{}
			rec := do(t, newTestServer(svc), http.MethodGet, "/api/incidents"+tt.query, "")
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.wantArg, svc.gotArg)

			var incs []domain.Incident
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &incs))
			assert.Len(t, incs, 1)
		})
	}
}

func TestQueryLga(t *testing.T) {
	svc := &mockService{}
	rec := do(t, newTestServer(svc), http.MethodGet, "/api/lga/Ikeja?ignore_case=true", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Ikeja", svc.gotArg)
	assert.True(t, svc.ignoreCase)
}

func TestUpdateEndpoints(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		path    string
		body    string
		wantArg string
	}{
		{"recommendation", http.MethodPost, "/api/incidents/inc-000001/recommendations", `{"step":"Spray neem"}`, "Spray neem"},
		{"status", http.MethodPut, "/api/incidents/inc-000001/status", `{"status":"dispatched"}`, "dispatched"},
		{"resource request", http.MethodPost, "/api/incidents/inc-000001/resource-request", `{"type":"seed"}`, "seed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockService{}
			rec := do(t, newTestServer(svc), tt.method, tt.path, tt.body)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "inc-000001", svc.gotID)
			assert.Equal(t, tt.wantArg, svc.gotArg)
		})
	}
}

func TestStats(t *testing.T) {
	rec := do(t, newTestServer(&mockService{}), http.MethodGet, "/api/stats", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var st service.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, 4, st.TotalIncidents)
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(&mockService{})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/reports", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	srv.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
