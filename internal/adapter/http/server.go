package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/zyra-incident-service/internal/domain"
	"github.com/couchcryptid/zyra-incident-service/internal/service"
)

// IncidentService is the operation surface the API exposes.
type IncidentService interface {
	sharedobs.ReadinessChecker
	Report(ctx context.Context, raw domain.RawReport) (service.Submission, error)
	QueryByLga(ctx context.Context, lga string, ignoreCase bool) (service.AreaSummary, error)
	GetDetails(ctx context.Context, id string) (domain.Incident, error)
	ListAll(ctx context.Context) ([]domain.Incident, error)
	ListByStatus(ctx context.Context, status string) ([]domain.Incident, error)
	ListHighSeverity(ctx context.Context) ([]domain.Incident, error)
	AddRecommendation(ctx context.Context, id, step string) (domain.Incident, error)
	UpdateStatus(ctx context.Context, id, status string) (domain.Incident, error)
	RaiseResourceRequest(ctx context.Context, id, resourceType string) (domain.Incident, error)
	Stats(ctx context.Context) (service.Stats, error)
}

// Server exposes the incident API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	svc        IncidentService
	logger     *slog.Logger
}

// NewServer creates an HTTP server. Ledger calls can take as long as the
// configured ledger timeout, so the write timeout must exceed it.
func NewServer(addr string, svc IncidentService, writeTimeout time.Duration, logger *slog.Logger) *Server {
	s := &Server{
		svc:    svc,
		logger: logger,
	}
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", sharedobs.LivenessHandler())
	r.Get("/readyz", sharedobs.ReadinessHandler(s.svc))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Post("/reports", s.handleReport)
		api.Get("/stats", s.handleStats)
		api.Get("/lga/{lga}", s.handleQueryLga)

		api.Route("/incidents", func(ir chi.Router) {
			ir.Get("/", s.handleList)
			ir.Get("/{id}", s.handleGet)
			ir.Post("/{id}/recommendations", s.handleAddRecommendation)
			ir.Put("/{id}/status", s.handleUpdateStatus)
			ir.Post("/{id}/resource-request", s.handleResourceRequest)
		})
	})

	return r
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	var raw domain.RawReport
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	sub, err := s.svc.Report(r.Context(), raw)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	status := http.StatusCreated
	if !sub.LedgerWritten {
		status = http.StatusAccepted
	}
	writeJSON(w, status, sub)
}

func (s *Server) handleQueryLga(w http.ResponseWriter, r *http.Request) {
	ignoreCase, _ := strconv.ParseBool(r.URL.Query().Get("ignore_case"))
	sum, err := s.svc.QueryByLga(r.Context(), chi.URLParam(r, "lga"), ignoreCase)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// handleList supports ?status= and ?high_severity=true filters.
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	var (
		incs []domain.Incident
		err  error
	)
	q := r.URL.Query()
	high, _ := strconv.ParseBool(q.Get("high_severity"))
	switch {
	case q.Get("status") != "":
		incs, err = s.svc.ListByStatus(r.Context(), q.Get("status"))
	case high:
		incs, err = s.svc.ListHighSeverity(r.Context())
	default:
		incs, err = s.svc.ListAll(r.Context())
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, incs)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	inc, err := s.svc.GetDetails(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inc)
}

func (s *Server) handleAddRecommendation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Step string `json:"step"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	inc, err := s.svc.AddRecommendation(r.Context(), chi.URLParam(r, "id"), req.Step)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inc)
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	inc, err := s.svc.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inc)
}

func (s *Server) handleResourceRequest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type string `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	inc, err := s.svc.RaiseResourceRequest(r.Context(), chi.URLParam(r, "id"), req.Type)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inc)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.svc.Stats(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// fail maps service errors onto status codes.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidStatus):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, service.ErrLedgerUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // client may have gone away
}
