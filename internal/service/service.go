// Package service orchestrates incident operations over the ledger, the local
// fallback store, and the event publisher.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/couchcryptid/zyra-incident-service/internal/domain"
	"github.com/couchcryptid/zyra-incident-service/internal/observability"
)

var (
	// ErrNotFound is returned when an incident exists in neither the ledger nor the local store.
	ErrNotFound = errors.New("incident not found")

	// ErrLedgerUnavailable is returned by operations that cannot fall back to the local store.
	ErrLedgerUnavailable = errors.New("ledger unavailable")

	// ErrLedgerDisabled is returned by the placeholder ledger used when no ledger is configured.
	ErrLedgerDisabled = errors.New("ledger disabled")
)

// Ledger is the system of record for incidents.
type Ledger interface {
	CreateIncident(ctx context.Context, inc domain.Incident) (string, error)
	GetIncident(ctx context.Context, id string) (domain.Incident, error)
	ListIncidentsByLga(ctx context.Context, lga string) ([]domain.Incident, error)
	ListAll(ctx context.Context) ([]domain.Incident, error)
	ListByStatus(ctx context.Context, status domain.Status) ([]domain.Incident, error)
	ListHighSeverity(ctx context.Context) ([]domain.Incident, error)
	AddRecommendation(ctx context.Context, id string, rec domain.Recommendation) error
	SetStatus(ctx context.Context, id string, status domain.Status) error
	RaiseResourceRequest(ctx context.Context, id string, t domain.ResourceType, notes string) error
}

// LocalStore holds incidents queued while the ledger is unreachable.
type LocalStore interface {
	Append(inc domain.Incident) error
	LoadAll() ([]domain.Incident, error)
	LoadByLga(lga string) ([]domain.Incident, error)
	FindByID(id string) (domain.Incident, bool, error)
	CheckReadiness() error
}

// Publisher announces submitted incidents.
type Publisher interface {
	Publish(ctx context.Context, ev domain.IncidentEvent) error
}

// Service implements the incident operations.
type Service struct {
	ledger    Ledger
	store     LocalStore
	publisher Publisher
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// New creates a Service. A nil ledger runs local-only; a nil publisher disables events.
func New(ledger Ledger, store LocalStore, publisher Publisher, logger *slog.Logger, metrics *observability.Metrics) *Service {
	if ledger == nil {
		ledger = disabledLedger{}
		metrics.LedgerEnabled.Set(0)
	} else {
		metrics.LedgerEnabled.Set(1)
	}
	return &Service{
		ledger:    ledger,
		store:     store,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
	}
}

// CheckReadiness returns nil when the local fallback store can accept writes.
// The ledger is not checked because every submission can fall back locally.
func (s *Service) CheckReadiness(_ context.Context) error {
	return s.store.CheckReadiness()
}

// disabledLedger fails every call so the service always takes the local path.
type disabledLedger struct{}

func (disabledLedger) CreateIncident(context.Context, domain.Incident) (string, error) {
	return "", ErrLedgerDisabled
}

func (disabledLedger) GetIncident(context.Context, string) (domain.Incident, error) {
	return domain.Incident{}, ErrLedgerDisabled
}

func (disabledLedger) ListIncidentsByLga(context.Context, string) ([]domain.Incident, error) {
	return nil, ErrLedgerDisabled
}

func (disabledLedger) ListAll(context.Context) ([]domain.Incident, error) {
	return nil, ErrLedgerDisabled
}

func (disabledLedger) ListByStatus(context.Context, domain.Status) ([]domain.Incident, error) {
	return nil, ErrLedgerDisabled
}

func (disabledLedger) ListHighSeverity(context.Context) ([]domain.Incident, error) {
	return nil, ErrLedgerDisabled
}

func (disabledLedger) AddRecommendation(context.Context, string, domain.Recommendation) error {
	return ErrLedgerDisabled
}

func (disabledLedger) SetStatus(context.Context, string, domain.Status) error {
	return ErrLedgerDisabled
}

func (disabledLedger) RaiseResourceRequest(context.Context, string, domain.ResourceType, string) error {
	return ErrLedgerDisabled
}
