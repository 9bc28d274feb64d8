package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/couchcryptid/zyra-incident-service/internal/codec"
	"github.com/couchcryptid/zyra-incident-service/internal/domain"
)

// AddRecommendation attaches an operator or agent recommendation to a ledger
// incident. A received incident also moves to recommended. Locally queued
// incidents cannot be updated until they reach the ledger.
//
// Once the ledger has stored the recommendation the call succeeds: a failed
// follow-up status change is logged and the incident is returned still
// received, so callers do not retry and store the recommendation twice.
func (s *Service) AddRecommendation(ctx context.Context, id, step string) (domain.Incident, error) {
	id = domain.CleanText(id)
	step = strings.TrimSpace(domain.CleanText(step))
	if step == "" {
		return domain.Incident{}, fmt.Errorf("%w: recommendation step is empty", domain.ErrValidation)
	}
	inc, err := s.fetchForUpdate(ctx, id)
	if err != nil {
		return domain.Incident{}, err
	}

	rec := domain.AgentRecommendation(step)
	if err := s.ledger.AddRecommendation(ctx, id, rec); err != nil {
		return domain.Incident{}, fmt.Errorf("%w: add recommendation to %s: %v", ErrLedgerUnavailable, id, err)
	}
	wasReceived := inc.Status == domain.StatusReceived
	inc.AddRecommendation(rec)
	if wasReceived {
		if err := s.ledger.SetStatus(ctx, id, domain.StatusRecommended); err != nil {
			inc.Status = domain.StatusReceived
			s.logger.Warn("recommendation stored but status change failed", "incident_id", id, "error", err)
		} else {
			inc.AppendAudit(domain.StatusAuditEvent(domain.StatusRecommended))
		}
	}
	s.logger.Info("recommendation added", "incident_id", id, "status", inc.Status)
	return inc, nil
}

// UpdateStatus moves a ledger incident forward through the status machine.
// Unknown statuses fail with domain.ErrInvalidStatus and backward moves with
// domain.ErrInvalidTransition before the ledger is touched.
func (s *Service) UpdateStatus(ctx context.Context, id, status string) (domain.Incident, error) {
	id = domain.CleanText(id)
	next, err := domain.ParseStatus(status)
	if err != nil {
		return domain.Incident{}, err
	}
	inc, err := s.fetchForUpdate(ctx, id)
	if err != nil {
		return domain.Incident{}, err
	}
	prev := inc.Status
	if err := inc.SetStatus(next); err != nil {
		return domain.Incident{}, err
	}
	if prev == next {
		return inc, nil
	}
	if err := s.ledger.SetStatus(ctx, id, next); err != nil {
		return domain.Incident{}, fmt.Errorf("%w: set status of %s: %v", ErrLedgerUnavailable, id, err)
	}
	s.logger.Info("status updated", "incident_id", id, "from", prev, "to", next)
	return inc, nil
}

// RaiseResourceRequest flags a resource need on a ledger incident regardless of severity.
func (s *Service) RaiseResourceRequest(ctx context.Context, id, resourceType string) (domain.Incident, error) {
	id = domain.CleanText(id)
	t, err := domain.ParseResourceType(resourceType)
	if err != nil {
		return domain.Incident{}, err
	}
	if t == domain.ResourceNone {
		return domain.Incident{}, fmt.Errorf("%w: resource type none cannot be requested", domain.ErrValidation)
	}
	inc, err := s.fetchForUpdate(ctx, id)
	if err != nil {
		return domain.Incident{}, err
	}
	inc.RaiseResourceRequest(t)
	if err := s.ledger.RaiseResourceRequest(ctx, id, t, inc.ResourceRequest.Notes); err != nil {
		return domain.Incident{}, fmt.Errorf("%w: raise resource request on %s: %v", ErrLedgerUnavailable, id, err)
	}
	s.metrics.ResourceRequests.WithLabelValues(string(t)).Inc()
	s.logger.Info("resource request raised", "incident_id", id, "type", t)
	return inc, nil
}

func (s *Service) fetchForUpdate(ctx context.Context, id string) (domain.Incident, error) {
	inc, err := s.ledger.GetIncident(ctx, id)
	switch {
	case err == nil:
		return inc, nil
	case errors.Is(err, codec.ErrNotFound):
		return domain.Incident{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	default:
		return domain.Incident{}, fmt.Errorf("%w: get %s: %v", ErrLedgerUnavailable, id, err)
	}
}
