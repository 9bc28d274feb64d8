package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/couchcryptid/zyra-incident-service/internal/domain"
)

// Submission is the result of reporting an incident.
type Submission struct {
	Incident        domain.Incident `json:"incident"`
	LedgerWritten   bool            `json:"ledger_written"`
	CorrelationID   string          `json:"correlation_id"`
	Acknowledgement string          `json:"acknowledgement"`
}

// Report validates a raw report, runs it through enrichment, recommendation,
// and resource-request policy, and persists it. When the ledger write fails
// the incident gets a local id and is queued in the local store instead.
// Validation failures return a domain.ErrValidation error and persist nothing.
func (s *Service) Report(ctx context.Context, raw domain.RawReport) (Submission, error) {
	report, err := domain.ParseReport(raw)
	if err != nil {
		s.metrics.ReportsTotal.WithLabelValues("rejected").Inc()
		return Submission{}, err
	}

	correlationID := uuid.NewString()
	logger := s.logger.With("correlation_id", correlationID, "farmer_id", report.FarmerID, "lga", report.LGA)

	inc := domain.Process(report)
	if inc.Enriched.WeatherHint == domain.WeatherUnknown {
		logger.Debug("weather hint degraded to unknown")
	}
	if _, ok := domain.HasRemedy(inc.Category, inc.Crop); !ok {
		logger.Debug("no remedy for category and crop, using generic recommendation", "category", inc.Category, "crop", inc.Crop)
	}

	written := true
	id, err := s.ledger.CreateIncident(ctx, inc)
	if err != nil {
		written = false
		logger.Warn("ledger write failed, queueing locally", "error", err)
		s.metrics.LedgerFallbacks.WithLabelValues("report").Inc()

		inc.IncidentID = domain.LocalIncidentID()
		inc.AppendAudit(domain.AuditQueuedLocally)
		if storeErr := s.store.Append(inc); storeErr != nil {
			return Submission{}, fmt.Errorf("queue incident locally after ledger failure (%v): %w", err, storeErr)
		}
	} else {
		inc.IncidentID = id
	}

	outcome := "ledger"
	if !written {
		outcome = "local"
	}
	s.metrics.ReportsTotal.WithLabelValues(outcome).Inc()
	s.metrics.SeverityScore.Observe(float64(inc.Enriched.SeverityScore))
	if inc.ResourceRequest.Requested {
		s.metrics.ResourceRequests.WithLabelValues(string(inc.ResourceRequest.Type)).Inc()
	}
	logger.Info("incident reported",
		"incident_id", inc.IncidentID,
		"severity", inc.Enriched.SeverityScore,
		"ledger_written", written,
		"resource_requested", inc.ResourceRequest.Requested,
	)

	s.publish(ctx, domain.IncidentEvent{Incident: inc, LedgerWritten: written, CorrelationID: correlationID})

	return Submission{
		Incident:        inc,
		LedgerWritten:   written,
		CorrelationID:   correlationID,
		Acknowledgement: Acknowledgement(inc, written),
	}, nil
}

func (s *Service) publish(ctx context.Context, ev domain.IncidentEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.metrics.EventsPublished.WithLabelValues("error").Inc()
		s.logger.Error("publish incident event", "incident_id", ev.Incident.IncidentID, "error", err)
		return
	}
	s.metrics.EventsPublished.WithLabelValues("success").Inc()
}

// Acknowledgement is the text returned to the farmer after a submission.
func Acknowledgement(inc domain.Incident, ledgerWritten bool) string {
	var b strings.Builder
	b.WriteString("Thank you for your report. ")
	if ledgerWritten {
		fmt.Fprintf(&b, "Your incident has been recorded (ID: %s). ", inc.IncidentID)
	} else {
		fmt.Fprintf(&b, "The ledger is unavailable; your incident has been queued locally (ID: %s). ", inc.IncidentID)
	}
	fmt.Fprintf(&b, "Severity level: %d/100. ", inc.Enriched.SeverityScore)
	if len(inc.Recommendations) > 0 {
		fmt.Fprintf(&b, "Recommendation: %s", inc.Recommendations[len(inc.Recommendations)-1].Step)
	}
	if inc.ResourceRequest.Requested {
		fmt.Fprintf(&b, " A resource request has been raised for %s.", inc.ResourceRequest.Type)
	}
	return b.String()
}
