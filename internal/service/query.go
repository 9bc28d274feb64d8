package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/couchcryptid/zyra-incident-service/internal/codec"
	"github.com/couchcryptid/zyra-incident-service/internal/domain"
)

const topHighSeverity = 3

// AreaSummary aggregates the incidents reported in one LGA.
type AreaSummary struct {
	LGA               string            `json:"lga"`
	TotalIncidents    int               `json:"total_incidents"`
	CategoryBreakdown map[string]int    `json:"category_breakdown"`
	HighSeverityCount int               `json:"high_severity_count"`
	TopHighSeverity   []string          `json:"top_high_severity"`
	Incidents         []domain.Incident `json:"incidents"`
	Message           string            `json:"message"`
}

// Stats aggregates every known incident.
type Stats struct {
	TotalIncidents    int            `json:"total_incidents"`
	ByStatus          map[string]int `json:"by_status"`
	ByCategory        map[string]int `json:"by_category"`
	ByLGA             map[string]int `json:"by_lga"`
	HighSeverityCount int            `json:"high_severity_count"`
}

// QueryByLga summarizes the incidents in an LGA. The ledger lookup is exact;
// when it fails or finds nothing the local store is consulted. With ignoreCase
// the full incident list is filtered case-insensitively instead, which mirrors
// the operator script's matching. An unknown area is an empty result, not an error.
func (s *Service) QueryByLga(ctx context.Context, lga string, ignoreCase bool) (AreaSummary, error) {
	lga = domain.CleanText(lga)
	var (
		incs []domain.Incident
		err  error
	)
	if ignoreCase {
		incs, err = s.ListAll(ctx)
		if err != nil {
			return AreaSummary{}, err
		}
		incs = filterFold(incs, lga)
	} else {
		incs, err = s.ledger.ListIncidentsByLga(ctx, lga)
		if err != nil || len(incs) == 0 {
			if err != nil {
				s.logger.Warn("ledger query failed, reading local store", "lga", lga, "error", err)
			}
			s.metrics.LedgerFallbacks.WithLabelValues("query_lga").Inc()
			incs, err = s.store.LoadByLga(lga)
			if err != nil {
				return AreaSummary{}, fmt.Errorf("load local incidents for %q: %w", lga, err)
			}
		}
	}
	return summarize(lga, incs), nil
}

func filterFold(incs []domain.Incident, lga string) []domain.Incident {
	out := make([]domain.Incident, 0, len(incs))
	for _, inc := range incs {
		if strings.EqualFold(inc.LGA, lga) {
			out = append(out, inc)
		}
	}
	return out
}

func summarize(lga string, incs []domain.Incident) AreaSummary {
	sum := AreaSummary{
		LGA:               lga,
		TotalIncidents:    len(incs),
		CategoryBreakdown: make(map[string]int),
		TopHighSeverity:   []string{},
		Incidents:         incs,
	}
	if len(incs) == 0 {
		sum.Message = fmt.Sprintf("No incidents found for %s", lga)
		return sum
	}

	var order []string
	var high []domain.Incident
	for _, inc := range incs {
		cat := string(inc.Category)
		if _, seen := sum.CategoryBreakdown[cat]; !seen {
			order = append(order, cat)
		}
		sum.CategoryBreakdown[cat]++
		if inc.IsHighSeverity() {
			high = append(high, inc)
		}
	}
	sum.HighSeverityCount = len(high)

	sort.SliceStable(high, func(i, j int) bool {
		return high[i].Enriched.SeverityScore > high[j].Enriched.SeverityScore
	})
	for i := 0; i < len(high) && i < topHighSeverity; i++ {
		sum.TopHighSeverity = append(sum.TopHighSeverity, high[i].Summary())
	}

	parts := make([]string, len(order))
	for i, cat := range order {
		parts[i] = fmt.Sprintf("%s: %d", cat, sum.CategoryBreakdown[cat])
	}
	sum.Message = fmt.Sprintf("Found %d incidents in %s. Categories: %s. High severity incidents: %d requiring immediate attention.",
		len(incs), lga, strings.Join(parts, ", "), len(high))
	return sum
}

// GetDetails returns one incident from the ledger, falling back to the local
// store. ErrNotFound means neither knows the id.
func (s *Service) GetDetails(ctx context.Context, id string) (domain.Incident, error) {
	id = domain.CleanText(id)
	inc, err := s.ledger.GetIncident(ctx, id)
	if err == nil {
		return inc, nil
	}
	if !errors.Is(err, codec.ErrNotFound) {
		s.logger.Warn("ledger lookup failed, reading local store", "incident_id", id, "error", err)
		s.metrics.LedgerFallbacks.WithLabelValues("get").Inc()
	}
	local, ok, lerr := s.store.FindByID(id)
	if lerr != nil {
		return domain.Incident{}, fmt.Errorf("find local incident %s: %w", id, lerr)
	}
	if !ok {
		return domain.Incident{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return local, nil
}

// ListAll returns every ledger incident, or the local store's contents when the
// ledger fails or is empty.
func (s *Service) ListAll(ctx context.Context) ([]domain.Incident, error) {
	return s.listWithFallback(ctx, "list", s.ledger.ListAll, nil)
}

// ListByStatus returns incidents currently in the given status.
func (s *Service) ListByStatus(ctx context.Context, status string) ([]domain.Incident, error) {
	st, err := domain.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	fetch := func(ctx context.Context) ([]domain.Incident, error) {
		return s.ledger.ListByStatus(ctx, st)
	}
	return s.listWithFallback(ctx, "list_by_status", fetch, func(inc domain.Incident) bool {
		return inc.Status == st
	})
}

// ListHighSeverity returns incidents scored at or above the high severity
// threshold, most severe first.
func (s *Service) ListHighSeverity(ctx context.Context) ([]domain.Incident, error) {
	incs, err := s.listWithFallback(ctx, "list_high_severity", s.ledger.ListHighSeverity, domain.Incident.IsHighSeverity)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(incs, func(i, j int) bool {
		return incs[i].Enriched.SeverityScore > incs[j].Enriched.SeverityScore
	})
	return incs, nil
}

// listWithFallback reads from the ledger and falls back to the local store,
// filtered by keep, when the ledger fails or returns nothing.
func (s *Service) listWithFallback(
	ctx context.Context,
	op string,
	fetch func(context.Context) ([]domain.Incident, error),
	keep func(domain.Incident) bool,
) ([]domain.Incident, error) {
	incs, err := fetch(ctx)
	if err == nil && len(incs) > 0 {
		return incs, nil
	}
	if err != nil {
		s.logger.Warn("ledger list failed, reading local store", "operation", op, "error", err)
	}
	s.metrics.LedgerFallbacks.WithLabelValues(op).Inc()
	local, lerr := s.store.LoadAll()
	if lerr != nil {
		return nil, fmt.Errorf("load local incidents: %w", lerr)
	}
	if keep == nil {
		return local, nil
	}
	out := make([]domain.Incident, 0, len(local))
	for _, inc := range local {
		if keep(inc) {
			out = append(out, inc)
		}
	}
	return out, nil
}

// Stats counts every known incident by status, category, and LGA.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	incs, err := s.ListAll(ctx)
	if err != nil {
		return Stats{}, err
	}
	st := Stats{
		TotalIncidents: len(incs),
		ByStatus:       make(map[string]int),
		ByCategory:     make(map[string]int),
		ByLGA:          make(map[string]int),
	}
	for _, inc := range incs {
		st.ByStatus[string(inc.Status)]++
		st.ByCategory[string(inc.Category)]++
		st.ByLGA[inc.LGA]++
		if inc.IsHighSeverity() {
			st.HighSeverityCount++
		}
	}
	return st, nil
}
