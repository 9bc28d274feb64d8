package domain

import (
	"fmt"
	"strings"
	"time"
)

// TimestampLayout is the UTC millisecond layout used for every timestamp the
// service stamps (reported_at, created_at, audit at).
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// HighSeverityThreshold is the inclusive score at which an incident is treated
// as high severity by recommendations, resource requests, and summaries.
const HighSeverityThreshold = 70

// Geo is a validated WGS-84 coordinate pair. Construct it with NewGeo.
type Geo struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// NewGeo validates lat ∈ [-90,90] and lon ∈ [-180,180].
func NewGeo(lat, lon float64) (Geo, error) {
	if lat < -90 || lat > 90 {
		return Geo{}, fmt.Errorf("%w: latitude %v out of range [-90,90]", ErrInvalidGeo, lat)
	}
	if lon < -180 || lon > 180 {
		return Geo{}, fmt.Errorf("%w: longitude %v out of range [-180,180]", ErrInvalidGeo, lon)
	}
	return Geo{Lat: lat, Lon: lon}, nil
}

// Enriched holds the derived weather hint, severity score, and tags.
type Enriched struct {
	WeatherHint   WeatherHint `json:"weather_hint"`
	SeverityScore int         `json:"severity_score"`
	Tags          []string    `json:"tags"`
}

// DefaultEnriched is the value substituted when enrichment data is missing.
func DefaultEnriched() Enriched {
	return Enriched{WeatherHint: WeatherUnknown, SeverityScore: 0, Tags: []string{}}
}

// Recommendation is a single remediation step attached to an incident.
type Recommendation struct {
	Step      string `json:"step"`
	Source    string `json:"source"`
	CreatedAt string `json:"created_at"`
}

// ResourceRequest records a flagged need for external aid.
// CreatedAt is nil until the request is triggered.
type ResourceRequest struct {
	Requested bool         `json:"requested"`
	Type      ResourceType `json:"type"`
	Notes     string       `json:"notes"`
	CreatedAt *string      `json:"created_at"`
}

// DefaultResourceRequest is the untriggered request every incident starts with.
func DefaultResourceRequest() ResourceRequest {
	return ResourceRequest{Requested: false, Type: ResourceNone}
}

// Audit is an append-only lifecycle event.
type Audit struct {
	Event string `json:"event"`
	At    string `json:"at"`
}

// Audit event names.
const (
	AuditCreated             = "created"
	AuditEnriched            = "enriched"
	AuditRecommendationAdded = "recommendation_added"
	AuditResourceRequested   = "resource_requested"
	AuditQueuedLocally       = "ledger_unavailable_queued_locally"
	auditStatusPrefix        = "status_updated_to_"
)

// Incident is the aggregate root for a farmer's report. It owns every nested
// structure; nothing is shared between incidents.
type Incident struct {
	IncidentID      string           `json:"incident_id"`
	FarmerID        string           `json:"farmer_id"`
	LGA             string           `json:"lga"`
	State           string           `json:"state"`
	Geo             Geo              `json:"geo"`
	Crop            Crop             `json:"crop"`
	Category        Category         `json:"category"`
	Description     string           `json:"description"`
	ReportedAt      string           `json:"reported_at"`
	Enriched        Enriched         `json:"enriched"`
	Status          Status           `json:"status"`
	Recommendations []Recommendation `json:"recommendations"`
	ResourceRequest ResourceRequest  `json:"resource_request"`
	Audit           []Audit          `json:"audit"`
}

// Report is a validated farmer submission, the input to the pipeline.
type Report struct {
	FarmerID    string
	LGA         string
	State       string
	Geo         Geo
	Crop        Crop
	Category    Category
	Description string
}

// RawReport carries loosely typed report fields as they arrive at an API boundary.
type RawReport struct {
	FarmerID    string  `json:"farmer_id" yaml:"farmer_id"`
	LGA         string  `json:"lga" yaml:"lga"`
	State       string  `json:"state" yaml:"state"`
	Lat         float64 `json:"lat" yaml:"lat"`
	Lon         float64 `json:"lon" yaml:"lon"`
	Crop        string  `json:"crop" yaml:"crop"`
	Category    string  `json:"category" yaml:"category"`
	Description string  `json:"description" yaml:"description"`
}

// ParseReport validates a RawReport and cleans its free-text fields. It never
// returns a partially built Report.
func ParseReport(raw RawReport) (Report, error) {
	geo, err := NewGeo(raw.Lat, raw.Lon)
	if err != nil {
		return Report{}, err
	}
	crop, err := ParseCrop(raw.Crop)
	if err != nil {
		return Report{}, err
	}
	category, err := ParseCategory(raw.Category)
	if err != nil {
		return Report{}, err
	}
	return Report{
		FarmerID:    CleanText(raw.FarmerID),
		LGA:         CleanText(raw.LGA),
		State:       CleanText(raw.State),
		Geo:         geo,
		Crop:        crop,
		Category:    category,
		Description: CleanText(raw.Description),
	}, nil
}

// CleanText removes double quotes from free text. The ledger's record grammar
// has no quote escaping, so every caller-supplied string passes through here.
func CleanText(s string) string {
	return strings.ReplaceAll(s, `"`, "")
}

// NewIncident creates a received incident with an empty id and a "created" audit event.
func NewIncident(r Report) Incident {
	now := Now()
	return Incident{
		FarmerID:        r.FarmerID,
		LGA:             r.LGA,
		State:           r.State,
		Geo:             r.Geo,
		Crop:            r.Crop,
		Category:        r.Category,
		Description:     r.Description,
		ReportedAt:      now,
		Enriched:        DefaultEnriched(),
		Status:          StatusReceived,
		Recommendations: []Recommendation{},
		ResourceRequest: DefaultResourceRequest(),
		Audit:           []Audit{{Event: AuditCreated, At: now}},
	}
}

// AppendAudit records a lifecycle event stamped with the current time.
func (i *Incident) AppendAudit(event string) {
	i.Audit = append(i.Audit, Audit{Event: event, At: Now()})
}

// ApplyEnrichment stores the enrichment result and audits it.
func (i *Incident) ApplyEnrichment(e Enriched) {
	i.Enriched = e
	i.AppendAudit(AuditEnriched)
}

// AddRecommendation appends a recommendation. The first recommendation moves a
// received incident to recommended.
func (i *Incident) AddRecommendation(r Recommendation) {
	i.Recommendations = append(i.Recommendations, r)
	i.AppendAudit(AuditRecommendationAdded)
	if i.Status == StatusReceived {
		i.Status = StatusRecommended
	}
}

// RaiseResourceRequest triggers a resource request of the given type.
func (i *Incident) RaiseResourceRequest(t ResourceType) {
	created := Now()
	i.ResourceRequest = ResourceRequest{
		Requested: true,
		Type:      t,
		Notes:     ResourceNotes(i.Category, t),
		CreatedAt: &created,
	}
	i.AppendAudit(AuditResourceRequested)
}

// SetStatus moves the incident forward through the status machine.
// Setting the current status again is a no-op.
func (i *Incident) SetStatus(next Status) error {
	if err := ValidateTransition(i.Status, next); err != nil {
		return err
	}
	if next == i.Status {
		return nil
	}
	i.Status = next
	i.AppendAudit(StatusAuditEvent(next))
	return nil
}

// StatusAuditEvent names the audit event for a status change.
func StatusAuditEvent(s Status) string {
	return auditStatusPrefix + string(s)
}

// IsHighSeverity reports whether the incident's score is at or above the threshold.
func (i Incident) IsHighSeverity() bool {
	return i.Enriched.SeverityScore >= HighSeverityThreshold
}

// Summary formats the one-line digest used in area summaries.
func (i Incident) Summary() string {
	return fmt.Sprintf("%s | %s | %s | Severity: %d | Status: %s",
		i.IncidentID, i.Crop, i.Category, i.Enriched.SeverityScore, i.Status)
}

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Now returns the current clock time in TimestampLayout.
func Now() string {
	return FormatTimestamp(clock.Now())
}

// LocalIncidentID derives the fallback id used when the ledger cannot assign one.
func LocalIncidentID() string {
	return "inc-" + clock.Now().UTC().Format("20060102150405")
}

// Process runs the enrichment, recommendation, and resource-request stages on
// a freshly created incident.
func Process(r Report) Incident {
	inc := NewIncident(r)
	inc.ApplyEnrichment(Enrich(r.Category, r.Crop, r.Geo.Lat, r.Geo.Lon, r.Description))
	inc.AddRecommendation(Recommend(r.Category, r.Crop, inc.Enriched.SeverityScore))
	inc.ApplyPolicy()
	return inc
}

// IncidentEvent announces a submitted incident and where it was persisted.
type IncidentEvent struct {
	Incident      Incident
	LedgerWritten bool
	CorrelationID string
}
