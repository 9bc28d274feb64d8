// Package codec converts incidents to and from the ledger's textual record
// grammar (brace-delimited records and vecs, not JSON).
//
// String values are written between double quotes. Backslashes are doubled so
// the parser reads them back literally; quote characters are not escaped, so
// callers must strip them from free text before encoding (see domain.CleanText).
package codec

import (
	"strconv"
	"strings"

	"github.com/couchcryptid/zyra-incident-service/internal/domain"
)

// Encode renders an incident as a single record literal.
func Encode(inc domain.Incident) string {
	var b recordBuilder
	b.text("incident_id", inc.IncidentID)
	b.text("farmer_id", inc.FarmerID)
	b.text("lga", inc.LGA)
	b.text("state", inc.State)
	b.raw("geo", encodeGeo(inc.Geo))
	b.text("crop", string(inc.Crop))
	b.text("category", string(inc.Category))
	b.text("description", inc.Description)
	b.text("reported_at", inc.ReportedAt)
	b.raw("enriched", encodeEnriched(inc.Enriched))
	b.text("status", string(inc.Status))
	b.raw("recommendations", encodeVec(len(inc.Recommendations), func(i int) string {
		return EncodeRecommendation(inc.Recommendations[i])
	}))
	b.raw("resource_request", encodeResourceRequest(inc.ResourceRequest))
	b.raw("audit", encodeVec(len(inc.Audit), func(i int) string {
		return encodeAudit(inc.Audit[i])
	}))
	return b.String()
}

// EncodeRecommendation renders a single recommendation record.
func EncodeRecommendation(r domain.Recommendation) string {
	var b recordBuilder
	b.text("step", r.Step)
	b.text("source", r.Source)
	b.text("created_at", r.CreatedAt)
	return b.String()
}

// Quote wraps s in double quotes, doubling backslashes.
func Quote(s string) string {
	return `"` + strings.ReplaceAll(s, `\`, `\\`) + `"`
}

// Args renders a parenthesised argument tuple for a ledger call.
func Args(values ...string) string {
	return "(" + strings.Join(values, ", ") + ")"
}

func encodeGeo(g domain.Geo) string {
	var b recordBuilder
	b.raw("lat", formatFloat(g.Lat))
	b.raw("lon", formatFloat(g.Lon))
	return b.String()
}

func encodeEnriched(e domain.Enriched) string {
	var b recordBuilder
	b.text("weather_hint", string(e.WeatherHint))
	b.raw("severity_score", strconv.Itoa(e.SeverityScore))
	b.raw("tags", encodeVec(len(e.Tags), func(i int) string { return Quote(e.Tags[i]) }))
	return b.String()
}

func encodeResourceRequest(r domain.ResourceRequest) string {
	var b recordBuilder
	b.raw("requested", strconv.FormatBool(r.Requested))
	b.text("type_", string(r.Type))
	b.text("notes", r.Notes)
	if r.CreatedAt == nil {
		b.raw("created_at", "null")
	} else {
		b.text("created_at", *r.CreatedAt)
	}
	return b.String()
}

func encodeAudit(a domain.Audit) string {
	var b recordBuilder
	b.text("event", a.Event)
	b.text("at", a.At)
	return b.String()
}

func encodeVec(n int, item func(int) string) string {
	if n == 0 {
		return "vec {}"
	}
	parts := make([]string, n)
	for i := range parts {
		parts[i] = item(i)
	}
	return "vec { " + strings.Join(parts, "; ") + " }"
}

// formatFloat always includes a decimal point so the value reads as a float.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

type recordBuilder struct {
	fields []string
}

func (b *recordBuilder) text(name, value string) {
	b.raw(name, Quote(value))
}

func (b *recordBuilder) raw(name, value string) {
	b.fields = append(b.fields, name+" = "+value)
}

func (b *recordBuilder) String() string {
	if len(b.fields) == 0 {
		return "record {}"
	}
	return "record { " + strings.Join(b.fields, "; ") + " }"
}
