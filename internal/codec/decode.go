package codec

import (
	"errors"
	"fmt"

	"github.com/couchcryptid/zyra-incident-service/internal/domain"
)

var (
	// ErrNotFound is returned when the response is the null sentinel.
	ErrNotFound = errors.New("codec: no value")

	// ErrUnrecognizedShape is returned when the top-level shape of a response
	// is neither null, a record, nor a vec.
	ErrUnrecognizedShape = errors.New("codec: unrecognized response shape")

	// ErrWantRecord is returned by Decode when the response is a well-formed
	// vec; use DecodeList for those.
	ErrWantRecord = errors.New("codec: response is a vec, want a single record")
)

// Shape is the top-level form of a ledger response.
type Shape int

const (
	ShapeUnknown Shape = iota
	ShapeNull
	ShapeRecord
	ShapeVec
)

func (s Shape) String() string {
	switch s {
	case ShapeNull:
		return "null"
	case ShapeRecord:
		return "record"
	case ShapeVec:
		return "vec"
	default:
		return "unknown"
	}
}

// DetectShape classifies a response without parsing its body.
func DetectShape(text string) Shape {
	shape, _ := locate(lex(text))
	return shape
}

// locate finds the top-level shape and the index of the token that opens it.
// Leading parentheses and opt keywords are skipped. When the response does not
// start with a recognizable value, the first "record {" or "vec {" anywhere in
// the text is used, then a bare null.
func locate(toks []token) (Shape, int) {
	i := 0
	for i < len(toks) && (toks[i].kind == tokLParen || (toks[i].kind == tokIdent && toks[i].text == "opt")) {
		i++
	}
	if toks[i].kind == tokIdent {
		switch toks[i].text {
		case "null":
			return ShapeNull, i
		case "record":
			return ShapeRecord, i
		case "vec":
			return ShapeVec, i
		}
	}

	for j := 0; j+1 < len(toks); j++ {
		if toks[j].kind != tokIdent || toks[j+1].kind != tokLBrace {
			continue
		}
		switch toks[j].text {
		case "record":
			return ShapeRecord, j
		case "vec":
			return ShapeVec, j
		}
	}
	for j, t := range toks {
		if t.kind == tokIdent && t.text == "null" {
			return ShapeNull, j
		}
	}
	return ShapeUnknown, 0
}

// Decode parses a single-incident response.
//
// A null response yields ErrNotFound. A record response always decodes: any
// field that is missing or malformed takes its default (see decodeIncident).
// A vec yields ErrWantRecord and an unrecognizable response ErrUnrecognizedShape.
func Decode(text string) (domain.Incident, error) {
	toks := lex(text)
	shape, start := locate(toks)
	switch shape {
	case ShapeNull:
		return domain.Incident{}, ErrNotFound
	case ShapeRecord:
		p := &parser{toks: toks, pos: start}
		v, _ := p.parseValue()
		return decodeIncident(v), nil
	case ShapeVec:
		return domain.Incident{}, ErrWantRecord
	default:
		return domain.Incident{}, ErrUnrecognizedShape
	}
}

// DecodeList parses a multi-incident response.
//
// A null response is an empty list and a lone record is a one-element list.
// If the vec body is cut off before its closing brace the result degrades to
// an empty list rather than a partial one. Elements that are not records are
// skipped.
func DecodeList(text string) ([]domain.Incident, error) {
	toks := lex(text)
	shape, start := locate(toks)
	switch shape {
	case ShapeNull:
		return []domain.Incident{}, nil
	case ShapeRecord:
		p := &parser{toks: toks, pos: start}
		v, _ := p.parseValue()
		return []domain.Incident{decodeIncident(v)}, nil
	case ShapeVec:
		p := &parser{toks: toks, pos: start}
		v, err := p.parseValue()
		if err != nil || p.truncated {
			return []domain.Incident{}, nil
		}
		out := make([]domain.Incident, 0, len(v.Items))
		for _, item := range v.Items {
			if item = item.Unwrap(); item.Kind == KindRecord {
				out = append(out, decodeIncident(item))
			}
		}
		return out, nil
	default:
		return nil, ErrUnrecognizedShape
	}
}

// DecodeText parses a response carrying a single text value, such as the id
// returned by create_incident. A bare unquoted word is accepted as well.
func DecodeText(text string) (string, error) {
	v, err := Parse(text)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnrecognizedShape, err)
	}
	v = v.Unwrap()
	switch v.Kind {
	case KindText, KindIdent:
		return v.Lit, nil
	case KindNull:
		return "", ErrNotFound
	default:
		return "", fmt.Errorf("%w: got %s, want text", ErrUnrecognizedShape, v.Kind)
	}
}

// DecodeNat parses a response carrying a single number, such as a count.
func DecodeNat(text string) (int, error) {
	v, err := Parse(text)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrUnrecognizedShape, err)
	}
	n, ok := v.Int()
	if !ok {
		return 0, fmt.Errorf("%w: got %s, want number", ErrUnrecognizedShape, v.Unwrap().Kind)
	}
	return n, nil
}

// decodeIncident maps a parsed record onto an incident. Missing or malformed
// fields take these defaults:
//
//	text fields          ""
//	crop, category       other
//	status               received
//	geo                  {0, 0}
//	enriched             {unknown, 0, []} unless weather_hint and severity_score both parse
//	recommendations      []
//	resource_request     {false, none, "", null}
//	audit                []
func decodeIncident(v Value) domain.Incident {
	v = v.Unwrap()
	inc := domain.Incident{
		IncidentID:      textField(v, "incident_id"),
		FarmerID:        textField(v, "farmer_id"),
		LGA:             textField(v, "lga"),
		State:           textField(v, "state"),
		Description:     textField(v, "description"),
		ReportedAt:      textField(v, "reported_at"),
		Crop:            domain.CropOther,
		Category:        domain.CategoryOther,
		Status:          domain.StatusReceived,
		Geo:             decodeGeo(v),
		Enriched:        decodeEnriched(v),
		Recommendations: decodeRecommendations(v),
		ResourceRequest: decodeResourceRequest(v),
		Audit:           decodeAudit(v),
	}
	if c, err := domain.ParseCrop(textField(v, "crop")); err == nil {
		inc.Crop = c
	}
	if c, err := domain.ParseCategory(textField(v, "category")); err == nil {
		inc.Category = c
	}
	if s, err := domain.ParseStatus(textField(v, "status")); err == nil {
		inc.Status = s
	}
	return inc
}

func textField(rec Value, name string) string {
	f, ok := rec.Get(name)
	if !ok {
		return ""
	}
	s, _ := f.Text()
	return s
}

func decodeGeo(rec Value) domain.Geo {
	g, ok := rec.Get("geo")
	if !ok {
		return domain.Geo{}
	}
	latV, okLat := g.Get("lat")
	lonV, okLon := g.Get("lon")
	if !okLat || !okLon {
		return domain.Geo{}
	}
	lat, okLat := latV.Float()
	lon, okLon := lonV.Float()
	if !okLat || !okLon {
		return domain.Geo{}
	}
	geo, err := domain.NewGeo(lat, lon)
	if err != nil {
		return domain.Geo{}
	}
	return geo
}

func decodeEnriched(rec Value) domain.Enriched {
	e, ok := rec.Get("enriched")
	if !ok {
		return domain.DefaultEnriched()
	}
	hintV, okHint := e.Get("weather_hint")
	scoreV, okScore := e.Get("severity_score")
	if !okHint || !okScore {
		return domain.DefaultEnriched()
	}
	hintText, _ := hintV.Text()
	hint, err := domain.ParseWeatherHint(hintText)
	if err != nil {
		return domain.DefaultEnriched()
	}
	score, ok := scoreV.Int()
	if !ok {
		return domain.DefaultEnriched()
	}
	score = min(max(score, 0), 100)

	tags := []string{}
	if tv, ok := e.Get("tags"); ok && tv.Kind == KindVec {
		for _, item := range tv.Items {
			if s, ok := item.Text(); ok {
				tags = append(tags, s)
			}
		}
	}
	return domain.Enriched{WeatherHint: hint, SeverityScore: score, Tags: tags}
}

func decodeRecommendations(rec Value) []domain.Recommendation {
	out := []domain.Recommendation{}
	for _, item := range recordItems(rec, "recommendations") {
		out = append(out, domain.Recommendation{
			Step:      textField(item, "step"),
			Source:    textField(item, "source"),
			CreatedAt: textField(item, "created_at"),
		})
	}
	return out
}

func decodeAudit(rec Value) []domain.Audit {
	out := []domain.Audit{}
	for _, item := range recordItems(rec, "audit") {
		out = append(out, domain.Audit{
			Event: textField(item, "event"),
			At:    textField(item, "at"),
		})
	}
	return out
}

// recordItems returns the record elements of the vec field name.
func recordItems(rec Value, name string) []Value {
	v, ok := rec.Get(name)
	if !ok || v.Kind != KindVec {
		return nil
	}
	var out []Value
	for _, item := range v.Items {
		if item = item.Unwrap(); item.Kind == KindRecord {
			out = append(out, item)
		}
	}
	return out
}

func decodeResourceRequest(rec Value) domain.ResourceRequest {
	rr := domain.DefaultResourceRequest()
	v, ok := rec.Get("resource_request")
	if !ok || v.Kind != KindRecord {
		return rr
	}
	if f, ok := v.Get("requested"); ok {
		if b, ok := f.Boolean(); ok {
			rr.Requested = b
		}
	}
	typeText := textField(v, "type_")
	if typeText == "" {
		typeText = textField(v, "type")
	}
	if t, err := domain.ParseResourceType(typeText); err == nil {
		rr.Type = t
	}
	rr.Notes = textField(v, "notes")
	if f, ok := v.Get("created_at"); ok {
		if s, ok := f.Text(); ok {
			rr.CreatedAt = &s
		}
	}
	return rr
}
