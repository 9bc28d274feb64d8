// Package domain models agricultural incident reports and the deterministic
// rules that turn a report into a scored, tagged, recommended incident.
//
// # Lifecycle
//
// An [Incident] is created once per [Report] with an empty id and a "created"
// audit event, then mutated in place by each pipeline stage:
//
//	enrich → recommend → resource-request policy → (status changes)
//
// Every mutation appends an [Audit] event. The audit trail is append-only and
// never reordered. The id is assigned afterwards, either by the ledger or by
// [LocalIncidentID] when the ledger is unreachable.
//
// # Status machine
//
//	received → recommended → dispatched → closed
//
// The first recommendation moves a received incident to recommended. Other
// transitions are explicit commands. Moves may skip forward but never go
// backward; setting the current status again is a no-op.
//
// # Enrichment rules
//
// Weather hint, from a case-insensitive scan of the description (first match wins):
//
//	rainy:  lat in [6,14] and "rain"
//	humid:  "humid" or "mold"
//	dry:    "dry" or "drought"
//	sunny:  "sunny" or "hot"
//	otherwise unknown
//
// Severity score, clamped to [0,100]:
//
//	base:   pest 50 | disease 50 | flood 70 | drought 60 | input_need 40 | other 30
//	+10     crop is maize, rice, or cassava
//	+10     humid+disease, rainy+flood, or dry+drought
//	+15     "fast spread" or "rapid"
//	+20     "severe" or "critical"
//	+5      "young" or "seedling"
//
// Tags are the category tag (fall_armyworm, pest_alert, cassava_mosaic,
// disease_alert, flood_risk, drought_alert, input_request) followed by the
// "{crop}_crop" tag. The order is significant.
//
// # Thresholds
//
// A score of [HighSeverityThreshold] (70) or more marks the recommendation as
// URGENT and raises a resource request. The threshold is inclusive.
//
// # Timestamps
//
// All timestamps are UTC with millisecond precision and a trailing Z, see
// [TimestampLayout]. The package clock can be frozen in tests with [SetClock].
package domain
