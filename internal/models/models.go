package models

import "time"

// Drift event types. A rule event carries the id of the rule it was
// sampled for; a schema event carries no rule id at all.
const (
	DriftTypeRule   = "rule"
	DriftTypeSchema = "schema"
)

// History actions. Every mutation of a rule's query records the query
// it replaced, tagged with the action that replaced it.
const (
	ActionCreated  = "created"
	ActionAutofix  = "autofix"
	ActionApplyFix = "apply_fix"
	ActionRollback = "rollback"
)

// Rule is a detection rule synced from a source system. Only the query
// is mutable, and only through lifecycle operations.
type Rule struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Query     string    `json:"query"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RuleHistoryEntry is an immutable snapshot of a rule's query taken
// immediately before the action that produced this entry.
type RuleHistoryEntry struct {
	ID        string    `json:"id"` // UUIDv7
	RuleID    string    `json:"rule_id"`
	Query     string    `json:"query"`
	Action    string    `json:"action"`
	CreatedAt time.Time `json:"timestamp"`
}

// DriftEvent is an append-only drift measurement. RuleID is nil exactly
// when DriftType is "schema".
type DriftEvent struct {
	ID          string    `json:"id"` // UUIDv7
	RuleID      *string   `json:"rule_id"`
	FPRate      float64   `json:"fp_rate"`
	TPRate      float64   `json:"tp_rate"`
	AlertVolume int       `json:"alert_volume"`
	DriftScore  float64   `json:"drift_score"`
	LastChecked time.Time `json:"last_checked"`
	DriftType   string    `json:"drift_type"`
}

// SchemaSnapshot is a versioned record of a source's field layout.
// Snapshots are appended, never edited; the newest one is the latest.
type SchemaSnapshot struct {
	ID          string                 `json:"id"` // UUIDv7
	Source      string                 `json:"source"`
	SchemaDef   map[string]interface{} `json:"schema_def"`
	Version     string                 `json:"version"`
	LastUpdated time.Time              `json:"last_updated"`
}

// Fields extracts the field-name list from the snapshot's schema_def.
// Non-string entries are skipped.
func (s *SchemaSnapshot) Fields() []string {
	raw, ok := s.SchemaDef["fields"].([]interface{})
	if !ok {
		return nil
	}
	fields := make([]string, 0, len(raw))
	for _, f := range raw {
		if name, ok := f.(string); ok {
			fields = append(fields, name)
		}
	}
	return fields
}

// QualitySignals are the observed rule-quality inputs to drift scoring.
type QualitySignals struct {
	FPRate      float64 `json:"fp_rate"`
	TPRate      float64 `json:"tp_rate"`
	AlertVolume int     `json:"alert_volume"`
}

// SourceRule is a rule as reported by an external SIEM connector.
type SourceRule struct {
	ID     string `json:"id"`
	Query  string `json:"query"`
	Source string `json:"source"`
}

// ApplyFixRequest is the body of POST /rules/{id}/apply_fix.
type ApplyFixRequest struct {
	SuggestedFix string `json:"suggested_fix"`
}

// FixResult is returned by apply-fix and autofix.
type FixResult struct {
	RuleID        string      `json:"rule_id"`
	PreviousQuery string      `json:"previous_query"`
	NewQuery      string      `json:"new_query"`
	Drift         *DriftEvent `json:"drift"`
}

// RollbackResult reports which history entry a rollback restored.
type RollbackResult struct {
	RuleID        string `json:"rule_id"`
	RestoredQuery string `json:"restored_query"`
	RolledBackTo  string `json:"rolled_back_to"`
	StepsBack     int    `json:"steps_back,omitempty"`
}

// SchemaDiffResult is returned by the schema diff endpoint.
type SchemaDiffResult struct {
	Added        []string `json:"added"`
	Removed      []string `json:"removed"`
	DriftEventID string   `json:"drift_event_id"`
	DriftScore   float64  `json:"drift_score"`
}

// DriftDashboard is the aggregation read model over all drift events.
type DriftDashboard struct {
	TotalEvents     int             `json:"total_events"`
	SchemaDrifts    int             `json:"schema_drifts"`
	RuleDrifts      int             `json:"rule_drifts"`
	AvgDriftScore   float64         `json:"avg_drift_score"`
	SeverityBuckets SeverityBuckets `json:"severity_buckets"`
}

// SeverityBuckets counts events per coarse drift-score range. Events
// with a score of exactly zero fall into no bucket.
type SeverityBuckets struct {
	Low    int `json:"low"`
	Medium int `json:"medium"`
	High   int `json:"high"`
}
