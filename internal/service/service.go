package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/driftwatch-systems/driftwatch/internal/connectors"
	"github.com/driftwatch-systems/driftwatch/internal/drift"
	"github.com/driftwatch-systems/driftwatch/internal/metrics"
	"github.com/driftwatch-systems/driftwatch/internal/models"
	"github.com/driftwatch-systems/driftwatch/internal/repository"
	"github.com/driftwatch-systems/driftwatch/internal/schema"
	"github.com/driftwatch-systems/driftwatch/internal/signals"
	"github.com/driftwatch-systems/driftwatch/internal/suggest"
)

var (
	// ErrRollbackAddressing is returned when a rollback request supplies
	// both steps and history_id, or a steps value below 1.
	ErrRollbackAddressing = errors.New("specify exactly one of steps (>= 1) or history_id")

	// ErrSuggestionFailed marks a configured suggestion backend whose
	// call failed, as opposed to a backend that was never configured.
	ErrSuggestionFailed = errors.New("suggestion backend call failed")
)

var titleCaser = cases.Title(language.English)

// Service owns the rule lifecycle: it is the sole writer of rule
// queries and history entries, and the read model for drift events.
type Service struct {
	repo      repository.Repository
	registry  *connectors.Registry
	suggester suggest.Suggester
	signals   signals.Provider
}

func NewService(repo repository.Repository, registry *connectors.Registry, suggester suggest.Suggester, provider signals.Provider) *Service {
	return &Service{
		repo:      repo,
		registry:  registry,
		suggester: suggester,
		signals:   provider,
	}
}

// SyncRules pulls rules from every configured connector, persists the
// ones not seen before, and returns all persisted rules.
func (s *Service) SyncRules(ctx context.Context) ([]*models.Rule, error) {
	var incoming []*models.Rule
	for _, conn := range s.registry.All() {
		sourceRules, err := conn.ListRules(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list rules from %s: %w", conn.Name(), err)
		}
		for _, sr := range sourceRules {
			source := sr.Source
			if source == "" {
				source = conn.Name()
			}
			incoming = append(incoming, &models.Rule{
				ID:     sr.ID,
				Name:   ruleName(sr.ID),
				Query:  sr.Query,
				Source: source,
			})
		}
	}

	if err := s.repo.SyncRules(ctx, incoming); err != nil {
		return nil, err
	}
	return s.repo.ListRules(ctx)
}

// ruleName derives a display name from a rule id, e.g.
// "Block_Brute_Force" becomes "Block Brute Force".
func ruleName(id string) string {
	return titleCaser.String(strings.ReplaceAll(id, "_", " "))
}

// ApplyFix replaces a rule's query with an operator-supplied proposal.
// The proposal is sanitized first; the previous query is snapshotted
// into history and a fresh rule-type drift event is persisted, all in
// one transaction.
func (s *Service) ApplyFix(ctx context.Context, ruleID, proposedQuery string) (*models.FixResult, error) {
	return s.commitFix(ctx, ruleID, proposedQuery, models.ActionApplyFix)
}

// Autofix asks the suggestion backend for a replacement query and
// applies it. A backend failure mutates nothing: the backend is called
// before the lifecycle transaction opens. An unconfigured backend is
// reported before the rule lookup, so callers learn about the missing
// backend even for rules that do not exist.
func (s *Service) Autofix(ctx context.Context, ruleID string) (*models.FixResult, error) {
	if _, disabled := s.suggester.(suggest.Disabled); disabled {
		return nil, suggest.ErrNotConfigured
	}

	rule, err := s.repo.GetRule(ctx, ruleID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	proposed, err := s.suggester.Propose(ctx, rule.Query)
	metrics.SuggesterDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, suggest.ErrNotConfigured) {
			return nil, err
		}
		metrics.SuggesterErrors.Inc()
		return nil, fmt.Errorf("%w: %v", ErrSuggestionFailed, err)
	}

	return s.commitFix(ctx, ruleID, proposed, models.ActionAutofix)
}

func (s *Service) commitFix(ctx context.Context, ruleID, proposedQuery, action string) (*models.FixResult, error) {
	newQuery := SanitizeQuery(proposedQuery)

	sig := s.signals.Sample(ruleID)
	event := &models.DriftEvent{
		FPRate:      sig.FPRate,
		TPRate:      sig.TPRate,
		AlertVolume: sig.AlertVolume,
		DriftScore:  drift.Score(sig.FPRate, sig.TPRate, sig.AlertVolume),
	}

	prevQuery, err := s.repo.RecordFix(ctx, ruleID, newQuery, action, event)
	if err != nil {
		metrics.LifecycleOperations.WithLabelValues(action, "error").Inc()
		return nil, err
	}

	metrics.LifecycleOperations.WithLabelValues(action, "ok").Inc()
	metrics.DriftEvents.WithLabelValues(models.DriftTypeRule).Inc()
	metrics.DriftScores.Observe(event.DriftScore)

	return &models.FixResult{
		RuleID:        ruleID,
		PreviousQuery: prevQuery,
		NewQuery:      newQuery,
		Drift:         event,
	}, nil
}

// Rollback restores a rule's query from its history. Exactly one of
// steps or historyID addresses the restore target; stepsSet reports
// whether the caller supplied steps explicitly, so supplying both
// addressing modes can be rejected.
func (s *Service) Rollback(ctx context.Context, ruleID string, steps int, stepsSet bool, historyID string) (*models.RollbackResult, error) {
	if historyID != "" && stepsSet {
		return nil, ErrRollbackAddressing
	}
	if historyID == "" {
		if steps < 1 {
			return nil, ErrRollbackAddressing
		}
	} else {
		steps = 0
	}

	result, err := s.repo.RollbackRule(ctx, ruleID, steps, historyID)
	if err != nil {
		metrics.LifecycleOperations.WithLabelValues(models.ActionRollback, "error").Inc()
		return nil, err
	}
	metrics.LifecycleOperations.WithLabelValues(models.ActionRollback, "ok").Inc()
	return result, nil
}

// RuleHistory lists a rule's history entries, most recent first.
func (s *Service) RuleHistory(ctx context.Context, ruleID string) ([]*models.RuleHistoryEntry, error) {
	return s.repo.ListRuleHistory(ctx, ruleID)
}

// CheckRuleDrift samples quality signals for a rule and persists the
// resulting rule-type drift event.
func (s *Service) CheckRuleDrift(ctx context.Context, ruleID string) (*models.DriftEvent, error) {
	sig := s.signals.Sample(ruleID)
	event := &models.DriftEvent{
		RuleID:      &ruleID,
		FPRate:      sig.FPRate,
		TPRate:      sig.TPRate,
		AlertVolume: sig.AlertVolume,
		DriftScore:  drift.Score(sig.FPRate, sig.TPRate, sig.AlertVolume),
		DriftType:   models.DriftTypeRule,
	}
	if err := s.repo.InsertDriftEvent(ctx, event); err != nil {
		return nil, err
	}
	metrics.DriftEvents.WithLabelValues(models.DriftTypeRule).Inc()
	metrics.DriftScores.Observe(event.DriftScore)
	return event, nil
}

// StoreSchemaSnapshot appends a new schema version for a source.
func (s *Service) StoreSchemaSnapshot(ctx context.Context, source, version string, schemaDef map[string]interface{}) (*models.SchemaSnapshot, error) {
	snap := &models.SchemaSnapshot{
		Source:    source,
		SchemaDef: schemaDef,
		Version:   version,
	}
	if err := s.repo.CreateSchemaSnapshot(ctx, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// LatestSchemaSnapshot returns the newest snapshot for a source.
func (s *Service) LatestSchemaSnapshot(ctx context.Context, source string) (*models.SchemaSnapshot, error) {
	return s.repo.GetLatestSchemaSnapshot(ctx, source)
}

// SchemaHistory lists all snapshots for a source, newest first.
func (s *Service) SchemaHistory(ctx context.Context, source string) ([]*models.SchemaSnapshot, error) {
	return s.repo.ListSchemaSnapshots(ctx, source)
}

// DiffSchemas compares two stored snapshot versions of a source and
// persists the resulting schema-type drift event. The schema score is
// the raw count of changed fields, deliberately not on the same scale
// as rule drift scores.
func (s *Service) DiffSchemas(ctx context.Context, source, fromVersion, toVersion string) (*models.SchemaDiffResult, error) {
	fromSnap, err := s.repo.GetSchemaSnapshotByVersion(ctx, source, fromVersion)
	if err != nil {
		return nil, err
	}
	toSnap, err := s.repo.GetSchemaSnapshotByVersion(ctx, source, toVersion)
	if err != nil {
		return nil, err
	}

	d := schema.FieldDiff(fromSnap.Fields(), toSnap.Fields())

	event := &models.DriftEvent{
		DriftScore: drift.SchemaScore(d.Added, d.Removed),
		DriftType:  models.DriftTypeSchema,
	}
	if err := s.repo.InsertDriftEvent(ctx, event); err != nil {
		return nil, err
	}
	metrics.DriftEvents.WithLabelValues(models.DriftTypeSchema).Inc()
	metrics.DriftScores.Observe(event.DriftScore)

	return &models.SchemaDiffResult{
		Added:        d.Added,
		Removed:      d.Removed,
		DriftEventID: event.ID,
		DriftScore:   event.DriftScore,
	}, nil
}

// DriftHistory lists all recorded drift events, newest first.
func (s *Service) DriftHistory(ctx context.Context) ([]*models.DriftEvent, error) {
	return s.repo.ListDriftEvents(ctx)
}

// DriftDashboard aggregates all drift events in one pass over a single
// read, so the rollup is always consistent with the event log at the
// instant of the read. Empty data yields zeros, never an error.
func (s *Service) DriftDashboard(ctx context.Context) (*models.DriftDashboard, error) {
	events, err := s.repo.ListDriftEvents(ctx)
	if err != nil {
		return nil, err
	}

	dash := &models.DriftDashboard{TotalEvents: len(events)}
	var sum float64
	for _, e := range events {
		switch e.DriftType {
		case models.DriftTypeSchema:
			dash.SchemaDrifts++
		case models.DriftTypeRule:
			dash.RuleDrifts++
		}
		sum += e.DriftScore
		switch drift.Severity(e.DriftScore) {
		case drift.SeverityLow:
			dash.SeverityBuckets.Low++
		case drift.SeverityMedium:
			dash.SeverityBuckets.Medium++
		case drift.SeverityHigh:
			dash.SeverityBuckets.High++
		}
	}
	if len(events) > 0 {
		dash.AvgDriftScore = math.Round(sum/float64(len(events))*100) / 100
	}
	return dash, nil
}

// SupportedSIEMs lists the registered connector names.
func (s *Service) SupportedSIEMs() []string {
	return s.registry.Names()
}

// SIEMRules passes through the rule list of one named connector.
func (s *Service) SIEMRules(ctx context.Context, name string) ([]models.SourceRule, error) {
	conn, err := s.registry.Get(name)
	if err != nil {
		return nil, err
	}
	return conn.ListRules(ctx)
}

// fenceTags are the code-fence info strings suggestion backends emit.
// Only these are stripped: a bare first line that is not a known tag is
// query text -- multi-line KQL opens with its table name alone.
var fenceTags = map[string]bool{
	"spl":       true,
	"splunk":    true,
	"kql":       true,
	"kusto":     true,
	"sql":       true,
	"text":      true,
	"plaintext": true,
}

// SanitizeQuery strips conversational wrapping from a proposed query:
// surrounding whitespace, fenced code-block markers, and a leading
// language tag line such as "spl" or "kql".
func SanitizeQuery(q string) string {
	q = strings.TrimSpace(q)
	if !strings.HasPrefix(q, "```") {
		return q
	}
	q = strings.TrimSpace(strings.Trim(q, "`"))
	if i := strings.IndexByte(q, '\n'); i >= 0 {
		if fenceTags[strings.ToLower(strings.TrimSpace(q[:i]))] {
			q = strings.TrimSpace(q[i+1:])
		}
	}
	return q
}
