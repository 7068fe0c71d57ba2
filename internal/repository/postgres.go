package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/driftwatch-systems/driftwatch/internal/models"
)

var (
	ErrRuleNotFound         = errors.New("rule not found")
	ErrHistoryEntryNotFound = errors.New("history entry not found")
	ErrSnapshotNotFound     = errors.New("schema snapshot not found")
)

// InsufficientHistoryError is returned by step-addressed rollback when
// the rule has fewer history entries than the requested depth.
type InsufficientHistoryError struct {
	Requested int
	Available int
}

func (e *InsufficientHistoryError) Error() string {
	return fmt.Sprintf("not enough history entries (only %d available)", e.Available)
}

type Repository interface {
	SyncRules(ctx context.Context, rules []*models.Rule) error
	ListRules(ctx context.Context) ([]*models.Rule, error)
	GetRule(ctx context.Context, id string) (*models.Rule, error)
	RecordFix(ctx context.Context, ruleID, newQuery, action string, drift *models.DriftEvent) (prevQuery string, err error)
	RollbackRule(ctx context.Context, ruleID string, steps int, historyID string) (*models.RollbackResult, error)
	ListRuleHistory(ctx context.Context, ruleID string) ([]*models.RuleHistoryEntry, error)
	InsertDriftEvent(ctx context.Context, event *models.DriftEvent) error
	ListDriftEvents(ctx context.Context) ([]*models.DriftEvent, error)
	CreateSchemaSnapshot(ctx context.Context, snap *models.SchemaSnapshot) error
	GetLatestSchemaSnapshot(ctx context.Context, source string) (*models.SchemaSnapshot, error)
	GetSchemaSnapshotByVersion(ctx context.Context, source, version string) (*models.SchemaSnapshot, error)
	ListSchemaSnapshots(ctx context.Context, source string) ([]*models.SchemaSnapshot, error)
	Close()
}

type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(ctx context.Context, connString string) (*PostgresRepository, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	// Connection pool configuration
	config.MaxConns = 25
	config.MinConns = 5
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

func (r *PostgresRepository) Close() {
	r.pool.Close()
}

// SyncRules inserts rules that are not yet known. Each newly created
// rule also gets a "created" history entry holding its initial query,
// so the full edit sequence is reconstructable from origin. Existing
// rules are left untouched; their query is owned by the lifecycle
// operations.
func (r *PostgresRepository) SyncRules(ctx context.Context, rules []*models.Rule) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, rule := range rules {
		tag, err := tx.Exec(ctx, `
			INSERT INTO rules (id, name, query, source)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO NOTHING
		`, rule.ID, rule.Name, rule.Query, rule.Source)
		if err != nil {
			return fmt.Errorf("failed to sync rule %s: %w", rule.ID, err)
		}
		if tag.RowsAffected() == 0 {
			continue
		}

		entryID, _ := uuid.NewV7()
		_, err = tx.Exec(ctx, `
			INSERT INTO rule_history (id, rule_id, query, action)
			VALUES ($1, $2, $3, $4)
		`, entryID.String(), rule.ID, rule.Query, models.ActionCreated)
		if err != nil {
			return fmt.Errorf("failed to record created entry for rule %s: %w", rule.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit rule sync: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListRules(ctx context.Context) ([]*models.Rule, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, `
		SELECT id, name, query, source, created_at, updated_at
		FROM rules
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	defer rows.Close()

	var rules []*models.Rule
	for rows.Next() {
		var rule models.Rule
		if err := rows.Scan(&rule.ID, &rule.Name, &rule.Query, &rule.Source, &rule.CreatedAt, &rule.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		rules = append(rules, &rule)
	}
	return rules, rows.Err()
}

func (r *PostgresRepository) GetRule(ctx context.Context, id string) (*models.Rule, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var rule models.Rule
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, query, source, created_at, updated_at
		FROM rules
		WHERE id = $1
	`, id).Scan(&rule.ID, &rule.Name, &rule.Query, &rule.Source, &rule.CreatedAt, &rule.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRuleNotFound
		}
		return nil, fmt.Errorf("failed to get rule: %w", err)
	}
	return &rule, nil
}

// RecordFix executes one lifecycle fix as a single transaction: lock
// the rule row, snapshot the current query into history under the given
// action, overwrite the query, and persist the drift event. The query
// captured in history is re-read under the lock, so concurrent fixes
// against one rule serialize and each history entry reflects the state
// the fix actually replaced.
func (r *PostgresRepository) RecordFix(ctx context.Context, ruleID, newQuery, action string, drift *models.DriftEvent) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var prevQuery string
	err = tx.QueryRow(ctx, `SELECT query FROM rules WHERE id = $1 FOR UPDATE`, ruleID).Scan(&prevQuery)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrRuleNotFound
		}
		return "", fmt.Errorf("failed to lock rule: %w", err)
	}

	entryID, _ := uuid.NewV7()
	_, err = tx.Exec(ctx, `
		INSERT INTO rule_history (id, rule_id, query, action)
		VALUES ($1, $2, $3, $4)
	`, entryID.String(), ruleID, prevQuery, action)
	if err != nil {
		return "", fmt.Errorf("failed to record history entry: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE rules SET query = $2, updated_at = NOW() WHERE id = $1
	`, ruleID, newQuery)
	if err != nil {
		return "", fmt.Errorf("failed to update rule query: %w", err)
	}

	drift.RuleID = &ruleID
	drift.DriftType = models.DriftTypeRule
	if err := insertDriftEvent(ctx, tx, drift); err != nil {
		return "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("failed to commit fix: %w", err)
	}
	return prevQuery, nil
}

// RollbackRule restores a rule's query from history. Exactly one of
// historyID (non-empty) or steps (>= 1) addresses the target entry.
// The rollback itself is recorded as a new history entry holding the
// query it replaced.
func (r *PostgresRepository) RollbackRule(ctx context.Context, ruleID string, steps int, historyID string) (*models.RollbackResult, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var currentQuery string
	err = tx.QueryRow(ctx, `SELECT query FROM rules WHERE id = $1 FOR UPDATE`, ruleID).Scan(&currentQuery)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRuleNotFound
		}
		return nil, fmt.Errorf("failed to lock rule: %w", err)
	}

	var targetID, targetQuery string
	if historyID != "" {
		err = tx.QueryRow(ctx, `
			SELECT id, query FROM rule_history
			WHERE id = $1 AND rule_id = $2
		`, historyID, ruleID).Scan(&targetID, &targetQuery)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrHistoryEntryNotFound
			}
			return nil, fmt.Errorf("failed to load history entry: %w", err)
		}
	} else {
		// Most recent first; ties on created_at are broken by insertion
		// order so step addressing stays deterministic.
		err = tx.QueryRow(ctx, `
			SELECT id, query FROM rule_history
			WHERE rule_id = $1
			ORDER BY created_at DESC, id DESC
			OFFSET $2 LIMIT 1
		`, ruleID, steps-1).Scan(&targetID, &targetQuery)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				var available int
				if err := tx.QueryRow(ctx, `
					SELECT COUNT(*) FROM rule_history WHERE rule_id = $1
				`, ruleID).Scan(&available); err != nil {
					return nil, fmt.Errorf("failed to count history entries: %w", err)
				}
				return nil, &InsufficientHistoryError{Requested: steps, Available: available}
			}
			return nil, fmt.Errorf("failed to load history entry: %w", err)
		}
	}

	entryID, _ := uuid.NewV7()
	_, err = tx.Exec(ctx, `
		INSERT INTO rule_history (id, rule_id, query, action)
		VALUES ($1, $2, $3, $4)
	`, entryID.String(), ruleID, currentQuery, models.ActionRollback)
	if err != nil {
		return nil, fmt.Errorf("failed to record rollback entry: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE rules SET query = $2, updated_at = NOW() WHERE id = $1
	`, ruleID, targetQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to restore rule query: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit rollback: %w", err)
	}

	result := &models.RollbackResult{
		RuleID:        ruleID,
		RestoredQuery: targetQuery,
		RolledBackTo:  targetID,
	}
	if historyID == "" {
		result.StepsBack = steps
	}
	return result, nil
}

func (r *PostgresRepository) ListRuleHistory(ctx context.Context, ruleID string) ([]*models.RuleHistoryEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, `
		SELECT id, rule_id, query, action, created_at
		FROM rule_history
		WHERE rule_id = $1
		ORDER BY created_at DESC, id DESC
	`, ruleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rule history: %w", err)
	}
	defer rows.Close()

	var entries []*models.RuleHistoryEntry
	for rows.Next() {
		var e models.RuleHistoryEntry
		if err := rows.Scan(&e.ID, &e.RuleID, &e.Query, &e.Action, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// InsertDriftEvent appends one drift event outside of a lifecycle
// transaction (drift checks and schema diffs).
func (r *PostgresRepository) InsertDriftEvent(ctx context.Context, event *models.DriftEvent) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return insertDriftEvent(ctx, r.pool, event)
}

// execer is satisfied by both *pgxpool.Pool and pgx.Tx, so drift
// events can be appended standalone or inside a lifecycle transaction.
type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

func insertDriftEvent(ctx context.Context, db execer, event *models.DriftEvent) error {
	if err := validateDriftEvent(event); err != nil {
		return err
	}
	if event.ID == "" {
		id, _ := uuid.NewV7()
		event.ID = id.String()
	}
	if event.LastChecked.IsZero() {
		event.LastChecked = time.Now().UTC()
	}

	_, err := db.Exec(ctx, `
		INSERT INTO drift_events (id, rule_id, fp_rate, tp_rate, alert_volume, drift_score, drift_type, last_checked)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, event.ID, event.RuleID, event.FPRate, event.TPRate, event.AlertVolume, event.DriftScore, event.DriftType, event.LastChecked)
	if err != nil {
		return fmt.Errorf("failed to insert drift event: %w", err)
	}
	return nil
}

// validateDriftEvent enforces the write-time pairing between event type
// and rule id: schema events carry no rule id, rule events always do.
func validateDriftEvent(event *models.DriftEvent) error {
	switch event.DriftType {
	case models.DriftTypeSchema:
		if event.RuleID != nil {
			return fmt.Errorf("schema drift event must not reference a rule")
		}
	case models.DriftTypeRule:
		if event.RuleID == nil {
			return fmt.Errorf("rule drift event must reference a rule")
		}
	default:
		return fmt.Errorf("unknown drift type %q", event.DriftType)
	}
	return nil
}

func (r *PostgresRepository) ListDriftEvents(ctx context.Context) ([]*models.DriftEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, `
		SELECT id, rule_id, fp_rate, tp_rate, alert_volume, drift_score, drift_type, last_checked
		FROM drift_events
		ORDER BY last_checked DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list drift events: %w", err)
	}
	defer rows.Close()

	var events []*models.DriftEvent
	for rows.Next() {
		var e models.DriftEvent
		if err := rows.Scan(&e.ID, &e.RuleID, &e.FPRate, &e.TPRate, &e.AlertVolume, &e.DriftScore, &e.DriftType, &e.LastChecked); err != nil {
			return nil, fmt.Errorf("failed to scan drift event: %w", err)
		}
		events = append(events, &e)
	}
	return events, rows.Err()
}

func (r *PostgresRepository) CreateSchemaSnapshot(ctx context.Context, snap *models.SchemaSnapshot) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if snap.ID == "" {
		id, _ := uuid.NewV7()
		snap.ID = id.String()
	}

	defJSON, err := json.Marshal(snap.SchemaDef)
	if err != nil {
		return fmt.Errorf("failed to marshal schema_def: %w", err)
	}

	err = r.pool.QueryRow(ctx, `
		INSERT INTO schema_snapshots (id, source, schema_def, version)
		VALUES ($1, $2, $3, $4)
		RETURNING last_updated
	`, snap.ID, snap.Source, defJSON, snap.Version).Scan(&snap.LastUpdated)
	if err != nil {
		return fmt.Errorf("failed to create schema snapshot: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetLatestSchemaSnapshot(ctx context.Context, source string) (*models.SchemaSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return r.scanSnapshot(r.pool.QueryRow(ctx, `
		SELECT id, source, schema_def, version, last_updated
		FROM schema_snapshots
		WHERE source = $1
		ORDER BY last_updated DESC, id DESC
		LIMIT 1
	`, source))
}

func (r *PostgresRepository) GetSchemaSnapshotByVersion(ctx context.Context, source, version string) (*models.SchemaSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return r.scanSnapshot(r.pool.QueryRow(ctx, `
		SELECT id, source, schema_def, version, last_updated
		FROM schema_snapshots
		WHERE source = $1 AND version = $2
		ORDER BY last_updated DESC, id DESC
		LIMIT 1
	`, source, version))
}

func (r *PostgresRepository) scanSnapshot(row pgx.Row) (*models.SchemaSnapshot, error) {
	var snap models.SchemaSnapshot
	var defJSON []byte
	err := row.Scan(&snap.ID, &snap.Source, &defJSON, &snap.Version, &snap.LastUpdated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to get schema snapshot: %w", err)
	}
	if err := json.Unmarshal(defJSON, &snap.SchemaDef); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema_def: %w", err)
	}
	return &snap, nil
}

func (r *PostgresRepository) ListSchemaSnapshots(ctx context.Context, source string) ([]*models.SchemaSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, `
		SELECT id, source, schema_def, version, last_updated
		FROM schema_snapshots
		WHERE source = $1
		ORDER BY last_updated DESC, id DESC
	`, source)
	if err != nil {
		return nil, fmt.Errorf("failed to list schema snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []*models.SchemaSnapshot
	for rows.Next() {
		var snap models.SchemaSnapshot
		var defJSON []byte
		if err := rows.Scan(&snap.ID, &snap.Source, &defJSON, &snap.Version, &snap.LastUpdated); err != nil {
			return nil, fmt.Errorf("failed to scan schema snapshot: %w", err)
		}
		if err := json.Unmarshal(defJSON, &snap.SchemaDef); err != nil {
			return nil, fmt.Errorf("failed to unmarshal schema_def: %w", err)
		}
		snaps = append(snaps, &snap)
	}
	return snaps, rows.Err()
}
