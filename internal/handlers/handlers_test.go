package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/driftwatch-systems/driftwatch/internal/connectors"
	"github.com/driftwatch-systems/driftwatch/internal/logging"
	"github.com/driftwatch-systems/driftwatch/internal/models"
	"github.com/driftwatch-systems/driftwatch/internal/repository"
	"github.com/driftwatch-systems/driftwatch/internal/service"
	"github.com/driftwatch-systems/driftwatch/internal/signals"
	"github.com/driftwatch-systems/driftwatch/internal/suggest"
)

// MockRepository is a mock implementation of repository.Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) SyncRules(ctx context.Context, rules []*models.Rule) error {
	args := m.Called(ctx, rules)
	return args.Error(0)
}

func (m *MockRepository) ListRules(ctx context.Context) ([]*models.Rule, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Rule), args.Error(1)
}

func (m *MockRepository) GetRule(ctx context.Context, id string) (*models.Rule, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Rule), args.Error(1)
}

func (m *MockRepository) RecordFix(ctx context.Context, ruleID, newQuery, action string, drift *models.DriftEvent) (string, error) {
	args := m.Called(ctx, ruleID, newQuery, action, drift)
	return args.String(0), args.Error(1)
}

func (m *MockRepository) RollbackRule(ctx context.Context, ruleID string, steps int, historyID string) (*models.RollbackResult, error) {
	args := m.Called(ctx, ruleID, steps, historyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RollbackResult), args.Error(1)
}

func (m *MockRepository) ListRuleHistory(ctx context.Context, ruleID string) ([]*models.RuleHistoryEntry, error) {
	args := m.Called(ctx, ruleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.RuleHistoryEntry), args.Error(1)
}

func (m *MockRepository) InsertDriftEvent(ctx context.Context, event *models.DriftEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockRepository) ListDriftEvents(ctx context.Context) ([]*models.DriftEvent, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.DriftEvent), args.Error(1)
}

func (m *MockRepository) CreateSchemaSnapshot(ctx context.Context, snap *models.SchemaSnapshot) error {
	args := m.Called(ctx, snap)
	return args.Error(0)
}

func (m *MockRepository) GetLatestSchemaSnapshot(ctx context.Context, source string) (*models.SchemaSnapshot, error) {
	args := m.Called(ctx, source)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SchemaSnapshot), args.Error(1)
}

func (m *MockRepository) GetSchemaSnapshotByVersion(ctx context.Context, source, version string) (*models.SchemaSnapshot, error) {
	args := m.Called(ctx, source, version)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SchemaSnapshot), args.Error(1)
}

func (m *MockRepository) ListSchemaSnapshots(ctx context.Context, source string) ([]*models.SchemaSnapshot, error) {
	args := m.Called(ctx, source)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.SchemaSnapshot), args.Error(1)
}

func (m *MockRepository) Close() {
	m.Called()
}

type stubSuggester struct {
	reply string
	err   error
}

func (s stubSuggester) Propose(ctx context.Context, query string) (string, error) {
	return s.reply, s.err
}

func newTestHandler(repo repository.Repository, suggester suggest.Suggester) *Handler {
	registry := connectors.NewRegistry(
		connectors.NewSplunk(connectors.SplunkConfig{}),
		connectors.NewSentinel(connectors.SentinelConfig{}),
	)
	fixed := signals.Fixed{Signals: models.QualitySignals{FPRate: 0.2, TPRate: 0.8, AlertVolume: 100}}
	svc := service.NewService(repo, registry, suggester, fixed)
	return NewHandler(svc, logging.New(slog.LevelError, "text"))
}

func TestHealthCheck(t *testing.T) {
	handler := &Handler{}
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	handler.HealthCheck(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestListRules(t *testing.T) {
	t.Run("successful sync and list", func(t *testing.T) {
		mockRepo := new(MockRepository)
		handler := newTestHandler(mockRepo, suggest.Disabled{})

		mockRepo.On("SyncRules", mock.Anything, mock.Anything).Return(nil)
		mockRepo.On("ListRules", mock.Anything).Return([]*models.Rule{
			{ID: "Block_Brute_Force", Name: "Block Brute Force", Query: "index=auth", Source: "Splunk"},
		}, nil)

		req := httptest.NewRequest(http.MethodGet, "/rules", nil)
		w := httptest.NewRecorder()

		handler.ListRules(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "application/json")

		var rules []map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rules))
		require.Len(t, rules, 1)
		assert.Equal(t, "Block_Brute_Force", rules[0]["id"])

		mockRepo.AssertExpectations(t)
	})

	t.Run("repository failure", func(t *testing.T) {
		mockRepo := new(MockRepository)
		handler := newTestHandler(mockRepo, suggest.Disabled{})

		mockRepo.On("SyncRules", mock.Anything, mock.Anything).Return(errors.New("connection refused"))

		req := httptest.NewRequest(http.MethodGet, "/rules", nil)
		w := httptest.NewRecorder()

		handler.ListRules(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "Internal server error")
	})
}

func TestCheckRuleDrift(t *testing.T) {
	mockRepo := new(MockRepository)
	handler := newTestHandler(mockRepo, suggest.Disabled{})

	mockRepo.On("InsertDriftEvent", mock.Anything, mock.Anything).Return(nil)

	req := httptest.NewRequest(http.MethodGet, "/rules/r1/drift", nil)
	w := httptest.NewRecorder()

	handler.CheckRuleDrift(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var event map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &event))
	assert.Equal(t, "r1", event["rule_id"])
	assert.Equal(t, "rule", event["drift_type"])
	assert.Equal(t, 3.0, event["drift_score"])

	mockRepo.AssertExpectations(t)
}

func TestApplyFix(t *testing.T) {
	t.Run("successful fix", func(t *testing.T) {
		mockRepo := new(MockRepository)
		handler := newTestHandler(mockRepo, suggest.Disabled{})

		mockRepo.On("RecordFix", mock.Anything, "r1", "index=auth | stats count", models.ActionApplyFix, mock.Anything).
			Return("old query", nil)

		body, _ := json.Marshal(map[string]string{"suggested_fix": "index=auth | stats count"})
		req := httptest.NewRequest(http.MethodPost, "/rules/r1/apply_fix", bytes.NewReader(body))
		w := httptest.NewRecorder()

		handler.ApplyFix(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "r1", response["rule_id"])
		assert.Equal(t, "old query", response["previous_query"])
		assert.Equal(t, "index=auth | stats count", response["new_query"])
		assert.Equal(t, "Rule updated with suggested fix", response["message"])
		assert.NotNil(t, response["drift"])

		mockRepo.AssertExpectations(t)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		handler := newTestHandler(new(MockRepository), suggest.Disabled{})

		req := httptest.NewRequest(http.MethodPost, "/rules/r1/apply_fix", strings.NewReader("not json"))
		w := httptest.NewRecorder()

		handler.ApplyFix(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rule not found", func(t *testing.T) {
		mockRepo := new(MockRepository)
		handler := newTestHandler(mockRepo, suggest.Disabled{})

		mockRepo.On("RecordFix", mock.Anything, "missing", mock.Anything, mock.Anything, mock.Anything).
			Return("", repository.ErrRuleNotFound)

		body, _ := json.Marshal(map[string]string{"suggested_fix": "index=auth"})
		req := httptest.NewRequest(http.MethodPost, "/rules/missing/apply_fix", bytes.NewReader(body))
		w := httptest.NewRecorder()

		handler.ApplyFix(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "Rule not found")
	})
}

func TestAutofixRule(t *testing.T) {
	t.Run("backend not configured", func(t *testing.T) {
		mockRepo := new(MockRepository)
		handler := newTestHandler(mockRepo, suggest.Disabled{})

		req := httptest.NewRequest(http.MethodPost, "/rules/r1/autofix", nil)
		w := httptest.NewRecorder()

		handler.AutofixRule(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), "not configured")
		mockRepo.AssertNotCalled(t, "GetRule", mock.Anything, mock.Anything)
	})

	t.Run("backend failure", func(t *testing.T) {
		mockRepo := new(MockRepository)
		handler := newTestHandler(mockRepo, stubSuggester{err: errors.New("timeout")})

		mockRepo.On("GetRule", mock.Anything, "r1").Return(&models.Rule{ID: "r1", Query: "q"}, nil)

		req := httptest.NewRequest(http.MethodPost, "/rules/r1/autofix", nil)
		w := httptest.NewRecorder()

		handler.AutofixRule(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		mockRepo.AssertNotCalled(t, "RecordFix", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("successful autofix", func(t *testing.T) {
		mockRepo := new(MockRepository)
		handler := newTestHandler(mockRepo, stubSuggester{reply: "index=auth fixed"})

		mockRepo.On("GetRule", mock.Anything, "r1").Return(&models.Rule{ID: "r1", Query: "old"}, nil)
		mockRepo.On("RecordFix", mock.Anything, "r1", "index=auth fixed", models.ActionAutofix, mock.Anything).
			Return("old", nil)

		req := httptest.NewRequest(http.MethodPost, "/rules/r1/autofix", nil)
		w := httptest.NewRecorder()

		handler.AutofixRule(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "index=auth fixed", response["new_query"])

		mockRepo.AssertExpectations(t)
	})
}

func TestRollbackRule(t *testing.T) {
	t.Run("default one step", func(t *testing.T) {
		mockRepo := new(MockRepository)
		handler := newTestHandler(mockRepo, suggest.Disabled{})

		mockRepo.On("RollbackRule", mock.Anything, "r1", 1, "").Return(&models.RollbackResult{
			RuleID:        "r1",
			RestoredQuery: "previous",
			RolledBackTo:  "entry-1",
			StepsBack:     1,
		}, nil)

		req := httptest.NewRequest(http.MethodPost, "/rules/r1/rollback", nil)
		w := httptest.NewRecorder()

		handler.RollbackRule(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "previous", response["restored_query"])
		assert.Equal(t, float64(1), response["steps_back"])

		mockRepo.AssertExpectations(t)
	})

	t.Run("history id rollback omits steps_back", func(t *testing.T) {
		mockRepo := new(MockRepository)
		handler := newTestHandler(mockRepo, suggest.Disabled{})

		mockRepo.On("RollbackRule", mock.Anything, "r1", 0, "h1").Return(&models.RollbackResult{
			RuleID:        "r1",
			RestoredQuery: "pinned",
			RolledBackTo:  "h1",
		}, nil)

		req := httptest.NewRequest(http.MethodPost, "/rules/r1/rollback?history_id=h1", nil)
		w := httptest.NewRecorder()

		handler.RollbackRule(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "h1", response["rolled_back_to"])
		_, present := response["steps_back"]
		assert.False(t, present, "steps_back should be absent for history-id rollback")

		mockRepo.AssertExpectations(t)
	})

	t.Run("non-integer steps", func(t *testing.T) {
		handler := newTestHandler(new(MockRepository), suggest.Disabled{})

		req := httptest.NewRequest(http.MethodPost, "/rules/r1/rollback?steps=two", nil)
		w := httptest.NewRecorder()

		handler.RollbackRule(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("both steps and history_id", func(t *testing.T) {
		handler := newTestHandler(new(MockRepository), suggest.Disabled{})

		req := httptest.NewRequest(http.MethodPost, "/rules/r1/rollback?steps=1&history_id=h1", nil)
		w := httptest.NewRecorder()

		handler.RollbackRule(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "exactly one")
	})

	t.Run("insufficient history", func(t *testing.T) {
		mockRepo := new(MockRepository)
		handler := newTestHandler(mockRepo, suggest.Disabled{})

		mockRepo.On("RollbackRule", mock.Anything, "r1", 5, "").
			Return(nil, &repository.InsufficientHistoryError{Requested: 5, Available: 1})

		req := httptest.NewRequest(http.MethodPost, "/rules/r1/rollback?steps=5", nil)
		w := httptest.NewRecorder()

		handler.RollbackRule(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "only 1 available")
	})

	t.Run("history entry not found", func(t *testing.T) {
		mockRepo := new(MockRepository)
		handler := newTestHandler(mockRepo, suggest.Disabled{})

		mockRepo.On("RollbackRule", mock.Anything, "r1", 0, "h9").
			Return(nil, repository.ErrHistoryEntryNotFound)

		req := httptest.NewRequest(http.MethodPost, "/rules/r1/rollback?history_id=h9", nil)
		w := httptest.NewRecorder()

		handler.RollbackRule(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestRuleHistory(t *testing.T) {
	t.Run("empty history is an empty array", func(t *testing.T) {
		mockRepo := new(MockRepository)
		handler := newTestHandler(mockRepo, suggest.Disabled{})

		mockRepo.On("ListRuleHistory", mock.Anything, "r1").Return([]*models.RuleHistoryEntry(nil), nil)

		req := httptest.NewRequest(http.MethodGet, "/rules/r1/history", nil)
		w := httptest.NewRecorder()

		handler.RuleHistory(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "[]\n", w.Body.String())
	})
}

func TestDriftHistory(t *testing.T) {
	mockRepo := new(MockRepository)
	handler := newTestHandler(mockRepo, suggest.Disabled{})

	ruleID := "r1"
	mockRepo.On("ListDriftEvents", mock.Anything).Return([]*models.DriftEvent{
		{RuleID: &ruleID, DriftType: models.DriftTypeRule, DriftScore: 3.0},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/drift/history", nil)
	w := httptest.NewRecorder()

	handler.DriftHistory(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string][]map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response["events"], 1)
	assert.Equal(t, "rule", response["events"][0]["drift_type"])
}

func TestDriftDashboard(t *testing.T) {
	mockRepo := new(MockRepository)
	handler := newTestHandler(mockRepo, suggest.Disabled{})

	ruleID := "r1"
	mockRepo.On("ListDriftEvents", mock.Anything).Return([]*models.DriftEvent{
		{RuleID: &ruleID, DriftType: models.DriftTypeRule, DriftScore: 3.0},
		{DriftType: models.DriftTypeSchema, DriftScore: 7.0},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/drift/dashboard", nil)
	w := httptest.NewRecorder()

	handler.DriftDashboard(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var dash map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dash))
	assert.Equal(t, float64(2), dash["total_events"])
	assert.Equal(t, float64(1), dash["rule_drifts"])
	assert.Equal(t, float64(1), dash["schema_drifts"])
	assert.Equal(t, 5.0, dash["avg_drift_score"])
}

func TestStoreSchema(t *testing.T) {
	t.Run("successful store", func(t *testing.T) {
		mockRepo := new(MockRepository)
		handler := newTestHandler(mockRepo, suggest.Disabled{})

		mockRepo.On("CreateSchemaSnapshot", mock.Anything, mock.Anything).Return(nil)

		body, _ := json.Marshal(map[string]interface{}{
			"schema_def": map[string]interface{}{"fields": []string{"user", "src_ip"}},
		})
		req := httptest.NewRequest(http.MethodPost, "/schema/Splunk?version=v1", bytes.NewReader(body))
		w := httptest.NewRecorder()

		handler.StoreSchema(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var snap map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
		assert.Equal(t, "Splunk", snap["source"])
		assert.Equal(t, "v1", snap["version"])

		mockRepo.AssertExpectations(t)
	})

	t.Run("missing version", func(t *testing.T) {
		handler := newTestHandler(new(MockRepository), suggest.Disabled{})

		req := httptest.NewRequest(http.MethodPost, "/schema/Splunk", strings.NewReader("{}"))
		w := httptest.NewRecorder()

		handler.StoreSchema(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "version")
	})

	t.Run("missing schema_def", func(t *testing.T) {
		handler := newTestHandler(new(MockRepository), suggest.Disabled{})

		req := httptest.NewRequest(http.MethodPost, "/schema/Splunk?version=v1", strings.NewReader("{}"))
		w := httptest.NewRecorder()

		handler.StoreSchema(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetLatestSchema(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		mockRepo := new(MockRepository)
		handler := newTestHandler(mockRepo, suggest.Disabled{})

		mockRepo.On("GetLatestSchemaSnapshot", mock.Anything, "Splunk").Return(&models.SchemaSnapshot{
			Source:    "Splunk",
			Version:   "v2",
			SchemaDef: map[string]interface{}{"fields": []interface{}{"user"}},
		}, nil)

		req := httptest.NewRequest(http.MethodGet, "/schema/Splunk", nil)
		w := httptest.NewRecorder()

		handler.GetLatestSchema(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "v2")
	})

	t.Run("no snapshots for source", func(t *testing.T) {
		mockRepo := new(MockRepository)
		handler := newTestHandler(mockRepo, suggest.Disabled{})

		mockRepo.On("GetLatestSchemaSnapshot", mock.Anything, "QRadar").
			Return(nil, repository.ErrSnapshotNotFound)

		req := httptest.NewRequest(http.MethodGet, "/schema/QRadar", nil)
		w := httptest.NewRecorder()

		handler.GetLatestSchema(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "QRadar")
	})
}

func TestSchemaDiff(t *testing.T) {
	t.Run("successful diff", func(t *testing.T) {
		mockRepo := new(MockRepository)
		handler := newTestHandler(mockRepo, suggest.Disabled{})

		mockRepo.On("GetSchemaSnapshotByVersion", mock.Anything, "Splunk", "v1").Return(&models.SchemaSnapshot{
			Source: "Splunk", Version: "v1",
			SchemaDef: map[string]interface{}{"fields": []interface{}{"a", "b"}},
		}, nil)
		mockRepo.On("GetSchemaSnapshotByVersion", mock.Anything, "Splunk", "v2").Return(&models.SchemaSnapshot{
			Source: "Splunk", Version: "v2",
			SchemaDef: map[string]interface{}{"fields": []interface{}{"b", "c"}},
		}, nil)
		mockRepo.On("InsertDriftEvent", mock.Anything, mock.Anything).Return(nil)

		req := httptest.NewRequest(http.MethodGet, "/schema/Splunk/diff?from_version=v1&to_version=v2", nil)
		w := httptest.NewRecorder()

		handler.SchemaDiff(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		diff := response["diff"].(map[string]interface{})
		assert.Equal(t, []interface{}{"c"}, diff["added"])
		assert.Equal(t, []interface{}{"a"}, diff["removed"])
		assert.Equal(t, 2.0, response["drift_score"])
	})

	t.Run("missing versions report an error payload", func(t *testing.T) {
		mockRepo := new(MockRepository)
		handler := newTestHandler(mockRepo, suggest.Disabled{})

		mockRepo.On("GetSchemaSnapshotByVersion", mock.Anything, "Splunk", "v8").
			Return(nil, repository.ErrSnapshotNotFound)

		req := httptest.NewRequest(http.MethodGet, "/schema/Splunk/diff?from_version=v8&to_version=v9", nil)
		w := httptest.NewRecorder()

		handler.SchemaDiff(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Schemas not found for versions v8 and v9")
	})
}

func TestListSIEMs(t *testing.T) {
	handler := newTestHandler(new(MockRepository), suggest.Disabled{})

	req := httptest.NewRequest(http.MethodGet, "/siems", nil)
	w := httptest.NewRecorder()

	handler.ListSIEMs(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string][]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, []string{"Sentinel", "Splunk"}, response["supported_siems"])
}

func TestSIEMRules(t *testing.T) {
	t.Run("known connector", func(t *testing.T) {
		handler := newTestHandler(new(MockRepository), suggest.Disabled{})

		req := httptest.NewRequest(http.MethodGet, "/siem/splunk/rules", nil)
		w := httptest.NewRecorder()

		handler.SIEMRules(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var rules []map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rules))
		assert.Len(t, rules, 2)
	})

	t.Run("unknown connector", func(t *testing.T) {
		handler := newTestHandler(new(MockRepository), suggest.Disabled{})

		req := httptest.NewRequest(http.MethodGet, "/siem/qradar/rules", nil)
		w := httptest.NewRecorder()

		handler.SIEMRules(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "'qradar' not supported")
	})
}
