package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/driftwatch-systems/driftwatch/internal/httputil"
	"github.com/driftwatch-systems/driftwatch/internal/logging"
	"github.com/driftwatch-systems/driftwatch/internal/models"
	"github.com/driftwatch-systems/driftwatch/internal/repository"
	"github.com/driftwatch-systems/driftwatch/internal/service"
	"github.com/driftwatch-systems/driftwatch/internal/suggest"
)

type Handler struct {
	service *service.Service
	logger  *logging.Logger
}

func NewHandler(svc *service.Service, logger *logging.Logger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListRules handles GET /rules: sync from connectors, then list.
func (h *Handler) ListRules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.service.SyncRules(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if rules == nil {
		rules = []*models.Rule{}
	}
	httputil.WriteJSON(w, http.StatusOK, rules)
}

// CheckRuleDrift handles GET /rules/{id}/drift
func (h *Handler) CheckRuleDrift(w http.ResponseWriter, r *http.Request) {
	ruleID := pathParam(r.URL.Path, "/rules/", "/drift")
	event, err := h.service.CheckRuleDrift(r.Context(), ruleID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, event)
}

// AutofixRule handles POST /rules/{id}/autofix
func (h *Handler) AutofixRule(w http.ResponseWriter, r *http.Request) {
	ruleID := pathParam(r.URL.Path, "/rules/", "/autofix")
	result, err := h.service.Autofix(r.Context(), ruleID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

// ApplyFix handles POST /rules/{id}/apply_fix
func (h *Handler) ApplyFix(w http.ResponseWriter, r *http.Request) {
	ruleID := pathParam(r.URL.Path, "/rules/", "/apply_fix")

	var req struct {
		SuggestedFix string `json:"suggested_fix"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.ApplyFix(r.Context(), ruleID, req.SuggestedFix)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"rule_id":        result.RuleID,
		"previous_query": result.PreviousQuery,
		"new_query":      result.NewQuery,
		"message":        "Rule updated with suggested fix",
		"drift":          result.Drift,
	})
}

// RollbackRule handles POST /rules/{id}/rollback?steps=&history_id=
func (h *Handler) RollbackRule(w http.ResponseWriter, r *http.Request) {
	ruleID := pathParam(r.URL.Path, "/rules/", "/rollback")

	steps := 1
	stepsSet := false
	if v := r.URL.Query().Get("steps"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			httputil.WriteError(w, http.StatusBadRequest, "steps must be an integer")
			return
		}
		steps = n
		stepsSet = true
	}
	historyID := r.URL.Query().Get("history_id")

	result, err := h.service.Rollback(r.Context(), ruleID, steps, stepsSet, historyID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	resp := map[string]interface{}{
		"rule_id":        result.RuleID,
		"restored_query": result.RestoredQuery,
		"rolled_back_to": result.RolledBackTo,
		"message":        "Rollback applied successfully",
	}
	// History-id rollbacks have no step count.
	if result.StepsBack > 0 {
		resp["steps_back"] = result.StepsBack
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// RuleHistory handles GET /rules/{id}/history
func (h *Handler) RuleHistory(w http.ResponseWriter, r *http.Request) {
	ruleID := pathParam(r.URL.Path, "/rules/", "/history")
	entries, err := h.service.RuleHistory(r.Context(), ruleID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if entries == nil {
		entries = []*models.RuleHistoryEntry{}
	}
	httputil.WriteJSON(w, http.StatusOK, entries)
}

// DriftHistory handles GET /drift/history
func (h *Handler) DriftHistory(w http.ResponseWriter, r *http.Request) {
	events, err := h.service.DriftHistory(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if events == nil {
		events = []*models.DriftEvent{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"events": events})
}

// DriftDashboard handles GET /drift/dashboard
func (h *Handler) DriftDashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := h.service.DriftDashboard(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, dash)
}

// StoreSchema handles POST /schema/{source}?version=
func (h *Handler) StoreSchema(w http.ResponseWriter, r *http.Request) {
	source := strings.TrimPrefix(r.URL.Path, "/schema/")
	version := r.URL.Query().Get("version")
	if version == "" {
		httputil.WriteError(w, http.StatusBadRequest, "version query parameter is required")
		return
	}

	var req struct {
		SchemaDef map[string]interface{} `json:"schema_def"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SchemaDef == nil {
		httputil.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	snap, err := h.service.StoreSchemaSnapshot(r.Context(), source, version, req.SchemaDef)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, snap)
}

// GetLatestSchema handles GET /schema/{source}
func (h *Handler) GetLatestSchema(w http.ResponseWriter, r *http.Request) {
	source := strings.TrimPrefix(r.URL.Path, "/schema/")
	snap, err := h.service.LatestSchemaSnapshot(r.Context(), source)
	if err != nil {
		if errors.Is(err, repository.ErrSnapshotNotFound) {
			httputil.WriteError(w, http.StatusNotFound, "No schema found for "+source)
			return
		}
		h.writeServiceError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, snap)
}

// SchemaHistory handles GET /schema/{source}/history
func (h *Handler) SchemaHistory(w http.ResponseWriter, r *http.Request) {
	source := pathParam(r.URL.Path, "/schema/", "/history")
	snaps, err := h.service.SchemaHistory(r.Context(), source)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if snaps == nil {
		snaps = []*models.SchemaSnapshot{}
	}
	httputil.WriteJSON(w, http.StatusOK, snaps)
}

// SchemaDiff handles GET /schema/{source}/diff?from_version=&to_version=
func (h *Handler) SchemaDiff(w http.ResponseWriter, r *http.Request) {
	source := pathParam(r.URL.Path, "/schema/", "/diff")
	fromVersion := r.URL.Query().Get("from_version")
	toVersion := r.URL.Query().Get("to_version")

	result, err := h.service.DiffSchemas(r.Context(), source, fromVersion, toVersion)
	if err != nil {
		if errors.Is(err, repository.ErrSnapshotNotFound) {
			httputil.WriteJSON(w, http.StatusOK, map[string]string{
				"error": "Schemas not found for versions " + fromVersion + " and " + toVersion,
			})
			return
		}
		h.writeServiceError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"diff": map[string]interface{}{
			"added":   result.Added,
			"removed": result.Removed,
		},
		"drift_event_id": result.DriftEventID,
		"drift_score":    result.DriftScore,
	})
}

// ListSIEMs handles GET /siems
func (h *Handler) ListSIEMs(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"supported_siems": h.service.SupportedSIEMs(),
	})
}

// SIEMRules handles GET /siem/{name}/rules
func (h *Handler) SIEMRules(w http.ResponseWriter, r *http.Request) {
	name := pathParam(r.URL.Path, "/siem/", "/rules")
	rules, err := h.service.SIEMRules(r.Context(), name)
	if err != nil {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{
			"error": "SIEM '" + name + "' not supported",
		})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rules)
}

// writeServiceError maps service errors onto the HTTP error taxonomy.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var insufficient *repository.InsufficientHistoryError
	switch {
	case errors.Is(err, repository.ErrRuleNotFound):
		httputil.WriteError(w, http.StatusNotFound, "Rule not found")
	case errors.Is(err, repository.ErrHistoryEntryNotFound):
		httputil.WriteError(w, http.StatusNotFound, "No history entry with that id")
	case errors.Is(err, repository.ErrSnapshotNotFound):
		httputil.WriteError(w, http.StatusNotFound, "Schema snapshot not found")
	case errors.As(err, &insufficient):
		httputil.WriteError(w, http.StatusBadRequest, insufficient.Error())
	case errors.Is(err, service.ErrRollbackAddressing):
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, suggest.ErrNotConfigured):
		httputil.WriteError(w, http.StatusServiceUnavailable, "Suggestion backend not configured")
	case errors.Is(err, service.ErrSuggestionFailed):
		httputil.WriteError(w, http.StatusInternalServerError, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// pathParam extracts the path segment between prefix and suffix, e.g.
// the rule id from /rules/{id}/drift.
func pathParam(path, prefix, suffix string) string {
	return strings.TrimSuffix(strings.TrimPrefix(path, prefix), suffix)
}
