package server

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/driftwatch-systems/driftwatch/internal/handlers"
	"github.com/driftwatch-systems/driftwatch/internal/httputil"
	"github.com/driftwatch-systems/driftwatch/internal/middleware"
	"github.com/driftwatch-systems/driftwatch/internal/ratelimit"
)

// NewRouter constructs a ServeMux with all API routes registered.
func NewRouter(h *handlers.Handler, limiter ratelimit.RateLimiter) http.Handler {
	mux := http.NewServeMux()

	// Health check and metrics
	mux.HandleFunc("/health", h.HealthCheck)
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/rules", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			h.ListRules(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	// Note: These are simplified routes. In production, use a proper router like chi or gorilla/mux
	mux.HandleFunc("/rules/", func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		switch {
		case strings.HasSuffix(path, "/drift") && r.Method == http.MethodGet:
			h.CheckRuleDrift(w, r)
		case strings.HasSuffix(path, "/autofix") && r.Method == http.MethodPost:
			h.AutofixRule(w, r)
		case strings.HasSuffix(path, "/apply_fix") && r.Method == http.MethodPost:
			h.ApplyFix(w, r)
		case strings.HasSuffix(path, "/rollback") && r.Method == http.MethodPost:
			h.RollbackRule(w, r)
		case strings.HasSuffix(path, "/history") && r.Method == http.MethodGet:
			h.RuleHistory(w, r)
		default:
			http.Error(w, "Not found", http.StatusNotFound)
		}
	})

	mux.HandleFunc("/drift/history", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			h.DriftHistory(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/drift/dashboard", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			h.DriftDashboard(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/schema/", func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		switch {
		case strings.HasSuffix(path, "/history") && r.Method == http.MethodGet:
			h.SchemaHistory(w, r)
		case strings.HasSuffix(path, "/diff") && r.Method == http.MethodGet:
			h.SchemaDiff(w, r)
		case r.Method == http.MethodPost:
			h.StoreSchema(w, r)
		case r.Method == http.MethodGet:
			h.GetLatestSchema(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/siems", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			h.ListSIEMs(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/siem/", func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/rules") && r.Method == http.MethodGet {
			h.SIEMRules(w, r)
		} else {
			http.Error(w, "Not found", http.StatusNotFound)
		}
	})

	return middleware.RequestID(rateLimited(limiter, mux))
}

// rateLimited gates mutating requests through the limiter, keyed by
// path. Reads pass through untouched.
func rateLimited(limiter ratelimit.RateLimiter, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			allowed, err := limiter.Allow(r.Context(), r.URL.Path)
			if err != nil {
				httputil.WriteError(w, http.StatusInternalServerError, "Rate limit check failed")
				return
			}
			if !allowed {
				httputil.WriteError(w, http.StatusTooManyRequests, "Rate limit exceeded")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
