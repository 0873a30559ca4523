// Package api exposes the question-answering pipeline over HTTP.
package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rampgpt/rampgpt/internal/auth"
	"github.com/rampgpt/rampgpt/internal/config"
	"github.com/rampgpt/rampgpt/internal/corpus"
	"github.com/rampgpt/rampgpt/internal/nlsql"
	"github.com/rampgpt/rampgpt/internal/observability"
	"github.com/rampgpt/rampgpt/internal/tenant"
)

type ReadinessCheck func(ctx context.Context) error

// SessionOpener opens a database session bound to a resolved garage.
type SessionOpener interface {
	Open(ctx context.Context, selection tenant.Selection) (*sql.DB, error)
}

// QueryPipeline runs one question through generate and execute.
type QueryPipeline interface {
	Run(ctx context.Context, db *sql.DB, state nlsql.PipelineState) nlsql.PipelineState
}

type Dependencies struct {
	Logger            *slog.Logger
	Readiness         ReadinessCheck
	AuthMiddleware    func(http.Handler) http.Handler
	DependencyTimeout time.Duration
	Registry          *tenant.Registry
	Selections        *tenant.SelectionStore
	Sessions          SessionOpener
	Pipeline          QueryPipeline
	Corpus            corpus.Store
}

func NewHandler(cfg config.Config, deps Dependencies) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /v1/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "service": cfg.Service.Name})
	})

	mux.HandleFunc("GET /v1/ready", func(w http.ResponseWriter, r *http.Request) {
		if deps.Readiness == nil {
			writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
			return
		}
		timeout := deps.DependencyTimeout
		if timeout <= 0 {
			timeout = 2 * time.Second
		}
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		if err := deps.Readiness(ctx); err != nil {
			writeError(r.Context(), w, http.StatusServiceUnavailable, "NOT_READY", err.Error(), true, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
	})

	mux.Handle("GET /v1/metrics", promhttp.Handler())

	protected := http.NewServeMux()
	protected.HandleFunc("POST /v1/garage", func(w http.ResponseWriter, r *http.Request) {
		handleSetGarage(deps, w, r)
	})
	protected.HandleFunc("GET /v1/garage", func(w http.ResponseWriter, r *http.Request) {
		handleGetGarage(deps, w, r)
	})
	protected.HandleFunc("POST /v1/ask", func(w http.ResponseWriter, r *http.Request) {
		handleAsk(deps, w, r)
	})
	protected.HandleFunc("POST /v1/examples", func(w http.ResponseWriter, r *http.Request) {
		handleAddExample(deps, w, r)
	})
	protected.HandleFunc("GET /v1/schema", func(w http.ResponseWriter, r *http.Request) {
		handleSchema(deps, w, r)
	})

	var protectedHandler http.Handler = protected
	if cfg.Auth.Required {
		if deps.AuthMiddleware == nil {
			if deps.Logger != nil {
				deps.Logger.Error("auth required but auth middleware missing")
			}
			protectedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeError(r.Context(), w, http.StatusInternalServerError, "AUTH_MIDDLEWARE_MISSING", "auth middleware is required by configuration", false, nil)
			})
		} else {
			protectedHandler = deps.AuthMiddleware(protectedHandler)
		}
	}
	mux.Handle("POST /v1/garage", protectedHandler)
	mux.Handle("GET /v1/garage", protectedHandler)
	mux.Handle("POST /v1/ask", protectedHandler)
	mux.Handle("POST /v1/examples", protectedHandler)
	mux.Handle("GET /v1/schema", protectedHandler)

	middlewares := []func(http.Handler) http.Handler{
		observability.TraceMiddleware,
		observability.MetricsMiddleware,
	}
	if deps.Logger != nil {
		middlewares = append(middlewares, observability.LoggingMiddleware(deps.Logger))
	}
	return chain(mux, middlewares...)
}

func CheckCorpusDSN(cfg config.Config) ReadinessCheck {
	return func(_ context.Context) error {
		if cfg.Corpus.DSN == "" {
			return errors.New("corpus dsn is not configured")
		}
		return nil
	}
}

func CheckGarageRegistry(registry *tenant.Registry) ReadinessCheck {
	return func(_ context.Context) error {
		if registry == nil || len(registry.IDs()) == 0 {
			return errors.New("no garages are configured")
		}
		return nil
	}
}

func CombineReadinessChecks(checks ...ReadinessCheck) ReadinessCheck {
	filtered := make([]ReadinessCheck, 0, len(checks))
	for _, check := range checks {
		if check != nil {
			filtered = append(filtered, check)
		}
	}
	return func(ctx context.Context) error {
		for _, check := range filtered {
			if err := check(ctx); err != nil {
				return err
			}
		}
		return nil
	}
}

// sessionKey identifies the caller for garage selection: explicit
// session header first, then authenticated identity, then remote host.
func sessionKey(r *http.Request) string {
	if key := strings.TrimSpace(r.Header.Get("X-Session-ID")); key != "" {
		return key
	}
	if identity, ok := auth.IdentityFromContext(r.Context()); ok && identity.UserID != "" {
		return "user:" + identity.UserID
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func chain(base http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	wrapped := base
	for i := len(middlewares) - 1; i >= 0; i-- {
		wrapped = middlewares[i](wrapped)
	}
	return wrapped
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(ctx context.Context, w http.ResponseWriter, status int, code, message string, retryable bool, extra map[string]any) {
	writeJSON(w, status, map[string]any{
		"error_code": code,
		"message":    message,
		"retryable":  retryable,
		"context":    extra,
		"trace_id":   observability.TraceIDFromContext(ctx),
	})
}
