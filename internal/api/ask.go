package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rampgpt/rampgpt/internal/auth"
	"github.com/rampgpt/rampgpt/internal/nlsql"
	"github.com/rampgpt/rampgpt/internal/observability"
	"github.com/rampgpt/rampgpt/internal/tenant"
)

type askRequest struct {
	Question         string `json:"question"`
	Role             string `json:"role"`
	UserID           string `json:"user_id"`
	SelectedGarage   string `json:"selected_garage"`
	SelectedGarageID int    `json:"selected_garage_id"`
}

type askResponse struct {
	QueryResult          nlsql.Shaped `json:"query_result"`
	SQLQuery             string       `json:"sql_query"`
	SQLError             bool         `json:"sql_error"`
	ExecutionTimeSeconds float64      `json:"execution_time_seconds"`
}

func handleAsk(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Pipeline == nil || deps.Sessions == nil || deps.Registry == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "ASK_NOT_CONFIGURED", "question pipeline is not configured", false, nil)
		return
	}

	var request askRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&request); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid ask request body", false, map[string]any{"details": err.Error()})
		return
	}

	if strings.TrimSpace(request.Question) == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "QUESTION_REQUIRED", "question is required", false, nil)
		return
	}

	role := strings.ToLower(strings.TrimSpace(request.Role))
	userID := strings.TrimSpace(request.UserID)
	if identity, ok := auth.IdentityFromContext(r.Context()); ok {
		// Authenticated identity wins over whatever the body claims.
		role = identity.Role
		if identity.UserID != "" {
			userID = identity.UserID
		}
	}
	if !auth.ValidRole(role) {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_ROLE", "role must be admin, owner or customer", false, map[string]any{"role": role})
		return
	}

	selection, err := resolveSelection(deps, r, request)
	if err != nil {
		switch {
		case errors.Is(err, tenant.ErrInvalidTenant):
			writeError(r.Context(), w, http.StatusBadRequest, "INVALID_GARAGE", "invalid garage ID provided", false, map[string]any{"garage_id": request.SelectedGarageID})
		case errors.Is(err, tenant.ErrNoTenantSelected):
			writeError(r.Context(), w, http.StatusBadRequest, "NO_GARAGE_SELECTED", "no garage selected", false, nil)
		default:
			writeError(r.Context(), w, http.StatusInternalServerError, "GARAGE_RESOLUTION_FAILED", "failed to resolve garage selection", true, nil)
		}
		return
	}

	db, err := deps.Sessions.Open(r.Context(), selection)
	if err != nil {
		writeError(r.Context(), w, http.StatusServiceUnavailable, "GARAGE_UNAVAILABLE", "failed to open garage database", true, map[string]any{"garage_name": selection.Name})
		return
	}
	defer func() { _ = db.Close() }()

	start := time.Now()
	state := nlsql.NewState(request.Question, nlsql.AccessScope{Role: role, OwnerFilterID: userID}, selection)
	final := deps.Pipeline.Run(r.Context(), db, state)
	elapsed := time.Since(start)
	observability.ObserveQuestion(elapsed, final.HasError)

	if deps.Logger != nil {
		deps.Logger.Info("question answered",
			"garage_name", selection.Name,
			"role", role,
			"sql_error", final.HasError,
			"duration_ms", elapsed.Milliseconds(),
		)
	}

	writeJSON(w, http.StatusOK, askResponse{
		QueryResult:          nlsql.ShapeResponse(final.Result, final.HasError),
		SQLQuery:             final.GeneratedQuery,
		SQLError:             final.HasError,
		ExecutionTimeSeconds: round3(elapsed.Seconds()),
	})
}

// resolveSelection prefers the inline selection from the request body
// and falls back to the caller's stored session selection.
func resolveSelection(deps Dependencies, r *http.Request, request askRequest) (tenant.Selection, error) {
	if request.SelectedGarageID != 0 || strings.TrimSpace(request.SelectedGarage) != "" {
		return deps.Registry.Resolve(tenant.Selection{Name: request.SelectedGarage, ID: request.SelectedGarageID})
	}
	if deps.Selections == nil {
		return tenant.Selection{}, tenant.ErrNoTenantSelected
	}
	return deps.Selections.Active(sessionKey(r))
}

func round3(seconds float64) float64 {
	return float64(int64(seconds*1000+0.5)) / 1000
}
