package api

import (
	"errors"
	"net/http"

	"github.com/rampgpt/rampgpt/internal/schema"
	"github.com/rampgpt/rampgpt/internal/tenant"
)

type schemaResponse struct {
	GarageName string         `json:"garage_name"`
	GarageID   int            `json:"garage_id"`
	Tables     []schema.Table `json:"tables"`
}

// handleSchema introspects the caller's selected garage. Debug aid;
// reflects the live structure on every call.
func handleSchema(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Selections == nil || deps.Sessions == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "SCHEMA_NOT_CONFIGURED", "schema introspection is not configured", false, nil)
		return
	}

	selection, err := deps.Selections.Active(sessionKey(r))
	if err != nil {
		if errors.Is(err, tenant.ErrNoTenantSelected) {
			writeError(r.Context(), w, http.StatusBadRequest, "NO_GARAGE_SELECTED", "no garage selected yet", false, nil)
			return
		}
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_GARAGE", err.Error(), false, nil)
		return
	}

	db, err := deps.Sessions.Open(r.Context(), selection)
	if err != nil {
		writeError(r.Context(), w, http.StatusServiceUnavailable, "GARAGE_UNAVAILABLE", "failed to open garage database", true, map[string]any{"garage_name": selection.Name})
		return
	}
	defer func() { _ = db.Close() }()

	snapshot, err := schema.Introspect(r.Context(), db)
	if err != nil {
		writeError(r.Context(), w, http.StatusInternalServerError, "INTROSPECTION_FAILED", "failed to introspect garage schema", true, map[string]any{"details": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, schemaResponse{
		GarageName: selection.Name,
		GarageID:   selection.ID,
		Tables:     snapshot,
	})
}
