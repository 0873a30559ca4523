package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rampgpt/rampgpt/internal/tenant"
)

type garageSelectionRequest struct {
	GarageName string `json:"garage_name"`
	GarageID   int    `json:"garage_id"`
}

func handleSetGarage(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Selections == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "GARAGE_NOT_CONFIGURED", "garage selection is not configured", false, nil)
		return
	}

	var request garageSelectionRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&request); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid garage selection body", false, map[string]any{"details": err.Error()})
		return
	}

	selection, err := deps.Selections.Set(sessionKey(r), tenant.Selection{Name: request.GarageName, ID: request.GarageID})
	if err != nil {
		if errors.Is(err, tenant.ErrInvalidTenant) {
			writeError(r.Context(), w, http.StatusBadRequest, "INVALID_GARAGE", err.Error(), false, map[string]any{"garage_id": request.GarageID})
			return
		}
		writeError(r.Context(), w, http.StatusInternalServerError, "GARAGE_SELECTION_FAILED", "failed to store garage selection", true, nil)
		return
	}

	if deps.Logger != nil {
		deps.Logger.Debug("garage selected", "garage_name", selection.Name, "garage_id", selection.ID)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":     fmt.Sprintf("Garage set to %s with ID %d", selection.Name, selection.ID),
		"garage_name": selection.Name,
		"garage_id":   selection.ID,
	})
}

func handleGetGarage(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Selections == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "GARAGE_NOT_CONFIGURED", "garage selection is not configured", false, nil)
		return
	}

	selection, err := deps.Selections.Active(sessionKey(r))
	if err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "NO_GARAGE_SELECTED", "no garage selected yet", false, nil)
		return
	}
	writeJSON(w, http.StatusOK, selection)
}
