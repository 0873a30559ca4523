package api

import (
	"encoding/json"
	"net/http"

	"github.com/rampgpt/rampgpt/internal/auth"
	"github.com/rampgpt/rampgpt/internal/corpus"
)

type addExampleRequest struct {
	Question string `json:"question"`
	SQLQuery string `json:"sql_query"`
}

func handleAddExample(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Corpus == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "CORPUS_NOT_CONFIGURED", "example corpus is not configured", false, nil)
		return
	}

	if identity, ok := auth.IdentityFromContext(r.Context()); ok && !identity.IsAdmin() {
		writeError(r.Context(), w, http.StatusForbidden, "FORBIDDEN", "adding examples requires the admin role", false, nil)
		return
	}

	var request addExampleRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&request); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid example body", false, map[string]any{"details": err.Error()})
		return
	}

	example, err := deps.Corpus.AddExample(r.Context(), corpus.AddExampleInput{
		Question: request.Question,
		SQLQuery: request.SQLQuery,
	})
	if err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "EXAMPLE_REJECTED", err.Error(), false, nil)
		return
	}

	if deps.Logger != nil {
		deps.Logger.Info("example added", "example_id", example.ID)
	}
	writeJSON(w, http.StatusCreated, example)
}
