package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"stockd/internal/catalog"
	"stockd/internal/inventory"
)

func decodeJSON(r *http.Request, dest any) error {
	if r.Body == nil {
		return errors.New("request body required")
	}
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	return dec.Decode(dest)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}
	respondJSON(w, status, map[string]any{"error": err.Error()})
}

// respondServiceError maps engine and catalog sentinels onto HTTP statuses.
func (a *API) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, inventory.ErrValidation):
		respondError(w, http.StatusBadRequest, err)
	case errors.Is(err, inventory.ErrNotFound), errors.Is(err, catalog.ErrNotFound):
		respondError(w, http.StatusNotFound, err)
	case errors.Is(err, inventory.ErrConflict):
		respondError(w, http.StatusConflict, err)
	case errors.Is(err, catalog.ErrUnavailable):
		respondError(w, http.StatusBadGateway, err)
	default:
		a.log.Error().Err(err).Msg("request failed")
		respondError(w, http.StatusInternalServerError, errors.New("internal error"))
	}
}
