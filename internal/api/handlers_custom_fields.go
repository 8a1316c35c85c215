package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"stockd/internal/inventory"
)

func (a *API) handleListCustomFields(w http.ResponseWriter, r *http.Request) {
	fields, err := a.svc.ListCustomFields(r.Context())
	if err != nil {
		a.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"customFields": fields})
}

func (a *API) handleCreateCustomField(w http.ResponseWriter, r *http.Request) {
	var in inventory.CustomFieldInput
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	field, err := a.svc.CreateCustomField(r.Context(), in)
	if err != nil {
		a.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, field)
}

func (a *API) handleUpdateCustomField(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	var in inventory.CustomFieldInput
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	if err := a.svc.UpdateCustomField(r.Context(), id, in); err != nil {
		a.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"updated": id})
}

func (a *API) handleDeleteCustomField(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	if err := a.svc.DeleteCustomField(r.Context(), id); err != nil {
		a.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
