package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (a *API) handleListCategories(w http.ResponseWriter, r *http.Request) {
	list, err := a.svc.ListCategories(r.Context())
	if err != nil {
		a.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (a *API) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if body.Name == "" {
		respondError(w, http.StatusBadRequest, errors.New("name is required"))
		return
	}

	reactivated, err := a.svc.CreateCategory(r.Context(), body.Name)
	if err != nil {
		a.respondServiceError(w, err)
		return
	}

	status := http.StatusCreated
	if reactivated {
		status = http.StatusOK
	}
	respondJSON(w, status, map[string]any{"name": body.Name, "reactivated": reactivated})
}

func (a *API) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	moved, err := a.svc.DeleteCategory(r.Context(), name)
	if err != nil {
		a.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"deleted": name, "reassignedItems": moved})
}
