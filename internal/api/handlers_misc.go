package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"stockd/internal/catalog"
	"stockd/internal/db"
)

func (a *API) handleCatalogLookup(w http.ResponseWriter, r *http.Request) {
	if a.catalog == nil {
		respondError(w, http.StatusServiceUnavailable, errors.New("catalog lookup disabled"))
		return
	}

	gtin := chi.URLParam(r, "gtin")
	if !catalog.ValidGTIN(gtin) {
		respondError(w, http.StatusBadRequest, errors.New("invalid GTIN"))
		return
	}

	product, err := a.catalog.Lookup(r.Context(), gtin)
	if err != nil {
		a.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (a *API) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (a *API) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if a.pool != nil {
		if err := db.Ping(r.Context(), a.pool); err != nil {
			respondError(w, http.StatusServiceUnavailable, err)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
