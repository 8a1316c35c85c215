package api

import (
	"errors"
	"net/http"

	"stockd/internal/inventory"
)

func (a *API) handleListRentals(w http.ResponseWriter, r *http.Request) {
	rentals, err := a.svc.ListRentals(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		a.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"rentals": rentals, "count": len(rentals)})
}

func (a *API) handleCreateRental(w http.ResponseWriter, r *http.Request) {
	var in inventory.RentalInput
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	rental, err := a.svc.CreateRental(r.Context(), in)
	if err != nil {
		a.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, rental)
}

func (a *API) handleUpdateRental(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	var in inventory.RentalInput
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	if err := a.svc.UpdateRental(r.Context(), id, in); err != nil {
		a.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"updated": id})
}

func (a *API) handleDeleteRental(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	if err := a.svc.DeleteRental(r.Context(), id); err != nil {
		a.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

func (a *API) handleListRentalStatuses(w http.ResponseWriter, r *http.Request) {
	statuses, err := a.svc.ListRentalStatuses(r.Context())
	if err != nil {
		a.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"rentalStatuses": statuses})
}

func (a *API) handleCreateRentalStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name  string `json:"name"`
		Color string `json:"color"`
	}
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if body.Name == "" {
		respondError(w, http.StatusBadRequest, errors.New("name is required"))
		return
	}

	status, err := a.svc.CreateRentalStatus(r.Context(), body.Name, body.Color)
	if err != nil {
		a.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, status)
}
