package api

import (
	"errors"
	"net/http"

	"gorm.io/gorm"

	"stockd/internal/hub"
	"stockd/internal/notify"
)

func (a *API) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	limit := intParam(r.URL.Query().Get("limit"), notify.DefaultListLimit)

	notifs, err := notify.List(a.svc.DB().WithContext(r.Context()), limit)
	if err != nil {
		a.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"notifications": notifs, "count": len(notifs)})
}

func (a *API) handleDeleteNotification(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	if err := notify.Delete(a.svc.DB().WithContext(r.Context()), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(w, http.StatusNotFound, err)
			return
		}
		a.respondServiceError(w, err)
		return
	}
	a.hub.Publish(hub.EventNotificationsChanged, nil)
	respondJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

func (a *API) handleClearNotifications(w http.ResponseWriter, r *http.Request) {
	cleared, err := notify.Clear(a.svc.DB().WithContext(r.Context()))
	if err != nil {
		a.respondServiceError(w, err)
		return
	}
	a.hub.Publish(hub.EventNotificationsChanged, nil)
	respondJSON(w, http.StatusOK, map[string]any{"cleared": cleared})
}
