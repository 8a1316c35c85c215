package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"stockd/internal/db"
	"stockd/internal/inventory"
)

// itemRow is the read-path projection of an item, scanned directly from the
// pool.
type itemRow struct {
	ID              int64          `json:"id" db:"id"`
	ItemID          string         `json:"itemId" db:"item_id"`
	Name            string         `json:"name" db:"name"`
	SerialNumber    string         `json:"serialNumber" db:"serial_number"`
	Quantity        int            `json:"quantity" db:"quantity"`
	Category        string         `json:"category" db:"category"`
	CategoryDetails string         `json:"categoryDetails" db:"category_details"`
	Image           string         `json:"image" db:"image"`
	ScannedCode     string         `json:"scannedCode" db:"scanned_code"`
	Status          string         `json:"status" db:"status"`
	ItemType        string         `json:"itemType" db:"item_type"`
	Brand           string         `json:"brand" db:"brand"`
	Model           string         `json:"model" db:"model"`
	CustomData      map[string]any `json:"customData" db:"custom_data"`
	CreatedAt       time.Time      `json:"createdAt" db:"created_at"`
	LastUpdated     time.Time      `json:"lastUpdated" db:"last_updated"`
}

const itemColumns = `id, item_id, name, serial_number, quantity, category,
	category_details, image, scanned_code, status, item_type, brand, model,
	custom_data, created_at, last_updated`

func (a *API) handleListItems(w http.ResponseWriter, r *http.Request) {
	if a.pool == nil {
		respondError(w, http.StatusServiceUnavailable, errors.New("read store unavailable"))
		return
	}

	q := r.URL.Query()
	search := q.Get("search")
	category := q.Get("category")
	status := q.Get("status")
	limit := intParam(q.Get("limit"), 100)
	offset := intParam(q.Get("offset"), 0)

	query := fmt.Sprintf(`SELECT %s FROM items
		WHERE ($1 = '' OR name ILIKE '%%' || $1 || '%%'
			OR serial_number ILIKE '%%' || $1 || '%%'
			OR item_id ILIKE '%%' || $1 || '%%'
			OR scanned_code ILIKE '%%' || $1 || '%%')
		AND ($2 = '' OR category = $2)
		AND ($3 = '' OR status = $3)
		ORDER BY last_updated DESC
		LIMIT $4 OFFSET $5`, itemColumns)

	var rows []itemRow
	if err := db.Select(r.Context(), a.pool, &rows, query, search, category, status, limit, offset); err != nil {
		a.respondServiceError(w, err)
		return
	}
	if rows == nil {
		rows = []itemRow{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"items": rows, "count": len(rows)})
}

func (a *API) handleGetItem(w http.ResponseWriter, r *http.Request) {
	if a.pool == nil {
		respondError(w, http.StatusServiceUnavailable, errors.New("read store unavailable"))
		return
	}
	serial := chi.URLParam(r, "serial")

	var row itemRow
	query := fmt.Sprintf("SELECT %s FROM items WHERE serial_number = $1", itemColumns)
	if err := db.Get(r.Context(), a.pool, &row, query, serial); err != nil {
		if db.IsNoRows(err) {
			respondError(w, http.StatusNotFound, fmt.Errorf("item %q not found", serial))
			return
		}
		a.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"item": row})
}

func (a *API) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var in inventory.ItemInput
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	res, err := a.svc.CreateOrMerge(r.Context(), in)
	if err != nil {
		a.respondServiceError(w, err)
		return
	}

	status := http.StatusCreated
	if res.Action == inventory.ActionUpdated {
		status = http.StatusOK
	}
	respondJSON(w, status, res)
}

func (a *API) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	serial := chi.URLParam(r, "serial")

	var body struct {
		CustomData map[string]any `json:"customData"`
	}
	fields := map[string]any{}
	if err := decodeSplitItemUpdate(r, fields, &body); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	count, err := a.svc.UpdateItem(r.Context(), serial, inventory.UpdateRequest{
		Fields: fields,
		Custom: body.CustomData,
	})
	if err != nil {
		a.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"changeCount": count})
}

func (a *API) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	serial := chi.URLParam(r, "serial")
	if err := a.svc.DeleteItem(r.Context(), serial); err != nil {
		a.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"deleted": serial})
}

func (a *API) handleItemHistory(w http.ResponseWriter, r *http.Request) {
	serial := chi.URLParam(r, "serial")
	limit := intParam(r.URL.Query().Get("limit"), 10)

	records, err := a.svc.ItemHistory(r.Context(), serial, limit)
	if err != nil {
		a.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"history": records})
}

func (a *API) handleNextItemID(w http.ResponseWriter, r *http.Request) {
	code, err := a.svc.AllocateIdentifier(r.Context())
	if err != nil {
		a.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"nextId": code})
}

// decodeSplitItemUpdate splits a flat update body into built-in fields and
// the customData block. Only keys present in the request end up in fields,
// so absent keys stay untouched.
func decodeSplitItemUpdate(r *http.Request, fields map[string]any, body *struct {
	CustomData map[string]any `json:"customData"`
}) error {
	raw := map[string]any{}
	if err := decodeJSON(r, &raw); err != nil {
		return err
	}
	for k, v := range raw {
		if k == "customData" {
			if m, ok := v.(map[string]any); ok {
				body.CustomData = m
			}
			continue
		}
		fields[k] = v
	}
	return nil
}

func intParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
