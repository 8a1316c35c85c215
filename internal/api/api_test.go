package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"stockd/internal/hub"
	"stockd/internal/inventory"
	"stockd/internal/models"
)

func newTestAPI(t *testing.T) (*API, *inventory.Service, http.Handler) {
	t.Helper()

	orm, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := orm.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = orm.AutoMigrate(
		&models.Item{},
		&models.ChangeRecord{},
		&models.Notification{},
		&models.CustomField{},
		&models.Category{},
		&models.DeletedCategory{},
		&models.Rental{},
		&models.RentalStatus{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	h := hub.New()
	svc := inventory.NewService(orm, h, inventory.Options{})

	a, err := New(svc, h, nil, nil, Config{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("new api: %v", err)
	}
	return a, svc, a.Routes()
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestCreateItemRoute(t *testing.T) {
	_, _, router := newTestAPI(t)

	rec := doJSON(t, router, http.MethodPost, "/api/items", map[string]any{
		"name":         "Drone X",
		"serialNumber": "SN-1",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["itemId"] != "aaa" {
		t.Fatalf("itemId = %v, want aaa", body["itemId"])
	}

	// Same serial again merges and reports 200.
	rec = doJSON(t, router, http.MethodPost, "/api/items", map[string]any{
		"name":         "Drone X",
		"serialNumber": "SN-1",
		"quantity":     2,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("merge status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestCreateItemValidation(t *testing.T) {
	_, _, router := newTestAPI(t)

	rec := doJSON(t, router, http.MethodPost, "/api/items", map[string]any{"name": "No Serial"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestUpdateItemRoute(t *testing.T) {
	_, svc, router := newTestAPI(t)
	mustCreate(t, svc, "Drone X", "SN-1")

	rec := doJSON(t, router, http.MethodPut, "/api/items/SN-1", map[string]any{
		"name":       "Drone X Pro",
		"customData": map[string]any{"couleur": "rouge"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["changeCount"] != float64(2) {
		t.Fatalf("changeCount = %v, want 2", body["changeCount"])
	}
}

func TestUpdateMissingItem(t *testing.T) {
	_, _, router := newTestAPI(t)

	rec := doJSON(t, router, http.MethodPut, "/api/items/ghost", map[string]any{"name": "x"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestDeleteItemRoute(t *testing.T) {
	_, svc, router := newTestAPI(t)
	mustCreate(t, svc, "Drone X", "SN-1")

	rec := doJSON(t, router, http.MethodDelete, "/api/items/SN-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	rec = doJSON(t, router, http.MethodDelete, "/api/items/SN-1", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", rec.Code)
	}
}

func TestItemHistoryRoute(t *testing.T) {
	_, svc, router := newTestAPI(t)
	mustCreate(t, svc, "Drone X", "SN-1")

	rec := doJSON(t, router, http.MethodGet, "/api/items/SN-1/history", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	history, ok := body["history"].([]any)
	if !ok || len(history) != 1 {
		t.Fatalf("history = %v, want one entry", body["history"])
	}
}

func TestNextItemIDRoute(t *testing.T) {
	_, svc, router := newTestAPI(t)
	mustCreate(t, svc, "Drone X", "SN-1")

	rec := doJSON(t, router, http.MethodGet, "/api/items/next-id", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["nextId"] != "aab" {
		t.Fatalf("nextId = %v, want aab", body["nextId"])
	}
}

func TestListItemsWithoutPool(t *testing.T) {
	_, _, router := newTestAPI(t)

	rec := doJSON(t, router, http.MethodGet, "/api/items", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestNotificationRoutes(t *testing.T) {
	_, svc, router := newTestAPI(t)
	mustCreate(t, svc, "Drone X", "SN-1")

	rec := doJSON(t, router, http.MethodGet, "/api/notifications", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	notifs, ok := body["notifications"].([]any)
	if !ok || len(notifs) != 1 {
		t.Fatalf("notifications = %v, want one entry", body["notifications"])
	}
	first := notifs[0].(map[string]any)
	id := int64(first["id"].(float64))

	rec = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/notifications/%d", id), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}
	rec = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/notifications/%d", id), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", rec.Code)
	}

	mustCreate(t, svc, "Drone Y", "SN-2")
	rec = doJSON(t, router, http.MethodDelete, "/api/notifications", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("clear status = %d", rec.Code)
	}
	rec = doJSON(t, router, http.MethodGet, "/api/notifications", nil)
	body = decodeBody(t, rec)
	if count := body["count"].(float64); count != 0 {
		t.Fatalf("count after clear = %v, want 0", count)
	}
}

func TestCategoryRoutes(t *testing.T) {
	_, _, router := newTestAPI(t)

	rec := doJSON(t, router, http.MethodPost, "/api/categories", map[string]any{"name": "Lumiere"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, router, http.MethodPost, "/api/categories", map[string]any{"name": "lumiere"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate status = %d, want 409", rec.Code)
	}

	rec = doJSON(t, router, http.MethodDelete, "/api/categories/lumiere", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}

	// Recreating a tombstoned name reactivates it with 200.
	rec = doJSON(t, router, http.MethodPost, "/api/categories", map[string]any{"name": "lumiere"})
	if rec.Code != http.StatusOK {
		t.Fatalf("reactivate status = %d, want 200", rec.Code)
	}
}

func TestCustomFieldRoutes(t *testing.T) {
	_, _, router := newTestAPI(t)

	rec := doJSON(t, router, http.MethodPost, "/api/custom-fields", map[string]any{
		"name":      "Date d'achat",
		"fieldType": "date",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["fieldKey"] != "date_d_achat" {
		t.Fatalf("fieldKey = %v, want date_d_achat", body["fieldKey"])
	}
	id := int64(body["id"].(float64))

	rec = doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/custom-fields/%d", id), map[string]any{
		"required": true,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/custom-fields/%d", id), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}
}

func TestRentalRoutes(t *testing.T) {
	_, _, router := newTestAPI(t)

	rental := map[string]any{
		"renterName":     "Alice Martin",
		"renterEmail":    "alice@example.com",
		"renterPhone":    "0601020304",
		"startDate":      "2026-09-01",
		"endDate":        "2026-09-08",
		"rentalDuration": 7,
		"itemsData":      []map[string]any{{"serialNumber": "SN-1", "quantity": 1}},
	}
	rec := doJSON(t, router, http.MethodPost, "/api/rentals", rental)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	id := int64(body["id"].(float64))

	rental["status"] = "fini"
	rec = doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/rentals/%d", id), rental)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, "/api/rentals?status=fini", nil)
	body = decodeBody(t, rec)
	if count := body["count"].(float64); count != 1 {
		t.Fatalf("count = %v, want 1", count)
	}

	rec = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/rentals/%d", id), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}
}

func TestCatalogRouteDisabled(t *testing.T) {
	_, _, router := newTestAPI(t)

	rec := doJSON(t, router, http.MethodGet, "/api/catalog/12345678", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestHealthRoutes(t *testing.T) {
	_, _, router := newTestAPI(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := doJSON(t, router, http.MethodGet, path, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s status = %d", path, rec.Code)
		}
	}
}

func TestEventStream(t *testing.T) {
	_, svc, router := newTestAPI(t)

	srv := httptest.NewServer(router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/events", nil)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("content type = %q", ct)
	}

	reader := bufio.NewReader(resp.Body)
	readFrame := func() map[string]any {
		t.Helper()
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				t.Fatalf("read stream: %v", err)
			}
			line = strings.TrimSpace(line)
			if data, ok := strings.CutPrefix(line, "data: "); ok {
				var ev map[string]any
				if err := json.Unmarshal([]byte(data), &ev); err != nil {
					t.Fatalf("decode frame %q: %v", data, err)
				}
				return ev
			}
		}
	}

	if ev := readFrame(); ev["type"] != "connected" {
		t.Fatalf("first frame type = %v, want connected", ev["type"])
	}

	mustCreate(t, svc, "Drone X", "SN-1")

	if ev := readFrame(); ev["type"] != "items_changed" {
		t.Fatalf("frame type = %v, want items_changed", ev["type"])
	}
	if ev := readFrame(); ev["type"] != "notifications_changed" {
		t.Fatalf("frame type = %v, want notifications_changed", ev["type"])
	}
}

func mustCreate(t *testing.T, svc *inventory.Service, name, serial string) {
	t.Helper()
	if _, err := svc.CreateOrMerge(context.Background(), inventory.ItemInput{
		Name:         name,
		SerialNumber: serial,
	}); err != nil {
		t.Fatalf("create %s: %v", serial, err)
	}
}
