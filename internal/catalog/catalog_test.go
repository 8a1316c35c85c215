package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func jsonHandler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}
}

func newTestClient(t *testing.T, off, upc, gtin http.HandlerFunc) *Client {
	t.Helper()
	offSrv := httptest.NewServer(off)
	upcSrv := httptest.NewServer(upc)
	gtinSrv := httptest.NewServer(gtin)
	t.Cleanup(offSrv.Close)
	t.Cleanup(upcSrv.Close)
	t.Cleanup(gtinSrv.Close)

	return New(Options{
		OpenFoodFactsURL: offSrv.URL,
		UPCItemDBURL:     upcSrv.URL,
		GTINSearchURL:    gtinSrv.URL,
	})
}

func TestValidGTIN(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"12345678", true},
		{"3017620422003", true},
		{"12345678901234", true},
		{"1234567", false},
		{"123456789012345", false},
		{"30176204a2003", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := ValidGTIN(tt.code); got != tt.want {
			t.Errorf("ValidGTIN(%q) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestLookupFirstProviderHit(t *testing.T) {
	called := map[string]bool{}
	c := newTestClient(t,
		func(w http.ResponseWriter, r *http.Request) {
			called["off"] = true
			jsonHandler(200, `{"status":1,"product":{"product_name":"Nutella","brands":"Ferrero, Nutella","image_url":"https://img/x.jpg"}}`)(w, r)
		},
		func(w http.ResponseWriter, r *http.Request) {
			called["upc"] = true
			jsonHandler(200, `{}`)(w, r)
		},
		jsonHandler(200, `[]`),
	)

	p, err := c.Lookup(context.Background(), "3017620422003")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if p.Name != "Nutella" || p.Brand != "Ferrero" || p.Source != "openfoodfacts" {
		t.Fatalf("product = %+v", p)
	}
	if called["upc"] {
		t.Fatal("second provider queried after a first-provider hit")
	}
}

func TestLookupFallsThroughChain(t *testing.T) {
	c := newTestClient(t,
		jsonHandler(200, `{"status":0}`),
		jsonHandler(200, `{"items":[]}`),
		jsonHandler(200, `[{"name":"Gaffer Tape","brand":"Pro-Gaff"}]`),
	)

	p, err := c.Lookup(context.Background(), "12345678")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if p.Name != "Gaffer Tape" || p.Source != "gtinsearch" {
		t.Fatalf("product = %+v", p)
	}
}

func TestLookupSkipsFailingProvider(t *testing.T) {
	c := newTestClient(t,
		jsonHandler(500, `oops`),
		jsonHandler(200, `{"items":[{"title":"HDMI Cable","brand":"Generic","images":["https://img/c.jpg"]}]}`),
		jsonHandler(200, `[]`),
	)

	p, err := c.Lookup(context.Background(), "12345678")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if p.Name != "HDMI Cable" || p.Source != "upcitemdb" || p.ImageURL != "https://img/c.jpg" {
		t.Fatalf("product = %+v", p)
	}
}

func TestLookupNotFound(t *testing.T) {
	c := newTestClient(t,
		jsonHandler(200, `{"status":0}`),
		jsonHandler(404, `{}`),
		jsonHandler(200, `[]`),
	)

	_, err := c.Lookup(context.Background(), "12345678")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestLookupAllProvidersDown(t *testing.T) {
	c := newTestClient(t,
		jsonHandler(500, ``),
		jsonHandler(502, ``),
		jsonHandler(503, ``),
	)

	_, err := c.Lookup(context.Background(), "12345678")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestLookupRejectsInvalidCode(t *testing.T) {
	c := New(Options{})
	if _, err := c.Lookup(context.Background(), "not-a-gtin"); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLookupHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newTestClient(t,
		jsonHandler(200, `{"status":0}`),
		jsonHandler(200, `{"items":[]}`),
		jsonHandler(200, `[]`),
	)
	if _, err := c.Lookup(ctx, "12345678"); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
