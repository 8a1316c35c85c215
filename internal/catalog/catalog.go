// Package catalog resolves scanned GTIN barcodes to product descriptions by
// querying public catalog providers in order until one answers.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Provider base endpoints. Tests override these through Options.
const (
	DefaultOpenFoodFactsURL = "https://world.openfoodfacts.org"
	DefaultUPCItemDBURL     = "https://api.upcitemdb.com"
	DefaultGTINSearchURL    = "https://www.gtinsearch.org"
)

// DefaultTimeout bounds each provider call.
const DefaultTimeout = 8 * time.Second

// ErrNotFound means every provider answered but none knows the code.
var ErrNotFound = errors.New("catalog: product not found")

// ErrUnavailable means no provider could be reached.
var ErrUnavailable = errors.New("catalog: no provider available")

// Product is the resolved description of a scanned code.
type Product struct {
	GTIN     string `json:"gtin"`
	Name     string `json:"name"`
	Brand    string `json:"brand,omitempty"`
	Category string `json:"category,omitempty"`
	ImageURL string `json:"imageUrl,omitempty"`
	Source   string `json:"source"`
}

// Options configures a Client. Zero values select the public endpoints and
// the default timeout.
type Options struct {
	OpenFoodFactsURL string
	UPCItemDBURL     string
	GTINSearchURL    string
	HTTPClient       *http.Client
	Logger           zerolog.Logger
}

// Client queries catalog providers. Safe for concurrent use.
type Client struct {
	http          *http.Client
	log           zerolog.Logger
	openFoodFacts string
	upcItemDB     string
	gtinSearch    string
}

// New builds a catalog client from opts.
func New(opts Options) *Client {
	if opts.OpenFoodFactsURL == "" {
		opts.OpenFoodFactsURL = DefaultOpenFoodFactsURL
	}
	if opts.UPCItemDBURL == "" {
		opts.UPCItemDBURL = DefaultUPCItemDBURL
	}
	if opts.GTINSearchURL == "" {
		opts.GTINSearchURL = DefaultGTINSearchURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{
		http:          opts.HTTPClient,
		log:           opts.Logger,
		openFoodFacts: strings.TrimRight(opts.OpenFoodFactsURL, "/"),
		upcItemDB:     strings.TrimRight(opts.UPCItemDBURL, "/"),
		gtinSearch:    strings.TrimRight(opts.GTINSearchURL, "/"),
	}
}

// ValidGTIN reports whether code looks like a GTIN-8 through GTIN-14.
func ValidGTIN(code string) bool {
	if len(code) < 8 || len(code) > 14 {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

type provider struct {
	name   string
	lookup func(ctx context.Context, gtin string) (*Product, error)
}

// Lookup tries each provider in order and returns the first hit. A provider
// that answers "unknown code" stops neither the chain nor a later hit; only
// when all providers fail to respond is ErrUnavailable returned.
func (c *Client) Lookup(ctx context.Context, gtin string) (*Product, error) {
	gtin = strings.TrimSpace(gtin)
	if !ValidGTIN(gtin) {
		return nil, fmt.Errorf("catalog: %q is not a valid GTIN", gtin)
	}

	providers := []provider{
		{"openfoodfacts", c.lookupOpenFoodFacts},
		{"upcitemdb", c.lookupUPCItemDB},
		{"gtinsearch", c.lookupGTINSearch},
	}

	reached := false
	for _, p := range providers {
		product, err := p.lookup(ctx, gtin)
		switch {
		case err == nil:
			return product, nil
		case errors.Is(err, ErrNotFound):
			reached = true
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil, err
		default:
			c.log.Warn().Err(err).Str("provider", p.name).Str("gtin", gtin).Msg("catalog provider failed")
		}
	}

	if reached {
		return nil, ErrNotFound
	}
	return nil, ErrUnavailable
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("catalog: unexpected status %d from %s", resp.StatusCode, rawURL)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) lookupOpenFoodFacts(ctx context.Context, gtin string) (*Product, error) {
	var body struct {
		Status  int `json:"status"`
		Product struct {
			Name     string `json:"product_name"`
			Brands   string `json:"brands"`
			Category string `json:"categories"`
			ImageURL string `json:"image_url"`
		} `json:"product"`
	}
	u := fmt.Sprintf("%s/api/v0/product/%s.json", c.openFoodFacts, url.PathEscape(gtin))
	if err := c.getJSON(ctx, u, &body); err != nil {
		return nil, err
	}
	if body.Status != 1 || body.Product.Name == "" {
		return nil, ErrNotFound
	}
	return &Product{
		GTIN:     gtin,
		Name:     body.Product.Name,
		Brand:    firstField(body.Product.Brands),
		Category: firstField(body.Product.Category),
		ImageURL: body.Product.ImageURL,
		Source:   "openfoodfacts",
	}, nil
}

func (c *Client) lookupUPCItemDB(ctx context.Context, gtin string) (*Product, error) {
	var body struct {
		Code  string `json:"code"`
		Items []struct {
			Title    string   `json:"title"`
			Brand    string   `json:"brand"`
			Category string   `json:"category"`
			Images   []string `json:"images"`
		} `json:"items"`
	}
	u := fmt.Sprintf("%s/prod/trial/lookup?upc=%s", c.upcItemDB, url.QueryEscape(gtin))
	if err := c.getJSON(ctx, u, &body); err != nil {
		return nil, err
	}
	if len(body.Items) == 0 || body.Items[0].Title == "" {
		return nil, ErrNotFound
	}
	item := body.Items[0]
	p := &Product{
		GTIN:     gtin,
		Name:     item.Title,
		Brand:    item.Brand,
		Category: item.Category,
		Source:   "upcitemdb",
	}
	if len(item.Images) > 0 {
		p.ImageURL = item.Images[0]
	}
	return p, nil
}

func (c *Client) lookupGTINSearch(ctx context.Context, gtin string) (*Product, error) {
	var body []struct {
		Name  string `json:"name"`
		Brand string `json:"brand"`
	}
	u := fmt.Sprintf("%s/api/items/%s", c.gtinSearch, url.PathEscape(gtin))
	if err := c.getJSON(ctx, u, &body); err != nil {
		return nil, err
	}
	if len(body) == 0 || body[0].Name == "" {
		return nil, ErrNotFound
	}
	return &Product{
		GTIN:   gtin,
		Name:   body[0].Name,
		Brand:  body[0].Brand,
		Source: "gtinsearch",
	}, nil
}

// firstField extracts the first entry of a comma-separated provider field.
func firstField(s string) string {
	first, _, _ := strings.Cut(s, ",")
	return strings.TrimSpace(first)
}
