// Package catalog talks to the backend catalog REST API. The catalog is an
// external collaborator: reads are server-backed, and this package only
// narrows its responses into typed DTOs at the boundary.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Summary is one row of a product listing or search result.
type Summary struct {
	ProductID          int64   `json:"productId"`
	Name               string  `json:"name"`
	OriginalPrice      int64   `json:"originalPrice"`
	DiscountAmount     int64   `json:"discountAmount"`
	FinalPrice         int64   `json:"finalPrice"`
	ImageURL           string  `json:"imageUrl,omitempty"`
	TotalPurchaseCount int64   `json:"totalPurchaseCount"`
	Rating             float64 `json:"rating"`
}

type Brand struct {
	BrandID     int64  `json:"brandId"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	LogoURL     string `json:"logoUrl,omitempty"`
	Website     string `json:"website,omitempty"`
	Description string `json:"description,omitempty"`
}

type Image struct {
	ImageID   int64  `json:"imageId"`
	ImageURL  string `json:"imageUrl"`
	IsPrimary bool   `json:"isPrimary"`
	SortOrder int    `json:"sortOrder"`
}

type Variant struct {
	VariantID      int64  `json:"variantId"`
	SKU            string `json:"sku"`
	Quantity       int    `json:"quantity"`
	AttributesJSON string `json:"attributesJson,omitempty"`
	PriceOverride  *int64 `json:"priceOverride,omitempty"`
	Status         string `json:"status"`
}

type Detail struct {
	ProductID   int64     `json:"productId"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	Price       int64     `json:"price"`
	Status      string    `json:"status"`
	Brand       *Brand    `json:"brand,omitempty"`
	Images      []Image   `json:"images"`
	Variants    []Variant `json:"variants"`
}

var (
	ErrNotFound    = errors.New("catalog product not found")
	ErrBadStatus   = errors.New("catalog bad status")
	ErrUnavailable = errors.New("catalog unavailable")
)

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 3 * time.Second},
	}
}

func (c *Client) Top(ctx context.Context) ([]Summary, error) {
	return c.listing(ctx, "/products/top")
}

func (c *Client) TopSelling(ctx context.Context) ([]Summary, error) {
	return c.listing(ctx, "/products/top-selling")
}

func (c *Client) Search(ctx context.Context, keyword string) ([]Summary, error) {
	return c.listing(ctx, "/products/search?keyword="+url.QueryEscape(keyword))
}

func (c *Client) listing(ctx context.Context, path string) ([]Summary, error) {
	var out []Summary
	if err := c.getJSON(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Detail(ctx context.Context, id int64) (Detail, error) {
	var d Detail
	if err := c.getJSON(ctx, fmt.Sprintf("/products/id/%d", id), &d); err != nil {
		return Detail{}, err
	}
	return d, nil
}

func (c *Client) getJSON(ctx context.Context, path string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		// Connection refused, DNS failure, timeout: all transport-level.
		return ErrUnavailable
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return ErrNotFound
	default:
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: status=%d", ErrBadStatus, resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(dst)
}
