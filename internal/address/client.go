// Package address wraps the administrative-boundary lookup service feeding
// the checkout form: province, then district, then ward. Results are sorted
// by Vietnamese name before they reach the caller.
package address

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Unit is one administrative unit at any of the three levels.
type Unit struct {
	Code         int    `json:"code"`
	Name         string `json:"name"`
	DivisionType string `json:"division_type,omitempty"`
}

var (
	ErrUnavailable = errors.New("boundary service unavailable")
	ErrBadStatus   = errors.New("boundary service bad status")
)

type Client struct {
	BaseURL string
	HTTP    *http.Client

	collator *collate.Collator
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		HTTP:     &http.Client{Timeout: 5 * time.Second},
		collator: collate.New(language.Vietnamese),
	}
}

func (c *Client) Provinces(ctx context.Context) ([]Unit, error) {
	var out []Unit
	if err := c.getJSON(ctx, "/p/", &out); err != nil {
		return nil, err
	}
	c.sortByName(out)
	return out, nil
}

func (c *Client) Districts(ctx context.Context, provinceCode int) ([]Unit, error) {
	var resp struct {
		Districts []Unit `json:"districts"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("/p/%d?depth=2", provinceCode), &resp); err != nil {
		return nil, err
	}
	c.sortByName(resp.Districts)
	return resp.Districts, nil
}

func (c *Client) Wards(ctx context.Context, districtCode int) ([]Unit, error) {
	var resp struct {
		Wards []Unit `json:"wards"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("/d/%d?depth=2", districtCode), &resp); err != nil {
		return nil, err
	}
	c.sortByName(resp.Wards)
	return resp.Wards, nil
}

func (c *Client) sortByName(units []Unit) {
	sort.SliceStable(units, func(i, j int) bool {
		return c.collator.CompareString(units[i].Name, units[j].Name) < 0
	})
}

func (c *Client) getJSON(ctx context.Context, path string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return ErrUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: status=%d", ErrBadStatus, resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(dst)
}
