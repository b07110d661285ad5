package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newFakeCatalogTS(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/products/top", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"productId":1,"name":"Áo thun","originalPrice":120000,"discountAmount":0,"finalPrice":120000,"rating":4.5,"totalPurchaseCount":12},
			{"productId":2,"name":"Giày Sneaker","originalPrice":450000,"discountAmount":50000,"finalPrice":400000,"rating":4.8,"totalPurchaseCount":30}
		]`))
	})
	mux.HandleFunc("/products/search", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("keyword") != "áo" {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[]`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"productId":1,"name":"Áo thun","originalPrice":120000,"finalPrice":120000}]`))
	})
	mux.HandleFunc("/products/id/1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"productId":1,"name":"Áo thun","slug":"ao-thun","price":120000,"status":"active",
			"images":[{"imageId":1,"imageUrl":"/images/banner1.jpg","isPrimary":true,"sortOrder":0}],
			"variants":[{"variantId":11,"sku":"AT-RED-M","quantity":5,"status":"active"}]
		}`))
	})
	mux.HandleFunc("/products/id/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return httptest.NewServer(mux)
}

func TestTop_DecodesSummaries(t *testing.T) {
	ts := newFakeCatalogTS(t)
	t.Cleanup(ts.Close)

	c := NewClient(ts.URL)
	products, err := c.Top(context.Background())
	if err != nil {
		t.Fatalf("top: %v", err)
	}

	if len(products) != 2 {
		t.Fatalf("len=%d want=2", len(products))
	}
	if products[1].FinalPrice != 400000 {
		t.Fatalf("final price=%d", products[1].FinalPrice)
	}
}

func TestSearch_EncodesKeyword(t *testing.T) {
	ts := newFakeCatalogTS(t)
	t.Cleanup(ts.Close)

	c := NewClient(ts.URL)
	products, err := c.Search(context.Background(), "áo")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(products) != 1 || products[0].ProductID != 1 {
		t.Fatalf("products=%v", products)
	}
}

func TestDetail_DecodesVariantsAndImages(t *testing.T) {
	ts := newFakeCatalogTS(t)
	t.Cleanup(ts.Close)

	c := NewClient(ts.URL)
	d, err := c.Detail(context.Background(), 1)
	if err != nil {
		t.Fatalf("detail: %v", err)
	}

	if d.ProductID != 1 || len(d.Variants) != 1 || d.Variants[0].VariantID != 11 {
		t.Fatalf("detail=%+v", d)
	}
	if len(d.Images) != 1 || !d.Images[0].IsPrimary {
		t.Fatalf("images=%v", d.Images)
	}
}

func TestDetail_MissIsNotFound(t *testing.T) {
	ts := newFakeCatalogTS(t)
	t.Cleanup(ts.Close)

	c := NewClient(ts.URL)
	if _, err := c.Detail(context.Background(), 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err=%v want ErrNotFound", err)
	}
}

func TestClient_DownFallsToUnavailable(t *testing.T) {
	ts := newFakeCatalogTS(t)
	ts.Close()

	c := NewClient(ts.URL)
	if _, err := c.Top(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err=%v want ErrUnavailable", err)
	}
}

func TestHandlers_DegradeToEmptyList(t *testing.T) {
	dead := newFakeCatalogTS(t)
	dead.Close()

	h := &Handlers{Client: NewClient(dead.URL)}
	ts := httptest.NewServer(h.Routes())
	t.Cleanup(ts.Close)

	resp, err := http.Get(ts.URL + "/top")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d want=200 (degrade, not fail)", resp.StatusCode)
	}
}
