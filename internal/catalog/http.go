package catalog

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"storefront/pkg/kit"
)

// Handlers proxies catalog reads for the storefront. Upstream failures
// degrade to an empty result set rather than an error page; only a product
// detail miss is surfaced as 404.
type Handlers struct {
	Client *Client
	Log    *zap.Logger
}

func (h *Handlers) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/top", func(w http.ResponseWriter, r *http.Request) {
		h.listing(w, r, "top", h.Client.Top)
	})
	r.Get("/top-selling", func(w http.ResponseWriter, r *http.Request) {
		h.listing(w, r, "top-selling", h.Client.TopSelling)
	})
	r.Get("/search", h.search)
	r.Get("/id/{id}", h.detail)

	return r
}

func (h *Handlers) listing(w http.ResponseWriter, r *http.Request, name string, fetch func(ctx context.Context) ([]Summary, error)) {
	out, err := fetch(r.Context())
	if err != nil {
		h.degrade(w, r, name, err)
		return
	}
	if out == nil {
		out = []Summary{}
	}
	kit.WriteJSON(w, http.StatusOK, out)
}

func (h *Handlers) search(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Query().Get("keyword")
	if keyword == "" {
		kit.WriteError(w, r, http.StatusBadRequest, "keyword required", nil)
		return
	}

	out, err := h.Client.Search(r.Context(), keyword)
	if err != nil {
		h.degrade(w, r, "search", err)
		return
	}
	if out == nil {
		out = []Summary{}
	}
	kit.WriteJSON(w, http.StatusOK, out)
}

func (h *Handlers) detail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		kit.WriteError(w, r, http.StatusBadRequest, "bad product id", nil)
		return
	}

	d, err := h.Client.Detail(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
			return
		}
		if h.Log != nil {
			h.Log.Warn("catalog detail failed", zap.Int64("id", id), zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusBadGateway, "catalog error", nil)
		return
	}
	kit.WriteJSON(w, http.StatusOK, d)
}

func (h *Handlers) degrade(w http.ResponseWriter, r *http.Request, op string, err error) {
	if h.Log != nil {
		h.Log.Warn("catalog "+op+" degraded to empty", zap.Error(err))
	}
	kit.WriteJSON(w, http.StatusOK, []Summary{})
}
