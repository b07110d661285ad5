package cart

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"storefront/internal/session"
	"storefront/pkg/kit"
)

const maxBodyBytes = 1 << 20

type Handlers struct {
	Store *Store
	Log   *zap.Logger
}

type cartView struct {
	Items []Line `json:"items"`
	Total int64  `json:"total"`
}

type addReq struct {
	ProductID int64  `json:"product_id"`
	VariantID int64  `json:"variant_id,omitempty"`
	Color     string `json:"color,omitempty"`
	Size      string `json:"size,omitempty"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity,omitempty"`
	ImageURL  string `json:"image_url,omitempty"`
}

type keyReq struct {
	ProductID int64  `json:"product_id"`
	VariantID int64  `json:"variant_id,omitempty"`
	Color     string `json:"color,omitempty"`
	Size      string `json:"size,omitempty"`
}

func (k keyReq) key() Key {
	return Key{ProductID: k.ProductID, VariantID: k.VariantID, Color: k.Color, Size: k.Size}
}

type quantityReq struct {
	keyReq
	Quantity int `json:"quantity"`
}

func (h *Handlers) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := session.IdentityFromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusUnauthorized, "no identity", nil)
		return
	}

	lines, err := h.Store.Lines(r.Context(), identity)
	if err != nil {
		h.serverError(w, r, "load cart", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, cartView{Items: lines, Total: Total(lines)})
}

func (h *Handlers) Add(w http.ResponseWriter, r *http.Request) {
	identity, ok := session.IdentityFromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusUnauthorized, "no identity", nil)
		return
	}

	var req addReq
	if err := kit.ReadJSON(w, r, maxBodyBytes, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", nil)
		return
	}

	line := Line{
		Key:       Key{ProductID: req.ProductID, VariantID: req.VariantID, Color: req.Color, Size: req.Size},
		Name:      req.Name,
		UnitPrice: req.UnitPrice,
		Quantity:  req.Quantity,
		ImageURL:  req.ImageURL,
	}

	lines, err := h.Store.Add(r.Context(), identity, line)
	if err != nil {
		if errors.Is(err, ErrBadLine) {
			kit.WriteError(w, r, http.StatusBadRequest, "bad cart line", nil)
			return
		}
		h.serverError(w, r, "add line", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, cartView{Items: lines, Total: Total(lines)})
}

func (h *Handlers) SetQuantity(w http.ResponseWriter, r *http.Request) {
	identity, ok := session.IdentityFromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusUnauthorized, "no identity", nil)
		return
	}

	var req quantityReq
	if err := kit.ReadJSON(w, r, maxBodyBytes, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", nil)
		return
	}

	lines, err := h.Store.SetQuantity(r.Context(), identity, req.key(), req.Quantity)
	if err != nil {
		if errors.Is(err, ErrQuantityTooLow) {
			kit.WriteError(w, r, http.StatusBadRequest, "quantity must be at least 1", nil)
			return
		}
		h.serverError(w, r, "set quantity", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, cartView{Items: lines, Total: Total(lines)})
}

func (h *Handlers) Increment(w http.ResponseWriter, r *http.Request) {
	h.step(w, r, h.Store.Increment)
}

func (h *Handlers) Decrement(w http.ResponseWriter, r *http.Request) {
	h.step(w, r, h.Store.Decrement)
}

func (h *Handlers) Remove(w http.ResponseWriter, r *http.Request) {
	h.step(w, r, h.Store.Remove)
}

func (h *Handlers) step(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, identity string, k Key) ([]Line, error),
) {
	identity, ok := session.IdentityFromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusUnauthorized, "no identity", nil)
		return
	}

	var req keyReq
	if err := kit.ReadJSON(w, r, maxBodyBytes, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", nil)
		return
	}

	lines, err := op(r.Context(), identity, req.key())
	if err != nil {
		h.serverError(w, r, "cart mutation", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, cartView{Items: lines, Total: Total(lines)})
}

func (h *Handlers) Clear(w http.ResponseWriter, r *http.Request) {
	identity, ok := session.IdentityFromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusUnauthorized, "no identity", nil)
		return
	}

	if err := h.Store.Clear(r.Context(), identity); err != nil {
		h.serverError(w, r, "clear cart", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, cartView{Items: []Line{}, Total: 0})
}

func (h *Handlers) serverError(w http.ResponseWriter, r *http.Request, op string, err error) {
	if h.Log != nil {
		h.Log.Error(op+" failed", zap.Error(err))
	}
	kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
}
