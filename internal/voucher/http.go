package voucher

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront/internal/session"
	"storefront/pkg/kit"
)

const maxBodyBytes = 1 << 20

// SubtotalFunc supplies the identity's current cart total so voucher
// availability can be judged against it.
type SubtotalFunc func(ctx context.Context, identity string) (int64, error)

type Handlers struct {
	Store    Store
	Log      *zap.Logger
	Subtotal SubtotalFunc
}

type availableView struct {
	Voucher
	DiscountForCart int64 `json:"discount_for_cart"`
	Usable          bool  `json:"usable"`
}

// Available lists active vouchers annotated with their value against the
// caller's current cart.
func (h *Handlers) Available(w http.ResponseWriter, r *http.Request) {
	identity, ok := session.IdentityFromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusUnauthorized, "no identity", nil)
		return
	}

	subtotal, err := h.Subtotal(r.Context(), identity)
	if err != nil {
		h.serverError(w, r, "cart subtotal", err)
		return
	}

	vouchers, err := h.Store.List(r.Context())
	if err != nil {
		h.serverError(w, r, "list vouchers", err)
		return
	}

	now := time.Now()
	out := make([]availableView, 0, len(vouchers))
	for _, v := range vouchers {
		if !v.Active {
			continue
		}
		out = append(out, availableView{
			Voucher:         v,
			DiscountForCart: v.Discount(subtotal),
			Usable:          v.UsableAt(now, subtotal),
		})
	}
	kit.WriteJSON(w, http.StatusOK, out)
}

// AdminRoutes is the voucher admin panel. Mounted behind the admin-role
// middleware.
func (h *Handlers) AdminRoutes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.adminList)
	r.Post("/", h.adminCreate)
	r.Put("/{id}", h.adminUpdate)
	r.Delete("/{id}", h.adminDelete)
	r.Put("/{id}/toggle", h.adminToggle)
	return r
}

func (h *Handlers) adminList(w http.ResponseWriter, r *http.Request) {
	vouchers, err := h.Store.List(r.Context())
	if err != nil {
		h.serverError(w, r, "list vouchers", err)
		return
	}
	if vouchers == nil {
		vouchers = []Voucher{}
	}
	kit.WriteJSON(w, http.StatusOK, vouchers)
}

type voucherReq struct {
	Code          string    `json:"code"`
	Type          Type      `json:"type"`
	Amount        int64     `json:"amount"`
	MinOrderValue int64     `json:"min_order_value,omitempty"`
	MaxDiscount   int64     `json:"max_discount,omitempty"`
	StartAt       time.Time `json:"start_at"`
	EndAt         time.Time `json:"end_at"`
	Active        *bool     `json:"active,omitempty"`
}

func (req voucherReq) validate() (string, bool) {
	if req.Code == "" {
		return "code required", false
	}
	if !req.Type.Valid() {
		return "type must be percentage or fixed", false
	}
	if req.Amount <= 0 {
		return "amount must be positive", false
	}
	if req.Type == TypePercentage && req.Amount > 100 {
		return "percentage cannot exceed 100", false
	}
	if !req.EndAt.IsZero() && !req.StartAt.IsZero() && req.EndAt.Before(req.StartAt) {
		return "end_at before start_at", false
	}
	return "", true
}

func (h *Handlers) adminCreate(w http.ResponseWriter, r *http.Request) {
	var req voucherReq
	if err := kit.ReadJSON(w, r, maxBodyBytes, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", nil)
		return
	}
	if msg, ok := req.validate(); !ok {
		kit.WriteError(w, r, http.StatusBadRequest, msg, nil)
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	v := Voucher{
		ID:            "vch_" + uuid.NewString(),
		Code:          req.Code,
		Type:          req.Type,
		Amount:        req.Amount,
		MinOrderValue: req.MinOrderValue,
		MaxDiscount:   req.MaxDiscount,
		StartAt:       req.StartAt,
		EndAt:         req.EndAt,
		Active:        active,
	}

	if err := h.Store.Create(r.Context(), v); err != nil {
		if err == ErrCodeExists {
			kit.WriteError(w, r, http.StatusConflict, err.Error(), map[string]any{"code": v.Code})
			return
		}
		h.serverError(w, r, "create voucher", err)
		return
	}
	kit.WriteJSON(w, http.StatusCreated, v)
}

func (h *Handlers) adminUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req voucherReq
	if err := kit.ReadJSON(w, r, maxBodyBytes, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", nil)
		return
	}
	if msg, ok := req.validate(); !ok {
		kit.WriteError(w, r, http.StatusBadRequest, msg, nil)
		return
	}

	existing, found, err := h.Store.Get(r.Context(), id)
	if err != nil {
		h.serverError(w, r, "get voucher", err)
		return
	}
	if !found {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
		return
	}

	v := Voucher{
		ID:            id,
		Code:          req.Code,
		Type:          req.Type,
		Amount:        req.Amount,
		MinOrderValue: req.MinOrderValue,
		MaxDiscount:   req.MaxDiscount,
		StartAt:       req.StartAt,
		EndAt:         req.EndAt,
		Active:        existing.Active,
	}
	if req.Active != nil {
		v.Active = *req.Active
	}

	if _, err := h.Store.Update(r.Context(), v); err != nil {
		h.serverError(w, r, "update voucher", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, v)
}

func (h *Handlers) adminDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	found, err := h.Store.Delete(r.Context(), id)
	if err != nil {
		h.serverError(w, r, "delete voucher", err)
		return
	}
	if !found {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) adminToggle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	v, found, err := h.Store.Toggle(r.Context(), id)
	if err != nil {
		h.serverError(w, r, "toggle voucher", err)
		return
	}
	if !found {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
		return
	}
	kit.WriteJSON(w, http.StatusOK, v)
}

func (h *Handlers) serverError(w http.ResponseWriter, r *http.Request, op string, err error) {
	if h.Log != nil {
		h.Log.Error(op+" failed", zap.Error(err))
	}
	kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
}
