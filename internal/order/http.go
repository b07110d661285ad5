package order

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"storefront/internal/session"
	"storefront/pkg/kit"
)

const maxBodyBytes = 1 << 20

type Handlers struct {
	Store *Store
	Log   *zap.Logger
}

func (h *Handlers) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := session.IdentityFromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusUnauthorized, "no identity", nil)
		return
	}

	filter := Status(r.URL.Query().Get("status"))
	if filter != "" && !filter.Valid() {
		kit.WriteError(w, r, http.StatusBadRequest, "unknown status", map[string]any{"status": string(filter)})
		return
	}

	orders, err := h.Store.List(r.Context(), identity, filter)
	if err != nil {
		h.serverError(w, r, "list orders", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, orders)
}

func (h *Handlers) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := session.IdentityFromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusUnauthorized, "no identity", nil)
		return
	}

	id := chi.URLParam(r, "id")
	o, found, err := h.Store.Get(r.Context(), identity, id)
	if err != nil {
		h.serverError(w, r, "get order", err)
		return
	}
	if !found {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
		return
	}
	kit.WriteJSON(w, http.StatusOK, o)
}

func (h *Handlers) Cancel(w http.ResponseWriter, r *http.Request) {
	identity, ok := session.IdentityFromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusUnauthorized, "no identity", nil)
		return
	}

	id := chi.URLParam(r, "id")
	o, changed, err := h.Store.Cancel(r.Context(), identity, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
			return
		}
		h.serverError(w, r, "cancel order", err)
		return
	}
	if !changed && o.Status != StatusCancelled {
		kit.WriteError(w, r, http.StatusConflict, "order is not cancellable", map[string]any{"status": string(o.Status)})
		return
	}
	kit.WriteJSON(w, http.StatusOK, o)
}

type statusReq struct {
	Status Status `json:"status"`
}

// AdminSetStatus drives the fulfillment chain. Only the next forward
// transition is accepted.
func (h *Handlers) AdminSetStatus(w http.ResponseWriter, r *http.Request) {
	var req statusReq
	if err := kit.ReadJSON(w, r, maxBodyBytes, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", nil)
		return
	}
	if !req.Status.Valid() {
		kit.WriteError(w, r, http.StatusBadRequest, "unknown status", map[string]any{"status": string(req.Status)})
		return
	}

	id := chi.URLParam(r, "id")
	o, err := h.Store.Advance(r.Context(), id, req.Status)
	switch {
	case errors.Is(err, ErrNotFound):
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
	case errors.Is(err, ErrBadTransition):
		kit.WriteError(w, r, http.StatusConflict, "illegal transition", map[string]any{
			"from": string(o.Status),
			"to":   string(req.Status),
		})
	case err != nil:
		h.serverError(w, r, "advance order", err)
	default:
		kit.WriteJSON(w, http.StatusOK, o)
	}
}

func (h *Handlers) serverError(w http.ResponseWriter, r *http.Request, op string, err error) {
	if h.Log != nil {
		h.Log.Error(op+" failed", zap.Error(err))
	}
	kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
}
