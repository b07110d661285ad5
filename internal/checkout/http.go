package checkout

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"storefront/internal/session"
	"storefront/pkg/kit"
)

const maxBodyBytes = 1 << 20

type Handlers struct {
	Service *Service
	Log     *zap.Logger
}

func (h *Handlers) Submit(w http.ResponseWriter, r *http.Request) {
	identity, ok := session.IdentityFromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusUnauthorized, "no identity", nil)
		return
	}

	var form Form
	if err := kit.ReadJSON(w, r, maxBodyBytes, &form); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", nil)
		return
	}

	o, err := h.Service.Submit(r.Context(), identity, form)
	if err != nil {
		var ve *ValidationError
		switch {
		case errors.Is(err, ErrEmptyCart):
			kit.WriteError(w, r, http.StatusConflict, "cart is empty", nil)
		case errors.As(err, &ve):
			kit.WriteError(w, r, http.StatusUnprocessableEntity, "invalid form", ve.Fields)
		default:
			if h.Log != nil {
				h.Log.Error("checkout failed", zap.Error(err))
			}
			kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		}
		return
	}

	kit.WriteJSON(w, http.StatusCreated, o)
}
