package address

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"storefront/pkg/kit"
)

// Handlers serves the cascading address lookups. It keeps the last good
// result per level so a lookup failure degrades to something usable, and
// uses Latest guards so an out-of-order response never overwrites the
// cache for a newer selection.
type Handlers struct {
	Client *Client
	Log    *zap.Logger

	districtSeq Latest
	wardSeq     Latest

	mu            sync.Mutex
	lastProvinces []Unit
	lastDistricts map[int][]Unit
	lastWards     map[int][]Unit
}

func NewHandlers(c *Client, log *zap.Logger) *Handlers {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handlers{
		Client:        c,
		Log:           log,
		lastDistricts: map[int][]Unit{},
		lastWards:     map[int][]Unit{},
	}
}

func (h *Handlers) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/provinces", h.provinces)
	r.Get("/provinces/{code}/districts", h.districts)
	r.Get("/districts/{code}/wards", h.wards)
	return r
}

func (h *Handlers) provinces(w http.ResponseWriter, r *http.Request) {
	units, err := h.Client.Provinces(r.Context())
	if err != nil {
		h.Log.Warn("province lookup degraded", zap.Error(err))
		h.mu.Lock()
		units = h.lastProvinces
		h.mu.Unlock()
		kit.WriteJSON(w, http.StatusOK, nonNil(units))
		return
	}

	h.mu.Lock()
	h.lastProvinces = units
	h.mu.Unlock()
	kit.WriteJSON(w, http.StatusOK, nonNil(units))
}

func (h *Handlers) districts(w http.ResponseWriter, r *http.Request) {
	code, ok := parseCode(w, r)
	if !ok {
		return
	}

	ticket := h.districtSeq.Ticket()
	units, err := h.Client.Districts(r.Context(), code)

	if err != nil {
		h.Log.Warn("district lookup degraded", zap.Int("province", code), zap.Error(err))
		h.mu.Lock()
		units = h.lastDistricts[code]
		h.mu.Unlock()
		kit.WriteJSON(w, http.StatusOK, nonNil(units))
		return
	}

	// A response that resolved after a newer district request must not
	// replace the fresher cache entry.
	if h.districtSeq.Current(ticket) {
		h.mu.Lock()
		h.lastDistricts[code] = units
		h.mu.Unlock()
	}
	kit.WriteJSON(w, http.StatusOK, nonNil(units))
}

func (h *Handlers) wards(w http.ResponseWriter, r *http.Request) {
	code, ok := parseCode(w, r)
	if !ok {
		return
	}

	ticket := h.wardSeq.Ticket()
	units, err := h.Client.Wards(r.Context(), code)

	if err != nil {
		h.Log.Warn("ward lookup degraded", zap.Int("district", code), zap.Error(err))
		h.mu.Lock()
		units = h.lastWards[code]
		h.mu.Unlock()
		kit.WriteJSON(w, http.StatusOK, nonNil(units))
		return
	}

	if h.wardSeq.Current(ticket) {
		h.mu.Lock()
		h.lastWards[code] = units
		h.mu.Unlock()
	}
	kit.WriteJSON(w, http.StatusOK, nonNil(units))
}

func parseCode(w http.ResponseWriter, r *http.Request) (int, bool) {
	code, err := strconv.Atoi(chi.URLParam(r, "code"))
	if err != nil || code <= 0 {
		kit.WriteError(w, r, http.StatusBadRequest, "bad code", nil)
		return 0, false
	}
	return code, true
}

func nonNil(units []Unit) []Unit {
	if units == nil {
		return []Unit{}
	}
	return units
}
