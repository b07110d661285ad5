// Package app assembles the storefront HTTP surface. Stores are
// constructed here and injected explicitly; nothing reaches for ambient
// globals.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"storefront/internal/address"
	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/checkout"
	"storefront/internal/order"
	"storefront/internal/session"
	"storefront/internal/state"
	"storefront/internal/voucher"
	"storefront/pkg/kit"
)

type Deps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	Medium   state.Medium
	Users    session.UserStore
	Vouchers voucher.Store
	Catalog  *catalog.Client
	Address  *address.Client

	JWTSecret string

	MetricsEnabled bool
	MetricsToken   string
}

const (
	loginLimitPerMin    = 5
	registerLimitPerMin = 3
	limitWindow         = time.Minute
	readyTimeout        = time.Second
)

func NewHandler(d Deps) http.Handler {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}

	jwt := session.NewTokenMaker(d.JWTSecret)

	cartStore := cart.NewStore(d.Medium, log)
	orderStore := order.NewStore(d.Medium, log)
	profileStore := session.NewProfileStore(d.Medium, log)

	sessionSrv := &session.Server{Log: log, Users: d.Users, Profiles: profileStore, JWT: jwt}
	cartH := &cart.Handlers{Store: cartStore, Log: log}
	orderH := &order.Handlers{Store: orderStore, Log: log}
	checkoutH := &checkout.Handlers{
		Service: &checkout.Service{Cart: cartStore, Orders: orderStore, Log: log},
		Log:     log,
	}
	catalogH := &catalog.Handlers{Client: d.Catalog, Log: log}
	addressH := address.NewHandlers(d.Address, log)
	voucherH := &voucher.Handlers{Store: d.Vouchers, Log: log, Subtotal: cartStore.Total}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer)
	r.Use(kit.Logging(log))

	if d.Registry != nil {
		metrics := kit.NewMetrics(d.Registry)
		r.Use(metrics.Middleware(d.Service, kit.RoutePattern))
		if d.MetricsEnabled {
			r.With(kit.BearerAuth(d.MetricsToken)).
				Handle("/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))
		}
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), readyTimeout)
		defer cancel()

		if err := d.Medium.Ping(ctx); err != nil {
			log.Warn("readyz failed", zap.Error(err))
			kit.WriteError(w, req, http.StatusServiceUnavailable, "not ready", nil)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	loginLimiter := kit.NewIPRateLimiter(loginLimitPerMin, limitWindow)
	registerLimiter := kit.NewIPRateLimiter(registerLimitPerMin, limitWindow)

	r.Route("/auth", func(rr chi.Router) {
		rr.With(loginLimiter.Middleware).Post("/login", sessionSrv.HandleLogin)
		rr.With(registerLimiter.Middleware).Post("/register", sessionSrv.HandleRegister)
		rr.With(session.RequireAuth(jwt)).Get("/whoami", sessionSrv.HandleWhoAmI)
	})

	// Catalog and address lookups are public reads.
	r.Mount("/api/products", catalogH.Routes())
	r.Mount("/api/address", addressH.Routes())

	// Everything touching cart, order or profile state requires identity.
	r.Group(func(pr chi.Router) {
		pr.Use(session.RequireAuth(jwt))

		pr.Route("/api/cart", func(cr chi.Router) {
			cr.Get("/", cartH.Get)
			cr.Delete("/", cartH.Clear)
			cr.Post("/items", cartH.Add)
			cr.Put("/quantity", cartH.SetQuantity)
			cr.Post("/increment", cartH.Increment)
			cr.Post("/decrement", cartH.Decrement)
			cr.Post("/remove", cartH.Remove)
		})

		pr.Post("/api/checkout", checkoutH.Submit)

		pr.Route("/api/orders", func(or chi.Router) {
			or.Get("/", orderH.List)
			or.Get("/{id}", orderH.Get)
			or.Post("/{id}/cancel", orderH.Cancel)
		})

		pr.Get("/api/profile", sessionSrv.HandleGetProfile)
		pr.Put("/api/profile", sessionSrv.HandleUpdateProfile)
		pr.Put("/api/profile/last-viewed", sessionSrv.HandleSetLastViewed)

		pr.Get("/api/vouchers/available", voucherH.Available)

		pr.Group(func(ar chi.Router) {
			ar.Use(session.RequireAdmin)
			ar.Mount("/api/admin/vouchers", voucherH.AdminRoutes())
			ar.Put("/api/admin/orders/{id}/status", orderH.AdminSetStatus)
		})
	})

	return r
}
