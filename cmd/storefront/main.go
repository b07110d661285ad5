package main

import (
	"context"
	"database/sql"
	"os"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"storefront/internal/address"
	"storefront/internal/app"
	"storefront/internal/catalog"
	"storefront/internal/session"
	"storefront/internal/state"
	"storefront/internal/voucher"
	"storefront/pkg/kit"
)

func main() {
	_ = godotenv.Load()

	service := "storefront"
	log := kit.NewLogger(service, getenv("LOG_LEVEL", "info"))
	defer func() { _ = log.Sync() }()

	port := getenv("PORT", "8080")
	jwtSecret := getenv("JWT_SECRET", "")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	catalogURL := getenv("CATALOG_URL", "http://localhost:8081/api")
	addressURL := getenv("ADDRESS_URL", "https://provinces.open-api.vn/api")

	var (
		medium   state.Medium
		users    session.UserStore
		vouchers voucher.Store
	)

	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		db, err := sql.Open("pgx", dsn)
		if err != nil {
			log.Fatal("open database", zap.Error(err))
		}
		db.SetMaxOpenConns(10)
		db.SetConnMaxIdleTime(5 * time.Minute)

		medium = state.NewPostgresMedium(db)
		users = session.NewPostgresUserStore(db)
		vouchers = voucher.NewPostgresStore(db)
		log.Info("using postgres stores")
	} else {
		medium = state.NewMemMedium()
		users = session.NewMemUserStore()
		vouchers = voucher.NewMemStore()
		log.Info("using in-memory stores")
	}

	seedAdmin(log, users)

	h := app.NewHandler(app.Deps{
		Log:      log,
		Service:  service,
		Registry: prometheus.NewRegistry(),

		Medium:   medium,
		Users:    users,
		Vouchers: vouchers,
		Catalog:  catalog.NewClient(catalogURL),
		Address:  address.NewClient(addressURL),

		JWTSecret: jwtSecret,

		MetricsEnabled: getenv("METRICS_ENABLED", "") == "true",
		MetricsToken:   getenv("METRICS_TOKEN", ""),
	})

	if err := kit.Run(":"+port, h, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

// seedAdmin provisions the admin account from env on first boot. An
// existing account is left untouched.
func seedAdmin(log *zap.Logger, users session.UserStore) {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := users.Create(ctx, email, password, session.RoleAdmin, "u_"+uuid.NewString())
	switch err {
	case nil:
		log.Info("admin account seeded", zap.String("email", email))
	case session.ErrEmailExists:
	default:
		log.Warn("admin seed failed", zap.Error(err))
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
