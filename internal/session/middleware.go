package session

import (
	"context"
	"net/http"
	"strings"

	"storefront/pkg/kit"
)

type ctxKey string

const identityKey ctxKey = "identity"

type Identity struct {
	UserID string
	Email  string
	Role   string
}

func identityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// IdentityFromContext returns the authenticated user ID. Cart and order
// state is keyed by this value.
func IdentityFromContext(ctx context.Context) (string, bool) {
	id, ok := identityFrom(ctx)
	return id.UserID, ok
}

func RoleFromContext(ctx context.Context) (string, bool) {
	id, ok := identityFrom(ctx)
	return id.Role, ok
}

// RequireAuth rejects requests without a valid bearer token. Cart and order
// mutation requires a signed-in identity; there are no guest carts.
func RequireAuth(jwt *TokenMaker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := r.Header.Get("Authorization")
			if !strings.HasPrefix(authz, "Bearer ") {
				kit.WriteError(w, r, http.StatusUnauthorized, "missing token", nil)
				return
			}

			claims, err := jwt.Parse(strings.TrimPrefix(authz, "Bearer "))
			if err != nil || claims.UserID == "" {
				kit.WriteError(w, r, http.StatusUnauthorized, "invalid token", nil)
				return
			}

			id := Identity{UserID: claims.UserID, Email: claims.Email, Role: claims.Role}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey, id)))
		})
	}
}

// RequireAdmin gates the admin panel. Must run inside RequireAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, ok := RoleFromContext(r.Context())
		if !ok || role != RoleAdmin {
			kit.WriteError(w, r, http.StatusForbidden, "admin only", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
