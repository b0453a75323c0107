package middleware

import (
	"context"
	"net/http"
	"slices"
	"strconv"

	"storefront/internal/model"

	"github.com/rs/zerolog"
)

// Headers set by the gateway in front of the API.
const (
	UserIDHeader   = "X-User-ID"
	UserRoleHeader = "X-User-Role"
)

// Role is the authorisation role of the calling principal.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleCustomer   Role = "customer"
)

func (r Role) valid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleCustomer:
		return true
	}
	return false
}

// Principal is the authenticated caller as asserted by the upstream gateway.
type Principal struct {
	UserID int64
	Role   Role
}

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal attached to ctx, if any.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// Authenticate reads the X-User-ID and X-User-Role headers set by the gateway.
// Requests without them pass through anonymously; malformed values are rejected.
func Authenticate(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rawID := r.Header.Get(UserIDHeader)
			rawRole := r.Header.Get(UserRoleHeader)
			if rawID == "" && rawRole == "" {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := strconv.ParseInt(rawID, 10, 64)
			role := Role(rawRole)
			if err != nil || userID < 1 || !role.valid() {
				logger.Warn().
					Str("path", r.URL.Path).
					Str("user_id", rawID).
					Str("role", rawRole).
					Msg("invalid principal headers")
				writeError(w, r, http.StatusUnauthorized, model.ErrCodeUnauthorised, "invalid principal")
				return
			}

			ctx := WithPrincipal(r.Context(), Principal{UserID: userID, Role: role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects anonymous requests with 401 and principals outside
// roles with 403. With no roles any authenticated principal is accepted.
func RequireRole(roles ...Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				writeError(w, r, http.StatusUnauthorized, model.ErrCodeUnauthorised, "authentication required")
				return
			}
			if len(roles) > 0 && !slices.Contains(roles, p.Role) {
				writeError(w, r, http.StatusForbidden, model.ErrCodeForbidden, "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
