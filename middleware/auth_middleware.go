package middleware

import (
	"net/http"

	"github.com/upb/coffee-shop/auth0"
	"go.uber.org/zap"
)

// AuthMiddleware builds permission gates for chi routes
type AuthMiddleware struct {
	verifier auth0.TokenVerifier
	logger   *zap.Logger
	opts     []auth0.GuardOption
}

// NewAuthMiddleware creates a new authentication middleware. opts are applied
// to every guard it builds.
func NewAuthMiddleware(verifier auth0.TokenVerifier, logger *zap.Logger, opts ...auth0.GuardOption) *AuthMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthMiddleware{
		verifier: verifier,
		logger:   logger,
		opts:     opts,
	}
}

// Guard returns the guard for permission
func (m *AuthMiddleware) Guard(permission string) *auth0.Guard {
	return auth0.NewGuard(permission, m.verifier, m.logger, m.opts...)
}

// RequirePermission only lets requests through whose bearer token verifies
// and grants permission. The claims are stored on the request context.
func (m *AuthMiddleware) RequirePermission(permission string) func(http.Handler) http.Handler {
	return RequireGuard(m.Guard(permission))
}

// RequireGuard adapts a guard into chi middleware
func RequireGuard(guard *auth0.Guard) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return guard.Wrap(func(claims *auth0.Claims, w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}
