package auth0

import (
	"context"
	"net/http"

	"github.com/upb/coffee-shop/internal/observability"
	"github.com/upb/coffee-shop/utils"
	"go.uber.org/zap"
)

// TokenVerifier defines the interface for validating bearer tokens
type TokenVerifier interface {
	// Verify validates a token and returns its claims
	Verify(ctx context.Context, token string) (*Claims, error)
}

// ClaimsHandlerFunc is a handler that receives verified claims as its first argument
type ClaimsHandlerFunc func(claims *Claims, w http.ResponseWriter, r *http.Request)

// Guard gates a protected operation behind a required permission
type Guard struct {
	permission        string
	verifier          TokenVerifier
	logger            *zap.Logger
	exposeDiagnostics bool
}

// GuardOption customizes a Guard
type GuardOption func(*Guard)

// WithVerifierDiagnostics makes the guard return the verifier's specific
// error (expired, claims mismatch, unknown key...) instead of Forbidden.
func WithVerifierDiagnostics(enabled bool) GuardOption {
	return func(g *Guard) {
		g.exposeDiagnostics = enabled
	}
}

// NewGuard creates a guard requiring permission
func NewGuard(permission string, verifier TokenVerifier, logger *zap.Logger, opts ...GuardOption) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &Guard{
		permission: permission,
		verifier:   verifier,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Authorize runs extraction, verification and the permission check for r.
// proceed is invoked exactly once with the verified claims on success;
// otherwise the returned error is an *AuthError.
func (g *Guard) Authorize(r *http.Request, proceed func(claims *Claims)) error {
	ctx := r.Context()
	requestID := observability.RequestIDFromContext(ctx)

	token, err := TokenFromRequest(r)
	if err != nil {
		g.logger.Warn("bearer token extraction failed",
			zap.String("request_id", requestID),
			zap.Error(err))
		return err
	}

	claims, err := g.verifier.Verify(ctx, token)
	if err != nil {
		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("required_permission", g.permission),
			zap.Error(err),
		}
		if authErr, ok := AsAuthError(err); ok {
			fields = append(fields,
				zap.String("kind", string(authErr.Kind)),
				zap.String("code", authErr.Code))
		}
		g.logger.Warn("token verification failed", fields...)

		if g.exposeDiagnostics {
			if _, ok := AsAuthError(err); ok {
				return err
			}
		}
		return forbidden(err)
	}

	if err := CheckPermissions(g.permission, claims); err != nil {
		g.logger.Warn("insufficient permissions",
			zap.String("request_id", requestID),
			zap.String("sub", claims.Subject()),
			zap.String("required_permission", g.permission))
		return err
	}

	g.logger.Debug("authorization successful",
		zap.String("request_id", requestID),
		zap.String("sub", claims.Subject()),
		zap.String("required_permission", g.permission))

	proceed(claims)
	return nil
}

// Wrap adapts next into an http.HandlerFunc gated by the guard. Failures
// are written as the JSON error envelope.
func (g *Guard) Wrap(next ClaimsHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := g.Authorize(r, func(claims *Claims) {
			next(claims, w, r)
		})
		if err != nil {
			WriteAuthError(w, err, g.logger)
		}
	}
}

// WriteAuthError writes err using the API's error envelope
func WriteAuthError(w http.ResponseWriter, err error, logger *zap.Logger) {
	authErr, ok := AsAuthError(err)
	if !ok {
		authErr = forbidden(err)
	}
	status := authErr.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}
	if werr := utils.WriteError(w, status, authErr.Description, authErr.Code); werr != nil {
		logger.Error("failed to write authorization error response", zap.Error(werr))
	}
}
