package auth0

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultAlgorithms is the fixed asymmetric algorithm list
var DefaultAlgorithms = []string{"RS256"}

// Config holds the identity provider settings used to verify tokens
type Config struct {
	// Domain is the tenant domain, e.g. "dev-tenant.us.auth0.com"
	Domain     string
	Audience   string
	Algorithms []string
	// Leeway tolerates clock skew when checking exp, nbf and iat
	Leeway time.Duration
}

// Issuer returns the expected iss claim for the configured domain
func (c Config) Issuer() string {
	return fmt.Sprintf("https://%s/", c.Domain)
}

// Validate checks that the configuration can verify tokens
func (c Config) Validate() error {
	if c.Domain == "" {
		return errors.New("auth0 domain is required")
	}
	if c.Audience == "" {
		return errors.New("auth0 audience is required")
	}
	for _, alg := range c.Algorithms {
		if !strings.HasPrefix(alg, "RS") {
			return fmt.Errorf("unsupported signing algorithm %q", alg)
		}
	}
	return nil
}

// Verifier validates bearer tokens against the provider's key set
type Verifier struct {
	config  Config
	fetcher KeySetFetcher
	now     func() time.Time
}

// VerifierOption customizes a Verifier
type VerifierOption func(*Verifier)

// WithTimeFunc sets the clock used for exp/nbf/iat checks
func WithTimeFunc(now func() time.Time) VerifierOption {
	return func(v *Verifier) {
		v.now = now
	}
}

// NewVerifier creates a new token verifier
func NewVerifier(config Config, fetcher KeySetFetcher, opts ...VerifierOption) (*Verifier, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if fetcher == nil {
		return nil, errors.New("key set fetcher is required")
	}
	if len(config.Algorithms) == 0 {
		config.Algorithms = DefaultAlgorithms
	}

	v := &Verifier{
		config:  config,
		fetcher: fetcher,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Verify checks the token's signature, expiry, audience and issuer and
// returns the verified claims. Every failure is an *AuthError.
func (v *Verifier) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	kid, err := v.keyID(tokenString)
	if err != nil {
		return nil, err
	}

	jwks, err := v.fetcher.FetchKeySet(ctx)
	if err != nil {
		return nil, unknownSigningKey(err)
	}

	jwk, ok := jwks.Find(kid)
	if !ok {
		return nil, unknownSigningKey(fmt.Errorf("%w: kid %s", ErrKeyNotFound, kid))
	}

	publicKey, err := jwk.RSAPublicKey()
	if err != nil {
		return nil, unparseableToken(fmt.Errorf("failed to convert JWK to RSA public key: %w", err))
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods(v.config.Algorithms),
		jwt.WithAudience(v.config.Audience),
		jwt.WithIssuer(v.config.Issuer()),
		jwt.WithLeeway(v.config.Leeway),
		jwt.WithTimeFunc(v.now),
	)

	claims := jwt.MapClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return publicKey, nil
	})
	if err != nil {
		return nil, classifyParseError(err)
	}
	if !token.Valid {
		return nil, unparseableToken(errors.New("token is not valid"))
	}

	return newVerifiedClaims(claims), nil
}

// keyID reads the kid from the token header without verifying anything
func (v *Verifier) keyID(tokenString string) (string, error) {
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return "", unparseableToken(err)
	}

	kid, ok := token.Header["kid"].(string)
	if !ok || kid == "" {
		return "", malformedCredential("Authorization malformed.")
	}
	return kid, nil
}

// classifyParseError maps golang-jwt errors to the verifier's error kinds.
// Expiry wins over other claim failures.
func classifyParseError(err error) *AuthError {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return expiredToken(err)
	case errors.Is(err, jwt.ErrTokenInvalidClaims),
		errors.Is(err, jwt.ErrTokenInvalidAudience),
		errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return claimsMismatch(err)
	default:
		return unparseableToken(err)
	}
}
