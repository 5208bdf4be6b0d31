package middleware

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"github.com/upb/coffee-shop/auth0"
)

const (
	testDomain   = "dev-tenant.us.auth0.com"
	testAudience = "coffee_shop_api"
	testKid      = "mw-key"
)

// verifiedClaims signs a token for subject and runs it through a real
// verifier backed by a local key set server.
func verifiedClaims(t *testing.T, subject string, permissions ...string) *auth0.Claims {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	jwks := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(auth0.JWKS{Keys: []auth0.JWK{{
			Kid: testKid,
			Kty: "RSA",
			Use: "sig",
			N:   base64.RawURLEncoding.EncodeToString(key.PublicKey.N.Bytes()),
			E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.PublicKey.E)).Bytes()),
		}}})
	}))
	t.Cleanup(jwks.Close)

	verifier, err := auth0.NewVerifier(
		auth0.Config{Domain: testDomain, Audience: testAudience},
		auth0.NewHTTPKeySetFetcher(auth0.FetcherConfig{URL: jwks.URL}),
	)
	require.NoError(t, err)

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"iss":         "https://" + testDomain + "/",
		"sub":         subject,
		"aud":         testAudience,
		"iat":         now.Unix(),
		"exp":         now.Add(time.Hour).Unix(),
		"permissions": permissions,
	})
	token.Header["kid"] = testKid
	signed, err := token.SignedString(key)
	require.NoError(t, err)

	claims, err := verifier.Verify(context.Background(), signed)
	require.NoError(t, err)
	return claims
}
