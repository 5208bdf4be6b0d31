package auth0

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const (
	testDomain   = "dev-tenant.us.auth0.com"
	testAudience = "coffee_shop_api"
)

// Test helper to generate RSA key pair
func generateTestKeyPair(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return privateKey
}

func publicJWK(publicKey *rsa.PublicKey, kid string) JWK {
	return JWK{
		Kid: kid,
		Kty: "RSA",
		Alg: "RS256",
		Use: "sig",
		N:   base64.RawURLEncoding.EncodeToString(publicKey.N.Bytes()),
		E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(publicKey.E)).Bytes()),
	}
}

// jwksServer serves a fixed key set and counts requests
type jwksServer struct {
	*httptest.Server
	hits atomic.Int32
}

func newJWKSServer(t *testing.T, keys ...JWK) *jwksServer {
	t.Helper()
	s := &jwksServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(JWKS{Keys: keys})
	}))
	t.Cleanup(s.Close)
	return s
}

// staticFetcher returns a fixed key set or error
type staticFetcher struct {
	jwks *JWKS
	err  error
}

func (f *staticFetcher) FetchKeySet(context.Context) (*JWKS, error) {
	return f.jwks, f.err
}

func validClaims(now time.Time) jwt.MapClaims {
	return jwt.MapClaims{
		"iss":         "https://" + testDomain + "/",
		"sub":         "auth0|barista",
		"aud":         testAudience,
		"iat":         now.Unix(),
		"exp":         now.Add(time.Hour).Unix(),
		"permissions": []string{"get:drinks-detail"},
	}
}

func signToken(t *testing.T, privateKey *rsa.PrivateKey, kid string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if kid != "" {
		token.Header["kid"] = kid
	}
	tokenString, err := token.SignedString(privateKey)
	require.NoError(t, err)
	return tokenString
}

func newTestVerifier(t *testing.T, fetcher KeySetFetcher, opts ...VerifierOption) *Verifier {
	t.Helper()
	v, err := NewVerifier(Config{Domain: testDomain, Audience: testAudience}, fetcher, opts...)
	require.NoError(t, err)
	return v
}
