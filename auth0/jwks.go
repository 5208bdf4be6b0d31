package auth0

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

var (
	// ErrJWKSFetchFailed is returned when the key set cannot be retrieved
	ErrJWKSFetchFailed = errors.New("failed to fetch JWKS")

	// ErrKeyNotFound is returned when no key in the set matches the token's kid
	ErrKeyNotFound = errors.New("signing key not found in JWKS")
)

// JWKS represents the JSON Web Key Set
type JWKS struct {
	Keys []JWK `json:"keys"`
}

// JWK represents a JSON Web Key
type JWK struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	Alg string `json:"alg,omitempty"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// Find returns the key with the given kid after scanning the full set
func (s *JWKS) Find(kid string) (*JWK, bool) {
	if s == nil {
		return nil, false
	}
	var found *JWK
	for i := range s.Keys {
		if s.Keys[i].Kid == kid {
			found = &s.Keys[i]
		}
	}
	return found, found != nil
}

// RSAPublicKey converts the JWK modulus and exponent to an RSA public key
func (k *JWK) RSAPublicKey() (*rsa.PublicKey, error) {
	if k.Kty != "" && k.Kty != "RSA" {
		return nil, fmt.Errorf("unsupported key type: %s", k.Kty)
	}
	if k.N == "" || k.E == "" {
		return nil, errors.New("missing rsa params")
	}

	nBytes, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, fmt.Errorf("failed to decode modulus: %w", err)
	}

	eBytes, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, fmt.Errorf("failed to decode exponent: %w", err)
	}

	e := new(big.Int).SetBytes(eBytes).Int64()
	if e <= 0 || e > int64(^uint32(0)) {
		return nil, errors.New("invalid rsa exponent")
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: int(e),
	}, nil
}

// KeySetFetcher retrieves the identity provider's signing keys
type KeySetFetcher interface {
	FetchKeySet(ctx context.Context) (*JWKS, error)
}

// FetcherConfig holds configuration for HTTPKeySetFetcher
type FetcherConfig struct {
	// URL overrides the well-known endpoint derived from Domain
	URL         string
	Domain      string
	CacheTTL    time.Duration
	HTTPTimeout time.Duration
}

// HTTPKeySetFetcher fetches the JWKS over HTTPS. With a zero CacheTTL
// every call goes to the network.
type HTTPKeySetFetcher struct {
	url        string
	httpClient *http.Client
	group      singleflight.Group

	cacheTTL time.Duration
	cache    *JWKS
	cacheExp time.Time
	cacheMu  sync.RWMutex
	now      func() time.Time
}

// JWKSURL returns the well-known key set endpoint for a tenant domain
func JWKSURL(domain string) string {
	return fmt.Sprintf("https://%s/.well-known/jwks.json", domain)
}

// NewHTTPKeySetFetcher creates a new key set fetcher
func NewHTTPKeySetFetcher(config FetcherConfig) *HTTPKeySetFetcher {
	if config.HTTPTimeout == 0 {
		config.HTTPTimeout = 10 * time.Second
	}
	url := config.URL
	if url == "" {
		url = JWKSURL(config.Domain)
	}

	return &HTTPKeySetFetcher{
		url:        url,
		httpClient: &http.Client{Timeout: config.HTTPTimeout},
		cacheTTL:   config.CacheTTL,
		now:        time.Now,
	}
}

// URL returns the endpoint the fetcher reads from
func (f *HTTPKeySetFetcher) URL() string {
	return f.url
}

// FetchKeySet returns the current key set. Without a cache each call runs
// its own request on the caller's context. With a cache, concurrent misses
// share one request that no single caller can cancel.
func (f *HTTPKeySetFetcher) FetchKeySet(ctx context.Context) (*JWKS, error) {
	if f.cacheTTL <= 0 {
		return f.fetch(ctx)
	}
	if jwks, ok := f.cached(); ok {
		return jwks, nil
	}

	shared := context.WithoutCancel(ctx)
	ch := f.group.DoChan(f.url, func() (interface{}, error) {
		jwks, err := f.fetch(shared)
		if err != nil {
			return nil, err
		}
		f.store(jwks)
		return jwks, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*JWKS), nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrJWKSFetchFailed, ctx.Err())
	}
}

// InvalidateCache drops any cached key set
func (f *HTTPKeySetFetcher) InvalidateCache() {
	f.cacheMu.Lock()
	defer f.cacheMu.Unlock()
	f.cache = nil
	f.cacheExp = time.Time{}
}

func (f *HTTPKeySetFetcher) cached() (*JWKS, bool) {
	if f.cacheTTL <= 0 {
		return nil, false
	}
	f.cacheMu.RLock()
	defer f.cacheMu.RUnlock()
	if f.cache != nil && f.now().Before(f.cacheExp) {
		return f.cache, true
	}
	return nil, false
}

func (f *HTTPKeySetFetcher) store(jwks *JWKS) {
	if f.cacheTTL <= 0 {
		return
	}
	f.cacheMu.Lock()
	f.cache = jwks
	f.cacheExp = f.now().Add(f.cacheTTL)
	f.cacheMu.Unlock()
}

func (f *HTTPKeySetFetcher) fetch(ctx context.Context) (*JWKS, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrJWKSFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status code %d", ErrJWKSFetchFailed, resp.StatusCode)
	}

	var jwks JWKS
	if err := json.NewDecoder(resp.Body).Decode(&jwks); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrJWKSFetchFailed, err)
	}

	return &jwks, nil
}
