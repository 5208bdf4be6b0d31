package auth0

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWKSURL(t *testing.T) {
	assert.Equal(t, "https://dev-tenant.us.auth0.com/.well-known/jwks.json", JWKSURL(testDomain))

	f := NewHTTPKeySetFetcher(FetcherConfig{Domain: testDomain})
	assert.Equal(t, JWKSURL(testDomain), f.URL())
	assert.Equal(t, 10*time.Second, f.httpClient.Timeout)
}

func TestFetchKeySet(t *testing.T) {
	key := generateTestKeyPair(t)
	server := newJWKSServer(t, publicJWK(&key.PublicKey, "kid-1"))

	fetcher := NewHTTPKeySetFetcher(FetcherConfig{URL: server.URL, HTTPTimeout: 5 * time.Second})

	jwks, err := fetcher.FetchKeySet(context.Background())
	require.NoError(t, err)
	require.Len(t, jwks.Keys, 1)
	assert.Equal(t, "kid-1", jwks.Keys[0].Kid)
	assert.Equal(t, "RSA", jwks.Keys[0].Kty)
	assert.Equal(t, "sig", jwks.Keys[0].Use)
}

func TestFetchKeySet_NoCacheFetchesEveryTime(t *testing.T) {
	key := generateTestKeyPair(t)
	server := newJWKSServer(t, publicJWK(&key.PublicKey, "kid-1"))

	fetcher := NewHTTPKeySetFetcher(FetcherConfig{URL: server.URL})

	for i := 0; i < 3; i++ {
		_, err := fetcher.FetchKeySet(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), server.hits.Load())
}

func TestFetchKeySet_Cache(t *testing.T) {
	key := generateTestKeyPair(t)
	server := newJWKSServer(t, publicJWK(&key.PublicKey, "kid-1"))

	now := time.Now()
	fetcher := NewHTTPKeySetFetcher(FetcherConfig{URL: server.URL, CacheTTL: time.Minute})
	fetcher.now = func() time.Time { return now }

	first, err := fetcher.FetchKeySet(context.Background())
	require.NoError(t, err)
	second, err := fetcher.FetchKeySet(context.Background())
	require.NoError(t, err)

	assert.True(t, first == second)
	assert.Equal(t, int32(1), server.hits.Load())

	// Expired cache goes back to the network
	now = now.Add(2 * time.Minute)
	_, err = fetcher.FetchKeySet(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), server.hits.Load())

	fetcher.InvalidateCache()
	_, err = fetcher.FetchKeySet(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(3), server.hits.Load())
}

func TestFetchKeySet_Concurrent(t *testing.T) {
	key := generateTestKeyPair(t)
	server := newJWKSServer(t, publicJWK(&key.PublicKey, "kid-1"))

	fetcher := NewHTTPKeySetFetcher(FetcherConfig{URL: server.URL, CacheTTL: time.Hour})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			jwks, err := fetcher.FetchKeySet(context.Background())
			assert.NoError(t, err)
			assert.Len(t, jwks.Keys, 1)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, server.hits.Load(), int32(10))
	assert.GreaterOrEqual(t, server.hits.Load(), int32(1))
}

func TestFetchKeySet_CallerCancellationIsIsolated(t *testing.T) {
	key := generateTestKeyPair(t)
	body, err := json.Marshal(JWKS{Keys: []JWK{publicJWK(&key.PublicKey, "kid-1")}})
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}))
	defer server.Close()

	tests := []struct {
		name     string
		cacheTTL time.Duration
	}{
		{"no cache", 0},
		{"cache", time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := NewHTTPKeySetFetcher(FetcherConfig{URL: server.URL, CacheTTL: tt.cacheTTL, HTTPTimeout: 5 * time.Second})

			ctxA, cancelA := context.WithCancel(context.Background())
			defer cancelA()

			var wg sync.WaitGroup
			var errA, errB error
			var jwksB *JWKS

			wg.Add(2)
			go func() {
				defer wg.Done()
				_, errA = fetcher.FetchKeySet(ctxA)
			}()
			go func() {
				defer wg.Done()
				time.Sleep(20 * time.Millisecond)
				jwksB, errB = fetcher.FetchKeySet(context.Background())
			}()

			time.Sleep(50 * time.Millisecond)
			cancelA()
			wg.Wait()

			assert.ErrorIs(t, errA, ErrJWKSFetchFailed)
			require.NoError(t, errB)
			require.Len(t, jwksB.Keys, 1)
			assert.Equal(t, "kid-1", jwksB.Keys[0].Kid)
		})
	}
}

func TestFetchKeySet_Errors(t *testing.T) {
	t.Run("non-200 status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		_, err := NewHTTPKeySetFetcher(FetcherConfig{URL: server.URL}).FetchKeySet(context.Background())
		assert.ErrorIs(t, err, ErrJWKSFetchFailed)
	})

	t.Run("invalid body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("not json"))
		}))
		defer server.Close()

		_, err := NewHTTPKeySetFetcher(FetcherConfig{URL: server.URL}).FetchKeySet(context.Background())
		assert.ErrorIs(t, err, ErrJWKSFetchFailed)
	})

	t.Run("timeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer server.Close()

		fetcher := NewHTTPKeySetFetcher(FetcherConfig{URL: server.URL, HTTPTimeout: 20 * time.Millisecond})
		_, err := fetcher.FetchKeySet(context.Background())
		assert.ErrorIs(t, err, ErrJWKSFetchFailed)
	})
}

func TestJWKS_Find(t *testing.T) {
	jwks := &JWKS{Keys: []JWK{{Kid: "a", N: "first"}, {Kid: "b"}, {Kid: "a", N: "last"}}}

	key, ok := jwks.Find("a")
	require.True(t, ok)
	assert.Equal(t, "last", key.N)

	_, ok = jwks.Find("missing")
	assert.False(t, ok)

	var empty *JWKS
	_, ok = empty.Find("a")
	assert.False(t, ok)
}

func TestJWK_RSAPublicKey(t *testing.T) {
	key := generateTestKeyPair(t)

	t.Run("round trip", func(t *testing.T) {
		jwk := publicJWK(&key.PublicKey, "kid-1")
		pub, err := jwk.RSAPublicKey()
		require.NoError(t, err)
		assert.Equal(t, 0, key.PublicKey.N.Cmp(pub.N))
		assert.Equal(t, key.PublicKey.E, pub.E)
	})

	t.Run("wrong key type", func(t *testing.T) {
		jwk := publicJWK(&key.PublicKey, "kid-1")
		jwk.Kty = "EC"
		_, err := jwk.RSAPublicKey()
		assert.Error(t, err)
	})

	t.Run("missing params", func(t *testing.T) {
		_, err := (&JWK{Kty: "RSA"}).RSAPublicKey()
		assert.Error(t, err)
	})

	t.Run("bad encoding", func(t *testing.T) {
		_, err := (&JWK{Kty: "RSA", N: "!!!", E: "AQAB"}).RSAPublicKey()
		assert.Error(t, err)
	})
}
