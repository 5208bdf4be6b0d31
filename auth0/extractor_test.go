package auth0

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		want     string
		wantKind Kind
		wantDesc string
	}{
		{
			name:   "bearer token",
			header: "Bearer abc.def.ghi",
			want:   "abc.def.ghi",
		},
		{
			name:   "scheme is case-insensitive",
			header: "bEaReR token-value",
			want:   "token-value",
		},
		{
			name:     "missing header",
			header:   "",
			wantKind: KindMissingCredential,
			wantDesc: "Authorization header is expected.",
		},
		{
			name:     "single part",
			header:   "Bearer",
			wantKind: KindMalformedCredential,
			wantDesc: "Authorization header must be in the format Bearer token.",
		},
		{
			name:     "three parts",
			header:   "Bearer token extra",
			wantKind: KindMalformedCredential,
			wantDesc: "Authorization header must be in the format Bearer token.",
		},
		{
			name:     "double space yields three parts",
			header:   "Bearer  token",
			wantKind: KindMalformedCredential,
			wantDesc: "Authorization header must be in the format Bearer token.",
		},
		{
			name:     "wrong scheme",
			header:   "Basic dXNlcjpwYXNz",
			wantKind: KindMalformedCredential,
			wantDesc: "Authorization header must start with Bearer.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractBearerToken(tt.header)
			if tt.wantKind == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
				return
			}

			require.Error(t, err)
			authErr, ok := AsAuthError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantKind, authErr.Kind)
			assert.Equal(t, http.StatusUnauthorized, authErr.StatusCode)
			assert.Equal(t, tt.wantDesc, authErr.Description)
			assert.Empty(t, got)
		})
	}
}

func TestExtractBearerToken_Codes(t *testing.T) {
	_, err := ExtractBearerToken("")
	authErr, _ := AsAuthError(err)
	assert.Equal(t, CodeAuthorizationHeaderMissing, authErr.Code)
	assert.ErrorIs(t, err, ErrMissingCredential)

	_, err = ExtractBearerToken("Token abc")
	authErr, _ = AsAuthError(err)
	assert.Equal(t, CodeInvalidHeader, authErr.Code)
	assert.ErrorIs(t, err, ErrMalformedCredential)
}

func TestTokenFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/drinks-detail", nil)
	req.Header.Set("Authorization", "Bearer opaque")

	token, err := TokenFromRequest(req)
	require.NoError(t, err)
	assert.Equal(t, "opaque", token)

	_, err = TokenFromRequest(httptest.NewRequest(http.MethodGet, "/drinks-detail", nil))
	assert.ErrorIs(t, err, ErrMissingCredential)
}
