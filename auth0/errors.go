package auth0

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an authorization failure
type Kind string

const (
	KindMissingCredential   Kind = "missing_credential"
	KindMalformedCredential Kind = "malformed_credential"
	KindUnknownSigningKey   Kind = "unknown_signing_key"
	KindExpiredToken        Kind = "expired_token"
	KindClaimsMismatch      Kind = "claims_mismatch"
	KindUnparseableToken    Kind = "unparseable_token"
	KindForbidden           Kind = "forbidden"
)

// Error codes surfaced to API callers
const (
	CodeAuthorizationHeaderMissing = "authorization_header_missing"
	CodeInvalidHeader              = "invalid_header"
	CodeTokenExpired               = "token_expired"
	CodeInvalidClaims              = "invalid_claims"
	CodeForbidden                  = "forbidden"
)

var (
	// ErrMissingCredential is matched by errors carrying KindMissingCredential
	ErrMissingCredential = &AuthError{Kind: KindMissingCredential}

	// ErrMalformedCredential is matched by errors carrying KindMalformedCredential
	ErrMalformedCredential = &AuthError{Kind: KindMalformedCredential}

	// ErrUnknownSigningKey is matched by errors carrying KindUnknownSigningKey
	ErrUnknownSigningKey = &AuthError{Kind: KindUnknownSigningKey}

	// ErrExpiredToken is matched by errors carrying KindExpiredToken
	ErrExpiredToken = &AuthError{Kind: KindExpiredToken}

	// ErrClaimsMismatch is matched by errors carrying KindClaimsMismatch
	ErrClaimsMismatch = &AuthError{Kind: KindClaimsMismatch}

	// ErrUnparseableToken is matched by errors carrying KindUnparseableToken
	ErrUnparseableToken = &AuthError{Kind: KindUnparseableToken}

	// ErrForbidden is matched by errors carrying KindForbidden
	ErrForbidden = &AuthError{Kind: KindForbidden}
)

// AuthError is returned by every stage of the authorization pipeline.
// It carries a machine-readable code and the HTTP status to surface.
type AuthError struct {
	Kind        Kind
	Code        string
	Description string
	StatusCode  int
	Err         error
}

// Error implements the error interface
func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Description, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// Unwrap implements errors.Unwrap
func (e *AuthError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an AuthError of the same kind
func (e *AuthError) Is(target error) bool {
	t, ok := target.(*AuthError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newAuthError(kind Kind, code, description string, status int, err error) *AuthError {
	return &AuthError{
		Kind:        kind,
		Code:        code,
		Description: description,
		StatusCode:  status,
		Err:         err,
	}
}

func missingCredential() *AuthError {
	return newAuthError(KindMissingCredential, CodeAuthorizationHeaderMissing,
		"Authorization header is expected.", http.StatusUnauthorized, nil)
}

func malformedCredential(description string) *AuthError {
	return newAuthError(KindMalformedCredential, CodeInvalidHeader,
		description, http.StatusUnauthorized, nil)
}

func unknownSigningKey(err error) *AuthError {
	return newAuthError(KindUnknownSigningKey, CodeInvalidHeader,
		"Unable to find the appropriate key.", http.StatusBadRequest, err)
}

func expiredToken(err error) *AuthError {
	return newAuthError(KindExpiredToken, CodeTokenExpired,
		"Token expired.", http.StatusUnauthorized, err)
}

func claimsMismatch(err error) *AuthError {
	return newAuthError(KindClaimsMismatch, CodeInvalidClaims,
		"Incorrect claims. Please, check the audience and issuer.", http.StatusUnauthorized, err)
}

func unparseableToken(err error) *AuthError {
	return newAuthError(KindUnparseableToken, CodeInvalidHeader,
		"Unable to parse authentication token.", http.StatusBadRequest, err)
}

func forbidden(err error) *AuthError {
	return newAuthError(KindForbidden, CodeForbidden,
		"Forbidden", http.StatusForbidden, err)
}

// AsAuthError extracts an AuthError from err
func AsAuthError(err error) (*AuthError, bool) {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr, true
	}
	return nil, false
}

// StatusCode returns the HTTP status for err, or 500 when err is not an AuthError
func StatusCode(err error) int {
	if authErr, ok := AsAuthError(err); ok && authErr.StatusCode != 0 {
		return authErr.StatusCode
	}
	return http.StatusInternalServerError
}
