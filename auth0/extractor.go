package auth0

import (
	"net/http"
	"strings"
)

// AuthorizationHeader is the request header carrying the bearer credential
const AuthorizationHeader = "Authorization"

// ExtractBearerToken returns the token from an Authorization header value.
// An empty value is treated as an absent header.
func ExtractBearerToken(header string) (string, error) {
	if header == "" {
		return "", missingCredential()
	}

	parts := strings.Split(header, " ")
	if len(parts) != 2 {
		return "", malformedCredential("Authorization header must be in the format Bearer token.")
	}

	if strings.ToLower(parts[0]) != "bearer" {
		return "", malformedCredential("Authorization header must start with Bearer.")
	}

	return parts[1], nil
}

// TokenFromRequest extracts the bearer token from the request's Authorization header
func TokenFromRequest(r *http.Request) (string, error) {
	return ExtractBearerToken(r.Header.Get(AuthorizationHeader))
}
