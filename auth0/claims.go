package auth0

import (
	"encoding/json"

	"github.com/golang-jwt/jwt/v5"
)

// PermissionsClaim is the claim holding the granted permission strings
const PermissionsClaim = "permissions"

// Claims is a verified token payload. Values are only ever produced by
// Verifier.Verify after signature and registered claims checks pass.
type Claims struct {
	values jwt.MapClaims
}

func newVerifiedClaims(values jwt.MapClaims) *Claims {
	return &Claims{values: values}
}

// Get returns the raw value of a claim
func (c *Claims) Get(name string) (interface{}, bool) {
	if c == nil {
		return nil, false
	}
	v, ok := c.values[name]
	return v, ok
}

// Subject returns the sub claim
func (c *Claims) Subject() string {
	if c == nil {
		return ""
	}
	sub, _ := c.values.GetSubject()
	return sub
}

// Permissions returns the permission strings granted by the token.
// The second result is false when the claim is absent.
func (c *Claims) Permissions() ([]string, bool) {
	raw, ok := c.Get(PermissionsClaim)
	if !ok {
		return nil, false
	}

	var perms []string
	switch v := raw.(type) {
	case []interface{}:
		for _, p := range v {
			if s, ok := p.(string); ok {
				perms = append(perms, s)
			}
		}
	case []string:
		perms = append(perms, v...)
	case string:
		perms = append(perms, v)
	}
	return perms, true
}

// HasPermission reports whether permission is literally present in the set
func (c *Claims) HasPermission(permission string) bool {
	perms, _ := c.Permissions()
	for _, p := range perms {
		if p == permission {
			return true
		}
	}
	return false
}

// Map returns a copy of the full claims mapping
func (c *Claims) Map() map[string]interface{} {
	if c == nil {
		return map[string]interface{}{}
	}
	out := make(map[string]interface{}, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}

// MarshalJSON encodes the claims mapping
func (c *Claims) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Map())
}
