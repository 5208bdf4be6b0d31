package auth0

import "fmt"

// CheckPermissions returns nil when claims grant permission. The permission
// is matched literally, so an empty requirement is not a bypass.
func CheckPermissions(permission string, claims *Claims) error {
	if _, ok := claims.Permissions(); !ok {
		return forbidden(fmt.Errorf("%s claim missing", PermissionsClaim))
	}

	if !claims.HasPermission(permission) {
		return forbidden(fmt.Errorf("permission %q not granted", permission))
	}

	return nil
}
