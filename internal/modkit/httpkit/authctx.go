package httpkit

import (
	"net/http"
	"strings"

	perr "gavel/internal/platform/errors"
)

// Bearer returns the raw bearer token from the Authorization header
func Bearer(r *http.Request) (string, error) {
	authz := r.Header.Get("Authorization")
	if strings.TrimSpace(authz) == "" {
		return "", perr.Unauthorizedf("missing bearer token")
	}
	// case-insensitive Bearer prefix; don't trim the whole header first
	const prefix = "bearer "
	if len(authz) < len(prefix) || !strings.EqualFold(authz[:len(prefix)], prefix) {
		return "", perr.Unauthorizedf("missing bearer token")
	}
	raw := strings.TrimSpace(authz[len(prefix):])
	if raw == "" {
		return "", perr.Unauthorizedf("missing bearer token")
	}
	return raw, nil
}

// MustBearer returns the raw bearer token or panics.
// Only use on routes behind the auth middleware
func MustBearer(r *http.Request) string {
	raw, err := Bearer(r)
	if err != nil {
		panic(err)
	}
	return raw
}
