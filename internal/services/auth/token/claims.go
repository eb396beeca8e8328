package token

import (
	"strings"

	"gavel/internal/services/auth/domain"
	"gavel/internal/services/auth/scopes"

	"github.com/golang-jwt/jwt/v5"
)

// machineSubSuffix marks Auth0 style client-credential subjects.
// Such subjects identify an application, not a person, so they never
// populate UserID
const machineSubSuffix = "@clients"

// principalFromClaims builds a Principal from verified claims.
// A scope claim makes the principal machine-oriented even when other
// claims are present; a roles claim makes it a human principal with
// UserID taken from sub
func principalFromClaims(claims jwt.MapClaims) *domain.Principal {
	p := &domain.Principal{}

	sub, _ := claims["sub"].(string)

	if raw, ok := claims["scope"].(string); ok && strings.TrimSpace(raw) != "" {
		p.Machine = true
		p.Scopes = scopes.Expand(scopes.Split(raw))
		if sub != "" && !strings.HasSuffix(sub, machineSubSuffix) {
			// user-delegated machine token keeps the delegating identity
			p.UserID = sub
		}
		return p
	}

	p.Roles = rolesClaim(claims)
	p.UserID = sub
	return p
}

// rolesClaim reads the roles claim under its bare and namespaced names
func rolesClaim(claims jwt.MapClaims) []string {
	for _, key := range []string{"roles", "https://gavel.dev/roles"} {
		v, ok := claims[key]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case []any:
			out := make([]string, 0, len(t))
			for _, r := range t {
				if s, ok := r.(string); ok && s != "" {
					out = append(out, s)
				}
			}
			return out
		case []string:
			return t
		case string:
			if t != "" {
				return []string{t}
			}
		}
	}
	return nil
}
