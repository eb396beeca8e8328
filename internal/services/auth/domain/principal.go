// Package domain defines the authenticated caller model shared by the
// guard, the token validator and the policy layers
package domain

import (
	"context"

	"gavel/internal/core/normalize"
)

// Role labels carried by human tokens. Comparison is case-insensitive
const (
	RoleAdministrator = "administrator"
	RoleCopilot       = "copilot"
	RoleReviewer      = "reviewer"
	RoleSubmitter     = "submitter"

	// RoleMember is the generic authenticated-user role used by
	// requirements that admit any identified person
	RoleMember = "member"
)

// Principal is the resolved identity for one request.
// Constructed fresh per request by the token validator, carried on the
// request context, never persisted
type Principal struct {
	// UserID is present for human or user-delegated tokens
	UserID string

	// Machine is true for machine to machine credentials
	Machine bool

	// Roles holds case-insensitive role names, empty for pure M2M tokens
	Roles []string

	// Scopes holds OAuth style permission strings, already expanded
	Scopes []string
}

// HasRole reports whether p carries role under normalized comparison
func (p *Principal) HasRole(role string) bool {
	if p == nil {
		return false
	}
	want := normalize.Identifier(role)
	for _, r := range p.Roles {
		if normalize.Identifier(r) == want {
			return true
		}
	}
	return false
}

// HasScope reports whether p carries the exact scope.
// Scopes are machine-issued strings so only whitespace and case noise
// is tolerated
func (p *Principal) HasScope(scope string) bool {
	if p == nil {
		return false
	}
	want := normalize.Identifier(scope)
	for _, s := range p.Scopes {
		if normalize.Identifier(s) == want {
			return true
		}
	}
	return false
}

// Identified reports whether p is a non-machine principal with a user id
func (p *Principal) Identified() bool {
	return p != nil && !p.Machine && p.UserID != ""
}

type ctxKey struct{}

// WithPrincipal returns a context carrying p
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// FromContext returns the principal on ctx, nil when anonymous
func FromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(ctxKey{}).(*Principal)
	return p
}
