// Package guard decides whether a request may execute its handler.
// Roles and scopes are evaluated independently and either is sufficient:
// human tokens carry roles, machine tokens carry scopes, and the two are
// never required to both match
package guard

import (
	"net/http"

	"gavel/internal/core/normalize"
	"gavel/internal/services/auth/domain"
)

// Requirement is declared statically per handler. Empty roles and
// scopes mean a public endpoint
type Requirement struct {
	Roles  []string
	Scopes []string

	// ChallengeScopedList marks the submission-listing capability that
	// admits any identified user when the request is a safe read
	// filtered by a challenge id. It must stay bound to that single
	// capability; widening it silently widens access
	ChallengeScopedList bool
}

// Public reports whether the requirement gates nothing
func (r Requirement) Public() bool {
	return len(r.Roles) == 0 && len(r.Scopes) == 0
}

// ReqContext carries the request facts a decision may depend on
type ReqContext struct {
	// Method is the HTTP method of the request
	Method string

	// ChallengeID is the challenge filter query value, empty when absent
	ChallengeID string
}

// Deny reasons
const (
	ReasonUnauthenticated      = "unauthenticated"
	ReasonMachineNotApplicable = "machine_token_not_applicable"
	ReasonInsufficient         = "insufficient_permissions"
)

// Decision is the outcome of one evaluation
type Decision struct {
	Allow  bool
	Reason string
}

func allow() Decision             { return Decision{Allow: true} }
func deny(reason string) Decision { return Decision{Reason: reason} }

// Decide evaluates p against req for one request. p is nil for
// anonymous callers
func Decide(p *domain.Principal, req Requirement, rc ReqContext) Decision {
	// public endpoints gate nothing
	if req.Public() {
		return allow()
	}

	if p == nil {
		return deny(ReasonUnauthenticated)
	}

	// role match under normalized comparison
	for _, want := range req.Roles {
		if p.HasRole(want) {
			return allow()
		}
	}

	// challenge-scoped listing carve-out: any identified person may
	// list their own submissions filtered by a challenge. All five
	// conditions must hold or the carve-out does not apply
	if req.ChallengeScopedList &&
		requiresRole(req, domain.RoleMember) &&
		p.Identified() &&
		safeMethod(rc.Method) &&
		rc.ChallengeID != "" {
		return allow()
	}

	// scope match
	if len(p.Scopes) > 0 {
		for _, want := range req.Scopes {
			if p.HasScope(want) {
				return allow()
			}
		}
	}

	// a machine credential must not pass a purely role-gated endpoint
	// just because there is no scope check to fail
	if len(p.Scopes) > 0 && len(p.Roles) == 0 &&
		len(req.Roles) > 0 && len(req.Scopes) == 0 {
		return deny(ReasonMachineNotApplicable)
	}

	return deny(ReasonInsufficient)
}

func requiresRole(req Requirement, role string) bool {
	want := normalize.Identifier(role)
	for _, r := range req.Roles {
		if normalize.Identifier(r) == want {
			return true
		}
	}
	return false
}

func safeMethod(m string) bool {
	switch m {
	case http.MethodGet, http.MethodHead:
		return true
	}
	return false
}
