package guard

import (
	"net/http"
	"testing"

	"gavel/internal/services/auth/domain"
)

func member(id string) *domain.Principal {
	return &domain.Principal{UserID: id}
}

func withRoles(id string, roles ...string) *domain.Principal {
	return &domain.Principal{UserID: id, Roles: roles}
}

func machine(scopes ...string) *domain.Principal {
	return &domain.Principal{Machine: true, Scopes: scopes}
}

func TestDecide_PublicEndpointAllowsAnonymous(t *testing.T) {
	d := Decide(nil, Requirement{}, ReqContext{Method: http.MethodGet})
	if !d.Allow {
		t.Fatalf("empty requirement should allow, got deny(%s)", d.Reason)
	}
}

func TestDecide_AnonymousDenied(t *testing.T) {
	d := Decide(nil, Requirement{Roles: []string{domain.RoleReviewer}}, ReqContext{Method: http.MethodGet})
	if d.Allow || d.Reason != ReasonUnauthenticated {
		t.Fatalf("want deny(unauthenticated), got %+v", d)
	}
}

func TestDecide_RoleMatchCaseAndWhitespaceInsensitive(t *testing.T) {
	cases := []struct {
		name string
		have string
		want string
	}{
		{"exact", "reviewer", "reviewer"},
		{"case", "Reviewer", "reviewer"},
		{"upper requirement", "reviewer", "REVIEWER"},
		{"padded", "  reviewer ", "reviewer"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := withRoles("member-1", tc.have)
			d := Decide(p, Requirement{Roles: []string{tc.want}}, ReqContext{Method: http.MethodGet})
			if !d.Allow {
				t.Fatalf("role %q vs requirement %q should allow, got deny(%s)", tc.have, tc.want, d.Reason)
			}
		})
	}
}

func TestDecide_ScopeMatchAllows(t *testing.T) {
	// scenario: machine with create:appeal against scope requirement
	p := machine("create:appeal")
	d := Decide(p, Requirement{Scopes: []string{"create:appeal"}}, ReqContext{Method: http.MethodPost})
	if !d.Allow {
		t.Fatalf("scope match should allow, got deny(%s)", d.Reason)
	}
}

func TestDecide_RolesAndScopesAreOr(t *testing.T) {
	req := Requirement{
		Roles:  []string{domain.RoleReviewer},
		Scopes: []string{"read:appeal"},
	}
	if d := Decide(withRoles("u", domain.RoleReviewer), req, ReqContext{Method: http.MethodGet}); !d.Allow {
		t.Fatalf("role-only principal should pass an or-requirement, got deny(%s)", d.Reason)
	}
	if d := Decide(machine("read:appeal"), req, ReqContext{Method: http.MethodGet}); !d.Allow {
		t.Fatalf("scope-only principal should pass an or-requirement, got deny(%s)", d.Reason)
	}
}

func TestDecide_MachineTokenNotApplicable(t *testing.T) {
	// purely role-gated endpoint must not admit a machine credential
	// just because there is no scope check to fail
	p := machine("create:appeal")
	d := Decide(p, Requirement{Roles: []string{domain.RoleAdministrator}}, ReqContext{Method: http.MethodPost})
	if d.Allow || d.Reason != ReasonMachineNotApplicable {
		t.Fatalf("want deny(machine_token_not_applicable), got %+v", d)
	}
}

func TestDecide_InsufficientPermissions(t *testing.T) {
	p := withRoles("member-1", domain.RoleSubmitter)
	d := Decide(p, Requirement{Roles: []string{domain.RoleAdministrator}}, ReqContext{Method: http.MethodGet})
	if d.Allow || d.Reason != ReasonInsufficient {
		t.Fatalf("want deny(insufficient_permissions), got %+v", d)
	}
}

// fallbackReq is the submission-listing requirement shape
func fallbackReq() Requirement {
	return Requirement{
		Roles:               []string{domain.RoleAdministrator, domain.RoleMember},
		Scopes:              []string{"read:submission"},
		ChallengeScopedList: true,
	}
}

func TestDecide_FallbackAllows(t *testing.T) {
	// scenario: identified user, GET, listing capability, challenge filter
	d := Decide(member("member-1"), fallbackReq(), ReqContext{Method: http.MethodGet, ChallengeID: "12345"})
	if !d.Allow {
		t.Fatalf("fallback should allow, got deny(%s)", d.Reason)
	}
}

func TestDecide_FallbackEachConditionFlipsResult(t *testing.T) {
	base := ReqContext{Method: http.MethodGet, ChallengeID: "12345"}

	t.Run("unsafe method", func(t *testing.T) {
		d := Decide(member("member-1"), fallbackReq(), ReqContext{Method: http.MethodPost, ChallengeID: "12345"})
		if d.Allow {
			t.Fatal("POST must not trigger the fallback")
		}
	})
	t.Run("no capability marker", func(t *testing.T) {
		req := fallbackReq()
		req.ChallengeScopedList = false
		if d := Decide(member("member-1"), req, base); d.Allow {
			t.Fatal("requirement without the listing capability must not trigger the fallback")
		}
	})
	t.Run("no member role in requirement", func(t *testing.T) {
		req := fallbackReq()
		req.Roles = []string{domain.RoleAdministrator}
		if d := Decide(member("member-1"), req, base); d.Allow {
			t.Fatal("requirement without the generic user role must not trigger the fallback")
		}
	})
	t.Run("machine principal", func(t *testing.T) {
		p := machine("something:else")
		p.UserID = "member-1"
		if d := Decide(p, fallbackReq(), base); d.Allow {
			t.Fatal("machine principals must not trigger the fallback")
		}
	})
	t.Run("no user id", func(t *testing.T) {
		if d := Decide(&domain.Principal{}, fallbackReq(), base); d.Allow {
			t.Fatal("unidentified principals must not trigger the fallback")
		}
	})
	t.Run("missing challenge id", func(t *testing.T) {
		if d := Decide(member("member-1"), fallbackReq(), ReqContext{Method: http.MethodGet}); d.Allow {
			t.Fatal("missing challenge filter must not trigger the fallback")
		}
	})
}

func TestDecide_HeadIsSafeForFallback(t *testing.T) {
	d := Decide(member("member-1"), fallbackReq(), ReqContext{Method: http.MethodHead, ChallengeID: "c1"})
	if !d.Allow {
		t.Fatalf("HEAD is a safe read method, got deny(%s)", d.Reason)
	}
}

func TestDecide_EmptyScopesOnPrincipalSkipScopeCheck(t *testing.T) {
	p := withRoles("member-1" /* no roles matching */, domain.RoleSubmitter)
	d := Decide(p, Requirement{Scopes: []string{"read:appeal"}}, ReqContext{Method: http.MethodGet})
	if d.Allow {
		t.Fatal("role-bearing principal without scopes must not pass a scope-only requirement")
	}
	if d.Reason != ReasonInsufficient {
		t.Fatalf("want insufficient_permissions, got %q", d.Reason)
	}
}
