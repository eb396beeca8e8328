package token

import (
	"gavel/internal/services/auth/domain"
	"gavel/internal/services/auth/scopes"
)

// StaticCredentials maps opaque credential strings to principals.
// Role entries produce human principals, scope entries produce machine
// principals with expanded scopes. This resolver is a development and
// test shortcut; NewValidator refuses it in production mode
type StaticCredentials struct {
	// Roles maps credential -> role list
	Roles map[string][]string

	// Machine maps credential -> raw scope list
	Machine map[string][]string

	// Users maps credential -> user id for role credentials
	Users map[string]string
}

var _ CredentialResolver = (*StaticCredentials)(nil)

// Resolve implements CredentialResolver
func (s *StaticCredentials) Resolve(credential string) (*domain.Principal, bool) {
	if s == nil || credential == "" {
		return nil, false
	}
	if roles, ok := s.Roles[credential]; ok {
		return &domain.Principal{
			UserID: s.Users[credential],
			Roles:  append([]string(nil), roles...),
		}, true
	}
	if raw, ok := s.Machine[credential]; ok {
		return &domain.Principal{
			Machine: true,
			Scopes:  scopes.Expand(raw),
		}, true
	}
	return nil, false
}

// DefaultTestCredentials returns the fixture tokens used by local
// development and the test suites
func DefaultTestCredentials() *StaticCredentials {
	return &StaticCredentials{
		Roles: map[string][]string{
			"token-admin":     {domain.RoleAdministrator},
			"token-copilot":   {domain.RoleCopilot},
			"token-reviewer":  {domain.RoleReviewer},
			"token-submitter": {domain.RoleSubmitter},
			"token-member":    {},
		},
		Users: map[string]string{
			"token-admin":     "member-admin",
			"token-copilot":   "member-copilot",
			"token-reviewer":  "member-reviewer",
			"token-submitter": "member-submitter",
			"token-member":    "member-plain",
		},
		Machine: map[string][]string{
			"m2m-appeal-all":    {scopes.AllAppeal},
			"m2m-appeal-create": {scopes.CreateAppeal},
			"m2m-read-only":     {scopes.ReadAppeal, scopes.ReadSubmission, scopes.ReadReview},
		},
	}
}
