// Package policy enforces who may act on a specific appeal once the
// coarse role/scope gate has allowed the handler to run
package policy

import (
	"context"
	"strings"

	perr "gavel/internal/platform/errors"
	appealdom "gavel/internal/services/appeals/domain"
	authdom "gavel/internal/services/auth/domain"
	"gavel/internal/services/challenges"
	"gavel/internal/services/resources"
)

// Named failures of the reviewer resolution chain. Each missing link is
// distinct; none of them collapses into a generic forbidden
var (
	ErrNoChallenge      = perr.New(perr.ErrorCodeValidation, "review has no challenge id")
	ErrNoReviewer       = perr.New(perr.ErrorCodeNotFound, "review has no reviewer assigned")
	ErrResourceNotFound = perr.New(perr.ErrorCodeNotFound, "reviewer resource not found")
	ErrNoMemberID       = perr.New(perr.ErrorCodeValidation, "reviewer resource has no member id")
)

// Policy evaluates ownership and lifecycle rules against the external
// resource and challenge collaborators
type Policy struct {
	resources  resources.Reader
	challenges challenges.Reader
}

// New builds a Policy
func New(res resources.Reader, ch challenges.Reader) *Policy {
	return &Policy{resources: res, challenges: ch}
}

// Privileged reports whether p bypasses ownership checks entirely.
// Machine tokens and administrators are always allowed
func Privileged(p *authdom.Principal) bool {
	if p == nil {
		return false
	}
	return p.Machine || p.HasRole(authdom.RoleAdministrator)
}

// MayAct is the core ownership predicate. Privileged principals always
// pass; everyone else needs exact, non-empty string equality between
// their user id and the owner's member id
func MayAct(p *authdom.Principal, ownerMemberID string) error {
	if Privileged(p) {
		return nil
	}
	if p == nil || p.UserID == "" || ownerMemberID == "" {
		return perr.Forbiddenf("not the owner of this record")
	}
	if p.UserID != ownerMemberID {
		return perr.Forbiddenf("not the owner of this record")
	}
	return nil
}

// ReviewerMemberID resolves the member identity of the reviewer
// assigned to rev: review -> reviewer resource id -> resource record ->
// member id. Transport failures from the resource service propagate as
// dependency errors
func (po *Policy) ReviewerMemberID(ctx context.Context, rev *appealdom.Review) (string, error) {
	if rev == nil || strings.TrimSpace(rev.ChallengeID) == "" {
		return "", ErrNoChallenge
	}
	if strings.TrimSpace(rev.ReviewerResourceID) == "" {
		return "", ErrNoReviewer
	}

	res, err := po.resources.Get(ctx, rev.ReviewerResourceID)
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			return "", ErrResourceNotFound
		}
		return "", err
	}
	if strings.TrimSpace(res.MemberID) == "" {
		return "", ErrNoMemberID
	}
	return res.MemberID, nil
}

// EnsureChallengeOpen denies non-privileged actors once the owning
// challenge has reached a terminal phase. Privileged principals are
// exempt from the lifecycle gate
func (po *Policy) EnsureChallengeOpen(ctx context.Context, p *authdom.Principal, challengeID string) error {
	if Privileged(p) {
		return nil
	}
	if strings.TrimSpace(challengeID) == "" {
		return perr.Validationf("challenge id is required")
	}

	ch, err := po.challenges.Get(ctx, challengeID)
	if err != nil {
		// a lookup failure must not degrade to deny or allow
		return err
	}
	if ch.Terminal() {
		return perr.Forbiddenf("challenge %s is %s", challengeID, ch.Status)
	}
	return nil
}
