// Package service implements the submissions read paths, including the
// visibility filtering behind the challenge-scoped listing
package service

import (
	"context"
	"strings"

	"gavel/internal/modkit/repokit"
	perr "gavel/internal/platform/errors"
	authdom "gavel/internal/services/auth/domain"
	"gavel/internal/services/submissions/domain"
	"gavel/internal/services/submissions/repo"
)

// Service implements domain.SubmissionsPort
type Service struct {
	db     repokit.TxRunner
	binder repokit.Binder[repo.Storage]
}

var _ domain.SubmissionsPort = (*Service)(nil)

// New constructs the submissions service
func New(db repokit.TxRunner, binder repokit.Binder[repo.Storage]) *Service {
	return &Service{db: db, binder: binder}
}

func (s *Service) store() repo.Storage { return s.binder.Bind(s.db) }

// Get resolves one submission record
func (s *Service) Get(ctx context.Context, id string) (*domain.Submission, error) {
	if strings.TrimSpace(id) == "" {
		return nil, perr.Validationf("submission id is required")
	}
	return s.store().Get(ctx, id)
}

// List returns the challenge's submissions visible to p. Elevated
// principals see everything; a plain authenticated member sees only
// their own records
func (s *Service) List(ctx context.Context, p *authdom.Principal, challengeID string) ([]domain.Submission, error) {
	if strings.TrimSpace(challengeID) == "" {
		return nil, perr.Validationf("challengeId is required")
	}

	all, err := s.store().ListByChallenge(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	if seesAll(p) {
		return all, nil
	}
	if p == nil || p.UserID == "" {
		return nil, nil
	}

	own := all[:0]
	for _, sub := range all {
		if sub.MemberID == p.UserID {
			own = append(own, sub)
		}
	}
	return own, nil
}

// seesAll reports whether p may read every submission of a challenge
func seesAll(p *authdom.Principal) bool {
	if p == nil {
		return false
	}
	if p.Machine || p.HasRole(authdom.RoleAdministrator) {
		return true
	}
	return p.HasRole(authdom.RoleCopilot) || p.HasRole(authdom.RoleReviewer)
}
