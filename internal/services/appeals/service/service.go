// Package service implements the appeal workflow over the repo, the
// ownership policy and the submissions port
package service

import (
	"context"
	"strings"

	"gavel/internal/modkit/repokit"
	perr "gavel/internal/platform/errors"
	"gavel/internal/platform/logger"
	"gavel/internal/services/appeals/domain"
	"gavel/internal/services/appeals/policy"
	"gavel/internal/services/appeals/repo"
	authdom "gavel/internal/services/auth/domain"
	subdom "gavel/internal/services/submissions/domain"

	"github.com/google/uuid"
)

// Config for the appeals service
type Config struct {
	// MaxPageSize bounds list page sizes
	MaxPageSize int
}

// Service implements domain.AppealsPort
type Service struct {
	db          repokit.TxRunner
	binder      repokit.Binder[repo.Storage]
	policy      *policy.Policy
	submissions subdom.SubmissionsPort
	cfg         Config
	log         logger.Logger
}

var _ domain.AppealsPort = (*Service)(nil)

// New constructs the appeals service
func New(
	db repokit.TxRunner,
	binder repokit.Binder[repo.Storage],
	pol *policy.Policy,
	subs subdom.SubmissionsPort,
	cfg Config,
	log logger.Logger,
) *Service {
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = 100
	}
	return &Service{
		db:          db,
		binder:      binder,
		policy:      pol,
		submissions: subs,
		cfg:         cfg,
		log:         log.With().Str("component", "appeals").Logger(),
	}
}

func (s *Service) store() repo.Storage { return s.binder.Bind(s.db) }

// Create raises a new appeal against a review. The owner is the
// submission's member; a non-privileged claimed resource id must match
// it exactly, a mismatch is malformed input rather than a permission
// failure
func (s *Service) Create(ctx context.Context, p *authdom.Principal, in domain.CreateInput) (*domain.Appeal, error) {
	if strings.TrimSpace(in.ReviewID) == "" {
		return nil, perr.Validationf("reviewId is required")
	}
	if strings.TrimSpace(in.Text) == "" {
		return nil, perr.Validationf("text is required")
	}

	st := s.store()

	rev, err := st.GetReview(ctx, in.ReviewID)
	if err != nil {
		return nil, err
	}
	owner, err := s.submissionOwner(ctx, rev)
	if err != nil {
		return nil, err
	}

	if err := policy.MayAct(p, owner); err != nil {
		return nil, err
	}
	if !policy.Privileged(p) && in.ResourceID != "" && in.ResourceID != owner {
		return nil, perr.Validationf("resourceId does not match the submission owner")
	}
	if err := s.policy.EnsureChallengeOpen(ctx, p, rev.ChallengeID); err != nil {
		return nil, err
	}

	a := &domain.Appeal{
		ID:          uuid.NewString(),
		ChallengeID: rev.ChallengeID,
		ReviewID:    rev.ID,
		ResourceID:  owner,
		Text:        in.Text,
	}
	if err := st.Insert(ctx, a); err != nil {
		return nil, err
	}
	s.log.Info().Str("appeal_id", a.ID).Str("review_id", a.ReviewID).Msg("appeal created")
	return st.Get(ctx, a.ID)
}

// Update mutates an appeal. Non-privileged callers may not move
// resource_id away from its current value; re-parenting onto another
// review re-validates ownership against the new review's submission
// owner
func (s *Service) Update(ctx context.Context, p *authdom.Principal, id string, in domain.UpdateInput) (*domain.Appeal, error) {
	st := s.store()

	a, err := st.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.MayAct(p, a.ResourceID); err != nil {
		return nil, err
	}

	if in.ResourceID != nil && *in.ResourceID != a.ResourceID {
		if !policy.Privileged(p) {
			return nil, perr.Forbiddenf("resourceId may not be changed")
		}
		a.ResourceID = *in.ResourceID
	}

	if in.ReviewID != nil && *in.ReviewID != a.ReviewID {
		rev, err := st.GetReview(ctx, *in.ReviewID)
		if err != nil {
			return nil, err
		}
		owner, err := s.submissionOwner(ctx, rev)
		if err != nil {
			return nil, err
		}
		if err := policy.MayAct(p, owner); err != nil {
			return nil, err
		}
		a.ReviewID = rev.ID
		a.ChallengeID = rev.ChallengeID
	}

	if in.Text != nil {
		if strings.TrimSpace(*in.Text) == "" {
			return nil, perr.Validationf("text must not be empty")
		}
		a.Text = *in.Text
	}

	if err := s.policy.EnsureChallengeOpen(ctx, p, a.ChallengeID); err != nil {
		return nil, err
	}

	if err := st.Update(ctx, a); err != nil {
		return nil, err
	}
	return st.Get(ctx, a.ID)
}

// Delete removes an appeal after the owner check and lifecycle gate
func (s *Service) Delete(ctx context.Context, p *authdom.Principal, id string) error {
	st := s.store()

	a, err := st.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.MayAct(p, a.ResourceID); err != nil {
		return err
	}
	if err := s.policy.EnsureChallengeOpen(ctx, p, a.ChallengeID); err != nil {
		return err
	}
	return st.Delete(ctx, id)
}

// Get returns one appeal with its response when present
func (s *Service) Get(ctx context.Context, _ *authdom.Principal, id string) (*domain.Appeal, error) {
	return s.store().Get(ctx, id)
}

// List returns appeals matching f
func (s *Service) List(ctx context.Context, _ *authdom.Principal, f domain.Filters, page, size int) ([]domain.Appeal, int, error) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > s.cfg.MaxPageSize {
		size = s.cfg.MaxPageSize
	}
	return s.store().List(ctx, f, size, (page-1)*size)
}

// Respond creates the single response an appeal may ever receive.
// The requester must be the assigned reviewer resolved through the
// policy chain, or privileged; a second response is a conflict
// regardless of who asks
func (s *Service) Respond(ctx context.Context, p *authdom.Principal, appealID, text string, success bool) (*domain.Response, error) {
	if strings.TrimSpace(text) == "" {
		return nil, perr.Validationf("text is required")
	}

	st := s.store()

	a, err := st.Get(ctx, appealID)
	if err != nil {
		return nil, err
	}
	if a.Response != nil {
		return nil, perr.Conflictf("appeal %s already has a response", appealID)
	}

	rev, err := st.GetReview(ctx, a.ReviewID)
	if err != nil {
		return nil, err
	}

	if !policy.Privileged(p) {
		reviewer, err := s.policy.ReviewerMemberID(ctx, rev)
		if err != nil {
			return nil, err
		}
		if err := policy.MayAct(p, reviewer); err != nil {
			return nil, err
		}
	}

	if err := s.policy.EnsureChallengeOpen(ctx, p, a.ChallengeID); err != nil {
		return nil, err
	}

	r := &domain.Response{
		ID:       uuid.NewString(),
		AppealID: a.ID,
		Text:     text,
		Success:  success,
	}
	if err := st.InsertResponse(ctx, r); err != nil {
		return nil, err
	}
	s.log.Info().Str("appeal_id", a.ID).Str("response_id", r.ID).Msg("appeal responded")
	return st.GetResponse(ctx, r.ID)
}

// UpdateResponse mutates response content only. Ownership is
// re-evaluated against the existing response's reviewer; the responded
// state never changes
func (s *Service) UpdateResponse(ctx context.Context, p *authdom.Principal, responseID, text string) (*domain.Response, error) {
	if strings.TrimSpace(text) == "" {
		return nil, perr.Validationf("text is required")
	}

	st := s.store()

	r, err := st.GetResponse(ctx, responseID)
	if err != nil {
		return nil, err
	}
	a, err := st.Get(ctx, r.AppealID)
	if err != nil {
		return nil, err
	}

	if !policy.Privileged(p) {
		rev, err := st.GetReview(ctx, a.ReviewID)
		if err != nil {
			return nil, err
		}
		reviewer, err := s.policy.ReviewerMemberID(ctx, rev)
		if err != nil {
			return nil, err
		}
		if err := policy.MayAct(p, reviewer); err != nil {
			return nil, err
		}
	}

	return st.UpdateResponseText(ctx, responseID, text)
}

// submissionOwner resolves the owning member of a review's submission
func (s *Service) submissionOwner(ctx context.Context, rev *domain.Review) (string, error) {
	sub, err := s.submissions.Get(ctx, rev.SubmissionID)
	if err != nil {
		return "", err
	}
	if sub.MemberID == "" {
		return "", perr.Validationf("submission %s has no member id", rev.SubmissionID)
	}
	return sub.MemberID, nil
}
