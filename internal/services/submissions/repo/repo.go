// Package repo provides the submissions repository implementation
package repo

import (
	"context"

	"gavel/internal/modkit/repokit"
	perr "gavel/internal/platform/errors"
	"gavel/internal/services/submissions/domain"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage defines the submissions repository
type Storage interface {
	Get(ctx context.Context, id string) (*domain.Submission, error)
	ListByChallenge(ctx context.Context, challengeID string) ([]domain.Submission, error)
}

const cols = `id, challenge_id, member_id, url, created_at, updated_at`

// Get implements Storage
func (s *pg) Get(ctx context.Context, id string) (*domain.Submission, error) {
	var sub domain.Submission
	err := s.q.QueryRow(ctx, `
		SELECT `+cols+`
		FROM submissions WHERE id = $1`, id,
	).Scan(&sub.ID, &sub.ChallengeID, &sub.MemberID, &sub.URL, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		return nil, perr.FromPG(err)
	}
	return &sub, nil
}

// ListByChallenge implements Storage
func (s *pg) ListByChallenge(ctx context.Context, challengeID string) ([]domain.Submission, error) {
	rows, err := s.q.Query(ctx, `
		SELECT `+cols+`
		FROM submissions
		WHERE challenge_id = $1
		ORDER BY created_at DESC`, challengeID)
	if err != nil {
		return nil, perr.FromPG(err)
	}
	defer rows.Close()

	var out []domain.Submission
	for rows.Next() {
		var sub domain.Submission
		if err := rows.Scan(&sub.ID, &sub.ChallengeID, &sub.MemberID, &sub.URL, &sub.CreatedAt, &sub.UpdatedAt); err != nil {
			return nil, perr.FromPG(err)
		}
		out = append(out, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, perr.FromPG(err)
	}
	return out, nil
}
