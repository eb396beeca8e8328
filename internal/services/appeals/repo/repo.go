// Package repo provides the appeals repository implementation
package repo

import (
	"context"
	"fmt"
	"strings"

	"gavel/internal/modkit/repokit"
	perr "gavel/internal/platform/errors"
	"gavel/internal/services/appeals/domain"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage defines the appeals repository
type Storage interface {
	Insert(ctx context.Context, a *domain.Appeal) error
	Update(ctx context.Context, a *domain.Appeal) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*domain.Appeal, error)
	List(ctx context.Context, f domain.Filters, limit, offset int) ([]domain.Appeal, int, error)

	GetReview(ctx context.Context, id string) (*domain.Review, error)

	InsertResponse(ctx context.Context, r *domain.Response) error
	GetResponse(ctx context.Context, id string) (*domain.Response, error)
	GetResponseByAppeal(ctx context.Context, appealID string) (*domain.Response, error)
	UpdateResponseText(ctx context.Context, id, text string) (*domain.Response, error)
}

const appealCols = `id, challenge_id, review_id, resource_id, text, created_at, updated_at`

// Insert implements Storage
func (s *pg) Insert(ctx context.Context, a *domain.Appeal) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO appeals (`+appealCols+`)
		VALUES ($1, $2, $3, $4, $5, now(), now())`,
		a.ID, a.ChallengeID, a.ReviewID, a.ResourceID, a.Text,
	)
	return perr.FromPG(err)
}

// Update implements Storage
func (s *pg) Update(ctx context.Context, a *domain.Appeal) error {
	ct, err := s.q.Exec(ctx, `
		UPDATE appeals
		SET review_id = $2, resource_id = $3, text = $4, updated_at = now()
		WHERE id = $1`,
		a.ID, a.ReviewID, a.ResourceID, a.Text,
	)
	if err != nil {
		return perr.FromPG(err)
	}
	if ct.RowsAffected() == 0 {
		return perr.NotFoundf("appeal %s not found", a.ID)
	}
	return nil
}

// Delete implements Storage
func (s *pg) Delete(ctx context.Context, id string) error {
	ct, err := s.q.Exec(ctx, `DELETE FROM appeals WHERE id = $1`, id)
	if err != nil {
		return perr.FromPG(err)
	}
	if ct.RowsAffected() == 0 {
		return perr.NotFoundf("appeal %s not found", id)
	}
	return nil
}

// Get implements Storage; the response is attached when present
func (s *pg) Get(ctx context.Context, id string) (*domain.Appeal, error) {
	var a domain.Appeal
	err := s.q.QueryRow(ctx, `
		SELECT `+appealCols+`
		FROM appeals WHERE id = $1`, id,
	).Scan(&a.ID, &a.ChallengeID, &a.ReviewID, &a.ResourceID, &a.Text, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, perr.FromPG(err)
	}

	resp, err := s.GetResponseByAppeal(ctx, a.ID)
	if err != nil && !perr.IsCode(err, perr.ErrorCodeNotFound) {
		return nil, err
	}
	a.Response = resp
	return &a, nil
}

// List implements Storage
func (s *pg) List(ctx context.Context, f domain.Filters, limit, offset int) ([]domain.Appeal, int, error) {
	var sb strings.Builder
	var args []any

	where := func(cond, val string) {
		if val == "" {
			return
		}
		args = append(args, val)
		if len(args) == 1 {
			sb.WriteString(" WHERE ")
		} else {
			sb.WriteString(" AND ")
		}
		fmt.Fprintf(&sb, cond, len(args))
	}
	where("challenge_id = $%d", f.ChallengeID)
	where("review_id = $%d", f.ReviewID)
	where("resource_id = $%d", f.ResourceID)
	cond := sb.String()

	var total int
	if err := s.q.QueryRow(ctx, `SELECT count(*) FROM appeals`+cond, args...).Scan(&total); err != nil {
		return nil, 0, perr.FromPG(err)
	}

	q := `SELECT ` + appealCols + ` FROM appeals` + cond +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	rows, err := s.q.Query(ctx, q, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, perr.FromPG(err)
	}
	defer rows.Close()

	var out []domain.Appeal
	for rows.Next() {
		var a domain.Appeal
		if err := rows.Scan(&a.ID, &a.ChallengeID, &a.ReviewID, &a.ResourceID, &a.Text, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, 0, perr.FromPG(err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, perr.FromPG(err)
	}
	return out, total, nil
}

// GetReview implements Storage
func (s *pg) GetReview(ctx context.Context, id string) (*domain.Review, error) {
	var r domain.Review
	err := s.q.QueryRow(ctx, `
		SELECT id, challenge_id, submission_id, COALESCE(reviewer_resource_id, '')
		FROM reviews WHERE id = $1`, id,
	).Scan(&r.ID, &r.ChallengeID, &r.SubmissionID, &r.ReviewerResourceID)
	if err != nil {
		return nil, perr.FromPG(err)
	}
	return &r, nil
}

const responseCols = `id, appeal_id, text, success, created_at, updated_at`

// InsertResponse implements Storage. The unique constraint on appeal_id
// backs the one-response-per-appeal rule at the storage level
func (s *pg) InsertResponse(ctx context.Context, r *domain.Response) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO appeal_responses (`+responseCols+`)
		VALUES ($1, $2, $3, $4, now(), now())`,
		r.ID, r.AppealID, r.Text, r.Success,
	)
	if err := perr.FromPG(err); err != nil {
		if perr.IsCode(err, perr.ErrorCodeDuplicateKey) {
			return perr.Conflictf("appeal %s already has a response", r.AppealID)
		}
		return err
	}
	return nil
}

// GetResponse implements Storage
func (s *pg) GetResponse(ctx context.Context, id string) (*domain.Response, error) {
	var r domain.Response
	err := s.q.QueryRow(ctx, `
		SELECT `+responseCols+`
		FROM appeal_responses WHERE id = $1`, id,
	).Scan(&r.ID, &r.AppealID, &r.Text, &r.Success, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, perr.FromPG(err)
	}
	return &r, nil
}

// GetResponseByAppeal implements Storage
func (s *pg) GetResponseByAppeal(ctx context.Context, appealID string) (*domain.Response, error) {
	var r domain.Response
	err := s.q.QueryRow(ctx, `
		SELECT `+responseCols+`
		FROM appeal_responses WHERE appeal_id = $1`, appealID,
	).Scan(&r.ID, &r.AppealID, &r.Text, &r.Success, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, perr.FromPG(err)
	}
	return &r, nil
}

// UpdateResponseText implements Storage; only content mutates, the
// responded state never changes
func (s *pg) UpdateResponseText(ctx context.Context, id, text string) (*domain.Response, error) {
	var r domain.Response
	err := s.q.QueryRow(ctx, `
		UPDATE appeal_responses
		SET text = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+responseCols, id, text,
	).Scan(&r.ID, &r.AppealID, &r.Text, &r.Success, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, perr.FromPG(err)
	}
	return &r, nil
}
