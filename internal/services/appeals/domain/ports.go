package domain

import (
	"context"

	authdom "gavel/internal/services/auth/domain"
)

// AppealsPort is the operation surface exposed to HTTP and other modules
type AppealsPort interface {
	Create(ctx context.Context, p *authdom.Principal, in CreateInput) (*Appeal, error)
	Update(ctx context.Context, p *authdom.Principal, id string, in UpdateInput) (*Appeal, error)
	Delete(ctx context.Context, p *authdom.Principal, id string) error
	Get(ctx context.Context, p *authdom.Principal, id string) (*Appeal, error)
	List(ctx context.Context, p *authdom.Principal, f Filters, page, size int) ([]Appeal, int, error)

	Respond(ctx context.Context, p *authdom.Principal, appealID, text string, success bool) (*Response, error)
	UpdateResponse(ctx context.Context, p *authdom.Principal, responseID, text string) (*Response, error)
}

// ReviewReader resolves parent reviews for ownership decisions
type ReviewReader interface {
	GetReview(ctx context.Context, id string) (*Review, error)
}
