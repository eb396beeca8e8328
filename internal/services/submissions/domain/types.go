// Package domain defines the types and interfaces for the submissions
// service
package domain

import (
	"context"
	"time"

	authdom "gavel/internal/services/auth/domain"
)

// Submission is one member's entry to a challenge
type Submission struct {
	ID          string
	ChallengeID string
	MemberID    string
	URL         string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SubmissionsPort is the operation surface exposed to HTTP and other
// modules
type SubmissionsPort interface {
	// Get resolves one submission record
	Get(ctx context.Context, id string) (*Submission, error)

	// List returns the submissions of a challenge visible to p:
	// privileged, copilot and reviewer principals see every submission,
	// a plain authenticated member sees only their own
	List(ctx context.Context, p *authdom.Principal, challengeID string) ([]Submission, error)
}
