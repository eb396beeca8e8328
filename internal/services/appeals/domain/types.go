// Package domain defines the types and interfaces for the appeals service
package domain

import "time"

// Appeal is a contested review raised by the submitting member.
// ResourceID records the owning member identity; ReviewID is the parent
// review the appeal is attached to
type Appeal struct {
	ID          string
	ChallengeID string
	ReviewID    string
	ResourceID  string
	Text        string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Response is nil until a reviewer responds. At most one response
	// ever exists per appeal
	Response *Response
}

// Response is the reviewer's answer to an appeal. Creating it is the
// terminal NoResponse -> Responded transition; later edits mutate Text
// only and never change that state
type Response struct {
	ID        string
	AppealID  string
	Text      string
	Success   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Review is the parent record an appeal attaches to. ReviewerResourceID
// points at the resource record whose member is the assigned reviewer
type Review struct {
	ID                 string
	ChallengeID        string
	SubmissionID       string
	ReviewerResourceID string
}

// Filters narrows appeal listings
type Filters struct {
	ChallengeID string
	ReviewID    string
	ResourceID  string
}

// CreateInput is the payload for creating an appeal
type CreateInput struct {
	ReviewID string
	Text     string

	// ResourceID is the claimed owner; for non-privileged callers it
	// must match the submission owner's member id when supplied
	ResourceID string
}

// UpdateInput is the payload for updating an appeal. Nil fields are
// left unchanged
type UpdateInput struct {
	Text       *string
	ResourceID *string
	ReviewID   *string
}
