// Package http provides http transport for submissions
package http

import (
	stdhttp "net/http"
	"time"

	"gavel/internal/modkit/httpkit"
	authdom "gavel/internal/services/auth/domain"
	"gavel/internal/services/auth/guard"
	"gavel/internal/services/auth/scopes"
	"gavel/internal/services/submissions/domain"
)

// SubmissionDTO is the wire shape of a submission
type SubmissionDTO struct {
	ID          string    `json:"id"`
	ChallengeID string    `json:"challengeId"`
	MemberID    string    `json:"memberId"`
	URL         string    `json:"url"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Register mounts submission endpoints with their access requirements
func Register(r httpkit.Router, svc domain.SubmissionsPort, mw *guard.Middleware) {
	h := &handlers{svc: svc}

	// ChallengeScopedList marks the one carve-out: any identified user
	// may GET the listing when a challengeId filter is present
	listReq := guard.Requirement{
		Roles: []string{
			authdom.RoleAdministrator, authdom.RoleCopilot,
			authdom.RoleReviewer, authdom.RoleMember,
		},
		Scopes:              []string{scopes.ReadSubmission},
		ChallengeScopedList: true,
	}
	getReq := guard.Requirement{
		Roles: []string{
			authdom.RoleAdministrator, authdom.RoleCopilot, authdom.RoleReviewer,
		},
		Scopes: []string{scopes.ReadSubmission},
	}

	r.Group(func(gr httpkit.Router) {
		gr.Use(mw.Require(listReq))
		httpkit.Get(gr, "/", h.list)
	})
	r.Group(func(gr httpkit.Router) {
		gr.Use(mw.Require(getReq))
		httpkit.Get(gr, "/{id}", h.get)
	})
}

type handlers struct {
	svc domain.SubmissionsPort
}

// @Summary List submissions of a challenge
// @Tags Submissions
// @Produce json
// @Param challengeId query string true "Challenge id"
// @Success 200 {array} SubmissionDTO "ok"
// @Router /submissions [get]
func (h *handlers) list(r *stdhttp.Request) (any, error) {
	p := authdom.FromContext(r.Context())
	items, err := h.svc.List(r.Context(), p, r.URL.Query().Get("challengeId"))
	if err != nil {
		return nil, err
	}
	out := make([]SubmissionDTO, 0, len(items))
	for _, s := range items {
		out = append(out, toDTO(s))
	}
	return out, nil
}

// @Summary Get one submission
// @Tags Submissions
// @Produce json
// @Param id path string true "Submission id"
// @Success 200 {object} SubmissionDTO "ok"
// @Router /submissions/{id} [get]
func (h *handlers) get(r *stdhttp.Request) (any, error) {
	s, err := h.svc.Get(r.Context(), httpkit.Param(r, "id"))
	if err != nil {
		return nil, err
	}
	return toDTO(*s), nil
}

func toDTO(s domain.Submission) SubmissionDTO {
	return SubmissionDTO{
		ID:          s.ID,
		ChallengeID: s.ChallengeID,
		MemberID:    s.MemberID,
		URL:         s.URL,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}
