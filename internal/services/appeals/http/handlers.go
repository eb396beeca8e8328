// Package http provides http transport for appeals
package http

import (
	stdhttp "net/http"
	"strconv"

	"gavel/internal/modkit/httpkit"
	appealdom "gavel/internal/services/appeals/domain"
	authdom "gavel/internal/services/auth/domain"
	"gavel/internal/services/auth/guard"
	"gavel/internal/services/auth/scopes"
)

// Register mounts appeal endpoints with their access requirements
func Register(r httpkit.Router, svc appealdom.AppealsPort, mw *guard.Middleware) {
	h := &handlers{svc: svc}

	readReq := guard.Requirement{
		Roles: []string{
			authdom.RoleAdministrator, authdom.RoleCopilot,
			authdom.RoleReviewer, authdom.RoleSubmitter,
		},
		Scopes: []string{scopes.ReadAppeal},
	}
	writeReq := guard.Requirement{
		Roles:  []string{authdom.RoleAdministrator, authdom.RoleSubmitter},
		Scopes: []string{scopes.CreateAppeal},
	}
	updateReq := guard.Requirement{
		Roles:  []string{authdom.RoleAdministrator, authdom.RoleSubmitter},
		Scopes: []string{scopes.UpdateAppeal},
	}
	deleteReq := guard.Requirement{
		Roles:  []string{authdom.RoleAdministrator, authdom.RoleSubmitter},
		Scopes: []string{scopes.DeleteAppeal},
	}
	respondReq := guard.Requirement{
		Roles:  []string{authdom.RoleAdministrator, authdom.RoleCopilot, authdom.RoleReviewer},
		Scopes: []string{scopes.CreateAppealResponse},
	}
	respondUpdateReq := guard.Requirement{
		Roles:  []string{authdom.RoleAdministrator, authdom.RoleCopilot, authdom.RoleReviewer},
		Scopes: []string{scopes.UpdateAppealResponse},
	}

	r.Group(func(gr httpkit.Router) {
		gr.Use(mw.Require(readReq))
		httpkit.Get(gr, "/", h.list)
		httpkit.Get(gr, "/{id}", h.get)
	})
	r.Group(func(gr httpkit.Router) {
		gr.Use(mw.Require(writeReq))
		httpkit.PostJSON[CreateAppealInput](gr, "/", h.create)
	})
	r.Group(func(gr httpkit.Router) {
		gr.Use(mw.Require(updateReq))
		httpkit.PatchJSON[UpdateAppealInput](gr, "/{id}", h.update)
	})
	r.Group(func(gr httpkit.Router) {
		gr.Use(mw.Require(deleteReq))
		httpkit.Delete(gr, "/{id}", h.remove)
	})
	r.Group(func(gr httpkit.Router) {
		gr.Use(mw.Require(respondReq))
		httpkit.PostJSON[RespondInput](gr, "/{id}/response", h.respond)
	})
	r.Group(func(gr httpkit.Router) {
		gr.Use(mw.Require(respondUpdateReq))
		httpkit.PatchJSON[UpdateResponseInput](gr, "/responses/{id}", h.updateResponse)
	})
}

type handlers struct {
	svc appealdom.AppealsPort
}

// @Summary Create an appeal against a review
// @Tags Appeals
// @Accept json
// @Produce json
// @Param payload body CreateAppealInput true "Appeal"
// @Success 201 {object} AppealDTO "created"
// @Router /appeals [post]
func (h *handlers) create(r *stdhttp.Request, in CreateAppealInput) (any, error) {
	p := authdom.FromContext(r.Context())
	a, err := h.svc.Create(r.Context(), p, appealdom.CreateInput{
		ReviewID:   in.ReviewID,
		Text:       in.Text,
		ResourceID: in.ResourceID,
	})
	if err != nil {
		return nil, err
	}
	return httpkit.Created(toAppealDTO(a)), nil
}

// @Summary Update an appeal
// @Tags Appeals
// @Accept json
// @Produce json
// @Param id path string true "Appeal id"
// @Param payload body UpdateAppealInput true "Changes"
// @Success 200 {object} AppealDTO "updated"
// @Router /appeals/{id} [patch]
func (h *handlers) update(r *stdhttp.Request, in UpdateAppealInput) (any, error) {
	p := authdom.FromContext(r.Context())
	a, err := h.svc.Update(r.Context(), p, httpkit.Param(r, "id"), appealdom.UpdateInput{
		Text:       in.Text,
		ResourceID: in.ResourceID,
		ReviewID:   in.ReviewID,
	})
	if err != nil {
		return nil, err
	}
	return toAppealDTO(a), nil
}

// @Summary Delete an appeal
// @Tags Appeals
// @Param id path string true "Appeal id"
// @Success 204 "deleted"
// @Router /appeals/{id} [delete]
func (h *handlers) remove(r *stdhttp.Request) (any, error) {
	p := authdom.FromContext(r.Context())
	if err := h.svc.Delete(r.Context(), p, httpkit.Param(r, "id")); err != nil {
		return nil, err
	}
	return httpkit.NoContent(), nil
}

// @Summary Get one appeal
// @Tags Appeals
// @Produce json
// @Param id path string true "Appeal id"
// @Success 200 {object} AppealDTO "ok"
// @Router /appeals/{id} [get]
func (h *handlers) get(r *stdhttp.Request) (any, error) {
	p := authdom.FromContext(r.Context())
	a, err := h.svc.Get(r.Context(), p, httpkit.Param(r, "id"))
	if err != nil {
		return nil, err
	}
	return toAppealDTO(a), nil
}

// @Summary List appeals
// @Tags Appeals
// @Produce json
// @Param challengeId query string false "Filter by challenge"
// @Param reviewId query string false "Filter by review"
// @Success 200 {array} AppealDTO "ok"
// @Router /appeals [get]
func (h *handlers) list(r *stdhttp.Request) (any, error) {
	p := authdom.FromContext(r.Context())
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("size"))

	items, total, err := h.svc.List(r.Context(), p, appealdom.Filters{
		ChallengeID: q.Get("challengeId"),
		ReviewID:    q.Get("reviewId"),
		ResourceID:  q.Get("resourceId"),
	}, page, size)
	if err != nil {
		return nil, err
	}

	out := make([]AppealDTO, 0, len(items))
	for i := range items {
		out = append(out, toAppealDTO(&items[i]))
	}
	if page < 1 {
		page = 1
	}
	return httpkit.List(out, total, page, len(out)), nil
}

// @Summary Respond to an appeal
// @Tags Appeals
// @Accept json
// @Produce json
// @Param id path string true "Appeal id"
// @Param payload body RespondInput true "Response"
// @Success 201 {object} ResponseDTO "created"
// @Router /appeals/{id}/response [post]
func (h *handlers) respond(r *stdhttp.Request, in RespondInput) (any, error) {
	p := authdom.FromContext(r.Context())
	resp, err := h.svc.Respond(r.Context(), p, httpkit.Param(r, "id"), in.Text, in.Success)
	if err != nil {
		return nil, err
	}
	return httpkit.Created(toResponseDTO(resp)), nil
}

// @Summary Update an appeal response
// @Tags Appeals
// @Accept json
// @Produce json
// @Param id path string true "Response id"
// @Param payload body UpdateResponseInput true "Changes"
// @Success 200 {object} ResponseDTO "updated"
// @Router /appeals/responses/{id} [patch]
func (h *handlers) updateResponse(r *stdhttp.Request, in UpdateResponseInput) (any, error) {
	p := authdom.FromContext(r.Context())
	resp, err := h.svc.UpdateResponse(r.Context(), p, httpkit.Param(r, "id"), in.Text)
	if err != nil {
		return nil, err
	}
	return toResponseDTO(resp), nil
}
