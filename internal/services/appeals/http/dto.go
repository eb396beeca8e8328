package http

import (
	"time"

	"gavel/internal/services/appeals/domain"
)

// CreateAppealInput is the create payload
type CreateAppealInput struct {
	ReviewID   string `json:"reviewId" validate:"required,uuid4"`
	Text       string `json:"text" validate:"required,min=1,max=10000"`
	ResourceID string `json:"resourceId" validate:"omitempty"`
}

// UpdateAppealInput is the update payload; absent fields stay unchanged
type UpdateAppealInput struct {
	Text       *string `json:"text" validate:"omitempty,min=1,max=10000"`
	ResourceID *string `json:"resourceId"`
	ReviewID   *string `json:"reviewId" validate:"omitempty,uuid4"`
}

// RespondInput is the appeal response payload
type RespondInput struct {
	Text    string `json:"text" validate:"required,min=1,max=10000"`
	Success bool   `json:"success"`
}

// UpdateResponseInput mutates response content
type UpdateResponseInput struct {
	Text string `json:"text" validate:"required,min=1,max=10000"`
}

// AppealDTO is the wire shape of an appeal
type AppealDTO struct {
	ID          string       `json:"id"`
	ChallengeID string       `json:"challengeId"`
	ReviewID    string       `json:"reviewId"`
	ResourceID  string       `json:"resourceId"`
	Text        string       `json:"text"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
	Response    *ResponseDTO `json:"response,omitempty"`
}

// ResponseDTO is the wire shape of an appeal response
type ResponseDTO struct {
	ID        string    `json:"id"`
	AppealID  string    `json:"appealId"`
	Text      string    `json:"text"`
	Success   bool      `json:"success"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toAppealDTO(a *domain.Appeal) AppealDTO {
	out := AppealDTO{
		ID:          a.ID,
		ChallengeID: a.ChallengeID,
		ReviewID:    a.ReviewID,
		ResourceID:  a.ResourceID,
		Text:        a.Text,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
	if a.Response != nil {
		dto := toResponseDTO(a.Response)
		out.Response = &dto
	}
	return out
}

func toResponseDTO(r *domain.Response) ResponseDTO {
	return ResponseDTO{
		ID:        r.ID,
		AppealID:  r.AppealID,
		Text:      r.Text,
		Success:   r.Success,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
