package dto

import (
	"encoding/json"

	"github.com/sudoneoox/Picton/internals/constants"
	submissionService "github.com/sudoneoox/Picton/internals/features/forms/submissions/service"
)

type SaveDraftRequest struct {
	TemplateID uint            `json:"template_id" validate:"required,gt=0"`
	FormData   json.RawMessage `json:"form_data"`
}

type ReviseRequest struct {
	FormData json.RawMessage `json:"form_data" validate:"required"`
}

type ListQuery struct {
	Status constants.SubmissionStatus `query:"status" validate:"omitempty,oneof=draft pending returned approved rejected"`
}

// DraftResponse exposes the rendered preview as text next to the draft rows.
type DraftResponse struct {
	*submissionService.Draft
	Preview string `json:"preview,omitempty"`
}

func NewDraftResponse(d *submissionService.Draft) DraftResponse {
	return DraftResponse{Draft: d, Preview: string(d.Preview)}
}
