package dto

import (
	"encoding/json"
	"strings"

	"github.com/sudoneoox/Picton/internals/constants"
	templateService "github.com/sudoneoox/Picton/internals/features/forms/templates/service"
)

type StepRequest struct {
	ApproverRole     constants.Role `json:"approver_role"     validate:"required,oneof=staff admin"`
	ApprovalPosition string         `json:"approval_position" validate:"required,max=100"`
	IsRequired       bool           `json:"is_required"`
	Order            int            `json:"order"             validate:"required,gt=0"`
}

type CreateTemplateRequest struct {
	Name                 string          `json:"name"                   validate:"required,max=255"`
	Description          string          `json:"description"`
	FieldSchema          json.RawMessage `json:"field_schema"           validate:"required"`
	DocumentTemplatePath string          `json:"document_template_path" validate:"max=255"`
	Steps                []StepRequest   `json:"steps"                  validate:"dive"`
}

func (r *CreateTemplateRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Description = strings.TrimSpace(r.Description)
	r.DocumentTemplatePath = strings.TrimSpace(r.DocumentTemplatePath)
	for i := range r.Steps {
		r.Steps[i].ApprovalPosition = strings.TrimSpace(r.Steps[i].ApprovalPosition)
	}
}

type ReplaceStepsRequest struct {
	Steps []StepRequest `json:"steps" validate:"dive"`
}

func (r *ReplaceStepsRequest) Normalize() {
	for i := range r.Steps {
		r.Steps[i].ApprovalPosition = strings.TrimSpace(r.Steps[i].ApprovalPosition)
	}
}

type SetActiveRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

func ToStepInputs(steps []StepRequest) []templateService.StepInput {
	out := make([]templateService.StepInput, 0, len(steps))
	for _, s := range steps {
		out = append(out, templateService.StepInput{
			ApproverRole:     s.ApproverRole,
			ApprovalPosition: s.ApprovalPosition,
			IsRequired:       s.IsRequired,
			Order:            s.Order,
		})
	}
	return out
}
