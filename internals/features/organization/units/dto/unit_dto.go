package dto

import "strings"

type CreateUnitRequest struct {
	UnitName        string `json:"unit_name"        validate:"required,max=255"`
	UnitCode        string `json:"unit_code"        validate:"required,max=50"`
	UnitDescription string `json:"unit_description"`
	UnitParentID    *uint  `json:"unit_parent_id"   validate:"omitempty,gt=0"`
}

func (r *CreateUnitRequest) Normalize() {
	r.UnitName = strings.TrimSpace(r.UnitName)
	r.UnitCode = strings.ToUpper(strings.TrimSpace(r.UnitCode))
	r.UnitDescription = strings.TrimSpace(r.UnitDescription)
}

// ReparentRequest with a nil parent turns the unit into a root.
type ReparentRequest struct {
	UnitParentID *uint `json:"unit_parent_id" validate:"omitempty,gt=0"`
}

type AssignApproverRequest struct {
	UserID  uint   `json:"user_id" validate:"required,gt=0"`
	Role    string `json:"role"    validate:"required,max=100"`
	OrgWide bool   `json:"is_organization_wide"`
}

func (r *AssignApproverRequest) Normalize() {
	r.Role = strings.TrimSpace(r.Role)
}
