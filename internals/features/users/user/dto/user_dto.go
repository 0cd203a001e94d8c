package dto

import (
	"strings"

	"github.com/sudoneoox/Picton/internals/constants"
)

type CreateUserRequest struct {
	UserName  string `json:"user_name"  validate:"required,min=3,max=150"`
	Email     string `json:"email"      validate:"required,email,max=255"`
	Password  string `json:"password"   validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"required,max=150"`
	LastName  string `json:"last_name"  validate:"required,max=150"`
	Role      string `json:"role"       validate:"required,oneof=student staff admin"`
}

func (r *CreateUserRequest) Normalize() {
	r.UserName = strings.TrimSpace(r.UserName)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Role = strings.ToLower(strings.TrimSpace(r.Role))
}

// UpdateUserRequest is partial: nil fields are left alone.
type UpdateUserRequest struct {
	UserName  *string `json:"user_name"  validate:"omitempty,min=3,max=150"`
	Email     *string `json:"email"      validate:"omitempty,email,max=255"`
	FirstName *string `json:"first_name" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name"  validate:"omitempty,max=150"`
	Role      *string `json:"role"       validate:"omitempty,oneof=student staff admin"`
}

func (r *UpdateUserRequest) RoleValue() *constants.Role {
	if r.Role == nil {
		return nil
	}
	role := constants.Role(strings.ToLower(strings.TrimSpace(*r.Role)))
	return &role
}

type ListUsersQuery struct {
	Role   string `query:"role"   validate:"omitempty,oneof=student staff admin"`
	Search string `query:"q"`
	Active *bool  `query:"active"`
}
