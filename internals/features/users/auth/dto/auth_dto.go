package dto

import "strings"

type LoginRequest struct {
	Login    string `json:"login"    validate:"required,min=3"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Normalize() {
	r.Login = strings.TrimSpace(r.Login)
}
