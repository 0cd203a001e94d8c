package dto

import (
	"strings"
	"time"
)

// CreateDelegationRequest leaves DelegatorID empty for "delegate my own authority".
type CreateDelegationRequest struct {
	DelegatorID uint      `json:"delegator_id" validate:"omitempty,gt=0"`
	DelegateID  uint      `json:"delegate_id"  validate:"required,gt=0"`
	UnitID      uint      `json:"unit_id"      validate:"required,gt=0"`
	StartDate   time.Time `json:"start_date"   validate:"required"`
	EndDate     time.Time `json:"end_date"     validate:"required,gtfield=StartDate"`
	Reason      string    `json:"reason"       validate:"max=2000"`
}

func (r *CreateDelegationRequest) Normalize(actorID uint) {
	if r.DelegatorID == 0 {
		r.DelegatorID = actorID
	}
	r.StartDate = r.StartDate.UTC()
	r.EndDate = r.EndDate.UTC()
	r.Reason = strings.TrimSpace(r.Reason)
}
