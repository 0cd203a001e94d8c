// file: internals/features/organization/delegations/model/delegation_model.go
package model

import (
	"time"

	"gorm.io/datatypes"

	"github.com/sudoneoox/Picton/internals/constants"
)

type ApprovalDelegationModel struct {
	DelegationID          uint      `gorm:"column:approval_delegation_id;primaryKey;autoIncrement" json:"approval_delegation_id"`
	DelegationDelegatorID uint      `gorm:"column:approval_delegation_delegator_id;not null;index:idx_delegation_lookup,priority:1" json:"approval_delegation_delegator_id"`
	DelegationDelegateID  uint      `gorm:"column:approval_delegation_delegate_id;not null;index" json:"approval_delegation_delegate_id"`
	DelegationUnitID      uint      `gorm:"column:approval_delegation_unit_id;not null;index:idx_delegation_lookup,priority:2" json:"approval_delegation_unit_id"`
	DelegationStartDate   time.Time `gorm:"column:approval_delegation_start_date;not null" json:"approval_delegation_start_date"`
	DelegationEndDate     time.Time `gorm:"column:approval_delegation_end_date;not null" json:"approval_delegation_end_date"`
	DelegationReason      string    `gorm:"column:approval_delegation_reason;type:text" json:"approval_delegation_reason"`
	DelegationIsActive    bool      `gorm:"column:approval_delegation_is_active;not null;default:true;index:idx_delegation_lookup,priority:3" json:"approval_delegation_is_active"`
	DelegationCreatedAt   time.Time `gorm:"column:approval_delegation_created_at;autoCreateTime" json:"approval_delegation_created_at"`
	DelegationUpdatedAt   time.Time `gorm:"column:approval_delegation_updated_at;autoUpdateTime" json:"approval_delegation_updated_at"`
}

func (ApprovalDelegationModel) TableName() string {
	return "approval_delegations"
}

// InEffect reports whether the window covers at (inclusive on both ends).
func (d *ApprovalDelegationModel) InEffect(at time.Time) bool {
	return d.DelegationIsActive && !at.Before(d.DelegationStartDate) && !at.After(d.DelegationEndDate)
}

type DelegationHistoryModel struct {
	HistoryID           uint                       `gorm:"column:delegation_history_id;primaryKey;autoIncrement" json:"delegation_history_id"`
	HistoryDelegationID uint                       `gorm:"column:delegation_history_delegation_id;not null;index" json:"delegation_history_delegation_id"`
	HistoryAction       constants.DelegationAction `gorm:"column:delegation_history_action;type:varchar(20);not null" json:"delegation_history_action"`
	HistoryActorID      *uint                      `gorm:"column:delegation_history_actor_id" json:"delegation_history_actor_id,omitempty"`
	HistoryDetails      datatypes.JSON             `gorm:"column:delegation_history_details" json:"delegation_history_details"`
	HistoryCreatedAt    time.Time                  `gorm:"column:delegation_history_created_at;autoCreateTime" json:"delegation_history_created_at"`
}

func (DelegationHistoryModel) TableName() string {
	return "delegation_histories"
}
