// file: internals/features/organization/units/model/unit_model.go
package model

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

/* =========================================================
   organizational_units
   Parent links form an arena addressed by unit_id; level 0 is the root.
========================================================= */

type OrganizationalUnitModel struct {
	UnitID          uint      `gorm:"column:unit_id;primaryKey;autoIncrement" json:"unit_id"`
	UnitName        string    `gorm:"column:unit_name;size:255;not null" json:"unit_name"`
	UnitCode        string    `gorm:"column:unit_code;size:50;not null;uniqueIndex:uq_unit_code" json:"unit_code"`
	UnitDescription string    `gorm:"column:unit_description;type:text" json:"unit_description"`
	UnitParentID    *uint     `gorm:"column:unit_parent_id;index" json:"unit_parent_id,omitempty"`
	UnitLevel       int       `gorm:"column:unit_level;not null;default:0" json:"unit_level"`
	UnitIsActive    bool      `gorm:"column:unit_is_active;not null;default:true" json:"unit_is_active"`
	UnitCreatedAt   time.Time `gorm:"column:unit_created_at;autoCreateTime" json:"unit_created_at"`
	UnitUpdatedAt   time.Time `gorm:"column:unit_updated_at;autoUpdateTime" json:"unit_updated_at"`
}

func (OrganizationalUnitModel) TableName() string {
	return "organizational_units"
}

func (u *OrganizationalUnitModel) BeforeSave(tx *gorm.DB) error {
	u.UnitCode = strings.ToUpper(strings.TrimSpace(u.UnitCode))
	u.UnitName = strings.TrimSpace(u.UnitName)
	return nil
}

/* =========================================================
   unit_approvers
   UnitApproverRole is the free-text position label used for routing
   (e.g. "Graduate Advisor"), orthogonal to the account role.
========================================================= */

type UnitApproverModel struct {
	UnitApproverID        uint      `gorm:"column:unit_approver_id;primaryKey;autoIncrement" json:"unit_approver_id"`
	UnitApproverUnitID    uint      `gorm:"column:unit_approver_unit_id;not null;uniqueIndex:uq_unit_approver,priority:1" json:"unit_approver_unit_id"`
	UnitApproverUserID    uint      `gorm:"column:unit_approver_user_id;not null;uniqueIndex:uq_unit_approver,priority:2;index" json:"unit_approver_user_id"`
	UnitApproverRole      string    `gorm:"column:unit_approver_role;size:100;not null;uniqueIndex:uq_unit_approver,priority:3" json:"unit_approver_role"`
	UnitApproverOrgWide   bool      `gorm:"column:unit_approver_is_organization_wide;not null;default:false" json:"unit_approver_is_organization_wide"`
	UnitApproverIsActive  bool      `gorm:"column:unit_approver_is_active;not null;default:true" json:"unit_approver_is_active"`
	UnitApproverCreatedAt time.Time `gorm:"column:unit_approver_created_at;autoCreateTime" json:"unit_approver_created_at"`
	UnitApproverUpdatedAt time.Time `gorm:"column:unit_approver_updated_at;autoUpdateTime" json:"unit_approver_updated_at"`
}

func (UnitApproverModel) TableName() string {
	return "unit_approvers"
}

func (a *UnitApproverModel) BeforeSave(tx *gorm.DB) error {
	a.UnitApproverRole = strings.TrimSpace(a.UnitApproverRole)
	return nil
}
