package service

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/sudoneoox/Picton/internals/features/organization/units/model"
	helper "github.com/sudoneoox/Picton/internals/helpers"
)

type CreateUnitInput struct {
	Name        string
	Code        string
	Description string
	ParentID    *uint
}

// CreateUnit derives the level from the parent. Duplicate codes surface as
// validation errors from the unique index.
func (d *Directory) CreateUnit(ctx context.Context, in CreateUnitInput) (*model.OrganizationalUnitModel, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, helper.Invalid("unit_name", "is required")
	}
	if strings.TrimSpace(in.Code) == "" {
		return nil, helper.Invalid("unit_code", "is required")
	}

	u := &model.OrganizationalUnitModel{
		UnitName:        in.Name,
		UnitCode:        in.Code,
		UnitDescription: in.Description,
		UnitParentID:    in.ParentID,
	}
	if in.ParentID != nil {
		parent, err := d.Get(ctx, *in.ParentID)
		if err != nil {
			return nil, err
		}
		u.UnitLevel = parent.UnitLevel + 1
	}
	if err := d.DB.WithContext(ctx).Create(u).Error; err != nil {
		if helper.IsUniqueViolation(err) {
			return nil, helper.Invalid("unit_code", "code %q already exists", strings.ToUpper(strings.TrimSpace(in.Code)))
		}
		return nil, err
	}
	return u, nil
}

// Reparent moves a unit (nil parent makes it a root) and re-levels its subtree.
func (d *Directory) Reparent(ctx context.Context, unitID uint, parentID *uint) (*model.OrganizationalUnitModel, error) {
	var out *model.OrganizationalUnitModel
	err := d.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dir := d.WithTx(tx)
		u, err := dir.Get(ctx, unitID)
		if err != nil {
			return err
		}
		level := 0
		if parentID != nil {
			if *parentID == unitID {
				return helper.Invalid("unit_parent_id", "a unit cannot be its own parent")
			}
			under, err := dir.IsUnder(ctx, *parentID, unitID)
			if err != nil {
				return err
			}
			if under {
				return helper.Invalid("unit_parent_id", "unit %d is a descendant of unit %d", *parentID, unitID)
			}
			parent, err := dir.Get(ctx, *parentID)
			if err != nil {
				return err
			}
			level = parent.UnitLevel + 1
		}

		if err := tx.Model(u).Updates(map[string]any{
			"unit_parent_id": parentID,
			"unit_level":     level,
		}).Error; err != nil {
			return err
		}
		if err := dir.relevelChildren(ctx, unitID, level); err != nil {
			return err
		}
		out, err = dir.Get(ctx, unitID)
		return err
	})
	return out, err
}

func (d *Directory) relevelChildren(ctx context.Context, unitID uint, level int) error {
	queue := []uint{unitID}
	levels := map[uint]int{unitID: level}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		var kids []uint
		if err := d.DB.WithContext(ctx).Model(&model.OrganizationalUnitModel{}).
			Where("unit_parent_id = ?", id).Pluck("unit_id", &kids).Error; err != nil {
			return err
		}
		for _, k := range kids {
			if _, dup := levels[k]; dup {
				return helper.ErrHierarchyCycle
			}
			levels[k] = levels[id] + 1
			if err := d.DB.WithContext(ctx).Model(&model.OrganizationalUnitModel{}).
				Where("unit_id = ?", k).Update("unit_level", levels[k]).Error; err != nil {
				return err
			}
			queue = append(queue, k)
		}
	}
	return nil
}

// Deactivate is the only removal a unit gets.
func (d *Directory) Deactivate(ctx context.Context, unitID uint) error {
	res := d.DB.WithContext(ctx).Model(&model.OrganizationalUnitModel{}).
		Where("unit_id = ?", unitID).Update("unit_is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return helper.NotFound("organizational unit", unitID)
	}
	return nil
}

type AssignApproverInput struct {
	UnitID  uint
	UserID  uint
	Role    string
	OrgWide bool
}

// AssignApprover relies on the (unit, user, role) unique index, not a pre-check.
func (d *Directory) AssignApprover(ctx context.Context, in AssignApproverInput) (*model.UnitApproverModel, error) {
	if strings.TrimSpace(in.Role) == "" {
		return nil, helper.Invalid("role", "is required")
	}
	if _, err := d.Get(ctx, in.UnitID); err != nil {
		return nil, err
	}
	a := &model.UnitApproverModel{
		UnitApproverUnitID:  in.UnitID,
		UnitApproverUserID:  in.UserID,
		UnitApproverRole:    in.Role,
		UnitApproverOrgWide: in.OrgWide,
	}
	if err := d.DB.WithContext(ctx).Create(a).Error; err != nil {
		if helper.IsUniqueViolation(err) {
			return nil, helper.Invalid("role", "user %d already holds %q in unit %d", in.UserID, strings.TrimSpace(in.Role), in.UnitID)
		}
		return nil, err
	}
	return a, nil
}

func (d *Directory) DeactivateApprover(ctx context.Context, approverID uint) error {
	res := d.DB.WithContext(ctx).Model(&model.UnitApproverModel{}).
		Where("unit_approver_id = ?", approverID).Update("unit_approver_is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return helper.NotFound("unit approver", approverID)
	}
	return nil
}
