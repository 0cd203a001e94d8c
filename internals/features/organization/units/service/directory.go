// file: internals/features/organization/units/service/directory.go
package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/sudoneoox/Picton/internals/features/organization/units/model"
	helper "github.com/sudoneoox/Picton/internals/helpers"
)

// Directory answers who may approve what, where. It is read-mostly; the
// mutating operations are admin-only.
type Directory struct {
	DB *gorm.DB
}

func NewDirectory(db *gorm.DB) *Directory {
	return &Directory{DB: db}
}

// WithTx returns a copy bound to tx so reads join the caller's transaction.
func (d *Directory) WithTx(tx *gorm.DB) *Directory {
	return &Directory{DB: tx}
}

/* =========================================================
   Reads
========================================================= */

func (d *Directory) Get(ctx context.Context, unitID uint) (*model.OrganizationalUnitModel, error) {
	var u model.OrganizationalUnitModel
	if err := d.DB.WithContext(ctx).First(&u, "unit_id = ?", unitID).Error; err != nil {
		if helper.IsRecordNotFound(err) {
			return nil, helper.NotFound("organizational unit", unitID)
		}
		return nil, err
	}
	return &u, nil
}

func (d *Directory) ByCode(ctx context.Context, code string) (*model.OrganizationalUnitModel, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	var u model.OrganizationalUnitModel
	if err := d.DB.WithContext(ctx).First(&u, "unit_code = ?", code).Error; err != nil {
		if helper.IsRecordNotFound(err) {
			return nil, helper.NotFound("organizational unit", code)
		}
		return nil, err
	}
	return &u, nil
}

// ResolveRef accepts a numeric unit id or a unit code.
func (d *Directory) ResolveRef(ctx context.Context, ref string) (*model.OrganizationalUnitModel, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, helper.NotFound("organizational unit", ref)
	}
	if id, err := strconv.ParseUint(ref, 10, 64); err == nil {
		return d.Get(ctx, uint(id))
	}
	return d.ByCode(ctx, ref)
}

func (d *Directory) List(ctx context.Context, activeOnly bool) ([]model.OrganizationalUnitModel, error) {
	q := d.DB.WithContext(ctx).Model(&model.OrganizationalUnitModel{})
	if activeOnly {
		q = q.Where("unit_is_active = ?", true)
	}
	var out []model.OrganizationalUnitModel
	err := q.Order("unit_level ASC, unit_name ASC").Find(&out).Error
	return out, err
}

func (d *Directory) Children(ctx context.Context, unitID uint) ([]model.OrganizationalUnitModel, error) {
	var out []model.OrganizationalUnitModel
	err := d.DB.WithContext(ctx).
		Where("unit_parent_id = ? AND unit_is_active = ?", unitID, true).
		Order("unit_name ASC").Find(&out).Error
	return out, err
}

// HierarchyPath returns the chain root..unit. A revisited unit means the stored
// parent links are corrupt and ErrHierarchyCycle is returned.
func (d *Directory) HierarchyPath(ctx context.Context, unitID uint) ([]model.OrganizationalUnitModel, error) {
	visited := map[uint]bool{}
	var rev []model.OrganizationalUnitModel

	next := &unitID
	for next != nil {
		if visited[*next] {
			return nil, fmt.Errorf("unit %d: %w", unitID, helper.ErrHierarchyCycle)
		}
		visited[*next] = true
		u, err := d.Get(ctx, *next)
		if err != nil {
			return nil, err
		}
		rev = append(rev, *u)
		next = u.UnitParentID
	}

	path := make([]model.OrganizationalUnitModel, len(rev))
	for i := range rev {
		path[i] = rev[len(rev)-1-i]
	}
	return path, nil
}

// ApproversFor returns active unit-scoped approvers for the position followed by
// active organization-wide approvers for it, each group ordered by user id.
func (d *Directory) ApproversFor(ctx context.Context, unitID uint, position string) ([]model.UnitApproverModel, error) {
	scoped, err := d.scopedApprovers(ctx, unitID, position)
	if err != nil {
		return nil, err
	}
	wide, err := d.orgWideApprovers(ctx, position)
	if err != nil {
		return nil, err
	}
	return mergeApprovers(scoped, wide), nil
}

// EligibleApprovers walks from the unit up to the root and uses the unit-scoped
// approvers of the nearest unit that has any, followed by organization-wide ones.
func (d *Directory) EligibleApprovers(ctx context.Context, unitID uint, position string) ([]model.UnitApproverModel, error) {
	path, err := d.HierarchyPath(ctx, unitID)
	if err != nil {
		return nil, err
	}
	var scoped []model.UnitApproverModel
	for i := len(path) - 1; i >= 0; i-- {
		scoped, err = d.scopedApprovers(ctx, path[i].UnitID, position)
		if err != nil {
			return nil, err
		}
		if len(scoped) > 0 {
			break
		}
	}
	wide, err := d.orgWideApprovers(ctx, position)
	if err != nil {
		return nil, err
	}
	return mergeApprovers(scoped, wide), nil
}

func (d *Directory) scopedApprovers(ctx context.Context, unitID uint, position string) ([]model.UnitApproverModel, error) {
	var out []model.UnitApproverModel
	err := d.DB.WithContext(ctx).
		Where("unit_approver_unit_id = ? AND unit_approver_role = ? AND unit_approver_is_active = ?", unitID, position, true).
		Order("unit_approver_user_id ASC, unit_approver_id ASC").
		Find(&out).Error
	return out, err
}

func (d *Directory) orgWideApprovers(ctx context.Context, position string) ([]model.UnitApproverModel, error) {
	var out []model.UnitApproverModel
	err := d.DB.WithContext(ctx).
		Where("unit_approver_role = ? AND unit_approver_is_organization_wide = ? AND unit_approver_is_active = ?", position, true, true).
		Order("unit_approver_user_id ASC, unit_approver_id ASC").
		Find(&out).Error
	return out, err
}

// mergeApprovers keeps the first row per user.
func mergeApprovers(groups ...[]model.UnitApproverModel) []model.UnitApproverModel {
	seen := map[uint]bool{}
	var out []model.UnitApproverModel
	for _, g := range groups {
		for _, a := range g {
			if seen[a.UnitApproverUserID] {
				continue
			}
			seen[a.UnitApproverUserID] = true
			out = append(out, a)
		}
	}
	return out
}

// UnitsForUser lists units where the user is an active approver.
func (d *Directory) UnitsForUser(ctx context.Context, userID uint) ([]model.OrganizationalUnitModel, error) {
	var out []model.OrganizationalUnitModel
	err := d.DB.WithContext(ctx).
		Where("unit_id IN (?)", d.DB.Model(&model.UnitApproverModel{}).
			Select("unit_approver_unit_id").
			Where("unit_approver_user_id = ? AND unit_approver_is_active = ?", userID, true)).
		Order("unit_level ASC, unit_name ASC").
		Find(&out).Error
	return out, err
}

// ApproverRolesFor lists the user's active approver rows.
func (d *Directory) ApproverRolesFor(ctx context.Context, userID uint) ([]model.UnitApproverModel, error) {
	var out []model.UnitApproverModel
	err := d.DB.WithContext(ctx).
		Where("unit_approver_user_id = ? AND unit_approver_is_active = ?", userID, true).
		Order("unit_approver_id ASC").
		Find(&out).Error
	return out, err
}

// PrimaryUnitForUser is the user's earliest active approver unit, or nil.
func (d *Directory) PrimaryUnitForUser(ctx context.Context, userID uint) (*model.OrganizationalUnitModel, error) {
	roles, err := d.ApproverRolesFor(ctx, userID)
	if err != nil || len(roles) == 0 {
		return nil, err
	}
	return d.Get(ctx, roles[0].UnitApproverUnitID)
}

func (d *Directory) ApproversOfUnit(ctx context.Context, unitID uint) ([]model.UnitApproverModel, error) {
	var out []model.UnitApproverModel
	err := d.DB.WithContext(ctx).
		Where("unit_approver_unit_id = ? AND unit_approver_is_active = ?", unitID, true).
		Order("unit_approver_role ASC, unit_approver_user_id ASC").
		Find(&out).Error
	return out, err
}

// IsUnder reports whether unitID equals ancestorID or lies below it.
func (d *Directory) IsUnder(ctx context.Context, unitID, ancestorID uint) (bool, error) {
	path, err := d.HierarchyPath(ctx, unitID)
	if err != nil {
		return false, err
	}
	for _, u := range path {
		if u.UnitID == ancestorID {
			return true, nil
		}
	}
	return false, nil
}

// IsActiveApprover reports whether the user holds any active approver row for the unit.
func (d *Directory) IsActiveApprover(ctx context.Context, userID, unitID uint) (bool, error) {
	var n int64
	err := d.DB.WithContext(ctx).Model(&model.UnitApproverModel{}).
		Where("unit_approver_user_id = ? AND unit_approver_unit_id = ? AND unit_approver_is_active = ?", userID, unitID, true).
		Count(&n).Error
	return n > 0, err
}
