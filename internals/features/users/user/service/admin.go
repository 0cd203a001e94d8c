package service

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sudoneoox/Picton/internals/constants"
	"github.com/sudoneoox/Picton/internals/features/users/user/model"
	helper "github.com/sudoneoox/Picton/internals/helpers"
)

/* =========================================================
   Administration
========================================================= */

type ListFilter struct {
	Role   constants.Role
	Search string
	Active *bool
}

// List pages through users ordered by id.
func (s *Service) List(ctx context.Context, f ListFilter, p helper.Paging) ([]model.UserModel, int64, error) {
	q := s.DB.WithContext(ctx).Model(&model.UserModel{})
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}
	if f.Active != nil {
		q = q.Where("is_active = ?", *f.Active)
	}
	if term := strings.ToLower(strings.TrimSpace(f.Search)); term != "" {
		like := "%" + term + "%"
		q = q.Where("LOWER(user_name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?",
			like, like, like, like)
	}
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []model.UserModel
	err := q.Session(&gorm.Session{}).Order("id ASC").Offset(p.Offset).Limit(p.Limit).Find(&rows).Error
	return rows, total, err
}

// CreateByAdmin creates an account on behalf of an administrator. The admin
// role carries the superuser flag.
func (s *Service) CreateByAdmin(ctx context.Context, in CreateInput) (*model.UserModel, error) {
	in.IsSuperuser = in.Role == constants.RoleAdmin
	u, err := s.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	zap.L().Named("users").Info("user created by admin",
		zap.Uint("user_id", u.ID), zap.String("role", string(u.Role)))
	return u, nil
}

// ToggleActive flips a user's active flag. Superusers and the caller's own
// account cannot be toggled. A reactivated user without a personal id gets one.
func (s *Service) ToggleActive(ctx context.Context, actorID, userID uint) (*model.UserModel, error) {
	u, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.IsSuperuser {
		return nil, helper.Forbidden("cannot change status of superuser accounts")
	}
	if u.ID == actorID {
		return nil, helper.Forbidden("cannot change your own account status")
	}

	res := s.DB.WithContext(ctx).Model(&model.UserModel{}).
		Where("id = ? AND is_active = ?", u.ID, u.IsActive).
		Update("is_active", !u.IsActive)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, helper.Invalid("is_active", "user status changed concurrently, retry")
	}
	u.IsActive = !u.IsActive

	if u.IsActive && (u.PersonalID == nil || *u.PersonalID == "") {
		pid, err := s.AssignPersonalID(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		u.PersonalID = &pid
	}
	return u, nil
}

type UpdateInput struct {
	UserName  *string
	Email     *string
	FirstName *string
	LastName  *string
	Role      *constants.Role
}

// Update applies a partial profile change. Only a superuser may edit another
// superuser, and an admin is never demoted.
func (s *Service) Update(ctx context.Context, actorID, userID uint, in UpdateInput) (*model.UserModel, error) {
	actor, err := s.Get(ctx, actorID)
	if err != nil {
		return nil, err
	}
	u, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.IsSuperuser && !actor.IsSuperuser {
		return nil, helper.Forbidden("only superusers can modify other superuser accounts")
	}

	changes := map[string]any{}
	if in.UserName != nil {
		name := strings.TrimSpace(*in.UserName)
		if name == "" {
			return nil, helper.Invalid("user_name", "is required")
		}
		changes["user_name"] = name
	}
	if in.Email != nil {
		changes["email"] = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.FirstName != nil {
		changes["first_name"] = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		changes["last_name"] = strings.TrimSpace(*in.LastName)
	}
	if in.Role != nil && *in.Role != u.Role {
		role := *in.Role
		if !role.Valid() {
			return nil, helper.Invalid("role", "unknown role %q", role)
		}
		if u.Role == constants.RoleAdmin {
			return nil, helper.Invalid("role", "cannot deprivilege an admin")
		}
		changes["role"] = role
		changes["is_superuser"] = role == constants.RoleAdmin
	}
	if len(changes) == 0 {
		return u, nil
	}

	if err := s.DB.WithContext(ctx).Model(&model.UserModel{}).
		Where("id = ?", u.ID).
		Updates(changes).Error; err != nil {
		if helper.IsUniqueViolation(err) {
			return nil, helper.Invalid("user_name", "user name or email already taken")
		}
		return nil, err
	}
	return s.Get(ctx, u.ID)
}
