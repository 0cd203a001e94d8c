// file: internals/features/organization/delegations/service/registry.go
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/sudoneoox/Picton/internals/constants"
	notification "github.com/sudoneoox/Picton/internals/features/home/notifications/service"
	"github.com/sudoneoox/Picton/internals/features/organization/delegations/model"
	unitService "github.com/sudoneoox/Picton/internals/features/organization/units/service"
	userModel "github.com/sudoneoox/Picton/internals/features/users/user/model"
	helper "github.com/sudoneoox/Picton/internals/helpers"
)

// Registry owns time-bounded transfers of approval authority.
type Registry struct {
	DB        *gorm.DB
	Directory *unitService.Directory
	Notifier  notification.Notifier
	Now       func() time.Time
	log       *zap.Logger
}

func NewRegistry(db *gorm.DB, dir *unitService.Directory, notifier notification.Notifier) *Registry {
	if notifier == nil {
		notifier = notification.Nop
	}
	return &Registry{
		DB:        db,
		Directory: dir,
		Notifier:  notifier,
		Now:       time.Now,
		log:       zap.L().Named("delegations"),
	}
}

// WithTx returns a copy whose reads and writes join tx.
func (r *Registry) WithTx(tx *gorm.DB) *Registry {
	cp := *r
	cp.DB = tx
	cp.Directory = r.Directory.WithTx(tx)
	return &cp
}

func (r *Registry) now() time.Time { return r.Now().UTC() }

/* =========================================================
   Lookups
========================================================= */

// ActiveDelegationFor returns the delegation in effect for the delegator at the
// given instant, optionally narrowed to a unit. Ties resolve by latest start,
// then lowest id.
func (r *Registry) ActiveDelegationFor(ctx context.Context, delegatorID uint, unitID *uint, at time.Time) (*model.ApprovalDelegationModel, error) {
	at = at.UTC()
	q := r.DB.WithContext(ctx).
		Where("approval_delegation_delegator_id = ? AND approval_delegation_is_active = ?", delegatorID, true).
		Where("approval_delegation_start_date <= ? AND approval_delegation_end_date >= ?", at, at)
	if unitID != nil {
		q = q.Where("approval_delegation_unit_id = ?", *unitID)
	}
	var rows []model.ApprovalDelegationModel
	if err := q.Order("approval_delegation_start_date DESC, approval_delegation_id ASC").Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// ActiveDelegateFor returns the delegate's user id, or ok=false when the
// delegator acts for themselves.
func (r *Registry) ActiveDelegateFor(ctx context.Context, delegatorID uint, unitID *uint, at time.Time) (uint, bool, error) {
	d, err := r.ActiveDelegationFor(ctx, delegatorID, unitID, at)
	if err != nil || d == nil {
		return 0, false, err
	}
	return d.DelegationDelegateID, true, nil
}

// DelegationCovering finds the delegation that applies to the delegator's work
// on a submission in unitID: one given for the unit or its nearest ancestor
// first, then one given for a unit where the delegator approves
// organization-wide.
func (r *Registry) DelegationCovering(ctx context.Context, delegatorID, unitID uint, at time.Time) (*model.ApprovalDelegationModel, error) {
	path, err := r.Directory.HierarchyPath(ctx, unitID)
	if err != nil {
		return nil, err
	}
	seen := map[uint]bool{}
	for i := len(path) - 1; i >= 0; i-- {
		id := path[i].UnitID
		seen[id] = true
		d, err := r.ActiveDelegationFor(ctx, delegatorID, &id, at)
		if err != nil || d != nil {
			return d, err
		}
	}

	roles, err := r.Directory.ApproverRolesFor(ctx, delegatorID)
	if err != nil {
		return nil, err
	}
	for _, a := range roles {
		id := a.UnitApproverUnitID
		if !a.UnitApproverOrgWide || seen[id] {
			continue
		}
		seen[id] = true
		d, err := r.ActiveDelegationFor(ctx, delegatorID, &id, at)
		if err != nil || d != nil {
			return d, err
		}
	}
	return nil, nil
}

func (r *Registry) activeWhere(ctx context.Context, column string, userID uint, at time.Time) ([]model.ApprovalDelegationModel, error) {
	at = at.UTC()
	var out []model.ApprovalDelegationModel
	err := r.DB.WithContext(ctx).
		Where(column+" = ? AND approval_delegation_is_active = ?", userID, true).
		Where("approval_delegation_start_date <= ? AND approval_delegation_end_date >= ?", at, at).
		Order("approval_delegation_start_date DESC, approval_delegation_id ASC").
		Find(&out).Error
	return out, err
}

// ActiveDelegationsReceivedBy lists delegations in effect where the user is the delegate.
func (r *Registry) ActiveDelegationsReceivedBy(ctx context.Context, userID uint, at time.Time) ([]model.ApprovalDelegationModel, error) {
	return r.activeWhere(ctx, "approval_delegation_delegate_id", userID, at)
}

func (r *Registry) ActiveDelegationsGivenBy(ctx context.Context, userID uint, at time.Time) ([]model.ApprovalDelegationModel, error) {
	return r.activeWhere(ctx, "approval_delegation_delegator_id", userID, at)
}

// ListMine returns every delegation the user gave or received, newest first.
func (r *Registry) ListMine(ctx context.Context, userID uint) ([]model.ApprovalDelegationModel, error) {
	var out []model.ApprovalDelegationModel
	err := r.DB.WithContext(ctx).
		Where("approval_delegation_delegator_id = ? OR approval_delegation_delegate_id = ?", userID, userID).
		Order("approval_delegation_start_date DESC, approval_delegation_id DESC").
		Find(&out).Error
	return out, err
}

func (r *Registry) Get(ctx context.Context, id uint) (*model.ApprovalDelegationModel, error) {
	var d model.ApprovalDelegationModel
	if err := r.DB.WithContext(ctx).First(&d, "approval_delegation_id = ?", id).Error; err != nil {
		if helper.IsRecordNotFound(err) {
			return nil, helper.NotFound("delegation", id)
		}
		return nil, err
	}
	return &d, nil
}

func (r *Registry) History(ctx context.Context, delegationID uint) ([]model.DelegationHistoryModel, error) {
	if _, err := r.Get(ctx, delegationID); err != nil {
		return nil, err
	}
	var out []model.DelegationHistoryModel
	err := r.DB.WithContext(ctx).
		Where("delegation_history_delegation_id = ?", delegationID).
		Order("delegation_history_created_at ASC, delegation_history_id ASC").
		Find(&out).Error
	return out, err
}

/* =========================================================
   Mutations
========================================================= */

type CreateInput struct {
	DelegatorID uint
	DelegateID  uint
	UnitID      uint
	StartDate   time.Time
	EndDate     time.Time
	Reason      string
}

func (r *Registry) loadUser(ctx context.Context, tx *gorm.DB, id uint) (*userModel.UserModel, error) {
	var u userModel.UserModel
	if err := tx.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		if helper.IsRecordNotFound(err) {
			return nil, helper.NotFound("user", id)
		}
		return nil, err
	}
	return &u, nil
}

func (r *Registry) writeHistory(ctx context.Context, tx *gorm.DB, delegationID uint, action constants.DelegationAction, actorID *uint, details map[string]any) error {
	raw, err := json.Marshal(details)
	if err != nil {
		return err
	}
	return tx.WithContext(ctx).Create(&model.DelegationHistoryModel{
		HistoryDelegationID: delegationID,
		HistoryAction:       action,
		HistoryActorID:      actorID,
		HistoryDetails:      datatypes.JSON(raw),
	}).Error
}

// Create validates the window and standing, rejects overlapping windows for the
// same delegator and unit, and records a "created" history entry.
func (r *Registry) Create(ctx context.Context, actorID uint, in CreateInput) (*model.ApprovalDelegationModel, error) {
	start, end := in.StartDate.UTC(), in.EndDate.UTC()
	if !end.After(start) {
		return nil, helper.Invalid("end_date", "must be after start_date")
	}
	if in.DelegatorID == in.DelegateID {
		return nil, helper.Invalid("delegate_id", "cannot delegate to yourself")
	}

	var created *model.ApprovalDelegationModel
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reg := r.WithTx(tx)

		actor, err := reg.loadUser(ctx, tx, actorID)
		if err != nil {
			return err
		}
		if !actor.IsAdmin() && actorID != in.DelegatorID {
			return helper.Forbidden("you can only delegate your own authority")
		}
		delegate, err := reg.loadUser(ctx, tx, in.DelegateID)
		if err != nil {
			return err
		}
		if !delegate.IsActive {
			return helper.Invalid("delegate_id", "delegate is not an active user")
		}
		if _, err := reg.Directory.Get(ctx, in.UnitID); err != nil {
			return err
		}
		if !actor.IsAdmin() {
			ok, err := reg.Directory.IsActiveApprover(ctx, in.DelegatorID, in.UnitID)
			if err != nil {
				return err
			}
			if !ok {
				return helper.Forbidden("you are not an active approver for this unit")
			}
		}

		var overlapping int64
		if err := tx.WithContext(ctx).Model(&model.ApprovalDelegationModel{}).
			Where("approval_delegation_delegator_id = ? AND approval_delegation_unit_id = ? AND approval_delegation_is_active = ?",
				in.DelegatorID, in.UnitID, true).
			Where("approval_delegation_start_date <= ? AND approval_delegation_end_date >= ?", end, start).
			Count(&overlapping).Error; err != nil {
			return err
		}
		if overlapping > 0 {
			return helper.Invalid("start_date", "an active delegation already covers part of this period")
		}

		d := &model.ApprovalDelegationModel{
			DelegationDelegatorID: in.DelegatorID,
			DelegationDelegateID:  in.DelegateID,
			DelegationUnitID:      in.UnitID,
			DelegationStartDate:   start,
			DelegationEndDate:     end,
			DelegationReason:      strings.TrimSpace(in.Reason),
			DelegationIsActive:    true,
		}
		if err := tx.WithContext(ctx).Create(d).Error; err != nil {
			return err
		}
		if err := reg.writeHistory(ctx, tx, d.DelegationID, constants.DelegationCreated, &actorID, map[string]any{
			"delegator_id": in.DelegatorID,
			"delegate_id":  in.DelegateID,
			"unit_id":      in.UnitID,
			"start_date":   start,
			"end_date":     end,
			"reason":       d.DelegationReason,
		}); err != nil {
			return err
		}
		created = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.Notifier.Notify(ctx, notification.Notification{
		UserID: created.DelegationDelegateID,
		Title:  "Delegation Assigned",
		Message: fmt.Sprintf("You have been assigned as a delegate from %s to %s.",
			created.DelegationStartDate.Format("2006-01-02"), created.DelegationEndDate.Format("2006-01-02")),
		Kind: constants.NotifyDelegation,
	})
	r.log.Info("delegation created",
		zap.Uint("delegation_id", created.DelegationID),
		zap.Uint("delegator_id", created.DelegationDelegatorID),
		zap.Uint("delegate_id", created.DelegationDelegateID))
	return created, nil
}

// Cancel deactivates a delegation. Approvals already routed to the delegate keep
// their assignment; only later resolutions see the change.
func (r *Registry) Cancel(ctx context.Context, delegationID, actorID uint) error {
	var d *model.ApprovalDelegationModel
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reg := r.WithTx(tx)
		var err error
		d, err = reg.Get(ctx, delegationID)
		if err != nil {
			return err
		}
		actor, err := reg.loadUser(ctx, tx, actorID)
		if err != nil {
			return err
		}
		if actorID != d.DelegationDelegatorID && !actor.IsAdmin() {
			return helper.Forbidden("only the delegator or an administrator can cancel a delegation")
		}
		if !d.DelegationIsActive {
			return helper.Invalid("delegation", "delegation is already inactive")
		}
		if err := tx.WithContext(ctx).Model(d).Update("approval_delegation_is_active", false).Error; err != nil {
			return err
		}
		return reg.writeHistory(ctx, tx, d.DelegationID, constants.DelegationCancelled, &actorID, map[string]any{
			"cancelled_at": r.now(),
		})
	})
	if err != nil {
		return err
	}

	r.Notifier.Notify(ctx, notification.Notification{
		UserID:  d.DelegationDelegateID,
		Title:   "Delegation Cancelled",
		Message: "A delegation assigned to you has been cancelled.",
		Kind:    constants.NotifyDelegation,
	})
	return nil
}

// ExpireLapsed deactivates delegations whose window ended before now.
func (r *Registry) ExpireLapsed(ctx context.Context) (int, error) {
	now := r.now()
	var lapsed []model.ApprovalDelegationModel
	if err := r.DB.WithContext(ctx).
		Where("approval_delegation_is_active = ? AND approval_delegation_end_date < ?", true, now).
		Order("approval_delegation_id ASC").
		Find(&lapsed).Error; err != nil {
		return 0, err
	}

	expired := 0
	for i := range lapsed {
		d := lapsed[i]
		changed := false
		err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			res := tx.Model(&model.ApprovalDelegationModel{}).
				Where("approval_delegation_id = ? AND approval_delegation_is_active = ?", d.DelegationID, true).
				Update("approval_delegation_is_active", false)
			if res.Error != nil || res.RowsAffected == 0 {
				return res.Error
			}
			changed = true
			return r.writeHistory(ctx, tx, d.DelegationID, constants.DelegationExpired, nil, map[string]any{
				"end_date":   d.DelegationEndDate,
				"expired_at": now,
			})
		})
		if err != nil {
			return expired, fmt.Errorf("expire delegation %d: %w", d.DelegationID, err)
		}
		if changed {
			expired++
		}
	}
	if expired > 0 {
		r.log.Info("delegations expired", zap.Int("count", expired))
	}
	return expired, nil
}
