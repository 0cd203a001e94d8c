// file: internals/features/forms/approvals/service/resolver.go
package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sudoneoox/Picton/internals/features/forms/approvals/model"
	submissionModel "github.com/sudoneoox/Picton/internals/features/forms/submissions/model"
	helper "github.com/sudoneoox/Picton/internals/helpers"
)

// Resolve materializes (or re-checks) the approval assignment of one step.
//
// The submission row is locked for the duration, so concurrent resolves of the
// same submission serialize. An existing undecided row is re-routed when the
// delegation state of its nominal holder changed; decided rows are returned as is.
// Routing gaps return an error wrapping helper.ErrNothingToRoute.
func (e *Engine) Resolve(ctx context.Context, sub *submissionModel.FormSubmissionModel, requestedApprover *uint, step int) (*model.FormApprovalModel, error) {
	var out *model.FormApprovalModel
	err := e.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		out, err = e.WithTx(tx).resolve(ctx, sub.SubmissionID, requestedApprover, step)
		return err
	})
	if err != nil {
		if helper.IsNothingToRoute(err) {
			e.log.Warn("nothing to route",
				zap.Uint("submission_id", sub.SubmissionID),
				zap.Int("step", step),
				zap.Error(err))
		}
		return nil, err
	}
	return out, nil
}

func (e *Engine) resolve(ctx context.Context, submissionID uint, requestedApprover *uint, step int) (*model.FormApprovalModel, error) {
	var sub submissionModel.FormSubmissionModel
	if err := e.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&sub, "form_submission_id = ?", submissionID).Error; err != nil {
		if helper.IsRecordNotFound(err) {
			return nil, helper.NotFound("submission", submissionID)
		}
		return nil, err
	}

	wfStep, err := e.Workflows.StepAt(ctx, sub.SubmissionTemplateID, step)
	if err != nil {
		return nil, err
	}
	if wfStep == nil {
		return nil, fmt.Errorf("template %d has no step %d: %w", sub.SubmissionTemplateID, step, helper.ErrNothingToRoute)
	}
	if sub.SubmissionUnitID == nil {
		return nil, fmt.Errorf("submission %d has no unit: %w", sub.SubmissionID, helper.ErrNothingToRoute)
	}
	unitID := *sub.SubmissionUnitID
	now := e.Now().UTC()

	existing, err := e.approvalAt(ctx, sub.SubmissionID, step)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return e.recheck(ctx, existing, unitID)
	}

	var nominal uint
	switch {
	case requestedApprover != nil:
		nominal = *requestedApprover
	default:
		eligible, err := e.Directory.EligibleApprovers(ctx, unitID, wfStep.WorkflowApprovalPosition)
		if err != nil {
			return nil, err
		}
		if len(eligible) == 0 {
			return nil, fmt.Errorf("no %q approver for unit %d: %w", wfStep.WorkflowApprovalPosition, unitID, helper.ErrNothingToRoute)
		}
		nominal = eligible[0].UnitApproverUserID
	}

	actual, delegatedBy, err := e.actualApprover(ctx, nominal, unitID)
	if err != nil {
		return nil, err
	}

	row := model.FormApprovalModel{
		ApprovalSubmissionID:  sub.SubmissionID,
		ApprovalApproverID:    actual,
		ApprovalStepNumber:    step,
		ApprovalWorkflowID:    &wfStep.WorkflowID,
		ApprovalReceivedAt:    now,
		ApprovalDelegatedByID: delegatedBy,
	}
	if err := e.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row).Error; err != nil {
		return nil, fmt.Errorf("create approval: %w", err)
	}

	created, err := e.approvalAt(ctx, sub.SubmissionID, step)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, fmt.Errorf("approval for submission %d step %d vanished after insert", sub.SubmissionID, step)
	}
	e.log.Info("approval routed",
		zap.Uint("submission_id", sub.SubmissionID),
		zap.Int("step", step),
		zap.Uint("approver_id", created.ApprovalApproverID))
	return created, nil
}

// approvalAt returns the assignment of one step, or nil.
func (e *Engine) approvalAt(ctx context.Context, submissionID uint, step int) (*model.FormApprovalModel, error) {
	var rows []model.FormApprovalModel
	if err := e.DB.WithContext(ctx).
		Where("form_approval_submission_id = ? AND form_approval_step_number = ?", submissionID, step).
		Order("form_approval_id ASC").
		Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// actualApprover applies the nominal approver's delegation in effect now. A
// delegation given at an ancestor unit, or at the unit of an organization-wide
// role, also covers the submission's unit.
func (e *Engine) actualApprover(ctx context.Context, nominal, unitID uint) (uint, *uint, error) {
	d, err := e.Registry.DelegationCovering(ctx, nominal, unitID, e.Now())
	if err != nil {
		return 0, nil, err
	}
	if d == nil {
		return nominal, nil, nil
	}
	holder := nominal
	return d.DelegationDelegateID, &holder, nil
}

func (e *Engine) recheck(ctx context.Context, row *model.FormApprovalModel, unitID uint) (*model.FormApprovalModel, error) {
	if row.ApprovalDecision.Decided() {
		return row, nil
	}
	actual, delegatedBy, err := e.actualApprover(ctx, row.Holder(), unitID)
	if err != nil {
		return nil, err
	}
	if actual == row.ApprovalApproverID && sameHolder(delegatedBy, row.ApprovalDelegatedByID) {
		return row, nil
	}

	err = e.DB.WithContext(ctx).Model(&model.FormApprovalModel{}).
		Where("form_approval_id = ? AND form_approval_decision = ?", row.ApprovalID, "").
		Updates(map[string]any{
			"form_approval_approver_id":     actual,
			"form_approval_delegated_by_id": delegatedBy,
		}).Error
	if err != nil {
		if helper.IsUniqueViolation(err) {
			e.log.Warn("approval reassignment collided, keeping current approver",
				zap.Uint("approval_id", row.ApprovalID), zap.Uint("approver_id", actual))
			return row, nil
		}
		return nil, err
	}
	e.log.Info("approval reassigned",
		zap.Uint("approval_id", row.ApprovalID),
		zap.Uint("from", row.ApprovalApproverID),
		zap.Uint("to", actual))
	row.ApprovalApproverID = actual
	row.ApprovalDelegatedByID = delegatedBy
	return row, nil
}

func sameHolder(a, b *uint) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
