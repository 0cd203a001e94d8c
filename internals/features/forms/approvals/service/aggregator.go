// file: internals/features/forms/approvals/service/aggregator.go
package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/sudoneoox/Picton/internals/constants"
	"github.com/sudoneoox/Picton/internals/features/forms/approvals/model"
	submissionModel "github.com/sudoneoox/Picton/internals/features/forms/submissions/model"
	templateModel "github.com/sudoneoox/Picton/internals/features/forms/templates/model"
)

type Outcome struct {
	Status    constants.SubmissionStatus
	Completed int
}

// Aggregate derives a submission's status from its approvals. First match wins:
// any rejection, any return, required steps all decided, otherwise pending.
// Completed counts distinct required step orders carrying a decision.
func Aggregate(steps []templateModel.FormApprovalWorkflowModel, approvals []model.FormApprovalModel, required int) Outcome {
	requiredOrder := map[int]bool{}
	for _, s := range steps {
		if s.WorkflowIsRequired {
			requiredOrder[s.WorkflowOrder] = true
		}
	}

	var rejected, returned bool
	decided := map[int]bool{}
	for _, a := range approvals {
		switch a.ApprovalDecision {
		case constants.DecisionRejected:
			rejected = true
		case constants.DecisionReturned:
			returned = true
		}
		if a.ApprovalDecision.Decided() && requiredOrder[a.ApprovalStepNumber] {
			decided[a.ApprovalStepNumber] = true
		}
	}

	out := Outcome{Completed: len(decided)}
	switch {
	case rejected:
		out.Status = constants.StatusRejected
	case returned:
		out.Status = constants.StatusReturned
	case out.Completed >= required:
		out.Status = constants.StatusApproved
	default:
		out.Status = constants.StatusPending
	}
	return out
}

// Recompute is the single writer of submission status once a submission is
// pending. It updates sub in place.
func (e *Engine) Recompute(ctx context.Context, sub *submissionModel.FormSubmissionModel) (Outcome, error) {
	if sub.SubmissionStatus == constants.StatusDraft {
		return Outcome{Status: sub.SubmissionStatus, Completed: sub.SubmissionCompletedApprovalCount}, nil
	}

	steps, err := e.Workflows.StepsFor(ctx, sub.SubmissionTemplateID)
	if err != nil {
		return Outcome{}, err
	}
	var approvals []model.FormApprovalModel
	if err := e.DB.WithContext(ctx).
		Where("form_approval_submission_id = ?", sub.SubmissionID).
		Order("form_approval_step_number ASC, form_approval_id ASC").
		Find(&approvals).Error; err != nil {
		return Outcome{}, err
	}

	out := Aggregate(steps, approvals, sub.SubmissionRequiredApprovalCount)
	if out.Status == sub.SubmissionStatus && out.Completed == sub.SubmissionCompletedApprovalCount {
		return out, nil
	}
	if err := e.DB.WithContext(ctx).Model(&submissionModel.FormSubmissionModel{}).
		Where("form_submission_id = ?", sub.SubmissionID).
		Updates(map[string]any{
			"form_submission_status":                   out.Status,
			"form_submission_completed_approval_count": out.Completed,
		}).Error; err != nil {
		return Outcome{}, err
	}
	if out.Status != sub.SubmissionStatus {
		e.log.Info("submission status changed",
			zap.Uint("submission_id", sub.SubmissionID),
			zap.String("from", string(sub.SubmissionStatus)),
			zap.String("to", string(out.Status)))
	}
	sub.SubmissionStatus = out.Status
	sub.SubmissionCompletedApprovalCount = out.Completed
	return out, nil
}
