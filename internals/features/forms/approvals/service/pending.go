// file: internals/features/forms/approvals/service/pending.go
package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/sudoneoox/Picton/internals/constants"
	"github.com/sudoneoox/Picton/internals/features/forms/approvals/model"
	submissionModel "github.com/sudoneoox/Picton/internals/features/forms/submissions/model"
	templateModel "github.com/sudoneoox/Picton/internals/features/forms/templates/model"
	unitModel "github.com/sudoneoox/Picton/internals/features/organization/units/model"
	userModel "github.com/sudoneoox/Picton/internals/features/users/user/model"
	helper "github.com/sudoneoox/Picton/internals/helpers"
)

// authority is one position the user may exercise, either their own or one
// borrowed from a delegator (Nominal then names the delegator).
type authority struct {
	Position string
	UnitID   uint
	OrgWide  bool
	Nominal  uint
}

type PendingItem struct {
	Approval   model.FormApprovalModel             `json:"approval"`
	Submission submissionModel.FormSubmissionModel `json:"submission"`
	UnitRole   string                              `json:"unit_role"`
	UnitName   string                              `json:"unit_name"`
	Delegated  bool                                `json:"delegated"`
}

func (e *Engine) authoritiesOf(ctx context.Context, userID uint) ([]authority, error) {
	own, err := e.Directory.ApproverRolesFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	var out []authority
	for _, a := range own {
		out = append(out, authority{Position: a.UnitApproverRole, UnitID: a.UnitApproverUnitID, OrgWide: a.UnitApproverOrgWide, Nominal: userID})
	}

	received, err := e.Registry.ActiveDelegationsReceivedBy(ctx, userID, e.Now())
	if err != nil {
		return nil, err
	}
	for _, d := range received {
		rows, err := e.Directory.ApproverRolesFor(ctx, d.DelegationDelegatorID)
		if err != nil {
			return nil, err
		}
		for _, a := range rows {
			if a.UnitApproverUnitID != d.DelegationUnitID {
				continue
			}
			out = append(out, authority{Position: a.UnitApproverRole, UnitID: a.UnitApproverUnitID, OrgWide: a.UnitApproverOrgWide, Nominal: d.DelegationDelegatorID})
		}
	}
	return out, nil
}

// PendingFor re-resolves every pending submission whose current step falls under
// one of the user's authorities, then lists the undecided approvals assigned to
// the user. Re-resolution picks up delegations that began after routing.
func (e *Engine) PendingFor(ctx context.Context, userID uint) ([]PendingItem, error) {
	var user userModel.UserModel
	if err := e.DB.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if helper.IsRecordNotFound(err) {
			return nil, helper.NotFound("user", userID)
		}
		return nil, err
	}

	auths, err := e.authoritiesOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(auths) > 0 {
		if err := e.refreshRouting(ctx, &user, auths); err != nil {
			return nil, err
		}
	}
	return e.assignedTo(ctx, userID)
}

type candidate struct {
	submissionModel.FormSubmissionModel
	Position string `gorm:"column:form_approval_workflow_approval_position"`
}

func (e *Engine) refreshRouting(ctx context.Context, user *userModel.UserModel, auths []authority) error {
	positions := make([]string, 0, len(auths))
	seen := map[string]bool{}
	for _, a := range auths {
		if !seen[a.Position] {
			seen[a.Position] = true
			positions = append(positions, a.Position)
		}
	}

	var subs []candidate
	if err := e.DB.WithContext(ctx).
		Table(submissionModel.FormSubmissionModel{}.TableName()+" AS s").
		Select("s.*, w.form_approval_workflow_approval_position").
		Joins("JOIN "+templateModel.FormApprovalWorkflowModel{}.TableName()+" AS w ON w.form_approval_workflow_template_id = s.form_submission_template_id AND w.form_approval_workflow_order = s.form_submission_current_step").
		Where("s.form_submission_status = ? AND s.form_submission_unit_id IS NOT NULL", constants.StatusPending).
		Where("w.form_approval_workflow_approval_position IN ?", positions).
		Order("s.form_submission_id ASC").
		Scan(&subs).Error; err != nil {
		return err
	}

	for i := range subs {
		sub := subs[i].FormSubmissionModel
		for _, a := range auths {
			if a.Position != subs[i].Position {
				continue
			}
			inScope := a.OrgWide || user.IsSuperuser
			if !inScope {
				under, err := e.Directory.IsUnder(ctx, *sub.SubmissionUnitID, a.UnitID)
				if err != nil {
					e.log.Warn("scope check failed", zap.Uint("submission_id", sub.SubmissionID), zap.Error(err))
					continue
				}
				inScope = under
			}
			if !inScope {
				continue
			}
			nominal := a.Nominal
			if _, err := e.Resolve(ctx, &sub, &nominal, sub.SubmissionCurrentStep); err != nil && !helper.IsNothingToRoute(err) {
				return err
			}
			break
		}
	}
	return nil
}

func (e *Engine) assignedTo(ctx context.Context, userID uint) ([]PendingItem, error) {
	var approvals []model.FormApprovalModel
	if err := e.DB.WithContext(ctx).
		Table(model.FormApprovalModel{}.TableName()+" AS a").
		Select("a.*").
		Joins("JOIN "+submissionModel.FormSubmissionModel{}.TableName()+" AS s ON s.form_submission_id = a.form_approval_submission_id").
		Where("a.form_approval_approver_id = ? AND a.form_approval_decision = ?", userID, constants.DecisionNone).
		Where("s.form_submission_status = ?", constants.StatusPending).
		Order("a.form_approval_received_at ASC, a.form_approval_id ASC").
		Scan(&approvals).Error; err != nil {
		return nil, err
	}

	items := make([]PendingItem, 0, len(approvals))
	units := map[uint]*unitModel.OrganizationalUnitModel{}
	for _, a := range approvals {
		var sub submissionModel.FormSubmissionModel
		if err := e.DB.WithContext(ctx).First(&sub, "form_submission_id = ?", a.ApprovalSubmissionID).Error; err != nil {
			return nil, err
		}
		item := PendingItem{Approval: a, Submission: sub, Delegated: a.ApprovalDelegatedByID != nil}

		if step, err := e.Workflows.StepAt(ctx, sub.SubmissionTemplateID, a.ApprovalStepNumber); err == nil && step != nil {
			item.UnitRole = step.WorkflowApprovalPosition
		}
		if sub.SubmissionUnitID != nil {
			u, ok := units[*sub.SubmissionUnitID]
			if !ok {
				if got, err := e.Directory.Get(ctx, *sub.SubmissionUnitID); err == nil {
					u = got
				}
				units[*sub.SubmissionUnitID] = u
			}
			if u != nil {
				item.UnitName = u.UnitName
			}
		}
		items = append(items, item)
	}
	return items, nil
}
