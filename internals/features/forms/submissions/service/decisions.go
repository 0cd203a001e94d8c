package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/sudoneoox/Picton/internals/constants"
	approvalModel "github.com/sudoneoox/Picton/internals/features/forms/approvals/model"
	approvalService "github.com/sudoneoox/Picton/internals/features/forms/approvals/service"
	"github.com/sudoneoox/Picton/internals/features/forms/documents"
	"github.com/sudoneoox/Picton/internals/features/forms/submissions/model"
	templateModel "github.com/sudoneoox/Picton/internals/features/forms/templates/model"
	"github.com/sudoneoox/Picton/internals/features/forms/templates/schema"
	userModel "github.com/sudoneoox/Picton/internals/features/users/user/model"
	helper "github.com/sudoneoox/Picton/internals/helpers"
	"github.com/sudoneoox/Picton/internals/helpers/storage"
)

type DecisionInput struct {
	Comments        string
	FieldsToCorrect []string
}

type DecisionResult struct {
	Approval   approvalModel.FormApprovalModel  `json:"approval"`
	Submission model.FormSubmissionModel        `json:"submission"`
	Outcome    approvalService.Outcome          `json:"outcome"`
	Next       *approvalModel.FormApprovalModel `json:"next_approval,omitempty"`
}

func (l *Lifecycle) Approve(ctx context.Context, approvalID, actorID uint, in DecisionInput) (*DecisionResult, error) {
	return l.decide(ctx, approvalID, actorID, constants.DecisionApproved, in)
}

func (l *Lifecycle) Reject(ctx context.Context, approvalID, actorID uint, in DecisionInput) (*DecisionResult, error) {
	return l.decide(ctx, approvalID, actorID, constants.DecisionRejected, in)
}

// Return sends the submission back to the student. FieldsToCorrect is kept on
// the approval for the revision screen.
func (l *Lifecycle) Return(ctx context.Context, approvalID, actorID uint, in DecisionInput) (*DecisionResult, error) {
	return l.decide(ctx, approvalID, actorID, constants.DecisionReturned, in)
}

func (l *Lifecycle) decide(ctx context.Context, approvalID, actorID uint, decision constants.Decision, in DecisionInput) (*DecisionResult, error) {
	comments := strings.TrimSpace(in.Comments)
	if decision != constants.DecisionApproved && comments == "" {
		return nil, helper.Invalid("comments", "comments are required to %s a submission", verb(decision))
	}

	var (
		res   DecisionResult
		actor *userModel.UserModel
		tpl   *templateModel.FormTemplateModel
		step  *templateModel.FormApprovalWorkflowModel
	)
	err := l.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		eng := l.engine(tx)

		var a approvalModel.FormApprovalModel
		if err := tx.WithContext(ctx).First(&a, "form_approval_id = ?", approvalID).Error; err != nil {
			if helper.IsRecordNotFound(err) {
				return helper.NotFound("approval", approvalID)
			}
			return err
		}
		sub, err := lockSubmission(ctx, tx, a.ApprovalSubmissionID)
		if err != nil {
			return err
		}
		// re-read under the submission lock
		if err := tx.WithContext(ctx).First(&a, "form_approval_id = ?", approvalID).Error; err != nil {
			return err
		}

		if a.ApprovalApproverID != actorID {
			return helper.Forbidden("this approval is not assigned to you")
		}
		if sub.SubmissionStatus != constants.StatusPending {
			return helper.Invalid("status", "submission is %s, not pending", sub.SubmissionStatus)
		}
		if a.ApprovalDecision.Decided() {
			return helper.Invalid("decision", "this approval was already %s", a.ApprovalDecision)
		}
		if a.ApprovalStepNumber != sub.SubmissionCurrentStep {
			return helper.Invalid("step", "approval is for step %d but the submission is at step %d", a.ApprovalStepNumber, sub.SubmissionCurrentStep)
		}
		if actor, err = loadUser(ctx, tx, actorID); err != nil {
			return err
		}
		if !actor.HasSignature {
			return helper.Invalid("signature", "upload a signature before signing forms")
		}

		now := l.now()
		updates := map[string]any{
			"form_approval_decision":   decision,
			"form_approval_comments":   comments,
			"form_approval_decided_at": now,
		}
		if decision == constants.DecisionReturned && len(in.FieldsToCorrect) > 0 {
			updates["form_approval_fields_to_correct"] = datatypes.JSONSlice[string](in.FieldsToCorrect)
		}
		if err := tx.WithContext(ctx).Model(&approvalModel.FormApprovalModel{}).
			Where("form_approval_id = ?", a.ApprovalID).
			Updates(updates).Error; err != nil {
			return err
		}
		a.ApprovalDecision = decision
		a.ApprovalComments = comments
		a.ApprovalDecidedAt = &now
		if decision == constants.DecisionReturned {
			a.ApprovalFieldsToCorrect = in.FieldsToCorrect
		}

		out, err := eng.Recompute(ctx, sub)
		if err != nil {
			return err
		}
		if out.Status == constants.StatusPending {
			next, err := eng.Workflows.NextStepAfter(ctx, sub.SubmissionTemplateID, sub.SubmissionCurrentStep)
			if err != nil {
				return err
			}
			if next == nil {
				l.log.Warn("pending submission has no further steps",
					zap.Uint("submission_id", sub.SubmissionID),
					zap.Int("completed", out.Completed),
					zap.Int("required", sub.SubmissionRequiredApprovalCount))
			} else {
				if err := tx.WithContext(ctx).Model(sub).
					Update("form_submission_current_step", next.WorkflowOrder).Error; err != nil {
					return err
				}
				sub.SubmissionCurrentStep = next.WorkflowOrder
				res.Next, err = eng.Resolve(ctx, sub, nil, next.WorkflowOrder)
				if err != nil && !helper.IsNothingToRoute(err) {
					return err
				}
			}
		}

		if tpl, err = eng.Workflows.Template(ctx, sub.SubmissionTemplateID); err != nil {
			return err
		}
		if step, err = eng.Workflows.StepAt(ctx, sub.SubmissionTemplateID, a.ApprovalStepNumber); err != nil {
			return err
		}
		res.Approval = a
		res.Submission = *sub
		res.Outcome = out
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.log.Info("approval decided",
		zap.Uint("approval_id", res.Approval.ApprovalID),
		zap.Uint("submission_id", res.Submission.SubmissionID),
		zap.String("decision", string(decision)),
		zap.String("status", string(res.Outcome.Status)))

	l.signDocument(ctx, &res.Approval, &res.Submission, tpl, step, actor)
	ident, _ := l.identifierOf(ctx, res.Submission.SubmissionID)
	if res.Submission.SubmissionStatus != constants.StatusPending {
		l.notifySubmitter(ctx, &res.Submission, tpl, ident)
	}
	if res.Next != nil {
		l.notifyAssigned(ctx, res.Next, tpl, ident)
	}
	return &res, nil
}

func verb(d constants.Decision) string {
	switch d {
	case constants.DecisionRejected:
		return "reject"
	case constants.DecisionReturned:
		return "return"
	default:
		return "approve"
	}
}

// signDocument renders the approver's signed copy and records its key on the approval.
func (l *Lifecycle) signDocument(ctx context.Context, a *approvalModel.FormApprovalModel, sub *model.FormSubmissionModel, tpl *templateModel.FormTemplateModel, step *templateModel.FormApprovalWorkflowModel, actor *userModel.UserModel) {
	if l.Renderer == nil || l.Store == nil || tpl == nil || actor == nil {
		return
	}
	data, err := schema.DecodeData(sub.SubmissionFormData)
	if err != nil {
		l.log.Warn("signed document skipped", zap.Uint("approval_id", a.ApprovalID), zap.Error(err))
		return
	}
	position := ""
	if step != nil {
		position = step.WorkflowApprovalPosition
	}
	dc := &documents.DecisionContext{
		Decision:     a.ApprovalDecision,
		Position:     position,
		PositionCode: documents.PositionCode(position),
		Comments:     a.ApprovalComments,
		Step:         a.ApprovalStepNumber,
	}
	if a.ApprovalDecidedAt != nil {
		dc.DecidedAt = *a.ApprovalDecidedAt
	}
	if actor.SignatureKey != "" {
		dc.SignatureURL = l.Store.PublicURL(actor.SignatureKey)
	}

	ident, _ := l.identifierOf(ctx, sub.SubmissionID)
	identValue := ""
	if ident != nil {
		identValue = ident.IdentifierValue
	}
	doc, err := l.Renderer.Render(ctx, documents.RenderRequest{
		TemplatePath: tpl.FormTemplateDocumentTemplatePath,
		Identifier:   identValue,
		Actor:        person(actor),
		Fields:       data,
		Decision:     dc,
	})
	if err != nil {
		l.log.Warn("signed document render failed", zap.Uint("approval_id", a.ApprovalID), zap.Error(err))
		return
	}
	key := storage.JoinKey("documents", strconv.FormatUint(uint64(sub.SubmissionID), 10),
		fmt.Sprintf("step%d_%s.txt", a.ApprovalStepNumber, strings.ToLower(dc.PositionCode)))
	if !l.store(ctx, key, doc) {
		return
	}
	if err := l.DB.WithContext(ctx).Model(&approvalModel.FormApprovalModel{}).
		Where("form_approval_id = ?", a.ApprovalID).
		Update("form_approval_signed_document", key).Error; err != nil {
		l.log.Warn("signed document key not recorded", zap.Uint("approval_id", a.ApprovalID), zap.Error(err))
		return
	}
	a.ApprovalSignedDocument = key
}
