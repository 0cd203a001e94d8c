package service

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/sudoneoox/Picton/internals/constants"
	approvalModel "github.com/sudoneoox/Picton/internals/features/forms/approvals/model"
	"github.com/sudoneoox/Picton/internals/features/forms/submissions/model"
	userModel "github.com/sudoneoox/Picton/internals/features/users/user/model"
	helper "github.com/sudoneoox/Picton/internals/helpers"
)

type SubmissionView struct {
	Submission   model.FormSubmissionModel           `json:"submission"`
	Identifier   *model.FormSubmissionIdentifierModel `json:"identifier,omitempty"`
	TemplateName string                              `json:"template_name"`
	Approvals    []approvalModel.FormApprovalModel   `json:"approvals"`
}

// canView: the submitter always, admins always, approver roles once submitted.
func canView(viewer *userModel.UserModel, sub *model.FormSubmissionModel) bool {
	switch {
	case viewer.ID == sub.SubmissionSubmitterID, viewer.IsAdmin():
		return true
	case viewer.Role.CanApprove():
		return sub.SubmissionStatus != constants.StatusDraft
	default:
		return false
	}
}

func (l *Lifecycle) view(ctx context.Context, sub *model.FormSubmissionModel, viewerID uint) (*SubmissionView, error) {
	viewer, err := loadUser(ctx, l.DB, viewerID)
	if err != nil {
		return nil, err
	}
	if !canView(viewer, sub) {
		return nil, helper.Forbidden("you do not have access to this submission")
	}

	v := &SubmissionView{Submission: *sub}
	if v.Identifier, err = l.identifierOf(ctx, sub.SubmissionID); err != nil {
		return nil, err
	}
	if tpl, err := l.Engine.Workflows.Template(ctx, sub.SubmissionTemplateID); err == nil {
		v.TemplateName = tpl.FormTemplateName
	}
	if v.Approvals, err = l.Approvals(ctx, sub.SubmissionID); err != nil {
		return nil, err
	}
	return v, nil
}

func (l *Lifecycle) Get(ctx context.Context, submissionID, viewerID uint) (*SubmissionView, error) {
	var sub model.FormSubmissionModel
	if err := l.DB.WithContext(ctx).First(&sub, "form_submission_id = ?", submissionID).Error; err != nil {
		if helper.IsRecordNotFound(err) {
			return nil, helper.NotFound("submission", submissionID)
		}
		return nil, err
	}
	return l.view(ctx, &sub, viewerID)
}

// ByIdentifier looks a submission up by its FRM-... identifier.
func (l *Lifecycle) ByIdentifier(ctx context.Context, identifier string, viewerID uint) (*SubmissionView, error) {
	identifier = strings.TrimSpace(identifier)
	var ident model.FormSubmissionIdentifierModel
	if err := l.DB.WithContext(ctx).
		First(&ident, "form_submission_identifier = ?", identifier).Error; err != nil {
		if helper.IsRecordNotFound(err) {
			return nil, helper.NotFound("submission", identifier)
		}
		return nil, err
	}
	return l.Get(ctx, ident.IdentifierSubmissionID, viewerID)
}

func (l *Lifecycle) IdentifiersFor(ctx context.Context, submitterID uint) ([]model.FormSubmissionIdentifierModel, error) {
	var out []model.FormSubmissionIdentifierModel
	err := l.DB.WithContext(ctx).
		Where("form_submission_identifier_student_id = ?", submitterID).
		Order("form_submission_identifier_submission_date DESC, form_submission_identifier_id DESC").
		Find(&out).Error
	return out, err
}

// ListMine returns the submitter's submissions, newest first, optionally filtered by status.
func (l *Lifecycle) ListMine(ctx context.Context, submitterID uint, status constants.SubmissionStatus, p helper.Paging) ([]model.FormSubmissionModel, int64, error) {
	q := l.DB.WithContext(ctx).Model(&model.FormSubmissionModel{}).
		Where("form_submission_submitter_id = ?", submitterID)
	if status != "" {
		q = q.Where("form_submission_status = ?", status)
	}
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []model.FormSubmissionModel
	err := q.Session(&gorm.Session{}).Order("form_submission_created_at DESC, form_submission_id DESC").
		Offset(p.Offset).Limit(p.Limit).
		Find(&out).Error
	return out, total, err
}

func (l *Lifecycle) Approvals(ctx context.Context, submissionID uint) ([]approvalModel.FormApprovalModel, error) {
	var out []approvalModel.FormApprovalModel
	err := l.DB.WithContext(ctx).
		Where("form_approval_submission_id = ?", submissionID).
		Order("form_approval_step_number ASC, form_approval_id ASC").
		Find(&out).Error
	return out, err
}
