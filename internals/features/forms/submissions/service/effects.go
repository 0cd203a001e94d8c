package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sudoneoox/Picton/internals/constants"
	approvalModel "github.com/sudoneoox/Picton/internals/features/forms/approvals/model"
	"github.com/sudoneoox/Picton/internals/features/forms/documents"
	"github.com/sudoneoox/Picton/internals/features/forms/submissions/model"
	templateModel "github.com/sudoneoox/Picton/internals/features/forms/templates/model"
	notification "github.com/sudoneoox/Picton/internals/features/home/notifications/service"
	userModel "github.com/sudoneoox/Picton/internals/features/users/user/model"
	"github.com/sudoneoox/Picton/internals/helpers/storage"
)

/* =========================================================
   Post-commit side effects. Failures are logged only.
========================================================= */

func person(u *userModel.UserModel) documents.Person {
	p := documents.Person{ID: u.ID, Name: u.FullName(), Email: u.Email}
	if u.PersonalID != nil {
		p.PersonalID = *u.PersonalID
	}
	return p
}

// render produces the submitter's copy of the form, or nil when rendering fails.
func (l *Lifecycle) render(ctx context.Context, tpl *templateModel.FormTemplateModel, sub *model.FormSubmissionModel, identifier string, data map[string]any) []byte {
	if l.Renderer == nil || tpl == nil {
		return nil
	}
	submitter, err := loadUser(ctx, l.DB, sub.SubmissionSubmitterID)
	if err != nil {
		l.log.Warn("document render skipped", zap.Uint("submission_id", sub.SubmissionID), zap.Error(err))
		return nil
	}
	doc, err := l.Renderer.Render(ctx, documents.RenderRequest{
		TemplatePath: tpl.FormTemplateDocumentTemplatePath,
		Identifier:   identifier,
		Actor:        person(submitter),
		Fields:       data,
	})
	if err != nil {
		l.log.Warn("document render failed",
			zap.Uint("submission_id", sub.SubmissionID),
			zap.String("template", tpl.FormTemplateDocumentTemplatePath),
			zap.Error(err))
		return nil
	}
	return doc
}

func (l *Lifecycle) store(ctx context.Context, key string, doc []byte) bool {
	if l.Store == nil {
		return false
	}
	if err := storage.PutBytes(ctx, l.Store, key, doc, "text/plain; charset=utf-8"); err != nil {
		l.log.Warn("document upload failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func describe(tpl *templateModel.FormTemplateModel, ident *model.FormSubmissionIdentifierModel) string {
	name := "form"
	if tpl != nil {
		name = tpl.FormTemplateName
	}
	if ident != nil {
		return fmt.Sprintf("%s (%s)", name, ident.IdentifierValue)
	}
	return name
}

func (l *Lifecycle) notifyAssigned(ctx context.Context, a *approvalModel.FormApprovalModel, tpl *templateModel.FormTemplateModel, ident *model.FormSubmissionIdentifierModel) {
	msg := fmt.Sprintf("%s is waiting for your approval.", describe(tpl, ident))
	if a.ApprovalDelegatedByID != nil {
		msg = fmt.Sprintf("%s is waiting for your approval on behalf of a delegator.", describe(tpl, ident))
	}
	l.Notifier.Notify(ctx, notification.Notification{
		UserID:  a.ApprovalApproverID,
		Title:   "New Approval Request",
		Message: msg,
		Kind:    constants.NotifyApproval,
	})
}

func (l *Lifecycle) notifySubmitter(ctx context.Context, sub *model.FormSubmissionModel, tpl *templateModel.FormTemplateModel, ident *model.FormSubmissionIdentifierModel) {
	var title, phrase string
	switch sub.SubmissionStatus {
	case constants.StatusApproved:
		title, phrase = "Form Approved", "has been approved"
	case constants.StatusRejected:
		title, phrase = "Form Rejected", "has been rejected"
	case constants.StatusReturned:
		title, phrase = "Form Returned for Revision", "was returned for revision"
	default:
		return
	}
	l.Notifier.Notify(ctx, notification.Notification{
		UserID:  sub.SubmissionSubmitterID,
		Title:   title,
		Message: fmt.Sprintf("Your %s %s.", describe(tpl, ident), phrase),
		Kind:    constants.NotifySubmission,
	})
}
