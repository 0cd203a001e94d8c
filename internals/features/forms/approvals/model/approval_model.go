// file: internals/features/forms/approvals/model/approval_model.go
package model

import (
	"time"

	"gorm.io/datatypes"

	"github.com/sudoneoox/Picton/internals/constants"
)

/* =========================================================
   form_approvals
   One row per (submission, step). Approver may be a delegate, in which
   case DelegatedByID names the nominal holder. Decided rows are final.
========================================================= */

type FormApprovalModel struct {
	ApprovalID              uint                       `gorm:"column:form_approval_id;primaryKey;autoIncrement" json:"form_approval_id"`
	ApprovalSubmissionID    uint                       `gorm:"column:form_approval_submission_id;not null;uniqueIndex:uq_form_approval,priority:1;index" json:"form_approval_submission_id"`
	ApprovalApproverID      uint                       `gorm:"column:form_approval_approver_id;not null;uniqueIndex:uq_form_approval,priority:2;index" json:"form_approval_approver_id"`
	ApprovalStepNumber      int                        `gorm:"column:form_approval_step_number;not null;uniqueIndex:uq_form_approval,priority:3" json:"form_approval_step_number"`
	ApprovalWorkflowID      *uint                      `gorm:"column:form_approval_workflow_id" json:"form_approval_workflow_id,omitempty"`
	ApprovalDecision        constants.Decision         `gorm:"column:form_approval_decision;type:varchar(20);not null;default:''" json:"form_approval_decision"`
	ApprovalComments        string                     `gorm:"column:form_approval_comments;type:text" json:"form_approval_comments"`
	ApprovalReceivedAt      time.Time                  `gorm:"column:form_approval_received_at;not null" json:"form_approval_received_at"`
	ApprovalDecidedAt       *time.Time                 `gorm:"column:form_approval_decided_at" json:"form_approval_decided_at,omitempty"`
	ApprovalFieldsToCorrect datatypes.JSONSlice[string] `gorm:"column:form_approval_fields_to_correct" json:"form_approval_fields_to_correct"`
	ApprovalSignedDocument  string                     `gorm:"column:form_approval_signed_document;size:500" json:"form_approval_signed_document,omitempty"`
	ApprovalDelegatedByID   *uint                      `gorm:"column:form_approval_delegated_by_id" json:"form_approval_delegated_by_id,omitempty"`
}

func (FormApprovalModel) TableName() string {
	return "form_approvals"
}

// Holder is the nominal position holder: the delegator when a delegate acts.
func (a *FormApprovalModel) Holder() uint {
	if a.ApprovalDelegatedByID != nil {
		return *a.ApprovalDelegatedByID
	}
	return a.ApprovalApproverID
}
