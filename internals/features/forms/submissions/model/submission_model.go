// file: internals/features/forms/submissions/model/submission_model.go
package model

import (
	"time"

	"gorm.io/datatypes"

	"github.com/sudoneoox/Picton/internals/constants"
)

/* =========================================================
   form_submissions
   One version of a student's filled form. Returned submissions are
   revised into a new row linked through previous_version_id.
========================================================= */

type FormSubmissionModel struct {
	SubmissionID                     uint                       `gorm:"column:form_submission_id;primaryKey;autoIncrement" json:"form_submission_id"`
	SubmissionTemplateID             uint                       `gorm:"column:form_submission_template_id;not null;index" json:"form_submission_template_id"`
	SubmissionSubmitterID            uint                       `gorm:"column:form_submission_submitter_id;not null;index" json:"form_submission_submitter_id"`
	SubmissionFormData               datatypes.JSON             `gorm:"column:form_submission_form_data" json:"form_submission_form_data"`
	SubmissionCurrentDocument        string                     `gorm:"column:form_submission_current_document;size:500" json:"form_submission_current_document,omitempty"`
	SubmissionStatus                 constants.SubmissionStatus `gorm:"column:form_submission_status;type:varchar(20);not null;default:'draft';index" json:"form_submission_status"`
	SubmissionCurrentStep            int                        `gorm:"column:form_submission_current_step;not null;default:0" json:"form_submission_current_step"`
	SubmissionVersion                int                        `gorm:"column:form_submission_version;not null;default:1" json:"form_submission_version"`
	SubmissionPreviousVersionID      *uint                      `gorm:"column:form_submission_previous_version_id" json:"form_submission_previous_version_id,omitempty"`
	SubmissionUnitID                 *uint                      `gorm:"column:form_submission_unit_id;index" json:"form_submission_unit_id,omitempty"`
	SubmissionRequiredApprovalCount  int                        `gorm:"column:form_submission_required_approval_count;not null;default:0" json:"form_submission_required_approval_count"`
	SubmissionCompletedApprovalCount int                        `gorm:"column:form_submission_completed_approval_count;not null;default:0" json:"form_submission_completed_approval_count"`
	SubmissionCreatedAt              time.Time                  `gorm:"column:form_submission_created_at;autoCreateTime" json:"form_submission_created_at"`
	SubmissionUpdatedAt              time.Time                  `gorm:"column:form_submission_updated_at;autoUpdateTime" json:"form_submission_updated_at"`
}

func (FormSubmissionModel) TableName() string {
	return "form_submissions"
}

/* =========================================================
   form_submission_identifiers
   FRM-{submitter}-{template}-{YYYYMMDD}-{8 hex}; created once, never changed.
========================================================= */

type FormSubmissionIdentifierModel struct {
	IdentifierID             uint      `gorm:"column:form_submission_identifier_id;primaryKey;autoIncrement" json:"form_submission_identifier_id"`
	IdentifierValue          string    `gorm:"column:form_submission_identifier;size:64;not null;uniqueIndex" json:"identifier"`
	IdentifierSubmissionID   uint      `gorm:"column:form_submission_identifier_submission_id;not null;uniqueIndex" json:"form_submission_id"`
	IdentifierFormType       string    `gorm:"column:form_submission_identifier_form_type;size:50;not null" json:"form_type"`
	IdentifierStudentID      uint      `gorm:"column:form_submission_identifier_student_id;not null;index" json:"student_id"`
	IdentifierSubmissionDate time.Time `gorm:"column:form_submission_identifier_submission_date;autoCreateTime" json:"submission_date"`
}

func (FormSubmissionIdentifierModel) TableName() string {
	return "form_submission_identifiers"
}
