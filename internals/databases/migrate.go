package database

import (
	"fmt"

	"gorm.io/gorm"

	approvalModel "github.com/sudoneoox/Picton/internals/features/forms/approvals/model"
	submissionModel "github.com/sudoneoox/Picton/internals/features/forms/submissions/model"
	templateModel "github.com/sudoneoox/Picton/internals/features/forms/templates/model"
	notificationModel "github.com/sudoneoox/Picton/internals/features/home/notifications/model"
	delegationModel "github.com/sudoneoox/Picton/internals/features/organization/delegations/model"
	unitModel "github.com/sudoneoox/Picton/internals/features/organization/units/model"
	authModel "github.com/sudoneoox/Picton/internals/features/users/auth/model"
	userModel "github.com/sudoneoox/Picton/internals/features/users/user/model"
)

// Models lists every table owned by this service, parents before children.
func Models() []any {
	return []any{
		&userModel.UserModel{},
		&unitModel.OrganizationalUnitModel{},
		&unitModel.UnitApproverModel{},
		&delegationModel.ApprovalDelegationModel{},
		&delegationModel.DelegationHistoryModel{},
		&templateModel.FormTemplateModel{},
		&templateModel.FormApprovalWorkflowModel{},
		&submissionModel.FormSubmissionModel{},
		&submissionModel.FormSubmissionIdentifierModel{},
		&approvalModel.FormApprovalModel{},
		&notificationModel.NotificationModel{},
		&authModel.TokenBlacklistModel{},
	}
}

// partialIndexes hold constraints struct tags cannot express. The syntax is
// shared by postgres and sqlite.
var partialIndexes = []struct{ name, sql string }{
	{
		// one undecided assignment per step, so ON CONFLICT DO NOTHING in the
		// resolver dedupes inserts naming different approvers
		name: "uq_form_approval_open_step",
		sql:  `CREATE UNIQUE INDEX IF NOT EXISTS uq_form_approval_open_step
			ON form_approvals (form_approval_submission_id, form_approval_step_number)
			WHERE form_approval_decision = ''`,
	},
}

func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return err
	}
	for _, ix := range partialIndexes {
		if err := db.Exec(ix.sql).Error; err != nil {
			return fmt.Errorf("create index %s: %w", ix.name, err)
		}
	}
	return nil
}
