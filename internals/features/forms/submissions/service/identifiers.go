package service

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sudoneoox/Picton/internals/features/forms/submissions/model"
	templateModel "github.com/sudoneoox/Picton/internals/features/forms/templates/model"
	helper "github.com/sudoneoox/Picton/internals/helpers"
)

const identifierAttempts = 5

func (l *Lifecycle) identifierOf(ctx context.Context, submissionID uint) (*model.FormSubmissionIdentifierModel, error) {
	return identifierIn(ctx, l.DB, submissionID)
}

func identifierIn(ctx context.Context, db *gorm.DB, submissionID uint) (*model.FormSubmissionIdentifierModel, error) {
	var rows []model.FormSubmissionIdentifierModel
	if err := db.WithContext(ctx).
		Where("form_submission_identifier_submission_id = ?", submissionID).
		Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// ensureIdentifier returns the submission's identifier, minting one on first use.
// A collision on the random suffix retries with a fresh token.
func (l *Lifecycle) ensureIdentifier(ctx context.Context, tx *gorm.DB, sub *model.FormSubmissionModel, tpl *templateModel.FormTemplateModel) (*model.FormSubmissionIdentifierModel, error) {
	if got, err := identifierIn(ctx, tx, sub.SubmissionID); err != nil || got != nil {
		return got, err
	}

	now := l.now()
	for attempt := 0; attempt < identifierAttempts; attempt++ {
		row := model.FormSubmissionIdentifierModel{
			IdentifierValue: fmt.Sprintf("FRM-%d-%d-%s-%s",
				sub.SubmissionSubmitterID, sub.SubmissionTemplateID, now.Format("20060102"), l.Token()),
			IdentifierSubmissionID:   sub.SubmissionID,
			IdentifierFormType:       helper.FormTypeCode(tpl.FormTemplateName),
			IdentifierStudentID:      sub.SubmissionSubmitterID,
			IdentifierSubmissionDate: now,
		}
		res := tx.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 1 {
			return &row, nil
		}
		if got, err := identifierIn(ctx, tx, sub.SubmissionID); err != nil || got != nil {
			return got, err
		}
	}
	return nil, fmt.Errorf("could not mint a unique identifier for submission %d after %d attempts", sub.SubmissionID, identifierAttempts)
}
