// file: internals/features/forms/submissions/service/lifecycle.go
package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sudoneoox/Picton/internals/constants"
	approvalModel "github.com/sudoneoox/Picton/internals/features/forms/approvals/model"
	approvalService "github.com/sudoneoox/Picton/internals/features/forms/approvals/service"
	"github.com/sudoneoox/Picton/internals/features/forms/documents"
	"github.com/sudoneoox/Picton/internals/features/forms/submissions/model"
	templateModel "github.com/sudoneoox/Picton/internals/features/forms/templates/model"
	"github.com/sudoneoox/Picton/internals/features/forms/templates/schema"
	notification "github.com/sudoneoox/Picton/internals/features/home/notifications/service"
	userModel "github.com/sudoneoox/Picton/internals/features/users/user/model"
	helper "github.com/sudoneoox/Picton/internals/helpers"
	"github.com/sudoneoox/Picton/internals/helpers/storage"
)

// Lifecycle drives a submission from draft to a terminal status. Status and
// approval rows change inside one transaction; documents and notifications
// follow after commit and never fail the operation.
type Lifecycle struct {
	DB       *gorm.DB
	Engine   *approvalService.Engine
	Renderer documents.Renderer
	Store    storage.BlobStore
	Notifier notification.Notifier
	Now      func() time.Time
	Token    func() string
	log      *zap.Logger
}

func New(db *gorm.DB, engine *approvalService.Engine, renderer documents.Renderer, store storage.BlobStore, notifier notification.Notifier) *Lifecycle {
	if notifier == nil {
		notifier = notification.Nop
	}
	return &Lifecycle{
		DB:       db,
		Engine:   engine,
		Renderer: renderer,
		Store:    store,
		Notifier: notifier,
		Now:      time.Now,
		Token:    func() string { return uuid.NewString()[:8] },
		log:      zap.L().Named("submissions"),
	}
}

func (l *Lifecycle) now() time.Time { return l.Now().UTC() }

func (l *Lifecycle) engine(tx *gorm.DB) *approvalService.Engine {
	eng := l.Engine.WithTx(tx)
	eng.Now = l.Now
	return eng
}

func lockSubmission(ctx context.Context, tx *gorm.DB, id uint) (*model.FormSubmissionModel, error) {
	var sub model.FormSubmissionModel
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&sub, "form_submission_id = ?", id).Error; err != nil {
		if helper.IsRecordNotFound(err) {
			return nil, helper.NotFound("submission", id)
		}
		return nil, err
	}
	return &sub, nil
}

func loadUser(ctx context.Context, db *gorm.DB, id uint) (*userModel.UserModel, error) {
	var u userModel.UserModel
	if err := db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		if helper.IsRecordNotFound(err) {
			return nil, helper.NotFound("user", id)
		}
		return nil, err
	}
	return &u, nil
}

func normalizeData(raw []byte) (datatypes.JSON, map[string]any, error) {
	data, err := schema.DecodeData(raw)
	if err != nil {
		return nil, nil, err
	}
	if len(strings.TrimSpace(string(raw))) == 0 || strings.TrimSpace(string(raw)) == "null" {
		raw = []byte("{}")
	}
	return datatypes.JSON(raw), data, nil
}

/* =========================================================
   Drafts
========================================================= */

type Draft struct {
	Submission model.FormSubmissionModel           `json:"submission"`
	Identifier model.FormSubmissionIdentifierModel `json:"identifier"`
	Preview    []byte                              `json:"-"`
}

// SaveDraft updates the submitter's open draft for the template, creating it on
// first save, and renders a preview.
func (l *Lifecycle) SaveDraft(ctx context.Context, submitterID, templateID uint, formData []byte) (*Draft, error) {
	raw, data, err := normalizeData(formData)
	if err != nil {
		return nil, err
	}

	var (
		out Draft
		tpl *templateModel.FormTemplateModel
	)
	err = l.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		eng := l.engine(tx)
		var err error
		tpl, err = eng.Workflows.Template(ctx, templateID)
		if err != nil {
			return err
		}
		if !tpl.FormTemplateIsActive {
			return helper.Invalid("template_id", "form template is not active")
		}
		if _, err := loadUser(ctx, tx, submitterID); err != nil {
			return err
		}

		var drafts []model.FormSubmissionModel
		if err := tx.WithContext(ctx).
			Where("form_submission_submitter_id = ? AND form_submission_template_id = ? AND form_submission_status = ?",
				submitterID, templateID, constants.StatusDraft).
			Order("form_submission_version DESC, form_submission_id DESC").
			Limit(1).Find(&drafts).Error; err != nil {
			return err
		}

		var sub model.FormSubmissionModel
		if len(drafts) > 0 {
			sub = drafts[0]
			if err := tx.WithContext(ctx).Model(&sub).
				Update("form_submission_form_data", raw).Error; err != nil {
				return err
			}
			sub.SubmissionFormData = raw
		} else {
			sub = model.FormSubmissionModel{
				SubmissionTemplateID:  templateID,
				SubmissionSubmitterID: submitterID,
				SubmissionFormData:    raw,
				SubmissionStatus:      constants.StatusDraft,
				SubmissionVersion:     1,
			}
			if err := tx.WithContext(ctx).Create(&sub).Error; err != nil {
				return err
			}
		}

		ident, err := l.ensureIdentifier(ctx, tx, &sub, tpl)
		if err != nil {
			return err
		}
		out.Submission = sub
		out.Identifier = *ident
		return nil
	})
	if err != nil {
		return nil, err
	}

	out.Preview = l.render(ctx, tpl, &out.Submission, out.Identifier.IdentifierValue, data)
	return &out, nil
}

/* =========================================================
   Submit
========================================================= */

// Submit validates the draft, resolves the owning unit and routes step one.
// A template without steps is approved immediately.
func (l *Lifecycle) Submit(ctx context.Context, submissionID, actorID uint) (*model.FormSubmissionModel, error) {
	var (
		sub      *model.FormSubmissionModel
		tpl      *templateModel.FormTemplateModel
		data     map[string]any
		ident    *model.FormSubmissionIdentifierModel
		assigned *approvalModel.FormApprovalModel
	)
	err := l.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		eng := l.engine(tx)
		var err error
		if sub, err = lockSubmission(ctx, tx, submissionID); err != nil {
			return err
		}
		if sub.SubmissionSubmitterID != actorID {
			return helper.Forbidden("only the submitter can submit this form")
		}
		if sub.SubmissionStatus != constants.StatusDraft {
			return helper.Invalid("status", "only drafts can be submitted (current status: %s)", sub.SubmissionStatus)
		}
		if tpl, err = eng.Workflows.Template(ctx, sub.SubmissionTemplateID); err != nil {
			return err
		}
		if !tpl.FormTemplateIsActive {
			return helper.Invalid("template_id", "form template is not active")
		}
		sch, err := schema.Parse(tpl.FormTemplateFieldSchema)
		if err != nil {
			return fmt.Errorf("template %d: %w", tpl.FormTemplateID, err)
		}
		if data, err = schema.DecodeData(sub.SubmissionFormData); err != nil {
			return err
		}
		if err := sch.Validate(data); err != nil {
			return err
		}
		if ident, err = l.ensureIdentifier(ctx, tx, sub, tpl); err != nil {
			return err
		}

		unitID, err := l.resolveUnit(ctx, eng, sub.SubmissionSubmitterID, data)
		if err != nil {
			return err
		}
		steps, err := eng.Workflows.StepsFor(ctx, tpl.FormTemplateID)
		if err != nil {
			return err
		}

		updates := map[string]any{"form_submission_unit_id": unitID}
		if len(steps) == 0 {
			updates["form_submission_status"] = constants.StatusApproved
			updates["form_submission_current_step"] = 0
			updates["form_submission_required_approval_count"] = 0
		} else {
			required := 0
			for _, s := range steps {
				if s.WorkflowIsRequired {
					required++
				}
			}
			updates["form_submission_status"] = constants.StatusPending
			updates["form_submission_current_step"] = steps[0].WorkflowOrder
			updates["form_submission_required_approval_count"] = required
		}
		if err := tx.WithContext(ctx).Model(sub).Updates(updates).Error; err != nil {
			return err
		}
		if sub, err = lockSubmission(ctx, tx, submissionID); err != nil {
			return err
		}

		if sub.SubmissionStatus == constants.StatusPending {
			assigned, err = eng.Resolve(ctx, sub, nil, sub.SubmissionCurrentStep)
			if err != nil && !helper.IsNothingToRoute(err) {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.log.Info("submission submitted",
		zap.Uint("submission_id", sub.SubmissionID),
		zap.String("status", string(sub.SubmissionStatus)),
		zap.Int("current_step", sub.SubmissionCurrentStep))

	if doc := l.render(ctx, tpl, sub, ident.IdentifierValue, data); doc != nil {
		key := storage.JoinKey("documents", strconv.FormatUint(uint64(sub.SubmissionID), 10), fmt.Sprintf("v%d.txt", sub.SubmissionVersion))
		if l.store(ctx, key, doc) {
			l.DB.WithContext(ctx).Model(&model.FormSubmissionModel{}).
				Where("form_submission_id = ?", sub.SubmissionID).
				Update("form_submission_current_document", key)
			sub.SubmissionCurrentDocument = key
		}
	}
	if assigned != nil {
		l.notifyAssigned(ctx, assigned, tpl, ident)
	}
	if sub.SubmissionStatus == constants.StatusApproved {
		l.notifySubmitter(ctx, sub, tpl, ident)
	}
	return sub, nil
}

// resolveUnit reads "unit" from the form data as an id or unit code, falling back
// to the submitter's primary approver unit. A nil result leaves routing to fail later.
func (l *Lifecycle) resolveUnit(ctx context.Context, eng *approvalService.Engine, submitterID uint, data map[string]any) (*uint, error) {
	var ref string
	switch v := data["unit"].(type) {
	case string:
		ref = strings.TrimSpace(v)
	case float64:
		ref = strconv.FormatFloat(v, 'f', -1, 64)
	case int64:
		ref = strconv.FormatInt(v, 10)
	}
	if ref != "" {
		u, err := eng.Directory.ResolveRef(ctx, ref)
		if err != nil {
			if helper.IsNotFound(err) {
				return nil, helper.Invalid("unit", "unknown organizational unit %q", ref)
			}
			return nil, err
		}
		return &u.UnitID, nil
	}

	u, err := eng.Directory.PrimaryUnitForUser(ctx, submitterID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, nil
	}
	return &u.UnitID, nil
}

/* =========================================================
   Revise / required count
========================================================= */

// Revise starts a new draft version from a returned submission. The returned
// version is left untouched.
func (l *Lifecycle) Revise(ctx context.Context, submissionID, actorID uint, formData []byte) (*Draft, error) {
	var (
		out  Draft
		tpl  *templateModel.FormTemplateModel
		data map[string]any
	)
	err := l.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		prev, err := lockSubmission(ctx, tx, submissionID)
		if err != nil {
			return err
		}
		if prev.SubmissionSubmitterID != actorID {
			return helper.Forbidden("only the submitter can revise this form")
		}
		if prev.SubmissionStatus != constants.StatusReturned {
			return helper.Invalid("status", "only returned submissions can be revised (current status: %s)", prev.SubmissionStatus)
		}
		var revisions int64
		if err := tx.WithContext(ctx).Model(&model.FormSubmissionModel{}).
			Where("form_submission_previous_version_id = ?", prev.SubmissionID).
			Count(&revisions).Error; err != nil {
			return err
		}
		if revisions > 0 {
			return helper.Invalid("submission", "this version has already been revised")
		}

		raw := prev.SubmissionFormData
		if len(formData) > 0 {
			if raw, _, err = normalizeData(formData); err != nil {
				return err
			}
		}
		if data, err = schema.DecodeData(raw); err != nil {
			return err
		}
		if tpl, err = l.engine(tx).Workflows.Template(ctx, prev.SubmissionTemplateID); err != nil {
			return err
		}

		prevID := prev.SubmissionID
		next := model.FormSubmissionModel{
			SubmissionTemplateID:        prev.SubmissionTemplateID,
			SubmissionSubmitterID:       prev.SubmissionSubmitterID,
			SubmissionFormData:          raw,
			SubmissionStatus:            constants.StatusDraft,
			SubmissionVersion:           prev.SubmissionVersion + 1,
			SubmissionPreviousVersionID: &prevID,
		}
		if err := tx.WithContext(ctx).Create(&next).Error; err != nil {
			return err
		}
		ident, err := l.ensureIdentifier(ctx, tx, &next, tpl)
		if err != nil {
			return err
		}
		out.Submission = next
		out.Identifier = *ident
		return nil
	})
	if err != nil {
		return nil, err
	}
	out.Preview = l.render(ctx, tpl, &out.Submission, out.Identifier.IdentifierValue, data)
	return &out, nil
}

// RefreshRequiredCount re-snapshots the template's required step count onto an
// open submission and recomputes its status.
func (l *Lifecycle) RefreshRequiredCount(ctx context.Context, submissionID uint) (*model.FormSubmissionModel, error) {
	var sub *model.FormSubmissionModel
	err := l.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		eng := l.engine(tx)
		var err error
		if sub, err = lockSubmission(ctx, tx, submissionID); err != nil {
			return err
		}
		if sub.SubmissionStatus.Terminal() {
			return helper.Invalid("status", "submission is already %s", sub.SubmissionStatus)
		}
		n, err := eng.Workflows.RequiredCount(ctx, sub.SubmissionTemplateID)
		if err != nil {
			return err
		}
		if err := tx.WithContext(ctx).Model(sub).
			Update("form_submission_required_approval_count", n).Error; err != nil {
			return err
		}
		sub.SubmissionRequiredApprovalCount = n
		if sub.SubmissionStatus == constants.StatusPending {
			_, err = eng.Recompute(ctx, sub)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}
