// file: internals/features/forms/templates/service/workflow_service.go
package service

import (
	"context"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/sudoneoox/Picton/internals/constants"
	"github.com/sudoneoox/Picton/internals/features/forms/templates/model"
	"github.com/sudoneoox/Picton/internals/features/forms/templates/schema"
	helper "github.com/sudoneoox/Picton/internals/helpers"
)

// Workflows is the read side of template definitions plus the thin admin CRUD.
type Workflows struct {
	DB *gorm.DB
}

func NewWorkflows(db *gorm.DB) *Workflows {
	return &Workflows{DB: db}
}

func (w *Workflows) WithTx(tx *gorm.DB) *Workflows {
	return &Workflows{DB: tx}
}

/* =========================================================
   Templates
========================================================= */

func (w *Workflows) Template(ctx context.Context, templateID uint) (*model.FormTemplateModel, error) {
	var t model.FormTemplateModel
	if err := w.DB.WithContext(ctx).First(&t, "form_template_id = ?", templateID).Error; err != nil {
		if helper.IsRecordNotFound(err) {
			return nil, helper.NotFound("form template", templateID)
		}
		return nil, err
	}
	return &t, nil
}

func (w *Workflows) Templates(ctx context.Context, activeOnly bool) ([]model.FormTemplateModel, error) {
	q := w.DB.WithContext(ctx).Model(&model.FormTemplateModel{})
	if activeOnly {
		q = q.Where("form_template_is_active = ?", true)
	}
	var out []model.FormTemplateModel
	err := q.Order("form_template_name ASC").Find(&out).Error
	return out, err
}

// Schema parses the template's stored field schema.
func (w *Workflows) Schema(ctx context.Context, templateID uint) (*schema.Schema, error) {
	t, err := w.Template(ctx, templateID)
	if err != nil {
		return nil, err
	}
	return schema.Parse(t.FormTemplateFieldSchema)
}

type CreateTemplateInput struct {
	Name                 string
	Description          string
	FieldSchema          []byte
	DocumentTemplatePath string
	Steps                []StepInput
}

type StepInput struct {
	ApproverRole     constants.Role
	ApprovalPosition string
	IsRequired       bool
	Order            int
}

// CreateTemplate validates the schema before storing anything.
func (w *Workflows) CreateTemplate(ctx context.Context, in CreateTemplateInput) (*model.FormTemplateModel, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, helper.Invalid("name", "is required")
	}
	if _, err := schema.Parse(in.FieldSchema); err != nil {
		return nil, helper.Invalid("field_schema", "%v", err)
	}
	if err := checkSteps(in.Steps); err != nil {
		return nil, err
	}

	t := &model.FormTemplateModel{
		FormTemplateName:                 in.Name,
		FormTemplateDescription:          in.Description,
		FormTemplateFieldSchema:          datatypes.JSON(in.FieldSchema),
		FormTemplateDocumentTemplatePath: in.DocumentTemplatePath,
		FormTemplateRequiredApprovals:    requiredOf(in.Steps),
	}
	err := w.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(t).Error; err != nil {
			if helper.IsUniqueViolation(err) {
				return helper.Invalid("name", "template %q already exists", strings.TrimSpace(in.Name))
			}
			return err
		}
		return insertSteps(tx, t.FormTemplateID, in.Steps)
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ReplaceSteps swaps a template's whole workflow. Steps are matched by order so
// approvals keep pointing at the row they were decided under; approvals of a
// dropped order lose their workflow link. In-flight submissions keep their
// required-count snapshot until RefreshRequiredCount is called on them.
func (w *Workflows) ReplaceSteps(ctx context.Context, templateID uint, steps []StepInput) ([]model.FormApprovalWorkflowModel, error) {
	if err := checkSteps(steps); err != nil {
		return nil, err
	}
	err := w.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := w.WithTx(tx).Template(ctx, templateID); err != nil {
			return err
		}
		if err := upsertSteps(ctx, tx, templateID, steps); err != nil {
			return err
		}
		return tx.Model(&model.FormTemplateModel{}).
			Where("form_template_id = ?", templateID).
			Update("form_template_required_approvals", requiredOf(steps)).Error
	})
	if err != nil {
		return nil, err
	}
	return w.StepsFor(ctx, templateID)
}

func (w *Workflows) SetActive(ctx context.Context, templateID uint, active bool) error {
	res := w.DB.WithContext(ctx).Model(&model.FormTemplateModel{}).
		Where("form_template_id = ?", templateID).
		Update("form_template_is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return helper.NotFound("form template", templateID)
	}
	return nil
}

func checkSteps(steps []StepInput) error {
	seen := map[int]bool{}
	for _, s := range steps {
		if s.Order < 1 {
			return helper.Invalid("order", "step order must be >= 1")
		}
		if seen[s.Order] {
			return helper.Invalid("order", "step order %d used twice", s.Order)
		}
		seen[s.Order] = true
		if strings.TrimSpace(s.ApprovalPosition) == "" {
			return helper.Invalid("approval_position", "step %d has no approval position", s.Order)
		}
		if s.ApproverRole != "" && !s.ApproverRole.Valid() {
			return helper.Invalid("approver_role", "step %d has unknown role %q", s.Order, s.ApproverRole)
		}
	}
	return nil
}

func requiredOf(steps []StepInput) int {
	n := 0
	for _, s := range steps {
		if s.IsRequired {
			n++
		}
	}
	return n
}

func upsertSteps(ctx context.Context, tx *gorm.DB, templateID uint, steps []StepInput) error {
	var current []model.FormApprovalWorkflowModel
	if err := tx.WithContext(ctx).
		Where("form_approval_workflow_template_id = ?", templateID).
		Find(&current).Error; err != nil {
		return err
	}
	byOrder := make(map[int]model.FormApprovalWorkflowModel, len(current))
	for _, row := range current {
		byOrder[row.WorkflowOrder] = row
	}

	var fresh []StepInput
	for _, s := range steps {
		row, ok := byOrder[s.Order]
		if !ok {
			fresh = append(fresh, s)
			continue
		}
		delete(byOrder, s.Order)
		role := s.ApproverRole
		if role == "" {
			role = constants.RoleStaff
		}
		if err := tx.WithContext(ctx).Model(&model.FormApprovalWorkflowModel{}).
			Where("form_approval_workflow_id = ?", row.WorkflowID).
			Updates(map[string]any{
				"form_approval_workflow_approver_role":     role,
				"form_approval_workflow_approval_position": strings.TrimSpace(s.ApprovalPosition),
				"form_approval_workflow_is_required":       s.IsRequired,
			}).Error; err != nil {
			return err
		}
	}

	if len(byOrder) > 0 {
		dropped := make([]uint, 0, len(byOrder))
		for _, row := range byOrder {
			dropped = append(dropped, row.WorkflowID)
		}
		if err := tx.WithContext(ctx).Table("form_approvals").
			Where("form_approval_workflow_id IN ?", dropped).
			Update("form_approval_workflow_id", gorm.Expr("NULL")).Error; err != nil {
			return err
		}
		if err := tx.WithContext(ctx).
			Where("form_approval_workflow_id IN ?", dropped).
			Delete(&model.FormApprovalWorkflowModel{}).Error; err != nil {
			return err
		}
	}
	return insertSteps(tx, templateID, fresh)
}

func insertSteps(tx *gorm.DB, templateID uint, steps []StepInput) error {
	for _, s := range steps {
		role := s.ApproverRole
		if role == "" {
			role = constants.RoleStaff
		}
		row := model.FormApprovalWorkflowModel{
			WorkflowTemplateID:       templateID,
			WorkflowApproverRole:     role,
			WorkflowApprovalPosition: strings.TrimSpace(s.ApprovalPosition),
			WorkflowIsRequired:       s.IsRequired,
			WorkflowOrder:            s.Order,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

/* =========================================================
   Steps
========================================================= */

// StepsFor returns the template's steps by ascending order.
func (w *Workflows) StepsFor(ctx context.Context, templateID uint) ([]model.FormApprovalWorkflowModel, error) {
	var out []model.FormApprovalWorkflowModel
	err := w.DB.WithContext(ctx).
		Where("form_approval_workflow_template_id = ?", templateID).
		Order("form_approval_workflow_order ASC").
		Find(&out).Error
	return out, err
}

// StepAt returns nil when the template defines no step with that order.
func (w *Workflows) StepAt(ctx context.Context, templateID uint, order int) (*model.FormApprovalWorkflowModel, error) {
	var rows []model.FormApprovalWorkflowModel
	if err := w.DB.WithContext(ctx).
		Where("form_approval_workflow_template_id = ? AND form_approval_workflow_order = ?", templateID, order).
		Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// NextStepAfter returns the next defined order after the given one, or nil.
func (w *Workflows) NextStepAfter(ctx context.Context, templateID uint, order int) (*model.FormApprovalWorkflowModel, error) {
	var rows []model.FormApprovalWorkflowModel
	if err := w.DB.WithContext(ctx).
		Where("form_approval_workflow_template_id = ? AND form_approval_workflow_order > ?", templateID, order).
		Order("form_approval_workflow_order ASC").
		Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (w *Workflows) RequiredCount(ctx context.Context, templateID uint) (int, error) {
	var n int64
	err := w.DB.WithContext(ctx).Model(&model.FormApprovalWorkflowModel{}).
		Where("form_approval_workflow_template_id = ? AND form_approval_workflow_is_required = ?", templateID, true).
		Count(&n).Error
	return int(n), err
}
