// file: internals/features/forms/templates/model/template_model.go
package model

import (
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/sudoneoox/Picton/internals/constants"
	helper "github.com/sudoneoox/Picton/internals/helpers"
)

type FormTemplateModel struct {
	FormTemplateID                   uint           `gorm:"column:form_template_id;primaryKey;autoIncrement" json:"form_template_id"`
	FormTemplateName                 string         `gorm:"column:form_template_name;size:255;not null;uniqueIndex" json:"form_template_name"`
	FormTemplateDescription          string         `gorm:"column:form_template_description;type:text" json:"form_template_description"`
	FormTemplateIsActive             bool           `gorm:"column:form_template_is_active;not null;default:true" json:"form_template_is_active"`
	FormTemplateFieldSchema          datatypes.JSON `gorm:"column:form_template_field_schema" json:"form_template_field_schema"`
	FormTemplateRequiredApprovals    int            `gorm:"column:form_template_required_approvals;not null;default:0" json:"form_template_required_approvals"`
	FormTemplateDocumentTemplatePath string         `gorm:"column:form_template_document_template_path;size:500" json:"form_template_document_template_path"`
	FormTemplateCreatedAt            time.Time      `gorm:"column:form_template_created_at;autoCreateTime" json:"form_template_created_at"`
	FormTemplateUpdatedAt            time.Time      `gorm:"column:form_template_updated_at;autoUpdateTime" json:"form_template_updated_at"`
}

func (FormTemplateModel) TableName() string {
	return "form_templates"
}

func (t *FormTemplateModel) BeforeSave(tx *gorm.DB) error {
	t.FormTemplateName = strings.TrimSpace(t.FormTemplateName)
	if strings.TrimSpace(t.FormTemplateDocumentTemplatePath) == "" {
		t.FormTemplateDocumentTemplatePath = helper.SnakeName(t.FormTemplateName) + ".tmpl"
	}
	return nil
}

/* =========================================================
   form_approval_workflows
   One ordered step of a template's approval chain. Orders are
   1-based and may have gaps.
========================================================= */

type FormApprovalWorkflowModel struct {
	WorkflowID               uint           `gorm:"column:form_approval_workflow_id;primaryKey;autoIncrement" json:"form_approval_workflow_id"`
	WorkflowTemplateID       uint           `gorm:"column:form_approval_workflow_template_id;not null;uniqueIndex:uq_workflow_template_order,priority:1" json:"form_approval_workflow_template_id"`
	WorkflowApproverRole     constants.Role `gorm:"column:form_approval_workflow_approver_role;type:varchar(20);not null;default:'staff'" json:"form_approval_workflow_approver_role"`
	WorkflowApprovalPosition string         `gorm:"column:form_approval_workflow_approval_position;size:100;not null" json:"form_approval_workflow_approval_position"`
	WorkflowIsRequired       bool           `gorm:"column:form_approval_workflow_is_required;not null" json:"form_approval_workflow_is_required"`
	WorkflowOrder            int            `gorm:"column:form_approval_workflow_order;not null;uniqueIndex:uq_workflow_template_order,priority:2" json:"form_approval_workflow_order"`
	WorkflowCreatedAt        time.Time      `gorm:"column:form_approval_workflow_created_at;autoCreateTime" json:"form_approval_workflow_created_at"`
}

func (FormApprovalWorkflowModel) TableName() string {
	return "form_approval_workflows"
}
