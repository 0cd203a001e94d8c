package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/sudoneoox/Picton/internals/features/forms/templates/dto"
	templateService "github.com/sudoneoox/Picton/internals/features/forms/templates/service"
	helper "github.com/sudoneoox/Picton/internals/helpers"
	helperAuth "github.com/sudoneoox/Picton/internals/helpers/auth"
)

type TemplateController struct {
	WF        *templateService.Workflows
	Validator *validator.Validate
}

func NewTemplateController(wf *templateService.Workflows, v *validator.Validate) *TemplateController {
	if v == nil {
		v = validator.New()
	}
	return &TemplateController{WF: wf, Validator: v}
}

/* ============================================
   GET /api/forms/templates
   Admins may pass ?all=true to include inactive templates.
============================================ */

func (ctl *TemplateController) List(c *fiber.Ctx) error {
	activeOnly := !(c.QueryBool("all", false) && helperAuth.IsAdmin(c))
	rows, err := ctl.WF.Templates(c.UserContext(), activeOnly)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonOK(c, "OK", rows)
}

/* ============================================
   GET /api/forms/templates/:id
============================================ */

func (ctl *TemplateController) Get(c *fiber.Ctx) error {
	id, ok := helper.ParamID(c, "id")
	if !ok {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid template id")
	}
	t, err := ctl.WF.Template(c.UserContext(), id)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	if !t.FormTemplateIsActive && !helperAuth.IsAdmin(c) {
		return helper.JsonError(c, fiber.StatusNotFound, "form template not found")
	}
	return helper.JsonOK(c, "OK", t)
}

/* ============================================
   GET /api/forms/templates/:id/steps
============================================ */

func (ctl *TemplateController) Steps(c *fiber.Ctx) error {
	id, ok := helper.ParamID(c, "id")
	if !ok {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid template id")
	}
	if _, err := ctl.WF.Template(c.UserContext(), id); err != nil {
		return helper.FromAppError(c, err)
	}
	steps, err := ctl.WF.StepsFor(c.UserContext(), id)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonOK(c, "OK", steps)
}

/* ============================================
   POST /api/admin/forms/templates
============================================ */

func (ctl *TemplateController) Create(c *fiber.Ctx) error {
	var p dto.CreateTemplateRequest
	if err := helper.BindAndValidate(c, ctl.Validator, &p); err != nil {
		return helper.BindError(c, err)
	}
	p.Normalize()

	t, err := ctl.WF.CreateTemplate(c.UserContext(), templateService.CreateTemplateInput{
		Name:                 p.Name,
		Description:          p.Description,
		FieldSchema:          p.FieldSchema,
		DocumentTemplatePath: p.DocumentTemplatePath,
		Steps:                dto.ToStepInputs(p.Steps),
	})
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonCreated(c, "Form template created", t)
}

/* ============================================
   PUT /api/admin/forms/templates/:id/steps
============================================ */

func (ctl *TemplateController) ReplaceSteps(c *fiber.Ctx) error {
	id, ok := helper.ParamID(c, "id")
	if !ok {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid template id")
	}
	var p dto.ReplaceStepsRequest
	if err := helper.BindAndValidate(c, ctl.Validator, &p); err != nil {
		return helper.BindError(c, err)
	}
	p.Normalize()
	steps, err := ctl.WF.ReplaceSteps(c.UserContext(), id, dto.ToStepInputs(p.Steps))
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonUpdated(c, "Workflow replaced", steps)
}

/* ============================================
   PATCH /api/admin/forms/templates/:id/active
============================================ */

func (ctl *TemplateController) SetActive(c *fiber.Ctx) error {
	id, ok := helper.ParamID(c, "id")
	if !ok {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid template id")
	}
	var p dto.SetActiveRequest
	if err := helper.BindAndValidate(c, ctl.Validator, &p); err != nil {
		return helper.BindError(c, err)
	}
	if err := ctl.WF.SetActive(c.UserContext(), id, *p.IsActive); err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonUpdated(c, "Template updated", fiber.Map{"form_template_id": id, "form_template_is_active": *p.IsActive})
}
