package controller

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/sudoneoox/Picton/internals/features/forms/submissions/dto"
	submissionService "github.com/sudoneoox/Picton/internals/features/forms/submissions/service"
	helper "github.com/sudoneoox/Picton/internals/helpers"
	helperAuth "github.com/sudoneoox/Picton/internals/helpers/auth"
)

type SubmissionController struct {
	Life      *submissionService.Lifecycle
	Validator *validator.Validate
}

func NewSubmissionController(life *submissionService.Lifecycle, v *validator.Validate) *SubmissionController {
	if v == nil {
		v = validator.New()
	}
	return &SubmissionController{Life: life, Validator: v}
}

/* ============================================
   POST /api/forms/submissions/draft
============================================ */

func (ctl *SubmissionController) SaveDraft(c *fiber.Ctx) error {
	userID, err := helperAuth.GetUserID(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, err.Error())
	}
	var p dto.SaveDraftRequest
	if err := helper.BindAndValidate(c, ctl.Validator, &p); err != nil {
		return helper.BindError(c, err)
	}
	d, err := ctl.Life.SaveDraft(c.UserContext(), userID, p.TemplateID, p.FormData)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonOK(c, "Draft saved", dto.NewDraftResponse(d))
}

/* ============================================
   POST /api/forms/submissions/:id/submit
============================================ */

func (ctl *SubmissionController) Submit(c *fiber.Ctx) error {
	userID, err := helperAuth.GetUserID(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, err.Error())
	}
	id, ok := helper.ParamID(c, "id")
	if !ok {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid submission id")
	}
	sub, err := ctl.Life.Submit(c.UserContext(), id, userID)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonOK(c, "Form submitted", sub)
}

/* ============================================
   POST /api/forms/submissions/:id/revise
============================================ */

func (ctl *SubmissionController) Revise(c *fiber.Ctx) error {
	userID, err := helperAuth.GetUserID(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, err.Error())
	}
	id, ok := helper.ParamID(c, "id")
	if !ok {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid submission id")
	}
	var p dto.ReviseRequest
	if err := helper.BindAndValidate(c, ctl.Validator, &p); err != nil {
		return helper.BindError(c, err)
	}
	d, err := ctl.Life.Revise(c.UserContext(), id, userID, p.FormData)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonCreated(c, "Revision created", dto.NewDraftResponse(d))
}

/* ============================================
   GET /api/forms/submissions/mine?status=&page=&per_page=
============================================ */

func (ctl *SubmissionController) Mine(c *fiber.Ctx) error {
	userID, err := helperAuth.GetUserID(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, err.Error())
	}
	var q dto.ListQuery
	if err := c.QueryParser(&q); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid query")
	}
	if err := ctl.Validator.Struct(&q); err != nil {
		return helper.JsonValidationError(c, helper.ValidatorErrors(err))
	}
	paging := helper.ResolvePaging(c, 20, 100)
	rows, total, err := ctl.Life.ListMine(c.UserContext(), userID, q.Status, paging)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	pg := helper.BuildPaginationFromPage(total, paging.Page, paging.PerPage)
	return helper.JsonList(c, "OK", rows, &pg)
}

/* ============================================
   GET /api/forms/submissions/identifiers
============================================ */

func (ctl *SubmissionController) Identifiers(c *fiber.Ctx) error {
	userID, err := helperAuth.GetUserID(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, err.Error())
	}
	rows, err := ctl.Life.IdentifiersFor(c.UserContext(), userID)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonOK(c, "OK", rows)
}

/* ============================================
   GET /api/forms/submissions/by-identifier/:identifier
============================================ */

func (ctl *SubmissionController) ByIdentifier(c *fiber.Ctx) error {
	userID, err := helperAuth.GetUserID(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, err.Error())
	}
	ident := strings.TrimSpace(c.Params("identifier"))
	if ident == "" {
		return helper.JsonError(c, fiber.StatusBadRequest, "identifier is required")
	}
	v, err := ctl.Life.ByIdentifier(c.UserContext(), ident, userID)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonOK(c, "OK", v)
}

/* ============================================
   GET /api/forms/submissions/:id
============================================ */

func (ctl *SubmissionController) Get(c *fiber.Ctx) error {
	userID, err := helperAuth.GetUserID(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, err.Error())
	}
	id, ok := helper.ParamID(c, "id")
	if !ok {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid submission id")
	}
	v, err := ctl.Life.Get(c.UserContext(), id, userID)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonOK(c, "OK", v)
}

/* ============================================
   POST /api/admin/forms/submissions/:id/refresh-required
============================================ */

func (ctl *SubmissionController) RefreshRequired(c *fiber.Ctx) error {
	id, ok := helper.ParamID(c, "id")
	if !ok {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid submission id")
	}
	sub, err := ctl.Life.RefreshRequiredCount(c.UserContext(), id)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonUpdated(c, "Required approvals refreshed", sub)
}
