package controller

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/sudoneoox/Picton/internals/features/forms/approvals/dto"
	approvalService "github.com/sudoneoox/Picton/internals/features/forms/approvals/service"
	submissionService "github.com/sudoneoox/Picton/internals/features/forms/submissions/service"
	helper "github.com/sudoneoox/Picton/internals/helpers"
	helperAuth "github.com/sudoneoox/Picton/internals/helpers/auth"
)

type ApprovalController struct {
	Engine    *approvalService.Engine
	Life      *submissionService.Lifecycle
	Validator *validator.Validate
}

func NewApprovalController(engine *approvalService.Engine, life *submissionService.Lifecycle, v *validator.Validate) *ApprovalController {
	if v == nil {
		v = validator.New()
	}
	return &ApprovalController{Engine: engine, Life: life, Validator: v}
}

/* ============================================
   GET /api/forms/approvals/pending
============================================ */

func (ctl *ApprovalController) Pending(c *fiber.Ctx) error {
	userID, err := helperAuth.GetUserID(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, err.Error())
	}
	items, err := ctl.Engine.PendingFor(c.UserContext(), userID)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonOK(c, "OK", items)
}

type decision func(ctx context.Context, approvalID, actorID uint, in submissionService.DecisionInput) (*submissionService.DecisionResult, error)

/* ============================================
   POST /api/forms/approvals/:id/approve
   POST /api/forms/approvals/:id/reject
   POST /api/forms/approvals/:id/return
============================================ */

func (ctl *ApprovalController) Approve(c *fiber.Ctx) error {
	return ctl.decide(c, "Form approved", ctl.Life.Approve)
}

func (ctl *ApprovalController) Reject(c *fiber.Ctx) error {
	return ctl.decide(c, "Form rejected", ctl.Life.Reject)
}

func (ctl *ApprovalController) Return(c *fiber.Ctx) error {
	return ctl.decide(c, "Form returned for revision", ctl.Life.Return)
}

func (ctl *ApprovalController) decide(c *fiber.Ctx, msg string, fn decision) error {
	userID, err := helperAuth.GetUserID(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, err.Error())
	}
	id, ok := helper.ParamID(c, "id")
	if !ok {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid approval id")
	}
	var p dto.DecisionRequest
	if len(c.Body()) > 0 {
		if err := helper.BindAndValidate(c, ctl.Validator, &p); err != nil {
			return helper.BindError(c, err)
		}
	}
	p.Normalize()

	res, err := fn(c.UserContext(), id, userID, submissionService.DecisionInput{
		Comments:        p.Comments,
		FieldsToCorrect: p.FieldsToCorrect,
	})
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonOK(c, msg, res)
}
