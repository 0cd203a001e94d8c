package controller

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/sudoneoox/Picton/internals/features/organization/delegations/dto"
	delegationService "github.com/sudoneoox/Picton/internals/features/organization/delegations/service"
	helper "github.com/sudoneoox/Picton/internals/helpers"
	helperAuth "github.com/sudoneoox/Picton/internals/helpers/auth"
)

type DelegationController struct {
	Reg       *delegationService.Registry
	Validator *validator.Validate
}

func NewDelegationController(reg *delegationService.Registry, v *validator.Validate) *DelegationController {
	if v == nil {
		v = validator.New()
	}
	return &DelegationController{Reg: reg, Validator: v}
}

/* ============================================
   POST /api/delegations
============================================ */

func (ctl *DelegationController) Create(c *fiber.Ctx) error {
	actorID, err := helperAuth.GetUserID(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, err.Error())
	}
	var p dto.CreateDelegationRequest
	if err := helper.BindAndValidate(c, ctl.Validator, &p); err != nil {
		return helper.BindError(c, err)
	}
	p.Normalize(actorID)

	d, err := ctl.Reg.Create(c.UserContext(), actorID, delegationService.CreateInput{
		DelegatorID: p.DelegatorID,
		DelegateID:  p.DelegateID,
		UnitID:      p.UnitID,
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
		Reason:      p.Reason,
	})
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonCreated(c, "Delegation created", d)
}

/* ============================================
   GET /api/delegations/mine
============================================ */

func (ctl *DelegationController) Mine(c *fiber.Ctx) error {
	userID, err := helperAuth.GetUserID(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, err.Error())
	}
	rows, err := ctl.Reg.ListMine(c.UserContext(), userID)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonOK(c, "OK", rows)
}

/* ============================================
   GET /api/delegations/active
   Delegations in effect right now, given and received.
============================================ */

func (ctl *DelegationController) Active(c *fiber.Ctx) error {
	userID, err := helperAuth.GetUserID(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, err.Error())
	}
	now := ctl.Reg.Now().UTC()
	given, err := ctl.Reg.ActiveDelegationsGivenBy(c.UserContext(), userID, now)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	received, err := ctl.Reg.ActiveDelegationsReceivedBy(c.UserContext(), userID, now)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonOK(c, "OK", fiber.Map{
		"given":    given,
		"received": received,
		"as_of":    now.Format(time.RFC3339),
	})
}

/* ============================================
   POST /api/delegations/:id/cancel
============================================ */

func (ctl *DelegationController) Cancel(c *fiber.Ctx) error {
	actorID, err := helperAuth.GetUserID(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, err.Error())
	}
	id, ok := helper.ParamID(c, "id")
	if !ok {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid delegation id")
	}
	if err := ctl.Reg.Cancel(c.UserContext(), id, actorID); err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonUpdated(c, "Delegation cancelled", fiber.Map{"approval_delegation_id": id})
}

/* ============================================
   GET /api/delegations/:id/history
============================================ */

func (ctl *DelegationController) History(c *fiber.Ctx) error {
	userID, err := helperAuth.GetUserID(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, err.Error())
	}
	id, ok := helper.ParamID(c, "id")
	if !ok {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid delegation id")
	}
	d, err := ctl.Reg.Get(c.UserContext(), id)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	if d.DelegationDelegatorID != userID && d.DelegationDelegateID != userID && !helperAuth.IsAdmin(c) {
		return helper.JsonError(c, fiber.StatusForbidden, "not a party to this delegation")
	}
	rows, err := ctl.Reg.History(c.UserContext(), id)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonOK(c, "OK", rows)
}
