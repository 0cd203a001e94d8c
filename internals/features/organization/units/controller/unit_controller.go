package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/sudoneoox/Picton/internals/features/organization/units/dto"
	unitService "github.com/sudoneoox/Picton/internals/features/organization/units/service"
	helper "github.com/sudoneoox/Picton/internals/helpers"
	helperAuth "github.com/sudoneoox/Picton/internals/helpers/auth"
)

type UnitController struct {
	Dir       *unitService.Directory
	Validator *validator.Validate
}

func NewUnitController(dir *unitService.Directory, v *validator.Validate) *UnitController {
	if v == nil {
		v = validator.New()
	}
	return &UnitController{Dir: dir, Validator: v}
}

/* ============================================
   GET /api/units?all=true
============================================ */

func (ctl *UnitController) List(c *fiber.Ctx) error {
	activeOnly := !(c.QueryBool("all", false) && helperAuth.IsAdmin(c))
	units, err := ctl.Dir.List(c.UserContext(), activeOnly)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonOK(c, "OK", units)
}

/* ============================================
   GET /api/units/:id
============================================ */

func (ctl *UnitController) Get(c *fiber.Ctx) error {
	id, ok := helper.ParamID(c, "id")
	if !ok {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid unit id")
	}
	u, err := ctl.Dir.Get(c.UserContext(), id)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonOK(c, "OK", u)
}

/* ============================================
   GET /api/units/:id/children
============================================ */

func (ctl *UnitController) Children(c *fiber.Ctx) error {
	id, ok := helper.ParamID(c, "id")
	if !ok {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid unit id")
	}
	units, err := ctl.Dir.Children(c.UserContext(), id)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonOK(c, "OK", units)
}

/* ============================================
   GET /api/units/:id/path
============================================ */

func (ctl *UnitController) Path(c *fiber.Ctx) error {
	id, ok := helper.ParamID(c, "id")
	if !ok {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid unit id")
	}
	path, err := ctl.Dir.HierarchyPath(c.UserContext(), id)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonOK(c, "OK", path)
}

/* ============================================
   GET /api/units/:id/approvers?position=
============================================ */

func (ctl *UnitController) Approvers(c *fiber.Ctx) error {
	id, ok := helper.ParamID(c, "id")
	if !ok {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid unit id")
	}
	var (
		rows any
		err  error
	)
	if pos := c.Query("position"); pos != "" {
		rows, err = ctl.Dir.EligibleApprovers(c.UserContext(), id, pos)
	} else {
		rows, err = ctl.Dir.ApproversOfUnit(c.UserContext(), id)
	}
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonOK(c, "OK", rows)
}

/* ============================================
   GET /api/units/mine
============================================ */

func (ctl *UnitController) Mine(c *fiber.Ctx) error {
	userID, err := helperAuth.GetUserID(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, err.Error())
	}
	units, err := ctl.Dir.UnitsForUser(c.UserContext(), userID)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	roles, err := ctl.Dir.ApproverRolesFor(c.UserContext(), userID)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonOK(c, "OK", fiber.Map{"units": units, "approver_roles": roles})
}

/* ============================================
   POST /api/admin/units
============================================ */

func (ctl *UnitController) Create(c *fiber.Ctx) error {
	var p dto.CreateUnitRequest
	if err := helper.BindAndValidate(c, ctl.Validator, &p); err != nil {
		return helper.BindError(c, err)
	}
	p.Normalize()
	u, err := ctl.Dir.CreateUnit(c.UserContext(), unitService.CreateUnitInput{
		Name:        p.UnitName,
		Code:        p.UnitCode,
		Description: p.UnitDescription,
		ParentID:    p.UnitParentID,
	})
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonCreated(c, "Unit created", u)
}

/* ============================================
   PATCH /api/admin/units/:id/parent
============================================ */

func (ctl *UnitController) Reparent(c *fiber.Ctx) error {
	id, ok := helper.ParamID(c, "id")
	if !ok {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid unit id")
	}
	var p dto.ReparentRequest
	if err := helper.BindAndValidate(c, ctl.Validator, &p); err != nil {
		return helper.BindError(c, err)
	}
	u, err := ctl.Dir.Reparent(c.UserContext(), id, p.UnitParentID)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonUpdated(c, "Unit moved", u)
}

/* ============================================
   DELETE /api/admin/units/:id
============================================ */

func (ctl *UnitController) Deactivate(c *fiber.Ctx) error {
	id, ok := helper.ParamID(c, "id")
	if !ok {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid unit id")
	}
	if err := ctl.Dir.Deactivate(c.UserContext(), id); err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonDeleted(c, "Unit deactivated", fiber.Map{"unit_id": id})
}

/* ============================================
   POST /api/admin/units/:id/approvers
============================================ */

func (ctl *UnitController) AssignApprover(c *fiber.Ctx) error {
	id, ok := helper.ParamID(c, "id")
	if !ok {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid unit id")
	}
	var p dto.AssignApproverRequest
	if err := helper.BindAndValidate(c, ctl.Validator, &p); err != nil {
		return helper.BindError(c, err)
	}
	p.Normalize()
	a, err := ctl.Dir.AssignApprover(c.UserContext(), unitService.AssignApproverInput{
		UnitID:  id,
		UserID:  p.UserID,
		Role:    p.Role,
		OrgWide: p.OrgWide,
	})
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonCreated(c, "Approver assigned", a)
}

/* ============================================
   DELETE /api/admin/approvers/:approverId
============================================ */

func (ctl *UnitController) DeactivateApprover(c *fiber.Ctx) error {
	id, ok := helper.ParamID(c, "approverId")
	if !ok {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid approver id")
	}
	if err := ctl.Dir.DeactivateApprover(c.UserContext(), id); err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonDeleted(c, "Approver deactivated", fiber.Map{"unit_approver_id": id})
}
