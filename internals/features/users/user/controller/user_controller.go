package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/sudoneoox/Picton/internals/constants"
	"github.com/sudoneoox/Picton/internals/features/users/user/dto"
	userService "github.com/sudoneoox/Picton/internals/features/users/user/service"
	helper "github.com/sudoneoox/Picton/internals/helpers"
	helperAuth "github.com/sudoneoox/Picton/internals/helpers/auth"
)

type UserController struct {
	Svc       *userService.Service
	Validator *validator.Validate
}

func NewUserController(svc *userService.Service, v *validator.Validate) *UserController {
	if v == nil {
		v = validator.New()
	}
	return &UserController{Svc: svc, Validator: v}
}

/* ============================================
   GET /api/admin/users?role=&q=&active=&page=&per_page=
============================================ */

func (ctl *UserController) List(c *fiber.Ctx) error {
	var q dto.ListUsersQuery
	if err := c.QueryParser(&q); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid query")
	}
	if err := ctl.Validator.Struct(&q); err != nil {
		return helper.JsonValidationError(c, helper.ValidatorErrors(err))
	}
	paging := helper.ResolvePaging(c, 10, 100)
	rows, total, err := ctl.Svc.List(c.UserContext(), userService.ListFilter{
		Role:   constants.Role(q.Role),
		Search: q.Search,
		Active: q.Active,
	}, paging)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	pg := helper.BuildPaginationFromPage(total, paging.Page, paging.PerPage)
	return helper.JsonList(c, "OK", rows, &pg)
}

/* ============================================
   GET /api/admin/users/:id
============================================ */

func (ctl *UserController) Get(c *fiber.Ctx) error {
	id, ok := helper.ParamID(c, "id")
	if !ok {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid user id")
	}
	u, err := ctl.Svc.Get(c.UserContext(), id)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonOK(c, "OK", u)
}

/* ============================================
   POST /api/admin/users
============================================ */

func (ctl *UserController) Create(c *fiber.Ctx) error {
	var p dto.CreateUserRequest
	if err := helper.BindAndValidate(c, ctl.Validator, &p); err != nil {
		return helper.BindError(c, err)
	}
	p.Normalize()
	u, err := ctl.Svc.CreateByAdmin(c.UserContext(), userService.CreateInput{
		UserName:  p.UserName,
		Email:     p.Email,
		Password:  p.Password,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Role:      constants.Role(p.Role),
	})
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonCreated(c, "User created", u)
}

/* ============================================
   PATCH /api/admin/users/:id
============================================ */

func (ctl *UserController) Update(c *fiber.Ctx) error {
	actorID, err := helperAuth.GetUserID(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, err.Error())
	}
	id, ok := helper.ParamID(c, "id")
	if !ok {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid user id")
	}
	var p dto.UpdateUserRequest
	if err := helper.BindAndValidate(c, ctl.Validator, &p); err != nil {
		return helper.BindError(c, err)
	}
	u, err := ctl.Svc.Update(c.UserContext(), actorID, id, userService.UpdateInput{
		UserName:  p.UserName,
		Email:     p.Email,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Role:      p.RoleValue(),
	})
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonUpdated(c, "User updated", u)
}

/* ============================================
   PATCH /api/admin/users/:id/toggle-status
============================================ */

func (ctl *UserController) ToggleStatus(c *fiber.Ctx) error {
	actorID, err := helperAuth.GetUserID(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, err.Error())
	}
	id, ok := helper.ParamID(c, "id")
	if !ok {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid user id")
	}
	u, err := ctl.Svc.ToggleActive(c.UserContext(), actorID, id)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonUpdated(c, "User status updated", fiber.Map{
		"id":        u.ID,
		"email":     u.Email,
		"is_active": u.IsActive,
	})
}
