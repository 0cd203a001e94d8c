// file: internals/features/users/auth/controller/auth_controller.go
package controller

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/sudoneoox/Picton/internals/features/users/auth/dto"
	authService "github.com/sudoneoox/Picton/internals/features/users/auth/service"
	helper "github.com/sudoneoox/Picton/internals/helpers"
	helperAuth "github.com/sudoneoox/Picton/internals/helpers/auth"
)

type AuthController struct {
	Svc       *authService.Service
	Validator *validator.Validate
}

func NewAuthController(svc *authService.Service, v *validator.Validate) *AuthController {
	if v == nil {
		v = validator.New()
	}
	return &AuthController{Svc: svc, Validator: v}
}

/* ============================================
   POST /api/auth/login
============================================ */

func (ctl *AuthController) Login(c *fiber.Ctx) error {
	var p dto.LoginRequest
	if err := c.BodyParser(&p); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid payload")
	}
	p.Normalize()
	if err := ctl.Validator.Struct(&p); err != nil {
		return helper.JsonValidationError(c, helper.ValidatorErrors(err))
	}

	res, err := ctl.Svc.Login(c.UserContext(), p.Login, p.Password)
	if err != nil {
		if helper.IsPermission(err) {
			return helper.JsonError(c, fiber.StatusUnauthorized, "invalid credentials")
		}
		return helper.FromAppError(c, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    res.AccessToken,
		Expires:  res.ExpiresAt,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return helper.JsonOK(c, "Login successful", res)
}

/* ============================================
   POST /api/auth/logout
============================================ */

func (ctl *AuthController) Logout(c *fiber.Ctx) error {
	userID, err := helperAuth.GetUserID(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, err.Error())
	}
	exp, _ := c.Locals(helperAuth.LocTokenExpiry).(time.Time)
	if err := ctl.Svc.Logout(c.UserContext(), helper.GetRawAccessToken(c), userID, exp); err != nil {
		return helper.FromAppError(c, err)
	}
	c.ClearCookie("access_token")
	return helper.JsonOK(c, "Logged out", nil)
}

/* ============================================
   GET /api/auth/me
============================================ */

func (ctl *AuthController) Me(c *fiber.Ctx) error {
	userID, err := helperAuth.GetUserID(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, err.Error())
	}
	u, err := ctl.Svc.Users.Get(c.UserContext(), userID)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonOK(c, "OK", u)
}
