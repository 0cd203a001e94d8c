package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sudoneoox/Picton/internals/constants"
	helper "github.com/sudoneoox/Picton/internals/helpers"
	helperAuth "github.com/sudoneoox/Picton/internals/helpers/auth"
)

// OnlyRoles lets superusers and the listed roles through.
func OnlyRoles(forbiddenMessage string, roles ...constants.Role) fiber.Handler {
	if forbiddenMessage == "" {
		forbiddenMessage = "Forbidden: you are not authorized to access this resource"
	}
	return func(c *fiber.Ctx) error {
		if helperAuth.IsSuperuser(c) {
			return c.Next()
		}
		role := helperAuth.GetRole(c)
		if role == "" {
			return helper.JsonError(c, fiber.StatusUnauthorized, "missing role information")
		}
		for _, allowed := range roles {
			if role == allowed {
				return c.Next()
			}
		}
		return helper.JsonError(c, fiber.StatusForbidden, forbiddenMessage)
	}
}

func OnlyApprovers(feature string) fiber.Handler {
	return OnlyRoles(constants.RoleErrorApprover(feature), constants.ApproverRoles...)
}

func OnlyAdmin(feature string) fiber.Handler {
	return OnlyRoles(constants.RoleErrorAdmin(feature), constants.RoleAdmin)
}
