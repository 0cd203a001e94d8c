// file: internals/middlewares/auth/auth_middleware.go
package auth

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	userModel "github.com/sudoneoox/Picton/internals/features/users/user/model"
	helper "github.com/sudoneoox/Picton/internals/helpers"
	helperAuth "github.com/sudoneoox/Picton/internals/helpers/auth"
)

type AuthJWTOpts struct {
	Secret string
	DB     *gorm.DB
	// Revoked reports blacklisted tokens; nil skips the check.
	Revoked func(ctx context.Context, raw string) (bool, error)
}

// AuthJWT verifies the access token and stores user_id, role and superuser flag in Locals.
func AuthJWT(opts AuthJWTOpts) fiber.Handler {
	log := zap.L().Named("auth")
	return func(c *fiber.Ctx) error {
		raw := helper.GetRawAccessToken(c)
		if raw == "" {
			return helper.JsonError(c, fiber.StatusUnauthorized, "missing access token")
		}
		if opts.Secret == "" {
			log.Error("JWT secret is not configured")
			return helper.JsonError(c, fiber.StatusInternalServerError, "missing JWT secret")
		}

		claims, err := helperAuth.ParseAccessToken(opts.Secret, raw)
		if err != nil {
			return helper.JsonError(c, fiber.StatusUnauthorized, "invalid or expired token")
		}

		if opts.Revoked != nil {
			revoked, err := opts.Revoked(c.UserContext(), raw)
			if err != nil {
				log.Error("blacklist lookup failed", zap.Error(err))
				return helper.JsonError(c, fiber.StatusInternalServerError, "internal server error")
			}
			if revoked {
				return helper.JsonError(c, fiber.StatusUnauthorized, "token has been revoked")
			}
		}

		// role and flags come from the database so deactivation and role changes apply immediately
		var u userModel.UserModel
		if err := opts.DB.WithContext(c.UserContext()).
			Select("id", "role", "is_active", "is_superuser").
			First(&u, "id = ?", claims.UserID).Error; err != nil {
			if helper.IsRecordNotFound(err) {
				return helper.JsonError(c, fiber.StatusUnauthorized, "user not found")
			}
			return helper.JsonError(c, fiber.StatusInternalServerError, "internal server error")
		}
		if !u.IsActive {
			return helper.JsonError(c, fiber.StatusForbidden, "account is deactivated")
		}

		c.Locals(helper.LocRawToken, raw)
		c.Locals(helperAuth.LocUserID, u.ID)
		c.Locals(helperAuth.LocUserRole, string(u.Role))
		c.Locals(helperAuth.LocIsSuperuser, u.IsSuperuser)
		if claims.ExpiresAt != nil {
			c.Locals(helperAuth.LocTokenExpiry, claims.ExpiresAt.Time)
		} else {
			c.Locals(helperAuth.LocTokenExpiry, time.Now().Add(time.Hour))
		}
		return c.Next()
	}
}
