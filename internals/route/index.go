package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	approvalRoute "github.com/sudoneoox/Picton/internals/features/forms/approvals/route"
	approvalService "github.com/sudoneoox/Picton/internals/features/forms/approvals/service"
	submissionRoute "github.com/sudoneoox/Picton/internals/features/forms/submissions/route"
	submissionService "github.com/sudoneoox/Picton/internals/features/forms/submissions/service"
	templateRoute "github.com/sudoneoox/Picton/internals/features/forms/templates/route"
	templateService "github.com/sudoneoox/Picton/internals/features/forms/templates/service"
	notificationRoute "github.com/sudoneoox/Picton/internals/features/home/notifications/route"
	notificationService "github.com/sudoneoox/Picton/internals/features/home/notifications/service"
	delegationRoute "github.com/sudoneoox/Picton/internals/features/organization/delegations/route"
	delegationService "github.com/sudoneoox/Picton/internals/features/organization/delegations/service"
	unitRoute "github.com/sudoneoox/Picton/internals/features/organization/units/route"
	unitService "github.com/sudoneoox/Picton/internals/features/organization/units/service"
	authRoute "github.com/sudoneoox/Picton/internals/features/users/auth/route"
	authService "github.com/sudoneoox/Picton/internals/features/users/auth/service"
	signatureRoute "github.com/sudoneoox/Picton/internals/features/users/signature/route"
	signatureService "github.com/sudoneoox/Picton/internals/features/users/signature/service"
	userRoute "github.com/sudoneoox/Picton/internals/features/users/user/route"
	userService "github.com/sudoneoox/Picton/internals/features/users/user/service"
	authMw "github.com/sudoneoox/Picton/internals/middlewares/auth"
)

// Deps carries the wired services the HTTP layer needs.
type Deps struct {
	DB        *gorm.DB
	JWTSecret string
	StartedAt time.Time

	Auth       *authService.Service
	Users      *userService.Service
	Directory  *unitService.Directory
	Registry   *delegationService.Registry
	Workflows  *templateService.Workflows
	Engine     *approvalService.Engine
	Lifecycle  *submissionService.Lifecycle
	Inbox      *notificationService.Inbox
	Signatures *signatureService.Signatures
}

func SetupRoutes(app *fiber.App, d Deps) {
	log := zap.L().Named("routes")

	HealthRoutes(app, d.DB, d.StartedAt)

	api := app.Group("/api")

	// ===================== PUBLIC =====================
	log.Info("setting up public routes")
	authRoute.AuthPublicRoutes(api, d.Auth)

	// ===================== AUTHENTICATED =====================
	log.Info("setting up user routes")
	user := api.Group("", authMw.AuthJWT(authMw.AuthJWTOpts{
		Secret:  d.JWTSecret,
		DB:      d.DB,
		Revoked: d.Auth.IsRevoked,
	}))
	authRoute.AuthUserRoutes(user, d.Auth)
	unitRoute.UnitUserRoutes(user, d.Directory)
	delegationRoute.DelegationRoutes(user, d.Registry)
	templateRoute.TemplateUserRoutes(user, d.Workflows)
	submissionRoute.SubmissionUserRoutes(user, d.Lifecycle)
	approvalRoute.ApprovalRoutes(user, d.Engine, d.Lifecycle)
	signatureRoute.SignatureRoutes(user, d.Signatures)
	notificationRoute.NotificationRoutes(user, d.Inbox)

	// ===================== ADMIN =====================
	log.Info("setting up admin routes")
	admin := user.Group("/admin", authMw.OnlyAdmin("administration"))
	userRoute.UserAdminRoutes(admin, d.Users)
	unitRoute.UnitAdminRoutes(admin, d.Directory)
	templateRoute.TemplateAdminRoutes(admin, d.Workflows)
	submissionRoute.SubmissionAdminRoutes(admin, d.Lifecycle)
}
