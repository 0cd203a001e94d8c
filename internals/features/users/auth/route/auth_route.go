package route

import (
	"github.com/gofiber/fiber/v2"

	authCtl "github.com/sudoneoox/Picton/internals/features/users/auth/controller"
	authService "github.com/sudoneoox/Picton/internals/features/users/auth/service"
	"github.com/sudoneoox/Picton/internals/middlewares"
)

// AuthPublicRoutes mounts login under /api/auth.
func AuthPublicRoutes(api fiber.Router, svc *authService.Service) {
	ctl := authCtl.NewAuthController(svc, nil)
	api.Post("/auth/login", middlewares.LoginRateLimiter(), ctl.Login)
}

// AuthUserRoutes needs an authenticated router.
func AuthUserRoutes(user fiber.Router, svc *authService.Service) {
	ctl := authCtl.NewAuthController(svc, nil)
	user.Post("/auth/logout", ctl.Logout)
	user.Get("/auth/me", ctl.Me)
}
