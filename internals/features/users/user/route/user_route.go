package route

import (
	"github.com/gofiber/fiber/v2"

	userCtl "github.com/sudoneoox/Picton/internals/features/users/user/controller"
	userService "github.com/sudoneoox/Picton/internals/features/users/user/service"
)

// UserAdminRoutes expects a router already restricted to administrators.
func UserAdminRoutes(admin fiber.Router, svc *userService.Service) {
	ctl := userCtl.NewUserController(svc, nil)
	r := admin.Group("/users")
	r.Get("/", ctl.List)
	r.Post("/", ctl.Create)
	r.Get("/:id", ctl.Get)
	r.Patch("/:id", ctl.Update)
	r.Patch("/:id/toggle-status", ctl.ToggleStatus)
}
