package route

import (
	"github.com/gofiber/fiber/v2"

	unitCtl "github.com/sudoneoox/Picton/internals/features/organization/units/controller"
	unitService "github.com/sudoneoox/Picton/internals/features/organization/units/service"
)

func UnitUserRoutes(user fiber.Router, dir *unitService.Directory) {
	ctl := unitCtl.NewUnitController(dir, nil)
	r := user.Group("/units")
	r.Get("/", ctl.List)
	r.Get("/mine", ctl.Mine)
	r.Get("/:id", ctl.Get)
	r.Get("/:id/children", ctl.Children)
	r.Get("/:id/path", ctl.Path)
	r.Get("/:id/approvers", ctl.Approvers)
}

// UnitAdminRoutes expects a router already restricted to administrators.
func UnitAdminRoutes(admin fiber.Router, dir *unitService.Directory) {
	ctl := unitCtl.NewUnitController(dir, nil)
	r := admin.Group("/units")
	r.Post("/", ctl.Create)
	r.Patch("/:id/parent", ctl.Reparent)
	r.Delete("/:id", ctl.Deactivate)
	r.Post("/:id/approvers", ctl.AssignApprover)
	admin.Delete("/approvers/:approverId", ctl.DeactivateApprover)
}
