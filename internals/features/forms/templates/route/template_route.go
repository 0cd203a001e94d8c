package route

import (
	"github.com/gofiber/fiber/v2"

	templateCtl "github.com/sudoneoox/Picton/internals/features/forms/templates/controller"
	templateService "github.com/sudoneoox/Picton/internals/features/forms/templates/service"
)

func TemplateUserRoutes(user fiber.Router, wf *templateService.Workflows) {
	ctl := templateCtl.NewTemplateController(wf, nil)
	r := user.Group("/forms/templates")
	r.Get("/", ctl.List)
	r.Get("/:id", ctl.Get)
	r.Get("/:id/steps", ctl.Steps)
}

func TemplateAdminRoutes(admin fiber.Router, wf *templateService.Workflows) {
	ctl := templateCtl.NewTemplateController(wf, nil)
	r := admin.Group("/forms/templates")
	r.Post("/", ctl.Create)
	r.Put("/:id/steps", ctl.ReplaceSteps)
	r.Patch("/:id/active", ctl.SetActive)
}
