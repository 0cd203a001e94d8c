package route

import (
	"github.com/gofiber/fiber/v2"

	submissionCtl "github.com/sudoneoox/Picton/internals/features/forms/submissions/controller"
	submissionService "github.com/sudoneoox/Picton/internals/features/forms/submissions/service"
)

func SubmissionUserRoutes(user fiber.Router, life *submissionService.Lifecycle) {
	ctl := submissionCtl.NewSubmissionController(life, nil)
	r := user.Group("/forms/submissions")
	r.Post("/draft", ctl.SaveDraft)
	r.Get("/mine", ctl.Mine)
	r.Get("/identifiers", ctl.Identifiers)
	r.Get("/by-identifier/:identifier", ctl.ByIdentifier)
	r.Get("/:id", ctl.Get)
	r.Post("/:id/submit", ctl.Submit)
	r.Post("/:id/revise", ctl.Revise)
}

func SubmissionAdminRoutes(admin fiber.Router, life *submissionService.Lifecycle) {
	ctl := submissionCtl.NewSubmissionController(life, nil)
	admin.Post("/forms/submissions/:id/refresh-required", ctl.RefreshRequired)
}
