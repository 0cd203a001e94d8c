package route

import (
	"github.com/gofiber/fiber/v2"

	approvalCtl "github.com/sudoneoox/Picton/internals/features/forms/approvals/controller"
	approvalService "github.com/sudoneoox/Picton/internals/features/forms/approvals/service"
	submissionService "github.com/sudoneoox/Picton/internals/features/forms/submissions/service"
)

func ApprovalRoutes(user fiber.Router, engine *approvalService.Engine, life *submissionService.Lifecycle) {
	ctl := approvalCtl.NewApprovalController(engine, life, nil)
	// delegates need not hold an approver role, so assignment is checked per approval
	r := user.Group("/forms/approvals")
	r.Get("/pending", ctl.Pending)
	r.Post("/:id/approve", ctl.Approve)
	r.Post("/:id/reject", ctl.Reject)
	r.Post("/:id/return", ctl.Return)
}
