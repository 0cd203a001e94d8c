package route

import (
	"github.com/gofiber/fiber/v2"

	delegationCtl "github.com/sudoneoox/Picton/internals/features/organization/delegations/controller"
	delegationService "github.com/sudoneoox/Picton/internals/features/organization/delegations/service"
	authMw "github.com/sudoneoox/Picton/internals/middlewares/auth"
)

func DelegationRoutes(user fiber.Router, reg *delegationService.Registry) {
	ctl := delegationCtl.NewDelegationController(reg, nil)
	r := user.Group("/delegations")
	r.Post("/", authMw.OnlyApprovers("delegations"), ctl.Create)
	r.Get("/mine", ctl.Mine)
	r.Get("/active", ctl.Active)
	r.Post("/:id/cancel", ctl.Cancel)
	r.Get("/:id/history", ctl.History)
}
