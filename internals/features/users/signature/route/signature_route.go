package route

import (
	"github.com/gofiber/fiber/v2"

	signatureCtl "github.com/sudoneoox/Picton/internals/features/users/signature/controller"
	signatureService "github.com/sudoneoox/Picton/internals/features/users/signature/service"
	"github.com/sudoneoox/Picton/internals/middlewares"
)

func SignatureRoutes(user fiber.Router, svc *signatureService.Signatures) {
	ctl := signatureCtl.NewSignatureController(svc)
	r := user.Group("/signature")
	r.Get("/", ctl.Check)
	r.Post("/", middlewares.UploadRateLimiter(), ctl.Upload)
}
