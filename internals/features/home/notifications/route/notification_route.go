package route

import (
	"github.com/gofiber/fiber/v2"

	notificationCtl "github.com/sudoneoox/Picton/internals/features/home/notifications/controller"
	notificationService "github.com/sudoneoox/Picton/internals/features/home/notifications/service"
)

func NotificationRoutes(user fiber.Router, inbox *notificationService.Inbox) {
	ctl := notificationCtl.NewNotificationController(inbox)
	r := user.Group("/notifications")
	r.Get("/", ctl.List)
	r.Patch("/:id/read", ctl.MarkRead)
}
