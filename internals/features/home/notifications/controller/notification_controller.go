package controller

import (
	"github.com/gofiber/fiber/v2"

	notificationService "github.com/sudoneoox/Picton/internals/features/home/notifications/service"
	helper "github.com/sudoneoox/Picton/internals/helpers"
	helperAuth "github.com/sudoneoox/Picton/internals/helpers/auth"
)

type NotificationController struct {
	Inbox *notificationService.Inbox
}

func NewNotificationController(inbox *notificationService.Inbox) *NotificationController {
	return &NotificationController{Inbox: inbox}
}

// GET /api/notifications?unread=true&page=&per_page=
func (ctl *NotificationController) List(c *fiber.Ctx) error {
	userID, err := helperAuth.GetUserID(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, err.Error())
	}
	paging := helper.ResolvePaging(c, 20, 100)
	rows, total, err := ctl.Inbox.List(c.UserContext(), userID, c.QueryBool("unread", false), paging)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	pg := helper.BuildPaginationFromPage(total, paging.Page, paging.PerPage)
	return helper.JsonList(c, "OK", rows, &pg)
}

// PATCH /api/notifications/:id/read
func (ctl *NotificationController) MarkRead(c *fiber.Ctx) error {
	userID, err := helperAuth.GetUserID(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, err.Error())
	}
	id, ok := helper.ParamID(c, "id")
	if !ok {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid notification id")
	}
	if err := ctl.Inbox.MarkRead(c.UserContext(), userID, id); err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonUpdated(c, "Notification read", fiber.Map{"notification_id": id})
}
