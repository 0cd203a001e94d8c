package controller

import (
	"io"

	"github.com/gofiber/fiber/v2"

	signatureService "github.com/sudoneoox/Picton/internals/features/users/signature/service"
	helper "github.com/sudoneoox/Picton/internals/helpers"
	helperAuth "github.com/sudoneoox/Picton/internals/helpers/auth"
	"github.com/sudoneoox/Picton/internals/helpers/storage"
)

type SignatureController struct {
	Svc *signatureService.Signatures
}

func NewSignatureController(svc *signatureService.Signatures) *SignatureController {
	return &SignatureController{Svc: svc}
}

// GET /api/signature
func (ctl *SignatureController) Check(c *fiber.Ctx) error {
	userID, err := helperAuth.GetUserID(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, err.Error())
	}
	st, err := ctl.Svc.Check(c.UserContext(), userID)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonOK(c, "OK", st)
}

// POST /api/signature (multipart field "signature")
func (ctl *SignatureController) Upload(c *fiber.Ctx) error {
	userID, err := helperAuth.GetUserID(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, err.Error())
	}
	fh, err := c.FormFile("signature")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "signature file is required")
	}
	if fh.Size > storage.MaxImageBytes {
		return helper.JsonError(c, fiber.StatusRequestEntityTooLarge, "signature must be 2MB or smaller")
	}
	f, err := fh.Open()
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "cannot read upload")
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, storage.MaxImageBytes+1))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "cannot read upload")
	}

	st, err := ctl.Svc.Upload(c.UserContext(), userID, data)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonCreated(c, "Signature saved", st)
}
