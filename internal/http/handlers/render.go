package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "invadmin/internal/log"
)

// CSRFCookie is the cookie the console's CSRF middleware issues.
const CSRFCookie = "csrf_"

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	// Token stored by the CSRF middleware; the cookie covers requests it skipped.
	tok, _ := c.Locals("csrf").(string)
	if tok == "" {
		tok = c.Cookies(CSRFCookie)
	}
	data["CSRFToken"] = tok
	return c.Render(tmpl, data)
}

// ErrorHandler logs err and shows a friendly page without internals.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Something went wrong. Please try again."
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < 500 {
		code = fe.Code
		msg = fe.Message
	}
	applog.Error(c, "server.error", err, map[string]any{"code": code})
	if rerr := c.Status(code).Render("notfound", fiber.Map{"Message": msg}); rerr != nil {
		return c.Status(code).SendString(msg)
	}
	return nil
}

// NotFound is mounted last.
func NotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Page not found"})
}
