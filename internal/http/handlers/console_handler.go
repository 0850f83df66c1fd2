package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"invadmin/internal/client"
	"invadmin/internal/controller"
	"invadmin/internal/domain"
	applog "invadmin/internal/log"
)

// ConsoleHandler serves the inventory admin page. Every button posts the
// whole form back to "/" and the page is re-rendered from the result.
type ConsoleHandler struct {
	Form *controller.FormController
}

// mutating actions are audited; the rest are logged as info.
var mutating = map[string]bool{
	controller.ActionCreate:   true,
	controller.ActionUpdate:   true,
	controller.ActionDelete:   true,
	controller.ActionIncrease: true,
	controller.ActionDecrease: true,
	controller.ActionSet:      true,
}

// GET /
func (h *ConsoleHandler) Page(c *fiber.Ctx) error {
	return h.show(c, &domain.FormState{})
}

// POST /
func (h *ConsoleHandler) Submit(c *fiber.Ctx) error {
	st := &domain.FormState{}
	if err := c.BodyParser(&st.Fields); err != nil {
		applog.Security(c, "validation.fail", map[string]any{"field": "form", "reason": err.Error()})
		return c.Status(fiber.StatusBadRequest).Render("notfound", fiber.Map{"Message": "Invalid form submission"})
	}
	action := controller.ActionName(c.FormValue("action"))

	err := h.Form.Dispatch(c.UserContext(), action, st)
	fields := map[string]any{
		"action":    action,
		"product":   st.Fields.ProductID,
		"condition": st.Fields.Condition,
	}
	switch {
	case errors.Is(err, controller.ErrUnknownAction):
		applog.Security(c, "console.action.unknown", fields)
		return c.Status(fiber.StatusBadRequest).Render("notfound", fiber.Map{"Message": "Unknown action"})
	case err != nil:
		var apiErr *client.APIError
		if errors.As(err, &apiErr) || errors.Is(err, controller.ErrMissingKey) {
			fields["flash"] = st.Flash
			applog.Info(c, "console."+action+".reject", fields)
		} else {
			applog.Error(c, "console."+action+".fail", err, fields)
		}
	case mutating[action]:
		fields["qty"] = st.Fields.Quantity
		applog.Audit(c, "console."+action, fields)
	default:
		applog.Info(c, "console."+action, fields)
	}
	return h.show(c, st)
}

func (h *ConsoleHandler) show(c *fiber.Ctx, st *domain.FormState) error {
	data := fiber.Map{
		"Form":       st.Fields,
		"Flash":      st.Flash,
		"Conditions": domain.Conditions,
		"HasResults": st.Results != nil,
	}
	if st.Results != nil {
		data["Rows"] = st.Results.Rows()
	}
	return render(c, "console", data)
}
