package handlers

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"invadmin/internal/domain"
	applog "invadmin/internal/log"
	"invadmin/internal/services"
	"invadmin/internal/validate"
)

// InventoryHandler serves the inventory REST API.
type InventoryHandler struct {
	Inv *services.InventoryService
}

// apiError writes the JSON error body every API failure uses.
func apiError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{
		"status_code": status,
		"error":       statusText(status),
		"message":     msg,
	})
}

func statusText(status int) string {
	if t := utils.StatusMessage(status); t != "" {
		return t
	}
	return "Error"
}

func (h *InventoryHandler) fail(c *fiber.Ctx, action string, err error) error {
	status := fiber.StatusInternalServerError
	switch services.KindOf(err) {
	case services.KindInvalid:
		status = fiber.StatusBadRequest
	case services.KindNotFound:
		status = fiber.StatusNotFound
	case services.KindConflict:
		status = fiber.StatusConflict
	case services.KindForbidden:
		status = fiber.StatusForbidden
	default:
		applog.Error(c, action+".fail", err, nil)
		return apiError(c, status, "Internal server error")
	}
	applog.Info(c, action+".reject", map[string]any{"status": status, "reason": err.Error()})
	return apiError(c, status, err.Error())
}

func requireJSON(c *fiber.Ctx) error {
	if !c.Is("json") {
		ct := c.Get(fiber.HeaderContentType)
		applog.Security(c, "validation.fail", map[string]any{"field": "content-type", "value": ct})
		return apiError(c, fiber.StatusUnsupportedMediaType, "Content-Type must be application/json")
	}
	return nil
}

func decodeInput(c *fiber.Ctx) (domain.RecordInput, error) {
	var in domain.RecordInput
	if err := json.Unmarshal(c.Body(), &in); err != nil {
		return in, apiError(c, fiber.StatusBadRequest, "Invalid Product: body of request contained bad or no data "+err.Error())
	}
	return in, nil
}

// productParam reads the :id segment as a product id.
func productParam(c *fiber.Ctx) (int, bool) {
	return validate.ProductID(c.Params("id"))
}

// GET /inventory?product_name=&condition=
func (h *InventoryHandler) List(c *fiber.Ctx) error {
	recs, err := h.Inv.List(c.Query("product_name"), c.Query("condition"))
	if err != nil {
		return h.fail(c, "api.inventory.list", err)
	}
	applog.Info(c, "api.inventory.list", map[string]any{"count": len(recs)})
	return c.JSON(recs)
}

// POST /inventory
func (h *InventoryHandler) Create(c *fiber.Ctx) error {
	if err := requireJSON(c); err != nil {
		return err
	}
	in, err := decodeInput(c)
	if err != nil {
		return err
	}
	rec, err := h.Inv.Create(in)
	if err != nil {
		return h.fail(c, "api.inventory.create", err)
	}
	loc := fmt.Sprintf("%s/inventory/%s?condition=%s", c.BaseURL(), rec.ProductID, url.QueryEscape(rec.Condition))
	c.Location(loc)
	applog.Audit(c, "api.inventory.create", map[string]any{"product": rec.ProductID.String(), "condition": rec.Condition})
	return c.Status(fiber.StatusCreated).JSON(rec)
}

// GET /inventory/:id returns every variant; with ?condition= a single record.
func (h *InventoryHandler) Read(c *fiber.Ctx) error {
	id, ok := productParam(c)
	if !ok {
		return apiError(c, fiber.StatusNotFound, "Product not found")
	}
	cond := c.Query("condition")
	if cond == "" {
		recs, err := h.Inv.Variants(id)
		if err != nil {
			return h.fail(c, "api.inventory.read", err)
		}
		applog.Info(c, "api.inventory.read", map[string]any{"product": id, "count": len(recs)})
		return c.JSON(recs)
	}
	rec, err := h.Inv.Get(id, cond)
	if err != nil {
		return h.fail(c, "api.inventory.read", err)
	}
	applog.Info(c, "api.inventory.read", map[string]any{"product": id, "condition": cond})
	return c.JSON(rec)
}

// PUT /inventory/:id?condition=
func (h *InventoryHandler) Update(c *fiber.Ctx) error {
	id, ok := productParam(c)
	if !ok {
		return apiError(c, fiber.StatusNotFound, "Product not found")
	}
	if err := requireJSON(c); err != nil {
		return err
	}
	in, err := decodeInput(c)
	if err != nil {
		return err
	}
	rec, err := h.Inv.Update(id, c.Query("condition"), in)
	if err != nil {
		return h.fail(c, "api.inventory.update", err)
	}
	applog.Audit(c, "api.inventory.update", map[string]any{"product": id, "condition": rec.Condition, "qty": rec.Quantity})
	return c.JSON(rec)
}

// DELETE /inventory/:id
func (h *InventoryHandler) Delete(c *fiber.Ctx) error {
	id, ok := productParam(c)
	if !ok {
		return apiError(c, fiber.StatusNotFound, "Product not found")
	}
	if err := h.Inv.Delete(id); err != nil {
		return h.fail(c, "api.inventory.delete", err)
	}
	applog.Audit(c, "api.inventory.delete", map[string]any{"product": id})
	return c.SendStatus(fiber.StatusNoContent)
}

// Adjust returns the handler for PUT /inventory/:id/{inc,dec,update}.
func (h *InventoryHandler) Adjust(op services.Adjustment) fiber.Handler {
	action := "api.inventory." + string(op)
	return func(c *fiber.Ctx) error {
		id, ok := productParam(c)
		if !ok {
			return apiError(c, fiber.StatusNotFound, "Product not found")
		}
		value := c.Query("value")
		rec, err := h.Inv.Adjust(id, op, c.Query("condition"), value)
		if err != nil {
			return h.fail(c, action, err)
		}
		applog.Audit(c, action, map[string]any{
			"product": id, "condition": rec.Condition, "value": value, "qty": strconv.Itoa(rec.Quantity),
		})
		return c.JSON(rec)
	}
}

// Routes mounts the API on r.
func (h *InventoryHandler) Routes(r fiber.Router) {
	r.Get("/inventory", h.List)
	r.Post("/inventory", h.Create)
	r.Get("/inventory/:id<int>", h.Read)
	r.Put("/inventory/:id<int>", h.Update)
	r.Delete("/inventory/:id<int>", h.Delete)
	r.Put("/inventory/:id<int>/inc", h.Adjust(services.AdjustIncrease))
	r.Put("/inventory/:id<int>/dec", h.Adjust(services.AdjustDecrease))
	r.Put("/inventory/:id<int>/update", h.Adjust(services.AdjustSet))
}
