package handlers

import (
	"reloved/internal/domain"
	applog "reloved/internal/log"
	"reloved/internal/services"
	"reloved/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type OfferHandler struct {
	Offers *services.OfferService
}

func (h *OfferHandler) Categories(c *fiber.Ctx) error {
	cats, err := h.Offers.ListCategories()
	if err != nil {
		return respondErr(c, "offers.categories", err)
	}
	return c.JSON(fiber.Map{"categories": cats})
}

func (h *OfferHandler) ListByCategory(c *fiber.Ctx) error {
	catID, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid category"})
	}
	offers, err := h.Offers.ListByCategory(catID, c.QueryInt("page", 1), c.QueryInt("pageSize", 12))
	if err != nil {
		return respondErr(c, "offers.list", err)
	}
	return c.JSON(fiber.Map{"offers": offers})
}

func (h *OfferHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "offer"})
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "This item is no longer available"})
	}
	o, err := h.Offers.Get(id)
	if err != nil || o.ID == "" {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "This item is no longer available"})
	}
	kind, _ := domain.KindForCategory(o.CategoryID)
	return c.JSON(fiber.Map{"offer": o, "kind": kind})
}

func (h *OfferHandler) Search(c *fiber.Ctx) error {
	q := c.Query("q")
	cond := c.Query("condition")
	if cond != "" {
		var ok bool
		if cond, ok = validate.Condition(cond); !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid condition"})
		}
	}
	cat := c.Query("category")
	offers, err := h.Offers.Search(q, cat, cond, c.QueryInt("page", 1), c.QueryInt("pageSize", 12))
	if err != nil {
		return respondErr(c, "offers.search", err)
	}
	return c.JSON(fiber.Map{"offers": offers})
}

// Moderation endpoints; routed behind RequireAdmin.

func (h *OfferHandler) Approve(c *fiber.Ctx) error    { return h.moderate(c, h.Offers.Approve, "approve") }
func (h *OfferHandler) Reject(c *fiber.Ctx) error     { return h.moderate(c, h.Offers.Reject, "reject") }
func (h *OfferHandler) Deactivate(c *fiber.Ctx) error { return h.moderate(c, h.Offers.Deactivate, "deactivate") }

func (h *OfferHandler) moderate(c *fiber.Ctx, fn func(string) error, action string) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid offer id"})
	}
	if err := fn(id); err != nil {
		return respondErr(c, "offers.moderate."+action, err)
	}
	applog.Audit(c, "offers.moderate."+action, map[string]any{"offer_id": id})
	return c.JSON(fiber.Map{"ok": true})
}
