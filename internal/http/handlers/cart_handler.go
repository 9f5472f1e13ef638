package handlers

import (
	applog "reloved/internal/log"
	"reloved/internal/services"
	"reloved/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type CartHandler struct {
	Cart *services.CartService
}

func (h *CartHandler) View(c *fiber.Ctx) error {
	cv, err := h.Cart.View(ensureSID(c))
	if err != nil {
		return respondErr(c, "cart.view", err)
	}
	return c.JSON(fiber.Map{"items": cv.Items, "total": cv.Total})
}

func (h *CartHandler) Add(c *fiber.Ctx) error {
	sid := ensureSID(c)
	var body struct {
		OfferID string `json:"offerId"`
		Qty     int    `json:"qty"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	offerID, ok := validate.ID(body.OfferID)
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "offerId"})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing offerId"})
	}
	if body.Qty < 1 {
		body.Qty = 1
	}
	if err := h.Cart.Add(sid, offerID, body.Qty); err != nil {
		return respondErr(c, "cart.add", err)
	}
	applog.Audit(c, "cart.add", map[string]any{"offer_id": offerID, "qty": body.Qty})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"ok": true})
}

func (h *CartHandler) SetQuantity(c *fiber.Ctx) error {
	sid := ensureSID(c)
	offerID, ok := validate.ID(c.Params("offerId"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing offerId"})
	}
	var body struct {
		Qty int `json:"qty"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	if err := h.Cart.SetQuantity(sid, offerID, body.Qty); err != nil {
		return respondErr(c, "cart.set_qty", err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (h *CartHandler) Remove(c *fiber.Ctx) error {
	sid := ensureSID(c)
	offerID, ok := validate.ID(c.Params("offerId"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing offerId"})
	}
	if err := h.Cart.Remove(sid, offerID); err != nil {
		return respondErr(c, "cart.remove", err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (h *CartHandler) Clear(c *fiber.Ctx) error {
	if err := h.Cart.Clear(ensureSID(c)); err != nil {
		return respondErr(c, "cart.clear", err)
	}
	return c.JSON(fiber.Map{"ok": true})
}
