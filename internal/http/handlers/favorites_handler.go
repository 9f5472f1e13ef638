package handlers

import (
	applog "reloved/internal/log"
	"reloved/internal/services"
	"reloved/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type FavoritesHandler struct {
	Favorites *services.FavoritesService
}

func (h *FavoritesHandler) List(c *fiber.Ctx) error {
	rows, err := h.Favorites.List(ensureSID(c))
	if err != nil {
		return respondErr(c, "favorites.list", err)
	}
	return c.JSON(fiber.Map{"favorites": rows})
}

func (h *FavoritesHandler) Save(c *fiber.Ctx) error {
	offerID, ok := validate.ID(c.Params("offerId"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid offer id"})
	}
	if err := h.Favorites.Save(ensureSID(c), offerID); err != nil {
		return respondErr(c, "favorites.save", err)
	}
	applog.Audit(c, "favorites.save", map[string]any{"offer_id": offerID})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"ok": true})
}

func (h *FavoritesHandler) Unsave(c *fiber.Ctx) error {
	offerID, ok := validate.ID(c.Params("offerId"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid offer id"})
	}
	if err := h.Favorites.Unsave(ensureSID(c), offerID); err != nil {
		return respondErr(c, "favorites.unsave", err)
	}
	return c.JSON(fiber.Map{"ok": true})
}
