package handlers

import (
	"reloved/internal/domain"
	applog "reloved/internal/log"
	"reloved/internal/servicepoints"
	"reloved/internal/services"
	"reloved/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type CheckoutHandler struct {
	Checkout *services.CheckoutService
	Points   *servicepoints.Directory
}

// ServicePoints lists pickup points near the buyer, consumed by checkout
// before fulfillment runs.
func (h *CheckoutHandler) ServicePoints(c *fiber.Ctx) error {
	country, ok := validate.Country(c.Query("country"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "enter a valid country code"})
	}
	postal, ok := validate.PostalCode(c.Query("postalCode"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "enter a valid postal code"})
	}
	points, err := h.Points.Lookup(c.Context(), country, postal)
	if err != nil {
		applog.Error(c, "checkout.service_points", err, nil)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Could not load pickup points. Please try again."})
	}
	return c.JSON(fiber.Map{"servicePoints": points})
}

// Authorize opens a payment intent for one offer; the client confirms the
// payment with the processor using the returned secret, then calls the
// fulfillment endpoint.
func (h *CheckoutHandler) Authorize(c *fiber.Ctx) error {
	u, _ := c.Locals("user").(*domain.User)
	if u == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "login required"})
	}

	var body struct {
		OfferID        string  `json:"offerId"`
		ServicePointID string  `json:"servicePointId"`
		Amount         float64 `json:"amount"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	offerID, ok := validate.ID(body.OfferID)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing offerId"})
	}
	spID, ok := validate.ID(body.ServicePointID)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing servicePointId"})
	}

	intent, err := h.Checkout.Authorize(c.Context(), offerID, u.ID, spID, body.Amount)
	if err != nil {
		return respondErr(c, "checkout.authorize", err)
	}
	applog.Audit(c, "checkout.authorize", map[string]any{"offer_id": offerID, "intent_id": intent.ID})
	return c.JSON(fiber.Map{"clientSecret": intent.ClientSecret})
}
