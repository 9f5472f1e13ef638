package handlers

import (
	"context"
	"fmt"

	"reloved/internal/domain"
	applog "reloved/internal/log"
	"reloved/internal/services"
	"reloved/internal/validate"

	"github.com/gofiber/fiber/v2"
)

// LabelFetcher is the carrier call behind the label download endpoint.
type LabelFetcher interface {
	GetLabel(ctx context.Context, labelID string) ([]byte, error)
}

type FulfillmentHandler struct {
	Fulfillment *services.FulfillmentService
	Offers      *services.OfferService
	Labels      LabelFetcher
}

// Fulfill runs the saga after the client confirmed payment: reserve the
// offer, create the carrier shipment, commit the state.
func (h *FulfillmentHandler) Fulfill(c *fiber.Ctx) error {
	u, _ := c.Locals("user").(*domain.User)
	if u == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "login required"})
	}

	var body struct {
		OfferID        string `json:"offerId"`
		ServicePointID string `json:"servicePointId"`
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

	res, err := h.Fulfillment.Fulfill(c.Context(), offerID, u.ID, spID)
	if err != nil {
		return respondErr(c, "fulfillment.run", err)
	}
	applog.Audit(c, "fulfillment.done", map[string]any{
		"offer_id": offerID, "tracking_number": res.TrackingNumber,
	})
	return c.Status(fiber.StatusCreated).JSON(res)
}

// RetryCommit re-drives saga step 4 for an offer whose carrier shipment
// exists but whose local commit never landed. The tracking data comes
// from the operator (surfaced in the partial-failure log entry); the
// carrier is never called again.
func (h *FulfillmentHandler) RetryCommit(c *fiber.Ctx) error {
	offerID, ok := validate.ID(c.Params("offerId"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid offer id"})
	}
	var body struct {
		TrackingNumber string `json:"trackingNumber"`
		LabelID        string `json:"labelId"`
		ServicePointID string `json:"servicePointId"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	if body.TrackingNumber == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing trackingNumber"})
	}

	meta := domain.Shipment{
		TrackingNumber: body.TrackingNumber,
		LabelID:        body.LabelID,
		ServicePointID: body.ServicePointID,
	}
	if err := h.Fulfillment.Commit(c.Context(), offerID, meta); err != nil {
		return respondErr(c, "fulfillment.retry_commit", err)
	}
	applog.Audit(c, "fulfillment.retry_commit", map[string]any{"offer_id": offerID, "tracking_number": body.TrackingNumber})
	return c.JSON(fiber.Map{"ok": true})
}

// Label streams the carrier label PDF for an offer's shipment to its
// seller (or an admin) as a file download.
func (h *FulfillmentHandler) Label(c *fiber.Ctx) error {
	u, _ := c.Locals("user").(*domain.User)
	if u == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "login required"})
	}
	offerID, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid offer id"})
	}

	o, err := h.Offers.Get(offerID)
	if err != nil {
		return respondErr(c, "fulfillment.label", err)
	}
	if o.SellerID != u.ID && u.Role != "ADMIN" {
		applog.Security(c, "access.denied.label", map[string]any{"offer_id": offerID})
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	}

	s, err := h.Fulfillment.Shipment(offerID)
	if err != nil {
		return respondErr(c, "fulfillment.label", err)
	}
	if s.Voided || s.LabelID == "" {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no label for this offer"})
	}

	pdf, err := h.Labels.GetLabel(c.Context(), s.LabelID)
	if err != nil {
		applog.Error(c, "fulfillment.label.fetch", err, map[string]any{"label_id": s.LabelID})
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Could not fetch the label. Please try again."})
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="label-%s.pdf"`, s.LabelID))
	return c.Send(pdf)
}

// MarkShipped and MarkDelivered advance the post-commit pipeline; the
// seller drops the parcel off, later the carrier confirms delivery.

func (h *FulfillmentHandler) MarkShipped(c *fiber.Ctx) error {
	return h.sellerAdvance(c, h.Offers.MarkShipped, "shipped")
}

func (h *FulfillmentHandler) MarkDelivered(c *fiber.Ctx) error {
	return h.sellerAdvance(c, h.Offers.MarkDelivered, "delivered")
}

func (h *FulfillmentHandler) sellerAdvance(c *fiber.Ctx, fn func(string) error, action string) error {
	u, _ := c.Locals("user").(*domain.User)
	if u == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "login required"})
	}
	offerID, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid offer id"})
	}
	o, err := h.Offers.Get(offerID)
	if err != nil {
		return respondErr(c, "fulfillment."+action, err)
	}
	if o.SellerID != u.ID && u.Role != "ADMIN" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "access denied"})
	}
	if err := fn(offerID); err != nil {
		return respondErr(c, "fulfillment."+action, err)
	}
	applog.Audit(c, "fulfillment."+action, map[string]any{"offer_id": offerID})
	return c.JSON(fiber.Map{"ok": true})
}
