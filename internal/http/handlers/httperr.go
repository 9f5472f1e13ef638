package handlers

import (
	"database/sql"
	"errors"

	"reloved/internal/domain"
	applog "reloved/internal/log"

	"github.com/gofiber/fiber/v2"
)

// respondErr maps the error taxonomy onto HTTP statuses. Availability and
// seller-profile failures get actionable messages; carrier and
// partial-commit failures get a generic message while the detail goes to
// the log, since carrier diagnostics are not for end users.
func respondErr(c *fiber.Ctx, action string, err error) error {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		applog.Security(c, action+".validation", map[string]any{"error": ve.Error()})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ve.Error()})
	}

	var oue *domain.OfferUnavailableError
	if errors.As(err, &oue) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "This item is no longer available. It may have just been bought by someone else.",
		})
	}

	var ce *domain.ConflictError
	if errors.As(err, &ce) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Someone else just claimed this item.",
		})
	}

	var ise *domain.InvalidStateError
	if errors.As(err, &ise) {
		applog.Error(c, action+".invalid_state", err, nil)
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": ise.Error()})
	}

	var snc *domain.SellerNotConfiguredError
	if errors.As(err, &snc) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": "The seller has not set up shipping yet, so this item cannot be ordered right now.",
		})
	}

	var sce *domain.ShipmentCreationError
	if errors.As(err, &sce) {
		applog.Error(c, action+".shipment_creation", err, map[string]any{"offer_id": sce.OfferID, "detail": sce.Detail})
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "We could not arrange shipping. Please try again.",
		})
	}

	var pfe *domain.PartialFailureError
	if errors.As(err, &pfe) {
		applog.Error(c, action+".partial_failure", err, map[string]any{
			"offer_id": pfe.OfferID, "tracking_number": pfe.TrackingNumber,
		})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Something went wrong finishing your order. Please try again.",
		})
	}

	if errors.Is(err, sql.ErrNoRows) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	}

	applog.Error(c, action+".fail", err, nil)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Something went wrong. Please try again.",
	})
}
