package handlers

import (
	"reloved/internal/domain"
	applog "reloved/internal/log"
	"reloved/internal/services"
	"reloved/internal/shipping"
	"reloved/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type SellerHandler struct {
	Offers  *services.OfferService
	Profile *services.ShippingProfileService
}

// CreateOffer lists a new item for sale. Every listing is one unique
// item, so no stock field is accepted here.
func (h *SellerHandler) CreateOffer(c *fiber.Ctx) error {
	u, _ := c.Locals("user").(*domain.User)
	if u == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "login required"})
	}

	var body struct {
		CategoryID  string  `json:"categoryId"`
		Title       string  `json:"title"`
		Description string  `json:"description"`
		Condition   string  `json:"condition"`
		Price       float64 `json:"price"`
		Currency    string  `json:"currency"`
		WeightGrams int     `json:"weightGrams"`
		Images      string  `json:"images"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	title, ok := validate.Name(body.Title)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "enter a title"})
	}
	cond, ok := validate.Condition(body.Condition)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid condition"})
	}
	if body.Price <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "enter a valid price"})
	}
	catID, ok := validate.ID(body.CategoryID)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing categoryId"})
	}

	o, kind, err := h.Offers.Create(services.NewOffer{
		SellerID:    u.ID,
		CategoryID:  catID,
		Title:       title,
		Description: body.Description,
		Condition:   cond,
		Price:       body.Price,
		Currency:    body.Currency,
		WeightGrams: body.WeightGrams,
		ImagesJSON:  body.Images,
	})
	if err != nil {
		return respondErr(c, "seller.create_offer", err)
	}
	applog.Audit(c, "seller.create_offer", map[string]any{"offer_id": o.ID, "kind": string(kind)})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"offer": o, "kind": kind})
}

// MyOffers lists everything the seller has listed, across both status axes.
func (h *SellerHandler) MyOffers(c *fiber.Ctx) error {
	u, _ := c.Locals("user").(*domain.User)
	if u == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "login required"})
	}
	offers, err := h.Offers.ListBySeller(u.ID)
	if err != nil {
		return respondErr(c, "seller.my_offers", err)
	}
	return c.JSON(fiber.Map{"offers": offers})
}

// SyncShippingProfile registers the seller's pickup address with the
// carrier. Until this succeeds the seller's items cannot be bought.
func (h *SellerHandler) SyncShippingProfile(c *fiber.Ctx) error {
	u, _ := c.Locals("user").(*domain.User)
	if u == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "login required"})
	}

	var body struct {
		Phone      string `json:"phone"`
		Street     string `json:"street"`
		City       string `json:"city"`
		PostalCode string `json:"postalCode"`
		Country    string `json:"country"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	phone, ok := validate.Phone(body.Phone)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "enter a valid phone number"})
	}
	street, ok := validate.Name(body.Street)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "enter a street address"})
	}
	city, ok := validate.Name(body.City)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "enter a city"})
	}
	postal, ok := validate.PostalCode(body.PostalCode)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "enter a valid postal code"})
	}
	country, ok := validate.Country(body.Country)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "enter a valid country code"})
	}

	senderID, err := h.Profile.Sync(c.Context(), u.ID, shipping.SenderAddress{
		Name:       u.Name,
		Email:      u.Email,
		Phone:      phone,
		Street:     street,
		City:       city,
		PostalCode: postal,
		Country:    country,
	})
	if err != nil {
		applog.Error(c, "seller.shipping_profile", err, map[string]any{"user_id": u.ID})
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Could not register the address with the carrier. Please try again."})
	}
	applog.Audit(c, "seller.shipping_profile", map[string]any{"user_id": u.ID, "sender_id": senderID})
	return c.JSON(fiber.Map{"senderId": senderID})
}
