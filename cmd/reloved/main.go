package main

import (
	"io"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"

	"reloved/internal/config"
	"reloved/internal/http/handlers"
	applog "reloved/internal/log"
	"reloved/internal/repos"
	"reloved/internal/servicepoints"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			mw := io.MultiWriter(os.Stdout, f)
			log.SetOutput(mw)
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	// Optional service-point cache; lookups fall through to the carrier
	// when the cache is absent or unreachable.
	var cache *redis.Client
	if cfg.RedisAddr != "" {
		cache, err = servicepoints.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Printf("[warn] redis unavailable, service-point cache disabled: %v", err)
			cache = nil
		}
	}

	deps := handlers.NewDeps(db, cfg, cache)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Error(c, "server.error", err, nil)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Something went wrong. Please try again.",
			})
		},
	})
	// Global body size guard
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	// Attach user to context if logged in
	app.Use(func(c *fiber.Ctx) error {
		if sid := c.Cookies("sid"); sid != "" {
			if u, err := deps.Auth.CurrentUser(sid); err == nil && u != nil {
				c.Locals("user", u)
			}
		}
		return c.Next()
	})
	app.Use(limiter.New(limiter.Config{
		Max:        60,
		Expiration: time.Minute,
	}))

	// ---------- Routes ----------
	api := app.Group("/api/v1")

	// Auth (login throttled)
	api.Post("/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "Too many attempts. Please try again later."})
		},
	}), deps.AuthHandler.Login)
	api.Post("/logout", deps.AuthHandler.Logout)

	// Catalog (public)
	api.Get("/categories", deps.OfferHandler.Categories)
	api.Get("/categories/:id/offers", deps.OfferHandler.ListByCategory)
	api.Get("/offers/search", limiter.New(limiter.Config{Max: 20, Expiration: time.Minute}), deps.OfferHandler.Search)
	api.Get("/offers/:id", deps.OfferHandler.Detail)

	// Cart (session-scoped, no login needed)
	api.Get("/cart", deps.CartHandler.View)
	api.Post("/cart/items", deps.CartHandler.Add)
	api.Patch("/cart/items/:offerId", deps.CartHandler.SetQuantity)
	api.Delete("/cart/items/:offerId", deps.CartHandler.Remove)
	api.Delete("/cart", deps.CartHandler.Clear)

	// Favorites (session-scoped)
	api.Get("/favorites", deps.FavoritesHandler.List)
	api.Post("/favorites/:offerId", deps.FavoritesHandler.Save)
	api.Delete("/favorites/:offerId", deps.FavoritesHandler.Unsave)

	// Checkout & fulfillment (login required)
	api.Get("/service-points", deps.CheckoutHandler.ServicePoints)
	api.Post("/checkout/authorize", handlers.RequireUser(deps.Auth), deps.CheckoutHandler.Authorize)
	api.Post("/fulfillments", handlers.RequireUser(deps.Auth), deps.FulfillmentHandler.Fulfill)

	// Seller tooling (login required)
	api.Post("/seller/offers", handlers.RequireUser(deps.Auth), deps.SellerHandler.CreateOffer)
	api.Get("/seller/offers", handlers.RequireUser(deps.Auth), deps.SellerHandler.MyOffers)
	api.Put("/seller/shipping-profile", handlers.RequireUser(deps.Auth), deps.SellerHandler.SyncShippingProfile)
	api.Get("/seller/offers/:id/label", handlers.RequireUser(deps.Auth), deps.FulfillmentHandler.Label)
	api.Post("/seller/offers/:id/shipped", handlers.RequireUser(deps.Auth), deps.FulfillmentHandler.MarkShipped)
	api.Post("/seller/offers/:id/delivered", handlers.RequireUser(deps.Auth), deps.FulfillmentHandler.MarkDelivered)

	// Admin
	admin := api.Group("/admin", handlers.RequireAdmin(deps.Auth))
	admin.Post("/offers/:id/approve", deps.OfferHandler.Approve)
	admin.Post("/offers/:id/reject", deps.OfferHandler.Reject)
	admin.Post("/offers/:id/deactivate", deps.OfferHandler.Deactivate)
	admin.Post("/fulfillments/:offerId/commit", deps.FulfillmentHandler.RetryCommit)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
	})

	log.Fatal(app.Listen(":" + cfg.Port))
}
