package handlers

import (
	"reloved/internal/config"
	"reloved/internal/payments"
	"reloved/internal/repos"
	"reloved/internal/servicepoints"
	"reloved/internal/services"
	"reloved/internal/shipping"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

type Deps struct {
	AuthHandler        *AuthHandler
	OfferHandler       *OfferHandler
	CartHandler        *CartHandler
	CheckoutHandler    *CheckoutHandler
	FulfillmentHandler *FulfillmentHandler
	SellerHandler      *SellerHandler
	FavoritesHandler   *FavoritesHandler

	Auth *services.AuthService
}

func NewDeps(db *sqlx.DB, cfg config.Config, cache *redis.Client) *Deps {
	offerRepo := repos.NewOfferRepo(db)
	catRepo := repos.NewCategoryRepo(db)
	cartRepo := repos.NewCartRepo(db)
	userRepo := repos.NewUserRepo(db)
	favRepo := repos.NewFavoritesRepo(db)

	carrier := shipping.NewClient(cfg.CarrierBaseURL, cfg.CarrierAPIKey)
	processor := payments.NewClient(cfg.PaymentsBaseURL, cfg.PaymentsAPIKey)
	points := servicepoints.NewDirectory(carrier, cache)

	auth := &services.AuthService{Users: userRepo}
	offerSvc := services.NewOfferService(offerRepo, catRepo)
	cartSvc := services.NewCartService(cartRepo, offerRepo)
	checkoutSvc := services.NewCheckoutService(offerRepo, processor, cfg.Currency)
	fulfillSvc := services.NewFulfillmentService(offerRepo, userRepo, carrier)
	profileSvc := services.NewShippingProfileService(userRepo, carrier)
	favSvc := services.NewFavoritesService(favRepo)

	return &Deps{
		AuthHandler:     &AuthHandler{Auth: auth},
		OfferHandler:    &OfferHandler{Offers: offerSvc},
		CartHandler:     &CartHandler{Cart: cartSvc},
		CheckoutHandler: &CheckoutHandler{Checkout: checkoutSvc, Points: points},
		FulfillmentHandler: &FulfillmentHandler{
			Fulfillment: fulfillSvc,
			Offers:      offerSvc,
			Labels:      carrier,
		},
		SellerHandler:    &SellerHandler{Offers: offerSvc, Profile: profileSvc},
		FavoritesHandler: &FavoritesHandler{Favorites: favSvc},
		Auth:             auth,
	}
}
