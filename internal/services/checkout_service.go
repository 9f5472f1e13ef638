package services

import (
	"context"
	"database/sql"
	"errors"
	"math"

	"reloved/internal/domain"
	"reloved/internal/payments"
	"reloved/internal/repos"
)

// PaymentProcessor is the checkout view of the payments client.
type PaymentProcessor interface {
	CreateIntent(ctx context.Context, amount int64, currency string, meta payments.Metadata) (*payments.Intent, error)
}

// CheckoutService opens payment authorizations. It never mutates the
// offer store: authorization and reservation are decoupled, and the
// fulfillment saga re-checks availability on its own.
type CheckoutService struct {
	Offers    *repos.OfferRepo
	Processor PaymentProcessor
	Currency  string
}

func NewCheckoutService(offers *repos.OfferRepo, processor PaymentProcessor, currency string) *CheckoutService {
	return &CheckoutService{Offers: offers, Processor: processor, Currency: currency}
}

// Authorize validates the amount against the offer's listed price and
// opens an authorization with {buyer, offer, service point} correlation
// metadata attached.
func (s *CheckoutService) Authorize(ctx context.Context, offerID, buyerID, servicePointID string, amount float64) (*payments.Intent, error) {
	if amount <= 0 {
		return nil, &domain.ValidationError{Field: "amount", Reason: "must be positive"}
	}

	o, err := s.Offers.Get(offerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.ValidationError{Field: "offerId", Reason: "unknown offer"}
	}
	if err != nil {
		return nil, err
	}
	if math.Abs(amount-o.Price) > 0.001 {
		return nil, &domain.ValidationError{Field: "amount", Reason: "does not match offer price"}
	}
	if !o.TransactionStatus.Purchasable() {
		return nil, &domain.OfferUnavailableError{OfferID: offerID, Status: o.TransactionStatus}
	}

	return s.Processor.CreateIntent(ctx, payments.MinorUnits(o.Price), s.Currency, payments.Metadata{
		BuyerID:        buyerID,
		OfferID:        offerID,
		ServicePointID: servicePointID,
	})
}
