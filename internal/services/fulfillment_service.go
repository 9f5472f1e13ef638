package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"reloved/internal/domain"
	"reloved/internal/repos"
	"reloved/internal/shipping"

	"github.com/sethvargo/go-retry"
)

const (
	// defaultWeightGrams is the conservative parcel weight used when an
	// offer carries no weight attribute.
	defaultWeightGrams = 1000

	// Commit retries stay inside a bounded window so a stuck reservation
	// is bounded too: constant backoff, then the PartialFailureError
	// surfaces and the recovery endpoint takes over.
	commitRetryInterval = 2 * time.Second
	commitRetryWindow   = 30 * time.Second
)

// OfferStore is the fulfillment view of the offer repository.
type OfferStore interface {
	Get(id string) (domain.Offer, error)
	TryReserve(offerID, buyerID string) error
	MarkPendingShipment(offerID string, meta domain.Shipment) error
	Cancel(offerID string) error
	GetShipment(offerID string) (domain.Shipment, error)
}

// Carrier is the one outbound call the saga makes.
type Carrier interface {
	CreateParcel(ctx context.Context, pr shipping.ParcelRequest) (*shipping.Parcel, error)
}

// FulfillmentService turns a confirmed purchase intent into a carrier
// shipment and a consistent offer state. Each step either succeeds or
// compensates; the offer is never left reserved without a shipment on a
// carrier failure.
type FulfillmentService struct {
	Offers  OfferStore
	Users   *repos.UserRepo
	Carrier Carrier
}

func NewFulfillmentService(offers OfferStore, users *repos.UserRepo, carrier Carrier) *FulfillmentService {
	return &FulfillmentService{Offers: offers, Users: users, Carrier: carrier}
}

type FulfillmentResult struct {
	OfferID        string `json:"offerId"`
	TrackingNumber string `json:"trackingNumber"`
	LabelID        string `json:"labelId"`
	ServicePointID string `json:"servicePointId"`
}

// Fulfill runs the saga for (offer, buyer, service point).
//
// Ordering is a correctness requirement: the local reservation happens
// before the carrier call, so when two buyers race, the loser is turned
// away before any carrier shipment exists for them.
func (s *FulfillmentService) Fulfill(ctx context.Context, offerID, buyerID, servicePointID string) (*FulfillmentResult, error) {
	// Preconditions, before any external call.
	offer, err := s.Offers.Get(offerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.ValidationError{Field: "offerId", Reason: "unknown offer"}
	}
	if err != nil {
		return nil, fmt.Errorf("load offer %s: %w", offerID, err)
	}

	seller, err := s.Users.ByID(offer.SellerID)
	if err != nil {
		return nil, fmt.Errorf("load seller %s: %w", offer.SellerID, err)
	}
	if !seller.ShippingConfigured() {
		return nil, &domain.SellerNotConfiguredError{SellerID: offer.SellerID}
	}

	buyer, err := s.Users.ByID(buyerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.ValidationError{Field: "buyerId", Reason: "unknown buyer"}
	}
	if err != nil {
		return nil, fmt.Errorf("load buyer %s: %w", buyerID, err)
	}

	// Step 1: reserve. Nothing external has happened yet, so a loss here
	// needs no compensation. This also short-circuits a repeated saga
	// invocation: an offer already reserved or further along conflicts
	// before the carrier is ever touched.
	if err := s.Offers.TryReserve(offerID, buyerID); err != nil {
		var ce *domain.ConflictError
		if errors.As(err, &ce) {
			cur := offer.TransactionStatus
			if fresh, gerr := s.Offers.Get(offerID); gerr == nil {
				cur = fresh.TransactionStatus
			}
			return nil, &domain.OfferUnavailableError{OfferID: offerID, Status: cur}
		}
		return nil, fmt.Errorf("reserve offer %s: %w", offerID, err)
	}

	// Step 2: assemble the parcel request. Pure local work.
	weight := offer.WeightGrams
	if weight <= 0 {
		weight = defaultWeightGrams
	}
	pr := shipping.ParcelRequest{
		Name:           buyer.Name,
		Email:          buyer.Email,
		Phone:          buyer.Phone,
		ToServicePoint: servicePointID,
		SenderAddress:  seller.SenderID,
		WeightGrams:    weight,
		InsuredValue:   offer.Price,
		Description:    offer.Title,
		RequestLabel:   true,
	}

	// Step 3: carrier shipment. On failure the reservation must be rolled
	// back, otherwise the offer is stuck inventory.
	parcel, err := s.Carrier.CreateParcel(ctx, pr)
	if err != nil {
		detail := err.Error()
		if cerr := s.Offers.Cancel(offerID); cerr != nil {
			detail = fmt.Sprintf("%s (compensation failed: %v)", detail, cerr)
		}
		return nil, &domain.ShipmentCreationError{OfferID: offerID, Detail: detail, Err: err}
	}

	// Step 4: commit. The carrier shipment is not cancelled on failure —
	// carrier-side cancellation is not assumed safe — so only this local
	// write is retried, which is idempotent on the tracking number.
	meta := domain.Shipment{
		TrackingNumber: parcel.TrackingNumber,
		LabelID:        parcel.LabelID,
		ServicePointID: servicePointID,
	}
	if err := s.Commit(ctx, offerID, meta); err != nil {
		return nil, &domain.PartialFailureError{OfferID: offerID, TrackingNumber: parcel.TrackingNumber, Err: err}
	}

	return &FulfillmentResult{
		OfferID:        offerID,
		TrackingNumber: parcel.TrackingNumber,
		LabelID:        parcel.LabelID,
		ServicePointID: servicePointID,
	}, nil
}

// Commit is saga step 4 alone: attach the shipment metadata and move the
// offer to pending_shipment, retrying transient store failures inside the
// bounded window. The recovery endpoint calls this directly with the
// tracking data from a surfaced PartialFailureError.
func (s *FulfillmentService) Commit(ctx context.Context, offerID string, meta domain.Shipment) error {
	b := retry.WithMaxDuration(commitRetryWindow, retry.NewConstant(commitRetryInterval))
	return retry.Do(ctx, b, func(ctx context.Context) error {
		err := s.Offers.MarkPendingShipment(offerID, meta)
		if err == nil {
			return nil
		}
		var ise *domain.InvalidStateError
		if errors.As(err, &ise) {
			// wrong state is not transient; retrying cannot fix it
			return err
		}
		return retry.RetryableError(err)
	})
}

// Shipment exposes the stored carrier metadata for an offer.
func (s *FulfillmentService) Shipment(offerID string) (domain.Shipment, error) {
	return s.Offers.GetShipment(offerID)
}
