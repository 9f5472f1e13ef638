package domain

import "fmt"

// Error taxonomy for the fulfillment core. Repos and services return these
// concrete types; the HTTP layer maps them to statuses with errors.As.

// ValidationError covers malformed or missing input. Always local.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ConflictError is an optimistic-concurrency loss on offer reservation:
// another buyer won the race.
type ConflictError struct {
	OfferID string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("offer %s: reservation conflict", e.OfferID)
}

// InvalidStateError means an operation was attempted from a transaction
// status that forbids it.
type InvalidStateError struct {
	OfferID string
	From    TransactionStatus
	Op      string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("offer %s: cannot %s from status %s", e.OfferID, e.Op, e.From)
}

// SellerNotConfiguredError means the seller has no carrier sender profile
// or shipping address, so no parcel can be created on their behalf.
type SellerNotConfiguredError struct {
	SellerID string
}

func (e *SellerNotConfiguredError) Error() string {
	return fmt.Sprintf("seller %s has no shipping profile", e.SellerID)
}

// OfferUnavailableError is terminal: the offer is no longer purchasable.
type OfferUnavailableError struct {
	OfferID string
	Status  TransactionStatus
}

func (e *OfferUnavailableError) Error() string {
	return fmt.Sprintf("offer %s is not available (status %s)", e.OfferID, e.Status)
}

// ShipmentCreationError means the carrier call failed after a successful
// reservation. The reservation has already been compensated when this
// surfaces.
type ShipmentCreationError struct {
	OfferID string
	Detail  string
	Err     error
}

func (e *ShipmentCreationError) Error() string {
	return fmt.Sprintf("offer %s: carrier shipment creation failed: %s", e.OfferID, e.Detail)
}

func (e *ShipmentCreationError) Unwrap() error { return e.Err }

// PartialFailureError means the carrier shipment exists but the local
// commit failed. Only the commit step may be retried; the carrier call
// must never be repeated.
type PartialFailureError struct {
	OfferID        string
	TrackingNumber string
	Err            error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("offer %s: shipment %s created but local commit failed", e.OfferID, e.TrackingNumber)
}

func (e *PartialFailureError) Unwrap() error { return e.Err }
