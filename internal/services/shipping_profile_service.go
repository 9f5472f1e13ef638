package services

import (
	"context"
	"fmt"

	"reloved/internal/repos"
	"reloved/internal/shipping"
)

// SenderSyncer is the sender-address sync call on the carrier client.
type SenderSyncer interface {
	UpsertSender(ctx context.Context, addr shipping.SenderAddress) (string, error)
}

// ShippingProfileService registers a seller's sender address with the
// carrier and persists the returned sender id, which is the precondition
// the fulfillment saga checks before shipping on the seller's behalf.
type ShippingProfileService struct {
	Users   *repos.UserRepo
	Carrier SenderSyncer
}

func NewShippingProfileService(users *repos.UserRepo, carrier SenderSyncer) *ShippingProfileService {
	return &ShippingProfileService{Users: users, Carrier: carrier}
}

func (s *ShippingProfileService) Sync(ctx context.Context, userID string, addr shipping.SenderAddress) (string, error) {
	senderID, err := s.Carrier.UpsertSender(ctx, addr)
	if err != nil {
		return "", fmt.Errorf("sync sender with carrier: %w", err)
	}
	if err := s.Users.SetShippingProfile(userID, senderID, addr.Street, addr.City, addr.PostalCode, addr.Country, addr.Phone); err != nil {
		return "", fmt.Errorf("persist sender id: %w", err)
	}
	return senderID, nil
}
