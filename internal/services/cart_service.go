package services

import (
	"database/sql"
	"errors"

	"reloved/internal/domain"
	"reloved/internal/repos"
)

type CartService struct {
	Carts  *repos.CartRepo
	Offers *repos.OfferRepo
}

func NewCartService(carts *repos.CartRepo, offers *repos.OfferRepo) *CartService {
	return &CartService{Carts: carts, Offers: offers}
}

// Add puts an offer in the cart or increments its quantity. The offer's
// current price is snapshotted; later price changes never affect entries
// already in a cart.
func (s *CartService) Add(sessionID, offerID string, qty int) error {
	if qty < 1 {
		qty = 1
	}
	cartID, err := s.Carts.EnsureCart(sessionID)
	if err != nil {
		return err
	}
	o, err := s.Offers.Get(offerID)
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.ValidationError{Field: "offerId", Reason: "unknown offer"}
	}
	if err != nil {
		return err
	}
	if o.ListingStatus != domain.ListingActive || !o.TransactionStatus.Purchasable() {
		return &domain.OfferUnavailableError{OfferID: offerID, Status: o.TransactionStatus}
	}
	return s.Carts.UpsertItem(cartID, offerID, qty, o.Price)
}

// SetQuantity replaces an entry's quantity; below 1 removes the entry.
func (s *CartService) SetQuantity(sessionID, offerID string, qty int) error {
	cartID, err := s.Carts.EnsureCart(sessionID)
	if err != nil {
		return err
	}
	return s.Carts.SetQty(cartID, offerID, qty)
}

func (s *CartService) Remove(sessionID, offerID string) error {
	cartID, err := s.Carts.EnsureCart(sessionID)
	if err != nil {
		return err
	}
	return s.Carts.Remove(cartID, offerID)
}

func (s *CartService) Clear(sessionID string) error {
	cartID, err := s.Carts.EnsureCart(sessionID)
	if err != nil {
		return err
	}
	return s.Carts.Clear(cartID)
}

type CartView struct {
	Items []repos.CartItemRow
	Total float64
}

// View computes the total over snapshotted prices, not live ones.
func (s *CartService) View(sessionID string) (CartView, error) {
	cartID, err := s.Carts.EnsureCart(sessionID)
	if err != nil {
		return CartView{}, err
	}
	items, total, err := s.Carts.View(cartID)
	if err != nil {
		return CartView{}, err
	}
	return CartView{Items: items, Total: total}, nil
}
