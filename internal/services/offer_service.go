package services

import (
	"reloved/internal/domain"
	"reloved/internal/repos"

	"github.com/google/uuid"
)

type OfferService struct {
	Offers *repos.OfferRepo
	Cats   *repos.CategoryRepo
}

func NewOfferService(offers *repos.OfferRepo, cats *repos.CategoryRepo) *OfferService {
	return &OfferService{Offers: offers, Cats: cats}
}

type NewOffer struct {
	SellerID    string
	CategoryID  string
	Title       string
	Description string
	Condition   string
	Price       float64
	Currency    string
	WeightGrams int
	ImagesJSON  string
}

// Create lists a new offer. The leaf category must resolve to a kind:
// an unmapped category is a configuration error and the listing is
// rejected outright.
func (s *OfferService) Create(in NewOffer) (domain.Offer, domain.Kind, error) {
	kind, err := domain.KindForCategory(in.CategoryID)
	if err != nil {
		return domain.Offer{}, "", &domain.ValidationError{Field: "categoryId", Reason: err.Error()}
	}
	ok, err := s.Cats.Exists(in.CategoryID)
	if err != nil {
		return domain.Offer{}, "", err
	}
	if !ok {
		return domain.Offer{}, "", &domain.ValidationError{Field: "categoryId", Reason: "unknown category"}
	}

	o := domain.Offer{
		ID:                "off-" + uuid.NewString(),
		SellerID:          in.SellerID,
		CategoryID:        in.CategoryID,
		Title:             in.Title,
		Description:       in.Description,
		Condition:         in.Condition,
		Price:             in.Price,
		Currency:          in.Currency,
		Stock:             1,
		WeightGrams:       in.WeightGrams,
		ImagesJSON:        in.ImagesJSON,
		ListingStatus:     domain.ListingActive,
		TransactionStatus: domain.TxAvailable,
	}
	if err := s.Offers.Create(o); err != nil {
		return domain.Offer{}, "", err
	}
	return o, kind, nil
}

func (s *OfferService) Get(id string) (domain.Offer, error) { return s.Offers.Get(id) }

func (s *OfferService) ListCategories() ([]domain.Category, error) { return s.Cats.List() }

func (s *OfferService) ListByCategory(catID string, page, pageSize int) ([]domain.Offer, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 12
	}
	return s.Offers.ListByCategory(catID, pageSize, (page-1)*pageSize)
}

func (s *OfferService) Search(q, category, condition string, page, pageSize int) ([]domain.Offer, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 12
	}
	return s.Offers.Search(q, category, condition, pageSize, (page-1)*pageSize)
}

func (s *OfferService) ListBySeller(sellerID string) ([]domain.Offer, error) {
	return s.Offers.ListBySeller(sellerID)
}

// Moderation: the listing axis only, never the transaction axis.

func (s *OfferService) Approve(offerID string) error {
	return s.Offers.SetListingStatus(offerID, domain.ListingActive)
}

func (s *OfferService) Reject(offerID string) error {
	return s.Offers.SetListingStatus(offerID, domain.ListingRejected)
}

func (s *OfferService) Deactivate(offerID string) error {
	return s.Offers.SetListingStatus(offerID, domain.ListingInactive)
}

// Post-commit pipeline bookkeeping, driven by seller actions.

func (s *OfferService) MarkShipped(offerID string) error { return s.Offers.MarkShipped(offerID) }

func (s *OfferService) MarkDelivered(offerID string) error { return s.Offers.MarkDelivered(offerID) }
