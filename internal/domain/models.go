package domain

type Offer struct {
	ID          string  `db:"id" json:"id"`
	SellerID    string  `db:"seller_id" json:"sellerId"`
	CategoryID  string  `db:"category_id" json:"categoryId"`
	Title       string  `db:"title" json:"title"`
	Description string  `db:"description" json:"description"`
	Condition   string  `db:"condition" json:"condition"` // NEW | LIKE_NEW | GOOD | FAIR | POOR
	Price       float64 `db:"price" json:"price"`
	Currency    string  `db:"currency" json:"currency"`
	Stock       int     `db:"stock" json:"stock"`
	WeightGrams int     `db:"weight_grams" json:"weightGrams"` // 0 means unknown; fulfillment falls back to a default
	ImagesJSON  string  `db:"images_json" json:"images"`

	ListingStatus     ListingStatus     `db:"listing_status" json:"listingStatus"`
	TransactionStatus TransactionStatus `db:"transaction_status" json:"transactionStatus"`
	SoldTo            string            `db:"sold_to" json:"-"` // buyer id once reserved/transacted

	CreatedAt string `db:"created_at" json:"createdAt"`
	UpdatedAt string `db:"updated_at" json:"updatedAt"`
}

// Shipment is the carrier metadata attached to an offer once fulfillment
// begins. It is owned by exactly one offer and kept (voided) after a
// cancellation for audit.
type Shipment struct {
	OfferID        string `db:"offer_id" json:"offerId"`
	TrackingNumber string `db:"tracking_number" json:"trackingNumber"`
	LabelID        string `db:"label_id" json:"labelId"`
	ServicePointID string `db:"service_point_id" json:"servicePointId"`
	Voided         bool   `db:"voided" json:"voided"`
	CreatedAt      string `db:"created_at" json:"createdAt"`
}

type Category struct {
	ID        string `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	CreatedAt string `db:"created_at" json:"-"`
	UpdatedAt string `db:"updated_at" json:"-"`
}
