package repos

import (
	"github.com/jmoiron/sqlx"
)

// FavoritesRepo stores per-session saved offers.
type FavoritesRepo struct{ db *sqlx.DB }

func NewFavoritesRepo(db *sqlx.DB) *FavoritesRepo { return &FavoritesRepo{db: db} }

func (r *FavoritesRepo) Add(sessionID, offerID string) error {
	_, err := r.db.Exec(`
	  INSERT INTO favorites(session_id, offer_id, created_at)
	  VALUES(?, ?, CURRENT_TIMESTAMP)
	  ON CONFLICT(session_id, offer_id) DO NOTHING
	`, sessionID, offerID)
	return err
}

func (r *FavoritesRepo) Remove(sessionID, offerID string) error {
	_, err := r.db.Exec(`DELETE FROM favorites WHERE session_id=? AND offer_id=?`, sessionID, offerID)
	return err
}

type FavoriteRow struct {
	OfferID       string  `db:"offer_id" json:"offerId"`
	Title         string  `db:"title" json:"title"`
	Condition     string  `db:"condition" json:"condition"`
	Price         float64 `db:"price" json:"price"`
	ListingStatus string  `db:"listing_status" json:"listingStatus"`
}

func (r *FavoritesRepo) List(sessionID string) ([]FavoriteRow, error) {
	var out []FavoriteRow
	err := r.db.Select(&out, `
	  SELECT o.id AS offer_id, o.title, o.condition, o.price, o.listing_status
	  FROM favorites f
	  JOIN offers o ON o.id = f.offer_id
	  WHERE f.session_id = ?
	  ORDER BY o.title
	`, sessionID)
	return out, err
}
