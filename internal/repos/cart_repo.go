package repos

import (
	"time"

	"github.com/jmoiron/sqlx"
)

type CartRepo struct{ db *sqlx.DB }

func NewCartRepo(db *sqlx.DB) *CartRepo { return &CartRepo{db: db} }

type CartItemRow struct {
	OfferID    string  `db:"offer_id" json:"offerId"`
	Title      string  `db:"title" json:"title"`
	Condition  string  `db:"condition" json:"condition"`
	Qty        int     `db:"qty" json:"qty"`
	PriceAtAdd float64 `db:"price_at_add" json:"priceAtAdd"`
	Subtotal   float64 `db:"subtotal" json:"subtotal"`
}

func (r *CartRepo) EnsureCart(sessionID string) (string, error) {
	var cartID string
	if err := r.db.Get(&cartID, `SELECT id FROM carts WHERE session_id = ?`, sessionID); err == nil {
		return cartID, nil
	}
	_, err := r.db.Exec(`INSERT INTO carts(id,session_id,updated_at) VALUES(?,?,?)`,
		sessionID, sessionID, time.Now().Format(time.RFC3339))
	if err != nil {
		return "", err
	}
	return sessionID, nil
}

// UpsertItem adds an entry or increments its quantity. The price is the
// live offer price captured at add time and never re-read afterwards.
func (r *CartRepo) UpsertItem(cartID, offerID string, qty int, price float64) error {
	_, err := r.db.Exec(`
		INSERT INTO cart_items(cart_id,offer_id,qty,price_at_add,created_at)
		VALUES(?,?,?,?,CURRENT_TIMESTAMP)
		ON CONFLICT(cart_id,offer_id) DO UPDATE
		SET qty = cart_items.qty + excluded.qty, updated_at = CURRENT_TIMESTAMP
	`, cartID, offerID, qty, price)
	return err
}

// SetQty replaces an entry's quantity. A quantity below 1 removes the
// entry; zero-quantity rows are never retained.
func (r *CartRepo) SetQty(cartID, offerID string, qty int) error {
	if qty < 1 {
		return r.Remove(cartID, offerID)
	}
	_, err := r.db.Exec(`
		UPDATE cart_items SET qty = ?, updated_at = CURRENT_TIMESTAMP
		WHERE cart_id = ? AND offer_id = ?
	`, qty, cartID, offerID)
	return err
}

func (r *CartRepo) Remove(cartID, offerID string) error {
	_, err := r.db.Exec(`DELETE FROM cart_items WHERE cart_id = ? AND offer_id = ?`, cartID, offerID)
	return err
}

func (r *CartRepo) View(cartID string) ([]CartItemRow, float64, error) {
	rows := []CartItemRow{}
	if err := r.db.Select(&rows, `
	  SELECT ci.offer_id, o.title, o.condition, ci.qty, ci.price_at_add,
	         (ci.qty*ci.price_at_add) AS subtotal
	  FROM cart_items ci JOIN offers o ON o.id=ci.offer_id
	  WHERE ci.cart_id = ?
	`, cartID); err != nil {
		return nil, 0, err
	}
	total := 0.0
	for _, it := range rows {
		total += it.Subtotal
	}
	return rows, total, nil
}

type CartItem struct {
	OfferID   string  `db:"offer_id"`
	Qty       int     `db:"qty"`
	Price     float64 `db:"price"` // snapshotted price_at_add
	Condition string  `db:"condition"`
	Title     string  `db:"title"`
}

func (r *CartRepo) Items(cartID string) ([]CartItem, error) {
	var out []CartItem
	err := r.db.Select(&out, `
	  SELECT ci.offer_id, ci.qty, ci.price_at_add AS price, o.condition, o.title
	  FROM cart_items ci JOIN offers o ON o.id=ci.offer_id
	  WHERE ci.cart_id = ?
	`, cartID)
	return out, err
}

func (r *CartRepo) Clear(cartID string) error {
	_, err := r.db.Exec(`DELETE FROM cart_items WHERE cart_id = ?`, cartID)
	return err
}
