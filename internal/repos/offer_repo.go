package repos

import (
	"database/sql"
	"errors"

	"reloved/internal/domain"

	"github.com/jmoiron/sqlx"
)

// OfferRepo owns the offers table and the transaction-status state
// machine. Every status change is a conditional UPDATE on the prior
// status, which is the only mutual-exclusion point between racing buyers.
type OfferRepo struct{ db *sqlx.DB }

func NewOfferRepo(db *sqlx.DB) *OfferRepo { return &OfferRepo{db: db} }

const offerCols = `
  id, seller_id, category_id, title, description, condition, price, currency,
  stock, weight_grams, COALESCE(images_json,'') AS images_json,
  listing_status, transaction_status, sold_to,
  created_at, COALESCE(updated_at,'') AS updated_at`

func (r *OfferRepo) Get(id string) (domain.Offer, error) {
	var o domain.Offer
	err := r.db.Get(&o, `SELECT `+offerCols+` FROM offers WHERE id = ?`, id)
	return o, err
}

func (r *OfferRepo) Create(o domain.Offer) error {
	_, err := r.db.Exec(`
	  INSERT INTO offers(id, seller_id, category_id, title, description, condition,
	    price, currency, stock, weight_grams, images_json,
	    listing_status, transaction_status, created_at)
	  VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,CURRENT_TIMESTAMP)
	`, o.ID, o.SellerID, o.CategoryID, o.Title, o.Description, o.Condition,
		o.Price, o.Currency, o.Stock, o.WeightGrams, o.ImagesJSON,
		o.ListingStatus, o.TransactionStatus)
	return err
}

func (r *OfferRepo) ListByCategory(catID string, limit, offset int) ([]domain.Offer, error) {
	var out []domain.Offer
	err := r.db.Select(&out, `
	  SELECT `+offerCols+`
	  FROM offers
	  WHERE category_id = ? AND listing_status = 'active'
	  ORDER BY created_at DESC
	  LIMIT ? OFFSET ?
	`, catID, limit, offset)
	return out, err
}

func (r *OfferRepo) Search(q, catID, cond string, limit, offset int) ([]domain.Offer, error) {
	where := `listing_status = 'active'`
	args := []any{}
	if q != "" {
		where += ` AND (LOWER(title) LIKE ? OR LOWER(description) LIKE ?)`
		args = append(args, "%"+q+"%", "%"+q+"%")
	}
	if catID != "" {
		where += ` AND category_id = ?`
		args = append(args, catID)
	}
	if cond != "" {
		where += ` AND condition = ?`
		args = append(args, cond)
	}

	query := `
	  SELECT ` + offerCols + `
	  FROM offers
	  WHERE ` + where + `
	  ORDER BY created_at DESC
	  LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	var out []domain.Offer
	err := r.db.Select(&out, query, args...)
	return out, err
}

func (r *OfferRepo) ListBySeller(sellerID string) ([]domain.Offer, error) {
	var out []domain.Offer
	err := r.db.Select(&out, `
	  SELECT `+offerCols+`
	  FROM offers
	  WHERE seller_id = ?
	  ORDER BY created_at DESC
	`, sellerID)
	return out, err
}

// TryReserve atomically claims an available offer for one buyer. The
// update is conditioned on the prior status, never a blind write: of two
// simultaneous buyers exactly one sees RowsAffected == 1.
func (r *OfferRepo) TryReserve(offerID, buyerID string) error {
	res, err := r.db.Exec(`
	  UPDATE offers
	  SET transaction_status = 'reserved', sold_to = ?, updated_at = CURRENT_TIMESTAMP
	  WHERE id = ? AND transaction_status = 'available'
	`, buyerID, offerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.Get(offerID); errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return &domain.ConflictError{OfferID: offerID}
	}
	return nil
}

// MarkPendingShipment moves a reserved offer to pending_shipment, flips
// the listing axis to sold, and attaches the shipment metadata. The
// upsert keyed on offer_id makes a commit retry with the same tracking
// number a no-op rather than a duplicate.
func (r *OfferRepo) MarkPendingShipment(offerID string, meta domain.Shipment) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(`
	  UPDATE offers
	  SET transaction_status = 'pending_shipment', listing_status = 'sold',
	      updated_at = CURRENT_TIMESTAMP
	  WHERE id = ? AND transaction_status = 'reserved'
	`, offerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		o, gerr := r.Get(offerID)
		if gerr != nil {
			return gerr
		}
		return &domain.InvalidStateError{OfferID: offerID, From: o.TransactionStatus, Op: "mark pending_shipment"}
	}

	if _, err := tx.Exec(`
	  INSERT INTO shipments(offer_id, tracking_number, label_id, service_point_id, voided, created_at)
	  VALUES(?,?,?,?,0,CURRENT_TIMESTAMP)
	  ON CONFLICT(offer_id) DO UPDATE SET
	    tracking_number = excluded.tracking_number,
	    label_id = excluded.label_id,
	    service_point_id = excluded.service_point_id,
	    voided = 0
	`, offerID, meta.TrackingNumber, meta.LabelID, meta.ServicePointID); err != nil {
		return err
	}

	return tx.Commit()
}

// Cancel is the compensation path: a reserved or pending_shipment offer
// goes back to available, the buyer stamp is cleared and any shipment row
// is voided but kept for audit.
func (r *OfferRepo) Cancel(offerID string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(`
	  UPDATE offers
	  SET transaction_status = 'available', listing_status = 'active',
	      sold_to = '', updated_at = CURRENT_TIMESTAMP
	  WHERE id = ? AND transaction_status IN ('reserved','pending_shipment')
	`, offerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		o, gerr := r.Get(offerID)
		if gerr != nil {
			return gerr
		}
		return &domain.InvalidStateError{OfferID: offerID, From: o.TransactionStatus, Op: "cancel"}
	}

	if _, err := tx.Exec(`UPDATE shipments SET voided = 1 WHERE offer_id = ?`, offerID); err != nil {
		return err
	}

	return tx.Commit()
}

// MarkShipped and MarkDelivered advance the post-commit pipeline; both
// stay conditional so an illegal jump is rejected, not absorbed.
func (r *OfferRepo) MarkShipped(offerID string) error {
	return r.advance(offerID, domain.TxPendingShipment, domain.TxShipped, "mark shipped")
}

func (r *OfferRepo) MarkDelivered(offerID string) error {
	return r.advance(offerID, domain.TxShipped, domain.TxDelivered, "mark delivered")
}

func (r *OfferRepo) advance(offerID string, from, to domain.TransactionStatus, op string) error {
	res, err := r.db.Exec(`
	  UPDATE offers
	  SET transaction_status = ?, updated_at = CURRENT_TIMESTAMP
	  WHERE id = ? AND transaction_status = ?
	`, to, offerID, from)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		o, gerr := r.Get(offerID)
		if gerr != nil {
			return gerr
		}
		return &domain.InvalidStateError{OfferID: offerID, From: o.TransactionStatus, Op: op}
	}
	return nil
}

// SetListingStatus is the moderation hook; it never touches the
// transaction axis.
func (r *OfferRepo) SetListingStatus(offerID string, status domain.ListingStatus) error {
	res, err := r.db.Exec(`
	  UPDATE offers SET listing_status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, status, offerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *OfferRepo) GetShipment(offerID string) (domain.Shipment, error) {
	var s domain.Shipment
	err := r.db.Get(&s, `
	  SELECT offer_id, tracking_number, label_id, service_point_id, voided, created_at
	  FROM shipments WHERE offer_id = ?
	`, offerID)
	return s, err
}
