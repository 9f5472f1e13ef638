package repos

import (
	"errors"
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"reloved/internal/domain"
)

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	// one connection so every statement sees the same :memory: database
	db.SetMaxOpenConns(1)
	schema := `
	CREATE TABLE offers(id TEXT PRIMARY KEY, seller_id TEXT, category_id TEXT, title TEXT,
	  description TEXT, condition TEXT, price NUMERIC, currency TEXT DEFAULT 'EUR',
	  stock INTEGER DEFAULT 1, weight_grams INTEGER DEFAULT 0, images_json TEXT,
	  listing_status TEXT DEFAULT 'active', transaction_status TEXT DEFAULT 'available',
	  sold_to TEXT DEFAULT '', created_at TEXT DEFAULT CURRENT_TIMESTAMP, updated_at TEXT);
	CREATE TABLE shipments(offer_id TEXT PRIMARY KEY, tracking_number TEXT,
	  label_id TEXT DEFAULT '', service_point_id TEXT DEFAULT '',
	  voided INTEGER DEFAULT 0, created_at TEXT DEFAULT CURRENT_TIMESTAMP);

	INSERT INTO offers(id,seller_id,category_id,title,condition,price)
	  VALUES ('off-1','u-seller','game-consoles','Game Boy Color','GOOD',100.00);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatal(err)
	}
	return db
}

func TestTryReserveOnlyOneBuyerWins(t *testing.T) {
	db := memdb(t)
	r := NewOfferRepo(db)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, buyer := range []string{"u-alice", "u-bob"} {
		wg.Add(1)
		go func(i int, buyer string) {
			defer wg.Done()
			errs[i] = r.TryReserve("off-1", buyer)
		}(i, buyer)
	}
	wg.Wait()

	var wins, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		default:
			var ce *domain.ConflictError
			if !errors.As(err, &ce) {
				t.Fatalf("loser must get ConflictError, got %v", err)
			}
			conflicts++
		}
	}
	if wins != 1 || conflicts != 1 {
		t.Fatalf("want exactly one winner and one conflict, got wins=%d conflicts=%d", wins, conflicts)
	}

	o, err := r.Get("off-1")
	if err != nil {
		t.Fatal(err)
	}
	if o.TransactionStatus != domain.TxReserved || o.SoldTo == "" {
		t.Fatalf("offer not reserved correctly: %+v", o)
	}
}

func TestMarkPendingShipmentRequiresReserved(t *testing.T) {
	db := memdb(t)
	r := NewOfferRepo(db)

	err := r.MarkPendingShipment("off-1", domain.Shipment{TrackingNumber: "T123"})
	var ise *domain.InvalidStateError
	if !errors.As(err, &ise) {
		t.Fatalf("want InvalidStateError on available offer, got %v", err)
	}

	if err := r.TryReserve("off-1", "u-alice"); err != nil {
		t.Fatal(err)
	}
	if err := r.MarkPendingShipment("off-1", domain.Shipment{TrackingNumber: "T123", LabelID: "L1", ServicePointID: "sp-9"}); err != nil {
		t.Fatal(err)
	}

	o, _ := r.Get("off-1")
	if o.TransactionStatus != domain.TxPendingShipment {
		t.Fatalf("want pending_shipment, got %s", o.TransactionStatus)
	}
	if o.ListingStatus != domain.ListingSold {
		t.Fatalf("listing axis must flip to sold, got %s", o.ListingStatus)
	}
	s, err := r.GetShipment("off-1")
	if err != nil {
		t.Fatal(err)
	}
	if s.TrackingNumber != "T123" || s.Voided {
		t.Fatalf("bad shipment row: %+v", s)
	}
}

func TestMarkPendingShipmentIdempotentOnRetry(t *testing.T) {
	db := memdb(t)
	r := NewOfferRepo(db)

	if err := r.TryReserve("off-1", "u-alice"); err != nil {
		t.Fatal(err)
	}
	meta := domain.Shipment{TrackingNumber: "T123", ServicePointID: "sp-9"}
	if err := r.MarkPendingShipment("off-1", meta); err != nil {
		t.Fatal(err)
	}
	// A retry of the commit step after it already succeeded must be
	// rejected on the status guard, not create a second shipment.
	err := r.MarkPendingShipment("off-1", meta)
	var ise *domain.InvalidStateError
	if !errors.As(err, &ise) {
		t.Fatalf("want InvalidStateError on re-commit, got %v", err)
	}
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM shipments WHERE offer_id='off-1'`); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("want one shipment row, got %d", n)
	}
}

func TestCancelRevertsReservationAndVoidsShipment(t *testing.T) {
	db := memdb(t)
	r := NewOfferRepo(db)

	if err := r.TryReserve("off-1", "u-alice"); err != nil {
		t.Fatal(err)
	}
	if err := r.MarkPendingShipment("off-1", domain.Shipment{TrackingNumber: "T123"}); err != nil {
		t.Fatal(err)
	}
	if err := r.Cancel("off-1"); err != nil {
		t.Fatal(err)
	}

	o, _ := r.Get("off-1")
	if o.TransactionStatus != domain.TxAvailable || o.SoldTo != "" {
		t.Fatalf("cancel must return offer to available and clear sold_to: %+v", o)
	}
	s, err := r.GetShipment("off-1")
	if err != nil {
		t.Fatal(err)
	}
	if !s.Voided {
		t.Fatal("shipment metadata must be voided, not deleted")
	}

	// subsequent reservation by another buyer succeeds
	if err := r.TryReserve("off-1", "u-bob"); err != nil {
		t.Fatalf("offer must be reservable again: %v", err)
	}
}

func TestAdvanceGuardsForwardOnly(t *testing.T) {
	db := memdb(t)
	r := NewOfferRepo(db)

	if err := r.MarkShipped("off-1"); err == nil {
		t.Fatal("shipping an available offer must fail")
	}
	if err := r.TryReserve("off-1", "u-alice"); err != nil {
		t.Fatal(err)
	}
	if err := r.MarkPendingShipment("off-1", domain.Shipment{TrackingNumber: "T123"}); err != nil {
		t.Fatal(err)
	}
	if err := r.MarkShipped("off-1"); err != nil {
		t.Fatal(err)
	}
	if err := r.MarkDelivered("off-1"); err != nil {
		t.Fatal(err)
	}
	// delivered offers cannot be cancelled
	if err := r.Cancel("off-1"); err == nil {
		t.Fatal("cancel from delivered must fail")
	}
}
