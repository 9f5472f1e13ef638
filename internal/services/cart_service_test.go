package services_test

import (
	"errors"
	"testing"

	"reloved/internal/domain"
	"reloved/internal/repos"
	"reloved/internal/services"
)

func TestCartAddAndSnapshotTotal(t *testing.T) {
	db := memdbAll(t)
	cartRepo := repos.NewCartRepo(db)
	offerRepo := repos.NewOfferRepo(db)
	svc := services.NewCartService(cartRepo, offerRepo)

	sid := "sess-1"
	if err := svc.Add(sid, "off-1", 1); err != nil {
		t.Fatal(err)
	}

	cv, err := svc.View(sid)
	if err != nil {
		t.Fatal(err)
	}
	if len(cv.Items) != 1 || cv.Total != 100.00 {
		t.Fatalf("bad cart view: %+v", cv)
	}

	// a live price change must not move the total for existing entries
	if _, err := db.Exec(`UPDATE offers SET price = 250.00 WHERE id = 'off-1'`); err != nil {
		t.Fatal(err)
	}
	cv, err = svc.View(sid)
	if err != nil {
		t.Fatal(err)
	}
	if cv.Total != 100.00 {
		t.Fatalf("total must be computed over snapshotted prices, got %v", cv.Total)
	}
}

func TestCartAddIncrements(t *testing.T) {
	db := memdbAll(t)
	svc := services.NewCartService(repos.NewCartRepo(db), repos.NewOfferRepo(db))

	sid := "sess-1"
	if err := svc.Add(sid, "off-1", 1); err != nil {
		t.Fatal(err)
	}
	if err := svc.Add(sid, "off-1", 2); err != nil {
		t.Fatal(err)
	}
	cv, _ := svc.View(sid)
	if len(cv.Items) != 1 || cv.Items[0].Qty != 3 {
		t.Fatalf("want one entry with qty 3: %+v", cv.Items)
	}
}

func TestCartSetQuantityBelowOneRemoves(t *testing.T) {
	db := memdbAll(t)
	svc := services.NewCartService(repos.NewCartRepo(db), repos.NewOfferRepo(db))

	sid := "sess-1"
	if err := svc.Add(sid, "off-1", 2); err != nil {
		t.Fatal(err)
	}
	if err := svc.SetQuantity(sid, "off-1", 0); err != nil {
		t.Fatal(err)
	}
	cv, _ := svc.View(sid)
	if len(cv.Items) != 0 {
		t.Fatalf("zero-quantity entries must be removed, got %+v", cv.Items)
	}
}

func TestCartRejectsUnavailableOffer(t *testing.T) {
	db := memdbAll(t)
	offerRepo := repos.NewOfferRepo(db)
	svc := services.NewCartService(repos.NewCartRepo(db), offerRepo)

	if err := offerRepo.TryReserve("off-1", "u-bob"); err != nil {
		t.Fatal(err)
	}
	err := svc.Add("sess-1", "off-1", 1)
	var oue *domain.OfferUnavailableError
	if !errors.As(err, &oue) {
		t.Fatalf("want OfferUnavailableError, got %v", err)
	}
}

func TestCartClear(t *testing.T) {
	db := memdbAll(t)
	svc := services.NewCartService(repos.NewCartRepo(db), repos.NewOfferRepo(db))

	sid := "sess-1"
	if err := svc.Add(sid, "off-1", 1); err != nil {
		t.Fatal(err)
	}
	if err := svc.Add(sid, "off-noweight", 1); err != nil {
		t.Fatal(err)
	}
	if err := svc.Clear(sid); err != nil {
		t.Fatal(err)
	}
	cv, _ := svc.View(sid)
	if len(cv.Items) != 0 || cv.Total != 0 {
		t.Fatalf("cart not cleared: %+v", cv)
	}
}
