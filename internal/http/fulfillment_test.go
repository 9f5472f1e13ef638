package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"reloved/internal/config"
	"reloved/internal/http/handlers"
	"reloved/internal/repos"
)

// fakeCarrierServer mimics the carrier endpoints the saga and the label
// download touch.
func fakeCarrierServer(t *testing.T, parcelCalls *int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /parcels", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(parcelCalls, 1)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"id": "par_1", "tracking_number": "TRK1", "label_id": "lab_1",
		})
	})
	mux.HandleFunc("GET /labels/lab_1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4 fake"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// newFulfillmentApp wires the real dependency graph against an in-memory
// database and the fake carrier, with the same routes as the binary.
func newFulfillmentApp(t *testing.T, carrierURL string) (*fiber.App, *sqlx.DB, *handlers.Deps) {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	cfg := config.Config{CarrierBaseURL: carrierURL, Currency: "EUR"}
	deps := handlers.NewDeps(db, cfg, nil)

	app := fiber.New()
	api := app.Group("/api/v1")
	api.Post("/fulfillments", handlers.RequireUser(deps.Auth), deps.FulfillmentHandler.Fulfill)
	api.Get("/seller/offers/:id/label", handlers.RequireUser(deps.Auth), deps.FulfillmentHandler.Label)
	return app, db, deps
}

// sidFor binds a fresh session to the user and returns the cookie value.
func sidFor(t *testing.T, db *sqlx.DB, userID string) string {
	t.Helper()
	sid := uuid.NewString()
	if err := repos.NewUserRepo(db).BindSession(sid, userID); err != nil {
		t.Fatalf("bind session: %v", err)
	}
	return sid
}

func withSID(req *http.Request, sid string) *http.Request {
	req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	return req
}

func TestFulfillEndpointHappyPathThenConflict(t *testing.T) {
	var parcelCalls int32
	srv := fakeCarrierServer(t, &parcelCalls)
	app, db, _ := newFulfillmentApp(t, srv.URL)
	sid := sidFor(t, db, "u-alice")

	body := `{"offerId":"off-gbc-001","servicePointId":"sp-1"}`
	resp, err := app.Test(withSID(jsonReq("POST", "/api/v1/fulfillments", body), sid), -1)
	if err != nil {
		t.Fatalf("test request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var out struct {
		TrackingNumber string `json:"trackingNumber"`
		LabelID        string `json:"labelId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.TrackingNumber != "TRK1" || out.LabelID != "lab_1" {
		t.Fatalf("unexpected result: %+v", out)
	}

	var tx, listing string
	if err := db.QueryRow(`SELECT transaction_status, listing_status FROM offers WHERE id='off-gbc-001'`).Scan(&tx, &listing); err != nil {
		t.Fatalf("query offer: %v", err)
	}
	if tx != "pending_shipment" || listing != "sold" {
		t.Fatalf("offer not committed: tx=%s listing=%s", tx, listing)
	}

	// a second purchase attempt conflicts before the carrier is touched
	resp, err = app.Test(withSID(jsonReq("POST", "/api/v1/fulfillments", body), sid), -1)
	if err != nil {
		t.Fatalf("test request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusConflict {
		t.Fatalf("expected 409 on repeat, got %d", resp.StatusCode)
	}
	if n := atomic.LoadInt32(&parcelCalls); n != 1 {
		t.Fatalf("carrier called %d times, want 1", n)
	}
}

func TestFulfillSellerWithoutProfileIsRejected(t *testing.T) {
	var parcelCalls int32
	srv := fakeCarrierServer(t, &parcelCalls)
	app, db, _ := newFulfillmentApp(t, srv.URL)

	db.MustExec(`INSERT INTO users(id,email,name,password_hash,role)
	  VALUES('u-bare','bare@reloved.test','Bare','*','USER')`)
	db.MustExec(`INSERT INTO offers(id,seller_id,category_id,title,condition,price)
	  VALUES('off-bare','u-bare','audio','Old Walkman','FAIR',20)`)

	sid := sidFor(t, db, "u-alice")
	resp, err := app.Test(withSID(jsonReq("POST", "/api/v1/fulfillments", `{"offerId":"off-bare","servicePointId":"sp-1"}`), sid), -1)
	if err != nil {
		t.Fatalf("test request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	if n := atomic.LoadInt32(&parcelCalls); n != 0 {
		t.Fatalf("carrier called %d times, want 0", n)
	}

	var tx string
	if err := db.QueryRow(`SELECT transaction_status FROM offers WHERE id='off-bare'`).Scan(&tx); err != nil {
		t.Fatalf("query offer: %v", err)
	}
	if tx != "available" {
		t.Fatalf("offer should remain available, got %s", tx)
	}
}

func TestLabelDownloadOwnerOnly(t *testing.T) {
	var parcelCalls int32
	srv := fakeCarrierServer(t, &parcelCalls)
	app, db, _ := newFulfillmentApp(t, srv.URL)

	buyerSID := sidFor(t, db, "u-alice")
	resp, err := app.Test(withSID(jsonReq("POST", "/api/v1/fulfillments", `{"offerId":"off-gbc-001","servicePointId":"sp-1"}`), buyerSID), -1)
	if err != nil {
		t.Fatalf("fulfill setup failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("fulfill setup failed: status=%d", resp.StatusCode)
	}

	// the buyer is not the seller: label hidden
	resp, err = app.Test(withSID(httptest.NewRequest("GET", "/api/v1/seller/offers/off-gbc-001/label", nil), buyerSID), -1)
	if err != nil {
		t.Fatalf("test request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 for non-owner, got %d", resp.StatusCode)
	}

	sellerSID := sidFor(t, db, "u-seed-seller")
	resp, err = app.Test(withSID(httptest.NewRequest("GET", "/api/v1/seller/offers/off-gbc-001/label", nil), sellerSID), -1)
	if err != nil {
		t.Fatalf("test request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for owner, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); cd != `attachment; filename="label-lab_1.pdf"` {
		t.Fatalf("unexpected content disposition %q", cd)
	}
}
