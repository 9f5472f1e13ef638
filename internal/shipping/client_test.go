package shipping

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestCreateParcel_OK(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/parcels" {
			t.Fatalf("path = %s, want /parcels", r.URL.Path)
		}
		var pr ParcelRequest
		if err := json.NewDecoder(r.Body).Decode(&pr); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(pr.Description) > MaxDescriptionLen {
			t.Fatalf("description not truncated: %q", pr.Description)
		}
		if pr.ToServicePoint != "sp-9" || pr.SenderAddress != "snd-1" {
			t.Fatalf("unexpected request: %+v", pr)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Parcel{ID: "p-1", TrackingNumber: "T123", LabelID: "L1"})
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "key")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	p, err := client.CreateParcel(ctx, ParcelRequest{
		Name:           "Alice",
		Email:          "alice@reloved.test",
		ToServicePoint: "sp-9",
		SenderAddress:  "snd-1",
		WeightGrams:    1000,
		InsuredValue:   100,
		Description:    strings.Repeat("vintage console with accessories ", 3),
		RequestLabel:   true,
	})
	if err != nil {
		t.Fatalf("CreateParcel error: %v", err)
	}
	if p.TrackingNumber != "T123" || p.LabelID != "L1" {
		t.Fatalf("unexpected parcel: %+v", p)
	}
}

func TestCreateParcel_CarrierRejection(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":"address validation failed"}`))
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "key")

	_, err := client.CreateParcel(context.Background(), ParcelRequest{Description: "x"})
	if err == nil {
		t.Fatal("expected error")
	}
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("want *APIError, got %T: %v", err, err)
	}
	if apiErr.Status != http.StatusUnprocessableEntity || !strings.Contains(apiErr.Body, "address validation") {
		t.Fatalf("diagnostic detail lost: %+v", apiErr)
	}
}

func TestServicePoints(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/service-points" {
			t.Fatalf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("country") != "NL" || r.URL.Query().Get("postal_code") != "1015 CS" {
			t.Fatalf("query = %s", r.URL.RawQuery)
		}
		_ = json.NewEncoder(w).Encode([]ServicePoint{
			{ID: "sp-1", Name: "Corner Shop", Street: "Keizersgracht 1", City: "Amsterdam", PostalCode: "1015 CS"},
		})
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "")
	points, err := client.ServicePoints(context.Background(), "NL", "1015 CS")
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 1 || points[0].ID != "sp-1" {
		t.Fatalf("unexpected points: %+v", points)
	}
}

func TestUpsertSender(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sender-addresses" || r.Method != http.MethodPost {
			t.Fatalf("%s %s", r.Method, r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "snd-42"})
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "")
	id, err := client.UpsertSender(context.Background(), SenderAddress{
		Name: "Bob", Street: "Main St 1", City: "Utrecht", PostalCode: "3511 AB", Country: "NL",
	})
	if err != nil {
		t.Fatal(err)
	}
	if id != "snd-42" {
		t.Fatalf("sender id = %s", id)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 35); got != "short" {
		t.Fatalf("got %q", got)
	}
	long := strings.Repeat("a", 40)
	if got := Truncate(long, 35); len(got) != 35 {
		t.Fatalf("len = %d", len(got))
	}
	// never split a multi-byte rune
	if got := Truncate("ééééééééééééééééééé", 35); !strings.HasSuffix(got, "é") || len(got) > 35 {
		t.Fatalf("bad utf8 cut: %q (%d bytes)", got, len(got))
	}
}
