package servicepoints

import (
	"context"
	"fmt"
	"testing"

	"reloved/internal/shipping"
)

type fakeLookup struct {
	calls int
	fail  bool
}

func (f *fakeLookup) ServicePoints(ctx context.Context, country, postalCode string) ([]shipping.ServicePoint, error) {
	f.calls++
	if f.fail {
		return nil, fmt.Errorf("carrier down")
	}
	return []shipping.ServicePoint{{ID: "sp-1", Name: "Corner Shop", PostalCode: postalCode}}, nil
}

func TestLookupWithoutCacheHitsCarrier(t *testing.T) {
	carrier := &fakeLookup{}
	d := NewDirectory(carrier, nil)

	points, err := d.Lookup(context.Background(), "NL", "1015 CS")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if len(points) != 1 || points[0].ID != "sp-1" {
		t.Fatalf("unexpected points: %+v", points)
	}
	if _, err := d.Lookup(context.Background(), "NL", "1015 CS"); err != nil {
		t.Fatal(err)
	}
	// no cache: every lookup reaches the carrier
	if carrier.calls != 2 {
		t.Fatalf("carrier calls = %d, want 2", carrier.calls)
	}
}

func TestLookupPropagatesCarrierError(t *testing.T) {
	d := NewDirectory(&fakeLookup{fail: true}, nil)
	if _, err := d.Lookup(context.Background(), "NL", "1015 CS"); err == nil {
		t.Fatal("expected carrier error")
	}
}
