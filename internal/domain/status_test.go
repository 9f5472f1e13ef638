package domain

import "testing"

func TestCanTransitionForwardPath(t *testing.T) {
	path := []TransactionStatus{TxAvailable, TxReserved, TxPendingShipment, TxShipped, TxDelivered, TxSold}
	for i := 0; i < len(path)-1; i++ {
		if !CanTransition(path[i], path[i+1]) {
			t.Fatalf("expected %s -> %s to be legal", path[i], path[i+1])
		}
	}
}

func TestCanTransitionRejectsBackward(t *testing.T) {
	cases := [][2]TransactionStatus{
		{TxReserved, TxAvailable},
		{TxPendingShipment, TxReserved},
		{TxShipped, TxPendingShipment},
		{TxDelivered, TxShipped},
		{TxShipped, TxCancelled},
		{TxAvailable, TxPendingShipment},
		{TxAvailable, TxShipped},
		{TxSold, TxAvailable},
	}
	for _, c := range cases {
		if CanTransition(c[0], c[1]) {
			t.Fatalf("%s -> %s should be illegal", c[0], c[1])
		}
	}
}

func TestCancellationPaths(t *testing.T) {
	if !CanTransition(TxReserved, TxCancelled) {
		t.Fatal("reserved must be cancellable")
	}
	if !CanTransition(TxPendingShipment, TxCancelled) {
		t.Fatal("pending_shipment must be cancellable")
	}
	// cancellation makes the offer purchasable again
	if !CanTransition(TxCancelled, TxAvailable) {
		t.Fatal("cancelled must be able to return to available")
	}
}

func TestPurchasable(t *testing.T) {
	if !TxAvailable.Purchasable() {
		t.Fatal("available must be purchasable")
	}
	for _, s := range []TransactionStatus{TxReserved, TxPendingShipment, TxShipped, TxDelivered, TxCancelled, TxSold} {
		if s.Purchasable() {
			t.Fatalf("%s must not be purchasable", s)
		}
	}
}
