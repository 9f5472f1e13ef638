package domain

// TransactionStatus tracks the purchase lifecycle of an offer. It is an
// independent axis from ListingStatus, which only governs visibility.
type TransactionStatus string

const (
	TxAvailable       TransactionStatus = "available"
	TxReserved        TransactionStatus = "reserved"
	TxPendingShipment TransactionStatus = "pending_shipment"
	TxShipped         TransactionStatus = "shipped"
	TxDelivered       TransactionStatus = "delivered"
	TxCancelled       TransactionStatus = "cancelled"
	TxSold            TransactionStatus = "sold"
)

type ListingStatus string

const (
	ListingPendingApproval ListingStatus = "pending_approval"
	ListingActive          ListingStatus = "active"
	ListingInactive        ListingStatus = "inactive"
	ListingRejected        ListingStatus = "rejected"
	ListingSold            ListingStatus = "sold"
)

// txTransitions is the full forward graph. Cancellation from reserved or
// pending_shipment is the only path that makes an offer purchasable again.
var txTransitions = map[TransactionStatus][]TransactionStatus{
	TxAvailable:       {TxReserved},
	TxReserved:        {TxPendingShipment, TxCancelled},
	TxPendingShipment: {TxShipped, TxCancelled},
	TxShipped:         {TxDelivered},
	TxDelivered:       {TxSold},
	TxCancelled:       {TxAvailable},
	TxSold:            {},
}

// CanTransition reports whether moving from -> to is a legal step.
func CanTransition(from, to TransactionStatus) bool {
	for _, next := range txTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Purchasable reports whether a new buyer may still claim the offer.
func (s TransactionStatus) Purchasable() bool { return s == TxAvailable }

// Terminal reports whether no further transitions exist from s.
func (s TransactionStatus) Terminal() bool { return len(txTransitions[s]) == 0 }

func ValidTransactionStatus(s string) bool {
	_, ok := txTransitions[TransactionStatus(s)]
	return ok
}

func ValidListingStatus(s string) bool {
	switch ListingStatus(s) {
	case ListingPendingApproval, ListingActive, ListingInactive, ListingRejected, ListingSold:
		return true
	}
	return false
}
