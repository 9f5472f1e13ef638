package domain

type User struct {
	ID    string `db:"id"`
	Email string `db:"email"`
	Name  string `db:"name"`
	Hash  string `db:"password_hash"`
	Role  string `db:"role"` // USER | ADMIN
	Phone string `db:"phone"`

	// Seller shipping profile. SenderID is the carrier-assigned sender
	// address id; empty means the seller cannot fulfill yet.
	SenderID   string `db:"sender_id"`
	Street     string `db:"street"`
	City       string `db:"city"`
	PostalCode string `db:"postal_code"`
	Country    string `db:"country"`
}

// ShippingConfigured reports whether the seller can be used as a parcel
// sender: the carrier sender id exists and the address is complete.
func (u *User) ShippingConfigured() bool {
	return u != nil && u.SenderID != "" && u.Street != "" && u.City != "" &&
		u.PostalCode != "" && u.Country != ""
}
