package models

// AddressType distinguishes saved sender and receiver addresses
type AddressType string

const (
	AddressTypeSender   AddressType = "sender"
	AddressTypeReceiver AddressType = "receiver"
)

// IsValidAddressType reports whether t is a known address type
func IsValidAddressType(t AddressType) bool {
	return t == AddressTypeSender || t == AddressTypeReceiver
}

// SavedAddress is a user-scoped address book entry, unique per
// (user, type, nickname).
type SavedAddress struct {
	ID       int64       `db:"id" json:"id"`
	UserID   int64       `db:"user_id" json:"-"`
	Type     AddressType `db:"address_type" json:"address_type"`
	Nickname string      `db:"nickname" json:"nickname"`
	Name     string      `db:"name" json:"name"`
	Street   string      `db:"address_street" json:"address_street"`
	City     string      `db:"address_city" json:"address_city"`
	State    string      `db:"address_state" json:"address_state"`
	Pincode  string      `db:"address_pincode" json:"address_pincode"`
	Country  string      `db:"address_country" json:"address_country"`
	Phone    string      `db:"phone" json:"phone"`
}
