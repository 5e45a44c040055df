package models

import "strings"

// keySeparator joins the key parts in String. It is not expected in names,
// phone numbers or addresses.
const keySeparator = "\x1f"

// IdentityKey decides whether two businesses are the same place.
// Two records are duplicates iff their keys are equal.
type IdentityKey struct {
	Name    string
	Phone   string
	Address string
}

// NewIdentityKey normalises the three identity fields: name and address are
// trimmed and lower-cased, phone is only trimmed.
func NewIdentityKey(name, phone, address string) IdentityKey {
	return IdentityKey{
		Name:    strings.ToLower(strings.TrimSpace(name)),
		Phone:   strings.TrimSpace(phone),
		Address: strings.ToLower(strings.TrimSpace(address)),
	}
}

// Key derives the identity key. Absent fields count as empty strings, so
// businesses with no name, phone and address all share one key.
func (b Business) Key() IdentityKey {
	return NewIdentityKey(Value(b.Name), Value(b.PhoneNumber), Value(b.Address))
}

// IsEmpty reports whether all three identity fields are empty.
func (k IdentityKey) IsEmpty() bool {
	return k == IdentityKey{}
}

func (k IdentityKey) String() string {
	return k.Name + keySeparator + k.Phone + keySeparator + k.Address
}
