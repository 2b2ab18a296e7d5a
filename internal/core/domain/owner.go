package domain

import "strings"

// OwnerID identifies the user every document, chunk and artifact belongs to.
// Services and stores take it explicitly so cross-user access cannot happen
// by omission.
type OwnerID string

// String returns the string representation.
func (o OwnerID) String() string {
	return string(o)
}

// IsZero reports whether no owner was supplied.
func (o OwnerID) IsZero() bool {
	return strings.TrimSpace(string(o)) == ""
}

// Validate returns ErrMissingOwner for an empty owner.
func (o OwnerID) Validate() error {
	if o.IsZero() {
		return ErrMissingOwner
	}
	return nil
}
