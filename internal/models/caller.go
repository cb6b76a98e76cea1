package models

// AnonymousID is the identity every request is attributed to until an
// authentication layer exists.
const AnonymousID = "anonymous"

// Caller identifies who an operation is performed on behalf of.
type Caller struct {
	ID string `json:"id"`
}

// Anonymous returns the placeholder caller.
func Anonymous() Caller {
	return Caller{ID: AnonymousID}
}

// IsZero reports whether the caller carries no identity.
func (c Caller) IsZero() bool {
	return c.ID == ""
}
