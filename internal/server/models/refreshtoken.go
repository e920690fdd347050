package models

import "time"

// RefreshToken is a persisted opaque refresh-token record. Revoked is
// terminal: a revoked record may be deleted but never reactivated.
type RefreshToken struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	Revoked   bool
}

// Expired reports whether the record is past its expiry at the given
// instant. Validity is exclusive of the expiry instant itself.
func (t *RefreshToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// Live reports whether the record is neither revoked nor expired.
func (t *RefreshToken) Live(now time.Time) bool {
	return !t.Revoked && !t.Expired(now)
}
