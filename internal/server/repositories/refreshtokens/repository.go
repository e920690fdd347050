// Package refreshtokens declares the server-side repository contract for
// managing opaque refresh-token records in persistent storage.
package refreshtokens

import (
	"context"
	"time"

	"github.com/avolkovs/healthtrack/internal/server/models"
)

// Repository defines operations for issuing, retrieving, revoking, and
// deleting refresh-token records.
//
// At most one record exists per user (enforced by a unique index); a login
// replaces the previous record with delete-then-insert inside a transaction.
type Repository interface {
	// Create stores a new refresh token for userID with an expiry of
	// now+validity and returns the persisted record.
	Create(ctx context.Context, userID string, token string, validity time.Duration) (*models.RefreshToken, error)

	// FindByToken looks up a record by its opaque token string.
	// Returns common.ErrorNotFound when the token is absent.
	FindByToken(ctx context.Context, token string) (*models.RefreshToken, error)

	// FindByUserID looks up the record owned by userID.
	// Returns common.ErrorNotFound when the user has no record.
	FindByUserID(ctx context.Context, userID string) (*models.RefreshToken, error)

	// Revoke marks the record with the given token string as revoked.
	// The record is kept; revocation is terminal.
	Revoke(ctx context.Context, token string) error

	// Delete removes a record by its token string. Deleting a non-existent
	// token is not an error.
	Delete(ctx context.Context, token string) error

	// DeleteByUserID removes the record owned by userID, if any.
	DeleteByUserID(ctx context.Context, userID string) error
}
