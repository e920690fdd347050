// Package users declares the server-side repository contract for account
// identity records.
package users

import (
	"context"

	"github.com/avolkovs/healthtrack/internal/server/models"
)

// Repository defines lookup and creation operations for users. Lookups
// return common.ErrorNotFound when no matching row exists.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
