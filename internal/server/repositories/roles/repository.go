// Package roles declares the server-side repository contract for role
// records and role assignment.
package roles

import (
	"context"

	"github.com/avolkovs/healthtrack/internal/server/models"
)

// Repository defines operations for looking up, creating, and assigning
// roles. FindByName returns common.ErrorNotFound when the role is absent.
type Repository interface {
	FindByName(ctx context.Context, name string) (*models.Role, error)
	Create(ctx context.Context, role *models.Role) (*models.Role, error)
	Assign(ctx context.Context, userID, roleID string) error
}
