package roles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/avolkovs/healthtrack/internal/common"
	"github.com/avolkovs/healthtrack/internal/dbx"
	"github.com/avolkovs/healthtrack/internal/server/models"
)

// PostgresRepository implements role operations over dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// FindByName returns the role with the given name or common.ErrorNotFound.
func (r *PostgresRepository) FindByName(ctx context.Context, name string) (*models.Role, error) {
	query := `
		SELECT id, name FROM roles
		WHERE name = $1
	`
	role := &models.Role{}
	if err := r.db.QueryRowContext(ctx, query, name).Scan(&role.ID, &role.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return role, nil
}

// Create inserts a new role.
func (r *PostgresRepository) Create(ctx context.Context, role *models.Role) (*models.Role, error) {
	query := `
		INSERT INTO roles (id, name)
		VALUES ($1, $2)
	`
	if _, err := r.db.ExecContext(ctx, query, role.ID, role.Name); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return role, nil
}

// Assign grants the role to the user. Assigning an already granted role is
// not an error.
func (r *PostgresRepository) Assign(ctx context.Context, userID, roleID string) error {
	query := `
		INSERT INTO user_roles (user_id, role_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, userID, roleID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
