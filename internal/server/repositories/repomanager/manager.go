package repomanager

import (
	"context"
	"database/sql"

	"github.com/avolkovs/healthtrack/internal/dbx"
	"github.com/avolkovs/healthtrack/internal/server/repositories/refreshtokens"
	"github.com/avolkovs/healthtrack/internal/server/repositories/roles"
	"github.com/avolkovs/healthtrack/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a concrete DBTX (either the
// shared *sql.DB or an open transaction) and exposes a migration hook.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Roles(db dbx.DBTX) roles.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
}
