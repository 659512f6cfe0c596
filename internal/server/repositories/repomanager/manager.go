// Package repomanager groups repository constructors behind one interface so
// services can obtain repositories bound to either a plain connection or a
// transaction.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/avelins/cliptube/internal/dbx"
	"github.com/avelins/cliptube/internal/server/repositories/users"
	"github.com/avelins/cliptube/internal/server/repositories/videos"
)

// RepositoryManager vends repositories over any DBTX and exposes a schema
// migration hook.
type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Videos(db dbx.DBTX) videos.Repository
}
