package repomanager

import (
	"context"
	"database/sql"

	"github.com/lingvera/lingvera/internal/dbx"
	"github.com/lingvera/lingvera/internal/server/repositories/projects"
	"github.com/lingvera/lingvera/internal/server/repositories/refreshtokens"
	"github.com/lingvera/lingvera/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Projects(db dbx.DBTX) projects.Repository
}
