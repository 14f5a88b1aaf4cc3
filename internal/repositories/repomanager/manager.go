// Package repomanager wires repositories to one dialect and schema and
// applies the embedded migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/jbkit/internal/dbx"
	"github.com/dmitrijs2005/jbkit/internal/logging"
	"github.com/dmitrijs2005/jbkit/internal/migrations"
	"github.com/dmitrijs2005/jbkit/internal/models"
	"github.com/dmitrijs2005/jbkit/internal/repositories/assets"
	"github.com/dmitrijs2005/jbkit/internal/repositories/users"
	"github.com/dmitrijs2005/jbkit/internal/upsert"
	"github.com/pressly/goose/v3"
)

// ErrUnmanagedTable is returned by RunMigrations when the schema names a
// user table the embedded migrations do not create.
var ErrUnmanagedTable = errors.New("user table is not managed by the embedded migrations")

type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Users() users.Repository
	Assets() assets.Repository
	Engine() *upsert.Engine
	Schema() *models.Schema
}

// SQLRepositoryManager vends database/sql repositories sharing one upsert
// engine.
type SQLRepositoryManager struct {
	dialect dbx.Dialect
	engine  *upsert.Engine
	schema  *models.Schema
	users   *users.SQLRepository
	assets  *assets.SQLRepository
}

// NewRepositoryManager builds the repositories for dialect d.
func NewRepositoryManager(d dbx.Dialect, schema *models.Schema, l logging.Logger) *SQLRepositoryManager {
	e := upsert.NewEngine(d, l)
	return &SQLRepositoryManager{
		dialect: d,
		engine:  e,
		schema:  schema,
		users:   users.NewSQLRepository(e, schema),
		assets:  assets.NewSQLRepository(e, schema),
	}
}

func (m *SQLRepositoryManager) Users() users.Repository {
	return m.users
}

func (m *SQLRepositoryManager) Assets() assets.Repository {
	return m.assets
}

func (m *SQLRepositoryManager) Engine() *upsert.Engine {
	return m.engine
}

func (m *SQLRepositoryManager) Schema() *models.Schema {
	return m.schema
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded migrations of the manager's dialect.
func (m *SQLRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	if m.schema.Table() != models.DefaultUserTable {
		return fmt.Errorf("%w: %q", ErrUnmanagedTable, m.schema.Table())
	}
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(m.dialect.Goose); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, m.dialect.Name); err != nil {
		return err
	}
	return nil
}
