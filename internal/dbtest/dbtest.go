// Package dbtest opens migrated in-memory SQLite databases for tests.
package dbtest

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"

	"github.com/dmitrijs2005/jbkit/internal/dbx"
	"github.com/dmitrijs2005/jbkit/internal/logging"
	"github.com/dmitrijs2005/jbkit/internal/models"
	"github.com/dmitrijs2005/jbkit/internal/repositories/repomanager"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// Open returns a fresh migrated database private to t and a manager for it.
// The pool is limited to one connection, so a session holding an open
// transaction must be committed or rolled back before db is used directly.
func Open(t *testing.T, opts ...models.SchemaOption) (*sql.DB, *repomanager.SQLRepositoryManager) {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := sql.Open(dbx.SQLite.Driver, fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", name))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	goose.SetLogger(goose.NopLogger())

	schema, err := models.NewSchema(models.DefaultUserTable, opts...)
	require.NoError(t, err)

	m := repomanager.NewRepositoryManager(dbx.SQLite, schema, logging.Discard())
	require.NoError(t, m.RunMigrations(context.Background(), db))
	return db, m
}
