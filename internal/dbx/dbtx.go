// Package dbx provides the small DB abstractions shared by repositories:
// a minimal interface (DBTX) implemented by both *sql.DB and *sql.Tx,
// Session, a caller-held unit of work that survives commits, and a helper
// running a function inside one.
package dbx

import (
	"context"
	"database/sql"
)

// DBTX is the subset of database/sql used by our repos.
// Both *sql.DB and *sql.Tx satisfy this interface.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// InSession runs fn with a fresh session on db. Work still pending when fn
// returns nil is committed; on error or panic it is rolled back. Panics are
// rethrown. Commits fn made itself stay committed.
//
// Typical use:
//
//	err := dbx.InSession(ctx, db, nil, func(ctx context.Context, s *dbx.Session) error {
//	    return users.SoftDelete(ctx, s, id)
//	})
func InSession(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, s *Session) error) (err error) {
	s := NewSession(db, opts)

	defer func() {
		if p := recover(); p != nil {
			_ = s.Close()
			panic(p)
		}
		if err != nil {
			_ = s.Close()
			return
		}
		err = s.Commit()
		_ = s.Close()
	}()

	err = fn(ctx, s)
	return err
}
