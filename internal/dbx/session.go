package dbx

import (
	"context"
	"database/sql"
	"errors"
)

// ErrSessionClosed is returned by a Session after Close.
var ErrSessionClosed = errors.New("session closed")

// Session is an explicit unit of work over a *sql.DB. A transaction is begun
// lazily on the first Conn call and stays open until Commit or Rollback; the
// next Conn call begins a fresh one. A Session is not safe for concurrent
// use: callers holding uncommitted work must serialize access to it.
type Session struct {
	db     *sql.DB
	opts   *sql.TxOptions
	tx     *sql.Tx
	closed bool
}

// NewSession opens a session on db. opts applies to every transaction the
// session begins and may be nil.
func NewSession(db *sql.DB, opts *sql.TxOptions) *Session {
	return &Session{db: db, opts: opts}
}

// Conn returns the current transaction, beginning one if none is active.
func (s *Session) Conn(ctx context.Context) (DBTX, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}
	if s.tx != nil {
		return s.tx, nil
	}
	tx, err := s.db.BeginTx(ctx, s.opts)
	if err != nil {
		return nil, err
	}
	s.tx = tx
	return tx, nil
}

// Active reports whether the session holds an open transaction.
func (s *Session) Active() bool {
	return s.tx != nil
}

// Commit commits the open transaction. Committing with nothing open is a no-op.
func (s *Session) Commit() error {
	if s.closed {
		return ErrSessionClosed
	}
	if s.tx == nil {
		return nil
	}
	tx := s.tx
	s.tx = nil
	return tx.Commit()
}

// Rollback discards the open transaction, if any.
func (s *Session) Rollback() error {
	if s.closed {
		return ErrSessionClosed
	}
	if s.tx == nil {
		return nil
	}
	tx := s.tx
	s.tx = nil
	return tx.Rollback()
}

// Close rolls back uncommitted work and makes the session unusable.
// Closing twice is safe.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	err := s.Rollback()
	s.closed = true
	return err
}
