// Package upsert implements a conflict-resolving insert-or-update primitive.
//
// A Query is rendered to a single INSERT ... ON CONFLICT ... DO UPDATE
// statement, so atomicity comes from the store, not from locking here.
// With ReturnResult unset the statement runs inside the caller's open
// transaction and nothing is committed, which lets several upserts share one
// commit. With ReturnResult set the session is committed and the row's
// identity is returned (Engine.Upsert) or the row re-fetched (Row).
package upsert

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/dmitrijs2005/jbkit/internal/common"
	"github.com/dmitrijs2005/jbkit/internal/dbx"
	"github.com/dmitrijs2005/jbkit/internal/logging"
)

var (
	ErrNoTable     = errors.New("upsert: table must be specified")
	ErrNoValues    = errors.New("upsert: insert values must not be empty")
	ErrNoSetValues = errors.New("upsert: set values must not be empty")

	// ErrNoIdentity means the store completed the statement without yielding
	// the affected row. That is a driver or store contract breach, not a
	// condition callers are expected to handle.
	ErrNoIdentity = errors.New("upsert: statement completed without an identity")
)

// Session is the transactional handle an upsert runs in.
// *dbx.Session satisfies it.
type Session interface {
	Conn(ctx context.Context) (dbx.DBTX, error)
	Commit() error
}

// Table describes the target of an upsert.
type Table struct {
	Name string
	// IDColumn holds the surrogate identity; defaults to "id".
	IDColumn string
	// UpdatedColumn, when set, is stamped with CURRENT_TIMESTAMP on the
	// conflict branch unless Set already assigns it.
	UpdatedColumn string
}

func (t Table) idColumn() string {
	if t.IDColumn == "" {
		return "id"
	}
	return t.IDColumn
}

// Query is one upsert.
type Query struct {
	Table    Table
	Conflict Conflict
	// Values is the full row to insert.
	Values map[string]any
	// Set lists the columns overwritten when the conflict target matches;
	// columns not listed keep their stored value. Values may be
	// squirrel.Sqlizer expressions, see Excluded.
	Set map[string]any
	// ReturnResult commits the session and yields the row identity.
	ReturnResult bool
}

// Excluded refers to the value proposed for insertion in column col.
func Excluded(col string) squirrel.Sqlizer {
	return squirrel.Expr("EXCLUDED." + col)
}

// Loader fetches a row by identity.
type Loader[T any] func(ctx context.Context, db dbx.DBTX, id int64) (*T, error)

// Engine renders and executes upserts for one dialect.
type Engine struct {
	dialect dbx.Dialect
	logger  logging.Logger
}

func NewEngine(d dbx.Dialect, l logging.Logger) *Engine {
	if l == nil {
		l = logging.Discard()
	}
	return &Engine{dialect: d, logger: l}
}

// Dialect returns the dialect the engine renders for.
func (e *Engine) Dialect() dbx.Dialect {
	return e.dialect
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (e *Engine) validate(q Query) error {
	if q.Table.Name == "" {
		return ErrNoTable
	}
	if err := checkIdent("table", q.Table.Name); err != nil {
		return err
	}
	if err := q.Conflict.validate(e.dialect.ConstraintTargets); err != nil {
		return err
	}
	if len(q.Values) == 0 {
		return ErrNoValues
	}
	if len(q.Set) == 0 {
		return ErrNoSetValues
	}
	for col := range q.Values {
		if err := checkIdent("column", col); err != nil {
			return err
		}
	}
	for col := range q.Set {
		if err := checkIdent("column", col); err != nil {
			return err
		}
	}
	return nil
}

// Build renders q without touching the store. It is the validation point for
// every configuration error the package reports.
func (e *Engine) Build(q Query) (string, []any, error) {
	if err := e.validate(q); err != nil {
		return "", nil, err
	}

	cols := sortedKeys(q.Values)
	vals := make([]any, len(cols))
	for i, c := range cols {
		vals[i] = q.Values[c]
	}

	setCols := sortedKeys(q.Set)
	assignments := make([]string, 0, len(setCols)+1)
	var setArgs []any
	for _, c := range setCols {
		switch v := q.Set[c].(type) {
		case squirrel.Sqlizer:
			exprSQL, exprArgs, err := v.ToSql()
			if err != nil {
				return "", nil, fmt.Errorf("upsert: set %s: %w", c, err)
			}
			assignments = append(assignments, c+" = "+exprSQL)
			setArgs = append(setArgs, exprArgs...)
		default:
			assignments = append(assignments, c+" = ?")
			setArgs = append(setArgs, v)
		}
	}
	if u := q.Table.UpdatedColumn; u != "" {
		if _, ok := q.Set[u]; !ok {
			assignments = append(assignments, u+" = CURRENT_TIMESTAMP")
		}
	}

	b := squirrel.Insert(q.Table.Name).
		Columns(cols...).
		Values(vals...).
		Suffix("ON CONFLICT "+q.Conflict.target()+" DO UPDATE SET "+strings.Join(assignments, ", "), setArgs...)
	if q.ReturnResult {
		b = b.Suffix("RETURNING " + q.Table.idColumn())
	}

	return b.PlaceholderFormat(e.dialect.Placeholder).ToSql()
}

// Upsert executes q in s. Without ReturnResult it returns 0 and leaves the
// session uncommitted. With ReturnResult it commits and returns the identity
// of the inserted or updated row. Store errors are returned unmodified.
func (e *Engine) Upsert(ctx context.Context, s Session, q Query) (int64, error) {
	query, args, err := e.Build(q)
	if err != nil {
		return 0, err
	}

	conn, err := s.Conn(ctx)
	if err != nil {
		return 0, err
	}

	e.logger.Debug(ctx, "upsert", "table", q.Table.Name, "conflict", q.Conflict.String(), "return_result", q.ReturnResult)

	if !q.ReturnResult {
		_, err := conn.ExecContext(ctx, query, args...)
		return 0, err
	}

	var id int64
	if err := conn.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("%w: table %s", ErrNoIdentity, q.Table.Name)
		}
		return 0, err
	}

	if err := s.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// Row runs q and, when q.ReturnResult is set, re-fetches the affected row
// with load after the commit. Without ReturnResult it returns (nil, nil)
// and nothing is committed.
func Row[T any](ctx context.Context, e *Engine, s Session, q Query, load Loader[T]) (*T, error) {
	id, err := e.Upsert(ctx, s, q)
	if err != nil || !q.ReturnResult {
		return nil, err
	}

	conn, err := s.Conn(ctx)
	if err != nil {
		return nil, err
	}
	rec, err := load(ctx, conn, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: %s id %d vanished after commit", ErrNoIdentity, q.Table.Name, id)
		}
		return nil, err
	}
	return rec, nil
}
