// Package users persists the polymorphic user record. Every variant lives in
// the one table named by the schema; the user_type column is the
// discriminator.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/dmitrijs2005/jbkit/internal/common"
	"github.com/dmitrijs2005/jbkit/internal/dbx"
	"github.com/dmitrijs2005/jbkit/internal/models"
	"github.com/dmitrijs2005/jbkit/internal/upsert"
)

var ErrUnknownColumn = errors.New("unknown user column")

// Options tunes a generic user upsert.
type Options struct {
	// Conflict is the conflict target; usually EmailConflict or IDConflict.
	Conflict upsert.Conflict
	// Set names the columns overwritten on conflict. Values come from the
	// record being upserted.
	Set []string
	// ReturnResult commits and returns the reloaded record. Without it
	// nothing is committed and the returned record is nil.
	ReturnResult bool
}

// EmailConflict targets the partial unique index on live emails.
func EmailConflict() upsert.Conflict {
	return upsert.OnIndex(models.ColEmail).Where(models.ColDeleted + " IS NULL")
}

// IDConflict targets the primary key.
func IDConflict() upsert.Conflict {
	return upsert.OnIndex(models.ColID)
}

// SQLRepository implements Repository over database/sql for any dialect
// the upsert engine supports.
type SQLRepository struct {
	engine *upsert.Engine
	schema *models.Schema
}

func NewSQLRepository(e *upsert.Engine, s *models.Schema) *SQLRepository {
	return &SQLRepository{engine: e, schema: s}
}

func (r *SQLRepository) table() upsert.Table {
	return upsert.Table{Name: r.schema.Table(), IDColumn: models.ColID, UpdatedColumn: models.ColUpdated}
}

func (r *SQLRepository) selectUsers() squirrel.SelectBuilder {
	return squirrel.Select(models.UserColumns...).
		From(r.schema.Table()).
		PlaceholderFormat(r.engine.Dialect().Placeholder)
}

// Create validates u and upserts it on its email. On conflict only the
// profile columns are overwritten; the stored credential and type stay.
func (r *SQLRepository) Create(ctx context.Context, s upsert.Session, u *models.User) (*models.User, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return r.Upsert(ctx, s, u, Options{
		Conflict:     EmailConflict(),
		Set:          models.ProfileColumns,
		ReturnResult: true,
	})
}

// Upsert writes u with the given conflict target and set columns.
func (r *SQLRepository) Upsert(ctx context.Context, s upsert.Session, u *models.User, opts Options) (*models.User, error) {
	values := u.InsertValues()
	set := make(map[string]any, len(opts.Set))
	for _, col := range opts.Set {
		v, ok := values[col]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, col)
		}
		set[col] = v
	}

	return upsert.Row(ctx, r.engine, s, upsert.Query{
		Table:        r.table(),
		Conflict:     opts.Conflict,
		Values:       values,
		Set:          set,
		ReturnResult: opts.ReturnResult,
	}, r.Get)
}

// Save persists every mutable column of a loaded record, including the
// discriminator and credential, and returns the reloaded record.
func (r *SQLRepository) Save(ctx context.Context, s upsert.Session, u *models.User) (*models.User, error) {
	if !u.Persisted() {
		return nil, common.ErrNotPersisted
	}
	set := make([]string, 0, len(models.UserColumns))
	for col := range u.InsertValues() {
		if col != models.ColID {
			set = append(set, col)
		}
	}
	return r.Upsert(ctx, s, u, Options{Conflict: IDConflict(), Set: set, ReturnResult: true})
}

// SoftDelete stamps deleted on a live user. It does not commit.
func (r *SQLRepository) SoftDelete(ctx context.Context, s upsert.Session, id int64) error {
	query, args, err := squirrel.Update(r.schema.Table()).
		Set(models.ColDeleted, squirrel.Expr("CURRENT_TIMESTAMP")).
		Set(models.ColUpdated, squirrel.Expr("CURRENT_TIMESTAMP")).
		Where(squirrel.Eq{models.ColID: id}).
		Where(models.ColDeleted + " IS NULL").
		PlaceholderFormat(r.engine.Dialect().Placeholder).
		ToSql()
	if err != nil {
		return err
	}

	conn, err := s.Conn(ctx)
	if err != nil {
		return err
	}
	res, err := conn.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *SQLRepository) getOne(ctx context.Context, db dbx.DBTX, b squirrel.SelectBuilder) (*models.User, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}

	u := &models.User{}
	if err := u.ScanRow(db.QueryRowContext(ctx, query, args...)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

// Get loads a user by identity, soft-deleted or not.
func (r *SQLRepository) Get(ctx context.Context, db dbx.DBTX, id int64) (*models.User, error) {
	return r.getOne(ctx, db, r.selectUsers().Where(squirrel.Eq{models.ColID: id}))
}

// GetByEmail loads the live user owning email.
func (r *SQLRepository) GetByEmail(ctx context.Context, db dbx.DBTX, email string) (*models.User, error) {
	return r.getOne(ctx, db, r.selectUsers().
		Where(squirrel.Eq{models.ColEmail: email}).
		Where(models.ColDeleted+" IS NULL"))
}

// GetAs loads a user through variant t. A row carrying another
// discriminator is not found.
func (r *SQLRepository) GetAs(ctx context.Context, db dbx.DBTX, id int64, t models.UserType) (models.Variant, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidUserType, t)
	}
	u, err := r.getOne(ctx, db, r.selectUsers().
		Where(squirrel.Eq{models.ColID: id, models.ColUserType: t}))
	if err != nil {
		return nil, err
	}
	return u.Variant()
}

// ListByType returns the live users of variant t ordered by identity.
func (r *SQLRepository) ListByType(ctx context.Context, db dbx.DBTX, t models.UserType) ([]*models.User, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidUserType, t)
	}
	query, args, err := r.selectUsers().
		Where(squirrel.Eq{models.ColUserType: t}).
		Where(models.ColDeleted + " IS NULL").
		OrderBy(models.ColID).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.User
	for rows.Next() {
		u := &models.User{}
		if err := u.ScanRow(rows); err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
