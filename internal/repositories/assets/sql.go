package assets

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

// ObjectKeyConstraint is the unique constraint over (s3bucket, s3key).
const ObjectKeyConstraint = "asset_s3_object_key"

var ErrMissingObjectKey = errors.New("asset bucket and key are required")

// SQLRepository implements Repository over database/sql.
type SQLRepository struct {
	engine *upsert.Engine
	schema *models.Schema
}

func NewSQLRepository(e *upsert.Engine, s *models.Schema) *SQLRepository {
	return &SQLRepository{engine: e, schema: s}
}

// conflict targets the object key: by constraint name where the dialect
// supports it, by its columns otherwise.
func (r *SQLRepository) conflict() upsert.Conflict {
	if r.engine.Dialect().ConstraintTargets {
		return upsert.OnConstraint(ObjectKeyConstraint)
	}
	return upsert.OnIndex(models.AssetColBucket, models.AssetColKey)
}

func nullID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}

// Upsert records an object; re-recording the same bucket and key updates
// its mime type and owner.
func (r *SQLRepository) Upsert(ctx context.Context, s upsert.Session, a *models.Asset, returnResult bool) (*models.Asset, error) {
	if a.S3Bucket == "" || a.S3Key == "" {
		return nil, ErrMissingObjectKey
	}
	values := map[string]any{
		models.AssetColBucket:    a.S3Bucket,
		models.AssetColKey:       a.S3Key,
		models.AssetColMimeType:  a.MimeType,
		models.AssetColCreatedBy: nullID(a.CreatedByID),
	}
	return upsert.Row(ctx, r.engine, s, upsert.Query{
		Table:    upsert.Table{Name: models.AssetTable, UpdatedColumn: models.ColUpdated},
		Conflict: r.conflict(),
		Values:   values,
		Set: map[string]any{
			models.AssetColMimeType:  upsert.Excluded(models.AssetColMimeType),
			models.AssetColCreatedBy: upsert.Excluded(models.AssetColCreatedBy),
		},
		ReturnResult: returnResult,
	}, r.Get)
}

func (r *SQLRepository) selectAssets(table string) squirrel.SelectBuilder {
	return squirrel.Select(models.AssetColumns...).
		From(table).
		PlaceholderFormat(r.engine.Dialect().Placeholder)
}

func scanAsset(row models.RowScanner) (*models.Asset, error) {
	a := &models.Asset{}
	var (
		updated, deleted sql.NullTime
		mime             sql.NullString
		owner            sql.NullInt64
	)
	if err := row.Scan(&a.ID, &a.Created, &updated, &deleted,
		&a.S3Bucket, &a.S3Key, &mime, &owner); err != nil {
		return nil, err
	}
	if updated.Valid {
		a.Updated = &updated.Time
	}
	if deleted.Valid {
		a.Deleted = &deleted.Time
	}
	a.MimeType = mime.String
	a.CreatedByID = owner.Int64
	return a, nil
}

func (r *SQLRepository) Get(ctx context.Context, db dbx.DBTX, id int64) (*models.Asset, error) {
	query, args, err := r.selectAssets(models.AssetTable).Where(squirrel.Eq{models.ColID: id}).ToSql()
	if err != nil {
		return nil, err
	}
	a, err := scanAsset(db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

// ListForUser returns the live assets created by u. Variants without the
// linked-assets relationship yield common.ErrRelationNotDefined rather than
// an empty list.
func (r *SQLRepository) ListForUser(ctx context.Context, db dbx.DBTX, u *models.User) ([]*models.Asset, error) {
	rel, ok := r.schema.Relation(u.Type(), models.RelationAssets)
	if !ok {
		return nil, fmt.Errorf("%w: %s on %s", common.ErrRelationNotDefined, models.RelationAssets, u.Type())
	}
	if !u.Persisted() {
		return nil, common.ErrNotPersisted
	}

	query, args, err := r.selectAssets(rel.Table).
		Where(squirrel.Eq{rel.ForeignKey: u.ID}).
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

	var result []*models.Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
