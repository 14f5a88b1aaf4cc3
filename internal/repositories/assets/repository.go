// Package assets persists S3-backed assets and resolves the linked-assets
// relationship of users whose variant has it.
package assets

import (
	"context"

	"github.com/dmitrijs2005/jbkit/internal/dbx"
	"github.com/dmitrijs2005/jbkit/internal/models"
	"github.com/dmitrijs2005/jbkit/internal/upsert"
)

type Repository interface {
	Upsert(ctx context.Context, s upsert.Session, a *models.Asset, returnResult bool) (*models.Asset, error)
	Get(ctx context.Context, db dbx.DBTX, id int64) (*models.Asset, error)
	ListForUser(ctx context.Context, db dbx.DBTX, u *models.User) ([]*models.Asset, error)
}
