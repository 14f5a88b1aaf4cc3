package users

import (
	"context"

	"github.com/dmitrijs2005/jbkit/internal/dbx"
	"github.com/dmitrijs2005/jbkit/internal/models"
	"github.com/dmitrijs2005/jbkit/internal/upsert"
)

// Repository persists users. Writes go through the upsert engine and run in
// a caller-held session; reads take any DBTX.
type Repository interface {
	Create(ctx context.Context, s upsert.Session, u *models.User) (*models.User, error)
	Upsert(ctx context.Context, s upsert.Session, u *models.User, opts Options) (*models.User, error)
	Save(ctx context.Context, s upsert.Session, u *models.User) (*models.User, error)
	SoftDelete(ctx context.Context, s upsert.Session, id int64) error

	Get(ctx context.Context, db dbx.DBTX, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, db dbx.DBTX, email string) (*models.User, error)
	GetAs(ctx context.Context, db dbx.DBTX, id int64, t models.UserType) (models.Variant, error)
	ListByType(ctx context.Context, db dbx.DBTX, t models.UserType) ([]*models.User, error)
}
