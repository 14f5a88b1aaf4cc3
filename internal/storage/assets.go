package storage

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/jbkit/internal/common"
	"github.com/dmitrijs2005/jbkit/internal/dbx"
	"github.com/dmitrijs2005/jbkit/internal/models"
	"github.com/dmitrijs2005/jbkit/internal/repositories/assets"
	"github.com/dmitrijs2005/jbkit/internal/upsert"
)

// URLSigner is implemented by Presigner.
type URLSigner interface {
	Bucket() string
	PresignPut(ctx context.Context, key string, mimeType string) (string, error)
	PresignGet(ctx context.Context, key string) (string, error)
}

// AssetService records uploads as assets owned by users whose variant has
// the linked-assets relationship.
type AssetService struct {
	signer URLSigner
	assets assets.Repository
	schema *models.Schema
}

func NewAssetService(signer URLSigner, repo assets.Repository, schema *models.Schema) *AssetService {
	return &AssetService{signer: signer, assets: repo, schema: schema}
}

// Upload is a recorded asset plus the URL its content must be PUT to.
type Upload struct {
	Asset *models.Asset
	URL   string
}

// StartUpload presigns a PUT for a new object and records the asset in s,
// committing it.
func (a *AssetService) StartUpload(ctx context.Context, s upsert.Session, owner *models.User, mimeType string) (*Upload, error) {
	if !a.schema.HasAssets(owner.Type()) {
		return nil, fmt.Errorf("%w: %s on %s", common.ErrRelationNotDefined, models.RelationAssets, owner.Type())
	}
	if !owner.Persisted() {
		return nil, common.ErrNotPersisted
	}

	key := ObjectKey(owner.ID)
	url, err := a.signer.PresignPut(ctx, key, mimeType)
	if err != nil {
		return nil, fmt.Errorf("presign put: %w", err)
	}

	asset, err := a.assets.Upsert(ctx, s, &models.Asset{
		S3Bucket:    a.signer.Bucket(),
		S3Key:       key,
		MimeType:    mimeType,
		CreatedByID: owner.ID,
	}, true)
	if err != nil {
		return nil, err
	}
	return &Upload{Asset: asset, URL: url}, nil
}

// DownloadURL presigns a GET for asset id.
func (a *AssetService) DownloadURL(ctx context.Context, db dbx.DBTX, id int64) (string, error) {
	asset, err := a.assets.Get(ctx, db, id)
	if err != nil {
		return "", err
	}
	if asset.IsDeleted() {
		return "", common.ErrorNotFound
	}
	return a.signer.PresignGet(ctx, asset.S3Key)
}
