package models

// Asset table and columns.
const (
	AssetTable        = "asset"
	AssetColBucket    = "s3bucket"
	AssetColKey       = "s3key"
	AssetColMimeType  = "mime_type"
	AssetColCreatedBy = "createdby_id"
)

// AssetColumns is the select list for assets.
var AssetColumns = []string{
	ColID, ColCreated, ColUpdated, ColDeleted,
	AssetColBucket, AssetColKey, AssetColMimeType, AssetColCreatedBy,
}

// Asset is an object stored in S3 and owned by the user who created it.
type Asset struct {
	Base
	S3Bucket    string
	S3Key       string
	MimeType    string
	CreatedByID int64
}
