// Package storage hands out presigned S3 URLs for assets and records the
// objects they point to.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}

	now = time.Now
)

// DefaultExpiry is the lifetime of a presigned URL when Config leaves it unset.
const DefaultExpiry = 15 * time.Minute

var ErrNoBucket = errors.New("storage: bucket is not configured")

// Config describes an S3-compatible backend.
type Config struct {
	Region       string
	AccessKey    string
	SecretKey    string
	Bucket       string
	BaseEndpoint string
	Expiry       time.Duration
}

// Presigner issues presigned PUT and GET URLs against one bucket.
type Presigner struct {
	cfg Config
}

func NewPresigner(cfg Config) (*Presigner, error) {
	if cfg.Bucket == "" {
		return nil, ErrNoBucket
	}
	if cfg.Expiry <= 0 {
		cfg.Expiry = DefaultExpiry
	}
	return &Presigner{cfg: cfg}, nil
}

// Bucket returns the configured bucket name.
func (p *Presigner) Bucket() string {
	return p.cfg.Bucket
}

// ObjectKey returns a fresh key for an object uploaded by owner.
func ObjectKey(owner int64) string {
	d := now()
	return fmt.Sprintf("users/%d/%d/%d/%d/%v", owner, d.Year(), d.Month(), d.Day(), uuid.New())
}

func (p *Presigner) client(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(p.cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			p.cfg.AccessKey,
			p.cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if p.cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(p.cfg.BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return newS3PresignClient(client), nil
}

// PresignPut returns a URL the caller may PUT key's content to.
func (p *Presigner) PresignPut(ctx context.Context, key string, mimeType string) (string, error) {
	pc, err := p.client(ctx)
	if err != nil {
		return "", err
	}

	in := &s3.PutObjectInput{
		Bucket: aws.String(p.cfg.Bucket),
		Key:    aws.String(key),
	}
	if mimeType != "" {
		in.ContentType = aws.String(mimeType)
	}

	req, err := presignPutObject(pc, ctx, in, s3.WithPresignExpires(p.cfg.Expiry))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

// PresignGet returns a URL reading key.
func (p *Presigner) PresignGet(ctx context.Context, key string) (string, error) {
	pc, err := p.client(ctx)
	if err != nil {
		return "", err
	}

	req, err := presignGetObject(pc, ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.cfg.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(p.cfg.Expiry))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}
