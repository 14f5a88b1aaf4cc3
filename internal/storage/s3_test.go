package storage

import (
	"context"
	"errors"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		Region:       "us-east-1",
		AccessKey:    "minioadmin",
		SecretKey:    "minioadmin",
		Bucket:       "media",
		BaseEndpoint: "http://127.0.0.1:9000",
	}
}

func TestNewPresigner(t *testing.T) {
	_, err := NewPresigner(Config{})
	require.ErrorIs(t, err, ErrNoBucket)

	p, err := NewPresigner(testConfig())
	require.NoError(t, err)
	assert.Equal(t, DefaultExpiry, p.cfg.Expiry)
	assert.Equal(t, "media", p.Bucket())
}

func TestObjectKey(t *testing.T) {
	orig := now
	t.Cleanup(func() { now = orig })
	now = func() time.Time { return time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC) }

	k1 := ObjectKey(7)
	k2 := ObjectKey(7)
	assert.Regexp(t, regexp.MustCompile(`^users/7/2024/3/9/[0-9a-f-]{36}$`), k1)
	assert.NotEqual(t, k1, k2)
}

func TestPresign_SignsOffline(t *testing.T) {
	p, err := NewPresigner(testConfig())
	require.NoError(t, err)

	raw, err := p.PresignPut(context.Background(), "users/1/a.png", "image/png")
	require.NoError(t, err)
	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", u.Host)
	assert.Equal(t, "/media/users/1/a.png", u.Path)
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
	assert.Equal(t, "900", u.Query().Get("X-Amz-Expires"))

	raw, err = p.PresignGet(context.Background(), "users/1/a.png")
	require.NoError(t, err)
	assert.True(t, strings.Contains(raw, "X-Amz-Signature="))
}

func TestClient_AppliesConfig(t *testing.T) {
	p, err := NewPresigner(testConfig())
	require.NoError(t, err)

	origLoad := loadDefaultAWSConfig
	origNewS3 := newS3ClientFromConfig
	origNewPre := newS3PresignClient
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNewS3
		newS3PresignClient = origNewPre
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "us-east-1", lo.Region)
		creds, err := lo.Credentials.Retrieve(ctx)
		require.NoError(t, err)
		assert.Equal(t, "minioadmin", creds.AccessKeyID)
		return aws.Config{}, nil
	}

	var opts s3.Options
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(&opts)
		}
		return &s3.Client{}
	}
	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		require.NotNil(t, c)
		return &s3.PresignClient{}
	}

	pc, err := p.client(context.Background())
	require.NoError(t, err)
	require.NotNil(t, pc)
	require.NotNil(t, opts.BaseEndpoint)
	assert.Equal(t, "http://127.0.0.1:9000", *opts.BaseEndpoint)
	assert.True(t, opts.UsePathStyle)
}

func TestPresign_Errors(t *testing.T) {
	p, err := NewPresigner(testConfig())
	require.NoError(t, err)

	origLoad := loadDefaultAWSConfig
	origPut := presignPutObject
	origGet := presignGetObject
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		presignPutObject = origPut
		presignGetObject = origGet
	})

	t.Run("config load error", func(t *testing.T) {
		loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
			return aws.Config{}, errors.New("no config")
		}
		_, err := p.PresignPut(context.Background(), "k", "")
		require.EqualError(t, err, "no config")
		_, err = p.PresignGet(context.Background(), "k")
		require.EqualError(t, err, "no config")
		loadDefaultAWSConfig = origLoad
	})

	t.Run("presign error", func(t *testing.T) {
		presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
			assert.Equal(t, "media", aws.ToString(in.Bucket))
			assert.Nil(t, in.ContentType)
			return nil, errors.New("put failed")
		}
		presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
			return nil, errors.New("get failed")
		}
		_, err := p.PresignPut(context.Background(), "k", "")
		require.EqualError(t, err, "put failed")
		_, err = p.PresignGet(context.Background(), "k")
		require.EqualError(t, err, "get failed")
	})
}
