// Package netx transfers asset content to and from presigned object URLs.
package netx

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

const DefaultTimeout = 60 * time.Second

// Client talks to presigned URLs. The signature lives in the URL, so no
// credentials are attached to requests.
type Client struct {
	http *resty.Client
}

func New(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{http: resty.New().SetTimeout(timeout)}
}

// Put uploads body to a presigned PUT URL. contentType must match the one
// the URL was signed with or the store will reject the request.
func (c *Client) Put(ctx context.Context, url, contentType string, body []byte) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetBody(body).
		Put(url)
	if err != nil {
		return err
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("upload failed: %s; body: %s", resp.Status(), resp.String())
	}
	return nil
}

// Get downloads the object behind a presigned GET URL.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.http.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("download failed: %s", resp.Status())
	}
	return resp.Body(), nil
}
