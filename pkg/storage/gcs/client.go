// Package gcs stores documents in a Google Cloud Storage bucket through the JSON API.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	gstorage "google.golang.org/api/storage/v1"

	"github.com/angelmondragon/vendorkyc-backend/pkg/config"
	gcpcreds "github.com/angelmondragon/vendorkyc-backend/pkg/gcp"
	"github.com/angelmondragon/vendorkyc-backend/pkg/logger"
	"github.com/angelmondragon/vendorkyc-backend/pkg/storage"
)

const pingTimeout = 5 * time.Second

type Client struct {
	svc    *gstorage.Service
	bucket string
	logg   *logger.Logger
}

// NewClient builds the storage service from explicit credentials when configured,
// falling back to application default credentials. Extra options are appended last.
func NewClient(ctx context.Context, cfg config.StorageConfig, gcp config.GCPConfig, logg *logger.Logger, extra ...option.ClientOption) (*Client, error) {
	bucket := strings.TrimSpace(cfg.BucketName)
	if bucket == "" {
		return nil, errors.New("gcs bucket name is required")
	}

	opts := append(gcpcreds.ClientOptions(gcp), option.WithScopes(gstorage.DevstorageReadWriteScope))
	opts = append(opts, extra...)

	svc, err := gstorage.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating gcs service: %w", err)
	}

	client := &Client{svc: svc, bucket: bucket, logg: logg}
	if err := client.Ping(ctx); err != nil {
		return nil, err
	}
	if logg != nil {
		logg.Info(logg.WithField(ctx, "bucket", bucket), "gcs client initialized")
	}
	return client, nil
}

func (c *Client) Bucket() string {
	return c.bucket
}

func (c *Client) Put(ctx context.Context, key, contentType string, body io.Reader) error {
	if err := storage.ValidateKey(key); err != nil {
		return err
	}
	obj := &gstorage.Object{Name: key, ContentType: contentType}
	_, err := c.svc.Objects.Insert(c.bucket, obj).
		Media(body, googleapi.ContentType(contentType)).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	return nil
}

func (c *Client) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := storage.ValidateKey(key); err != nil {
		return nil, err
	}
	resp, err := c.svc.Objects.Get(c.bucket, key).Context(ctx).Download()
	if err != nil {
		if isNotFound(err) {
			return nil, storage.ErrObjectNotFound
		}
		return nil, fmt.Errorf("download %s: %w", key, err)
	}
	return resp.Body, nil
}

func (c *Client) Delete(ctx context.Context, key string) error {
	if err := storage.ValidateKey(key); err != nil {
		return err
	}
	if err := c.svc.Objects.Delete(c.bucket, key).Context(ctx).Do(); err != nil {
		if isNotFound(err) {
			return storage.ErrObjectNotFound
		}
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Ping confirms the bucket is reachable with the configured credentials.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.svc == nil {
		return errors.New("gcs client not initialized")
	}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if _, err := c.svc.Buckets.Get(c.bucket).Context(pingCtx).Do(); err != nil {
		return fmt.Errorf("gcs bucket %s unreachable: %w", c.bucket, err)
	}
	return nil
}

func isNotFound(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound
}
