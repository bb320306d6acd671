package minio

import (
	"context"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// MakeBucketOptions represents options for creating a bucket
type MakeBucketOptions struct {
	// Region is the region where the bucket will be created
	Region string
}

// ListObjectsOptions represents options for listing objects
type ListObjectsOptions struct {
	// Prefix filters objects by prefix
	Prefix string
	// Recursive lists objects recursively
	Recursive bool
}

// MakeBucket creates a new bucket
func (c *Client) MakeBucket(ctx context.Context, bucketName string, opts MakeBucketOptions) error {
	if err := c.checkClosed(); err != nil {
		return err
	}

	if bucketName == "" {
		return WrapError("MakeBucket", ErrInvalidBucketName, bucketName, "")
	}

	err := c.client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{Region: opts.Region})
	if err != nil {
		return WrapError("MakeBucket", err, bucketName, "")
	}

	if c.logger != nil {
		c.logger.Info("bucket created",
			zap.String("bucket", bucketName),
			zap.String("region", opts.Region),
		)
	}

	return nil
}

// BucketExists checks if a bucket exists
func (c *Client) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	if err := c.checkClosed(); err != nil {
		return false, err
	}

	if bucketName == "" {
		return false, WrapError("BucketExists", ErrInvalidBucketName, bucketName, "")
	}

	exists, err := c.client.BucketExists(ctx, bucketName)
	if err != nil {
		return false, WrapError("BucketExists", err, bucketName, "")
	}

	return exists, nil
}

// ListObjects streams object metadata for a bucket. The error channel
// carries at most one error and both channels close when listing ends.
func (c *Client) ListObjects(ctx context.Context, bucketName string, opts ListObjectsOptions) (<-chan ObjectInfo, <-chan error) {
	objCh := make(chan ObjectInfo)
	errCh := make(chan error, 1)

	go func() {
		defer close(objCh)
		defer close(errCh)

		if err := c.checkClosed(); err != nil {
			errCh <- err
			return
		}

		if bucketName == "" {
			errCh <- WrapError("ListObjects", ErrInvalidBucketName, bucketName, "")
			return
		}

		for object := range c.client.ListObjects(ctx, bucketName, minio.ListObjectsOptions{
			Prefix:    opts.Prefix,
			Recursive: opts.Recursive,
		}) {
			if object.Err != nil {
				errCh <- WrapError("ListObjects", object.Err, bucketName, "")
				return
			}

			info := ObjectInfo{
				Key:          object.Key,
				Size:         object.Size,
				ETag:         object.ETag,
				LastModified: object.LastModified.Format("2006-01-02 15:04:05"),
				ContentType:  object.ContentType,
				Metadata:     object.UserMetadata,
			}

			select {
			case objCh <- info:
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			}
		}
	}()

	return objCh, errCh
}
