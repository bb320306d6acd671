package minio

import (
	"context"
	"io"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// PutObjectOptions represents options for uploading an object
type PutObjectOptions struct {
	// ContentType is the content type of the object
	ContentType string
	// UserMetadata is custom metadata for the object
	UserMetadata map[string]string
}

// GetObjectOptions represents options for downloading an object
type GetObjectOptions struct {
	// VersionID specifies the version of the object to retrieve
	VersionID string
}

// StatObjectOptions represents options for getting object metadata
type StatObjectOptions struct {
	// VersionID specifies the version of the object
	VersionID string
}

// RemoveObjectOptions represents options for removing an object
type RemoveObjectOptions struct {
	// VersionID specifies the version of the object to remove
	VersionID string
}

// CopyDestOptions represents destination options for copying an object
type CopyDestOptions struct {
	Bucket string
	Object string
}

// CopySrcOptions represents source options for copying an object
type CopySrcOptions struct {
	Bucket string
	Object string
}

// UploadInfo represents information about an uploaded object
type UploadInfo struct {
	Bucket    string
	Key       string
	ETag      string
	Size      int64
	VersionID string
}

// ObjectInfo represents object metadata
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	LastModified string
	ContentType  string
	Metadata     map[string]string
}

// PutObject uploads an object from a reader
func (c *Client) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts PutObjectOptions) (UploadInfo, error) {
	if err := c.validateTarget("PutObject", bucketName, objectName); err != nil {
		return UploadInfo{}, err
	}

	info, err := c.client.PutObject(ctx, bucketName, objectName, reader, objectSize, minio.PutObjectOptions{
		ContentType:  opts.ContentType,
		UserMetadata: opts.UserMetadata,
	})
	if err != nil {
		return UploadInfo{}, WrapError("PutObject", err, bucketName, objectName)
	}

	c.logUpload(ctx, "object uploaded", bucketName, objectName, info.Size)
	return uploadInfo(info), nil
}

// FPutObject uploads an object from a local file
func (c *Client) FPutObject(ctx context.Context, bucketName, objectName, filePath string, opts PutObjectOptions) (UploadInfo, error) {
	if err := c.validateTarget("FPutObject", bucketName, objectName); err != nil {
		return UploadInfo{}, err
	}
	if filePath == "" {
		return UploadInfo{}, WrapErrorWithMessage("FPutObject", ErrInvalidArgument, "file path is required")
	}

	info, err := c.client.FPutObject(ctx, bucketName, objectName, filePath, minio.PutObjectOptions{
		ContentType:  opts.ContentType,
		UserMetadata: opts.UserMetadata,
	})
	if err != nil {
		return UploadInfo{}, WrapError("FPutObject", err, bucketName, objectName)
	}

	c.logUpload(ctx, "file uploaded", bucketName, objectName, info.Size)
	return uploadInfo(info), nil
}

// GetObject opens an object for reading
func (c *Client) GetObject(ctx context.Context, bucketName, objectName string, opts GetObjectOptions) (*minio.Object, error) {
	if err := c.validateTarget("GetObject", bucketName, objectName); err != nil {
		return nil, err
	}

	minioOpts := minio.GetObjectOptions{}
	if opts.VersionID != "" {
		minioOpts.VersionID = opts.VersionID
	}

	object, err := c.client.GetObject(ctx, bucketName, objectName, minioOpts)
	if err != nil {
		return nil, WrapError("GetObject", err, bucketName, objectName)
	}

	return object, nil
}

// StatObject gets object metadata
func (c *Client) StatObject(ctx context.Context, bucketName, objectName string, opts StatObjectOptions) (ObjectInfo, error) {
	if err := c.validateTarget("StatObject", bucketName, objectName); err != nil {
		return ObjectInfo{}, err
	}

	minioOpts := minio.StatObjectOptions{}
	if opts.VersionID != "" {
		minioOpts.VersionID = opts.VersionID
	}

	info, err := c.client.StatObject(ctx, bucketName, objectName, minioOpts)
	if err != nil {
		return ObjectInfo{}, WrapError("StatObject", err, bucketName, objectName)
	}

	return ObjectInfo{
		Key:          info.Key,
		Size:         info.Size,
		ETag:         info.ETag,
		LastModified: info.LastModified.Format("2006-01-02 15:04:05"),
		ContentType:  info.ContentType,
		Metadata:     info.UserMetadata,
	}, nil
}

// RemoveObject removes an object from a bucket
func (c *Client) RemoveObject(ctx context.Context, bucketName, objectName string, opts RemoveObjectOptions) error {
	if err := c.validateTarget("RemoveObject", bucketName, objectName); err != nil {
		return err
	}

	err := c.client.RemoveObject(ctx, bucketName, objectName, minio.RemoveObjectOptions{
		VersionID: opts.VersionID,
	})
	if err != nil {
		return WrapError("RemoveObject", err, bucketName, objectName)
	}

	if c.logger != nil {
		c.logger.Info("object removed",
			zap.String("bucket", bucketName),
			zap.String("object", objectName),
		)
	}

	return nil
}

// CopyObject copies an object within or across buckets
func (c *Client) CopyObject(ctx context.Context, dst CopyDestOptions, src CopySrcOptions) (UploadInfo, error) {
	if err := c.checkClosed(); err != nil {
		return UploadInfo{}, err
	}

	if dst.Bucket == "" || dst.Object == "" {
		return UploadInfo{}, WrapErrorWithMessage("CopyObject", ErrInvalidArgument, "destination bucket and object are required")
	}
	if src.Bucket == "" || src.Object == "" {
		return UploadInfo{}, WrapErrorWithMessage("CopyObject", ErrInvalidArgument, "source bucket and object are required")
	}

	info, err := c.client.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: dst.Bucket, Object: dst.Object},
		minio.CopySrcOptions{Bucket: src.Bucket, Object: src.Object},
	)
	if err != nil {
		return UploadInfo{}, WrapErrorWithMessage("CopyObject", err, "failed to copy object")
	}

	if c.logger != nil {
		c.logger.Info("object copied",
			zap.String("src_object", src.Object),
			zap.String("dst_object", dst.Object),
		)
	}

	return uploadInfo(info), nil
}

// validateTarget rejects closed clients and empty bucket or object names.
func (c *Client) validateTarget(op, bucketName, objectName string) error {
	if err := c.checkClosed(); err != nil {
		return err
	}
	if bucketName == "" {
		return WrapError(op, ErrInvalidBucketName, bucketName, objectName)
	}
	if objectName == "" {
		return WrapError(op, ErrInvalidObjectName, bucketName, objectName)
	}
	return nil
}

func (c *Client) logUpload(ctx context.Context, msg, bucketName, objectName string, size int64) {
	if c.logger == nil {
		return
	}
	c.logger.Info(msg,
		zap.String("bucket", bucketName),
		zap.String("object", objectName),
		zap.Int64("size", size),
	)
}

func uploadInfo(info minio.UploadInfo) UploadInfo {
	return UploadInfo{
		Bucket:    info.Bucket,
		Key:       info.Key,
		ETag:      info.ETag,
		Size:      info.Size,
		VersionID: info.VersionID,
	}
}
