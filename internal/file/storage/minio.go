package storage

import (
	"context"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rkit/filemanager-go/internal/file/biz"
	apperrors "github.com/rkit/filemanager-go/internal/pkg/errors"
	"github.com/rkit/filemanager-go/internal/pkg/logger"
	"github.com/rkit/filemanager-go/internal/pkg/minio"
)

// DefaultPresignExpiry bounds how long a protected-file URL stays valid.
const DefaultPresignExpiry = 15 * time.Minute

// MinIO stores bytes as objects in one bucket, using the shared path
// layout as object keys. Public files get direct bucket URLs,
// protected ones presigned URLs.
type MinIO struct {
	client        *minio.Client
	bucket        string
	baseURL       string
	presignExpiry time.Duration
	log           *logger.Logger
}

// NewMinIO ensures the bucket exists before use.
func NewMinIO(ctx context.Context, client *minio.Client, bucket, baseURL string, log *logger.Logger) (*MinIO, error) {
	if bucket == "" {
		return nil, apperrors.New(apperrors.ErrFileStorageUnset, "bucket name is empty")
	}
	if err := minio.ValidateBucketName(bucket); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrFileStorageUnset, bucket)
	}
	if log == nil {
		log = logger.L()
	}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrFileStorageFailed, bucket)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrFileStorageFailed, bucket)
		}
	}

	return &MinIO{
		client:        client,
		bucket:        bucket,
		baseURL:       strings.TrimRight(baseURL, "/"),
		presignExpiry: DefaultPresignExpiry,
		log:           log,
	}, nil
}

func (s *MinIO) Path(f *biz.File, temporary bool) string {
	return relPath(f, temporary)
}

func (s *MinIO) Save(ctx context.Context, f *biz.File, sourcePath string, deleteSource bool) error {
	key := s.Path(f, true)
	contentType := f.Mime
	if contentType == "" {
		contentType = minio.DetectContentType(sourcePath)
	}
	_, err := s.client.FPutObject(ctx, s.bucket, key, sourcePath, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return err
	}
	if deleteSource {
		if err := os.Remove(sourcePath); err != nil {
			s.log.WithContext(ctx).Warn("failed to remove upload source after staging",
				zap.Int64("file_id", f.ID), zap.Error(err))
		}
	}
	return nil
}

func (s *MinIO) Promote(ctx context.Context, f *biz.File) bool {
	src := s.Path(f, true)
	if _, err := s.client.StatObject(ctx, s.bucket, src, minio.StatObjectOptions{}); err != nil {
		return false
	}

	dst := s.Path(f, false)
	_, err := s.client.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: s.bucket, Object: dst},
		minio.CopySrcOptions{Bucket: s.bucket, Object: src},
	)
	if err != nil {
		s.log.WithContext(ctx).Error("failed to copy object to permanent namespace",
			zap.Int64("file_id", f.ID), zap.Error(err))
		return false
	}

	s.removePrefix(ctx, path.Dir(src)+"/")
	return true
}

func (s *MinIO) Delete(ctx context.Context, f *biz.File) {
	for _, temporary := range []bool{f.Temporary, !f.Temporary} {
		s.removePrefix(ctx, path.Dir(s.Path(f, temporary))+"/")
	}
}

// removePrefix deletes every object under a key prefix, sweeping a
// file's bytes together with its derived artifacts.
func (s *MinIO) removePrefix(ctx context.Context, prefix string) {
	objects, errs := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})
	for obj := range objects {
		if err := s.client.RemoveObject(ctx, s.bucket, obj.Key, minio.RemoveObjectOptions{}); err != nil {
			s.log.WithContext(ctx).Warn("failed to remove object",
				zap.String("key", obj.Key), zap.Error(err))
		}
	}
	for err := range errs {
		if err != nil {
			s.log.WithContext(ctx).Warn("object listing failed during delete",
				zap.String("prefix", prefix), zap.Error(err))
		}
	}
}

func (s *MinIO) Exists(ctx context.Context, location string) bool {
	_, err := s.client.StatObject(ctx, s.bucket, location, minio.StatObjectOptions{})
	return err == nil
}

func (s *MinIO) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, location, minio.GetObjectOptions{})
	if err != nil {
		if minio.IsNotFound(err) {
			return nil, apperrors.Wrap(err, apperrors.ErrFileNotFound, location)
		}
		return nil, err
	}
	return obj, nil
}

func (s *MinIO) Write(ctx context.Context, location string, r io.Reader, size int64) error {
	_, err := s.client.PutObject(ctx, s.bucket, location, r, size, minio.PutObjectOptions{
		ContentType: minio.DetectContentType(location),
	})
	return err
}

// URL returns a direct bucket URL for public files and a short-lived
// presigned URL for protected ones.
func (s *MinIO) URL(ctx context.Context, f *biz.File) (string, error) {
	key := s.Path(f, f.Temporary)
	if !f.Protected {
		return s.baseURL + "/" + s.bucket + "/" + key, nil
	}
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, s.presignExpiry, nil)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrFileStorageFailed, key)
	}
	return u.String(), nil
}
