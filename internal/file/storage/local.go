package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/rkit/filemanager-go/internal/file/biz"
	apperrors "github.com/rkit/filemanager-go/internal/pkg/errors"
	"github.com/rkit/filemanager-go/internal/pkg/logger"
)

// Local stores bytes on the local filesystem under two roots: a
// public one served directly by the web server and a protected one
// served through access-checked handlers.
type Local struct {
	publicRoot    string
	protectedRoot string
	baseURL       string
	log           *logger.Logger
}

// NewLocal creates both roots if they do not exist yet.
func NewLocal(publicRoot, protectedRoot, baseURL string, log *logger.Logger) (*Local, error) {
	if publicRoot == "" {
		return nil, apperrors.New(apperrors.ErrFileStorageUnset, "public root is empty")
	}
	if protectedRoot == "" {
		protectedRoot = publicRoot
	}
	if log == nil {
		log = logger.L()
	}
	for _, root := range []string{publicRoot, protectedRoot} {
		if err := os.MkdirAll(root, 0o755); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrFileStorageFailed, root)
		}
	}
	return &Local{
		publicRoot:    publicRoot,
		protectedRoot: protectedRoot,
		baseURL:       strings.TrimRight(baseURL, "/"),
		log:           log,
	}, nil
}

func (s *Local) root(f *biz.File) string {
	if f.Protected {
		return s.protectedRoot
	}
	return s.publicRoot
}

func (s *Local) Path(f *biz.File, temporary bool) string {
	return filepath.Join(s.root(f), relPath(f, temporary))
}

func (s *Local) Save(ctx context.Context, f *biz.File, sourcePath string, deleteSource bool) error {
	dst := s.Path(f, true)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	if deleteSource {
		// Rename is cheap when source and destination share a
		// filesystem; fall back to copy+remove across mounts.
		if err := os.Rename(sourcePath, dst); err == nil {
			return nil
		}
		if err := copyFile(sourcePath, dst); err != nil {
			return err
		}
		return os.Remove(sourcePath)
	}
	return copyFile(sourcePath, dst)
}

func (s *Local) Promote(ctx context.Context, f *biz.File) bool {
	src := s.Path(f, true)
	if _, err := os.Stat(src); err != nil {
		return false
	}
	dst := s.Path(f, false)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		s.log.WithContext(ctx).Error("failed to create permanent directory",
			zap.Int64("file_id", f.ID), zap.Error(err))
		return false
	}
	if err := copyFile(src, dst); err != nil {
		s.log.WithContext(ctx).Error("failed to copy bytes to permanent namespace",
			zap.Int64("file_id", f.ID), zap.Error(err))
		return false
	}
	// The whole temporary per-file directory goes, derived
	// artifacts included.
	if err := os.RemoveAll(filepath.Dir(src)); err != nil {
		s.log.WithContext(ctx).Warn("failed to remove temporary bytes after promote",
			zap.Int64("file_id", f.ID), zap.Error(err))
	}
	return true
}

func (s *Local) Delete(ctx context.Context, f *biz.File) {
	for _, temporary := range []bool{f.Temporary, !f.Temporary} {
		dir := filepath.Dir(s.Path(f, temporary))
		if err := os.RemoveAll(dir); err != nil {
			s.log.WithContext(ctx).Warn("failed to remove file directory",
				zap.Int64("file_id", f.ID), zap.String("dir", dir), zap.Error(err))
		}
	}
}

func (s *Local) Exists(ctx context.Context, location string) bool {
	info, err := os.Stat(location)
	return err == nil && !info.IsDir()
}

func (s *Local) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	rc, err := os.Open(location)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperrors.Wrap(err, apperrors.ErrFileNotFound, location)
		}
		return nil, err
	}
	return rc, nil
}

func (s *Local) Write(ctx context.Context, location string, r io.Reader, size int64) error {
	if err := os.MkdirAll(filepath.Dir(location), 0o755); err != nil {
		return err
	}
	out, err := os.Create(location)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		os.Remove(location)
		return err
	}
	return out.Close()
}

// URL builds the public URL from the configured base. Protected files
// have no direct URL; they are served by the application.
func (s *Local) URL(ctx context.Context, f *biz.File) (string, error) {
	if f.Protected {
		return "", apperrors.New(apperrors.ErrForbidden, "protected files are not served directly")
	}
	return s.baseURL + "/" + relPath(f, f.Temporary), nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}
