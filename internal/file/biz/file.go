package biz

import (
	"context"
	"io"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AnonymousUserID marks files created outside a user session (batch
// imports, system jobs). Temporary files owned by it can be claimed
// by any user finishing the upload flow.
const AnonymousUserID int64 = 0

// File is a single stored binary blob and its metadata.
type File struct {
	ID        int64
	UserID    int64 // originating user, AnonymousUserID for system uploads
	Title     string
	Name      string // generated storage name
	Size      int64
	Extension string
	Mime      string
	OwnerID   int64
	OwnerType int
	IP        string
	Position  int
	Temporary bool
	Protected bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsOwner reports whether the file may be bound to the given owner on
// behalf of the given user.
//
// A permanent file is owned only by the exact (ownerID, ownerType) it
// was bound to; it can never be re-bound elsewhere through this check.
// A temporary file matches on ownerType alone, provided the requesting
// user is the one who uploaded it (or the upload was anonymous). This
// stops one user from claiming another user's in-flight upload.
func (f *File) IsOwner(ownerID int64, ownerType int, userID int64) bool {
	if !f.Temporary {
		return f.OwnerID == ownerID && f.OwnerType == ownerType
	}
	return f.OwnerType == ownerType && (f.UserID == userID || f.UserID == AnonymousUserID)
}

// PeriodBucket returns the creation-period path segment (YYYYMM).
func (f *File) PeriodBucket() string {
	return f.CreatedAt.Format("200601")
}

// GenerateName builds a collision-resistant storage name from the
// current timestamp, a random suffix and the file extension.
func GenerateName(extension string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
	name := time.Now().Format("20060102150405") + "_" + suffix
	if extension != "" {
		name += "." + extension
	}
	return name
}

// ResolveExtension picks the file extension, trying the original title
// first, then the source path, then the declared MIME subtype.
func ResolveExtension(title, sourcePath, mimeType string) string {
	if ext := strings.TrimPrefix(path.Ext(title), "."); ext != "" {
		return strings.ToLower(ext)
	}
	if ext := strings.TrimPrefix(path.Ext(sourcePath), "."); ext != "" {
		return strings.ToLower(ext)
	}
	if _, subtype, ok := strings.Cut(mimeType, "/"); ok {
		return strings.ToLower(subtype)
	}
	return ""
}

// MimeByExtension returns the MIME type for an extension, or the
// generic binary type when unknown.
func MimeByExtension(extension string) string {
	if t := mime.TypeByExtension("." + extension); t != "" {
		if mt, _, ok := strings.Cut(t, ";"); ok {
			return mt
		}
		return t
	}
	return "application/octet-stream"
}

// FileRepo persists file rows.
type FileRepo interface {
	Create(ctx context.Context, f *File) error
	Update(ctx context.Context, f *File) error
	GetByID(ctx context.Context, id int64) (*File, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*File, error)
	ListByOwner(ctx context.Context, ownerID int64, ownerType int) ([]*File, error)
	Delete(ctx context.Context, id int64) error
	ListTemporaryBefore(ctx context.Context, cutoff time.Time, limit int) ([]*File, error)
}

// Storage abstracts where a file's bytes live (local disk, object
// store). Locations returned by Path are backend-specific: filesystem
// paths for local storage, object keys for remote stores.
//
// None of the operations take locks; callers must not invoke them
// concurrently for the same file.
type Storage interface {
	// Path returns the deterministic location of the file's bytes in
	// either the temporary or the permanent namespace.
	Path(f *File, temporary bool) string

	// Save places bytes from a local source path into the temporary
	// namespace, creating intermediate directories. The source is
	// removed when deleteSource is set.
	Save(ctx context.Context, f *File, sourcePath string, deleteSource bool) error

	// Promote moves the bytes from the temporary to the permanent
	// namespace (copy then delete, namespaces may span roots).
	// Returns false when the temporary bytes are already gone.
	Promote(ctx context.Context, f *File) bool

	// Delete removes the file's bytes and any co-located derived
	// artifacts from whichever namespace holds them. Deleting a file
	// that has no bytes is a no-op.
	Delete(ctx context.Context, f *File)

	// Exists reports whether bytes exist at the given location.
	Exists(ctx context.Context, location string) bool

	Open(ctx context.Context, location string) (io.ReadCloser, error)
	Write(ctx context.Context, location string, r io.Reader, size int64) error

	// URL returns an externally reachable URL for the file's bytes.
	URL(ctx context.Context, f *File) (string, error)
}
