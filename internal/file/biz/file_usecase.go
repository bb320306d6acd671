package biz

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"reflect"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/rkit/filemanager-go/internal/file/thumb"
	"github.com/rkit/filemanager-go/internal/pkg/database"
	apperrors "github.com/rkit/filemanager-go/internal/pkg/errors"
	"github.com/rkit/filemanager-go/internal/pkg/logger"
	"github.com/rkit/filemanager-go/internal/pkg/validator"
)

// TxRunner runs a function inside one database transaction.
// *database.DB satisfies it.
type TxRunner interface {
	Transaction(ctx context.Context, fn database.TxFunc) error
}

// FileUseCase implements the attachment lifecycle: staging uploads as
// temporary files, binding them to owners, reconciling multi-file
// collections and producing derived artifacts.
type FileUseCase struct {
	repo   FileRepo
	links  LinkRepo
	owners *OwnerTypes
	attrs  map[string]*Attribute
	codes  map[string]int
	byCode map[int]*Attribute
	db     TxRunner
	log    *logger.Logger
}

// NewFileUseCase validates and registers every attribute up front, so
// misconfiguration surfaces at startup rather than mid-request.
func NewFileUseCase(
	repo FileRepo,
	links LinkRepo,
	owners *OwnerTypes,
	attrs []*Attribute,
	db TxRunner,
	log *logger.Logger,
) (*FileUseCase, error) {
	if log == nil {
		log = logger.L()
	}

	uc := &FileUseCase{
		repo:   repo,
		links:  links,
		owners: owners,
		attrs:  make(map[string]*Attribute, len(attrs)),
		codes:  make(map[string]int, len(attrs)),
		byCode: make(map[int]*Attribute, len(attrs)),
		db:     db,
		log:    log,
	}

	for _, attr := range attrs {
		if err := attr.Validate(); err != nil {
			return nil, err
		}
		code, err := owners.Code(attr.Name)
		if err != nil {
			return nil, err
		}
		if _, dup := uc.attrs[attr.Name]; dup {
			return nil, apperrors.New(apperrors.ErrFileOwnerTypeUnknown,
				fmt.Sprintf("attribute %q registered twice", attr.Name))
		}
		uc.attrs[attr.Name] = attr
		uc.codes[attr.Name] = code
		uc.byCode[code] = attr
	}

	return uc, nil
}

func (uc *FileUseCase) attr(name string) (*Attribute, int, error) {
	attr, ok := uc.attrs[name]
	if !ok {
		return nil, 0, apperrors.New(apperrors.ErrFileOwnerTypeUnknown,
			fmt.Sprintf("attribute %q is not registered", name))
	}
	return attr, uc.codes[name], nil
}

// CreateRequest describes an upload handed over by the intake boundary.
// The engine never parses request bodies itself.
type CreateRequest struct {
	Attribute  string
	Title      string // original filename
	SourcePath string // local path holding the uploaded bytes
	Mime       string // declared type, derived from the extension when empty
	UserID     int64
	IP         string
	OwnerID    int64 // provisional until bound
	// DeleteSource removes the source path after staging (set for
	// upload temp files, leave unset to copy from a shared path).
	DeleteSource bool
}

// Create stages an upload as a temporary file: metadata row first,
// then bytes into the storage's temporary namespace. The row is
// removed again when byte placement fails.
func (uc *FileUseCase) Create(ctx context.Context, req *CreateRequest) (*File, error) {
	attr, code, err := uc.attr(req.Attribute)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(req.SourcePath)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrFileSourceMissing, req.SourcePath)
	}

	ext := ResolveExtension(req.Title, req.SourcePath, req.Mime)
	mimeType := req.Mime
	if mimeType == "" {
		mimeType = MimeByExtension(ext)
	}

	f := &File{
		UserID:    req.UserID,
		Title:     req.Title,
		Name:      attr.generateName(req.Title, ext),
		Size:      info.Size(),
		Extension: ext,
		Mime:      mimeType,
		OwnerID:   req.OwnerID,
		OwnerType: code,
		IP:        validator.GetIPOrDefault(req.IP, ""),
		Temporary: true,
		Protected: attr.Protected,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := uc.repo.Create(ctx, f); err != nil {
		return nil, err
	}

	if err := attr.Storage.Save(ctx, f, req.SourcePath, req.DeleteSource); err != nil {
		if derr := uc.repo.Delete(ctx, f.ID); derr != nil {
			uc.log.WithContext(ctx).Warn("failed to remove file row after staging failure",
				zap.Int64("file_id", f.ID), zap.Error(derr))
		}
		return nil, apperrors.Wrap(err, apperrors.ErrFileStorageFailed, "staging upload failed")
	}

	uc.log.WithContext(ctx).Info("file staged",
		zap.Int64("file_id", f.ID),
		zap.String("attribute", attr.Name),
		zap.String("name", f.Name),
		zap.Int64("size", f.Size),
	)

	return f, nil
}

// Bind promotes one file to sole ownership of a single-slot attribute,
// evicting whatever it replaces. A zero fileID clears the slot and
// returns (nil, nil).
//
// Promotion moves the bytes before committing any metadata, so a
// failed move leaves the file untouched in the database.
func (uc *FileUseCase) Bind(ctx context.Context, attribute string, ownerID, fileID, userID int64) (*File, error) {
	attr, code, err := uc.attr(attribute)
	if err != nil {
		return nil, err
	}
	if attr.Multiple {
		return nil, apperrors.New(apperrors.ErrFileLinkSchemaInvalid,
			fmt.Sprintf("attribute %q is a collection, use BindMultiple", attribute))
	}

	if fileID == 0 {
		err := uc.db.Transaction(ctx, func(ctx context.Context, tx *gorm.DB) error {
			ctx = database.ContextWithTransaction(ctx, tx)
			return uc.evictOthers(ctx, attr, code, ownerID, 0)
		})
		return nil, err
	}

	f, err := uc.repo.GetByID(ctx, fileID)
	if err != nil {
		return nil, err
	}

	if !f.IsOwner(ownerID, code, userID) {
		return nil, apperrors.New(apperrors.ErrFileNotOwner,
			fmt.Sprintf("file %d is not bindable to owner %d as user %d", fileID, ownerID, userID))
	}

	promote := f.Temporary
	if promote {
		f.OwnerID = ownerID
		f.Temporary = false
		if !attr.Storage.Promote(ctx, f) {
			return nil, apperrors.New(apperrors.ErrFileStorageFailed,
				fmt.Sprintf("temporary bytes for file %d are gone", f.ID))
		}
	}

	err = uc.db.Transaction(ctx, func(ctx context.Context, tx *gorm.DB) error {
		ctx = database.ContextWithTransaction(ctx, tx)
		if promote {
			if err := uc.repo.Update(ctx, f); err != nil {
				return err
			}
		}
		return uc.evictOthers(ctx, attr, code, ownerID, f.ID)
	})
	if err != nil {
		return nil, err
	}

	uc.log.WithContext(ctx).Info("file bound",
		zap.Int64("file_id", f.ID),
		zap.String("attribute", attr.Name),
		zap.Int64("owner_id", ownerID),
	)

	return f, nil
}

// evictOthers deletes every file linked to the owner except keepID.
// A single-slot attribute holds exactly one file at a time.
func (uc *FileUseCase) evictOthers(ctx context.Context, attr *Attribute, code int, ownerID, keepID int64) error {
	linked, err := uc.repo.ListByOwner(ctx, ownerID, code)
	if err != nil {
		return err
	}
	for _, other := range linked {
		if other.ID == keepID {
			continue
		}
		if err := uc.deleteFile(ctx, attr, other); err != nil {
			return err
		}
	}
	return nil
}

// DesiredFile is one entry of a caller's desired collection: a file id
// and an optional replacement title. Slice order is authoritative for
// the final positions.
type DesiredFile struct {
	ID    int64
	Title string
}

// BindMultiple reconciles an owner's file collection against the
// caller's desired set: promotes eligible temporary files, rewrites
// positions to match the supplied order, updates link rows whose
// extra fields changed, and deletes everything not re-selected.
//
// Ineligible, missing and unpromotable candidates are dropped from
// the result without failing the batch; attr.OnExcluded sees each
// drop. When two entries name the same file the later one wins. An
// empty desired set clears the whole collection.
//
// The load-compute-write sequence runs in a single transaction.
func (uc *FileUseCase) BindMultiple(ctx context.Context, attribute string, ownerID int64, desired []DesiredFile, userID int64) ([]*File, error) {
	attr, code, err := uc.attr(attribute)
	if err != nil {
		return nil, err
	}
	if !attr.Multiple {
		return nil, apperrors.New(apperrors.ErrFileLinkSchemaInvalid,
			fmt.Sprintf("attribute %q is single-slot", attribute))
	}

	desired = dedupeKeepLast(desired)

	var result []*File
	err = uc.db.Transaction(ctx, func(ctx context.Context, tx *gorm.DB) error {
		ctx = database.ContextWithTransaction(ctx, tx)
		result, err = uc.reconcile(ctx, attr, code, ownerID, desired, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if len(result) == 0 && len(desired) > 0 {
		return nil, apperrors.New(apperrors.ErrFileNotOwner, "no requested file was bindable")
	}

	return result, nil
}

func (uc *FileUseCase) reconcile(ctx context.Context, attr *Attribute, code int, ownerID int64, desired []DesiredFile, userID int64) ([]*File, error) {
	current, err := uc.repo.ListByOwner(ctx, ownerID, code)
	if err != nil {
		return nil, err
	}
	currentLinks, err := uc.links.ListByOwner(ctx, attr.Link, ownerID)
	if err != nil {
		return nil, err
	}
	linkByFile := make(map[int64]*LinkRow, len(currentLinks))
	for _, row := range currentLinks {
		linkByFile[row.FileID] = row
	}

	ids := make([]int64, 0, len(desired))
	for _, d := range desired {
		ids = append(ids, d.ID)
	}
	candidates, err := uc.repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*File, len(candidates))
	for _, f := range candidates {
		byID[f.ID] = f
	}

	surviving := make([]*File, 0, len(desired))
	for _, d := range desired {
		f, ok := byID[d.ID]
		if !ok {
			attr.excluded(d.ID, apperrors.New(apperrors.ErrFileNotFound, fmt.Sprintf("file %d", d.ID)))
			continue
		}
		if !f.IsOwner(ownerID, code, userID) {
			attr.excluded(d.ID, apperrors.New(apperrors.ErrFileNotOwner, fmt.Sprintf("file %d", d.ID)))
			continue
		}
		if f.Temporary {
			f.OwnerID = ownerID
			f.Temporary = false
			if !attr.Storage.Promote(ctx, f) {
				attr.excluded(d.ID, apperrors.New(apperrors.ErrFileStorageFailed,
					fmt.Sprintf("temporary bytes for file %d are gone", d.ID)))
				continue
			}
		}
		if d.Title != "" {
			f.Title = d.Title
		}
		surviving = append(surviving, f)
	}

	for i, f := range surviving {
		f.Position = i + 1
		if err := uc.repo.Update(ctx, f); err != nil {
			return nil, err
		}

		currentRow := linkByFile[f.ID]
		var currentExtra map[string]any
		if currentRow != nil {
			currentExtra = currentRow.Extra
		}
		extra := currentExtra
		if attr.ExtraFields != nil {
			extra = attr.ExtraFields(f, currentExtra)
		}
		row := &LinkRow{OwnerID: ownerID, FileID: f.ID, Position: i + 1, Extra: extra}

		switch {
		case currentRow == nil:
			if err := uc.links.Insert(ctx, attr.Link, row); err != nil {
				return nil, err
			}
		case currentRow.Position != row.Position || !reflect.DeepEqual(currentRow.Extra, row.Extra):
			if err := uc.links.Update(ctx, attr.Link, row); err != nil {
				return nil, err
			}
		}
	}

	keep := make(map[int64]bool, len(surviving))
	for _, f := range surviving {
		keep[f.ID] = true
	}
	for _, row := range currentLinks {
		if keep[row.FileID] {
			continue
		}
		if err := uc.links.Delete(ctx, attr.Link, ownerID, row.FileID); err != nil {
			return nil, err
		}
	}
	for _, f := range current {
		if keep[f.ID] {
			continue
		}
		if err := uc.deleteFile(ctx, attr, f); err != nil {
			return nil, err
		}
	}

	return surviving, nil
}

// dedupeKeepLast drops earlier entries that name the same file as a
// later one, preserving the later entry's place in the order.
func dedupeKeepLast(desired []DesiredFile) []DesiredFile {
	seen := make(map[int64]int, len(desired))
	out := make([]DesiredFile, 0, len(desired))
	for _, d := range desired {
		if i, dup := seen[d.ID]; dup {
			out = append(out[:i], out[i+1:]...)
			for id, j := range seen {
				if j > i {
					seen[id] = j - 1
				}
			}
		}
		seen[d.ID] = len(out)
		out = append(out, d)
	}
	return out
}

// Thumb returns the location of a derived artifact for the given
// preset, generating it on first use. Existence at the derived
// location is the whole cache check: artifacts are keyed by name, not
// content, and are never regenerated or evicted while the source
// lives. When the source bytes are missing the theoretical location
// is still returned and the caller surfaces the miss.
func (uc *FileUseCase) Thumb(ctx context.Context, attribute string, f *File, preset string) (string, error) {
	attr, _, err := uc.attr(attribute)
	if err != nil {
		return "", err
	}
	transform, ok := attr.Presets[preset]
	if !ok {
		return "", apperrors.New(apperrors.ErrFilePresetUnknown,
			fmt.Sprintf("preset %q on attribute %q", preset, attribute))
	}

	source := attr.Storage.Path(f, f.Temporary)
	derived := thumb.Path(source, preset)

	if attr.Storage.Exists(ctx, derived) {
		return derived, nil
	}
	if !attr.Storage.Exists(ctx, source) {
		return derived, nil
	}

	rc, err := attr.Storage.Open(ctx, source)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrFileStorageFailed, source)
	}
	defer rc.Close()

	img, err := thumb.Decode(rc)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrFileStorageFailed, "decoding "+source)
	}

	var buf bytes.Buffer
	if err := thumb.Encode(&buf, transform.Apply(img), derived); err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrFileStorageFailed, "encoding "+derived)
	}
	if err := attr.Storage.Write(ctx, derived, &buf, int64(buf.Len())); err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrFileStorageFailed, derived)
	}

	uc.log.WithContext(ctx).Debug("derived artifact generated",
		zap.Int64("file_id", f.ID),
		zap.String("preset", preset),
		zap.String("location", derived),
	)

	return derived, nil
}

// File loads one file by id.
func (uc *FileUseCase) File(ctx context.Context, id int64) (*File, error) {
	return uc.repo.GetByID(ctx, id)
}

// FilesByOwner lists an owner's files in position order.
func (uc *FileUseCase) FilesByOwner(ctx context.Context, attribute string, ownerID int64) ([]*File, error) {
	_, code, err := uc.attr(attribute)
	if err != nil {
		return nil, err
	}
	return uc.repo.ListByOwner(ctx, ownerID, code)
}

// URL returns an externally reachable URL for the file's bytes.
func (uc *FileUseCase) URL(ctx context.Context, attribute string, f *File) (string, error) {
	attr, _, err := uc.attr(attribute)
	if err != nil {
		return "", err
	}
	return attr.Storage.URL(ctx, f)
}

// Delete removes one file: link rows first, then bytes together with
// co-located derived artifacts, then the row. Removing the row while
// leaving bytes behind would orphan them, so the storage sweep always
// runs first.
func (uc *FileUseCase) Delete(ctx context.Context, attribute string, fileID int64) error {
	attr, _, err := uc.attr(attribute)
	if err != nil {
		return err
	}
	f, err := uc.repo.GetByID(ctx, fileID)
	if err != nil {
		return err
	}
	return uc.db.Transaction(ctx, func(ctx context.Context, tx *gorm.DB) error {
		ctx = database.ContextWithTransaction(ctx, tx)
		return uc.deleteFile(ctx, attr, f)
	})
}

// DeleteByOwner cascades an owner deletion: every linked file goes,
// rows, links and bytes alike.
func (uc *FileUseCase) DeleteByOwner(ctx context.Context, attribute string, ownerID int64) error {
	attr, code, err := uc.attr(attribute)
	if err != nil {
		return err
	}
	return uc.db.Transaction(ctx, func(ctx context.Context, tx *gorm.DB) error {
		ctx = database.ContextWithTransaction(ctx, tx)

		linked, err := uc.repo.ListByOwner(ctx, ownerID, code)
		if err != nil {
			return err
		}
		for _, f := range linked {
			if err := uc.deleteFile(ctx, attr, f); err != nil {
				return err
			}
		}
		if attr.Multiple {
			return uc.links.DeleteByOwner(ctx, attr.Link, ownerID)
		}
		return nil
	})
}

func (uc *FileUseCase) deleteFile(ctx context.Context, attr *Attribute, f *File) error {
	if attr.Multiple && !f.Temporary {
		if err := uc.links.Delete(ctx, attr.Link, f.OwnerID, f.ID); err != nil {
			return err
		}
	}
	attr.Storage.Delete(ctx, f)
	return uc.repo.Delete(ctx, f.ID)
}

// PurgeTemporary deletes temporary files staged before the cutoff.
// The engine itself never sweeps in the background; this is the entry
// point for the external batch job that owns the retention policy.
// Returns the number of files removed.
func (uc *FileUseCase) PurgeTemporary(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	stale, err := uc.repo.ListTemporaryBefore(ctx, cutoff, limit)
	if err != nil {
		return 0, err
	}

	purged := 0
	for _, f := range stale {
		attr, ok := uc.byCode[f.OwnerType]
		if !ok {
			uc.log.WithContext(ctx).Warn("temporary file has unregistered owner type, skipping",
				zap.Int64("file_id", f.ID), zap.Int("owner_type", f.OwnerType))
			continue
		}
		if err := uc.deleteFile(ctx, attr, f); err != nil {
			return purged, err
		}
		purged++
	}

	return purged, nil
}
