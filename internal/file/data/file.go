package data

import (
	"context"
	"time"

	"github.com/rkit/filemanager-go/internal/file/biz"
	"github.com/rkit/filemanager-go/internal/pkg/database"
	apperrors "github.com/rkit/filemanager-go/internal/pkg/errors"
)

// FilePO is the gorm model for file rows
type FilePO struct {
	ID        int64     `gorm:"primarykey;autoIncrement"`
	UserID    int64     `gorm:"column:user_id;not null;default:0;index:idx_files_user"`
	Title     string    `gorm:"column:title;size:255;not null;default:''"`
	Name      string    `gorm:"column:name;size:255;not null"`
	Size      int64     `gorm:"column:size;not null;default:0"`
	Extension string    `gorm:"column:extension;size:32;not null;default:''"`
	Mime      string    `gorm:"column:mime;size:128;not null;default:''"`
	OwnerID   int64     `gorm:"column:owner_id;not null;default:0;index:idx_files_owner,priority:2"`
	OwnerType int       `gorm:"column:owner_type;not null;index:idx_files_owner,priority:1"`
	IP        string    `gorm:"column:ip;size:45;not null;default:''"`
	Position  int       `gorm:"column:position;not null;default:0"`
	Temporary bool      `gorm:"column:temporary;not null;default:true;index:idx_files_temporary"`
	Protected bool      `gorm:"column:protected;not null;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:CURRENT_TIMESTAMP"`
}

func (FilePO) TableName() string {
	return "files"
}

// FileRepo is the gorm-backed implementation of biz.FileRepo
type FileRepo struct {
	db *database.DB
}

func NewFileRepo(db *database.DB) *FileRepo {
	return &FileRepo{db: db}
}

func (r *FileRepo) Create(ctx context.Context, f *biz.File) error {
	po := toPO(f)
	if err := r.db.GetDBFromContext(ctx).Create(po).Error; err != nil {
		return apperrors.Wrap(err, apperrors.ErrFileStorageFailed, "creating file row")
	}
	f.ID = po.ID
	f.CreatedAt = po.CreatedAt
	f.UpdatedAt = po.UpdatedAt
	return nil
}

func (r *FileRepo) Update(ctx context.Context, f *biz.File) error {
	f.UpdatedAt = time.Now()
	err := r.db.GetDBFromContext(ctx).
		Model(&FilePO{}).
		Where("id = ?", f.ID).
		Updates(map[string]interface{}{
			"title":      f.Title,
			"owner_id":   f.OwnerID,
			"position":   f.Position,
			"temporary":  f.Temporary,
			"updated_at": f.UpdatedAt,
		}).Error
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrFileStorageFailed, "updating file row")
	}
	return nil
}

func (r *FileRepo) GetByID(ctx context.Context, id int64) (*biz.File, error) {
	var po FilePO
	err := r.db.GetDBFromContext(ctx).Where("id = ?", id).First(&po).Error
	if err != nil {
		if database.IsRecordNotFoundError(err) {
			return nil, apperrors.New(apperrors.ErrFileNotFound)
		}
		return nil, apperrors.Wrap(err, apperrors.ErrFileStorageFailed, "loading file row")
	}
	return toDomain(&po), nil
}

func (r *FileRepo) GetByIDs(ctx context.Context, ids []int64) ([]*biz.File, error) {
	if len(ids) == 0 {
		return []*biz.File{}, nil
	}
	var pos []FilePO
	err := r.db.GetDBFromContext(ctx).Where("id IN ?", ids).Find(&pos).Error
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrFileStorageFailed, "loading file rows")
	}
	return toDomainList(pos), nil
}

func (r *FileRepo) ListByOwner(ctx context.Context, ownerID int64, ownerType int) ([]*biz.File, error) {
	var pos []FilePO
	err := r.db.GetDBFromContext(ctx).
		Where("owner_id = ? AND owner_type = ? AND temporary = ?", ownerID, ownerType, false).
		Scopes(database.OrderBy("position", false)).
		Find(&pos).Error
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrFileStorageFailed, "listing owner files")
	}
	return toDomainList(pos), nil
}

func (r *FileRepo) Delete(ctx context.Context, id int64) error {
	err := r.db.GetDBFromContext(ctx).Where("id = ?", id).Delete(&FilePO{}).Error
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrFileStorageFailed, "deleting file row")
	}
	return nil
}

func (r *FileRepo) ListTemporaryBefore(ctx context.Context, cutoff time.Time, limit int) ([]*biz.File, error) {
	q := r.db.GetDBFromContext(ctx).
		Where("temporary = ? AND created_at < ?", true, cutoff).
		Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var pos []FilePO
	if err := q.Find(&pos).Error; err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrFileStorageFailed, "listing stale temporary files")
	}
	return toDomainList(pos), nil
}

func toPO(f *biz.File) *FilePO {
	now := time.Now()
	createdAt := f.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	updatedAt := f.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = now
	}
	return &FilePO{
		ID:        f.ID,
		UserID:    f.UserID,
		Title:     f.Title,
		Name:      f.Name,
		Size:      f.Size,
		Extension: f.Extension,
		Mime:      f.Mime,
		OwnerID:   f.OwnerID,
		OwnerType: f.OwnerType,
		IP:        f.IP,
		Position:  f.Position,
		Temporary: f.Temporary,
		Protected: f.Protected,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

func toDomain(po *FilePO) *biz.File {
	return &biz.File{
		ID:        po.ID,
		UserID:    po.UserID,
		Title:     po.Title,
		Name:      po.Name,
		Size:      po.Size,
		Extension: po.Extension,
		Mime:      po.Mime,
		OwnerID:   po.OwnerID,
		OwnerType: po.OwnerType,
		IP:        po.IP,
		Position:  po.Position,
		Temporary: po.Temporary,
		Protected: po.Protected,
		CreatedAt: po.CreatedAt,
		UpdatedAt: po.UpdatedAt,
	}
}

func toDomainList(pos []FilePO) []*biz.File {
	files := make([]*biz.File, len(pos))
	for i := range pos {
		files[i] = toDomain(&pos[i])
	}
	return files
}
