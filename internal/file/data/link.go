package data

import (
	"context"
	"fmt"

	"github.com/rkit/filemanager-go/internal/file/biz"
	"github.com/rkit/filemanager-go/internal/pkg/database"
	apperrors "github.com/rkit/filemanager-go/internal/pkg/errors"
)

// LinkRepo reconciles join-table rows against caller-declared
// schemas. The table and its columns come from the schema descriptor,
// so one repo serves every multi-file attribute in the application.
type LinkRepo struct {
	db *database.DB
}

func NewLinkRepo(db *database.DB) *LinkRepo {
	return &LinkRepo{db: db}
}

func (r *LinkRepo) ListByOwner(ctx context.Context, schema *biz.LinkSchema, ownerID int64) ([]*biz.LinkRow, error) {
	columns := append([]string{schema.OwnerColumn, schema.FileColumn, schema.Position()}, schema.ExtraColumns...)

	var raw []map[string]interface{}
	err := r.db.GetDBFromContext(ctx).
		Table(schema.Table).
		Select(columns).
		Where(fmt.Sprintf("%s = ?", schema.OwnerColumn), ownerID).
		Order(schema.Position() + " ASC").
		Find(&raw).Error
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrFileStorageFailed, "listing link rows in "+schema.Table)
	}

	rows := make([]*biz.LinkRow, 0, len(raw))
	for _, rec := range raw {
		row := &biz.LinkRow{
			OwnerID:  toInt64(rec[schema.OwnerColumn]),
			FileID:   toInt64(rec[schema.FileColumn]),
			Position: int(toInt64(rec[schema.Position()])),
		}
		if len(schema.ExtraColumns) > 0 {
			row.Extra = make(map[string]any, len(schema.ExtraColumns))
			for _, col := range schema.ExtraColumns {
				row.Extra[col] = rec[col]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (r *LinkRepo) Insert(ctx context.Context, schema *biz.LinkSchema, row *biz.LinkRow) error {
	err := r.db.GetDBFromContext(ctx).
		Table(schema.Table).
		Create(r.toRecord(schema, row)).Error
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrFileStorageFailed, "inserting link row into "+schema.Table)
	}
	return nil
}

func (r *LinkRepo) Update(ctx context.Context, schema *biz.LinkSchema, row *biz.LinkRow) error {
	values := r.toRecord(schema, row)
	delete(values, schema.OwnerColumn)
	delete(values, schema.FileColumn)

	err := r.db.GetDBFromContext(ctx).
		Table(schema.Table).
		Where(fmt.Sprintf("%s = ? AND %s = ?", schema.OwnerColumn, schema.FileColumn), row.OwnerID, row.FileID).
		Updates(values).Error
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrFileStorageFailed, "updating link row in "+schema.Table)
	}
	return nil
}

func (r *LinkRepo) Delete(ctx context.Context, schema *biz.LinkSchema, ownerID, fileID int64) error {
	err := r.db.GetDBFromContext(ctx).
		Table(schema.Table).
		Where(fmt.Sprintf("%s = ? AND %s = ?", schema.OwnerColumn, schema.FileColumn), ownerID, fileID).
		Delete(nil).Error
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrFileStorageFailed, "deleting link row from "+schema.Table)
	}
	return nil
}

func (r *LinkRepo) DeleteByOwner(ctx context.Context, schema *biz.LinkSchema, ownerID int64) error {
	err := r.db.GetDBFromContext(ctx).
		Table(schema.Table).
		Where(fmt.Sprintf("%s = ?", schema.OwnerColumn), ownerID).
		Delete(nil).Error
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrFileStorageFailed, "clearing link rows in "+schema.Table)
	}
	return nil
}

func (r *LinkRepo) toRecord(schema *biz.LinkSchema, row *biz.LinkRow) map[string]interface{} {
	rec := map[string]interface{}{
		schema.OwnerColumn: row.OwnerID,
		schema.FileColumn:  row.FileID,
		schema.Position():  row.Position,
	}
	for _, col := range schema.ExtraColumns {
		if v, ok := row.Extra[col]; ok {
			rec[col] = v
		}
	}
	return rec
}

func toInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int32:
		return int64(n)
	case int:
		return int64(n)
	case uint64:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}
