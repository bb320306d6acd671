package biz

import (
	"context"

	apperrors "github.com/rkit/filemanager-go/internal/pkg/errors"
)

// DefaultPositionColumn is used when a link schema does not name one.
const DefaultPositionColumn = "position"

// LinkSchema statically describes the join table of a multi-file
// attribute: its name, key columns and the open set of caller-defined
// extra columns reconciled on every save.
type LinkSchema struct {
	Table          string
	OwnerColumn    string
	FileColumn     string
	PositionColumn string
	ExtraColumns   []string
}

// Position returns the configured position column name.
func (s *LinkSchema) Position() string {
	if s.PositionColumn == "" {
		return DefaultPositionColumn
	}
	return s.PositionColumn
}

// Validate fails fast on an incomplete schema.
func (s *LinkSchema) Validate() error {
	if s == nil {
		return apperrors.New(apperrors.ErrFileLinkSchemaInvalid, "link schema is not set")
	}
	if s.Table == "" {
		return apperrors.New(apperrors.ErrFileLinkSchemaInvalid, "link table name is empty")
	}
	if s.OwnerColumn == "" || s.FileColumn == "" {
		return apperrors.New(apperrors.ErrFileLinkSchemaInvalid, "link key columns are empty")
	}
	return nil
}

// LinkRow is one join-table row: the membership of one file in one
// owner's collection, with its position and extra fields.
type LinkRow struct {
	OwnerID  int64
	FileID   int64
	Position int
	Extra    map[string]any
}

// LinkRepo persists link rows against a caller-supplied schema.
type LinkRepo interface {
	ListByOwner(ctx context.Context, schema *LinkSchema, ownerID int64) ([]*LinkRow, error)
	Insert(ctx context.Context, schema *LinkSchema, row *LinkRow) error
	Update(ctx context.Context, schema *LinkSchema, row *LinkRow) error
	Delete(ctx context.Context, schema *LinkSchema, ownerID, fileID int64) error
	DeleteByOwner(ctx context.Context, schema *LinkSchema, ownerID int64) error
}
