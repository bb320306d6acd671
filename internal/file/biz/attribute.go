package biz

import (
	"fmt"

	"github.com/rkit/filemanager-go/internal/file/thumb"
	apperrors "github.com/rkit/filemanager-go/internal/pkg/errors"
)

// NameGenerator produces the stored name for a new file. The default
// is GenerateName.
type NameGenerator func(title, extension string) string

// ExtraFieldsResolver computes the link-row extra fields for a file,
// given the currently stored ones (nil for a new link).
type ExtraFieldsResolver func(f *File, current map[string]any) map[string]any

// Attribute is the static configuration of one owner attribute: a
// named slot (or ordered collection) of files on an owning record.
// Attributes are registered once at setup; all capabilities are
// resolved there, never at call time.
type Attribute struct {
	// Name is the symbolic owner-type name, e.g. "news.image".
	Name string

	// Multiple selects the ordered-collection behavior backed by a
	// link table. Single-slot attributes hold at most one file.
	Multiple bool

	// Protected files are served through access checks rather than
	// directly from the public root.
	Protected bool

	Storage Storage

	// Link describes the join table. Required when Multiple.
	Link *LinkSchema

	// ExtraFields, when set, computes link-row extra columns on each
	// reconciliation.
	ExtraFields ExtraFieldsResolver

	// GenerateName overrides the default storage-name generator.
	GenerateName NameGenerator

	// Presets are the named transforms available for derived artifacts.
	Presets map[string]thumb.Transform

	// OnExcluded, when set, is called for every candidate dropped
	// during binding. Dropping is silent by contract; this is the
	// visibility hook.
	OnExcluded func(fileID int64, err error)
}

// Validate fails fast on configuration mistakes.
func (a *Attribute) Validate() error {
	if a.Name == "" {
		return apperrors.New(apperrors.ErrFileOwnerTypeUnknown, "attribute name is empty")
	}
	if a.Storage == nil {
		return apperrors.New(apperrors.ErrFileStorageUnset, fmt.Sprintf("attribute %q has no storage", a.Name))
	}
	if a.Multiple {
		if err := a.Link.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (a *Attribute) excluded(fileID int64, err error) {
	if a.OnExcluded != nil {
		a.OnExcluded(fileID, err)
	}
}

func (a *Attribute) generateName(title, extension string) string {
	if a.GenerateName != nil {
		return a.GenerateName(title, extension)
	}
	return GenerateName(extension)
}
