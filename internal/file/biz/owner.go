package biz

import (
	"fmt"

	apperrors "github.com/rkit/filemanager-go/internal/pkg/errors"
)

// OwnerTypes maps symbolic owner-attribute names ("news.image") to
// the small stable codes stored on file rows. Codes scope every query
// and must never be reused for a different attribute.
type OwnerTypes struct {
	codes map[string]int
	names map[int]string
}

// NewOwnerTypes builds the registry, rejecting non-positive or
// duplicate codes.
func NewOwnerTypes(mapping map[string]int) (*OwnerTypes, error) {
	t := &OwnerTypes{
		codes: make(map[string]int, len(mapping)),
		names: make(map[int]string, len(mapping)),
	}
	for name, code := range mapping {
		if code <= 0 {
			return nil, apperrors.New(apperrors.ErrFileOwnerTypeUnknown,
				fmt.Sprintf("owner type %q has non-positive code %d", name, code))
		}
		if prev, ok := t.names[code]; ok {
			return nil, apperrors.New(apperrors.ErrFileOwnerTypeUnknown,
				fmt.Sprintf("owner types %q and %q share code %d", prev, name, code))
		}
		t.codes[name] = code
		t.names[code] = name
	}
	return t, nil
}

// Code resolves a symbolic name. An unregistered name is a
// configuration error, not a data error.
func (t *OwnerTypes) Code(name string) (int, error) {
	code, ok := t.codes[name]
	if !ok {
		return 0, apperrors.New(apperrors.ErrFileOwnerTypeUnknown, fmt.Sprintf("owner type %q is not registered", name))
	}
	return code, nil
}

// Name resolves a code back to its symbolic name.
func (t *OwnerTypes) Name(code int) (string, bool) {
	name, ok := t.names[code]
	return name, ok
}
