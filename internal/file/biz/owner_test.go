package biz_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rkit/filemanager-go/internal/file/biz"
	apperrors "github.com/rkit/filemanager-go/internal/pkg/errors"
)

func TestOwnerTypesLookup(t *testing.T) {
	owners, err := biz.NewOwnerTypes(map[string]int{
		"news.image":   5,
		"news.gallery": 6,
	})
	require.NoError(t, err)

	code, err := owners.Code("news.image")
	require.NoError(t, err)
	assert.Equal(t, 5, code)

	name, ok := owners.Name(6)
	assert.True(t, ok)
	assert.Equal(t, "news.gallery", name)

	_, err = owners.Code("news.unknown")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrFileOwnerTypeUnknown))
}

func TestOwnerTypesRejectsBadCodes(t *testing.T) {
	_, err := biz.NewOwnerTypes(map[string]int{"a.image": 0})
	assert.Error(t, err)

	_, err = biz.NewOwnerTypes(map[string]int{"a.image": 1, "b.image": 1})
	assert.Error(t, err)
}
