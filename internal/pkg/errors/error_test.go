package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	err := New(ErrFileNotFound, "file 42")
	assert.Equal(t, ErrFileNotFound, err.Code)
	assert.Equal(t, "File not found", err.Message)
	assert.Equal(t, "file 42", err.Details)
	assert.Equal(t, http.StatusNotFound, GetCode(err.Code).Status)
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(cause, ErrFileStorageFailed)
	assert.True(t, errors.Is(err, cause))
	assert.True(t, Is(err, ErrFileStorageFailed))
	assert.False(t, Is(err, ErrFileNotFound))
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrFileStorageFailed))
}

func TestExtractCode(t *testing.T) {
	assert.Equal(t, ErrFileNotOwner, ExtractCode(New(ErrFileNotOwner)))
	assert.Equal(t, ErrInternalServer, ExtractCode(errors.New("plain")))
}

func TestGetCodeUnknownFallsBack(t *testing.T) {
	c := GetCode(999999)
	assert.Equal(t, ErrInternalServer, c.Code)
}
