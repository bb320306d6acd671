package biz_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rkit/filemanager-go/internal/file/biz"
)

func TestFileIsOwner(t *testing.T) {
	tests := []struct {
		name      string
		file      biz.File
		ownerID   int64
		ownerType int
		userID    int64
		want      bool
	}{
		{
			name:      "temporary file claimed by its uploader",
			file:      biz.File{UserID: 1, OwnerType: 5, Temporary: true},
			ownerID:   42,
			ownerType: 5,
			userID:    1,
			want:      true,
		},
		{
			name:      "temporary file claimed by another user",
			file:      biz.File{UserID: 1, OwnerType: 5, Temporary: true},
			ownerID:   42,
			ownerType: 5,
			userID:    2,
			want:      false,
		},
		{
			name:      "anonymous temporary file claimed by anyone",
			file:      biz.File{UserID: biz.AnonymousUserID, OwnerType: 5, Temporary: true},
			ownerID:   42,
			ownerType: 5,
			userID:    7,
			want:      true,
		},
		{
			name:      "temporary file with wrong owner type",
			file:      biz.File{UserID: 1, OwnerType: 5, Temporary: true},
			ownerID:   42,
			ownerType: 6,
			userID:    1,
			want:      false,
		},
		{
			name:      "permanent file under the same owner",
			file:      biz.File{UserID: 1, OwnerID: 42, OwnerType: 5},
			ownerID:   42,
			ownerType: 5,
			userID:    9,
			want:      true,
		},
		{
			name:      "permanent file cannot move to another owner",
			file:      biz.File{UserID: 1, OwnerID: 42, OwnerType: 5},
			ownerID:   43,
			ownerType: 5,
			userID:    1,
			want:      false,
		},
		{
			name:      "permanent file cannot change owner type",
			file:      biz.File{UserID: 1, OwnerID: 42, OwnerType: 5},
			ownerID:   42,
			ownerType: 6,
			userID:    1,
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.file.IsOwner(tt.ownerID, tt.ownerType, tt.userID)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveExtension(t *testing.T) {
	tests := []struct {
		name       string
		title      string
		sourcePath string
		mime       string
		want       string
	}{
		{"from title", "photo.JPG", "/tmp/upload123", "image/png", "jpg"},
		{"from source path", "photo", "/tmp/upload.png", "image/jpeg", "png"},
		{"from mime subtype", "photo", "/tmp/upload123", "image/gif", "gif"},
		{"nothing known", "photo", "/tmp/upload123", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, biz.ResolveExtension(tt.title, tt.sourcePath, tt.mime))
		})
	}
}

func TestGenerateName(t *testing.T) {
	name := biz.GenerateName("png")
	assert.True(t, strings.HasSuffix(name, ".png"))
	// 14-digit timestamp, separator, 10-char suffix, extension
	assert.Len(t, name, 14+1+10+4)

	other := biz.GenerateName("png")
	assert.NotEqual(t, name, other)

	bare := biz.GenerateName("")
	assert.NotContains(t, bare, ".")
}

func TestMimeByExtension(t *testing.T) {
	assert.Equal(t, "image/png", biz.MimeByExtension("png"))
	assert.Equal(t, "application/octet-stream", biz.MimeByExtension("nosuchext"))
}

func TestLinkSchemaValidate(t *testing.T) {
	valid := &biz.LinkSchema{Table: "news_files", OwnerColumn: "news_id", FileColumn: "file_id"}
	assert.NoError(t, valid.Validate())
	assert.Equal(t, biz.DefaultPositionColumn, valid.Position())

	assert.Error(t, (&biz.LinkSchema{OwnerColumn: "a", FileColumn: "b"}).Validate())
	assert.Error(t, (&biz.LinkSchema{Table: "t", FileColumn: "b"}).Validate())

	var nilSchema *biz.LinkSchema
	assert.Error(t, nilSchema.Validate())
}
