package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rkit/filemanager-go/internal/file/biz"
)

func testFile() *biz.File {
	return &biz.File{
		ID:        7,
		Name:      "photo.png",
		OwnerID:   42,
		OwnerType: 5,
		Temporary: true,
		CreatedAt: time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC),
	}
}

func newTestLocal(t *testing.T) *Local {
	t.Helper()
	root := t.TempDir()
	s, err := NewLocal(filepath.Join(root, "public"), filepath.Join(root, "protected"), "http://files.test", nil)
	require.NoError(t, err)
	return s
}

func writeSource(t *testing.T, content string) string {
	t.Helper()
	src := filepath.Join(t.TempDir(), "upload-src")
	require.NoError(t, os.WriteFile(src, []byte(content), 0o644))
	return src
}

func TestLocalPathLayout(t *testing.T) {
	s := newTestLocal(t)
	f := testFile()

	temp := s.Path(f, true)
	assert.True(t, strings.HasSuffix(temp, filepath.Join("tmp", "202603", "5", "7", "photo.png")), temp)

	perm := s.Path(f, false)
	assert.True(t, strings.HasSuffix(perm, filepath.Join("202603", "5", "42", "7", "photo.png")), perm)
	assert.NotContains(t, perm, "tmp")

	f.Protected = true
	assert.Contains(t, s.Path(f, false), "protected")
}

func TestLocalSaveCopies(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()
	f := testFile()
	src := writeSource(t, "hello")

	require.NoError(t, s.Save(ctx, f, src, false))

	data, err := os.ReadFile(s.Path(f, true))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	// source untouched
	_, err = os.Stat(src)
	assert.NoError(t, err)
}

func TestLocalSaveMoves(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()
	f := testFile()
	src := writeSource(t, "hello")

	require.NoError(t, s.Save(ctx, f, src, true))

	assert.True(t, s.Exists(ctx, s.Path(f, true)))
	_, err := os.Stat(src)
	assert.True(t, os.IsNotExist(err))
}

func TestLocalPromoteMovesBytes(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()
	f := testFile()
	require.NoError(t, s.Save(ctx, f, writeSource(t, "hello"), false))

	f.Temporary = false
	require.True(t, s.Promote(ctx, f))

	assert.True(t, s.Exists(ctx, s.Path(f, false)))
	assert.False(t, s.Exists(ctx, s.Path(f, true)))

	data, err := os.ReadFile(s.Path(f, false))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestLocalPromoteFailsWhenTemporaryGone(t *testing.T) {
	s := newTestLocal(t)
	f := testFile()
	f.Temporary = false
	assert.False(t, s.Promote(context.Background(), f))
}

func TestLocalDeleteSweepsDerivedArtifacts(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()
	f := testFile()
	require.NoError(t, s.Save(ctx, f, writeSource(t, "hello"), false))
	f.Temporary = false
	require.True(t, s.Promote(ctx, f))

	// a thumbnail next to the source
	dir := filepath.Dir(s.Path(f, false))
	derived := filepath.Join(dir, "200x200_photo.png")
	require.NoError(t, os.WriteFile(derived, []byte("thumb"), 0o644))

	s.Delete(ctx, f)

	assert.False(t, s.Exists(ctx, s.Path(f, false)))
	_, err := os.Stat(derived)
	assert.True(t, os.IsNotExist(err))

	// deleting again is a no-op
	s.Delete(ctx, f)
}

func TestLocalWriteAndOpen(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()
	f := testFile()
	location := filepath.Join(filepath.Dir(s.Path(f, true)), "200x200_photo.png")

	require.NoError(t, s.Write(ctx, location, strings.NewReader("thumb"), 5))
	assert.True(t, s.Exists(ctx, location))

	rc, err := s.Open(ctx, location)
	require.NoError(t, err)
	defer rc.Close()

	buf := make([]byte, 5)
	_, err = rc.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "thumb", string(buf))
}

func TestLocalOpenMissing(t *testing.T) {
	s := newTestLocal(t)
	_, err := s.Open(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestLocalURL(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()
	f := testFile()
	f.Temporary = false

	url, err := s.URL(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("http://files.test/202603/5/42/%d/photo.png", f.ID), url)

	f.Protected = true
	_, err = s.URL(ctx, f)
	assert.Error(t, err)
}
