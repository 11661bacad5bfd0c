package upload

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mathtutor/internal/domain"
	"mathtutor/internal/pkg/apperr"
	"mathtutor/internal/pkg/clock"
	"mathtutor/internal/pkg/testdb"
	"mathtutor/internal/repository"
)

// pngHeader is the 8-byte PNG signature followed by an IHDR chunk start.
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 13, 'I', 'H', 'D', 'R'}

func setup(t *testing.T) (*Service, *domain.User, string) {
	t.Helper()
	db := testdb.New(t)
	dir := t.TempDir()
	clk := clock.NewFake(time.Date(2026, time.April, 5, 10, 0, 0, 0, time.UTC))
	svc := NewService(repository.NewUploadRepository(db), dir, "/static/uploads/", clk, zap.NewNop())
	return svc, testdb.User(t, db, domain.RoleStudent), dir
}

func TestSave_StoresFileByDate(t *testing.T) {
	svc, user, dir := setup(t)
	ctx := context.Background()
	content := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, 64)...)

	up, err := svc.Save(ctx, user.ID, "../../my graph.png", bytes.NewReader(content))
	require.NoError(t, err)

	assert.Equal(t, "image/png", up.MimeType)
	assert.Equal(t, int64(len(content)), up.Size)
	assert.Equal(t, "my graph.png", up.OriginalName)
	assert.True(t, strings.HasPrefix(up.FilePath, "2026/04/05/"+up.ID+"_my_graph"))
	assert.Equal(t, "/static/uploads/"+up.FilePath, up.FileURL)

	onDisk, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(up.FilePath)))
	require.NoError(t, err)
	assert.Equal(t, content, onDisk)

	got, err := svc.GetByID(ctx, up.ID)
	require.NoError(t, err)
	assert.Equal(t, up.FileURL, got.FileURL)
}

func TestSave_Rejects(t *testing.T) {
	svc, user, dir := setup(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, user.ID, "empty.png", bytes.NewReader(nil))
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, err = svc.Save(ctx, user.ID, "run.sh", strings.NewReader("#!/bin/sh\necho hi\n"))
	assert.ErrorIs(t, err, ErrInvalidMimeType)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = svc.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "file", sanitizeName(""))
	assert.Equal(t, "a_b-c", sanitizeName("/tmp/a b-c.txt"))
	assert.Len(t, sanitizeName(strings.Repeat("x", 100)+".png"), 40)
}
