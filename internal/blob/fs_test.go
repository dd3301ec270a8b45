package blob

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseURL = "http://localhost:8080"

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir(), baseURL)
	require.NoError(t, err)
	return s
}

// pathOnDisk maps a public URL back into the store root the way Remove does.
func pathOnDisk(t *testing.T, s *Store, url string) string {
	t.Helper()
	rel, ok := strings.CutPrefix(url, baseURL+"/files/")
	require.True(t, ok, "unexpected url %q", url)
	return filepath.Join(s.Root(), filepath.FromSlash(rel))
}

func TestUploadAndRemove(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	url, err := s.Upload(ctx, "user1", "receipt.pdf", "application/pdf", []byte("pdf bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, baseURL+"/files/user-uploads/user1/"), "got %q", url)
	assert.True(t, strings.HasSuffix(url, "-receipt.pdf"), "got %q", url)

	data, err := os.ReadFile(pathOnDisk(t, s, url))
	require.NoError(t, err)
	assert.Equal(t, []byte("pdf bytes"), data)

	require.NoError(t, s.Remove(ctx, url))
	_, err = os.Stat(pathOnDisk(t, s, url))
	assert.True(t, os.IsNotExist(err))
}

func TestUploadSameNameYieldsDistinctURLs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.Upload(ctx, "user1", "doc.pdf", "application/pdf", []byte("v1"))
	require.NoError(t, err)
	second, err := s.Upload(ctx, "user1", "doc.pdf", "application/pdf", []byte("v2"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)

	v1, err := os.ReadFile(pathOnDisk(t, s, first))
	require.NoError(t, err)
	v2, err := os.ReadFile(pathOnDisk(t, s, second))
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), v1)
	assert.Equal(t, []byte("v2"), v2)
}

func TestUploadSanitizesFilename(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	url, err := s.Upload(ctx, "user1", "../../etc/pass wd.pdf", "application/pdf", []byte("x"))
	require.NoError(t, err)
	assert.Contains(t, url, "pass_wd.pdf")
	assert.NotContains(t, url, "..")

	// The blob landed under the owner's directory, nowhere else.
	entries, err := os.ReadDir(filepath.Join(s.Root(), "user-uploads", "user1"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestUploadRejectsBadInput(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Upload(ctx, "", "doc.pdf", "application/pdf", []byte("x"))
	assert.Error(t, err)

	_, err = s.Upload(ctx, "user1", "..", "application/pdf", []byte("x"))
	assert.Error(t, err)
}

func TestRemoveRejectsForeignURL(t *testing.T) {
	s := newTestStore(t)
	err := s.Remove(context.Background(), "https://elsewhere.example.com/files/user-uploads/user1/1-doc.pdf")
	assert.Error(t, err)
}

func TestRemoveMissingFile(t *testing.T) {
	s := newTestStore(t)
	err := s.Remove(context.Background(), baseURL+"/files/user-uploads/user1/1-doc.pdf")
	assert.Error(t, err)
}
