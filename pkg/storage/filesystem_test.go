package storage

import (
	"bytes"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uploadedFile(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("photo", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	require.Len(t, form.File["photo"], 1)
	return form.File["photo"][0]
}

func newTestStore(t *testing.T) *PhotoStore {
	t.Helper()
	store, err := NewPhotoStore(filepath.Join(t.TempDir(), "students"), "/uploads/students", "/default-avatar.png")
	require.NoError(t, err)
	return store
}

func TestSaveUpload(t *testing.T) {
	store := newTestStore(t)

	url, err := store.SaveUpload(uploadedFile(t, "Portrait.PNG", []byte("png-bytes")))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/students/"))
	assert.True(t, strings.HasSuffix(url, ".png"), "extension is lowercased: %s", url)

	saved := filepath.Join(store.Dir(), filepath.Base(url))
	content, err := os.ReadFile(saved)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(content))
}

func TestSaveUploadGeneratesUniqueNames(t *testing.T) {
	store := newTestStore(t)

	first, err := store.SaveUpload(uploadedFile(t, "a.jpg", []byte("one")))
	require.NoError(t, err)
	second, err := store.SaveUpload(uploadedFile(t, "a.jpg", []byte("two")))
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestRemove(t *testing.T) {
	store := newTestStore(t)

	url, err := store.SaveUpload(uploadedFile(t, "a.jpg", []byte("one")))
	require.NoError(t, err)
	require.NoError(t, store.Remove(url))

	_, err = os.Stat(filepath.Join(store.Dir(), filepath.Base(url)))
	assert.True(t, os.IsNotExist(err))
}

func TestRemoveSkipsPlaceholder(t *testing.T) {
	store := newTestStore(t)

	assert.NoError(t, store.Remove("/default-avatar.png"))
	assert.NoError(t, store.Remove(""))
}

func TestRemoveMissingFile(t *testing.T) {
	store := newTestStore(t)

	err := store.Remove("/uploads/students/gone.png")
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}

func TestNewPhotoStoreDefaults(t *testing.T) {
	store, err := NewPhotoStore(t.TempDir(), "", "")
	require.NoError(t, err)
	assert.Equal(t, "/default-avatar.png", store.DefaultURL())

	url, err := store.SaveUpload(uploadedFile(t, "a.jpg", []byte("one")))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/students/"))
}
