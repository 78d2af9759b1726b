package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"s3gateway/config"
)

func newMemStore(t *testing.T) *BlobStore {
	t.Helper()
	store, err := OpenBlobStore(context.Background(), "mem://")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestBlobStoreUploadListDownload(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(t)

	for key, content := range map[string]string{
		"folderX/a.txt":        "alpha",
		"folderX/nested/b.txt": "bravo",
		"folderY/c.txt":        "charlie",
	} {
		_, err := store.UploadObject(ctx, key, strings.NewReader(content), "text/plain")
		require.NoError(t, err)
	}

	entries, err := store.ListObjects(ctx, "folderX/")
	require.NoError(t, err)

	var keys []string
	for _, e := range entries {
		keys = append(keys, e.Key)
	}
	sort.Strings(keys)
	assert.Equal(t, []string{"folderX/a.txt", "folderX/nested/b.txt"}, keys)

	dest := filepath.Join(t.TempDir(), "deep", "dir", "b.txt")
	require.NoError(t, store.DownloadObject(ctx, "folderX/nested/b.txt", dest))

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "bravo", string(got))
}

func TestBlobStoreDownloadMissing(t *testing.T) {
	store := newMemStore(t)
	dest := filepath.Join(t.TempDir(), "missing.txt")

	err := store.DownloadObject(context.Background(), "nope/missing.txt", dest)
	require.Error(t, err)

	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr), "no local file should be left for a failed download")
}

func TestBlobStoreUploadURL(t *testing.T) {
	dir := t.TempDir()
	store, err := OpenBlobStore(context.Background(), "file://"+filepath.ToSlash(dir)+"?no_tmp_dir=true")
	require.NoError(t, err)
	defer store.Close()

	url, err := store.UploadObject(context.Background(), "docs/readme.txt", bytes.NewReader([]byte("hi")), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "file://"+filepath.ToSlash(dir)+"/docs/readme.txt", url)

	onDisk, err := os.ReadFile(filepath.Join(dir, "docs", "readme.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hi", string(onDisk))
}

func TestBlobStorePresignUnsupported(t *testing.T) {
	store := newMemStore(t)
	_, err := store.PresignGetObject(context.Background(), "a.txt", time.Minute)
	assert.Error(t, err, "memblob cannot sign URLs")
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	store, closeFn, err := Open(ctx, &config.Config{StorageDriver: config.DriverBlob, BlobURL: "mem://"})
	require.NoError(t, err)
	assert.IsType(t, &BlobStore{}, store)
	assert.NoError(t, closeFn())

	_, _, err = Open(ctx, &config.Config{StorageDriver: "ftp"})
	assert.Error(t, err)
}
