package storage_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diamantrouge/maison/pkg/storage"
)

func TestLocalDiskLifecycle(t *testing.T) {
	ctx := context.Background()
	d := storage.NewLocalDisk(t.TempDir(), "http://localhost:8080/storage/")

	require.NoError(t, d.Put(ctx, "products/abc.webp", strings.NewReader("RIFF"), "image/webp"))
	assert.True(t, d.Exists(ctx, "products/abc.webp"))

	data, err := d.Get(ctx, "products/abc.webp")
	require.NoError(t, err)
	assert.Equal(t, "RIFF", string(data))
	assert.Equal(t, "http://localhost:8080/storage/products/abc.webp", d.URL("products/abc.webp"))

	require.NoError(t, d.Delete(ctx, "products/abc.webp"))
	require.NoError(t, d.Delete(ctx, "products/abc.webp"))
	_, err = d.Get(ctx, "products/abc.webp")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestLocalDiskStaysInsideRoot(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	d := storage.NewLocalDisk(root, "/storage")

	require.NoError(t, d.Put(ctx, "../../escape.txt", strings.NewReader("x"), ""))
	assert.True(t, d.Exists(ctx, "escape.txt"), "traversal is clamped to the root")

	assert.ErrorIs(t, d.Put(ctx, "/", strings.NewReader("x"), ""), storage.ErrInvalidPath)
}

func TestRegisterAndUse(t *testing.T) {
	d := storage.NewLocalDisk(t.TempDir(), "/storage")
	storage.RegisterDisk("test", d)

	got, err := storage.Use("test")
	require.NoError(t, err)
	assert.Same(t, d, got)

	_, err = storage.Use("nope")
	assert.Error(t, err)
}
