package fs

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soapcore/internal/blob/core"
)

func newTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(t.TempDir())
	require.NoError(t, err)
	store.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return store
}

func TestPutWritesDataAndSidecar(t *testing.T) {
	ctx := context.Background()
	store := newTempStore(t)

	info, err := store.Put(ctx, "snapshots/one.json", bytes.NewReader([]byte("hello")), core.PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"users": "1"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), info.Size)
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", info.ETag)
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), info.LastModified)

	raw, err := os.ReadFile(filepath.Join(store.Root(), "snapshots", "one.json"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(raw))
	assert.FileExists(t, filepath.Join(store.Root(), "snapshots", "one.json.meta"))

	head, err := store.Head(ctx, "snapshots/one.json")
	require.NoError(t, err)
	assert.Equal(t, info, head)

	_, rc, err := store.Get(ctx, "snapshots/one.json")
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "hello", string(body))
}

func TestRejectsInvalidKeys(t *testing.T) {
	ctx := context.Background()
	store := newTempStore(t)
	for _, key := range []string{"", "  ", "/abs", "../escape", "a/../../b", "x.meta"} {
		_, err := store.Put(ctx, key, bytes.NewReader(nil), core.PutOptions{})
		assert.ErrorIs(t, err, core.ErrInvalidKey, key)
	}
}

func TestListSkipsTempFilesAndFiltersPrefix(t *testing.T) {
	ctx := context.Background()
	store := newTempStore(t)
	for _, key := range []string{"snapshots/2.json", "snapshots/1.json", "exports/x.json"} {
		_, err := store.Put(ctx, key, bytes.NewReader([]byte("{}")), core.PutOptions{})
		require.NoError(t, err)
	}
	require.NoError(t, os.WriteFile(filepath.Join(store.Root(), "snapshots", ".tmp-stray"), []byte("x"), 0o600))

	infos, err := store.List(ctx, "snapshots/")
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "snapshots/1.json", infos[0].Key)

	all, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestCorruptSidecarSurfaces(t *testing.T) {
	ctx := context.Background()
	store := newTempStore(t)
	_, err := store.Put(ctx, "a.json", bytes.NewReader([]byte("{}")), core.PutOptions{})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(store.Root(), "a.json.meta"), []byte("{"), 0o600))

	_, err = store.Head(ctx, "a.json")
	assert.ErrorContains(t, err, "decode sidecar")
	_, err = store.List(ctx, "")
	assert.ErrorContains(t, err, "read a.json")
}

func TestCancelledContext(t *testing.T) {
	store := newTempStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := store.Put(ctx, "a.json", bytes.NewReader(nil), core.PutOptions{})
	assert.ErrorIs(t, err, context.Canceled)
	_, err = store.Delete(ctx, "a.json")
	assert.ErrorIs(t, err, context.Canceled)
}
