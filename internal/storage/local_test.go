package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *LocalStorage {
	t.Helper()
	store, err := NewLocalStorage(Config{
		BasePath: t.TempDir(),
		BaseURL:  "/files/",
	})
	require.NoError(t, err)
	return store
}

func TestLocalSaveAndGet(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	err := store.Save(ctx, "chat/a.txt", strings.NewReader("hello"), "text/plain")
	require.NoError(t, err)

	reader, err := store.Get(ctx, "chat/a.txt")
	require.NoError(t, err)
	defer reader.Close()

	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestLocalDeleteMissingFileIsNotAnError(t *testing.T) {
	store := newTestStorage(t)

	assert.NoError(t, store.Delete(context.Background(), "chat/never-existed.txt"))
}

func TestLocalDeleteRemovesFile(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "chat/a.txt", strings.NewReader("x"), "text/plain"))
	require.NoError(t, store.Delete(ctx, "chat/a.txt"))

	_, err := store.Get(ctx, "chat/a.txt")
	assert.Error(t, err)
}

func TestLocalURLJoinsCleanly(t *testing.T) {
	store := newTestStorage(t)

	url, err := store.GetURL(context.Background(), "/chat/a.png")
	require.NoError(t, err)
	assert.Equal(t, "/files/chat/a.png", url)
}
