package kvstore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fire-base/kvstore"
)

func exerciseStore(t *testing.T, s kvstore.Store) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "k", "v1"))
	require.NoError(t, s.Set(ctx, "k", "v2"))
	v, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v2", v)

	require.NoError(t, s.Delete(ctx, "k"))
	_, ok, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Delete(ctx, "never-set"))
}

func TestMemory(t *testing.T) {
	exerciseStore(t, kvstore.NewMemory())
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "store.json")
	s, err := kvstore.NewFile(path)
	require.NoError(t, err)
	exerciseStore(t, s)
}

func TestFileSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "store.json")

	s, err := kvstore.NewFile(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "ideas", `[{"id":"1"}]`))

	reopened, err := kvstore.NewFile(path)
	require.NoError(t, err)
	v, ok, err := reopened.Get(ctx, "ideas")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"1"}]`, v)
}

func TestFileCorruptContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	s, err := kvstore.NewFile(path)
	require.NoError(t, err)
	_, _, err = s.Get(context.Background(), "k")
	assert.Error(t, err)
}

func TestRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	s := kvstore.NewRedis(client, "firebase:")
	exerciseStore(t, s)

	require.NoError(t, s.Set(context.Background(), "ideas", "[]"))
	assert.True(t, mr.Exists("firebase:ideas"))
}
