package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"gotest.tools/v3/assert"

	"github.com/nikbrunner/bookmarkplus/internal/config"
	"github.com/nikbrunner/bookmarkplus/internal/logger"
	"github.com/nikbrunner/bookmarkplus/internal/storage"
)

// testContract exercises the whole-value key-value contract every backend shares.
func testContract(t *testing.T, s storage.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("absent keys are omitted", func(t *testing.T) {
		got, err := s.Get(ctx, storage.KeyBookmarks, storage.KeyFolders)
		assert.NilError(t, err)
		assert.Equal(t, len(got), 0)
	})

	t.Run("set then get", func(t *testing.T) {
		assert.NilError(t, s.Set(ctx, map[string][]byte{
			storage.KeyBookmarks: []byte(`[{"id":"b1"}]`),
		}))

		got, err := s.Get(ctx, storage.KeyBookmarks, storage.KeyTags)
		assert.NilError(t, err)
		assert.Equal(t, string(got[storage.KeyBookmarks]), `[{"id":"b1"}]`)
		_, ok := got[storage.KeyTags]
		assert.Assert(t, !ok, "tags were never written")
	})

	t.Run("whole value replacement", func(t *testing.T) {
		assert.NilError(t, s.Set(ctx, map[string][]byte{storage.KeyTags: []byte(`["a","b"]`)}))
		assert.NilError(t, s.Set(ctx, map[string][]byte{storage.KeyTags: []byte(`["c"]`)}))

		got, err := s.Get(ctx, storage.KeyTags)
		assert.NilError(t, err)
		assert.Equal(t, string(got[storage.KeyTags]), `["c"]`)
	})

	t.Run("other keys untouched", func(t *testing.T) {
		got, err := s.Get(ctx, storage.KeyBookmarks)
		assert.NilError(t, err)
		assert.Equal(t, string(got[storage.KeyBookmarks]), `[{"id":"b1"}]`)
	})
}

func TestMemoryStorage(t *testing.T) {
	s := storage.NewMemoryStorage()
	testContract(t, s)
	assert.DeepEqual(t, s.Keys(), []string{"bookmarks", "tags"})
}

func TestJSONStorage(t *testing.T) {
	testContract(t, storage.NewJSONStorage(filepath.Join(t.TempDir(), "bookmarks.json")))
}

func TestJSONStorage_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "bookmarks.json")
	s := storage.NewJSONStorage(path)

	assert.NilError(t, s.Set(context.Background(), map[string][]byte{storage.KeyTags: []byte(`[]`)}))

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatal("storage file was not created in nested directory")
	}
}

func TestJSONStorage_RejectsInvalidJSON(t *testing.T) {
	s := storage.NewJSONStorage(filepath.Join(t.TempDir(), "bookmarks.json"))

	err := s.Set(context.Background(), map[string][]byte{storage.KeyTags: []byte(`not json`)})
	assert.ErrorContains(t, err, "not valid JSON")
}

func TestJSONStorage_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookmarks.json")
	assert.NilError(t, os.WriteFile(path, []byte("{broken"), 0644))

	_, err := storage.NewJSONStorage(path).Get(context.Background(), storage.KeyBookmarks)
	assert.Assert(t, err != nil)
}

func TestJSONStorage_NullFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookmarks.json")
	assert.NilError(t, os.WriteFile(path, []byte("null"), 0644))
	s := storage.NewJSONStorage(path)
	ctx := context.Background()

	got, err := s.Get(ctx, storage.KeyTags)
	assert.NilError(t, err)
	assert.Equal(t, len(got), 0)

	assert.NilError(t, s.Set(ctx, map[string][]byte{storage.KeyTags: []byte(`["a"]`)}))
	got, err = s.Get(ctx, storage.KeyTags)
	assert.NilError(t, err)
	assert.Equal(t, string(got[storage.KeyTags]), `["a"]`)
}

func TestJSONStorage_KeepsValueBytes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookmarks.json")
	s := storage.NewJSONStorage(path)
	ctx := context.Background()

	value := `[{"id":"b1","title":"Tom & Jerry <3","tags":["x","y"]}]`
	assert.NilError(t, s.Set(ctx, map[string][]byte{storage.KeyBookmarks: []byte(value)}))

	got, err := storage.NewJSONStorage(path).Get(ctx, storage.KeyBookmarks)
	assert.NilError(t, err)
	assert.Equal(t, string(got[storage.KeyBookmarks]), value)
}

func TestSQLiteStorage(t *testing.T) {
	s, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "bookmarks.db"))
	assert.NilError(t, err)
	defer s.Close()

	testContract(t, s)
}

func TestSQLiteStorage_PersistsAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "bookmarks.db")
	ctx := context.Background()

	s, err := storage.NewSQLiteStorage(dbPath)
	assert.NilError(t, err)
	assert.NilError(t, s.Set(ctx, map[string][]byte{storage.KeyFolders: []byte(`[{"id":"root"}]`)}))
	assert.NilError(t, s.Close())

	reopened, err := storage.NewSQLiteStorage(dbPath)
	assert.NilError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, storage.KeyFolders)
	assert.NilError(t, err)
	assert.Equal(t, string(got[storage.KeyFolders]), `[{"id":"root"}]`)
}

func TestRedisStorage(t *testing.T) {
	addr := os.Getenv("BMP_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("BMP_TEST_REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	prefix := "bmp-test:" + t.Name() + ":"
	t.Cleanup(func() {
		ctx := context.Background()
		for _, k := range []string{storage.KeyBookmarks, storage.KeyFolders, storage.KeyTags} {
			client.Del(ctx, prefix+k)
		}
		client.Close()
	})

	testContract(t, storage.NewRedisStorageFromClient(client, prefix))
}

func TestPostgresStorage(t *testing.T) {
	dsn := os.Getenv("BMP_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("BMP_TEST_POSTGRES_DSN not set")
	}

	ctx := context.Background()
	s, err := storage.NewPostgresStorage(ctx, dsn)
	assert.NilError(t, err)
	defer s.Close()

	// Start from a clean slate for the contract.
	conn, err := pgx.Connect(ctx, dsn)
	assert.NilError(t, err)
	defer conn.Close(ctx)
	_, err = conn.Exec(ctx, `DELETE FROM bmp_entries WHERE key = ANY($1)`,
		[]string{storage.KeyBookmarks, storage.KeyFolders, storage.KeyTags})
	assert.NilError(t, err)

	testContract(t, s)
}

func TestOpen_SelectsBackend(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.DataPath = filepath.Join(dir, "bookmarks.json")
	cfg.SQLitePath = filepath.Join(dir, "bookmarks.db")
	ctx := context.Background()

	tests := []struct {
		backend string
		check   func(storage.Store) bool
	}{
		{config.BackendMemory, func(s storage.Store) bool { _, ok := s.(*storage.MemoryStorage); return ok }},
		{config.BackendJSON, func(s storage.Store) bool { _, ok := s.(*storage.JSONStorage); return ok }},
		{config.BackendSQLite, func(s storage.Store) bool { _, ok := s.(*storage.SQLiteStorage); return ok }},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			cfg.Backend = tt.backend
			s, err := storage.Open(ctx, &cfg, logger.Nop())
			assert.NilError(t, err)
			defer s.Close()
			assert.Assert(t, tt.check(s))
		})
	}

	cfg.Backend = "floppy"
	_, err := storage.Open(ctx, &cfg, logger.Nop())
	assert.ErrorContains(t, err, "unknown storage backend")
}
