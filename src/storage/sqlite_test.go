package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	return NewSQLiteStore(filepath.Join(t.TempDir(), "nested", "studio.db"))
}

func TestSQLiteStore_PutAndGet(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLite(t)

	_, found, err := store.Get(ctx, CollectionContext, WritingContextKey)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Put(ctx, CollectionContext, Record{Key: WritingContextKey, Value: []byte(`"a"`)}))
	require.NoError(t, store.Put(ctx, CollectionContext, Record{Key: WritingContextKey, Value: []byte(`"b"`)}))

	got, found, err := store.Get(ctx, CollectionContext, WritingContextKey)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, `"b"`, string(got.Value))
}

func TestSQLiteStore_ReplaceAllKeepsOrder(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLite(t)

	require.NoError(t, store.ReplaceAll(ctx, CollectionPlacements, []Record{
		{Key: "gen-1", Value: []byte("1")},
		{Key: "gen-2", Value: []byte("2")},
	}))
	require.NoError(t, store.ReplaceAll(ctx, CollectionPlacements, []Record{
		{Key: "gen-9", Value: []byte("9")},
		{Key: "gen-3", Value: []byte("3")},
	}))

	records, err := store.GetAll(ctx, CollectionPlacements)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "gen-9", records[0].Key)
	assert.Equal(t, "gen-3", records[1].Key)
}

func TestSQLiteStore_CollectionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLite(t)

	require.NoError(t, store.Put(ctx, CollectionPlacements, Record{Key: "gen-1", Value: []byte("p")}))
	require.NoError(t, store.Put(ctx, CollectionContext, Record{Key: WritingContextKey, Value: []byte("c")}))
	require.NoError(t, store.Clear(ctx, CollectionPlacements))

	placements, err := store.GetAll(ctx, CollectionPlacements)
	require.NoError(t, err)
	assert.Empty(t, placements)

	_, found, err := store.Get(ctx, CollectionContext, WritingContextKey)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestSQLiteStore_ClearAll(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLite(t)

	require.NoError(t, store.Put(ctx, CollectionPlacements, Record{Key: "gen-1", Value: []byte("p")}))
	require.NoError(t, store.Put(ctx, CollectionContext, Record{Key: WritingContextKey, Value: []byte("c")}))
	require.NoError(t, store.ClearAll(ctx))

	for _, c := range Collections {
		records, err := store.GetAll(ctx, c)
		require.NoError(t, err)
		assert.Empty(t, records, c)
	}
}

func TestSQLiteStore_UnknownCollection(t *testing.T) {
	store := newTestSQLite(t)
	err := store.Put(context.Background(), Collection("liked"), Record{Key: "x"})
	assert.ErrorIs(t, err, ErrUnknownCollection)
}

func TestSQLiteStore_MigratesLegacySchema(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "legacy.db")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(schema)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO records (collection, key, value) VALUES ('liked', 'gen-1', 'x'), ('placements', 'gen-1', 'y')`)
	require.NoError(t, err)
	_, err = db.Exec("PRAGMA user_version = 1")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	store := NewSQLiteStore(path)
	records, err := store.GetAll(ctx, CollectionPlacements)
	require.NoError(t, err)
	require.Len(t, records, 1)

	db, err = sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	var liked, version int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM records WHERE collection = 'liked'`).Scan(&liked))
	require.NoError(t, db.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Zero(t, liked)
	assert.Equal(t, DBVersion, version)
}
