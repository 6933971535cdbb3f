package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"tabun-api/lib/models"
	"tabun-api/lib/store/db"

	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func newPost(t testing.TB, raw string) *models.Post {
	t.Helper()
	post, err := models.NewPost(models.Post{
		Blog:    "news",
		PostID:  1002,
		Author:  "Author1",
		Title:   "Second post",
		RawBody: raw,
	})
	require.NoError(t, err)
	return post
}

func openStore(t testing.TB) Store {
	t.Helper()
	sqlite, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	sqlite.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlite.Close() })
	_, err = sqlite.Exec(db.Schema)
	require.NoError(t, err)
	return NewStore(sqlite)
}

func TestStore(t *testing.T) {
	store := openStore(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	_, err := store.Get(ctx, "news", 1002)
	require.ErrorIs(t, err, ErrNotFound)

	changed, err := store.Put(ctx, newPost(t, "first <b>body</b>"))
	require.NoError(t, err)
	require.True(t, changed)

	changed, err = store.Put(ctx, newPost(t, "first <b>body</b>"))
	require.NoError(t, err)
	require.False(t, changed)

	edited := newPost(t, "edited body")
	changed, err = store.Put(ctx, edited)
	require.NoError(t, err)
	require.True(t, changed)

	latest, err := store.Get(ctx, "news", 1002)
	require.NoError(t, err)
	require.Equal(t, edited.Hash(), latest.Hash)
	require.Equal(t, "edited body", latest.RawBody)
	require.Equal(t, "Author1", latest.Author)

	history, err := store.History(ctx, "news", 1002)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, "first <b>body</b>", history[0].RawBody)

	_, err = store.Get(ctx, "", 1002)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDriverFor(t *testing.T) {
	testCases := []struct {
		dsn    string
		driver string
	}{
		{dsn: ":memory:", driver: "sqlite"},
		{dsn: "snapshots.db", driver: "sqlite"},
		{dsn: "file:snapshots.db", driver: "sqlite"},
		{dsn: "libsql://tabun.turso.io?authToken=abc", driver: "libsql"},
		{dsn: "http://127.0.0.1:8080", driver: "libsql"},
	}
	for _, test := range testCases {
		require.Equal(t, test.driver, driverFor(test.dsn), test.dsn)
	}
}

func TestOpenFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "snapshots.db")

	store, err := Open(ctx, path)
	require.NoError(t, err)
	_, err = store.Put(ctx, newPost(t, "body"))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = Open(ctx, path)
	require.NoError(t, err)
	defer store.Close()
	snapshot, err := store.Get(ctx, "news", 1002)
	require.NoError(t, err)
	require.Equal(t, "body", snapshot.RawBody)
}
