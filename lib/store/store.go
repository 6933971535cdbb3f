// Package store keeps snapshots of posts in sqlite to notice when their
// bodies are edited.
package store

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"tabun-api/lib/models"
	"tabun-api/lib/store/db"
	"tabun-api/lib/timezone"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("no snapshot of post")

type Store struct {
	db  *sql.DB
	qry *db.Queries
}

func NewStore(database *sql.DB) Store {
	return Store{
		db:  database,
		qry: db.New(database),
	}
}

var remoteSchemes = []string{"libsql://", "https://", "http://", "wss://", "ws://"}

// driverFor picks the libsql client for remote databases and the embedded
// sqlite driver for everything else.
func driverFor(dsn string) string {
	for _, scheme := range remoteSchemes {
		if strings.HasPrefix(dsn, scheme) {
			return "libsql"
		}
	}
	return "sqlite"
}

// Open opens the database at dsn and applies the schema. A local path is
// created if needed, a libsql url (with an optional authToken query
// parameter) connects to a remote server.
func Open(ctx context.Context, dsn string) (Store, error) {
	driver := driverFor(dsn)
	database, err := sql.Open(driver, dsn)
	if err != nil {
		return Store{}, err
	}
	if driver == "sqlite" {
		// sqlite serializes writers anyway
		database.SetMaxOpenConns(1)
	}
	_, err = database.ExecContext(ctx, db.Schema)
	if err != nil {
		database.Close()
		return Store{}, err
	}
	return NewStore(database), nil
}

func (s Store) Close() error {
	return s.db.Close()
}

type Snapshot struct {
	Blog    string
	PostID  int
	Title   string
	Author  string
	Hash    string
	RawBody string
	Time    time.Time
}

func snapshotFromRow(row db.PostSnapshot) Snapshot {
	return Snapshot{
		Blog:    row.Blog,
		PostID:  int(row.PostID),
		Title:   row.Title,
		Author:  row.Author,
		Hash:    row.Hash,
		RawBody: row.RawBody,
		Time:    time.Unix(row.TakenAt, 0).In(timezone.Location),
	}
}

// Put records a snapshot of post unless the latest one has the same raw
// body hash. It reports whether a snapshot was recorded, which is also the
// case for a post seen for the first time.
func (s Store) Put(ctx context.Context, post *models.Post) (changed bool, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()
	txqry := s.qry.WithTx(tx)

	hash := post.Hash()
	latest, err := txqry.GetLatestPostSnapshot(ctx, db.GetLatestPostSnapshotParams{
		Blog:   post.Blog,
		PostID: int64(post.PostID),
	})
	switch {
	case err == nil && latest.Hash == hash:
		return false, nil
	case err != nil && !errors.Is(err, sql.ErrNoRows):
		return false, err
	}

	err = txqry.CreatePostSnapshot(ctx, db.CreatePostSnapshotParams{
		Blog:    post.Blog,
		PostID:  int64(post.PostID),
		Title:   post.Title,
		Author:  post.Author,
		Hash:    hash,
		RawBody: post.RawBody,
		TakenAt: timezone.Now().Unix(),
	})
	if err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}

	if latest.Hash != "" {
		slog.DebugContext(ctx, "post body changed", "blog", post.Blog, "post_id", post.PostID, "old", latest.Hash, "new", hash)
	}
	return true, nil
}

// Get returns the latest snapshot of a post.
func (s Store) Get(ctx context.Context, blog string, postID int) (Snapshot, error) {
	row, err := s.qry.GetLatestPostSnapshot(ctx, db.GetLatestPostSnapshotParams{
		Blog:   blog,
		PostID: int64(postID),
	})
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, ErrNotFound
	}
	if err != nil {
		return Snapshot{}, err
	}
	return snapshotFromRow(row), nil
}

// History returns every snapshot of a post, oldest first.
func (s Store) History(ctx context.Context, blog string, postID int) ([]Snapshot, error) {
	rows, err := s.qry.GetPostSnapshots(ctx, db.GetPostSnapshotsParams{
		Blog:   blog,
		PostID: int64(postID),
	})
	if err != nil {
		return nil, err
	}
	out := make([]Snapshot, len(rows))
	for i, row := range rows {
		out[i] = snapshotFromRow(row)
	}
	return out, nil
}
