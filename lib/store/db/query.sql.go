package db

import (
	"context"
)

const createPostSnapshot = `-- name: CreatePostSnapshot :exec
insert into post_snapshot (blog, post_id, title, author, hash, raw_body, taken_at)
values (?, ?, ?, ?, ?, ?, ?)
`

type CreatePostSnapshotParams struct {
	Blog    string
	PostID  int64
	Title   string
	Author  string
	Hash    string
	RawBody string
	TakenAt int64
}

func (q *Queries) CreatePostSnapshot(ctx context.Context, arg CreatePostSnapshotParams) error {
	_, err := q.db.ExecContext(ctx, createPostSnapshot,
		arg.Blog,
		arg.PostID,
		arg.Title,
		arg.Author,
		arg.Hash,
		arg.RawBody,
		arg.TakenAt,
	)
	return err
}

const getLatestPostSnapshot = `-- name: GetLatestPostSnapshot :one
select blog, post_id, title, author, hash, raw_body, taken_at from post_snapshot
where blog = ? and post_id = ?
order by id desc
limit 1
`

type GetLatestPostSnapshotParams struct {
	Blog   string
	PostID int64
}

func (q *Queries) GetLatestPostSnapshot(ctx context.Context, arg GetLatestPostSnapshotParams) (PostSnapshot, error) {
	row := q.db.QueryRowContext(ctx, getLatestPostSnapshot, arg.Blog, arg.PostID)
	var i PostSnapshot
	err := row.Scan(
		&i.Blog,
		&i.PostID,
		&i.Title,
		&i.Author,
		&i.Hash,
		&i.RawBody,
		&i.TakenAt,
	)
	return i, err
}

const getPostSnapshots = `-- name: GetPostSnapshots :many
select blog, post_id, title, author, hash, raw_body, taken_at from post_snapshot
where blog = ? and post_id = ?
order by id asc
`

type GetPostSnapshotsParams struct {
	Blog   string
	PostID int64
}

func (q *Queries) GetPostSnapshots(ctx context.Context, arg GetPostSnapshotsParams) ([]PostSnapshot, error) {
	rows, err := q.db.QueryContext(ctx, getPostSnapshots, arg.Blog, arg.PostID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []PostSnapshot
	for rows.Next() {
		var i PostSnapshot
		if err := rows.Scan(
			&i.Blog,
			&i.PostID,
			&i.Title,
			&i.Author,
			&i.Hash,
			&i.RawBody,
			&i.TakenAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
