package db

import (
	"context"
	"database/sql"
)

const createUpload = `-- name: CreateUpload :one
INSERT INTO uploads (file_path, media_type, media_category, total_bytes, state)
VALUES (?, ?, ?, ?, ?)
RETURNING id
`

type CreateUploadParams struct {
	FilePath      string
	MediaType     string
	MediaCategory string
	TotalBytes    int64
	State         string
}

func (q *Queries) CreateUpload(ctx context.Context, arg CreateUploadParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, createUpload,
		arg.FilePath,
		arg.MediaType,
		arg.MediaCategory,
		arg.TotalBytes,
		arg.State,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const updateUploadProgress = `-- name: UpdateUploadProgress :exec
UPDATE uploads
SET media_id = ?, segments = ?, state = ?
WHERE id = ?
`

type UpdateUploadProgressParams struct {
	MediaID  string
	Segments int64
	State    string
	ID       int64
}

func (q *Queries) UpdateUploadProgress(ctx context.Context, arg UpdateUploadProgressParams) error {
	_, err := q.db.ExecContext(ctx, updateUploadProgress,
		arg.MediaID,
		arg.Segments,
		arg.State,
		arg.ID,
	)
	return err
}

const finishUpload = `-- name: FinishUpload :exec
UPDATE uploads
SET state = ?, error = ?, finished_at = CURRENT_TIMESTAMP
WHERE id = ?
`

type FinishUploadParams struct {
	State string
	Error sql.NullString
	ID    int64
}

func (q *Queries) FinishUpload(ctx context.Context, arg FinishUploadParams) error {
	_, err := q.db.ExecContext(ctx, finishUpload, arg.State, arg.Error, arg.ID)
	return err
}

const getUpload = `-- name: GetUpload :one
SELECT id, media_id, file_path, media_type, media_category, total_bytes, segments, state, error, created_at, finished_at
FROM uploads
WHERE id = ?
`

func (q *Queries) GetUpload(ctx context.Context, id int64) (Upload, error) {
	row := q.db.QueryRowContext(ctx, getUpload, id)
	var i Upload
	err := row.Scan(
		&i.ID,
		&i.MediaID,
		&i.FilePath,
		&i.MediaType,
		&i.MediaCategory,
		&i.TotalBytes,
		&i.Segments,
		&i.State,
		&i.Error,
		&i.CreatedAt,
		&i.FinishedAt,
	)
	return i, err
}

const listUploads = `-- name: ListUploads :many
SELECT id, media_id, file_path, media_type, media_category, total_bytes, segments, state, error, created_at, finished_at
FROM uploads
ORDER BY id DESC
LIMIT ?
`

func (q *Queries) ListUploads(ctx context.Context, limit int64) ([]Upload, error) {
	rows, err := q.db.QueryContext(ctx, listUploads, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Upload
	for rows.Next() {
		var i Upload
		if err := rows.Scan(
			&i.ID,
			&i.MediaID,
			&i.FilePath,
			&i.MediaType,
			&i.MediaCategory,
			&i.TotalBytes,
			&i.Segments,
			&i.State,
			&i.Error,
			&i.CreatedAt,
			&i.FinishedAt,
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

const countUploadsByState = `-- name: CountUploadsByState :many
SELECT state, COUNT(*) AS count, COALESCE(SUM(total_bytes), 0) AS total_bytes
FROM uploads
GROUP BY state
ORDER BY state
`

type CountUploadsByStateRow struct {
	State      string
	Count      int64
	TotalBytes int64
}

func (q *Queries) CountUploadsByState(ctx context.Context) ([]CountUploadsByStateRow, error) {
	rows, err := q.db.QueryContext(ctx, countUploadsByState)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CountUploadsByStateRow
	for rows.Next() {
		var i CountUploadsByStateRow
		if err := rows.Scan(&i.State, &i.Count, &i.TotalBytes); err != nil {
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
