package db

import (
	"context"
)

const upsertAccount = `-- name: UpsertAccount :exec
INSERT INTO accounts (screen_name, user_id, token, token_secret)
VALUES (?, ?, ?, ?)
ON CONFLICT(screen_name) DO UPDATE SET
    user_id = excluded.user_id,
    token = excluded.token,
    token_secret = excluded.token_secret,
    updated_at = CURRENT_TIMESTAMP
`

type UpsertAccountParams struct {
	ScreenName  string
	UserID      string
	Token       string
	TokenSecret string
}

func (q *Queries) UpsertAccount(ctx context.Context, arg UpsertAccountParams) error {
	_, err := q.db.ExecContext(ctx, upsertAccount,
		arg.ScreenName,
		arg.UserID,
		arg.Token,
		arg.TokenSecret,
	)
	return err
}

const getAccount = `-- name: GetAccount :one
SELECT screen_name, user_id, token, token_secret, created_at, updated_at
FROM accounts
WHERE screen_name = ?
`

func (q *Queries) GetAccount(ctx context.Context, screenName string) (Account, error) {
	row := q.db.QueryRowContext(ctx, getAccount, screenName)
	var i Account
	err := row.Scan(
		&i.ScreenName,
		&i.UserID,
		&i.Token,
		&i.TokenSecret,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getLatestAccount = `-- name: GetLatestAccount :one
SELECT screen_name, user_id, token, token_secret, created_at, updated_at
FROM accounts
ORDER BY updated_at DESC, screen_name
LIMIT 1
`

func (q *Queries) GetLatestAccount(ctx context.Context) (Account, error) {
	row := q.db.QueryRowContext(ctx, getLatestAccount)
	var i Account
	err := row.Scan(
		&i.ScreenName,
		&i.UserID,
		&i.Token,
		&i.TokenSecret,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listAccounts = `-- name: ListAccounts :many
SELECT screen_name, user_id, token, token_secret, created_at, updated_at
FROM accounts
ORDER BY screen_name
`

func (q *Queries) ListAccounts(ctx context.Context) ([]Account, error) {
	rows, err := q.db.QueryContext(ctx, listAccounts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Account
	for rows.Next() {
		var i Account
		if err := rows.Scan(
			&i.ScreenName,
			&i.UserID,
			&i.Token,
			&i.TokenSecret,
			&i.CreatedAt,
			&i.UpdatedAt,
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

const deleteAccount = `-- name: DeleteAccount :exec
DELETE FROM accounts WHERE screen_name = ?
`

func (q *Queries) DeleteAccount(ctx context.Context, screenName string) error {
	_, err := q.db.ExecContext(ctx, deleteAccount, screenName)
	return err
}
