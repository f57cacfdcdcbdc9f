package db

import (
	"context"
)

const createWebhookEvent = `-- name: CreateWebhookEvent :one
INSERT INTO webhook_events (body, signature, signature_valid, remote_ip)
VALUES (?, ?, ?, ?)
RETURNING id
`

type CreateWebhookEventParams struct {
	Body           string
	Signature      string
	SignatureValid bool
	RemoteIP       string
}

func (q *Queries) CreateWebhookEvent(ctx context.Context, arg CreateWebhookEventParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, createWebhookEvent,
		arg.Body,
		arg.Signature,
		arg.SignatureValid,
		arg.RemoteIP,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const listWebhookEvents = `-- name: ListWebhookEvents :many
SELECT id, body, signature, signature_valid, remote_ip, received_at
FROM webhook_events
ORDER BY id DESC
LIMIT ?
`

func (q *Queries) ListWebhookEvents(ctx context.Context, limit int64) ([]WebhookEvent, error) {
	rows, err := q.db.QueryContext(ctx, listWebhookEvents, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []WebhookEvent
	for rows.Next() {
		var i WebhookEvent
		if err := rows.Scan(
			&i.ID,
			&i.Body,
			&i.Signature,
			&i.SignatureValid,
			&i.RemoteIP,
			&i.ReceivedAt,
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

const countWebhookEvents = `-- name: CountWebhookEvents :one
SELECT COUNT(*) FROM webhook_events
`

func (q *Queries) CountWebhookEvents(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countWebhookEvents)
	var count int64
	err := row.Scan(&count)
	return count, err
}
