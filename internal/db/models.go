package db

import (
	"database/sql"
	"time"
)

// Account is a stored user access token.
type Account struct {
	ScreenName  string
	UserID      string
	Token       string
	TokenSecret string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Upload is one media upload attempt.
type Upload struct {
	ID            int64
	MediaID       string
	FilePath      string
	MediaType     string
	MediaCategory string
	TotalBytes    int64
	Segments      int64
	State         string
	Error         sql.NullString
	CreatedAt     time.Time
	FinishedAt    sql.NullTime
}

// WebhookEvent is a delivered Account Activity payload.
type WebhookEvent struct {
	ID             int64
	Body           string
	Signature      string
	SignatureValid bool
	RemoteIP       string
	ReceivedAt     time.Time
}
