package api

import (
	"context"
	"fmt"
	"strings"

	"github.com/abdulachik/twapi/internal/oauth1"
	"github.com/abdulachik/twapi/internal/transport"
)

// StatusError is a non-2xx reply from a plain API call.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// User is the subset of a user object the CLI reports.
type User struct {
	ID         string `json:"id_str"`
	ScreenName string `json:"screen_name"`
	Name       string `json:"name"`
}

// Tweet is the subset of a status object returned after posting.
type Tweet struct {
	ID   string `json:"id_str"`
	Text string `json:"text"`
}

// VerifyCredentials returns the user the credentials belong to.
func (c *Client) VerifyCredentials(ctx context.Context) (*User, error) {
	resp, err := c.Get(ctx, VerifyCredentialsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("verify credentials: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, &StatusError{Endpoint: "verify_credentials", StatusCode: resp.StatusCode, Body: resp.Text()}
	}

	var user User
	if err := resp.JSON(&user); err != nil {
		return nil, err
	}
	if user.ScreenName == "" {
		return nil, &transport.MalformedResponseError{Field: "screen_name", Body: resp.Text()}
	}
	return &user, nil
}

// UpdateStatus posts a tweet, optionally attaching uploaded media.
func (c *Client) UpdateStatus(ctx context.Context, text string, mediaIDs ...string) (*Tweet, error) {
	form := oauth1.Params{{Name: "status", Value: text}}
	if len(mediaIDs) > 0 {
		form = form.Add("media_ids", strings.Join(mediaIDs, ","))
	}

	resp, err := c.Post(ctx, StatusUpdateURL, nil, form)
	if err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, &StatusError{Endpoint: "statuses/update", StatusCode: resp.StatusCode, Body: resp.Text()}
	}

	id, err := resp.String("id_str")
	if err != nil {
		return nil, err
	}
	text, _ = resp.String("text")
	return &Tweet{ID: id, Text: text}, nil
}
