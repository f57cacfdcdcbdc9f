package activity

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abdulachik/twapi/internal/oauth1"
	"github.com/abdulachik/twapi/internal/transport"
)

const apiBase = "https://api.twitter.com/1.1/account_activity"

// Client is the signed API surface used for webhook management.
type Client interface {
	Get(ctx context.Context, uri string, query oauth1.Params) (*transport.Response, error)
	Post(ctx context.Context, uri string, query, form oauth1.Params) (*transport.Response, error)
	Put(ctx context.Context, uri string, query oauth1.Params) (*transport.Response, error)
	Delete(ctx context.Context, uri string, query oauth1.Params) (*transport.Response, error)
}

// URI builds an Account Activity endpoint. An empty env selects the
// environment-less legacy path; resource may be empty.
func URI(kind, env, resource string) string {
	prefix := apiBase + "/" + kind
	if env != "" {
		prefix = apiBase + "/all/" + env + "/" + kind
	}
	if resource != "" {
		return prefix + "/" + resource + ".json"
	}
	return prefix + ".json"
}

// CountURL reports subscription usage for the app.
const CountURL = apiBase + "/all/count.json"

// APIError is a non-2xx Account Activity response.
type APIError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, e.Body)
}

// Webhook is a registered webhook URL.
type Webhook struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	Valid     bool   `json:"valid"`
	CreatedAt string `json:"created_timestamp"`
}

// Manager registers webhooks and subscriptions. Webhook and subscription
// management needs user context; listing subscriptions and counting need
// an application bearer token.
type Manager struct {
	client Client
	env    string
}

// NewManager creates a manager for an environment. env may be empty.
func NewManager(client Client, env string) *Manager {
	return &Manager{client: client, env: env}
}

// RegisterWebhook registers url. Twitter issues a CRC check against it
// before answering.
func (m *Manager) RegisterWebhook(ctx context.Context, url string) (*Webhook, error) {
	resp, err := m.call("register webhook", func() (*transport.Response, error) {
		return m.client.Post(ctx, URI("webhooks", m.env, ""), oauth1.Params{{Name: "url", Value: url}}, nil)
	})
	if err != nil {
		return nil, err
	}

	var hook Webhook
	if err := resp.JSON(&hook); err != nil {
		return nil, err
	}
	if hook.ID == "" {
		return nil, &transport.MalformedResponseError{Field: "id", Body: resp.Text()}
	}

	slog.Info("registered webhook", "id", hook.ID, "url", hook.URL, "valid", hook.Valid)
	return &hook, nil
}

// Webhooks lists registered webhooks.
func (m *Manager) Webhooks(ctx context.Context) ([]Webhook, error) {
	resp, err := m.call("list webhooks", func() (*transport.Response, error) {
		return m.client.Get(ctx, URI("webhooks", m.env, ""), nil)
	})
	if err != nil {
		return nil, err
	}

	var hooks []Webhook
	if err := resp.JSON(&hooks); err != nil {
		return nil, err
	}
	return hooks, nil
}

// TriggerCRC asks Twitter to re-validate a webhook.
func (m *Manager) TriggerCRC(ctx context.Context, webhookID string) error {
	_, err := m.call("trigger crc", func() (*transport.Response, error) {
		return m.client.Put(ctx, URI("webhooks", m.env, webhookID), nil)
	})
	return err
}

// DeleteWebhook removes a webhook registration.
func (m *Manager) DeleteWebhook(ctx context.Context, webhookID string) error {
	_, err := m.call("delete webhook", func() (*transport.Response, error) {
		return m.client.Delete(ctx, URI("webhooks", m.env, webhookID), nil)
	})
	return err
}

// Subscribe subscribes the authenticating user to the environment.
func (m *Manager) Subscribe(ctx context.Context) error {
	_, err := m.call("subscribe", func() (*transport.Response, error) {
		return m.client.Post(ctx, URI("subscriptions", m.env, ""), nil, nil)
	})
	return err
}

// Subscribed reports whether the authenticating user is subscribed.
// Twitter answers 204 when subscribed.
func (m *Manager) Subscribed(ctx context.Context) (bool, error) {
	resp, err := m.client.Get(ctx, URI("subscriptions", m.env, ""), nil)
	if err != nil {
		return false, fmt.Errorf("check subscription: %w", err)
	}
	if resp.IsSuccess() {
		return true, nil
	}
	if resp.StatusCode == 404 {
		return false, nil
	}
	return false, &APIError{Op: "check subscription", StatusCode: resp.StatusCode, Body: resp.Text()}
}

// Unsubscribe removes the authenticating user's subscription.
func (m *Manager) Unsubscribe(ctx context.Context) error {
	_, err := m.call("unsubscribe", func() (*transport.Response, error) {
		return m.client.Delete(ctx, URI("subscriptions", m.env, ""), nil)
	})
	return err
}

// SubscriptionList returns the raw subscriptions/list response.
func (m *Manager) SubscriptionList(ctx context.Context) (*transport.Response, error) {
	return m.call("list subscriptions", func() (*transport.Response, error) {
		return m.client.Get(ctx, URI("subscriptions", m.env, "list"), nil)
	})
}

// SubscriptionCount returns the raw all/count response.
func (m *Manager) SubscriptionCount(ctx context.Context) (*transport.Response, error) {
	return m.call("count subscriptions", func() (*transport.Response, error) {
		return m.client.Get(ctx, CountURL, nil)
	})
}

func (m *Manager) call(op string, fn func() (*transport.Response, error)) (*transport.Response, error) {
	resp, err := fn()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !resp.IsSuccess() {
		return nil, &APIError{Op: op, StatusCode: resp.StatusCode, Body: resp.Text()}
	}
	return resp, nil
}
