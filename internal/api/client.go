// Package api binds a signing strategy to a transport. Each call is signed
// over exactly the parameters it sends.
package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/abdulachik/twapi/internal/oauth1"
	"github.com/abdulachik/twapi/internal/transport"
)

// Endpoint URLs used outside the media upload flow.
const (
	VerifyCredentialsURL = "https://api.twitter.com/1.1/account/verify_credentials.json"
	StatusUpdateURL      = "https://api.twitter.com/1.1/statuses/update.json"
)

// Client signs and dispatches API calls.
type Client struct {
	strategy  oauth1.Strategy
	transport transport.Transport
}

// NewClient creates a client for the given strategy and transport.
func NewClient(strategy oauth1.Strategy, tr transport.Transport) *Client {
	return &Client{strategy: strategy, transport: tr}
}

// Strategy returns the signing strategy in use.
func (c *Client) Strategy() oauth1.Strategy {
	return c.strategy
}

// Get signs over query and sends it in the URL.
func (c *Client) Get(ctx context.Context, uri string, query oauth1.Params) (*transport.Response, error) {
	uri, query, err := splitQuery(uri, query)
	if err != nil {
		return nil, err
	}
	return c.transport.Get(ctx, uri, c.authorizer(http.MethodGet, uri, query), query)
}

// Post sends an urlencoded form. Both query and form are signed.
func (c *Client) Post(ctx context.Context, uri string, query, form oauth1.Params) (*transport.Response, error) {
	uri, query, err := splitQuery(uri, query)
	if err != nil {
		return nil, err
	}
	return c.transport.Post(ctx, uri, c.authorizer(http.MethodPost, uri, query.Concat(form)), query, form)
}

// Put signs over query and sends it in the URL.
func (c *Client) Put(ctx context.Context, uri string, query oauth1.Params) (*transport.Response, error) {
	uri, query, err := splitQuery(uri, query)
	if err != nil {
		return nil, err
	}
	return c.transport.Put(ctx, uri, c.authorizer(http.MethodPut, uri, query), query)
}

// Delete signs over query and sends it in the URL.
func (c *Client) Delete(ctx context.Context, uri string, query oauth1.Params) (*transport.Response, error) {
	uri, query, err := splitQuery(uri, query)
	if err != nil {
		return nil, err
	}
	return c.transport.Delete(ctx, uri, c.authorizer(http.MethodDelete, uri, query), query)
}

// PostJSON signs over the query only; JSON bodies are not part of the
// OAuth1 base string.
func (c *Client) PostJSON(ctx context.Context, uri string, query oauth1.Params, body any) (*transport.Response, error) {
	uri, query, err := splitQuery(uri, query)
	if err != nil {
		return nil, err
	}
	return c.transport.PostJSON(ctx, uri, c.authorizer(http.MethodPost, uri, query), query, body)
}

// PostMultipart signs over the query only; multipart parts are excluded.
func (c *Client) PostMultipart(ctx context.Context, uri string, query oauth1.Params, form *transport.Multipart) (*transport.Response, error) {
	uri, query, err := splitQuery(uri, query)
	if err != nil {
		return nil, err
	}
	return c.transport.PostMultipart(ctx, uri, c.authorizer(http.MethodPost, uri, query), query, form)
}

// authorizer signs anew on every call, so each transport attempt carries a
// fresh nonce and timestamp.
func (c *Client) authorizer(method, uri string, params oauth1.Params) transport.Authorizer {
	return func() string {
		return c.strategy.Authorization(method, uri, params)
	}
}

// splitQuery moves a query string embedded in uri in front of query, in
// wire order, so it is both sent and signed.
func splitQuery(uri string, query oauth1.Params) (string, oauth1.Params, error) {
	base, raw, found := strings.Cut(uri, "?")
	if !found {
		return uri, query, nil
	}

	var embedded oauth1.Params
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		name, value, _ := strings.Cut(pair, "=")
		n, err := url.QueryUnescape(name)
		if err != nil {
			return "", nil, fmt.Errorf("parse query of %s: %w", base, err)
		}
		v, err := url.QueryUnescape(value)
		if err != nil {
			return "", nil, fmt.Errorf("parse query of %s: %w", base, err)
		}
		embedded = embedded.Add(n, v)
	}
	return base, embedded.Concat(query), nil
}
