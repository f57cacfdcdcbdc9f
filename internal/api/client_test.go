package api

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdulachik/twapi/internal/oauth1"
	"github.com/abdulachik/twapi/internal/transport"
	"github.com/abdulachik/twapi/internal/transport/transporttest"
)

// capture records what each request was signed over.
type capture struct {
	method string
	uri    string
	params oauth1.Params
}

func (c *capture) Authorization(method, uri string, params oauth1.Params) string {
	c.method, c.uri, c.params = method, uri, params
	return "signed"
}

func TestClient_SigningSets(t *testing.T) {
	query := oauth1.Params{{Name: "q", Value: "1"}}
	form := oauth1.Params{{Name: "f", Value: "2"}}

	tests := []struct {
		name       string
		call       func(c *Client) error
		wantMethod string
		wantParams oauth1.Params
	}{
		{
			name: "get signs query",
			call: func(c *Client) error {
				_, err := c.Get(context.Background(), "https://x", query)
				return err
			},
			wantMethod: "GET",
			wantParams: query,
		},
		{
			name: "post signs query and form",
			call: func(c *Client) error {
				_, err := c.Post(context.Background(), "https://x", query, form)
				return err
			},
			wantMethod: "POST",
			wantParams: query.Concat(form),
		},
		{
			name: "put signs query",
			call: func(c *Client) error {
				_, err := c.Put(context.Background(), "https://x", query)
				return err
			},
			wantMethod: "PUT",
			wantParams: query,
		},
		{
			name: "delete signs query",
			call: func(c *Client) error {
				_, err := c.Delete(context.Background(), "https://x", query)
				return err
			},
			wantMethod: "DELETE",
			wantParams: query,
		},
		{
			name: "json signs query only",
			call: func(c *Client) error {
				_, err := c.PostJSON(context.Background(), "https://x", query, map[string]string{"f": "2"})
				return err
			},
			wantMethod: "POST",
			wantParams: query,
		},
		{
			name: "multipart signs query only",
			call: func(c *Client) error {
				_, err := c.PostMultipart(context.Background(), "https://x", query, transport.NewMultipart().Text("f", "2"))
				return err
			},
			wantMethod: "POST",
			wantParams: query,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			strategy := &capture{}
			rec := transporttest.New(transporttest.Reply{StatusCode: 200})
			require.NoError(t, tt.call(NewClient(strategy, rec)))

			assert.Equal(t, tt.wantMethod, strategy.method)
			assert.Equal(t, "https://x", strategy.uri)
			assert.Equal(t, tt.wantParams, strategy.params)

			calls := rec.Calls()
			require.Len(t, calls, 1)
			assert.Equal(t, "signed", calls[0].Authorization)
		})
	}
}

func TestClient_VerifyCredentials(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		rec := transporttest.New(transporttest.Reply{StatusCode: 200, Body: `{"id_str":"6253282","screen_name":"twitterapi","name":"Twitter API"}`})
		user, err := NewClient(oauth1.NewBearerAuth("t"), rec).VerifyCredentials(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "twitterapi", user.ScreenName)
		assert.Equal(t, "6253282", user.ID)
		assert.Equal(t, VerifyCredentialsURL, rec.Calls()[0].URI)
	})

	t.Run("unauthorized", func(t *testing.T) {
		rec := transporttest.New(transporttest.Reply{StatusCode: 401, Body: `{"errors":[{"code":89}]}`})
		_, err := NewClient(oauth1.NewBearerAuth("t"), rec).VerifyCredentials(context.Background())

		var serr *StatusError
		require.True(t, errors.As(err, &serr))
		assert.Equal(t, 401, serr.StatusCode)
	})

	t.Run("missing screen name", func(t *testing.T) {
		rec := transporttest.New(transporttest.Reply{StatusCode: 200, Body: `{}`})
		_, err := NewClient(oauth1.NewBearerAuth("t"), rec).VerifyCredentials(context.Background())

		var merr *transport.MalformedResponseError
		require.True(t, errors.As(err, &merr))
		assert.Equal(t, "screen_name", merr.Field)
	})
}

func TestClient_UpdateStatus(t *testing.T) {
	strategy := &capture{}
	rec := transporttest.New(transporttest.Reply{StatusCode: 200, Body: `{"id_str":"1","text":"hi"}`})

	tweet, err := NewClient(strategy, rec).UpdateStatus(context.Background(), "hi", "10", "20")
	require.NoError(t, err)
	assert.Equal(t, "1", tweet.ID)

	form := rec.Calls()[0].Form
	ids, ok := form.Get("media_ids")
	require.True(t, ok)
	assert.Equal(t, "10,20", ids)
	assert.Equal(t, StatusUpdateURL, strategy.uri)
}

func TestClient_TransportError(t *testing.T) {
	rec := transporttest.New(transporttest.Reply{Err: errors.New("connection refused")})
	_, err := NewClient(oauth1.NewBearerAuth("t"), rec).UpdateStatus(context.Background(), "hi")

	var terr *transport.Error
	require.True(t, errors.As(err, &terr))
}

func TestClient_EmbeddedQuery(t *testing.T) {
	t.Run("moved into signed query", func(t *testing.T) {
		strategy := &capture{}
		rec := transporttest.New(transporttest.Reply{StatusCode: 200})
		_, err := NewClient(strategy, rec).Get(context.Background(), "https://x?command=STATUS&media_id=7", oauth1.Params{{Name: "q", Value: "1"}})
		require.NoError(t, err)

		want := oauth1.Params{
			{Name: "command", Value: "STATUS"},
			{Name: "media_id", Value: "7"},
			{Name: "q", Value: "1"},
		}
		assert.Equal(t, "https://x", strategy.uri)
		assert.Equal(t, want, strategy.params)

		call := rec.Calls()[0]
		assert.Equal(t, "https://x", call.URI)
		assert.Equal(t, want, call.Query)
	})

	t.Run("escaped values decoded", func(t *testing.T) {
		strategy := &capture{}
		rec := transporttest.New(transporttest.Reply{StatusCode: 200})
		_, err := NewClient(strategy, rec).Post(context.Background(), "https://x?status=a%20b", nil, nil)
		require.NoError(t, err)
		assert.Equal(t, oauth1.Params{{Name: "status", Value: "a b"}}, strategy.params)
	})

	t.Run("bad escape", func(t *testing.T) {
		rec := transporttest.New(transporttest.Reply{StatusCode: 200})
		_, err := NewClient(&capture{}, rec).Get(context.Background(), "https://x?a=%zz", nil)
		require.Error(t, err)
		assert.Empty(t, rec.Calls())
	})
}

// counting signs with a new value each time it is asked.
type counting struct{ n int }

func (c *counting) Authorization(method, uri string, params oauth1.Params) string {
	c.n++
	return fmt.Sprintf("signed-%d", c.n)
}

func TestClient_AuthorizerSignsEachCall(t *testing.T) {
	strategy := &counting{}
	authorize := NewClient(strategy, transporttest.New()).authorizer("GET", "https://x", nil)

	first, second := authorize(), authorize()
	assert.Equal(t, "signed-1", first)
	assert.Equal(t, "signed-2", second)
}
