package activity

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdulachik/twapi/internal/api"
	"github.com/abdulachik/twapi/internal/oauth1"
	"github.com/abdulachik/twapi/internal/transport/transporttest"
)

func TestResponseToken(t *testing.T) {
	assert.Equal(t, "fjWHvqibQE5TlTy7oxQHx4miKlsumjStzrgZsaEU8vQ=", Sign("consumer_secret", []byte("crc_token_value")))
	assert.Equal(t, "sha256=fjWHvqibQE5TlTy7oxQHx4miKlsumjStzrgZsaEU8vQ=", ResponseToken("consumer_secret", "crc_token_value"))

	body, err := CRCResponse("consumer_secret", "crc_token_value")
	require.NoError(t, err)
	assert.JSONEq(t, `{"response_token":"sha256=fjWHvqibQE5TlTy7oxQHx4miKlsumjStzrgZsaEU8vQ="}`, string(body))
}

func TestValidSignature(t *testing.T) {
	body := []byte(`{"for_user_id":"2244994945"}`)
	good := "sha256=u4lZKKrBfHwAe+776eHnVf2VV1ggheRb1fS3xokQxlA="

	tests := []struct {
		name      string
		signature string
		secret    string
		body      []byte
		want      bool
	}{
		{"valid", good, "consumer_secret", body, true},
		{"wrong secret", good, "other", body, false},
		{"tampered body", good, "consumer_secret", []byte(`{"for_user_id":"1"}`), false},
		{"missing prefix", "u4lZKKrBfHwAe+776eHnVf2VV1ggheRb1fS3xokQxlA=", "consumer_secret", body, false},
		{"empty", "", "consumer_secret", body, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidSignature(tt.signature, tt.secret, tt.body))
		})
	}
}

func TestURI(t *testing.T) {
	assert.Equal(t, "https://api.twitter.com/1.1/account_activity/webhooks.json", URI("webhooks", "", ""))
	assert.Equal(t, "https://api.twitter.com/1.1/account_activity/all/dev/webhooks.json", URI("webhooks", "dev", ""))
	assert.Equal(t, "https://api.twitter.com/1.1/account_activity/all/dev/webhooks/123.json", URI("webhooks", "dev", "123"))
	assert.Equal(t, "https://api.twitter.com/1.1/account_activity/all/dev/subscriptions/list.json", URI("subscriptions", "dev", "list"))
}

func newManager(rec *transporttest.Recorder) *Manager {
	return NewManager(api.NewClient(oauth1.NewBearerAuth("t"), rec), "dev")
}

func TestManager_Webhooks(t *testing.T) {
	t.Run("register", func(t *testing.T) {
		rec := transporttest.New(transporttest.Reply{StatusCode: 200, Body: `{"id":"1234567890","url":"https://example.com/webhook","valid":true,"created_timestamp":"2016-06-02 T23:54:02 +0000"}`})

		hook, err := newManager(rec).RegisterWebhook(context.Background(), "https://example.com/webhook")
		require.NoError(t, err)
		assert.Equal(t, "1234567890", hook.ID)
		assert.True(t, hook.Valid)

		call := rec.Calls()[0]
		assert.Equal(t, "POST", call.Method)
		assert.Equal(t, URI("webhooks", "dev", ""), call.URI)
		assert.Equal(t, oauth1.Params{{Name: "url", Value: "https://example.com/webhook"}}, call.Query)
	})

	t.Run("register rejected", func(t *testing.T) {
		rec := transporttest.New(transporttest.Reply{StatusCode: 400, Body: `{"errors":[{"code":214,"message":"Webhook URL does not meet the requirements."}]}`})

		_, err := newManager(rec).RegisterWebhook(context.Background(), "http://insecure")
		var aerr *APIError
		require.True(t, errors.As(err, &aerr))
		assert.Equal(t, "register webhook", aerr.Op)
		assert.Equal(t, 400, aerr.StatusCode)
	})

	t.Run("list", func(t *testing.T) {
		rec := transporttest.New(transporttest.Reply{StatusCode: 200, Body: `[{"id":"1","url":"https://a","valid":true},{"id":"2","url":"https://b","valid":false}]`})

		hooks, err := newManager(rec).Webhooks(context.Background())
		require.NoError(t, err)
		require.Len(t, hooks, 2)
		assert.Equal(t, "2", hooks[1].ID)
		assert.False(t, hooks[1].Valid)
	})

	t.Run("trigger crc and delete", func(t *testing.T) {
		rec := transporttest.New(transporttest.Reply{StatusCode: 204}, transporttest.Reply{StatusCode: 204})
		m := newManager(rec)

		require.NoError(t, m.TriggerCRC(context.Background(), "1"))
		require.NoError(t, m.DeleteWebhook(context.Background(), "1"))

		calls := rec.Calls()
		assert.Equal(t, "PUT", calls[0].Method)
		assert.Equal(t, "DELETE", calls[1].Method)
		assert.Equal(t, URI("webhooks", "dev", "1"), calls[1].URI)
	})
}

func TestManager_Subscriptions(t *testing.T) {
	rec := transporttest.New(
		transporttest.Reply{StatusCode: 204},
		transporttest.Reply{StatusCode: 204},
		transporttest.Reply{StatusCode: 404, Body: `{"errors":[{"code":34}]}`},
		transporttest.Reply{StatusCode: 500, Body: "oops"},
		transporttest.Reply{StatusCode: 200, Body: `{"environment":"dev","application_id":"13090192","subscriptions":[{"user_id":"3001969357"}]}`},
		transporttest.Reply{StatusCode: 200, Body: `{"account_name":"my-account","subscriptions_count_all":"1","subscriptions_count_direct_messages":"0"}`},
		transporttest.Reply{StatusCode: 204},
	)
	m := newManager(rec)
	ctx := context.Background()

	require.NoError(t, m.Subscribe(ctx))

	subscribed, err := m.Subscribed(ctx)
	require.NoError(t, err)
	assert.True(t, subscribed)

	subscribed, err = m.Subscribed(ctx)
	require.NoError(t, err)
	assert.False(t, subscribed)

	_, err = m.Subscribed(ctx)
	assert.Error(t, err)

	list, err := m.SubscriptionList(ctx)
	require.NoError(t, err)
	userID, err := list.String("subscriptions", 0, "user_id")
	require.NoError(t, err)
	assert.Equal(t, "3001969357", userID)

	count, err := m.SubscriptionCount(ctx)
	require.NoError(t, err)
	total, err := count.String("subscriptions_count_all")
	require.NoError(t, err)
	assert.Equal(t, "1", total)

	require.NoError(t, m.Unsubscribe(ctx))

	calls := rec.Calls()
	assert.Equal(t, URI("subscriptions", "dev", "list"), calls[4].URI)
	assert.Equal(t, CountURL, calls[5].URI)
	assert.Equal(t, "DELETE", calls[6].Method)
}
