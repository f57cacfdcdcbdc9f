// Package auth runs the three-legged OAuth1 handshake: obtaining a request
// token, sending the user to authorize it, and exchanging the verifier for an
// access token.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/abdulachik/twapi/internal/oauth1"
	"github.com/abdulachik/twapi/internal/transport"
)

// Endpoints are the handshake URLs.
type Endpoints struct {
	RequestTokenURL string
	AuthorizeURL    string
	AccessTokenURL  string
}

// AuthorizeEndpoint asks the user to approve the app on every login.
var AuthorizeEndpoint = Endpoints{
	RequestTokenURL: "https://api.twitter.com/oauth/request_token",
	AuthorizeURL:    "https://api.twitter.com/oauth/authorize",
	AccessTokenURL:  "https://api.twitter.com/oauth/access_token",
}

// AuthenticateEndpoint skips the approval screen for users who already
// authorized the app ("Sign in with Twitter").
var AuthenticateEndpoint = Endpoints{
	RequestTokenURL: "https://api.twitter.com/oauth/request_token",
	AuthorizeURL:    "https://api.twitter.com/oauth/authenticate",
	AccessTokenURL:  "https://api.twitter.com/oauth/access_token",
}

// Access types accepted by x_auth_access_type.
const (
	AccessRead  = "read"
	AccessWrite = "write"
)

// CallbackOOB requests PIN-based authorization.
const CallbackOOB = "oob"

// RequestToken is the temporary credential issued by the first leg.
type RequestToken struct {
	Token             string
	TokenSecret       string
	CallbackConfirmed bool
	AuthorizeURL      string
}

// AccessToken is the long-lived user credential.
type AccessToken struct {
	Token       string
	TokenSecret string
	UserID      string
	ScreenName  string
}

// Credentials returns user credentials for the given consumer.
func (a *AccessToken) Credentials(consumerKey, consumerSecret string) oauth1.Credentials {
	return oauth1.Credentials{
		ConsumerKey:    consumerKey,
		ConsumerSecret: consumerSecret,
		Token:          a.Token,
		TokenSecret:    a.TokenSecret,
	}
}

// TokenExchangeError reports a non-2xx handshake response.
type TokenExchangeError struct {
	StatusCode int
	Body       string
}

func (e *TokenExchangeError) Error() string {
	return fmt.Sprintf("token exchange failed: status %d: %s", e.StatusCode, e.Body)
}

// ExchangerConfig holds configuration for the Exchanger.
type ExchangerConfig struct {
	Transport transport.Transport
	Signer    *oauth1.Signer
	Endpoints Endpoints
}

// Exchanger performs the handshake calls.
type Exchanger struct {
	transport transport.Transport
	signer    *oauth1.Signer
	endpoints Endpoints
}

// NewExchanger creates an exchanger. Missing signer and endpoints get
// defaults.
func NewExchanger(cfg ExchangerConfig) *Exchanger {
	signer := cfg.Signer
	if signer == nil {
		signer = oauth1.NewSigner(oauth1.SignerConfig{})
	}
	endpoints := cfg.Endpoints
	if endpoints.RequestTokenURL == "" {
		endpoints = AuthorizeEndpoint
	}
	return &Exchanger{transport: cfg.Transport, signer: signer, endpoints: endpoints}
}

// RequestToken performs the first leg. accessType may be empty.
func (e *Exchanger) RequestToken(ctx context.Context, consumerKey, consumerSecret, callbackURI, accessType string) (*RequestToken, error) {
	header := oauth1.Params{{Name: "oauth_callback", Value: callbackURI}}
	if accessType != "" {
		header = header.Add("x_auth_access_type", accessType)
	}

	values, body, err := e.exchange(ctx, e.endpoints.RequestTokenURL, oauth1.SigningKey(consumerSecret, ""), consumerKey, header)
	if err != nil {
		return nil, fmt.Errorf("request token: %w", err)
	}

	fields, err := required(values, body, "oauth_token", "oauth_token_secret")
	if err != nil {
		return nil, err
	}

	token := &RequestToken{
		Token:             fields[0],
		TokenSecret:       fields[1],
		CallbackConfirmed: values.Get("oauth_callback_confirmed") == "true",
		AuthorizeURL:      e.endpoints.AuthorizeURL + "?oauth_token=" + oauth1.PercentEncode(fields[0]),
	}

	slog.Debug("obtained request token", "callback_confirmed", token.CallbackConfirmed)
	return token, nil
}

// AccessToken performs the final leg with the verifier the user returned.
func (e *Exchanger) AccessToken(ctx context.Context, consumerKey, consumerSecret, oauthToken, oauthTokenSecret, oauthVerifier string) (*AccessToken, error) {
	header := oauth1.Params{
		{Name: "oauth_token", Value: oauthToken},
		{Name: "oauth_verifier", Value: oauthVerifier},
	}

	values, body, err := e.exchange(ctx, e.endpoints.AccessTokenURL, oauth1.SigningKey(consumerSecret, oauthTokenSecret), consumerKey, header)
	if err != nil {
		return nil, fmt.Errorf("access token: %w", err)
	}

	fields, err := required(values, body, "oauth_token", "oauth_token_secret", "user_id", "screen_name")
	if err != nil {
		return nil, err
	}

	token := &AccessToken{
		Token:       fields[0],
		TokenSecret: fields[1],
		UserID:      fields[2],
		ScreenName:  fields[3],
	}

	slog.Info("obtained access token", "screen_name", token.ScreenName, "user_id", token.UserID)
	return token, nil
}

// exchange signs a header-only POST and parses the urlencoded reply.
// Each attempt is signed with a fresh nonce and timestamp.
func (e *Exchanger) exchange(ctx context.Context, uri, signingKey, consumerKey string, header oauth1.Params) (url.Values, string, error) {
	authorize := func() string {
		return e.signer.Sign(signingKey, consumerKey, header, http.MethodPost, uri, nil)
	}

	resp, err := e.transport.Post(ctx, uri, authorize, nil, nil)
	if err != nil {
		return nil, "", err
	}
	if !resp.IsSuccess() {
		return nil, "", &TokenExchangeError{StatusCode: resp.StatusCode, Body: resp.Text()}
	}

	values, err := transport.ParseQuery(resp.Body)
	if err != nil {
		return nil, "", &transport.MalformedResponseError{Field: "body", Body: resp.Text()}
	}
	return values, resp.Text(), nil
}

func required(values url.Values, body string, names ...string) ([]string, error) {
	out := make([]string, len(names))
	for i, name := range names {
		v := values.Get(name)
		if v == "" {
			return nil, &transport.MalformedResponseError{Field: name, Body: body}
		}
		out[i] = v
	}
	return out, nil
}
