package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/abdulachik/twapi/internal/activity"
	"github.com/abdulachik/twapi/internal/api"
	"github.com/abdulachik/twapi/internal/auth"
	"github.com/abdulachik/twapi/internal/config"
	"github.com/abdulachik/twapi/internal/db"
	"github.com/abdulachik/twapi/internal/media"
	"github.com/abdulachik/twapi/internal/oauth1"
	"github.com/abdulachik/twapi/internal/poster"
	"github.com/abdulachik/twapi/internal/transport"
)

// ErrNoAccount is returned when user credentials are neither configured nor
// stored by a previous login.
var ErrNoAccount = errors.New("no access token configured or stored (run `twapi login`)")

// App is the main application container holding all dependencies.
type App struct {
	Config    *config.Config
	Store     *db.Store
	Transport transport.Transport
	Signer    *oauth1.Signer
}

// New creates a new application instance with all dependencies wired up.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// Create database connection
	store, err := db.NewStore(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, err
	}

	tr := transport.NewHTTPTransport(transport.HTTPConfig{
		Timeout:  cfg.HTTPTimeout,
		RetryMax: cfg.HTTPRetryMax,
		Logger:   slog.Default(),
	})

	return &App{
		Config:    cfg,
		Store:     store,
		Transport: tr,
		Signer:    oauth1.NewSigner(oauth1.SignerConfig{}),
	}, nil
}

// Close closes all resources.
func (a *App) Close() error {
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

// Credentials resolves user-context credentials. Configured tokens win over
// the most recently stored login.
func (a *App) Credentials(ctx context.Context) (oauth1.Credentials, error) {
	if err := a.Config.ValidateForApp(); err != nil {
		return oauth1.Credentials{}, err
	}

	creds := oauth1.Credentials{
		ConsumerKey:    a.Config.ConsumerKey,
		ConsumerSecret: a.Config.ConsumerSecret,
	}
	if a.Config.HasUserToken() {
		// A half-configured token is an error, not a cue to use the stored login.
		if err := a.Config.ValidateForUser(); err != nil {
			return oauth1.Credentials{}, err
		}
		creds.Token = a.Config.AccessToken
		creds.TokenSecret = a.Config.AccessTokenSecret
		return creds, nil
	}

	acct, err := a.Store.GetLatestAccount(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return oauth1.Credentials{}, ErrNoAccount
	}
	if err != nil {
		return oauth1.Credentials{}, fmt.Errorf("load stored account: %w", err)
	}

	slog.Debug("using stored account", "screen_name", acct.ScreenName)
	creds.Token = acct.Token
	creds.TokenSecret = acct.TokenSecret
	return creds, nil
}

// UserClient returns a client signing as the resolved user.
func (a *App) UserClient(ctx context.Context) (*api.Client, error) {
	creds, err := a.Credentials(ctx)
	if err != nil {
		return nil, err
	}
	return api.NewClient(oauth1.NewUserAuth(creds, a.Signer), a.Transport), nil
}

// BearerClient returns an application-only client.
func (a *App) BearerClient() (*api.Client, error) {
	if err := a.Config.ValidateForBearer(); err != nil {
		return nil, err
	}
	return api.NewClient(oauth1.NewBearerAuth(a.Config.BearerToken), a.Transport), nil
}

// Exchanger returns the token exchanger used by `twapi login`.
func (a *App) Exchanger(endpoints auth.Endpoints) *auth.Exchanger {
	return auth.NewExchanger(auth.ExchangerConfig{
		Transport: a.Transport,
		Signer:    a.Signer,
		Endpoints: endpoints,
	})
}

// Uploader returns a media uploader over client. The processing wait is
// bounded by MEDIA_PROCESSING_TIMEOUT.
func (a *App) Uploader(client media.Client, observer media.Observer) *media.Uploader {
	return media.NewUploader(media.Config{
		Client:            client,
		MaxProcessingWait: a.Config.MediaProcessingTimeout,
		Observer:          observer,
	})
}

// Poster returns a poster that records every chunked upload it performs.
func (a *App) Poster(client *api.Client, tracker *UploadTracker) *poster.TwitterPoster {
	var observer media.Observer
	if tracker != nil {
		observer = tracker.Observe
	}
	return poster.NewTwitterPoster(poster.TwitterConfig{
		Client:   client,
		Uploader: a.Uploader(client, observer),
	})
}

// Activity returns the webhook/subscription manager for WEBHOOK_ENV.
func (a *App) Activity(client *api.Client) *activity.Manager {
	return activity.NewManager(client, a.Config.WebhookEnv)
}

// SaveAccount stores the credentials produced by a login.
func (a *App) SaveAccount(ctx context.Context, tok *auth.AccessToken) error {
	err := a.Store.UpsertAccount(ctx, db.UpsertAccountParams{
		ScreenName:  tok.ScreenName,
		UserID:      tok.UserID,
		Token:       tok.Token,
		TokenSecret: tok.TokenSecret,
	})
	if err != nil {
		return fmt.Errorf("save account %s: %w", tok.ScreenName, err)
	}
	return nil
}
