package poster

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/abdulachik/twapi/internal/api"
	"github.com/abdulachik/twapi/internal/media"
)

// ErrTooLong is returned for text over TwitterMaxLength.
var ErrTooLong = errors.New("tweet exceeds 280 characters")

// ErrTooManyMedia is returned when more than MaxMediaPerTweet files are attached.
var ErrTooManyMedia = errors.New("too many media attachments")

// StatusClient is the subset of api.Client the poster calls.
type StatusClient interface {
	VerifyCredentials(ctx context.Context) (*api.User, error)
	UpdateStatus(ctx context.Context, text string, mediaIDs ...string) (*api.Tweet, error)
}

// MediaUploader is the subset of media.Uploader the poster calls.
type MediaUploader interface {
	UploadChunked(ctx context.Context, req media.ChunkedRequest) (*media.Result, error)
	CreateMetadata(ctx context.Context, mediaID, altText string) error
}

// TwitterPoster posts statuses with the v1.1 API.
type TwitterPoster struct {
	client     StatusClient
	uploader   MediaUploader
	screenName string
}

// TwitterConfig holds configuration for the Twitter poster.
type TwitterConfig struct {
	Client   StatusClient
	Uploader MediaUploader

	// ScreenName is used to build post URLs. ValidateCredentials fills it
	// in when empty.
	ScreenName string
}

// NewTwitterPoster creates a new Twitter poster.
func NewTwitterPoster(cfg TwitterConfig) *TwitterPoster {
	return &TwitterPoster{
		client:     cfg.Client,
		uploader:   cfg.Uploader,
		screenName: cfg.ScreenName,
	}
}

// Platform returns the platform name.
func (t *TwitterPoster) Platform() string {
	return "twitter"
}

// ValidateCredentials validates Twitter credentials.
func (t *TwitterPoster) ValidateCredentials(ctx context.Context) error {
	user, err := t.client.VerifyCredentials(ctx)
	if err != nil {
		return fmt.Errorf("validate credentials: %w", err)
	}
	t.screenName = user.ScreenName
	slog.Debug("twitter credentials valid", "screen_name", user.ScreenName)
	return nil
}

// Post uploads each attachment in order, then publishes the status. The
// first failing upload aborts the post.
func (t *TwitterPoster) Post(ctx context.Context, content PostContent) (*PostResult, error) {
	if !FitsInLimit(content.Text, TwitterMaxLength) {
		return nil, ErrTooLong
	}
	if len(content.Media) > MaxMediaPerTweet {
		return nil, fmt.Errorf("%w: %d (max %d)", ErrTooManyMedia, len(content.Media), MaxMediaPerTweet)
	}

	mediaIDs := make([]string, 0, len(content.Media))
	for _, m := range content.Media {
		res, err := t.uploader.UploadChunked(ctx, media.ChunkedRequest{
			Path:          m.Path,
			MediaType:     m.MediaType,
			MediaCategory: m.Category,
		})
		if err != nil {
			return nil, fmt.Errorf("upload %s: %w", m.Path, err)
		}

		if m.AltText != "" {
			if err := t.uploader.CreateMetadata(ctx, res.MediaID, m.AltText); err != nil {
				return nil, fmt.Errorf("alt text for %s: %w", res.MediaID, err)
			}
		}
		mediaIDs = append(mediaIDs, res.MediaID)
	}

	tweet, err := t.client.UpdateStatus(ctx, content.Text, mediaIDs...)
	if err != nil {
		return nil, fmt.Errorf("post status: %w", err)
	}

	return &PostResult{
		PostID:   tweet.ID,
		PostURL:  t.postURL(tweet.ID),
		MediaIDs: mediaIDs,
	}, nil
}

func (t *TwitterPoster) postURL(id string) string {
	if t.screenName == "" {
		return "https://twitter.com/i/web/status/" + id
	}
	return fmt.Sprintf("https://twitter.com/%s/status/%s", t.screenName, id)
}
