// Package poster publishes tweets, uploading any attached media first.
package poster

import (
	"context"
)

// Media is a local file to attach to a post.
type Media struct {
	Path      string
	MediaType string
	Category  string
	AltText   string
}

// PostContent represents the content to be posted.
type PostContent struct {
	Text  string
	Media []Media
}

// PostResult represents the result of a post.
type PostResult struct {
	PostID   string
	PostURL  string
	MediaIDs []string
}

// Poster is the interface for posting to social media platforms.
type Poster interface {
	// Platform returns the name of the platform.
	Platform() string

	// Post publishes content to the platform.
	Post(ctx context.Context, content PostContent) (*PostResult, error)

	// ValidateCredentials checks if the credentials are valid.
	ValidateCredentials(ctx context.Context) error
}
