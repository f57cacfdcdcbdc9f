// Package media uploads images and video to the Twitter media endpoint,
// either in one request or through the chunked INIT/APPEND/FINALIZE/STATUS
// protocol.
package media

import (
	"context"
	"time"

	"github.com/abdulachik/twapi/internal/oauth1"
	"github.com/abdulachik/twapi/internal/transport"
)

const (
	UploadURL   = "https://upload.twitter.com/1.1/media/upload.json"
	MetadataURL = "https://upload.twitter.com/1.1/media/metadata/create.json"

	// ChunkSize is the APPEND payload size for every segment but the last.
	ChunkSize int64 = 5_000_000

	defaultCheckAfter = time.Second
)

// Media categories accepted by INIT.
const (
	CategoryTweetImage = "tweet_image"
	CategoryTweetGIF   = "tweet_gif"
	CategoryTweetVideo = "tweet_video"
	CategoryAmplify    = "amplify_video"
)

// Client is the signed API surface the uploader needs.
type Client interface {
	Get(ctx context.Context, uri string, query oauth1.Params) (*transport.Response, error)
	PostMultipart(ctx context.Context, uri string, query oauth1.Params, form *transport.Multipart) (*transport.Response, error)
	PostJSON(ctx context.Context, uri string, query oauth1.Params, body any) (*transport.Response, error)
}

// State is the position of an upload in its lifecycle.
type State int

const (
	StateInit State = iota
	StateAppending
	StateFinalizing
	StateProcessing
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateAppending:
		return "appending"
	case StateFinalizing:
		return "finalizing"
	case StateProcessing:
		return "processing"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions follow.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// Processing states reported in processing_info.state.
const (
	processingPending    = "pending"
	processingInProgress = "in_progress"
	processingSucceeded  = "succeeded"
	processingFailed     = "failed"
)

// ChunkedRequest describes a file to upload in segments.
type ChunkedRequest struct {
	Path          string
	MediaType     string
	MediaCategory string
	// AdditionalOwners is a comma-separated list of user ids.
	AdditionalOwners string
}

// Session is the per-upload bookkeeping owned by a single UploadChunked call.
type Session struct {
	MediaID    string
	TotalBytes int64
	FilePath   string
	ChunkSize  int64
	State      State
	Segments   int
}

// Result is the outcome of a completed upload.
type Result struct {
	MediaID  string
	State    State
	Segments int
	// Response is the last response seen: FINALIZE, or the final STATUS.
	Response *transport.Response
}

// Observer is notified of state transitions. It must not block.
type Observer func(s Session)
