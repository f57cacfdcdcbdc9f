package media

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/docker/go-units"

	"github.com/abdulachik/twapi/internal/oauth1"
	"github.com/abdulachik/twapi/internal/transport"
)

// Config holds configuration for the Uploader.
type Config struct {
	Client      Client
	UploadURL   string
	MetadataURL string

	// MaxProcessingWait caps the total time spent waiting on STATUS.
	// Zero means no cap.
	MaxProcessingWait time.Duration
	// MaxStatusChecks caps the number of STATUS calls. Zero means no cap.
	MaxStatusChecks int

	// Sleep waits for d or until ctx is done. Defaults to a timer.
	Sleep func(ctx context.Context, d time.Duration) error
	// Observer, if set, sees every state transition.
	Observer Observer
}

// Uploader drives media uploads. It holds no per-upload state and is safe
// for concurrent use.
type Uploader struct {
	client            Client
	uploadURL         string
	metadataURL       string
	maxProcessingWait time.Duration
	maxStatusChecks   int
	sleep             func(ctx context.Context, d time.Duration) error
	observer          Observer
}

// NewUploader creates a new uploader.
func NewUploader(cfg Config) *Uploader {
	u := &Uploader{
		client:            cfg.Client,
		uploadURL:         cfg.UploadURL,
		metadataURL:       cfg.MetadataURL,
		maxProcessingWait: cfg.MaxProcessingWait,
		maxStatusChecks:   cfg.MaxStatusChecks,
		sleep:             cfg.Sleep,
		observer:          cfg.Observer,
	}
	if u.uploadURL == "" {
		u.uploadURL = UploadURL
	}
	if u.metadataURL == "" {
		u.metadataURL = MetadataURL
	}
	if u.sleep == nil {
		u.sleep = sleepContext
	}
	return u
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// UploadChunked uploads the file at req.Path in ChunkSize segments and waits
// for server-side processing to finish. It stops at the first non-2xx
// response; the abandoned media id is left to expire.
func (u *Uploader) UploadChunked(ctx context.Context, req ChunkedRequest) (*Result, error) {
	info, err := os.Stat(req.Path)
	if err != nil {
		return nil, &FileIOError{Path: req.Path, Segment: -1, Err: err}
	}
	if info.IsDir() {
		return nil, &FileIOError{Path: req.Path, Segment: -1, Err: fmt.Errorf("is a directory")}
	}

	session := &Session{
		TotalBytes: info.Size(),
		FilePath:   req.Path,
		ChunkSize:  ChunkSize,
		State:      StateInit,
	}
	u.notify(session)

	slog.Info("starting chunked upload",
		"path", req.Path,
		"size", units.HumanSize(float64(session.TotalBytes)),
		"media_type", req.MediaType,
		"media_category", req.MediaCategory,
	)

	if err := u.initUpload(ctx, session, req); err != nil {
		return nil, err
	}

	u.transition(session, StateAppending)
	for i := 0; i < ChunkCount(session.TotalBytes, session.ChunkSize); i++ {
		if err := u.appendChunk(ctx, session, i); err != nil {
			return nil, err
		}
	}

	u.transition(session, StateFinalizing)
	resp, err := u.finalize(ctx, session)
	if err != nil {
		return nil, err
	}

	return u.awaitProcessing(ctx, session, resp)
}

func (u *Uploader) initUpload(ctx context.Context, s *Session, req ChunkedRequest) error {
	form := transport.NewMultipart().
		Text("command", string(StageInit)).
		Text("total_bytes", strconv.FormatInt(s.TotalBytes, 10)).
		Text("media_type", req.MediaType)
	if req.MediaCategory != "" {
		form.Text("media_category", req.MediaCategory)
	}
	if req.AdditionalOwners != "" {
		form.Text("additional_owners", req.AdditionalOwners)
	}

	resp, err := u.client.PostMultipart(ctx, u.uploadURL, nil, form)
	if err != nil {
		return fmt.Errorf("media INIT: %w", err)
	}
	if !resp.IsSuccess() {
		return stageError(StageInit, 0, "", resp)
	}

	mediaID, err := resp.String("media_id_string")
	if err != nil {
		return err
	}
	s.MediaID = mediaID

	slog.Debug("media INIT complete", "media_id", mediaID)
	return nil
}

func (u *Uploader) appendChunk(ctx context.Context, s *Session, index int) error {
	data, err := readChunk(s.FilePath, s.TotalBytes, s.ChunkSize, index)
	if err != nil {
		return err
	}

	form := transport.NewMultipart().
		Text("command", string(StageAppend)).
		Text("media_id", s.MediaID).
		Text("segment_index", strconv.Itoa(index)).
		File("media", filepath.Base(s.FilePath), data)

	resp, err := u.client.PostMultipart(ctx, u.uploadURL, nil, form)
	if err != nil {
		return fmt.Errorf("media APPEND segment %d: %w", index, err)
	}
	if !resp.IsSuccess() {
		return stageError(StageAppend, index, s.MediaID, resp)
	}

	s.Segments = index + 1
	slog.Debug("media APPEND complete",
		"media_id", s.MediaID,
		"segment", index,
		"size", units.HumanSize(float64(len(data))),
	)
	return nil
}

func (u *Uploader) finalize(ctx context.Context, s *Session) (*transport.Response, error) {
	form := transport.NewMultipart().
		Text("command", string(StageFinalize)).
		Text("media_id", s.MediaID)

	resp, err := u.client.PostMultipart(ctx, u.uploadURL, nil, form)
	if err != nil {
		return nil, fmt.Errorf("media FINALIZE: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, stageError(StageFinalize, 0, s.MediaID, resp)
	}

	slog.Debug("media FINALIZE complete", "media_id", s.MediaID, "processing", resp.Has("processing_info"))
	return resp, nil
}

// Upload sends a small file in a single multipart request and returns the
// media id.
func (u *Uploader) Upload(ctx context.Context, path, additionalOwners string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", &FileIOError{Path: path, Segment: -1, Err: err}
	}

	form := transport.NewMultipart()
	if additionalOwners != "" {
		form.Text("additional_owners", additionalOwners)
	}
	form.File("media", filepath.Base(path), data)

	resp, err := u.client.PostMultipart(ctx, u.uploadURL, nil, form)
	if err != nil {
		return "", fmt.Errorf("media upload: %w", err)
	}
	if !resp.IsSuccess() {
		return "", stageError(StageSimple, 0, "", resp)
	}

	mediaID, err := resp.String("media_id_string")
	if err != nil {
		return "", err
	}

	slog.Info("uploaded media", "media_id", mediaID, "size", units.HumanSize(float64(len(data))))
	return mediaID, nil
}

// CreateMetadata attaches alt text to uploaded media.
func (u *Uploader) CreateMetadata(ctx context.Context, mediaID, altText string) error {
	body := map[string]any{
		"media_id": mediaID,
		"alt_text": map[string]string{"text": altText},
	}

	resp, err := u.client.PostJSON(ctx, u.metadataURL, nil, body)
	if err != nil {
		return fmt.Errorf("create media metadata: %w", err)
	}
	if !resp.IsSuccess() {
		return stageError(StageMetadata, 0, mediaID, resp)
	}
	return nil
}

// Status performs a single STATUS call.
func (u *Uploader) Status(ctx context.Context, mediaID string) (*transport.Response, error) {
	query := oauth1.Params{
		{Name: "command", Value: string(StageStatus)},
		{Name: "media_id", Value: mediaID},
	}

	resp, err := u.client.Get(ctx, u.uploadURL, query)
	if err != nil {
		return nil, fmt.Errorf("media STATUS: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, stageError(StageStatus, 0, mediaID, resp)
	}
	return resp, nil
}

func (u *Uploader) transition(s *Session, state State) {
	s.State = state
	u.notify(s)
}

func (u *Uploader) notify(s *Session) {
	if u.observer != nil {
		u.observer(*s)
	}
}
