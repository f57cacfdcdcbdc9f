package app

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"

	"github.com/abdulachik/twapi/internal/db"
	"github.com/abdulachik/twapi/internal/media"
)

// UploadTracker mirrors chunked upload progress into the uploads table. One
// tracker can follow several sequential uploads; each INIT starts a row.
type UploadTracker struct {
	ctx   context.Context
	store *db.Store

	mu      sync.Mutex
	pending map[string]pendingUpload
	current int64
	// failed is the row last closed by an observed failed state, still
	// awaiting its cause from Fail.
	failed int64
}

type pendingUpload struct {
	mediaType string
	category  string
}

// TrackUploads returns a tracker bound to ctx.
func (a *App) TrackUploads(ctx context.Context) *UploadTracker {
	return &UploadTracker{
		ctx:     ctx,
		store:   a.Store,
		pending: make(map[string]pendingUpload),
	}
}

// Expect registers the media type and category of a file about to be
// uploaded, since the session only carries its path.
func (t *UploadTracker) Expect(path, mediaType, category string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending[path] = pendingUpload{mediaType: mediaType, category: category}
}

// Observe is a media.Observer.
func (t *UploadTracker) Observe(s media.Session) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if s.State == media.StateInit && s.MediaID == "" {
		t.failed = 0
		p := t.pending[s.FilePath]
		id, err := t.store.CreateUpload(t.ctx, db.CreateUploadParams{
			FilePath:      s.FilePath,
			MediaType:     p.mediaType,
			MediaCategory: p.category,
			TotalBytes:    s.TotalBytes,
			State:         s.State.String(),
		})
		if err != nil {
			slog.Warn("record upload", "path", s.FilePath, "error", err)
			t.current = 0
			return
		}
		t.current = id
		return
	}

	if t.current == 0 {
		return
	}

	if s.State.Terminal() {
		id := t.current
		t.finish(s.State, nil)
		if s.State == media.StateFailed {
			t.failed = id
		}
		return
	}

	err := t.store.UpdateUploadProgress(t.ctx, db.UpdateUploadProgressParams{
		ID:       t.current,
		MediaID:  s.MediaID,
		Segments: int64(s.Segments),
		State:    s.State.String(),
	})
	if err != nil {
		slog.Warn("update upload progress", "upload_id", t.current, "error", err)
	}
}

// Fail closes the in-flight row with err. When the row was already closed
// by an observed failed state, err is recorded on it instead. Otherwise it
// is a no-op.
func (t *UploadTracker) Fail(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch {
	case t.current != 0:
		t.finish(media.StateFailed, err)
	case t.failed != 0:
		t.current = t.failed
		t.finish(media.StateFailed, err)
	}
	t.failed = 0
}

// Current returns the id of the row being tracked, or 0.
func (t *UploadTracker) Current() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

func (t *UploadTracker) finish(state media.State, cause error) {
	var msg sql.NullString
	if cause != nil {
		msg = sql.NullString{String: cause.Error(), Valid: true}
	}
	if err := t.store.FinishUpload(t.ctx, db.FinishUploadParams{
		ID:    t.current,
		State: state.String(),
		Error: msg,
	}); err != nil {
		slog.Warn("finish upload", "upload_id", t.current, "error", err)
	}
	t.current = 0
}
