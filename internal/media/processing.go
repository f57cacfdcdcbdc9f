package media

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/abdulachik/twapi/internal/transport"
)

// awaitProcessing polls STATUS until processing reaches a terminal state.
// resp is the FINALIZE response; without processing_info the media is ready.
// The first iteration reads FINALIZE's own processing_info, so a terminal
// state there returns without polling and the first STATUS call waits
// FINALIZE's check_after_secs.
func (u *Uploader) awaitProcessing(ctx context.Context, s *Session, resp *transport.Response) (*Result, error) {
	if !resp.Has("processing_info") {
		u.transition(s, StateSucceeded)
		return u.result(s, resp), nil
	}

	var waited time.Duration
	checks := 0
	for {
		state, err := resp.String("processing_info", "state")
		if err != nil {
			return nil, err
		}

		switch state {
		case processingSucceeded:
			u.transition(s, StateSucceeded)
			slog.Info("media processing succeeded", "media_id", s.MediaID, "status_checks", checks)
			return u.result(s, resp), nil
		case processingFailed:
			u.transition(s, StateFailed)
			return nil, processingError(s.MediaID, resp)
		}

		if s.State != StateProcessing {
			u.transition(s, StateProcessing)
		}

		wait := checkAfter(resp)
		if u.maxStatusChecks > 0 && checks >= u.maxStatusChecks {
			return nil, fmt.Errorf("media %s still %s after %d status checks: %w", s.MediaID, state, checks, ErrProcessingTimeout)
		}
		if u.maxProcessingWait > 0 && waited+wait > u.maxProcessingWait {
			return nil, fmt.Errorf("media %s still %s after %s: %w", s.MediaID, state, waited, ErrProcessingTimeout)
		}

		progress, _ := resp.Int("processing_info", "progress_percent")
		slog.Debug("media processing",
			"media_id", s.MediaID,
			"state", state,
			"check_after_secs", int(wait/time.Second),
			"progress_percent", progress,
		)

		if err := u.sleep(ctx, wait); err != nil {
			return nil, err
		}
		waited += wait
		checks++

		resp, err = u.Status(ctx, s.MediaID)
		if err != nil {
			return nil, err
		}
	}
}

// checkAfter reads processing_info.check_after_secs, falling back to one
// second when it is absent or not positive.
func checkAfter(resp *transport.Response) time.Duration {
	secs, err := resp.Int("processing_info", "check_after_secs")
	if err != nil || secs <= 0 {
		return defaultCheckAfter
	}
	return time.Duration(secs) * time.Second
}

func processingError(mediaID string, resp *transport.Response) *ProcessingError {
	name, _ := resp.String("processing_info", "error", "name")
	message, _ := resp.String("processing_info", "error", "message")
	return &ProcessingError{MediaID: mediaID, Name: name, Message: message, Response: resp}
}

func (u *Uploader) result(s *Session, resp *transport.Response) *Result {
	return &Result{
		MediaID:  s.MediaID,
		State:    s.State,
		Segments: s.Segments,
		Response: resp,
	}
}
