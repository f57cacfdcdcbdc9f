package media

import (
	"errors"
	"fmt"

	"github.com/abdulachik/twapi/internal/transport"
)

// Stage names a request of the upload protocol.
type Stage string

const (
	StageInit     Stage = "INIT"
	StageAppend   Stage = "APPEND"
	StageFinalize Stage = "FINALIZE"
	StageStatus   Stage = "STATUS"
	StageSimple   Stage = "UPLOAD"
	StageMetadata Stage = "METADATA"
)

// ErrProcessingTimeout is returned when processing outlasts the configured
// bounds.
var ErrProcessingTimeout = errors.New("media processing timed out")

// UploadStageError is a non-2xx response at some stage. Segment is only
// meaningful for APPEND. MediaID is empty when INIT itself failed.
type UploadStageError struct {
	Stage      Stage
	Segment    int
	StatusCode int
	Body       string
	MediaID    string
}

func (e *UploadStageError) Error() string {
	if e.Stage == StageAppend {
		return fmt.Sprintf("media %s segment %d failed: status %d: %s", e.Stage, e.Segment, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("media %s failed: status %d: %s", e.Stage, e.StatusCode, e.Body)
}

// FileIOError wraps a failure reading the source file. Segment is -1 when
// the failure happened before any chunk was read.
type FileIOError struct {
	Path    string
	Segment int
	Err     error
}

func (e *FileIOError) Error() string {
	if e.Segment < 0 {
		return fmt.Sprintf("read %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("read %s segment %d: %v", e.Path, e.Segment, e.Err)
}

func (e *FileIOError) Unwrap() error {
	return e.Err
}

// ProcessingError reports that the server gave up processing the media.
type ProcessingError struct {
	MediaID  string
	Name     string
	Message  string
	Response *transport.Response
}

func (e *ProcessingError) Error() string {
	if e.Name == "" && e.Message == "" {
		return fmt.Sprintf("media %s processing failed", e.MediaID)
	}
	return fmt.Sprintf("media %s processing failed: %s: %s", e.MediaID, e.Name, e.Message)
}

func stageError(stage Stage, segment int, mediaID string, resp *transport.Response) *UploadStageError {
	return &UploadStageError{
		Stage:      stage,
		Segment:    segment,
		StatusCode: resp.StatusCode,
		Body:       resp.Text(),
		MediaID:    mediaID,
	}
}
