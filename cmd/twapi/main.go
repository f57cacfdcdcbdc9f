package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/abdulachik/twapi/internal/app"
	"github.com/abdulachik/twapi/internal/config"
	"github.com/abdulachik/twapi/internal/media"
)

var rootCmd = &cobra.Command{
	Use:   "twapi",
	Short: "Signed Twitter API calls and chunked media uploads",
	Long: `twapi signs Twitter API v1.1 requests with OAuth1 (HMAC-SHA1), runs the
three-legged login, uploads media in chunks and serves Account Activity
webhooks.`,
	SilenceUsage: true,
}

func init() {
	// Load .env file if present
	_ = godotenv.Load()

	// Set up logging
	level := slog.LevelInfo
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		if err := level.UnmarshalText([]byte(strings.ToLower(v))); err != nil {
			level = slog.LevelInfo
		}
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}

// openApp loads configuration, runs validate and opens the store.
func openApp(ctx context.Context, validate func(*config.Config) error) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	a, err := app.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open app: %w", err)
	}
	return a, nil
}

// logUploadFailure reports which protocol step failed before the error is
// returned from RunE.
func logUploadFailure(err error) {
	var stageErr *media.UploadStageError
	var ioErr *media.FileIOError
	var procErr *media.ProcessingError
	switch {
	case errors.As(err, &stageErr):
		slog.Error("upload failed",
			"stage", stageErr.Stage,
			"segment", stageErr.Segment,
			"status", stageErr.StatusCode,
			"media_id", stageErr.MediaID,
		)
	case errors.As(err, &ioErr):
		slog.Error("upload failed reading file", "path", ioErr.Path, "segment", ioErr.Segment, "error", ioErr.Err)
	case errors.As(err, &procErr):
		slog.Error("media processing failed", "media_id", procErr.MediaID, "name", procErr.Name, "message", procErr.Message)
	case errors.Is(err, media.ErrProcessingTimeout):
		slog.Error("media processing did not finish in time")
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
