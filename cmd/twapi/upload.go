package main

import (
	"context"
	"fmt"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/docker/go-units"
	"github.com/spf13/cobra"

	"github.com/abdulachik/twapi/internal/config"
	"github.com/abdulachik/twapi/internal/media"
)

var (
	uploadType     string
	uploadCategory string
	uploadAltText  string
	uploadOwners   string
	uploadSimple   bool
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload media and print its media id",
	Long: `Upload a file with the chunked INIT/APPEND/FINALIZE flow and wait for
server-side processing. Every chunked upload is recorded in the history.

Examples:
  twapi upload clip.mp4
  twapi upload photo.jpg --alt-text "A cat on a keyboard"
  twapi upload small.png --simple`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

var uploadStatusCmd = &cobra.Command{
	Use:   "status <media_id>",
	Short: "Query the processing status of uploaded media",
	Args:  cobra.ExactArgs(1),
	RunE:  runUploadStatus,
}

func init() {
	uploadCmd.Flags().StringVar(&uploadType, "type", "", "MIME type (default: from file extension)")
	uploadCmd.Flags().StringVar(&uploadCategory, "category", "", "media_category, e.g. tweet_video (default: from MIME type)")
	uploadCmd.Flags().StringVar(&uploadAltText, "alt-text", "", "Alt text to attach after upload")
	uploadCmd.Flags().StringVar(&uploadOwners, "owners", "", "Comma-separated additional owner user ids")
	uploadCmd.Flags().BoolVar(&uploadSimple, "simple", false, "Use a single multipart request instead of chunks")
	uploadCmd.AddCommand(uploadStatusCmd)
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	path := args[0]

	a, err := openApp(ctx, (*config.Config).ValidateForApp)
	if err != nil {
		return err
	}
	defer a.Close()

	client, err := a.UserClient(ctx)
	if err != nil {
		return err
	}

	mediaType := mediaTypeFor(path, uploadType)
	category := uploadCategory
	if category == "" {
		category = categoryFor(mediaType)
	}

	var mediaID string
	if uploadSimple {
		mediaID, err = a.Uploader(client, nil).Upload(ctx, path, uploadOwners)
		if err != nil {
			logUploadFailure(err)
			return err
		}
	} else {
		tracker := a.TrackUploads(ctx)
		tracker.Expect(path, mediaType, category)

		res, err := a.Uploader(client, tracker.Observe).UploadChunked(ctx, media.ChunkedRequest{
			Path:             path,
			MediaType:        mediaType,
			MediaCategory:    category,
			AdditionalOwners: uploadOwners,
		})
		if err != nil {
			tracker.Fail(err)
			logUploadFailure(err)
			return err
		}
		mediaID = res.MediaID
		fmt.Fprintf(os.Stderr, "uploaded %d segment(s), state %s\n", res.Segments, res.State)
	}

	if uploadAltText != "" {
		if err := a.Uploader(client, nil).CreateMetadata(ctx, mediaID, uploadAltText); err != nil {
			return err
		}
	}

	fmt.Println(mediaID)
	return nil
}

func runUploadStatus(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := openApp(ctx, (*config.Config).ValidateForApp)
	if err != nil {
		return err
	}
	defer a.Close()

	client, err := a.UserClient(ctx)
	if err != nil {
		return err
	}

	resp, err := a.Uploader(client, nil).Status(ctx, args[0])
	if err != nil {
		return err
	}

	state, err := resp.String("processing_info", "state")
	if err != nil {
		state = "none"
	}
	fmt.Printf("media %s: %s\n", args[0], state)
	if size, err := resp.Int("size"); err == nil {
		fmt.Printf("size: %s\n", units.HumanSize(float64(size)))
	}
	return nil
}

func mediaTypeFor(path, override string) string {
	if override != "" {
		return override
	}
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); t != "" {
		if i := strings.IndexByte(t, ';'); i != -1 {
			t = t[:i]
		}
		return t
	}
	return "application/octet-stream"
}

func categoryFor(mediaType string) string {
	switch {
	case mediaType == "image/gif":
		return media.CategoryTweetGIF
	case strings.HasPrefix(mediaType, "video/"):
		return media.CategoryTweetVideo
	case strings.HasPrefix(mediaType, "image/"):
		return media.CategoryTweetImage
	default:
		return ""
	}
}
