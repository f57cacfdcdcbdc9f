package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abdulachik/twapi/internal/config"
	"github.com/abdulachik/twapi/internal/poster"
)

var (
	tweetMedia    []string
	tweetAltText  []string
	tweetTruncate bool
	tweetDryRun   bool
)

var tweetCmd = &cobra.Command{
	Use:   "tweet <text>",
	Short: "Post a status, optionally with media",
	Long: `Post a status. Each --media file is uploaded in chunks first.

Examples:
  twapi tweet "hello world"
  twapi tweet "clip" --media clip.mp4 --alt-text "Waves at dusk"
  twapi tweet "$(cat long.txt)" --truncate --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runTweet,
}

func init() {
	tweetCmd.Flags().StringArrayVar(&tweetMedia, "media", nil, "File to attach (repeatable, up to 4)")
	tweetCmd.Flags().StringArrayVar(&tweetAltText, "alt-text", nil, "Alt text for the media at the same position")
	tweetCmd.Flags().BoolVar(&tweetTruncate, "truncate", false, "Truncate text over 280 characters instead of failing")
	tweetCmd.Flags().BoolVar(&tweetDryRun, "dry-run", false, "Show what would be posted without posting")
	rootCmd.AddCommand(tweetCmd)
}

func runTweet(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	text := args[0]
	if tweetTruncate {
		text = poster.Truncate(text, poster.TwitterMaxLength)
	}
	if len(tweetAltText) > len(tweetMedia) {
		return fmt.Errorf("%d --alt-text values for %d --media files", len(tweetAltText), len(tweetMedia))
	}

	content := poster.PostContent{Text: text}
	for i, path := range tweetMedia {
		m := poster.Media{Path: path, MediaType: mediaTypeFor(path, "")}
		m.Category = categoryFor(m.MediaType)
		if i < len(tweetAltText) {
			m.AltText = tweetAltText[i]
		}
		content.Media = append(content.Media, m)
	}

	if tweetDryRun {
		fmt.Println("=== DRY RUN ===")
		fmt.Println(content.Text)
		for _, m := range content.Media {
			fmt.Printf("  + %s (%s, %s)\n", m.Path, m.MediaType, m.Category)
		}
		fmt.Printf("\nLength: %d / %d\n", len([]rune(content.Text)), poster.TwitterMaxLength)
		return nil
	}

	a, err := openApp(ctx, (*config.Config).ValidateForApp)
	if err != nil {
		return err
	}
	defer a.Close()

	client, err := a.UserClient(ctx)
	if err != nil {
		return err
	}

	tracker := a.TrackUploads(ctx)
	for _, m := range content.Media {
		tracker.Expect(m.Path, m.MediaType, m.Category)
	}

	p := a.Poster(client, tracker)
	if err := p.ValidateCredentials(ctx); err != nil {
		return err
	}

	result, err := p.Post(ctx, content)
	if err != nil {
		tracker.Fail(err)
		logUploadFailure(err)
		return err
	}

	fmt.Println(result.PostURL)
	return nil
}
