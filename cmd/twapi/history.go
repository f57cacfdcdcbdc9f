package main

import (
	"context"
	"fmt"

	"github.com/docker/go-units"
	"github.com/spf13/cobra"

	"github.com/abdulachik/twapi/internal/config"
)

var historyLimit int64

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded uploads, accounts and webhook events",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().Int64Var(&historyLimit, "limit", 20, "Number of uploads and events to list")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := openApp(ctx, (*config.Config).Validate)
	if err != nil {
		return err
	}
	defer a.Close()

	accounts, err := a.Store.ListAccounts(ctx)
	if err != nil {
		return fmt.Errorf("list accounts: %w", err)
	}

	uploads, err := a.Store.ListUploads(ctx, historyLimit)
	if err != nil {
		return fmt.Errorf("list uploads: %w", err)
	}

	byState, err := a.Store.CountUploadsByState(ctx)
	if err != nil {
		return fmt.Errorf("count uploads: %w", err)
	}

	events, err := a.Store.ListWebhookEvents(ctx, historyLimit)
	if err != nil {
		return fmt.Errorf("list webhook events: %w", err)
	}

	totalEvents, err := a.Store.CountWebhookEvents(ctx)
	if err != nil {
		return fmt.Errorf("count webhook events: %w", err)
	}

	fmt.Println("=== twapi history ===")
	fmt.Println()
	fmt.Printf("Database: %s\n", a.Config.DatabasePath)
	fmt.Println()

	fmt.Println("Accounts:")
	for _, acct := range accounts {
		fmt.Printf("  @%s (id %s), updated %s\n", acct.ScreenName, acct.UserID, acct.UpdatedAt.Format("2006-01-02 15:04"))
	}
	fmt.Println()

	if len(byState) > 0 {
		fmt.Println("Uploads by state:")
		for _, row := range byState {
			fmt.Printf("  %s: %d (%s)\n", row.State, row.Count, units.HumanSize(float64(row.TotalBytes)))
		}
		fmt.Println()
	}

	fmt.Println("Recent uploads:")
	for _, up := range uploads {
		fmt.Printf("  #%d %s %s %s %d segment(s) %s",
			up.ID, up.State, up.FilePath, units.HumanSize(float64(up.TotalBytes)), up.Segments, up.MediaID)
		if up.Error.Valid {
			fmt.Printf(" error: %s", up.Error.String)
		}
		fmt.Println()
	}
	fmt.Println()

	fmt.Printf("Webhook events: %d total\n", totalEvents)
	for _, ev := range events {
		valid := "valid"
		if !ev.SignatureValid {
			valid = "INVALID"
		}
		fmt.Printf("  #%d %s %s from %s, %s\n", ev.ID, ev.ReceivedAt.Format("2006-01-02 15:04:05"), valid, ev.RemoteIP, units.HumanSize(float64(len(ev.Body))))
	}

	return nil
}
