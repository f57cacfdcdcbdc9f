package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abdulachik/twapi/internal/activity"
	"github.com/abdulachik/twapi/internal/config"
	"github.com/abdulachik/twapi/internal/server"
)

var webhookCmd = &cobra.Command{
	Use:   "webhook",
	Short: "Serve and manage Account Activity webhooks",
	Long: `Serve the webhook receiver and manage registrations and subscriptions.

The environment comes from WEBHOOK_ENV. Registration and subscription
calls sign as the logged-in user; "subscriptions" uses the bearer token.`,
}

var webhookServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Answer CRC checks and record deliveries on WEBHOOK_ADDR",
	RunE:  runWebhookServe,
}

var webhookRegisterCmd = &cobra.Command{
	Use:   "register <url>",
	Short: "Register a webhook URL",
	Args:  cobra.ExactArgs(1),
	RunE: withManager(func(ctx context.Context, m *activity.Manager, args []string) error {
		hook, err := m.RegisterWebhook(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s %s valid=%t\n", hook.ID, hook.URL, hook.Valid)
		return nil
	}),
}

var webhookListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered webhooks",
	RunE: withManager(func(ctx context.Context, m *activity.Manager, args []string) error {
		hooks, err := m.Webhooks(ctx)
		if err != nil {
			return err
		}
		for _, h := range hooks {
			fmt.Printf("%s %s valid=%t created=%s\n", h.ID, h.URL, h.Valid, h.CreatedAt)
		}
		return nil
	}),
}

var webhookCRCCmd = &cobra.Command{
	Use:   "crc <webhook_id>",
	Short: "Ask Twitter to re-run the CRC check",
	Args:  cobra.ExactArgs(1),
	RunE: withManager(func(ctx context.Context, m *activity.Manager, args []string) error {
		return m.TriggerCRC(ctx, args[0])
	}),
}

var webhookDeleteCmd = &cobra.Command{
	Use:   "delete <webhook_id>",
	Short: "Delete a webhook registration",
	Args:  cobra.ExactArgs(1),
	RunE: withManager(func(ctx context.Context, m *activity.Manager, args []string) error {
		return m.DeleteWebhook(ctx, args[0])
	}),
}

var webhookSubscribeCmd = &cobra.Command{
	Use:   "subscribe",
	Short: "Subscribe the logged-in user",
	RunE: withManager(func(ctx context.Context, m *activity.Manager, args []string) error {
		return m.Subscribe(ctx)
	}),
}

var webhookUnsubscribeCmd = &cobra.Command{
	Use:   "unsubscribe",
	Short: "Remove the logged-in user's subscription",
	RunE: withManager(func(ctx context.Context, m *activity.Manager, args []string) error {
		return m.Unsubscribe(ctx)
	}),
}

var webhookSubscribedCmd = &cobra.Command{
	Use:   "subscribed",
	Short: "Report whether the logged-in user is subscribed",
	RunE: withManager(func(ctx context.Context, m *activity.Manager, args []string) error {
		ok, err := m.Subscribed(ctx)
		if err != nil {
			return err
		}
		fmt.Println(ok)
		return nil
	}),
}

var webhookSubscriptionsCmd = &cobra.Command{
	Use:   "subscriptions",
	Short: "List subscriptions and usage (bearer token)",
	RunE:  runWebhookSubscriptions,
}

func init() {
	webhookCmd.AddCommand(
		webhookServeCmd,
		webhookRegisterCmd,
		webhookListCmd,
		webhookCRCCmd,
		webhookDeleteCmd,
		webhookSubscribeCmd,
		webhookUnsubscribeCmd,
		webhookSubscribedCmd,
		webhookSubscriptionsCmd,
	)
	rootCmd.AddCommand(webhookCmd)
}

// withManager opens the app and builds a user-context manager for fn.
func withManager(fn func(ctx context.Context, m *activity.Manager, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
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
		return fn(ctx, a.Activity(client), args)
	}
}

func runWebhookServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx, (*config.Config).ValidateForWebhook)
	if err != nil {
		return err
	}
	defer a.Close()

	health := server.NewHealth()
	if err := a.Store.PingContext(ctx); err != nil {
		health.SetUnhealthy(server.ComponentDatabase, err)
	} else {
		health.SetHealthy(server.ComponentDatabase, "connected")
	}

	srv := server.New(server.Config{
		ConsumerSecret: a.Config.ConsumerSecret,
		Events:         a.Store,
		Health:         health,
	})

	slog.Info("starting webhook receiver", "addr", a.Config.WebhookAddr, "env", a.Config.WebhookEnv)
	if err := srv.ListenAndServe(ctx, a.Config.WebhookAddr); err != nil {
		return err
	}

	slog.Info("shutting down...")
	return nil
}

func runWebhookSubscriptions(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := openApp(ctx, (*config.Config).ValidateForBearer)
	if err != nil {
		return err
	}
	defer a.Close()

	client, err := a.BearerClient()
	if err != nil {
		return err
	}
	m := a.Activity(client)

	list, err := m.SubscriptionList(ctx)
	if err != nil {
		return err
	}
	fmt.Println(list.Text())

	count, err := m.SubscriptionCount(ctx)
	if err != nil {
		return err
	}
	fmt.Println(count.Text())
	return nil
}
