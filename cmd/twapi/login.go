package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abdulachik/twapi/internal/auth"
	"github.com/abdulachik/twapi/internal/config"
	"github.com/abdulachik/twapi/internal/server"
)

var (
	loginPIN          bool
	loginAccessType   string
	loginAuthenticate bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authorize an account and store its access token",
	Long: `Run the three-legged OAuth1 flow and store the resulting access token.

With CALLBACK_URL=oob (the default) or --pin, Twitter shows a PIN to type
back in. Otherwise a local server on CALLBACK_ADDR receives the redirect.

Examples:
  twapi login
  twapi login --pin --access-type read`,
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().BoolVar(&loginPIN, "pin", false, "Use PIN-based (out-of-band) authorization")
	loginCmd.Flags().StringVar(&loginAccessType, "access-type", "", "Override the app permission: read or write")
	loginCmd.Flags().BoolVar(&loginAuthenticate, "authenticate", false, "Use oauth/authenticate (skips approval for known users)")
	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch loginAccessType {
	case "", auth.AccessRead, auth.AccessWrite:
	default:
		return fmt.Errorf("invalid --access-type %q", loginAccessType)
	}

	a, err := openApp(ctx, (*config.Config).ValidateForApp)
	if err != nil {
		return err
	}
	defer a.Close()

	endpoints := auth.AuthorizeEndpoint
	if loginAuthenticate {
		endpoints = auth.AuthenticateEndpoint
	}
	ex := a.Exchanger(endpoints)

	callbackURL := a.Config.CallbackURL
	if loginPIN {
		callbackURL = auth.CallbackOOB
	}

	rt, err := ex.RequestToken(ctx, a.Config.ConsumerKey, a.Config.ConsumerSecret, callbackURL, loginAccessType)
	if err != nil {
		return fmt.Errorf("request token: %w", err)
	}
	if !rt.CallbackConfirmed {
		slog.Warn("callback not confirmed by twitter", "callback", callbackURL)
	}

	fmt.Println("Open this URL in a browser and authorize the app:")
	fmt.Println()
	fmt.Println("  " + rt.AuthorizeURL)
	fmt.Println()

	var verifier string
	if callbackURL == auth.CallbackOOB {
		verifier, err = readPIN()
	} else {
		verifier, err = awaitCallback(ctx, a.Config.CallbackAddr, rt.Token)
	}
	if err != nil {
		return err
	}

	at, err := ex.AccessToken(ctx, a.Config.ConsumerKey, a.Config.ConsumerSecret, rt.Token, rt.TokenSecret, verifier)
	if err != nil {
		return fmt.Errorf("access token: %w", err)
	}

	if err := a.SaveAccount(ctx, at); err != nil {
		return err
	}

	fmt.Printf("Logged in as @%s (id %s)\n", at.ScreenName, at.UserID)
	return nil
}

func readPIN() (string, error) {
	fmt.Print("Enter PIN: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read PIN: %w", err)
	}
	pin := strings.TrimSpace(line)
	if pin == "" {
		return "", errors.New("empty PIN")
	}
	return pin, nil
}

func awaitCallback(ctx context.Context, addr, requestToken string) (string, error) {
	callbacks := make(chan server.Callback, 1)
	srv := server.New(server.Config{Callbacks: callbacks})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe(ctx, addr) }()

	slog.Info("waiting for authorization callback", "addr", addr)

	select {
	case cb := <-callbacks:
		if cb.Denied != "" {
			return "", errors.New("authorization denied")
		}
		if cb.Token != requestToken {
			return "", fmt.Errorf("callback token %q does not match request token", cb.Token)
		}
		return cb.Verifier, nil
	case err := <-errCh:
		if err == nil {
			err = errors.New("callback server stopped")
		}
		return "", err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
