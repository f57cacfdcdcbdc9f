package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abdulachik/twapi/internal/config"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check the current credentials",
	RunE:  runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
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

	user, err := client.VerifyCredentials(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("@%s (%s) id %s\n", user.ScreenName, user.Name, user.ID)
	return nil
}
