package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"vidora-client/internal/container"
)

// sessionCmd groups the session commands
var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Sign in, sign out and show the stored session",
}

var sessionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the stored session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(func(ctx context.Context, c *container.Container) error {
			identity := c.GetAuthProvider().Current()
			if !identity.SignedIn() {
				fmt.Println("Not signed in.")
				return nil
			}
			return printJSON(identity)
		})
	},
}

var sessionSignInCmd = &cobra.Command{
	Use:   "signin [TOKEN]",
	Short: "Store a session token issued by the API",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(func(ctx context.Context, c *container.Container) error {
			identity, err := c.GetAuthProvider().SignIn(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to sign in: %w", err)
			}
			fmt.Printf("Signed in as %s\n", identity.Key)
			return nil
		})
	},
}

var sessionSignOutCmd = &cobra.Command{
	Use:   "signout",
	Short: "Forget the session and the signed-in user's local state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(func(ctx context.Context, c *container.Container) error {
			if err := c.GetAuthProvider().SignOut(ctx); err != nil {
				return fmt.Errorf("failed to sign out: %w", err)
			}
			fmt.Println("Signed out.")
			return nil
		})
	},
}

func init() {
	sessionCmd.AddCommand(sessionShowCmd)
	sessionCmd.AddCommand(sessionSignInCmd)
	sessionCmd.AddCommand(sessionSignOutCmd)
	rootCmd.AddCommand(sessionCmd)
}
