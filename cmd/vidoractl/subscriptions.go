package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"vidora-client/internal/container"
	"vidora-client/internal/service/subscription"
	"vidora-client/internal/state"
)

// subscriptionsCmd groups the subscription commands
var subscriptionsCmd = &cobra.Command{
	Use:     "subscriptions",
	Aliases: []string{"subs"},
	Short:   "Channel subscriptions of the signed-in user",
}

var subscriptionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List subscribed channels from the API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(func(ctx context.Context, c *container.Container) error {
			store := c.NewSubscriptionStore()
			defer store.Close()

			if err := await(ctx, store.ListMine()); err != nil {
				return err
			}
			list := store.List()
			if list.Status == state.StatusError {
				return fmt.Errorf("failed to list subscriptions: %s", list.Error)
			}
			return printJSON(list.Channels)
		})
	},
}

var subscriptionsMembersCmd = &cobra.Command{
	Use:   "members",
	Short: "Show the locally known subscribed channel IDs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(func(ctx context.Context, c *container.Container) error {
			for _, id := range c.Services.Subscriptions.Members() {
				fmt.Println(id)
			}
			return nil
		})
	},
}

var subscribeCmd = &cobra.Command{
	Use:   "add [CHANNEL_ID]",
	Short: "Subscribe to a channel",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return toggle(args[0], true)
	},
}

var unsubscribeCmd = &cobra.Command{
	Use:   "remove [CHANNEL_ID]",
	Short: "Unsubscribe from a channel",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return toggle(args[0], false)
	},
}

func toggle(channelID string, subscribe bool) error {
	return withContainer(func(ctx context.Context, c *container.Container) error {
		if !c.GetAuthProvider().Current().SignedIn() {
			return fmt.Errorf("not signed in")
		}

		store := c.NewSubscriptionStore()
		defer store.Close()

		var done <-chan struct{}
		if subscribe {
			done = store.Subscribe(channelID)
		} else {
			done = store.Unsubscribe(channelID)
		}
		if err := await(ctx, done); err != nil {
			return err
		}
		return report(store.Toggle())
	})
}

func report(t subscription.ToggleState) error {
	if t.Status == state.StatusError {
		return fmt.Errorf("toggle failed: %s", t.Error)
	}
	if t.Result != nil {
		fmt.Printf("Channel %s: subscribed=%t, subscribers=%d\n", t.ChannelID, t.Result.Subscribed, t.Result.TotalSubscribers)
	}
	return nil
}

func init() {
	subscriptionsCmd.AddCommand(subscriptionsListCmd)
	subscriptionsCmd.AddCommand(subscriptionsMembersCmd)
	subscriptionsCmd.AddCommand(subscribeCmd)
	subscriptionsCmd.AddCommand(unsubscribeCmd)
	rootCmd.AddCommand(subscriptionsCmd)
}
