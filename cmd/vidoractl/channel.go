package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"vidora-client/internal/container"
	"vidora-client/internal/state"
)

// channelCmd shows the public page of a channel
var channelCmd = &cobra.Command{
	Use:   "channel [ID_OR_HANDLE]",
	Short: "Show a channel page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(func(ctx context.Context, c *container.Container) error {
			page := c.NewChannelPage()
			defer page.Close()

			if err := await(ctx, page.Load(args[0])); err != nil {
				return err
			}
			s := page.State()
			if s.Status == state.StatusError {
				return fmt.Errorf("failed to load channel: %s", s.Error)
			}
			ch := s.Channel
			fmt.Printf("%s (%s)\n%s\n", ch.Name, ch.Handle, ch.Description)
			fmt.Printf("Subscribers: %d, views: %d, videos: %d\n", ch.TotalSubscribers, ch.TotalViews, len(ch.VideoIDs))
			if s.SignedProfileURL != "" {
				fmt.Printf("Picture: %s\n", s.SignedProfileURL)
			}
			if s.SignedBannerURL != "" {
				fmt.Printf("Banner: %s\n", s.SignedBannerURL)
			}
			return nil
		})
	},
}

// profileCmd shows the signed-in user's account
var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show the signed-in user's profile",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(func(ctx context.Context, c *container.Container) error {
			profile := c.NewProfile()
			defer profile.Close()

			if err := await(ctx, profile.Load()); err != nil {
				return err
			}
			s := profile.State()
			if s.Status == state.StatusError {
				return fmt.Errorf("failed to load profile: %s", s.Error)
			}
			p := s.Profile
			fmt.Printf("%s %s <%s>\n", p.FirstName, p.LastName, p.Email)
			if p.ChannelID != "" {
				fmt.Printf("Channel: %s\n", p.ChannelID)
			}
			if s.SignedAvatarURL != "" {
				fmt.Printf("Avatar: %s\n", s.SignedAvatarURL)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(channelCmd)
	rootCmd.AddCommand(profileCmd)
}
