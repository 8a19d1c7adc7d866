package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"vidora-client/internal/container"
	"vidora-client/internal/domain"
	"vidora-client/internal/state"
)

// feedCmd loads feed pages and prints the accumulated list
var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Load the video feed",
	Long:  `Load one or more pages of the feed. Pages after the first are appended to the list.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		channelID, _ := cmd.Flags().GetString("channel")
		pages, _ := cmd.Flags().GetInt("pages")
		limit, _ := cmd.Flags().GetInt("limit")

		return withContainer(func(ctx context.Context, c *container.Container) error {
			f := c.NewFeed()
			defer f.Close()

			if err := await(ctx, f.FetchPage(domain.FeedQuery{ChannelID: channelID, Page: 1, Limit: limit})); err != nil {
				return err
			}
			for i := 1; i < pages; i++ {
				done, ok := f.LoadMore()
				if !ok {
					break
				}
				if err := await(ctx, done); err != nil {
					return err
				}
			}

			s := f.State()
			if s.Status == state.StatusError {
				return fmt.Errorf("failed to load feed: %s", s.Error)
			}
			for _, v := range s.Videos {
				fmt.Printf("%s\t%s\t%s\n", v.ID, v.ChannelName, v.Title)
			}
			fmt.Printf("Page %d of %d, %d video(s) in total\n", s.Page, s.TotalPages, s.TotalVideos)
			return nil
		})
	},
}

func init() {
	feedCmd.Flags().String("channel", "", "Only videos of this channel")
	feedCmd.Flags().Int("pages", 1, "Number of pages to load")
	feedCmd.Flags().Int("limit", 0, "Videos per page, 0 uses FEED_PAGE_SIZE")
	rootCmd.AddCommand(feedCmd)
}
