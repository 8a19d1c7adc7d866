package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"vidora-client/internal/container"
	"vidora-client/internal/state"
)

// searchCmd runs a search and records the query
var searchCmd = &cobra.Command{
	Use:   "search [QUERY]",
	Short: "Search videos and channels",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(func(ctx context.Context, c *container.Container) error {
			searcher := c.NewSearcher()
			defer searcher.Close()

			if err := await(ctx, searcher.Search(args[0])); err != nil {
				return err
			}
			s := searcher.State()
			switch s.Status {
			case state.StatusError:
				return fmt.Errorf("search failed: %s", s.Error)
			case state.StatusSuccess:
				return printJSON(s.Result)
			}
			fmt.Println("Nothing to search for.")
			return nil
		})
	},
}

// historyCmd groups the recent-search commands
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Recent searches of the signed-in user",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent searches, most recent first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(func(ctx context.Context, c *container.Container) error {
			queries := c.Services.History.Current()
			if len(queries) == 0 {
				fmt.Println("No recent searches.")
				return nil
			}
			for _, q := range queries {
				fmt.Println(q)
			}
			return nil
		})
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear recent searches",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(func(ctx context.Context, c *container.Container) error {
			searcher := c.NewSearcher()
			defer searcher.Close()

			if err := await(ctx, searcher.ClearHistory()); err != nil {
				return err
			}
			fmt.Println("Recent searches cleared.")
			return nil
		})
	},
}

func init() {
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(historyCmd)
}
