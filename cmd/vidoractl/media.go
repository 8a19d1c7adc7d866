package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"vidora-client/internal/container"
)

// resolveCmd exchanges storage locators for signed URLs
var resolveCmd = &cobra.Command{
	Use:   "resolve [LOCATOR...]",
	Short: "Resolve storage locators to signed URLs",
	Long:  `Resolve one or more storage locators. Locators that cannot be resolved are reported and skipped.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(func(ctx context.Context, c *container.Container) error {
			resolved := c.GetResolver().ResolveMany(ctx, args...)
			for _, locator := range args {
				if signed, ok := resolved[locator]; ok {
					fmt.Printf("%s\t%s\n", locator, signed)
				} else {
					fmt.Printf("%s\t(unresolved)\n", locator)
				}
			}
			if len(resolved) == 0 {
				return fmt.Errorf("no locator could be resolved")
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}
