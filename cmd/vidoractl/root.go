package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"vidora-client/internal/config"
	"vidora-client/internal/container"
	"vidora-client/pkg/logger"
)

// rootCmd is the base command of vidoractl
var rootCmd = &cobra.Command{
	Use:   "vidoractl",
	Short: "Drive the vidora client state from the command line",
	Long: `vidoractl runs the same client components as the bridge against the
configured API_BASE_URL and REDIS_URL. Session, subscription membership and
recent searches persist in the configured store between invocations.`,
	SilenceUsage: true,
}

var timeout time.Duration

func init() {
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 60*time.Second, "Deadline for the whole command")
}

// withContainer loads configuration, builds the container and runs fn with it
func withContainer(fn func(ctx context.Context, c *container.Container) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	c, err := container.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create container: %w", err)
	}
	defer func() { _ = c.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return fn(ctx, c)
}

// await waits for a component operation started by a command
func await(ctx context.Context, done <-chan struct{}) error {
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("operation did not finish: %w", ctx.Err())
	}
}

func printJSON(v interface{}) error {
	result, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format result: %w", err)
	}
	fmt.Println(string(result))
	return nil
}
