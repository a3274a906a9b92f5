package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/wiregraph/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the result cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear all cached nets and drawings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCacheClear(cmd.Context())
		},
	}
}

func (c *CLI) runCacheClear(ctx context.Context) error {
	if c.Config.Cache.Disabled {
		printInfo("Caching is disabled")
		return nil
	}
	cc, err := c.newCache(ctx, false)
	if err != nil {
		return err
	}
	defer cc.Close()

	count, ok, err := cache.Clear(ctx, cc)
	if err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	if !ok {
		printWarning("This cache backend cannot be cleared")
		return nil
	}
	if count == 0 {
		printInfo("Cache is empty")
		return nil
	}

	printSuccess("Cleared %d cached entries", count)
	if c.Config.Cache.RedisAddr != "" {
		printDetail("Redis: %s", c.Config.Cache.RedisAddr)
	} else {
		printDetail("Directory: %s", c.Config.Cache.Dir)
	}
	return nil
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(c.Config.Cache.Dir)
			return nil
		},
	}
}
