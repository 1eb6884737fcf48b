package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/polytree/pkg/cache"
)

// cacheCommand groups the subcommands that inspect and empty the on-disk
// cache used by the render commands.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the reduction and render cache",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "path",
			Short: "Print the cache directory",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				dir, err := cacheDir()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), dir)
				return nil
			},
		},
		&cobra.Command{
			Use:   "info",
			Short: "Show how many entries the cache holds",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withFileCache(func(fc *cache.FileCache) error {
					s, err := fc.Stats()
					if err != nil {
						return err
					}
					out := cmd.OutOrStdout()
					fmt.Fprintln(out, styleKey.Render("Directory")+" "+StyleValue.Render(fc.Dir()))
					fmt.Fprintln(out, styleKey.Render("Entries")+" "+StyleValue.Render(strconv.Itoa(s.Entries)))
					fmt.Fprintln(out, styleKey.Render("Size")+" "+StyleValue.Render(formatBytes(s.Bytes)))
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Remove all cached reductions and renders",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withFileCache(func(fc *cache.FileCache) error {
					n, err := fc.Clear()
					if err != nil {
						return err
					}
					printSuccess("Cleared %d cached entries", n)
					printDetail("Directory: %s", fc.Dir())
					return nil
				})
			},
		},
	)
	return cmd
}

// withFileCache opens the CLI cache for fn. A cache directory that does
// not exist yet is reported as empty rather than created.
func withFileCache(fn func(*cache.FileCache) error) error {
	dir, err := cacheDir()
	if err != nil {
		return fmt.Errorf("cache dir: %w", err)
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		printInfo("Cache is empty")
		return nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return err
	}
	defer fc.Close()
	return fn(fc)
}

// formatBytes renders n as "812 B", "4.2 KiB" or "1.5 MiB".
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	v, suffix := float64(n)/unit, "KiB"
	if v >= unit {
		v, suffix = v/unit, "MiB"
	}
	return fmt.Sprintf("%.1f %s", v, suffix)
}
