// Package cli implements the polytree command-line interface.
package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/polytree/pkg/buildinfo"
	"github.com/matzehuels/polytree/pkg/cache"
	"github.com/matzehuels/polytree/pkg/pipeline"
)

const (
	appName = "polytree"

	// redisURLEnv is the fallback for serve --redis.
	redisURLEnv = "POLYTREE_REDIS_URL"
)

// Log levels accepted by New and SetLogLevel.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI carries what every command shares, which is only the logger.
type CLI struct {
	Logger *log.Logger
}

// New returns a CLI logging to w at level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel changes the level after flags are parsed.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand builds the polytree command tree.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Polytree draws polymer reductions and license trees",
		Long: `Polytree collapses polymers, where adjacent units of the same type and
opposite polarity react and vanish, and draws the history of every
reaction as a tree. It also decodes and draws license trees.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.AddCommand(
		c.polymerCommand(),
		c.licenseCommand(),
		c.solveCommand(),
		c.treeCommand(),
		c.tuneCommand(),
		c.serveCommand(),
		c.presetsCommand(),
		c.cacheCommand(),
		c.completionCommand(),
	)
	return root
}

// newRunner returns a runner backed by the on-disk cache, or by no cache
// at all for --no-cache.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	cache, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, nil, c.Logger), nil
}

// newCache falls back to no caching when there is no home directory to
// put the cache in.
func newCache(noCache bool) (cache.Cache, error) {
	if !noCache {
		if dir, err := cacheDir(); err == nil {
			return cache.NewFileCache(dir)
		}
	}
	return cache.NewNullCache(), nil
}

// cacheDir is $XDG_CACHE_HOME/polytree, or ~/.cache/polytree.
func cacheDir() (string, error) {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// parseFormats splits --format on commas. An empty value means SVG only.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return strings.Split(s, ",")
}
