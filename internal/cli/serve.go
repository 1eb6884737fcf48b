package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/polytree/pkg/cache"
	"github.com/matzehuels/polytree/pkg/observability"
	"github.com/matzehuels/polytree/pkg/pipeline"
	"github.com/matzehuels/polytree/pkg/server"
)

// redisKeyPrefix scopes cache keys when several services share one Redis.
const redisKeyPrefix = appName + ":"

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr, redisURL string
	var noCache bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the rendering API over HTTP",
		Long: `Serve the rendering API over HTTP.

Results are cached in Redis when --redis or ` + redisURLEnv + ` is set, in the
local cache directory otherwise.`,
		Example: `  polytree serve --addr :8080
  curl --data-binary @input.txt 'localhost:8080/polymer/svg?ignored=c'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			if redisURL == "" {
				redisURL = os.Getenv(redisURLEnv)
			}

			var runner *pipeline.Runner
			switch {
			case redisURL != "" && !noCache:
				rc, err := cache.NewRedisCache(ctx, redisURL)
				if err != nil {
					return fmt.Errorf("connect to redis: %w", err)
				}
				runner = pipeline.NewRunner(rc, cache.NewScopedKeyer(cache.NewDefaultKeyer(), redisKeyPrefix), logger)
				logger.Info("using redis cache")
			default:
				r, err := c.newRunner(noCache)
				if err != nil {
					return err
				}
				runner = r
			}
			defer runner.Close()

			hooks := observability.NewLogHooks(logger)
			observability.SetPipelineHooks(hooks)
			observability.SetCacheHooks(hooks)
			observability.SetHTTPHooks(hooks)
			defer observability.Reset()

			printInfo("Listening on %s", StyleHighlight.Render("http://"+addr))
			return server.New(runner, logger).ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().StringVar(&redisURL, "redis", "", "Redis URL for the shared cache (env "+redisURLEnv+")")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	return cmd
}
