package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/diogo/intellimind/internal/logging"
	"github.com/diogo/intellimind/internal/server"
)

func newServeCmd(deps *Dependencies, opts *globalOptions) *cobra.Command {
	defaults := server.DefaultOptions()
	var (
		addr    string
		timeout time.Duration
		limit   float64
		burst   int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the demo IntelliMind backend",
		Long: `Run a demo backend implementing /chat, /clear and /health with canned
replies, for trying the client without the real assistant. Metrics are
exposed on /metrics. The server stops gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.New(logging.Options{Verbose: opts.verbose})
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if burst < 1 && limit > 0 {
				return fmt.Errorf("burst must be at least 1 when rate limiting is enabled")
			}

			logger.Info("starting demo backend",
				zap.String("addr", addr),
				zap.Duration("timeout", timeout),
				zap.Float64("rate", limit),
				zap.Int("burst", burst))

			return deps.Serve(cmd.Context(), addr, server.Options{
				Logger:  logger,
				Limit:   rate.Limit(limit),
				Burst:   burst,
				Timeout: timeout,
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "0.0.0.0:5000", "Listen address")
	cmd.Flags().DurationVar(&timeout, "timeout", defaults.Timeout, "Per-request timeout (0 disables)")
	cmd.Flags().Float64Var(&limit, "rate", float64(defaults.Limit), "Chat requests per second per client (0 disables)")
	cmd.Flags().IntVar(&burst, "burst", defaults.Burst, "Chat request burst per client")
	return cmd
}
