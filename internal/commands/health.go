package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diogo/intellimind/internal/logging"
	"github.com/diogo/intellimind/internal/server"
	"github.com/diogo/intellimind/internal/tui"
)

func newHealthCmd(deps *Dependencies, opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the IntelliMind server is up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.loadConfig(deps)
			client, err := deps.NewClient(cfg, logging.Nop())
			if err != nil {
				return fmt.Errorf("failed to create client: %w", err)
			}

			status, err := client.Health(cmd.Context())
			if err != nil {
				fmt.Fprintln(deps.Err, tui.FormatError(err))
				return fmt.Errorf("health check failed: %w", err)
			}
			if status != server.StatusHealthy {
				return fmt.Errorf("%s reported status %q", cfg.ServerURL, status)
			}

			fmt.Fprintln(deps.Out, successStyle.Render(fmt.Sprintf("✓ %s is %s", cfg.ServerURL, status)))
			return nil
		},
	}
}
