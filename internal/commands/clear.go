package commands

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/diogo/intellimind/internal/chat"
	apierrors "github.com/diogo/intellimind/internal/errors"
	"github.com/diogo/intellimind/internal/logging"
	"github.com/diogo/intellimind/internal/tui"
)

func newClearCmd(deps *Dependencies, opts *globalOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear the conversation kept by the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				if !deps.StdinIsTerminal() {
					return fmt.Errorf("%w: stdin is not a terminal, pass --yes", apierrors.ErrNotConfirmed)
				}
				if !confirm(deps, chat.ClearConfirmPrompt) {
					fmt.Fprintln(deps.Out, "Cancelled")
					return nil
				}
			}

			cfg := opts.loadConfig(deps)
			client, err := deps.NewClient(cfg, logging.Nop())
			if err != nil {
				return fmt.Errorf("failed to create client: %w", err)
			}

			if err := client.Clear(cmd.Context()); err != nil {
				fmt.Fprintln(deps.Err, tui.FormatError(err))
				return fmt.Errorf("%s: %w", chat.ClearFailedAlert, err)
			}

			fmt.Fprintln(deps.Out, successStyle.Render("✓ "+chat.StatusCleared))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

// confirm asks prompt on deps.Out and reads a yes/no answer from deps.In
func confirm(deps *Dependencies, prompt string) bool {
	fmt.Fprintf(deps.Out, "%s [y/N]: ", prompt)
	line, err := bufio.NewReader(deps.In).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
