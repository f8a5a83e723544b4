// Package commands provides CLI commands for intellimind.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/diogo/intellimind/internal/config"
)

var (
	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// globalOptions are the flags shared by every subcommand
type globalOptions struct {
	server  string
	verbose bool

	// root query flags
	output string
	file   string
	raw    bool
}

// NewRootCmd builds the command tree around deps
func NewRootCmd(deps *Dependencies) *cobra.Command {
	deps = deps.withDefaults()
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "intellimind [message]",
		Short: "Terminal client for the IntelliMind assistant",
		Long: `intellimind is a terminal client for the IntelliMind assistant. It talks to
an IntelliMind server over its /chat and /clear endpoints.

Examples:
  intellimind chat                        Start interactive chat
  intellimind "What is Sentient?"         Send a single message
  intellimind -f question.md              Read the message from file
  cat question.md | intellimind           Read the message from stdin
  intellimind "Hello" -o reply.md         Save the reply to file
  intellimind clear --yes                 Clear the server conversation
  intellimind serve                       Run the demo backend locally`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, _ := cmd.Flags().GetBool("version"); v {
				fmt.Fprintf(deps.Out, "intellimind %s (built %s)\n", Version, BuildTime)
				return nil
			}

			if opts.file != "" {
				data, err := os.ReadFile(opts.file)
				if err != nil {
					return fmt.Errorf("failed to read file: %w", err)
				}
				return runQuery(cmd.Context(), deps, opts, string(data))
			}

			if !deps.StdinIsTerminal() && len(args) == 0 {
				data, err := io.ReadAll(deps.In)
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
				if len(data) > 0 {
					return runQuery(cmd.Context(), deps, opts, string(data))
				}
			}

			if len(args) > 0 {
				return runQuery(cmd.Context(), deps, opts, args[0])
			}

			return cmd.Help()
		},
	}

	cmd.SetIn(deps.In)
	cmd.SetOut(deps.Out)
	cmd.SetErr(deps.Err)

	cmd.PersistentFlags().StringVarP(&opts.server, "server", "s", "", "IntelliMind server URL (overrides config)")
	cmd.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "Enable debug logging")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Save the reply to file")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Read the message from file")
	cmd.Flags().BoolVar(&opts.raw, "raw", false, "Print the reply without decoration")
	cmd.Flags().BoolP("version", "v", false, "Show version and exit")

	cmd.AddCommand(
		newChatCmd(deps, opts),
		newClearCmd(deps, opts),
		newHealthCmd(deps, opts),
		newVoiceCmd(deps, opts),
		newServeCmd(deps, opts),
		newSupervisorCmd(deps),
		newConfigCmd(deps, opts),
	)

	return cmd
}

// rootCmd represents the base command
var rootCmd = NewRootCmd(nil)

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig returns the user configuration with flag overrides applied.
// A broken config file is reported and the defaults are used.
func (o *globalOptions) loadConfig(deps *Dependencies) config.Config {
	cfg, err := deps.LoadConfig()
	if err != nil {
		fmt.Fprintf(deps.Err, "Warning: %v (using defaults)\n", err)
	}
	if o.server != "" {
		cfg.ServerURL = o.server
	}
	if o.verbose {
		cfg.Verbose = true
	}
	return cfg
}
