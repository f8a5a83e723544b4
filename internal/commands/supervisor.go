package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/diogo/intellimind/internal/supervisor"
)

func newSupervisorCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "supervisor",
		Short: "Manage the process supervisor configuration",
		Long: `Generate and check the YAML configuration handed to the external process
manager that keeps the backend running.`,
	}

	cmd.AddCommand(
		newSupervisorInitCmd(deps),
		newSupervisorValidateCmd(deps),
		newSupervisorShowCmd(deps),
	)
	return cmd
}

func newSupervisorInitCmd(deps *Dependencies) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the default configuration (to stdout without a path)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := supervisor.Default()

			if len(args) == 0 {
				data, err := cfg.Marshal()
				if err != nil {
					return err
				}
				_, err = deps.Out.Write(data)
				return err
			}

			path := args[0]
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists, pass --force to overwrite", path)
			}
			if err := cfg.Save(path); err != nil {
				return err
			}
			fmt.Fprintln(deps.Out, successStyle.Render("✓ Wrote "+path))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}

func newSupervisorValidateCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <path>",
		Short: "Check a configuration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := supervisor.Load(args[0])
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid supervisor config:\n%w", err)
			}
			fmt.Fprintln(deps.Out, successStyle.Render("✓ "+args[0]+" is valid"))
			return nil
		},
	}
}

func newSupervisorShowCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "show [path]",
		Short: "Print the effective process definition",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := supervisor.Default()
			if len(args) > 0 {
				var err error
				if cfg, err = supervisor.Load(args[0]); err != nil {
					return err
				}
			}

			healthURL, err := cfg.HealthURL()
			if err != nil {
				return err
			}

			out := deps.Out
			fmt.Fprintf(out, "%-16s %s\n", "Name", cfg.Name)
			fmt.Fprintf(out, "%-16s %s\n", "Command", strings.Join(cfg.Argv(), " "))
			if cfg.Cwd != "" {
				fmt.Fprintf(out, "%-16s %s\n", "Directory", cfg.Cwd)
			}
			fmt.Fprintf(out, "%-16s %d\n", "Workers", cfg.Workers)
			fmt.Fprintf(out, "%-16s %t (max %d, min uptime %s, delay %s)\n", "Autorestart",
				cfg.Restart.Autorestart, cfg.Restart.MaxRestarts, cfg.GetMinUptime(), cfg.GetRestartDelay())
			if cfg.Restart.MaxMemory != "" {
				fmt.Fprintf(out, "%-16s %s\n", "Memory limit", cfg.Restart.MaxMemory)
			}
			fmt.Fprintf(out, "%-16s kill %s, listen %s\n", "Timeouts", cfg.GetKillTimeout(), cfg.GetListenTimeout())
			fmt.Fprintf(out, "%-16s %s every %s after %s\n", "Health check",
				healthURL, cfg.GetHealthInterval(), cfg.GetHealthGracePeriod())
			return nil
		},
	}
}
