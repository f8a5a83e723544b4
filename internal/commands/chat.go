package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/diogo/intellimind/internal/config"
	"github.com/diogo/intellimind/internal/logging"
	"github.com/diogo/intellimind/internal/render"
	"github.com/diogo/intellimind/internal/storage"
	"github.com/diogo/intellimind/internal/tui"
)

func newChatCmd(deps *Dependencies, opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Start an interactive chat session with IntelliMind.

The server keeps the conversation context across messages.
Press Ctrl+L to clear it, Ctrl+R for voice input and Ctrl+S to hear
the last reply when speech is available. Esc or Ctrl+C quits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, deps, opts)
		},
	}
}

func runChat(cmd *cobra.Command, deps *Dependencies, opts *globalOptions) error {
	ctx := cmd.Context()
	cfg := opts.loadConfig(deps)

	// The TUI owns the terminal, so logs go to a file
	logger := logging.Nop()
	if logPath, err := config.GetLogPath(cfg); err == nil {
		if l, err := logging.New(logging.Options{Verbose: cfg.Verbose, Path: logPath}); err == nil {
			logger = l
		} else {
			fmt.Fprintf(deps.Err, "Warning: %v\n", err)
		}
	}
	defer func() { _ = logger.Sync() }()

	client, err := deps.NewClient(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	store, err := deps.OpenStore(cfg)
	if err != nil {
		fmt.Fprintf(deps.Err, "Warning: settings will not be saved: %v\n", err)
		logger.Warn("failed to open settings store", zap.Error(err))
		store = storage.NewMemoryStore()
	}
	defer store.Close()

	recognizer, synthesizer := deps.DetectSpeech(cfg.Speech, logger)

	if cfg.TUITheme != "" && render.SetTUITheme(cfg.TUITheme) {
		tui.UpdateTheme()
	}

	// The widget works without a reachable server; a failed probe is only a warning
	spin := newSpinner(deps.Err, "Connecting to IntelliMind")
	spin.start()
	if _, err := client.Health(ctx); err != nil {
		spin.stopWithError()
		fmt.Fprintln(deps.Err, warnStyle.Render(fmt.Sprintf("⚠ %s is not reachable: %v", cfg.ServerURL, err)))
		logger.Warn("health probe failed", zap.String("server", cfg.ServerURL), zap.Error(err))
	} else {
		spin.stopWithSuccess("Connected")
	}

	logger.Info("chat session started",
		zap.String("server", cfg.ServerURL),
		zap.Bool("recognition", recognizer != nil),
		zap.Bool("synthesis", synthesizer != nil))

	return deps.RunChat(ctx, tui.ChatOptions{
		Client:      client,
		Store:       store,
		Recognizer:  recognizer,
		Synthesizer: synthesizer,
		Logger:      logger,
		ServerURL:   cfg.ServerURL,
	})
}
