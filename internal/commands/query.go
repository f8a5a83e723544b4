package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/diogo/intellimind/internal/chat"
	"github.com/diogo/intellimind/internal/logging"
	"github.com/diogo/intellimind/internal/render"
	"github.com/diogo/intellimind/internal/tui"
)

// Styles matching the chat TUI
var (
	assistantLabelStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	assistantBubbleStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary).
				Foreground(colorText).
				Padding(0, 1).
				MarginTop(1).
				MarginBottom(1)

	successStyle = lipgloss.NewStyle().Foreground(colorSuccess)
	warnStyle    = lipgloss.NewStyle().Foreground(colorError)
)

// runQuery sends a single message and prints the reply. Without a terminal
// on stdout, or with --raw, only the reply text is printed.
func runQuery(ctx context.Context, deps *Dependencies, opts *globalOptions, message string) error {
	message = strings.TrimSpace(message)
	if message == "" {
		return fmt.Errorf("message cannot be empty")
	}
	if n, _ := chat.CharCount(message); n > chat.MaxInputLength {
		return fmt.Errorf("message is %d characters, the limit is %d", n, chat.MaxInputLength)
	}

	cfg := opts.loadConfig(deps)
	rawOutput := opts.raw || !deps.StdoutIsTerminal()

	logger := logging.Nop()
	if cfg.Verbose {
		if l, err := logging.New(logging.Options{Verbose: true}); err == nil {
			logger = l
			defer func() { _ = logger.Sync() }()
		}
	}

	client, err := deps.NewClient(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	var spin *spinner
	if !rawOutput {
		spin = newSpinner(deps.Err, chat.StatusThinking)
		spin.start()
	}

	start := time.Now()
	reply, err := client.Chat(ctx, message)
	logger.Debug("chat request finished",
		zap.String("server", cfg.ServerURL),
		zap.Duration("elapsed", time.Since(start)),
		zap.Error(err))

	if err != nil {
		if !rawOutput {
			spin.stopWithError()
			fmt.Fprintln(deps.Err, tui.FormatError(err))
		}
		return fmt.Errorf("chat failed: %w", err)
	}
	if !rawOutput {
		spin.stopWithSuccess("Done")
	}

	if opts.output != "" {
		if err := os.WriteFile(opts.output, []byte(reply), 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		if !rawOutput {
			fmt.Fprintln(deps.Err, successStyle.Render(fmt.Sprintf("✓ Reply saved to %s", opts.output)))
		}
		return nil
	}

	if rawOutput {
		fmt.Fprintln(deps.Out, reply)
		return nil
	}

	if cfg.CopyToClipboard {
		if err := deps.CopyToClipboard(reply); err != nil {
			fmt.Fprintln(deps.Err, warnStyle.Render(fmt.Sprintf("⚠ Failed to copy to clipboard: %v", err)))
		} else {
			fmt.Fprintln(deps.Err, successStyle.Render("✓ Copied to clipboard"))
		}
	}

	bubbleWidth := getTerminalWidth() - 4
	if bubbleWidth < 40 {
		bubbleWidth = 40
	}
	if bubbleWidth > 120 {
		bubbleWidth = 120
	}
	contentWidth := bubbleWidth - 4

	fmt.Fprintln(deps.Out, assistantLabelStyle.Render("✦ IntelliMind"))

	rendered, err := render.Markdown(reply, render.OptionsFromConfig(cfg).WithWidth(contentWidth))
	if err != nil {
		rendered = reply
	}
	rendered = strings.TrimRight(rendered, "\n")

	fmt.Fprintln(deps.Out, assistantBubbleStyle.Width(bubbleWidth).Render(rendered))
	return nil
}

func copyToClipboard(text string) error {
	return clipboard.WriteAll(text)
}

// getTerminalWidth returns the terminal width or a default value
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}
