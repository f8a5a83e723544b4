package commands

import (
	"context"
	"io"
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/diogo/intellimind/internal/api"
	"github.com/diogo/intellimind/internal/config"
	"github.com/diogo/intellimind/internal/server"
	"github.com/diogo/intellimind/internal/speech"
	"github.com/diogo/intellimind/internal/storage"
	"github.com/diogo/intellimind/internal/tui"
)

// Dependencies holds the external dependencies for the commands.
// This allows for dependency injection and easier testing.
type Dependencies struct {
	// LoadConfig reads the user configuration
	LoadConfig func() (config.Config, error)

	// NewClient builds the backend client for cfg
	NewClient func(cfg config.Config, logger *zap.Logger) (api.ChatClientInterface, error)

	// OpenStore opens the settings store selected by cfg
	OpenStore func(cfg config.Config) (storage.Store, error)

	// DetectSpeech reports the speech capabilities of this machine
	DetectSpeech func(cfg config.SpeechConfig, logger *zap.Logger) (speech.Recognizer, speech.Synthesizer)

	// RunChat runs the interactive TUI
	RunChat func(ctx context.Context, opts tui.ChatOptions) error

	// Serve runs the demo backend until ctx is cancelled
	Serve func(ctx context.Context, addr string, opts server.Options) error

	// CopyToClipboard copies a reply when copy_to_clipboard is enabled
	CopyToClipboard func(text string) error

	In  io.Reader
	Out io.Writer
	Err io.Writer

	// StdinIsTerminal and StdoutIsTerminal report whether the streams are TTYs
	StdinIsTerminal  func() bool
	StdoutIsTerminal func() bool
}

// NewDependencies creates a new Dependencies struct with default implementations.
func NewDependencies() *Dependencies {
	return (&Dependencies{}).withDefaults()
}

// withDefaults fills every unset field with its production implementation
func (d *Dependencies) withDefaults() *Dependencies {
	if d == nil {
		d = &Dependencies{}
	}
	if d.LoadConfig == nil {
		d.LoadConfig = config.LoadConfig
	}
	if d.NewClient == nil {
		d.NewClient = newAPIClient
	}
	if d.OpenStore == nil {
		d.OpenStore = storage.Open
	}
	if d.DetectSpeech == nil {
		d.DetectSpeech = speech.Detect
	}
	if d.RunChat == nil {
		d.RunChat = tui.RunChat
	}
	if d.Serve == nil {
		d.Serve = func(ctx context.Context, addr string, opts server.Options) error {
			return server.New(opts).ListenAndServe(ctx, addr)
		}
	}
	if d.CopyToClipboard == nil {
		d.CopyToClipboard = copyToClipboard
	}
	if d.In == nil {
		d.In = os.Stdin
	}
	if d.Out == nil {
		d.Out = os.Stdout
	}
	if d.Err == nil {
		d.Err = os.Stderr
	}
	if d.StdinIsTerminal == nil {
		d.StdinIsTerminal = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }
	}
	if d.StdoutIsTerminal == nil {
		d.StdoutIsTerminal = func() bool { return term.IsTerminal(int(os.Stdout.Fd())) }
	}
	return d
}

func newAPIClient(cfg config.Config, logger *zap.Logger) (api.ChatClientInterface, error) {
	return api.NewClient(cfg.ServerURL,
		api.WithTimeout(cfg.Timeout()),
		api.WithLogger(logger),
	)
}
