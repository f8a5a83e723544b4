package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/diogo/intellimind/internal/api"
	"github.com/diogo/intellimind/internal/chat"
	"github.com/diogo/intellimind/internal/speech"
	"github.com/diogo/intellimind/internal/storage"
)

// ChatOptions holds the collaborators of an interactive session
type ChatOptions struct {
	Client      api.ChatClientInterface
	Store       storage.Store
	Recognizer  speech.Recognizer
	Synthesizer speech.Synthesizer
	Logger      *zap.Logger
	ServerURL   string
}

// RunChat starts the chat TUI and blocks until the user quits
func RunChat(ctx context.Context, opts ChatOptions) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	screen := NewScreen()
	ctrl, err := chat.New(ctx, chat.Options{
		Client:      opts.Client,
		UI:          screen,
		Store:       opts.Store,
		Recognizer:  opts.Recognizer,
		Synthesizer: opts.Synthesizer,
		Logger:      opts.Logger,
	})
	if err != nil {
		return err
	}
	defer ctrl.Close()

	m := NewChatModel(ctx, ctrl, screen, opts.ServerURL)
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	// Coalesce screen notifications; Send blocks until the event loop reads it
	pending := make(chan struct{}, 1)
	screen.SetNotifier(func() {
		select {
		case pending <- struct{}{}:
		default:
		}
	})
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case <-pending:
				p.Send(refreshMsg{})
			}
		}
	}()

	_, err = p.Run()
	close(done)
	return err
}
