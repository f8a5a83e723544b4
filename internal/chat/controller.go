// Package chat implements the conversation controller behind the chat UI.
//
// The Controller owns the transcript, the status line and the voice settings.
// It talks to the backend through api.ChatClientInterface and to the screen
// through the UI interface, so it runs the same under the terminal UI and
// under test fakes.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/diogo/intellimind/internal/api"
	"github.com/diogo/intellimind/internal/models"
	"github.com/diogo/intellimind/internal/render"
	"github.com/diogo/intellimind/internal/speech"
	"github.com/diogo/intellimind/internal/storage"
)

// Prompts and alerts shown by the controller
const (
	ClearConfirmPrompt = "Are you sure you want to clear the conversation? This action cannot be undone."
	ClearFailedAlert   = "Failed to clear conversation. Please try again."
)

// ErrorReply is the assistant message appended when a send fails
func ErrorReply(err error) string {
	return fmt.Sprintf("I apologize, but I encountered an error: %s. Please try again.", err)
}

// Options configures a Controller. Client and UI are required.
type Options struct {
	Client      api.ChatClientInterface
	UI          UI
	Store       storage.Store
	Recognizer  speech.Recognizer
	Synthesizer speech.Synthesizer
	Scheduler   Scheduler
	Logger      *zap.Logger
	Now         func() time.Time
}

// Controller mediates between the UI, the backend and the speech providers.
type Controller struct {
	client      api.ChatClientInterface
	ui          UI
	store       storage.Store
	recognizer  speech.Recognizer
	synthesizer speech.Synthesizer
	scheduler   Scheduler
	logger      *zap.Logger
	now         func() time.Time
	bindings    map[Action]Handler

	// ctx bounds speech sessions; cancelled by Close
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu           sync.Mutex
	transcript   []models.Message
	settings     models.VoiceSettings
	lastResponse string
	sending      bool
	status       Status
	revert       Timer
	stopListen   context.CancelFunc
	stopSpeak    context.CancelFunc
	closed       bool
}

// New builds a controller, loads the persisted voice settings and shows the
// welcome message.
func New(ctx context.Context, opts Options) (*Controller, error) {
	if opts.Client == nil {
		return nil, errors.New("chat: client is required")
	}
	if opts.UI == nil {
		return nil, errors.New("chat: ui is required")
	}
	if opts.Store == nil {
		opts.Store = storage.NewMemoryStore()
	}
	if opts.Scheduler == nil {
		opts.Scheduler = RealScheduler{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	settings, err := storage.LoadVoiceSettings(ctx, opts.Store)
	if err != nil {
		opts.Logger.Warn("using default voice settings", zap.Error(err))
	}

	c := &Controller{
		client:      opts.Client,
		ui:          opts.UI,
		store:       opts.Store,
		recognizer:  opts.Recognizer,
		synthesizer: opts.Synthesizer,
		scheduler:   opts.Scheduler,
		logger:      opts.Logger,
		now:         opts.Now,
		settings:    settings,
	}
	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.bindings = c.newBindings()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.ui.SetCapabilities(Capabilities{
		Recognition: c.recognizer != nil,
		Synthesis:   c.synthesizer != nil,
	})
	c.ui.SetVoiceSettings(c.settings)

	welcome := models.Welcome(c.now())
	c.transcript = []models.Message{welcome}
	c.ui.AppendMessage(welcome)

	c.status = Status{Text: StatusReady, Kind: KindReady}
	c.ui.SetStatus(c.status)
	c.ui.SetSendEnabled(true)
	c.ui.FocusInput()

	return c, nil
}

// SendMessage sends the current input to the backend. Blank input is ignored,
// as is a send while another is still pending. Failures are reported in the
// transcript and never returned.
func (c *Controller) SendMessage(ctx context.Context) {
	c.mu.Lock()
	if c.sending || c.closed {
		c.mu.Unlock()
		return
	}
	text := strings.TrimSpace(c.ui.Input())
	if text == "" {
		c.mu.Unlock()
		return
	}

	c.sending = true
	c.appendLocked(models.NewMessage(text, models.SenderUser, c.now()))
	c.ui.SetInput("")
	c.ui.SetSendEnabled(false)
	c.ui.SetBusy(true)
	c.updateStatusLocked(StatusThinking, KindTyping, StatusRevertDelay)
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.sending = false
		c.ui.SetSendEnabled(true)
		c.ui.SetBusy(false)
		c.ui.FocusInput()
	}()

	start := time.Now()
	response, err := c.chat(ctx, text)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.logger.Warn("chat request failed",
			zap.Error(err),
			zap.Duration("elapsed", time.Since(start)))
		c.appendLocked(models.NewMessage(ErrorReply(err), models.SenderAssistant, c.now()))
		c.updateStatusLocked(StatusError, KindError, 0)
		return
	}

	c.logger.Debug("chat response received",
		zap.Int("length", len(response)),
		zap.Duration("elapsed", time.Since(start)))
	c.lastResponse = response
	c.appendLocked(models.NewMessage(response, models.SenderAssistant, c.now()))
	c.updateStatusLocked(StatusReady, KindReady, StatusRevertDelay)
}

// chat converts a panicking client into an ordinary error
func (c *Controller) chat(ctx context.Context, text string) (response string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unexpected failure: %v", r)
		}
	}()
	return c.client.Chat(ctx, text)
}

// ClearConversation asks for confirmation and then resets the conversation on
// the backend and in the transcript.
func (c *Controller) ClearConversation(ctx context.Context) {
	if !c.ui.Confirm(ctx, ClearConfirmPrompt) {
		c.logger.Debug("clear not confirmed")
		return
	}

	if err := c.client.Clear(ctx); err != nil {
		c.logger.Warn("clear request failed", zap.Error(err))
		c.ui.Alert(ClearFailedAlert)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.transcript = []models.Message{models.Welcome(c.now())}
	c.lastResponse = ""
	c.ui.ResetTranscript(c.transcriptLocked())
	c.updateStatusLocked(StatusCleared, KindReady, ClearedRevertDelay)
	c.logger.Info("conversation cleared")
}

// UpdateStatus shows text with kind. Non-error statuses revert to Ready after
// StatusRevertDelay unless a newer update arrives first.
func (c *Controller) UpdateStatus(text string, kind Kind) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updateStatusLocked(text, kind, StatusRevertDelay)
}

func (c *Controller) updateStatusLocked(text string, kind Kind, revertAfter time.Duration) {
	seq := c.status.Seq + 1
	c.status = Status{Text: text, Kind: kind, Seq: seq}
	c.ui.SetStatus(c.status)

	if kind == KindError || c.closed {
		return
	}
	c.revert = c.scheduler.AfterFunc(revertAfter, func() {
		c.revertStatus(seq)
	})
}

func (c *Controller) revertStatus(seq uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.status.Seq != seq {
		return
	}
	c.status = Status{Text: StatusReady, Kind: KindReady, Seq: seq + 1}
	c.ui.SetStatus(c.status)
}

// Status returns the current status
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Transcript returns a copy of the conversation so far
func (c *Controller) Transcript() []models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transcriptLocked()
}

func (c *Controller) transcriptLocked() []models.Message {
	out := make([]models.Message, len(c.transcript))
	copy(out, c.transcript)
	return out
}

// LastResponse returns the most recent backend reply, or "" if none
func (c *Controller) LastResponse() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastResponse
}

// Sending reports whether a send is in flight
func (c *Controller) Sending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sending
}

func (c *Controller) appendLocked(msg models.Message) {
	c.transcript = append(c.transcript, msg)
	c.ui.AppendMessage(msg)
}

// Close stops any speech session, cancels pending status reverts and waits
// for background work to finish.
func (c *Controller) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	if c.revert != nil {
		c.revert.Stop()
	}
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
	return nil
}

// speechText strips inline markers so they are not read aloud
func speechText(text string) string {
	return strings.ReplaceAll(render.Plain(render.FormatMessage(text)), "\n", " ")
}
