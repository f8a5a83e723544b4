package tui

import (
	"context"
	"sync"

	"github.com/diogo/intellimind/internal/chat"
	"github.com/diogo/intellimind/internal/models"
)

// Screen is the chat.UI the controller drives. It holds the state the
// bubbletea model renders and calls the notifier after every change so the
// program repaints. All methods are safe for concurrent use.
type Screen struct {
	mu     sync.Mutex
	notify func()

	input        string
	inputVersion uint64
	focusVersion uint64

	messages          []models.Message
	transcriptVersion uint64

	sendEnabled bool
	busy        bool
	status      chat.Status
	listening   bool
	speaking    bool
	caps        chat.Capabilities
	settings    models.VoiceSettings

	confirm *confirmRequest
	alert   string
}

type confirmRequest struct {
	prompt string
	answer chan bool
}

// snapshot is a copy of the screen state taken for one render pass
type snapshot struct {
	Input             string
	InputVersion      uint64
	FocusVersion      uint64
	Messages          []models.Message
	TranscriptVersion uint64
	SendEnabled       bool
	Busy              bool
	Status            chat.Status
	Listening         bool
	Speaking          bool
	Caps              chat.Capabilities
	Settings          models.VoiceSettings
	ConfirmPrompt     string
	Alert             string
}

var _ chat.UI = (*Screen)(nil)

// NewScreen returns an empty screen with the send control enabled
func NewScreen() *Screen {
	return &Screen{
		sendEnabled: true,
		settings:    models.DefaultVoiceSettings(),
		notify:      func() {},
	}
}

// SetNotifier sets the function called after each state change. It must not block.
func (s *Screen) SetNotifier(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fn == nil {
		fn = func() {}
	}
	s.notify = fn
}

// update applies fn under the lock and notifies afterwards
func (s *Screen) update(fn func()) {
	s.mu.Lock()
	fn()
	notify := s.notify
	s.mu.Unlock()
	notify()
}

func (s *Screen) Input() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input
}

// SetInput replaces the input field contents on the controller's behalf
func (s *Screen) SetInput(text string) {
	s.update(func() {
		s.input = text
		s.inputVersion++
	})
}

// syncInput records what the user typed without asking the model to redraw the field
func (s *Screen) syncInput(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.input = text
}

func (s *Screen) FocusInput() {
	s.update(func() { s.focusVersion++ })
}

func (s *Screen) AppendMessage(msg models.Message) {
	s.update(func() {
		s.messages = append(s.messages, msg)
		s.transcriptVersion++
	})
}

func (s *Screen) ResetTranscript(msgs []models.Message) {
	s.update(func() {
		s.messages = append([]models.Message(nil), msgs...)
		s.transcriptVersion++
	})
}

func (s *Screen) SetSendEnabled(enabled bool) {
	s.update(func() { s.sendEnabled = enabled })
}

func (s *Screen) SetBusy(busy bool) {
	s.update(func() { s.busy = busy })
}

func (s *Screen) SetStatus(status chat.Status) {
	s.update(func() { s.status = status })
}

func (s *Screen) SetListening(listening bool) {
	s.update(func() { s.listening = listening })
}

func (s *Screen) SetSpeaking(speaking bool) {
	s.update(func() { s.speaking = speaking })
}

func (s *Screen) SetCapabilities(caps chat.Capabilities) {
	s.update(func() { s.caps = caps })
}

func (s *Screen) SetVoiceSettings(settings models.VoiceSettings) {
	s.update(func() { s.settings = settings })
}

// Confirm shows prompt in a modal and waits for the user's answer. A newer
// request replaces an unanswered one, which then reads as declined.
func (s *Screen) Confirm(ctx context.Context, prompt string) bool {
	req := &confirmRequest{prompt: prompt, answer: make(chan bool, 1)}
	s.update(func() {
		if s.confirm != nil {
			s.confirm.answer <- false
		}
		s.confirm = req
	})

	select {
	case ok := <-req.answer:
		return ok
	case <-ctx.Done():
		s.update(func() {
			if s.confirm == req {
				s.confirm = nil
			}
		})
		return false
	}
}

// answerConfirm resolves the pending confirmation, if any
func (s *Screen) answerConfirm(ok bool) {
	s.update(func() {
		if s.confirm == nil {
			return
		}
		s.confirm.answer <- ok
		s.confirm = nil
	})
}

func (s *Screen) Alert(message string) {
	s.update(func() { s.alert = message })
}

func (s *Screen) dismissAlert() {
	s.update(func() { s.alert = "" })
}

func (s *Screen) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := snapshot{
		Input:             s.input,
		InputVersion:      s.inputVersion,
		FocusVersion:      s.focusVersion,
		Messages:          append([]models.Message(nil), s.messages...),
		TranscriptVersion: s.transcriptVersion,
		SendEnabled:       s.sendEnabled,
		Busy:              s.busy,
		Status:            s.status,
		Listening:         s.listening,
		Speaking:          s.speaking,
		Caps:              s.caps,
		Settings:          s.settings,
		Alert:             s.alert,
	}
	if s.confirm != nil {
		snap.ConfirmPrompt = s.confirm.prompt
	}
	return snap
}
