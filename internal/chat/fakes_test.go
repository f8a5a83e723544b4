package chat

import (
	"context"
	"sync"
	"time"

	"github.com/diogo/intellimind/internal/models"
)

type fakeUI struct {
	mu sync.Mutex

	input       string
	focused     int
	messages    []models.Message
	sendEnabled bool
	busy        bool
	statuses    []Status
	listening   bool
	speaking    bool
	caps        Capabilities
	settings    models.VoiceSettings

	confirm bool
	prompts []string
	alerts  []string
}

var _ UI = (*fakeUI)(nil)

func (f *fakeUI) Input() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.input
}

func (f *fakeUI) SetInput(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.input = text
}

func (f *fakeUI) FocusInput() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.focused++
}

func (f *fakeUI) AppendMessage(msg models.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, msg)
}

func (f *fakeUI) ResetTranscript(msgs []models.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append([]models.Message(nil), msgs...)
}

func (f *fakeUI) SetSendEnabled(enabled bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sendEnabled = enabled
}

func (f *fakeUI) SetBusy(busy bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.busy = busy
}

func (f *fakeUI) SetStatus(status Status) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses = append(f.statuses, status)
}

func (f *fakeUI) SetListening(listening bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listening = listening
}

func (f *fakeUI) SetSpeaking(speaking bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.speaking = speaking
}

func (f *fakeUI) SetCapabilities(caps Capabilities) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.caps = caps
}

func (f *fakeUI) SetVoiceSettings(settings models.VoiceSettings) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settings = settings
}

func (f *fakeUI) Confirm(_ context.Context, prompt string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	return f.confirm
}

func (f *fakeUI) Alert(message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alerts = append(f.alerts, message)
}

func (f *fakeUI) Messages() []models.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Message(nil), f.messages...)
}

func (f *fakeUI) LastStatus() Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.statuses) == 0 {
		return Status{}
	}
	return f.statuses[len(f.statuses)-1]
}

func (f *fakeUI) SendEnabled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sendEnabled
}

func (f *fakeUI) Busy() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.busy
}

func (f *fakeUI) IsListening() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listening
}

func (f *fakeUI) IsSpeaking() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.speaking
}

type fakeTimer struct {
	mu      sync.Mutex
	delay   time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

func (t *fakeTimer) Fire() {
	t.mu.Lock()
	if t.stopped || t.fired {
		t.mu.Unlock()
		return
	}
	t.fired = true
	t.mu.Unlock()
	t.f()
}

// fakeScheduler records timers and fires them only when asked
type fakeScheduler struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{delay: d, f: f}
	s.timers = append(s.timers, t)
	return t
}

func (s *fakeScheduler) Timers() []*fakeTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*fakeTimer(nil), s.timers...)
}

func (s *fakeScheduler) Last() *fakeTimer {
	timers := s.Timers()
	if len(timers) == 0 {
		return nil
	}
	return timers[len(timers)-1]
}

type fakeRecognizer struct {
	mu         sync.Mutex
	transcript string
	err        error
	block      bool
	langs      []string
}

func (r *fakeRecognizer) Recognize(ctx context.Context, lang string) (string, error) {
	r.mu.Lock()
	r.langs = append(r.langs, lang)
	block, transcript, err := r.block, r.transcript, r.err
	r.mu.Unlock()

	if block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return transcript, err
}

func (r *fakeRecognizer) Langs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.langs...)
}

type spoken struct {
	text     string
	settings models.VoiceSettings
}

type fakeSynthesizer struct {
	mu     sync.Mutex
	block  bool
	err    error
	spoken []spoken
}

func (s *fakeSynthesizer) Speak(ctx context.Context, text string, settings models.VoiceSettings) error {
	s.mu.Lock()
	s.spoken = append(s.spoken, spoken{text: text, settings: settings})
	block, err := s.block, s.err
	s.mu.Unlock()

	if block {
		<-ctx.Done()
		return ctx.Err()
	}
	return err
}

func (s *fakeSynthesizer) Spoken() []spoken {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]spoken(nil), s.spoken...)
}
