package chat

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/diogo/intellimind/internal/models"
	"github.com/diogo/intellimind/internal/storage"
)

// ToggleVoiceRecognition starts a single-shot recognition session, or stops
// the active one. The transcript replaces the input field. Without a
// recognizer this does nothing.
func (c *Controller) ToggleVoiceRecognition(ctx context.Context) {
	if c.recognizer == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	if c.stopListen != nil {
		c.stopListen()
		return
	}

	sctx, cancel := context.WithCancel(c.ctx)
	unlink := context.AfterFunc(ctx, cancel)
	c.stopListen = cancel
	lang := c.settings.Lang
	c.ui.SetListening(true)
	c.logger.Debug("voice recognition started", zap.String("lang", lang))

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer unlink()

		transcript, err := c.recognizer.Recognize(sctx, lang)
		stopped := sctx.Err() != nil
		cancel()

		c.mu.Lock()
		defer c.mu.Unlock()

		c.stopListen = nil
		if c.closed {
			return
		}
		c.ui.SetListening(false)

		switch {
		case err == nil:
			c.ui.SetInput(transcript)
			c.ui.FocusInput()
		case stopped:
			c.logger.Debug("voice recognition stopped")
		default:
			c.logger.Warn("voice recognition failed", zap.Error(err))
			c.updateStatusLocked("Voice recognition error: "+err.Error(), KindError, 0)
		}
	}()
}

// SpeakLastResponse reads the most recent backend reply aloud, or stops
// playback if it is already speaking. Without a synthesizer this does nothing.
func (c *Controller) SpeakLastResponse(ctx context.Context) {
	if c.synthesizer == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	if c.stopSpeak != nil {
		c.stopSpeak()
		return
	}
	if c.lastResponse == "" {
		c.updateStatusLocked(StatusNoReply, KindError, 0)
		return
	}

	sctx, cancel := context.WithCancel(c.ctx)
	unlink := context.AfterFunc(ctx, cancel)
	c.stopSpeak = cancel
	text := speechText(c.lastResponse)
	settings := c.settings
	c.ui.SetSpeaking(true)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer unlink()

		err := c.synthesizer.Speak(sctx, text, settings)
		stopped := sctx.Err() != nil
		cancel()

		c.mu.Lock()
		defer c.mu.Unlock()

		c.stopSpeak = nil
		if c.closed {
			return
		}
		c.ui.SetSpeaking(false)

		if err != nil && !stopped {
			c.logger.Warn("speech synthesis failed", zap.Error(err))
			c.updateStatusLocked("Speech error: "+err.Error(), KindError, 0)
		}
	}()
}

// Listening reports whether a recognition session is active
func (c *Controller) Listening() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopListen != nil
}

// Speaking reports whether playback is active
func (c *Controller) Speaking() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopSpeak != nil
}

// VoiceSettings returns the current settings
func (c *Controller) VoiceSettings() models.VoiceSettings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings
}

// SetRate sets the speaking rate, clamped to [MinRate, MaxRate], and persists
// the settings.
func (c *Controller) SetRate(ctx context.Context, rate float64) error {
	return c.updateSettings(ctx, func(s *models.VoiceSettings) { s.Rate = rate })
}

// SetPitch sets the pitch and persists the settings
func (c *Controller) SetPitch(ctx context.Context, pitch float64) error {
	return c.updateSettings(ctx, func(s *models.VoiceSettings) { s.Pitch = pitch })
}

// SetVolume sets the volume and persists the settings
func (c *Controller) SetVolume(ctx context.Context, volume float64) error {
	return c.updateSettings(ctx, func(s *models.VoiceSettings) { s.Volume = volume })
}

// SetLanguage changes the language used by speech and by the next
// recognition session.
func (c *Controller) SetLanguage(ctx context.Context, lang string) error {
	if lang == "" {
		return errors.New("language must not be empty")
	}
	return c.updateSettings(ctx, func(s *models.VoiceSettings) { s.Lang = lang })
}

func (c *Controller) updateSettings(ctx context.Context, mutate func(*models.VoiceSettings)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.settings
	mutate(&next)
	next = next.Normalized()
	c.settings = next
	c.ui.SetVoiceSettings(next)

	if err := storage.SaveVoiceSettings(ctx, c.store, next); err != nil {
		c.logger.Warn("failed to persist voice settings", zap.Error(err))
		c.updateStatusLocked("Failed to save voice settings", KindError, 0)
		return err
	}
	return nil
}
