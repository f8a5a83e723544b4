package chat

import (
	"context"

	"github.com/diogo/intellimind/internal/models"
)

// Capabilities tells the UI which speech controls to show
type Capabilities struct {
	Recognition bool
	Synthesis   bool
}

// UI is the surface the controller drives. The controller may call it while
// holding its own lock, so implementations must not call back into the
// controller from these methods.
type UI interface {
	// Input returns the current contents of the input field
	Input() string
	SetInput(text string)
	FocusInput()

	AppendMessage(msg models.Message)
	// ResetTranscript replaces every displayed message with msgs
	ResetTranscript(msgs []models.Message)

	SetSendEnabled(enabled bool)
	SetBusy(busy bool)
	SetStatus(status Status)
	SetListening(listening bool)
	SetSpeaking(speaking bool)

	// SetCapabilities is called once at construction
	SetCapabilities(caps Capabilities)
	SetVoiceSettings(settings models.VoiceSettings)

	// Confirm blocks until the user answers prompt or ctx is done
	Confirm(ctx context.Context, prompt string) bool
	// Alert shows a message the user has to dismiss
	Alert(message string)
}
