package chat

import "time"

// Kind classifies a status update
type Kind string

const (
	KindReady  Kind = "ready"
	KindTyping Kind = "typing"
	KindError  Kind = "error"
)

// Status texts shown by the controller
const (
	StatusReady    = "Ready"
	StatusThinking = "IntelliMind is thinking..."
	StatusError    = "Error occurred"
	StatusCleared  = "Conversation cleared"
	StatusNoReply  = "No response to read"
)

const (
	// StatusRevertDelay is how long a non-error status stays before reverting to Ready
	StatusRevertDelay = 3 * time.Second
	// ClearedRevertDelay is how long the cleared notice stays
	ClearedRevertDelay = 2 * time.Second
)

// Status is the transient status line. Seq increases with every update so a
// scheduled revert can tell whether it has been superseded.
type Status struct {
	Text string
	Kind Kind
	Seq  uint64
}

// IsError reports whether the status is sticky
func (s Status) IsError() bool {
	return s.Kind == KindError
}
