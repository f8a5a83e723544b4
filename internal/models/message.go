// Package models defines the data types shared across intellimind packages.
package models

import "time"

// Sender identifies who authored a transcript message
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// TimeLayout is the display format of message timestamps (hour:minute)
const TimeLayout = "15:04"

// WelcomeText is the assistant greeting a fresh or cleared transcript starts with
const WelcomeText = "Hello! I'm IntelliMind Assistant, your intelligent AI companion. " +
	"I'm powered by Sentient's advanced framework and FireworksAI's cutting-edge models. " +
	"How can I help you today?"

// Message is a single transcript entry
type Message struct {
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage creates a message stamped with now
func NewMessage(text string, sender Sender, now time.Time) Message {
	return Message{Text: text, Sender: sender, Timestamp: now}
}

// Welcome returns the assistant welcome message stamped with now
func Welcome(now time.Time) Message {
	return NewMessage(WelcomeText, SenderAssistant, now)
}

// Time returns the display-formatted timestamp
func (m Message) Time() string {
	return m.Timestamp.Format(TimeLayout)
}

// IsUser reports whether the message was sent by the user
func (m Message) IsUser() bool {
	return m.Sender == SenderUser
}

// IsAssistant reports whether the message was sent by the assistant
func (m Message) IsAssistant() bool {
	return m.Sender == SenderAssistant
}
