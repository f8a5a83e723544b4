package chat

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"unicode/utf8"
)

// Action names a user intent the UI can raise
type Action string

const (
	ActionSend        Action = "send"
	ActionClear       Action = "clear"
	ActionToggleVoice Action = "toggle-voice"
	ActionSpeak       Action = "speak"
	ActionRate        Action = "rate"
	ActionPitch       Action = "pitch"
	ActionVolume      Action = "volume"
	ActionLanguage    Action = "language"
)

// Handler runs an action. value carries the control's new value for settings
// actions and is ignored otherwise.
type Handler func(ctx context.Context, value string) error

func (c *Controller) newBindings() map[Action]Handler {
	return map[Action]Handler{
		ActionSend: func(ctx context.Context, _ string) error {
			c.SendMessage(ctx)
			return nil
		},
		ActionClear: func(ctx context.Context, _ string) error {
			c.ClearConversation(ctx)
			return nil
		},
		ActionToggleVoice: func(ctx context.Context, _ string) error {
			c.ToggleVoiceRecognition(ctx)
			return nil
		},
		ActionSpeak: func(ctx context.Context, _ string) error {
			c.SpeakLastResponse(ctx)
			return nil
		},
		ActionRate:     floatSetter(c.SetRate),
		ActionPitch:    floatSetter(c.SetPitch),
		ActionVolume:   floatSetter(c.SetVolume),
		ActionLanguage: c.SetLanguage,
	}
}

func floatSetter(set func(context.Context, float64) error) Handler {
	return func(ctx context.Context, value string) error {
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid value %q: %w", value, err)
		}
		return set(ctx, f)
	}
}

// Bindings returns the action table. The returned map is a copy.
func (c *Controller) Bindings() map[Action]Handler {
	out := make(map[Action]Handler, len(c.bindings))
	for action, h := range c.bindings {
		out[action] = h
	}
	return out
}

// Actions lists the bound actions in name order
func (c *Controller) Actions() []Action {
	actions := make([]Action, 0, len(c.bindings))
	for action := range c.bindings {
		actions = append(actions, action)
	}
	sort.Slice(actions, func(i, j int) bool { return actions[i] < actions[j] })
	return actions
}

// Dispatch runs the handler bound to action
func (c *Controller) Dispatch(ctx context.Context, action Action, value string) error {
	h, ok := c.bindings[action]
	if !ok {
		return fmt.Errorf("unknown action %q", action)
	}
	return h(ctx, value)
}

// MaxInputLength is the input field's character limit
const MaxInputLength = 1000

// CharLevel grades the input length for the character counter
type CharLevel int

const (
	CharNormal CharLevel = iota
	CharWarn
	CharLimit
)

// CharCount returns the number of characters in input and its counter level
func CharCount(input string) (int, CharLevel) {
	n := utf8.RuneCountInString(input)
	switch {
	case n > 900:
		return n, CharLimit
	case n > 700:
		return n, CharWarn
	default:
		return n, CharNormal
	}
}
