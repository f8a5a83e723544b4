package server

import (
	"fmt"
	"strings"
	"sync"
)

// Roles stored in the history
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one entry of the server-side conversation
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// History is the process-wide conversation of the demo backend
type History struct {
	mu    sync.Mutex
	turns []Turn
}

// NewHistory creates an empty History
func NewHistory() *History {
	return &History{}
}

// Exchange records message and the reply produced for it
func (h *History) Exchange(message string, reply func(string) string) string {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.turns = append(h.turns, Turn{Role: RoleUser, Content: message})
	out := reply(message)
	h.turns = append(h.turns, Turn{Role: RoleAssistant, Content: out})
	return out
}

// Clear drops every turn and reports how many were dropped
func (h *History) Clear() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := len(h.turns)
	h.turns = nil
	return n
}

// Len returns the number of stored turns
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.turns)
}

// Turns returns a copy of the conversation
func (h *History) Turns() []Turn {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Turn, len(h.turns))
	copy(out, h.turns)
	return out
}

type keywordReply struct {
	keywords []string
	reply    string
}

// keywordReplies are checked in order; the first rule with any matching keyword wins
var keywordReplies = []keywordReply{
	{
		keywords: []string{"hello", "hi"},
		reply:    "Hello! I'm IntelliMind Assistant, your intelligent AI companion. I'm designed to work with Sentient's framework and FireworksAI's models. This is a demo version - to get full functionality, please install FireworksAI!",
	},
	{
		keywords: []string{"sentient"},
		reply:    "Sentient's framework provides advanced AI capabilities for building intelligent agents. IntelliMind Assistant is designed to showcase these capabilities when integrated with FireworksAI's API endpoints.",
	},
	{
		keywords: []string{"fireworks"},
		reply:    "FireworksAI provides powerful API endpoints for AI models. To use the full IntelliMind Assistant, you'll need to install the fireworks-ai package and configure your API key.",
	},
	{
		keywords: []string{"framework"},
		reply:    "This app uses Flask (Python web framework) for the backend and vanilla HTML/CSS/JavaScript for the frontend. It's similar to Next.js but uses Python instead of Node.js. The AI integration uses FireworksAI's API endpoints.",
	},
	{
		keywords: []string{"next.js", "nextjs"},
		reply:    "Great question! This app uses Flask (Python) instead of Next.js (Node.js). Flask is Python's equivalent to Next.js - it's a web framework for building web applications. Both are great choices, but this project uses Python to integrate with Sentient's AI framework.",
	},
	{
		keywords: []string{"help"},
		reply:    "I can help you understand how IntelliMind Assistant works! Try asking about Sentient's framework, FireworksAI, or just have a conversation with me. This demo shows the interface - install FireworksAI for full AI capabilities!",
	},
	{
		keywords: []string{"test"},
		reply:    "Great! This demo is working perfectly. The interface is ready, and once you install FireworksAI, you'll have access to real AI conversations powered by Sentient's models.",
	},
}

// Reply returns the canned answer for message. Keywords match as
// case-insensitive substrings, so "this" matches "hi".
func Reply(message string) string {
	lower := strings.ToLower(message)
	for _, kr := range keywordReplies {
		for _, kw := range kr.keywords {
			if strings.Contains(lower, kw) {
				return kr.reply
			}
		}
	}
	return fmt.Sprintf("I understand you said: '%s'. This is a demo version of IntelliMind Assistant. To get full AI capabilities, please install FireworksAI and configure your API key. The interface is working perfectly!", message)
}
