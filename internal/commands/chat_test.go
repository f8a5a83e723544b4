package commands

import (
	"errors"
	"strings"
	"testing"

	"github.com/diogo/intellimind/internal/chat"
	apierrors "github.com/diogo/intellimind/internal/errors"
	"github.com/diogo/intellimind/internal/storage"
)

func TestChatCommand_RunsTUI(t *testing.T) {
	env := newTestEnv(t)
	env.synth = &recordingSynth{}

	if err := env.run("chat", "--server", "http://chat.test"); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	opts := env.chatOpts
	if opts == nil {
		t.Fatal("RunChat was not called")
	}
	if opts.Client != env.client {
		t.Error("TUI should receive the configured client")
	}
	if opts.Store != env.store {
		t.Error("TUI should receive the opened store")
	}
	if opts.Synthesizer == nil || opts.Recognizer != nil {
		t.Errorf("capabilities = recognizer %v, synthesizer %v", opts.Recognizer, opts.Synthesizer)
	}
	if opts.ServerURL != "http://chat.test" {
		t.Errorf("ServerURL = %q", opts.ServerURL)
	}
	if opts.Logger == nil {
		t.Error("TUI should receive a logger")
	}
	if env.client.HealthCalls != 1 {
		t.Errorf("health probes = %d, want 1", env.client.HealthCalls)
	}
	if !strings.Contains(env.errOut.String(), "Connected") {
		t.Errorf("stderr = %q", env.errOut.String())
	}
}

func TestChatCommand_UnreachableServerStillStarts(t *testing.T) {
	env := newTestEnv(t)
	env.client.HealthErr = errors.New("connection refused")

	if err := env.run("chat"); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if env.chatOpts == nil {
		t.Fatal("chat should start without a reachable server")
	}
	if !strings.Contains(env.errOut.String(), "is not reachable") {
		t.Errorf("stderr = %q", env.errOut.String())
	}
}

func TestChatCommand_StoreFailureFallsBackToMemory(t *testing.T) {
	env := newTestEnv(t)
	env.storeErr = errors.New("redis down")

	if err := env.run("chat"); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if _, ok := env.chatOpts.Store.(*storage.MemoryStore); !ok {
		t.Errorf("Store = %T, want *storage.MemoryStore", env.chatOpts.Store)
	}
	if !strings.Contains(env.errOut.String(), "settings will not be saved") {
		t.Errorf("stderr = %q", env.errOut.String())
	}
}

func TestClearCommand(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		stdinTTY  bool
		input     string
		wantErr   bool
		wantClear int
		wantOut   string
	}{
		{"yes flag", []string{"clear", "--yes"}, false, "", false, 1, chat.StatusCleared},
		{"confirmed", []string{"clear"}, true, "y\n", false, 1, chat.StatusCleared},
		{"confirmed long form", []string{"clear"}, true, "YES\n", false, 1, chat.StatusCleared},
		{"declined", []string{"clear"}, true, "n\n", false, 0, "Cancelled"},
		{"empty answer", []string{"clear"}, true, "\n", false, 0, "Cancelled"},
		{"no terminal", []string{"clear"}, false, "y\n", true, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.stdinTTY = tt.stdinTTY
			env.in = tt.input

			err := env.run(tt.args...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("run() error = %v, wantErr %v", err, tt.wantErr)
			}
			if _, clears := env.client.Calls(); clears != tt.wantClear {
				t.Errorf("clear calls = %d, want %d", clears, tt.wantClear)
			}
			if !strings.Contains(env.out.String(), tt.wantOut) {
				t.Errorf("output = %q, want %q", env.out.String(), tt.wantOut)
			}
		})
	}
}

func TestClearCommand_NotConfirmedWithoutTerminal(t *testing.T) {
	env := newTestEnv(t)

	err := env.run("clear")
	if !errors.Is(err, apierrors.ErrNotConfirmed) {
		t.Fatalf("run() error = %v, want ErrNotConfirmed", err)
	}
}

func TestClearCommand_PromptText(t *testing.T) {
	env := newTestEnv(t)
	env.stdinTTY = true
	env.in = "n\n"

	if err := env.run("clear"); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if !strings.HasPrefix(env.out.String(), chat.ClearConfirmPrompt+" [y/N]: ") {
		t.Errorf("prompt = %q", env.out.String())
	}
}

func TestClearCommand_Failure(t *testing.T) {
	env := newTestEnv(t)
	env.client.ClearErr = errors.New("backend down")

	err := env.run("clear", "-y")
	if err == nil || !strings.Contains(err.Error(), chat.ClearFailedAlert) {
		t.Fatalf("run() error = %v", err)
	}
	if !strings.Contains(env.errOut.String(), "backend down") {
		t.Errorf("stderr = %q", env.errOut.String())
	}
}

func TestHealthCommand(t *testing.T) {
	tests := []struct {
		name    string
		status  string
		err     error
		wantErr bool
	}{
		{"healthy", "healthy", nil, false},
		{"degraded", "degraded", nil, true},
		{"unreachable", "", errors.New("connection refused"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.client.HealthStatus = tt.status
			env.client.HealthErr = tt.err

			err := env.run("health")
			if (err != nil) != tt.wantErr {
				t.Fatalf("run() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !strings.Contains(env.out.String(), "is healthy") {
				t.Errorf("output = %q", env.out.String())
			}
		})
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"Y\n", true},
		{" yes \n", true},
		{"y", true},
		{"no\n", false},
		{"\n", false},
		{"", false},
		{"maybe\n", false},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			env := newTestEnv(t)
			env.in = tt.input
			if got := confirm(env.deps(), "Sure?"); got != tt.want {
				t.Errorf("confirm(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
