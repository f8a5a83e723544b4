package commands

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/diogo/intellimind/internal/api"
	"github.com/diogo/intellimind/internal/config"
	"github.com/diogo/intellimind/internal/models"
	"github.com/diogo/intellimind/internal/server"
	"github.com/diogo/intellimind/internal/speech"
	"github.com/diogo/intellimind/internal/storage"
	"github.com/diogo/intellimind/internal/tui"
)

type recordingSynth struct {
	mu       sync.Mutex
	texts    []string
	settings []models.VoiceSettings
}

func (s *recordingSynth) Speak(_ context.Context, text string, settings models.VoiceSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts = append(s.texts, text)
	s.settings = append(s.settings, settings)
	return nil
}

// testEnv wires every dependency of the command tree to an in-memory fake
type testEnv struct {
	cfg      config.Config
	cfgErr   error
	client   *api.MockClient
	store    *storage.MemoryStore
	storeErr error
	synth    speech.Synthesizer

	stdinTTY  bool
	stdoutTTY bool
	in        string

	out    bytes.Buffer
	errOut bytes.Buffer

	gotCfg    config.Config
	chatOpts  *tui.ChatOptions
	serveAddr string
	serveOpts server.Options
	copied    []string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.LogFile = filepath.Join(t.TempDir(), "intellimind.log")
	return &testEnv{
		cfg:    cfg,
		client: &api.MockClient{ChatResponse: "pong", HealthStatus: server.StatusHealthy},
		store:  storage.NewMemoryStore(),
	}
}

func (e *testEnv) deps() *Dependencies {
	return &Dependencies{
		LoadConfig: func() (config.Config, error) { return e.cfg, e.cfgErr },
		NewClient: func(cfg config.Config, _ *zap.Logger) (api.ChatClientInterface, error) {
			e.gotCfg = cfg
			return e.client, nil
		},
		OpenStore: func(config.Config) (storage.Store, error) {
			if e.storeErr != nil {
				return nil, e.storeErr
			}
			return e.store, nil
		},
		DetectSpeech: func(config.SpeechConfig, *zap.Logger) (speech.Recognizer, speech.Synthesizer) {
			return nil, e.synth
		},
		RunChat: func(_ context.Context, opts tui.ChatOptions) error {
			e.chatOpts = &opts
			return nil
		},
		Serve: func(_ context.Context, addr string, opts server.Options) error {
			e.serveAddr = addr
			e.serveOpts = opts
			return nil
		},
		CopyToClipboard: func(text string) error {
			e.copied = append(e.copied, text)
			return nil
		},
		In:               strings.NewReader(e.in),
		Out:              &e.out,
		Err:              &e.errOut,
		StdinIsTerminal:  func() bool { return e.stdinTTY },
		StdoutIsTerminal: func() bool { return e.stdoutTTY },
	}
}

func (e *testEnv) run(args ...string) error {
	if args == nil {
		// nil makes cobra fall back to os.Args
		args = []string{}
	}
	cmd := NewRootCmd(e.deps())
	cmd.SetArgs(args)
	return cmd.Execute()
}

func TestRootCommand_Metadata(t *testing.T) {
	cmd := NewRootCmd(newTestEnv(t).deps())
	if cmd.Use != "intellimind [message]" {
		t.Errorf("Use = %q", cmd.Use)
	}
	if cmd.Short == "" || cmd.Long == "" {
		t.Error("descriptions should not be empty")
	}

	want := []string{"chat", "clear", "health", "voice", "serve", "supervisor", "config"}
	for _, name := range want {
		if sub, _, err := cmd.Find([]string{name}); err != nil || sub.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestRootCommand_Version(t *testing.T) {
	for _, flag := range []string{"-v", "--version"} {
		t.Run(flag, func(t *testing.T) {
			env := newTestEnv(t)
			if err := env.run(flag); err != nil {
				t.Fatalf("run() error = %v", err)
			}
			if !strings.HasPrefix(env.out.String(), "intellimind "+Version) {
				t.Errorf("output = %q", env.out.String())
			}
			if env.client.ChatCalls != 0 {
				t.Error("version must not send a message")
			}
		})
	}
}

func TestRootCommand_NoInputShowsHelp(t *testing.T) {
	env := newTestEnv(t)
	env.stdinTTY = true

	if err := env.run(); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if !strings.Contains(env.out.String(), "Usage:") {
		t.Errorf("expected help output, got %q", env.out.String())
	}
}

func TestRootCommand_TooManyArgs(t *testing.T) {
	env := newTestEnv(t)
	if err := env.run("one", "two"); err == nil {
		t.Error("expected error for two positional arguments")
	}
}

func TestQuery_Sources(t *testing.T) {
	promptFile := filepath.Join(t.TempDir(), "prompt.md")
	if err := os.WriteFile(promptFile, []byte("from file\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		args     []string
		stdin    string
		stdinTTY bool
		want     string
	}{
		{"argument", []string{"hello"}, "", true, "hello"},
		{"stdin", nil, "  from stdin\n", false, "from stdin"},
		{"file", []string{"-f", promptFile}, "", true, "from file"},
		{"argument wins over empty pipe", []string{"hello"}, "", false, "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.in = tt.stdin
			env.stdinTTY = tt.stdinTTY

			if err := env.run(tt.args...); err != nil {
				t.Fatalf("run() error = %v", err)
			}
			if len(env.client.Messages) != 1 || env.client.Messages[0] != tt.want {
				t.Errorf("messages = %q, want [%q]", env.client.Messages, tt.want)
			}
			if env.out.String() != "pong\n" {
				t.Errorf("output = %q, want raw reply", env.out.String())
			}
		})
	}
}

func TestQuery_Rejected(t *testing.T) {
	tests := []struct {
		name string
		arg  string
	}{
		{"blank", "   "},
		{"too long", strings.Repeat("x", 1001)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.stdinTTY = true
			if err := env.run(tt.arg); err == nil {
				t.Fatal("expected error")
			}
			if env.client.ChatCalls != 0 {
				t.Error("rejected message must not reach the server")
			}
		})
	}
}

func TestQuery_ServerFlagOverridesConfig(t *testing.T) {
	env := newTestEnv(t)
	env.stdinTTY = true

	if err := env.run("--server", "http://other:9000", "hello"); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if env.gotCfg.ServerURL != "http://other:9000" {
		t.Errorf("ServerURL = %q", env.gotCfg.ServerURL)
	}
}

func TestQuery_BrokenConfigWarns(t *testing.T) {
	env := newTestEnv(t)
	env.stdinTTY = true
	env.cfgErr = errors.New("failed to parse config file")

	if err := env.run("hello"); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if !strings.Contains(env.errOut.String(), "Warning: failed to parse config file") {
		t.Errorf("stderr = %q", env.errOut.String())
	}
}

func TestQuery_ChatError(t *testing.T) {
	env := newTestEnv(t)
	env.stdinTTY = true
	env.client.ChatErr = errors.New("boom")

	err := env.run("hello")
	if err == nil || !strings.Contains(err.Error(), "chat failed: boom") {
		t.Fatalf("run() error = %v", err)
	}
	if env.out.Len() != 0 {
		t.Errorf("nothing should be printed on failure, got %q", env.out.String())
	}
}

func TestQuery_OutputFile(t *testing.T) {
	env := newTestEnv(t)
	env.stdinTTY = true
	path := filepath.Join(t.TempDir(), "reply.md")

	if err := env.run("hello", "-o", path); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "pong" {
		t.Errorf("file = %q", data)
	}
	if env.out.Len() != 0 {
		t.Errorf("stdout should be empty, got %q", env.out.String())
	}
}

func TestQuery_DecoratedOutput(t *testing.T) {
	env := newTestEnv(t)
	env.stdinTTY = true
	env.stdoutTTY = true
	env.cfg.CopyToClipboard = true

	if err := env.run("hello"); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	out := env.out.String()
	if !strings.Contains(out, "IntelliMind") || !strings.Contains(out, "pong") {
		t.Errorf("decorated output = %q", out)
	}
	if len(env.copied) != 1 || env.copied[0] != "pong" {
		t.Errorf("copied = %q", env.copied)
	}
	if !strings.Contains(env.errOut.String(), "Copied to clipboard") {
		t.Errorf("stderr = %q", env.errOut.String())
	}
}

func TestQuery_RawFlagOnTerminal(t *testing.T) {
	env := newTestEnv(t)
	env.stdinTTY = true
	env.stdoutTTY = true

	if err := env.run("--raw", "hello"); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if env.out.String() != "pong\n" {
		t.Errorf("output = %q", env.out.String())
	}
}

func TestConfigCommand(t *testing.T) {
	env := newTestEnv(t)

	if err := env.run("config", "--server", "http://cfg.test"); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	out := env.out.String()
	if !strings.Contains(out, `"server_url": "http://cfg.test"`) {
		t.Errorf("config output = %s", out)
	}
}

func TestConfigPathAndInit(t *testing.T) {
	home := t.TempDir()
	t.Setenv(config.EnvHome, home)

	env := newTestEnv(t)
	if err := env.run("config", "path"); err != nil {
		t.Fatalf("config path error = %v", err)
	}
	want := filepath.Join(home, "config.json")
	if strings.TrimSpace(env.out.String()) != want {
		t.Errorf("path = %q, want %q", env.out.String(), want)
	}

	if err := env.run("config", "init"); err != nil {
		t.Fatalf("config init error = %v", err)
	}
	if _, err := os.Stat(want); err != nil {
		t.Errorf("config file not written: %v", err)
	}
}

func TestExecuteWrapperSuccess(t *testing.T) {
	env := newTestEnv(t)
	old := rootCmd
	rootCmd = NewRootCmd(env.deps())
	rootCmd.SetArgs([]string{"--version"})
	defer func() { rootCmd = old }()

	// Should not call os.Exit for successful execution
	Execute()

	if !strings.Contains(env.out.String(), Version) {
		t.Errorf("output = %q", env.out.String())
	}
}
