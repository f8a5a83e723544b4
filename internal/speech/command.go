package speech

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	apierrors "github.com/diogo/intellimind/internal/errors"
	"github.com/diogo/intellimind/internal/models"
)

// LangPlaceholder in recognizer arguments is replaced by the session language.
const LangPlaceholder = "{lang}"

// baseWordsPerMinute is the speaking rate used for VoiceSettings.Rate == 1.
const baseWordsPerMinute = 175

// waitDelay bounds how long a killed command may keep its output pipes open.
const waitDelay = time.Second

// CommandSynthesizer speaks through an espeak-compatible program or macOS say.
type CommandSynthesizer struct {
	Path string
	// SayStyle selects the flag set of macOS say instead of espeak.
	SayStyle bool
}

// NewCommandSynthesizer infers the flag style from the program name.
func NewCommandSynthesizer(path string) *CommandSynthesizer {
	return &CommandSynthesizer{
		Path:     path,
		SayStyle: filepath.Base(path) == "say",
	}
}

// Args builds the command line for text spoken with settings.
func (s *CommandSynthesizer) Args(text string, settings models.VoiceSettings) []string {
	settings = settings.Normalized()
	wpm := strconv.Itoa(int(math.Round(baseWordsPerMinute * settings.Rate)))

	if s.SayStyle {
		return []string{"-r", wpm, "--", text}
	}

	// espeak: pitch 0-99 with 50 as neutral, amplitude 0-200 with 100 as neutral
	pitch := int(math.Round(settings.Pitch * 50))
	if pitch > 99 {
		pitch = 99
	}
	amplitude := int(math.Round(settings.Volume * 100))

	return []string{
		"-s", wpm,
		"-p", strconv.Itoa(pitch),
		"-a", strconv.Itoa(amplitude),
		"-v", espeakVoice(settings.Lang),
		"--", text,
	}
}

// Speak runs the synthesis program and waits for it. Cancelling ctx kills it.
func (s *CommandSynthesizer) Speak(ctx context.Context, text string, settings models.VoiceSettings) error {
	cmd := exec.CommandContext(ctx, s.Path, s.Args(text, settings)...)
	cmd.WaitDelay = waitDelay
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return apierrors.NewSpeechError("synthesis", commandError(err, stderr.String()))
	}
	return nil
}

// espeakVoice maps a BCP 47 tag onto espeak's lowercase voice names.
func espeakVoice(lang string) string {
	return strings.ToLower(lang)
}

// CommandRecognizer records one utterance by running an external program that
// prints the transcript on stdout.
type CommandRecognizer struct {
	Path string
	Args []string
}

// Recognize runs the recognition program once in lang.
func (r *CommandRecognizer) Recognize(ctx context.Context, lang string) (string, error) {
	args := make([]string, len(r.Args))
	for i, arg := range r.Args {
		args[i] = strings.ReplaceAll(arg, LangPlaceholder, lang)
	}

	cmd := exec.CommandContext(ctx, r.Path, args...)
	cmd.WaitDelay = waitDelay
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", apierrors.NewSpeechError("recognition", commandError(err, stderr.String()))
	}

	transcript := strings.TrimSpace(stdout.String())
	if transcript == "" {
		return "", apierrors.NewSpeechError("recognition", fmt.Errorf("no speech detected"))
	}
	return transcript, nil
}

func commandError(err error, stderr string) error {
	stderr = strings.TrimSpace(stderr)
	if stderr == "" {
		return err
	}
	return fmt.Errorf("%w: %s", err, stderr)
}
