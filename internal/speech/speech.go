// Package speech provides command-backed speech synthesis and recognition.
//
// Both capabilities shell out to external programs found on PATH. Detection
// happens once; a missing program means the capability is absent and the
// corresponding controls are hidden rather than failing at call time.
package speech

import (
	"context"
	"os/exec"

	"go.uber.org/zap"

	"github.com/diogo/intellimind/internal/config"
	"github.com/diogo/intellimind/internal/models"
)

// Synthesizer speaks text aloud. Speak blocks until playback finishes or ctx
// is cancelled.
type Synthesizer interface {
	Speak(ctx context.Context, text string, settings models.VoiceSettings) error
}

// Recognizer captures a single utterance and returns its transcript. It is
// single-shot: no continuous listening and no interim results.
type Recognizer interface {
	Recognize(ctx context.Context, lang string) (string, error)
}

// lookPath is swapped in tests
var lookPath = exec.LookPath

// synthesisCandidates are tried in order when no synthesis command is configured
var synthesisCandidates = []string{"espeak-ng", "espeak", "say"}

// Detect returns the capabilities available for cfg. Either result may be nil.
func Detect(cfg config.SpeechConfig, logger *zap.Logger) (Recognizer, Synthesizer) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.Enabled {
		logger.Debug("speech disabled by configuration")
		return nil, nil
	}

	var recognizer Recognizer
	if len(cfg.RecognitionCommand) > 0 {
		if path, err := lookPath(cfg.RecognitionCommand[0]); err == nil {
			recognizer = &CommandRecognizer{Path: path, Args: cfg.RecognitionCommand[1:]}
		} else {
			logger.Info("speech recognition unavailable",
				zap.String("command", cfg.RecognitionCommand[0]), zap.Error(err))
		}
	}

	var synthesizer Synthesizer
	candidates := synthesisCandidates
	if cfg.SynthesisCommand != "" {
		candidates = []string{cfg.SynthesisCommand}
	}
	for _, name := range candidates {
		if path, err := lookPath(name); err == nil {
			synthesizer = NewCommandSynthesizer(path)
			break
		}
	}
	if synthesizer == nil {
		logger.Info("speech synthesis unavailable", zap.Strings("candidates", candidates))
	}

	return recognizer, synthesizer
}
