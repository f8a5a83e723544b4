package commands

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/diogo/intellimind/internal/logging"
	"github.com/diogo/intellimind/internal/models"
	"github.com/diogo/intellimind/internal/storage"
)

func newVoiceCmd(deps *Dependencies, opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "voice",
		Short: "Show or change the voice settings",
		Long: `Show the persisted voice settings and the speech capabilities of this machine.

Use 'intellimind voice set' to change rate, pitch, volume or language.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.loadConfig(deps)
			store, err := deps.OpenStore(cfg)
			if err != nil {
				return fmt.Errorf("failed to open settings store: %w", err)
			}
			defer store.Close()

			settings, err := storage.LoadVoiceSettings(cmd.Context(), store)
			if err != nil {
				fmt.Fprintf(deps.Err, "Warning: %v (showing defaults)\n", err)
			}
			recognizer, synthesizer := deps.DetectSpeech(cfg.Speech, logging.Nop())

			printVoiceSettings(deps, settings)
			fmt.Fprintf(deps.Out, "%-12s %s\n", "Recognition", availability(recognizer != nil))
			fmt.Fprintf(deps.Out, "%-12s %s\n", "Synthesis", availability(synthesizer != nil))
			return nil
		},
	}

	cmd.AddCommand(newVoiceSetCmd(deps, opts), newVoiceLanguagesCmd(deps), newVoiceSayCmd(deps, opts))
	return cmd
}

func newVoiceSetCmd(deps *Dependencies, opts *globalOptions) *cobra.Command {
	var (
		rate, pitch, volume float64
		lang                string
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change and persist voice settings",
		Long: `Change voice settings. Only the flags given are changed.
Values are clamped to rate 0.5-2.0, pitch 0.0-2.0 and volume 0.0-1.0.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if !flags.Changed("rate") && !flags.Changed("pitch") && !flags.Changed("volume") && !flags.Changed("lang") {
				return fmt.Errorf("nothing to change, pass --rate, --pitch, --volume or --lang")
			}

			cfg := opts.loadConfig(deps)
			store, err := deps.OpenStore(cfg)
			if err != nil {
				return fmt.Errorf("failed to open settings store: %w", err)
			}
			defer store.Close()

			ctx := cmd.Context()
			settings, err := storage.LoadVoiceSettings(ctx, store)
			if err != nil {
				fmt.Fprintf(deps.Err, "Warning: %v (starting from defaults)\n", err)
			}

			if flags.Changed("rate") {
				settings.Rate = rate
			}
			if flags.Changed("pitch") {
				settings.Pitch = pitch
			}
			if flags.Changed("volume") {
				settings.Volume = volume
			}
			if flags.Changed("lang") {
				lang = strings.TrimSpace(lang)
				if lang == "" {
					return fmt.Errorf("language cannot be empty")
				}
				if !slices.Contains(models.Languages(), lang) {
					fmt.Fprintf(deps.Err, "Warning: %s is not one of the offered languages\n", lang)
				}
				settings.Lang = lang
			}

			settings = settings.Normalized()
			if err := storage.SaveVoiceSettings(ctx, store, settings); err != nil {
				return fmt.Errorf("failed to save voice settings: %w", err)
			}

			printVoiceSettings(deps, settings)
			return nil
		},
	}

	cmd.Flags().Float64Var(&rate, "rate", 1.0, "Speech rate (0.5-2.0)")
	cmd.Flags().Float64Var(&pitch, "pitch", 1.0, "Speech pitch (0.0-2.0)")
	cmd.Flags().Float64Var(&volume, "volume", 1.0, "Speech volume (0.0-1.0)")
	cmd.Flags().StringVar(&lang, "lang", "", "Recognition and synthesis language, e.g. en-GB")
	return cmd
}

func newVoiceLanguagesCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List the offered languages",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, l := range models.Languages() {
				fmt.Fprintln(deps.Out, l)
			}
		},
	}
}

func newVoiceSayCmd(deps *Dependencies, opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "say <text>",
		Short: "Speak text with the current voice settings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.loadConfig(deps)
			_, synthesizer := deps.DetectSpeech(cfg.Speech, logging.Nop())
			if synthesizer == nil {
				return fmt.Errorf("speech synthesis is not available, install espeak-ng or set speech.synthesis_command")
			}

			settings := models.DefaultVoiceSettings()
			if store, err := deps.OpenStore(cfg); err == nil {
				if s, err := storage.LoadVoiceSettings(cmd.Context(), store); err == nil {
					settings = s
				}
				store.Close()
			}

			return synthesizer.Speak(cmd.Context(), args[0], settings)
		},
	}
}

func printVoiceSettings(deps *Dependencies, s models.VoiceSettings) {
	fmt.Fprintf(deps.Out, "%-12s %.1f\n", "Rate", s.Rate)
	fmt.Fprintf(deps.Out, "%-12s %.1f\n", "Pitch", s.Pitch)
	fmt.Fprintf(deps.Out, "%-12s %.1f\n", "Volume", s.Volume)
	fmt.Fprintf(deps.Out, "%-12s %s\n", "Language", s.Lang)
}

func availability(ok bool) string {
	if ok {
		return "available"
	}
	return "unavailable"
}
