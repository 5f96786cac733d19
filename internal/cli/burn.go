package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/captionforge/captionforge/internal/config"
	"github.com/captionforge/captionforge/internal/pipeline"
	"github.com/captionforge/captionforge/internal/transcribe"
	"github.com/captionforge/captionforge/internal/translate"
	"github.com/spf13/cobra"
)

var burnCmd = &cobra.Command{
	Use:   "burn [config.json]",
	Short: "Caption the video named in a config document",
	Long: `Run the full captioning pipeline for the video named in the config
document (info.json in the current directory by default).

The audio is transcribed with word timestamps, grouped into short cues using
the "Subtitle Info" limits, optionally translated, rendered as styled ASS
captions, and burned into a new copy of the video.

Examples:
  captionforge burn
  captionforge burn talks/info.json -o talk_captioned.mp4
  captionforge burn --keep-artifacts -v`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBurn,
}

func init() {
	rootCmd.AddCommand(burnCmd)

	burnCmd.Flags().
		Bool("keep-artifacts", false, "Keep output.json, modifiedOutput.json and captions.ass")
	burnCmd.Flags().
		String("fonts-dir", "", "Directory with extra fonts for the caption renderer")
	burnCmd.Flags().
		Int("crf", 0, "Video quality (lower is better, 0 uses the default)")
}

func runBurn(cmd *cobra.Command, args []string) error {
	configPath := config.DefaultConfigFile()
	if len(args) == 1 {
		configPath = args[0]
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := applyBurnFlags(cmd, cfg); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	transcriber, err := transcribe.Factory(
		ctx,
		transcribe.Provider(cfg.Transcription.Provider),
		cfg.TranscriptionKey(),
		transcribe.Options{
			Language: cfg.Transcription.Language,
			Model:    cfg.Transcription.Model,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to create transcriber: %w", err)
	}

	var translator translate.Translator
	if cfg.TranslationEnabled() {
		translator, err = translate.Factory(
			ctx,
			translate.Provider(cfg.Translation.Provider),
			cfg.TranslationKey(),
			translate.Options{
				InputLanguage:  cfg.Transcription.Language,
				TargetLanguage: cfg.Translation.TargetLanguage,
				Model:          cfg.Translation.Model,
			},
		)
		if err != nil {
			return fmt.Errorf("failed to create translator: %w", err)
		}
	}

	p := pipeline.New(transcriber, translator, logger.Named("pipeline"))
	fontsDir, _ := cmd.Flags().GetString("fonts-dir")
	p.BurnOptions.FontsDir = fontsDir
	if crf, _ := cmd.Flags().GetInt("crf"); crf > 0 {
		p.BurnOptions.CRF = crf
	}

	logger.Infow("Starting captioning",
		"config", configPath,
		"video", cfg.Filename,
		"output", cfg.Output,
		"provider", cfg.Transcription.Provider,
	)

	report, err := p.Run(ctx, cfg)
	if err != nil {
		return err
	}

	fmt.Printf("Captions burned successfully: %s\n", report.Output)
	fmt.Printf("  Words: %d\n", report.Words)
	fmt.Printf("  Cues: %d\n", report.Cues)
	if report.Language != "" {
		fmt.Printf("  Language: %s\n", report.Language)
	}
	fmt.Printf("  Took: %s\n", report.Duration.Round(time.Millisecond))
	for _, artifact := range report.Artifacts {
		fmt.Printf("  Artifact: %s\n", artifact)
	}
	return nil
}

// applyBurnFlags lets the shared -o/-l flags and --keep-artifacts override
// the document.
func applyBurnFlags(cmd *cobra.Command, cfg *config.Config) error {
	if output, _ := cmd.Flags().GetString("output"); strings.TrimSpace(output) != "" {
		abs, err := filepath.Abs(output)
		if err != nil {
			return fmt.Errorf("resolve output path: %w", err)
		}
		if abs == cfg.Filename {
			return fmt.Errorf("output must differ from the input video")
		}
		cfg.Output = abs
	}
	if language, _ := cmd.Flags().GetString("language"); language != "" {
		cfg.Transcription.Language = language
	}
	if keep, _ := cmd.Flags().GetBool("keep-artifacts"); keep {
		cfg.Artifacts.Keep = true
	}
	return nil
}
