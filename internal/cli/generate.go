package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/captionforge/captionforge/internal/audio"
	"github.com/captionforge/captionforge/internal/subtitle"
	"github.com/captionforge/captionforge/internal/transcribe"
	"github.com/captionforge/captionforge/internal/translate"
	"github.com/captionforge/captionforge/internal/video"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate [media_file]",
	Short: "Generate caption files for an audio or video file",
	Long: `Generate word-timed captions for the specified audio or video file.

The command accepts both audio files (mp3, wav, aac, etc.) and video files (mp4, mkv, etc.).
For video files, audio is automatically extracted before transcription.

Words are grouped into short cues using --max-chars, --max-duration and --max-gap.
Long audio is split into chunks and transcribed in parallel by the hosted providers.
Captions can be written as SRT, VTT, ASS, or a JSON cue document.

Examples:
  captionforge generate video.mp4
  captionforge generate audio.mp3 --format vtt --provider gemini
  captionforge generate video.mp4 --max-chars 20 --max-gap 1
  captionforge generate podcast.mp3 -f json -d 5 --concurrency 5 --target-language spanish`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().
		String("provider", string(transcribe.ProviderWhisper), "Transcription provider (whisper, openai, gemini)")
	generateCmd.Flags().
		StringP("api-key", "k", "", "API key for the provider (or set OPENAI_API_KEY/GEMINI_API_KEY)")
	generateCmd.Flags().
		IntP("chunk-duration", "d", 10, "Chunk duration in minutes for splitting audio (0 disables splitting)")
	generateCmd.Flags().
		StringP("format", "f", "srt", "Output caption format (srt, vtt, ass, json)")
	generateCmd.Flags().
		Int("concurrency", 3, "Number of parallel transcription workers")
	generateCmd.Flags().
		String("model", "", "Model to use for transcription (provider default when empty)")
	generateCmd.Flags().
		String("transcript-language", "native", "Output language for transcript (e.g., 'english', 'spanish', or 'native' for original language)")
	generateCmd.Flags().
		String("target-language", "", "Translate captions to this language")
	generateCmd.Flags().
		String("translate-provider", string(translate.ProviderGemini), "Translation provider (gemini, openai, anthropic)")
	generateCmd.Flags().
		String("words-output", "", "Also write the raw word timestamps to this JSON file")
	addPolicyFlags(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	mediaPath := args[0]
	ctx := context.Background()

	if _, err := os.Stat(mediaPath); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", mediaPath)
	}
	if !audio.IsMediaFile(mediaPath) {
		return fmt.Errorf("unsupported file type: %s (expected audio or video file)", filepath.Ext(mediaPath))
	}

	providerStr, _ := cmd.Flags().GetString("provider")
	apiKey, _ := cmd.Flags().GetString("api-key")
	chunkDuration, _ := cmd.Flags().GetInt("chunk-duration")
	formatStr, _ := cmd.Flags().GetString("format")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	model, _ := cmd.Flags().GetString("model")
	outputPath, _ := cmd.Flags().GetString("output")
	language, _ := cmd.Flags().GetString("language")
	transcriptLang, _ := cmd.Flags().GetString("transcript-language")
	targetLang, _ := cmd.Flags().GetString("target-language")
	translateProvider, _ := cmd.Flags().GetString("translate-provider")
	wordsOutput, _ := cmd.Flags().GetString("words-output")

	provider := transcribe.Provider(strings.ToLower(strings.TrimSpace(providerStr)))
	if provider == transcribe.ProviderOpenAI && !isValidOpenAITranscriptLanguage(transcriptLang) {
		return fmt.Errorf("openai can only transcribe in the native language or translate to english, got %q", transcriptLang)
	}

	apiKey, err := resolveAPIKey(string(provider), apiKey)
	if err != nil {
		return err
	}

	policy, err := policyFromFlags(cmd)
	if err != nil {
		return err
	}
	maxLineChars, err := maxLineCharsFromFlags(cmd)
	if err != nil {
		return err
	}

	format, err := subtitle.ParseFormat(formatStr)
	if err != nil {
		return err
	}

	if outputPath == "" {
		baseName := strings.TrimSuffix(mediaPath, filepath.Ext(mediaPath))
		outputPath = baseName + subtitle.GetExtensionForFormat(format)
	}

	logger.Infow("Starting caption generation",
		"input", mediaPath,
		"output", outputPath,
		"provider", provider,
		"format", format,
		"chunk_duration", chunkDuration,
		"concurrency", concurrency,
	)

	tempDir, err := os.MkdirTemp("", "captionforge-*")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	audioPath, err := prepareAudio(ctx, provider, mediaPath, tempDir)
	if err != nil {
		return err
	}

	duration, err := audio.GetDuration(ctx, audioPath)
	if err != nil {
		return fmt.Errorf("failed to get audio duration: %w", err)
	}

	logger.Infow("Audio prepared",
		"duration", duration.String(),
	)

	transcriber, err := transcribe.Factory(ctx, provider, apiKey, transcribe.Options{
		Language:           language,
		TranscriptLanguage: transcriptLang,
		Model:              model,
	})
	if err != nil {
		return fmt.Errorf("failed to create transcriber: %w", err)
	}

	chunkDur := time.Duration(chunkDuration) * time.Minute
	result, err := transcribeAudio(ctx, transcriber, audioPath, tempDir, duration, chunkDur, concurrency)
	if err != nil {
		return fmt.Errorf("transcription failed: %w", err)
	}

	logger.Infow("Transcription complete",
		"words", len(result.Words),
	)

	if wordsOutput != "" {
		if err := subtitle.WriteWordsJSON(result.Words, wordsOutput); err != nil {
			return fmt.Errorf("failed to write words: %w", err)
		}
	}

	generator := subtitle.NewDefaultGenerator(policy)
	subs, err := generator.Generate(result.Words)
	if err != nil {
		return fmt.Errorf("failed to generate captions: %w", err)
	}

	subs.Language = result.Language
	if subs.Language == "" {
		subs.Language = language
	}
	subs.Format = string(format)

	if targetLang != "" {
		if err := translateCaptions(ctx, subs, translateProvider, targetLang, language, concurrency); err != nil {
			return err
		}
	}

	subtitle.WrapLines(subs, maxLineChars)

	writer, err := subtitle.NewWriter(format)
	if err != nil {
		return fmt.Errorf("failed to create caption writer: %w", err)
	}

	if err := writer.Write(subs, outputPath); err != nil {
		return fmt.Errorf("failed to write captions: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Captions generated successfully: %s\n", absOutput)
	fmt.Printf("  Entries: %d\n", len(subs.Entries))
	fmt.Printf("  Duration: %s\n", duration.String())

	return nil
}

// prepareAudio produces the file handed to the transcriber: wav for local
// whisper, compressed mp3 for hosted providers.
func prepareAudio(ctx context.Context, provider transcribe.Provider, mediaPath, tempDir string) (string, error) {
	if provider == transcribe.ProviderWhisper {
		if !audio.IsVideoFile(mediaPath) {
			return mediaPath, nil
		}
		logger.Infow("Extracting audio from video")
		audioPath := filepath.Join(tempDir, "audio.wav")
		processor := video.NewProcessor(tempDir)
		if err := processor.ExtractAudio(ctx, mediaPath, audioPath, video.DefaultExtractAudioOptions()); err != nil {
			return "", fmt.Errorf("failed to extract audio: %w", err)
		}
		return audioPath, nil
	}

	audioPath := filepath.Join(tempDir, "audio.mp3")
	compressionOpts := audio.DefaultCompressionOptions()

	if audio.IsVideoFile(mediaPath) {
		logger.Infow("Extracting audio from video")
		processor := video.NewProcessor(tempDir)
		extractOpts := video.ExtractAudioOptions{
			Format:     compressionOpts.Format,
			SampleRate: compressionOpts.SampleRate,
			Channels:   compressionOpts.Channels,
			Bitrate:    compressionOpts.Bitrate,
		}
		if err := processor.ExtractAudio(ctx, mediaPath, audioPath, extractOpts); err != nil {
			return "", fmt.Errorf("failed to extract audio: %w", err)
		}
		return audioPath, nil
	}

	logger.Infow("Compressing audio for transcription")
	if err := audio.CompressAudio(ctx, mediaPath, audioPath, compressionOpts); err != nil {
		return "", fmt.Errorf("failed to compress audio: %w", err)
	}
	return audioPath, nil
}

func transcribeAudio(
	ctx context.Context,
	transcriber transcribe.Transcriber,
	audioPath, tempDir string,
	duration, chunkDur time.Duration,
	concurrency int,
) (*transcribe.Result, error) {
	ct, ok := transcriber.(transcribe.ConcurrentTranscriber)
	if !ok || chunkDur <= 0 || duration <= chunkDur {
		return transcriber.Transcribe(ctx, audioPath)
	}

	logger.Infow("Splitting audio into chunks",
		"chunk_duration", chunkDur.String(),
	)

	chunks, err := audio.ChunkAudioConcurrent(ctx, audioPath, chunkDur, filepath.Join(tempDir, "chunks"), concurrency)
	if err != nil {
		return nil, fmt.Errorf("failed to split audio: %w", err)
	}

	logger.Infow("Transcribing audio",
		"chunks", len(chunks),
		"concurrency", concurrency,
	)
	return ct.TranscribeWithChunks(ctx, chunks, concurrency)
}

func translateCaptions(
	ctx context.Context,
	subs *subtitle.Subtitle,
	providerStr, targetLang, inputLang string,
	concurrency int,
) error {
	provider := strings.ToLower(strings.TrimSpace(providerStr))
	apiKey, err := resolveAPIKey(provider, "")
	if err != nil {
		return err
	}

	translator, err := translate.Factory(ctx, translate.Provider(provider), apiKey, translate.Options{
		InputLanguage:  inputLang,
		TargetLanguage: targetLang,
	})
	if err != nil {
		return fmt.Errorf("failed to create translator: %w", err)
	}

	logger.Infow("Translating captions",
		"provider", provider,
		"target_language", targetLang,
		"entries", len(subs.Entries),
	)

	if err := translate.TranslateSubtitle(ctx, translator, subs, concurrency); err != nil {
		return fmt.Errorf("translation failed: %w", err)
	}
	subs.Language = targetLang
	return nil
}
