// Package pipeline runs the full captioning flow for one configured video:
// extract audio, transcribe to timed words, chunk into cues, optionally
// translate, render an ASS script with the configured style, and burn it in.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/captionforge/captionforge/internal/audio"
	"github.com/captionforge/captionforge/internal/config"
	"github.com/captionforge/captionforge/internal/logging"
	"github.com/captionforge/captionforge/internal/subtitle"
	"github.com/captionforge/captionforge/internal/transcribe"
	"github.com/captionforge/captionforge/internal/translate"
	"github.com/captionforge/captionforge/internal/video"
)

// artifact file names, matching the documents earlier releases wrote
const (
	WordsArtifact    = "output.json"
	CuesArtifact     = "modifiedOutput.json"
	CaptionsArtifact = "captions.ass"
)

// Extractor pulls the audio track out of a video.
type Extractor interface {
	ExtractAudio(ctx context.Context, videoPath, outputPath string, opts video.ExtractAudioOptions) error
}

// Prober reports video dimensions and duration.
type Prober interface {
	GetInfo(ctx context.Context, videoPath string) (*video.Info, error)
}

// Burner renders a subtitle file onto the video frames.
type Burner interface {
	BurnCaptions(ctx context.Context, videoPath, subtitlePath, outputPath string, opts video.BurnOptions) error
}

// Splitter cuts long audio into chunks for parallel transcription.
type Splitter interface {
	Split(ctx context.Context, audioPath string, chunk time.Duration, outputDir string, concurrency int) ([]audio.ChunkInfo, error)
}

// SplitterFunc adapts a function to Splitter.
type SplitterFunc func(ctx context.Context, audioPath string, chunk time.Duration, outputDir string, concurrency int) ([]audio.ChunkInfo, error)

func (f SplitterFunc) Split(ctx context.Context, audioPath string, chunk time.Duration, outputDir string, concurrency int) ([]audio.ChunkInfo, error) {
	return f(ctx, audioPath, chunk, outputDir, concurrency)
}

// Pipeline wires the collaborators for one run. Prober, Splitter, and
// Translator are optional.
type Pipeline struct {
	Extractor   Extractor
	Prober      Prober
	Splitter    Splitter
	Transcriber transcribe.Transcriber
	Translator  translate.Translator
	Burner      Burner
	BurnOptions video.BurnOptions
	Logger      *logging.Logger
}

// New builds a pipeline around the ffmpeg-backed video processor.
func New(tr transcribe.Transcriber, translator translate.Translator, logger *logging.Logger) *Pipeline {
	processor := video.NewProcessor(os.TempDir())
	return &Pipeline{
		Extractor:   processor,
		Prober:      processor,
		Splitter:    SplitterFunc(audio.ChunkAudioConcurrent),
		Transcriber: tr,
		Translator:  translator,
		Burner:      processor,
		BurnOptions: video.DefaultBurnOptions(),
		Logger:      logger,
	}
}

// Report summarizes a finished run.
type Report struct {
	Output    string
	Language  string
	Words     int
	Cues      int
	Duration  time.Duration
	Artifacts []string
}

// Run executes every step in order. Steps never overlap; the scratch
// directory is removed when Run returns.
func (p *Pipeline) Run(ctx context.Context, cfg *config.Config) (*Report, error) {
	if err := p.check(cfg); err != nil {
		return nil, err
	}

	logger := p.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	started := time.Now()

	workDir, err := os.MkdirTemp("", "captionforge-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create work directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	var info *video.Info
	if p.Prober != nil {
		info, err = p.Prober.GetInfo(ctx, cfg.Filename)
		if err != nil {
			logger.Warnw("Could not probe video, using default caption resolution", "video", cfg.Filename, "error", err)
			info = nil
		} else {
			logger.Debugw("Probed video", "width", info.Width, "height", info.Height, "duration", info.Duration)
			if !info.HasAudio {
				return nil, fmt.Errorf("video has no audio stream: %s", cfg.Filename)
			}
		}
	}

	audioPath, extractOpts := audioTarget(workDir, cfg)
	logger.Infow("Extracting audio", "video", cfg.Filename, "format", extractOpts.Format)
	if err := p.Extractor.ExtractAudio(ctx, cfg.Filename, audioPath, extractOpts); err != nil {
		return nil, fmt.Errorf("failed to extract audio: %w", err)
	}

	logger.Infow("Transcribing", "provider", cfg.Transcription.Provider)
	result, err := p.transcribe(ctx, cfg, info, audioPath, workDir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to transcribe: %w", err)
	}
	logger.Infow("Transcription complete", "words", len(result.Words), "language", result.Language)

	cues, err := subtitle.Chunk(result.Words, cfg.Policy())
	if err != nil {
		return nil, fmt.Errorf("failed to chunk words: %w", err)
	}
	logger.Infow("Chunked captions", "cues", len(cues))

	sub := subtitle.NewSubtitle(cues)
	sub.Language = result.Language
	sub.Format = string(subtitle.FormatASS)

	if cfg.TranslationEnabled() {
		logger.Infow("Translating captions", "target", cfg.Translation.TargetLanguage, "provider", cfg.Translation.Provider)
		if err := translate.TranslateSubtitle(ctx, p.Translator, sub, cfg.Transcription.Concurrency); err != nil {
			return nil, fmt.Errorf("failed to translate captions: %w", err)
		}
		sub.Language = cfg.Translation.TargetLanguage
	}
	subtitle.WrapLines(sub, cfg.SubtitleInfo.MaxLineChars)

	style, err := cfg.Style()
	if err != nil {
		return nil, err
	}
	assWriter := &subtitle.ASSWriter{
		Title: strings.TrimSuffix(filepath.Base(cfg.Filename), filepath.Ext(cfg.Filename)),
		Style: style,
	}
	if info != nil {
		assWriter.PlayResX, assWriter.PlayResY = info.Width, info.Height
	}

	captionsPath := filepath.Join(workDir, CaptionsArtifact)
	if err := assWriter.Write(sub, captionsPath); err != nil {
		return nil, fmt.Errorf("failed to write captions: %w", err)
	}

	report := &Report{
		Output:   cfg.Output,
		Language: sub.Language,
		Words:    len(result.Words),
		Cues:     len(sub.Entries),
	}

	if cfg.Artifacts.Keep {
		report.Artifacts, err = writeArtifacts(cfg.ArtifactsDir(), result.Words, sub, assWriter)
		if err != nil {
			return nil, err
		}
		logger.Infow("Wrote artifacts", "dir", cfg.ArtifactsDir())
	}

	if len(sub.Entries) == 0 {
		logger.Warnw("No speech detected, burning video without captions", "video", cfg.Filename)
	}

	logger.Infow("Burning captions", "output", cfg.Output)
	if err := p.Burner.BurnCaptions(ctx, cfg.Filename, captionsPath, cfg.Output, p.BurnOptions); err != nil {
		return nil, fmt.Errorf("failed to burn captions: %w", err)
	}

	report.Duration = time.Since(started)
	return report, nil
}

func (p *Pipeline) check(cfg *config.Config) error {
	if cfg == nil {
		return errors.New("config is required")
	}
	switch {
	case p.Extractor == nil:
		return errors.New("pipeline has no audio extractor")
	case p.Transcriber == nil:
		return errors.New("pipeline has no transcriber")
	case p.Burner == nil:
		return errors.New("pipeline has no caption burner")
	case cfg.TranslationEnabled() && p.Translator == nil:
		return errors.New("translation requested but no translator configured")
	}
	return nil
}

// audioTarget picks the extraction format: local whisper reads wav directly,
// hosted APIs get compressed mp3 to stay under upload limits.
func audioTarget(workDir string, cfg *config.Config) (string, video.ExtractAudioOptions) {
	opts := video.DefaultExtractAudioOptions()
	if cfg.Transcription.Provider != string(transcribe.ProviderWhisper) {
		compressed := audio.DefaultCompressionOptions()
		opts.Format = compressed.Format
		opts.Bitrate = compressed.Bitrate
	}
	return filepath.Join(workDir, "audio."+opts.Format), opts
}

func (p *Pipeline) transcribe(
	ctx context.Context,
	cfg *config.Config,
	info *video.Info,
	audioPath, workDir string,
	logger *logging.Logger,
) (*transcribe.Result, error) {
	chunk := time.Duration(cfg.Transcription.ChunkMinutes * float64(time.Minute))
	ct, concurrent := p.Transcriber.(transcribe.ConcurrentTranscriber)

	splittable := concurrent && p.Splitter != nil && chunk > 0 &&
		(info == nil || info.Duration > chunk)
	if !splittable {
		return p.Transcriber.Transcribe(ctx, audioPath)
	}

	chunks, err := p.Splitter.Split(ctx, audioPath, chunk, filepath.Join(workDir, "chunks"), cfg.Transcription.Concurrency)
	if err != nil {
		return nil, fmt.Errorf("failed to split audio: %w", err)
	}
	if len(chunks) <= 1 {
		return p.Transcriber.Transcribe(ctx, audioPath)
	}

	logger.Infow("Transcribing in chunks", "chunks", len(chunks), "concurrency", cfg.Transcription.Concurrency)
	return ct.TranscribeWithChunks(ctx, chunks, cfg.Transcription.Concurrency)
}

func writeArtifacts(
	dir string,
	words []subtitle.Word,
	sub *subtitle.Subtitle,
	assWriter *subtitle.ASSWriter,
) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create artifacts directory: %w", err)
	}

	wordsPath := filepath.Join(dir, WordsArtifact)
	if err := subtitle.WriteWordsJSON(words, wordsPath); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", WordsArtifact, err)
	}

	cuesPath := filepath.Join(dir, CuesArtifact)
	if err := (&subtitle.JSONWriter{}).Write(sub, cuesPath); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", CuesArtifact, err)
	}

	captionsPath := filepath.Join(dir, CaptionsArtifact)
	if err := assWriter.Write(sub, captionsPath); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", CaptionsArtifact, err)
	}

	return []string{wordsPath, cuesPath, captionsPath}, nil
}
