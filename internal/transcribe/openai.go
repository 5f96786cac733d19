package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/captionforge/captionforge/internal/audio"
	"github.com/captionforge/captionforge/internal/subtitle"
)

// implements Transcriber interface using OpenAI Audio API
type OpenAITranscriber struct {
	client  openai.Client
	model   string
	options Options
}

// word from OpenAI Whisper verbose_json response
type whisperWord struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// segment from OpenAI Whisper verbose_json response
type whisperSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// verbose_json response structure from Whisper
type whisperVerboseResponse struct {
	Text     string           `json:"text"`
	Words    []whisperWord    `json:"words"`
	Segments []whisperSegment `json:"segments"`
	Language string           `json:"language"`
	Duration float64          `json:"duration"`
}

func NewOpenAITranscriber(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*OpenAITranscriber, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))

	model := opts.Model
	if model == "" {
		model = "whisper-1"
	}

	return &OpenAITranscriber{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

// transcribes single audio file
func (t *OpenAITranscriber) Transcribe(
	ctx context.Context,
	audioPath string,
) (*Result, error) {
	if _, err := os.Stat(audioPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("audio file not found: %s", audioPath)
	}

	file, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer file.Close()

	duration, _ := audio.GetDuration(ctx, audioPath)

	if t.shouldUseTranslation() {
		return t.transcribeWithTranslation(ctx, file, duration)
	}

	return t.transcribeWithTimestamps(ctx, file, duration)
}

func (t *OpenAITranscriber) shouldUseTranslation() bool {
	lang := strings.ToLower(strings.TrimSpace(t.options.TranscriptLanguage))
	return lang == "english" || lang == "en"
}

// the translations endpoint has no word granularity, so words are spread
// across the returned segments
func (t *OpenAITranscriber) transcribeWithTranslation(
	ctx context.Context,
	file *os.File,
	duration time.Duration,
) (*Result, error) {
	params := openai.AudioTranslationNewParams{
		File:           file,
		Model:          openai.AudioModel(t.model),
		ResponseFormat: openai.AudioTranslationNewParamsResponseFormatVerboseJSON,
	}

	if t.options.Prompt != "" {
		params.Prompt = openai.String(t.options.Prompt)
	}

	resp, err := t.client.Audio.Translations.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("translation failed: %w", err)
	}

	result, err := parseVerboseJSONResponse(resp.RawJSON(), duration)
	if err != nil {
		result = fallbackResult(resp.Text, duration)
	}
	result.Language = "en"
	return result, nil
}

func (t *OpenAITranscriber) transcribeWithTimestamps(
	ctx context.Context,
	file *os.File,
	duration time.Duration,
) (*Result, error) {
	params := openai.AudioTranscriptionNewParams{
		File:                   file,
		Model:                  openai.AudioModel(t.model),
		ResponseFormat:         openai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []string{"word", "segment"},
	}

	if t.options.Language != "" {
		params.Language = openai.String(t.options.Language)
	}

	if t.options.Prompt != "" {
		params.Prompt = openai.String(t.options.Prompt)
	}

	resp, err := t.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}

	result, err := parseVerboseJSONResponse(resp.RawJSON(), duration)
	if err != nil {
		result = fallbackResult(resp.Text, duration)
	}
	if t.options.Language != "" {
		result.Language = t.options.Language
	}
	return result, nil
}

// fallbackResult treats the whole transcript as one segment
func fallbackResult(text string, duration time.Duration) *Result {
	segments := []subtitle.Segment{{
		StartTime: 0,
		EndTime:   duration,
		Text:      strings.TrimSpace(text),
	}}
	return &Result{
		Words:    subtitle.WordsFromSegments(segments),
		Segments: segments,
		Duration: duration,
	}
}

func parseVerboseJSONResponse(
	rawJSON string,
	fallbackDuration time.Duration,
) (*Result, error) {
	if rawJSON == "" {
		return nil, fmt.Errorf("empty response")
	}

	var verboseResp whisperVerboseResponse
	if err := json.Unmarshal([]byte(rawJSON), &verboseResp); err != nil {
		return nil, fmt.Errorf("failed to parse verbose_json response: %w", err)
	}

	duration := fallbackDuration
	if verboseResp.Duration > 0 {
		duration = subtitle.Seconds(verboseResp.Duration)
	}

	result := &Result{
		Language: verboseResp.Language,
		Duration: duration,
	}

	for _, seg := range verboseResp.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		result.Segments = append(result.Segments, subtitle.Segment{
			StartTime: subtitle.Seconds(seg.Start),
			EndTime:   subtitle.Seconds(seg.End),
			Text:      text,
		})
	}

	if len(result.Segments) == 0 && len(verboseResp.Words) == 0 {
		if strings.TrimSpace(verboseResp.Text) == "" {
			return nil, fmt.Errorf("no segments or text in response")
		}
		result.Segments = []subtitle.Segment{{
			StartTime: 0,
			EndTime:   duration,
			Text:      strings.TrimSpace(verboseResp.Text),
		}}
	}

	words := make([]subtitle.Word, 0, len(verboseResp.Words))
	for _, w := range verboseResp.Words {
		text := strings.TrimSpace(w.Word)
		if text == "" {
			continue
		}
		words = append(words, subtitle.Word{
			Text:      text,
			StartTime: subtitle.Seconds(w.Start),
			EndTime:   subtitle.Seconds(w.End),
		})
	}
	result.Words = wordsOrSpread(words, result.Segments)

	return result, nil
}

// transcribes multiple chunks in parallel
func (t *OpenAITranscriber) TranscribeWithChunks(
	ctx context.Context,
	chunks []audio.ChunkInfo,
	concurrency int,
) (*Result, error) {
	return transcribeChunks(ctx, chunks, concurrency, t.options.Language, t.Transcribe)
}

func (t *OpenAITranscriber) Close() error {
	return nil
}
