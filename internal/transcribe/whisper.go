package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/captionforge/captionforge/internal/audio"
	"github.com/captionforge/captionforge/internal/subtitle"
)

const envWhisperPath = "CAPTIONFORGE_WHISPER_PATH"

// WhisperTranscriber runs the local openai-whisper command line tool with
// word timestamps enabled.
type WhisperTranscriber struct {
	binary  string
	model   string
	options Options
}

// local whisper JSON output
type localWhisperWord struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type localWhisperSegment struct {
	Start float64            `json:"start"`
	End   float64            `json:"end"`
	Text  string             `json:"text"`
	Words []localWhisperWord `json:"words"`
}

type localWhisperOutput struct {
	Text     string                `json:"text"`
	Segments []localWhisperSegment `json:"segments"`
	Language string                `json:"language"`
}

func NewWhisperTranscriber(opts Options) (*WhisperTranscriber, error) {
	binary := strings.TrimSpace(os.Getenv(envWhisperPath))
	if binary == "" {
		path, err := exec.LookPath("whisper")
		if err != nil {
			return nil, fmt.Errorf("whisper executable not found; install openai-whisper or set %s", envWhisperPath)
		}
		binary = path
	}

	model := opts.Model
	if model == "" {
		model = "medium"
	}

	return &WhisperTranscriber{
		binary:  binary,
		model:   model,
		options: opts,
	}, nil
}

// transcribes single audio file
func (t *WhisperTranscriber) Transcribe(ctx context.Context, audioPath string) (*Result, error) {
	if _, err := os.Stat(audioPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("audio file not found: %s", audioPath)
	}

	outputDir, err := os.MkdirTemp("", "captionforge-whisper-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create whisper output dir: %w", err)
	}
	defer os.RemoveAll(outputDir)

	cmd := exec.CommandContext(ctx, t.binary, t.args(audioPath, outputDir)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("whisper failed: %w: %s", err, lastLine(stderr.String()))
	}

	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	data, err := os.ReadFile(filepath.Join(outputDir, base+".json"))
	if err != nil {
		return nil, fmt.Errorf("failed to read whisper output: %w", err)
	}

	result, err := parseLocalWhisperOutput(data)
	if err != nil {
		return nil, err
	}
	if t.options.Language != "" {
		result.Language = t.options.Language
	}
	return result, nil
}

func (t *WhisperTranscriber) args(audioPath, outputDir string) []string {
	args := []string{
		audioPath,
		"--model", t.model,
		"--word_timestamps", "True",
		"--output_format", "json",
		"--output_dir", outputDir,
		"--verbose", "False",
	}
	if t.options.Language != "" {
		args = append(args, "--language", t.options.Language)
	}
	lang := strings.ToLower(strings.TrimSpace(t.options.TranscriptLanguage))
	if lang == "english" || lang == "en" {
		args = append(args, "--task", "translate")
	}
	if t.options.Prompt != "" {
		args = append(args, "--initial_prompt", t.options.Prompt)
	}
	return args
}

// transcribes multiple chunks in parallel
func (t *WhisperTranscriber) TranscribeWithChunks(ctx context.Context, chunks []audio.ChunkInfo, concurrency int) (*Result, error) {
	return transcribeChunks(ctx, chunks, concurrency, t.options.Language, t.Transcribe)
}

func parseLocalWhisperOutput(data []byte) (*Result, error) {
	var out localWhisperOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to parse whisper output: %w", err)
	}

	result := &Result{
		Words:    []subtitle.Word{},
		Language: out.Language,
	}

	for _, seg := range out.Segments {
		segment := subtitle.Segment{
			StartTime: subtitle.Seconds(seg.Start),
			EndTime:   subtitle.Seconds(seg.End),
			Text:      strings.TrimSpace(seg.Text),
		}
		if segment.EndTime > result.Duration {
			result.Duration = segment.EndTime
		}
		if segment.Text == "" && len(seg.Words) == 0 {
			continue
		}
		result.Segments = append(result.Segments, segment)

		// whisper prefixes each word with its leading space
		var words []subtitle.Word
		for _, w := range seg.Words {
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
		result.Words = append(result.Words, wordsOrSpread(words, []subtitle.Segment{segment})...)
	}

	if len(result.Segments) == 0 && strings.TrimSpace(out.Text) != "" {
		return nil, fmt.Errorf("whisper output has text but no segments")
	}

	return result, nil
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}

func (t *WhisperTranscriber) Close() error {
	return nil
}
