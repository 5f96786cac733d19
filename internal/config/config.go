package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/captionforge/captionforge/internal/subtitle"
)

//go:embed sample_config.json
var sampleConfig string

// Transcription selects the speech-to-text backend.
type Transcription struct {
	Provider     string  `json:"Provider"`
	Model        string  `json:"Model"`
	Language     string  `json:"Language"`
	ChunkMinutes float64 `json:"Chunk Minutes"`
	Concurrency  int     `json:"Concurrency"`
}

// SubtitleInfo holds the segmentation limits and caption appearance.
// Durations are in seconds.
type SubtitleInfo struct {
	MaxChars    int     `json:"Max Chars"`
	MaxDuration float64 `json:"Max Duration"`
	MaxGap      float64 `json:"Max Gap"`

	// MaxLineChars wraps a cue onto two lines when it is longer; 0 disables.
	MaxLineChars int `json:"Max Line Chars"`

	Font        string  `json:"Font"`
	FontSize    int     `json:"Font Size"`
	Color       string  `json:"Color"`
	StrokeColor string  `json:"Stroke Color"`
	StrokeWidth float64 `json:"Stroke Width"`
	Shadow      bool    `json:"Shadow"`
	ShadowColor string  `json:"Shadow Color"`
	Position    string  `json:"Position"`
	Margin      int     `json:"Margin"`
	Bold        bool    `json:"Bold"`
}

// Translation enables optional cue translation when TargetLanguage is set.
type Translation struct {
	TargetLanguage string `json:"Target Language"`
	Provider       string `json:"Provider"`
	Model          string `json:"Model"`
}

// Artifacts controls the intermediate documents kept after a run.
type Artifacts struct {
	Directory string `json:"Directory"`
	Keep      bool   `json:"Keep"`
}

// APIKeys may be set in the document; environment variables fill any blanks.
type APIKeys struct {
	OpenAI    string `json:"OpenAI"`
	Gemini    string `json:"Gemini"`
	Anthropic string `json:"Anthropic"`
}

// Config is the fully decoded captionforge document.
type Config struct {
	Filename      string        `json:"Filename"`
	Output        string        `json:"Output"`
	Transcription Transcription `json:"Transcription"`
	SubtitleInfo  SubtitleInfo  `json:"Subtitle Info"`
	Translation   Translation   `json:"Translation"`
	Artifacts     Artifacts     `json:"Artifacts"`
	APIKeys       APIKeys       `json:"API Keys"`

	// directory containing the document; relative paths resolve against it
	baseDir string
}

// Load reads, normalizes, and validates the document at path. An empty path
// means info.json in the working directory.
func Load(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		path = defaultConfigFile
	}

	resolved, err := expandPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config file not found: %s (create one with 'captionforge config init')", resolved)
		}
		return nil, fmt.Errorf("open config: %w", err)
	}

	cfg, err := Parse(data, filepath.Dir(resolved))
	if err != nil {
		return nil, err
	}

	if err := cfg.checkInput(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes a document held in memory. baseDir anchors relative paths;
// an empty baseDir means the working directory.
func Parse(data []byte, baseDir string) (*Config, error) {
	cfg := Default()

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.baseDir = baseDir
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// checkInput reports a missing input file before any work starts.
func (c *Config) checkInput() error {
	info, err := os.Stat(c.Filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &ValidationError{Field: "Filename", Message: fmt.Sprintf("input file not found: %s", c.Filename)}
		}
		return fmt.Errorf("stat input: %w", err)
	}
	if info.IsDir() {
		return &ValidationError{Field: "Filename", Message: fmt.Sprintf("%s is a directory", c.Filename)}
	}
	return nil
}

// Policy returns the chunking limits described by the document.
func (c *Config) Policy() subtitle.Policy {
	return subtitle.Policy{
		MaxChars:    c.SubtitleInfo.MaxChars,
		MaxDuration: seconds(c.SubtitleInfo.MaxDuration),
		MaxGap:      seconds(c.SubtitleInfo.MaxGap),
	}
}

// seconds converts a limit without rounding so small positive values stay
// positive.
func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}

// Style returns the caption appearance described by the document.
func (c *Config) Style() (subtitle.Style, error) {
	return c.SubtitleInfo.style()
}

func (s SubtitleInfo) style() (subtitle.Style, error) {
	style := subtitle.Style{
		Font:        s.Font,
		FontSize:    s.FontSize,
		StrokeWidth: s.StrokeWidth,
		Shadow:      s.Shadow,
		Position:    subtitle.Position(s.Position),
		Margin:      s.Margin,
		Bold:        s.Bold,
	}

	var err error
	if style.Color, err = subtitle.ParseColor(s.Color); err != nil {
		return style, &ValidationError{Field: "Subtitle Info.Color", Message: err.Error()}
	}
	if style.StrokeColor, err = subtitle.ParseColor(s.StrokeColor); err != nil {
		return style, &ValidationError{Field: "Subtitle Info.Stroke Color", Message: err.Error()}
	}
	if style.ShadowColor, err = subtitle.ParseColor(s.ShadowColor); err != nil {
		return style, &ValidationError{Field: "Subtitle Info.Shadow Color", Message: err.Error()}
	}
	return style, nil
}

// ArtifactsDir returns where intermediate documents are written.
func (c *Config) ArtifactsDir() string {
	if c.Artifacts.Directory != "" {
		return c.Artifacts.Directory
	}
	return filepath.Dir(c.Output)
}

// TranscriptionKey returns the API key required by the transcription
// provider, or "" for providers that run locally.
func (c *Config) TranscriptionKey() string {
	return c.keyFor(c.Transcription.Provider)
}

// TranslationKey returns the API key for the translation provider.
func (c *Config) TranslationKey() string {
	return c.keyFor(c.Translation.Provider)
}

// TranslationEnabled reports whether cues should be translated.
func (c *Config) TranslationEnabled() bool {
	return c.Translation.TargetLanguage != ""
}

func (c *Config) keyFor(provider string) string {
	switch provider {
	case "openai":
		return c.APIKeys.OpenAI
	case "gemini":
		return c.APIKeys.Gemini
	case "anthropic":
		return c.APIKeys.Anthropic
	default:
		return ""
	}
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// resolvePath expands pathValue, anchoring relative paths at baseDir.
func resolvePath(baseDir, pathValue string) (string, error) {
	if pathValue == "" {
		return "", nil
	}
	if baseDir != "" && !filepath.IsAbs(pathValue) && !strings.HasPrefix(pathValue, "~") {
		pathValue = filepath.Join(baseDir, pathValue)
	}
	return expandPath(pathValue)
}

// defaultOutput places the burned video next to the input.
func defaultOutput(input string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + outputSuffix + ext
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
