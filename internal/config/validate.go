package config

import (
	"errors"
	"fmt"
)

// ValidationError names the offending document field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

var (
	transcriptionProviders = map[string]string{
		"whisper": "",
		"openai":  "OPENAI_API_KEY",
		"gemini":  "GEMINI_API_KEY",
	}
	translationProviders = map[string]string{
		"openai":    "OPENAI_API_KEY",
		"gemini":    "GEMINI_API_KEY",
		"anthropic": "ANTHROPIC_API_KEY",
	}
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if c.Filename == "" {
		return invalid("Filename", "must be set")
	}
	if c.Output == c.Filename {
		return invalid("Output", "must differ from Filename")
	}
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateSubtitleInfo(); err != nil {
		return err
	}
	if err := c.validateTranslation(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTranscription() error {
	t := c.Transcription
	env, ok := transcriptionProviders[t.Provider]
	if !ok {
		return invalid("Transcription.Provider", "unsupported provider %q (use whisper, openai, or gemini)", t.Provider)
	}
	if env != "" && c.TranscriptionKey() == "" {
		return invalid("Transcription.Provider", "%s requires an API key; set %s or API Keys in the document", t.Provider, env)
	}
	if t.ChunkMinutes < 0 {
		return invalid("Transcription.Chunk Minutes", "must not be negative")
	}
	if t.Concurrency < 1 {
		return invalid("Transcription.Concurrency", "must be at least 1")
	}
	return nil
}

func (c *Config) validateSubtitleInfo() error {
	s := c.SubtitleInfo
	if err := c.Policy().Validate(); err != nil {
		return &ValidationError{Field: "Subtitle Info", Message: err.Error()}
	}
	if s.FontSize <= 0 {
		return invalid("Subtitle Info.Font Size", "must be positive")
	}
	if s.StrokeWidth < 0 {
		return invalid("Subtitle Info.Stroke Width", "must not be negative")
	}
	if s.Margin < 0 {
		return invalid("Subtitle Info.Margin", "must not be negative")
	}
	if s.MaxLineChars < 0 {
		return invalid("Subtitle Info.Max Line Chars", "must not be negative")
	}
	switch s.Position {
	case "top", "middle", "bottom":
	default:
		return invalid("Subtitle Info.Position", "must be top, middle, or bottom, got %q", s.Position)
	}
	if _, err := s.style(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTranslation() error {
	if !c.TranslationEnabled() {
		return nil
	}
	env, ok := translationProviders[c.Translation.Provider]
	if !ok {
		return invalid("Translation.Provider", "unsupported provider %q (use gemini, openai, or anthropic)", c.Translation.Provider)
	}
	if c.TranslationKey() == "" {
		return invalid("Translation.Provider", "%s requires an API key; set %s or API Keys in the document", c.Translation.Provider, env)
	}
	return nil
}

// IsValidationError reports whether err came from document validation.
func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
