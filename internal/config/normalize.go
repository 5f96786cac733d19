package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTranscription()
	c.normalizeSubtitleInfo()
	c.normalizeTranslation()
	c.normalizeAPIKeys()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Filename, err = resolvePath(c.baseDir, strings.TrimSpace(c.Filename)); err != nil {
		return fmt.Errorf("Filename: %w", err)
	}
	if c.Output, err = resolvePath(c.baseDir, strings.TrimSpace(c.Output)); err != nil {
		return fmt.Errorf("Output: %w", err)
	}
	if c.Output == "" && c.Filename != "" {
		c.Output = defaultOutput(c.Filename)
	}
	if c.Artifacts.Directory, err = resolvePath(c.baseDir, strings.TrimSpace(c.Artifacts.Directory)); err != nil {
		return fmt.Errorf("Artifacts.Directory: %w", err)
	}
	return nil
}

func (c *Config) normalizeTranscription() {
	t := &c.Transcription
	t.Provider = strings.ToLower(strings.TrimSpace(t.Provider))
	if t.Provider == "" {
		t.Provider = defaultProvider
	}
	t.Model = strings.TrimSpace(t.Model)
	if t.Model == "" && t.Provider == defaultProvider {
		t.Model = defaultModel
	}
	t.Language = strings.TrimSpace(t.Language)
	if t.Concurrency == 0 {
		t.Concurrency = defaultConcurrency
	}
}

func (c *Config) normalizeSubtitleInfo() {
	s := &c.SubtitleInfo
	s.Font = strings.TrimSpace(s.Font)
	if s.Font == "" {
		s.Font = defaultFont
	}
	s.Color = strings.TrimSpace(s.Color)
	s.StrokeColor = strings.TrimSpace(s.StrokeColor)
	s.ShadowColor = strings.TrimSpace(s.ShadowColor)
	if s.ShadowColor == "" {
		s.ShadowColor = defaultShadowColor
	}
	s.Position = strings.ToLower(strings.TrimSpace(s.Position))
	if s.Position == "" {
		s.Position = defaultPosition
	}
}

func (c *Config) normalizeTranslation() {
	t := &c.Translation
	t.TargetLanguage = strings.TrimSpace(t.TargetLanguage)
	t.Provider = strings.ToLower(strings.TrimSpace(t.Provider))
	if t.Provider == "" {
		t.Provider = defaultTranslateEngine
	}
	t.Model = strings.TrimSpace(t.Model)
}

func (c *Config) normalizeAPIKeys() {
	c.APIKeys.OpenAI = envFallback(c.APIKeys.OpenAI, "OPENAI_API_KEY")
	c.APIKeys.Gemini = envFallback(c.APIKeys.Gemini, "GEMINI_API_KEY")
	c.APIKeys.Anthropic = envFallback(c.APIKeys.Anthropic, "ANTHROPIC_API_KEY")
}

func envFallback(value, key string) string {
	value = strings.TrimSpace(value)
	if value != "" {
		return value
	}
	if env, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(env)
	}
	return ""
}
