package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/captionforge/captionforge/internal/config"
	"github.com/captionforge/captionforge/internal/subtitle"
	"github.com/spf13/cobra"
)

var apiKeyEnv = map[string]string{
	"openai":    "OPENAI_API_KEY",
	"gemini":    "GEMINI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
}

// resolveAPIKey prefers the flag value and falls back to the provider's
// environment variable. Local providers need no key.
func resolveAPIKey(provider, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	env, ok := apiKeyEnv[provider]
	if !ok {
		return "", nil
	}
	if key := os.Getenv(env); key != "" {
		return key, nil
	}
	return "", fmt.Errorf("%s API key is required: use --api-key flag or set %s environment variable", provider, env)
}

// checks that the OpenAI transcript language is supported (only native or English)
func isValidOpenAITranscriptLanguage(lang string) bool {
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case "", "native", "english", "en":
		return true
	default:
		return false
	}
}

// addPolicyFlags registers the chunking limits with their configured defaults.
func addPolicyFlags(cmd *cobra.Command) {
	defaults := config.Default()
	cmd.Flags().
		Int("max-chars", defaults.SubtitleInfo.MaxChars, "Maximum characters per caption")
	cmd.Flags().
		Float64("max-duration", defaults.SubtitleInfo.MaxDuration, "Maximum caption duration in seconds")
	cmd.Flags().
		Float64("max-gap", defaults.SubtitleInfo.MaxGap, "Pause in seconds that starts a new caption")
	cmd.Flags().
		Int("max-line-chars", defaults.SubtitleInfo.MaxLineChars, "Wrap captions longer than this onto two lines (0 disables)")
}

func policyFromFlags(cmd *cobra.Command) (subtitle.Policy, error) {
	maxChars, _ := cmd.Flags().GetInt("max-chars")
	maxDuration, _ := cmd.Flags().GetFloat64("max-duration")
	maxGap, _ := cmd.Flags().GetFloat64("max-gap")

	policy := subtitle.Policy{
		MaxChars:    maxChars,
		MaxDuration: time.Duration(maxDuration * float64(time.Second)),
		MaxGap:      time.Duration(maxGap * float64(time.Second)),
	}
	if err := policy.Validate(); err != nil {
		return subtitle.Policy{}, err
	}
	return policy, nil
}

func maxLineCharsFromFlags(cmd *cobra.Command) (int, error) {
	n, _ := cmd.Flags().GetInt("max-line-chars")
	if n < 0 {
		return 0, fmt.Errorf("--max-line-chars must not be negative, got %d", n)
	}
	return n, nil
}
