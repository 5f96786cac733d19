package config

const (
	defaultConfigFile      = "info.json"
	defaultProvider        = "whisper"
	defaultModel           = "medium"
	defaultChunkMinutes    = 10
	defaultConcurrency     = 3
	defaultMaxChars        = 30
	defaultMaxDuration     = 2.5
	defaultMaxGap          = 1.5
	defaultFont            = "Arial"
	defaultFontSize        = 48
	defaultColor           = "white"
	defaultStrokeColor     = "black"
	defaultStrokeWidth     = 2
	defaultShadowColor     = "black"
	defaultPosition        = "bottom"
	defaultMargin          = 60
	defaultTranslateEngine = "gemini"
	outputSuffix           = "_captioned"
)

// Default returns a Config populated with repository defaults. Filename is
// left empty because it has no sensible default. Model is left empty so each
// provider picks its own; whisper gets its default during normalization.
func Default() Config {
	return Config{
		Transcription: Transcription{
			Provider:     defaultProvider,
			ChunkMinutes: defaultChunkMinutes,
			Concurrency:  defaultConcurrency,
		},
		SubtitleInfo: SubtitleInfo{
			MaxChars:    defaultMaxChars,
			MaxDuration: defaultMaxDuration,
			MaxGap:      defaultMaxGap,
			Font:        defaultFont,
			FontSize:    defaultFontSize,
			Color:       defaultColor,
			StrokeColor: defaultStrokeColor,
			StrokeWidth: defaultStrokeWidth,
			Shadow:      true,
			ShadowColor: defaultShadowColor,
			Position:    defaultPosition,
			Margin:      defaultMargin,
		},
		Translation: Translation{
			Provider: defaultTranslateEngine,
		},
	}
}

// DefaultConfigFile is the document read when no path is given.
func DefaultConfigFile() string {
	return defaultConfigFile
}
