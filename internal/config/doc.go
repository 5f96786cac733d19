// Package config loads, normalizes, and validates the captionforge JSON
// document (info.json by default).
//
// The document names the input video and describes caption appearance and
// segmentation limits. Load fills repository defaults, decodes the file with
// unknown keys rejected, resolves relative paths against the document's own
// directory, honours API key environment fallbacks (OPENAI_API_KEY,
// GEMINI_API_KEY, ANTHROPIC_API_KEY), and validates every field once.
//
// Downstream packages never read the document directly: the chunker receives
// Config.Policy and the renderer receives Config.Style.
package config
