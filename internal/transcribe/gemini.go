package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"google.golang.org/genai"

	"github.com/captionforge/captionforge/internal/audio"
	"github.com/captionforge/captionforge/internal/subtitle"
)

// implements Transcriber interface using Google Gemini
type GeminiTranscriber struct {
	client  *genai.Client
	model   string
	options Options
}

// word from Gemini's JSON response; some replies use "text" instead of "word"
type transcriptWord struct {
	Word  string  `json:"word"`
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

func (w transcriptWord) text() string {
	if w.Word != "" {
		return strings.TrimSpace(w.Word)
	}
	return strings.TrimSpace(w.Text)
}

func NewGeminiTranscriber(ctx context.Context, apiKey string, opts Options) (*GeminiTranscriber, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := opts.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}

	return &GeminiTranscriber{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

// transcribes single audio file
func (t *GeminiTranscriber) Transcribe(ctx context.Context, audioPath string) (*Result, error) {
	if _, err := os.Stat(audioPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("audio file not found: %s", audioPath)
	}

	uploadedFile, err := t.client.Files.UploadFromPath(ctx, audioPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to upload audio file: %w", err)
	}

	defer func() {
		_, _ = t.client.Files.Delete(context.WithoutCancel(ctx), uploadedFile.Name, nil)
	}()

	parts := []*genai.Part{
		genai.NewPartFromText(t.buildTranscriptionPrompt()),
		genai.NewPartFromURI(uploadedFile.URI, uploadedFile.MIMEType),
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}

	result, err := t.client.Models.GenerateContent(ctx, t.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}

	words, err := parseTranscriptionResponse(result)
	if err != nil {
		return nil, fmt.Errorf("failed to parse transcription: %w", err)
	}

	duration, _ := audio.GetDuration(ctx, audioPath)

	return &Result{
		Words:    words,
		Language: t.options.Language,
		Duration: duration,
	}, nil
}

// transcribes multiple chunks in parallel
func (t *GeminiTranscriber) TranscribeWithChunks(ctx context.Context, chunks []audio.ChunkInfo, concurrency int) (*Result, error) {
	return transcribeChunks(ctx, chunks, concurrency, t.options.Language, t.Transcribe)
}

// creates the prompt for transcription
func (t *GeminiTranscriber) buildTranscriptionPrompt() string {
	var sb strings.Builder

	sb.WriteString("Generate a word-level transcript of this audio. ")
	sb.WriteString("For every spoken word, provide the start timestamp, end timestamp, and the word exactly as spoken, including attached punctuation. ")
	sb.WriteString("Format your response as a JSON array with objects containing 'word', 'start', and 'end' fields, ")
	sb.WriteString("where 'start' and 'end' are timestamps in seconds (as numbers) with millisecond precision. ")
	sb.WriteString("Words must be listed in the order they are spoken. ")

	if t.options.Language != "" {
		sb.WriteString(fmt.Sprintf("The audio is in %s. ", t.options.Language))
	}

	if t.options.TranscriptLanguage != "" && t.options.TranscriptLanguage != "native" {
		sb.WriteString(fmt.Sprintf("Output the transcript in %s. ", t.options.TranscriptLanguage))
	}

	if t.options.Prompt != "" {
		sb.WriteString(t.options.Prompt)
		sb.WriteString(" ")
	}

	sb.WriteString("Return ONLY the JSON array, no other text or markdown formatting.")

	return sb.String()
}

// parses Gemini's response into words
func parseTranscriptionResponse(result *genai.GenerateContentResponse) ([]subtitle.Word, error) {
	if result == nil || len(result.Candidates) == 0 {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	var responseText string
	for _, candidate := range result.Candidates {
		if candidate.Content != nil {
			for _, part := range candidate.Content.Parts {
				if part.Text != "" {
					responseText += part.Text
				}
			}
		}
	}

	if responseText == "" {
		return nil, fmt.Errorf("no text in Gemini response")
	}

	entries, err := extractTranscriptWords(cleanJSONResponse(responseText))
	if err != nil {
		return nil, err
	}

	words := make([]subtitle.Word, 0, len(entries))
	for _, e := range entries {
		words = append(words, subtitle.Word{
			Text:      e.text(),
			StartTime: subtitle.Seconds(e.Start),
			EndTime:   subtitle.Seconds(e.End),
		})
	}

	return repairWordTiming(words), nil
}

// extractTranscriptWords finds the first JSON array of words in s, skipping
// preambles, trailing chatter, and wrapper objects.
func extractTranscriptWords(s string) ([]transcriptWord, error) {
	for i := 0; i < len(s); i++ {
		if s[i] != '[' && s[i] != '{' {
			continue
		}

		var raw json.RawMessage
		if err := json.NewDecoder(strings.NewReader(s[i:])).Decode(&raw); err != nil {
			continue
		}

		if words, ok := wordsFromJSON(raw); ok {
			return words, nil
		}
		// skip past the value that was just decoded
		i += len(raw) - 1
	}

	return nil, fmt.Errorf("no word array found in response: %s", truncateString(s, 200))
}

// wordsFromJSON accepts either a word array or an object that (at any depth)
// holds one
func wordsFromJSON(raw json.RawMessage) ([]transcriptWord, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, false
	}

	switch raw[0] {
	case '[':
		var words []transcriptWord
		if err := json.Unmarshal(raw, &words); err != nil {
			return nil, false
		}
		if !validateWords(words) {
			return nil, false
		}
		return words, true
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, false
		}
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if words, ok := wordsFromJSON(obj[k]); ok {
				return words, true
			}
		}
	}
	return nil, false
}

// validateWords rejects empty arrays and arrays where nothing carries text or
// timing
func validateWords(words []transcriptWord) bool {
	for _, w := range words {
		if w.text() != "" || w.Start != 0 || w.End != 0 {
			return true
		}
	}
	return false
}

// repairWordTiming makes model output safe for the chunker: words are sorted
// by start, an end before its start is raised to the start, and a start that
// overlaps the previous word is moved to that word's end.
func repairWordTiming(words []subtitle.Word) []subtitle.Word {
	sort.SliceStable(words, func(i, j int) bool {
		return words[i].StartTime < words[j].StartTime
	})

	if len(words) == 0 {
		return words
	}
	prevEnd := words[0].StartTime
	for i := range words {
		if words[i].StartTime < prevEnd {
			words[i].StartTime = prevEnd
		}
		if words[i].EndTime < words[i].StartTime {
			words[i].EndTime = words[i].StartTime
		}
		if strings.TrimSpace(words[i].Text) != "" {
			prevEnd = words[i].EndTime
		}
	}
	return words
}

var jsonBlockRegex = regexp.MustCompile("```(?:json)?\\s*")

// removes markdown formatting from the response
func cleanJSONResponse(s string) string {
	s = strings.TrimSpace(s)

	// remove ```json and ``` markers
	s = jsonBlockRegex.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "```", "")

	return strings.TrimSpace(s)
}

// truncates a string to maxLen characters
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

func (t *GeminiTranscriber) Close() error {
	return nil
}
