package transcribe

import (
	"testing"
	"time"

	"github.com/captionforge/captionforge/internal/subtitle"
	"google.golang.org/genai"
)

func TestExtractTranscriptWords(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantCount int
		wantErr   bool
	}{
		{
			name: "plain valid array",
			input: `[
				{"start": 0.0, "end": 2.5, "word": "Hello"},
				{"start": 2.5, "end": 5.0, "word": "world"}
			]`,
			wantCount: 2,
		},
		{
			name: "preamble with valid array",
			input: `Here is the JSON transcript:
			[
				{"start": 0.0, "end": 2.5, "word": "Hello"},
				{"start": 2.5, "end": 5.0, "word": "world"}
			]`,
			wantCount: 2,
		},
		{
			name: "valid array with trailing text",
			input: `[
				{"start": 0.0, "end": 2.5, "word": "Hello"}
			]
			I hope this helps! Let me know if you need anything else.`,
			wantCount: 1,
		},
		{
			name: "preamble and trailing text",
			input: `Here is your transcript:
			[{"start": 1.0, "end": 3.0, "word": "Test"}]
			That's all!`,
			wantCount: 1,
		},
		{
			name:      "code fenced JSON (after cleanJSONResponse)",
			input:     `[{"start": 0.0, "end": 1.5, "word": "Fenced"}]`,
			wantCount: 1,
		},
		{
			name: "wrapper object with words key",
			input: `{"words": [
				{"start": 0.0, "end": 2.0, "word": "Wrapped"}
			]}`,
			wantCount: 1,
		},
		{
			name: "wrapper object with transcript key",
			input: `{"transcript": [
				{"start": 0.0, "end": 2.0, "word": "transcript"}
			]}`,
			wantCount: 1,
		},
		{
			name: "wrapper object with data key",
			input: `{"data": [
				{"start": 0.0, "end": 2.0, "word": "data"}
			]}`,
			wantCount: 1,
		},
		{
			name: "wrapper object with unknown key",
			input: `{"myCustomKey": [
				{"start": 0.0, "end": 2.0, "word": "unknown"}
			]}`,
			wantCount: 1,
		},
		{
			name: "unrelated object first then transcript array",
			input: `{"status": "ok", "count": 5}
			[{"start": 0.0, "end": 2.0, "word": "Real"}]`,
			wantCount: 1,
		},
		{
			name: "multiple arrays picks first valid",
			input: `[1, 2, 3]
			[{"start": 0.0, "end": 2.0, "word": "Actual"}]`,
			wantCount: 1,
		},
		{
			name:    "empty array",
			input:   `[]`,
			wantErr: true,
		},
		{
			name:    "no JSON at all",
			input:   `This is just plain text with no JSON content.`,
			wantErr: true,
		},
		{
			name:    "invalid JSON",
			input:   `[{"start": 0.0, "end": 2.0, "word": "incomplete"`,
			wantErr: true,
		},
		{
			name:    "array with empty words",
			input:   `[{"start": 0, "end": 0, "word": ""}]`,
			wantErr: true,
		},
		{
			name:      "array with valid timestamps but empty word",
			input:     `[{"start": 1.0, "end": 2.0, "word": ""}]`,
			wantCount: 1,
		},
		{
			name: "complex preamble with explanation",
			input: `I've analyzed the audio and created a transcript for you. The audio appears to be in English. Here is the formatted JSON output:

			[
				{"start": 0.0, "end": 3.5, "word": "Welcome"},
				{"start": 3.5, "end": 7.2, "word": "today"}
			]

			Note: Timestamps are in seconds. Let me know if you need any adjustments!`,
			wantCount: 2,
		},
		{
			name: "nested wrapper object",
			input: `{
				"response": {
					"segments": [{"start": 0.0, "end": 1.0, "word": "Nested"}]
				}
			}`,
			wantCount: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			words, err := extractTranscriptWords(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(words) != tt.wantCount {
				t.Errorf(
					"got %d words, want %d",
					len(words),
					tt.wantCount,
				)
			}
		})
	}
}

func TestCleanJSONResponse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain JSON",
			input: `[{"start": 0, "end": 1, "text": "hello"}]`,
			want:  `[{"start": 0, "end": 1, "text": "hello"}]`,
		},
		{
			name:  "json code fence",
			input: "```json\n[{\"start\": 0, \"end\": 1, \"text\": \"hello\"}]\n```",
			want:  `[{"start": 0, "end": 1, "text": "hello"}]`,
		},
		{
			name:  "plain code fence",
			input: "```\n[{\"start\": 0, \"end\": 1, \"text\": \"hello\"}]\n```",
			want:  `[{"start": 0, "end": 1, "text": "hello"}]`,
		},
		{
			name:  "with leading/trailing whitespace",
			input: "  \n\n```json\n[{\"start\": 0}]\n```\n\n  ",
			want:  `[{"start": 0}]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanJSONResponse(tt.input); got != tt.want {
				t.Errorf("cleanJSONResponse() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateWords(t *testing.T) {
	tests := []struct {
		name  string
		words []transcriptWord
		want  bool
	}{
		{"empty slice", []transcriptWord{}, false},
		{"nil slice", nil, false},
		{"word with text", []transcriptWord{{Word: "hello"}}, true},
		{"legacy text field", []transcriptWord{{Text: "hello"}}, true},
		{"word with start time", []transcriptWord{{Start: 1.0}}, true},
		{"word with end time", []transcriptWord{{End: 2.0}}, true},
		{
			"all zero word",
			[]transcriptWord{{Start: 0, End: 0, Text: ""}},
			false,
		},
		{
			"multiple words one valid",
			[]transcriptWord{{}, {Start: 1.0, End: 2.0, Word: "valid"}},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := validateWords(tt.words); got != tt.want {
				t.Errorf("validateWords() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractTranscriptWordsPicksFirstArrayInOrder(t *testing.T) {
	input := `[{"word": "first", "start": 0.0, "end": 0.4}] [{"word": "second", "start": 1.0, "end": 1.2}]`
	words, err := extractTranscriptWords(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(words) != 1 || words[0].text() != "first" {
		t.Fatalf("unexpected words: %+v", words)
	}
}

func TestRepairWordTiming(t *testing.T) {
	ms := time.Millisecond
	words := repairWordTiming([]subtitle.Word{
		{Text: "b", StartTime: 1000 * ms, EndTime: 1400 * ms},
		{Text: "a", StartTime: 0, EndTime: 1200 * ms},
		{Text: "c", StartTime: 1500 * ms, EndTime: 1450 * ms},
	})

	want := []subtitle.Word{
		{Text: "a", StartTime: 0, EndTime: 1200 * ms},
		{Text: "b", StartTime: 1200 * ms, EndTime: 1400 * ms},
		{Text: "c", StartTime: 1500 * ms, EndTime: 1500 * ms},
	}
	for i := range want {
		if words[i] != want[i] {
			t.Errorf("word %d = %+v, want %+v", i, words[i], want[i])
		}
	}

	if _, err := subtitle.Chunk(words, subtitle.DefaultPolicy()); err != nil {
		t.Fatalf("repaired words rejected by chunker: %v", err)
	}
	if got := repairWordTiming(nil); len(got) != 0 {
		t.Errorf("expected empty result, got %v", got)
	}
}

func TestParseTranscriptionResponse(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				{Text: "```json\n[{\"word\": \"Hi\", \"start\": 0.1, \"end\": 0.3},"},
				{Text: " {\"word\": \"there\", \"start\": 0.35, \"end\": 0.8}]\n```"},
			}},
		}},
	}

	words, err := parseTranscriptionResponse(resp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(words) != 2 || words[1].Text != "there" || words[1].StartTime != 350*time.Millisecond {
		t.Fatalf("unexpected words: %+v", words)
	}

	if _, err := parseTranscriptionResponse(&genai.GenerateContentResponse{}); err == nil {
		t.Error("expected error for empty response")
	}
}
