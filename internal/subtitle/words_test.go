package subtitle

import (
	"path/filepath"
	"testing"
	"time"
)

func TestWordsFromSegments(t *testing.T) {
	segments := []Segment{
		{StartTime: 0, EndTime: 2 * time.Second, Text: "ab cd"},
		{StartTime: 2 * time.Second, EndTime: 3 * time.Second, Text: "   "},
		{StartTime: 5 * time.Second, EndTime: 6 * time.Second, Text: "solo"},
	}

	words := WordsFromSegments(segments)
	want := []Word{
		{Text: "ab", StartTime: 0, EndTime: time.Second},
		{Text: "cd", StartTime: time.Second, EndTime: 2 * time.Second},
		{Text: "solo", StartTime: 5 * time.Second, EndTime: 6 * time.Second},
	}

	if len(words) != len(want) {
		t.Fatalf("got %d words, want %d: %+v", len(words), len(want), words)
	}
	for i := range want {
		if words[i] != want[i] {
			t.Errorf("word %d = %+v, want %+v", i, words[i], want[i])
		}
	}
}

func TestWordsFromSegmentsFeedChunker(t *testing.T) {
	segments := []Segment{
		{StartTime: 0, EndTime: 4 * time.Second, Text: "the quick brown fox jumps over the lazy dog"},
	}
	cues, err := Chunk(WordsFromSegments(segments), DefaultPolicy())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cues) < 2 {
		t.Fatalf("expected the 4s segment to be split, got %d cues", len(cues))
	}
	if cues[len(cues)-1].EndTime != 4*time.Second {
		t.Errorf("last cue ends at %v, want 4s", cues[len(cues)-1].EndTime)
	}
}

func TestWordsJSONRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output.json")
	words := []Word{
		{Text: " Hello", StartTime: 0, EndTime: 420 * time.Millisecond},
		{Text: " world.", StartTime: 500 * time.Millisecond, EndTime: 1234 * time.Millisecond},
	}

	if err := WriteWordsJSON(words, path); err != nil {
		t.Fatalf("WriteWordsJSON failed: %v", err)
	}
	got, err := ReadWordsJSON(path)
	if err != nil {
		t.Fatalf("ReadWordsJSON failed: %v", err)
	}
	if len(got) != len(words) {
		t.Fatalf("got %d words, want %d", len(got), len(words))
	}
	for i := range words {
		if got[i] != words[i] {
			t.Errorf("word %d = %+v, want %+v", i, got[i], words[i])
		}
	}
}

func TestReadWordsJSONErrors(t *testing.T) {
	if _, err := ReadWordsJSON(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSeconds(t *testing.T) {
	tests := []struct {
		in   float64
		want time.Duration
	}{
		{0, 0},
		{0.6, 600 * time.Millisecond},
		{1.0004, time.Second},
		{2.9999, 3 * time.Second},
	}
	for _, tt := range tests {
		if got := Seconds(tt.in); got != tt.want {
			t.Errorf("Seconds(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
