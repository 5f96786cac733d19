package subtitle

import (
	"errors"
	"testing"
	"time"
)

func TestDefaultGeneratorNumbersEntries(t *testing.T) {
	g := NewDefaultGenerator(Policy{MaxChars: 20, MaxDuration: 2 * time.Second, MaxGap: 1500 * time.Millisecond})
	sub, err := g.Generate([]Word{
		word("Hi", 0, 500),
		word("there", 600, 1000),
		word("friend", 3000, 3500),
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(sub.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(sub.Entries))
	}
	for i, entry := range sub.Entries {
		if entry.Index != i+1 {
			t.Errorf("entry %d has index %d", i, entry.Index)
		}
	}
	if sub.Entries[1].Text != "friend" || len(sub.Entries[1].Words) != 1 {
		t.Errorf("unexpected second entry: %+v", sub.Entries[1])
	}
}

func TestDefaultGeneratorPropagatesPolicyError(t *testing.T) {
	g := NewDefaultGenerator(Policy{})
	_, err := g.Generate([]Word{word("x", 0, 1)})
	var policyErr *InvalidPolicyError
	if !errors.As(err, &policyErr) {
		t.Fatalf("expected InvalidPolicyError, got %v", err)
	}
}

func TestWrapTextWrapsLongLines(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"short", "short"},
		{"one two three four", "one two\nthree four"},
		{"unbreakablewordhere", "unbreakablewordhere"},
	}
	for _, tt := range tests {
		if got := wrapText(tt.in, 10); got != tt.want {
			t.Errorf("wrapText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGenerateWrapsWhenLineLimitSet(t *testing.T) {
	g := NewDefaultGenerator(Policy{MaxChars: 40, MaxDuration: 5 * time.Second, MaxGap: time.Second})
	g.MaxCharsPerLine = 10
	sub, err := g.Generate([]Word{
		word("one", 0, 200),
		word("two", 250, 400),
		word("three", 450, 700),
		word("four", 750, 900),
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(sub.Entries) != 1 || sub.Entries[0].Text != "one two\nthree four" {
		t.Fatalf("unexpected entries: %+v", sub.Entries)
	}
}

func TestWrapLines(t *testing.T) {
	sub := NewSubtitle([]Cue{{Text: "un deux trois quatre"}, {Text: "court"}})

	WrapLines(sub, 0)
	if sub.Entries[0].Text != "un deux trois quatre" {
		t.Errorf("zero limit changed text: %q", sub.Entries[0].Text)
	}

	WrapLines(sub, 12)
	if sub.Entries[0].Text != "un deux\ntrois quatre" || sub.Entries[1].Text != "court" {
		t.Errorf("unexpected wrap: %q %q", sub.Entries[0].Text, sub.Entries[1].Text)
	}

	WrapLines(nil, 12)
}

func TestCuesFromSubtitleKeepsTiming(t *testing.T) {
	cues := []Cue{
		{Text: "hello world", StartTime: 0, EndTime: time.Second, Words: []Word{word("hello", 0, 400), word("world", 500, 1000)}},
		{Text: "again", StartTime: 2 * time.Second, EndTime: 3 * time.Second},
	}
	sub := NewSubtitle(cues)
	sub.Entries[0].Text = "hola mundo"

	got := CuesFromSubtitle(sub)
	if len(got) != 2 {
		t.Fatalf("expected 2 cues, got %d", len(got))
	}
	if got[0].Text != "hola mundo" || got[0].EndTime != time.Second || len(got[0].Words) != 2 {
		t.Errorf("unexpected first cue: %+v", got[0])
	}
	if CuesFromSubtitle(nil) != nil {
		t.Error("expected nil for nil subtitle")
	}
}
