package transcribe

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"testing"
	"time"
)

const sampleWhisperOutput = `{
	"text": " Hello there. How are you?",
	"language": "en",
	"segments": [
		{
			"id": 0, "start": 0.0, "end": 1.2, "text": " Hello there.",
			"words": [
				{"word": " Hello", "start": 0.0, "end": 0.48, "probability": 0.93},
				{"word": " there.", "start": 0.52, "end": 1.2, "probability": 0.88}
			]
		},
		{
			"id": 1, "start": 2.0, "end": 3.0, "text": " How are you?",
			"words": []
		}
	]
}`

func TestParseLocalWhisperOutput(t *testing.T) {
	result, err := parseLocalWhisperOutput([]byte(sampleWhisperOutput))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	texts := make([]string, len(result.Words))
	for i, w := range result.Words {
		texts[i] = w.Text
	}
	want := []string{"Hello", "there.", "How", "are", "you?"}
	if !slices.Equal(texts, want) {
		t.Fatalf("words = %v, want %v", texts, want)
	}

	if result.Words[1].StartTime != 520*time.Millisecond || result.Words[1].EndTime != 1200*time.Millisecond {
		t.Errorf("unexpected timing for %q: %v-%v", result.Words[1].Text, result.Words[1].StartTime, result.Words[1].EndTime)
	}
	// spread words stay inside their segment
	if result.Words[2].StartTime != 2*time.Second || result.Words[4].EndTime != 3*time.Second {
		t.Errorf("spread words escaped segment: %+v", result.Words[2:])
	}
	if len(result.Segments) != 2 || result.Language != "en" || result.Duration != 3*time.Second {
		t.Errorf("unexpected metadata: %d segments, %q, %v", len(result.Segments), result.Language, result.Duration)
	}
}

func TestParseLocalWhisperOutputErrors(t *testing.T) {
	if _, err := parseLocalWhisperOutput([]byte(`{"segments": [`)); err == nil {
		t.Error("expected error for invalid JSON")
	}
	if _, err := parseLocalWhisperOutput([]byte(`{"text": "words", "segments": []}`)); err == nil {
		t.Error("expected error for text without segments")
	}

	result, err := parseLocalWhisperOutput([]byte(`{"text": "", "segments": []}`))
	if err != nil {
		t.Fatalf("silence should not fail: %v", err)
	}
	if result.Words == nil || len(result.Words) != 0 {
		t.Errorf("expected empty non-nil words, got %v", result.Words)
	}
}

func TestWhisperArgs(t *testing.T) {
	tr := &WhisperTranscriber{
		binary: "whisper",
		model:  "medium",
		options: Options{
			Language:           "de",
			TranscriptLanguage: "English",
			Prompt:             "names: Anke",
		},
	}

	args := tr.args("/tmp/a.wav", "/tmp/out")
	for _, want := range [][]string{
		{"--model", "medium"},
		{"--word_timestamps", "True"},
		{"--output_format", "json"},
		{"--output_dir", "/tmp/out"},
		{"--language", "de"},
		{"--task", "translate"},
		{"--initial_prompt", "names: Anke"},
	} {
		i := slices.Index(args, want[0])
		if i < 0 || i+1 >= len(args) || args[i+1] != want[1] {
			t.Errorf("missing %v in %v", want, args)
		}
	}
	if args[0] != "/tmp/a.wav" {
		t.Errorf("audio path should come first, got %v", args)
	}
}

func TestNewWhisperTranscriberUsesEnvBinary(t *testing.T) {
	t.Setenv(envWhisperPath, "/opt/whisper/bin/whisper")
	tr, err := NewWhisperTranscriber(Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.binary != "/opt/whisper/bin/whisper" || tr.model != "medium" {
		t.Errorf("unexpected transcriber: %+v", tr)
	}
}

func TestWhisperTranscribeRunsBinary(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script stub")
	}

	dir := t.TempDir()
	fixture := filepath.Join(dir, "fixture.json")
	if err := os.WriteFile(fixture, []byte(sampleWhisperOutput), 0o644); err != nil {
		t.Fatal(err)
	}

	script := "#!/bin/sh\n" +
		"out=\"\"\n" +
		"while [ $# -gt 0 ]; do\n" +
		"  if [ \"$1\" = \"--output_dir\" ]; then out=\"$2\"; fi\n" +
		"  shift\n" +
		"done\n" +
		"cp \"" + fixture + "\" \"$out/clip.json\"\n"
	stub := filepath.Join(dir, "whisper")
	if err := os.WriteFile(stub, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}

	audioPath := filepath.Join(dir, "clip.wav")
	if err := os.WriteFile(audioPath, []byte("RIFF"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv(envWhisperPath, stub)
	tr, err := NewWhisperTranscriber(Options{Language: "en"})
	if err != nil {
		t.Fatal(err)
	}

	result, err := tr.Transcribe(context.Background(), audioPath)
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	if len(result.Words) != 5 {
		t.Fatalf("expected 5 words, got %d", len(result.Words))
	}
}
