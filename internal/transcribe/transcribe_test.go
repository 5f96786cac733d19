package transcribe

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/captionforge/captionforge/internal/audio"
	"github.com/captionforge/captionforge/internal/subtitle"
)

func testChunks(n int, size time.Duration) []audio.ChunkInfo {
	chunks := make([]audio.ChunkInfo, n)
	for i := range chunks {
		chunks[i] = audio.ChunkInfo{
			Path:      fmt.Sprintf("chunk_%03d.mp3", i),
			Index:     i,
			StartTime: time.Duration(i) * size,
			EndTime:   time.Duration(i+1) * size,
		}
	}
	return chunks
}

func TestTranscribeChunksShiftsAndOrders(t *testing.T) {
	chunks := testChunks(4, time.Minute)

	fn := func(ctx context.Context, path string) (*Result, error) {
		var idx int
		fmt.Sscanf(path, "chunk_%03d.mp3", &idx)
		// later chunks finish first
		time.Sleep(time.Duration(4-idx) * 5 * time.Millisecond)
		return &Result{
			Words: []subtitle.Word{
				{Text: fmt.Sprintf("w%d", idx), StartTime: time.Second, EndTime: 2 * time.Second},
			},
			Segments: []subtitle.Segment{
				{Text: fmt.Sprintf("w%d", idx), StartTime: time.Second, EndTime: 2 * time.Second},
			},
			Language: "en",
		}, nil
	}

	result, err := transcribeChunks(context.Background(), chunks, 3, "", fn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Words) != 4 {
		t.Fatalf("expected 4 words, got %d", len(result.Words))
	}
	for i, w := range result.Words {
		if w.Text != fmt.Sprintf("w%d", i) {
			t.Errorf("word %d = %q, out of chunk order", i, w.Text)
		}
		wantStart := time.Duration(i)*time.Minute + time.Second
		if w.StartTime != wantStart {
			t.Errorf("word %d start = %v, want %v", i, w.StartTime, wantStart)
		}
	}
	if result.Segments[3].EndTime != 3*time.Minute+2*time.Second {
		t.Errorf("segment not shifted: %v", result.Segments[3].EndTime)
	}
	if result.Duration != 4*time.Minute {
		t.Errorf("duration = %v", result.Duration)
	}
	if result.Language != "en" {
		t.Errorf("language = %q", result.Language)
	}

	if _, err := subtitle.Chunk(result.Words, subtitle.DefaultPolicy()); err != nil {
		t.Errorf("merged words rejected by chunker: %v", err)
	}
}

func TestTranscribeChunksClampsToChunkSpan(t *testing.T) {
	chunks := testChunks(2, 10*time.Second)

	fn := func(ctx context.Context, path string) (*Result, error) {
		if path == "chunk_000.mp3" {
			return &Result{
				Words: []subtitle.Word{
					{Text: "before", StartTime: 9 * time.Second, EndTime: 9500 * time.Millisecond},
					// runs past the end of the chunk
					{Text: "edge", StartTime: 9800 * time.Millisecond, EndTime: 10300 * time.Millisecond},
				},
				Segments: []subtitle.Segment{
					{Text: "before edge", StartTime: 9 * time.Second, EndTime: 10300 * time.Millisecond},
				},
			}, nil
		}
		return &Result{
			Words: []subtitle.Word{
				{Text: "next", StartTime: 0, EndTime: 400 * time.Millisecond},
			},
		}, nil
	}

	result, err := transcribeChunks(context.Background(), chunks, 2, "", fn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Words) != 3 {
		t.Fatalf("expected 3 words, got %d", len(result.Words))
	}
	if got := result.Words[1].EndTime; got != 10*time.Second {
		t.Errorf("edge word end = %v, want %v", got, 10*time.Second)
	}
	if got := result.Segments[0].EndTime; got != 10*time.Second {
		t.Errorf("segment end = %v, want %v", got, 10*time.Second)
	}
	for i := 1; i < len(result.Words); i++ {
		if result.Words[i-1].EndTime > result.Words[i].StartTime {
			t.Errorf("word %d ends at %v after word %d starts at %v",
				i-1, result.Words[i-1].EndTime, i, result.Words[i].StartTime)
		}
	}

	if _, err := subtitle.Chunk(result.Words, subtitle.DefaultPolicy()); err != nil {
		t.Errorf("merged words rejected by chunker: %v", err)
	}
}

func TestResultClampIgnoresEmptySpan(t *testing.T) {
	r := &Result{Words: []subtitle.Word{{Text: "a", StartTime: time.Second, EndTime: 2 * time.Second}}}
	r.clamp(0)
	if r.Words[0].EndTime != 2*time.Second {
		t.Errorf("end = %v, want unchanged", r.Words[0].EndTime)
	}
}

func TestTranscribeChunksStopsOnError(t *testing.T) {
	chunks := testChunks(20, time.Minute)
	boom := errors.New("boom")
	var calls atomic.Int32

	fn := func(ctx context.Context, path string) (*Result, error) {
		calls.Add(1)
		if path == "chunk_001.mp3" {
			return nil, boom
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(20 * time.Millisecond):
		}
		return &Result{}, nil
	}

	_, err := transcribeChunks(context.Background(), chunks, 2, "", fn)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, boom) && !errors.Is(err, context.Canceled) {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls.Load() >= int32(len(chunks)) {
		t.Errorf("expected remaining chunks to be skipped, got %d calls", calls.Load())
	}
}

func TestTranscribeChunksEmpty(t *testing.T) {
	result, err := transcribeChunks(context.Background(), nil, 3, "en", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Words == nil || len(result.Words) != 0 {
		t.Errorf("expected empty words, got %v", result.Words)
	}
}

func TestFactory(t *testing.T) {
	ctx := context.Background()

	if _, err := Factory(ctx, Provider("azure"), "", Options{}); err == nil {
		t.Error("expected error for unsupported provider")
	}
	if _, err := Factory(ctx, ProviderOpenAI, "", Options{}); err == nil {
		t.Error("expected error for missing OpenAI key")
	}
	if _, err := Factory(ctx, ProviderGemini, "", Options{}); err == nil {
		t.Error("expected error for missing Gemini key")
	}

	t.Setenv(envWhisperPath, "/usr/local/bin/whisper")
	tr, err := Factory(ctx, ProviderWhisper, "", Options{})
	if err != nil {
		t.Fatalf("whisper factory failed: %v", err)
	}
	if _, ok := tr.(ConcurrentTranscriber); !ok {
		t.Error("whisper transcriber should support chunked transcription")
	}
}
