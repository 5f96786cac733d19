package transcribe

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/captionforge/captionforge/internal/audio"
	"github.com/captionforge/captionforge/internal/subtitle"
)

// transcription result
type Result struct {
	Words    []subtitle.Word
	Segments []subtitle.Segment
	Language string
	Duration time.Duration
}

// interface for audio transcription
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (*Result, error)
}

type ConcurrentTranscriber interface {
	Transcriber
	TranscribeWithChunks(
		ctx context.Context,
		chunks []audio.ChunkInfo,
		concurrency int,
	) (*Result, error)
}

// transcription service provider
type Provider string

const (
	ProviderWhisper Provider = "whisper"
	ProviderOpenAI  Provider = "openai"
	ProviderGemini  Provider = "gemini"
)

// transcription options
type Options struct {
	Language           string // Source language of audio
	TranscriptLanguage string // Output language for transcript (default: "native")
	Model              string
	Prompt             string
}

// creates transcriber based on provider
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (Transcriber, error) {
	switch provider {
	case ProviderGemini:
		return NewGeminiTranscriber(ctx, apiKey, opts)
	case ProviderWhisper:
		return NewWhisperTranscriber(opts)
	case ProviderOpenAI:
		return NewOpenAITranscriber(ctx, apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

// shift moves every timestamp in r by offset
func (r *Result) shift(offset time.Duration) {
	for i := range r.Words {
		r.Words[i].StartTime += offset
		r.Words[i].EndTime += offset
	}
	for i := range r.Segments {
		r.Segments[i].StartTime += offset
		r.Segments[i].EndTime += offset
	}
}

// clamp keeps every timestamp within [0, span] so a word that a provider
// places past the end of its chunk cannot overlap the next chunk's first
// word. A non-positive span leaves r untouched.
func (r *Result) clamp(span time.Duration) {
	if span <= 0 {
		return
	}
	for i := range r.Words {
		r.Words[i].StartTime = min(r.Words[i].StartTime, span)
		r.Words[i].EndTime = min(r.Words[i].EndTime, span)
	}
	for i := range r.Segments {
		r.Segments[i].StartTime = min(r.Segments[i].StartTime, span)
		r.Segments[i].EndTime = min(r.Segments[i].EndTime, span)
	}
}

// holds the result of transcribing a chunk
type chunkResult struct {
	Index  int
	Result *Result
	Error  error
}

type chunkFunc func(ctx context.Context, audioPath string) (*Result, error)

// transcribeChunks runs fn over chunks with a bounded worker pool, shifts each
// chunk's timestamps by its offset, and merges the results in chunk order.
// The first failure cancels the remaining work.
func transcribeChunks(
	ctx context.Context,
	chunks []audio.ChunkInfo,
	concurrency int,
	language string,
	fn chunkFunc,
) (*Result, error) {
	if len(chunks) == 0 {
		return &Result{Words: []subtitle.Word{}}, nil
	}

	if concurrency <= 0 {
		concurrency = 3
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	workChan := make(chan audio.ChunkInfo)
	resultChan := make(chan chunkResult, len(chunks))

	var wg sync.WaitGroup
	for range concurrency {
		wg.Go(func() {
			for {
				select {
				case <-ctx.Done():
					return
				case chunk, ok := <-workChan:
					if !ok {
						return
					}
					if ctx.Err() != nil {
						return
					}

					result, err := fn(ctx, chunk.Path)
					if err != nil {
						cancel()
					} else {
						result.clamp(chunk.EndTime - chunk.StartTime)
						result.shift(chunk.StartTime)
					}
					resultChan <- chunkResult{
						Index:  chunk.Index,
						Result: result,
						Error:  err,
					}
				}
			}
		})
	}

	go func() {
		defer close(workChan)
		for _, chunk := range chunks {
			select {
			case <-ctx.Done():
				return
			case workChan <- chunk:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	results := make([]chunkResult, 0, len(chunks))
	var firstErr error
	for result := range resultChan {
		if result.Error != nil && firstErr == nil {
			firstErr = fmt.Errorf(
				"chunk %d failed: %w",
				result.Index,
				result.Error,
			)
			cancel()
		}
		if result.Error == nil {
			results = append(results, result)
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	if len(results) != len(chunks) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("transcribed %d of %d chunks", len(results), len(chunks))
	}

	// sort by index to maintain order
	sort.Slice(results, func(i, j int) bool {
		return results[i].Index < results[j].Index
	})

	merged := &Result{
		Words:    []subtitle.Word{},
		Language: language,
		Duration: chunks[len(chunks)-1].EndTime,
	}
	for _, r := range results {
		merged.Words = append(merged.Words, r.Result.Words...)
		merged.Segments = append(merged.Segments, r.Result.Segments...)
		if merged.Language == "" {
			merged.Language = r.Result.Language
		}
	}

	return merged, nil
}

// wordsOrSpread returns words when the provider gave any, otherwise spreads
// the segments' text across their spans.
func wordsOrSpread(words []subtitle.Word, segments []subtitle.Segment) []subtitle.Word {
	if len(words) > 0 {
		return words
	}
	return subtitle.WordsFromSegments(segments)
}
