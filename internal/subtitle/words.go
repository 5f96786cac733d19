package subtitle

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode/utf8"
)

// WordsFromSegments spreads each segment's words across the segment span in
// proportion to their length. Used when a provider only returns phrase-level
// timing.
func WordsFromSegments(segments []Segment) []Word {
	var words []Word
	for _, seg := range segments {
		fields := strings.Fields(seg.Text)
		if len(fields) == 0 {
			continue
		}

		total := 0
		for _, f := range fields {
			total += utf8.RuneCountInString(f)
		}

		span := seg.EndTime - seg.StartTime
		if span < 0 {
			span = 0
		}

		current := seg.StartTime
		consumed := 0
		for i, f := range fields {
			consumed += utf8.RuneCountInString(f)
			end := seg.StartTime + time.Duration(
				float64(span)*float64(consumed)/float64(total),
			)
			// last word ends exactly at the segment end
			if i == len(fields)-1 {
				end = seg.EndTime
			}
			words = append(words, Word{
				Text:      f,
				StartTime: current,
				EndTime:   end,
			})
			current = end
		}
	}
	return words
}

// wordRecord is the on-disk shape of a transcribed word.
type wordRecord struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Word  string  `json:"word"`
}

// WriteWordsJSON writes words as a JSON array of {start, end, word} objects
// with times in seconds.
func WriteWordsJSON(words []Word, path string) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	records := make([]wordRecord, len(words))
	for i, w := range words {
		records[i] = wordRecord{
			Start: w.StartTime.Seconds(),
			End:   w.EndTime.Seconds(),
			Word:  w.Text,
		}
	}

	data, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode words: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// ReadWordsJSON reads a document written by WriteWordsJSON.
func ReadWordsJSON(path string) ([]Word, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read words file: %w", err)
	}

	var records []wordRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse words file: %w", err)
	}

	words := make([]Word, len(records))
	for i, r := range records {
		words[i] = Word{
			Text:      r.Word,
			StartTime: Seconds(r.Start),
			EndTime:   Seconds(r.End),
		}
	}
	return words, nil
}

// Seconds converts fractional seconds to a duration rounded to the
// millisecond, which is the finest precision any subtitle format carries.
func Seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second)).Round(time.Millisecond)
}
