package subtitle

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// OrderTolerance is how far a word may start before the previous word ended
// before the input is rejected as unordered. Recognizers routinely report
// neighbouring words overlapping by a few milliseconds.
const OrderTolerance = 50 * time.Millisecond

// Policy holds the limits used to group words into cues.
type Policy struct {
	MaxChars    int
	MaxDuration time.Duration
	MaxGap      time.Duration
}

// DefaultPolicy returns the limits used when the configuration is silent.
func DefaultPolicy() Policy {
	return Policy{
		MaxChars:    30,
		MaxDuration: 2500 * time.Millisecond,
		MaxGap:      1500 * time.Millisecond,
	}
}

// Validate reports the first limit that is out of range.
func (p Policy) Validate() error {
	if p.MaxChars <= 0 {
		return &InvalidPolicyError{
			Field:  "max_chars",
			Value:  strconv.Itoa(p.MaxChars),
			Reason: "must be at least 1",
		}
	}
	if p.MaxDuration <= 0 {
		return &InvalidPolicyError{
			Field:  "max_duration",
			Value:  p.MaxDuration.String(),
			Reason: "must be positive",
		}
	}
	if p.MaxGap < 0 {
		return &InvalidPolicyError{
			Field:  "max_gap",
			Value:  p.MaxGap.String(),
			Reason: "must not be negative",
		}
	}
	return nil
}

// Chunk groups chronologically ordered words into cues in a single greedy
// pass. A word opens a new cue when adding it to the current one would exceed
// the character limit, the duration limit or the gap limit, checked in that
// order. Words with empty text are skipped. The input slice is not modified.
func Chunk(words []Word, policy Policy) ([]Cue, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	cues := make([]Cue, 0)
	var buf cueBuffer
	var prevEnd time.Duration
	seen := false

	for i, w := range words {
		text := strings.TrimSpace(w.Text)
		if text == "" {
			continue
		}

		if w.EndTime < w.StartTime-OrderTolerance {
			return nil, &UnorderedInputError{
				Index:    i,
				Word:     text,
				Start:    w.StartTime,
				End:      w.EndTime,
				Inverted: true,
			}
		}
		if seen && w.StartTime < prevEnd-OrderTolerance {
			return nil, &UnorderedInputError{
				Index:       i,
				Word:        text,
				Start:       w.StartTime,
				End:         w.EndTime,
				PreviousEnd: prevEnd,
			}
		}
		seen = true
		prevEnd = w.EndTime

		word := Word{Text: text, StartTime: w.StartTime, EndTime: w.EndTime}
		if !buf.empty() && buf.exceeds(word, policy) {
			cues = append(cues, buf.close())
		}
		buf.add(word)
	}

	if !buf.empty() {
		cues = append(cues, buf.close())
	}

	return cues, nil
}

// cueBuffer accumulates the words of the cue currently being built.
type cueBuffer struct {
	words []Word
	chars int
}

func (b *cueBuffer) empty() bool {
	return len(b.words) == 0
}

func (b *cueBuffer) exceeds(w Word, policy Policy) bool {
	first := b.words[0]
	last := b.words[len(b.words)-1]

	// +1 for the joining space
	if b.chars+1+utf8.RuneCountInString(w.Text) > policy.MaxChars {
		return true
	}
	if w.EndTime-first.StartTime > policy.MaxDuration {
		return true
	}
	if w.StartTime-last.EndTime > policy.MaxGap {
		return true
	}
	return false
}

func (b *cueBuffer) add(w Word) {
	if len(b.words) > 0 {
		b.chars++
	}
	b.chars += utf8.RuneCountInString(w.Text)
	b.words = append(b.words, w)
}

func (b *cueBuffer) close() Cue {
	texts := make([]string, len(b.words))
	for i, w := range b.words {
		texts[i] = w.Text
	}
	cue := Cue{
		Text:      strings.Join(texts, " "),
		StartTime: b.words[0].StartTime,
		EndTime:   b.words[len(b.words)-1].EndTime,
		Words:     b.words,
	}
	b.words = nil
	b.chars = 0
	return cue
}
