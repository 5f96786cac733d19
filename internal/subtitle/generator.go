package subtitle

import (
	"strings"
	"unicode/utf8"
)

// DefaultGenerator implements the Generator interface on top of Chunk.
type DefaultGenerator struct {
	Policy Policy

	// MaxCharsPerLine wraps cue text onto two lines when positive. Wrapping
	// replaces a space with a newline, so cue length is unchanged.
	MaxCharsPerLine int
}

func NewDefaultGenerator(policy Policy) *DefaultGenerator {
	return &DefaultGenerator{
		Policy: policy,
	}
}

// groups words into cues and numbers them as subtitle entries
func (g *DefaultGenerator) Generate(words []Word) (*Subtitle, error) {
	cues, err := Chunk(words, g.Policy)
	if err != nil {
		return nil, err
	}

	sub := NewSubtitle(cues)
	WrapLines(sub, g.MaxCharsPerLine)
	return sub, nil
}

// WrapLines splits every entry longer than maxCharsPerLine onto two lines at
// the space nearest the middle. Zero or less leaves the text alone. Run it
// after translation so the wrap follows the final text.
func WrapLines(sub *Subtitle, maxCharsPerLine int) {
	if sub == nil || maxCharsPerLine <= 0 {
		return
	}
	for i := range sub.Entries {
		sub.Entries[i].Text = wrapText(sub.Entries[i].Text, maxCharsPerLine)
	}
}

// wrapText formats text for display with line wrapping
func wrapText(text string, maxCharsPerLine int) string {
	text = strings.TrimSpace(text)
	runeCount := utf8.RuneCountInString(text)

	// if text fits on one line, return as is
	if runeCount <= maxCharsPerLine {
		return text
	}

	words := strings.Fields(text)
	if len(words) < 2 {
		return text
	}

	// find the best split point (closest to middle)
	middle := runeCount / 2
	bestSplit := 0
	bestDiff := runeCount

	currentLen := 0
	for i, word := range words[:len(words)-1] {
		currentLen += utf8.RuneCountInString(word)
		if i > 0 {
			currentLen++ // space
		}

		diff := abs(currentLen - middle)
		if diff < bestDiff {
			bestDiff = diff
			bestSplit = i + 1
		}
	}

	if bestSplit > 0 && bestSplit < len(words) {
		line1 := strings.Join(words[:bestSplit], " ")
		line2 := strings.Join(words[bestSplit:], " ")
		return line1 + "\n" + line2
	}

	return text
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
