package subtitle

import (
	"fmt"
	"time"
)

// InvalidPolicyError reports a chunk policy limit outside its allowed range.
type InvalidPolicyError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InvalidPolicyError) Error() string {
	return fmt.Sprintf("invalid chunk policy: %s=%s %s", e.Field, e.Value, e.Reason)
}

// UnorderedInputError reports a word whose timestamps run backwards. When
// Inverted is set the word ends before it starts; otherwise it starts before
// the previous word ended.
type UnorderedInputError struct {
	Index       int
	Word        string
	Start       time.Duration
	End         time.Duration
	PreviousEnd time.Duration
	Inverted    bool
}

func (e *UnorderedInputError) Error() string {
	if e.Inverted {
		return fmt.Sprintf(
			"unordered input at word %d (%q): end %s precedes start %s",
			e.Index,
			e.Word,
			e.End,
			e.Start,
		)
	}
	return fmt.Sprintf(
		"unordered input at word %d (%q): start %s precedes previous end %s",
		e.Index,
		e.Word,
		e.Start,
		e.PreviousEnd,
	)
}
