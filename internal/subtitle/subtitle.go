package subtitle

import (
	"time"
)

// represents single subtitle entry
type Entry struct {
	Index     int
	StartTime time.Duration
	EndTime   time.Duration
	Text      string
	Words     []Word
}

// represents complete subtitle track
type Subtitle struct {
	Entries  []Entry
	Language string
	Format   string
}

// represents supported subtitle formats
type Format string

const (
	FormatSRT  Format = "srt"
	FormatVTT  Format = "vtt"
	FormatASS  Format = "ass"
	FormatJSON Format = "json"
)

// Word is a single transcribed token with its timing.
type Word struct {
	Text      string
	StartTime time.Duration
	EndTime   time.Duration
}

// Cue is one subtitle line built from one or more consecutive words.
type Cue struct {
	Text      string
	StartTime time.Duration
	EndTime   time.Duration
	Words     []Word
}

// Duration returns the span covered by the cue.
func (c Cue) Duration() time.Duration {
	return c.EndTime - c.StartTime
}

// interface for subtitle generation
type Generator interface {
	Generate(words []Word) (*Subtitle, error)
}

// represents transcribed audio segment
type Segment struct {
	StartTime time.Duration
	EndTime   time.Duration
	Text      string
}

// interface for writing subtitles to files
type Writer interface {
	Write(subtitle *Subtitle, path string) error
}

// NewSubtitle numbers cues from 1 and wraps them in a subtitle track.
func NewSubtitle(cues []Cue) *Subtitle {
	entries := make([]Entry, len(cues))
	for i, cue := range cues {
		entries[i] = Entry{
			Index:     i + 1,
			StartTime: cue.StartTime,
			EndTime:   cue.EndTime,
			Text:      cue.Text,
			Words:     cue.Words,
		}
	}
	return &Subtitle{
		Entries: entries,
		Format:  string(FormatSRT),
	}
}

// CuesFromSubtitle returns the entries of sub as cues, carrying any
// replaced text (translation) with the original timing.
func CuesFromSubtitle(sub *Subtitle) []Cue {
	if sub == nil {
		return nil
	}
	cues := make([]Cue, len(sub.Entries))
	for i, entry := range sub.Entries {
		cues[i] = Cue{
			Text:      entry.Text,
			StartTime: entry.StartTime,
			EndTime:   entry.EndTime,
			Words:     entry.Words,
		}
	}
	return cues
}
