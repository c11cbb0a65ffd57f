// Package captions groups word-level transcription timestamps into short
// on-screen caption segments and renders them as SRT or WebVTT.
//
// Segmentation is a single greedy pass. A chunk is closed before a word
// when there is a long pause, when the word would stretch the chunk past
// MaxDuration, or when it would push the line past MaxChars. It is closed
// after a word once it holds MaxWords words or the word ends a sentence.
package captions

import (
	"strings"
	"unicode/utf8"
)

// Word is one transcribed word with times in seconds.
type Word struct {
	Text  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Segment is a caption: a run of consecutive words shown together.
type Segment struct {
	Index int     `json:"index"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
	Words []Word  `json:"words,omitempty"`
}

// TextSegment is a provider segment that only has phrase-level timing.
type TextSegment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Options bound the size of a caption. Non-positive fields use defaults.
type Options struct {
	MaxWords    int
	MaxDuration float64
	MaxChars    int
	PauseGap    float64
}

const (
	DefaultMaxWords    = 8
	DefaultMaxDuration = 4.0
	DefaultMaxChars    = 42
	DefaultPauseGap    = 0.6
)

func DefaultOptions() Options {
	return Options{
		MaxWords:    DefaultMaxWords,
		MaxDuration: DefaultMaxDuration,
		MaxChars:    DefaultMaxChars,
		PauseGap:    DefaultPauseGap,
	}
}

func (o Options) withDefaults() Options {
	if o.MaxWords <= 0 {
		o.MaxWords = DefaultMaxWords
	}
	if o.MaxDuration <= 0 {
		o.MaxDuration = DefaultMaxDuration
	}
	if o.MaxChars <= 0 {
		o.MaxChars = DefaultMaxChars
	}
	if o.PauseGap <= 0 {
		o.PauseGap = DefaultPauseGap
	}
	return o
}

// Split groups words into captions. Words with blank text are dropped;
// every other word lands in exactly one segment, in input order.
func Split(words []Word, opts Options) []Segment {
	opts = opts.withDefaults()

	var (
		out   []Segment
		cur   []Word
		chars int
	)
	flush := func() {
		if len(cur) == 0 {
			return
		}
		out = append(out, build(len(out)+1, cur, out))
		cur = nil
		chars = 0
	}

	for _, w := range words {
		text := strings.TrimSpace(w.Text)
		if text == "" {
			continue
		}
		w.Text = text
		if w.End < w.Start {
			w.End = w.Start
		}
		n := utf8.RuneCountInString(text)

		if len(cur) > 0 {
			last := cur[len(cur)-1]
			switch {
			case w.Start-last.End > opts.PauseGap:
				flush()
			case w.End-cur[0].Start > opts.MaxDuration:
				flush()
			case chars+1+n > opts.MaxChars:
				flush()
			}
		}

		if len(cur) == 0 {
			chars = n
		} else {
			chars += 1 + n
		}
		cur = append(cur, w)

		if len(cur) >= opts.MaxWords || endsSentence(text) {
			flush()
		}
	}
	flush()
	return out
}

func build(index int, words []Word, prev []Segment) Segment {
	texts := make([]string, len(words))
	for i, w := range words {
		texts[i] = w.Text
	}
	seg := Segment{
		Index: index,
		Start: words[0].Start,
		End:   words[len(words)-1].End,
		Text:  strings.Join(texts, " "),
		Words: append([]Word(nil), words...),
	}
	// Providers occasionally report overlapping word times; keep
	// captions strictly sequential.
	if len(prev) > 0 && seg.Start < prev[len(prev)-1].End {
		seg.Start = prev[len(prev)-1].End
	}
	if seg.End < seg.Start {
		seg.End = seg.Start
	}
	return seg
}

func endsSentence(text string) bool {
	text = strings.TrimRight(text, "\"'”’)]")
	r, _ := utf8.DecodeLastRuneInString(text)
	switch r {
	case '.', '?', '!', '…':
		return true
	}
	return false
}

// FromSegments spreads each phrase's duration evenly over its words. It is
// the fallback when a provider returns no word timestamps.
func FromSegments(segs []TextSegment) []Word {
	var words []Word
	for _, s := range segs {
		fields := strings.Fields(s.Text)
		if len(fields) == 0 {
			continue
		}
		span := s.End - s.Start
		if span < 0 {
			span = 0
		}
		step := span / float64(len(fields))
		for i, f := range fields {
			start := s.Start + float64(i)*step
			words = append(words, Word{Text: f, Start: start, End: start + step})
		}
	}
	return words
}

// Window returns the segments overlapping [start, start+length), clipped to
// the window, shifted so the window begins at zero, and re-indexed.
func Window(segs []Segment, start, length float64) []Segment {
	end := start + length
	var out []Segment
	for _, s := range segs {
		if s.End <= start || s.Start >= end {
			continue
		}
		c := Segment{
			Index: len(out) + 1,
			Start: max(s.Start, start) - start,
			End:   min(s.End, end) - start,
			Text:  s.Text,
		}
		out = append(out, c)
	}
	return out
}
