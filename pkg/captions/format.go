package captions

import (
	"fmt"
	"math"
	"strings"
)

// SRT renders segments as a SubRip file.
func SRT(segs []Segment) string {
	var b strings.Builder
	for i, s := range segs {
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n", i+1, timestamp(s.Start, ','), timestamp(s.End, ','), s.Text)
	}
	return b.String()
}

// VTT renders segments as a WebVTT file.
func VTT(segs []Segment) string {
	var b strings.Builder
	b.WriteString("WEBVTT\n\n")
	for _, s := range segs {
		fmt.Fprintf(&b, "%s --> %s\n%s\n\n", timestamp(s.Start, '.'), timestamp(s.End, '.'), s.Text)
	}
	return b.String()
}

func timestamp(sec float64, sep byte) string {
	ms := int64(math.Round(sec * 1000))
	if ms < 0 {
		ms = 0
	}
	h := ms / 3_600_000
	m := ms / 60_000 % 60
	s := ms / 1000 % 60
	return fmt.Sprintf("%02d:%02d:%02d%c%03d", h, m, s, sep, ms%1000)
}
