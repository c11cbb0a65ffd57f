package captions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSRT(t *testing.T) {
	segs := []Segment{
		{Index: 1, Start: 0, End: 1.25, Text: "Welcome back"},
		{Index: 2, Start: 3661.5, End: 3662, Text: "to the show."},
	}
	want := "1\n00:00:00,000 --> 00:00:01,250\nWelcome back\n\n" +
		"2\n01:01:01,500 --> 01:01:02,000\nto the show.\n\n"
	assert.Equal(t, want, SRT(segs))
}

func TestVTT(t *testing.T) {
	segs := []Segment{{Index: 1, Start: 59.999, End: 61.2, Text: "hi"}}
	want := "WEBVTT\n\n00:00:59.999 --> 00:01:01.200\nhi\n\n"
	assert.Equal(t, want, VTT(segs))
	assert.Equal(t, "WEBVTT\n\n", VTT(nil))
}

func TestTimestampClampsNegative(t *testing.T) {
	assert.Equal(t, "00:00:00,000", timestamp(-3, ','))
}
