package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "lowercases", input: "Region", expected: "region"},
		{name: "trims whitespace", input: "  market  ", expected: "market"},
		{name: "replaces slash", input: "eNodeB/gNodeB", expected: "gnodeb"},
		{name: "replaces spaces", input: "file date", expected: "file_date"},
		{name: "site alias canonicalized", input: "gNodeB", expected: "gnodeb"},
		{name: "interval label untouched", input: "09:45", expected: "09:45"},
		{name: "already canonical", input: "filedate", expected: "filedate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeHeader(tt.input))
		})
	}
}

func TestNormalizeHeaderIdempotent(t *testing.T) {
	inputs := []string{"Region", "eNodeB/gNodeB", "FILE DATE", "00:15", "risk"}
	for _, in := range inputs {
		once := NormalizeHeader(in)
		assert.Equal(t, once, NormalizeHeader(once), "normalizing %q twice changed the result", in)
	}
}

func TestNormalizeHeaders(t *testing.T) {
	got := NormalizeHeaders([]string{"Region", "Market", "eNodeB/gNodeB", "FileDate", "00:00"})
	assert.Equal(t, []string{"region", "market", "gnodeb", "filedate", "00:00"}, got)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{name: "iso", input: "2024-03-15", want: "2024-03-15", ok: true},
		{name: "slashes", input: "2024/03/15", want: "2024-03-15", ok: true},
		{name: "us style", input: "03/15/2024", want: "2024-03-15", ok: true},
		{name: "with time", input: "2024-03-15 08:30:00", want: "2024-03-15", ok: true},
		{name: "rfc3339", input: "2024-03-15T08:30:00Z", want: "2024-03-15", ok: true},
		{name: "empty", input: "", ok: false},
		{name: "garbage", input: "not-a-date", ok: false},
		{name: "whitespace only", input: "   ", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, ok := ParseDate(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, parsed.Format(DateLayout))
				assert.Equal(t, time.UTC, parsed.Location())
			}
		})
	}
}

func TestHourLabels(t *testing.T) {
	labels := HourLabels()
	require.Len(t, labels, 24)
	assert.Equal(t, "00", labels[0])
	assert.Equal(t, "09", labels[9])
	assert.Equal(t, "23", labels[23])
}

func TestIntervalLabels(t *testing.T) {
	labels := IntervalLabels()
	require.Len(t, labels, 96)
	assert.Equal(t, "00:00", labels[0])
	assert.Equal(t, "00:45", labels[3])
	assert.Equal(t, "23:45", labels[95])
	for _, l := range labels {
		assert.True(t, IsIntervalLabel(l), "label %q should be recognized", l)
	}
	assert.False(t, IsIntervalLabel("region"))
	assert.False(t, IsIntervalLabel("daily_avg"))
}
