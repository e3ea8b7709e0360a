package ui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes    int64
		expected string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1048576, "1.0 MB"},
		{1073741824, "1.0 GB"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatBytes(tt.bytes))
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d        time.Duration
		expected string
	}{
		{30 * time.Second, "30s"},
		{90 * time.Second, "1m 30s"},
		{2 * time.Hour, "2h 0m"},
		{3*time.Hour + 15*time.Minute, "3h 15m"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatDuration(tt.d))
		})
	}
}

func TestFormatETA(t *testing.T) {
	assert.Equal(t, "calculating...", FormatETA(1000, 0))
	assert.Equal(t, "10s", FormatETA(1000, 100))
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", TruncateString("short", 10))
	assert.Equal(t, "long st...", TruncateString("long string here", 10))
	assert.Equal(t, "ab", TruncateString("abcdef", 2))
}

func TestPadRight(t *testing.T) {
	assert.Equal(t, "abc  ", PadRight("abc", 5))
	assert.Equal(t, "abcdef", PadRight("abcdef", 3))
}
