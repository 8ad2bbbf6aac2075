package display

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{1048576, "1.0 MiB"},
		{5 * 1024 * 1024, "5.0 MiB"},
		{3 * 1024 * 1024 * 1024, "3.0 GiB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatBytes(tt.in), "bytes=%d", tt.in)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{850 * time.Millisecond, "850ms"},
		{0, "0ms"},
		{12300 * time.Millisecond, "12.3s"},
		{59 * time.Second, "59.0s"},
		{4*time.Minute + 5*time.Second, "4m05s"},
		{61 * time.Minute, "61m00s"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.in), "d=%s", tt.in)
	}
}

func TestFormatResolution(t *testing.T) {
	assert.Equal(t, "1920x1080", FormatResolution(1920, 1080))
	assert.Equal(t, "unknown", FormatResolution(0, 1080))
	assert.Equal(t, "unknown", FormatResolution(1920, 0))
}
