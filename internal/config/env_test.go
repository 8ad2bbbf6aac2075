package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyEnv_Overrides(t *testing.T) {
	t.Setenv("UPSCAYV_BINARY", "/opt/upscayl/bin/upscayl-bin")
	t.Setenv("UPSCAYV_MODEL", "realesrgan-x4fast")
	t.Setenv("UPSCAYV_FORMAT", "WEBP")
	t.Setenv("UPSCAYV_WORKERS", "3")
	t.Setenv("UPSCAYV_SCALE", "2")
	t.Setenv("UPSCAYV_TASK_TIMEOUT", "30s")

	cfg := DefaultConfig()
	require.NoError(t, ApplyEnv(&cfg))

	assert.Equal(t, "/opt/upscayl/bin/upscayl-bin", cfg.BinaryPath)
	assert.Equal(t, "realesrgan-x4fast", cfg.Model)
	assert.Equal(t, FormatWebP, cfg.Format, "format is lowercased")
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, 6, cfg.QueueSize, "queue size follows workers")
	assert.Equal(t, 2, cfg.Scale)
	assert.Equal(t, 30*time.Second, cfg.TaskTimeout)
}

func TestApplyEnv_ExplicitQueueSizeWins(t *testing.T) {
	t.Setenv("UPSCAYV_WORKERS", "4")
	t.Setenv("UPSCAYV_QUEUE_SIZE", "32")

	cfg := DefaultConfig()
	require.NoError(t, ApplyEnv(&cfg))

	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 32, cfg.QueueSize)
}

func TestApplyEnv_MaxRetriesZeroIsRespected(t *testing.T) {
	t.Setenv("UPSCAYV_MAX_RETRIES", "0")

	cfg := DefaultConfig()
	require.NoError(t, ApplyEnv(&cfg))
	assert.Equal(t, 0, cfg.MaxRetries)
}

func TestApplyEnv_MalformedNumber(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"word", "UPSCAYV_WORKERS", "many"},
		{"trailing garbage", "UPSCAYV_WORKERS", "12abc"},
		{"float", "UPSCAYV_SCALE", "2.5"},
		{"garbage retries", "UPSCAYV_MAX_RETRIES", "2x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			cfg := DefaultConfig()
			err := ApplyEnv(&cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestApplyEnv_MalformedDuration(t *testing.T) {
	t.Setenv("UPSCAYV_TASK_TIMEOUT", "10minutes")

	cfg := DefaultConfig()
	err := ApplyEnv(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UPSCAYV_TASK_TIMEOUT")
}

func TestApplyEnv_UnsetLeavesDefaults(t *testing.T) {
	cfg := DefaultConfig()
	want := cfg
	require.NoError(t, ApplyEnv(&cfg))
	assert.Equal(t, want.Workers, cfg.Workers)
	assert.Equal(t, want.MaxRetries, cfg.MaxRetries)
	assert.Equal(t, want.Format, cfg.Format)
}
