package config

// This file implements the environment layer between defaults and CLI flags.
// Values come from UPSCAYV_* environment variables, optionally seeded from a
// .env file in the working directory. Flags parsed afterwards win.

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ApplyEnv overlays UPSCAYV_* environment variables onto cfg. A .env file in
// the current directory is loaded first when present; real environment
// variables take precedence over .env entries (godotenv does not overwrite).
func ApplyEnv(cfg *Config) error {
	_ = godotenv.Load() // optional; absence is not an error

	v := viper.New()
	v.SetEnvPrefix("UPSCAYV")
	v.AutomaticEnv()

	// Numeric values are parsed from the raw string so a malformed setting is
	// an error rather than a silently kept default.
	intVar := func(key string) (int, bool, error) {
		s := v.GetString(key)
		if s == "" {
			return 0, false, nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, false, fmt.Errorf("UPSCAYV_%s must be a whole number (got %q)", key, s)
		}
		return n, true, nil
	}

	if s := v.GetString("BINARY"); s != "" {
		cfg.BinaryPath = s
	}
	if s := v.GetString("MODEL_DIR"); s != "" {
		cfg.ModelDir = s
	}
	if s := v.GetString("MODEL"); s != "" {
		cfg.Model = s
	}
	if s := v.GetString("LOG_FILE"); s != "" {
		cfg.LogFile = s
	}
	if s := v.GetString("METRICS_ADDR"); s != "" {
		cfg.MetricsAddr = s
	}
	if s := v.GetString("FORMAT"); s != "" {
		cfg.Format = OutputFormat(strings.ToLower(s))
	}

	if n, ok, err := intVar("WORKERS"); err != nil {
		return err
	} else if ok {
		cfg.Workers = n
		cfg.QueueSize = 2 * n
	}
	if n, ok, err := intVar("QUEUE_SIZE"); err != nil {
		return err
	} else if ok {
		cfg.QueueSize = n
	}
	if n, ok, err := intVar("MAX_RETRIES"); err != nil {
		return err
	} else if ok {
		cfg.MaxRetries = n
	}
	if n, ok, err := intVar("SCALE"); err != nil {
		return err
	} else if ok {
		cfg.Scale = n
	}

	if s := v.GetString("TASK_TIMEOUT"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("UPSCAYV_TASK_TIMEOUT must be a duration like 10m (got %q)", s)
		}
		cfg.TaskTimeout = d
	}
	return nil
}
