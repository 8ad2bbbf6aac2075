// Package config holds runtime configuration: defaults, environment and CLI
// flag layering, and validation. Precedence is defaults < UPSCAYV_* env < flags.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// --- Enum types for validated string fields ---

// OutputFormat is the encoded format of upscaled output files.
type OutputFormat string

const (
	FormatPNG  OutputFormat = "png"  // Lossless (default).
	FormatJPG  OutputFormat = "jpg"  // Smaller output, lossy.
	FormatWebP OutputFormat = "webp" // Lossy, good compression.
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// Config holds all runtime settings. It is populated by [DefaultConfig],
// layered by [ApplyEnv], and finally mutated by [ParseFlags] before being
// passed (by pointer) to packages that need it.
type Config struct {
	// Paths (set from positional args).
	Inputs    []string // Image files and/or directories.
	OutputDir string

	// Pool and retry policy.
	Workers     int           // Default: runtime.NumCPU().
	QueueSize   int           // Default: 2×Workers. Bounds the pending queue (backpressure).
	MaxRetries  int           // Default: 2. Extra attempts after a failed one.
	TaskTimeout time.Duration // Default: 10m per attempt. 0 disables.

	// Transform (upscayl-bin).
	BinaryPath string       // Default: "" (auto-discover).
	ModelDir   string       // Default: "" (auto-discover next to binary).
	Model      string       // Default: "" (fastest available model).
	Scale      int          // Default: 4. Upscale factor (2, 3, or 4).
	Format     OutputFormat // Default: "png".

	// Behavior flags.
	DryRun       bool
	SkipExisting bool // Default: false; outputs are overwritten (idempotent reruns).
	StrictMode   bool // Disable retries entirely.

	// Display and logging.
	Verbose       bool
	ShowFileStats bool      // Default: true.
	ColorMode     ColorMode // Default: "auto".
	LogFile       string    // Optional log file path.
	CheckOnly     bool      // Run --check diagnostics and exit.
	MetricsAddr   string    // Optional Prometheus listen address (e.g. ":9090").
}

// DefaultConfig returns a Config with all defaults. Used as the base before
// [ApplyEnv] and [ParseFlags] apply overrides.
func DefaultConfig() Config {
	workers := runtime.NumCPU()
	return Config{
		Workers:       workers,
		QueueSize:     2 * workers,
		MaxRetries:    2,
		TaskTimeout:   10 * time.Minute,
		Scale:         4,
		Format:        FormatPNG,
		DryRun:        false,
		SkipExisting:  false,
		StrictMode:    false,
		Verbose:       false,
		ShowFileStats: true,
		ColorMode:     ColorAuto,
		CheckOnly:     false,
	}
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// Validate checks enum fields and numeric ranges. When not in CheckOnly mode,
// it also requires at least one input path and an output directory.
func (c *Config) Validate() error {
	switch c.Format {
	case FormatPNG, FormatJPG, FormatWebP:
		// valid
	default:
		return errors.New("invalid format (use 'png', 'jpg' or 'webp')")
	}

	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return errors.New("invalid color mode (use 'auto', 'always' or 'never')")
	}

	switch c.Scale {
	case 2, 3, 4:
		// valid
	default:
		return fmt.Errorf("invalid scale %d (use 2, 3 or 4)", c.Scale)
	}

	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1 (got %d)", c.Workers)
	}
	if c.QueueSize < 1 {
		c.QueueSize = 2 * c.Workers
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries must not be negative (got %d)", c.MaxRetries)
	}
	if c.TaskTimeout < 0 {
		return errors.New("task timeout must not be negative")
	}
	if c.StrictMode {
		c.MaxRetries = 0
	}

	if c.CheckOnly {
		return nil
	}
	if len(c.Inputs) == 0 || c.OutputDir == "" {
		return errors.New("need at least one input path and an output directory")
	}
	return nil
}

// ValidatePaths ensures the resolved output directory is not inside (or equal
// to) any resolved input directory. This prevents the pipeline from
// discovering its own output files on a rerun. All arguments must be
// absolute, symlink-resolved paths.
func (c *Config) ValidatePaths(inputsAbs []string, outputAbs string) error {
	sep := string(filepath.Separator)
	for _, in := range inputsAbs {
		if outputAbs == in || strings.HasPrefix(outputAbs+sep, in+sep) {
			return fmt.Errorf("output directory must not be inside input path %s", in)
		}
	}
	return nil
}
