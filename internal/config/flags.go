package config

// This file implements CLI flag parsing and help text.
// Flags are grouped into pool/retry, transform, behavior, display, and utility.
// Negated flags (e.g. --no-stats) are applied after Parse so Config defaults hold unless set.

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

// ParseFlags parses os.Args into cfg. On --help or --version it prints and exits.
// On error it returns non-nil (e.g. unknown flag, missing positional args).
func ParseFlags(cfg *Config, version string) error {
	fs := flag.NewFlagSet("upscayv", flag.ContinueOnError)
	fs.Usage = func() { printUsage(fs, version) }

	// Negated/override flags: we capture bools then apply to cfg after Parse,
	// so that defaults from DefaultConfig() hold unless the user passes the flag.
	var negated negatedFlags

	definePoolFlags(fs, cfg)
	defineTransformFlags(fs, cfg)
	defineBehaviorFlags(fs, cfg)
	defineDisplayFlags(fs, cfg, &negated)
	defineUtilityFlags(fs, cfg, &negated)

	if err := fs.Parse(os.Args[1:]); err != nil {
		return err
	}

	applyNegatedFlags(cfg, &negated)

	if negated.showHelp {
		printUsage(fs, version)
		os.Exit(0)
	}
	if negated.showVersion {
		fmt.Fprintln(os.Stdout, "upscayv v"+version)
		os.Exit(0)
	}

	return parsePositionalArgs(fs, cfg)
}

// negatedFlags holds boolean flags that are applied after Parse.
// These either invert a default (e.g. noStats -> ShowFileStats=false) or trigger exit (showHelp, showVersion).
type negatedFlags struct {
	noStats     bool
	forceColor  bool
	noColor     bool
	showVersion bool
	showHelp    bool
}

// definePoolFlags registers -w/--workers, --queue-size, -r/--max-retries, --task-timeout.
func definePoolFlags(fs *flag.FlagSet, cfg *Config) {
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "Number of parallel workers")
	fs.IntVar(&cfg.Workers, "w", cfg.Workers, "Same as --workers")
	fs.IntVar(&cfg.QueueSize, "queue-size", cfg.QueueSize, "Pending task queue capacity")
	fs.IntVar(&cfg.MaxRetries, "max-retries", cfg.MaxRetries, "Retries per failed task")
	fs.IntVar(&cfg.MaxRetries, "r", cfg.MaxRetries, "Same as --max-retries")
	fs.DurationVar(&cfg.TaskTimeout, "task-timeout", cfg.TaskTimeout, "Per-attempt timeout (0 disables)")
}

// defineTransformFlags registers --binary, --model-dir, -n/--model, -s/--scale, --format.
func defineTransformFlags(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.BinaryPath, "binary", "", "Path to upscayl-bin (default: auto-discover)")
	fs.StringVar(&cfg.ModelDir, "model-dir", "", "Model directory (default: next to binary)")
	fs.StringVar(&cfg.Model, "model", "", "Model name (default: fastest available)")
	fs.StringVar(&cfg.Model, "n", "", "Same as --model")
	fs.IntVar(&cfg.Scale, "scale", cfg.Scale, "Upscale factor: 2 | 3 | 4")
	fs.IntVar(&cfg.Scale, "s", cfg.Scale, "Same as --scale")
	fs.Var(&formatValue{&cfg.Format}, "format", "Output format: png | jpg | webp")
}

// defineBehaviorFlags registers dry-run, skip-existing, strict.
func defineBehaviorFlags(fs *flag.FlagSet, cfg *Config) {
	fs.BoolVar(&cfg.DryRun, "dry-run", false, "Preview only; do not upscale or write")
	fs.BoolVar(&cfg.DryRun, "d", false, "Same as --dry-run")
	fs.BoolVar(&cfg.SkipExisting, "skip-existing", false, "Skip inputs whose output already exists")
	fs.BoolVar(&cfg.StrictMode, "strict", false, "Fail tasks on first error (no retries)")
}

// defineDisplayFlags registers --color, --no-color, --no-stats, verbose, --check, --log, --metrics-addr.
func defineDisplayFlags(fs *flag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.BoolVar(&n.forceColor, "color", false, "Force colored logs")
	fs.BoolVar(&n.noColor, "no-color", false, "Disable colored logs")
	fs.BoolVar(&n.noStats, "no-stats", false, "Hide per-file source stats")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "Verbose output")
	fs.BoolVar(&cfg.Verbose, "v", false, "Same as --verbose")
	fs.BoolVar(&cfg.CheckOnly, "check", false, "Run system diagnostics and exit")
	fs.BoolVar(&cfg.CheckOnly, "c", false, "Same as --check")
	fs.StringVar(&cfg.LogFile, "log", cfg.LogFile, "Append logs to file")
	fs.StringVar(&cfg.LogFile, "l", cfg.LogFile, "Same as --log")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "Serve Prometheus metrics on this address during the run")
}

// defineUtilityFlags registers --version and --help (exit after printing).
func defineUtilityFlags(fs *flag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.BoolVar(&n.showVersion, "version", false, "Print version and exit")
	fs.BoolVar(&n.showVersion, "V", false, "Same as --version")
	fs.BoolVar(&n.showHelp, "help", false, "Show this help and exit")
	fs.BoolVar(&n.showHelp, "h", false, "Same as --help")
}

// applyNegatedFlags copies negated flag values into cfg (e.g. noStats -> ShowFileStats=false).
func applyNegatedFlags(cfg *Config, n *negatedFlags) {
	if n.noStats {
		cfg.ShowFileStats = false
	}
	if n.noColor {
		cfg.ColorMode = ColorNever
	} else if n.forceColor {
		cfg.ColorMode = ColorAlways
	}
}

// parsePositionalArgs sets Inputs and OutputDir from the positional args when
// not in CheckOnly mode. The last argument is the output directory; everything
// before it is an input file or directory.
func parsePositionalArgs(fs *flag.FlagSet, cfg *Config) error {
	args := fs.Args()
	if cfg.CheckOnly {
		return nil
	}
	if len(args) < 2 {
		return fmt.Errorf("need at least one input and an output directory")
	}
	for _, a := range args[:len(args)-1] {
		cfg.Inputs = append(cfg.Inputs, NormalizeDirArg(a))
	}
	cfg.OutputDir = NormalizeDirArg(args[len(args)-1])
	return nil
}

// printUsage writes the help text to stderr. Column-aligned for readability.
func printUsage(fs *flag.FlagSet, version string) {
	const col1 = 28 // width of "  -x, --long-name <arg>  "
	lines := []struct {
		flags string
		desc  string
	}{
		{"", "upscayv v" + version + " - parallel batch image upscaler"},
		{"", ""},
		{"  upscayv [OPTIONS] <input>... <output_dir>", ""},
		{"", ""},
		{"Parallelism & retry", ""},
		{"  -w, --workers <n>", "Parallel workers (default: CPU cores)"},
		{"  --queue-size <n>", "Pending queue capacity (default: 2× workers)"},
		{"  -r, --max-retries <n>", "Retries per failed task (default: 2)"},
		{"  --task-timeout <dur>", "Per-attempt timeout (default: 10m, 0 disables)"},
		{"  --strict", "Fail tasks on first error (no retries)"},
		{"", ""},
		{"Upscaling", ""},
		{"  --binary <path>", "Path to upscayl-bin (default: auto-discover)"},
		{"  --model-dir <path>", "Model directory (default: next to binary)"},
		{"  -n, --model <name>", "Model name (default: fastest available)"},
		{"  -s, --scale <2|3|4>", "Upscale factor (default: 4)"},
		{"  --format <png|jpg|webp>", "Output format (default: png)"},
		{"", ""},
		{"Output & behavior", ""},
		{"  --skip-existing", "Skip inputs whose output already exists"},
		{"  -d, --dry-run", "Preview only; do not upscale or write"},
		{"", ""},
		{"Display", ""},
		{"  --no-stats", "Hide per-file source stats"},
		{"  --color", "Force colored logs"},
		{"  --no-color", "Disable colored logs"},
		{"  -v, --verbose", "Verbose output"},
		{"", ""},
		{"Utility", ""},
		{"  -l, --log <path>", "Append logs to file"},
		{"  --metrics-addr <addr>", "Serve Prometheus metrics during the run"},
		{"  -c, --check", "System diagnostics (binary, models, output dir)"},
		{"  -V, --version", "Print version and exit"},
		{"  -h, --help", "Show this help and exit"},
	}

	for _, l := range lines {
		if l.flags == "" && l.desc == "" {
			fmt.Fprintln(os.Stderr)
			continue
		}
		if l.desc == "" {
			fmt.Fprintln(os.Stderr, l.flags)
			continue
		}
		if l.flags == "" {
			fmt.Fprintln(os.Stderr, l.desc)
			continue
		}
		padding := col1 - len(l.flags)
		if padding < 1 {
			padding = 1
		}
		fmt.Fprintf(os.Stderr, "%s%*s%s\n", l.flags, padding, "", l.desc)
	}
}

// flag.Value adapter so the OutputFormat enum works with flag.Var.

type formatValue struct{ p *OutputFormat }

func (f *formatValue) String() string {
	if f.p == nil {
		return ""
	}
	return string(*f.p)
}

func (f *formatValue) Set(s string) error {
	switch strings.ToLower(s) {
	case "png":
		*f.p = FormatPNG
	case "jpg", "jpeg":
		*f.p = FormatJPG
	case "webp":
		*f.p = FormatWebP
	default:
		return fmt.Errorf("invalid format %q (use 'png', 'jpg' or 'webp')", s)
	}
	return nil
}
