// Command upscayv is the CLI entrypoint for the parallel batch image
// upscaler.
//
// It layers configuration (defaults, UPSCAYV_* env, flags), validates paths,
// and either runs system diagnostics (--check) or the upscale pipeline.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/backmassage/upscayv/internal/check"
	"github.com/backmassage/upscayv/internal/config"
	"github.com/backmassage/upscayv/internal/display"
	"github.com/backmassage/upscayv/internal/logging"
	"github.com/backmassage/upscayv/internal/metrics"
	"github.com/backmassage/upscayv/internal/pipeline"
	"github.com/backmassage/upscayv/internal/sink"
	"github.com/backmassage/upscayv/internal/upscaler"
)

// version and commit are injected at build time via -ldflags.
// When built with plain "go build", these retain their defaults.
var (
	version = "1.0.0"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Phase 1: Bootstrap. The logger doesn't exist yet, so errors go
	// directly to stderr via fmt. Once NewLogger succeeds, all output
	// goes through the logger for consistent formatting and log-file capture.
	cfg := config.DefaultConfig()
	if err := config.ApplyEnv(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "upscayv: %v\n", err)
		return 1
	}
	if err := config.ParseFlags(&cfg, version); err != nil {
		fmt.Fprintf(os.Stderr, "upscayv: %v\n", err)
		return 1
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "upscayv: %v\n", err)
		return 1
	}

	log, err := logging.NewLogger(&cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "upscayv: %v\n", err)
		return 1
	}
	defer log.Close()

	// Phase 2: Logger available.
	display.PrintBanner()

	if cfg.CheckOnly {
		if !check.RunCheck(&cfg, log) {
			return 1
		}
		return 0
	}

	// Resolve and validate paths: inputs must exist, output is created if
	// needed, and output must not be inside an input (prevents reprocessing
	// our own results on a rerun).
	var inputsAbs []string
	for _, in := range cfg.Inputs {
		abs, err := absPath(in)
		if err != nil {
			log.Error("Cannot resolve input path: %s", in)
			return 1
		}
		inputsAbs = append(inputsAbs, abs)
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		log.Error("Cannot create output directory: %s", cfg.OutputDir)
		return 1
	}
	outputAbs, err := absPath(cfg.OutputDir)
	if err != nil {
		log.Error("Cannot resolve output path: %s", cfg.OutputDir)
		return 1
	}
	if err := cfg.ValidatePaths(inputsAbs, outputAbs); err != nil {
		log.Error("%v", err)
		return 1
	}

	log.Info("=== upscayv v%s (%s) ===", version, commit)
	log.Info("Out: %s", cfg.OutputDir)
	if cfg.DryRun {
		log.Warn("DRY RUN; no files will be written")
	}

	// Fail fast if the upscayl binary or models are unavailable.
	if err := check.CheckDeps(&cfg); err != nil {
		log.Error("%v", err)
		return 1
	}

	tr, err := upscaler.NewBinary(&cfg)
	if err != nil {
		log.Error("%v", err)
		return 1
	}
	defer tr.Close()
	opts := tr.Opts()
	log.Info("Model: %s (%s)", opts.Model, opts.ModelDir)

	if cfg.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(cfg.MetricsAddr); err != nil {
				log.Warn("Metrics server stopped: %v", err)
			}
		}()
		log.Info("Metrics: http://%s/metrics", cfg.MetricsAddr)
	}

	// Phase 3: Signal handling. Cancel the run context on SIGINT/SIGTERM so
	// the pool stops dispatching and unfinished tasks are reported as
	// incomplete rather than silently dropped.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Warn("Received interrupt, stopping dispatch...")
		cancel()
	}()

	// Phase 4: Run the pipeline (enumerate -> pre-check -> pool -> summary).
	snk := sink.NewFSSink(cfg.OutputDir)
	defer snk.Close()

	summary := pipeline.Run(ctx, &cfg, log, tr, snk)
	return summary.ExitCode()
}

// absPath returns the absolute, symlink-resolved path for safe comparison
// of input vs output directory hierarchies. A path that does not exist keeps
// its absolute form; enumeration records it as a permanent input failure
// instead of aborting the run.
func absPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	return abs, nil
}
