// Package check provides system diagnostics (--check mode) and pre-pipeline
// dependency validation for the upscayl binary and its model directory.
package check

import (
	"fmt"
	"os"

	"github.com/backmassage/upscayv/internal/config"
	"github.com/backmassage/upscayv/internal/upscaler"
)

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
	Debug(string, ...interface{})
}

// RunCheck runs the interactive --check flow: binary location, model
// directory, the installed model list with the automatic pick marked, and a
// staging-directory write test. Informational only; reports everything it
// can and returns false when a required piece is missing.
func RunCheck(cfg *config.Config, log Logger) bool {
	log.Info("=== System Check ===")
	ok := true

	bin, err := upscaler.FindBinary(cfg.BinaryPath)
	if err != nil {
		log.Error("upscayl-bin: %v", err)
		return false
	}
	log.Success("upscayl-bin: %s", bin)

	modelDir, err := upscaler.FindModelDir(bin, cfg.ModelDir)
	if err != nil {
		log.Error("models: %v", err)
		return false
	}
	log.Success("model dir: %s", modelDir)

	models, err := upscaler.ListModels(modelDir)
	if err != nil || len(models) == 0 {
		log.Error("models: none found in %s", modelDir)
		return false
	}

	fastest := upscaler.FastestModel(models)
	log.Info("Installed models:")
	for _, m := range models {
		marker := ""
		if m == fastest {
			marker = "  (fastest, auto-selected)"
		}
		log.Info("  %-40s speed score %d%s", m, upscaler.SpeedScore(m), marker)
	}

	if cfg.Model != "" {
		if _, err := upscaler.PickModel(models, cfg.Model); err != nil {
			log.Error("%v", err)
			ok = false
		} else {
			log.Success("requested model available: %s", cfg.Model)
		}
	}

	if err := checkTempWritable(); err != nil {
		log.Error("staging: %v", err)
		ok = false
	} else {
		log.Success("staging dir writable")
	}

	return ok
}

// CheckDeps is the pre-pipeline validation: the binary, its model directory,
// and the configured (or automatic) model must all resolve. Returns the
// underlying sentinel errors from the upscaler package on failure.
func CheckDeps(cfg *config.Config) error {
	bin, err := upscaler.FindBinary(cfg.BinaryPath)
	if err != nil {
		return err
	}
	modelDir, err := upscaler.FindModelDir(bin, cfg.ModelDir)
	if err != nil {
		return err
	}
	models, err := upscaler.ListModels(modelDir)
	if err != nil {
		return err
	}
	if _, err := upscaler.PickModel(models, cfg.Model); err != nil {
		return err
	}
	return nil
}

// checkTempWritable verifies a staging directory can be created, since every
// upscale attempt writes there before the sink moves bytes into place.
func checkTempWritable() error {
	dir, err := os.MkdirTemp("", "upscayv-check-*")
	if err != nil {
		return fmt.Errorf("cannot create temp dir: %w", err)
	}
	return os.RemoveAll(dir)
}
