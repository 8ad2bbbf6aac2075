// Package upscaler wraps the external upscayl-bin binary: locating it and its
// model directory, choosing a model, building the command line, and running
// one isolated subprocess per upscale attempt.
package upscaler

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
)

// Binary name as shipped by Upscayl releases.
const binaryName = "upscayl-bin"

// Sentinel errors for missing external pieces.
var (
	ErrBinaryNotFound   = errors.New("upscayl-bin not found on PATH or in known install locations")
	ErrModelDirNotFound = errors.New("no model directory found next to upscayl-bin")
	ErrNoModels         = errors.New("no models found in model directory")
)

// FindBinary returns the path to upscayl-bin. An explicit override is
// verified and returned as-is; otherwise PATH is searched first, then the
// usual install locations of the Upscayl desktop package.
func FindBinary(override string) (string, error) {
	if override != "" {
		if _, err := os.Stat(override); err != nil {
			return "", err
		}
		return override, nil
	}

	if p, err := exec.LookPath(binaryName); err == nil {
		return p, nil
	}
	if p, err := exec.LookPath(binaryName + ".exe"); err == nil {
		return p, nil
	}

	for _, p := range installCandidates() {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", ErrBinaryNotFound
}

// installCandidates lists well-known install paths for the Upscayl desktop
// app across platforms. Entries built from unset env vars are skipped.
func installCandidates() []string {
	home, _ := os.UserHomeDir()
	candidates := []string{
		"/opt/Upscayl/resources/bin/" + binaryName,
		"/opt/upscayl/bin/" + binaryName,
		"/usr/lib/upscayl/resources/bin/" + binaryName,
		"/usr/local/bin/" + binaryName,
	}
	if home != "" {
		candidates = append(candidates,
			filepath.Join(home, ".local", "bin", binaryName),
			filepath.Join(home, "AppData", "Local", "Programs", "upscayl", binaryName+".exe"),
		)
	}
	for _, env := range []string{"LOCALAPPDATA", "PROGRAMFILES", "PROGRAMFILES(X86)"} {
		base := os.Getenv(env)
		if base == "" {
			continue
		}
		if env == "LOCALAPPDATA" {
			candidates = append(candidates,
				filepath.Join(base, "Programs", "upscayl", binaryName+".exe"))
			continue
		}
		candidates = append(candidates,
			filepath.Join(base, "upscayl", binaryName+".exe"),
			filepath.Join(base, "upscayl", "resources", "bin", binaryName+".exe"),
		)
	}
	return candidates
}

// FindModelDir returns the model directory for a resolved binary path.
// An explicit override is verified and returned as-is; otherwise the
// directories Upscayl ships models in are tried relative to the binary.
func FindModelDir(binaryPath, override string) (string, error) {
	if override != "" {
		fi, err := os.Stat(override)
		if err != nil {
			return "", err
		}
		if !fi.IsDir() {
			return "", errors.New("model dir is not a directory: " + override)
		}
		return override, nil
	}

	binDir := filepath.Dir(binaryPath)
	parent := filepath.Dir(binDir)
	for _, dir := range []string{
		filepath.Join(binDir, "models"),
		filepath.Join(binDir, "resources", "models"),
		filepath.Join(parent, "models"),
		filepath.Join(parent, "resources", "models"),
	} {
		if fi, err := os.Stat(dir); err == nil && fi.IsDir() {
			return dir, nil
		}
	}
	return "", ErrModelDirNotFound
}
