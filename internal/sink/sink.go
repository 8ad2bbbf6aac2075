// Package sink persists pipeline outcomes: upscaled image bytes on success,
// and a durable record of permanently failed inputs.
package sink

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/backmassage/upscayv/internal/task"
)

// Sink is the contract the coordinator writes through. Write is called once
// per Succeeded task, RecordFailure once per permanently failed task.
// Implementations own their durability; the coordinator does not retry a
// failed Write beyond surfacing it in the run summary.
type Sink interface {
	Write(outputPath string, payload []byte) error
	RecordFailure(u task.Unit, kind task.FailKind, reason string) error
}

// FSSink writes outputs to the local filesystem. Writes are atomic: payloads
// land in a temp file in the destination directory and are renamed into
// place, so an interrupted run never leaves a truncated image behind.
// Failures are appended to a ledger file in the output root.
type FSSink struct {
	failuresPath string

	mu sync.Mutex
	f  *os.File // failures ledger, opened lazily
}

// FailuresFile is the name of the failure ledger inside the output root.
const FailuresFile = "upscayv-failures.log"

// NewFSSink returns a sink rooted at outputDir. The directory must exist.
func NewFSSink(outputDir string) *FSSink {
	return &FSSink{failuresPath: filepath.Join(outputDir, FailuresFile)}
}

// Write atomically persists payload at outputPath, creating parent
// directories as needed.
func (s *FSSink) Write(outputPath string, payload []byte) error {
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(outputPath)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, outputPath); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// RecordFailure appends one line per permanently failed input to the ledger:
// timestamp, kind, input path, reason.
func (s *FSSink) RecordFailure(u task.Unit, kind task.FailKind, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.f == nil {
		f, err := os.OpenFile(s.failuresPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		s.f = f
	}
	_, err := fmt.Fprintf(s.f, "%s\t%s\t%s\t%s\n",
		time.Now().Format(time.RFC3339), kind, u.InputPath, reason)
	return err
}

// Close closes the failure ledger if it was opened.
func (s *FSSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f != nil {
		err := s.f.Close()
		s.f = nil
		return err
	}
	return nil
}
