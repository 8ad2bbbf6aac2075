// Package probe inspects input images before dispatch: it confirms the file
// is present and readable and, for formats the standard library can decode,
// reports dimensions for per-file stats and sanity checks.
package probe

import (
	"errors"
	"fmt"
	"image"
	"os"

	// Registered decoders for image.DecodeConfig. Formats outside this set
	// (webp, bmp, tiff) still pass the readability check with unknown
	// dimensions; the upscale binary does its own decoding.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// Files smaller than this cannot be a valid image and are rejected outright.
const minFileSize = 64

// ErrTooSmall is returned for files below the minimum plausible image size.
var ErrTooSmall = errors.New("file too small to be an image")

// Result describes one probed input file.
type Result struct {
	Width  int    // 0 when the format is not decodable by the stdlib.
	Height int    // 0 when the format is not decodable by the stdlib.
	Format string // "png", "jpeg", "gif", or "" when unknown.
	Bytes  int64
}

// Resolution returns "WxH" or "unknown".
func (r *Result) Resolution() string {
	if r.Width <= 0 || r.Height <= 0 {
		return "unknown"
	}
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// Probe stats and opens path, returning metadata. A stat or open failure is
// the caller's signal to record the task as a permanent input failure.
func Probe(path string) (*Result, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if fi.Size() < minFileSize {
		return nil, fmt.Errorf("%w: %s (%d bytes)", ErrTooSmall, path, fi.Size())
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	res := &Result{Bytes: fi.Size()}

	// Best effort: unknown formats are fine, unreadable files are not.
	cfg, format, err := image.DecodeConfig(f)
	if err == nil {
		res.Width = cfg.Width
		res.Height = cfg.Height
		res.Format = format
	}
	return res, nil
}
