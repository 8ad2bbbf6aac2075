package pipeline

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/backmassage/upscayv/internal/config"
)

// OutputFor maps an input entry to its output path: directory inputs mirror
// their relative layout under outputDir, directly listed files land in
// outputDir itself. The extension is replaced with the output format.
func OutputFor(e Entry, outputDir string, format config.OutputFormat) string {
	rel := filepath.Base(e.Path)
	if e.Root != "" {
		if r, err := filepath.Rel(e.Root, e.Path); err == nil {
			rel = r
		}
	}
	ext := filepath.Ext(rel)
	rel = strings.TrimSuffix(rel, ext) + "." + string(format)
	return filepath.Join(outputDir, rel)
}

// collisionResolver disambiguates output paths when two distinct inputs map
// to the same destination (e.g. photo.png and photo.jpg with --format png).
// The first input keeps the natural name; later ones get a numeric suffix.
type collisionResolver struct {
	claimed map[string]string // output path -> input path
}

func newCollisionResolver() *collisionResolver {
	return &collisionResolver{claimed: make(map[string]string)}
}

// Resolve returns an output path unique to inputPath, suffixing "_2", "_3",
// ... before the extension when the wanted path is already claimed.
func (r *collisionResolver) Resolve(inputPath, want string) string {
	owner, taken := r.claimed[want]
	if !taken || owner == inputPath {
		r.claimed[want] = inputPath
		return want
	}

	ext := filepath.Ext(want)
	base := strings.TrimSuffix(want, ext)
	for n := 2; ; n++ {
		alt := fmt.Sprintf("%s_%d%s", base, n, ext)
		if _, taken := r.claimed[alt]; !taken {
			r.claimed[alt] = inputPath
			return alt
		}
	}
}
