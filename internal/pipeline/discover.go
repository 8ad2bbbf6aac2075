package pipeline

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Supported image file extensions (lowercase, with leading dot).
// Directory walks only pick these up; explicitly listed files are taken
// as-is and left to the pre-check to reject.
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
	".gif":  true,
}

// Entry is one discovered input file. Root is the input directory it was
// found under, used to mirror the layout below the output directory; it is
// empty for files the user listed directly.
type Entry struct {
	Path string
	Root string
}

// Enumerate expands the input arguments into concrete files. Directories are
// walked recursively and filtered by extension; listed files are included
// verbatim. Input arguments that do not exist are returned in missing so the
// coordinator can record them as permanent failures. Results are sorted for
// deterministic ordering.
func Enumerate(inputs []string) (entries []Entry, missing []string, err error) {
	for _, in := range inputs {
		fi, statErr := os.Stat(in)
		if statErr != nil {
			missing = append(missing, in)
			continue
		}

		if !fi.IsDir() {
			entries = append(entries, Entry{Path: in})
			continue
		}

		walkErr := filepath.WalkDir(in, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if imageExtensions[strings.ToLower(filepath.Ext(path))] {
				entries = append(entries, Entry{Path: path, Root: in})
			}
			return nil
		})
		if walkErr != nil {
			return nil, nil, walkErr
		}
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, missing, nil
}
