package upscaler

import "strconv"

// Options holds the resolved invocation parameters shared by every attempt.
type Options struct {
	Binary   string // Absolute path to upscayl-bin.
	ModelDir string // Absolute model directory.
	Model    string // Resolved model name.
	Scale    int    // 2, 3, or 4.
	Format   string // png | jpg | webp.
}

// Args builds the full argv (program first) for one upscale invocation.
func (o Options) Args(inputPath, outputPath string) []string {
	return []string{
		o.Binary,
		"-i", inputPath,
		"-o", outputPath,
		"-s", strconv.Itoa(o.Scale),
		"-m", o.ModelDir,
		"-n", o.Model,
		"-f", o.Format,
	}
}
