package upscaler

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ListModels returns the model names available under modelDir, sorted.
// A model is either a .bin file (name without extension) or a subdirectory
// containing at least one .bin file.
func ListModels(modelDir string) ([]string, error) {
	entries, err := os.ReadDir(modelDir)
	if err != nil {
		return nil, err
	}

	var models []string
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() {
			if strings.HasSuffix(name, ".bin") {
				models = append(models, strings.TrimSuffix(name, ".bin"))
			}
			continue
		}
		sub, err := os.ReadDir(filepath.Join(modelDir, name))
		if err != nil {
			continue
		}
		for _, s := range sub {
			if strings.HasSuffix(s.Name(), ".bin") {
				models = append(models, name)
				break
			}
		}
	}
	sort.Strings(models)
	return models, nil
}

// SpeedScore estimates how fast a model is from its name; lower is faster.
// The heuristics follow the naming conventions of the models Upscayl ships
// (scale suffix, size hints, known slow families).
func SpeedScore(model string) int {
	score := 100
	lower := strings.ToLower(model)

	if strings.Contains(lower, "x2") {
		score -= 50
	} else if strings.Contains(lower, "x4") {
		score -= 30
	}

	if strings.Contains(lower, "small") || strings.Contains(lower, "fast") || strings.Contains(lower, "lite") {
		score -= 20
	}

	if strings.Contains(lower, "x8") {
		score += 30
	}
	if strings.Contains(lower, "large") || strings.Contains(lower, "ultra") || strings.Contains(lower, "balanced") {
		score += 20
	}
	if strings.Contains(lower, "remacri") || strings.Contains(lower, "ultramix") {
		score += 15
	}

	if len(model) < 10 {
		score -= 10
	}
	return score
}

// FastestModel returns the model with the lowest speed score, ties broken by
// name for determinism. Empty input returns "".
func FastestModel(models []string) string {
	if len(models) == 0 {
		return ""
	}
	sorted := append([]string(nil), models...)
	sort.SliceStable(sorted, func(i, j int) bool {
		si, sj := SpeedScore(sorted[i]), SpeedScore(sorted[j])
		if si != sj {
			return si < sj
		}
		return sorted[i] < sorted[j]
	})
	return sorted[0]
}

// PickModel resolves the model to use: an explicit choice is validated
// against the available set, otherwise the fastest available model wins.
func PickModel(available []string, explicit string) (string, error) {
	if len(available) == 0 {
		return "", ErrNoModels
	}
	if explicit == "" {
		return FastestModel(available), nil
	}
	for _, m := range available {
		if m == explicit {
			return m, nil
		}
	}
	return "", &UnknownModelError{Model: explicit, Available: available}
}

// UnknownModelError reports a requested model that is not installed.
type UnknownModelError struct {
	Model     string
	Available []string
}

func (e *UnknownModelError) Error() string {
	return "unknown model " + e.Model + " (available: " + strings.Join(e.Available, ", ") + ")"
}
