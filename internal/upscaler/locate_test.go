package upscaler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindBinary_Override(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "upscayl-bin")
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\n"), 0o755))

	got, err := FindBinary(bin)
	require.NoError(t, err)
	assert.Equal(t, bin, got)

	_, err = FindBinary(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestFindModelDir_Override(t *testing.T) {
	dir := t.TempDir()

	got, err := FindModelDir("", dir)
	require.NoError(t, err)
	assert.Equal(t, dir, got)

	_, err = FindModelDir("", filepath.Join(dir, "missing"))
	assert.Error(t, err)

	file := filepath.Join(dir, "not-a-dir")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, err = FindModelDir("", file)
	assert.Error(t, err)
}

func TestFindModelDir_RelativeToBinary(t *testing.T) {
	tests := []struct {
		name   string
		layout string // model dir relative to the install root
	}{
		{"next to binary", "bin/models"},
		{"binary resources", "bin/resources/models"},
		{"sibling of bin", "models"},
		{"install resources", "resources/models"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			binDir := filepath.Join(root, "bin")
			require.NoError(t, os.MkdirAll(binDir, 0o755))
			bin := filepath.Join(binDir, "upscayl-bin")
			require.NoError(t, os.WriteFile(bin, nil, 0o755))

			want := filepath.Join(root, filepath.FromSlash(tt.layout))
			require.NoError(t, os.MkdirAll(want, 0o755))

			got, err := FindModelDir(bin, "")
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestFindModelDir_NotFound(t *testing.T) {
	root := t.TempDir()
	bin := filepath.Join(root, "bin", "upscayl-bin")
	require.NoError(t, os.MkdirAll(filepath.Dir(bin), 0o755))
	require.NoError(t, os.WriteFile(bin, nil, 0o755))

	_, err := FindModelDir(bin, "")
	assert.ErrorIs(t, err, ErrModelDirNotFound)
}
