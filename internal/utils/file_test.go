package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateInputFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resume.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o600))

	assert.NoError(t, ValidateInputFile(path))
	assert.ErrorContains(t, ValidateInputFile(""), "cannot be empty")
	assert.ErrorContains(t, ValidateInputFile(filepath.Join(dir, "missing.json")), "does not exist")
	assert.ErrorContains(t, ValidateInputFile(dir), "directory")
}

func TestEnsureOutputDir(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "nested", "deeper", "out.pdf")

	require.NoError(t, EnsureOutputDir(target))
	info, err := os.Stat(filepath.Dir(target))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	assert.NoError(t, EnsureOutputDir(""))
	assert.Error(t, EnsureOutputDir(dir))
}

func TestRemoveIfExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF"), 0o600))

	require.NoError(t, RemoveIfExists(path))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, RemoveIfExists(path))
}

func TestFileKinds(t *testing.T) {
	assert.True(t, IsResumeFile("a.JSON"))
	assert.True(t, IsResumeFile("dir/a.yml"))
	assert.False(t, IsResumeFile("a.txt"))
	assert.True(t, IsPDFFile("out.PDF"))
	assert.False(t, IsPDFFile("out.json"))
}

func TestFormatFileSize(t *testing.T) {
	assert.Equal(t, "512 B", FormatFileSize(512))
	assert.Equal(t, "1.0 KB", FormatFileSize(1024))
	assert.Equal(t, "1.5 MB", FormatFileSize(1536*1024))
}
